// Package domain contains the billing-request lifecycle model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// State is a billing-request lifecycle state.
type State string

const (
	StateRequestCreated   State = "REQUEST_CREATED"
	StateCalculated       State = "CALCULATED"
	StateApprovedByClient State = "APPROVED_BY_CLIENT"
	StateInvoiced         State = "INVOICED"
	StatePaid             State = "PAID"
	StateCompleted        State = "COMPLETED"
	StateError            State = "ERROR"
)

// Terminal reports whether no further transitions are permitted.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

// BillingRequest is a single cash-out submission by a company for a given
// ad platform's revenue. RequestedAmount is immutable after creation; the
// fiscal fields are written exactly once, during the CALCULATED transition.
type BillingRequest struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID       snowflake.ID    `gorm:"not null;index" json:"company_id"`
	Platform        string          `gorm:"type:text;not null" json:"platform"`
	RequestedAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"requested_amount"`

	BaseAmount        decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"base_amount"`
	VAT               decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"vat"`
	WithholdingOffset decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"withholding_offset"`
	TotalInvoiced     decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"total_invoiced"`

	State     State     `gorm:"type:text;not null;default:'REQUEST_CREATED';index" json:"state"`
	CreatedBy string    `gorm:"type:text;not null;index" json:"created_by"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (BillingRequest) TableName() string { return "billing_requests" }

// HasFiscalData reports whether the calculator has populated the fiscal
// fields.
func (r BillingRequest) HasFiscalData() bool {
	return r.TotalInvoiced.Valid
}
