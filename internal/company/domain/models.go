// Package domain contains the company (tenant) model.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Company is the owning business entity of billing requests.
type Company struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	TaxID     string       `gorm:"type:text" json:"tax_id"`
	Region    string       `gorm:"type:text" json:"region"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Company) TableName() string { return "companies" }

// Membership links a platform user to the company they act for.
type Membership struct {
	CompanyID snowflake.ID `gorm:"not null;index" json:"company_id"`
	UserID    string       `gorm:"type:text;not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "company_users" }

var (
	ErrNotFound     = errors.New("company_not_found")
	ErrNoMembership = errors.New("no_company_membership")
)
