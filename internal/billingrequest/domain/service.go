package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CreateRequest carries the fields a company submits for a new cash-out.
// CompanyID is optional; when nil the ledger resolves it from the actor's
// membership.
type CreateRequest struct {
	CompanyID       *snowflake.ID
	Platform        string
	RequestedAmount decimal.Decimal
}

// Service is the request ledger: it owns billing-request records and is the
// only writer of their state. The verified actor travels on the context.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (BillingRequest, error)
	Calculate(ctx context.Context, id snowflake.ID) (BillingRequest, error)
	Approve(ctx context.Context, id snowflake.ID) (BillingRequest, error)
	Invoice(ctx context.Context, id snowflake.ID) (BillingRequest, error)
	Pay(ctx context.Context, id snowflake.ID) (BillingRequest, error)
	Complete(ctx context.Context, id snowflake.ID) (BillingRequest, error)
	Fail(ctx context.Context, id snowflake.ID) (BillingRequest, error)

	Get(ctx context.Context, id snowflake.ID) (BillingRequest, error)
	FindByCompany(ctx context.Context, companyID snowflake.ID) ([]BillingRequest, error)
	FindAll(ctx context.Context) ([]BillingRequest, error)
}
