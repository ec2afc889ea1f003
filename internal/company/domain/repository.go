package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository resolves companies and user memberships. Identity issuance and
// company registration live outside this service; the ledger only reads.
type Repository interface {
	GetByID(ctx context.Context, id snowflake.ID) (Company, error)
	// CompanyForUser returns the company the user belongs to, or
	// ErrNoMembership when the user has no associated company.
	CompanyForUser(ctx context.Context, userID string) (snowflake.ID, error)
	// RegionsForCompanies returns the distinct regions of the given
	// companies.
	RegionsForCompanies(ctx context.Context, ids []snowflake.ID) ([]string, error)
}
