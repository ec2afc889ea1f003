package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service appends and lists transition entries. Append takes the caller's
// transaction handle: a state mutation and its audit entry commit or roll
// back as one unit.
type Service interface {
	Append(ctx context.Context, tx *gorm.DB, entry *AuditEntry) error
	ListForRequest(ctx context.Context, requestID snowflake.ID) ([]AuditEntry, error)
}

// Repository is the storage port for audit entries.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditEntry) error
	ListByRequest(ctx context.Context, db *gorm.DB, requestID snowflake.ID) ([]AuditEntry, error)
}
