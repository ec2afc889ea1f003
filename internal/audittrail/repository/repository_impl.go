package repository

import (
	"context"

	"github.com/adlift/cashout/internal/audittrail/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditEntry) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO billing_audit_log (
			id, request_id, from_state, to_state, actor, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.RequestID,
		entry.FromState,
		entry.ToState,
		entry.Actor,
		entry.Metadata,
		entry.CreatedAt,
	).Error
}

func (r *repo) ListByRequest(ctx context.Context, db *gorm.DB, requestID snowflake.ID) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	err := db.WithContext(ctx).Model(&domain.AuditEntry{}).
		Where("request_id = ?", requestID).
		Order("created_at asc, id asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
