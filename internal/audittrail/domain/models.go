// Package domain contains the append-only transition log model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditEntry records one state transition of a billing request. Entries are
// insert-only; no update or delete path exists. For a given request the
// ordered to_state sequence mirrors the states the record has held.
type AuditEntry struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	RequestID snowflake.ID      `gorm:"not null;index" json:"request_id"`
	FromState *string           `gorm:"type:text" json:"from_state"`
	ToState   string            `gorm:"type:text;not null" json:"to_state"`
	Actor     *string           `gorm:"type:text" json:"actor"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;index" json:"created_at"`
}

// TableName sets the database table name.
func (AuditEntry) TableName() string { return "billing_audit_log" }
