// Package domain contains the gamification collaborator contract.
package domain

import (
	"context"
	"time"
)

// PlatformUser carries the per-user flags the first-invoice hook maintains.
type PlatformUser struct {
	ID                     string    `gorm:"primaryKey;type:text" json:"id"`
	HasEmittedFirstInvoice bool      `gorm:"not null;default:false" json:"has_emitted_first_invoice"`
	IsNew                  bool      `gorm:"not null;default:true" json:"is_new"`
	CreatedAt              time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (PlatformUser) TableName() string { return "platform_users" }

// GamificationState is the onboarding progress row shown to new users.
type GamificationState struct {
	UserID    string    `gorm:"primaryKey;type:text" json:"user_id"`
	Level     string    `gorm:"type:text;not null" json:"level"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	Visible   bool      `gorm:"not null;default:true" json:"visible"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (GamificationState) TableName() string { return "gamification_states" }

// Service reacts to billing milestones. HandleFirstInvoice is idempotent:
// once a user's first invoice is recorded, later calls are no-ops.
type Service interface {
	HandleFirstInvoice(ctx context.Context, userID string) error
}
