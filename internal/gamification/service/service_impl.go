package service

import (
	"context"
	"errors"
	"fmt"

	billingdomain "github.com/adlift/cashout/internal/billingrequest/domain"
	"github.com/adlift/cashout/internal/clock"
	"github.com/adlift/cashout/internal/gamification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("gamification.service"),
		clock: p.Clock,
	}
}

// HandleFirstInvoice flips the user's first-invoice flag and hides their
// onboarding card. Guarded by the flag itself, so repeated calls are no-ops.
func (s *Service) HandleFirstInvoice(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.PlatformUser
		err := tx.First(&user, "id = ?", userID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Unknown user: nothing to award.
				return nil
			}
			return fmt.Errorf("%w: gamification lookup: %v", billingdomain.ErrDependency, err)
		}
		if user.HasEmittedFirstInvoice {
			return nil
		}

		now := s.clock.Now()
		if err := tx.Model(&domain.PlatformUser{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"has_emitted_first_invoice": true,
				"is_new":                    false,
				"updated_at":                now,
			}).Error; err != nil {
			return fmt.Errorf("%w: gamification update: %v", billingdomain.ErrDependency, err)
		}

		if err := tx.Model(&domain.GamificationState{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"visible":    false,
				"updated_at": now,
			}).Error; err != nil {
			return fmt.Errorf("%w: gamification state update: %v", billingdomain.ErrDependency, err)
		}

		s.log.Info("first invoice recorded", zap.String("user_id", userID))
		return nil
	})
}
