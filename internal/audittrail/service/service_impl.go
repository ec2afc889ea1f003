package service

import (
	"context"
	"fmt"

	"github.com/adlift/cashout/internal/audittrail/domain"
	billingdomain "github.com/adlift/cashout/internal/billingrequest/domain"
	"github.com/adlift/cashout/internal/clock"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audittrail.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Append(ctx context.Context, tx *gorm.DB, entry *domain.AuditEntry) error {
	if entry == nil {
		return nil
	}
	if tx == nil {
		tx = s.db
	}
	if entry.ID == 0 {
		entry.ID = s.genID.Generate()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now()
	}

	if err := s.repo.Insert(ctx, tx, entry); err != nil {
		s.log.Error("audit append failed",
			zap.String("request_id", entry.RequestID.String()),
			zap.String("to_state", entry.ToState),
			zap.Error(err),
		)
		return fmt.Errorf("%w: audit append: %v", billingdomain.ErrDependency, err)
	}
	return nil
}

func (s *Service) ListForRequest(ctx context.Context, requestID snowflake.ID) ([]domain.AuditEntry, error) {
	entries, err := s.repo.ListByRequest(ctx, s.db, requestID)
	if err != nil {
		return nil, fmt.Errorf("%w: audit list: %v", billingdomain.ErrDependency, err)
	}
	return entries, nil
}
