package service

import (
	"context"
	"fmt"

	billingdomain "github.com/adlift/cashout/internal/billingrequest/domain"
	"github.com/adlift/cashout/internal/clock"
	companydomain "github.com/adlift/cashout/internal/company/domain"
	"github.com/adlift/cashout/internal/dashboard/domain"
	"github.com/adlift/cashout/internal/tenantctx"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	Ledger    billingdomain.Service
	Companies companydomain.Repository
}

type Service struct {
	log       *zap.Logger
	clock     clock.Clock
	ledger    billingdomain.Service
	companies companydomain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:       p.Log.Named("dashboard.service"),
		clock:     p.Clock,
		ledger:    p.Ledger,
		companies: p.Companies,
	}
}

// Stats reads the actor-scoped snapshot through the ledger's read path and
// reduces it. It never writes, so it can run alongside transitions.
func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	actor, ok := tenantctx.ActorFromContext(ctx)
	if !ok {
		return domain.Stats{}, billingdomain.ErrMissingActor
	}

	var (
		records []billingdomain.BillingRequest
		err     error
	)
	if actor.IsAdmin() {
		records, err = s.ledger.FindAll(ctx)
	} else {
		records, err = s.ledger.FindByCompany(ctx, actor.CompanyID)
	}
	if err != nil {
		return domain.Stats{}, err
	}

	regions, err := s.companies.RegionsForCompanies(ctx, companyIDs(records))
	if err != nil {
		return domain.Stats{}, fmt.Errorf("%w: region lookup: %v", billingdomain.ErrDependency, err)
	}

	return Aggregate(records, regions, s.clock.Now()), nil
}

func companyIDs(records []billingdomain.BillingRequest) []snowflake.ID {
	seen := map[snowflake.ID]struct{}{}
	ids := make([]snowflake.ID, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.CompanyID]; ok {
			continue
		}
		seen[rec.CompanyID] = struct{}{}
		ids = append(ids, rec.CompanyID)
	}
	return ids
}
