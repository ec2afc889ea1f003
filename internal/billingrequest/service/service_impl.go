package service

import (
	"context"
	"errors"
	"fmt"

	auditdomain "github.com/adlift/cashout/internal/audittrail/domain"
	"github.com/adlift/cashout/internal/billingrequest/domain"
	"github.com/adlift/cashout/internal/clock"
	companydomain "github.com/adlift/cashout/internal/company/domain"
	"github.com/adlift/cashout/internal/config"
	"github.com/adlift/cashout/internal/events"
	"github.com/adlift/cashout/internal/fiscal"
	gamificationdomain "github.com/adlift/cashout/internal/gamification/domain"
	"github.com/adlift/cashout/internal/observability/metrics"
	"github.com/adlift/cashout/internal/tenantctx"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var minAmount = decimal.RequireFromString("0.01")

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	GenID        *snowflake.Node
	Cfg          config.Config
	Policies     fiscal.PolicyProvider
	AuditSvc     auditdomain.Service
	Companies    companydomain.Repository
	Gamification gamificationdomain.Service
	Notifier     events.Notifier
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	genID        *snowflake.Node
	cfg          config.Config
	policies     fiscal.PolicyProvider
	auditSvc     auditdomain.Service
	companies    companydomain.Repository
	gamification gamificationdomain.Service
	notifier     events.Notifier

	// raceHook runs between the precondition read and the conditional
	// write. Tests use it to interleave a competing transition.
	raceHook func()
}

func NewService(p ServiceParam) domain.Service {
	return newService(p)
}

func newService(p ServiceParam) *Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("billingrequest.service"),
		clock:        p.Clock,
		genID:        p.GenID,
		cfg:          p.Cfg,
		policies:     p.Policies,
		auditSvc:     p.AuditSvc,
		companies:    p.Companies,
		gamification: p.Gamification,
		notifier:     p.Notifier,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.BillingRequest, error) {
	actor, ok := tenantctx.ActorFromContext(ctx)
	if !ok {
		return domain.BillingRequest{}, domain.ErrMissingActor
	}
	if req.RequestedAmount.LessThan(minAmount) {
		return domain.BillingRequest{}, domain.ErrInvalidAmount
	}
	if !s.cfg.PlatformAllowed(req.Platform) {
		return domain.BillingRequest{}, domain.ErrInvalidPlatform
	}

	companyID, err := s.resolveCompany(ctx, actor, req.CompanyID)
	if err != nil {
		return domain.BillingRequest{}, err
	}

	now := s.clock.Now()
	record := domain.BillingRequest{
		ID:              s.genID.Generate(),
		CompanyID:       companyID,
		Platform:        req.Platform,
		RequestedAmount: req.RequestedAmount.Round(2),
		State:           domain.StateRequestCreated,
		CreatedBy:       actor.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("%w: insert request: %v", domain.ErrDependency, err)
		}
		return s.auditSvc.Append(ctx, tx, &auditdomain.AuditEntry{
			RequestID: record.ID,
			FromState: nil,
			ToState:   string(domain.StateRequestCreated),
			Actor:     actorRef(actor.ID),
			Metadata: datatypes.JSONMap{
				"platform":         record.Platform,
				"requested_amount": record.RequestedAmount.StringFixed(2),
			},
		})
	})
	if err != nil {
		return domain.BillingRequest{}, err
	}

	metrics.RequestsCreatedTotal.WithLabelValues(record.Platform).Inc()
	s.notifier.NotifyRole(ctx, tenantctx.RoleAdmin, events.EventRequestCreated, eventPayload(record))
	s.log.Info("billing request created",
		zap.String("request_id", record.ID.String()),
		zap.String("company_id", companyID.String()),
		zap.String("platform", record.Platform),
	)
	return record, nil
}

func (s *Service) Calculate(ctx context.Context, id snowflake.ID) (domain.BillingRequest, error) {
	policy, err := s.policies.Active()
	if err != nil {
		return domain.BillingRequest{}, fmt.Errorf("%w: fiscal policy: %v", domain.ErrDependency, err)
	}

	record, err := s.transition(ctx, id, transitionSpec{
		from:        domain.StateRequestCreated,
		to:          domain.StateCalculated,
		systemActor: true,
		mutate: func(rec domain.BillingRequest, updates map[string]any) (datatypes.JSONMap, error) {
			breakdown, err := policy.Calculate(rec.RequestedAmount)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
			}
			updates["base_amount"] = breakdown.BaseAmount
			updates["vat"] = breakdown.VAT
			updates["withholding_offset"] = breakdown.WithholdingOffset
			updates["total_invoiced"] = breakdown.TotalInvoiced
			return datatypes.JSONMap{
				"policy":             policy.Name(),
				"base_amount":        breakdown.BaseAmount.StringFixed(2),
				"vat":                breakdown.VAT.StringFixed(2),
				"withholding_offset": breakdown.WithholdingOffset.StringFixed(2),
				"total_invoiced":     breakdown.TotalInvoiced.StringFixed(2),
			}, nil
		},
	})
	if err != nil {
		return domain.BillingRequest{}, err
	}

	s.notifier.NotifyUser(ctx, record.CreatedBy, events.EventRequestCalculated, eventPayload(record))
	return record, nil
}

func (s *Service) Approve(ctx context.Context, id snowflake.ID) (domain.BillingRequest, error) {
	record, err := s.transition(ctx, id, transitionSpec{
		from:         domain.StateCalculated,
		to:           domain.StateApprovedByClient,
		requireOwner: true,
	})
	if err != nil {
		return domain.BillingRequest{}, err
	}

	s.notifier.NotifyRole(ctx, tenantctx.RoleAdmin, events.EventRequestApproved, eventPayload(record))
	return record, nil
}

func (s *Service) Invoice(ctx context.Context, id snowflake.ID) (domain.BillingRequest, error) {
	record, err := s.transition(ctx, id, transitionSpec{
		from: domain.StateApprovedByClient,
		to:   domain.StateInvoiced,
	})
	if err != nil {
		return domain.BillingRequest{}, err
	}

	s.fireFirstInvoice(ctx, record)
	s.notifier.NotifyUser(ctx, record.CreatedBy, events.EventRequestInvoiced, eventPayload(record))
	return record, nil
}

func (s *Service) Pay(ctx context.Context, id snowflake.ID) (domain.BillingRequest, error) {
	record, err := s.transition(ctx, id, transitionSpec{
		from:         domain.StateInvoiced,
		to:           domain.StatePaid,
		requireOwner: true,
	})
	if err != nil {
		return domain.BillingRequest{}, err
	}

	s.notifier.NotifyRole(ctx, tenantctx.RoleAdmin, events.EventRequestPaid, eventPayload(record))
	return record, nil
}

func (s *Service) Complete(ctx context.Context, id snowflake.ID) (domain.BillingRequest, error) {
	record, err := s.transition(ctx, id, transitionSpec{
		from: domain.StatePaid,
		to:   domain.StateCompleted,
	})
	if err != nil {
		return domain.BillingRequest{}, err
	}

	// Re-fired on purpose; the collaborator is idempotent.
	s.fireFirstInvoice(ctx, record)
	s.notifier.NotifyUser(ctx, record.CreatedBy, events.EventRequestCompleted, eventPayload(record))
	return record, nil
}

func (s *Service) Fail(ctx context.Context, id snowflake.ID) (domain.BillingRequest, error) {
	record, err := s.transition(ctx, id, transitionSpec{
		fromAnyNonTerminal: true,
		to:                 domain.StateError,
	})
	if err != nil {
		return domain.BillingRequest{}, err
	}

	s.notifier.NotifyUser(ctx, record.CreatedBy, events.EventRequestFailed, eventPayload(record))
	s.notifier.NotifyRole(ctx, tenantctx.RoleAdmin, events.EventRequestFailed, eventPayload(record))
	return record, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.BillingRequest, error) {
	actor, ok := tenantctx.ActorFromContext(ctx)
	if !ok {
		return domain.BillingRequest{}, domain.ErrMissingActor
	}

	record, err := s.load(ctx, id)
	if err != nil {
		return domain.BillingRequest{}, err
	}
	if !actor.IsAdmin() {
		if err := s.checkOwnership(ctx, actor, record); err != nil {
			return domain.BillingRequest{}, err
		}
	}
	return record, nil
}

func (s *Service) FindByCompany(ctx context.Context, companyID snowflake.ID) ([]domain.BillingRequest, error) {
	actor, ok := tenantctx.ActorFromContext(ctx)
	if !ok {
		return nil, domain.ErrMissingActor
	}
	if !actor.IsAdmin() {
		ownCompany, err := s.actorCompany(ctx, actor)
		if err != nil {
			return nil, err
		}
		if companyID == 0 {
			companyID = ownCompany
		}
		if ownCompany != companyID {
			return nil, domain.ErrOwnership
		}
	}

	var records []domain.BillingRequest
	err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list by company: %v", domain.ErrDependency, err)
	}
	return records, nil
}

func (s *Service) FindAll(ctx context.Context) ([]domain.BillingRequest, error) {
	actor, ok := tenantctx.ActorFromContext(ctx)
	if !ok {
		return nil, domain.ErrMissingActor
	}
	if !actor.IsAdmin() {
		return nil, domain.ErrOwnership
	}

	var records []domain.BillingRequest
	err := s.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list all: %v", domain.ErrDependency, err)
	}
	return records, nil
}

// transitionSpec describes one edge of the state machine.
type transitionSpec struct {
	from               domain.State
	fromAnyNonTerminal bool
	to                 domain.State
	requireOwner       bool
	// systemActor records the audit entry without an actor, for
	// transitions the system drives.
	systemActor bool
	// mutate may add fields to the conditional update, e.g. the fiscal
	// breakdown written during calculation. Whatever it returns lands
	// on the audit entry as metadata.
	mutate func(rec domain.BillingRequest, updates map[string]any) (datatypes.JSONMap, error)
}

// transition performs one atomic read-check-write: read the current state,
// verify the precondition, conditionally update, append the audit entry in
// the same transaction. A lost race surfaces as ErrConflict, never as a
// silent overwrite.
func (s *Service) transition(ctx context.Context, id snowflake.ID, spec transitionSpec) (domain.BillingRequest, error) {
	actor, ok := tenantctx.ActorFromContext(ctx)
	if !ok && !spec.systemActor {
		return domain.BillingRequest{}, domain.ErrMissingActor
	}

	record, err := s.load(ctx, id)
	if err != nil {
		return domain.BillingRequest{}, err
	}

	observed := record.State
	if spec.fromAnyNonTerminal {
		if observed.Terminal() {
			return domain.BillingRequest{}, fmt.Errorf("%w: %s is terminal", domain.ErrInvalidTransition, observed)
		}
	} else if observed != spec.from {
		return domain.BillingRequest{}, fmt.Errorf("%w: %s -> %s requires %s",
			domain.ErrInvalidTransition, observed, spec.to, spec.from)
	}

	if spec.requireOwner && !actor.IsAdmin() {
		if err := s.checkOwnership(ctx, actor, record); err != nil {
			return domain.BillingRequest{}, err
		}
	}

	now := s.clock.Now()
	updates := map[string]any{
		"state":      spec.to,
		"updated_at": now,
	}
	var metadata datatypes.JSONMap
	if spec.mutate != nil {
		metadata, err = spec.mutate(record, updates)
		if err != nil {
			return domain.BillingRequest{}, err
		}
	}

	if s.raceHook != nil {
		s.raceHook()
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.BillingRequest{}).
			Where("id = ? AND state = ?", id, observed).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("%w: update request: %v", domain.ErrDependency, res.Error)
		}
		if res.RowsAffected == 0 {
			// The precondition held at read time; a concurrent
			// transition won the write.
			return domain.ErrConflict
		}

		entry := &auditdomain.AuditEntry{
			RequestID: id,
			FromState: stateRef(observed),
			ToState:   string(spec.to),
			Metadata:  metadata,
		}
		if !spec.systemActor {
			entry.Actor = actorRef(actor.ID)
		}
		return s.auditSvc.Append(ctx, tx, entry)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.TransitionConflictsTotal.Inc()
		}
		return domain.BillingRequest{}, err
	}

	metrics.TransitionsTotal.WithLabelValues(string(spec.to)).Inc()
	s.log.Info("billing request transitioned",
		zap.String("request_id", id.String()),
		zap.String("from_state", string(observed)),
		zap.String("to_state", string(spec.to)),
	)

	return s.load(ctx, id)
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (domain.BillingRequest, error) {
	var record domain.BillingRequest
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BillingRequest{}, domain.ErrNotFound
		}
		return domain.BillingRequest{}, fmt.Errorf("%w: load request: %v", domain.ErrDependency, err)
	}
	return record, nil
}

// resolveCompany picks the company a new request belongs to. An explicit id
// must match the actor's own company unless the actor is an admin; without
// one, the actor's membership decides.
func (s *Service) resolveCompany(ctx context.Context, actor tenantctx.Actor, explicit *snowflake.ID) (snowflake.ID, error) {
	if explicit != nil && *explicit != 0 {
		if actor.IsAdmin() {
			return *explicit, nil
		}
		ownCompany, err := s.actorCompany(ctx, actor)
		if err != nil {
			return 0, err
		}
		if ownCompany != *explicit {
			return 0, domain.ErrOwnership
		}
		return *explicit, nil
	}
	return s.actorCompany(ctx, actor)
}

func (s *Service) actorCompany(ctx context.Context, actor tenantctx.Actor) (snowflake.ID, error) {
	if actor.CompanyID != 0 {
		return actor.CompanyID, nil
	}
	companyID, err := s.companies.CompanyForUser(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, companydomain.ErrNoMembership) {
			return 0, fmt.Errorf("%w: actor %s has no company", domain.ErrOwnership, actor.ID)
		}
		return 0, fmt.Errorf("%w: membership lookup: %v", domain.ErrDependency, err)
	}
	return companyID, nil
}

func (s *Service) checkOwnership(ctx context.Context, actor tenantctx.Actor, record domain.BillingRequest) error {
	ownCompany, err := s.actorCompany(ctx, actor)
	if err != nil {
		return err
	}
	if ownCompany != record.CompanyID {
		return domain.ErrOwnership
	}
	return nil
}

// fireFirstInvoice runs the gamification hook after the transition has
// committed. A hook failure is logged, not propagated: the collaborator is
// idempotent and the completion transition fires it again.
func (s *Service) fireFirstInvoice(ctx context.Context, record domain.BillingRequest) {
	if err := s.gamification.HandleFirstInvoice(ctx, record.CreatedBy); err != nil {
		s.log.Warn("first-invoice hook failed",
			zap.String("request_id", record.ID.String()),
			zap.String("user_id", record.CreatedBy),
			zap.Error(err),
		)
	}
}

func eventPayload(record domain.BillingRequest) map[string]any {
	payload := map[string]any{
		"request_id":       record.ID.String(),
		"company_id":       record.CompanyID.String(),
		"platform":         record.Platform,
		"state":            string(record.State),
		"requested_amount": record.RequestedAmount.StringFixed(2),
	}
	if record.TotalInvoiced.Valid {
		payload["total_invoiced"] = record.TotalInvoiced.Decimal.StringFixed(2)
	}
	return payload
}

func stateRef(s domain.State) *string {
	v := string(s)
	return &v
}

func actorRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
