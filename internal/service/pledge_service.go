package service

import (
	"context"
	"encoding/json"
	"time"

	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/pkg/logger"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/repository/specification"

	"github.com/google/uuid"
)

// IPledgeService manages recurring-donation agreements. Charging is
// triggered externally (DueForCharge + AdvanceAfterCharge); the service
// never contacts a payment provider itself.
type IPledgeService interface {
	Create(ctx context.Context, req *dto.CreatePledgeRequest) (*entity.RecurringPledge, error)
	FindById(ctx context.Context, id uuid.UUID) (*entity.RecurringPledge, error)
	Pause(ctx context.Context, id uuid.UUID) (*entity.RecurringPledge, error)
	Resume(ctx context.Context, id uuid.UUID) (*entity.RecurringPledge, error)
	Cancel(ctx context.Context, id uuid.UUID) (*entity.RecurringPledge, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.RecurringPledge, error)
	DueForCharge(ctx context.Context, asOf time.Time) ([]*entity.RecurringPledge, error)
	AdvanceAfterCharge(ctx context.Context, id uuid.UUID, chargedAt time.Time) error
}

type pledgeService struct {
	repo      contract.PledgeRepository
	publisher IPublisherService
	logger    logger.ILogger
}

func NewPledgeService(repo contract.PledgeRepository, publisher IPublisherService, log logger.ILogger) IPledgeService {
	return &pledgeService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

func (s *pledgeService) Create(ctx context.Context, req *dto.CreatePledgeRequest) (*entity.RecurringPledge, error) {
	now := time.Now()
	pledge := &entity.RecurringPledge{
		Id:         uuid.New(),
		DonorEmail: req.DonorEmail,
		DonorName:  req.DonorName,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Frequency:  entity.PledgeFrequency(req.Frequency),
		Status:     entity.PledgeStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	pledge.NextChargeDate = pledge.NextInterval(now)

	if err := s.repo.Create(ctx, pledge); err != nil {
		return nil, err
	}
	s.publishLifecycle(ctx, pledge, "created")
	return pledge, nil
}

func (s *pledgeService) FindById(ctx context.Context, id uuid.UUID) (*entity.RecurringPledge, error) {
	return s.repo.FindOne(ctx, specification.ByID{ID: id})
}

func (s *pledgeService) Pause(ctx context.Context, id uuid.UUID) (*entity.RecurringPledge, error) {
	return s.transition(ctx, id, entity.PledgeStatusPaused, "paused")
}

func (s *pledgeService) Resume(ctx context.Context, id uuid.UUID) (*entity.RecurringPledge, error) {
	return s.transition(ctx, id, entity.PledgeStatusActive, "resumed")
}

func (s *pledgeService) Cancel(ctx context.Context, id uuid.UUID) (*entity.RecurringPledge, error) {
	return s.transition(ctx, id, entity.PledgeStatusCancelled, "cancelled")
}

// transition applies the pledge DAG with the same no-op-on-repeat contract
// as the donation ledger: asking for the status a pledge already has
// succeeds without a write.
func (s *pledgeService) transition(ctx context.Context, id uuid.UUID, to entity.PledgeStatus, action string) (*entity.RecurringPledge, error) {
	pledge, err := s.repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if pledge == nil {
		return nil, contract.ErrPledgeNotFound
	}
	if pledge.Status == to {
		return pledge, nil
	}
	if !pledge.Status.CanTransitionTo(to) {
		return nil, contract.ErrInvalidPledgeTransition
	}

	applied, err := s.repo.TransitionStatus(ctx, id, pledge.Status, to)
	if err != nil {
		return nil, err
	}
	if !applied {
		pledge, err = s.repo.FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return nil, err
		}
		if pledge != nil && pledge.Status == to {
			return pledge, nil
		}
		return nil, contract.ErrInvalidPledgeTransition
	}

	pledge.Status = to
	s.publishLifecycle(ctx, pledge, action)
	return pledge, nil
}

func (s *pledgeService) List(ctx context.Context, status string, limit, offset int) ([]*entity.RecurringPledge, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}
	return s.repo.FindAll(ctx, specs...)
}

// DueForCharge lists active pledges whose next charge date has arrived.
func (s *pledgeService) DueForCharge(ctx context.Context, asOf time.Time) ([]*entity.RecurringPledge, error) {
	return s.repo.FindAll(ctx,
		specification.ByStatus{Status: string(entity.PledgeStatusActive)},
		specification.DueOnOrBefore{AsOf: asOf},
		specification.OrderBy{Field: "next_charge_date"},
	)
}

// AdvanceAfterCharge moves the schedule past a settled charge. Catches up
// across missed intervals so a delayed trigger never double-charges the
// same period.
func (s *pledgeService) AdvanceAfterCharge(ctx context.Context, id uuid.UUID, chargedAt time.Time) error {
	pledge, err := s.repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if pledge == nil {
		return contract.ErrPledgeNotFound
	}
	if pledge.Status != entity.PledgeStatusActive {
		return contract.ErrInvalidPledgeTransition
	}

	next := pledge.NextInterval(pledge.NextChargeDate)
	for !next.After(chargedAt) {
		next = pledge.NextInterval(next)
	}

	applied, err := s.repo.AdvanceNextCharge(ctx, id, next)
	if err != nil {
		return err
	}
	if !applied {
		// Already advanced at least this far by a concurrent trigger.
		s.logger.Warn("PledgeService", "Next charge date already advanced", map[string]interface{}{
			"pledge_id": id.String(),
		})
	}
	return nil
}

func (s *pledgeService) publishLifecycle(ctx context.Context, pledge *entity.RecurringPledge, action string) {
	msg := dto.PledgeLifecycleMessage{
		PledgeId:   pledge.Id.String(),
		Action:     action,
		DonorEmail: pledge.DonorEmail,
		DonorName:  pledge.DonorName,
		Amount:     pledge.Amount,
		Currency:   pledge.Currency,
		Frequency:  string(pledge.Frequency),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("PledgeService", "Failed to marshal lifecycle message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Error("PledgeService", "Failed to publish pledge lifecycle", map[string]interface{}{
			"pledge_id": pledge.Id.String(),
			"error":     err.Error(),
		})
	}
}
