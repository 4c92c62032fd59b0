package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/repository/specification"

	"github.com/google/uuid"
)

// TransitionResult reports whether the transition was actually applied.
// Applied=false with a nil error is the idempotent no-op: the donation was
// already in the requested status.
type TransitionResult struct {
	Applied  bool
	Donation *entity.Donation
}

// ILedgerService is the authoritative donation ledger (single source of
// truth). All mutation funnels through Transition and BindProviderToken,
// both backed by storage-level compare-and-swap.
type ILedgerService interface {
	Create(ctx context.Context, donation *entity.Donation) (*entity.Donation, error)
	FindByReference(ctx context.Context, reference string) (*entity.Donation, error)
	FindByProviderToken(ctx context.Context, token string) (*entity.Donation, error)
	FindById(ctx context.Context, id uuid.UUID) (*entity.Donation, error)
	BindProviderToken(ctx context.Context, donationId uuid.UUID, token string) error
	Transition(ctx context.Context, donationId uuid.UUID, to entity.DonationStatus, evidence *entity.DonationEvent) (*TransitionResult, error)
	AppendEvent(ctx context.Context, event *entity.DonationEvent) error
	Events(ctx context.Context, donationId uuid.UUID) ([]*entity.DonationEvent, error)
	RecentPending(ctx context.Context, method entity.PaymentMethod, limit int) ([]*entity.Donation, error)
	List(ctx context.Context, status, method string, limit, offset int) ([]*entity.Donation, error)
}

type ledgerService struct {
	repo contract.DonationRepository
}

func NewLedgerService(repo contract.DonationRepository) ILedgerService {
	return &ledgerService{repo: repo}
}

// newReference issues the donor-facing correlation handle. Issued at
// creation, before any provider contact, and immutable afterwards.
func newReference(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("DON-%s-%s", now.UTC().Format("20060102150405"), suffix)
}

func (s *ledgerService) Create(ctx context.Context, donation *entity.Donation) (*entity.Donation, error) {
	now := time.Now()
	if donation.Id == uuid.Nil {
		donation.Id = uuid.New()
	}
	donation.Reference = newReference(now)
	donation.Status = entity.DonationStatusPending
	donation.CreatedAt = now
	donation.UpdatedAt = now
	if err := s.repo.Create(ctx, donation); err != nil {
		return nil, err
	}
	return donation, nil
}

func (s *ledgerService) FindByReference(ctx context.Context, reference string) (*entity.Donation, error) {
	return s.repo.FindOne(ctx, specification.ByReference{Reference: reference})
}

func (s *ledgerService) FindByProviderToken(ctx context.Context, token string) (*entity.Donation, error) {
	return s.repo.FindOne(ctx, specification.ByProviderToken{Token: token})
}

func (s *ledgerService) FindById(ctx context.Context, id uuid.UUID) (*entity.Donation, error) {
	return s.repo.FindOne(ctx, specification.ByID{ID: id})
}

func (s *ledgerService) BindProviderToken(ctx context.Context, donationId uuid.UUID, token string) error {
	return s.repo.BindProviderToken(ctx, donationId, token)
}

// Transition enforces the DAG and resolves races. Re-applying the status a
// donation already has is a no-op success; anything the DAG forbids is
// ErrInvalidTransition with the ledger untouched.
func (s *ledgerService) Transition(ctx context.Context, donationId uuid.UUID, to entity.DonationStatus, evidence *entity.DonationEvent) (*TransitionResult, error) {
	donation, err := s.FindById(ctx, donationId)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, contract.ErrDonationNotFound
	}
	if donation.Status == to {
		return &TransitionResult{Applied: false, Donation: donation}, nil
	}
	if !donation.Status.CanTransitionTo(to) {
		return nil, contract.ErrInvalidTransition
	}

	applied, err := s.repo.Transition(ctx, donationId, donation.Status, to, evidence)
	if err != nil {
		return nil, err
	}
	if applied {
		donation.Status = to
		return &TransitionResult{Applied: true, Donation: donation}, nil
	}

	// Lost the race. Re-read once: the winner either applied the same
	// outcome (no-op) or a conflicting one (invalid from here).
	donation, err = s.FindById(ctx, donationId)
	if err != nil {
		return nil, err
	}
	if donation != nil && donation.Status == to {
		return &TransitionResult{Applied: false, Donation: donation}, nil
	}
	return nil, contract.ErrInvalidTransition
}

func (s *ledgerService) AppendEvent(ctx context.Context, event *entity.DonationEvent) error {
	return s.repo.AppendEvent(ctx, event)
}

func (s *ledgerService) Events(ctx context.Context, donationId uuid.UUID) ([]*entity.DonationEvent, error) {
	return s.repo.FindEvents(ctx, donationId)
}

// RecentPending is the bounded window the fallback matcher is allowed to
// scan: the last `limit` pending donations of one rail, newest first.
func (s *ledgerService) RecentPending(ctx context.Context, method entity.PaymentMethod, limit int) ([]*entity.Donation, error) {
	return s.repo.FindAll(ctx,
		specification.ByStatus{Status: string(entity.DonationStatusPending)},
		specification.ByMethod{Method: string(method)},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
}

func (s *ledgerService) List(ctx context.Context, status, method string, limit, offset int) ([]*entity.Donation, error) {
	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}
	if method != "" {
		specs = append(specs, specification.ByMethod{Method: method})
	}
	return s.repo.FindAll(ctx, specs...)
}
