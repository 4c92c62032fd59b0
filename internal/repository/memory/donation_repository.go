package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/repository/specification"

	"github.com/google/uuid"
)

// DonationRepository is an in-memory ledger with the same compare-and-swap
// semantics as the GORM implementation. It backs the reconciliation engine
// tests, so the guard behavior here must match storage exactly: losers of
// a transition race observe applied=false and write nothing.
type DonationRepository struct {
	mu     sync.RWMutex
	rows   map[uuid.UUID]*entity.Donation
	events map[uuid.UUID][]*entity.DonationEvent
	tokens map[string]uuid.UUID
}

func NewDonationRepository() *DonationRepository {
	return &DonationRepository{
		rows:   make(map[uuid.UUID]*entity.Donation),
		events: make(map[uuid.UUID][]*entity.DonationEvent),
		tokens: make(map[string]uuid.UUID),
	}
}

func (r *DonationRepository) Create(ctx context.Context, donation *entity.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if donation.Id == uuid.Nil {
		donation.Id = uuid.New()
	}
	now := time.Now()
	if donation.CreatedAt.IsZero() {
		donation.CreatedAt = now
	}
	donation.UpdatedAt = now
	cp := *donation
	r.rows[donation.Id] = &cp
	return nil
}

func (r *DonationRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Donation, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *DonationRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Donation
	for _, d := range r.rows {
		ok, err := matchDonation(d, specs)
		if err != nil {
			return nil, err
		}
		if ok {
			cp := *d
			out = append(out, &cp)
		}
	}
	applyOrdering(out, specs)
	return applyPagination(out, specs), nil
}

func matchDonation(d *entity.Donation, specs []specification.Specification) (bool, error) {
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			if d.Id != spec.ID {
				return false, nil
			}
		case specification.ByReference:
			if d.Reference != spec.Reference {
				return false, nil
			}
		case specification.ByProviderToken:
			if d.ProviderToken == nil || *d.ProviderToken != spec.Token {
				return false, nil
			}
		case specification.ByStatus:
			if string(d.Status) != spec.Status {
				return false, nil
			}
		case specification.ByMethod:
			if string(d.Method) != spec.Method {
				return false, nil
			}
		case specification.OrderBy, specification.Pagination:
			// handled after filtering
		default:
			return false, fmt.Errorf("memory repository: unsupported specification %T", s)
		}
	}
	return true, nil
}

func applyOrdering(rows []*entity.Donation, specs []specification.Specification) {
	for _, s := range specs {
		if ord, ok := s.(specification.OrderBy); ok && ord.Field == "created_at" {
			sort.Slice(rows, func(i, j int) bool {
				if ord.Desc {
					return rows[i].CreatedAt.After(rows[j].CreatedAt)
				}
				return rows[i].CreatedAt.Before(rows[j].CreatedAt)
			})
		}
	}
}

func applyPagination(rows []*entity.Donation, specs []specification.Specification) []*entity.Donation {
	for _, s := range specs {
		if p, ok := s.(specification.Pagination); ok {
			if p.Offset >= len(rows) {
				return nil
			}
			rows = rows[p.Offset:]
			if p.Limit > 0 && p.Limit < len(rows) {
				rows = rows[:p.Limit]
			}
		}
	}
	return rows
}

func (r *DonationRepository) BindProviderToken(ctx context.Context, donationId uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[donationId]
	if !ok {
		return contract.ErrDonationNotFound
	}
	if owner, bound := r.tokens[token]; bound && owner != donationId {
		return contract.ErrTokenConflict
	}
	if d.ProviderToken != nil {
		if *d.ProviderToken == token {
			return nil
		}
		return contract.ErrTokenConflict
	}
	t := token
	d.ProviderToken = &t
	d.UpdatedAt = time.Now()
	r.tokens[token] = donationId
	return nil
}

func (r *DonationRepository) Transition(ctx context.Context, donationId uuid.UUID, from, to entity.DonationStatus, evidence *entity.DonationEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[donationId]
	if !ok {
		return false, contract.ErrDonationNotFound
	}
	if d.Status != from {
		return false, nil
	}
	d.Status = to
	d.UpdatedAt = time.Now()
	if evidence != nil {
		r.appendEventLocked(donationId, evidence)
	}
	return true, nil
}

func (r *DonationRepository) AppendEvent(ctx context.Context, event *entity.DonationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendEventLocked(event.DonationId, event)
	return nil
}

func (r *DonationRepository) appendEventLocked(donationId uuid.UUID, event *entity.DonationEvent) {
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}
	event.DonationId = donationId
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	cp := *event
	r.events[donationId] = append(r.events[donationId], &cp)
}

func (r *DonationRepository) FindEvents(ctx context.Context, donationId uuid.UUID) ([]*entity.DonationEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]*entity.DonationEvent, len(r.events[donationId]))
	for i, e := range r.events[donationId] {
		cp := *e
		events[i] = &cp
	}
	return events, nil
}

func (r *DonationRepository) TotalRaised(ctx context.Context) ([]entity.CurrencyTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byCurrency := make(map[string]int64)
	for _, d := range r.rows {
		if d.Status == entity.DonationStatusCompleted {
			byCurrency[d.Currency] += d.Amount
		}
	}
	var totals []entity.CurrencyTotal
	for cur, amt := range byCurrency {
		totals = append(totals, entity.CurrencyTotal{Currency: cur, Amount: amt})
	}
	return totals, nil
}

func (r *DonationRepository) CountByStatus(ctx context.Context, status entity.DonationStatus) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, d := range r.rows {
		if d.Status == status {
			count++
		}
	}
	return count, nil
}
