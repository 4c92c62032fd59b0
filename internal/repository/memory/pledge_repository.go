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

// PledgeRepository mirrors the GORM pledge repository for tests, including
// the forward-only next-charge guard.
type PledgeRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*entity.RecurringPledge
}

func NewPledgeRepository() *PledgeRepository {
	return &PledgeRepository{rows: make(map[uuid.UUID]*entity.RecurringPledge)}
}

func (r *PledgeRepository) Create(ctx context.Context, pledge *entity.RecurringPledge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pledge.Id == uuid.Nil {
		pledge.Id = uuid.New()
	}
	now := time.Now()
	if pledge.CreatedAt.IsZero() {
		pledge.CreatedAt = now
	}
	pledge.UpdatedAt = now
	cp := *pledge
	r.rows[pledge.Id] = &cp
	return nil
}

func (r *PledgeRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RecurringPledge, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *PledgeRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RecurringPledge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.RecurringPledge
	for _, p := range r.rows {
		ok, err := matchPledge(p, specs)
		if err != nil {
			return nil, err
		}
		if ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	applyPledgeOrdering(out, specs)
	return applyPledgePagination(out, specs), nil
}

func applyPledgeOrdering(rows []*entity.RecurringPledge, specs []specification.Specification) {
	for _, s := range specs {
		if ord, ok := s.(specification.OrderBy); ok {
			sort.Slice(rows, func(i, j int) bool {
				var before bool
				switch ord.Field {
				case "next_charge_date":
					before = rows[i].NextChargeDate.Before(rows[j].NextChargeDate)
				default:
					before = rows[i].CreatedAt.Before(rows[j].CreatedAt)
				}
				if ord.Desc {
					return !before
				}
				return before
			})
		}
	}
}

func applyPledgePagination(rows []*entity.RecurringPledge, specs []specification.Specification) []*entity.RecurringPledge {
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

func matchPledge(p *entity.RecurringPledge, specs []specification.Specification) (bool, error) {
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			if p.Id != spec.ID {
				return false, nil
			}
		case specification.ByStatus:
			if string(p.Status) != spec.Status {
				return false, nil
			}
		case specification.DueOnOrBefore:
			if p.NextChargeDate.After(spec.AsOf) {
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

func (r *PledgeRepository) TransitionStatus(ctx context.Context, pledgeId uuid.UUID, from, to entity.PledgeStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[pledgeId]
	if !ok {
		return false, contract.ErrPledgeNotFound
	}
	if p.Status != from {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *PledgeRepository) AdvanceNextCharge(ctx context.Context, pledgeId uuid.UUID, next time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[pledgeId]
	if !ok {
		return false, contract.ErrPledgeNotFound
	}
	if p.Status != entity.PledgeStatusActive || !next.After(p.NextChargeDate) {
		return false, nil
	}
	p.NextChargeDate = next
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *PledgeRepository) CountByStatus(ctx context.Context, status entity.PledgeStatus) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, p := range r.rows {
		if p.Status == status {
			count++
		}
	}
	return count, nil
}
