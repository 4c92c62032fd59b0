package contract

import (
	"context"
	"errors"
	"time"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/repository/specification"

	"github.com/google/uuid"
)

var (
	ErrPledgeNotFound = errors.New("pledge not found")
	// ErrInvalidPledgeTransition: the requested change violates the pledge
	// DAG (cancelled is terminal).
	ErrInvalidPledgeTransition = errors.New("invalid pledge status transition")
)

type PledgeRepository interface {
	Create(ctx context.Context, pledge *entity.RecurringPledge) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RecurringPledge, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RecurringPledge, error)

	// TransitionStatus sets status to `to` iff it is still `from`.
	// applied=false, nil error when the guard failed.
	TransitionStatus(ctx context.Context, pledgeId uuid.UUID, from, to entity.PledgeStatus) (bool, error)

	// AdvanceNextCharge moves next_charge_date to `next` iff the pledge is
	// active and `next` is strictly later than the stored date. The date
	// never moves backwards.
	AdvanceNextCharge(ctx context.Context, pledgeId uuid.UUID, next time.Time) (bool, error)

	CountByStatus(ctx context.Context, status entity.PledgeStatus) (int, error)
}
