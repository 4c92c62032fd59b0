package contract

import (
	"context"
	"errors"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/repository/specification"

	"github.com/google/uuid"
)

var (
	ErrDonationNotFound = errors.New("donation not found")
	// ErrTokenConflict: the provider token is already bound to a different
	// donation. Never overwritten; surfaced to the caller.
	ErrTokenConflict = errors.New("provider token already bound to another donation")
	// ErrInvalidTransition: the requested status change violates the
	// donation DAG. The ledger row is left untouched.
	ErrInvalidTransition = errors.New("invalid donation status transition")
)

// DonationRepository is the authoritative ledger store. Transition and
// BindProviderToken are conditional (compare-and-swap) operations: the
// loser of a concurrent race observes applied=false / a conflict instead
// of overwriting the winner.
type DonationRepository interface {
	Create(ctx context.Context, donation *entity.Donation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Donation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Donation, error)

	// BindProviderToken binds token to the donation iff the donation has
	// no token yet (rebinding the identical token is a no-op). Returns
	// ErrTokenConflict when the token belongs elsewhere or the donation
	// already carries a different token.
	BindProviderToken(ctx context.Context, donationId uuid.UUID, token string) error

	// Transition sets status to `to` iff the current status is still
	// `from`, appending evidence in the same atomic unit. applied=false
	// with a nil error means the guard failed (someone else won the race);
	// the caller re-reads and decides.
	Transition(ctx context.Context, donationId uuid.UUID, from, to entity.DonationStatus, evidence *entity.DonationEvent) (bool, error)

	// AppendEvent records audit evidence outside of a transition
	// (initiation payloads, duplicate-delivery notes).
	AppendEvent(ctx context.Context, event *entity.DonationEvent) error
	FindEvents(ctx context.Context, donationId uuid.UUID) ([]*entity.DonationEvent, error)

	// Aggregates for the public impact page.
	TotalRaised(ctx context.Context) ([]entity.CurrencyTotal, error)
	CountByStatus(ctx context.Context, status entity.DonationStatus) (int, error)
}
