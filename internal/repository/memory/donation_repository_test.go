package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingDonation(t *testing.T, repo *DonationRepository, reference string) *entity.Donation {
	t.Helper()
	d := &entity.Donation{
		Id:        uuid.New(),
		Reference: reference,
		Amount:    50000,
		Currency:  "KES",
		Method:    entity.MethodSnap,
		Status:    entity.DonationStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), d))
	return d
}

func TestTransitionCompareAndSwap(t *testing.T) {
	repo := NewDonationRepository()
	ctx := context.Background()
	d := newPendingDonation(t, repo, "DON-20260101000000-AAAAAA")

	applied, err := repo.Transition(ctx, d.Id, entity.DonationStatusPending, entity.DonationStatusCompleted, nil)
	require.NoError(t, err)
	assert.True(t, applied)

	// Guard no longer matches; nothing is written.
	applied, err = repo.Transition(ctx, d.Id, entity.DonationStatusPending, entity.DonationStatusFailed, nil)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.FindOne(ctx, specification.ByID{ID: d.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.DonationStatusCompleted, got.Status)
}

func TestTransitionConcurrentRaceHasOneWinner(t *testing.T) {
	repo := NewDonationRepository()
	ctx := context.Background()
	d := newPendingDonation(t, repo, "DON-20260101000000-BBBBBB")

	const racers = 16
	var wg sync.WaitGroup
	wins := make(chan entity.DonationStatus, racers)

	for i := 0; i < racers; i++ {
		target := entity.DonationStatusCompleted
		if i%2 == 1 {
			target = entity.DonationStatusFailed
		}
		wg.Add(1)
		go func(to entity.DonationStatus) {
			defer wg.Done()
			applied, err := repo.Transition(ctx, d.Id, entity.DonationStatusPending, to, nil)
			if err == nil && applied {
				wins <- to
			}
		}(target)
	}
	wg.Wait()
	close(wins)

	var winners []entity.DonationStatus
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1, "exactly one transition may apply")

	got, err := repo.FindOne(ctx, specification.ByID{ID: d.Id})
	require.NoError(t, err)
	assert.Equal(t, winners[0], got.Status)
}

func TestBindProviderToken(t *testing.T) {
	repo := NewDonationRepository()
	ctx := context.Background()
	first := newPendingDonation(t, repo, "DON-20260101000000-CCCCCC")
	second := newPendingDonation(t, repo, "DON-20260101000000-DDDDDD")

	require.NoError(t, repo.BindProviderToken(ctx, first.Id, "tok-123"))

	// Rebinding the same token to the same donation is idempotent.
	require.NoError(t, repo.BindProviderToken(ctx, first.Id, "tok-123"))

	// The token belongs to exactly one donation.
	err := repo.BindProviderToken(ctx, second.Id, "tok-123")
	assert.True(t, errors.Is(err, contract.ErrTokenConflict))

	// A donation holds exactly one token.
	err = repo.BindProviderToken(ctx, first.Id, "tok-456")
	assert.True(t, errors.Is(err, contract.ErrTokenConflict))

	got, err := repo.FindOne(ctx, specification.ByProviderToken{Token: "tok-123"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.Id, got.Id)
}

func TestFindAllOrderingAndPagination(t *testing.T) {
	repo := NewDonationRepository()
	ctx := context.Background()
	for _, ref := range []string{"DON-A", "DON-B", "DON-C"} {
		newPendingDonation(t, repo, ref)
	}

	rows, err := repo.FindAll(ctx,
		specification.ByStatus{Status: string(entity.DonationStatusPending)},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 2},
	)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i-1].CreatedAt.Before(rows[i].CreatedAt), "expected newest first")
	}
}

func TestTransitionRecordsEvidence(t *testing.T) {
	repo := NewDonationRepository()
	ctx := context.Background()
	d := newPendingDonation(t, repo, "DON-20260101000000-EEEEEE")

	evidence := &entity.DonationEvent{
		Kind:    entity.EventVerifyAPI,
		Actor:   "system",
		Payload: map[string]interface{}{"transaction_status": "settlement"},
	}
	applied, err := repo.Transition(ctx, d.Id, entity.DonationStatusPending, entity.DonationStatusCompleted, evidence)
	require.NoError(t, err)
	require.True(t, applied)

	events, err := repo.FindEvents(ctx, d.Id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventVerifyAPI, events[0].Kind)
	assert.Equal(t, d.Id, events[0].DonationId)
}
