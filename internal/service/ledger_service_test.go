package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerFixture() (ILedgerService, *memory.DonationRepository) {
	repo := memory.NewDonationRepository()
	return NewLedgerService(repo), repo
}

func TestCreateIssuesReference(t *testing.T) {
	ledger, _ := newLedgerFixture()
	ctx := context.Background()

	d, err := ledger.Create(ctx, &entity.Donation{
		Amount:     100000,
		Currency:   "KES",
		DonorEmail: "donor@example.org",
		Method:     entity.MethodBank,
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^DON-\d{14}-[0-9A-F]{6}$`), d.Reference)
	assert.Equal(t, entity.DonationStatusPending, d.Status)
	assert.NotEqual(t, uuid.Nil, d.Id)

	// The reference round-trips as the donor-facing lookup handle.
	got, err := ledger.FindByReference(ctx, d.Reference)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, d.Id, got.Id)
}

func TestTransitionSameStatusIsNoOp(t *testing.T) {
	ledger, repo := newLedgerFixture()
	ctx := context.Background()

	d, err := ledger.Create(ctx, &entity.Donation{Amount: 100, Currency: "KES", Method: entity.MethodSnap})
	require.NoError(t, err)

	applied, err := repo.Transition(ctx, d.Id, entity.DonationStatusPending, entity.DonationStatusCompleted, nil)
	require.NoError(t, err)
	require.True(t, applied)

	res, err := ledger.Transition(ctx, d.Id, entity.DonationStatusCompleted, nil)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, entity.DonationStatusCompleted, res.Donation.Status)
}

func TestTransitionRejectsForbiddenEdge(t *testing.T) {
	ledger, _ := newLedgerFixture()
	ctx := context.Background()

	d, err := ledger.Create(ctx, &entity.Donation{Amount: 100, Currency: "KES", Method: entity.MethodSnap})
	require.NoError(t, err)

	// pending -> refunded skips completion.
	_, err = ledger.Transition(ctx, d.Id, entity.DonationStatusRefunded, nil)
	assert.True(t, errors.Is(err, contract.ErrInvalidTransition))

	got, err := ledger.FindById(ctx, d.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.DonationStatusPending, got.Status)
}

func TestTransitionUnknownDonation(t *testing.T) {
	ledger, _ := newLedgerFixture()
	_, err := ledger.Transition(context.Background(), uuid.New(), entity.DonationStatusCompleted, nil)
	assert.True(t, errors.Is(err, contract.ErrDonationNotFound))
}

func TestRecentPendingFiltersByRail(t *testing.T) {
	ledger, repo := newLedgerFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := ledger.Create(ctx, &entity.Donation{Amount: 100, Currency: "KES", Method: entity.MethodSnap})
		require.NoError(t, err)
	}
	other, err := ledger.Create(ctx, &entity.Donation{Amount: 100, Currency: "KES", Method: entity.MethodMpesa})
	require.NoError(t, err)

	// A settled donation leaves the pending window.
	settled, err := ledger.Create(ctx, &entity.Donation{Amount: 100, Currency: "KES", Method: entity.MethodSnap})
	require.NoError(t, err)
	applied, err := repo.Transition(ctx, settled.Id, entity.DonationStatusPending, entity.DonationStatusFailed, nil)
	require.NoError(t, err)
	require.True(t, applied)

	pending, err := ledger.RecentPending(ctx, entity.MethodSnap, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
	for _, d := range pending {
		assert.Equal(t, entity.MethodSnap, d.Method)
		assert.NotEqual(t, other.Id, d.Id)
	}
}
