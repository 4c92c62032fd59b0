package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPledgeFixture() (IPledgeService, *memory.PledgeRepository, *capturePublisher) {
	repo := memory.NewPledgeRepository()
	publisher := &capturePublisher{}
	return NewPledgeService(repo, publisher, nopLogger{}), repo, publisher
}

func createMonthlyPledge(t *testing.T, svc IPledgeService) *entity.RecurringPledge {
	t.Helper()
	pledge, err := svc.Create(context.Background(), &dto.CreatePledgeRequest{
		Amount:     50000,
		Currency:   "KES",
		Frequency:  "monthly",
		DonorEmail: "donor@example.org",
		DonorName:  "Asha Mwangi",
	})
	require.NoError(t, err)
	return pledge
}

func TestCreatePledgeSchedulesFirstCharge(t *testing.T) {
	svc, _, publisher := newPledgeFixture()
	pledge := createMonthlyPledge(t, svc)

	assert.Equal(t, entity.PledgeStatusActive, pledge.Status)
	assert.True(t, pledge.NextChargeDate.After(time.Now()), "first charge is one interval out")
	assert.Equal(t, 1, publisher.count(), "creation publishes a lifecycle message")
}

func TestPledgeLifecycleTransitions(t *testing.T) {
	svc, _, _ := newPledgeFixture()
	ctx := context.Background()
	pledge := createMonthlyPledge(t, svc)

	paused, err := svc.Pause(ctx, pledge.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.PledgeStatusPaused, paused.Status)

	resumed, err := svc.Resume(ctx, pledge.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.PledgeStatusActive, resumed.Status)

	cancelled, err := svc.Cancel(ctx, pledge.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.PledgeStatusCancelled, cancelled.Status)

	// Cancellation is terminal.
	_, err = svc.Resume(ctx, pledge.Id)
	assert.True(t, errors.Is(err, contract.ErrInvalidPledgeTransition))
}

func TestPledgeRepeatTransitionIsNoOp(t *testing.T) {
	svc, _, publisher := newPledgeFixture()
	ctx := context.Background()
	pledge := createMonthlyPledge(t, svc)

	_, err := svc.Pause(ctx, pledge.Id)
	require.NoError(t, err)
	before := publisher.count()

	again, err := svc.Pause(ctx, pledge.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.PledgeStatusPaused, again.Status)
	assert.Equal(t, before, publisher.count(), "repeat pause publishes nothing")
}

func TestPledgeLifecycleUnknownId(t *testing.T) {
	svc, _, _ := newPledgeFixture()
	_, err := svc.Pause(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, contract.ErrPledgeNotFound))
}

func TestDueForCharge(t *testing.T) {
	svc, repo, _ := newPledgeFixture()
	ctx := context.Background()
	now := time.Now()

	due := &entity.RecurringPledge{
		Id:             uuid.New(),
		DonorEmail:     "due@example.org",
		Amount:         10000,
		Currency:       "KES",
		Frequency:      entity.FrequencyMonthly,
		Status:         entity.PledgeStatusActive,
		NextChargeDate: now.Add(-time.Hour),
	}
	require.NoError(t, repo.Create(ctx, due))

	notYet := &entity.RecurringPledge{
		Id:             uuid.New(),
		DonorEmail:     "later@example.org",
		Amount:         10000,
		Currency:       "KES",
		Frequency:      entity.FrequencyMonthly,
		Status:         entity.PledgeStatusActive,
		NextChargeDate: now.AddDate(0, 0, 10),
	}
	require.NoError(t, repo.Create(ctx, notYet))

	paused := &entity.RecurringPledge{
		Id:             uuid.New(),
		DonorEmail:     "paused@example.org",
		Amount:         10000,
		Currency:       "KES",
		Frequency:      entity.FrequencyMonthly,
		Status:         entity.PledgeStatusPaused,
		NextChargeDate: now.Add(-time.Hour),
	}
	require.NoError(t, repo.Create(ctx, paused))

	got, err := svc.DueForCharge(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, due.Id, got[0].Id)
}

func TestAdvanceAfterChargeCatchesUpMissedIntervals(t *testing.T) {
	svc, repo, _ := newPledgeFixture()
	ctx := context.Background()

	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	pledge := &entity.RecurringPledge{
		Id:             uuid.New(),
		DonorEmail:     "late@example.org",
		Amount:         10000,
		Currency:       "KES",
		Frequency:      entity.FrequencyMonthly,
		Status:         entity.PledgeStatusActive,
		NextChargeDate: start,
	}
	require.NoError(t, repo.Create(ctx, pledge))

	// The trigger fired three months late. The schedule jumps past the
	// charge date instead of queueing the missed months.
	chargedAt := start.AddDate(0, 3, 1)
	require.NoError(t, svc.AdvanceAfterCharge(ctx, pledge.Id, chargedAt))

	got, err := svc.FindById(ctx, pledge.Id)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 4, 0), got.NextChargeDate)
}

func TestAdvanceAfterChargeRequiresActivePledge(t *testing.T) {
	svc, _, _ := newPledgeFixture()
	ctx := context.Background()
	pledge := createMonthlyPledge(t, svc)

	_, err := svc.Cancel(ctx, pledge.Id)
	require.NoError(t, err)

	err = svc.AdvanceAfterCharge(ctx, pledge.Id, time.Now())
	assert.True(t, errors.Is(err, contract.ErrInvalidPledgeTransition))
}
