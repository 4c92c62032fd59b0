package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/gateway"
	"tumaini-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconcileFixture struct {
	repo      *memory.DonationRepository
	ledger    ILedgerService
	gw        *stubGateway
	publisher *capturePublisher
	engine    IReconcileService
}

func newReconcileFixture(t *testing.T, gw *stubGateway, fallbackWindow int) *reconcileFixture {
	t.Helper()
	repo := memory.NewDonationRepository()
	ledger := NewLedgerService(repo)
	publisher := &capturePublisher{}
	engine := NewReconcileService(
		ledger,
		gateway.NewRegistry(gw),
		publisher,
		nopLogger{},
		fallbackWindow,
		2*time.Second,
	)
	return &reconcileFixture{repo: repo, ledger: ledger, gw: gw, publisher: publisher, engine: engine}
}

// seedPending plants a pending donation with a controlled reference and age.
func (f *reconcileFixture) seedPending(t *testing.T, reference string, age time.Duration) *entity.Donation {
	t.Helper()
	d := &entity.Donation{
		Id:         uuid.New(),
		Reference:  reference,
		Amount:     250000,
		Currency:   "KES",
		DonorEmail: "donor@example.org",
		Method:     f.gw.method,
		Status:     entity.DonationStatusPending,
		CreatedAt:  time.Now().Add(-age),
	}
	require.NoError(t, f.repo.Create(context.Background(), d))
	return d
}

func TestProcessIsIdempotentAcrossRedeliveries(t *testing.T) {
	gw := &stubGateway{
		method:       entity.MethodSnap,
		verifyResult: &gateway.VerificationResult{Success: true, Raw: map[string]interface{}{"transaction_status": "settlement"}},
	}
	f := newReconcileFixture(t, gw, 10)
	ctx := context.Background()
	d := f.seedPending(t, "DON-20260801120000-A1B2C3", time.Minute)

	signal := &ProviderSignal{
		Gateway:        entity.MethodSnap,
		Reference:      d.Reference,
		ClaimedOutcome: "success",
	}

	res, err := f.engine.Process(ctx, signal)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, entity.DonationStatusCompleted, res.Donation.Status)

	// The provider retries. Every redelivery acknowledges without moving
	// the ledger or emitting another notification.
	for i := 0; i < 5; i++ {
		res, err = f.engine.Process(ctx, signal)
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Equal(t, entity.DonationStatusCompleted, res.Donation.Status)
	}
	assert.Equal(t, 1, f.publisher.count())

	events, err := f.ledger.Events(ctx, d.Id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventVerifyAPI, events[0].Kind)
}

func TestProcessBindsProviderToken(t *testing.T) {
	gw := &stubGateway{
		method:       entity.MethodSnap,
		verifyResult: &gateway.VerificationResult{Success: true},
	}
	f := newReconcileFixture(t, gw, 10)
	ctx := context.Background()
	d := f.seedPending(t, "DON-20260801120000-D4E5F6", time.Minute)

	_, err := f.engine.Process(ctx, &ProviderSignal{
		Gateway:       entity.MethodSnap,
		Reference:     d.Reference,
		ProviderToken: "snap-token-789",
	})
	require.NoError(t, err)

	got, err := f.ledger.FindByProviderToken(ctx, "snap-token-789")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, d.Id, got.Id)
}

func TestProcessFallbackMatchIsBounded(t *testing.T) {
	gw := &stubGateway{
		method:       entity.MethodSnap,
		verifyResult: &gateway.VerificationResult{Success: true},
	}
	f := newReconcileFixture(t, gw, 25)
	ctx := context.Background()

	// A 50-deep pending pool: 25 older donations pushed outside the scan
	// window by 25 newer ones.
	for i := 0; i < 25; i++ {
		f.seedPending(t, fmt.Sprintf("DON-20260701000000-STALE%02d", i), 48*time.Hour+time.Duration(i)*time.Minute)
		f.seedPending(t, fmt.Sprintf("DON-20260801000000-FRESH%02d", i), time.Duration(i)*time.Minute)
	}

	// A stale reference fragment is out of scan range even when it would
	// match uniquely.
	_, err := f.engine.Process(ctx, &ProviderSignal{
		Gateway:  entity.MethodSnap,
		Fragment: "STALE07",
	})
	assert.True(t, errors.Is(err, ErrUnresolvedSignal))

	// A unique fragment inside the window resolves.
	res, err := f.engine.Process(ctx, &ProviderSignal{
		Gateway:        entity.MethodSnap,
		Fragment:       "FRESH07",
		ClaimedOutcome: "success",
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Contains(t, res.Donation.Reference, "FRESH07")
}

func TestProcessFallbackAbstainsOnAmbiguity(t *testing.T) {
	gw := &stubGateway{
		method:       entity.MethodSnap,
		verifyResult: &gateway.VerificationResult{Success: true},
	}
	f := newReconcileFixture(t, gw, 10)
	ctx := context.Background()

	f.seedPending(t, "DON-20260801000000-TWIN-A", 2*time.Minute)
	f.seedPending(t, "DON-20260801000000-TWIN-B", time.Minute)

	_, err := f.engine.Process(ctx, &ProviderSignal{
		Gateway:  entity.MethodSnap,
		Fragment: "TWIN",
	})
	assert.True(t, errors.Is(err, ErrAmbiguousMatch))
	assert.Equal(t, 0, f.publisher.count())
}

func TestProcessResolvesMpesaCallbackWithoutCheckoutRequestID(t *testing.T) {
	gw := &stubGateway{
		method:       entity.MethodMpesa,
		verifyResult: &gateway.VerificationResult{Success: true},
	}
	f := newReconcileFixture(t, gw, 25)
	ctx := context.Background()
	d := f.seedPending(t, "DON-20260801160000-S1T2U3", time.Minute)

	// A callback that lost its CheckoutRequestID still carries the echoed
	// account reference; the fallback matcher correlates it.
	res, err := f.engine.Process(ctx, &ProviderSignal{
		Gateway:        entity.MethodMpesa,
		Reference:      "20260801160000-S1T2U3",
		Fragment:       "20260801160000-S1T2U3",
		ClaimedOutcome: "success",
		ApprovalCode:   "QK91XN55RW",
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, d.Reference, res.Donation.Reference)
	assert.Equal(t, entity.DonationStatusCompleted, res.Donation.Status)
}

func TestProcessLeavesPendingWhenProviderUnavailable(t *testing.T) {
	gw := &stubGateway{
		method:    entity.MethodMpesa,
		verifyErr: errors.New("connection refused"),
	}
	f := newReconcileFixture(t, gw, 10)
	ctx := context.Background()
	d := f.seedPending(t, "DON-20260801130000-G7H8I9", time.Minute)

	// Uncorroborated claim plus a dead verify API: nothing moves.
	_, err := f.engine.Process(ctx, &ProviderSignal{
		Gateway:        entity.MethodMpesa,
		Reference:      d.Reference,
		ClaimedOutcome: "success",
	})
	assert.True(t, errors.Is(err, ErrProviderUnavailable))

	got, err := f.ledger.FindByReference(ctx, d.Reference)
	require.NoError(t, err)
	assert.Equal(t, entity.DonationStatusPending, got.Status)
	assert.Equal(t, 0, f.publisher.count())
}

func TestProcessAcceptsCorroboratedCallback(t *testing.T) {
	gw := &stubGateway{
		method:    entity.MethodMpesa,
		verifyErr: errors.New("connection refused"),
	}
	f := newReconcileFixture(t, gw, 10)
	ctx := context.Background()
	d := f.seedPending(t, "DON-20260801130000-J1K2L3", time.Minute)

	res, err := f.engine.Process(ctx, &ProviderSignal{
		Gateway:        entity.MethodMpesa,
		Reference:      d.Reference,
		ClaimedOutcome: "success",
		ApprovalCode:   "QK72XN81RW",
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, entity.DonationStatusCompleted, res.Donation.Status)

	events, err := f.ledger.Events(ctx, d.Id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventVerifyCallback, events[0].Kind)
	assert.Equal(t, "QK72XN81RW", events[0].Payload["approval_code"])
}

func TestProcessLeavesUnsettledPaymentPending(t *testing.T) {
	gw := &stubGateway{
		method:       entity.MethodSnap,
		verifyResult: &gateway.VerificationResult{Pending: true},
	}
	f := newReconcileFixture(t, gw, 10)
	ctx := context.Background()
	d := f.seedPending(t, "DON-20260801140000-M4N5O6", time.Minute)

	res, err := f.engine.Process(ctx, &ProviderSignal{
		Gateway:   entity.MethodSnap,
		Reference: d.Reference,
	})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, entity.DonationStatusPending, res.Donation.Status)
	assert.Equal(t, 0, f.publisher.count())
}

func TestProcessAcknowledgesConflictingSignalOnSettledDonation(t *testing.T) {
	gw := &stubGateway{
		method:       entity.MethodSnap,
		verifyResult: &gateway.VerificationResult{Success: false, Explanation: "expire"},
	}
	f := newReconcileFixture(t, gw, 10)
	ctx := context.Background()
	d := f.seedPending(t, "DON-20260801150000-P7Q8R9", time.Minute)

	applied, err := f.repo.Transition(ctx, d.Id, entity.DonationStatusPending, entity.DonationStatusCompleted, nil)
	require.NoError(t, err)
	require.True(t, applied)

	// The conflicting claim is acknowledged so the provider stops
	// retrying; the verify API is never consulted.
	res, err := f.engine.Process(ctx, &ProviderSignal{
		Gateway:        entity.MethodSnap,
		Reference:      d.Reference,
		ClaimedOutcome: "failure",
	})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, entity.DonationStatusCompleted, res.Donation.Status)
	assert.Equal(t, 0, gw.verifyCalls)
	assert.Equal(t, 0, f.publisher.count())
}

func TestProcessRejectsSignalWithNoHandle(t *testing.T) {
	gw := &stubGateway{method: entity.MethodSnap}
	f := newReconcileFixture(t, gw, 10)

	_, err := f.engine.Process(context.Background(), &ProviderSignal{Gateway: entity.MethodSnap})
	assert.True(t, errors.Is(err, ErrUnresolvedSignal))
}
