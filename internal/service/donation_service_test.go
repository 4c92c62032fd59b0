package service

import (
	"context"
	"errors"
	"testing"

	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/gateway"
	"tumaini-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDonationFixture(gw *stubGateway) (IDonationService, ILedgerService) {
	ledger := NewLedgerService(memory.NewDonationRepository())
	svc := NewDonationService(ledger, gateway.NewRegistry(gw), nopLogger{})
	return svc, ledger
}

func TestCreateDonationRedirectRail(t *testing.T) {
	gw := &stubGateway{
		method: entity.MethodSnap,
		initiateResult: &gateway.InitiationResult{
			RedirectURL:   "https://app.sandbox.midtrans.com/snap/v3/redirection/abc",
			ProviderToken: "snap-token-1",
		},
	}
	svc, ledger := newDonationFixture(gw)
	ctx := context.Background()

	res, err := svc.CreateDonation(ctx, &dto.CreateDonationRequest{
		Amount:     100000,
		Currency:   "KES",
		Method:     "snap",
		DonorEmail: "donor@example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.DonationStatusPending), res.Status)
	assert.NotEmpty(t, res.RedirectUrl)
	assert.NotEmpty(t, res.Reference)

	// The synchronous token is bound immediately.
	got, err := ledger.FindByProviderToken(ctx, "snap-token-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, res.Reference, got.Reference)

	events, err := ledger.Events(ctx, got.Id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventInitiate, events[0].Kind)
}

func TestCreateDonationBankRailReturnsInstructions(t *testing.T) {
	gw := &stubGateway{
		method: entity.MethodBank,
		initiateResult: &gateway.InitiationResult{
			Instructions: &gateway.BankInstructions{
				AccountName:   "Tumaini Trust",
				AccountNumber: "0102030405",
				BankName:      "Equity Bank",
			},
		},
	}
	svc, _ := newDonationFixture(gw)

	res, err := svc.CreateDonation(context.Background(), &dto.CreateDonationRequest{
		Amount:     100000,
		Currency:   "KES",
		Method:     "bank",
		DonorEmail: "donor@example.org",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Instructions)
	assert.Equal(t, "Tumaini Trust", res.Instructions.AccountName)
	assert.Empty(t, res.RedirectUrl)
}

func TestCreateDonationSurvivesProviderOutage(t *testing.T) {
	gw := &stubGateway{
		method:      entity.MethodSnap,
		initiateErr: errors.New("midtrans: 502"),
	}
	svc, ledger := newDonationFixture(gw)
	ctx := context.Background()

	_, err := svc.CreateDonation(ctx, &dto.CreateDonationRequest{
		Amount:     100000,
		Currency:   "KES",
		Method:     "snap",
		DonorEmail: "donor@example.org",
	})
	require.Error(t, err)

	var initErr *InitiationError
	require.True(t, errors.As(err, &initErr))
	require.NotEmpty(t, initErr.Reference)

	// The donation itself outlived the outage, with the failure on record.
	got, err := ledger.FindByReference(ctx, initErr.Reference)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.DonationStatusPending, got.Status)

	events, err := ledger.Events(ctx, got.Id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventInitiate, events[0].Kind)
	assert.Contains(t, events[0].Payload["error"], "midtrans")
}

func TestCreateDonationUnknownMethod(t *testing.T) {
	svc, _ := newDonationFixture(&stubGateway{method: entity.MethodSnap})
	_, err := svc.CreateDonation(context.Background(), &dto.CreateDonationRequest{
		Amount:     100000,
		Currency:   "KES",
		Method:     "cheque",
		DonorEmail: "donor@example.org",
	})
	assert.Error(t, err)
}

func TestGetStatusUnknownReference(t *testing.T) {
	svc, _ := newDonationFixture(&stubGateway{method: entity.MethodSnap})
	res, err := svc.GetStatus(context.Background(), "DON-NOPE")
	require.NoError(t, err)
	assert.Nil(t, res)
}
