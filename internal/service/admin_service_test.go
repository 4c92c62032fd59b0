package service

import (
	"context"
	"errors"
	"testing"

	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/pkg/serverutils"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/repository/memory"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAdminRepo struct {
	byEmail map[string]*entity.AdminUser
}

func (r *fakeAdminRepo) Create(ctx context.Context, admin *entity.AdminUser) error {
	r.byEmail[admin.Email] = admin
	return nil
}

func (r *fakeAdminRepo) FindByEmail(ctx context.Context, email string) (*entity.AdminUser, error) {
	return r.byEmail[email], nil
}

type adminFixture struct {
	svc       IAdminService
	ledger    ILedgerService
	repo      *memory.DonationRepository
	publisher *capturePublisher
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	admins := &fakeAdminRepo{byEmail: map[string]*entity.AdminUser{
		"ops@tumaini.org": {
			Id:           uuid.New(),
			Email:        "ops@tumaini.org",
			FullName:     "Operations",
			PasswordHash: string(hash),
		},
	}}

	repo := memory.NewDonationRepository()
	ledger := NewLedgerService(repo)
	publisher := &capturePublisher{}
	return &adminFixture{
		svc:       NewAdminService(admins, ledger, publisher, nopLogger{}),
		ledger:    ledger,
		repo:      repo,
		publisher: publisher,
	}
}

func (f *adminFixture) seedDonation(t *testing.T, method entity.PaymentMethod, status entity.DonationStatus) *entity.Donation {
	t.Helper()
	ctx := context.Background()
	d, err := f.ledger.Create(ctx, &entity.Donation{
		Amount:     750000,
		Currency:   "KES",
		DonorEmail: "donor@example.org",
		Method:     method,
	})
	require.NoError(t, err)
	if status != entity.DonationStatusPending {
		applied, err := f.repo.Transition(ctx, d.Id, entity.DonationStatusPending, status, nil)
		require.NoError(t, err)
		require.True(t, applied)
		d.Status = status
	}
	return d
}

func TestAdminLogin(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, &dto.AdminLoginRequest{Email: "ops@tumaini.org", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ops@tumaini.org", res.Email)

	// The token must verify against the same key the middleware uses.
	token, err := jwt.Parse(res.Token, func(t *jwt.Token) (interface{}, error) {
		return serverutils.JwtSecret(), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "ops@tumaini.org", claims["email"])
	assert.Equal(t, "admin", claims["role"])

	_, err = f.svc.Login(ctx, &dto.AdminLoginRequest{Email: "ops@tumaini.org", Password: "wrong"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = f.svc.Login(ctx, &dto.AdminLoginRequest{Email: "ghost@tumaini.org", Password: "s3cret-pass"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestApproveBankTransfer(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	d := f.seedDonation(t, entity.MethodBank, entity.DonationStatusPending)

	got, err := f.svc.ApproveBankTransfer(ctx, d.Reference, "ops@tumaini.org", "statement line 42")
	require.NoError(t, err)
	assert.Equal(t, entity.DonationStatusCompleted, got.Status)
	assert.Equal(t, 1, f.publisher.count())

	events, err := f.ledger.Events(ctx, d.Id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventAdminApprove, events[0].Kind)
	assert.Equal(t, "admin:ops@tumaini.org", events[0].Actor)
	assert.Equal(t, "statement line 42", events[0].Payload["note"])
}

func TestApproveRejectRequireBankRail(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	d := f.seedDonation(t, entity.MethodSnap, entity.DonationStatusPending)

	_, err := f.svc.ApproveBankTransfer(ctx, d.Reference, "ops@tumaini.org", "")
	assert.True(t, errors.Is(err, ErrDecisionNotAllowed))

	_, err = f.svc.RejectBankTransfer(ctx, d.Reference, "ops@tumaini.org", "")
	assert.True(t, errors.Is(err, ErrDecisionNotAllowed))
}

func TestApproveIsIdempotentOnDoubleClick(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	d := f.seedDonation(t, entity.MethodBank, entity.DonationStatusPending)

	_, err := f.svc.ApproveBankTransfer(ctx, d.Reference, "ops@tumaini.org", "")
	require.NoError(t, err)

	got, err := f.svc.ApproveBankTransfer(ctx, d.Reference, "ops@tumaini.org", "")
	require.NoError(t, err)
	assert.Equal(t, entity.DonationStatusCompleted, got.Status)
	assert.Equal(t, 1, f.publisher.count(), "repeat approval publishes nothing")

	events, err := f.ledger.Events(ctx, d.Id)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestRefundWorksOnAnyRail(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	for _, method := range []entity.PaymentMethod{entity.MethodSnap, entity.MethodMpesa, entity.MethodBank} {
		d := f.seedDonation(t, method, entity.DonationStatusCompleted)
		got, err := f.svc.Refund(ctx, d.Reference, "ops@tumaini.org", "donor request")
		require.NoError(t, err)
		assert.Equal(t, entity.DonationStatusRefunded, got.Status)
	}
}

func TestRefundRequiresCompletedDonation(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	d := f.seedDonation(t, entity.MethodSnap, entity.DonationStatusPending)

	_, err := f.svc.Refund(ctx, d.Reference, "ops@tumaini.org", "")
	assert.True(t, errors.Is(err, ErrDecisionNotAllowed))
}

func TestDecisionOnUnknownReference(t *testing.T) {
	f := newAdminFixture(t)
	_, err := f.svc.ApproveBankTransfer(context.Background(), "DON-MISSING", "ops@tumaini.org", "")
	assert.True(t, errors.Is(err, contract.ErrDonationNotFound))
}
