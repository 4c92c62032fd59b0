package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/pkg/logger"
	"tumaini-be/internal/pkg/serverutils"
	"tumaini-be/internal/repository/contract"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDecisionNotAllowed: the requested admin action does not apply to
	// the donation's rail or current status.
	ErrDecisionNotAllowed = errors.New("decision not allowed for this donation")
)

// IAdminService is the back-office surface: authentication, ledger
// inspection and the manual decisions (bank-transfer approve/reject,
// refunds). Admin decisions bypass gateway verification; the admin is the
// trust anchor on the manual rail.
type IAdminService interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
	ListDonations(ctx context.Context, status, method string, limit, offset int) ([]*entity.Donation, error)
	DonationEvents(ctx context.Context, reference string) (*entity.Donation, []*entity.DonationEvent, error)
	ApproveBankTransfer(ctx context.Context, reference, adminEmail, note string) (*entity.Donation, error)
	RejectBankTransfer(ctx context.Context, reference, adminEmail, note string) (*entity.Donation, error)
	Refund(ctx context.Context, reference, adminEmail, note string) (*entity.Donation, error)
}

type adminService struct {
	admins    contract.AdminRepository
	ledger    ILedgerService
	publisher IPublisherService
	logger    logger.ILogger
}

func NewAdminService(admins contract.AdminRepository, ledger ILedgerService, publisher IPublisherService, log logger.ILogger) IAdminService {
	return &adminService{
		admins:    admins,
		ledger:    ledger,
		publisher: publisher,
		logger:    log,
	}
}

func (s *adminService) Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	admin, err := s.admins.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"user_id": admin.Id.String(),
		"email":   admin.Email,
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(serverutils.JwtSecret())
	if err != nil {
		return nil, err
	}

	return &dto.AdminLoginResponse{
		Token:    signedToken,
		Email:    admin.Email,
		FullName: admin.FullName,
	}, nil
}

func (s *adminService) ListDonations(ctx context.Context, status, method string, limit, offset int) ([]*entity.Donation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.ledger.List(ctx, status, method, limit, offset)
}

func (s *adminService) DonationEvents(ctx context.Context, reference string) (*entity.Donation, []*entity.DonationEvent, error) {
	donation, err := s.ledger.FindByReference(ctx, reference)
	if err != nil {
		return nil, nil, err
	}
	if donation == nil {
		return nil, nil, contract.ErrDonationNotFound
	}
	events, err := s.ledger.Events(ctx, donation.Id)
	if err != nil {
		return nil, nil, err
	}
	return donation, events, nil
}

// ApproveBankTransfer settles a pending bank-transfer donation after the
// admin has sighted the money on the bank statement.
func (s *adminService) ApproveBankTransfer(ctx context.Context, reference, adminEmail, note string) (*entity.Donation, error) {
	return s.decide(ctx, reference, adminEmail, note, entity.MethodBank, entity.DonationStatusCompleted, entity.EventAdminApprove)
}

func (s *adminService) RejectBankTransfer(ctx context.Context, reference, adminEmail, note string) (*entity.Donation, error) {
	return s.decide(ctx, reference, adminEmail, note, entity.MethodBank, entity.DonationStatusFailed, entity.EventAdminReject)
}

// Refund moves a completed donation of any rail to refunded. The money
// movement itself happens at the provider; this records the decision.
func (s *adminService) Refund(ctx context.Context, reference, adminEmail, note string) (*entity.Donation, error) {
	return s.decide(ctx, reference, adminEmail, note, "", entity.DonationStatusRefunded, entity.EventAdminRefund)
}

func (s *adminService) decide(ctx context.Context, reference, adminEmail, note string, requireMethod entity.PaymentMethod, target entity.DonationStatus, kind string) (*entity.Donation, error) {
	donation, err := s.ledger.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, contract.ErrDonationNotFound
	}
	if requireMethod != "" && donation.Method != requireMethod {
		return nil, ErrDecisionNotAllowed
	}
	if donation.Status == target {
		// Double-click / redelivered decision. Same no-op contract as the
		// engine.
		return donation, nil
	}
	if !donation.Status.CanTransitionTo(target) {
		return nil, ErrDecisionNotAllowed
	}

	payload := map[string]interface{}{}
	if note != "" {
		payload["note"] = note
	}
	evidence := &entity.DonationEvent{
		Id:         uuid.New(),
		DonationId: donation.Id,
		Kind:       kind,
		Actor:      "admin:" + adminEmail,
		Payload:    payload,
	}

	result, err := s.ledger.Transition(ctx, donation.Id, target, evidence)
	if err != nil {
		if errors.Is(err, contract.ErrInvalidTransition) {
			return nil, ErrDecisionNotAllowed
		}
		return nil, err
	}

	s.logger.Info("AdminService", "Admin decision applied", map[string]interface{}{
		"reference": reference,
		"decision":  kind,
		"admin":     adminEmail,
		"applied":   result.Applied,
	})

	if result.Applied {
		s.publishOutcome(ctx, result.Donation)
	}
	return result.Donation, nil
}

func (s *adminService) publishOutcome(ctx context.Context, donation *entity.Donation) {
	msg := dto.DonationOutcomeMessage{
		DonationId: donation.Id.String(),
		Reference:  donation.Reference,
		Outcome:    string(donation.Status),
		Amount:     donation.Amount,
		Currency:   donation.Currency,
		DonorEmail: donation.DonorEmail,
		DonorName:  donation.DonorName,
		Method:     string(donation.Method),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("AdminService", "Failed to marshal outcome message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Error("AdminService", "Failed to publish donation outcome", map[string]interface{}{
			"reference": donation.Reference,
			"error":     err.Error(),
		})
	}
}
