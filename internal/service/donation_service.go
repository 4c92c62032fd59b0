package service

import (
	"context"
	"fmt"

	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/gateway"
	"tumaini-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// InitiationError carries the ledger reference through a failed provider
// handshake. The donation was persisted before the provider was contacted,
// so the caller still gets a traceable handle.
type InitiationError struct {
	Reference string
	Err       error
}

func (e *InitiationError) Error() string {
	return fmt.Sprintf("payment initiation failed for %s: %v", e.Reference, e.Err)
}

func (e *InitiationError) Unwrap() error {
	return e.Err
}

type IDonationService interface {
	CreateDonation(ctx context.Context, req *dto.CreateDonationRequest) (*dto.CreateDonationResponse, error)
	GetStatus(ctx context.Context, reference string) (*dto.DonationStatusResponse, error)
}

type donationService struct {
	ledger   ILedgerService
	gateways gateway.Registry
	logger   logger.ILogger
}

func NewDonationService(ledger ILedgerService, gateways gateway.Registry, log logger.ILogger) IDonationService {
	return &donationService{
		ledger:   ledger,
		gateways: gateways,
		logger:   log,
	}
}

func (s *donationService) CreateDonation(ctx context.Context, req *dto.CreateDonationRequest) (*dto.CreateDonationResponse, error) {
	method := entity.PaymentMethod(req.Method)
	adapter, ok := s.gateways[method]
	if !ok {
		return nil, fmt.Errorf("unsupported payment method: %s", req.Method)
	}

	donation := &entity.Donation{
		Amount:     req.Amount,
		Currency:   req.Currency,
		Method:     method,
		DonorEmail: req.DonorEmail,
		DonorName:  req.DonorName,
		DonorPhone: req.DonorPhone,
	}

	// Persist before any external call so the reference survives a
	// provider outage.
	donation, err := s.ledger.Create(ctx, donation)
	if err != nil {
		return nil, err
	}

	result, err := adapter.Initiate(ctx, donation)
	if err != nil {
		s.logger.Error("DonationService", "Gateway initiation failed", map[string]interface{}{
			"reference": donation.Reference,
			"method":    req.Method,
			"error":     err.Error(),
		})
		if appendErr := s.ledger.AppendEvent(ctx, &entity.DonationEvent{
			Id:         uuid.New(),
			DonationId: donation.Id,
			Kind:       entity.EventInitiate,
			Actor:      "system",
			Payload:    map[string]interface{}{"error": err.Error()},
		}); appendErr != nil {
			s.logger.Error("DonationService", "Failed to record initiation failure", map[string]interface{}{
				"reference": donation.Reference,
				"error":     appendErr.Error(),
			})
		}
		return nil, &InitiationError{Reference: donation.Reference, Err: err}
	}

	if result.ProviderToken != "" {
		if err := s.ledger.BindProviderToken(ctx, donation.Id, result.ProviderToken); err != nil {
			return nil, err
		}
	}

	evidence := map[string]interface{}{"method": req.Method}
	if result.RedirectURL != "" {
		evidence["redirect_url"] = result.RedirectURL
	}
	if result.ProviderToken != "" {
		evidence["provider_token"] = result.ProviderToken
	}
	if err := s.ledger.AppendEvent(ctx, &entity.DonationEvent{
		Id:         uuid.New(),
		DonationId: donation.Id,
		Kind:       entity.EventInitiate,
		Actor:      "system",
		Payload:    evidence,
	}); err != nil {
		s.logger.Warn("DonationService", "Failed to record initiation evidence", map[string]interface{}{
			"reference": donation.Reference,
			"error":     err.Error(),
		})
	}

	return &dto.CreateDonationResponse{
		Reference:    donation.Reference,
		Status:       string(donation.Status),
		RedirectUrl:  result.RedirectURL,
		Instructions: result.Instructions,
	}, nil
}

func (s *donationService) GetStatus(ctx context.Context, reference string) (*dto.DonationStatusResponse, error) {
	donation, err := s.ledger.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, nil
	}
	return &dto.DonationStatusResponse{
		Reference: donation.Reference,
		Amount:    donation.Amount,
		Currency:  donation.Currency,
		Method:    string(donation.Method),
		Status:    string(donation.Status),
		CreatedAt: donation.CreatedAt,
	}, nil
}
