package gateway

import (
	"context"

	"tumaini-be/internal/config"
	"tumaini-be/internal/entity"
)

// BankGateway is the manual rail: it only hands out the payee details and
// the donation reference. There is no provider to verify against —
// reconciliation happens when an admin approves or rejects the proof of
// payment.
type BankGateway struct {
	cfg config.BankConfig
}

func NewBankGateway(cfg config.BankConfig) *BankGateway {
	return &BankGateway{cfg: cfg}
}

func (g *BankGateway) Method() entity.PaymentMethod {
	return entity.MethodBank
}

func (g *BankGateway) Initiate(ctx context.Context, donation *entity.Donation) (*InitiationResult, error) {
	return &InitiationResult{
		Instructions: &BankInstructions{
			AccountName:   g.cfg.AccountName,
			AccountNumber: g.cfg.AccountNumber,
			BankName:      g.cfg.BankName,
			Branch:        g.cfg.Branch,
			SwiftCode:     g.cfg.SwiftCode,
			Reference:     donation.Reference,
		},
	}, nil
}

func (g *BankGateway) Verify(ctx context.Context, correlationId string) (*VerificationResult, error) {
	return nil, ErrVerifyUnsupported
}
