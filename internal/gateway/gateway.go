package gateway

import (
	"context"
	"errors"

	"tumaini-be/internal/entity"
)

// ErrVerifyUnsupported marks rails with no provider-side verification
// (the manual bank-transfer rail); reconciliation for those is an admin
// decision, never an engine path.
var ErrVerifyUnsupported = errors.New("gateway does not support verification")

// BankInstructions are the static payee details handed to a donor on the
// manual rail.
type BankInstructions struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	Branch        string `json:"branch"`
	SwiftCode     string `json:"swift_code"`
	Reference     string `json:"reference"`
}

// InitiationResult is what a rail returns after the donor's intent is
// handed to the provider. Exactly one of RedirectURL / Instructions is
// set; ProviderToken is present only when the provider answers
// synchronously with a correlation id.
type InitiationResult struct {
	RedirectURL   string
	ProviderToken string
	Instructions  *BankInstructions
}

// VerificationResult is the authoritative provider answer for a
// correlation id. Pending means the provider has not settled the payment
// yet; the engine leaves the donation untouched.
type VerificationResult struct {
	Success     bool
	Pending     bool
	Explanation string
	Raw         map[string]interface{}
}

// Gateway adapts one payment rail. Adapters hold configuration only —
// all state lives in the ledger.
type Gateway interface {
	Method() entity.PaymentMethod
	Initiate(ctx context.Context, donation *entity.Donation) (*InitiationResult, error)
	Verify(ctx context.Context, correlationId string) (*VerificationResult, error)
}

// Registry resolves the adapter for a rail.
type Registry map[entity.PaymentMethod]Gateway

func NewRegistry(gateways ...Gateway) Registry {
	reg := make(Registry, len(gateways))
	for _, g := range gateways {
		reg[g.Method()] = g
	}
	return reg
}
