package dto

import (
	"time"

	"tumaini-be/internal/gateway"
)

type CreateDonationRequest struct {
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Currency   string `json:"currency" validate:"required,len=3,uppercase"`
	Method     string `json:"method" validate:"required,oneof=snap mpesa bank"`
	DonorEmail string `json:"donor_email" validate:"required,email"`
	DonorName  string `json:"donor_name,omitempty" validate:"omitempty,max=255"`
	DonorPhone string `json:"donor_phone,omitempty" validate:"omitempty,max=50"`
}

type CreateDonationResponse struct {
	Reference    string                    `json:"reference"`
	Status       string                    `json:"status"`
	RedirectUrl  string                    `json:"redirect_url,omitempty"`
	Instructions *gateway.BankInstructions `json:"instructions,omitempty"`
}

// DonationStatusResponse is the donor-facing view: correlation internals
// (provider tokens, evidence) never leave the server.
type DonationStatusResponse struct {
	Reference string    `json:"reference"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminDonationResponse includes the correlation keys an admin needs for
// manual reconciliation.
type AdminDonationResponse struct {
	Id            string    `json:"id"`
	Reference     string    `json:"reference"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	DonorEmail    string    `json:"donor_email"`
	DonorName     string    `json:"donor_name,omitempty"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	ProviderToken *string   `json:"provider_token,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AdminEventResponse struct {
	Kind      string                 `json:"kind"`
	Actor     string                 `json:"actor"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// DonationOutcomeMessage rides the in-process bus from the reconciliation
// engine to the notification dispatcher.
type DonationOutcomeMessage struct {
	DonationId string `json:"donation_id"`
	Reference  string `json:"reference"`
	Outcome    string `json:"outcome"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	DonorEmail string `json:"donor_email"`
	DonorName  string `json:"donor_name,omitempty"`
	Method     string `json:"method"`
}
