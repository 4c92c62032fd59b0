package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string
type DonationStatus string

const (
	MethodSnap  PaymentMethod = "snap"
	MethodMpesa PaymentMethod = "mpesa"
	MethodBank  PaymentMethod = "bank"

	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusFailed    DonationStatus = "failed"
	DonationStatusRefunded  DonationStatus = "refunded"
)

// Terminal reports whether no further transition is permitted, except the
// single explicit completed->refunded edge.
func (s DonationStatus) Terminal() bool {
	return s == DonationStatusCompleted || s == DonationStatusFailed || s == DonationStatusRefunded
}

// CanTransitionTo encodes the donation status DAG:
// pending->completed, pending->failed, completed->refunded.
// A failed attempt is never resurrected; the donor starts a new donation.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	switch s {
	case DonationStatusPending:
		return next == DonationStatusCompleted || next == DonationStatusFailed
	case DonationStatusCompleted:
		return next == DonationStatusRefunded
	default:
		return false
	}
}

// Donation is one attempt to receive funds. Amount is in minor units
// (cents); monetary values never ride on floats. Reference is issued at
// creation, before any provider contact, so the donor always has a
// traceable handle. ProviderToken stays nil until the provider responds
// and, once bound, belongs to exactly one donation.
type Donation struct {
	Id            uuid.UUID
	Reference     string
	Amount        int64
	Currency      string
	DonorEmail    string
	DonorName     string
	DonorPhone    string
	Method        PaymentMethod
	Status        DonationStatus
	ProviderToken *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DonationEvent is one row of the append-only evidence log. Raw provider
// payloads land here for audit; they are never inputs to matching.
type DonationEvent struct {
	Id         uuid.UUID
	DonationId uuid.UUID
	Kind       string
	Actor      string
	Payload    map[string]interface{}
	CreatedAt  time.Time
}

// Evidence kinds recorded by the reconciliation paths.
const (
	EventInitiate       = "initiate"
	EventVerifyAPI      = "verify.api"      // authoritative provider query succeeded
	EventVerifyCallback = "verify.callback" // provider query failed, corroborated callback accepted
	EventAdminApprove   = "admin.approve"
	EventAdminReject    = "admin.reject"
	EventAdminRefund    = "admin.refund"
)
