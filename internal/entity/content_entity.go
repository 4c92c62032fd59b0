package entity

import (
	"time"

	"github.com/google/uuid"
)

// DonationTier is a suggested giving level managed by the CMS layer.
// Read-only from the reconciliation core's perspective.
type DonationTier struct {
	Id          uuid.UUID
	Name        string
	Amount      int64
	Currency    string
	Description string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ImpactSummary aggregates completed donations for the public impact page.
type ImpactSummary struct {
	TotalRaised    []CurrencyTotal
	CompletedCount int
	RecurringCount int
	GeneratedAt    time.Time
}

type CurrencyTotal struct {
	Currency string
	Amount   int64
}
