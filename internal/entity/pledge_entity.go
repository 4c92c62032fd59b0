package entity

import (
	"time"

	"github.com/google/uuid"
)

type PledgeFrequency string
type PledgeStatus string

const (
	FrequencyMonthly PledgeFrequency = "monthly"
	FrequencyYearly  PledgeFrequency = "yearly"

	PledgeStatusActive    PledgeStatus = "active"
	PledgeStatusPaused    PledgeStatus = "paused"
	PledgeStatusCancelled PledgeStatus = "cancelled"
)

// CanTransitionTo encodes the pledge DAG: active<->paused,
// active|paused->cancelled. Cancellation is terminal.
func (s PledgeStatus) CanTransitionTo(next PledgeStatus) bool {
	switch s {
	case PledgeStatusActive:
		return next == PledgeStatusPaused || next == PledgeStatusCancelled
	case PledgeStatusPaused:
		return next == PledgeStatusActive || next == PledgeStatusCancelled
	default:
		return false
	}
}

// RecurringPledge is a recurring-donation agreement, independent of any
// one-off donation. NextChargeDate only moves forward and only while the
// pledge is active; the external charge trigger owns the actual initiation.
type RecurringPledge struct {
	Id             uuid.UUID
	DonorEmail     string
	DonorName      string
	Amount         int64
	Currency       string
	Frequency      PledgeFrequency
	Status         PledgeStatus
	NextChargeDate time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NextInterval returns the charge date following from, per the pledge
// frequency.
func (p *RecurringPledge) NextInterval(from time.Time) time.Time {
	if p.Frequency == FrequencyYearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
