package entity

import (
	"testing"
	"time"
)

func TestPledgeStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from PledgeStatus
		to   PledgeStatus
		want bool
	}{
		{name: "active to paused", from: PledgeStatusActive, to: PledgeStatusPaused, want: true},
		{name: "active to cancelled", from: PledgeStatusActive, to: PledgeStatusCancelled, want: true},
		{name: "paused to active", from: PledgeStatusPaused, to: PledgeStatusActive, want: true},
		{name: "paused to cancelled", from: PledgeStatusPaused, to: PledgeStatusCancelled, want: true},
		{name: "cancelled to active", from: PledgeStatusCancelled, to: PledgeStatusActive, want: false},
		{name: "cancelled to paused", from: PledgeStatusCancelled, to: PledgeStatusPaused, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestPledgeNextInterval(t *testing.T) {
	from := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

	monthly := &RecurringPledge{Frequency: FrequencyMonthly}
	if got := monthly.NextInterval(from); got != from.AddDate(0, 1, 0) {
		t.Errorf("monthly NextInterval = %v, want %v", got, from.AddDate(0, 1, 0))
	}

	yearly := &RecurringPledge{Frequency: FrequencyYearly}
	if got := yearly.NextInterval(from); got != from.AddDate(1, 0, 0) {
		t.Errorf("yearly NextInterval = %v, want %v", got, from.AddDate(1, 0, 0))
	}
}
