package entity

import (
	"testing"
)

func TestDonationStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from DonationStatus
		to   DonationStatus
		want bool
	}{
		{name: "pending to completed", from: DonationStatusPending, to: DonationStatusCompleted, want: true},
		{name: "pending to failed", from: DonationStatusPending, to: DonationStatusFailed, want: true},
		{name: "pending to refunded", from: DonationStatusPending, to: DonationStatusRefunded, want: false},
		{name: "completed to refunded", from: DonationStatusCompleted, to: DonationStatusRefunded, want: true},
		{name: "completed to failed", from: DonationStatusCompleted, to: DonationStatusFailed, want: false},
		{name: "completed to pending", from: DonationStatusCompleted, to: DonationStatusPending, want: false},
		{name: "failed is terminal", from: DonationStatusFailed, to: DonationStatusPending, want: false},
		{name: "failed never completes", from: DonationStatusFailed, to: DonationStatusCompleted, want: false},
		{name: "refunded is terminal", from: DonationStatusRefunded, to: DonationStatusCompleted, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDonationStatusTerminal(t *testing.T) {
	if DonationStatusPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []DonationStatus{DonationStatusCompleted, DonationStatusFailed, DonationStatusRefunded} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}
