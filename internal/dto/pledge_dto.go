package dto

import "time"

type CreatePledgeRequest struct {
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Currency   string `json:"currency" validate:"required,len=3,uppercase"`
	Frequency  string `json:"frequency" validate:"required,oneof=monthly yearly"`
	DonorEmail string `json:"donor_email" validate:"required,email"`
	DonorName  string `json:"donor_name,omitempty" validate:"omitempty,max=255"`
}

type PledgeResponse struct {
	Id             string    `json:"id"`
	DonorEmail     string    `json:"donor_email"`
	DonorName      string    `json:"donor_name,omitempty"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Frequency      string    `json:"frequency"`
	Status         string    `json:"status"`
	NextChargeDate time.Time `json:"next_charge_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// PledgeLifecycleMessage rides the in-process bus on pledge actions.
type PledgeLifecycleMessage struct {
	PledgeId   string `json:"pledge_id"`
	Action     string `json:"action"`
	DonorEmail string `json:"donor_email"`
	DonorName  string `json:"donor_name,omitempty"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Frequency  string `json:"frequency"`
}
