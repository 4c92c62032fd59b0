package dto

type TierResponse struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
}

type ImpactResponse struct {
	TotalRaised    []CurrencyTotalResponse `json:"total_raised"`
	CompletedCount int                     `json:"completed_count"`
	RecurringCount int                     `json:"recurring_count"`
}

type CurrencyTotalResponse struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}
