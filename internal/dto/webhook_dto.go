package dto

// MidtransWebhookRequest is the server-to-server notification body.
// SignatureKey is validated before any ledger work; ApprovalCode only ever
// arrives from Midtrans itself and is the corroboration field for the
// verify-unavailable fallback.
type MidtransWebhookRequest struct {
	OrderId           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionId     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	ApprovalCode      string `json:"approval_code"`
}

// MpesaCallbackRequest mirrors the Daraja STK callback envelope.
type MpesaCallbackRequest struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []MpesaCallbackItem `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

type MpesaCallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

// MpesaAck is the unconditional acknowledgement the Daraja protocol
// mandates, even when internal processing failed.
type MpesaAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}
