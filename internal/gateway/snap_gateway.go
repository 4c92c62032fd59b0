package gateway

import (
	"context"
	"crypto/sha512"
	"fmt"

	"tumaini-be/internal/config"
	"tumaini-be/internal/entity"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// SnapGateway is the hosted-checkout rail. Initiation creates a Snap
// transaction keyed on the donation reference; the donor is redirected to
// the hosted page and Midtrans reports back via both the finish redirect
// and the server-to-server notification. Verification always goes through
// the Core API status query — the inbound signal's claimed outcome is
// never trusted on its own.
type SnapGateway struct {
	serverKey string
	clientURL string
	snap      snap.Client
	core      coreapi.Client
}

func NewSnapGateway(cfg config.MidtransConfig, clientURL string) *SnapGateway {
	env := midtrans.Sandbox
	if cfg.IsProduction {
		env = midtrans.Production
	}
	g := &SnapGateway{
		serverKey: cfg.ServerKey,
		clientURL: clientURL,
	}
	g.snap.New(cfg.ServerKey, env)
	g.core.New(cfg.ServerKey, env)
	return g
}

func (g *SnapGateway) Method() entity.PaymentMethod {
	return entity.MethodSnap
}

func (g *SnapGateway) Initiate(ctx context.Context, donation *entity.Donation) (*InitiationResult, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  donation.Reference,
			GrossAmt: donation.Amount / 100,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/donate/thank-you", g.clientURL),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: donation.DonorName,
			Email: donation.DonorEmail,
			Phone: donation.DonorPhone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    donation.Id.String(),
				Price: donation.Amount / 100,
				Qty:   1,
				Name:  "Donation " + donation.Reference,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	resp, midErr := g.snap.CreateTransaction(req)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans snap error: %v", midErr.GetMessage())
	}

	return &InitiationResult{
		RedirectURL:   resp.RedirectURL,
		ProviderToken: resp.Token,
	}, nil
}

func (g *SnapGateway) Verify(ctx context.Context, correlationId string) (*VerificationResult, error) {
	resp, midErr := g.core.CheckTransaction(correlationId)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans status query failed: %v", midErr.GetMessage())
	}

	raw := map[string]interface{}{
		"order_id":           resp.OrderID,
		"transaction_id":     resp.TransactionID,
		"transaction_status": resp.TransactionStatus,
		"fraud_status":       resp.FraudStatus,
		"status_code":        resp.StatusCode,
		"gross_amount":       resp.GrossAmount,
		"payment_type":       resp.PaymentType,
	}

	switch resp.TransactionStatus {
	case "settlement":
		return &VerificationResult{Success: true, Explanation: "settlement", Raw: raw}, nil
	case "capture":
		if resp.FraudStatus == "accept" {
			return &VerificationResult{Success: true, Explanation: "capture/accept", Raw: raw}, nil
		}
		return &VerificationResult{Pending: true, Explanation: "capture/" + resp.FraudStatus, Raw: raw}, nil
	case "pending":
		return &VerificationResult{Pending: true, Explanation: "pending", Raw: raw}, nil
	default:
		// deny, cancel, expire, failure
		return &VerificationResult{Explanation: resp.TransactionStatus, Raw: raw}, nil
	}
}

// ValidSignature checks the Midtrans webhook signature:
// sha512(order_id + status_code + gross_amount + server_key).
func (g *SnapGateway) ValidSignature(orderId, statusCode, grossAmount, signature string) bool {
	input := orderId + statusCode + grossAmount + g.serverKey
	expected := fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
	return signature == expected
}
