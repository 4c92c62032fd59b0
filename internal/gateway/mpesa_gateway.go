package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tumaini-be/internal/config"
	"tumaini-be/internal/entity"
)

// MpesaGateway is the STK-push rail. Initiation pushes a payment prompt
// to the donor's phone and gets a CheckoutRequestID back synchronously;
// the outcome arrives later on the callback URL. Verification is the
// stkpushquery status endpoint. The adapter keeps no state between calls.
type MpesaGateway struct {
	cfg        config.MpesaConfig
	httpClient *http.Client
}

func NewMpesaGateway(cfg config.MpesaConfig) *MpesaGateway {
	return &MpesaGateway{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *MpesaGateway) Method() entity.PaymentMethod {
	return entity.MethodMpesa
}

type mpesaTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ErrorMessage        string `json:"errorMessage"`
}

type stkQueryResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
}

func (g *MpesaGateway) accessToken(ctx context.Context) (string, error) {
	url := g.cfg.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.cfg.ConsumerKey, g.cfg.ConsumerSecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mpesa auth returned status %d", resp.StatusCode)
	}

	var token mpesaTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("mpesa auth decode failed: %w", err)
	}
	return token.AccessToken, nil
}

// password is base64(shortcode + passkey + timestamp), per the Daraja API.
func (g *MpesaGateway) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(g.cfg.ShortCode + g.cfg.Passkey + timestamp))
}

func (g *MpesaGateway) Initiate(ctx context.Context, donation *entity.Donation) (*InitiationResult, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	body := stkPushRequest{
		BusinessShortCode: g.cfg.ShortCode,
		Password:          g.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            donation.Amount / 100,
		PartyA:            donation.DonorPhone,
		PartyB:            g.cfg.ShortCode,
		PhoneNumber:       donation.DonorPhone,
		CallBackURL:       g.cfg.CallbackURL,
		AccountReference:  donation.Reference,
		TransactionDesc:   "Donation " + donation.Reference,
	}

	var pushResp stkPushResponse
	if err := g.postJSON(ctx, token, "/mpesa/stkpush/v1/processrequest", body, &pushResp); err != nil {
		return nil, err
	}
	if pushResp.ResponseCode != "0" {
		msg := pushResp.ResponseDescription
		if msg == "" {
			msg = pushResp.ErrorMessage
		}
		return nil, fmt.Errorf("mpesa stk push rejected: %s", msg)
	}

	return &InitiationResult{
		ProviderToken: pushResp.CheckoutRequestID,
	}, nil
}

func (g *MpesaGateway) Verify(ctx context.Context, correlationId string) (*VerificationResult, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	body := map[string]string{
		"BusinessShortCode": g.cfg.ShortCode,
		"Password":          g.password(timestamp),
		"Timestamp":         timestamp,
		"CheckoutRequestID": correlationId,
	}

	var queryResp stkQueryResponse
	if err := g.postJSON(ctx, token, "/mpesa/stkpushquery/v1/query", body, &queryResp); err != nil {
		return nil, err
	}

	raw := map[string]interface{}{
		"checkout_request_id": queryResp.CheckoutRequestID,
		"response_code":       queryResp.ResponseCode,
		"result_code":         queryResp.ResultCode,
		"result_desc":         queryResp.ResultDesc,
	}

	switch queryResp.ResultCode {
	case "0":
		return &VerificationResult{Success: true, Explanation: queryResp.ResultDesc, Raw: raw}, nil
	case "":
		// The query endpoint answers without a result while the push is
		// still being processed on the handset.
		return &VerificationResult{Pending: true, Explanation: queryResp.ResponseDescription, Raw: raw}, nil
	default:
		return &VerificationResult{Explanation: queryResp.ResultDesc, Raw: raw}, nil
	}
}

func (g *MpesaGateway) postJSON(ctx context.Context, token, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mpesa request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mpesa request %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
