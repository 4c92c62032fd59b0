package gateway

import (
	"crypto/sha512"
	"fmt"
	"testing"

	"tumaini-be/internal/config"
)

func TestValidSignature(t *testing.T) {
	serverKey := "SB-Mid-server-testkey"
	g := NewSnapGateway(config.MidtransConfig{ServerKey: serverKey}, "http://localhost:3000")

	orderId := "DON-20260801120000-A1B2C3"
	statusCode := "200"
	grossAmount := "2500.00"
	signature := fmt.Sprintf("%x", sha512.Sum512([]byte(orderId+statusCode+grossAmount+serverKey)))

	if !g.ValidSignature(orderId, statusCode, grossAmount, signature) {
		t.Error("expected a correctly computed signature to validate")
	}
	if g.ValidSignature(orderId, statusCode, grossAmount, "deadbeef") {
		t.Error("expected a forged signature to be rejected")
	}
	if g.ValidSignature("DON-OTHER", statusCode, grossAmount, signature) {
		t.Error("expected a signature for a different order to be rejected")
	}
}
