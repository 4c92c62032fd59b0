package controller

import (
	"errors"
	"fmt"

	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/gateway"
	"tumaini-be/internal/pkg/serverutils"
	"tumaini-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDonationController interface {
	RegisterRoutes(r fiber.Router, rateLimiter fiber.Handler)
	Create(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
	SnapFinish(ctx *fiber.Ctx) error
	SnapWebhook(ctx *fiber.Ctx) error
	MpesaCallback(ctx *fiber.Ctx) error
}

type donationController struct {
	donations service.IDonationService
	reconcile service.IReconcileService
	snap      *gateway.SnapGateway
}

func NewDonationController(donations service.IDonationService, reconcile service.IReconcileService, snap *gateway.SnapGateway) IDonationController {
	return &donationController{
		donations: donations,
		reconcile: reconcile,
		snap:      snap,
	}
}

func (c *donationController) RegisterRoutes(r fiber.Router, rateLimiter fiber.Handler) {
	d := r.Group("/donations")
	d.Post("/", rateLimiter, c.Create)
	d.Get("/:reference", c.GetStatus)

	p := r.Group("/payments")
	p.Get("/snap/finish", c.SnapFinish)
	p.Post("/snap/notify", c.SnapWebhook)
	p.Post("/mpesa/callback", c.MpesaCallback)
}

func (c *donationController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateDonationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.donations.CreateDonation(ctx.Context(), &req)
	if err != nil {
		var initErr *service.InitiationError
		if errors.As(err, &initErr) {
			// The donation exists and stays pending; the donor keeps the
			// reference even though the provider handshake failed.
			return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.Envelope[fiber.Map]{
				Success: false,
				Code:    fiber.StatusBadGateway,
				Message: "Payment provider is unavailable, please retry",
				Data:    fiber.Map{"reference": initErr.Reference},
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Donation created", res))
}

func (c *donationController) GetStatus(ctx *fiber.Ctx) error {
	reference := ctx.Params("reference")

	res, err := c.donations.GetStatus(ctx.Context(), reference)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "donation not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Donation status", res))
}

// SnapFinish handles the donor coming back through the hosted-checkout
// redirect. The query params are advisory: they feed the engine as an
// unverified signal and the donor sees whatever the ledger says, never
// what the URL claims.
func (c *donationController) SnapFinish(ctx *fiber.Ctx) error {
	orderId := ctx.Query("order_id")
	status := ctx.Query("transaction_status")

	signal := &service.ProviderSignal{
		Gateway:        entity.MethodSnap,
		Reference:      orderId,
		Fragment:       orderId,
		ClaimedOutcome: claimedFromSnapStatus(status),
	}

	result, err := c.reconcile.Process(ctx.Context(), signal)
	if err != nil {
		if errors.Is(err, service.ErrUnresolvedSignal) || errors.Is(err, service.ErrAmbiguousMatch) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "donation not found"))
		}
		if errors.Is(err, service.ErrProviderUnavailable) {
			// Can't verify right now. Show pending; the webhook will settle it.
			return ctx.JSON(serverutils.SuccessResponse("Donation status", fiber.Map{
				"status": string(entity.DonationStatusPending),
			}))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Donation status", fiber.Map{
		"reference": result.Donation.Reference,
		"status":    string(result.Donation.Status),
	}))
}

// SnapWebhook processes Midtrans server-to-server notifications. Returns
// 500 on internal failure so the provider redelivers; a bad signature is
// a 403 and never retried.
func (c *donationController) SnapWebhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		fmt.Printf("[WEBHOOK ERROR] Body parsing failed: %v\n", err)
		return ctx.SendStatus(fiber.StatusBadRequest)
	}

	if !c.snap.ValidSignature(req.OrderId, req.StatusCode, req.GrossAmount, req.SignatureKey) {
		fmt.Printf("[WEBHOOK ERROR] Invalid signature for OrderId=%s\n", req.OrderId)
		return ctx.SendStatus(fiber.StatusForbidden)
	}

	signal := &service.ProviderSignal{
		Gateway:        entity.MethodSnap,
		ProviderToken:  req.TransactionId,
		Reference:      req.OrderId,
		ClaimedOutcome: claimedFromSnapStatus(req.TransactionStatus),
		ApprovalCode:   req.ApprovalCode,
		Raw: map[string]interface{}{
			"transaction_status": req.TransactionStatus,
			"payment_type":       req.PaymentType,
			"fraud_status":       req.FraudStatus,
		},
	}

	_, err := c.reconcile.Process(ctx.Context(), signal)
	if err != nil {
		if errors.Is(err, service.ErrUnresolvedSignal) || errors.Is(err, service.ErrAmbiguousMatch) {
			// Nothing to correlate against; redelivery won't change that.
			fmt.Printf("[WEBHOOK] Unresolved notification OrderId=%s: %v\n", req.OrderId, err)
			return ctx.SendStatus(fiber.StatusOK)
		}
		fmt.Printf("[WEBHOOK ERROR] Processing failed for OrderId=%s: %v\n", req.OrderId, err)
		// 500 so Midtrans will retry the notification
		return ctx.SendStatus(fiber.StatusInternalServerError)
	}

	return ctx.SendStatus(fiber.StatusOK)
}

// MpesaCallback processes Daraja STK result callbacks. The protocol
// requires an acknowledgement no matter what happened internally; the
// verification query is the authority on the actual outcome anyway.
func (c *donationController) MpesaCallback(ctx *fiber.Ctx) error {
	ack := dto.MpesaAck{ResultCode: 0, ResultDesc: "Accepted"}

	var req dto.MpesaCallbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		fmt.Printf("[CALLBACK ERROR] Body parsing failed: %v\n", err)
		return ctx.JSON(ack)
	}

	cb := req.Body.StkCallback
	claimed := "failure"
	if cb.ResultCode == 0 {
		claimed = "success"
	}

	// The M-Pesa receipt number only ever comes from Safaricom; it is the
	// corroboration field for the verify-unavailable fallback. The account
	// reference echoes what the STK push carried (the donation reference),
	// possibly truncated, and is the matching handle when the callback
	// arrives without a CheckoutRequestID.
	receipt := ""
	accountRef := ""
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			receipt, _ = item.Value.(string)
		case "AccountReference":
			accountRef, _ = item.Value.(string)
		}
	}

	signal := &service.ProviderSignal{
		Gateway:        entity.MethodMpesa,
		ProviderToken:  cb.CheckoutRequestID,
		Reference:      accountRef,
		Fragment:       accountRef,
		ClaimedOutcome: claimed,
		ApprovalCode:   receipt,
		Raw: map[string]interface{}{
			"result_code": cb.ResultCode,
			"result_desc": cb.ResultDesc,
		},
	}

	if _, err := c.reconcile.Process(ctx.Context(), signal); err != nil {
		fmt.Printf("[CALLBACK ERROR] Processing failed for CheckoutRequestID=%s: %v\n", cb.CheckoutRequestID, err)
	}
	return ctx.JSON(ack)
}

func claimedFromSnapStatus(status string) string {
	switch status {
	case "settlement", "capture":
		return "success"
	case "deny", "cancel", "expire", "failure":
		return "failure"
	case "pending":
		return "pending"
	default:
		return ""
	}
}
