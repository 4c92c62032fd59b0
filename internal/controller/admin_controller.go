package controller

import (
	"context"
	"errors"
	"time"

	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/pkg/logger"
	"tumaini-be/internal/pkg/serverutils"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	ListDonations(ctx *fiber.Ctx) error
	DonationEvents(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	Reject(ctx *fiber.Ctx) error
	Refund(ctx *fiber.Ctx) error
	ListPledges(ctx *fiber.Ctx) error
	DuePledges(ctx *fiber.Ctx) error
	PausePledge(ctx *fiber.Ctx) error
	ResumePledge(ctx *fiber.Ctx) error
	CancelPledge(ctx *fiber.Ctx) error
	ListLogs(ctx *fiber.Ctx) error
	GetLog(ctx *fiber.Ctx) error
}

type adminController struct {
	admin   service.IAdminService
	pledges service.IPledgeService
	logs    logger.ILogger
}

func NewAdminController(admin service.IAdminService, pledges service.IPledgeService, logs logger.ILogger) IAdminController {
	return &adminController{admin: admin, pledges: pledges, logs: logs}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Post("/login", c.Login)

	protected := h.Group("", serverutils.JwtMiddleware, serverutils.AdminOnly)
	protected.Get("/donations", c.ListDonations)
	protected.Get("/donations/:reference/events", c.DonationEvents)
	protected.Post("/donations/:reference/approve", c.Approve)
	protected.Post("/donations/:reference/reject", c.Reject)
	protected.Post("/donations/:reference/refund", c.Refund)
	protected.Get("/pledges", c.ListPledges)
	protected.Get("/pledges/due", c.DuePledges)
	protected.Post("/pledges/:id/pause", c.PausePledge)
	protected.Post("/pledges/:id/resume", c.ResumePledge)
	protected.Post("/pledges/:id/cancel", c.CancelPledge)
	protected.Get("/logs", c.ListLogs)
	protected.Get("/logs/:id", c.GetLog)
}

func (c *adminController) Login(ctx *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.admin.Login(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "invalid credentials"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *adminController) ListDonations(ctx *fiber.Ctx) error {
	donations, err := c.admin.ListDonations(ctx.Context(),
		ctx.Query("status"),
		ctx.Query("method"),
		ctx.QueryInt("limit", 50),
		ctx.QueryInt("offset", 0),
	)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	res := make([]dto.AdminDonationResponse, 0, len(donations))
	for _, d := range donations {
		res = append(res, toAdminDonationResponse(d))
	}
	return ctx.JSON(serverutils.SuccessResponse("Donations", res))
}

func (c *adminController) DonationEvents(ctx *fiber.Ctx) error {
	donation, events, err := c.admin.DonationEvents(ctx.Context(), ctx.Params("reference"))
	if err != nil {
		if errors.Is(err, contract.ErrDonationNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "donation not found"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	eventRes := make([]dto.AdminEventResponse, 0, len(events))
	for _, e := range events {
		eventRes = append(eventRes, dto.AdminEventResponse{
			Kind:      e.Kind,
			Actor:     e.Actor,
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Donation events", fiber.Map{
		"donation": toAdminDonationResponse(donation),
		"events":   eventRes,
	}))
}

func (c *adminController) Approve(ctx *fiber.Ctx) error {
	return c.decide(ctx, c.admin.ApproveBankTransfer, "Donation approved")
}

func (c *adminController) Reject(ctx *fiber.Ctx) error {
	return c.decide(ctx, c.admin.RejectBankTransfer, "Donation rejected")
}

func (c *adminController) Refund(ctx *fiber.Ctx) error {
	return c.decide(ctx, c.admin.Refund, "Donation refunded")
}

func (c *adminController) decide(ctx *fiber.Ctx, action func(context.Context, string, string, string) (*entity.Donation, error), message string) error {
	var req dto.AdminDecisionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}
	}

	adminEmail, _ := ctx.Locals("email").(string)
	donation, err := action(ctx.Context(), ctx.Params("reference"), adminEmail, req.Note)
	if err != nil {
		if errors.Is(err, contract.ErrDonationNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "donation not found"))
		}
		if errors.Is(err, service.ErrDecisionNotAllowed) {
			return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse(message, toAdminDonationResponse(donation)))
}

func (c *adminController) ListPledges(ctx *fiber.Ctx) error {
	pledges, err := c.pledges.List(ctx.Context(),
		ctx.Query("status"),
		ctx.QueryInt("limit", 50),
		ctx.QueryInt("offset", 0),
	)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	res := make([]dto.PledgeResponse, 0, len(pledges))
	for _, p := range pledges {
		res = append(res, toPledgeResponse(p))
	}
	return ctx.JSON(serverutils.SuccessResponse("Pledges", res))
}

// DuePledges lists active pledges whose next charge date has arrived, for
// the manual charge-run view. as_of defaults to now.
func (c *adminController) DuePledges(ctx *fiber.Ctx) error {
	asOf := time.Now()
	if q := ctx.Query("as_of"); q != "" {
		parsed, err := time.Parse(time.RFC3339, q)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "as_of must be RFC3339"))
		}
		asOf = parsed
	}

	pledges, err := c.pledges.DueForCharge(ctx.Context(), asOf)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	res := make([]dto.PledgeResponse, 0, len(pledges))
	for _, p := range pledges {
		res = append(res, toPledgeResponse(p))
	}
	return ctx.JSON(serverutils.SuccessResponse("Due pledges", res))
}

func (c *adminController) PausePledge(ctx *fiber.Ctx) error {
	return c.pledgeLifecycle(ctx, c.pledges.Pause, "Pledge paused")
}

func (c *adminController) ResumePledge(ctx *fiber.Ctx) error {
	return c.pledgeLifecycle(ctx, c.pledges.Resume, "Pledge resumed")
}

func (c *adminController) CancelPledge(ctx *fiber.Ctx) error {
	return c.pledgeLifecycle(ctx, c.pledges.Cancel, "Pledge cancelled")
}

func (c *adminController) pledgeLifecycle(ctx *fiber.Ctx, action func(context.Context, uuid.UUID) (*entity.RecurringPledge, error), message string) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid pledge id"))
	}

	pledge, err := action(ctx.Context(), id)
	if err != nil {
		if errors.Is(err, contract.ErrPledgeNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "pledge not found"))
		}
		if errors.Is(err, contract.ErrInvalidPledgeTransition) {
			return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, "pledge cannot change to that status"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse(message, toPledgeResponse(pledge)))
}

// ListLogs exposes the structured application log to the dashboard.
func (c *adminController) ListLogs(ctx *fiber.Ctx) error {
	entries, err := c.logs.GetLogs(
		ctx.Query("level"),
		ctx.QueryInt("limit", 100),
		ctx.QueryInt("offset", 0),
	)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Logs", entries))
}

// GetLog resolves a single log entry by the content hash the list view
// hands out.
func (c *adminController) GetLog(ctx *fiber.Ctx) error {
	entry, err := c.logs.GetLogById(ctx.Params("id"))
	if err != nil {
		if errors.Is(err, logger.ErrLogNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "log entry not found"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Log entry", entry))
}

func toAdminDonationResponse(d *entity.Donation) dto.AdminDonationResponse {
	return dto.AdminDonationResponse{
		Id:            d.Id.String(),
		Reference:     d.Reference,
		Amount:        d.Amount,
		Currency:      d.Currency,
		DonorEmail:    d.DonorEmail,
		DonorName:     d.DonorName,
		Method:        string(d.Method),
		Status:        string(d.Status),
		ProviderToken: d.ProviderToken,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
