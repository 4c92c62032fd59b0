package controller

import (
	"context"
	"errors"

	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/pkg/serverutils"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPledgeController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Pause(ctx *fiber.Ctx) error
	Resume(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type pledgeController struct {
	service service.IPledgeService
}

func NewPledgeController(service service.IPledgeService) IPledgeController {
	return &pledgeController{service: service}
}

func (c *pledgeController) RegisterRoutes(r fiber.Router) {
	p := r.Group("/pledges")
	p.Post("/", c.Create)
	p.Get("/:id", c.Get)
	p.Post("/:id/pause", c.Pause)
	p.Post("/:id/resume", c.Resume)
	p.Post("/:id/cancel", c.Cancel)
}

func (c *pledgeController) Create(ctx *fiber.Ctx) error {
	var req dto.CreatePledgeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	pledge, err := c.service.Create(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Pledge created", toPledgeResponse(pledge)))
}

func (c *pledgeController) Get(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid pledge id"))
	}

	pledge, err := c.service.FindById(ctx.Context(), id)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	if pledge == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "pledge not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Pledge", toPledgeResponse(pledge)))
}

func (c *pledgeController) Pause(ctx *fiber.Ctx) error {
	return c.lifecycle(ctx, c.service.Pause, "Pledge paused")
}

func (c *pledgeController) Resume(ctx *fiber.Ctx) error {
	return c.lifecycle(ctx, c.service.Resume, "Pledge resumed")
}

func (c *pledgeController) Cancel(ctx *fiber.Ctx) error {
	return c.lifecycle(ctx, c.service.Cancel, "Pledge cancelled")
}

func (c *pledgeController) lifecycle(ctx *fiber.Ctx, action func(context.Context, uuid.UUID) (*entity.RecurringPledge, error), message string) error {
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

func toPledgeResponse(pledge *entity.RecurringPledge) dto.PledgeResponse {
	return dto.PledgeResponse{
		Id:             pledge.Id.String(),
		DonorEmail:     pledge.DonorEmail,
		DonorName:      pledge.DonorName,
		Amount:         pledge.Amount,
		Currency:       pledge.Currency,
		Frequency:      string(pledge.Frequency),
		Status:         string(pledge.Status),
		NextChargeDate: pledge.NextChargeDate,
		CreatedAt:      pledge.CreatedAt,
	}
}
