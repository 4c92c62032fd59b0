package controller

import (
	"tumaini-be/internal/dto"
	"tumaini-be/internal/entity"
	"tumaini-be/internal/pkg/serverutils"
	"tumaini-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IContentController interface {
	RegisterRoutes(r fiber.Router)
	GetTiers(ctx *fiber.Ctx) error
	GetImpact(ctx *fiber.Ctx) error
}

type contentController struct {
	service service.IContentService
}

func NewContentController(service service.IContentService) IContentController {
	return &contentController{service: service}
}

func (c *contentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/content")
	h.Get("/tiers", c.GetTiers)
	h.Get("/impact", c.GetImpact)
}

func (c *contentController) GetTiers(ctx *fiber.Ctx) error {
	tiers, err := c.service.ActiveTiers(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	res := make([]dto.TierResponse, 0, len(tiers))
	for _, tier := range tiers {
		res = append(res, dto.TierResponse{
			Id:          tier.Id.String(),
			Name:        tier.Name,
			Amount:      tier.Amount,
			Currency:    tier.Currency,
			Description: tier.Description,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Donation tiers", res))
}

func (c *contentController) GetImpact(ctx *fiber.Ctx) error {
	summary, err := c.service.Impact(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Impact summary", toImpactResponse(summary)))
}

func toImpactResponse(summary *entity.ImpactSummary) dto.ImpactResponse {
	totals := make([]dto.CurrencyTotalResponse, 0, len(summary.TotalRaised))
	for _, t := range summary.TotalRaised {
		totals = append(totals, dto.CurrencyTotalResponse{Currency: t.Currency, Amount: t.Amount})
	}
	return dto.ImpactResponse{
		TotalRaised:    totals,
		CompletedCount: summary.CompletedCount,
		RecurringCount: summary.RecurringCount,
	}
}
