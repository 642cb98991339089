package controller

import (
	"errors"

	"finance-rag-be/internal/dto"
	"finance-rag-be/internal/pkg/serverutils"
	"finance-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIngestionController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Enqueue(ctx *fiber.Ctx) error
	Backfill(ctx *fiber.Ctx) error
}

type ingestionController struct {
	ingestionService service.IIngestionService
}

func NewIngestionController(ingestionService service.IIngestionService) IIngestionController {
	return &ingestionController{
		ingestionService: ingestionService,
	}
}

func (c *ingestionController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/ingestion/v1")
	h.Use(auth)
	h.Post("", c.Enqueue)
	h.Post("backfill", c.Backfill)
}

func (c *ingestionController) Enqueue(ctx *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestionService.Enqueue(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.Response{
		Success: true,
		Code:    fiber.StatusAccepted,
		Message: "Ingestion job queued",
		Data:    res,
	})
}

func (c *ingestionController) Backfill(ctx *fiber.Ctx) error {
	var req dto.BackfillRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestionService.Backfill(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrIngestionRunning) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success backfill vector index", res))
}
