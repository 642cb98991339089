package controller

import (
	"finance-rag-be/internal/pkg/serverutils"
	"finance-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	healthService service.IHealthService
}

func NewHealthController(healthService service.IHealthService) IHealthController {
	return &healthController{healthService: healthService}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health/v1", c.Health)
}

// Health answers 200 even when degraded; the body carries per-check status.
func (c *healthController) Health(ctx *fiber.Ctx) error {
	res := c.healthService.Check(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Health check", res))
}
