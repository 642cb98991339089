package controller

import (
	"finance-rag-be/internal/dto"
	"finance-rag-be/internal/pkg/serverutils"
	"finance-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INewsController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
}

type newsController struct {
	newsService service.INewsService
}

func NewNewsController(newsService service.INewsService) INewsController {
	return &newsController{newsService: newsService}
}

func (c *newsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/news/v1")
	h.Get("", c.List)
}

func (c *newsController) List(ctx *fiber.Ctx) error {
	var req dto.ListNewsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.newsService.List(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list news", res))
}
