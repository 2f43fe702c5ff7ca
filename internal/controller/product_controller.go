package controller

import (
	"storefront-admin/internal/config"
	"storefront-admin/internal/dto"
	"storefront-admin/internal/guard"
	"storefront-admin/internal/pkg/serverutils"
	"storefront-admin/internal/routepath"
	"storefront-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IProductController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	CreateScreen(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	EditScreen(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type productController struct {
	service service.IProductService
	ui      config.UIConfig
}

func NewProductController(service service.IProductService, ui config.UIConfig) IProductController {
	return &productController{service: service, ui: ui}
}

func (c *productController) RegisterRoutes(r fiber.Router) {
	r.Get(routepath.Products, c.List)
	r.Get(routepath.ProductsCreate, c.CreateScreen)
	r.Post(routepath.ProductsCreate, c.Create)
	r.Get(routepath.ProductsEdit, c.EditScreen)
	r.Post(routepath.ProductsEdit, c.Update)
	r.Delete(routepath.ProductsItem, c.Delete)
}

func (c *productController) List(ctx *fiber.Ctx) error {
	sess, _ := guard.SessionFromCtx(ctx)
	screen := c.service.List(ctx.UserContext(), sess, ctx.Query("category"))
	return ctx.JSON(serverutils.SuccessResponse("Products", screen))
}

func (c *productController) CreateScreen(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Create product", c.service.Form(ctx.UserContext(), "")))
}

func (c *productController) Create(ctx *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product form")
	}

	res, err := c.service.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Product created successfully", dto.ActionResult{
		Result:   res,
		Redirect: dto.NewRedirect(routepath.Products, c.ui.NavigateDelay),
	}))
}

func (c *productController) EditScreen(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Edit product", c.service.Form(ctx.UserContext(), ctx.Params("id"))))
}

func (c *productController) Update(ctx *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid product form")
	}
	req.ID = ctx.Params("id")

	res, err := c.service.Update(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Product updated successfully", dto.ActionResult{
		Result:   res,
		Redirect: dto.NewRedirect(routepath.Products, c.ui.NavigateDelay),
	}))
}

func (c *productController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Deleted successfully", nil))
}
