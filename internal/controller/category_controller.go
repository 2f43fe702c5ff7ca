package controller

import (
	"storefront-admin/internal/config"
	"storefront-admin/internal/dto"
	"storefront-admin/internal/pkg/serverutils"
	"storefront-admin/internal/routepath"
	"storefront-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICategoryController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	CreateScreen(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	EditScreen(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type categoryController struct {
	service service.ICategoryService
	ui      config.UIConfig
}

func NewCategoryController(service service.ICategoryService, ui config.UIConfig) ICategoryController {
	return &categoryController{service: service, ui: ui}
}

func (c *categoryController) RegisterRoutes(r fiber.Router) {
	r.Get(routepath.Categories, c.List)
	r.Get(routepath.CategoriesCreate, c.CreateScreen)
	r.Post(routepath.CategoriesCreate, c.Create)
	r.Get(routepath.CategoriesEdit, c.EditScreen)
	r.Post(routepath.CategoriesEdit, c.Update)
	r.Delete(routepath.CategoriesItem, c.Delete)
}

func (c *categoryController) List(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Categories", c.service.List(ctx.UserContext())))
}

func (c *categoryController) CreateScreen(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Create category", dto.ScreenState[*dto.CategoryResponse]{Status: "idle"}))
}

func (c *categoryController) Create(ctx *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid category form")
	}

	res, err := c.service.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Category created successfully", dto.ActionResult{
		Result:   res,
		Redirect: dto.NewRedirect(routepath.Categories, c.ui.NavigateDelay),
	}))
}

func (c *categoryController) EditScreen(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Edit category", c.service.Show(ctx.UserContext(), ctx.Params("id"))))
}

func (c *categoryController) Update(ctx *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid category form")
	}
	req.ID = ctx.Params("id")

	res, err := c.service.Update(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Category updated successfully", dto.ActionResult{
		Result:   res,
		Redirect: dto.NewRedirect(routepath.Categories, c.ui.NavigateDelay),
	}))
}

func (c *categoryController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Deleted successfully", nil))
}
