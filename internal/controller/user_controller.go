package controller

import (
	"storefront-admin/internal/config"
	"storefront-admin/internal/dto"
	"storefront-admin/internal/pkg/serverutils"
	"storefront-admin/internal/routepath"
	"storefront-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	CreateScreen(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	EditScreen(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
	ui      config.UIConfig
}

func NewUserController(service service.IUserService, ui config.UIConfig) IUserController {
	return &userController{service: service, ui: ui}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	r.Get(routepath.Users, c.List)
	r.Get(routepath.UsersCreate, c.CreateScreen)
	r.Post(routepath.UsersCreate, c.Create)
	r.Get(routepath.UsersEdit, c.EditScreen)
	r.Post(routepath.UsersEdit, c.Update)
	r.Delete(routepath.UsersItem, c.Delete)
}

func (c *userController) List(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Users", c.service.List(ctx.UserContext())))
}

func (c *userController) CreateScreen(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Create user", dto.ScreenState[*dto.UserResponse]{Status: "idle"}))
}

func (c *userController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user form")
	}

	res, err := c.service.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Successfully created new user", dto.ActionResult{
		Result:   res,
		Redirect: dto.NewRedirect(routepath.Users, c.ui.NavigateDelay),
	}))
}

func (c *userController) EditScreen(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Edit user", c.service.Show(ctx.UserContext(), ctx.Params("id"))))
}

func (c *userController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user form")
	}
	req.ID = ctx.Params("id")

	res, err := c.service.Update(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User updated successfully", dto.ActionResult{
		Result:   res,
		Redirect: dto.NewRedirect(routepath.Users, c.ui.NavigateDelay),
	}))
}

func (c *userController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Deleted successfully", nil))
}
