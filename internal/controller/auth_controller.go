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

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	LoginScreen(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Home(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
	ui      config.UIConfig
}

func NewAuthController(service service.IAuthService, ui config.UIConfig) IAuthController {
	return &authController{service: service, ui: ui}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	r.Get(routepath.Login, c.LoginScreen)
	r.Post(routepath.Login, c.Login)
	r.Post(routepath.Logout, c.Logout)
	r.Get(routepath.Root, c.Home)
}

func (c *authController) LoginScreen(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Login", c.service.LoginScreen(ctx.UserContext())))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid login form")
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Login successful", dto.LoginResult{
		UserID:   res.UserID,
		Username: res.Username,
		Type:     res.Type,
		Redirect: dto.NewRedirect(routepath.Root, c.ui.LoginNavigateDelay),
	}))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	if err := c.service.Logout(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Logged out", dto.ActionResult{
		Redirect: dto.NewRedirect(routepath.Login, 0),
	}))
}

func (c *authController) Home(ctx *fiber.Ctx) error {
	sess, ok := guard.SessionFromCtx(ctx)
	if !ok {
		return ctx.Redirect(routepath.Login, fiber.StatusFound)
	}
	return ctx.JSON(serverutils.SuccessResponse("Home", c.service.Home(ctx.UserContext(), sess)))
}
