package serverutils

import (
	"errors"

	"storefront-admin/pkg/apiclient"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps the error taxonomy onto the dashboard's HTTP status codes.
func StatusFor(err error) int {
	var fErr *fiber.Error
	switch {
	case IsValidationError(err):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &fErr):
		return fErr.Code
	case apiclient.IsTransport(err):
		return fiber.StatusBadGateway
	}
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		return apiErr.StatusCode
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware turns errors returned by handlers into the standard
// response envelope. No error ends the process.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)

		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return ctx.Status(code).JSON(ErrorResponseWithData(code, "Validation failed", vErr.Fields))
		}

		var fErr *fiber.Error
		if errors.As(err, &fErr) {
			return ctx.Status(code).JSON(ErrorResponse(code, fErr.Message))
		}

		return ctx.Status(code).JSON(ErrorResponse(code, apiclient.Message(err)))
	}
}
