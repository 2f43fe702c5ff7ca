package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"storefront-admin/pkg/apiclient"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userForm struct {
	Username string `json:"username" validate:"required,min=5"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Type     string `json:"type" validate:"required,oneof=user admin"`
}

func TestValidateRequest(t *testing.T) {
	require.NoError(t, ValidateRequest(userForm{Username: "admin1", Type: "admin"}))

	err := ValidateRequest(userForm{Username: "abc", Password: "123", Type: "root"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	fields := map[string]string{}
	for _, f := range vErr.Fields {
		fields[f.Field] = f.Rule
	}
	assert.Equal(t, map[string]string{"username": "min", "password": "min", "type": "oneof"}, fields)
	assert.Contains(t, vErr.Error(), "username must be at least 5 characters")
}

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{name: "validation", err: &ValidationError{Fields: []FieldError{{Field: "name", Rule: "required", Message: "name is required"}}}, wantStatus: 422, wantMessage: "Validation failed"},
		{name: "api error keeps status", err: &apiclient.APIError{StatusCode: 401, Message: "Invalid credentials"}, wantStatus: 401, wantMessage: "Invalid credentials"},
		{name: "wrapped api error", err: errors.Join(errors.New("delete user"), &apiclient.APIError{StatusCode: 404, Message: "Not found"}), wantStatus: 404, wantMessage: "Not found"},
		{name: "transport", err: &apiclient.TransportError{Method: "GET", URL: "x", Err: errors.New("dial tcp")}, wantStatus: 502, wantMessage: "Unable to reach the server. Check your connection and try again."},
		{name: "fiber error", err: fiber.NewError(fiber.StatusNotFound, "Cannot GET /nope"), wantStatus: 404, wantMessage: "Cannot GET /nope"},
		{name: "unknown", err: errors.New("boom"), wantStatus: 500, wantMessage: apiclient.FallbackMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(ErrorHandlerMiddleware())
			app.Get("/", func(ctx *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var envelope BaseResponse[json.RawMessage]
			require.NoError(t, json.Unmarshal(body, &envelope))
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.wantStatus, envelope.Code)
			assert.Equal(t, tt.wantMessage, envelope.Message)
		})
	}
}
