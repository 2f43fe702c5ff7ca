package guard

import (
	"context"
	"net/http/httptest"
	"testing"

	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/repository/memory"
	"storefront-admin/internal/routepath"
	"storefront-admin/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) (*fiber.App, *session.Store) {
	t.Helper()
	store := session.NewStore(memory.NewKeyValueStore(), session.DefaultKey, logger.NewNopLogger())
	g := New(store, logger.NewNopLogger())

	app := fiber.New()
	app.Use(g.Middleware())
	ok := func(ctx *fiber.Ctx) error {
		if sess, found := SessionFromCtx(ctx); found {
			return ctx.SendString("hello " + sess.UserID)
		}
		return ctx.SendString("login screen")
	}
	for _, p := range []string{
		routepath.Root, routepath.Login, routepath.Products, routepath.ProductsCreate,
		routepath.ProductsEdit, routepath.Categories, routepath.CategoriesCreate,
		routepath.CategoriesEdit, routepath.Users, routepath.UsersCreate, routepath.UsersEdit,
	} {
		app.Get(p, ok)
	}
	return app, store
}

func protectedPaths() []string {
	return []string{
		"/", "/products", "/products/create", "/products/edit/p1",
		"/categories", "/categories/create", "/categories/edit/c1",
		"/users", "/users/create", "/users/42/edit",
	}
}

func TestMiddlewareRedirectsEveryProtectedPath(t *testing.T) {
	app, _ := setupApp(t)

	for _, p := range protectedPaths() {
		t.Run(p, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", p, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusFound, resp.StatusCode)
			assert.Equal(t, "/login", resp.Header.Get("Location"))
		})
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddlewareAdmitsAfterLoginAndRedirectsAfterLogout(t *testing.T) {
	app, store := setupApp(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, session.Identity{UserID: "u1"}, "tok"))
	for _, p := range protectedPaths() {
		resp, err := app.Test(httptest.NewRequest("GET", p, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, p)
	}

	require.NoError(t, store.Clear(ctx))
	for _, p := range protectedPaths() {
		resp, err := app.Test(httptest.NewRequest("GET", p, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusFound, resp.StatusCode, p)
	}
}

func TestEvaluateAndRequire(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(memory.NewKeyValueStore(), "", logger.NewNopLogger())
	g := New(store, logger.NewNopLogger())

	state, sess := g.Evaluate(ctx)
	assert.Equal(t, Unauthenticated, state)
	assert.Nil(t, sess)
	_, err := g.Require(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, store.Set(ctx, session.Identity{UserID: "u1"}, "tok"))
	state, sess = g.Evaluate(ctx)
	assert.Equal(t, Authenticated, state)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "authenticated", state.String())
}
