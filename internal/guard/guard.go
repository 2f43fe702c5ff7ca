// Package guard decides whether a protected screen may render. It only
// consults the session store; credential validity is left to the remote API.
package guard

import (
	"context"
	"errors"

	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/routepath"
	"storefront-admin/internal/session"

	"github.com/gofiber/fiber/v2"
)

const (
	ModuleName = "GUARD"
	localsKey  = "session"
)

var ErrUnauthenticated = errors.New("not logged in")

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

type SessionReader interface {
	Get(ctx context.Context) (*session.Session, bool)
}

type RouteGuard struct {
	sessions SessionReader
	loginURL string
	logger   logger.ILogger
}

func New(sessions SessionReader, log logger.ILogger) *RouteGuard {
	return &RouteGuard{sessions: sessions, loginURL: routepath.Login, logger: log}
}

// Evaluate runs on every navigation. The session is nil when Unauthenticated.
func (g *RouteGuard) Evaluate(ctx context.Context) (State, *session.Session) {
	sess, ok := g.sessions.Get(ctx)
	if !ok {
		return Unauthenticated, nil
	}
	return Authenticated, sess
}

// Require is Evaluate for callers without a redirect, such as the CLI.
func (g *RouteGuard) Require(ctx context.Context) (*session.Session, error) {
	state, sess := g.Evaluate(ctx)
	if state != Authenticated {
		return nil, ErrUnauthenticated
	}
	return sess, nil
}

// Middleware redirects to the login screen before any protected handler
// runs. Public paths pass through untouched.
func (g *RouteGuard) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if routepath.IsPublic(ctx.Path()) {
			return ctx.Next()
		}

		state, sess := g.Evaluate(ctx.UserContext())
		if state == Unauthenticated {
			g.logger.Debug(ModuleName, "Redirecting unauthenticated request", map[string]interface{}{
				"path": ctx.Path(),
			})
			return ctx.Redirect(g.loginURL, fiber.StatusFound)
		}

		ctx.Locals(localsKey, sess)
		ctx.SetUserContext(session.WithContext(ctx.UserContext(), sess))
		return ctx.Next()
	}
}

// SessionFromCtx returns the session the middleware admitted the request with.
func SessionFromCtx(ctx *fiber.Ctx) (*session.Session, bool) {
	sess, ok := ctx.Locals(localsKey).(*session.Session)
	return sess, ok && sess != nil
}
