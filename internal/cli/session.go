package cli

import (
	"context"
	"errors"

	"storefront-admin/internal/bootstrap"
	"storefront-admin/internal/guard"
	"storefront-admin/internal/session"

	"github.com/spf13/cobra"
)

type runFunc func(ctx context.Context, c *bootstrap.Container, out *OutputFormatter) error

type guardedFunc func(ctx context.Context, c *bootstrap.Container, sess *session.Session, out *OutputFormatter) error

func run(cmd *cobra.Command, opts *RootOptions, fn runFunc) error {
	c, err := opts.open(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "start adminctl", err)
	}
	defer c.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, c, formatter(cmd, opts))
}

// runGuarded refuses to run fn without a stored session, the same way the
// dashboard sends every protected path to the login screen.
func runGuarded(cmd *cobra.Command, opts *RootOptions, fn guardedFunc) error {
	return run(cmd, opts, func(ctx context.Context, c *bootstrap.Container, out *OutputFormatter) error {
		sess, err := c.Guard.Require(ctx)
		if errors.Is(err, guard.ErrUnauthenticated) {
			return NewExitError(ExitUnauthenticated, "not logged in, run `adminctl login` first")
		}
		if err != nil {
			return err
		}
		out.VerboseLog("Acting as %s (%s)", sess.Username, sess.UserID)
		return fn(session.WithContext(ctx, sess), c, sess, out)
	})
}
