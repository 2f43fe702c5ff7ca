package cli

import (
	"context"
	"fmt"
	"time"

	"storefront-admin/internal/bootstrap"
	"storefront-admin/internal/dto"
	"storefront-admin/internal/pkg/serverutils"
	"storefront-admin/internal/session"

	"github.com/spf13/cobra"
)

type LoginOptions struct {
	Username string
	Password string
}

func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with admin credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, rootOpts, func(ctx context.Context, c *bootstrap.Container, out *OutputFormatter) error {
				res, err := c.AuthService.Login(ctx, &dto.LoginRequest{Username: opts.Username, Password: opts.Password})
				if serverutils.IsValidationError(err) {
					return WrapExitError(ExitCommandError, "username and password are required", err)
				}
				if err != nil {
					return remoteError("login failed", err)
				}
				return out.Success(fmt.Sprintf("Logged in as %s", res.Username), dto.LoginResult{
					UserID:   res.UserID,
					Username: res.Username,
					Type:     res.Type,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "admin username")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "admin password")
	return cmd
}

func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, rootOpts, func(ctx context.Context, c *bootstrap.Container, out *OutputFormatter) error {
				if err := c.AuthService.Logout(ctx); err != nil {
					return WrapExitError(ExitFailure, "logout failed", err)
				}
				return out.Success("Logged out", nil)
			})
		},
	}
}

func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(cmd, rootOpts, func(ctx context.Context, c *bootstrap.Container, sess *session.Session, out *OutputFormatter) error {
				home := c.AuthService.Home(ctx, sess)
				msg := fmt.Sprintf("%s (%s)", home.Username, home.UserID)
				if home.Type != "" {
					msg += " type=" + home.Type
				}
				if home.ExpiresAt != nil {
					msg += " expires=" + home.ExpiresAt.Format(time.RFC3339)
				}
				if home.Expired {
					msg += " [expired]"
				}
				return out.Success(msg, home)
			})
		},
	}
}
