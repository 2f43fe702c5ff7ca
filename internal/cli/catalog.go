package cli

import (
	"context"
	"fmt"
	"strconv"

	"storefront-admin/internal/bootstrap"
	"storefront-admin/internal/dto"
	"storefront-admin/internal/service"
	"storefront-admin/internal/session"

	"github.com/spf13/cobra"
)

// screenError fails a listing that has nothing to show.
func screenError[T any](action string, s dto.ScreenState[T]) error {
	if s.Error != "" && !s.HasData {
		return NewExitError(ExitFailure, action+": "+s.Error)
	}
	return nil
}

func staleNotice[T any](s dto.ScreenState[T]) string {
	switch {
	case s.Error != "":
		return "Showing cached data: " + s.Error
	case s.Placeholder:
		return "Showing previous results while loading"
	case s.Stale:
		return "Showing cached data while refreshing"
	}
	return ""
}

func NewUsersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage storefront users",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(cmd, rootOpts, func(ctx context.Context, c *bootstrap.Container, _ *session.Session, out *OutputFormatter) error {
				screen := c.UserService.List(ctx)
				if err := screenError("list users", screen); err != nil {
					return err
				}
				rows := make([][]string, 0, len(screen.Data))
				for _, u := range screen.Data {
					rows = append(rows, []string{u.ID, u.Username, u.Type})
				}
				return out.Table([]string{"ID", "USERNAME", "TYPE"}, rows, screen.Data, staleNotice(screen))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(cmd, rootOpts, func(ctx context.Context, c *bootstrap.Container, _ *session.Session, out *OutputFormatter) error {
				if err := c.UserService.Delete(ctx, args[0]); err != nil {
					return remoteError("delete user", err)
				}
				return out.Success(fmt.Sprintf("Deleted user %s", args[0]), map[string]string{"id": args[0]})
			})
		},
	})

	return cmd
}

func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the operator's products",
	}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List products owned by the logged-in operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(cmd, rootOpts, func(ctx context.Context, c *bootstrap.Container, sess *session.Session, out *OutputFormatter) error {
				screen := c.ProductService.List(ctx, sess, category)
				if err := screenError("list products", screen); err != nil {
					return err
				}
				rows := make([][]string, 0, len(screen.Data.Products))
				for _, p := range screen.Data.Products {
					rows = append(rows, []string{p.ID, p.Name, strconv.FormatFloat(p.Price, 'f', 2, 64), p.Category.Name})
				}
				return out.Table([]string{"ID", "NAME", "PRICE", "CATEGORY"}, rows, screen.Data, staleNotice(screen))
			})
		},
	}
	list.Flags().StringVarP(&category, "category", "c", service.AllCategories, "category id, or all")
	cmd.AddCommand(list)

	return cmd
}

func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Browse product categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(cmd, rootOpts, func(ctx context.Context, c *bootstrap.Container, _ *session.Session, out *OutputFormatter) error {
				screen := c.CategoryService.List(ctx)
				if err := screenError("list categories", screen); err != nil {
					return err
				}
				rows := make([][]string, 0, len(screen.Data))
				for _, cat := range screen.Data {
					rows = append(rows, []string{cat.ID, cat.Name})
				}
				return out.Table([]string{"ID", "NAME"}, rows, screen.Data, staleNotice(screen))
			})
		},
	})

	return cmd
}
