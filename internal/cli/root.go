// Package cli is the adminctl command line. It drives the same services as
// the HTTP dashboard, behind the same session gate.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront-admin/internal/bootstrap"
	"storefront-admin/internal/config"
	"storefront-admin/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	open Opener
}

// Opener builds the dependency container for one command run.
type Opener func(opts *RootOptions) (*bootstrap.Container, error)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for adminctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openContainer)
}

func newRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "Storefront admin from the terminal",
		Long:          "Log in as a storefront operator and manage users, products and categories.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewUsersCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openContainer wires the real stack. Logs stay in the log file unless
// --verbose mirrors them to the console.
func openContainer(opts *RootOptions) (*bootstrap.Container, error) {
	cfg := config.Load()

	var log logger.ILogger
	if opts.Verbose {
		log = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	} else {
		log = logger.NewIsolatedLogger(cfg.App.LogFilePath)
	}
	return bootstrap.NewContainer(cfg, bootstrap.WithLogger(log)), nil
}

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// Main runs adminctl and returns the process exit code.
func Main(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		PrintError(os.Stderr, err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
