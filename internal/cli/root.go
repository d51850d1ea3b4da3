// Package cli implements marketctl, the command-line face of Campus Market.
package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
)

// RootOptions holds the global flags.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Addr     string
	Insecure bool

	open Opener
	out  *OutputFormatter
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand builds marketctl. A nil open uses DefaultOpener.
func NewRootCommand(open Opener) *cobra.Command {
	cmd, _ := newRootCommand(open)
	return cmd
}

// Execute runs marketctl with the process arguments, reports a failure in
// the selected output format and returns the exit code.
func Execute(ctx context.Context) int {
	cmd, opts := newRootCommand(nil)
	if err := cmd.ExecuteContext(ctx); err != nil {
		opts.Output().Error(err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

func newRootCommand(open Opener) (*cobra.Command, *RootOptions) {
	if open == nil {
		open = DefaultOpener
	}
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "marketctl",
		Short: "Campus Market from the terminal",
		Long: `Buy and sell within your campus: browse listings, keep a wishlist
and message sellers. Accounts are limited to the college email domain.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			opts.out = &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", "", "server address (overrides client.addr)")
	cmd.PersistentFlags().BoolVar(&opts.Insecure, "insecure", false, "connect without TLS")

	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewWishlistCommand(opts))
	cmd.AddCommand(NewMessagesCommand(opts))
	cmd.AddCommand(NewConversationsCommand(opts))
	cmd.AddCommand(NewContactCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd, opts
}

// Output returns the formatter of the current run.
func (o *RootOptions) Output() *OutputFormatter {
	if o.out == nil {
		o.out = &OutputFormatter{Format: "text", Writer: os.Stdout, ErrWriter: os.Stderr}
	}
	return o.out
}

// run opens the app, runs fn under the client timeout and closes the app.
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	app, err := o.open(o, o.Output().Notifier())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), app.Timeout)
	defer cancel()
	return fn(ctx, app)
}

// requireSession fails unless someone is signed in.
func requireSession(app *App) (string, error) {
	id := app.Session.UserID()
	if id == "" {
		return "", fmt.Errorf("%w: run 'marketctl login' first", market.ErrUnauthenticated)
	}
	return id, nil
}
