package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

func NewWishlistCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wishlist",
		Aliases: []string{"wl"},
		Short:   "Manage saved listings",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show saved listings that are still active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				if _, err := requireSession(app); err != nil {
					return err
				}
				if err := app.Wishlist.FetchWishlist(ctx); err != nil {
					return err
				}
				products, err := app.Wishlist.WishlistedProducts(ctx)
				if err != nil {
					return err
				}
				return rootOpts.Output().Print(products, func(w io.Writer) { printProducts(w, products) })
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Save a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				return app.Wishlist.Add(ctx, args[0])
			})
		},
	}

	remove := &cobra.Command{
		Use:     "remove <product-id>",
		Aliases: []string{"rm"},
		Short:   "Forget a saved listing",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				return app.Wishlist.Remove(ctx, args[0])
			})
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
