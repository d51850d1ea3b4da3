package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/validation"
)

var errProductNotFound = errors.New("product not found among active listings")

func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "Browse and manage listings",
	}
	cmd.AddCommand(newProductsListCommand(rootOpts))
	cmd.AddCommand(newProductsShowCommand(rootOpts))
	cmd.AddCommand(newProductsMineCommand(rootOpts))
	cmd.AddCommand(newProductsCreateCommand(rootOpts))
	cmd.AddCommand(newProductsUpdateCommand(rootOpts))
	cmd.AddCommand(newProductsDeleteCommand(rootOpts))
	return cmd
}

type ProductsListOptions struct {
	*RootOptions
	market.Filter
	SortBy string
	Recent bool
}

func newProductsListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsListOptions{RootOptions: rootOpts}
	defaults := market.DefaultFilter()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active products with search, filters and sorting",
		Example: `  marketctl products list --q lamp --max-price 1000 --sort price-low
  marketctl products list --category Books --condition "Like New"
  marketctl products list --recent --category Electronics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := market.ParseSortOrder(opts.SortBy)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --sort", err)
			}
			opts.Filter.Sort = order
			if opts.Filter.Category == "all" {
				opts.Filter.Category = ""
			}
			if opts.Recent {
				opts.Filter.ListedSince = time.Now().Add(-market.RecentWindow)
			}
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if err := app.Catalog.FetchProducts(ctx); err != nil {
					return err
				}
				products := opts.Filter.Apply(app.Catalog.Products())
				return opts.Output().Print(products, func(w io.Writer) { printProducts(w, products) })
			})
		},
	}

	cmd.Flags().StringVar(&opts.Query, "q", "", "search name, description and category")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category ("+strings.Join(validation.Categories, ", ")+")")
	cmd.Flags().StringVar(&opts.Condition, "condition", "", "condition ("+strings.Join(validation.Conditions, ", ")+")")
	cmd.Flags().Int64Var(&opts.MinPrice, "min-price", defaults.MinPrice, "minimum price")
	cmd.Flags().Int64Var(&opts.MaxPrice, "max-price", defaults.MaxPrice, "maximum price (0 for no limit)")
	cmd.Flags().BoolVar(&opts.NegotiableOnly, "negotiable", false, "only negotiable listings")
	cmd.Flags().BoolVar(&opts.Recent, "recent", false, "only listings posted in the last 7 days")
	cmd.Flags().StringVar(&opts.SortBy, "sort", string(market.SortNewest), "newest|oldest|price-low|price-high")

	return cmd
}

func newProductsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one listing and similar items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				p, err := findProduct(ctx, app, args[0])
				if err != nil {
					return err
				}
				detail := productDetail{Product: p, Related: app.Catalog.RelatedProducts(p)}
				return rootOpts.Output().Print(detail, func(w io.Writer) {
					printProduct(w, p)
					if len(detail.Related) > 0 {
						fmt.Fprintln(w, "\nSimilar items:")
						printProducts(w, detail.Related)
					}
				})
			})
		},
	}
}

type productDetail struct {
	market.Product
	Related []market.Product `json:"related"`
}

// sellerListings is the `products mine --all` payload.
type sellerListings struct {
	Listings []market.Product     `json:"listings"`
	Counts   market.ListingCounts `json:"counts"`
}

func newProductsMineCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List your listings",
		Long:  "List your active listings, or with --all every listing with its status and the active/sold totals.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				me, err := requireSession(app)
				if err != nil {
					return err
				}
				if all {
					products, err := app.Catalog.SellerListings(ctx, me)
					if err != nil {
						return err
					}
					out := sellerListings{Listings: products, Counts: market.CountListings(products)}
					return rootOpts.Output().Print(out, func(w io.Writer) { printSellerListings(w, out) })
				}
				if err := app.Catalog.FetchProducts(ctx); err != nil {
					return err
				}
				products := app.Catalog.UserProducts(me)
				return rootOpts.Output().Print(products, func(w io.Writer) { printProducts(w, products) })
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include sold and reserved listings")
	return cmd
}

type ProductFormOptions struct {
	*RootOptions
	Name        string
	Description string
	Price       int64
	Negotiable  bool
	Condition   string
	Category    string
	Location    string
	Images      []string
	Status      string
}

func (o *ProductFormOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Name, "name", "", "product name")
	cmd.Flags().StringVar(&o.Description, "description", "", "description")
	cmd.Flags().Int64Var(&o.Price, "price", 0, "price")
	cmd.Flags().BoolVar(&o.Negotiable, "negotiable", false, "price is negotiable")
	cmd.Flags().StringVar(&o.Condition, "condition", "", strings.Join(validation.Conditions, "|"))
	cmd.Flags().StringVar(&o.Category, "category", "", "category")
	cmd.Flags().StringVar(&o.Location, "location", "", "pickup location")
	cmd.Flags().StringSliceVar(&o.Images, "image", nil, "image file or URL (repeatable, up to 5)")
}

// uploadImages replaces local file paths with uploaded image URLs.
func uploadImages(ctx context.Context, app *App, images []string) ([]string, error) {
	if len(images) > market.MaxImages {
		return nil, fmt.Errorf("%w: at most %d allowed", market.ErrTooManyImages, market.MaxImages)
	}
	out := make([]string, 0, len(images))
	for _, img := range images {
		if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
			out = append(out, img)
			continue
		}
		url, err := app.Backend.UploadImage(ctx, "product", img)
		if err != nil {
			return nil, err
		}
		out = append(out, url)
	}
	return out, nil
}

func newProductsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductFormOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "List an item for sale",
		Example: `  marketctl products create --name "Desk Lamp" --price 450 --condition Good \
    --category "Home & Decor" --location "Hostel B" --image lamp.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if _, err := requireSession(app); err != nil {
					return err
				}
				images, err := uploadImages(ctx, app, opts.Images)
				if err != nil {
					return err
				}
				id, err := app.Catalog.CreateProduct(ctx, market.ProductInput{
					Name:        opts.Name,
					Description: opts.Description,
					Price:       opts.Price,
					Negotiable:  opts.Negotiable,
					Condition:   opts.Condition,
					Category:    opts.Category,
					Location:    opts.Location,
					Images:      images,
				})
				if err != nil {
					return err
				}
				return opts.Output().Print(map[string]string{"id": id}, func(w io.Writer) { fmt.Fprintln(w, id) })
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newProductsUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductFormOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <product-id>",
		Short: "Edit your listing; flags left out stay as they are",
		Example: `  marketctl products update 65f0c0ffee --price 400 --negotiable=false
  marketctl products update 65f0c0ffee --status Sold`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if _, err := requireSession(app); err != nil {
					return err
				}
				u := market.ProductUpdate{
					Name:        changed(cmd, "name", opts.Name),
					Description: changed(cmd, "description", opts.Description),
					Price:       changed(cmd, "price", opts.Price),
					Negotiable:  changed(cmd, "negotiable", opts.Negotiable),
					Condition:   changed(cmd, "condition", opts.Condition),
					Category:    changed(cmd, "category", opts.Category),
					Location:    changed(cmd, "location", opts.Location),
					Status:      changed(cmd, "status", opts.Status),
				}
				if cmd.Flags().Changed("image") {
					images, err := uploadImages(ctx, app, opts.Images)
					if err != nil {
						return err
					}
					u.Images = &images
				}
				return app.Catalog.UpdateProduct(ctx, args[0], u)
			})
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.Status, "status", "", strings.Join(validation.Statuses, "|"))
	return cmd
}

func newProductsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <product-id>",
		Short: "Delete your listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				if _, err := requireSession(app); err != nil {
					return err
				}
				return app.Catalog.DeleteProduct(ctx, args[0])
			})
		},
	}
}

// findProduct loads the catalog and looks up id in it.
func findProduct(ctx context.Context, app *App, id string) (market.Product, error) {
	if err := app.Catalog.FetchProducts(ctx); err != nil {
		return market.Product{}, err
	}
	p, ok := app.Catalog.Product(id)
	if !ok {
		return market.Product{}, fmt.Errorf("%w: %s", errProductNotFound, id)
	}
	return p, nil
}

func NewContactCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "contact <product-id>",
		Short: "Print a WhatsApp link to the seller of a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, app *App) error {
				p, err := findProduct(ctx, app, args[0])
				if err != nil {
					return err
				}
				link, err := market.WhatsAppLink(p)
				if err != nil {
					rootOpts.Output().Notifier().Error("Seller's contact information is not available")
					return err
				}
				return rootOpts.Output().Print(map[string]string{"url": link}, func(w io.Writer) { fmt.Fprintln(w, link) })
			})
		},
	}
}
