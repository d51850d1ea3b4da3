package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
)

type WatchOptions struct {
	*RootOptions
	Tables     []string
	RetryDelay time.Duration

	mu sync.Mutex
}

// Update is one line of watch output.
type Update struct {
	Table   string    `json:"table"`
	At      time.Time `json:"at"`
	Summary string    `json:"summary"`
}

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow live changes to listings, your wishlist and your inbox",
		Long: `Subscribes to the server's change feed and keeps the local view current
until interrupted. Wishlist and message updates need a signed-in session.`,
		Example: `  marketctl watch
  marketctl watch --table products --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range opts.Tables {
				if !slices.Contains(allTables, t) {
					return WrapExitError(ExitCommandError, fmt.Sprintf("unknown table %q: must be one of %v", t, allTables), nil)
				}
			}
			return opts.watch(cmd.Context())
		},
	}

	cmd.Flags().StringSliceVar(&opts.Tables, "table", allTables, "tables to follow")
	cmd.Flags().DurationVar(&opts.RetryDelay, "retry-delay", 3*time.Second, "wait before resubscribing after the feed drops")

	return cmd
}

var allTables = []string{market.TableProducts, market.TableWishlists, market.TableMessages}

func (o *WatchOptions) watch(ctx context.Context) error {
	changes := make(chan string, 16)
	app, err := o.open(o.RootOptions, o.Output().Notifier(), market.WithChangeHook(func(table string) {
		select {
		case changes <- table:
		default:
		}
	}))
	if err != nil {
		return err
	}
	defer app.Close()

	loops := map[string]func(context.Context) error{
		market.TableProducts: app.Catalog.Watch,
	}
	prime := map[string]func(context.Context) error{
		market.TableProducts: app.Catalog.FetchProducts,
	}
	if app.Session.IsAuthenticated() {
		loops[market.TableWishlists] = app.Wishlist.Watch
		loops[market.TableMessages] = app.Messages.Watch
		prime[market.TableWishlists] = app.Wishlist.FetchWishlist
		prime[market.TableMessages] = app.Messages.FetchMessages
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, table := range o.Tables {
		loop, ok := loops[table]
		if !ok {
			o.Output().Notifier().Error(fmt.Sprintf("Sign in to follow %s", table))
			continue
		}
		fetch := prime[table]
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, app.Timeout)
			err := fetch(fctx)
			cancel()
			if err == nil {
				o.report(app, table)
			}
			return resubscribe(ctx, loop, o.RetryDelay)
		})
	}
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case table := <-changes:
				o.report(app, table)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// resubscribe runs loop again whenever the feed drops, until ctx ends.
// Authentication failures are final.
func resubscribe(ctx context.Context, loop func(context.Context) error, delay time.Duration) error {
	for {
		err := loop(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil || market.IsUnauthenticated(err) {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

func (o *WatchOptions) report(app *App, table string) {
	u := Update{Table: table, At: time.Now()}
	switch table {
	case market.TableProducts:
		u.Summary = fmt.Sprintf("%d active listings", len(app.Catalog.Products()))
	case market.TableWishlists:
		u.Summary = fmt.Sprintf("%d saved listings", len(app.Wishlist.IDs()))
	case market.TableMessages:
		u.Summary = fmt.Sprintf("%d unread in %d conversations", app.Messages.UnreadTotal(), len(app.Messages.Conversations()))
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	_ = o.Output().Print(u, func(w io.Writer) {
		fmt.Fprintf(w, "%s  %-10s %s\n", u.At.Format("15:04:05"), u.Table, u.Summary)
	})
}
