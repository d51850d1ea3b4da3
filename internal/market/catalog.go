package market

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/retry"
)

// ErrFeedClosed is returned by Watch when the change stream ends before
// the context does.
var ErrFeedClosed = errors.New("change feed closed")

// Catalog holds the Active listings, newest first.
type Catalog struct {
	backend CatalogBackend
	feed    ChangeFeed
	session SessionInfo
	opts    options

	// Each FetchProducts takes the next generation; only the latest issued
	// one may publish its result.
	gen      atomic.Uint64
	inflight atomic.Int32

	mu       sync.RWMutex
	products []Product
}

func NewCatalog(backend CatalogBackend, feed ChangeFeed, session SessionInfo, opts ...Option) *Catalog {
	return &Catalog{
		backend: backend,
		feed:    feed,
		session: session,
		opts:    newOptions(opts),
	}
}

// FetchProducts reloads the listing set page by page. A page that still
// fails after its retries is skipped; the remaining pages are fetched.
func (c *Catalog) FetchProducts(ctx context.Context) error {
	gen := c.gen.Add(1)
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	log := c.opts.log.With(zap.Uint64("generation", gen))

	var (
		rows   []ProductRow
		failed int
		pages  int
	)
	for page := 0; page < c.opts.maxPages; page++ {
		if page > 0 && c.opts.pageDelay > 0 {
			if err := sleep(ctx, c.opts.pageDelay); err != nil {
				return err
			}
		}
		offset := page * c.opts.pageSize
		pages++

		batch, err := retry.Value(ctx, c.opts.retry, func(ctx context.Context) ([]ProductRow, error) {
			got, err := c.backend.ListActiveProducts(ctx, offset, c.opts.pageSize)
			if err != nil && permanent(err) {
				return nil, retry.Permanent(err)
			}
			return got, err
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("dropping product page", zap.Int("offset", offset), zap.Error(err))
			failed++
			continue
		}
		rows = append(rows, batch...)
		if len(batch) < c.opts.pageSize {
			break
		}
	}
	if failed > 0 && len(rows) == 0 {
		return fmt.Errorf("fetch products: %d of %d pages failed and nothing was loaded", failed, pages)
	}

	active := rows[:0]
	for _, r := range rows {
		if r.Status == StatusActive {
			active = append(active, r)
		}
	}
	products := joinSellers(ctx, c.backend, active, c.opts.sellerBatch, log)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen.Load() != gen {
		log.Debug("discarding stale product fetch")
		return nil
	}
	c.products = products
	log.Debug("products loaded", zap.Int("count", len(products)), zap.Int("dropped_pages", failed))
	return nil
}

// CreateProduct lists a new item for the signed-in user and returns its id.
func (c *Catalog) CreateProduct(ctx context.Context, in ProductInput) (string, error) {
	if c.session.UserID() == "" {
		c.opts.notify.Error("You must be logged in to list a product")
		return "", ErrUnauthenticated
	}
	if err := c.opts.validate.Struct(in); err != nil {
		err = inputError(err)
		c.opts.notify.Error(err.Error())
		return "", err
	}

	id, err := c.backend.InsertProduct(ctx, in.row())
	if err != nil {
		c.opts.log.Warn("create product failed", zap.Error(err))
		c.opts.notify.Error(userMessage(err))
		return "", fmt.Errorf("create product: %w", err)
	}
	c.opts.notify.Success("Product listed successfully!")

	if err := c.FetchProducts(ctx); err != nil {
		c.opts.log.Warn("refresh after create failed", zap.Error(err))
	}
	return id, nil
}

// UpdateProduct sends only the fields set in u, then reloads the catalog.
func (c *Catalog) UpdateProduct(ctx context.Context, id string, u ProductUpdate) error {
	if c.session.UserID() == "" {
		c.opts.notify.Error("You must be logged in to edit a product")
		return ErrUnauthenticated
	}
	if err := c.opts.validate.Struct(u); err != nil {
		err = inputError(err)
		c.opts.notify.Error(err.Error())
		return err
	}

	if err := c.backend.UpdateProduct(ctx, id, u.patch()); err != nil {
		c.opts.log.Warn("update product failed", zap.String("product_id", id), zap.Error(err))
		c.opts.notify.Error(userMessage(err))
		return fmt.Errorf("update product: %w", err)
	}
	c.opts.notify.Success("Product updated successfully!")

	if err := c.FetchProducts(ctx); err != nil {
		c.opts.log.Warn("refresh after update failed", zap.Error(err))
	}
	return nil
}

// DeleteProduct removes a listing.
func (c *Catalog) DeleteProduct(ctx context.Context, id string) error {
	if c.session.UserID() == "" {
		c.opts.notify.Error("You must be logged in to delete a product")
		return ErrUnauthenticated
	}
	if err := c.backend.DeleteProduct(ctx, id); err != nil {
		c.opts.log.Warn("delete product failed", zap.String("product_id", id), zap.Error(err))
		c.opts.notify.Error(userMessage(err))
		return fmt.Errorf("delete product: %w", err)
	}

	c.mu.Lock()
	kept := c.products[:0:0]
	for _, p := range c.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.products = kept
	c.mu.Unlock()

	c.opts.notify.Success("Product deleted successfully!")
	return nil
}

// Products returns a copy of the loaded listings.
func (c *Catalog) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, len(c.products))
	for i, p := range c.products {
		out[i] = cloneProduct(p)
	}
	return out
}

func (c *Catalog) Product(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return cloneProduct(p), true
		}
	}
	return Product{}, false
}

// UserProducts returns the loaded listings of one seller.
func (c *Catalog) UserProducts(sellerID string) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Product
	for _, p := range c.products {
		if p.SellerID == sellerID {
			out = append(out, cloneProduct(p))
		}
	}
	return out
}

// ProductsIn returns the loaded listings whose id is in ids, in catalog order.
func (c *Catalog) ProductsIn(ids []string) []Product {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Product
	for _, p := range c.products {
		if _, ok := want[p.ID]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out
}

// Loading reports whether a fetch is in flight.
func (c *Catalog) Loading() bool { return c.inflight.Load() > 0 }

// Watch refetches the catalog on every products change until ctx ends.
func (c *Catalog) Watch(ctx context.Context) error {
	return watch(ctx, c.feed, TableProducts, c.opts, c.FetchProducts)
}

func watch(ctx context.Context, feed ChangeFeed, table string, o options, refetch func(context.Context) error) error {
	log := o.log
	events, err := feed.Subscribe(ctx, table)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", table, err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrFeedClosed
			}
			log.Debug("change received", zap.String("table", ev.Table), zap.String("op", ev.Op), zap.String("record_id", ev.RecordID))
			if err := refetch(ctx); err != nil {
				if ctx.Err() == nil {
					log.Warn("refetch after change failed", zap.String("table", table), zap.Error(err))
				}
				continue
			}
			if o.onChange != nil {
				o.onChange(table)
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
