package market

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/retry"
)

// Wishlist tracks the product ids the signed-in user saved.
type Wishlist struct {
	backend WishlistBackend
	feed    ChangeFeed
	session SessionInfo
	opts    options

	mu  sync.RWMutex
	ids []string
}

func NewWishlist(backend WishlistBackend, feed ChangeFeed, session SessionInfo, opts ...Option) *Wishlist {
	return &Wishlist{
		backend: backend,
		feed:    feed,
		session: session,
		opts:    newOptions(opts),
	}
}

func (w *Wishlist) retried(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, w.opts.retry, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && permanent(err) {
			return retry.Permanent(err)
		}
		return err
	})
}

// FetchWishlist replaces the ids with the backend's. Without a session it
// does nothing.
func (w *Wishlist) FetchWishlist(ctx context.Context) error {
	if w.session.UserID() == "" {
		return nil
	}
	var ids []string
	err := w.retried(ctx, func(ctx context.Context) error {
		var err error
		ids, err = w.backend.ListWishlist(ctx)
		return err
	})
	if err != nil {
		w.opts.log.Warn("wishlist fetch failed", zap.Error(err))
		return fmt.Errorf("fetch wishlist: %w", err)
	}

	w.mu.Lock()
	w.ids = slices.Clone(ids)
	w.mu.Unlock()
	return nil
}

// WishlistedProducts loads the saved products with their sellers. It does
// not touch the catalog.
func (w *Wishlist) WishlistedProducts(ctx context.Context) ([]Product, error) {
	if w.session.UserID() == "" {
		return nil, nil
	}
	var ids []string
	err := w.retried(ctx, func(ctx context.Context) error {
		var err error
		ids, err = w.backend.ListWishlist(ctx)
		return err
	})
	if err != nil {
		w.opts.log.Warn("wishlist fetch failed", zap.Error(err))
		return nil, fmt.Errorf("fetch wishlist: %w", err)
	}

	var rows []ProductRow
	for _, chunk := range chunks(ids, w.opts.wishlistBatch) {
		got, err := w.backend.GetProducts(ctx, chunk)
		if err != nil {
			w.opts.log.Warn("wishlisted products unavailable", zap.Strings("product_ids", chunk), zap.Error(err))
			return nil, fmt.Errorf("fetch wishlisted products: %w", err)
		}
		rows = append(rows, got...)
	}
	return joinSellers(ctx, w.backend, rows, w.opts.sellerBatch, w.opts.log), nil
}

// Add saves productID. Saving an id twice is a no-op.
func (w *Wishlist) Add(ctx context.Context, productID string) error {
	if w.session.UserID() == "" {
		w.opts.notify.Error("Please log in to add items to your wishlist")
		return ErrUnauthenticated
	}
	if w.Contains(productID) {
		return nil
	}

	err := w.retried(ctx, func(ctx context.Context) error {
		return w.backend.AddToWishlist(ctx, productID)
	})
	if err != nil {
		w.opts.log.Warn("wishlist add failed", zap.String("product_id", productID), zap.Error(err))
		w.opts.notify.Error(userMessage(err))
		return fmt.Errorf("add to wishlist: %w", err)
	}

	w.mu.Lock()
	if !slices.Contains(w.ids, productID) {
		w.ids = append(w.ids, productID)
	}
	w.mu.Unlock()
	w.opts.notify.Success("Added to wishlist")
	return nil
}

// Remove drops productID from the wishlist.
func (w *Wishlist) Remove(ctx context.Context, productID string) error {
	if w.session.UserID() == "" {
		w.opts.notify.Error("Please log in to manage your wishlist")
		return ErrUnauthenticated
	}

	err := w.retried(ctx, func(ctx context.Context) error {
		return w.backend.RemoveFromWishlist(ctx, productID)
	})
	if err != nil {
		w.opts.log.Warn("wishlist remove failed", zap.String("product_id", productID), zap.Error(err))
		w.opts.notify.Error(userMessage(err))
		return fmt.Errorf("remove from wishlist: %w", err)
	}

	w.mu.Lock()
	w.ids = slices.DeleteFunc(w.ids, func(id string) bool { return id == productID })
	w.mu.Unlock()
	w.opts.notify.Success("Removed from wishlist")
	return nil
}

func (w *Wishlist) IDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.ids)
}

func (w *Wishlist) Contains(productID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Contains(w.ids, productID)
}

// Watch refetches the wishlist on every wishlists change. It returns at
// once when nobody is signed in.
func (w *Wishlist) Watch(ctx context.Context) error {
	if w.session.UserID() == "" {
		return nil
	}
	return watch(ctx, w.feed, TableWishlists, w.opts, w.FetchWishlist)
}
