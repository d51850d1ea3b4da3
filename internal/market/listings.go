package market

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// RelatedLimit caps RelatedProducts.
const RelatedLimit = 4

// RelatedProducts returns up to RelatedLimit other Active listings in p's
// category, in catalog order.
func (c *Catalog) RelatedProducts(p Product) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Product
	for _, other := range c.products {
		if len(out) == RelatedLimit {
			break
		}
		if other.ID == p.ID || other.Category != p.Category || other.Status != StatusActive {
			continue
		}
		out = append(out, cloneProduct(other))
	}
	return out
}

// SellerListings loads every listing of sellerID whatever its status,
// newest first. The catalog itself only holds Active listings.
func (c *Catalog) SellerListings(ctx context.Context, sellerID string) ([]Product, error) {
	rows, err := c.backend.ListSellerProducts(ctx, sellerID)
	if err != nil {
		c.opts.log.Warn("seller listings unavailable", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, fmt.Errorf("seller listings: %w", err)
	}
	products := joinSellers(ctx, c.backend, rows, c.opts.sellerBatch, c.opts.log)
	slices.SortStableFunc(products, func(a, b Product) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return products, nil
}

// ListingCounts tallies listings by status.
type ListingCounts struct {
	Active   int `json:"active"`
	Sold     int `json:"sold"`
	Reserved int `json:"reserved"`
}

func CountListings(products []Product) ListingCounts {
	var n ListingCounts
	for _, p := range products {
		switch p.Status {
		case StatusActive:
			n.Active++
		case StatusSold:
			n.Sold++
		case StatusReserved:
			n.Reserved++
		}
	}
	return n
}
