package market

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// SortOrder orders a product listing.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
)

// DefaultMaxPrice is the upper bound of the price filter when none is given.
const DefaultMaxPrice = 50000

// RecentWindow is how far back a "recent" listing may have been posted.
const RecentWindow = 7 * 24 * time.Hour

// ParseSortOrder accepts the names above; "" means newest.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortPriceLow, SortPriceHigh:
		return o, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Filter narrows a product listing. Empty strings, a zero MaxPrice and a
// zero ListedSince match everything.
type Filter struct {
	Query          string
	Category       string
	Condition      string
	MinPrice       int64
	MaxPrice       int64
	NegotiableOnly bool
	ListedSince    time.Time
	Sort           SortOrder
}

// DefaultFilter is the browse page's initial state.
func DefaultFilter() Filter {
	return Filter{MaxPrice: DefaultMaxPrice, Sort: SortNewest}
}

func (f Filter) match(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Condition != "" && p.Condition != f.Condition {
		return false
	}
	if p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if f.NegotiableOnly && !p.Negotiable {
		return false
	}
	if !f.ListedSince.IsZero() && p.CreatedAt.Before(f.ListedSince) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Category), q)
	}
	return true
}

// Apply returns the matching products in f.Sort order. The input is not
// modified and equal keys keep their input order.
func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.match(p) {
			out = append(out, p)
		}
	}

	var less func(a, b Product) int
	switch f.Sort {
	case SortOldest:
		less = func(a, b Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortPriceLow:
		less = func(a, b Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceHigh:
		less = func(a, b Product) int { return cmp.Compare(b.Price, a.Price) }
	default:
		less = func(a, b Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
	slices.SortStableFunc(out, less)
	return out
}
