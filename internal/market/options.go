// Package market holds the client-side state of the marketplace: the
// signed-in session, the product catalog, the wishlist and the messages.
// Each store talks to the backend through a narrow interface and reports
// user-facing outcomes through a Notifier.
package market

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/auth"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/retry"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/validation"
)

const (
	DefaultPageSize      = 10
	DefaultMaxPages      = 3
	DefaultPageDelay     = 100 * time.Millisecond
	DefaultSellerBatch   = 5
	DefaultWishlistBatch = 10
	profileBatch         = 50
)

type options struct {
	log           *zap.Logger
	notify        Notifier
	policy        auth.Policy
	retry         retry.Policy
	pageSize      int
	maxPages      int
	pageDelay     time.Duration
	sellerBatch   int
	wishlistBatch int
	cache         Cache
	validate      *validator.Validate
	onChange      func(table string)
}

// Option configures a store.
type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notify = n }
}

func WithPolicy(p auth.Policy) Option {
	return func(o *options) { o.policy = p }
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(o *options) { o.retry = p }
}

func WithPageDelay(d time.Duration) Option {
	return func(o *options) { o.pageDelay = d }
}

func WithCache(c Cache) Option {
	return func(o *options) { o.cache = c }
}

func WithValidator(v *validator.Validate) Option {
	return func(o *options) { o.validate = v }
}

// WithChangeHook calls fn after every refetch triggered by a change event.
func WithChangeHook(fn func(table string)) Option {
	return func(o *options) { o.onChange = fn }
}

// WithPaging overrides the page size and the number of pages fetched.
func WithPaging(size, pages int) Option {
	return func(o *options) {
		if size > 0 {
			o.pageSize = size
		}
		if pages > 0 {
			o.maxPages = pages
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		log:           zap.NewNop(),
		notify:        nopNotifier{},
		policy:        auth.DefaultPolicy(),
		retry:         retry.Default,
		pageSize:      DefaultPageSize,
		maxPages:      DefaultMaxPages,
		pageDelay:     DefaultPageDelay,
		sellerBatch:   DefaultSellerBatch,
		wishlistBatch: DefaultWishlistBatch,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.validate == nil {
		o.validate = validation.New()
	}
	return o
}
