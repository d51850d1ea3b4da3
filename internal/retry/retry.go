// Package retry runs an operation a bounded number of times with a fixed
// pause between attempts.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is the retry budget. Attempts counts the first try.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Default is three attempts one second apart.
var Default = Policy{Attempts: 3, Delay: time.Second}

// Permanent marks err as not worth retrying; Do returns it unwrapped.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls fn until it succeeds, returns a Permanent error, ctx ends, or
// the attempts are used up. The last error is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	var b backoff.BackOff = backoff.NewConstantBackOff(p.Delay)
	b = backoff.WithMaxRetries(b, uint64(p.Attempts-1))
	b = backoff.WithContext(b, ctx)

	err := backoff.Retry(func() error { return fn(ctx) }, b)
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
