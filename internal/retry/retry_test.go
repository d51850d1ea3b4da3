package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Policy{Attempts: 3, Delay: time.Millisecond}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Do(context.Background(), fast, func(context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	denied := errors.New("denied")
	err := Do(context.Background(), fast, func(context.Context) error {
		calls++
		return Permanent(denied)
	})
	assert.Equal(t, denied, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, Policy{Attempts: 5, Delay: time.Hour}, func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}

func TestValue(t *testing.T) {
	calls := 0
	v, err := Value(context.Background(), fast, func(context.Context) ([]string, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("flaky")
		}
		return []string{"a"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v)
}
