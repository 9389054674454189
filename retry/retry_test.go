package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failing returns an operation that fails until it has been called succeedOn
// times, recording when each call happened. A succeedOn of 0 never succeeds.
func failing(succeedOn int, calls *[]time.Time) func(context.Context) error {
	return func(context.Context) error {
		*calls = append(*calls, time.Now())
		if succeedOn > 0 && len(*calls) >= succeedOn {
			return nil
		}
		return fmt.Errorf("attempt %d failed", len(*calls))
	}
}

func TestDo_Exponential(t *testing.T) {
	ctx := context.Background()

	t.Run("first success stops immediately", func(t *testing.T) {
		var calls []time.Time
		require.NoError(t, Do(ctx, Exponential(3, time.Hour), failing(1, &calls)))
		assert.Len(t, calls, 1)
	})

	t.Run("transient failures are retried", func(t *testing.T) {
		var calls []time.Time
		require.NoError(t, Do(ctx, Exponential(5, time.Millisecond), failing(3, &calls)))
		assert.Len(t, calls, 3)
	})

	t.Run("last error is returned when attempts run out", func(t *testing.T) {
		var calls []time.Time
		err := Do(ctx, Exponential(3, time.Millisecond), failing(0, &calls))
		require.EqualError(t, err, "attempt 3 failed")
		assert.Len(t, calls, 3)
	})

	t.Run("delay doubles between attempts", func(t *testing.T) {
		var calls []time.Time
		require.NoError(t, Do(ctx, Exponential(4, 5*time.Millisecond), failing(4, &calls)))
		require.Len(t, calls, 4)

		want := 5 * time.Millisecond
		for i := 1; i < len(calls); i++ {
			assert.GreaterOrEqual(t, calls[i].Sub(calls[i-1]), want, "gap before attempt %d", i+1)
			want *= 2
		}
	})

	t.Run("cancellation during backoff ends the loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		var calls []time.Time
		op := failing(0, &calls)
		err := Do(ctx, Exponential(10, time.Millisecond), func(ctx context.Context) error {
			if len(calls) == 1 {
				cancel()
			}
			return op(ctx)
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, calls, 2)
	})
}

func TestDo_ZeroMaxAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Fixed(0, time.Millisecond), func(context.Context) error {
		attempts++
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	assert.Equal(t, 0, attempts)
}

func TestDo_PermanentErrorStops(t *testing.T) {
	permanent := errors.New("401 unauthorized")
	attempts := 0

	policy := Fixed(3, time.Millisecond)
	policy.Retryable = func(err error) bool { return !errors.Is(err, permanent) }

	err := Do(context.Background(), policy, func(context.Context) error {
		attempts++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDo_FixedDelay(t *testing.T) {
	attempts := 0
	start := time.Now()

	err := Do(context.Background(), Fixed(3, 15*time.Millisecond), func(context.Context) error {
		attempts++
		return errors.New("transient")
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}
