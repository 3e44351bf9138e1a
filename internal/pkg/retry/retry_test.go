package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	original := sleep
	sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	t.Cleanup(func() { sleep = original })
	return &waits
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	waits := noSleep(t)
	calls := 0

	got, err := Do(context.Background(), Policy{Attempts: 3, BaseDelay: time.Second, MaxDelay: time.Minute},
		func(_ context.Context, attempt int) (string, error) {
			calls++
			if attempt < 3 {
				return "", errors.New("flaky")
			}
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
}

func TestDo_Exhausted(t *testing.T) {
	noSleep(t)
	boom := errors.New("boom")

	_, err := Do(context.Background(), Policy{Attempts: 2}, func(context.Context, int) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	noSleep(t)
	permanent := errors.New("permanent")
	calls := 0

	_, err := Do(context.Background(), Policy{Attempts: 5, Retryable: func(err error) bool { return !errors.Is(err, permanent) }},
		func(context.Context, int) (int, error) {
			calls++
			return 0, permanent
		})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	noSleep(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, Policy{Attempts: 3}, func(context.Context, int) (int, error) {
		calls++
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Duration(0), Backoff(0, time.Second, 3))
	assert.Equal(t, 100*time.Millisecond, Backoff(100*time.Millisecond, time.Second, 1))
	assert.Equal(t, 400*time.Millisecond, Backoff(100*time.Millisecond, time.Second, 3))
	assert.Equal(t, time.Second, Backoff(100*time.Millisecond, time.Second, 10))
}
