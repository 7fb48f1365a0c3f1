package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/helpkb/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func TestRetryPolicy_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns the first successful body", func(t *testing.T) {
		t.Parallel()

		calls := 0
		policy := crawl.RetryPolicy{Attempts: 3, Sleep: noSleep}
		html, err := policy.Fetch(context.Background(), "https://x.test/", func(ctx context.Context, url string) (string, error) {
			calls++
			if calls < 2 {
				return "", errors.New("HTTP 503")
			}
			return "<html></html>", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "<html></html>", html)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		var retried []int
		var delays []time.Duration
		policy := crawl.RetryPolicy{
			Attempts: 3,
			Delay:    time.Second,
			Sleep: func(ctx context.Context, d time.Duration) error {
				delays = append(delays, d)
				return nil
			},
			OnRetry: func(attempt int, err error) { retried = append(retried, attempt) },
		}
		_, err := policy.Fetch(context.Background(), "https://x.test/", func(ctx context.Context, url string) (string, error) {
			calls++
			return "", errors.New("HTTP 500")
		})

		require.EqualError(t, err, "HTTP 500")
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{1, 2}, retried)
		assert.Equal(t, []time.Duration{time.Second, time.Second}, delays)
	})

	t.Run("applies the per-attempt timeout", func(t *testing.T) {
		t.Parallel()

		policy := crawl.RetryPolicy{Attempts: 1, Timeout: time.Minute}
		_, err := policy.Fetch(context.Background(), "https://x.test/", func(ctx context.Context, url string) (string, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
			return "ok", nil
		})

		require.NoError(t, err)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		policy := crawl.RetryPolicy{Attempts: 3, Sleep: noSleep}
		_, err := policy.Fetch(ctx, "https://x.test/", func(ctx context.Context, url string) (string, error) {
			calls++
			cancel()
			return "", errors.New("transport error")
		})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
