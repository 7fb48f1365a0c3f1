package crawl

import (
	"context"
	"time"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy bounds how a page download is retried. Attempts are spaced by
// a fixed Delay and each runs under its own Timeout.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration

	// Sleep replaces the real wait between attempts. Tests inject a no-op.
	Sleep SleepFunc

	// OnRetry, if set, is called after every failed attempt that will be
	// followed by another.
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy returns three attempts one second apart with a
// 30 second timeout per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: time.Second, Timeout: 30 * time.Second}
}

// Fetch calls fetch until it succeeds or the attempts run out, returning the
// last error. Context cancellation stops the loop immediately.
func (p RetryPolicy) Fetch(ctx context.Context, url string, fetch FetchFunc) (string, error) {
	attempts := max(p.Attempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		html, err := p.attempt(ctx, url, fetch)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		if err := sleep(ctx, p.Delay); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (p RetryPolicy) attempt(ctx context.Context, url string, fetch FetchFunc) (string, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	return fetch(ctx, url)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
