package query

import (
	"context"
	"time"

	"github.com/tgienger/perplex/internal/api"
)

const maxRetryDelay = 30 * time.Second

// RetryPolicy decides whether and when a failed read is attempted again.
// Mutations never go through it.
type RetryPolicy struct {
	// Retries is how many times a read is retried after its first failure.
	Retries int
	// Delay is the wait before the first retry; it doubles after each one.
	Delay time.Duration
}

// DefaultRetryPolicy retries three times starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Retries: 3, Delay: time.Second}
}

// ShouldRetry reports whether a read that has failed failures times, the
// last time with err, is tried again. Not-found answers are final.
func (p RetryPolicy) ShouldRetry(failures int, err error) bool {
	if api.IsNotFound(err) {
		return false
	}
	return failures <= p.Retries
}

// Backoff returns the wait before retry number n, counting from zero.
func (p RetryPolicy) Backoff(n int) time.Duration {
	d := p.Delay
	for i := 0; i < n && d < maxRetryDelay; i++ {
		d *= 2
	}
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}

func retry[T any](ctx context.Context, policy RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	failures := 0
	for {
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		failures++
		if !policy.ShouldRetry(failures, err) {
			return value, err
		}
		if err := sleep(ctx, policy.Backoff(failures-1)); err != nil {
			return value, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
