package supplier

import (
	"context"
	"time"
)

const (
	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// WithRetry re-runs fn on transient connector failures with a linear backoff.
// Only idempotent calls (availability fetch, details refresh) may be wrapped;
// a cancel must never be. Rejections and plain errors abort immediately.
func WithRetry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * retryDelay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if f, ok := AsFailure(err); !ok || !f.Transient() {
			return zero, err
		}
	}

	return zero, lastErr
}
