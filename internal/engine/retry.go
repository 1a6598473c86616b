package engine

import (
	"context"
	"time"
)

// DelayFunc computes the wait before the given retry attempt (1-based).
type DelayFunc func(attempt int) time.Duration

// LinearBackoff waits attempt x base before each retry.
func LinearBackoff(base time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// RetryWithBackoff runs op up to maxAttempts times, waiting delay(attempt)
// between attempts. It returns nil on the first success, the last error
// after exhausting attempts, or the context error if cancelled mid-wait.
func RetryWithBackoff(ctx context.Context, maxAttempts int, delay DelayFunc, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if lastErr = op(ctx); lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay(attempt)):
		}
	}
	return lastErr
}
