// Package retry expresses retry-with-backoff as an explicit policy object
// instead of loop-and-sleep scattered through callers.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Policy bounds re-attempts of an external call.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Backoff returns the wait before the retry following attempt n
	// (attempt counted from 0).
	Backoff func(attempt int) time.Duration
	// Retryable reports whether err is worth another attempt. A nil
	// predicate retries everything.
	Retryable func(err error) bool
}

// ExpBackoff returns the pipeline's OCR backoff: 2^attempt + 1 seconds.
func ExpBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)+1) * time.Second
}

// Do runs fn under the policy. Non-retryable errors return immediately;
// exhausting MaxAttempts returns the last error. The waits are
// context-aware, so cancellation cuts a backoff short.
func (p Policy) Do(ctx context.Context, logger *slog.Logger, fn func(ctx context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}

		wait := time.Duration(0)
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		logger.Warn("retry.attempt_failed",
			"attempt", attempt+1,
			"max_attempts", attempts,
			"wait", wait,
			"error", lastErr,
		)
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	return lastErr
}
