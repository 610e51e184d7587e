package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient failure that [Retry] should attempt
// again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Policy controls retry behaviour.
type Policy struct {
	// Attempts is the total number of calls, at least 1.
	Attempts int
	// Delay is the wait before the second attempt; it doubles afterwards.
	Delay time.Duration
	// MaxDelay caps the doubled delay. Zero means no cap.
	MaxDelay time.Duration
}

// DefaultPolicy is 3 attempts starting at 500ms, capped at 4s.
var DefaultPolicy = Policy{Attempts: 3, Delay: 500 * time.Millisecond, MaxDelay: 4 * time.Second}

// Retry calls fn until it succeeds, returns an error not wrapped in
// RetryableError, or runs out of attempts. It returns ctx.Err() if ctx is
// cancelled while waiting.
func Retry(ctx context.Context, p Policy, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return lastErr
}

// RetryWithBackoff runs [Retry] with DefaultPolicy.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultPolicy, fn)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
