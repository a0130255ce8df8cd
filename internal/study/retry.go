package study

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/studyloop/internal/store"
)

// RetryConfig configures retries of conflicting writes.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns three attempts with a short backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 20 * time.Millisecond,
		MaxWait:     500 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// retry runs fn until it succeeds, fails with a non-retryable error, or
// runs out of attempts. It returns the number of attempts made.
func (c RetryConfig) retry(ctx context.Context, fn func(attempt int) error) (int, error) {
	attempts := max(c.MaxAttempts, 1)
	var lastErr error
	for attempt := range attempts {
		err := fn(attempt)
		if err == nil {
			return attempt + 1, nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return attempt + 1, err
		}

		// Last attempt: don't sleep, just return the error.
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return attempt + 1, ctx.Err()
		case <-time.After(c.backoff(attempt)):
		}
	}
	return attempts, lastErr
}

// shouldRetry reports whether err is a lost race worth re-reading for.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, store.ErrConflict)
}

// backoff computes the wait duration for the given attempt.
func (c RetryConfig) backoff(attempt int) time.Duration {
	mult := c.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(c.InitialWait) * math.Pow(mult, float64(attempt))
	if c.MaxWait > 0 && wait > float64(c.MaxWait) {
		wait = float64(c.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
