package study

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/studyloop/internal/store"
)

func TestRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	n, err := testRetry().retry(context.Background(), func(int) error {
		calls++
		if calls < 2 {
			return store.ErrConflict
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || calls != 2 {
		t.Errorf("attempts = %d, calls = %d, want 2", n, calls)
	}
}

func TestRetry_NonRetryableReturnsImmediately(t *testing.T) {
	boom := errors.New("disk full")
	calls := 0
	n, err := testRetry().retry(context.Background(), func(int) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if n != 1 || calls != 1 {
		t.Errorf("attempts = %d, calls = %d, want 1", n, calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	n, err := testRetry().retry(context.Background(), func(int) error { return store.ErrConflict })
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	cfg := testRetry()
	cfg.InitialWait = time.Second
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cfg.retry(ctx, func(int) error { return store.ErrConflict })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestBackoff_Bounded(t *testing.T) {
	cfg := RetryConfig{InitialWait: 10 * time.Millisecond, MaxWait: 40 * time.Millisecond, Multiplier: 2}
	for attempt := range 6 {
		wait := cfg.backoff(attempt)
		// ±20% jitter around min(10ms*2^n, 40ms)
		if wait > 48*time.Millisecond {
			t.Errorf("backoff(%d) = %v exceeds cap plus jitter", attempt, wait)
		}
		if wait < 8*time.Millisecond {
			t.Errorf("backoff(%d) = %v below base minus jitter", attempt, wait)
		}
	}
}
