package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLinearBackoff(t *testing.T) {
	delay := LinearBackoff(time.Second)
	for attempt := 1; attempt <= 3; attempt++ {
		want := time.Duration(attempt) * time.Second
		if got := delay(attempt); got != want {
			t.Errorf("delay(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestRetryWithBackoff(t *testing.T) {
	noDelay := func(int) time.Duration { return 0 }

	t.Run("first attempt succeeds", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), 3, noDelay, func(context.Context) error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("op called %d times, want 1", calls)
		}
	})

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), 3, noDelay, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 3 {
			t.Errorf("op called %d times, want 3", calls)
		}
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		calls := 0
		errFinal := errors.New("still broken")
		err := RetryWithBackoff(context.Background(), 3, noDelay, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return errFinal
		})
		if !errors.Is(err, errFinal) {
			t.Fatalf("got %v, want %v", err, errFinal)
		}
		if calls != 3 {
			t.Errorf("op called %d times, want 3", calls)
		}
	})

	t.Run("cancellation stops the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := RetryWithBackoff(ctx, 3, LinearBackoff(time.Hour), func(context.Context) error {
			calls++
			return errors.New("transient")
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, want context.Canceled", err)
		}
		if calls != 1 {
			t.Errorf("op called %d times, want 1", calls)
		}
	})
}
