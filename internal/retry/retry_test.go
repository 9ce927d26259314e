package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoReturnsFirstSuccess(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), 5, time.Millisecond, func(context.Context) (string, error) {
		attempts++
		if attempts < 4 {
			return "", errors.New("transient")
		}
		return "loaded", nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if result != "loaded" {
		t.Fatalf("expected %q, got %q", "loaded", result)
	}
	if attempts != 4 {
		t.Fatalf("expected 4 attempts, got %d", attempts)
	}
}

func TestDoStopsAtAttemptBudget(t *testing.T) {
	cause := errors.New("gateway unavailable")
	attempts := 0
	_, err := Do(context.Background(), 3, time.Millisecond, func(context.Context) (int, error) {
		attempts++
		return 0, cause
	})
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestDoSingleAttemptWhenBudgetBelowOne(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), 0, time.Millisecond, func(context.Context) (int, error) {
		attempts++
		return 0, errors.New("nope")
	})
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestDoAbortsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := Do(ctx, 10, 50*time.Millisecond, func(context.Context) (int, error) {
		attempts++
		cancel()
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected the loop to stop after 1 attempt, got %d", attempts)
	}
}

func TestDoDoesNotRunOpOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	_, err := Do(ctx, 3, time.Millisecond, func(context.Context) (int, error) {
		attempts++
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 0 {
		t.Fatalf("expected no attempts, got %d", attempts)
	}
}
