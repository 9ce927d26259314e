// Package retry implements the bounded-retry fetch used for every
// gateway read: a fixed attempt budget with a fixed delay between
// attempts. The first success wins; exhausting the budget returns an
// error wrapping the last failure so callers keep their prior state.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted marks an operation that failed on every attempt.
var ErrExhausted = errors.New("retry attempts exhausted")

// Do runs op up to attempts times, sleeping delay between failures.
// Cancelling ctx aborts the loop between attempts, so a fetch whose
// result is no longer wanted stops instead of running to completion.
// An attempts value below 1 is treated as 1.
func Do[T any](ctx context.Context, attempts int, delay time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %v", ErrExhausted, attempts, lastErr)
}
