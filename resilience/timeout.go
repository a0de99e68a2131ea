package resilience

import (
	"context"
	"errors"
	"time"
)

// Do runs op in its own goroutine and waits at most d for its value.
//
// When the deadline passes first, Do returns ErrTimeout and abandons op:
// the goroutine runs to completion and its value is discarded. op receives
// a context that is cancelled at the deadline and should honour it.
func Do[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		v, err := op(ctx)
		done <- outcome{value: v, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}
