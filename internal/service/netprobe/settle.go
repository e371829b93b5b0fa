package netprobe

import (
	"context"
	"time"
)

// Settle runs fn under a deadline and returns whichever happens first: fn
// finishing or the deadline firing. The outcome is delivered exactly once;
// a late result from fn is discarded.
func Settle[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		v, err := fn(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, timeoutError(ctx.Err())
	}
}
