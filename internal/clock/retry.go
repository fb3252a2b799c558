// Package clock provides context-aware waiting.
package clock

import (
	"context"
	"time"
)

// SleepFunc waits for d unless ctx ends first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d or returns ctx's error once it is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry calls fn until it returns an error that retryable rejects, sleeping delay between attempts.
// The wait is abandoned, and ctx's error returned, as soon as ctx is done.
func Retry[T any](ctx context.Context, sleep SleepFunc, delay time.Duration, retryable func(error) bool, fn func() (T, error)) (T, error) {
	for {
		v, err := fn()
		if err == nil || !retryable(err) {
			return v, err
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			var zero T
			return zero, sleepErr
		}
	}
}
