package utils

import (
	"context"
	"math/rand"
	"time"
)

// RandomDuration picks a duration in [min, max). Returns min when the range is empty.
//
// Fixed delays are a detectable request pattern, so page delays are drawn from a range.
func RandomDuration(min, max time.Duration) time.Duration {
	diff := max - min
	if diff <= 0 {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(diff)))
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RandomDelay sleeps for a random duration between min and max.
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	return Sleep(ctx, RandomDuration(min, max))
}
