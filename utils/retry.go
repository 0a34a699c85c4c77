package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry runs fn up to maxRetries times, stopping at the first success.
// Between attempts it waits with exponential backoff: base, 2*base, 4*base...
// A cancelled context stops the retries and its error is returned.
// Failed attempts are logged to log at debug level; nil uses Default.
func Retry(ctx context.Context, log *Logger, maxRetries int, base time.Duration, fn func() error) error {
	if log == nil {
		log = std
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < maxRetries {
			wait := base * time.Duration(1<<uint(attempt-1))
			log.Debug("attempt failed, retrying", "attempt", attempt, "max", maxRetries, "wait", wait, "err", lastErr)
			if err := Sleep(ctx, wait); err != nil {
				return fmt.Errorf("retry interrupted after %d attempts: %w", attempt, lastErr)
			}
		}
	}

	if maxRetries == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", maxRetries, lastErr)
}
