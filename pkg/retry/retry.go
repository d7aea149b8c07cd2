// Package retry wraps cenkalti/backoff with the attempt-count semantics
// used across the billing pipeline.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Permanent marks err as non-retryable; Do returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op up to maxAttempts times with exponential backoff starting at
// initialDelay (doubling each attempt, no jitter cap beyond the schedule).
// It stops early when ctx is cancelled or op returns a Permanent error.
func Do(ctx context.Context, maxAttempts int, initialDelay time.Duration, op func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = initialDelay << 6
	bo.MaxElapsedTime = 0

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxAttempts-1)), ctx))
}
