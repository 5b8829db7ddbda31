// Package retry applies a bounded retry policy with exponential
// backoff and random jitter to any transient-failure-prone unit of
// work.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy describes how a unit of work is retried. The zero value is
// not usable; construct with DefaultPolicy and adjust.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay is the backoff before the second attempt; it doubles
	// per attempt after that.
	BaseDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
	// Retryable classifies an error as transient. A nil Retryable
	// retries every error.
	Retryable func(error) bool
}

// DefaultPolicy matches the ingestion contract: up to 5 attempts with
// exponential backoff from 100ms.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Retryable:   retryable,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, the
// attempt budget is exhausted, or ctx is cancelled. Jitter spreads
// concurrent retriers so they do not wake in lockstep.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error

	delay := p.BaseDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}

		sleep := delay + time.Duration(rand.Int63n(int64(delay)/2+1))
		if sleep > p.MaxDelay {
			sleep = p.MaxDelay
		}
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return lastErr
}
