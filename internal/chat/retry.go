package chat

import (
	"context"
	"errors"
	"time"
)

// RetryConfig bounds the automatic retries of the initiating request.
// Stream-body failures are never retried here; recovery for those is
// the error's attached retry action.
type RetryConfig struct {
	MaxAttempts     int           // Total attempts, including the first
	InitialInterval time.Duration // First backoff delay
	MaxInterval     time.Duration // Backoff ceiling
}

// DefaultRetryConfig matches the gateway contract: three attempts with
// exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     8 * time.Second,
	}
}

// retryable reports whether err is worth another initiating attempt:
// transport-level failures and 5xx responses. Client errors and
// cancellations fail immediately.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.Status >= 500
	}
	return true
}

// backoff sleeps for delay unless ctx ends first, returning the next
// delay, doubled up to cfg.MaxInterval.
func backoff(ctx context.Context, cfg RetryConfig, delay time.Duration) (time.Duration, error) {
	select {
	case <-ctx.Done():
		return delay, ctx.Err()
	case <-time.After(delay):
	}

	next := delay * 2
	if next > cfg.MaxInterval {
		next = cfg.MaxInterval
	}
	return next, nil
}
