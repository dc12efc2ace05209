package transport

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy shapes the exponential backoff between attempts
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	Jitter         float64 // extra random fraction added to each wait
}

// RetryableFunc is a function that can be retried
type RetryableFunc func(ctx context.Context) error

// WithRetry executes a function with retry logic based on the provided policy.
// Every error is retried.
func WithRetry(ctx context.Context, policy RetryPolicy, fn RetryableFunc) error {
	return WithRetryIf(ctx, policy, func(error) bool { return true }, fn)
}

// WithRetryIf executes a function with retry logic, retrying only errors for
// which shouldRetry returns true
func WithRetryIf(ctx context.Context, policy RetryPolicy, shouldRetry func(error) bool, fn RetryableFunc) error {
	var err error
	backoff := policy.InitialBackoff

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		if attempt == policy.MaxRetries || !shouldRetry(err) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Add jitter to prevent thundering herd
		jitter := 1.0
		if policy.Jitter > 0 {
			jitter = 1.0 + rand.Float64()*policy.Jitter
		}

		wait := time.Duration(float64(backoff) * jitter)
		if hint := RetryAfter(err); hint > wait {
			wait = hint
		}
		if policy.MaxBackoff > 0 && wait > policy.MaxBackoff {
			wait = policy.MaxBackoff
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * policy.BackoffFactor)
		if policy.MaxBackoff > 0 && backoff > policy.MaxBackoff {
			backoff = policy.MaxBackoff
		}
	}

	return err
}

// DefaultRetryPolicy returns a sensible default retry policy
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  1.5,
		Jitter:         0.2,
	}
}
