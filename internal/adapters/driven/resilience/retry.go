package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/logger"
)

// Policy bounds one logical upstream call.
type Policy struct {
	// Timeout applies to each attempt. Zero means no per-attempt deadline.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after the first.
	MaxRetries int

	// RetryDelay is the first backoff; it doubles up to MaxDelay.
	RetryDelay time.Duration
	MaxDelay   time.Duration
}

// PolicyFrom builds a policy from upstream settings.
func PolicyFrom(s domain.UpstreamSettings) Policy {
	return Policy{
		Timeout:    s.Timeout,
		MaxRetries: s.MaxRetries,
		RetryDelay: s.RetryDelay,
		MaxDelay:   s.MaxRetryDelay,
	}
}

// backoff returns the delay before attempt n (n >= 1).
func (p Policy) backoff(n int) time.Duration {
	delay := p.RetryDelay
	for i := 1; i < n; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Do runs fn until it succeeds, fails permanently, or retries run out.
// Only retryable domain errors are retried. An attempt that overruns its
// own deadline counts as domain.ErrTimeout.
func Do[T any](ctx context.Context, p Policy, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.backoff(attempt)
			logger.Debug("%s: retry %d/%d in %s: %v", name, attempt, p.MaxRetries, delay, lastErr)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		result, err := runAttempt(ctx, p.Timeout, fn)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !domain.IsRetryable(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, fmt.Errorf("%s: gave up after %d attempts: %w", name, p.MaxRetries+1, lastErr)
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := fn(attemptCtx)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeout) {
		err = fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return result, err
}
