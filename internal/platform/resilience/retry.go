package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// ErrAttemptTimeout marks an attempt that exceeded its per-attempt deadline.
// It is always considered retryable by the default predicate.
var ErrAttemptTimeout = crerr.New("attempt timed out")

// RetryOptions control a single Retry invocation. The zero value is normalized
// to DefaultRetryOptions, jitter included.
type RetryOptions struct {
	// MaxRetries is the number of retries after the first attempt, so the
	// operation runs at most MaxRetries+1 times. Zero means the default
	// budget; a negative value disables retries and runs one attempt.
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	// AttemptTimeout bounds every individual attempt. Zero disables the bound.
	AttemptTimeout time.Duration
	// DisableJitter turns off the up-to-+25% delay spread. Jitter never
	// reduces a computed delay.
	DisableJitter bool
	// IsRetryable decides whether a failed attempt should be retried.
	// Nil means every error is retryable.
	IsRetryable func(error) bool
	// OnRetry is invoked synchronously before each sleep, after a failed
	// attempt that will be retried.
	OnRetry func(attempt int, err error, nextDelay time.Duration)
}

func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries:        3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}
}

func normalizeRetryOptions(opts RetryOptions) RetryOptions {
	defaults := DefaultRetryOptions()
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaults.MaxRetries
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = defaults.InitialDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaults.MaxDelay
	}
	if opts.BackoffMultiplier < 1 {
		opts.BackoffMultiplier = defaults.BackoffMultiplier
	}
	return opts
}

// Retry runs op until it succeeds, the retry budget is exhausted, or the
// predicate rejects the failure. The error from the final attempt is what
// propagates; earlier failures are visible only through OnRetry.
//
// op must tolerate being invoked more than once: the contract is
// at-least-once, not exactly-once.
func Retry[T any](ctx context.Context, opts RetryOptions, op func(context.Context) (T, error)) (T, error) {
	var zero T
	opts = normalizeRetryOptions(opts)

	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := runAttempt(ctx, opts.AttemptTimeout, op)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt == opts.MaxRetries {
			break
		}
		if opts.IsRetryable != nil && !opts.IsRetryable(err) {
			break
		}

		delay := backoffDelay(opts, attempt)
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// runAttempt races op against the per-attempt deadline so a hung operation
// cannot block past it even when op ignores its context.
func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if timeout <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := op(attemptCtx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil && attemptCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return zero, crerr.Wrapf(ErrAttemptTimeout, "after %s", timeout)
		}
		return out.value, out.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, crerr.Wrapf(ErrAttemptTimeout, "after %s", timeout)
	}
}

func backoffDelay(opts RetryOptions, attempt int) time.Duration {
	raw := float64(opts.InitialDelay) * math.Pow(opts.BackoffMultiplier, float64(attempt))
	if capped := float64(opts.MaxDelay); raw > capped {
		raw = capped
	}
	if !opts.DisableJitter {
		raw *= 1 + rand.Float64()*0.25
	}
	return time.Duration(raw)
}
