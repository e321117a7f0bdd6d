package scrape

import (
	"context"
	"time"
)

// RetryPolicy bounds the attempts made for one operation.
type RetryPolicy struct {
	// Delays holds the wait before each retry. The operation is attempted
	// len(Delays)+1 times.
	Delays []time.Duration
}

// DefaultRetryPolicy retries a failed render after 5s and again after 60s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Delays: []time.Duration{5 * time.Second, 60 * time.Second}}
}

// MaxAttempts returns the total number of attempts allowed.
func (p RetryPolicy) MaxAttempts() int {
	return len(p.Delays) + 1
}

// RetryFunc is called before each retry with the number of the upcoming
// attempt, the error of the previous one and the wait in between.
type RetryFunc func(attempt int, err error, wait time.Duration)

// Retry calls fn until it succeeds or the policy is exhausted and returns
// the number of attempts made. Waits are interrupted by ctx; the context
// error is returned in that case.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error), onRetry RetryFunc) (T, int, error) {
	var zero T
	maxAttempts := p.MaxAttempts()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, attempt, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		if err := ctx.Err(); err != nil {
			return zero, attempt, err
		}

		wait := p.Delays[attempt-1]
		if onRetry != nil {
			onRetry(attempt+1, err, wait)
		}
		if err := sleep(ctx, wait); err != nil {
			return zero, attempt, err
		}
	}

	return zero, maxAttempts, lastErr
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
