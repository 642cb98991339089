package retry

import (
	"context"
	"time"

	"finance-rag-be/pkg/clock"
)

// Policy retries a call with exponential backoff. A Policy is applied per
// call site; nothing in this package retries implicitly.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first one.
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Sleep       clock.SleepFunc
	// Retryable decides whether an error is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(err error) bool
	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultPolicy makes three attempts with 1s, 2s backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2.0,
		Sleep:       clock.Sleep,
	}
}

// WithAttempts returns a copy of p with MaxAttempts replaced.
func (p Policy) WithAttempts(n int) Policy {
	p.MaxAttempts = n
	return p
}

// Do calls fn until it succeeds, the attempts are exhausted, or the error is
// not retryable. The last error is returned unchanged.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoValue is Do for calls that produce a value.
func DoValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = clock.Sleep
	}

	var (
		result T
		err    error
		delay  = p.BaseDelay
	)

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
		if attempt == attempts {
			break
		}
		if p.Retryable != nil && !p.Retryable(err) {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			break
		}
		delay = time.Duration(float64(delay) * multiplier)
	}

	return result, err
}
