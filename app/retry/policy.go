package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryableError is implemented by error types that may succeed on a later
// attempt. Errors without the method are treated as permanent, so programming
// errors never burn retry budget.
type RetryableError interface {
	error
	Retryable() bool
}

func IsRetryable(err error) bool {
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return false
}

// Policy bounds the retry schedule for one call site. The delay before attempt
// n is min(MaxDelay, BaseDelay*2^n), with no jitter.
type Policy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

// DefaultPolicy covers simple remote calls: feed fetches, store reads and
// writes, embedding and upsert requests.
func DefaultPolicy() Policy {
	return Policy{BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second, MaxAttempts: 3}
}

// ImportPolicy covers corpus import submissions, which fail more often under
// contention and need more headroom between attempts.
func ImportPolicy() Policy {
	return Policy{BaseDelay: 5 * time.Second, MaxDelay: 60 * time.Second, MaxAttempts: 5}
}

// NextDelay returns the delay applied after attempt (zero-based) fails.
func (p Policy) NextDelay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// ShouldRetry reports whether a failed attempt (zero-based) leaves budget for
// another try.
func (p Policy) ShouldRetry(err error, attempt int) bool {
	return attempt+1 < p.MaxAttempts && IsRetryable(err)
}

func (p Policy) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.BaseDelay
	bo.MaxInterval = p.MaxDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	return bo
}

// Do runs fn until it succeeds, returns a non-retryable error, or exhausts
// MaxAttempts. The last error is returned unwrapped.
func (p Policy) Do(ctx context.Context, op string, fn func() error) error {
	attempt := 0
	operation := func() (struct{}, error) {
		attempt++
		err := fn()
		if err == nil {
			return struct{}{}, nil
		}
		if !IsRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		if attempt < p.MaxAttempts {
			slog.Warn("Retrying after error", "op", op, "attempt", attempt, "max_attempts", p.MaxAttempts, "error", err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(p.newBackOff()),
		backoff.WithMaxTries(uint(p.MaxAttempts)))
	return err
}
