// Package retry provides a generic exponential-backoff retry loop shared by
// the LLM provider clients, the reminder dispatcher, and any other component
// that calls a flaky remote dependency.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy configures the backoff schedule.
type Policy struct {
	MaxRetries      int // total attempts = MaxRetries + 1
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
}

// DefaultPolicy matches the provider clients' historical retry behavior:
// 3 retries, starting at 1s, doubling, capped at 30s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      3,
		InitialInterval: time.Second,
		Multiplier:      2,
		MaxInterval:     30 * time.Second,
	}
}

// Hook is invoked before each retry attempt (attempt is 1-indexed, counting
// the attempt about to be made; maxAttempts is MaxRetries+1).
type Hook func(attempt, maxAttempts int, err error)

// Classify decides whether err is retryable and, if the underlying call
// specified an explicit delay (e.g. an HTTP Retry-After header), returns it.
// A zero duration means "use the computed exponential-backoff delay instead".
type Classify func(err error) (retryable bool, after time.Duration)

// overridableBackOff defers to an exponential backoff, except when a caller
// sets override to honor a server-specified delay (e.g. Retry-After) for the
// single next wait.
type overridableBackOff struct {
	base     backoff.BackOff
	override time.Duration
}

func (o *overridableBackOff) NextBackOff() time.Duration {
	if o.override > 0 {
		d := o.override
		o.override = 0
		return d
	}
	return o.base.NextBackOff()
}

// Do runs fn, retrying on errors that classify marks retryable, until it
// succeeds, a non-retryable error is returned, ctx is cancelled, or the
// retry budget is exhausted. never retries after fn has already streamed
// partial output — callers achieve that by only invoking Do around the
// connection-establishment phase of a streaming call, not the stream itself.
func Do[T any](ctx context.Context, policy Policy, classify Classify, hook Hook, fn func() (T, error)) (T, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.InitialInterval
	exp.Multiplier = policy.Multiplier
	exp.MaxInterval = policy.MaxInterval
	ob := &overridableBackOff{base: exp}

	maxAttempts := policy.MaxRetries + 1
	attempt := 0

	operation := func() (T, error) {
		attempt++
		result, err := fn()
		if err == nil {
			return result, nil
		}
		retryable, after := classify(err)
		if !retryable || attempt >= maxAttempts {
			return result, backoff.Permanent(err)
		}
		if hook != nil {
			hook(attempt, maxAttempts, err)
		}
		if after > 0 {
			ob.override = after
		}
		return result, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(ob),
		backoff.WithMaxTries(uint(maxAttempts)),
	)
}
