package providers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/retry"
)

// RetryConfig configures how a provider client retries a failed HTTP call.
// It is a thin adapter over retry.Policy: the provider clients only ever
// need "retry transient/5xx/429, give up on 4xx", so this package owns the
// HTTP-specific classify logic and delegates the actual backoff loop to
// internal/retry.
type RetryConfig struct {
	Policy retry.Policy
}

// DefaultRetryConfig matches the provider clients' historical behavior: 3
// retries, 1s initial interval, doubling, capped at 30s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Policy: retry.DefaultPolicy()}
}

// HTTPError wraps a non-2xx response from a provider's API.
type HTTPError struct {
	Status     int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// retryableStatus reports whether status warrants a retry: 429 (rate
// limited), and any 5xx (server-side, likely transient).
func retryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status < 600)
}

func classifyHTTPError(err error) (bool, time.Duration) {
	httpErr, ok := err.(*HTTPError)
	if !ok {
		// Connection-level errors (timeouts, DNS, refused) are retryable.
		return true, 0
	}
	return retryableStatus(httpErr.Status), httpErr.RetryAfter
}

// RetryDo runs fn under cfg's policy, retrying transient/429/5xx HTTP errors
// and surfacing retry attempts through the context's retry hook (see
// WithRetryHook), so a caller streaming progress to a user can show
// "retrying (2/4)..." without RetryDo knowing anything about channels.
func RetryDo[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	hook := RetryHookFromContext(ctx)
	return retry.Do(ctx, cfg.Policy, classifyHTTPError, hook, fn)
}

// ParseRetryAfter parses a Retry-After header value, which per RFC 7231 is
// either an integer number of seconds or an HTTP-date. Only the seconds form
// is handled (providers send that form); anything else returns 0, meaning
// "use the computed exponential-backoff delay instead".
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

type retryHookCtxKey struct{}

// WithRetryHook attaches a hook invoked before each retry attempt, so the
// caller (typically the agent loop) can emit a "retrying" event back to the
// user-facing channel.
func WithRetryHook(ctx context.Context, hook retry.Hook) context.Context {
	return context.WithValue(ctx, retryHookCtxKey{}, hook)
}

// RetryHookFromContext returns the hook set by WithRetryHook, or nil.
func RetryHookFromContext(ctx context.Context) retry.Hook {
	hook, _ := ctx.Value(retryHookCtxKey{}).(retry.Hook)
	return hook
}
