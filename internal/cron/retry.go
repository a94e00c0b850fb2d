package cron

import "time"

// RetryConfig configures retry of a cron job payload execution, applied by
// the scheduler when a job's handler returns a transient-looking error.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig matches CronConfig's documented defaults: 3 retries,
// 2s initial delay, capped at 30s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
}

// Delay returns the backoff delay before retry attempt n (1-indexed),
// doubling each attempt and capped at MaxDelay.
func (rc RetryConfig) Delay(attempt int) time.Duration {
	d := rc.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= rc.MaxDelay {
			return rc.MaxDelay
		}
	}
	if d > rc.MaxDelay {
		return rc.MaxDelay
	}
	return d
}
