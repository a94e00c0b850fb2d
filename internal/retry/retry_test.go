package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	policy := Policy{MaxRetries: 3, InitialInterval: time.Millisecond, Multiplier: 2, MaxInterval: 10 * time.Millisecond}

	result, err := Do(context.Background(), policy,
		func(error) (bool, time.Duration) { return true, 0 },
		nil,
		func() (string, error) {
			attempts++
			if attempts < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("got %q", result)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	policy := DefaultPolicy()
	policy.InitialInterval = time.Millisecond

	_, err := Do(context.Background(), policy,
		func(error) (bool, time.Duration) { return false, 0 },
		nil,
		func() (string, error) {
			attempts++
			return "", errors.New("permanent")
		},
	)
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	attempts := 0
	policy := Policy{MaxRetries: 2, InitialInterval: time.Millisecond, Multiplier: 2, MaxInterval: 10 * time.Millisecond}

	_, err := Do(context.Background(), policy,
		func(error) (bool, time.Duration) { return true, 0 },
		nil,
		func() (string, error) {
			attempts++
			return "", errors.New("always fails")
		},
	)
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts (maxRetries+1), got %d", attempts)
	}
}
