package warmup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestWarmupSettlesDespiteError(t *testing.T) {
	var calls int32
	c := New(
		Task{Name: "ok", Run: func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		}},
		Task{Name: "fails", Run: func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return errors.New("boom")
		}},
	)
	status := c.Warmup(context.Background())
	if !status.Done {
		t.Error("expected Done=true")
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected both tasks to run, got %d calls", calls)
	}
	if len(status.Tasks) != 2 {
		t.Fatalf("expected 2 task results, got %d", len(status.Tasks))
	}
}

func TestWarmupConcurrentCallersShareRun(t *testing.T) {
	var runs int32
	c := New(Task{Name: "once", Run: func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}})

	done := make(chan Status, 4)
	for i := 0; i < 4; i++ {
		go func() { done <- c.Warmup(context.Background()) }()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	if atomic.LoadInt32(&runs) != 1 {
		t.Errorf("expected task to run exactly once across concurrent callers, got %d", runs)
	}
}
