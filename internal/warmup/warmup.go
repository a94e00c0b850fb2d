// Package warmup coordinates the startup warmup sequence: embedding model
// load, workspace preload, and memory-chunk preload, fanned out in parallel
// and settled regardless of individual failure.
package warmup

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// TaskResult records one warmup task's outcome.
type TaskResult struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// Status is the aggregate warmup outcome, exposed for health reporting.
type Status struct {
	Done       bool          `json:"done"`
	Tasks      []TaskResult  `json:"tasks"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	TotalTime  time.Duration `json:"totalTime"`
}

// Task is one warmup step: a named function that loads/preloads something.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Coordinator runs a fixed set of warmup tasks exactly once. Concurrent
// callers of Warmup share the same in-flight run rather than each
// triggering their own — a sentinel "done" channel plays the role of a
// shared promise.
type Coordinator struct {
	tasks []Task

	mu      sync.Mutex
	once    sync.Once
	done    chan struct{}
	status  Status
}

// New creates a Coordinator over the given tasks.
func New(tasks ...Task) *Coordinator {
	return &Coordinator{tasks: tasks}
}

// Warmup runs all tasks in parallel on first call; subsequent (including
// concurrent) calls block until that single run completes and return the
// same cached Status.
func (c *Coordinator) Warmup(ctx context.Context) Status {
	c.once.Do(func() {
		c.mu.Lock()
		c.done = make(chan struct{})
		c.mu.Unlock()
		c.run(ctx)
		close(c.done)
	})
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Status returns the current cached status without blocking. Done is false
// until a Warmup call has completed.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Coordinator) run(ctx context.Context) {
	started := time.Now()
	results := make([]TaskResult, len(c.tasks))

	g, gctx := errgroup.WithContext(ctx)
	for i, task := range c.tasks {
		i, task := i, task
		g.Go(func() error {
			taskStart := time.Now()
			err := task.Run(gctx)
			results[i] = TaskResult{Name: task.Name, Duration: time.Since(taskStart), Err: err}
			if err != nil {
				results[i].Error = err.Error()
			}
			// Never propagate to errgroup: a failing task must not cancel
			// the others or abort Wait early — all tasks settle.
			return nil
		})
	}
	_ = g.Wait()

	finished := time.Now()
	c.mu.Lock()
	c.status = Status{
		Done:       true,
		Tasks:      results,
		StartedAt:  started,
		FinishedAt: finished,
		TotalTime:  finished.Sub(started),
	}
	c.mu.Unlock()
}
