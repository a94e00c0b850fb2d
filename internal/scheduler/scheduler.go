// Package scheduler ticks over a cron job store, firing due jobs through a
// caller-supplied handler. It owns no storage of its own: persistence and
// next-run computation live in internal/cron, which this package calls
// under its advisory lock on every mutation.
package scheduler

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/cron"
)

const (
	// defaultTick is the poll cadence, kept well under the minute granularity
	// jobs are scheduled at so a due job never waits more than one tick.
	defaultTick = 15 * time.Second
	// minJobInterval guards against a job firing twice for the same due
	// window if a tick races MarkExecuted.
	minJobInterval = 2 * time.Second
	// graceWindow: a one-shot job whose At instant is in the past by less
	// than this is still fired once on restore; older ones are dropped.
	graceWindow = 5 * time.Minute
	// maxStagger bounds the deterministic per-job delay applied to jobs
	// whose schedule lands on a shared boundary (e.g. every hour on the
	// hour), to avoid a thundering herd of simultaneous fires.
	maxStagger = 5 * time.Second
)

// JobHandler executes a job's payload, returning the text produced (e.g. the
// agent's reply) or an error. Called with a context bound to the job's
// execution timeout.
type JobHandler func(ctx context.Context, job cron.Job) (string, error)

// AnnounceHandler delivers a job's result to its owning chat.
type AnnounceHandler func(chatID, message string) error

// Scheduler polls a cron.Store for due jobs and dispatches them.
type Scheduler struct {
	storePath   string
	handler     JobHandler
	announce    AnnounceHandler
	tick        time.Duration
	jobTimeout  time.Duration
	logger      *slog.Logger
	runningJobs map[string]bool
	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
}

// New creates a Scheduler backed by the cron store at storePath.
func New(storePath string, handler JobHandler, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		storePath:   storePath,
		handler:     handler,
		tick:        defaultTick,
		jobTimeout:  5 * time.Minute,
		logger:      logger,
		runningJobs: make(map[string]bool),
	}
}

// SetAnnounceHandler registers a callback invoked with each job's result.
func (s *Scheduler) SetAnnounceHandler(h AnnounceHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announce = h
}

// SetTickInterval overrides the poll cadence (clamped to 30s by the caller's
// good judgment; the scheduler itself does not enforce the bound).
func (s *Scheduler) SetTickInterval(d time.Duration) {
	if d > 0 {
		s.tick = d
	}
}

// Restore loads every job and recomputes NextRun for any that are undefined
// or in the past: recurring jobs advance to their next future occurrence;
// one-shot jobs in the past are dropped unless within graceWindow, in which
// case they fire once immediately on the next tick.
func (s *Scheduler) Restore() error {
	now := time.Now()
	return cron.WithStore(s.storePath, func(store *cron.Store) error {
		for i := range store.Jobs {
			j := &store.Jobs[i]
			if !j.Enabled || j.Terminal() {
				continue
			}
			if j.NextRun != nil && j.NextRun.After(now) {
				continue
			}
			if j.Schedule.Kind == cron.ScheduleAt {
				if j.NextRun == nil || now.Sub(*j.NextRun) > graceWindow {
					if j.NextRun != nil && now.Sub(*j.NextRun) > graceWindow {
						j.Enabled = false
						j.NextRun = nil
					}
					continue
				}
				// Within grace window: leave NextRun as-is so it fires on
				// the next tick.
				continue
			}
			next, err := cron.ComputeNextRun(j.Schedule, now)
			if err != nil {
				s.logger.Warn("scheduler: dropping job with invalid schedule on restore", "id", j.ID, "error", err)
				j.Enabled = false
				j.NextRun = nil
				continue
			}
			j.NextRun = next
		}
		return nil
	})
}

// Start begins the tick loop in a background goroutine. Stop cancels it.
func (s *Scheduler) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.runTick(runCtx)
			}
		}
	}()
}

// Stop cancels the tick loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	due := cron.GetDueJobs(s.storePath, time.Now())
	for _, job := range due {
		go s.executeJob(ctx, job)
	}
}

// executeJob runs one job's payload with the usual safety guards: duplicate-
// run guard, spin-loop guard, panic recovery, and a per-job timeout. On
// completion it atomically marks the job executed so the next tick sees the
// recomputed NextRun.
func (s *Scheduler) executeJob(ctx context.Context, job cron.Job) {
	s.mu.Lock()
	if s.runningJobs[job.ID] {
		s.mu.Unlock()
		return
	}
	if job.LastRun != nil && time.Since(*job.LastRun) < minJobInterval {
		s.mu.Unlock()
		return
	}
	s.runningJobs[job.ID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.runningJobs, job.ID)
		s.mu.Unlock()
		if r := recover(); r != nil {
			s.logger.Error("scheduler: job panicked", "id", job.ID, "panic", r)
		}
	}()

	if stagger := resolveStableOffset(job.ID, maxStagger); stagger > 0 {
		select {
		case <-time.After(stagger):
		case <-ctx.Done():
			return
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	executedAt := time.Now()
	result, err := s.callHandler(runCtx, job)
	if err != nil {
		s.logger.Error("scheduler: job execution failed", "id", job.ID, "error", err)
	}

	if markErr := cron.MarkExecuted(s.storePath, job.ID, executedAt); markErr != nil {
		s.logger.Error("scheduler: failed to mark job executed", "id", job.ID, "error", markErr)
	}

	s.mu.Lock()
	announce := s.announce
	s.mu.Unlock()
	if announce != nil && job.ChatID != "" {
		msg := result
		if err != nil {
			msg = fmt.Sprintf("[job %q failed]: %s", job.Name, err)
		}
		if msg != "" {
			if aErr := announce(job.ChatID, msg); aErr != nil {
				s.logger.Error("scheduler: announce failed", "id", job.ID, "error", aErr)
			}
		}
	}
}

func (s *Scheduler) callHandler(ctx context.Context, job cron.Job) (string, error) {
	if s.handler == nil {
		return "", fmt.Errorf("scheduler: no handler configured")
	}
	return s.handler(ctx, job)
}

// resolveStableOffset derives a deterministic, bounded delay from the job
// ID's hash, so the same job always staggers by the same amount — spreading
// simultaneous fires across a window instead of colliding every tick.
func resolveStableOffset(jobID string, max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	h := sha256.Sum256([]byte(jobID))
	n := binary.BigEndian.Uint32(h[:4])
	ms := int64(n) % max.Milliseconds()
	return time.Duration(ms) * time.Millisecond
}
