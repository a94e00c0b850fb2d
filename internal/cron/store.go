package cron

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewJobID returns a random 8-byte hex job identifier.
func NewJobID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// AddJob validates j's schedule, computes its initial NextRun, and persists
// it to the store at path. Rejects invalid cron expressions at creation
// without persisting, per the scheduler-mis-parse error policy.
func AddJob(path string, j Job) (Job, error) {
	if j.ID == "" {
		j.ID = NewJobID()
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	next, err := ComputeNextRun(j.Schedule, time.Now())
	if err != nil {
		return Job{}, err
	}
	j.NextRun = next

	err = WithStore(path, func(s *Store) error {
		s.Jobs = append(s.Jobs, j)
		return nil
	})
	return j, err
}

// GetJob returns the job with the given id, if present.
func GetJob(path, id string) (Job, bool) {
	s := LoadStore(path)
	for _, j := range s.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return Job{}, false
}

// ListJobs returns every job in the store.
func ListJobs(path string) []Job {
	return LoadStore(path).Jobs
}

// DeleteJob removes the job with the given id.
func DeleteJob(path, id string) error {
	return WithStore(path, func(s *Store) error {
		out := s.Jobs[:0]
		for _, j := range s.Jobs {
			if j.ID != id {
				out = append(out, j)
			}
		}
		s.Jobs = out
		return nil
	})
}

// SetEnabled toggles a job's enabled flag and recomputes NextRun if
// re-enabling.
func SetEnabled(path, id string, enabled bool) error {
	return WithStore(path, func(s *Store) error {
		for i := range s.Jobs {
			if s.Jobs[i].ID != id {
				continue
			}
			s.Jobs[i].Enabled = enabled
			if enabled {
				next, err := ComputeNextRun(s.Jobs[i].Schedule, time.Now())
				if err != nil {
					return err
				}
				s.Jobs[i].NextRun = next
			}
			return nil
		}
		return fmt.Errorf("job %q not found", id)
	})
}

// GetDueJobs returns enabled, non-terminal jobs whose NextRun has passed.
func GetDueJobs(path string, now time.Time) []Job {
	s := LoadStore(path)
	var due []Job
	for _, j := range s.Jobs {
		if !j.Enabled || j.Terminal() {
			continue
		}
		if j.NextRun != nil && !j.NextRun.After(now) {
			due = append(due, j)
		}
	}
	return due
}

// MarkExecuted atomically increments RunCount, sets LastRun, and recomputes
// NextRun for a recurring job (disabling it if now terminal or one-shot).
func MarkExecuted(path, id string, executedAt time.Time) error {
	return WithStore(path, func(s *Store) error {
		for i := range s.Jobs {
			if s.Jobs[i].ID != id {
				continue
			}
			j := &s.Jobs[i]
			j.RunCount++
			j.LastRun = &executedAt
			if j.Schedule.Kind == ScheduleAt || j.Terminal() {
				j.Enabled = false
				j.NextRun = nil
				return nil
			}
			next, err := ComputeNextRun(j.Schedule, executedAt)
			if err != nil {
				j.Enabled = false
				j.NextRun = nil
				return nil
			}
			j.NextRun = next
			return nil
		}
		return fmt.Errorf("job %q not found", id)
	})
}

// ComputeNextRun resolves a Schedule's next firing instant strictly after
// after. ScheduleAt jobs fire exactly once at their At instant (only if
// still in the future); ScheduleCron jobs use NextRun's minute-walk;
// ScheduleEvery jobs fire at the next multiple of IntervalMs past StartMs.
// Exported so the scheduler's restore path can recompute NextRun for every
// schedule kind without re-implementing this switch.
func ComputeNextRun(sched Schedule, after time.Time) (*time.Time, error) {
	switch sched.Kind {
	case ScheduleAt:
		if sched.At == nil {
			return nil, fmt.Errorf("schedule kind \"at\" requires a time")
		}
		if !sched.At.After(after) {
			return nil, nil
		}
		t := *sched.At
		return &t, nil
	case ScheduleCron:
		t, err := NextRun(sched.Expression, sched.Timezone, after)
		if err != nil {
			return nil, err
		}
		return &t, nil
	case ScheduleEvery:
		if sched.IntervalMs <= 0 {
			return nil, fmt.Errorf("schedule kind \"every\" requires a positive intervalMs")
		}
		interval := time.Duration(sched.IntervalMs) * time.Millisecond
		anchor := after
		if sched.StartMs != nil {
			anchor = time.UnixMilli(*sched.StartMs)
		}
		if anchor.After(after) {
			return &anchor, nil
		}
		elapsed := after.Sub(anchor)
		n := elapsed/interval + 1
		next := anchor.Add(n * interval)
		return &next, nil
	default:
		return nil, fmt.Errorf("unknown schedule kind %q", sched.Kind)
	}
}
