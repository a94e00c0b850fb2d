// Package cron provides cron/natural-language schedule parsing and a
// file-backed job store shared by the scheduler and reminder subsystems.
package cron

import "time"

// ScheduleKind distinguishes a recurring cron expression from a one-shot
// absolute instant.
type ScheduleKind string

const (
	ScheduleCron  ScheduleKind = "cron"
	ScheduleAt    ScheduleKind = "at"
	ScheduleEvery ScheduleKind = "every"
)

// Schedule describes when a job fires: exactly one of Expression (for
// ScheduleCron), At (for ScheduleAt), or IntervalMs (for ScheduleEvery) is
// meaningful, selected by Kind. ScheduleEvery recurs every IntervalMs
// milliseconds, anchored at StartMs if set (otherwise each next run is one
// interval after the moment it is computed: creation, enabling or the
// previous execution).
type Schedule struct {
	Kind       ScheduleKind `json:"kind"`
	Expression string       `json:"expression,omitempty"`
	Timezone   string       `json:"timezone,omitempty"`
	At         *time.Time   `json:"at,omitempty"`
	IntervalMs int64        `json:"intervalMs,omitempty"`
	StartMs    *int64       `json:"startMs,omitempty"`
}

// PayloadKind selects what a job does when it fires.
type PayloadKind string

const (
	PayloadAgentTurn PayloadKind = "agentTurn"
)

// Payload carries what to execute when a job's schedule comes due.
type Payload struct {
	Kind    PayloadKind `json:"kind"`
	Message string      `json:"message"`
}

// Job is a persisted scheduled task.
type Job struct {
	ID        string     `json:"id"`
	ChatID    string     `json:"chatId"`
	Name      string     `json:"name"`
	Schedule  Schedule   `json:"schedule"`
	Payload   Payload    `json:"payload"`
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"createdAt"`
	NextRun   *time.Time `json:"nextRun,omitempty"`
	LastRun   *time.Time `json:"lastRun,omitempty"`
	RunCount  int        `json:"runCount"`
	// MaxRuns caps total executions for a recurring job; 0 means unlimited.
	MaxRuns int `json:"maxRuns,omitempty"`
}

// Terminal reports whether the job has exhausted its allotted runs and
// should no longer be scheduled.
func (j *Job) Terminal() bool {
	return j.MaxRuns > 0 && j.RunCount >= j.MaxRuns
}

// Store is the single JSON document persisted per workspace: cron-jobs.json.
type Store struct {
	Version int   `json:"version"`
	Jobs    []Job `json:"jobs"`
}
