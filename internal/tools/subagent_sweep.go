package tools

import (
	"context"
	"log/slog"
	"time"
)

// scheduleArchive removes a completed task from the in-memory registry
// after the configured archive delay, so RunSync/Spawn callers have a
// window to read its final Result before it's forgotten.
func (sm *SubagentManager) scheduleArchive(id string, after time.Duration) {
	time.Sleep(after)
	sm.mu.Lock()
	delete(sm.tasks, id)
	sm.mu.Unlock()
}

// reapStaleTasksInterval is how often the sweep checks for stuck or
// forgotten tasks.
const reapStaleTasksInterval = 10 * time.Minute

// stuckRunningAfter and completedRetentionAfter bound how long a task can
// stay in the registry: a "running" task stuck past this long almost
// certainly lost its goroutine to a process restart or panic recovery gap,
// and a terminal task this old was never picked up by scheduleArchive
// (e.g. ArchiveAfterMinutes was 0, meaning "never auto-archive").
const (
	stuckRunningAfter       = time.Hour
	completedRetentionAfter = time.Hour
)

// StartReaper launches a background sweep that reaps stuck-running and
// stale-completed tasks every reapStaleTasksInterval, until ctx is done.
func (sm *SubagentManager) StartReaper(ctx context.Context) {
	ticker := time.NewTicker(reapStaleTasksInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sm.reapOnce()
			}
		}
	}()
}

func (sm *SubagentManager) reapOnce() {
	now := time.Now().UnixMilli()

	sm.mu.Lock()
	var toCancel []*SubagentTask
	for id, t := range sm.tasks {
		age := time.Duration(now-t.CreatedAt) * time.Millisecond
		switch {
		case t.Status == TaskStatusRunning && age > stuckRunningAfter:
			t.Status = TaskStatusCancelled
			t.Result = "reaped: exceeded maximum running time"
			toCancel = append(toCancel, t)
			delete(sm.tasks, id)
		case t.Status != TaskStatusRunning && t.CompletedAt > 0:
			completedAge := time.Duration(now-t.CompletedAt) * time.Millisecond
			if completedAge > completedRetentionAfter {
				delete(sm.tasks, id)
			}
		}
	}
	sm.mu.Unlock()

	for _, t := range toCancel {
		if t.cancelFunc != nil {
			t.cancelFunc()
		}
		slog.Warn("subagent reaped: stuck running", "id", t.ID, "parent", t.ParentID, "label", t.Label)
	}
}
