package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/bus"
)

// AsyncCallback is invoked when an async-spawned subagent (or any async
// tool result) resolves, so the agent loop can fold the result back into
// its own session rather than only relying on the announce message.
type AsyncCallback func(ctx context.Context, result *Result)

// AnnounceQueueItem is one completed subagent's result, pending delivery
// back to the session that spawned it.
type AnnounceQueueItem struct {
	SubagentID string
	Label      string
	Status     string
	Result     string
	Runtime    time.Duration
	Iterations int
}

// AnnounceMetadata carries the routing information needed to deliver a
// batched announce back to the originating channel/session.
type AnnounceMetadata struct {
	OriginChannel    string
	OriginChatID     string
	OriginPeerKind   string
	OriginUserID     string
	ParentAgent      string
	OriginTraceID    string
	OriginRootSpanID string
}

type announceBatch struct {
	items []AnnounceQueueItem
	meta  AnnounceMetadata
	timer *time.Timer
}

// AnnounceQueue batches subagent completions that land within a short
// debounce window into a single message, so spawning five subagents in
// quick succession produces one summary instead of five separate pings.
type AnnounceQueue struct {
	msgBus  *bus.MessageBus
	debounce time.Duration

	mu      sync.Mutex
	batches map[string]*announceBatch
}

// NewAnnounceQueue creates a queue that flushes batches after debounce has
// elapsed since the last item was enqueued for that session key.
func NewAnnounceQueue(msgBus *bus.MessageBus, debounce time.Duration) *AnnounceQueue {
	if debounce <= 0 {
		debounce = 3 * time.Second
	}
	return &AnnounceQueue{
		msgBus:   msgBus,
		debounce: debounce,
		batches:  make(map[string]*announceBatch),
	}
}

// Enqueue adds item to the batch for sessionKey, resetting its debounce
// timer.
func (q *AnnounceQueue) Enqueue(sessionKey string, item AnnounceQueueItem, meta AnnounceMetadata) {
	q.mu.Lock()
	defer q.mu.Unlock()

	b, ok := q.batches[sessionKey]
	if !ok {
		b = &announceBatch{meta: meta}
		q.batches[sessionKey] = b
	}
	b.items = append(b.items, item)
	b.meta = meta

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(q.debounce, func() { q.flush(sessionKey) })
}

func (q *AnnounceQueue) flush(sessionKey string) {
	q.mu.Lock()
	b, ok := q.batches[sessionKey]
	if ok {
		delete(q.batches, sessionKey)
	}
	q.mu.Unlock()
	if !ok || len(b.items) == 0 {
		return
	}

	content := FormatBatchedAnnounce(b.items, 0)
	q.msgBus.PublishInbound(bus.InboundMessage{
		Channel:  "system",
		SenderID: "subagent-announce",
		ChatID:   b.meta.OriginChatID,
		Content:  content,
		UserID:   b.meta.OriginUserID,
		PeerKind: b.meta.OriginPeerKind,
		Metadata: map[string]string{
			"origin_channel":      b.meta.OriginChannel,
			"origin_peer_kind":    b.meta.OriginPeerKind,
			"parent_agent":        b.meta.ParentAgent,
			"origin_trace_id":     b.meta.OriginTraceID,
			"origin_root_span_id": b.meta.OriginRootSpanID,
		},
	})
}

// FormatBatchedAnnounce renders one or more subagent results as a single
// message the parent agent's session can fold into context. remainingActive
// is the count of still-running sibling subagents, noted so the parent
// knows more results are still coming.
func FormatBatchedAnnounce(items []AnnounceQueueItem, remainingActive int) string {
	var sb strings.Builder
	if len(items) == 1 {
		it := items[0]
		fmt.Fprintf(&sb, "[Subagent '%s' %s in %s, %d iterations]\n%s",
			it.Label, statusVerb(it.Status), it.Runtime.Round(time.Second), it.Iterations, it.Result)
	} else {
		fmt.Fprintf(&sb, "[%d subagents completed]\n", len(items))
		for _, it := range items {
			fmt.Fprintf(&sb, "\n— %s (%s, %s, %d iterations):\n%s\n",
				it.Label, statusVerb(it.Status), it.Runtime.Round(time.Second), it.Iterations, it.Result)
		}
	}
	if remainingActive > 0 {
		fmt.Fprintf(&sb, "\n\n[%d more subagent(s) still running]", remainingActive)
	}
	return sb.String()
}

func statusVerb(status string) string {
	switch status {
	case TaskStatusCompleted:
		return "completed"
	case TaskStatusFailed:
		return "failed"
	case TaskStatusCancelled:
		return "cancelled"
	default:
		return status
	}
}
