// Package tracing correlates agent runs, LLM calls, and tool calls into
// traces for observability. Spans are identified by the same uuid.UUID
// scheme the rest of the codebase already threads through context (session
// keys, subagent task IDs), and are exported to OpenTelemetry as
// independently-timed spans carrying trace/parent-span correlation
// attributes — the timing data here is collected retroactively (a tool or
// LLM call finishes before we know whether its parent agent run succeeded),
// which doesn't fit OTel's live parent-must-start-first span model, so we
// correlate by attribute instead of by SDK-native parent linkage.
package tracing

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	ctxTraceID               ctxKey = "tracing_trace_id"
	ctxParentSpanID          ctxKey = "tracing_parent_span_id"
	ctxAnnounceParentSpanID  ctxKey = "tracing_announce_parent_span_id"
	ctxDelegateParentTraceID ctxKey = "tracing_delegate_parent_trace_id"
	ctxCollector             ctxKey = "tracing_collector"
)

func WithTraceID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxTraceID, id)
}

func TraceIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxTraceID).(uuid.UUID)
	return id
}

func WithParentSpanID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxParentSpanID, id)
}

func ParentSpanIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxParentSpanID).(uuid.UUID)
	return id
}

// WithAnnounceParentSpanID marks the context of a subagent-announce run so
// its root agent span nests under the original parent run's root span
// instead of starting a fresh top-level agent span.
func WithAnnounceParentSpanID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxAnnounceParentSpanID, id)
}

func AnnounceParentSpanIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxAnnounceParentSpanID).(uuid.UUID)
	return id
}

// WithDelegateParentTraceID links a delegated run (one agent invoking
// another via the delegate tool) back to the trace that initiated it.
func WithDelegateParentTraceID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxDelegateParentTraceID, id)
}

func DelegateParentTraceIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxDelegateParentTraceID).(uuid.UUID)
	return id
}

func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, ctxCollector, c)
}

func CollectorFromContext(ctx context.Context) *Collector {
	c, _ := ctx.Value(ctxCollector).(*Collector)
	return c
}

// GenID generates a new random identifier for a trace or span.
func GenID() uuid.UUID {
	return uuid.New()
}
