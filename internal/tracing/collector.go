package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Collector records traces and spans, keeping a small in-memory index (for
// local `cron status`/`doctor` style inspection) and exporting every span to
// OpenTelemetry as an independently-timed span tagged with trace/parent/span
// correlation attributes.
type Collector struct {
	tracer  oteltrace.Tracer
	verbose bool

	mu     sync.Mutex
	traces map[uuid.UUID]*TraceData
}

// NewCollector builds a Collector backed by tp (a no-op tracer provider is
// fine when telemetry is disabled — EmitSpan becomes a cheap no-export op).
func NewCollector(tp oteltrace.TracerProvider, verbose bool) *Collector {
	return &Collector{
		tracer:  tp.Tracer("goclaw/agent"),
		verbose: verbose,
		traces:  make(map[uuid.UUID]*TraceData),
	}
}

func (c *Collector) Verbose() bool { return c.verbose }

// CreateTrace registers a new trace root.
func (c *Collector) CreateTrace(ctx context.Context, t *TraceData) error {
	c.mu.Lock()
	c.traces[t.ID] = t
	c.mu.Unlock()
	slog.Debug("tracing: trace created", "trace_id", t.ID, "name", t.Name)
	return nil
}

// FinishTrace marks a trace as complete and exports a summary span.
func (c *Collector) FinishTrace(ctx context.Context, id uuid.UUID, status, errMsg, outputPreview string) {
	now := time.Now().UTC()

	c.mu.Lock()
	t, ok := c.traces[id]
	if ok {
		t.Status = status
		t.Error = errMsg
		t.OutputPreview = outputPreview
		t.EndTime = &now
	}
	c.mu.Unlock()

	if !ok {
		return
	}

	_, span := c.tracer.Start(ctx, "trace:"+t.Name, oteltrace.WithTimestamp(t.StartTime))
	span.SetAttributes(
		attribute.String("goclaw.trace_id", t.ID.String()),
		attribute.String("goclaw.run_id", t.RunID),
		attribute.String("goclaw.session_key", t.SessionKey),
		attribute.String("goclaw.channel", t.Channel),
		attribute.String("goclaw.status", status),
	)
	if errMsg != "" {
		span.SetAttributes(attribute.String("goclaw.error", errMsg))
	}
	span.End(oteltrace.WithTimestamp(now))
}

// EmitSpan exports one completed span (agent run, LLM call, or tool call).
func (c *Collector) EmitSpan(s SpanData) {
	end := time.Now().UTC()
	if s.EndTime != nil {
		end = *s.EndTime
	}

	_, span := c.tracer.Start(context.Background(), s.Name, oteltrace.WithTimestamp(s.StartTime))
	attrs := []attribute.KeyValue{
		attribute.String("goclaw.trace_id", s.TraceID.String()),
		attribute.String("goclaw.span_type", s.SpanType),
		attribute.String("goclaw.status", s.Status),
	}
	if s.ParentSpanID != nil {
		attrs = append(attrs, attribute.String("goclaw.parent_span_id", s.ParentSpanID.String()))
	}
	if s.Model != "" {
		attrs = append(attrs, attribute.String("goclaw.model", s.Model))
	}
	if s.Provider != "" {
		attrs = append(attrs, attribute.String("goclaw.provider", s.Provider))
	}
	if s.ToolName != "" {
		attrs = append(attrs, attribute.String("goclaw.tool_name", s.ToolName))
	}
	if s.InputTokens > 0 {
		attrs = append(attrs, attribute.Int("goclaw.input_tokens", s.InputTokens))
	}
	if s.OutputTokens > 0 {
		attrs = append(attrs, attribute.Int("goclaw.output_tokens", s.OutputTokens))
	}
	if s.Error != "" {
		attrs = append(attrs, attribute.String("goclaw.error", s.Error))
	}
	span.SetAttributes(attrs...)
	span.End(oteltrace.WithTimestamp(end))
}
