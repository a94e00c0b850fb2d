package tracing

import (
	"time"

	"github.com/google/uuid"
)

// Span type/status/level constants, matching the categories the agent loop
// and subagent executor record.
const (
	SpanTypeAgent    = "agent"
	SpanTypeLLMCall  = "llm_call"
	SpanTypeToolCall = "tool_call"

	SpanStatusRunning   = "running"
	SpanStatusCompleted = "completed"
	SpanStatusError     = "error"
	SpanStatusCancelled = "cancelled"

	SpanLevelDefault = "DEFAULT"
)

// SpanData is one recorded span: an agent run, an LLM call, or a tool call.
// Unlike a live OTel span, every field here is known before EmitSpan is
// called — the caller times the operation itself and hands over a complete
// record.
type SpanData struct {
	ID           uuid.UUID
	TraceID      uuid.UUID
	ParentSpanID *uuid.UUID
	AgentID      *uuid.UUID

	SpanType string
	Name     string

	StartTime  time.Time
	EndTime    *time.Time
	DurationMS int

	Model    string
	Provider string

	InputTokens  int
	OutputTokens int

	ToolName   string
	ToolCallID string

	InputPreview  string
	OutputPreview string

	FinishReason string
	Status       string
	Level        string
	Error        string
	Metadata     []byte

	CreatedAt time.Time
}

// Trace status constants.
const (
	TraceStatusRunning   = "running"
	TraceStatusCompleted = "completed"
	TraceStatusError     = "error"
	TraceStatusCancelled = "cancelled"
)

// TraceData is the root record for one agent run.
type TraceData struct {
	ID            uuid.UUID
	RunID         string
	SessionKey    string
	UserID        string
	Channel       string
	Name          string
	InputPreview  string
	OutputPreview string
	Status        string
	Error         string
	StartTime     time.Time
	EndTime       *time.Time
	CreatedAt     time.Time
	Tags          []string
	AgentID       *uuid.UUID
	ParentTraceID *uuid.UUID
}
