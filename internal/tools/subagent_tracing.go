package tools

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/goclaw/internal/providers"
	"github.com/nextlevelbuilder/goclaw/internal/tracing"
)

// emitLLMSpan records one LLM call made during subagent execution.
func (sm *SubagentManager) emitLLMSpan(ctx context.Context, start time.Time, iteration int, model string, messages []providers.Message, resp *providers.ChatResponse, callErr error) {
	collector := tracing.CollectorFromContext(ctx)
	traceID := tracing.TraceIDFromContext(ctx)
	if collector == nil || traceID == uuid.Nil {
		return
	}

	now := time.Now().UTC()
	span := tracing.SpanData{
		TraceID:    traceID,
		SpanType:   tracing.SpanTypeLLMCall,
		Name:       "subagent-llm #" + itoa(iteration),
		StartTime:  start,
		EndTime:    &now,
		DurationMS: int(now.Sub(start).Milliseconds()),
		Model:      model,
		Provider:   sm.provider.Name(),
		Status:     tracing.SpanStatusCompleted,
		Level:      tracing.SpanLevelDefault,
		CreatedAt:  now,
	}
	if parentID := tracing.ParentSpanIDFromContext(ctx); parentID != uuid.Nil {
		span.ParentSpanID = &parentID
	}
	if callErr != nil {
		span.Status = tracing.SpanStatusError
		span.Error = callErr.Error()
	} else if resp != nil {
		if resp.Usage != nil {
			span.InputTokens = resp.Usage.PromptTokens
			span.OutputTokens = resp.Usage.CompletionTokens
		}
		span.FinishReason = resp.FinishReason
		span.OutputPreview = truncate(resp.Content, 500)
	}
	collector.EmitSpan(span)
}

// emitToolSpan records one tool call made during subagent execution.
func (sm *SubagentManager) emitToolSpan(ctx context.Context, start time.Time, toolName, toolCallID, input, output string, isError bool) {
	collector := tracing.CollectorFromContext(ctx)
	traceID := tracing.TraceIDFromContext(ctx)
	if collector == nil || traceID == uuid.Nil {
		return
	}

	now := time.Now().UTC()
	span := tracing.SpanData{
		TraceID:       traceID,
		SpanType:      tracing.SpanTypeToolCall,
		Name:          toolName,
		StartTime:     start,
		EndTime:       &now,
		DurationMS:    int(now.Sub(start).Milliseconds()),
		ToolName:      toolName,
		ToolCallID:    toolCallID,
		InputPreview:  truncate(input, 500),
		OutputPreview: truncate(output, 500),
		Status:        tracing.SpanStatusCompleted,
		Level:         tracing.SpanLevelDefault,
		CreatedAt:     now,
	}
	if parentID := tracing.ParentSpanIDFromContext(ctx); parentID != uuid.Nil {
		span.ParentSpanID = &parentID
	}
	if isError {
		span.Status = tracing.SpanStatusError
		span.Error = truncate(output, 200)
	}
	collector.EmitSpan(span)
}

// emitSubagentSpan records the root span for one subagent execution, nested
// under the parent agent's root span.
func (sm *SubagentManager) emitSubagentSpan(ctx context.Context, rootSpanID uuid.UUID, start time.Time, task *SubagentTask, model, finalContent string) {
	collector := tracing.CollectorFromContext(ctx)
	traceID := tracing.TraceIDFromContext(ctx)
	if collector == nil || traceID == uuid.Nil {
		return
	}

	now := time.Now().UTC()
	span := tracing.SpanData{
		ID:         rootSpanID,
		TraceID:    traceID,
		SpanType:   tracing.SpanTypeAgent,
		Name:       "subagent:" + task.Label,
		StartTime:  start,
		EndTime:    &now,
		DurationMS: int(now.Sub(start).Milliseconds()),
		Model:      model,
		Status:     tracing.SpanStatusCompleted,
		Level:      tracing.SpanLevelDefault,
		OutputPreview: truncate(finalContent, 500),
		CreatedAt:  now,
	}
	if parentID := tracing.ParentSpanIDFromContext(ctx); parentID != uuid.Nil {
		span.ParentSpanID = &parentID
	}
	if task.Status == TaskStatusFailed || task.Status == TaskStatusCancelled {
		span.Status = tracing.SpanStatusError
		if task.Status == TaskStatusCancelled {
			span.Status = tracing.SpanStatusCancelled
		}
	}
	collector.EmitSpan(span)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
