package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nextlevelbuilder/goclaw/internal/providers"
)

// Tool is an executable capability the agent loop can dispatch by name.
// Implementations must be safe for concurrent Execute calls: per-call state
// (channel, chat, sandbox key) arrives through ctx (see context_keys.go),
// never through mutable fields set before the call.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) *Result
}

// Registry is the declarative tool catalog: every built-in, sandboxed, MCP,
// and dynamic tool is registered here under its canonical name, then
// filtered per agent/provider by PolicyEngine.FilterTools before being
// exposed to the LLM, and dispatched by name from the agent loop.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool

	rateLimiter *ToolRateLimiter
	scrub       bool
}

// NewRegistry returns an empty registry with credential scrubbing enabled,
// matching the gateway's default (disabled only via explicit config).
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		scrub: true,
	}
}

// Register adds or replaces a tool, keyed by its own Name().
func (r *Registry) Register(t Tool) {
	if t == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Unregister removes a tool by name. A no-op if the name isn't registered.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get looks up a tool by name, resolving aliases (e.g. "bash" -> "exec")
// first so callers that dispatch on a caller-supplied name don't need to
// know about the alias table.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[resolveAlias(name)]
	return t, ok
}

// List returns every registered tool name, sorted for deterministic policy
// evaluation and logging.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// SetRateLimiter installs a per-session execution rate limit. Pass nil to
// disable.
func (r *Registry) SetRateLimiter(rl *ToolRateLimiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rateLimiter = rl
}

// SetScrubbing toggles automatic credential redaction on tool results.
// Enabled by default.
func (r *Registry) SetScrubbing(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrub = enabled
}

// ProviderDefs returns every registered tool's definition, unfiltered by
// policy. Used where no PolicyEngine applies (subagents build their own
// restricted registry instead of filtering a shared one).
func (r *Registry) ProviderDefs() []providers.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	defs := make([]providers.ToolDefinition, 0, len(names))
	for _, name := range names {
		defs = append(defs, ToProviderDef(r.tools[name]))
	}
	return defs
}

// Execute dispatches a tool call by name with no session context attached.
// Used for subagents, which run against their own restricted registry and
// never need channel/chat/sandbox binding.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) *Result {
	t, ok := r.Get(name)
	if !ok {
		return ErrorResult(fmt.Sprintf("tool %q not found", name))
	}

	r.mu.RLock()
	rl, scrub := r.rateLimiter, r.scrub
	r.mu.RUnlock()

	if rl != nil && !rl.Allow(ToolSandboxKeyFromCtx(ctx), name) {
		return ErrorResult(fmt.Sprintf("tool %q rate limit exceeded, try again later", name))
	}

	result := t.Execute(ctx, args)
	if result == nil {
		result = NewResult("")
	}
	if scrub {
		result.ForLLM = scrubSecrets(result.ForLLM)
	}
	return compressResult(name, result)
}

// ExecuteWithContext binds the channel/chat/peer/session identifiers (and
// optional async callback) a tool needs to act on behalf of the current
// conversation, then dispatches. sessionKey doubles as the sandbox key:
// sandboxed filesystem/exec tools key their per-session working directory
// off it (see ToolSandboxKeyFromCtx).
func (r *Registry) ExecuteWithContext(
	ctx context.Context,
	name string,
	args map[string]interface{},
	channel, chatID, peerKind, sessionKey string,
	cb AsyncCallback,
) *Result {
	ctx = WithToolChannel(ctx, channel)
	ctx = WithToolChatID(ctx, chatID)
	ctx = WithToolPeerKind(ctx, peerKind)
	ctx = WithToolSandboxKey(ctx, sessionKey)
	if cb != nil {
		ctx = WithToolAsyncCB(ctx, cb)
	}
	return r.Execute(ctx, name, args)
}

// ToProviderDef converts a Tool's schema into the wire shape the LLM
// provider clients send as part of a chat request.
func ToProviderDef(t Tool) providers.ToolDefinition {
	return providers.ToolDefinition{
		Type: "function",
		Function: providers.ToolFunctionSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}
