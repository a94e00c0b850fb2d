package bootstrap

import "strings"

// Well-known workspace file names seeded into every agent's workspace.
const (
	AgentsFile    = "AGENTS.md"
	SoulFile      = "SOUL.md"
	ToolsFile     = "TOOLS.md"
	IdentityFile  = "IDENTITY.md"
	UserFile      = "USER.md"
	HeartbeatFile = "HEARTBEAT.md"
	BootstrapFile = "BOOTSTRAP.md"
	MemoryFile    = "MEMORY.md"
)

// ContextFile is a workspace file whose content is injected into the system
// prompt verbatim.
type ContextFile struct {
	Path    string
	Content string
}

// subagentSessionPrefix and cronSessionPrefix match the session-key
// conventions used when building keys elsewhere (internal/sessions.Key,
// internal/tools subagent spawn, internal/scheduler dispatch).
const (
	subagentSessionPrefix = "subagent:"
	cronSessionPrefix     = "cron:"
)

// IsSubagentSession reports whether a session key belongs to a spawned
// subagent run, which gets a minimal system prompt instead of the full one.
func IsSubagentSession(sessionKey string) bool {
	return strings.Contains(sessionKey, subagentSessionPrefix)
}

// IsCronSession reports whether a session key belongs to a scheduled cron
// or reminder dispatch, which also gets the minimal prompt.
func IsCronSession(sessionKey string) bool {
	return strings.Contains(sessionKey, cronSessionPrefix)
}
