package tools

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// truncate shortens s to at most max bytes without splitting a multi-byte
// rune, appending "..." when truncated.
func truncate(s string, max int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}

// generateSubagentID returns a short random identifier for a subagent task.
func generateSubagentID() string {
	return "sa-" + uuid.New().String()[:8]
}
