package agent

import (
	"strings"

	"github.com/nextlevelbuilder/goclaw/internal/config"
	"github.com/nextlevelbuilder/goclaw/internal/providers"
	"github.com/nextlevelbuilder/goclaw/internal/tokenest"
)

// pruneContextMessages soft-trims or hard-clears old tool results to relieve
// context pressure before history compaction kicks in. Unlike compaction
// (which rewrites session history permanently), pruning only affects the
// message slice built for this one request — the underlying session history
// is untouched.
//
// Mode "off" (default) is a no-op. Mode "cache-ttl" prunes tool messages
// older than the last keepLastAssistants assistant turns once the estimated
// prompt size crosses softTrimRatio (trim to head/tail) or hardClearRatio
// (replace with a placeholder) of the context window.
func pruneContextMessages(msgs []providers.Message, contextWindow int, cfg *config.ContextPruningConfig) []providers.Message {
	if cfg == nil || cfg.Mode != "cache-ttl" || len(msgs) == 0 || contextWindow <= 0 {
		return msgs
	}

	keepLastAssistants := cfg.KeepLastAssistants
	if keepLastAssistants <= 0 {
		keepLastAssistants = 3
	}
	softTrimRatio := cfg.SoftTrimRatio
	if softTrimRatio <= 0 {
		softTrimRatio = 0.3
	}
	hardClearRatio := cfg.HardClearRatio
	if hardClearRatio <= 0 {
		hardClearRatio = 0.5
	}
	minPrunableChars := cfg.MinPrunableToolChars
	if minPrunableChars <= 0 {
		minPrunableChars = 50000
	}

	estimate := tokenest.EstimateMessages(msgs)
	softThreshold := int(float64(contextWindow) * softTrimRatio)
	hardThreshold := int(float64(contextWindow) * hardTrimRatio(hardClearRatio))
	if estimate < softThreshold {
		return msgs
	}

	// Find the index boundary before which tool results are eligible for pruning:
	// everything at or after the keepLastAssistants-th-from-end assistant message
	// is protected.
	protectFrom := len(msgs)
	assistantsSeen := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "assistant" {
			assistantsSeen++
			if assistantsSeen > keepLastAssistants {
				break
			}
			protectFrom = i
		}
	}

	totalPrunableChars := 0
	for i := 0; i < protectFrom; i++ {
		if msgs[i].Role == "tool" {
			totalPrunableChars += len(msgs[i].Content)
		}
	}
	if totalPrunableChars < minPrunableChars {
		return msgs
	}

	out := make([]providers.Message, len(msgs))
	copy(out, msgs)

	hardClear := estimate >= hardThreshold
	placeholder := "[Old tool result content cleared]"
	headChars, tailChars, maxChars := 1500, 1500, 4000
	if cfg.SoftTrim != nil {
		if cfg.SoftTrim.MaxChars > 0 {
			maxChars = cfg.SoftTrim.MaxChars
		}
		if cfg.SoftTrim.HeadChars > 0 {
			headChars = cfg.SoftTrim.HeadChars
		}
		if cfg.SoftTrim.TailChars > 0 {
			tailChars = cfg.SoftTrim.TailChars
		}
	}
	if cfg.HardClear != nil {
		if cfg.HardClear.Enabled != nil && !*cfg.HardClear.Enabled {
			hardClear = false
		}
		if cfg.HardClear.Placeholder != "" {
			placeholder = cfg.HardClear.Placeholder
		}
	}

	for i := 0; i < protectFrom; i++ {
		if out[i].Role != "tool" || len(out[i].Content) <= maxChars {
			continue
		}
		if hardClear {
			out[i].Content = placeholder
			continue
		}
		var sb strings.Builder
		sb.WriteString(out[i].Content[:headChars])
		sb.WriteString("\n...[trimmed]...\n")
		sb.WriteString(out[i].Content[len(out[i].Content)-tailChars:])
		out[i].Content = sb.String()
	}

	return out
}

func hardTrimRatio(r float64) float64 {
	if r < 0 || r > 1 {
		return 0.5
	}
	return r
}
