// Package tokenest estimates LLM token consumption without calling the
// provider's tokenizer. Estimates are used for compaction thresholds and
// dynamic max-token/thinking-budget selection, not for billing.
package tokenest

import (
	"unicode"

	"github.com/nextlevelbuilder/goclaw/internal/providers"
)

// perMessageOverhead approximates the role/formatting wrapper every chat
// message costs in addition to its text content.
const perMessageOverhead = 4

// EstimateText estimates the token count of a single string. CJK characters
// (Korean/Chinese/Japanese) are weighted heavier than Latin text since they
// tend to tokenize closer to 1.5 tokens/char instead of ~4 chars/token.
func EstimateText(s string) int {
	var cjk, other int
	for _, r := range s {
		if isCJK(r) {
			cjk++
		} else if !unicode.IsSpace(r) {
			other++
		}
	}
	estimate := float64(cjk)*1.5 + float64(other)/4.0
	return ceilInt(estimate)
}

// EstimateMessages estimates the total token count of a message list,
// including per-message overhead.
func EstimateMessages(msgs []providers.Message) int {
	total := 0
	for _, m := range msgs {
		total += EstimateText(m.Content) + perMessageOverhead
	}
	return total
}

// EstimateMessagesWithCalibration estimates token usage for a message list,
// preferring the last observed real prompt-token count from the provider
// (scaled by message-count growth) over the heuristic when available.
func EstimateMessagesWithCalibration(msgs []providers.Message, lastPromptTokens, lastMessageCount int) int {
	if lastPromptTokens <= 0 || lastMessageCount <= 0 || len(msgs) < lastMessageCount {
		return EstimateMessages(msgs)
	}
	if len(msgs) == lastMessageCount {
		return lastPromptTokens
	}
	// Scale the calibrated base by the heuristic estimate of the newly added
	// messages, since we don't know their real token cost yet.
	newMsgs := msgs[lastMessageCount:]
	return lastPromptTokens + EstimateMessages(newMsgs)
}

func isCJK(r rune) bool {
	switch {
	case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
		return true
	case r >= 0x1100 && r <= 0x11FF: // Hangul Jamo
		return true
	case r >= 0x3040 && r <= 0x30FF: // Hiragana/Katakana
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK extension A
		return true
	default:
		return false
	}
}

func ceilInt(f float64) int {
	i := int(f)
	if float64(i) < f {
		i++
	}
	return i
}
