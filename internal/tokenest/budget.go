package tokenest

// ThinkingLevel selects how much of the response budget is reserved for
// extended-thinking tokens on providers that support it.
type ThinkingLevel string

const (
	ThinkingOff    ThinkingLevel = "off"
	ThinkingLow    ThinkingLevel = "low"
	ThinkingMedium ThinkingLevel = "medium"
	ThinkingHigh   ThinkingLevel = "high"
)

const minMaxTokens = 4096

// thinkingMinViable is the smallest budget worth enabling thinking for; below
// this the reasoning preamble would eat the entire allowance.
const thinkingMinViable = 1024

type thinkingParams struct {
	ratio float64
	cap   int
}

var thinkingLevels = map[ThinkingLevel]thinkingParams{
	ThinkingOff:    {ratio: 0, cap: 0},
	ThinkingLow:    {ratio: 0.3, cap: 5000},
	ThinkingMedium: {ratio: 0.5, cap: 10000},
	ThinkingHigh:   {ratio: 0.7, cap: 20000},
}

// Budget computes the dynamic response token budget and, when thinking is
// requested, the thinking-token sub-budget.
//
//	maxTokens      = max(4096, floor((contextWindow - promptTokens) * 0.3))
//	thinkingBudget = min(levelCap, floor(maxTokens * levelRatio), maxTokens - 1024)
//
// Thinking is disabled (thinkingEnabled=false, thinkingBudget=0) whenever the
// computed thinking budget would fall below 1024 tokens.
func Budget(contextWindow, promptTokens int, level ThinkingLevel) (maxTokens int, thinkingBudget int, thinkingEnabled bool) {
	remaining := contextWindow - promptTokens
	if remaining < 0 {
		remaining = 0
	}
	maxTokens = int(float64(remaining) * 0.3)
	if maxTokens < minMaxTokens {
		maxTokens = minMaxTokens
	}

	params, ok := thinkingLevels[level]
	if !ok || level == ThinkingOff || level == "" {
		return maxTokens, 0, false
	}

	budget := params.cap
	if byRatio := int(float64(maxTokens) * params.ratio); byRatio < budget {
		budget = byRatio
	}
	if ceiling := maxTokens - thinkingMinViable; ceiling < budget {
		budget = ceiling
	}
	if budget < thinkingMinViable {
		return maxTokens, 0, false
	}
	return maxTokens, budget, true
}
