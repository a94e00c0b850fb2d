package tokenest

import "testing"

func TestBudgetFloor(t *testing.T) {
	maxTokens, thinkingBudget, enabled := Budget(1000, 900, ThinkingOff)
	if maxTokens != minMaxTokens {
		t.Fatalf("expected floor %d, got %d", minMaxTokens, maxTokens)
	}
	if enabled || thinkingBudget != 0 {
		t.Fatalf("thinking should be disabled when level is off")
	}
}

func TestBudgetScales(t *testing.T) {
	maxTokens, _, _ := Budget(200_000, 50_000, ThinkingOff)
	want := int(float64(150_000) * 0.3)
	if maxTokens != want {
		t.Fatalf("want %d, got %d", want, maxTokens)
	}
}

func TestBudgetThinkingDisabledWhenTiny(t *testing.T) {
	// Small remaining window forces maxTokens to the floor, and low-ratio
	// thinking budget then falls under the 1024 viability floor.
	_, thinkingBudget, enabled := Budget(5000, 4900, ThinkingLow)
	if enabled {
		t.Fatalf("expected thinking disabled, got budget=%d", thinkingBudget)
	}
}

func TestBudgetThinkingLevels(t *testing.T) {
	maxTokens, thinkingBudget, enabled := Budget(200_000, 10_000, ThinkingHigh)
	if !enabled {
		t.Fatalf("expected thinking enabled")
	}
	if thinkingBudget > maxTokens-thinkingMinViable {
		t.Fatalf("thinking budget %d exceeds ceiling", thinkingBudget)
	}
	if thinkingBudget > thinkingLevels[ThinkingHigh].cap {
		t.Fatalf("thinking budget %d exceeds level cap", thinkingBudget)
	}
}

func TestEstimateTextCJK(t *testing.T) {
	korean := EstimateText("매일 오후 3시")
	if korean <= 0 {
		t.Fatalf("expected positive estimate, got %d", korean)
	}
	latin := EstimateText("hello world")
	if latin <= 0 {
		t.Fatalf("expected positive estimate, got %d", latin)
	}
}
