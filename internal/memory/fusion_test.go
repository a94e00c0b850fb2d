package memory

import "testing"

func mkResult(id, source string, score float64) Result {
	return Result{Chunk: Chunk{ID: id, Source: source, Text: "text for " + id}, Score: score}
}

func TestFuseRRFPrefersItemsInBothLists(t *testing.T) {
	kw := []Result{mkResult("a", "s1", 10), mkResult("b", "s1", 8)}
	vec := []Result{mkResult("b", "s1", 0.9), mkResult("c", "s2", 0.8)}

	fused := fuseRRF(kw, vec, 0.5)
	if len(fused) != 3 {
		t.Fatalf("expected union of 3 ids, got %d", len(fused))
	}
	if fused[0].Chunk.ID != "b" {
		t.Errorf("expected item present in both lists to rank first, got %q", fused[0].Chunk.ID)
	}
}

func TestFuseRRFAlphaWeightsKeywordSide(t *testing.T) {
	kw := []Result{mkResult("a", "s1", 1)}
	vec := []Result{mkResult("b", "s1", 1)}

	allKw := fuseRRF(kw, vec, 1.0)
	if allKw[0].Chunk.ID != "a" {
		t.Errorf("alpha=1 should rank the keyword-only hit first, got %q", allKw[0].Chunk.ID)
	}

	allVec := fuseRRF(kw, vec, 0.0)
	if allVec[0].Chunk.ID != "b" {
		t.Errorf("alpha=0 should rank the vector-only hit first, got %q", allVec[0].Chunk.ID)
	}
}

func TestDiversifyPenalizesRepeatedSource(t *testing.T) {
	fused := []fusedResult{
		{Chunk: Chunk{ID: "a", Source: "s1"}, DocID: "s1", Fused: 1.0},
		{Chunk: Chunk{ID: "b", Source: "s1"}, DocID: "s1", Fused: 0.95},
		{Chunk: Chunk{ID: "c", Source: "s2"}, DocID: "s2", Fused: 0.7},
	}
	out := diversify(fused, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].Chunk.ID != "a" {
		t.Errorf("expected top item unchanged, got %q", out[0].Chunk.ID)
	}
	if out[1].Chunk.ID != "c" {
		t.Errorf("expected second pick to favor the undiversified source %q over repeated s1, got %q", "c", out[1].Chunk.ID)
	}
}

func TestDiversifyReturnsInputWhenKExceedsLength(t *testing.T) {
	fused := []fusedResult{{Chunk: Chunk{ID: "a"}, Fused: 1.0}}
	out := diversify(fused, 5)
	if len(out) != 1 {
		t.Errorf("expected single input item returned, got %d", len(out))
	}
}

func TestDeriveDocIDUsesSource(t *testing.T) {
	c := Chunk{ID: "notes.md#3", Source: "notes.md"}
	if got := deriveDocID(c); got != "notes.md" {
		t.Errorf("expected docID %q, got %q", "notes.md", got)
	}
}

func TestSafeRankSumTreatsAbsentRankAsLarge(t *testing.T) {
	withBoth := safeRankSum(1, 2)
	withMissing := safeRankSum(1, 0)
	if withMissing <= withBoth {
		t.Errorf("expected missing rank to inflate the sum above a fully-present pair")
	}
}
