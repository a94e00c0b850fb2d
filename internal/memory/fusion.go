package memory

import (
	"math"
	"sort"
	"strings"
)

// rrfK is the default Reciprocal Rank Fusion denominator constant.
const rrfK = 60

// lambdaDoc and lambdaSrc tune Diversify's per-source/per-document penalty
// strength: higher means a repeated source is suppressed more aggressively.
const (
	lambdaDoc = 0.75
	lambdaSrc = 0.25
)

// fusedResult is one hybrid-search candidate after rank fusion.
type fusedResult struct {
	Chunk
	DocID   string
	FtRank  int // 1-based; 0 if absent from the keyword result set
	VecRank int // 1-based; 0 if absent from the semantic result set
	FtScore float64
	VecScore float64
	Fused   float64
}

// fuseRRF combines keyword and vector result sets by Reciprocal Rank
// Fusion: alpha weights the keyword contribution, 1-alpha the vector
// contribution. Ported from intelligencedev-manifold/internal/rag/
// retrieve/fusion.go's FuseRRF, adapted to this package's Result/Chunk
// shapes (no separate fts/vec result types — both sides already carry
// Chunk).
func fuseRRF(keyword, vector []Result, alpha float64) []fusedResult {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	wvec := 1 - alpha

	ftPos := make(map[string]int, len(keyword))
	ftByID := make(map[string]Result, len(keyword))
	for i, r := range keyword {
		ftPos[r.Chunk.ID] = i + 1
		ftByID[r.Chunk.ID] = r
	}
	vecPos := make(map[string]int, len(vector))
	vecByID := make(map[string]Result, len(vector))
	for i, r := range vector {
		vecPos[r.Chunk.ID] = i + 1
		vecByID[r.Chunk.ID] = r
	}

	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, r := range keyword {
		add(r.Chunk.ID)
	}
	for _, r := range vector {
		add(r.Chunk.ID)
	}

	out := make([]fusedResult, 0, len(ids))
	for _, id := range ids {
		fr := ftPos[id]
		vr := vecPos[id]
		var fContrib, vContrib float64
		if fr > 0 {
			fContrib = 1.0 / float64(rrfK+fr)
		}
		if vr > 0 {
			vContrib = 1.0 / float64(rrfK+vr)
		}
		fused := alpha*fContrib + wvec*vContrib

		var c Chunk
		if r, ok := ftByID[id]; ok {
			c = r.Chunk
		} else if r, ok := vecByID[id]; ok {
			c = r.Chunk
		}

		out = append(out, fusedResult{
			Chunk:    c,
			DocID:    deriveDocID(c),
			FtRank:   fr,
			VecRank:  vr,
			FtScore:  fContrib,
			VecScore: vContrib,
			Fused:    fused,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Fused != out[j].Fused {
			return out[i].Fused > out[j].Fused
		}
		sri := safeRankSum(out[i].FtRank, out[i].VecRank)
		srj := safeRankSum(out[j].FtRank, out[j].VecRank)
		if sri != srj {
			return sri < srj
		}
		return out[i].Chunk.ID < out[j].Chunk.ID
	})
	return out
}

func safeRankSum(a, b int) int {
	const sentinel = 1_000_000_000
	const cap = 500_000_000
	if a == 0 {
		a = sentinel
	}
	if b == 0 {
		b = sentinel
	}
	if a > cap {
		a = cap
	}
	if b > cap {
		b = cap
	}
	return a + b
}

// diversify greedily selects up to k candidates from fused, applying a
// multiplicative penalty to candidates whose DocID/Source has already been
// picked, so a single source does not dominate the result set.
func diversify(fused []fusedResult, k int) []fusedResult {
	if k <= 0 || len(fused) <= 1 {
		if k > 0 && k < len(fused) {
			return fused[:k]
		}
		return fused
	}

	docCount := map[string]int{}
	srcCount := map[string]int{}
	selected := make([]fusedResult, 0, min(k, len(fused)))
	used := make([]bool, len(fused))

	for len(selected) < k {
		bestIdx := -1
		bestAdj := -1.0
		for i, c := range fused {
			if used[i] {
				continue
			}
			denom := 1.0 + lambdaDoc*float64(docCount[c.DocID]) + lambdaSrc*float64(srcCount[c.Chunk.Source])
			adj := c.Fused / denom
			if adj > bestAdj || (almostEqual(adj, bestAdj) && bestIdx >= 0 && c.Chunk.ID < fused[bestIdx].Chunk.ID) {
				bestAdj = adj
				bestIdx = i
			}
		}
		if bestIdx == -1 {
			break
		}
		pick := fused[bestIdx]
		selected = append(selected, pick)
		used[bestIdx] = true
		docCount[pick.DocID]++
		srcCount[pick.Chunk.Source]++
		if len(selected) == len(fused) {
			break
		}
	}
	return selected
}

// deriveDocID extracts a document identity from a chunk ID shaped
// "<source>#<index>" (this package's Split always produces that shape), so
// sibling chunks from the same source are recognized as one document by
// diversify.
func deriveDocID(c Chunk) string {
	if c.Source != "" {
		return c.Source
	}
	if idx := strings.LastIndex(c.ID, "#"); idx != -1 {
		return c.ID[:idx]
	}
	return c.ID
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-12 }
