package memory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/embedding"
)

func newTestMemory(t *testing.T) *Memory {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	engine := embedding.New(embedding.NewLocalBackend())
	return NewMemory(store, engine, 0, 0, 0)
}

func TestIngestThenSearchFindsRelevantChunk(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	if err := m.Ingest(ctx, "notes.md", "## deployment\nthe production deploy runs every night at midnight\n\n## lunch\nthe cafeteria serves tacos on tuesdays\n", time.Now()); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := m.Search(ctx, "when does the deploy run", SearchOptions{TopK: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
}

func TestSearchRespectsMinScore(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()
	if err := m.Ingest(ctx, "notes.md", "## a\nsome unrelated paragraph about gardening techniques\n", time.Now()); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := m.Search(ctx, "gardening", SearchOptions{TopK: 5, MinScore: 1.1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected MinScore above any possible cosine to filter everything out, got %d", len(results))
	}
}

func TestSearchCachesIdenticalQuery(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()
	if err := m.Ingest(ctx, "notes.md", "## a\nsome content long enough to keep around\n", time.Now()); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	first, err := m.Search(ctx, "some content", SearchOptions{TopK: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := m.store.DeleteBySource(ctx, "notes.md"); err != nil {
		t.Fatalf("DeleteBySource: %v", err)
	}
	second, err := m.Search(ctx, "some content", SearchOptions{TopK: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("expected cached result to survive underlying deletion, got %d vs %d", len(second), len(first))
	}
}

func TestSearchKeywordFindsExactTermMatch(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()
	if err := m.Ingest(ctx, "notes.md", "## deployment\nthe production deploy runs every night\n\n## lunch\nthe cafeteria serves tacos\n", time.Now()); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := m.SearchKeyword(ctx, "tacos", SearchOptions{TopK: 5})
	if err != nil {
		t.Fatalf("SearchKeyword: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected a keyword hit for an exact term")
	}
}

func TestHybridSearchDedupesByPrefixAndSource(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()
	if err := m.Ingest(ctx, "notes.md", "## deploy\nthe production deploy pipeline runs nightly and ships automatically\n", time.Now()); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := m.HybridSearch(ctx, "deploy pipeline", SearchOptions{TopK: 5})
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	seen := map[string]bool{}
	for _, r := range results {
		key := r.Chunk.Source + "|" + truncateForDedupe(r.Chunk.Text)
		if seen[key] {
			t.Errorf("expected deduplicated results, found repeat for %q", key)
		}
		seen[key] = true
	}
}

func TestHybridSearchReturnsEmptyWhenStoreIsEmpty(t *testing.T) {
	m := newTestMemory(t)
	results, err := m.HybridSearch(context.Background(), "anything", SearchOptions{TopK: 5})
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from an empty store, got %d", len(results))
	}
}
