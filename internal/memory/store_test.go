package memory

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertChunksThenMissingEmbeddings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	chunks := Split("notes.md", "## a\nsome content that is long enough to keep\n", time.Now(), 0)
	if err := s.UpsertChunks(ctx, chunks); err != nil {
		t.Fatalf("UpsertChunks: %v", err)
	}

	missing, err := s.MissingEmbeddings(ctx)
	if err != nil {
		t.Fatalf("MissingEmbeddings: %v", err)
	}
	if len(missing) != 1 {
		t.Fatalf("expected 1 chunk missing an embedding, got %d", len(missing))
	}
}

func TestUpsertChunksSkipsUnchangedHash(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	content := "## a\nsome content that is long enough to keep\n"
	chunks := Split("notes.md", content, time.Now(), 0)
	if err := s.UpsertChunks(ctx, chunks); err != nil {
		t.Fatalf("UpsertChunks: %v", err)
	}
	if err := s.WriteEmbedding(ctx, chunks[0].ID, []float32{1, 0, 0}); err != nil {
		t.Fatalf("WriteEmbedding: %v", err)
	}

	// re-ingest identical content: hash unchanged, embedding must survive.
	if err := s.UpsertChunks(ctx, Split("notes.md", content, time.Now(), 0)); err != nil {
		t.Fatalf("UpsertChunks (re-ingest): %v", err)
	}

	missing, err := s.MissingEmbeddings(ctx)
	if err != nil {
		t.Fatalf("MissingEmbeddings: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("expected embedding preserved across unchanged re-ingest, got %d missing", len(missing))
	}
}

func TestUpsertChunksClearsEmbeddingOnChangedHash(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	chunks := Split("notes.md", "## a\nsome original content that is long enough\n", time.Now(), 0)
	if err := s.UpsertChunks(ctx, chunks); err != nil {
		t.Fatalf("UpsertChunks: %v", err)
	}
	if err := s.WriteEmbedding(ctx, chunks[0].ID, []float32{1, 0, 0}); err != nil {
		t.Fatalf("WriteEmbedding: %v", err)
	}

	changed := Split("notes.md", "## a\nsome entirely different content that is long enough\n", time.Now(), 0)
	if err := s.UpsertChunks(ctx, changed); err != nil {
		t.Fatalf("UpsertChunks (changed): %v", err)
	}

	missing, err := s.MissingEmbeddings(ctx)
	if err != nil {
		t.Fatalf("MissingEmbeddings: %v", err)
	}
	if len(missing) != 1 {
		t.Errorf("expected changed chunk to need a new embedding, got %d missing", len(missing))
	}
}

func TestDeleteBySourceRemovesAllItsChunks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	chunks := Split("notes.md", "## a\nfirst section long enough\n\n## b\nsecond section long enough\n", time.Now(), 0)
	if err := s.UpsertChunks(ctx, chunks); err != nil {
		t.Fatalf("UpsertChunks: %v", err)
	}
	for _, c := range chunks {
		if err := s.WriteEmbedding(ctx, c.ID, []float32{1, 0, 0}); err != nil {
			t.Fatalf("WriteEmbedding: %v", err)
		}
	}
	if err := s.DeleteBySource(ctx, "notes.md"); err != nil {
		t.Fatalf("DeleteBySource: %v", err)
	}

	remaining, err := s.allEmbedded(ctx, nil, 0)
	if err != nil {
		t.Fatalf("allEmbedded: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected all chunks for the deleted source gone, got %d", len(remaining))
	}
}

func TestEncodeDecodeVecRoundTrips(t *testing.T) {
	v := []float32{0.1, -0.2, 0.3, 1.0}
	decoded := decodeVec(encodeVec(v))
	if len(decoded) != len(v) {
		t.Fatalf("expected length %d, got %d", len(v), len(decoded))
	}
	for i := range v {
		if decoded[i] != v[i] {
			t.Errorf("index %d: got %f, want %f", i, decoded[i], v[i])
		}
	}
}
