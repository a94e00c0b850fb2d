package embedding

import (
	"context"
	"strings"
	"testing"
)

func TestLocalBackendProducesUnitVectors(t *testing.T) {
	e := New(NewLocalBackend())
	v, err := e.Embed(context.Background(), "hello world", false)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(v) != Dim {
		t.Fatalf("expected dim %d, got %d", Dim, len(v))
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum > 1.001 || sum < 0.5 {
		t.Errorf("expected unit-normalized vector, got squared norm %f", sum)
	}
}

func TestEmbedEmptyInputYieldsZeroVector(t *testing.T) {
	e := New(NewLocalBackend())
	v, err := e.Embed(context.Background(), "   ", true)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for _, x := range v {
		if x != 0 {
			t.Fatalf("expected all-zero vector for blank input, got %v", v)
		}
	}
}

func TestEmbedIsDeterministic(t *testing.T) {
	e := New(NewLocalBackend())
	a, _ := e.Embed(context.Background(), "the quick brown fox", false)
	b, _ := e.Embed(context.Background(), "the quick brown fox", false)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical embeddings for identical input, diverged at index %d", i)
		}
	}
}

func TestEmbedTruncatesLongInput(t *testing.T) {
	e := New(NewLocalBackend())
	long := strings.Repeat("a", 10000)
	a, _ := e.Embed(context.Background(), long, false)
	b, _ := e.Embed(context.Background(), long[:maxInputChars], false)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected truncated-equivalent embeddings, diverged at index %d", i)
		}
	}
}

func TestCosineOfIdenticalVectorsIsOne(t *testing.T) {
	e := New(NewLocalBackend())
	v, _ := e.Embed(context.Background(), "some text", false)
	c := Cosine(v, v, true)
	if c < 0.999 || c > 1.001 {
		t.Errorf("expected cosine ~1.0 for identical vectors, got %f", c)
	}
}

func TestQueryCacheEvictsLRU(t *testing.T) {
	e := New(NewLocalBackend())
	for i := 0; i < queryCacheCap+10; i++ {
		if _, err := e.Embed(context.Background(), strings.Repeat("x", i+1), true); err != nil {
			t.Fatalf("Embed: %v", err)
		}
	}
	if len(e.cache) != queryCacheCap {
		t.Errorf("expected cache capped at %d entries, got %d", queryCacheCap, len(e.cache))
	}
}

func TestEmbedBatchDoesNotPopulateQueryCache(t *testing.T) {
	e := New(NewLocalBackend())
	if _, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"}); err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(e.cache) != 0 {
		t.Errorf("expected batch embedding to bypass the query cache, got %d entries", len(e.cache))
	}
}
