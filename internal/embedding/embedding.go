// Package embedding produces fixed-dimension, unit-normalized vectors from
// short text for the memory store's semantic search. A pluggable Embedder
// interface backs either a local, dependency-free hash-projection model or
// an HTTP call to an OpenAI-compatible /embeddings endpoint, selected by
// config.MemoryConfig.EmbeddingProvider.
package embedding

import (
	"container/list"
	"context"
	"math"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Dim is the fixed output dimensionality. All vectors produced by any
// Embedder implementation in this package are exactly this long.
const Dim = 384

// maxInputChars is the input normalization truncation length.
const maxInputChars = 512

// queryCacheCap bounds the query-embedding LRU.
const queryCacheCap = 100

// batchConcurrency bounds how many texts embedBatch processes at once.
const batchConcurrency = 5

// Vec is a unit-normalized, fixed-dimension embedding vector.
type Vec []float32

// Embedder converts text to vectors. Implementations need not normalize or
// cap input themselves — Engine does that uniformly before delegating.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) (Vec, error)
	EmbedMany(ctx context.Context, texts []string) ([]Vec, error)
	Name() string
}

// Engine is the singleton embedding pipeline: input normalization, a
// query-result LRU cache, and bounded-concurrency batch embedding over a
// pluggable backend.
type Engine struct {
	backend Embedder

	mu        sync.Mutex
	cache     map[string]*list.Element
	order     *list.List // front = most recently used
	loadOnce  sync.Once
	loadErr   error
}

type cacheEntry struct {
	key string
	vec Vec
}

// New wraps backend in an Engine. Preload runs only when called explicitly;
// Embed and EmbedBatch do not trigger it.
func New(backend Embedder) *Engine {
	return &Engine{
		backend: backend,
		cache:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Preload triggers the backend's one-time model load (if any) exactly once,
// regardless of how many goroutines call it concurrently.
func (e *Engine) Preload(ctx context.Context) error {
	e.loadOnce.Do(func() {
		_, e.loadErr = e.backend.EmbedOne(ctx, "")
	})
	return e.loadErr
}

// Embed returns text's embedding. When useCache is true and text has been
// embedded before, the cached vector is returned without calling the
// backend. Normalization (trim, truncate, empty→zero) happens before the
// cache lookup so logically-identical inputs always share one entry.
func (e *Engine) Embed(ctx context.Context, text string, useCache bool) (Vec, error) {
	norm := normalizeInput(text)
	if norm == "" {
		return make(Vec, Dim), nil
	}

	if useCache {
		if v, ok := e.cacheGet(norm); ok {
			return v, nil
		}
	}

	v, err := e.backend.EmbedOne(ctx, norm)
	if err != nil {
		return nil, err
	}

	if useCache {
		e.cachePut(norm, v)
	}
	return v, nil
}

// EmbedBatch embeds many texts concurrently (bounded by batchConcurrency)
// and never touches the query cache — batch ingestion is a write-through
// path, not a query path.
func (e *Engine) EmbedBatch(ctx context.Context, texts []string) ([]Vec, error) {
	out := make([]Vec, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			norm := normalizeInput(text)
			if norm == "" {
				out[i] = make(Vec, Dim)
				return nil
			}
			v, err := e.backend.EmbedOne(gctx, norm)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) cacheGet(key string) (Vec, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	el, ok := e.cache[key]
	if !ok {
		return nil, false
	}
	e.order.MoveToFront(el)
	return el.Value.(*cacheEntry).vec, true
}

func (e *Engine) cachePut(key string, v Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if el, ok := e.cache[key]; ok {
		el.Value.(*cacheEntry).vec = v
		e.order.MoveToFront(el)
		return
	}
	el := e.order.PushFront(&cacheEntry{key: key, vec: v})
	e.cache[key] = el
	for e.order.Len() > queryCacheCap {
		oldest := e.order.Back()
		if oldest == nil {
			break
		}
		e.order.Remove(oldest)
		delete(e.cache, oldest.Value.(*cacheEntry).key)
	}
}

// normalizeInput trims whitespace and truncates to maxInputChars runes.
func normalizeInput(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	runes := []rune(trimmed)
	if len(runes) > maxInputChars {
		runes = runes[:maxInputChars]
	}
	return string(runes)
}

// Cosine computes the cosine similarity of a and b. When normalized is true
// (the default for vectors produced by this package), this is a plain dot
// product.
func Cosine(a, b Vec, normalized bool) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	if normalized {
		return dot
	}
	var na, nb float64
	for i := range a {
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
