package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/embedding"
)

// Result is one search hit: a chunk plus the score it was ranked by. For
// semantic search Score is cosine similarity (higher is better); for
// keyword search Score is the raw FTS5 bm25() value (lower is better);
// HybridSearch normalizes both onto a single higher-is-better scale before
// fusing.
type Result struct {
	Chunk Chunk
	Score float64
}

// SearchOptions filters and bounds a search call.
type SearchOptions struct {
	TopK       int
	MinScore   float64  // semantic search only; 0 disables the filter
	MaxAgeDays int      // 0 disables the filter
	Sources    []string // empty means no source restriction
}

func (o SearchOptions) topK() int {
	if o.TopK <= 0 {
		return 10
	}
	return o.TopK
}

func (o SearchOptions) maxAge() time.Duration {
	if o.MaxAgeDays <= 0 {
		return 0
	}
	return time.Duration(o.MaxAgeDays) * 24 * time.Hour
}

func (o SearchOptions) sourceSet() map[string]bool {
	if len(o.Sources) == 0 {
		return nil
	}
	m := make(map[string]bool, len(o.Sources))
	for _, s := range o.Sources {
		m[s] = true
	}
	return m
}

// Memory ties the chunk store, the embedding engine, and the result cache
// together into the search surface this package exposes.
type Memory struct {
	store        *Store
	embed        *embedding.Engine
	cache        *resultCache
	vectorWeight float64
	textWeight   float64
	maxChunkLen  int
}

// DefaultVectorWeight and DefaultTextWeight are HybridSearch's fallback
// blend when MemoryConfig does not specify one.
const (
	DefaultVectorWeight = 0.7
	DefaultTextWeight   = 0.3
)

// NewMemory builds a Memory over an already-open Store and Engine. maxChunkLen
// <= 0 uses MaxChunkLen.
func NewMemory(store *Store, embed *embedding.Engine, vectorWeight, textWeight float64, maxChunkLen int) *Memory {
	if vectorWeight == 0 && textWeight == 0 {
		vectorWeight, textWeight = DefaultVectorWeight, DefaultTextWeight
	}
	return &Memory{
		store:        store,
		embed:        embed,
		cache:        newResultCache(),
		vectorWeight: vectorWeight,
		textWeight:   textWeight,
		maxChunkLen:  maxChunkLen,
	}
}

// Close releases the underlying store connection.
func (m *Memory) Close() error {
	return m.store.Close()
}

// DeleteSource removes every chunk ingested from source.
func (m *Memory) DeleteSource(ctx context.Context, source string) error {
	return m.store.DeleteBySource(ctx, source)
}

// Ingest splits content into chunks, upserts them (skipping chunks whose
// hash is unchanged), and generates embeddings for any chunk left without
// one — a stable no-op for content that has not changed since the last
// ingest.
func (m *Memory) Ingest(ctx context.Context, source, content string, mtime time.Time) error {
	chunks := Split(source, content, mtime, m.maxChunkLen)
	if err := m.store.UpsertChunks(ctx, chunks); err != nil {
		return err
	}
	return m.backfillEmbeddings(ctx)
}

func (m *Memory) backfillEmbeddings(ctx context.Context) error {
	missing, err := m.store.MissingEmbeddings(ctx)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	texts := make([]string, len(missing))
	for i, c := range missing {
		texts[i] = c.Text
	}
	vecs, err := m.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("memory: embed backfill: %w", err)
	}
	for i, c := range missing {
		if err := m.store.WriteEmbedding(ctx, c.ID, embedding.Vec(vecs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Search ranks chunks by cosine similarity to query's embedding, applying
// MinScore/MaxAgeDays/Sources filters and a 60s/100-entry result cache
// keyed on the query embedding and options.
func (m *Memory) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	qvec, err := m.embed.Embed(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("memory: embed query: %w", err)
	}

	key := searchKey(qvec, opts.topK(), opts.MinScore, opts.MaxAgeDays, opts.Sources)
	if cached, ok := m.cache.get(key); ok {
		return cached, nil
	}

	candidates, err := m.store.allEmbedded(ctx, opts.sourceSet(), opts.maxAge())
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		score := embedding.Cosine(qvec, embedding.Vec(c.Embedding), true)
		if opts.MinScore > 0 && score < opts.MinScore {
			continue
		}
		results = append(results, Result{Chunk: c, Score: score})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k := opts.topK(); len(results) > k {
		results = results[:k]
	}

	m.cache.put(key, results)
	return results, nil
}

// SearchKeyword ranks chunks by FTS5 bm25() relevance (lower is better).
// The match expression ORs whitespace/letter tokens with CJK trigrams. The
// index uses the unicode61 tokenizer, so every term, trigrams included,
// matches whole indexed tokens only; a Hangul trigram does not match inside
// a longer Hangul run.
func (m *Memory) SearchKeyword(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	expr := matchExpr(query)
	if expr == "" {
		return nil, nil
	}

	rows, err := m.store.db.QueryContext(ctx, `
		SELECT c.id, c.source, c.idx, c.text, c.hash, c.mtime, bm25(chunks_fts) AS rank
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		WHERE chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, expr, opts.topK()*4)
	if err != nil {
		return nil, fmt.Errorf("memory: fts query: %w", err)
	}
	defer rows.Close()

	sources := opts.sourceSet()
	maxAge := opts.maxAge()
	var cutoff time.Time
	if maxAge > 0 {
		cutoff = time.Now().Add(-maxAge)
	}

	var results []Result
	for rows.Next() {
		var c Chunk
		var mtime int64
		var rank float64
		if err := rows.Scan(&c.ID, &c.Source, &c.Index, &c.Text, &c.Hash, &mtime, &rank); err != nil {
			return nil, fmt.Errorf("memory: scan fts row: %w", err)
		}
		if len(sources) > 0 && !sources[c.Source] {
			continue
		}
		c.Timestamp = time.Unix(mtime, 0).UTC()
		if maxAge > 0 && c.Timestamp.Before(cutoff) {
			continue
		}
		results = append(results, Result{Chunk: c, Score: rank})
		if len(results) >= opts.topK() {
			break
		}
	}
	return results, rows.Err()
}

// matchExpr builds an FTS5 MATCH expression ORing whitespace tokens with
// CJK trigrams, each quoted so punctuation inside a token cannot be
// misread as FTS5 query syntax.
func matchExpr(query string) string {
	var terms []string
	for _, t := range tokenize(query) {
		terms = append(terms, fmt.Sprintf("%q", t))
	}
	for _, g := range trigrams(query) {
		terms = append(terms, fmt.Sprintf("%q", g))
	}
	if len(terms) == 0 {
		return ""
	}
	return strings.Join(terms, " OR ")
}

// HybridSearch fetches 2*TopK candidates from both semantic and keyword
// search, orders the keyword side by min-max normalized bm25, and fuses the
// two rank lists by weighted Reciprocal Rank Fusion (k=60; keyword weight
// m.textWeight, vector weight 1-m.textWeight; m.vectorWeight is not read).
// The fused list is diversified per source, then deduplicated on (source,
// first 100 chars of text) so near-duplicate chunks from overlapping
// ingestion windows don't both surface.
func (m *Memory) HybridSearch(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	wideOpts := opts
	wideOpts.TopK = opts.topK() * 2

	vecResults, err := m.Search(ctx, query, wideOpts)
	if err != nil {
		return nil, err
	}
	kwResults, err := m.SearchKeyword(ctx, query, wideOpts)
	if err != nil {
		return nil, err
	}

	normKw := normalizeBM25(kwResults)

	fused := fuseRRF(toResultSet(kwResults, normKw), vecResults, m.textWeight)
	diversified := diversify(fused, opts.topK()*3)

	seen := map[string]bool{}
	out := make([]Result, 0, opts.topK())
	for _, f := range diversified {
		dedupeKey := f.Chunk.Source + "|" + truncateForDedupe(f.Chunk.Text)
		if seen[dedupeKey] {
			continue
		}
		seen[dedupeKey] = true
		out = append(out, Result{Chunk: f.Chunk, Score: f.Fused})
		if len(out) >= opts.topK() {
			break
		}
	}
	return out, nil
}

// normalizeBM25 maps raw bm25() scores (lower is better, unbounded) onto
// [0,1] with higher-is-better via (max-s)/(max-min), matching the
// convention Search's cosine scores already use.
func normalizeBM25(results []Result) map[string]float64 {
	out := make(map[string]float64, len(results))
	if len(results) == 0 {
		return out
	}
	minS, maxS := results[0].Score, results[0].Score
	for _, r := range results {
		if r.Score < minS {
			minS = r.Score
		}
		if r.Score > maxS {
			maxS = r.Score
		}
	}
	spread := maxS - minS
	for _, r := range results {
		if spread == 0 {
			out[r.Chunk.ID] = 1
			continue
		}
		out[r.Chunk.ID] = (maxS - r.Score) / spread
	}
	return out
}

func toResultSet(results []Result, normalized map[string]float64) []Result {
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = Result{Chunk: r.Chunk, Score: normalized[r.Chunk.ID]}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func truncateForDedupe(text string) string {
	if len(text) <= 100 {
		return text
	}
	return text[:100]
}
