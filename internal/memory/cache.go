package memory

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// resultCacheTTL and resultCacheCap bound the semantic-search result cache:
// identical queries within the TTL window skip the cosine scan entirely.
const (
	resultCacheTTL = 60 * time.Second
	resultCacheCap = 100
)

type cacheEntry struct {
	results []Result
	expires time.Time
}

// resultCache is a small TTL+cap cache keyed by a derived search signature.
// Capacity is enforced by dropping every expired entry and then, if still
// full, one arbitrary entry rather than a strict LRU, since hit volume here
// is low relative to the embedding query cache.
type resultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newResultCache() *resultCache {
	return &resultCache{entries: make(map[string]cacheEntry)}
}

func (c *resultCache) get(key string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.results, true
}

func (c *resultCache) put(key string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= resultCacheCap {
		for k, e := range c.entries {
			if time.Now().After(e.expires) {
				delete(c.entries, k)
			}
		}
	}
	if len(c.entries) >= resultCacheCap {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = cacheEntry{results: results, expires: time.Now().Add(resultCacheTTL)}
}

// searchKey derives a cache key from a query embedding and the search
// filters, rounding the embedding's leading components so near-identical
// float noise still hits the same key.
func searchKey(vec []float32, topK int, minScore float64, maxAgeDays int, sources []string) string {
	n := len(vec)
	if n > 10 {
		n = 10
	}
	key := fmt.Sprintf("k=%d;min=%.3f;age=%d;src=%v;", topK, minScore, maxAgeDays, sources)
	for i := 0; i < n; i++ {
		key += fmt.Sprintf("%.4f,", math.Round(float64(vec[i])*10000)/10000)
	}
	return key
}
