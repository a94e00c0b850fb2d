// Package memory is the vector + keyword hybrid store: markdown ingestion,
// chunking, embedding write-through, and semantic/keyword/hybrid search with
// rank fusion. Backed by modernc.org/sqlite with an FTS5 virtual table for
// keyword search.
package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// MinChunkLen and MaxChunkLen bound chunk size in characters. Sections
// shorter than MinChunkLen are dropped as noise; sections longer than
// MaxChunkLen are split further at line boundaries.
const (
	MinChunkLen = 20
	MaxChunkLen = 500
)

// Chunk is one ingested unit of text, ready for storage.
type Chunk struct {
	ID        string
	Source    string
	Index     int
	Text      string
	Hash      string
	Embedding []float32
	Timestamp time.Time
}

// Split breaks content into chunks: first by "## " headers, then any
// resulting section longer than maxLen is split further at line
// boundaries. Sections shorter than MinChunkLen are dropped. mtime becomes
// every resulting chunk's Timestamp. maxLen <= 0 uses MaxChunkLen.
func Split(source, content string, mtime time.Time, maxLen int) []Chunk {
	if maxLen <= 0 {
		maxLen = MaxChunkLen
	}
	sections := splitByHeader(content)

	var pieces []string
	for _, s := range sections {
		pieces = append(pieces, splitByLines(s, maxLen)...)
	}

	var chunks []Chunk
	idx := 0
	for _, p := range pieces {
		trimmed := strings.TrimSpace(p)
		if len(trimmed) < MinChunkLen {
			continue
		}
		hash := ContentHash(trimmed)
		chunks = append(chunks, Chunk{
			ID:        fmt.Sprintf("%s#%d", source, idx),
			Source:    source,
			Index:     idx,
			Text:      trimmed,
			Hash:      hash,
			Timestamp: mtime,
		})
		idx++
	}
	return chunks
}

// ContentHash is a stable digest of text: equal text always yields equal
// hashes, so unchanged chunks on re-ingest reuse their cached embedding.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// splitByHeader splits content at lines starting with "## ", keeping the
// header line as part of the section that follows it. Content before the
// first header (if any) is its own leading section.
func splitByHeader(content string) []string {
	var sections []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(content, "\n") {
		if strings.HasPrefix(line, "## ") && cur.Len() > 0 {
			sections = append(sections, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		sections = append(sections, cur.String())
	}
	if len(sections) == 0 {
		return []string{content}
	}
	return sections
}

// splitByLines further splits a section at line boundaries so that no piece
// exceeds maxLen characters, without breaking a line in the middle.
func splitByLines(section string, maxLen int) []string {
	if len(section) <= maxLen {
		return []string{section}
	}

	var pieces []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(section, "\n") {
		if cur.Len() > 0 && cur.Len()+len(line) > maxLen {
			pieces = append(pieces, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}
