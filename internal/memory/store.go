package memory

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nextlevelbuilder/goclaw/internal/embedding"
)

// Store is the sqlite-backed chunk store: one file per workspace, opened
// with a single connection since SQLite serializes writers anyway
// (afittestide-asimi-cli/storage/db.go's SetMaxOpenConns(1) rationale).
type Store struct {
	db *sql.DB
}

// Open creates or opens the chunk store at path, applying schema and
// per-connection pragmas.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("memory: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: set foreign_keys pragma: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: set journal_mode pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertChunks idempotently writes chunks keyed by ID. A chunk whose hash
// matches the stored row is left untouched, including its embedding column
// — so unchanged content never triggers a re-embed. A chunk with a changed
// or new hash is written with whatever Embedding it carries (nil clears the
// column, signaling the caller must (re)compute and write it through).
func (s *Store) UpsertChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("memory: begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range chunks {
		var existingHash string
		err := tx.QueryRowContext(ctx, `SELECT hash FROM chunks WHERE id = ?`, c.ID).Scan(&existingHash)
		switch {
		case err == sql.ErrNoRows:
			if err := insertChunk(ctx, tx, c); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("memory: lookup chunk %s: %w", c.ID, err)
		case existingHash == c.Hash:
			// unchanged: skip entirely, preserving any cached embedding.
		default:
			if err := insertChunk(ctx, tx, c); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func insertChunk(ctx context.Context, tx *sql.Tx, c Chunk) error {
	var blob []byte
	if c.Embedding != nil {
		blob = encodeVec(c.Embedding)
	}
	mtime := c.Timestamp
	if mtime.IsZero() {
		mtime = time.Now().UTC()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO chunks (id, source, idx, text, hash, embedding, mtime)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			idx = excluded.idx,
			text = excluded.text,
			hash = excluded.hash,
			embedding = excluded.embedding,
			mtime = excluded.mtime
	`, c.ID, c.Source, c.Index, c.Text, c.Hash, blob, mtime.Unix())
	if err != nil {
		return fmt.Errorf("memory: upsert chunk %s: %w", c.ID, err)
	}
	return nil
}

// DeleteBySource removes every chunk ingested from source, e.g. when a
// workspace file is removed or fully rewritten.
func (s *Store) DeleteBySource(ctx context.Context, source string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE source = ?`, source)
	if err != nil {
		return fmt.Errorf("memory: delete source %s: %w", source, err)
	}
	return nil
}

// MissingEmbeddings returns every chunk whose embedding column is unset,
// for batch write-through generation.
func (s *Store) MissingEmbeddings(ctx context.Context) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, idx, text, hash, mtime FROM chunks WHERE embedding IS NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("memory: query missing embeddings: %w", err)
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var c Chunk
		var mtime int64
		if err := rows.Scan(&c.ID, &c.Source, &c.Index, &c.Text, &c.Hash, &mtime); err != nil {
			return nil, fmt.Errorf("memory: scan chunk: %w", err)
		}
		c.Timestamp = time.Unix(mtime, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// WriteEmbedding stores a computed embedding for an existing chunk id.
func (s *Store) WriteEmbedding(ctx context.Context, id string, vec embedding.Vec) error {
	_, err := s.db.ExecContext(ctx, `UPDATE chunks SET embedding = ? WHERE id = ?`, encodeVec(vec), id)
	if err != nil {
		return fmt.Errorf("memory: write embedding for %s: %w", id, err)
	}
	return nil
}

// allEmbedded returns every chunk that has a stored embedding, used by
// Search's full scan over candidates.
func (s *Store) allEmbedded(ctx context.Context, sources map[string]bool, maxAge time.Duration) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, idx, text, hash, embedding, mtime FROM chunks WHERE embedding IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("memory: query embedded chunks: %w", err)
	}
	defer rows.Close()

	var cutoff time.Time
	if maxAge > 0 {
		cutoff = time.Now().Add(-maxAge)
	}

	var out []Chunk
	for rows.Next() {
		var c Chunk
		var blob []byte
		var mtime int64
		if err := rows.Scan(&c.ID, &c.Source, &c.Index, &c.Text, &c.Hash, &blob, &mtime); err != nil {
			return nil, fmt.Errorf("memory: scan embedded chunk: %w", err)
		}
		if len(sources) > 0 && !sources[c.Source] {
			continue
		}
		c.Timestamp = time.Unix(mtime, 0).UTC()
		if maxAge > 0 && c.Timestamp.Before(cutoff) {
			continue
		}
		c.Embedding = decodeVec(blob)
		out = append(out, c)
	}
	return out, rows.Err()
}

func encodeVec(v embedding.Vec) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVec(buf []byte) embedding.Vec {
	v := make(embedding.Vec, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
