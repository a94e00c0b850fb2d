package memory

// schema is applied once per connection at Open, mirroring
// afittestide-asimi-cli/storage/db.go's inline conn.Exec(Schema) pattern:
// no migration framework, since golang-migrate has no driver compatible
// with the pure-Go modernc.org/sqlite build this module depends on (its
// sqlite3 driver requires the cgo-based mattn/go-sqlite3). golang-migrate
// stays in this module for the Postgres-backed managed-mode stores it
// already serves elsewhere; this single-tenant chunk store is small and
// local enough that idempotent DDL beats a migration chain.
const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id        TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	idx       INTEGER NOT NULL,
	text      TEXT NOT NULL,
	hash      TEXT NOT NULL,
	embedding BLOB,
	mtime     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
CREATE INDEX IF NOT EXISTS idx_chunks_hash ON chunks(hash);

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
	text,
	content='chunks',
	content_rowid='rowid',
	tokenize='unicode61'
);

CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
	INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES ('delete', old.rowid, old.text);
END;

CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES ('delete', old.rowid, old.text);
	INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
END;
`
