// Package store is the durable, embedded, single-writer persistence layer:
// one SQLite database holding memory rows, sources, the denormalized
// tag-count index, and a local embeddings table used when the vector index
// is unavailable.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure-Go driver, avoids a CGO build requirement

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

CREATE TABLE IF NOT EXISTS memories (
  id TEXT PRIMARY KEY,
  path TEXT NOT NULL UNIQUE,
  filename TEXT NOT NULL,
  extension TEXT NOT NULL,
  source_json TEXT NOT NULL,
  kind_name TEXT NOT NULL,
  kind_json TEXT NOT NULL,
  metadata_json TEXT NOT NULL,
  tags_json TEXT NOT NULL,
  tags_text TEXT NOT NULL,
  embedding_id TEXT,
  connections_json TEXT NOT NULL,
  is_favorite INTEGER NOT NULL DEFAULT 0,
  title TEXT,
  created_at TEXT NOT NULL,
  modified_at TEXT NOT NULL,
  indexed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memories_path ON memories(path);
CREATE INDEX IF NOT EXISTS idx_memories_kind ON memories(kind_name);
CREATE INDEX IF NOT EXISTS idx_memories_extension ON memories(extension);
CREATE INDEX IF NOT EXISTS idx_memories_favorite ON memories(is_favorite);
CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at);
CREATE INDEX IF NOT EXISTS idx_memories_modified ON memories(modified_at);

CREATE TABLE IF NOT EXISTS sources (
  id TEXT PRIMARY KEY,
  config_json TEXT NOT NULL,
  enabled INTEGER NOT NULL DEFAULT 1,
  last_sync TEXT
);

CREATE TABLE IF NOT EXISTS tags (
  name TEXT PRIMARY KEY,
  count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS embeddings (
  memory_id TEXT PRIMARY KEY,
  kind_name TEXT NOT NULL,
  embedding BLOB NOT NULL,
  model TEXT NOT NULL,
  created_at TEXT NOT NULL
);

INSERT OR IGNORE INTO schema_version (version) VALUES (1);
`

// Store is the SQLite-backed MetadataStore. A single *sql.DB with
// SetMaxOpenConns(1) enforces single-writer discipline; WAL mode lets
// readers proceed concurrently.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool
}

// Open creates or opens a Store at path. If path is empty, an in-memory
// database is used (tests only — nothing else ever passes "").
func Open(path string) (*Store, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, hippoerrors.StorageError("failed to create store directory", err).WithDetail("dir", dir)
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, hippoerrors.StorageError("failed to open store database", err).WithDetail("path", path)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, hippoerrors.StorageError("failed to set store pragma", err).WithDetail("pragma", p)
		}
	}

	s := &Store{db: db, path: path}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, hippoerrors.StorageError("failed to initialize store schema", err)
	}

	return s, nil
}

// Close checkpoints the WAL and closes the underlying database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// DB returns the underlying *sql.DB, for packages (telemetry) that need
// their own tables in the same database file rather than a second
// connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) checkOpen() error {
	if s.closed {
		return hippoerrors.StorageError("store is closed", fmt.Errorf("closed"))
	}
	return nil
}
