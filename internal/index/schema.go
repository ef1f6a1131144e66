// Package index provides the SQLite-backed host metadata cache: per-file
// front-matter, headings and block anchors, plus link-path resolution.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	path        TEXT PRIMARY KEY,
	basename    TEXT NOT NULL,
	dir         TEXT NOT NULL DEFAULT '',
	checksum    TEXT NOT NULL DEFAULT '',
	frontmatter TEXT NOT NULL DEFAULT '{}',
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS headings (
	path  TEXT NOT NULL REFERENCES files(path) ON DELETE CASCADE,
	ord   INTEGER NOT NULL,
	level INTEGER NOT NULL,
	text  TEXT NOT NULL,
	line  INTEGER NOT NULL,
	PRIMARY KEY (path, ord)
);

CREATE TABLE IF NOT EXISTS blocks (
	path   TEXT NOT NULL REFERENCES files(path) ON DELETE CASCADE,
	id_key TEXT NOT NULL,
	id     TEXT NOT NULL,
	line   INTEGER NOT NULL,
	PRIMARY KEY (path, id_key)
);

CREATE INDEX IF NOT EXISTS idx_files_basename ON files(basename COLLATE NOCASE);
`

// DB wraps a sql.DB with cache-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
