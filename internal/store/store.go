// Package store provides SQLite-backed receipt persistence, scoped to an
// owner key on every operation.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS receipts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_key  TEXT NOT NULL,
	store      TEXT NOT NULL DEFAULT 'Unknown',
	date       TEXT NOT NULL DEFAULT '',
	total      REAL,
	checksum   TEXT NOT NULL DEFAULT '',
	image_path TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	receipt_id INTEGER NOT NULL REFERENCES receipts(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	price      REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_receipts_owner ON receipts(owner_key);
CREATE INDEX IF NOT EXISTS idx_receipts_owner_checksum ON receipts(owner_key, checksum);
CREATE INDEX IF NOT EXISTS idx_items_receipt ON items(receipt_id);
`

// DB wraps a sql.DB with receipt-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
