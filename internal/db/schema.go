package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// items holds the inventory table as a snapshot: position keeps row order and
// id is the item's own identifier, which is not guaranteed unique.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    position   INTEGER PRIMARY KEY,
    id         INTEGER NOT NULL,
    name       TEXT NOT NULL,
    location   TEXT NOT NULL,
    furniture  TEXT NOT NULL DEFAULT '',
    container  TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'Stored' CHECK (status IN ('Stored', 'Removed')),
    photo_url  TEXT NOT NULL DEFAULT '',
    created_at DATETIME
);

CREATE TABLE IF NOT EXISTS photos (
    id         INTEGER PRIMARY KEY,
    data       BLOB NOT NULL,
    mime       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS locations (
    id       INTEGER PRIMARY KEY,
    kind     TEXT NOT NULL CHECK (kind IN ('location', 'furniture', 'container')),
    name     TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_locations_kind_name
    ON locations(kind, name);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
