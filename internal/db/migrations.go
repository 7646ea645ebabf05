package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Timestamps are stored as
// fixed-width UTC text so lexical order is chronological order.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL CHECK (length(trim(title)) > 0),
    description TEXT NOT NULL CHECK (length(trim(description)) > 0),
    category    TEXT NOT NULL CHECK (category IN ('Infrastructure', 'Academics', 'Hostel', 'Faculty', 'Other')),
    priority    TEXT NOT NULL DEFAULT 'LOW' CHECK (priority IN ('LOW', 'MEDIUM', 'HIGH')),
    status      TEXT NOT NULL DEFAULT 'NEW' CHECK (status IN ('NEW', 'IN_PROGRESS', 'RESOLVED')),
    author_id   TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    CHECK (updated_at >= created_at)
);

CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);
CREATE INDEX IF NOT EXISTS idx_items_author_id ON items(author_id);

CREATE TABLE IF NOT EXISTS upvotes (
    id         TEXT PRIMARY KEY,
    item_id    TEXT NOT NULL REFERENCES items(id),
    user_id    TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (item_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_upvotes_user_created ON upvotes(user_id, created_at);

CREATE TRIGGER IF NOT EXISTS trg_upvotes_no_self_vote
BEFORE INSERT ON upvotes
FOR EACH ROW
WHEN NEW.user_id = (SELECT author_id FROM items WHERE id = NEW.item_id)
BEGIN
    SELECT RAISE(ABORT, 'self vote');
END;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: status/category lookups for board filters and analytics.
	`CREATE INDEX IF NOT EXISTS idx_items_status ON items(status)`,
	`CREATE INDEX IF NOT EXISTS idx_items_category ON items(category)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
