package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS action_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		type TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		created_by_id TEXT NOT NULL,
		original_infraction_reason TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_action_log_guild ON action_log (guild_id, id);`,

	`CREATE TABLE IF NOT EXISTS infractions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		type TEXT NOT NULL,
		reason TEXT NOT NULL,
		duration_ms INTEGER,
		expires_at INTEGER,
		rescind_reason TEXT,
		create_action_id INTEGER NOT NULL UNIQUE REFERENCES action_log (id),
		rescind_action_id INTEGER UNIQUE REFERENCES action_log (id),
		update_action_id INTEGER UNIQUE REFERENCES action_log (id),
		restore_action_id INTEGER UNIQUE REFERENCES action_log (id),
		delete_action_id INTEGER UNIQUE REFERENCES action_log (id),
		pending_effect TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_infractions_subject ON infractions (guild_id, subject_id, type);`,
	`CREATE INDEX IF NOT EXISTS idx_infractions_expiry ON infractions (expires_at) WHERE rescind_action_id IS NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_infractions_pending ON infractions (pending_effect) WHERE pending_effect != '';`,

	`CREATE TABLE IF NOT EXISTS promotion_campaigns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		target_role_id TEXT NOT NULL,
		outcome TEXT,
		create_action_id INTEGER NOT NULL UNIQUE REFERENCES action_log (id),
		close_action_id INTEGER UNIQUE REFERENCES action_log (id)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_promotion_campaigns_open ON promotion_campaigns (guild_id, subject_id) WHERE close_action_id IS NULL;`,

	`CREATE TABLE IF NOT EXISTS promotion_comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		campaign_id INTEGER NOT NULL REFERENCES promotion_campaigns (id),
		sentiment TEXT NOT NULL,
		content TEXT NOT NULL,
		create_action_id INTEGER NOT NULL UNIQUE REFERENCES action_log (id),
		delete_action_id INTEGER UNIQUE REFERENCES action_log (id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_promotion_comments_campaign ON promotion_comments (campaign_id);`,

	`CREATE TABLE IF NOT EXISTS configuration_mappings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		role_id TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL DEFAULT '',
		channel_id TEXT NOT NULL DEFAULT '',
		designation TEXT NOT NULL,
		claim_type TEXT NOT NULL DEFAULT '',
		create_action_id INTEGER NOT NULL UNIQUE REFERENCES action_log (id),
		delete_action_id INTEGER UNIQUE REFERENCES action_log (id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_configuration_mappings_guild ON configuration_mappings (guild_id, kind) WHERE delete_action_id IS NULL;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_configuration_mappings_current ON configuration_mappings (guild_id, kind, designation, role_id, user_id, channel_id) WHERE delete_action_id IS NULL;`,
}

// Init opens the SQLite database at dbPath and ensures every table exists.
// Writers take the database lock when their transaction begins, and a single
// connection is kept open so transactions never contend with each other.
func Init(dbPath string) (*sqlx.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", dbPath)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema statement %q: %w", firstLine(stmt), err)
		}
	}

	return db, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// ToMillis converts t to the unix-millisecond form stored in the database.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts a stored unix-millisecond value back to a time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Size returns the number of bytes the database occupies.
func Size(ctx context.Context, db *sqlx.DB) (int64, error) {
	var pages, pageSize int64
	if err := db.GetContext(ctx, &pages, "PRAGMA page_count"); err != nil {
		return 0, MapError(err, "failed to read page count", nil)
	}
	if err := db.GetContext(ctx, &pageSize, "PRAGMA page_size"); err != nil {
		return 0, MapError(err, "failed to read page size", nil)
	}
	return pages * pageSize, nil
}
