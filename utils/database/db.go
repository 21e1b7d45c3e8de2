// Package database owns the SQLite schema and all query helpers.
package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// Init opens the SQLite database at dbPath, creating the parent
// directory and schema if needed. Transactions take the write lock
// immediately so count-then-insert checks cannot interleave.
func Init(dbPath string) (*sqlx.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", dbPath)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := CreateTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateTables applies the schema. Every statement is idempotent.
func CreateTables(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS guild_configs (
		guild_id TEXT PRIMARY KEY,
		staff_role_ids TEXT NOT NULL DEFAULT '',
		auto_nickname TEXT NOT NULL DEFAULT '',
		join_log_channel_id TEXT NOT NULL DEFAULT '',
		premium_role_id TEXT NOT NULL DEFAULT '',
		base_role_id TEXT NOT NULL DEFAULT '',
		award_role_id TEXT NOT NULL DEFAULT '',
		max_generated_roles INTEGER NOT NULL DEFAULT 0,
		max_members_per_role INTEGER NOT NULL DEFAULT 5,
		max_shared_roles_per_member INTEGER NOT NULL DEFAULT 3,
		rename_cooldown_minutes INTEGER NOT NULL DEFAULT 60,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS booster_roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role_id TEXT NOT NULL,
		role_name TEXT NOT NULL,
		primary_color TEXT NOT NULL DEFAULT '',
		secondary_color TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(guild_id, user_id)
	);
	CREATE INDEX IF NOT EXISTS idx_booster_roles_guild ON booster_roles(guild_id);
	CREATE INDEX IF NOT EXISTS idx_booster_roles_role ON booster_roles(guild_id, role_id);

	CREATE TABLE IF NOT EXISTS role_shares (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		role_id TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		shared_with_id TEXT NOT NULL,
		shared_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at TIMESTAMP,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		UNIQUE(guild_id, role_id, shared_with_id)
	);
	CREATE INDEX IF NOT EXISTS idx_role_shares_role ON role_shares(guild_id, role_id, is_active);
	CREATE INDEX IF NOT EXISTS idx_role_shares_member ON role_shares(guild_id, shared_with_id, is_active);

	CREATE TABLE IF NOT EXISTS role_links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		linked_role_id TEXT NOT NULL,
		linked_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(guild_id, user_id)
	);
	CREATE INDEX IF NOT EXISTS idx_role_links_role ON role_links(guild_id, linked_role_id);

	CREATE TABLE IF NOT EXISTS role_name_blacklist (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		word TEXT NOT NULL,
		added_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(guild_id, word)
	);

	CREATE TABLE IF NOT EXISTS rename_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		old_name TEXT NOT NULL DEFAULT '',
		new_name TEXT NOT NULL DEFAULT '',
		renamed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_rename_history_user ON rename_history(guild_id, user_id, renamed_at);

	CREATE TABLE IF NOT EXISTS settings_audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		action TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_guild ON settings_audit_log(guild_id, created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique or primary
// key constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
