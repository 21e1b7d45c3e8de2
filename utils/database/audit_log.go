package database

import (
	"fmt"

	"booster-bot/model"

	"github.com/jmoiron/sqlx"
)

// AppendAudit records one administrative settings change.
func AppendAudit(db *sqlx.DB, guildID, userID, action, details string) error {
	_, err := db.Exec(`
		INSERT INTO settings_audit_log (guild_id, user_id, action, details)
		VALUES (?, ?, ?, ?)`,
		guildID, userID, action, details)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the most recent audit entries for a guild.
func ListAudit(db *sqlx.DB, guildID string, limit int) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	err := db.Select(&entries, `
		SELECT * FROM settings_audit_log
		WHERE guild_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`,
		guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
