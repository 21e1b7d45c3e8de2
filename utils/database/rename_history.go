package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"booster-bot/model"

	"github.com/jmoiron/sqlx"
)

// RecordRename appends one entry to the durable rename history.
func RecordRename(db *sqlx.DB, guildID, userID, oldName, newName string) error {
	_, err := db.Exec(`
		INSERT INTO rename_history (guild_id, user_id, old_name, new_name)
		VALUES (?, ?, ?, ?)`,
		guildID, userID, oldName, newName)
	if err != nil {
		return fmt.Errorf("failed to record rename: %w", err)
	}
	return nil
}

// LastRename returns a user's most recent rename, or model.ErrNotFound.
func LastRename(db *sqlx.DB, guildID, userID string) (*model.RenameRecord, error) {
	var rec model.RenameRecord
	err := db.Get(&rec, `
		SELECT * FROM rename_history
		WHERE guild_id = ? AND user_id = ?
		ORDER BY renamed_at DESC, id DESC LIMIT 1`,
		guildID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last rename: %w", err)
	}
	return &rec, nil
}

// CanRename reports whether the rename cooldown has elapsed. On denial
// it also returns the remaining wait. The history is durable, so the
// cooldown survives restarts.
func CanRename(db *sqlx.DB, guildID, userID string, cooldown time.Duration) (bool, time.Duration, error) {
	rec, err := LastRename(db, guildID, userID)
	if errors.Is(err, model.ErrNotFound) {
		return true, 0, nil
	}
	if err != nil {
		return false, 0, err
	}

	elapsed := time.Since(rec.RenamedAt)
	if elapsed >= cooldown {
		return true, 0, nil
	}
	return false, cooldown - elapsed, nil
}
