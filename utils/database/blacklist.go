package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// AddBlacklistWord stores a filter word for a guild. Words are kept
// lowercase. Returns false when the word was already present.
func AddBlacklistWord(db *sqlx.DB, guildID, word, addedBy string) (bool, error) {
	res, err := db.Exec(`
		INSERT INTO role_name_blacklist (guild_id, word, added_by) VALUES (?, ?, ?)
		ON CONFLICT(guild_id, word) DO NOTHING`,
		guildID, strings.ToLower(strings.TrimSpace(word)), addedBy)
	if err != nil {
		return false, fmt.Errorf("failed to add blacklist word: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// RemoveBlacklistWord deletes a filter word. Returns false when the
// word was not present.
func RemoveBlacklistWord(db *sqlx.DB, guildID, word string) (bool, error) {
	res, err := db.Exec("DELETE FROM role_name_blacklist WHERE guild_id = ? AND word = ?",
		guildID, strings.ToLower(strings.TrimSpace(word)))
	if err != nil {
		return false, fmt.Errorf("failed to remove blacklist word: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// ListBlacklist returns a guild's filter words sorted alphabetically.
func ListBlacklist(db *sqlx.DB, guildID string) ([]string, error) {
	var words []string
	err := db.Select(&words, "SELECT word FROM role_name_blacklist WHERE guild_id = ? ORDER BY word ASC", guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blacklist: %w", err)
	}
	return words, nil
}

// MatchBlacklist checks a candidate role name against the guild filter
// using case-insensitive substring matching. Returns the first matched
// word, or "" when the name is clean.
func MatchBlacklist(db *sqlx.DB, guildID, name string) (string, error) {
	words, err := ListBlacklist(db, guildID)
	if err != nil {
		return "", err
	}
	lower := strings.ToLower(name)
	for _, word := range words {
		if word != "" && strings.Contains(lower, word) {
			return word, nil
		}
	}
	return "", nil
}
