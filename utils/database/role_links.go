package database

import (
	"database/sql"
	"errors"
	"fmt"

	"booster-bot/model"

	"github.com/jmoiron/sqlx"
)

// UpsertRoleLink stores the staff-managed role link for a member.
// A member has at most one link, so a second link replaces the first.
func UpsertRoleLink(db *sqlx.DB, guildID, userID, roleID, linkedBy string) error {
	_, err := db.Exec(`
		INSERT INTO role_links (guild_id, user_id, linked_role_id, linked_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id)
		DO UPDATE SET linked_role_id = excluded.linked_role_id,
			linked_by = excluded.linked_by, created_at = CURRENT_TIMESTAMP`,
		guildID, userID, roleID, linkedBy)
	if err != nil {
		return fmt.Errorf("failed to upsert role link: %w", err)
	}
	return nil
}

// GetRoleLink returns the member's role link, or model.ErrNotFound.
func GetRoleLink(db *sqlx.DB, guildID, userID string) (*model.RoleLink, error) {
	var link model.RoleLink
	err := db.Get(&link, `
		SELECT * FROM role_links WHERE guild_id = ? AND user_id = ?`,
		guildID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role link: %w", err)
	}
	return &link, nil
}

// DeleteRoleLink removes the member's role link. Returns false when
// no link existed.
func DeleteRoleLink(db *sqlx.DB, guildID, userID string) (bool, error) {
	res, err := db.Exec(`DELETE FROM role_links WHERE guild_id = ? AND user_id = ?`,
		guildID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete role link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteRoleLinksByRoleID removes every link pointing at a role,
// used when the role itself disappears.
func DeleteRoleLinksByRoleID(db *sqlx.DB, guildID, roleID string) (int64, error) {
	res, err := db.Exec(`DELETE FROM role_links WHERE guild_id = ? AND linked_role_id = ?`,
		guildID, roleID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete role links: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}
