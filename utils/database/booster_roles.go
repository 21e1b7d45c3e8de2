package database

import (
	"database/sql"
	"errors"
	"fmt"

	"booster-bot/model"

	"github.com/jmoiron/sqlx"
)

// CreateBoosterRole inserts a new booster role. The per-guild quota
// check and the insert run in one transaction so concurrent creates
// cannot overshoot the limit. A maxRoles of zero means unlimited.
// Returns model.ErrConflict if the user already has a role.
func CreateBoosterRole(db *sqlx.DB, role *model.BoosterRole, maxRoles int) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if maxRoles > 0 {
		var count int
		if err := tx.Get(&count, "SELECT COUNT(*) FROM booster_roles WHERE guild_id = ?", role.GuildID); err != nil {
			return fmt.Errorf("failed to count booster roles: %w", err)
		}
		if count >= maxRoles {
			return &model.LimitExceededError{Kind: "booster role", Limit: maxRoles}
		}
	}

	_, err = tx.Exec(`
		INSERT INTO booster_roles (guild_id, user_id, role_id, role_name, primary_color, secondary_color)
		VALUES (?, ?, ?, ?, ?, ?)`,
		role.GuildID, role.UserID, role.RoleID, role.RoleName, role.PrimaryColor, role.SecondaryColor)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrConflict
		}
		return fmt.Errorf("failed to insert booster role: %w", err)
	}

	return tx.Commit()
}

// GetBoosterRole fetches a user's booster role, or model.ErrNotFound.
func GetBoosterRole(db *sqlx.DB, guildID, userID string) (*model.BoosterRole, error) {
	var role model.BoosterRole
	err := db.Get(&role, "SELECT * FROM booster_roles WHERE guild_id = ? AND user_id = ?", guildID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booster role: %w", err)
	}
	return &role, nil
}

// GetBoosterRoleByRoleID fetches the booster role backed by a Discord
// role ID, or model.ErrNotFound.
func GetBoosterRoleByRoleID(db *sqlx.DB, guildID, roleID string) (*model.BoosterRole, error) {
	var role model.BoosterRole
	err := db.Get(&role, "SELECT * FROM booster_roles WHERE guild_id = ? AND role_id = ?", guildID, roleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booster role by role id: %w", err)
	}
	return &role, nil
}

// UpdateBoosterRole overwrites the mutable fields of a booster role.
func UpdateBoosterRole(db *sqlx.DB, guildID, userID, roleName, primaryColor, secondaryColor string) error {
	res, err := db.Exec(`
		UPDATE booster_roles
		SET role_name = ?, primary_color = ?, secondary_color = ?, updated_at = CURRENT_TIMESTAMP
		WHERE guild_id = ? AND user_id = ?`,
		roleName, primaryColor, secondaryColor, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to update booster role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteBoosterRole removes a user's booster role row. Returns false
// when there was nothing to delete.
func DeleteBoosterRole(db *sqlx.DB, guildID, userID string) (bool, error) {
	res, err := db.Exec("DELETE FROM booster_roles WHERE guild_id = ? AND user_id = ?", guildID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete booster role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteBoosterRoleByRoleID removes booster role rows backed by a
// Discord role ID and returns how many were deleted.
func DeleteBoosterRoleByRoleID(db *sqlx.DB, guildID, roleID string) (int64, error) {
	res, err := db.Exec("DELETE FROM booster_roles WHERE guild_id = ? AND role_id = ?", guildID, roleID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete booster role by role id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}

// ListBoosterRoles returns every booster role of a guild, oldest first.
func ListBoosterRoles(db *sqlx.DB, guildID string) ([]model.BoosterRole, error) {
	var roles []model.BoosterRole
	err := db.Select(&roles, "SELECT * FROM booster_roles WHERE guild_id = ? ORDER BY created_at ASC", guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list booster roles: %w", err)
	}
	return roles, nil
}

// CountBoosterRoles returns the number of booster roles in a guild.
func CountBoosterRoles(db *sqlx.DB, guildID string) (int, error) {
	var count int
	err := db.Get(&count, "SELECT COUNT(*) FROM booster_roles WHERE guild_id = ?", guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to count booster roles: %w", err)
	}
	return count, nil
}
