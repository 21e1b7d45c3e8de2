package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"booster-bot/model"

	"github.com/jmoiron/sqlx"
)

// CreateShare records an active share of a booster role. Both limit
// checks run in the same transaction as the write: first the
// recipient's shared-role quota, then the role's member quota. A
// previously deactivated share row is reactivated instead of
// duplicated. Returns model.ErrConflict when the share is already
// active.
func CreateShare(db *sqlx.DB, share *model.RoleShare, maxPerRole, maxPerMember int) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var active bool
	err = tx.Get(&active, `
		SELECT is_active FROM role_shares
		WHERE guild_id = ? AND role_id = ? AND shared_with_id = ?`,
		share.GuildID, share.RoleID, share.SharedWithID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check existing share: %w", err)
	}
	if active {
		return model.ErrConflict
	}

	if maxPerMember > 0 {
		var memberCount int
		err = tx.Get(&memberCount, `
			SELECT COUNT(*) FROM role_shares
			WHERE guild_id = ? AND shared_with_id = ? AND is_active = 1`,
			share.GuildID, share.SharedWithID)
		if err != nil {
			return fmt.Errorf("failed to count member shares: %w", err)
		}
		if memberCount >= maxPerMember {
			return &model.LimitExceededError{Kind: "shared roles per member", Limit: maxPerMember}
		}
	}

	if maxPerRole > 0 {
		var roleCount int
		err = tx.Get(&roleCount, `
			SELECT COUNT(*) FROM role_shares
			WHERE guild_id = ? AND role_id = ? AND is_active = 1`,
			share.GuildID, share.RoleID)
		if err != nil {
			return fmt.Errorf("failed to count role shares: %w", err)
		}
		if roleCount >= maxPerRole {
			return &model.LimitExceededError{Kind: "members per role", Limit: maxPerRole}
		}
	}

	_, err = tx.Exec(`
		INSERT INTO role_shares (guild_id, role_id, owner_id, shared_with_id, expires_at, is_active)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(guild_id, role_id, shared_with_id)
		DO UPDATE SET is_active = 1, owner_id = excluded.owner_id,
			expires_at = excluded.expires_at, shared_at = CURRENT_TIMESTAMP`,
		share.GuildID, share.RoleID, share.OwnerID, share.SharedWithID, share.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert share: %w", err)
	}

	return tx.Commit()
}

// DeactivateShare soft-deletes one share. Returns false when no
// active share existed.
func DeactivateShare(db *sqlx.DB, guildID, roleID, sharedWithID string) (bool, error) {
	res, err := db.Exec(`
		UPDATE role_shares SET is_active = 0
		WHERE guild_id = ? AND role_id = ? AND shared_with_id = ? AND is_active = 1`,
		guildID, roleID, sharedWithID)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate share: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// DeactivateSharesForRole soft-deletes every active share of a role
// and returns how many were deactivated.
func DeactivateSharesForRole(db *sqlx.DB, guildID, roleID string) (int64, error) {
	res, err := db.Exec(`
		UPDATE role_shares SET is_active = 0
		WHERE guild_id = ? AND role_id = ? AND is_active = 1`,
		guildID, roleID)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate role shares: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}

// ListActiveShares returns the active shares of one role.
func ListActiveShares(db *sqlx.DB, guildID, roleID string) ([]model.RoleShare, error) {
	var shares []model.RoleShare
	err := db.Select(&shares, `
		SELECT * FROM role_shares
		WHERE guild_id = ? AND role_id = ? AND is_active = 1
		ORDER BY shared_at ASC`,
		guildID, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role shares: %w", err)
	}
	return shares, nil
}

// ListExpiredShares returns active shares whose expiry has passed.
// Shares without an expiry never show up here.
func ListExpiredShares(db *sqlx.DB, guildID string, now time.Time) ([]model.RoleShare, error) {
	var shares []model.RoleShare
	err := db.Select(&shares, `
		SELECT * FROM role_shares
		WHERE guild_id = ? AND is_active = 1
		AND expires_at IS NOT NULL AND expires_at <= ?
		ORDER BY expires_at ASC`,
		guildID, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list expired shares: %w", err)
	}
	return shares, nil
}

// ListSharesForUser returns the active shares granted to a member.
func ListSharesForUser(db *sqlx.DB, guildID, userID string) ([]model.RoleShare, error) {
	var shares []model.RoleShare
	err := db.Select(&shares, `
		SELECT * FROM role_shares
		WHERE guild_id = ? AND shared_with_id = ? AND is_active = 1
		ORDER BY shared_at ASC`,
		guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list member shares: %w", err)
	}
	return shares, nil
}
