package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"booster-bot/model"

	"github.com/jmoiron/sqlx"
)

type guildConfigRow struct {
	GuildID                 string    `db:"guild_id"`
	StaffRoleIDs            string    `db:"staff_role_ids"`
	AutoNickname            string    `db:"auto_nickname"`
	JoinLogChannelID        string    `db:"join_log_channel_id"`
	PremiumRoleID           string    `db:"premium_role_id"`
	BaseRoleID              string    `db:"base_role_id"`
	AwardRoleID             string    `db:"award_role_id"`
	MaxGeneratedRoles       int       `db:"max_generated_roles"`
	MaxMembersPerRole       int       `db:"max_members_per_role"`
	MaxSharedRolesPerMember int       `db:"max_shared_roles_per_member"`
	RenameCooldownMinutes   int       `db:"rename_cooldown_minutes"`
	UpdatedAt               time.Time `db:"updated_at"`
}

func (r *guildConfigRow) toModel() *model.GuildConfig {
	cfg := &model.GuildConfig{
		GuildID:                 r.GuildID,
		AutoNickname:            r.AutoNickname,
		JoinLogChannelID:        r.JoinLogChannelID,
		PremiumRoleID:           r.PremiumRoleID,
		BaseRoleID:              r.BaseRoleID,
		AwardRoleID:             r.AwardRoleID,
		MaxGeneratedRoles:       r.MaxGeneratedRoles,
		MaxMembersPerRole:       r.MaxMembersPerRole,
		MaxSharedRolesPerMember: r.MaxSharedRolesPerMember,
		RenameCooldownMinutes:   r.RenameCooldownMinutes,
		UpdatedAt:               r.UpdatedAt,
	}
	if r.StaffRoleIDs != "" {
		cfg.StaffRoleIDs = strings.Split(r.StaffRoleIDs, ",")
	}
	return cfg
}

// GetGuildConfig loads the settings row for a guild. Returns
// model.ErrNotFound when the guild was never configured.
func GetGuildConfig(db *sqlx.DB, guildID string) (*model.GuildConfig, error) {
	var row guildConfigRow
	err := db.Get(&row, "SELECT * FROM guild_configs WHERE guild_id = ?", guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guild config: %w", err)
	}
	return row.toModel(), nil
}

// UpsertGuildConfig merges a partial settings update into the guild
// row. The row is created with defaults first, then only the fields
// set on the patch are written, so concurrent writers of different
// fields never clobber each other.
func UpsertGuildConfig(db *sqlx.DB, guildID string, patch model.GuildConfigPatch) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("INSERT OR IGNORE INTO guild_configs (guild_id) VALUES (?)", guildID)
	if err != nil {
		return fmt.Errorf("failed to ensure guild config row: %w", err)
	}

	sets := make([]string, 0, 10)
	args := make([]interface{}, 0, 11)
	addSet := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.StaffRoleIDs != nil {
		addSet("staff_role_ids", strings.Join(*patch.StaffRoleIDs, ","))
	}
	if patch.AutoNickname != nil {
		addSet("auto_nickname", *patch.AutoNickname)
	}
	if patch.JoinLogChannelID != nil {
		addSet("join_log_channel_id", *patch.JoinLogChannelID)
	}
	if patch.PremiumRoleID != nil {
		addSet("premium_role_id", *patch.PremiumRoleID)
	}
	if patch.BaseRoleID != nil {
		addSet("base_role_id", *patch.BaseRoleID)
	}
	if patch.AwardRoleID != nil {
		addSet("award_role_id", *patch.AwardRoleID)
	}
	if patch.MaxGeneratedRoles != nil {
		addSet("max_generated_roles", *patch.MaxGeneratedRoles)
	}
	if patch.MaxMembersPerRole != nil {
		addSet("max_members_per_role", *patch.MaxMembersPerRole)
	}
	if patch.MaxSharedRolesPerMember != nil {
		addSet("max_shared_roles_per_member", *patch.MaxSharedRolesPerMember)
	}
	if patch.RenameCooldownMinutes != nil {
		addSet("rename_cooldown_minutes", *patch.RenameCooldownMinutes)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		query := fmt.Sprintf("UPDATE guild_configs SET %s WHERE guild_id = ?", strings.Join(sets, ", "))
		args = append(args, guildID)
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to update guild config: %w", err)
		}
	}

	return tx.Commit()
}
