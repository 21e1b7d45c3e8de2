package model

import (
	"database/sql"
	"time"
)

// GuildConfig is the single per-guild settings row. Every field has a
// default, so a guild with no stored row behaves like DefaultGuildConfig.
type GuildConfig struct {
	GuildID                 string    `db:"guild_id"`
	StaffRoleIDs            []string  `db:"-"`
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

// DefaultGuildConfig returns the settings a guild has before anyone
// configures it. MaxGeneratedRoles of zero means unlimited.
func DefaultGuildConfig(guildID string) *GuildConfig {
	return &GuildConfig{
		GuildID:                 guildID,
		MaxGeneratedRoles:       0,
		MaxMembersPerRole:       5,
		MaxSharedRolesPerMember: 3,
		RenameCooldownMinutes:   60,
	}
}

// GuildConfigPatch carries a partial settings update. Nil fields are
// left untouched; non-nil fields overwrite, including to empty values.
type GuildConfigPatch struct {
	StaffRoleIDs            *[]string
	AutoNickname            *string
	JoinLogChannelID        *string
	PremiumRoleID           *string
	BaseRoleID              *string
	AwardRoleID             *string
	MaxGeneratedRoles       *int
	MaxMembersPerRole       *int
	MaxSharedRolesPerMember *int
	RenameCooldownMinutes   *int
}

// BoosterRole is a Discord role created for one booster. At most one
// per (guild, user).
type BoosterRole struct {
	ID             int64     `db:"id"`
	GuildID        string    `db:"guild_id"`
	UserID         string    `db:"user_id"`
	RoleID         string    `db:"role_id"`
	RoleName       string    `db:"role_name"`
	PrimaryColor   string    `db:"primary_color"`
	SecondaryColor string    `db:"secondary_color"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// RoleShare grants a non-owner member access to a booster role.
// Rows are soft-deleted via IsActive so a later re-share reactivates.
type RoleShare struct {
	ID           int64        `db:"id"`
	GuildID      string       `db:"guild_id"`
	RoleID       string       `db:"role_id"`
	OwnerID      string       `db:"owner_id"`
	SharedWithID string       `db:"shared_with_id"`
	SharedAt     time.Time    `db:"shared_at"`
	ExpiresAt    sql.NullTime `db:"expires_at"`
	IsActive     bool         `db:"is_active"`
}

// RoleLink ties an existing guild role to a booster for staff-managed
// roles. A linked member cannot remove their own booster role. At
// most one per (guild, user).
type RoleLink struct {
	ID           int64     `db:"id"`
	GuildID      string    `db:"guild_id"`
	UserID       string    `db:"user_id"`
	LinkedRoleID string    `db:"linked_role_id"`
	LinkedBy     string    `db:"linked_by"`
	CreatedAt    time.Time `db:"created_at"`
}

// RenameRecord is one entry of the durable rename history used for
// the rename cooldown.
type RenameRecord struct {
	ID        int64     `db:"id"`
	GuildID   string    `db:"guild_id"`
	UserID    string    `db:"user_id"`
	OldName   string    `db:"old_name"`
	NewName   string    `db:"new_name"`
	RenamedAt time.Time `db:"renamed_at"`
}

// AuditEntry records one administrative settings change.
type AuditEntry struct {
	ID        int64     `db:"id"`
	GuildID   string    `db:"guild_id"`
	UserID    string    `db:"user_id"`
	Action    string    `db:"action"`
	Details   string    `db:"details"`
	CreatedAt time.Time `db:"created_at"`
}

// LogField is one name/value pair of a log embed.
type LogField struct {
	Name  string
	Value string
}

// LogEntry is a structured message for guild log channels.
type LogEntry struct {
	Title       string
	Description string
	Color       int
	Fields      []LogField
}
