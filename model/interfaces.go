package model

import "context"

// RoleMutator performs Discord-side role and member mutations. The
// engine talks to Discord only through this so tests can swap in fakes.
type RoleMutator interface {
	// CreateRole creates a guild role and returns its ID. When
	// baseRoleID is set the role is positioned just below it.
	CreateRole(ctx context.Context, guildID, name string, color int, baseRoleID string) (string, error)
	EditRole(ctx context.Context, guildID, roleID, name string, color int) error
	EditRoleIcon(ctx context.Context, guildID, roleID, iconURL string) error
	DeleteRole(ctx context.Context, guildID, roleID string) error
	AssignRole(ctx context.Context, guildID, userID, roleID string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID string) error
	SetNickname(ctx context.Context, guildID, userID, nickname string) error
}

// MembershipOracle answers questions about guild membership and standing.
type MembershipOracle interface {
	IsBooster(ctx context.Context, guildID, userID string) (bool, error)
	MemberExists(ctx context.Context, guildID, userID string) (bool, error)
	HasManageGuild(ctx context.Context, guildID, userID string) (bool, error)
	MemberRoleIDs(ctx context.Context, guildID, userID string) ([]string, error)
	// RoleManaged reports whether an integration owns the role, e.g.
	// bot roles and the booster role itself.
	RoleManaged(ctx context.Context, guildID, roleID string) (bool, error)
	// GuildRoleIDs returns the set of role IDs that currently exist.
	GuildRoleIDs(ctx context.Context, guildID string) (map[string]bool, error)
	// BoosterIDs returns the set of user IDs currently boosting.
	BoosterIDs(ctx context.Context, guildID string) (map[string]bool, error)
}

// Notifier delivers log embeds to a channel. A channelID of "" is a no-op.
type Notifier interface {
	SendLog(channelID string, entry LogEntry)
}
