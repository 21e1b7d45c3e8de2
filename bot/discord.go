package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"booster-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// discordAdapter implements model.RoleMutator and model.MembershipOracle
// over a discordgo session.
type discordAdapter struct {
	session *discordgo.Session
}

func newDiscordAdapter(s *discordgo.Session) *discordAdapter {
	return &discordAdapter{session: s}
}

// isUnknownEntity reports whether the API said the target no longer
// exists. Those failures are treated as already done by callers.
func isUnknownEntity(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownRole, discordgo.ErrCodeUnknownUser:
			return true
		}
	}
	return false
}

func (a *discordAdapter) CreateRole(ctx context.Context, guildID, name string, color int, baseRoleID string) (string, error) {
	role, err := a.session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:  name,
		Color: &color,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}

	if baseRoleID != "" {
		a.positionBelow(ctx, guildID, role, baseRoleID)
	}
	return role.ID, nil
}

// positionBelow moves a freshly created role just under the base
// role. Failures are logged only; the role still works at its default
// position.
func (a *discordAdapter) positionBelow(ctx context.Context, guildID string, role *discordgo.Role, baseRoleID string) {
	roles, err := a.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		log.Printf("Failed to fetch roles for positioning in guild %s: %v", guildID, err)
		return
	}

	basePos := -1
	for _, r := range roles {
		if r.ID == baseRoleID {
			basePos = r.Position
			break
		}
	}
	if basePos <= 0 {
		return
	}

	role.Position = basePos - 1
	if _, err := a.session.GuildRoleReorder(guildID, []*discordgo.Role{role}, discordgo.WithContext(ctx)); err != nil {
		log.Printf("Failed to position role %s below %s in guild %s: %v", role.ID, baseRoleID, guildID, err)
	}
}

func (a *discordAdapter) EditRole(ctx context.Context, guildID, roleID, name string, color int) error {
	_, err := a.session.GuildRoleEdit(guildID, roleID, &discordgo.RoleParams{
		Name:  name,
		Color: &color,
	}, discordgo.WithContext(ctx))
	return err
}

func (a *discordAdapter) EditRoleIcon(ctx context.Context, guildID, roleID, iconURL string) error {
	icon, err := utils.FetchIconDataURI(ctx, iconURL)
	if err != nil {
		return err
	}
	_, err = a.session.GuildRoleEdit(guildID, roleID, &discordgo.RoleParams{
		Icon: &icon,
	}, discordgo.WithContext(ctx))
	return err
}

func (a *discordAdapter) DeleteRole(ctx context.Context, guildID, roleID string) error {
	err := a.session.GuildRoleDelete(guildID, roleID, discordgo.WithContext(ctx))
	if isUnknownEntity(err) {
		return nil
	}
	return err
}

func (a *discordAdapter) AssignRole(ctx context.Context, guildID, userID, roleID string) error {
	return a.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (a *discordAdapter) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	err := a.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
	if isUnknownEntity(err) {
		return nil
	}
	return err
}

func (a *discordAdapter) SetNickname(ctx context.Context, guildID, userID, nickname string) error {
	return a.session.GuildMemberNickname(guildID, userID, nickname, discordgo.WithContext(ctx))
}

func (a *discordAdapter) IsBooster(ctx context.Context, guildID, userID string) (bool, error) {
	member, err := a.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if isUnknownEntity(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return member.PremiumSince != nil, nil
}

func (a *discordAdapter) MemberExists(ctx context.Context, guildID, userID string) (bool, error) {
	_, err := a.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if isUnknownEntity(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *discordAdapter) HasManageGuild(ctx context.Context, guildID, userID string) (bool, error) {
	guild, err := a.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	if guild.OwnerID == userID {
		return true, nil
	}

	member, err := a.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	roles, err := a.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}

	byID := make(map[string]*discordgo.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	// The @everyone role shares its ID with the guild.
	var perms int64
	if everyone, ok := byID[guildID]; ok {
		perms |= everyone.Permissions
	}
	for _, roleID := range member.Roles {
		if r, ok := byID[roleID]; ok {
			perms |= r.Permissions
		}
	}

	return perms&discordgo.PermissionAdministrator != 0 ||
		perms&discordgo.PermissionManageGuild != 0, nil
}

func (a *discordAdapter) MemberRoleIDs(ctx context.Context, guildID, userID string) ([]string, error) {
	member, err := a.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return member.Roles, nil
}

func (a *discordAdapter) RoleManaged(ctx context.Context, guildID, roleID string) (bool, error) {
	roles, err := a.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.ID == roleID {
			return r.Managed, nil
		}
	}
	return false, fmt.Errorf("role %s not found in guild %s", roleID, guildID)
}

func (a *discordAdapter) GuildRoleIDs(ctx context.Context, guildID string) (map[string]bool, error) {
	roles, err := a.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(roles))
	for _, r := range roles {
		out[r.ID] = true
	}
	return out, nil
}

func (a *discordAdapter) BoosterIDs(ctx context.Context, guildID string) (map[string]bool, error) {
	out := make(map[string]bool)
	after := ""
	for {
		members, err := a.session.GuildMembers(guildID, after, 1000, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to page guild members: %w", err)
		}
		if len(members) == 0 {
			return out, nil
		}
		for _, m := range members {
			if m.PremiumSince != nil {
				out[m.User.ID] = true
			}
			after = m.User.ID
		}
		if len(members) < 1000 {
			return out, nil
		}
	}
}
