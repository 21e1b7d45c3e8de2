package booster

import (
	"context"
	"errors"
	"fmt"
	"log"

	"booster-bot/model"
	"booster-bot/utils"
	"booster-bot/utils/database"
)

// MutationKind identifies one Discord-side step of a teardown plan.
type MutationKind int

const (
	MutationRevokeRole MutationKind = iota
	MutationDeleteRole
)

// Mutation is one planned Discord mutation.
type Mutation struct {
	Kind    MutationKind
	GuildID string
	UserID  string
	RoleID  string
}

// PlanBoostRemoval computes the Discord mutations needed to tear down
// a booster role: revoke it from every share recipient, then delete
// the role itself. Deleting the role also detaches the owner, so no
// separate owner revoke is planned.
func PlanBoostRemoval(role *model.BoosterRole, shares []model.RoleShare) []Mutation {
	plan := make([]Mutation, 0, len(shares)+1)
	for _, share := range shares {
		plan = append(plan, Mutation{
			Kind:    MutationRevokeRole,
			GuildID: role.GuildID,
			UserID:  share.SharedWithID,
			RoleID:  role.RoleID,
		})
	}
	plan = append(plan, Mutation{
		Kind:    MutationDeleteRole,
		GuildID: role.GuildID,
		RoleID:  role.RoleID,
	})
	return plan
}

// removeRoleCascade tears down one booster role: planned Discord
// mutations first, then share deactivation, then the role row.
// Discord failures are logged but do not abort the local cleanup,
// so an already-deleted role converges to the same state. When
// roleExists is false the Discord steps are skipped entirely.
func (s *Service) removeRoleCascade(ctx context.Context, role *model.BoosterRole, roleExists bool) error {
	shares, err := database.ListActiveShares(s.db, role.GuildID, role.RoleID)
	if err != nil {
		return err
	}

	if roleExists {
		for _, m := range PlanBoostRemoval(role, shares) {
			mctx, cancel := s.mutationCtx(ctx)
			switch m.Kind {
			case MutationRevokeRole:
				if err := s.roles.RevokeRole(mctx, m.GuildID, m.UserID, m.RoleID); err != nil {
					log.Printf("Failed to revoke role %s from %s in guild %s: %v", m.RoleID, m.UserID, m.GuildID, err)
				}
			case MutationDeleteRole:
				if err := s.roles.DeleteRole(mctx, m.GuildID, m.RoleID); err != nil {
					log.Printf("Failed to delete role %s in guild %s: %v", m.RoleID, m.GuildID, err)
				}
			}
			cancel()
		}
	}

	if _, err := database.DeactivateSharesForRole(s.db, role.GuildID, role.RoleID); err != nil {
		return err
	}
	if _, err := database.DeleteBoosterRole(s.db, role.GuildID, role.UserID); err != nil {
		return err
	}
	if _, err := database.DeleteRoleLink(s.db, role.GuildID, role.UserID); err != nil {
		return err
	}
	return nil
}

// HandleBoostRemoved tears down a member's booster role after their
// boost ended. A member without a role is a no-op, so replayed or
// duplicated events converge.
func (s *Service) HandleBoostRemoved(ctx context.Context, guildID, userID string) error {
	role, err := database.GetBoosterRole(s.db, guildID, userID)
	if errors.Is(err, model.ErrNotFound) {
		// A link can exist without a generated role.
		_, err := database.DeleteRoleLink(s.db, guildID, userID)
		return err
	}
	if err != nil {
		return err
	}

	if err := s.removeRoleCascade(ctx, role, true); err != nil {
		return err
	}

	cfg, err := s.cache.GetOrLoad(guildID)
	if err == nil {
		s.notifier.SendLog(cfg.JoinLogChannelID, model.LogEntry{
			Title: "Booster role removed",
			Color: utils.ColorOrange,
			Fields: []model.LogField{
				{Name: "Member", Value: fmt.Sprintf("<@%s>", userID)},
				{Name: "Role", Value: role.RoleName},
			},
		})
	}
	return nil
}

// HandleBoostAdded reacts to a member starting a boost. If an award
// role is configured it is assigned; a failure is logged and swallowed
// since the boost itself already happened.
func (s *Service) HandleBoostAdded(ctx context.Context, guildID, userID string) error {
	cfg, err := s.cache.GetOrLoad(guildID)
	if err != nil {
		return err
	}
	if cfg.AwardRoleID == "" {
		return nil
	}

	mctx, cancel := s.mutationCtx(ctx)
	defer cancel()
	if err := s.roles.AssignRole(mctx, guildID, userID, cfg.AwardRoleID); err != nil {
		log.Printf("Failed to assign award role %s to %s in guild %s: %v", cfg.AwardRoleID, userID, guildID, err)
	}
	return nil
}

// HandleMemberJoin applies the auto-nickname template and posts the
// join log. Both steps are best effort.
func (s *Service) HandleMemberJoin(ctx context.Context, guildID, userID, username string) error {
	cfg, err := s.cache.GetOrLoad(guildID)
	if err != nil {
		return err
	}

	if cfg.AutoNickname != "" {
		nick := utils.RenderNickname(cfg.AutoNickname, username)
		mctx, cancel := s.mutationCtx(ctx)
		if err := s.roles.SetNickname(mctx, guildID, userID, nick); err != nil {
			// Commonly a permission error for members above the bot.
			log.Printf("Failed to set nickname for %s in guild %s: %v", userID, guildID, err)
		}
		cancel()
	}

	s.notifier.SendLog(cfg.JoinLogChannelID, model.LogEntry{
		Title: "Member joined",
		Color: utils.ColorGreen,
		Fields: []model.LogField{
			{Name: "Member", Value: fmt.Sprintf("<@%s> (%s)", userID, username)},
		},
	})
	return nil
}

// HandleMemberLeave posts the leave log and tears down any booster
// role the member owned.
func (s *Service) HandleMemberLeave(ctx context.Context, guildID, userID, username string) error {
	cfg, err := s.cache.GetOrLoad(guildID)
	if err == nil {
		s.notifier.SendLog(cfg.JoinLogChannelID, model.LogEntry{
			Title: "Member left",
			Color: utils.ColorOrange,
			Fields: []model.LogField{
				{Name: "Member", Value: fmt.Sprintf("<@%s> (%s)", userID, username)},
			},
		})
	}
	return s.HandleBoostRemoved(ctx, guildID, userID)
}

// HandleRoleDeleted purges bookkeeping for a role that was deleted
// out from under the bot.
func (s *Service) HandleRoleDeleted(ctx context.Context, guildID, roleID string) error {
	if _, err := database.DeactivateSharesForRole(s.db, guildID, roleID); err != nil {
		return err
	}
	if _, err := database.DeleteBoosterRoleByRoleID(s.db, guildID, roleID); err != nil {
		return err
	}
	if _, err := database.DeleteRoleLinksByRoleID(s.db, guildID, roleID); err != nil {
		return err
	}
	return nil
}
