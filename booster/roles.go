package booster

import (
	"context"
	"errors"
	"log"
	"time"

	"booster-bot/model"
	"booster-bot/utils"
	"booster-bot/utils/database"
)

// RoleResult reports the outcome of a role create-or-update.
type RoleResult struct {
	Role    *model.BoosterRole
	Created bool
}

// SetRoleColor creates the caller's booster role or recolors the
// existing one. A secondary color is stored for gradient-capable
// clients. The database row is written only after the Discord side
// succeeded; a role that was created but could not be assigned is
// deleted again.
func (s *Service) SetRoleColor(ctx context.Context, guildID, userID, name, colorInput, secondaryInput string) (*RoleResult, error) {
	if err := s.requireBooster(ctx, guildID, userID); err != nil {
		return nil, err
	}
	if err := s.checkCooldown(guildID, userID, actionColor, s.cfg.ColorCooldown); err != nil {
		return nil, err
	}

	color, err := utils.ParseColor(colorInput)
	if err != nil {
		return nil, &model.ValidationError{Reason: err.Error()}
	}
	secondary := ""
	if secondaryInput != "" {
		c, err := utils.ParseColor(secondaryInput)
		if err != nil {
			return nil, &model.ValidationError{Reason: err.Error()}
		}
		secondary = utils.HexString(c)
	}

	existing, err := database.GetBoosterRole(s.db, guildID, userID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		roleName := existing.RoleName
		if name != "" {
			roleName, err = s.checkRoleName(guildID, name)
			if err != nil {
				return nil, err
			}
		}

		mctx, cancel := s.mutationCtx(ctx)
		defer cancel()
		if err := s.roles.EditRole(mctx, guildID, existing.RoleID, roleName, color); err != nil {
			return nil, &model.ExternalError{Op: "role edit", Err: err}
		}

		if err := database.UpdateBoosterRole(s.db, guildID, userID, roleName, utils.HexString(color), secondary); err != nil {
			return nil, err
		}
		existing.RoleName = roleName
		existing.PrimaryColor = utils.HexString(color)
		existing.SecondaryColor = secondary
		return &RoleResult{Role: existing}, nil
	}

	if name == "" {
		return nil, &model.ValidationError{Reason: "a role name is required when creating a role"}
	}
	roleName, err := s.checkRoleName(guildID, name)
	if err != nil {
		return nil, err
	}

	cfg, err := s.cache.GetOrLoad(guildID)
	if err != nil {
		return nil, err
	}
	if cfg.MaxGeneratedRoles > 0 {
		count, err := database.CountBoosterRoles(s.db, guildID)
		if err != nil {
			return nil, err
		}
		if count >= cfg.MaxGeneratedRoles {
			return nil, &model.LimitExceededError{Kind: "booster role", Limit: cfg.MaxGeneratedRoles}
		}
	}

	mctx, cancel := s.mutationCtx(ctx)
	defer cancel()
	roleID, err := s.roles.CreateRole(mctx, guildID, roleName, color, cfg.BaseRoleID)
	if err != nil {
		return nil, &model.ExternalError{Op: "role create", Err: err}
	}

	if err := s.roles.AssignRole(mctx, guildID, userID, roleID); err != nil {
		s.compensateRole(guildID, roleID)
		return nil, &model.ExternalError{Op: "role assign", Err: err}
	}

	role := &model.BoosterRole{
		GuildID:        guildID,
		UserID:         userID,
		RoleID:         roleID,
		RoleName:       roleName,
		PrimaryColor:   utils.HexString(color),
		SecondaryColor: secondary,
	}
	if err := database.CreateBoosterRole(s.db, role, cfg.MaxGeneratedRoles); err != nil {
		s.compensateRole(guildID, roleID)
		return nil, err
	}

	return &RoleResult{Role: role, Created: true}, nil
}

// RandomColor is SetRoleColor with a randomly picked color.
func (s *Service) RandomColor(ctx context.Context, guildID, userID, name string) (*RoleResult, error) {
	return s.SetRoleColor(ctx, guildID, userID, name, utils.HexString(utils.RandomColor()), "")
}

// Rename changes the caller's booster role name. The cooldown is
// backed by the durable rename history, so restarts do not reset it.
// Returns the previous name.
func (s *Service) Rename(ctx context.Context, guildID, userID, newName string) (string, error) {
	if err := s.requireBooster(ctx, guildID, userID); err != nil {
		return "", err
	}

	role, err := database.GetBoosterRole(s.db, guildID, userID)
	if err != nil {
		return "", err
	}

	cfg, err := s.cache.GetOrLoad(guildID)
	if err != nil {
		return "", err
	}
	ok, remaining, err := database.CanRename(s.db, guildID, userID, time.Duration(cfg.RenameCooldownMinutes)*time.Minute)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &model.RateLimitedError{Remaining: remaining}
	}

	roleName, err := s.checkRoleName(guildID, newName)
	if err != nil {
		return "", err
	}

	color, err := utils.ParseColor(role.PrimaryColor)
	if err != nil {
		color = 0
	}

	mctx, cancel := s.mutationCtx(ctx)
	defer cancel()
	if err := s.roles.EditRole(mctx, guildID, role.RoleID, roleName, color); err != nil {
		return "", &model.ExternalError{Op: "role edit", Err: err}
	}

	oldName := role.RoleName
	if err := database.UpdateBoosterRole(s.db, guildID, userID, roleName, role.PrimaryColor, role.SecondaryColor); err != nil {
		return "", err
	}
	if err := database.RecordRename(s.db, guildID, userID, oldName, roleName); err != nil {
		return "", err
	}
	return oldName, nil
}

// SetIcon sets the caller's booster role icon from an image URL.
func (s *Service) SetIcon(ctx context.Context, guildID, userID, rawURL string) error {
	if err := s.requireBooster(ctx, guildID, userID); err != nil {
		return err
	}
	if err := s.checkCooldown(guildID, userID, actionIcon, s.cfg.IconCooldown); err != nil {
		return err
	}

	url, err := utils.ValidateIconURL(rawURL)
	if err != nil {
		return &model.ValidationError{Reason: err.Error()}
	}

	role, err := database.GetBoosterRole(s.db, guildID, userID)
	if err != nil {
		return err
	}

	mctx, cancel := s.mutationCtx(ctx)
	defer cancel()
	if err := s.roles.EditRoleIcon(mctx, guildID, role.RoleID, url); err != nil {
		return &model.ExternalError{Op: "role icon edit", Err: err}
	}
	return nil
}

// RemoveRole deletes the caller's booster role, cascading to any
// members the role was shared with. A member whose role is linked by
// staff cannot remove it themselves.
func (s *Service) RemoveRole(ctx context.Context, guildID, userID string) error {
	role, err := database.GetBoosterRole(s.db, guildID, userID)
	if err != nil {
		return err
	}

	if _, err := database.GetRoleLink(s.db, guildID, userID); err == nil {
		return &model.ValidationError{Reason: "your role is linked by staff and can only be removed by them"}
	} else if !errors.Is(err, model.ErrNotFound) {
		return err
	}

	return s.removeRoleCascade(ctx, role, true)
}

// ListRoles returns all booster roles of a guild.
func (s *Service) ListRoles(ctx context.Context, guildID string) ([]model.BoosterRole, error) {
	return database.ListBoosterRoles(s.db, guildID)
}

// checkRoleName runs local validation plus the guild name filter.
func (s *Service) checkRoleName(guildID, name string) (string, error) {
	trimmed, err := utils.ValidateRoleName(name)
	if err != nil {
		return "", &model.ValidationError{Reason: err.Error()}
	}
	word, err := database.MatchBlacklist(s.db, guildID, trimmed)
	if err != nil {
		return "", err
	}
	if word != "" {
		return "", &model.BlacklistedNameError{Word: word}
	}
	return trimmed, nil
}

// compensateRole deletes a role whose bookkeeping failed so no
// orphaned Discord role is left behind. Best effort.
func (s *Service) compensateRole(guildID, roleID string) {
	mctx, cancel := s.mutationCtx(context.Background())
	defer cancel()
	if err := s.roles.DeleteRole(mctx, guildID, roleID); err != nil {
		log.Printf("Failed to clean up role %s in guild %s: %v", roleID, guildID, err)
	}
}
