package booster

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"booster-bot/model"
	"booster-bot/utils/database"
)

// ShareRole grants targetID access to the owner's booster role, until
// expiresIn elapses (zero means no expiry; the reconciliation sweep
// retires expired shares). The Discord assignment happens first; if
// the bookkeeping then fails on a limit or conflict, the assignment is
// rolled back.
func (s *Service) ShareRole(ctx context.Context, guildID, ownerID, targetID string, expiresIn time.Duration) (*model.BoosterRole, error) {
	if targetID == ownerID {
		return nil, model.ErrInvalidTarget
	}

	role, err := database.GetBoosterRole(s.db, guildID, ownerID)
	if err != nil {
		return nil, err
	}

	exists, err := s.members.MemberExists(ctx, guildID, targetID)
	if err != nil {
		return nil, &model.ExternalError{Op: "member lookup", Err: err}
	}
	if !exists {
		return nil, model.ErrInvalidTarget
	}

	if err := s.checkCooldown(guildID, ownerID, actionShare, s.cfg.ShareCooldown); err != nil {
		return nil, err
	}

	cfg, err := s.cache.GetOrLoad(guildID)
	if err != nil {
		return nil, err
	}

	mctx, cancel := s.mutationCtx(ctx)
	defer cancel()
	if err := s.roles.AssignRole(mctx, guildID, targetID, role.RoleID); err != nil {
		return nil, &model.ExternalError{Op: "role assign", Err: err}
	}

	share := &model.RoleShare{
		GuildID:      guildID,
		RoleID:       role.RoleID,
		OwnerID:      ownerID,
		SharedWithID: targetID,
	}
	if expiresIn > 0 {
		share.ExpiresAt = sql.NullTime{Time: time.Now().Add(expiresIn).UTC(), Valid: true}
	}
	if err := database.CreateShare(s.db, share, cfg.MaxMembersPerRole, cfg.MaxSharedRolesPerMember); err != nil {
		if revokeErr := s.roles.RevokeRole(mctx, guildID, targetID, role.RoleID); revokeErr != nil {
			log.Printf("Failed to roll back share of role %s to %s in guild %s: %v",
				role.RoleID, targetID, guildID, revokeErr)
		}
		return nil, err
	}

	return role, nil
}

// UnshareRole revokes the caller's access to a role that was shared
// with them. The share row is deactivated first so that a role the
// member holds for any other reason is never touched; the Discord
// revoke then runs best effort, so a manually removed role cannot
// wedge the share.
func (s *Service) UnshareRole(ctx context.Context, guildID, userID, roleID string) error {
	ok, err := database.DeactivateShare(s.db, guildID, roleID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}

	mctx, cancel := s.mutationCtx(ctx)
	defer cancel()
	if err := s.roles.RevokeRole(mctx, guildID, userID, roleID); err != nil {
		log.Printf("Failed to revoke shared role %s from %s in guild %s: %v", roleID, userID, guildID, err)
	}
	return nil
}

// RevokeShare lets a role owner remove one recipient from their role.
func (s *Service) RevokeShare(ctx context.Context, guildID, ownerID, targetID string) error {
	role, err := database.GetBoosterRole(s.db, guildID, ownerID)
	if err != nil {
		return err
	}
	return s.UnshareRole(ctx, guildID, targetID, role.RoleID)
}

// ListShares returns the active shares of the owner's booster role.
func (s *Service) ListShares(ctx context.Context, guildID, ownerID string) ([]model.RoleShare, error) {
	role, err := database.GetBoosterRole(s.db, guildID, ownerID)
	if err != nil {
		return nil, err
	}
	return database.ListActiveShares(s.db, guildID, role.RoleID)
}

// SetSharingLimits updates the share quotas for a guild. Staff only.
func (s *Service) SetSharingLimits(ctx context.Context, guildID, actorID string, maxPerRole, maxPerMember *int) error {
	if maxPerRole != nil && (*maxPerRole < 1 || *maxPerRole > 25) {
		return &model.ValidationError{Reason: "members per role must be between 1 and 25"}
	}
	if maxPerMember != nil && (*maxPerMember < 1 || *maxPerMember > 10) {
		return &model.ValidationError{Reason: "shared roles per member must be between 1 and 10"}
	}

	details := ""
	patch := model.GuildConfigPatch{}
	if maxPerRole != nil {
		patch.MaxMembersPerRole = maxPerRole
		details += fmt.Sprintf("max_members_per_role=%d ", *maxPerRole)
	}
	if maxPerMember != nil {
		patch.MaxSharedRolesPerMember = maxPerMember
		details += fmt.Sprintf("max_shared_roles_per_member=%d", *maxPerMember)
	}

	return s.staffSetting(ctx, guildID, actorID, "set_sharing_limits", details, patch)
}
