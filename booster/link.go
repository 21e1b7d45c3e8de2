package booster

import (
	"context"
	"errors"
	"log"

	"booster-bot/model"
	"booster-bot/utils/database"
)

// LinkRole ties an existing guild role to a member so staff can manage
// it as that member's booster role. The member gets the role assigned
// if the Discord call succeeds; a linked member cannot remove their
// own booster role. Staff only. Returns true when an earlier link was
// replaced.
func (s *Service) LinkRole(ctx context.Context, guildID, actorID, targetID, roleID string) (bool, error) {
	if err := s.requireStaff(ctx, guildID, actorID); err != nil {
		return false, err
	}

	// The @everyone role shares its ID with the guild.
	if roleID == guildID {
		return false, &model.ValidationError{Reason: "the everyone role cannot be linked"}
	}
	managed, err := s.members.RoleManaged(ctx, guildID, roleID)
	if err != nil {
		return false, &model.ExternalError{Op: "role lookup", Err: err}
	}
	if managed {
		return false, &model.ValidationError{Reason: "managed roles cannot be linked"}
	}

	exists, err := s.members.MemberExists(ctx, guildID, targetID)
	if err != nil {
		return false, &model.ExternalError{Op: "member lookup", Err: err}
	}
	if !exists {
		return false, model.ErrInvalidTarget
	}

	replaced := true
	if _, err := database.GetRoleLink(s.db, guildID, targetID); errors.Is(err, model.ErrNotFound) {
		replaced = false
	} else if err != nil {
		return false, err
	}

	if err := database.UpsertRoleLink(s.db, guildID, targetID, roleID, actorID); err != nil {
		return false, err
	}

	// The link stands even if the assignment fails; staff can assign
	// the role by hand.
	mctx, cancel := s.mutationCtx(ctx)
	defer cancel()
	if err := s.roles.AssignRole(mctx, guildID, targetID, roleID); err != nil {
		log.Printf("Failed to assign linked role %s to %s in guild %s: %v", roleID, targetID, guildID, err)
	}

	if err := database.AppendAudit(s.db, guildID, actorID, "link_role", "user="+targetID+" role="+roleID); err != nil {
		return false, err
	}
	return replaced, nil
}
