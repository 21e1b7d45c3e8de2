package booster

import (
	"context"
	"fmt"
	"log"
	"time"

	"booster-bot/model"
	"booster-bot/utils"
	"booster-bot/utils/database"
)

// CleanupReport summarizes one reconciliation sweep.
type CleanupReport struct {
	GuildID       string
	Scanned       int
	NotBoosting   int
	MemberLeft    int
	RoleDeleted   int
	SharesExpired int
	Removed       int
	Failed        int
	DryRun        bool
}

func (r *CleanupReport) Orphans() int {
	return r.NotBoosting + r.MemberLeft + r.RoleDeleted
}

func (r *CleanupReport) String() string {
	mode := "cleanup"
	if r.DryRun {
		mode = "dry run"
	}
	return fmt.Sprintf("%s for guild %s: scanned=%d not_boosting=%d member_left=%d role_deleted=%d shares_expired=%d removed=%d failed=%d",
		mode, r.GuildID, r.Scanned, r.NotBoosting, r.MemberLeft, r.RoleDeleted, r.SharesExpired, r.Removed, r.Failed)
}

// Cleanup reconciles stored booster roles against live guild state.
// A role is orphaned when its owner left, stopped boosting, or the
// Discord role no longer exists. Orphans are torn down unless dryRun
// is set. The sweep is idempotent: a second run right after finds
// nothing to do.
func (s *Service) Cleanup(ctx context.Context, guildID string, dryRun bool) (*CleanupReport, error) {
	report := &CleanupReport{GuildID: guildID, DryRun: dryRun}

	if err := s.expireShares(ctx, guildID, dryRun, report); err != nil {
		return nil, err
	}

	roles, err := database.ListBoosterRoles(s.db, guildID)
	if err != nil {
		return nil, err
	}
	report.Scanned = len(roles)
	if len(roles) == 0 {
		return report, nil
	}

	liveRoles, err := s.members.GuildRoleIDs(ctx, guildID)
	if err != nil {
		return nil, &model.ExternalError{Op: "guild roles lookup", Err: err}
	}
	boosters, err := s.members.BoosterIDs(ctx, guildID)
	if err != nil {
		return nil, &model.ExternalError{Op: "booster lookup", Err: err}
	}

	for i := range roles {
		role := &roles[i]

		orphaned := false
		roleExists := liveRoles[role.RoleID]

		if !roleExists {
			report.RoleDeleted++
			orphaned = true
		} else if !boosters[role.UserID] {
			exists, err := s.members.MemberExists(ctx, guildID, role.UserID)
			if err != nil {
				log.Printf("Cleanup: member lookup for %s in guild %s failed: %v", role.UserID, guildID, err)
				report.Failed++
				continue
			}
			if !exists {
				report.MemberLeft++
			} else {
				report.NotBoosting++
			}
			orphaned = true
		}

		if !orphaned || dryRun {
			continue
		}

		if err := s.removeRoleCascade(ctx, role, roleExists); err != nil {
			log.Printf("Cleanup: failed to remove role %s in guild %s: %v", role.RoleID, guildID, err)
			report.Failed++
			continue
		}
		report.Removed++
	}

	return report, nil
}

// expireShares retires shares whose expiry has passed: the share row
// is deactivated and the role revoked from the recipient.
func (s *Service) expireShares(ctx context.Context, guildID string, dryRun bool, report *CleanupReport) error {
	expired, err := database.ListExpiredShares(s.db, guildID, time.Now())
	if err != nil {
		return err
	}
	report.SharesExpired = len(expired)
	if dryRun {
		return nil
	}

	for _, share := range expired {
		if _, err := database.DeactivateShare(s.db, guildID, share.RoleID, share.SharedWithID); err != nil {
			log.Printf("Cleanup: failed to expire share of role %s for %s in guild %s: %v",
				share.RoleID, share.SharedWithID, guildID, err)
			report.Failed++
			continue
		}
		mctx, cancel := s.mutationCtx(ctx)
		if err := s.roles.RevokeRole(mctx, guildID, share.SharedWithID, share.RoleID); err != nil {
			log.Printf("Cleanup: failed to revoke expired share of role %s from %s in guild %s: %v",
				share.RoleID, share.SharedWithID, guildID, err)
		}
		cancel()
	}
	return nil
}

// CleanupCommand runs a staff-gated sweep and posts the summary to
// the guild log channel when one is configured.
func (s *Service) CleanupCommand(ctx context.Context, guildID, actorID string, dryRun bool) (*CleanupReport, error) {
	if err := s.requireStaff(ctx, guildID, actorID); err != nil {
		return nil, err
	}

	report, err := s.Cleanup(ctx, guildID, dryRun)
	if err != nil {
		return nil, err
	}

	cfg, cfgErr := s.cache.GetOrLoad(guildID)
	if cfgErr == nil && !dryRun && report.Orphans() > 0 {
		s.notifier.SendLog(cfg.JoinLogChannelID, model.LogEntry{
			Title: "Booster role cleanup",
			Color: utils.ColorBlue,
			Fields: []model.LogField{
				{Name: "Scanned", Value: fmt.Sprintf("%d", report.Scanned)},
				{Name: "Removed", Value: fmt.Sprintf("%d", report.Removed)},
				{Name: "No longer boosting", Value: fmt.Sprintf("%d", report.NotBoosting)},
				{Name: "Member left", Value: fmt.Sprintf("%d", report.MemberLeft)},
				{Name: "Role deleted", Value: fmt.Sprintf("%d", report.RoleDeleted)},
			},
		})
	}
	return report, nil
}
