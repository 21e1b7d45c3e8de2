package booster

import (
	"context"
	"fmt"
	"strings"

	"booster-bot/model"
	"booster-bot/utils/database"
	"booster-bot/utils/ratelimit"
)

// GuildConfig returns the effective settings for a guild.
func (s *Service) GuildConfig(ctx context.Context, guildID string) (*model.GuildConfig, error) {
	return s.cache.GetOrLoad(guildID)
}

// applySetting commits a settings patch, writes the audit trail and
// invalidates the cache. Callers are expected to have checked staff
// standing already where it applies.
func (s *Service) applySetting(guildID, actorID, action, details string, patch model.GuildConfigPatch) error {
	if err := database.UpsertGuildConfig(s.db, guildID, patch); err != nil {
		return err
	}
	if err := database.AppendAudit(s.db, guildID, actorID, action, strings.TrimSpace(details)); err != nil {
		return err
	}
	s.cache.Invalidate(guildID)
	return nil
}

// staffSetting is applySetting behind the staff gate and the settings
// cooldown shared by all administrative updates. A write that fails
// clears the cooldown again so the retry is not penalized.
func (s *Service) staffSetting(ctx context.Context, guildID, actorID, action, details string, patch model.GuildConfigPatch) error {
	if err := s.requireStaff(ctx, guildID, actorID); err != nil {
		return err
	}
	if err := s.checkCooldown(guildID, actorID, actionSettings, s.cfg.SettingsCooldown); err != nil {
		return err
	}
	if err := s.applySetting(guildID, actorID, action, details, patch); err != nil {
		s.limiter.Reset(ratelimit.Key(guildID, actorID, actionSettings))
		return err
	}
	return nil
}

// AddStaffRole grants a role staff standing for settings commands.
func (s *Service) AddStaffRole(ctx context.Context, guildID, actorID, roleID string) error {
	cfg, err := s.cache.GetOrLoad(guildID)
	if err != nil {
		return err
	}
	for _, id := range cfg.StaffRoleIDs {
		if id == roleID {
			return model.ErrConflict
		}
	}
	staff := append(append([]string{}, cfg.StaffRoleIDs...), roleID)
	return s.staffSetting(ctx, guildID, actorID, "add_staff_role", "role="+roleID,
		model.GuildConfigPatch{StaffRoleIDs: &staff})
}

// RemoveStaffRole revokes a role's staff standing.
func (s *Service) RemoveStaffRole(ctx context.Context, guildID, actorID, roleID string) error {
	cfg, err := s.cache.GetOrLoad(guildID)
	if err != nil {
		return err
	}
	staff := make([]string, 0, len(cfg.StaffRoleIDs))
	found := false
	for _, id := range cfg.StaffRoleIDs {
		if id == roleID {
			found = true
			continue
		}
		staff = append(staff, id)
	}
	if !found {
		return model.ErrNotFound
	}
	return s.staffSetting(ctx, guildID, actorID, "remove_staff_role", "role="+roleID,
		model.GuildConfigPatch{StaffRoleIDs: &staff})
}

// SetAutoNickname stores the nickname template applied to new members.
// Pass "" to disable.
func (s *Service) SetAutoNickname(ctx context.Context, guildID, actorID, template string) error {
	if len([]rune(template)) > 32 {
		return &model.ValidationError{Reason: "nickname template cannot exceed 32 characters"}
	}
	action := "set_auto_nickname"
	if template == "" {
		action = "clear_auto_nickname"
	}
	return s.staffSetting(ctx, guildID, actorID, action, "template="+template,
		model.GuildConfigPatch{AutoNickname: &template})
}

// SetJoinLogChannel stores the channel for join and leave logs.
// Pass "" to disable.
func (s *Service) SetJoinLogChannel(ctx context.Context, guildID, actorID, channelID string) error {
	action := "set_join_log_channel"
	if channelID == "" {
		action = "clear_join_log_channel"
	}
	return s.staffSetting(ctx, guildID, actorID, action, "channel="+channelID,
		model.GuildConfigPatch{JoinLogChannelID: &channelID})
}

// SetPremiumRole stores the role treated as the premium marker.
func (s *Service) SetPremiumRole(ctx context.Context, guildID, actorID, roleID string) error {
	action := "set_premium_role"
	if roleID == "" {
		action = "clear_premium_role"
	}
	return s.staffSetting(ctx, guildID, actorID, action, "role="+roleID,
		model.GuildConfigPatch{PremiumRoleID: &roleID})
}

// SetBaseRole stores the role generated roles are positioned under.
func (s *Service) SetBaseRole(ctx context.Context, guildID, actorID, roleID string) error {
	action := "set_base_role"
	if roleID == "" {
		action = "clear_base_role"
	}
	return s.staffSetting(ctx, guildID, actorID, action, "role="+roleID,
		model.GuildConfigPatch{BaseRoleID: &roleID})
}

// SetAwardRole stores the role granted to members when they boost.
func (s *Service) SetAwardRole(ctx context.Context, guildID, actorID, roleID string) error {
	action := "set_award_role"
	if roleID == "" {
		action = "clear_award_role"
	}
	return s.staffSetting(ctx, guildID, actorID, action, "role="+roleID,
		model.GuildConfigPatch{AwardRoleID: &roleID})
}

// SetRoleLimit caps how many booster roles the guild may hold.
// Zero means unlimited.
func (s *Service) SetRoleLimit(ctx context.Context, guildID, actorID string, limit int) error {
	if limit < 0 || limit > 250 {
		return &model.ValidationError{Reason: "role limit must be between 0 and 250"}
	}
	return s.staffSetting(ctx, guildID, actorID, "set_role_limit", fmt.Sprintf("limit=%d", limit),
		model.GuildConfigPatch{MaxGeneratedRoles: &limit})
}

// SetRenameCooldown changes the rename cooldown in minutes.
func (s *Service) SetRenameCooldown(ctx context.Context, guildID, actorID string, minutes int) error {
	if minutes < 0 || minutes > 10080 {
		return &model.ValidationError{Reason: "rename cooldown must be between 0 and 10080 minutes"}
	}
	return s.staffSetting(ctx, guildID, actorID, "set_rename_cooldown", fmt.Sprintf("minutes=%d", minutes),
		model.GuildConfigPatch{RenameCooldownMinutes: &minutes})
}

// AddFilterWord adds a word to the role name filter. Staff only.
func (s *Service) AddFilterWord(ctx context.Context, guildID, actorID, word string) error {
	if err := s.requireStaff(ctx, guildID, actorID); err != nil {
		return err
	}
	word = strings.TrimSpace(word)
	if word == "" || len(word) > 50 {
		return &model.ValidationError{Reason: "filter word must be 1 to 50 characters"}
	}
	added, err := database.AddBlacklistWord(s.db, guildID, word, actorID)
	if err != nil {
		return err
	}
	if !added {
		return model.ErrConflict
	}
	return database.AppendAudit(s.db, guildID, actorID, "add_filter_word", "word="+strings.ToLower(word))
}

// RemoveFilterWord removes a word from the role name filter. Staff only.
func (s *Service) RemoveFilterWord(ctx context.Context, guildID, actorID, word string) error {
	if err := s.requireStaff(ctx, guildID, actorID); err != nil {
		return err
	}
	removed, err := database.RemoveBlacklistWord(s.db, guildID, word)
	if err != nil {
		return err
	}
	if !removed {
		return model.ErrNotFound
	}
	return database.AppendAudit(s.db, guildID, actorID, "remove_filter_word", "word="+strings.ToLower(strings.TrimSpace(word)))
}

// ListFilterWords returns the guild's filter words.
func (s *Service) ListFilterWords(ctx context.Context, guildID string) ([]string, error) {
	return database.ListBlacklist(s.db, guildID)
}

// AuditTrail returns the most recent settings changes.
func (s *Service) AuditTrail(ctx context.Context, guildID string, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return database.ListAudit(s.db, guildID, limit)
}
