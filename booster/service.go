// Package booster implements the guild settings and booster role
// engine: role lifecycle, sharing, reactive event handling and the
// periodic reconciliation sweep.
package booster

import (
	"context"
	"time"

	"booster-bot/model"
	"booster-bot/utils/ratelimit"

	"github.com/jmoiron/sqlx"
)

const (
	actionColor    = "color"
	actionIcon     = "icon"
	actionShare    = "share"
	actionSettings = "settings"
)

// Config carries the engine tunables.
type Config struct {
	ColorCooldown    time.Duration
	IconCooldown     time.Duration
	ShareCooldown    time.Duration
	SettingsCooldown time.Duration
	MutatorTimeout   time.Duration
}

// Service wires the storage layer, the settings cache, the rate
// limiter and the Discord ports into one engine. All methods are safe
// for concurrent use.
type Service struct {
	db       *sqlx.DB
	cache    *SettingsCache
	limiter  ratelimit.Limiter
	roles    model.RoleMutator
	members  model.MembershipOracle
	notifier model.Notifier
	cfg      Config
}

func NewService(
	db *sqlx.DB,
	cache *SettingsCache,
	limiter ratelimit.Limiter,
	roles model.RoleMutator,
	members model.MembershipOracle,
	notifier model.Notifier,
	cfg Config,
) *Service {
	if cfg.MutatorTimeout <= 0 {
		cfg.MutatorTimeout = 5 * time.Second
	}
	return &Service{
		db:       db,
		cache:    cache,
		limiter:  limiter,
		roles:    roles,
		members:  members,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Cache exposes the settings cache for event handlers.
func (s *Service) Cache() *SettingsCache {
	return s.cache
}

// mutationCtx bounds a Discord mutation so a stalled API call cannot
// hold an event queue forever.
func (s *Service) mutationCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.MutatorTimeout)
}

func (s *Service) checkCooldown(guildID, userID, action string, cooldown time.Duration) error {
	if cooldown <= 0 {
		return nil
	}
	remaining, ok := s.limiter.Check(ratelimit.Key(guildID, userID, action), cooldown)
	if !ok {
		return &model.RateLimitedError{Remaining: remaining}
	}
	return nil
}

// requireBooster rejects callers who are not currently boosting. A
// configured premium role counts as booster standing too.
func (s *Service) requireBooster(ctx context.Context, guildID, userID string) error {
	boosting, err := s.members.IsBooster(ctx, guildID, userID)
	if err != nil {
		return &model.ExternalError{Op: "member lookup", Err: err}
	}
	if boosting {
		return nil
	}

	cfg, err := s.cache.GetOrLoad(guildID)
	if err != nil {
		return err
	}
	if cfg.PremiumRoleID != "" {
		memberRoles, err := s.members.MemberRoleIDs(ctx, guildID, userID)
		if err != nil {
			return &model.ExternalError{Op: "member lookup", Err: err}
		}
		for _, id := range memberRoles {
			if id == cfg.PremiumRoleID {
				return nil
			}
		}
	}
	return model.ErrPermissionDenied
}

// requireStaff admits members with Manage Guild or one of the
// configured staff roles.
func (s *Service) requireStaff(ctx context.Context, guildID, userID string) error {
	ok, err := s.members.HasManageGuild(ctx, guildID, userID)
	if err != nil {
		return &model.ExternalError{Op: "permission lookup", Err: err}
	}
	if ok {
		return nil
	}

	cfg, err := s.cache.GetOrLoad(guildID)
	if err != nil {
		return err
	}
	if len(cfg.StaffRoleIDs) == 0 {
		return model.ErrPermissionDenied
	}

	memberRoles, err := s.members.MemberRoleIDs(ctx, guildID, userID)
	if err != nil {
		return &model.ExternalError{Op: "member lookup", Err: err}
	}
	for _, have := range memberRoles {
		for _, want := range cfg.StaffRoleIDs {
			if have == want {
				return nil
			}
		}
	}
	return model.ErrPermissionDenied
}
