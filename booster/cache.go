package booster

import (
	"errors"
	"sync"
	"time"

	"booster-bot/model"
	"booster-bot/utils/database"

	"github.com/jmoiron/sqlx"
)

type cacheEntry struct {
	cfg      *model.GuildConfig
	loadedAt time.Time
}

// SettingsCache is a read-through cache of guild settings with TTL
// expiry. Writers must call Invalidate after committing so the next
// read observes the new row.
type SettingsCache struct {
	mu      sync.RWMutex
	db      *sqlx.DB
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewSettingsCache(db *sqlx.DB, ttl time.Duration) *SettingsCache {
	return &SettingsCache{
		db:      db,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// GetOrLoad returns the cached settings for a guild, loading from the
// database on miss or expiry. Unconfigured guilds resolve to defaults.
func (c *SettingsCache) GetOrLoad(guildID string) (*model.GuildConfig, error) {
	c.mu.RLock()
	entry, ok := c.entries[guildID]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.loadedAt) < c.ttl {
		return entry.cfg, nil
	}

	cfg, err := database.GetGuildConfig(c.db, guildID)
	if errors.Is(err, model.ErrNotFound) {
		cfg = model.DefaultGuildConfig(guildID)
	} else if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[guildID] = cacheEntry{cfg: cfg, loadedAt: c.now()}
	c.mu.Unlock()
	return cfg, nil
}

// Invalidate drops the cached entry for a guild.
func (c *SettingsCache) Invalidate(guildID string) {
	c.mu.Lock()
	delete(c.entries, guildID)
	c.mu.Unlock()
}
