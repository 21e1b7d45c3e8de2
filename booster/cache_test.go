package booster

import (
	"testing"
	"time"

	"booster-bot/model"
	"booster-bot/utils/database"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCacheTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTables(db))
	return db
}

func TestCacheServesDefaultsForUnknownGuild(t *testing.T) {
	db := newCacheTestDB(t)
	cache := NewSettingsCache(db, time.Minute)

	cfg, err := cache.GetOrLoad("g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", cfg.GuildID)
	assert.Equal(t, 5, cfg.MaxMembersPerRole)
}

func TestCacheServesStaleUntilInvalidated(t *testing.T) {
	db := newCacheTestDB(t)
	cache := NewSettingsCache(db, time.Hour)

	cfg, err := cache.GetOrLoad("g1")
	require.NoError(t, err)
	require.Equal(t, 0, cfg.MaxGeneratedRoles)

	limit := 9
	require.NoError(t, database.UpsertGuildConfig(db, "g1", model.GuildConfigPatch{
		MaxGeneratedRoles: &limit,
	}))

	// Within TTL and without invalidation the old value is served.
	cfg, err = cache.GetOrLoad("g1")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxGeneratedRoles)

	cache.Invalidate("g1")
	cfg, err = cache.GetOrLoad("g1")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxGeneratedRoles)
}

func TestCacheExpiresByTTL(t *testing.T) {
	db := newCacheTestDB(t)
	cache := NewSettingsCache(db, time.Minute)

	now := time.Now()
	cache.now = func() time.Time { return now }

	cfg, err := cache.GetOrLoad("g1")
	require.NoError(t, err)
	require.Equal(t, 0, cfg.MaxGeneratedRoles)

	limit := 4
	require.NoError(t, database.UpsertGuildConfig(db, "g1", model.GuildConfigPatch{
		MaxGeneratedRoles: &limit,
	}))

	now = now.Add(2 * time.Minute)
	cfg, err = cache.GetOrLoad("g1")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxGeneratedRoles)
}

func TestCacheEntriesArePerGuild(t *testing.T) {
	db := newCacheTestDB(t)
	cache := NewSettingsCache(db, time.Hour)

	limit := 3
	require.NoError(t, database.UpsertGuildConfig(db, "g1", model.GuildConfigPatch{
		MaxGeneratedRoles: &limit,
	}))

	cfg1, err := cache.GetOrLoad("g1")
	require.NoError(t, err)
	cfg2, err := cache.GetOrLoad("g2")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg1.MaxGeneratedRoles)
	assert.Equal(t, 0, cfg2.MaxGeneratedRoles)
}
