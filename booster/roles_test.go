package booster

import (
	"context"
	"errors"
	"testing"
	"time"

	"booster-bot/model"
	"booster-bot/utils/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRoleColorCreatesRole(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("u1")

	res, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "Sunset", "#FF8800", "")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "Sunset", res.Role.RoleName)
	assert.Equal(t, "#FF8800", res.Role.PrimaryColor)

	// Role was created and assigned on the Discord side.
	assert.Len(t, env.mutator.callsFor("create"), 1)
	assigns := env.mutator.callsFor("assign")
	require.Len(t, assigns, 1)
	assert.Equal(t, "u1", assigns[0].UserID)

	stored, err := database.GetBoosterRole(env.db, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, res.Role.RoleID, stored.RoleID)
}

func TestSetRoleColorUpdatesExistingRole(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("u1")

	res, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "First", "red", "")
	require.NoError(t, err)

	res2, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "", "blue", "")
	require.NoError(t, err)
	assert.False(t, res2.Created)
	assert.Equal(t, res.Role.RoleID, res2.Role.RoleID)
	assert.Equal(t, "First", res2.Role.RoleName)
	assert.Equal(t, "#0000FF", res2.Role.PrimaryColor)

	// Second call edits instead of creating.
	assert.Len(t, env.mutator.callsFor("create"), 1)
	assert.Len(t, env.mutator.callsFor("edit"), 1)
}

func TestSetRoleColorRequiresBooster(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addMember("u1")

	_, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "Name", "red", "")
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
	assert.Empty(t, env.mutator.callsFor("create"))
}

func TestPremiumRoleCountsAsBooster(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addAdmin("admin")
	require.NoError(t, env.svc.SetPremiumRole(context.Background(), "g1", "admin", "r-premium"))

	env.oracle.addMember("u1")
	env.oracle.mu.Lock()
	env.oracle.memberRole["u1"] = []string{"r-premium"}
	env.oracle.mu.Unlock()

	res, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "Premium", "gold", "")
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestSetRoleColorRejectsInvalidColor(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("u1")

	_, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "Name", "nope", "")
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSetRoleColorRejectsBlacklistedName(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("u1")
	_, err := database.AddBlacklistWord(env.db, "g1", "vip", "admin")
	require.NoError(t, err)

	_, err = env.svc.SetRoleColor(context.Background(), "g1", "u1", "VIP Lounge", "red", "")
	var berr *model.BlacklistedNameError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "vip", berr.Word)
	assert.Empty(t, env.mutator.callsFor("create"))
}

func TestSetRoleColorEnforcesCooldown(t *testing.T) {
	env := newTestEnv(t, Config{ColorCooldown: time.Minute})
	env.oracle.addBooster("u1")

	_, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "Name", "red", "")
	require.NoError(t, err)

	_, err = env.svc.SetRoleColor(context.Background(), "g1", "u1", "", "blue", "")
	var rerr *model.RateLimitedError
	require.ErrorAs(t, err, &rerr)
	assert.Greater(t, rerr.Remaining, time.Duration(0))
}

func TestSetRoleColorEnforcesGuildLimit(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("u1")
	env.oracle.addBooster("u2")
	env.oracle.addAdmin("admin")

	require.NoError(t, env.svc.SetRoleLimit(context.Background(), "g1", "admin", 1))

	_, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "One", "red", "")
	require.NoError(t, err)

	_, err = env.svc.SetRoleColor(context.Background(), "g1", "u2", "Two", "red", "")
	var lerr *model.LimitExceededError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 1, lerr.Limit)
}

func TestSetRoleColorCompensatesFailedAssign(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("u1")
	env.mutator.failOps["assign"] = errors.New("missing permissions")

	_, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "Name", "red", "")
	var xerr *model.ExternalError
	require.ErrorAs(t, err, &xerr)

	// The created role was deleted again and nothing was stored.
	assert.Len(t, env.mutator.callsFor("delete"), 1)
	_, err = database.GetBoosterRole(env.db, "g1", "u1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRandomColorCreatesRole(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("u1")

	res, err := env.svc.RandomColor(context.Background(), "g1", "u1", "Lucky")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, res.Role.PrimaryColor)
}

func TestRenameUpdatesRoleAndRecordsHistory(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("u1")

	_, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "Before", "red", "")
	require.NoError(t, err)

	old, err := env.svc.Rename(context.Background(), "g1", "u1", "After")
	require.NoError(t, err)
	assert.Equal(t, "Before", old)

	role, err := database.GetBoosterRole(env.db, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "After", role.RoleName)

	rec, err := database.LastRename(env.db, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Before", rec.OldName)
	assert.Equal(t, "After", rec.NewName)
}

func TestRenameCooldownIsDurable(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("u1")

	_, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "Before", "red", "")
	require.NoError(t, err)

	_, err = env.svc.Rename(context.Background(), "g1", "u1", "Second")
	require.NoError(t, err)

	_, err = env.svc.Rename(context.Background(), "g1", "u1", "Third")
	var rerr *model.RateLimitedError
	require.ErrorAs(t, err, &rerr)

	// A fresh engine over the same database still refuses: the
	// cooldown lives in the rename history, not in process memory.
	env2cache := NewSettingsCache(env.db, time.Minute)
	svc2 := NewService(env.db, env2cache, env.limiter, env.mutator, env.oracle, env.notifier, Config{})
	_, err = svc2.Rename(context.Background(), "g1", "u1", "Third")
	assert.ErrorAs(t, err, &rerr)
}

func TestRenameWithoutRole(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("u1")

	_, err := env.svc.Rename(context.Background(), "g1", "u1", "Name")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSetIcon(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("u1")

	_, err := env.svc.SetRoleColor(context.Background(), "g1", "u1", "Name", "red", "")
	require.NoError(t, err)

	require.NoError(t, env.svc.SetIcon(context.Background(), "g1", "u1", "https://cdn.example.com/a.png"))
	icons := env.mutator.callsFor("icon")
	require.Len(t, icons, 1)
	assert.Equal(t, "https://cdn.example.com/a.png", icons[0].Name)

	err = env.svc.SetIcon(context.Background(), "g1", "u1", "ftp://bad")
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRemoveRoleCascades(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addBooster("owner")
	env.oracle.addMember("friend")

	res, err := env.svc.SetRoleColor(context.Background(), "g1", "owner", "Shared", "red", "")
	require.NoError(t, err)
	_, err = env.svc.ShareRole(context.Background(), "g1", "owner", "friend", 0)
	require.NoError(t, err)

	require.NoError(t, env.svc.RemoveRole(context.Background(), "g1", "owner"))

	// Recipient revoked, role deleted, rows gone.
	revokes := env.mutator.callsFor("revoke")
	require.Len(t, revokes, 1)
	assert.Equal(t, "friend", revokes[0].UserID)
	assert.Len(t, env.mutator.callsFor("delete"), 1)

	_, err = database.GetBoosterRole(env.db, "g1", "owner")
	assert.ErrorIs(t, err, model.ErrNotFound)
	shares, err := database.ListActiveShares(env.db, "g1", res.Role.RoleID)
	require.NoError(t, err)
	assert.Empty(t, shares)
}
