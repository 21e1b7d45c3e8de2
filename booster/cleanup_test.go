package booster

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"booster-bot/model"
	"booster-bot/utils/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedShare inserts an active share directly, optionally with an
// expiry already in the past or the future.
func seedShare(t *testing.T, env *testEnv, guildID, roleID, ownerID, targetID string, expiresAt sql.NullTime) {
	t.Helper()
	share := &model.RoleShare{
		GuildID:      guildID,
		RoleID:       roleID,
		OwnerID:      ownerID,
		SharedWithID: targetID,
		ExpiresAt:    expiresAt,
	}
	require.NoError(t, database.CreateShare(env.db, share, 0, 0))
}

// seedRole creates a booster role through the service and marks the
// Discord role as live.
func seedRole(t *testing.T, env *testEnv, guildID, userID string) *model.BoosterRole {
	t.Helper()
	env.oracle.addBooster(userID)
	res, err := env.svc.SetRoleColor(context.Background(), guildID, userID, "Role of "+userID, "red", "")
	require.NoError(t, err)
	env.oracle.addGuildRole(res.Role.RoleID)
	return res.Role
}

func TestCleanupHealthyGuildFindsNothing(t *testing.T) {
	env := newTestEnv(t, Config{})
	seedRole(t, env, "g1", "u1")
	seedRole(t, env, "g1", "u2")

	report, err := env.svc.Cleanup(context.Background(), "g1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Zero(t, report.Orphans())
	assert.Zero(t, report.Removed)
}

func TestCleanupClassifiesOrphans(t *testing.T) {
	env := newTestEnv(t, Config{})

	stopped := seedRole(t, env, "g1", "stopped")
	left := seedRole(t, env, "g1", "left")
	deleted := seedRole(t, env, "g1", "deleted")
	seedRole(t, env, "g1", "healthy")

	env.oracle.removeBooster("stopped")
	env.oracle.removeMember("left")
	env.oracle.removeGuildRole(deleted.RoleID)

	report, err := env.svc.Cleanup(context.Background(), "g1", false)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, 1, report.NotBoosting)
	assert.Equal(t, 1, report.MemberLeft)
	assert.Equal(t, 1, report.RoleDeleted)
	assert.Equal(t, 3, report.Removed)
	assert.Zero(t, report.Failed)

	// Orphan rows are gone, the healthy row survived.
	for _, userID := range []string{"stopped", "left", "deleted"} {
		_, err := database.GetBoosterRole(env.db, "g1", userID)
		assert.ErrorIs(t, err, model.ErrNotFound, userID)
	}
	_, err = database.GetBoosterRole(env.db, "g1", "healthy")
	assert.NoError(t, err)

	// The deleted role gets no Discord delete call, the other two do.
	assert.Len(t, env.mutator.callsFor("delete"), 2)
	_ = stopped
	_ = left
}

func TestCleanupDryRunMutatesNothing(t *testing.T) {
	env := newTestEnv(t, Config{})

	seedRole(t, env, "g1", "stopped")
	env.oracle.removeBooster("stopped")

	before := len(env.mutator.calls)
	report, err := env.svc.Cleanup(context.Background(), "g1", true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.NotBoosting)
	assert.Zero(t, report.Removed)

	// No Discord mutations and no row deletions in dry run.
	assert.Equal(t, before, len(env.mutator.calls))
	_, err = database.GetBoosterRole(env.db, "g1", "stopped")
	assert.NoError(t, err)
}

func TestCleanupIsIdempotent(t *testing.T) {
	env := newTestEnv(t, Config{})

	seedRole(t, env, "g1", "stopped")
	env.oracle.removeBooster("stopped")

	first, err := env.svc.Cleanup(context.Background(), "g1", false)
	require.NoError(t, err)
	require.Equal(t, 1, first.Removed)

	second, err := env.svc.Cleanup(context.Background(), "g1", false)
	require.NoError(t, err)
	assert.Zero(t, second.Scanned)
	assert.Zero(t, second.Removed)
}

func TestCleanupCascadesShares(t *testing.T) {
	env := newTestEnv(t, Config{})

	role := seedRole(t, env, "g1", "owner")
	env.oracle.addMember("friend")
	_, err := env.svc.ShareRole(context.Background(), "g1", "owner", "friend", 0)
	require.NoError(t, err)

	env.oracle.removeBooster("owner")
	report, err := env.svc.Cleanup(context.Background(), "g1", false)
	require.NoError(t, err)
	require.Equal(t, 1, report.Removed)

	shares, err := database.ListActiveShares(env.db, "g1", role.RoleID)
	require.NoError(t, err)
	assert.Empty(t, shares)

	revokes := env.mutator.callsFor("revoke")
	require.Len(t, revokes, 1)
	assert.Equal(t, "friend", revokes[0].UserID)
}

func TestCleanupRetiresExpiredShares(t *testing.T) {
	env := newTestEnv(t, Config{})

	role := seedRole(t, env, "g1", "owner")
	env.oracle.addMember("expired")
	env.oracle.addMember("forever")
	past := sql.NullTime{Time: time.Now().Add(-time.Hour).UTC(), Valid: true}
	seedShare(t, env, "g1", role.RoleID, "owner", "expired", past)
	seedShare(t, env, "g1", role.RoleID, "owner", "forever", sql.NullTime{})

	report, err := env.svc.Cleanup(context.Background(), "g1", false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SharesExpired)
	assert.Zero(t, report.Failed)

	// The dated share is gone, the open-ended one survived.
	shares, err := database.ListActiveShares(env.db, "g1", role.RoleID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "forever", shares[0].SharedWithID)

	revokes := env.mutator.callsFor("revoke")
	require.Len(t, revokes, 1)
	assert.Equal(t, "expired", revokes[0].UserID)
}

func TestCleanupDryRunKeepsExpiredShares(t *testing.T) {
	env := newTestEnv(t, Config{})

	role := seedRole(t, env, "g1", "owner")
	env.oracle.addMember("expired")
	past := sql.NullTime{Time: time.Now().Add(-time.Hour).UTC(), Valid: true}
	seedShare(t, env, "g1", role.RoleID, "owner", "expired", past)

	report, err := env.svc.Cleanup(context.Background(), "g1", true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SharesExpired)

	shares, err := database.ListActiveShares(env.db, "g1", role.RoleID)
	require.NoError(t, err)
	assert.Len(t, shares, 1)
	assert.Empty(t, env.mutator.callsFor("revoke"))
}

func TestCleanupEmptyGuild(t *testing.T) {
	env := newTestEnv(t, Config{})

	report, err := env.svc.Cleanup(context.Background(), "g1", false)
	require.NoError(t, err)
	assert.Zero(t, report.Scanned)
}

func TestCleanupCommandRequiresStaff(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.oracle.addMember("pleb")

	_, err := env.svc.CleanupCommand(context.Background(), "g1", "pleb", false)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestCleanupReportString(t *testing.T) {
	report := &CleanupReport{GuildID: "g1", Scanned: 3, NotBoosting: 1, Removed: 1}
	assert.Contains(t, report.String(), "guild g1")
	assert.Contains(t, report.String(), "scanned=3")

	dry := &CleanupReport{GuildID: "g1", DryRun: true}
	assert.Contains(t, dry.String(), "dry run")
}
