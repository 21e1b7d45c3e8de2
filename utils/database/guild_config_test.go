package database

import (
	"testing"

	"booster-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestGetGuildConfigUnknownGuild(t *testing.T) {
	db := newTestDB(t)

	_, err := GetGuildConfig(db, "g1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpsertGuildConfigCreatesRowWithDefaults(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpsertGuildConfig(db, "g1", model.GuildConfigPatch{}))

	cfg, err := GetGuildConfig(db, "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", cfg.GuildID)
	assert.Empty(t, cfg.StaffRoleIDs)
	assert.Equal(t, 0, cfg.MaxGeneratedRoles)
	assert.Equal(t, 5, cfg.MaxMembersPerRole)
	assert.Equal(t, 3, cfg.MaxSharedRolesPerMember)
	assert.Equal(t, 60, cfg.RenameCooldownMinutes)
}

func TestUpsertGuildConfigMergesOnlyProvidedFields(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpsertGuildConfig(db, "g1", model.GuildConfigPatch{
		AutoNickname:  strPtr("⭐ {username}"),
		PremiumRoleID: strPtr("r-premium"),
	}))
	require.NoError(t, UpsertGuildConfig(db, "g1", model.GuildConfigPatch{
		MaxGeneratedRoles: intPtr(10),
	}))

	cfg, err := GetGuildConfig(db, "g1")
	require.NoError(t, err)
	assert.Equal(t, "⭐ {username}", cfg.AutoNickname)
	assert.Equal(t, "r-premium", cfg.PremiumRoleID)
	assert.Equal(t, 10, cfg.MaxGeneratedRoles)
}

func TestUpsertGuildConfigCanClearField(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpsertGuildConfig(db, "g1", model.GuildConfigPatch{
		JoinLogChannelID: strPtr("c1"),
	}))
	require.NoError(t, UpsertGuildConfig(db, "g1", model.GuildConfigPatch{
		JoinLogChannelID: strPtr(""),
	}))

	cfg, err := GetGuildConfig(db, "g1")
	require.NoError(t, err)
	assert.Empty(t, cfg.JoinLogChannelID)
}

func TestUpsertGuildConfigStaffRoles(t *testing.T) {
	db := newTestDB(t)

	staff := []string{"r1", "r2", "r3"}
	require.NoError(t, UpsertGuildConfig(db, "g1", model.GuildConfigPatch{
		StaffRoleIDs: &staff,
	}))

	cfg, err := GetGuildConfig(db, "g1")
	require.NoError(t, err)
	assert.Equal(t, staff, cfg.StaffRoleIDs)

	empty := []string{}
	require.NoError(t, UpsertGuildConfig(db, "g1", model.GuildConfigPatch{
		StaffRoleIDs: &empty,
	}))

	cfg, err = GetGuildConfig(db, "g1")
	require.NoError(t, err)
	assert.Empty(t, cfg.StaffRoleIDs)
}

func TestUpsertGuildConfigIsolatedPerGuild(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpsertGuildConfig(db, "g1", model.GuildConfigPatch{
		MaxGeneratedRoles: intPtr(5),
	}))
	require.NoError(t, UpsertGuildConfig(db, "g2", model.GuildConfigPatch{
		MaxGeneratedRoles: intPtr(7),
	}))

	cfg1, err := GetGuildConfig(db, "g1")
	require.NoError(t, err)
	cfg2, err := GetGuildConfig(db, "g2")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg1.MaxGeneratedRoles)
	assert.Equal(t, 7, cfg2.MaxGeneratedRoles)
}
