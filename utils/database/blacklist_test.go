package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndListBlacklist(t *testing.T) {
	db := newTestDB(t)

	added, err := AddBlacklistWord(db, "g1", "Spam", "admin")
	require.NoError(t, err)
	assert.True(t, added)

	// Duplicate add reports false, words are stored lowercase.
	added, err = AddBlacklistWord(db, "g1", "SPAM", "admin")
	require.NoError(t, err)
	assert.False(t, added)

	words, err := ListBlacklist(db, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"spam"}, words)
}

func TestRemoveBlacklistWord(t *testing.T) {
	db := newTestDB(t)

	_, err := AddBlacklistWord(db, "g1", "bad", "admin")
	require.NoError(t, err)

	removed, err := RemoveBlacklistWord(db, "g1", "BAD")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = RemoveBlacklistWord(db, "g1", "bad")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMatchBlacklist(t *testing.T) {
	db := newTestDB(t)

	_, err := AddBlacklistWord(db, "g1", "crimson", "admin")
	require.NoError(t, err)
	_, err = AddBlacklistWord(db, "g1", "vip", "admin")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "exact", input: "crimson", want: "crimson"},
		{name: "substring", input: "The Crimson Tide", want: "crimson"},
		{name: "case insensitive", input: "VIP lounge", want: "vip"},
		{name: "embedded", input: "superVIPstar", want: "vip"},
		{name: "clean", input: "Ocean Breeze", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchBlacklist(db, "g1", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchBlacklistScopedToGuild(t *testing.T) {
	db := newTestDB(t)

	_, err := AddBlacklistWord(db, "g1", "blocked", "admin")
	require.NoError(t, err)

	got, err := MatchBlacklist(db, "g2", "blocked name")
	require.NoError(t, err)
	assert.Empty(t, got)
}
