package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndListAudit(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, AppendAudit(db, "g1", "admin", "set_premium_role", "role=r1"))
	require.NoError(t, AppendAudit(db, "g1", "admin", "set_role_limit", "limit=10"))
	require.NoError(t, AppendAudit(db, "g2", "admin", "set_role_limit", "limit=3"))

	entries, err := ListAudit(db, "g1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, "set_role_limit", entries[0].Action)
	assert.Equal(t, "set_premium_role", entries[1].Action)

	entries, err = ListAudit(db, "g1", 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
