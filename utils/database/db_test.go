package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a fresh in-memory database with the full schema.
// A single connection keeps every query on the same memory database.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, CreateTables(db))
	return db
}

func TestCreateTablesIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, CreateTables(db))
	require.NoError(t, CreateTables(db))
}
