package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigration_NewDatabase(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	version, err := NewMigrator(db).Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, version)

	for _, table := range []string{"sessions", "attempts"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
	}
}

func TestMigration_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	m := NewMigrator(db)
	require.NoError(t, m.Migrate(ctx))
	require.NoError(t, m.Migrate(ctx))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigration_EmptyVersion(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	m := NewMigrator(db)
	require.NoError(t, m.ensureMigrationsTable(context.Background()))

	version, err := m.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, version)
}

func TestSplitSQLStatements(t *testing.T) {
	stmts := splitSQLStatements("-- comment\nCREATE TABLE a (x INT);\n\n  -- another\nCREATE TABLE b (y INT);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"}, stmts)
}
