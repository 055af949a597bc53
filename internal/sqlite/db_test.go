package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.Migrate(context.Background())
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestMigrations(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	for _, table := range []string{"robots", "kv_store"} {
		require.True(t, tableExists(t, db, table), "table %s not found", table)
	}

	version, err := db.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, uint(5), version)

	pending, err := db.Pending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robots.db")
	ctx := context.Background()

	db, err := Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	_, err = NewRobotRepository(db).Create(ctx, robot.Input{Name: "R2D2", Label: "Astromech", Year: 1977, Type: robot.TypeService})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	version, err := db.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, uint(5), version)

	n, err := NewRobotRepository(db).Count(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestMigrations_FailureKeepsLastAppliedVersion(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	fsys := fstest.MapFS{
		"m/1_first.up.sql":  {Data: []byte("CREATE TABLE first (x INTEGER);")},
		"m/2_broken.up.sql": {Data: []byte("CREATE TABLE broken (;")},
		"m/3_third.up.sql":  {Data: []byte("CREATE TABLE third (x INTEGER);")},
	}
	err = db.migrateFS(ctx, fsys, "m")
	require.Error(t, err)
	require.Contains(t, err.Error(), "migration 2")

	version, err := db.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.True(t, tableExists(t, db, "first"))
	require.False(t, tableExists(t, db, "third"))
}

func TestMigrations_RequireContiguousVersions(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"m/1_first.up.sql": {Data: []byte("CREATE TABLE first (x INTEGER);")},
		"m/3_third.up.sql": {Data: []byte("CREATE TABLE third (x INTEGER);")},
	}
	err = db.migrateFS(context.Background(), fsys, "m")
	require.ErrorContains(t, err, "contiguous")
}

func TestOpen_UnavailablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "robots.db")
	_, err := Open(context.Background(), path, zerolog.Nop())
	require.ErrorIs(t, err, robot.ErrStorageUnavailable)
}

func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

func TestRobotsTableConstraints(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO robots (id, name, label, year, type) VALUES (?, ?, ?, ?, ?)`,
		"r1", "Robo", "Label", 2000, "toaster")
	require.Error(t, err, "type check should reject unknown types")

	_, err = db.ExecContext(ctx,
		`INSERT INTO robots (id, name, label, year, type) VALUES (?, ?, ?, ?, ?)`,
		"r1", "Robo", "Label", 2000, "other")
	require.NoError(t, err)

	var createdAt int64
	var archived int
	err = db.QueryRowContext(ctx, `SELECT created_at, archived FROM robots WHERE id = ?`, "r1").Scan(&createdAt, &archived)
	require.NoError(t, err)
	require.Positive(t, createdAt)
	require.Zero(t, archived)
}
