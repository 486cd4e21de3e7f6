package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "elibrary.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpenSQLite_CreatesSchema(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "elibrary.db")

	db, err := OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, tableExists(t, db, "metadata"))
	assert.True(t, tableExists(t, db, "goose_db_version"))
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "elibrary.db")
	ctx := context.Background()

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
	assert.True(t, tableExists(t, db, "metadata"))
}

func TestSQLite_Contract(t *testing.T) {
	b := NewSQLite("durable", setupDB(t))
	assert.Equal(t, "durable", b.Name())
	exerciseBackend(t, b)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "elibrary.db")
	ctx := context.Background()

	db, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, NewSQLite("durable", db).SetMany(ctx, map[string]string{"refreshToken": "r"}))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	v, ok, err := NewSQLite("durable", db).Get(ctx, "refreshToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r", v)
}

func TestSQLite_ErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	b := NewSQLite("durable", db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, _, err := b.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")

	require.Error(t, b.SetMany(ctx, map[string]string{"k": "v"}))
	require.Error(t, b.Delete(ctx, "k"))
}
