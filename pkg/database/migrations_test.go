package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "billed.db"), MaxOpenConns: 1}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrator_RunEmbeddedMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	fsys, err := MigrationsFS("")
	require.NoError(t, err)

	migrator := NewMigrator(db, zap.NewNop())
	require.NoError(t, migrator.RunMigrations(ctx, fsys))
	// second run is a no-op
	require.NoError(t, migrator.RunMigrations(ctx, fsys))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	_, err = db.ExecContext(ctx, `INSERT INTO bills (id, email, type, date, file_url, file_name) VALUES ('x', 'a@a', 'Transports', '2004-04-04', '/files/a.jpg', '')`)
	assert.Error(t, err, "file url without file name must be rejected by the schema")
}

func TestLoadMigrations_SortsAndRejectsBadNames(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"001_first.sql":  {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("ignored")},
	}

	migrations, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "first", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Version)

	_, err = loadMigrations(fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}})
	assert.Error(t, err)
}

func TestNew_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "billed.db")

	db, err := New(Config{Path: path}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Healthy(context.Background()))
	assert.FileExists(t, path)
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	assert.Error(t, err)
}
