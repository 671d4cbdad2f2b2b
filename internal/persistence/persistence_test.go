package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ahmedabdul/staff-portal/internal/config"
)

func exerciseMedium(t *testing.T, m Medium) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, KeyAuthToken, "first"))
	require.NoError(t, m.Set(ctx, KeyAuthToken, "second"))
	v, ok, err := m.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	require.NoError(t, m.Delete(ctx, KeyAuthToken))
	_, ok, err = m.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Delete(ctx, "missing"))
}

func TestMemoryMedium(t *testing.T) {
	exerciseMedium(t, NewMemory())
}

func TestSQLiteMedium(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portal.db")
	db, err := NewSQLite(config.SQLiteConfig{Path: path}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	exerciseMedium(t, db)
	require.NoError(t, db.Ping(context.Background()))
	assert.Equal(t, path, db.Path())
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.db")
	ctx := context.Background()

	first, err := NewSQLite(config.SQLiteConfig{Path: path}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyStaffList, `[{"id":"a"}]`))
	first.Close()

	second, err := NewSQLite(config.SQLiteConfig{Path: path}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(second.Close)

	v, ok, err := second.Get(ctx, KeyStaffList)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)
}

func TestScopedIsolatesClients(t *testing.T) {
	ctx := context.Background()
	backing := NewMemory()
	a := Scoped(backing, "client-a")
	b := Scoped(backing, "client-b")

	require.NoError(t, a.Set(ctx, KeyAuthToken, "token-a"))

	_, ok, err := b.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := backing.Get(ctx, "client-a:"+KeyAuthToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token-a", v)

	assert.Same(t, backing, Scoped(backing, ""))
}

func TestUnconfiguredBackends(t *testing.T) {
	ctx := context.Background()
	pg := &Postgres{}
	_, _, err := pg.Get(ctx, KeyReports)
	assert.ErrorIs(t, err, ErrMediumUnavailable)
	assert.ErrorIs(t, pg.Set(ctx, KeyReports, "[]"), ErrMediumUnavailable)

	var rd *Redis
	assert.ErrorIs(t, rd.Delete(ctx, KeyAuthToken), ErrMediumUnavailable)
	assert.Error(t, rd.Ping(ctx))
}

func TestMigrationFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)

	require.NoError(t, RunMigrations(context.Background(), &Postgres{}, dir, zap.NewNop()))
}
