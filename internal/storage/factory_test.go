package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/storage"
	"github.com/LENAX/plan-engine/pkg/storage/sqlstore"
)

func TestNewDatabaseFactory_SQLite(t *testing.T) {
	factory, err := NewDatabaseFactory(Options{
		Type: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "factory.db"),
		Pool: sqlstore.PoolOptions{MaxOpenConns: 10, MaxIdleConns: 2},
	})
	require.NoError(t, err)
	defer factory.Close()

	repo := factory.CreateProjectRepo()
	ctx := context.Background()
	require.NoError(t, repo.Ping(ctx))

	p := &storage.Project{Name: "factory"}
	require.NoError(t, repo.CreateProject(ctx, p))
	got, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "factory", got.Name)
}

func TestNewDatabaseFactory_Unsupported(t *testing.T) {
	_, err := NewDatabaseFactory(Options{Type: "oracle", DSN: "x"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}
