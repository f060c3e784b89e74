package syncmeta_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincatch/fincatch/internal/client/client"
	"github.com/fincatch/fincatch/internal/client/models"
	_ "modernc.org/sqlite"
)

func setupRepos(t *testing.T) *client.Repositories {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, repos, err := client.InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return repos
}

func TestGetCheckpointEmpty(t *testing.T) {
	repos := setupRepos(t)

	cp, err := repos.SyncMeta.GetCheckpoint(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestSaveAndGetCheckpoint(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	first := &models.Checkpoint{UpdatedAt: "2024-01-01T00:00:00Z", ID: "r1"}
	require.NoError(t, repos.SyncMeta.SaveCheckpoint(ctx, first))

	got, err := repos.SyncMeta.GetCheckpoint(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *first, *got)

	// A later save replaces the single stored cursor.
	second := &models.Checkpoint{UpdatedAt: "2024-02-01T00:00:00Z", ID: "r2"}
	require.NoError(t, repos.SyncMeta.SaveCheckpoint(ctx, second))

	got, err = repos.SyncMeta.GetCheckpoint(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *second, *got)
}
