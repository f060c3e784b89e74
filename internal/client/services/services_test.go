package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fincatch/fincatch/internal/client/client"
	_ "modernc.org/sqlite"
)

// setupDB opens a fresh in-memory database with the full schema applied.
func setupDB(t *testing.T) (*sql.DB, *client.Repositories) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, repos, err := client.InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, repos
}
