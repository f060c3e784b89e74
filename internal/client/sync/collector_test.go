package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincatch/fincatch/internal/client/client"
	"github.com/fincatch/fincatch/internal/client/models"
)

func newTestCollector(repos *client.Repositories) *Collector {
	return NewCollector(repos.Portfolios, repos.Entries, repos.Payments)
}

func recordByID(t *testing.T, batch []models.SyncRecord, rowID string) models.SyncRecord {
	t.Helper()
	for _, r := range batch {
		if r.RowID == rowID {
			return r
		}
	}
	t.Fatalf("no record for row %s", rowID)
	return models.SyncRecord{}
}

func TestCollectorEmitsEveryDirtyRow(t *testing.T) {
	_, repos := setupDB(t)
	p, e, c := seedTree(t, repos)

	batch, err := newTestCollector(repos).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 3)

	rp := recordByID(t, batch, p.ID)
	assert.Equal(t, WirePortfolios, rp.TableName)
	assert.False(t, rp.Deleted)
	assert.EqualValues(t, 1, rp.Version)

	re := recordByID(t, batch, e.ID)
	assert.Equal(t, WireEntries, re.TableName)
	payload, err := re.EntryPayload()
	require.NoError(t, err)
	assert.Equal(t, p.ID, payload.PortfolioSyncUUID)
	assert.Equal(t, "AAPL", payload.Symbol)

	rc := recordByID(t, batch, c.ID)
	assert.Equal(t, WirePayments, rc.TableName)
	pay, err := rc.PaymentPayload()
	require.NoError(t, err)
	assert.Equal(t, e.ID, pay.EntrySyncUUID)
}

func TestCollectorSkipsCleanRows(t *testing.T) {
	_, repos := setupDB(t)
	p, e, c := seedTree(t, repos)
	ctx := context.Background()

	require.NoError(t, repos.Portfolios.MarkSynced(ctx, p.ID, 1700000100))
	require.NoError(t, repos.Entries.MarkSynced(ctx, e.ID, 1700000100))
	require.NoError(t, repos.Payments.MarkSynced(ctx, c.ID, 1700000100))

	batch, err := newTestCollector(repos).Collect(ctx)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestCollectorEmitsTombstones(t *testing.T) {
	_, repos := setupDB(t)
	p, e, c := seedTree(t, repos)
	ctx := context.Background()

	// Start clean, then soft-delete the whole chain.
	require.NoError(t, repos.Portfolios.MarkSynced(ctx, p.ID, 1700000100))
	require.NoError(t, repos.Entries.MarkSynced(ctx, e.ID, 1700000100))
	require.NoError(t, repos.Payments.MarkSynced(ctx, c.ID, 1700000100))

	require.NoError(t, repos.Payments.SoftDelete(ctx, c.ID, 1700000200))
	require.NoError(t, repos.Entries.SoftDelete(ctx, e.ID, 1700000200))
	require.NoError(t, repos.Portfolios.SoftDelete(ctx, p.ID, 1700000200))

	batch, err := newTestCollector(repos).Collect(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for _, id := range []string{p.ID, e.ID, c.ID} {
		r := recordByID(t, batch, id)
		assert.True(t, r.Deleted)
		assert.JSONEq(t, `{}`, string(r.Data))
		// MarkSynced bumped the version once.
		assert.EqualValues(t, 2, r.Version)
	}
}

func TestCollectorOmitsUnsetFields(t *testing.T) {
	_, repos := setupDB(t)
	ctx := context.Background()

	p := newPortfolio("p1")
	require.NoError(t, repos.Portfolios.Insert(ctx, p))

	batch, err := newTestCollector(repos).Collect(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	// Unset optional fields are stripped from the envelope entirely.
	assert.NotContains(t, string(batch[0].Data), "description")
	assert.NotContains(t, string(batch[0].Data), "baseCurrency")
}
