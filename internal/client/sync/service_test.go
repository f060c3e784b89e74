package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincatch/fincatch/internal/client/client"
	"github.com/fincatch/fincatch/internal/client/models"
	"github.com/fincatch/fincatch/internal/common"
)

type fakeTokens struct{ authenticated bool }

func (f *fakeTokens) AccessToken(ctx context.Context) (string, error) { return "tok", nil }
func (f *fakeTokens) Refresh(ctx context.Context) error { return nil }
func (f *fakeTokens) Authenticated() bool { return f.authenticated }

// fakeClient records the last request and plays back a canned response.
type fakeClient struct {
	lastReq *client.DeltaRequest
	resp    *client.DeltaResponse
	err     error
}

func (f *fakeClient) Delta(ctx context.Context, req *client.DeltaRequest) (*client.DeltaResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func okResponse(synced int, checkpoint models.Checkpoint) *client.DeltaResponse {
	return &client.DeltaResponse{
		Push: client.PushResult{Synced: synced},
		Pull: client.PullResult{NewCheckpoint: checkpoint},
	}
}

func newTestService(repos *client.Repositories, c client.Client) *Service {
	return NewService("https://sync.example.com", c, &fakeTokens{authenticated: true}, repos, testLogger())
}

func TestSyncNowFullCycle(t *testing.T) {
	_, repos := setupDB(t)
	ctx := context.Background()

	p := newPortfolio("p1")
	e := newEntry("e1", p.ID)
	require.NoError(t, repos.Portfolios.Insert(ctx, p))
	require.NoError(t, repos.Entries.Insert(ctx, e))

	fc := &fakeClient{resp: okResponse(2, models.Checkpoint{UpdatedAt: "2024-01-01T00:00:00Z", ID: "e1"})}
	svc := newTestService(repos, fc)

	result, err := svc.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pushed)
	assert.Equal(t, 0, result.Pulled)
	assert.Equal(t, 0, result.Conflicts)

	// The outbound batch carried both dirty rows and no checkpoint yet.
	require.NotNil(t, fc.lastReq)
	assert.Len(t, fc.lastReq.Push.Records, 2)
	assert.Nil(t, fc.lastReq.Pull.SinceCheckpoint)
	assert.NotZero(t, fc.lastReq.Push.ClientTimestamp)

	// Both rows are clean now with bumped versions.
	for _, check := range []func() (int64, *int64){
		func() (int64, *int64) {
			got, err := repos.Portfolios.GetByID(ctx, "p1")
			require.NoError(t, err)
			return got.SyncVersion, got.SyncedAt
		},
		func() (int64, *int64) {
			got, err := repos.Entries.GetByID(ctx, "e1")
			require.NoError(t, err)
			return got.SyncVersion, got.SyncedAt
		},
	} {
		version, syncedAt := check()
		assert.EqualValues(t, 2, version)
		assert.NotNil(t, syncedAt)
	}

	// Checkpoint advanced to the server's cursor.
	cp, err := repos.SyncMeta.GetCheckpoint(ctx)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, "e1", cp.ID)

	// Nothing left to push.
	batch, err := newTestCollector(repos).Collect(ctx)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestSyncNowHardDeletesPushedTombstones(t *testing.T) {
	_, repos := setupDB(t)
	ctx := context.Background()

	p := newPortfolio("p1")
	e := newEntry("e1", p.ID)
	require.NoError(t, repos.Portfolios.Insert(ctx, p))
	require.NoError(t, repos.Entries.Insert(ctx, e))
	require.NoError(t, repos.Portfolios.MarkSynced(ctx, "p1", 1700000100))
	require.NoError(t, repos.Entries.MarkSynced(ctx, "e1", 1700000100))

	require.NoError(t, repos.Entries.SoftDelete(ctx, "e1", 1700000200))

	fc := &fakeClient{resp: okResponse(1, models.Checkpoint{UpdatedAt: "2024-01-02T00:00:00Z", ID: "e1"})}
	svc := newTestService(repos, fc)

	result, err := svc.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pushed)

	require.Len(t, fc.lastReq.Push.Records, 1)
	assert.True(t, fc.lastReq.Push.Records[0].Deleted)

	// The tombstoned row is gone for good, its parent untouched.
	_, err = repos.Entries.GetByID(ctx, "e1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = repos.Portfolios.GetByID(ctx, "p1")
	assert.NoError(t, err)
}

func TestSyncNowConflictedRowStaysDirty(t *testing.T) {
	_, repos := setupDB(t)
	ctx := context.Background()

	require.NoError(t, repos.Portfolios.Insert(ctx, newPortfolio("p1")))
	require.NoError(t, repos.Portfolios.Insert(ctx, newPortfolio("p2")))

	resp := okResponse(1, models.Checkpoint{UpdatedAt: "2024-01-01T00:00:00Z", ID: "p2"})
	resp.Push.Conflicts = []client.Conflict{
		{TableName: WirePortfolios, RowID: "p1", Reason: "version mismatch"},
	}
	svc := newTestService(repos, &fakeClient{resp: resp})

	result, err := svc.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Conflicts)

	// The conflicted row keeps its dirty marker and version for retry.
	p1, err := repos.Portfolios.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, p1.SyncedAt)
	assert.EqualValues(t, 1, p1.SyncVersion)

	p2, err := repos.Portfolios.GetByID(ctx, "p2")
	require.NoError(t, err)
	assert.NotNil(t, p2.SyncedAt)
	assert.EqualValues(t, 2, p2.SyncVersion)

	// Next cycle pushes the conflicted row again, unchanged.
	batch, err := newTestCollector(repos).Collect(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "p1", batch[0].RowID)
}

func TestSyncNowAppliesInboundBatch(t *testing.T) {
	_, repos := setupDB(t)
	ctx := context.Background()

	resp := okResponse(0, models.Checkpoint{UpdatedAt: "2024-01-03T00:00:00Z", ID: "c1"})
	resp.Pull.Records = remoteTree(t)
	svc := newTestService(repos, &fakeClient{resp: resp})

	result, err := svc.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Pulled)

	p, err := repos.Portfolios.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Bonds", p.Name)
	// Pulled rows arrive clean; nothing to push back.
	assert.NotNil(t, p.SyncedAt)

	batch, err := newTestCollector(repos).Collect(ctx)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestSyncNowKeepsCheckpointOnPartialApply(t *testing.T) {
	_, repos := setupDB(t)
	ctx := context.Background()

	old := &models.Checkpoint{UpdatedAt: "2024-01-01T00:00:00Z", ID: "old"}
	require.NoError(t, repos.SyncMeta.SaveCheckpoint(ctx, old))

	// The batch carries an entry whose portfolio never arrived. It gets
	// skipped, so the cursor must stay put or the entry is lost for good.
	resp := okResponse(0, models.Checkpoint{UpdatedAt: "2024-01-02T00:00:00Z", ID: "new"})
	resp.Pull.Records = []models.SyncRecord{
		mustRecord(t, WireEntries, "e1", 1, &models.EntryData{
			PortfolioSyncUUID: "missing-parent", AssetType: "stock", Symbol: "AAPL",
			Quantity: 1, PurchasePrice: 150, PurchaseDate: 1700000000, CreatedAt: 1700000000,
		}),
	}
	fc := &fakeClient{resp: resp}
	svc := newTestService(repos, fc)

	result, err := svc.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Pulled)

	_, err = repos.Entries.GetByID(ctx, "e1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	cp, err := repos.SyncMeta.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, *old, *cp)

	// The next pull replays from the old cursor; once the parent is in the
	// batch too, everything lands and the cursor finally moves.
	fc.resp = okResponse(0, models.Checkpoint{UpdatedAt: "2024-01-02T00:00:00Z", ID: "new"})
	fc.resp.Pull.Records = []models.SyncRecord{
		mustRecord(t, WirePortfolios, "missing-parent", 1, &models.PortfolioData{Name: "Main", CreatedAt: 1700000000}),
		resp.Pull.Records[0],
	}

	result, err = svc.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pulled)

	_, err = repos.Entries.GetByID(ctx, "e1")
	require.NoError(t, err)

	cp, err = repos.SyncMeta.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", cp.ID)

	require.NotNil(t, fc.lastReq.Pull.SinceCheckpoint)
	assert.Equal(t, "old", fc.lastReq.Pull.SinceCheckpoint.ID)
}

func TestSyncNowTransportFailureLeavesStateUntouched(t *testing.T) {
	_, repos := setupDB(t)
	ctx := context.Background()

	require.NoError(t, repos.Portfolios.Insert(ctx, newPortfolio("p1")))
	require.NoError(t, repos.SyncMeta.SaveCheckpoint(ctx, &models.Checkpoint{UpdatedAt: "2024-01-01T00:00:00Z", ID: "old"}))

	svc := newTestService(repos, &fakeClient{err: common.ErrUnavailable})

	_, err := svc.SyncNow(ctx)
	assert.ErrorIs(t, err, common.ErrUnavailable)

	// Row still dirty, checkpoint not advanced.
	p, err := repos.Portfolios.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, p.SyncedAt)
	assert.EqualValues(t, 1, p.SyncVersion)

	cp, err := repos.SyncMeta.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", cp.ID)
}

func TestSyncNowSendsStoredCheckpoint(t *testing.T) {
	_, repos := setupDB(t)
	ctx := context.Background()

	stored := &models.Checkpoint{UpdatedAt: "2024-01-01T00:00:00Z", ID: "p9"}
	require.NoError(t, repos.SyncMeta.SaveCheckpoint(ctx, stored))

	fc := &fakeClient{resp: okResponse(0, models.Checkpoint{UpdatedAt: "2024-01-02T00:00:00Z", ID: "p10"})}
	svc := newTestService(repos, fc)

	_, err := svc.SyncNow(ctx)
	require.NoError(t, err)

	require.NotNil(t, fc.lastReq.Pull.SinceCheckpoint)
	assert.Equal(t, *stored, *fc.lastReq.Pull.SinceCheckpoint)

	cp, err := repos.SyncMeta.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p10", cp.ID)
}

func TestStatus(t *testing.T) {
	_, repos := setupDB(t)
	ctx := context.Background()

	require.NoError(t, repos.Portfolios.Insert(ctx, newPortfolio("p1")))
	require.NoError(t, repos.Entries.Insert(ctx, newEntry("e1", "p1")))

	svc := newTestService(repos, &fakeClient{resp: okResponse(2, models.Checkpoint{ID: "e1"})})

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Configured)
	assert.True(t, status.Authenticated)
	assert.Nil(t, status.LastSyncAt)
	assert.Equal(t, 2, status.PendingChanges)

	_, err = svc.SyncNow(ctx)
	require.NoError(t, err)

	status, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.NotNil(t, status.LastSyncAt)
	assert.Equal(t, 0, status.PendingChanges)
}

func TestStatusRecoversLastSyncFromCheckpoint(t *testing.T) {
	_, repos := setupDB(t)
	ctx := context.Background()

	require.NoError(t, repos.SyncMeta.SaveCheckpoint(ctx, &models.Checkpoint{
		UpdatedAt: "2024-03-01T12:00:00Z",
		ID:        "cp",
	}))

	// A freshly constructed service has no in-memory cycle history.
	svc := newTestService(repos, &fakeClient{})

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, status.LastSyncAt)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix(), *status.LastSyncAt)
}
