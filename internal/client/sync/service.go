package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/fincatch/fincatch/internal/client/auth"
	"github.com/fincatch/fincatch/internal/client/client"
	"github.com/fincatch/fincatch/internal/client/models"
	"github.com/fincatch/fincatch/internal/client/repositories/syncmeta"
	"github.com/fincatch/fincatch/internal/logging"
)

// Service is the sync orchestrator: one SyncNow call performs one full
// push+pull cycle. Cycles are serialized; a second caller blocks until the
// running cycle finishes. Nothing local is mutated before the network
// exchange succeeds.
type Service struct {
	serverURL string

	client      client.Client
	tokens      auth.TokenSource
	collector   *Collector
	applier     *Applier
	checkpoints syncmeta.Repository
	repos       *client.Repositories
	log         logging.Logger

	mu         gosync.Mutex
	lastSyncAt *int64
}

func NewService(serverURL string, c client.Client, tokens auth.TokenSource, repos *client.Repositories, log logging.Logger) *Service {
	return &Service{
		serverURL:   serverURL,
		client:      c,
		tokens:      tokens,
		collector:   NewCollector(repos.Portfolios, repos.Entries, repos.Payments),
		applier:     NewApplier(repos.Portfolios, repos.Entries, repos.Payments, log),
		checkpoints: repos.SyncMeta,
		repos:       repos,
		log:         log,
	}
}

type recordKey struct {
	table string
	rowID string
}

// SyncNow runs one complete cycle: collect dirty rows, exchange them with
// the server, mark acknowledged rows synced, replay the inbound batch, and
// advance the checkpoint. The checkpoint moves only when every inbound record
// applied; a partial replay keeps the old cursor so skipped records are
// pulled again. Transport, auth and protocol failures abort the cycle with no
// local changes. Conflicted rows stay dirty and are counted in the result.
func (s *Service) SyncNow(ctx context.Context) (*models.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outbound, err := s.collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting changes: %w", err)
	}

	checkpoint, err := s.checkpoints.GetCheckpoint(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}

	now := time.Now().Unix()
	resp, err := s.client.Delta(ctx, &client.DeltaRequest{
		Push: client.PushRequest{Records: outbound, ClientTimestamp: now},
		Pull: client.PullRequest{SinceCheckpoint: checkpoint},
	})
	if err != nil {
		return nil, err
	}

	// The server acknowledged the push. Conflicted rows are excluded from
	// the mark-synced pass so they stay dirty and retry next cycle.
	conflicted := make(map[recordKey]struct{}, len(resp.Push.Conflicts))
	for _, c := range resp.Push.Conflicts {
		conflicted[recordKey{table: ToLocal(c.TableName), rowID: c.RowID}] = struct{}{}
		s.log.Warn(ctx, "push conflict",
			"table", c.TableName, "rowId", c.RowID, "reason", c.Reason)
	}

	syncedAt := time.Now().Unix()
	for _, r := range outbound {
		key := recordKey{table: ToLocal(r.TableName), rowID: r.RowID}
		if _, ok := conflicted[key]; ok {
			continue
		}
		if err := s.markSynced(ctx, r, syncedAt); err != nil {
			s.log.Error(ctx, "failed to mark record synced",
				"table", r.TableName, "rowId", r.RowID, "error", err)
		}
	}

	pulled, failed := s.applier.Apply(ctx, resp.Pull.Records)

	// A partially replayed batch keeps the old cursor: advancing it would
	// orphan the skipped records forever, while replaying from the old one
	// brings them back on the next pull.
	if failed > 0 {
		s.log.Warn(ctx, "keeping previous checkpoint after partial apply",
			"applied", pulled, "skipped", failed)
	} else if err := s.checkpoints.SaveCheckpoint(ctx, &resp.Pull.NewCheckpoint); err != nil {
		return nil, fmt.Errorf("saving checkpoint: %w", err)
	}

	s.lastSyncAt = &syncedAt
	result := &models.SyncResult{
		Pushed:    resp.Push.Synced,
		Pulled:    pulled,
		Conflicts: len(resp.Push.Conflicts),
		SyncedAt:  syncedAt,
	}
	s.log.Info(ctx, "sync finished",
		"pushed", result.Pushed, "pulled", result.Pulled, "conflicts", result.Conflicts)
	return result, nil
}

// markSynced finalizes one acknowledged outbound record: tombstoned rows are
// now safe to remove physically, the rest get synced_at and a version bump.
func (s *Service) markSynced(ctx context.Context, r models.SyncRecord, syncedAt int64) error {
	table := ToLocal(r.TableName)

	if r.Deleted {
		switch table {
		case TablePortfolios:
			return s.repos.Portfolios.HardDelete(ctx, r.RowID)
		case TableEntries:
			return s.repos.Entries.HardDelete(ctx, r.RowID)
		case TablePayments:
			return s.repos.Payments.HardDelete(ctx, r.RowID)
		}
		return fmt.Errorf("unknown table %q", r.TableName)
	}

	switch table {
	case TablePortfolios:
		return s.repos.Portfolios.MarkSynced(ctx, r.RowID, syncedAt)
	case TableEntries:
		return s.repos.Entries.MarkSynced(ctx, r.RowID, syncedAt)
	case TablePayments:
		return s.repos.Payments.MarkSynced(ctx, r.RowID, syncedAt)
	}
	return fmt.Errorf("unknown table %q", r.TableName)
}

// Status reports the engine's standing without touching the network.
func (s *Service) Status(ctx context.Context) (*models.SyncStatus, error) {
	s.mu.Lock()
	lastSyncAt := s.lastSyncAt
	s.mu.Unlock()

	if lastSyncAt == nil {
		// A checkpoint stored by an earlier run still carries the time of
		// the last successful cycle.
		if cp, err := s.checkpoints.GetCheckpoint(ctx); err == nil && cp != nil {
			if ts, err := time.Parse(time.RFC3339, cp.UpdatedAt); err == nil {
				at := ts.Unix()
				lastSyncAt = &at
			}
		}
	}

	pending := 0
	for _, count := range []func(context.Context) (int, error){
		s.repos.Portfolios.CountUnsynced,
		s.repos.Entries.CountUnsynced,
		s.repos.Payments.CountUnsynced,
	} {
		n, err := count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting pending changes: %w", err)
		}
		pending += n
	}

	return &models.SyncStatus{
		Configured:     s.serverURL != "",
		Authenticated:  s.tokens.Authenticated(),
		LastSyncAt:     lastSyncAt,
		PendingChanges: pending,
		ServerURL:      s.serverURL,
	}, nil
}
