package entries

import (
	"context"

	"github.com/fincatch/fincatch/internal/client/models"
)

// Repository describes storage operations for portfolio Entry rows.
type Repository interface {
	// Insert adds a new locally created entry (dirty, synced_at NULL).
	Insert(ctx context.Context, e *models.Entry) error

	// Upsert writes an entry exactly as given, including sync fields.
	// Used when replaying remote changes; keyed by ID.
	Upsert(ctx context.Context, e *models.Entry) error

	// GetByID returns an entry regardless of its deleted flag.
	GetByID(ctx context.Context, id string) (*models.Entry, error)

	// ListByPortfolio returns active entries of one portfolio.
	ListByPortfolio(ctx context.Context, portfolioID string) ([]models.Entry, error)

	// ListUnsynced returns active entries with unpushed local changes.
	ListUnsynced(ctx context.Context) ([]*models.Entry, error)

	// ListDeletedUnsynced returns soft-deleted entries whose deletion has
	// not been pushed yet.
	ListDeletedUnsynced(ctx context.Context) ([]*models.Entry, error)

	// CountUnsynced counts all dirty rows, active or soft-deleted.
	CountUnsynced(ctx context.Context) (int, error)

	// Update replaces the domain fields of an existing entry and clears
	// synced_at, marking the row for the next push.
	Update(ctx context.Context, e *models.Entry) error

	// SoftDelete flags the entry deleted and dirty.
	SoftDelete(ctx context.Context, id string, deletedAt int64) error

	// SoftDeleteByPortfolio cascades the soft-delete flag to every active
	// entry of a portfolio.
	SoftDeleteByPortfolio(ctx context.Context, portfolioID string, deletedAt int64) error

	// MarkSynced records a successful push: sets synced_at and bumps
	// sync_version by one.
	MarkSynced(ctx context.Context, id string, syncedAt int64) error

	// HardDelete physically removes the row. A missing row is a no-op.
	HardDelete(ctx context.Context, id string) error
}
