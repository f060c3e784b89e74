package portfolios

import (
	"context"

	"github.com/fincatch/fincatch/internal/client/models"
)

// Repository describes storage operations for Portfolio rows.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// Insert adds a new locally created portfolio (dirty, synced_at NULL).
	Insert(ctx context.Context, p *models.Portfolio) error

	// Upsert writes a portfolio exactly as given, including sync fields.
	// Used when replaying remote changes; keyed by ID.
	Upsert(ctx context.Context, p *models.Portfolio) error

	// GetByID returns a portfolio regardless of its deleted flag.
	GetByID(ctx context.Context, id string) (*models.Portfolio, error)

	// List returns all active (non-deleted) portfolios.
	List(ctx context.Context) ([]models.Portfolio, error)

	// ListUnsynced returns active portfolios with local changes not yet
	// acknowledged by the server (synced_at IS NULL).
	ListUnsynced(ctx context.Context) ([]*models.Portfolio, error)

	// ListDeletedUnsynced returns soft-deleted portfolios whose deletion
	// has not been pushed yet.
	ListDeletedUnsynced(ctx context.Context) ([]*models.Portfolio, error)

	// CountUnsynced counts all dirty rows, active or soft-deleted.
	CountUnsynced(ctx context.Context) (int, error)

	// Update replaces the domain fields of an existing portfolio and
	// clears synced_at, marking the row for the next push.
	Update(ctx context.Context, p *models.Portfolio) error

	// SoftDelete flags the portfolio deleted and dirty. Cascading the
	// flag to children is the caller's job (inside one transaction).
	SoftDelete(ctx context.Context, id string, deletedAt int64) error

	// MarkSynced records a successful push: sets synced_at and bumps
	// sync_version by one.
	MarkSynced(ctx context.Context, id string, syncedAt int64) error

	// HardDelete physically removes the row. A missing row is a no-op.
	HardDelete(ctx context.Context, id string) error
}
