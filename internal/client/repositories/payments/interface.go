package payments

import (
	"context"

	"github.com/fincatch/fincatch/internal/client/models"
)

// Repository describes storage operations for bond CouponPayment rows.
type Repository interface {
	// Insert adds a new locally created payment (dirty, synced_at NULL).
	Insert(ctx context.Context, p *models.CouponPayment) error

	// Upsert writes a payment exactly as given, including sync fields.
	// Used when replaying remote changes; keyed by ID.
	Upsert(ctx context.Context, p *models.CouponPayment) error

	// GetByID returns a payment regardless of its deleted flag.
	GetByID(ctx context.Context, id string) (*models.CouponPayment, error)

	// ListByEntry returns active payments of one entry.
	ListByEntry(ctx context.Context, entryID string) ([]models.CouponPayment, error)

	// ListUnsynced returns active payments with unpushed local changes.
	ListUnsynced(ctx context.Context) ([]*models.CouponPayment, error)

	// ListDeletedUnsynced returns soft-deleted payments whose deletion has
	// not been pushed yet.
	ListDeletedUnsynced(ctx context.Context) ([]*models.CouponPayment, error)

	// CountUnsynced counts all dirty rows, active or soft-deleted.
	CountUnsynced(ctx context.Context) (int, error)

	// Update replaces the domain fields of an existing payment and clears
	// synced_at, marking the row for the next push.
	Update(ctx context.Context, p *models.CouponPayment) error

	// SoftDelete flags the payment deleted and dirty.
	SoftDelete(ctx context.Context, id string, deletedAt int64) error

	// SoftDeleteByEntry cascades the soft-delete flag to every active
	// payment of an entry.
	SoftDeleteByEntry(ctx context.Context, entryID string, deletedAt int64) error

	// SoftDeleteByPortfolio cascades the soft-delete flag to every active
	// payment under a portfolio's entries.
	SoftDeleteByPortfolio(ctx context.Context, portfolioID string, deletedAt int64) error

	// MarkSynced records a successful push: sets synced_at and bumps
	// sync_version by one.
	MarkSynced(ctx context.Context, id string, syncedAt int64) error

	// HardDelete physically removes the row. A missing row is a no-op.
	HardDelete(ctx context.Context, id string) error
}
