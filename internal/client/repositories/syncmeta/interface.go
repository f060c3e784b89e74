package syncmeta

import (
	"context"

	"github.com/fincatch/fincatch/internal/client/models"
)

// Repository persists the single sync checkpoint row. The checkpoint always
// corresponds to the most recent successful pull; callers must only save it
// after the whole inbound batch has been applied.
type Repository interface {
	// GetCheckpoint returns the stored cursor, or nil when no pull has
	// succeeded yet.
	GetCheckpoint(ctx context.Context) (*models.Checkpoint, error)

	// SaveCheckpoint atomically replaces the stored cursor.
	SaveCheckpoint(ctx context.Context, cp *models.Checkpoint) error
}
