package syncmeta

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fincatch/fincatch/internal/client/models"
	"github.com/fincatch/fincatch/internal/common"
	"github.com/fincatch/fincatch/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetCheckpoint(ctx context.Context) (*models.Checkpoint, error) {
	query := `SELECT checkpoint_updated_at, checkpoint_id FROM sync_metadata WHERE key = ? LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, common.CheckpointKey)

	var updatedAt, id sql.NullString
	err := row.Scan(&updatedAt, &id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	if !updatedAt.Valid || !id.Valid {
		return nil, nil
	}
	return &models.Checkpoint{UpdatedAt: updatedAt.String, ID: id.String}, nil
}

func (r *SQLiteRepository) SaveCheckpoint(ctx context.Context, cp *models.Checkpoint) error {
	query := `INSERT INTO sync_metadata (key, checkpoint_updated_at, checkpoint_id) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET checkpoint_updated_at = excluded.checkpoint_updated_at,
				checkpoint_id = excluded.checkpoint_id`
	_, err := r.db.ExecContext(ctx, query, common.CheckpointKey, cp.UpdatedAt, cp.ID)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}
