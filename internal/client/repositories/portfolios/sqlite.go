package portfolios

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

const portfolioColumns = `id, name, description, base_currency, created_at, sync_version, synced_at, deleted, deleted_at`

func scanPortfolio(row interface{ Scan(dest ...any) error }) (*models.Portfolio, error) {
	p := &models.Portfolio{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.BaseCurrency, &p.CreatedAt,
		&p.SyncVersion, &p.SyncedAt, &p.Deleted, &p.DeletedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, p *models.Portfolio) error {
	query := `INSERT INTO portfolios (id, name, description, base_currency, created_at, sync_version, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.BaseCurrency, p.CreatedAt, p.SyncVersion, p.SyncedAt)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p *models.Portfolio) error {
	query := `INSERT INTO portfolios (id, name, description, base_currency, created_at, sync_version, synced_at, deleted, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				description = excluded.description,
				base_currency = excluded.base_currency,
				created_at = excluded.created_at,
				sync_version = excluded.sync_version,
				synced_at = excluded.synced_at,
				deleted = excluded.deleted,
				deleted_at = excluded.deleted_at
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.BaseCurrency, p.CreatedAt,
		p.SyncVersion, p.SyncedAt, p.Deleted, p.DeletedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE id = ?`
	p, err := scanPortfolio(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("portfolio %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE deleted = 0 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select portfolios: %w", err)
	}
	defer rows.Close()

	var result []models.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]*models.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE synced_at IS NULL AND deleted = 0`
	return r.listPointers(ctx, query)
}

func (r *SQLiteRepository) ListDeletedUnsynced(ctx context.Context) ([]*models.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE synced_at IS NULL AND deleted = 1`
	return r.listPointers(ctx, query)
}

func (r *SQLiteRepository) listPointers(ctx context.Context, query string) ([]*models.Portfolio, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select portfolios: %w", err)
	}
	defer rows.Close()

	var result []*models.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) CountUnsynced(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM portfolios WHERE synced_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsynced portfolios: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, p *models.Portfolio) error {
	query := `UPDATE portfolios SET name = ?, description = ?, base_currency = ?, synced_at = NULL
			WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Description, p.BaseCurrency, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	return requireOneRow(res, p.ID)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, deletedAt int64) error {
	query := `UPDATE portfolios SET deleted = 1, deleted_at = ?, synced_at = NULL WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, deletedAt, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete portfolio: %w", err)
	}
	return requireOneRow(res, id)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, syncedAt int64) error {
	query := `UPDATE portfolios SET synced_at = ?, sync_version = sync_version + 1 WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, syncedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark portfolio synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) HardDelete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to hard-delete portfolio: %w", err)
	}
	return nil
}

func requireOneRow(res sql.Result, id string) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("portfolio %s: %w", id, common.ErrNotFound)
	}
	return nil
}
