package payments

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

const paymentColumns = `id, entry_id, payment_date, amount, currency, notes, created_at, sync_version, synced_at, deleted, deleted_at`

func scanPayment(row interface{ Scan(dest ...any) error }) (*models.CouponPayment, error) {
	p := &models.CouponPayment{}
	err := row.Scan(&p.ID, &p.EntryID, &p.PaymentDate, &p.Amount, &p.Currency, &p.Notes,
		&p.CreatedAt, &p.SyncVersion, &p.SyncedAt, &p.Deleted, &p.DeletedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, p *models.CouponPayment) error {
	query := `INSERT INTO bond_coupon_payments (id, entry_id, payment_date, amount, currency, notes, created_at, sync_version, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.EntryID, p.PaymentDate, p.Amount, p.Currency, p.Notes, p.CreatedAt, p.SyncVersion, p.SyncedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p *models.CouponPayment) error {
	query := `INSERT INTO bond_coupon_payments (` + paymentColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				entry_id = excluded.entry_id,
				payment_date = excluded.payment_date,
				amount = excluded.amount,
				currency = excluded.currency,
				notes = excluded.notes,
				created_at = excluded.created_at,
				sync_version = excluded.sync_version,
				synced_at = excluded.synced_at,
				deleted = excluded.deleted,
				deleted_at = excluded.deleted_at
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.EntryID, p.PaymentDate, p.Amount, p.Currency, p.Notes,
		p.CreatedAt, p.SyncVersion, p.SyncedAt, p.Deleted, p.DeletedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert payment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.CouponPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM bond_coupon_payments WHERE id = ?`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListByEntry(ctx context.Context, entryID string) ([]models.CouponPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM bond_coupon_payments
			WHERE entry_id = ? AND deleted = 0 ORDER BY payment_date ASC`
	rows, err := r.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to select payments: %w", err)
	}
	defer rows.Close()

	var result []models.CouponPayment
	for rows.Next() {
		p, err := scanPayment(rows)
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

func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]*models.CouponPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM bond_coupon_payments WHERE synced_at IS NULL AND deleted = 0`
	return r.listPointers(ctx, query)
}

func (r *SQLiteRepository) ListDeletedUnsynced(ctx context.Context) ([]*models.CouponPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM bond_coupon_payments WHERE synced_at IS NULL AND deleted = 1`
	return r.listPointers(ctx, query)
}

func (r *SQLiteRepository) listPointers(ctx context.Context, query string) ([]*models.CouponPayment, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select payments: %w", err)
	}
	defer rows.Close()

	var result []*models.CouponPayment
	for rows.Next() {
		p, err := scanPayment(rows)
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
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bond_coupon_payments WHERE synced_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsynced payments: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, p *models.CouponPayment) error {
	query := `UPDATE bond_coupon_payments SET payment_date = ?, amount = ?, currency = ?, notes = ?, synced_at = NULL
			WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, p.PaymentDate, p.Amount, p.Currency, p.Notes, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return requireOneRow(res, p.ID)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, deletedAt int64) error {
	query := `UPDATE bond_coupon_payments SET deleted = 1, deleted_at = ?, synced_at = NULL WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, deletedAt, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete payment: %w", err)
	}
	return requireOneRow(res, id)
}

func (r *SQLiteRepository) SoftDeleteByEntry(ctx context.Context, entryID string, deletedAt int64) error {
	query := `UPDATE bond_coupon_payments SET deleted = 1, deleted_at = ?, synced_at = NULL
			WHERE entry_id = ? AND deleted = 0`
	_, err := r.db.ExecContext(ctx, query, deletedAt, entryID)
	if err != nil {
		return fmt.Errorf("failed to cascade soft-delete to payments: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SoftDeleteByPortfolio(ctx context.Context, portfolioID string, deletedAt int64) error {
	query := `UPDATE bond_coupon_payments SET deleted = 1, deleted_at = ?, synced_at = NULL
			WHERE entry_id IN (SELECT id FROM portfolio_entries WHERE portfolio_id = ?) AND deleted = 0`
	_, err := r.db.ExecContext(ctx, query, deletedAt, portfolioID)
	if err != nil {
		return fmt.Errorf("failed to cascade soft-delete to payments: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, syncedAt int64) error {
	query := `UPDATE bond_coupon_payments SET synced_at = ?, sync_version = sync_version + 1 WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, syncedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark payment synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) HardDelete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bond_coupon_payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to hard-delete payment: %w", err)
	}
	return nil
}

func requireOneRow(res sql.Result, id string) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("payment %s: %w", id, common.ErrNotFound)
	}
	return nil
}
