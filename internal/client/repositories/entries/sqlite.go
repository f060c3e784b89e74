package entries

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

const entryColumns = `id, portfolio_id, asset_type, symbol, quantity, purchase_price, currency,
	purchase_date, notes, tags, transaction_fees, source, created_at, unit, gold_type,
	face_value, coupon_rate, maturity_date, coupon_frequency, current_market_price, last_price_update, ytm,
	target_price, stop_loss, alert_enabled, last_alert_at, alert_count, last_alert_type,
	sync_version, synced_at, deleted, deleted_at`

func scanEntry(row interface{ Scan(dest ...any) error }) (*models.Entry, error) {
	e := &models.Entry{}
	err := row.Scan(&e.ID, &e.PortfolioID, &e.AssetType, &e.Symbol, &e.Quantity, &e.PurchasePrice, &e.Currency,
		&e.PurchaseDate, &e.Notes, &e.Tags, &e.TransactionFees, &e.Source, &e.CreatedAt, &e.Unit, &e.GoldType,
		&e.FaceValue, &e.CouponRate, &e.MaturityDate, &e.CouponFrequency, &e.CurrentMarketPrice, &e.LastPriceUpdate, &e.YTM,
		&e.TargetPrice, &e.StopLoss, &e.AlertEnabled, &e.LastAlertAt, &e.AlertCount, &e.LastAlertType,
		&e.SyncVersion, &e.SyncedAt, &e.Deleted, &e.DeletedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func entryArgs(e *models.Entry) []any {
	return []any{
		e.ID, e.PortfolioID, e.AssetType, e.Symbol, e.Quantity, e.PurchasePrice, e.Currency,
		e.PurchaseDate, e.Notes, e.Tags, e.TransactionFees, e.Source, e.CreatedAt, e.Unit, e.GoldType,
		e.FaceValue, e.CouponRate, e.MaturityDate, e.CouponFrequency, e.CurrentMarketPrice, e.LastPriceUpdate, e.YTM,
		e.TargetPrice, e.StopLoss, e.AlertEnabled, e.LastAlertAt, e.AlertCount, e.LastAlertType,
		e.SyncVersion, e.SyncedAt, e.Deleted, e.DeletedAt,
	}
}

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.Entry) error {
	query := `INSERT INTO portfolio_entries (` + entryColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, entryArgs(e)...)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.Entry) error {
	query := `INSERT INTO portfolio_entries (` + entryColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				portfolio_id = excluded.portfolio_id,
				asset_type = excluded.asset_type,
				symbol = excluded.symbol,
				quantity = excluded.quantity,
				purchase_price = excluded.purchase_price,
				currency = excluded.currency,
				purchase_date = excluded.purchase_date,
				notes = excluded.notes,
				tags = excluded.tags,
				transaction_fees = excluded.transaction_fees,
				source = excluded.source,
				created_at = excluded.created_at,
				unit = excluded.unit,
				gold_type = excluded.gold_type,
				face_value = excluded.face_value,
				coupon_rate = excluded.coupon_rate,
				maturity_date = excluded.maturity_date,
				coupon_frequency = excluded.coupon_frequency,
				current_market_price = excluded.current_market_price,
				last_price_update = excluded.last_price_update,
				ytm = excluded.ytm,
				target_price = excluded.target_price,
				stop_loss = excluded.stop_loss,
				alert_enabled = excluded.alert_enabled,
				last_alert_at = excluded.last_alert_at,
				alert_count = excluded.alert_count,
				last_alert_type = excluded.last_alert_type,
				sync_version = excluded.sync_version,
				synced_at = excluded.synced_at,
				deleted = excluded.deleted,
				deleted_at = excluded.deleted_at
	`
	_, err := r.db.ExecContext(ctx, query, entryArgs(e)...)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM portfolio_entries WHERE id = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListByPortfolio(ctx context.Context, portfolioID string) ([]models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM portfolio_entries
			WHERE portfolio_id = ? AND deleted = 0 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM portfolio_entries WHERE synced_at IS NULL AND deleted = 0`
	return r.listPointers(ctx, query)
}

func (r *SQLiteRepository) ListDeletedUnsynced(ctx context.Context) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM portfolio_entries WHERE synced_at IS NULL AND deleted = 1`
	return r.listPointers(ctx, query)
}

func (r *SQLiteRepository) listPointers(ctx context.Context, query string) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) CountUnsynced(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM portfolio_entries WHERE synced_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsynced entries: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, e *models.Entry) error {
	query := `UPDATE portfolio_entries SET
			asset_type = ?, symbol = ?, quantity = ?, purchase_price = ?, currency = ?,
			purchase_date = ?, notes = ?, tags = ?, transaction_fees = ?, source = ?,
			unit = ?, gold_type = ?, face_value = ?, coupon_rate = ?, maturity_date = ?,
			coupon_frequency = ?, current_market_price = ?, last_price_update = ?, ytm = ?,
			target_price = ?, stop_loss = ?, alert_enabled = ?, last_alert_at = ?, alert_count = ?, last_alert_type = ?,
			synced_at = NULL
		WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query,
		e.AssetType, e.Symbol, e.Quantity, e.PurchasePrice, e.Currency,
		e.PurchaseDate, e.Notes, e.Tags, e.TransactionFees, e.Source,
		e.Unit, e.GoldType, e.FaceValue, e.CouponRate, e.MaturityDate,
		e.CouponFrequency, e.CurrentMarketPrice, e.LastPriceUpdate, e.YTM,
		e.TargetPrice, e.StopLoss, e.AlertEnabled, e.LastAlertAt, e.AlertCount, e.LastAlertType,
		e.ID)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return requireOneRow(res, e.ID)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, deletedAt int64) error {
	query := `UPDATE portfolio_entries SET deleted = 1, deleted_at = ?, synced_at = NULL WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, deletedAt, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete entry: %w", err)
	}
	return requireOneRow(res, id)
}

func (r *SQLiteRepository) SoftDeleteByPortfolio(ctx context.Context, portfolioID string, deletedAt int64) error {
	query := `UPDATE portfolio_entries SET deleted = 1, deleted_at = ?, synced_at = NULL
			WHERE portfolio_id = ? AND deleted = 0`
	_, err := r.db.ExecContext(ctx, query, deletedAt, portfolioID)
	if err != nil {
		return fmt.Errorf("failed to cascade soft-delete to entries: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, syncedAt int64) error {
	query := `UPDATE portfolio_entries SET synced_at = ?, sync_version = sync_version + 1 WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, syncedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark entry synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) HardDelete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM portfolio_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to hard-delete entry: %w", err)
	}
	return nil
}

func requireOneRow(res sql.Result, id string) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("entry %s: %w", id, common.ErrNotFound)
	}
	return nil
}
