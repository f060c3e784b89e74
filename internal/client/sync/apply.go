package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fincatch/fincatch/internal/client/models"
	"github.com/fincatch/fincatch/internal/client/repositories/entries"
	"github.com/fincatch/fincatch/internal/client/repositories/payments"
	"github.com/fincatch/fincatch/internal/client/repositories/portfolios"
	"github.com/fincatch/fincatch/internal/common"
	"github.com/fincatch/fincatch/internal/logging"
)

// Applier replays an inbound batch of remote records into the local store.
// Upserts run parent-first and tombstones child-first so foreign keys never
// break mid-batch; replaying the same batch twice is a no-op.
type Applier struct {
	portfolioRepo portfolios.Repository
	entryRepo     entries.Repository
	paymentRepo   payments.Repository
	log           logging.Logger
}

func NewApplier(portfolioRepo portfolios.Repository, entryRepo entries.Repository, paymentRepo payments.Repository, log logging.Logger) *Applier {
	return &Applier{
		portfolioRepo: portfolioRepo,
		entryRepo:     entryRepo,
		paymentRepo:   paymentRepo,
		log:           log,
	}
}

// Apply ingests the batch and returns how many records landed and how many
// were skipped. A record that fails on its own (malformed payload, parent not
// present yet) is logged and skipped; it does not stop the rest of the batch.
// A nonzero failed count means the batch was only partially replayed, so the
// caller must not advance the pull checkpoint past it.
func (a *Applier) Apply(ctx context.Context, records []models.SyncRecord) (applied, failed int) {
	var upserts, tombstones []models.SyncRecord
	for _, r := range records {
		if r.Deleted {
			tombstones = append(tombstones, r)
		} else {
			upserts = append(upserts, r)
		}
	}

	// Parents before children for upserts, children before parents for
	// deletes.
	sort.SliceStable(upserts, func(i, j int) bool {
		return precedence(ToLocal(upserts[i].TableName)) < precedence(ToLocal(upserts[j].TableName))
	})
	sort.SliceStable(tombstones, func(i, j int) bool {
		return precedence(ToLocal(tombstones[i].TableName)) > precedence(ToLocal(tombstones[j].TableName))
	})

	syncedAt := time.Now().Unix()

	for _, r := range upserts {
		if err := a.applyUpsert(ctx, r, syncedAt); err != nil {
			a.logSkip(ctx, r, err)
			failed++
			continue
		}
		applied++
	}
	for _, r := range tombstones {
		if err := a.applyTombstone(ctx, r); err != nil {
			a.logSkip(ctx, r, err)
			failed++
			continue
		}
		applied++
	}
	return applied, failed
}

func (a *Applier) logSkip(ctx context.Context, r models.SyncRecord, err error) {
	level := a.log.Error
	if errors.Is(err, common.ErrParentMissing) {
		// Retryable anomaly, not corruption.
		level = a.log.Warn
	}
	level(ctx, "skipping inbound record",
		"table", r.TableName, "rowId", r.RowID, "error", err)
}

func (a *Applier) applyUpsert(ctx context.Context, r models.SyncRecord, syncedAt int64) error {
	switch ToLocal(r.TableName) {
	case TablePortfolios:
		d, err := r.PortfolioPayload()
		if err != nil {
			return err
		}
		return a.portfolioRepo.Upsert(ctx, &models.Portfolio{
			ID:           r.RowID,
			Name:         d.Name,
			Description:  d.Description,
			BaseCurrency: d.BaseCurrency,
			CreatedAt:    d.CreatedAt,
			SyncVersion:  r.Version,
			SyncedAt:     &syncedAt,
		})

	case TableEntries:
		d, err := r.EntryPayload()
		if err != nil {
			return err
		}
		if err := a.requireParent(ctx, TablePortfolios, d.PortfolioSyncUUID); err != nil {
			return err
		}
		return a.entryRepo.Upsert(ctx, &models.Entry{
			ID:                 r.RowID,
			PortfolioID:        d.PortfolioSyncUUID,
			AssetType:          models.AssetType(d.AssetType),
			Symbol:             d.Symbol,
			Quantity:           d.Quantity,
			PurchasePrice:      d.PurchasePrice,
			Currency:           d.Currency,
			PurchaseDate:       d.PurchaseDate,
			Notes:              d.Notes,
			Tags:               d.Tags,
			TransactionFees:    d.TransactionFees,
			Source:             d.Source,
			CreatedAt:          d.CreatedAt,
			Unit:               d.Unit,
			GoldType:           d.GoldType,
			FaceValue:          d.FaceValue,
			CouponRate:         d.CouponRate,
			MaturityDate:       d.MaturityDate,
			CouponFrequency:    d.CouponFrequency,
			CurrentMarketPrice: d.CurrentMarketPrice,
			LastPriceUpdate:    d.LastPriceUpdate,
			YTM:                d.YTM,
			TargetPrice:        d.TargetPrice,
			StopLoss:           d.StopLoss,
			AlertEnabled:       d.AlertEnabled,
			LastAlertAt:        d.LastAlertAt,
			AlertCount:         d.AlertCount,
			LastAlertType:      d.LastAlertType,
			SyncVersion:        r.Version,
			SyncedAt:           &syncedAt,
		})

	case TablePayments:
		d, err := r.PaymentPayload()
		if err != nil {
			return err
		}
		if err := a.requireParent(ctx, TableEntries, d.EntrySyncUUID); err != nil {
			return err
		}
		return a.paymentRepo.Upsert(ctx, &models.CouponPayment{
			ID:          r.RowID,
			EntryID:     d.EntrySyncUUID,
			PaymentDate: d.PaymentDate,
			Amount:      d.Amount,
			Currency:    d.Currency,
			Notes:       d.Notes,
			CreatedAt:   d.CreatedAt,
			SyncVersion: r.Version,
			SyncedAt:    &syncedAt,
		})

	default:
		return fmt.Errorf("unknown table %q: %w", r.TableName, common.ErrProtocol)
	}
}

// requireParent verifies the referenced parent row already exists locally.
// An absent parent means the server handed us a child ahead of its parent.
func (a *Applier) requireParent(ctx context.Context, parentTable, parentID string) error {
	if parentID == "" {
		return fmt.Errorf("empty parent reference: %w", common.ErrProtocol)
	}

	var err error
	switch parentTable {
	case TablePortfolios:
		_, err = a.portfolioRepo.GetByID(ctx, parentID)
	case TableEntries:
		_, err = a.entryRepo.GetByID(ctx, parentID)
	}
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", parentTable, parentID, common.ErrParentMissing)
	}
	return err
}

// applyTombstone hard-deletes the row. Remote deletes skip the local
// soft-delete phase: there is nothing left to reconcile. Deleting an absent
// row is a no-op, which keeps replays harmless.
func (a *Applier) applyTombstone(ctx context.Context, r models.SyncRecord) error {
	switch ToLocal(r.TableName) {
	case TablePortfolios:
		return a.portfolioRepo.HardDelete(ctx, r.RowID)
	case TableEntries:
		return a.entryRepo.HardDelete(ctx, r.RowID)
	case TablePayments:
		return a.paymentRepo.HardDelete(ctx, r.RowID)
	default:
		return fmt.Errorf("unknown table %q: %w", r.TableName, common.ErrProtocol)
	}
}
