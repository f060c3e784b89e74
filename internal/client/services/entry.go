package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fincatch/fincatch/internal/client/models"
	"github.com/fincatch/fincatch/internal/client/repositories/entries"
	"github.com/fincatch/fincatch/internal/client/repositories/payments"
	"github.com/fincatch/fincatch/internal/client/repositories/portfolios"
	"github.com/fincatch/fincatch/internal/common"
	"github.com/fincatch/fincatch/internal/dbx"
	"github.com/fincatch/fincatch/internal/finance"
)

type EntryService interface {
	// Add stores a new holding. The caller fills the domain fields; id,
	// creation time and sync bookkeeping are assigned here.
	Add(ctx context.Context, e *models.Entry) error
	Get(ctx context.Context, id string) (*models.Entry, error)
	ListByPortfolio(ctx context.Context, portfolioID string) ([]models.Entry, error)
	Update(ctx context.Context, e *models.Entry) error
	// Delete soft-deletes the entry and its coupon payments.
	Delete(ctx context.Context, id string) error
	// CouponSchedule projects the expected coupon payouts of a bond entry.
	CouponSchedule(ctx context.Context, id string) ([]finance.ScheduledPayment, error)
}

type entryService struct {
	db            *sql.DB
	entryRepo     entries.Repository
	portfolioRepo portfolios.Repository
}

func NewEntryService(db *sql.DB, entryRepo entries.Repository, portfolioRepo portfolios.Repository) EntryService {
	return &entryService{db: db, entryRepo: entryRepo, portfolioRepo: portfolioRepo}
}

func validateEntry(e *models.Entry) error {
	switch e.AssetType {
	case models.AssetTypeStock, models.AssetTypeGold, models.AssetTypeBond:
	default:
		return fmt.Errorf("asset type %q: %w", e.AssetType, common.ErrInvalidAssetType)
	}
	if e.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if e.Currency != nil && !finance.IsValidCurrency(*e.Currency) {
		return fmt.Errorf("currency %q: %w", *e.Currency, common.ErrInvalidCurrency)
	}
	if e.CouponFrequency != nil {
		if _, ok := finance.PeriodsPerYear(*e.CouponFrequency); !ok {
			return fmt.Errorf("coupon frequency %q: %w", *e.CouponFrequency, common.ErrInvalidAssetType)
		}
	}
	return nil
}

func (s *entryService) Add(ctx context.Context, e *models.Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}

	parent, err := s.portfolioRepo.GetByID(ctx, e.PortfolioID)
	if err != nil {
		return fmt.Errorf("portfolio %s: %w", e.PortfolioID, err)
	}
	if parent.Deleted {
		return fmt.Errorf("portfolio %s: %w", e.PortfolioID, common.ErrNotFound)
	}

	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().Unix()
	e.SyncVersion = 1
	e.SyncedAt = nil
	e.Deleted = false
	e.DeletedAt = nil

	if err := s.entryRepo.Insert(ctx, e); err != nil {
		return fmt.Errorf("saving entry: %w", err)
	}
	return nil
}

func (s *entryService) Get(ctx context.Context, id string) (*models.Entry, error) {
	return s.entryRepo.GetByID(ctx, id)
}

func (s *entryService) ListByPortfolio(ctx context.Context, portfolioID string) ([]models.Entry, error) {
	return s.entryRepo.ListByPortfolio(ctx, portfolioID)
}

func (s *entryService) Update(ctx context.Context, e *models.Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	return s.entryRepo.Update(ctx, e)
}

func (s *entryService) Delete(ctx context.Context, id string) error {
	deletedAt := time.Now().Unix()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := payments.NewSQLiteRepository(tx).SoftDeleteByEntry(ctx, id, deletedAt); err != nil {
			return fmt.Errorf("deleting payments: %w", err)
		}
		if err := entries.NewSQLiteRepository(tx).SoftDelete(ctx, id, deletedAt); err != nil {
			return fmt.Errorf("deleting entry: %w", err)
		}
		return nil
	})
}

func (s *entryService) CouponSchedule(ctx context.Context, id string) ([]finance.ScheduledPayment, error) {
	e, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return finance.Schedule(e)
}
