// Package services implements the client-side application layer: CRUD over
// the local store with the bookkeeping the sync engine depends on (dirty
// marking, soft-delete cascades, id assignment).
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

type PortfolioService interface {
	Create(ctx context.Context, name string, description, baseCurrency *string) (*models.Portfolio, error)
	Get(ctx context.Context, id string) (*models.Portfolio, error)
	List(ctx context.Context) ([]models.Portfolio, error)
	Update(ctx context.Context, p *models.Portfolio) error
	// Delete soft-deletes the portfolio and everything under it, one
	// transaction. The rows stay local until their tombstones are pushed.
	Delete(ctx context.Context, id string) error
}

type portfolioService struct {
	db            *sql.DB
	portfolioRepo portfolios.Repository
}

func NewPortfolioService(db *sql.DB, portfolioRepo portfolios.Repository) PortfolioService {
	return &portfolioService{db: db, portfolioRepo: portfolioRepo}
}

func (s *portfolioService) Create(ctx context.Context, name string, description, baseCurrency *string) (*models.Portfolio, error) {
	if name == "" {
		return nil, fmt.Errorf("portfolio name is required")
	}
	if baseCurrency != nil && !finance.IsValidCurrency(*baseCurrency) {
		return nil, fmt.Errorf("base currency %q: %w", *baseCurrency, common.ErrInvalidCurrency)
	}

	p := &models.Portfolio{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		BaseCurrency: baseCurrency,
		CreatedAt:    time.Now().Unix(),
		SyncVersion:  1,
	}

	if err := s.portfolioRepo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("saving portfolio: %w", err)
	}
	return p, nil
}

func (s *portfolioService) Get(ctx context.Context, id string) (*models.Portfolio, error) {
	return s.portfolioRepo.GetByID(ctx, id)
}

func (s *portfolioService) List(ctx context.Context) ([]models.Portfolio, error) {
	return s.portfolioRepo.List(ctx)
}

func (s *portfolioService) Update(ctx context.Context, p *models.Portfolio) error {
	if p.Name == "" {
		return fmt.Errorf("portfolio name is required")
	}
	if p.BaseCurrency != nil && !finance.IsValidCurrency(*p.BaseCurrency) {
		return fmt.Errorf("base currency %q: %w", *p.BaseCurrency, common.ErrInvalidCurrency)
	}
	return s.portfolioRepo.Update(ctx, p)
}

func (s *portfolioService) Delete(ctx context.Context, id string) error {
	deletedAt := time.Now().Unix()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := payments.NewSQLiteRepository(tx).SoftDeleteByPortfolio(ctx, id, deletedAt); err != nil {
			return fmt.Errorf("deleting payments: %w", err)
		}
		if err := entries.NewSQLiteRepository(tx).SoftDeleteByPortfolio(ctx, id, deletedAt); err != nil {
			return fmt.Errorf("deleting entries: %w", err)
		}
		if err := portfolios.NewSQLiteRepository(tx).SoftDelete(ctx, id, deletedAt); err != nil {
			return fmt.Errorf("deleting portfolio: %w", err)
		}
		return nil
	})
}
