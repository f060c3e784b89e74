package sync

import (
	"context"
	"fmt"

	"github.com/fincatch/fincatch/internal/client/models"
	"github.com/fincatch/fincatch/internal/client/repositories/entries"
	"github.com/fincatch/fincatch/internal/client/repositories/payments"
	"github.com/fincatch/fincatch/internal/client/repositories/portfolios"
)

// Collector reads the local store and builds the outbound batch: a wire
// envelope for every dirty row across the three synced tables. It never
// mutates anything; marking rows synced happens after the push is
// acknowledged.
type Collector struct {
	portfolioRepo portfolios.Repository
	entryRepo     entries.Repository
	paymentRepo   payments.Repository
}

func NewCollector(portfolioRepo portfolios.Repository, entryRepo entries.Repository, paymentRepo payments.Repository) *Collector {
	return &Collector{
		portfolioRepo: portfolioRepo,
		entryRepo:     entryRepo,
		paymentRepo:   paymentRepo,
	}
}

// Collect returns one SyncRecord per dirty row: full snapshots for active
// rows, tombstones for soft-deleted ones. Output order is not significant;
// the receiving side re-orders by table precedence before applying.
func (c *Collector) Collect(ctx context.Context) ([]models.SyncRecord, error) {
	var batch []models.SyncRecord

	ps, err := c.portfolioRepo.ListUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting portfolios: %w", err)
	}
	for _, p := range ps {
		r, err := portfolioRecord(p)
		if err != nil {
			return nil, err
		}
		batch = append(batch, r)
	}

	es, err := c.entryRepo.ListUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting entries: %w", err)
	}
	for _, e := range es {
		r, err := entryRecord(e)
		if err != nil {
			return nil, err
		}
		batch = append(batch, r)
	}

	pays, err := c.paymentRepo.ListUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting payments: %w", err)
	}
	for _, p := range pays {
		r, err := paymentRecord(p)
		if err != nil {
			return nil, err
		}
		batch = append(batch, r)
	}

	deletedPortfolios, err := c.portfolioRepo.ListDeletedUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting deleted portfolios: %w", err)
	}
	for _, p := range deletedPortfolios {
		batch = append(batch, tombstone(TablePortfolios, p.ID, p.SyncVersion))
	}

	deletedEntries, err := c.entryRepo.ListDeletedUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting deleted entries: %w", err)
	}
	for _, e := range deletedEntries {
		batch = append(batch, tombstone(TableEntries, e.ID, e.SyncVersion))
	}

	deletedPayments, err := c.paymentRepo.ListDeletedUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting deleted payments: %w", err)
	}
	for _, p := range deletedPayments {
		batch = append(batch, tombstone(TablePayments, p.ID, p.SyncVersion))
	}

	return batch, nil
}
