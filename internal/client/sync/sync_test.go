package sync

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fincatch/fincatch/internal/client/client"
	"github.com/fincatch/fincatch/internal/client/models"
	"github.com/fincatch/fincatch/internal/logging"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) (*sql.DB, *client.Repositories) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, repos, err := client.InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, repos
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func strPtr(s string) *string { return &s }

func newPortfolio(id string) *models.Portfolio {
	return &models.Portfolio{
		ID:          id,
		Name:        "Portfolio " + id,
		CreatedAt:   1700000000,
		SyncVersion: 1,
	}
}

func newEntry(id, portfolioID string) *models.Entry {
	return &models.Entry{
		ID:            id,
		PortfolioID:   portfolioID,
		AssetType:     models.AssetTypeStock,
		Symbol:        "AAPL",
		Quantity:      10,
		PurchasePrice: 150,
		Currency:      strPtr("USD"),
		PurchaseDate:  1700000000,
		CreatedAt:     1700000000,
		SyncVersion:   1,
	}
}

func newPayment(id, entryID string) *models.CouponPayment {
	return &models.CouponPayment{
		ID:          id,
		EntryID:     entryID,
		PaymentDate: 1700000000,
		Amount:      25,
		Currency:    "USD",
		CreatedAt:   1700000000,
		SyncVersion: 1,
	}
}

// seedTree inserts a dirty portfolio/entry/payment chain.
func seedTree(t *testing.T, repos *client.Repositories) (*models.Portfolio, *models.Entry, *models.CouponPayment) {
	t.Helper()
	ctx := context.Background()

	p := newPortfolio("p1")
	e := newEntry("e1", p.ID)
	c := newPayment("c1", e.ID)
	require.NoError(t, repos.Portfolios.Insert(ctx, p))
	require.NoError(t, repos.Entries.Insert(ctx, e))
	require.NoError(t, repos.Payments.Insert(ctx, c))
	return p, e, c
}
