package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincatch/fincatch/internal/client/models"
	"github.com/fincatch/fincatch/internal/common"
)

func TestPaymentServiceAdd(t *testing.T) {
	db, repos := setupDB(t)
	portfolioSvc := NewPortfolioService(db, repos.Portfolios)
	entrySvc := NewEntryService(db, repos.Entries, repos.Portfolios)
	paymentSvc := NewPaymentService(repos.Payments, repos.Entries)
	ctx := context.Background()

	p, err := portfolioSvc.Create(ctx, "Bonds", nil, nil)
	require.NoError(t, err)
	e := bondFixture(p.ID)
	require.NoError(t, entrySvc.Add(ctx, e))

	pay := &models.CouponPayment{EntryID: e.ID, PaymentDate: 1700000000, Amount: 25, Currency: "USD"}
	require.NoError(t, paymentSvc.Add(ctx, pay))
	assert.NotEmpty(t, pay.ID)
	assert.EqualValues(t, 1, pay.SyncVersion)

	list, err := paymentSvc.ListByEntry(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 25.0, list[0].Amount)
}

func TestPaymentServiceAddValidation(t *testing.T) {
	db, repos := setupDB(t)
	portfolioSvc := NewPortfolioService(db, repos.Portfolios)
	entrySvc := NewEntryService(db, repos.Entries, repos.Portfolios)
	paymentSvc := NewPaymentService(repos.Payments, repos.Entries)
	ctx := context.Background()

	p, err := portfolioSvc.Create(ctx, "Mixed", nil, nil)
	require.NoError(t, err)

	stock := &models.Entry{
		PortfolioID:   p.ID,
		AssetType:     models.AssetTypeStock,
		Symbol:        "AAPL",
		Quantity:      10,
		PurchasePrice: 150,
		PurchaseDate:  1700000000,
	}
	require.NoError(t, entrySvc.Add(ctx, stock))

	// Coupons only attach to bonds.
	pay := &models.CouponPayment{EntryID: stock.ID, PaymentDate: 1700000000, Amount: 25, Currency: "USD"}
	assert.ErrorIs(t, paymentSvc.Add(ctx, pay), common.ErrInvalidAssetType)

	pay = &models.CouponPayment{EntryID: "missing", PaymentDate: 1700000000, Amount: 25, Currency: "USD"}
	assert.ErrorIs(t, paymentSvc.Add(ctx, pay), common.ErrNotFound)

	pay = &models.CouponPayment{EntryID: stock.ID, PaymentDate: 1700000000, Amount: 25, Currency: "???"}
	assert.ErrorIs(t, paymentSvc.Add(ctx, pay), common.ErrInvalidCurrency)
}

func TestPaymentServicePrefill(t *testing.T) {
	db, repos := setupDB(t)
	portfolioSvc := NewPortfolioService(db, repos.Portfolios)
	entrySvc := NewEntryService(db, repos.Entries, repos.Portfolios)
	paymentSvc := NewPaymentService(repos.Payments, repos.Entries)
	ctx := context.Background()

	p, err := portfolioSvc.Create(ctx, "Bonds", nil, nil)
	require.NoError(t, err)
	e := bondFixture(p.ID)
	require.NoError(t, entrySvc.Add(ctx, e))

	drafts, err := paymentSvc.Prefill(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, drafts, 4)
	for _, d := range drafts {
		assert.Equal(t, e.ID, d.EntryID)
		assert.Equal(t, "USD", d.Currency)
		assert.Equal(t, 25.0, d.Amount)
		assert.Empty(t, d.ID)
	}
}
