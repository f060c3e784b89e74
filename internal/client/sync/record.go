package sync

import (
	"fmt"

	"github.com/fincatch/fincatch/internal/client/models"
)

// portfolioRecord converts an active dirty portfolio into its wire envelope.
func portfolioRecord(p *models.Portfolio) (models.SyncRecord, error) {
	data, err := models.WrapData(&models.PortfolioData{
		Name:         p.Name,
		Description:  p.Description,
		BaseCurrency: p.BaseCurrency,
		CreatedAt:    p.CreatedAt,
	})
	if err != nil {
		return models.SyncRecord{}, fmt.Errorf("portfolio %s: %w", p.ID, err)
	}
	return models.SyncRecord{
		TableName: WirePortfolios,
		RowID:     p.ID,
		Data:      data,
		Version:   p.SyncVersion,
	}, nil
}

// entryRecord converts an active dirty entry into its wire envelope. The
// parent portfolio travels as its id so the record is self-contained.
func entryRecord(e *models.Entry) (models.SyncRecord, error) {
	data, err := models.WrapData(&models.EntryData{
		PortfolioSyncUUID:  e.PortfolioID,
		AssetType:          string(e.AssetType),
		Symbol:             e.Symbol,
		Quantity:           e.Quantity,
		PurchasePrice:      e.PurchasePrice,
		Currency:           e.Currency,
		PurchaseDate:       e.PurchaseDate,
		Notes:              e.Notes,
		Tags:               e.Tags,
		TransactionFees:    e.TransactionFees,
		Source:             e.Source,
		CreatedAt:          e.CreatedAt,
		Unit:               e.Unit,
		GoldType:           e.GoldType,
		FaceValue:          e.FaceValue,
		CouponRate:         e.CouponRate,
		MaturityDate:       e.MaturityDate,
		CouponFrequency:    e.CouponFrequency,
		CurrentMarketPrice: e.CurrentMarketPrice,
		LastPriceUpdate:    e.LastPriceUpdate,
		YTM:                e.YTM,
		TargetPrice:        e.TargetPrice,
		StopLoss:           e.StopLoss,
		AlertEnabled:       e.AlertEnabled,
		LastAlertAt:        e.LastAlertAt,
		AlertCount:         e.AlertCount,
		LastAlertType:      e.LastAlertType,
	})
	if err != nil {
		return models.SyncRecord{}, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	return models.SyncRecord{
		TableName: WireEntries,
		RowID:     e.ID,
		Data:      data,
		Version:   e.SyncVersion,
	}, nil
}

// paymentRecord converts an active dirty coupon payment into its wire envelope.
func paymentRecord(p *models.CouponPayment) (models.SyncRecord, error) {
	data, err := models.WrapData(&models.PaymentData{
		EntrySyncUUID: p.EntryID,
		PaymentDate:   p.PaymentDate,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
	})
	if err != nil {
		return models.SyncRecord{}, fmt.Errorf("payment %s: %w", p.ID, err)
	}
	return models.SyncRecord{
		TableName: WirePayments,
		RowID:     p.ID,
		Data:      data,
		Version:   p.SyncVersion,
	}, nil
}

// tombstone builds the envelope for a soft-deleted row: identity and version
// only, empty payload.
func tombstone(localTable, rowID string, version int64) models.SyncRecord {
	return models.SyncRecord{
		TableName: ToWire(localTable),
		RowID:     rowID,
		Data:      models.EmptyData,
		Version:   version,
		Deleted:   true,
	}
}
