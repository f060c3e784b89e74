package models

import (
	"encoding/json"
	"fmt"
)

// SyncRecord is the transport-neutral envelope for one row change. Data holds
// the wire payload for exactly one of the three known table kinds; tombstones
// (Deleted=true) carry an empty object.
type SyncRecord struct {
	TableName string          `json:"tableName"`
	RowID     string          `json:"rowId"`
	Data      json.RawMessage `json:"data"`
	Version   int64           `json:"version"`
	Deleted   bool            `json:"deleted"`
}

// EmptyData is the payload of a tombstone record.
var EmptyData = json.RawMessage(`{}`)

// PortfolioData is the wire payload of a portfolio record. Optional fields
// use pointers with omitempty so unset values are stripped from the envelope,
// matching the server's null-free contract.
type PortfolioData struct {
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	BaseCurrency *string `json:"baseCurrency,omitempty"`
	CreatedAt    int64   `json:"createdAt"`
}

// EntryData is the wire payload of a portfolio entry record. The parent
// portfolio travels as its UUID so the envelope is self-contained.
type EntryData struct {
	PortfolioSyncUUID  string   `json:"portfolioSyncUuid"`
	AssetType          string   `json:"assetType"`
	Symbol             string   `json:"symbol"`
	Quantity           float64  `json:"quantity"`
	PurchasePrice      float64  `json:"purchasePrice"`
	Currency           *string  `json:"currency,omitempty"`
	PurchaseDate       int64    `json:"purchaseDate"`
	Notes              *string  `json:"notes,omitempty"`
	Tags               *string  `json:"tags,omitempty"`
	TransactionFees    *float64 `json:"transactionFees,omitempty"`
	Source             *string  `json:"source,omitempty"`
	CreatedAt          int64    `json:"createdAt"`
	Unit               *string  `json:"unit,omitempty"`
	GoldType           *string  `json:"goldType,omitempty"`
	FaceValue          *float64 `json:"faceValue,omitempty"`
	CouponRate         *float64 `json:"couponRate,omitempty"`
	MaturityDate       *int64   `json:"maturityDate,omitempty"`
	CouponFrequency    *string  `json:"couponFrequency,omitempty"`
	CurrentMarketPrice *float64 `json:"currentMarketPrice,omitempty"`
	LastPriceUpdate    *int64   `json:"lastPriceUpdate,omitempty"`
	YTM                *float64 `json:"ytm,omitempty"`
	TargetPrice        *float64 `json:"targetPrice,omitempty"`
	StopLoss           *float64 `json:"stopLoss,omitempty"`
	AlertEnabled       *bool    `json:"alertEnabled,omitempty"`
	LastAlertAt        *int64   `json:"lastAlertAt,omitempty"`
	AlertCount         *int64   `json:"alertCount,omitempty"`
	LastAlertType      *string  `json:"lastAlertType,omitempty"`
}

// PaymentData is the wire payload of a bond coupon payment record.
type PaymentData struct {
	EntrySyncUUID string  `json:"entrySyncUuid"`
	PaymentDate   int64   `json:"paymentDate"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Notes         *string `json:"notes,omitempty"`
	CreatedAt     int64   `json:"createdAt"`
}

// WrapData marshals a typed payload into the envelope's Data field.
func WrapData(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record data: %w", err)
	}
	return b, nil
}

// PortfolioPayload decodes the record's data as a portfolio payload.
func (r SyncRecord) PortfolioPayload() (*PortfolioData, error) {
	var d PortfolioData
	if err := json.Unmarshal(r.Data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio data for %s: %w", r.RowID, err)
	}
	return &d, nil
}

// EntryPayload decodes the record's data as an entry payload.
func (r SyncRecord) EntryPayload() (*EntryData, error) {
	var d EntryData
	if err := json.Unmarshal(r.Data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode entry data for %s: %w", r.RowID, err)
	}
	return &d, nil
}

// PaymentPayload decodes the record's data as a coupon payment payload.
func (r SyncRecord) PaymentPayload() (*PaymentData, error) {
	var d PaymentData
	if err := json.Unmarshal(r.Data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode payment data for %s: %w", r.RowID, err)
	}
	return &d, nil
}
