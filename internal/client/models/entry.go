package models

// AssetType classifies a portfolio entry.
type AssetType string

const (
	AssetTypeStock AssetType = "stock"
	AssetTypeGold  AssetType = "gold"
	AssetTypeBond  AssetType = "bond"
)

// Coupon frequency values accepted for bond entries.
const (
	CouponFrequencyAnnual     = "annual"
	CouponFrequencySemiannual = "semiannual"
	CouponFrequencyQuarterly  = "quarterly"
	CouponFrequencyMonthly    = "monthly"
)

// Entry is a single holding inside a portfolio. Optional fields are pointers;
// nil means the field was never set for this asset kind.
type Entry struct {
	ID string

	// PortfolioID references the parent Portfolio.ID.
	PortfolioID string

	AssetType     AssetType
	Symbol        string
	Quantity      float64
	PurchasePrice float64
	Currency      *string
	PurchaseDate  int64
	Notes         *string
	// Tags is a JSON array encoded as a string.
	Tags            *string
	TransactionFees *float64
	Source          *string
	CreatedAt       int64

	// Gold-specific.
	Unit     *string
	GoldType *string

	// Bond-specific.
	FaceValue          *float64
	CouponRate         *float64
	MaturityDate       *int64
	CouponFrequency    *string
	CurrentMarketPrice *float64
	LastPriceUpdate    *int64
	YTM                *float64

	// Price alerts. Threshold monitoring runs server-side; these fields
	// only travel with the record.
	TargetPrice   *float64
	StopLoss      *float64
	AlertEnabled  *bool
	LastAlertAt   *int64
	AlertCount    *int64
	LastAlertType *string

	SyncVersion int64
	SyncedAt    *int64
	Deleted     bool
	DeletedAt   *int64
}
