// Package finance holds the money arithmetic shared by the portfolio
// services: coupon schedules for bond entries and currency validation.
// All amount math goes through shopspring decimals; float64 only appears
// at the model boundary.
package finance

import (
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/fincatch/fincatch/internal/client/models"
	"github.com/fincatch/fincatch/internal/common"
)

// PeriodsPerYear maps a coupon frequency to the number of payments per year.
func PeriodsPerYear(frequency string) (int, bool) {
	switch frequency {
	case models.CouponFrequencyAnnual:
		return 1, true
	case models.CouponFrequencySemiannual:
		return 2, true
	case models.CouponFrequencyQuarterly:
		return 4, true
	case models.CouponFrequencyMonthly:
		return 12, true
	default:
		return 0, false
	}
}

// CouponAmount is the payout of a single coupon period:
// faceValue * rate / periods, rounded to two decimal places.
// The rate is a percentage, so 5.25 means 5.25% per year.
func CouponAmount(faceValue, annualRatePct float64, periodsPerYear int) decimal.Decimal {
	face := decimal.NewFromFloat(faceValue)
	rate := decimal.NewFromFloat(annualRatePct).Div(decimal.NewFromInt(100))
	periods := decimal.NewFromInt(int64(periodsPerYear))
	return face.Mul(rate).Div(periods).Round(2)
}

// ScheduledPayment is one projected coupon payout for a bond entry.
type ScheduledPayment struct {
	Date   time.Time
	Amount decimal.Decimal
}

// Schedule projects the coupon payments of a bond entry from its purchase
// date (exclusive) through maturity (inclusive). The entry must carry face
// value, coupon rate, frequency and maturity; anything missing yields
// common.ErrInvalidAssetType since only complete bonds have a schedule.
func Schedule(entry *models.Entry) ([]ScheduledPayment, error) {
	if entry.AssetType != models.AssetTypeBond ||
		entry.FaceValue == nil || entry.CouponRate == nil ||
		entry.CouponFrequency == nil || entry.MaturityDate == nil {
		return nil, common.ErrInvalidAssetType
	}

	periods, ok := PeriodsPerYear(*entry.CouponFrequency)
	if !ok {
		return nil, common.ErrInvalidAssetType
	}

	amount := CouponAmount(*entry.FaceValue, *entry.CouponRate, periods)
	step := 12 / periods

	purchase := time.Unix(entry.PurchaseDate, 0).UTC()
	maturity := time.Unix(*entry.MaturityDate, 0).UTC()

	var schedule []ScheduledPayment
	for d := purchase.AddDate(0, step, 0); !d.After(maturity); d = d.AddDate(0, step, 0) {
		schedule = append(schedule, ScheduledPayment{Date: d, Amount: amount})
	}
	return schedule, nil
}

// IsValidCurrency reports whether code is a known ISO-4217 currency code.
func IsValidCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}
