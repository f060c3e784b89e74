package models

// CouponPayment records a received bond coupon for an entry.
type CouponPayment struct {
	ID string

	// EntryID references the parent Entry.ID.
	EntryID string

	PaymentDate int64
	Amount      float64
	Currency    string
	Notes       *string
	CreatedAt   int64

	SyncVersion int64
	SyncedAt    *int64
	Deleted     bool
	DeletedAt   *int64
}
