// Package models defines client-side data models persisted in the local
// store and synchronized with the sync server.
package models

// Portfolio is a top-level grouping of holdings.
//
// Sync bookkeeping: SyncVersion starts at 1 and is bumped on every
// acknowledged push; SyncedAt == nil marks the row dirty; Deleted rows are
// soft-deleted tombstones kept locally until their deletion has been pushed.
type Portfolio struct {
	// ID is a globally unique identifier, assigned by whichever side
	// created the row.
	ID string

	Name         string
	Description  *string
	BaseCurrency *string

	// CreatedAt is a Unix timestamp in seconds.
	CreatedAt int64

	SyncVersion int64
	SyncedAt    *int64
	Deleted     bool
	DeletedAt   *int64
}
