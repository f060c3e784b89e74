// Package common defines shared constants and sentinel errors used across
// the fincatch client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Transport errors: the exchange never happened, nothing local changed.
	ErrUnavailable = errors.New("server unavailable")

	// Auth errors: token invalid, expired, or missing.
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")

	// Protocol errors: the server answered with a body we cannot parse.
	ErrProtocol = errors.New("malformed server response")

	// Referential errors: an inbound record references a parent row that is
	// not present locally. Retryable on the next cycle.
	ErrParentMissing = errors.New("parent record missing")

	// Conflict reported by the server for a pushed version. The local row
	// stays dirty and is retried as-is.
	ErrVersionConflict = errors.New("version conflict")

	// Validation errors.
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrInvalidAssetType = errors.New("invalid asset type")
)
