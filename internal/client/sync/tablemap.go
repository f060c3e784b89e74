// Package sync implements the client-side synchronization engine: collecting
// dirty rows into wire envelopes, replaying remote batches in foreign-key
// order, and orchestrating the combined push+pull cycle.
package sync

// Local and wire table identifiers. Locally tables are snake_case; the wire
// protocol uses camelCase names.
const (
	TablePortfolios = "portfolios"
	TableEntries    = "portfolio_entries"
	TablePayments   = "bond_coupon_payments"

	WirePortfolios = "portfolios"
	WireEntries    = "portfolioEntries"
	WirePayments   = "bondCouponPayments"
)

var localToWire = map[string]string{
	TablePortfolios: WirePortfolios,
	TableEntries:    WireEntries,
	TablePayments:   WirePayments,
}

var wireToLocal = map[string]string{
	WirePortfolios: TablePortfolios,
	WireEntries:    TableEntries,
	WirePayments:   TablePayments,
}

// ToWire translates a local table name to its wire name. Unknown names pass
// through unchanged.
func ToWire(local string) string {
	if w, ok := localToWire[local]; ok {
		return w
	}
	return local
}

// ToLocal translates a wire table name to its local name. Unknown names pass
// through unchanged.
func ToLocal(wire string) string {
	if l, ok := wireToLocal[wire]; ok {
		return l
	}
	return wire
}

// precedence orders tables parent-first. Upserts apply in ascending order so
// parents land before children; tombstones apply in descending order so
// children go first. Unknown tables sort last either way.
func precedence(local string) int {
	switch local {
	case TablePortfolios:
		return 0
	case TableEntries:
		return 1
	case TablePayments:
		return 2
	default:
		return 3
	}
}
