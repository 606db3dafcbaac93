package orderbook

import (
	"github.com/exchangesim/core/internal/errors"
)

// Validate checks the two structural invariants from spec.md §3: each side
// is correctly ordered, and neither side is internally crossed with
// itself. It does not check invariant 1 (buys[0] < sells[0]) — a book
// that's merely crossed at rest is the normal mid-match state, not
// corruption; only a sort-order violation indicates the persisted snapshot
// is unusable.
func (b *Book) Validate() error {
	for i := 1; i < len(b.Buys); i++ {
		if b.Buys[i].Price.GreaterThan(b.Buys[i-1].Price.Decimal) {
			return errors.New(errors.Invariant, "buy side is not monotone non-increasing in price").
				WithDetail("symbol", b.Symbol).WithDetail("index", i)
		}
	}
	for i := 1; i < len(b.Sells); i++ {
		if b.Sells[i].Price.LessThan(b.Sells[i-1].Price.Decimal) {
			return errors.New(errors.Invariant, "sell side is not monotone non-decreasing in price").
				WithDetail("symbol", b.Symbol).WithDetail("index", i)
		}
	}
	return nil
}
