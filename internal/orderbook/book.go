// Package orderbook implements the per-symbol order book data model and its
// matching algorithm. It holds no connection to the broker or the KV store;
// callers own persistence and messaging (see internal/matching for the
// driver that wires a Book to the trade channel and internal/kvstore for
// the snapshot codec).
package orderbook

import (
	"github.com/exchangesim/core/internal/model"
)

// Book is the resting order state for one symbol: two price/time ordered
// sequences. Buys are sorted highest-price-first, Sells lowest-price-first;
// ties are broken by arrival order (spec.md §3 invariant 2).
//
// Book is not safe for concurrent use by multiple goroutines; the matching
// driver (internal/matching) serializes all access to a given symbol's book
// through the single order channel consumer.
type Book struct {
	Symbol string
	Buys   []model.Order
	Sells  []model.Order
}

// New creates an empty book for symbol.
func New(symbol string) *Book {
	return &Book{Symbol: symbol}
}

// Insert places order into the correct side, preserving the sort invariant:
// Buys monotone non-increasing in price, Sells monotone non-decreasing,
// ties broken by insertion order (§3 invariants 1-2).
func (b *Book) Insert(order model.Order) {
	switch order.Side {
	case model.Buy:
		// Descending by price: an existing order stays ahead of the new one
		// as long as its price is >= the new order's (equal price keeps
		// FIFO arrival order).
		b.Buys = insertSorted(b.Buys, order, func(existing, incoming model.Price) bool {
			return existing.GreaterThanOrEqual(incoming.Decimal)
		})
	case model.Sell:
		// Ascending by price: an existing order stays ahead as long as its
		// price is <= the new order's.
		b.Sells = insertSorted(b.Sells, order, func(existing, incoming model.Price) bool {
			return existing.LessThanOrEqual(incoming.Decimal)
		})
	}
}

// insertSorted finds the first position where keepAhead(existing, order) is
// false and inserts the new order there, so equal-priced existing orders
// are never displaced (FIFO tie-break, §3 invariant 2).
func insertSorted(side []model.Order, order model.Order, keepAhead func(existing, incoming model.Price) bool) []model.Order {
	i := 0
	for ; i < len(side); i++ {
		if !keepAhead(side[i].Price, order.Price) {
			break
		}
	}
	side = append(side, model.Order{})
	copy(side[i+1:], side[i:])
	side[i] = order
	return side
}

// BestBuy returns the top of the buy side, or nil if empty.
func (b *Book) BestBuy() *model.Order {
	if len(b.Buys) == 0 {
		return nil
	}
	return &b.Buys[0]
}

// BestSell returns the top of the sell side, or nil if empty.
func (b *Book) BestSell() *model.Order {
	if len(b.Sells) == 0 {
		return nil
	}
	return &b.Sells[0]
}

// Crossed reports whether the book is presently crossable: best bid price
// >= best ask price (spec.md §3 invariant 1, negated).
func (b *Book) Crossed() bool {
	buy, sell := b.BestBuy(), b.BestSell()
	if buy == nil || sell == nil {
		return false
	}
	return buy.Price.GreaterThanOrEqual(sell.Price.Decimal)
}

func removeAt(side []model.Order, i int) []model.Order {
	return append(side[:i], side[i+1:]...)
}
