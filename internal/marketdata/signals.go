// Package marketdata implements the three market data generator subtasks:
// passive (book-driven, 1Hz), active (trade-driven), and sector
// co-movement (60s). All three funnel through UpdatePrice, the canonical
// clamp-write-publish path of spec.md §4.3.4.
package marketdata

import (
	"time"

	"github.com/exchangesim/core/internal/model"
	"github.com/exchangesim/core/internal/orderbook"
)

// signal computes one of the six independent passive-pricing multipliers
// from a book snapshot and the symbol's current price. Each is a pure
// function so it can be unit tested in isolation from the KV store and the
// 1Hz ticker loop (spec.md §4.3.1 table, in order).
type signal func(book *orderbook.Book, currentPrice float64, now time.Time) float64

var passiveSignals = []signal{
	shareWeightedImbalance,
	orderCountImbalance,
	topDepthImbalance,
	icebergImbalance,
	momentumImbalance,
	skewness,
}

// PassiveMultiplier aggregates the six signals by arithmetic mean.
func PassiveMultiplier(book *orderbook.Book, currentPrice float64, now time.Time) float64 {
	sum := 0.0
	for _, s := range passiveSignals {
		sum += s(book, currentPrice, now)
	}
	return sum / float64(len(passiveSignals))
}

func sumQuantity(side []model.Order) int64 {
	var total int64
	for _, o := range side {
		total += o.Quantity
	}
	return total
}

// 1. share-weighted imbalance: 1 + (imb/100)*0.001
func shareWeightedImbalance(book *orderbook.Book, _ float64, _ time.Time) float64 {
	imb := float64(sumQuantity(book.Buys) - sumQuantity(book.Sells))
	return 1 + (imb/100)*0.001
}

// 2. order-count imbalance normalized: 1 + imb*0.01
func orderCountImbalance(book *orderbook.Book, _ float64, _ time.Time) float64 {
	nBuy, nSell := len(book.Buys), len(book.Sells)
	if nBuy+nSell == 0 {
		return 1
	}
	imb := float64(nBuy-nSell) / float64(nBuy+nSell)
	return 1 + imb*0.01
}

// 3. top-20% cumulative depth imbalance (by share): 1 + (imb/50)*0.01
func topDepthImbalance(book *orderbook.Book, _ float64, _ time.Time) float64 {
	buyTop := sumQuantity(topFifth(book.Buys))
	sellTop := sumQuantity(topFifth(book.Sells))
	imb := float64(buyTop - sellTop)
	return 1 + (imb/50)*0.01
}

func topFifth(side []model.Order) []model.Order {
	if len(side) == 0 {
		return side
	}
	n := (len(side) + 4) / 5 // ceil(20%)
	if n < 1 {
		n = 1
	}
	if n > len(side) {
		n = len(side)
	}
	return side[:n]
}

// 4. iceberg count: orders whose qty exceeds the book's mean order size:
// 1 + (imb/15)*0.02
func icebergImbalance(book *orderbook.Book, _ float64, _ time.Time) float64 {
	all := append(append([]model.Order{}, book.Buys...), book.Sells...)
	if len(all) == 0 {
		return 1
	}
	mean := float64(sumQuantity(all)) / float64(len(all))

	countAbove := func(side []model.Order) int {
		n := 0
		for _, o := range side {
			if float64(o.Quantity) > mean {
				n++
			}
		}
		return n
	}

	imb := float64(countAbove(book.Buys) - countAbove(book.Sells))
	return 1 + (imb/15)*0.02
}

// 5. momentum: count of orders with now-ts <= 5s on each side: 1 + (imb/10)*0.1
func momentumImbalance(book *orderbook.Book, _ float64, now time.Time) float64 {
	recent := func(side []model.Order) int {
		n := 0
		for _, o := range side {
			if now.Unix()-o.Timestamp <= 5 {
				n++
			}
		}
		return n
	}
	imb := float64(recent(book.Buys) - recent(book.Sells))
	return 1 + (imb/10)*0.1
}

// 6. skewness: (best_bid - best_ask)/current_price * 100: 1 + (skew/10)*0.01
func skewness(book *orderbook.Book, currentPrice float64, _ time.Time) float64 {
	buy, sell := book.BestBuy(), book.BestSell()
	if buy == nil || sell == nil || currentPrice == 0 {
		return 1
	}
	skew := (buy.Price.Float64() - sell.Price.Float64()) / currentPrice * 100
	return 1 + (skew/10)*0.01
}
