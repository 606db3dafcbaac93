package orderbook

import (
	"github.com/exchangesim/core/internal/model"
)

// Match examines the top of both sides and, if they cross, produces at most
// one Trade, removing or shrinking whichever side(s) are fully consumed. It
// returns (trade, true) on a match, (zero Trade, false) if the book is not
// presently crossed.
//
// aggressor names the side of the order that triggered this matching pass
// (the order the driver just called Insert with — see internal/matching).
// Everything already resting on the opposite side arrived earlier, so the
// trade executes at that opposite side's price: the passive/resting-side
// rule of spec.md §4.2 ("price: passive_side.price"). This holds across
// every iteration of the driver's exhaustive-match loop for a single
// inserted order, since the aggressor side doesn't change mid-loop even as
// the aggressing order itself shrinks.
func (b *Book) Match(aggressor model.Side) (model.Trade, bool) {
	buy, sell := b.BestBuy(), b.BestSell()
	if buy == nil || sell == nil || buy.Price.LessThan(sell.Price.Decimal) {
		return model.Trade{}, false
	}

	quantity := buy.Quantity
	if sell.Quantity < quantity {
		quantity = sell.Quantity
	}

	tradeTimestamp := buy.Timestamp
	if sell.Timestamp > tradeTimestamp {
		tradeTimestamp = sell.Timestamp
	}

	price := sell.Price
	if aggressor == model.Sell {
		price = buy.Price
	}

	trade := model.Trade{
		BuyOrderID:  buy.ID,
		SellOrderID: sell.ID,
		StockSymbol: b.Symbol,
		Quantity:    quantity,
		Price:       price,
		Timestamp:   tradeTimestamp,
	}

	switch {
	case buy.Quantity > quantity:
		b.Buys[0].Quantity -= quantity
		b.Sells = removeAt(b.Sells, 0)
	case sell.Quantity > quantity:
		b.Sells[0].Quantity -= quantity
		b.Buys = removeAt(b.Buys, 0)
	default:
		b.Buys = removeAt(b.Buys, 0)
		b.Sells = removeAt(b.Sells, 0)
	}

	return trade, true
}
