package marketdata

import (
	"context"

	"go.uber.org/zap"

	"github.com/exchangesim/core/internal/model"
)

// runActive implements spec.md §4.3.2: every trade the order book manager
// matches nudges its symbol's price in the direction of the trade.
func (g *Generator) runActive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trade, ok := <-g.trades:
			if !ok {
				return
			}
			g.applyTrade(ctx, trade)
		}
	}
}

func (g *Generator) applyTrade(ctx context.Context, trade model.Trade) {
	current, err := g.store.GetPrice(ctx, trade.StockSymbol)
	if err != nil {
		g.logger.Warn("active update: skipping trade, no seeded price",
			zap.String("symbol", trade.StockSymbol), zap.Error(err))
		return
	}

	currentPrice := current.Float64()
	if currentPrice == 0 {
		return
	}

	g.UpdatePrice(ctx, trade.StockSymbol, current.Mul(activeMultiplier(trade, currentPrice)))
}

// activeMultiplier implements spec.md §4.3.2's trade-driven nudge:
// imb = qty * (trade_price - current_price), mult = 1 + (imb/current)*0.01.
// Pure so it's testable without a live KV store.
func activeMultiplier(trade model.Trade, currentPrice float64) float64 {
	imbalance := float64(trade.Quantity) * (trade.Price.Float64() - currentPrice)
	return 1 + (imbalance/currentPrice)*0.01
}
