package marketdata

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// runPassive implements spec.md §4.3.1: once a second, for every symbol in
// the universe, load its resting book, compute the six-signal multiplier,
// and apply it to the current price. Grounded on the teacher's
// internal/marketdata/service_core.go ticker-loop shape
// (time.NewTicker + select on ctx.Done()/ticker.C).
func (g *Generator) runPassive(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			g.tickPassive(ctx, now)
		}
	}
}

func (g *Generator) tickPassive(ctx context.Context, now time.Time) {
	for _, symbol := range g.symbols {
		price, err := g.store.GetPrice(ctx, symbol)
		if err != nil {
			g.logger.Warn("passive tick: skipping symbol, no seeded price",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}

		book, err := g.store.LoadBook(ctx, symbol)
		if err != nil {
			g.logger.Warn("passive tick: skipping symbol, book unreadable",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}

		multiplier := PassiveMultiplier(book, price.Float64(), now)
		g.UpdatePrice(ctx, symbol, price.Mul(multiplier))
	}
}
