package marketdata

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// runSector implements spec.md §4.3.3: every 60s, compare each sector's mean
// price against its own shadow average from the previous pass and, on a
// large enough deviation, apply a uniform random impulse to every symbol in
// that sector.
func (g *Generator) runSector(ctx context.Context) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	lastAvg := make(map[string]float64)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.tickSector(ctx, lastAvg)
		}
	}
}

// sectorDeviationThreshold is 0.02564% expressed as a fraction (2.564e-4).
const sectorDeviationThreshold = 2.564e-4

func (g *Generator) tickSector(ctx context.Context, lastAvg map[string]float64) {
	sectorMap, err := g.store.SectorMap(ctx)
	if err != nil {
		g.logger.Warn("sector tick: could not load sector map", zap.Error(err))
		return
	}

	prices, err := g.store.AllPrices(ctx)
	if err != nil {
		g.logger.Warn("sector tick: could not load prices", zap.Error(err))
		return
	}

	firstPass := len(lastAvg) == 0

	for sector, symbols := range sectorMap.Sectors() {
		mean, n := 0.0, 0
		for _, symbol := range symbols {
			if p, ok := prices[symbol]; ok {
				mean += p.Float64()
				n++
			}
		}
		if n == 0 {
			continue
		}
		mean /= float64(n)

		old, known := lastAvg[sector]
		lastAvg[sector] = mean

		if firstPass || !known {
			continue
		}

		rising, shouldMove := sectorShouldMove(old, mean)
		if !shouldMove {
			continue
		}

		for _, symbol := range symbols {
			current, ok := prices[symbol]
			if !ok {
				continue
			}
			g.UpdatePrice(ctx, symbol, current.Mul(sectorImpulse(rising)))
		}
	}
}

// sectorShouldMove reports whether a sector's new mean deviates from its
// shadow average by more than sectorDeviationThreshold, and if so, whether
// the deviation is a rise or a fall. Pure so it's testable without a live
// KV store.
func sectorShouldMove(old, mean float64) (rising, shouldMove bool) {
	if old == 0 {
		return false, false
	}
	deviation := (mean - old) / old
	if deviation < 0 {
		deviation = -deviation
	}
	if deviation <= sectorDeviationThreshold {
		return false, false
	}
	return mean > old, true
}

// sectorImpulse draws U(1.00, 1.10) on a rising sector mean, U(0.90, 1.00)
// on a falling one.
func sectorImpulse(rising bool) float64 {
	if rising {
		return 1.00 + rand.Float64()*0.10
	}
	return 0.90 + rand.Float64()*0.10
}
