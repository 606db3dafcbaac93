package marketdata

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/exchangesim/core/internal/kvstore"
	"github.com/exchangesim/core/internal/metrics"
	"github.com/exchangesim/core/internal/model"
)

// Generator owns the three market data subtasks (spec.md §4.3): passive
// (book-driven, 1Hz), active (trade-driven), and sector co-movement (60s).
// It shares no in-process state with the order book manager — every symbol's
// current price lives in the KV store, read-modify-written independently by
// whichever subtask fires (spec.md §5).
type Generator struct {
	store  *kvstore.Store
	logger *zap.Logger

	symbols []string

	trades <-chan model.Trade
	stocks chan<- model.Stock

	metrics *metrics.Metrics
}

// New builds a Generator. symbols is the fixed universe this instance is
// responsible for; trades is the channel fed by the order book manager;
// stocks is the channel read by the egress producer.
func New(store *kvstore.Store, logger *zap.Logger, symbols []string, trades <-chan model.Trade, stocks chan<- model.Stock, m *metrics.Metrics) *Generator {
	return &Generator{
		store:   store,
		logger:  logger,
		symbols: symbols,
		trades:  trades,
		stocks:  stocks,
		metrics: m,
	}
}

// UpdatePrice is the canonical clamp-write-publish path every subtask funnels
// through (spec.md §4.3.4): round/floor the candidate price, persist it, and
// emit it on the stock channel for the egress producer. A publish that can't
// proceed because the channel is full or the context is cancelled is dropped
// rather than blocking the caller indefinitely (spec.md §5: MDG must not
// stall on a slow egress consumer).
func (g *Generator) UpdatePrice(ctx context.Context, symbol string, candidate model.Price) {
	price := model.Clamp4(candidate)

	if err := g.store.SetPrice(ctx, symbol, price); err != nil {
		g.logger.Error("failed to persist updated price",
			zap.String("symbol", symbol), zap.Error(err))
		return
	}

	select {
	case g.stocks <- model.Stock{Symbol: symbol, Price: price}:
		g.metrics.PriceUpdates.Inc()
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		g.logger.Warn("dropped stock update, egress channel full", zap.String("symbol", symbol))
	}
}

// Run starts the three subtasks and blocks until ctx is cancelled.
func (g *Generator) Run(ctx context.Context) {
	done := make(chan struct{}, 3)

	go func() { defer func() { done <- struct{}{} }(); g.runPassive(ctx) }()
	go func() { defer func() { done <- struct{}{} }(); g.runActive(ctx) }()
	go func() { defer func() { done <- struct{}{} }(); g.runSector(ctx) }()

	for i := 0; i < 3; i++ {
		<-done
	}
}
