package matching

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/exchangesim/core/internal/metrics"
	"github.com/exchangesim/core/internal/model"
	"github.com/exchangesim/core/internal/orderbook"
)

// PeriodicMatcher is the secondary matching strategy spec.md §9 describes
// as a non-required alternative to Driver's insert-then-drain loop: instead
// of draining crosses synchronously on every order, it polls every symbol's
// book on a fixed interval and drains whatever has crossed since the last
// poll. It exists for throughput smoothing when order arrival is bursty
// enough that per-order draining becomes the bottleneck; Driver remains the
// authoritative default (DESIGN.md open question 1).
//
// Symbol polls run on an ants.Pool so the number of concurrent book polls
// stays bounded regardless of how many symbols the universe grows to.
type PeriodicMatcher struct {
	store   bookStore
	trades  chan<- model.Trade
	logger  *zap.Logger
	symbols []string
	pool    *ants.Pool
	metrics *metrics.Metrics
	period  time.Duration
}

// NewPeriodic builds a PeriodicMatcher bounded to at most poolSize
// concurrently polled symbols, on spec.md §9's 500ms interval.
func NewPeriodic(store bookStore, trades chan<- model.Trade, logger *zap.Logger, symbols []string, poolSize int, m *metrics.Metrics) (*PeriodicMatcher, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &PeriodicMatcher{
		store:   store,
		trades:  trades,
		logger:  logger,
		symbols: symbols,
		pool:    pool,
		metrics: m,
		period:  500 * time.Millisecond,
	}, nil
}

// Run polls every symbol on the configured interval until ctx is cancelled.
func (p *PeriodicMatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()
	defer p.pool.Release()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollAll(ctx)
		}
	}
}

// pollAll submits one drain task per symbol to the bounded pool and waits
// for the round to finish before the next tick fires.
func (p *PeriodicMatcher) pollAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, symbol := range p.symbols {
		symbol := symbol
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			p.drain(ctx, symbol)
		})
		if err != nil {
			wg.Done()
			p.logger.Warn("periodic matcher: pool submit failed",
				zap.String("symbol", symbol), zap.Error(err))
		}
	}
	wg.Wait()
}

// drain matches a single symbol's book exhaustively, same as Driver.Process
// does for a freshly inserted order, except the aggressor is inferred from
// which side's top order arrived more recently rather than being known from
// an in-flight insert.
func (p *PeriodicMatcher) drain(ctx context.Context, symbol string) {
	var trades []model.Trade

	err := p.store.WithBookTxn(ctx, symbol, func(book *orderbook.Book) error {
		trades = trades[:0]
		for {
			buy, sell := book.BestBuy(), book.BestSell()
			if buy == nil || sell == nil {
				break
			}
			aggressor := model.Sell
			if buy.Timestamp > sell.Timestamp {
				aggressor = model.Buy
			}
			trade, ok := book.Match(aggressor)
			if !ok {
				break
			}
			trades = append(trades, trade)
		}
		return nil
	})

	if err != nil {
		p.logger.Warn("periodic matcher: book unreadable, skipping symbol",
			zap.String("symbol", symbol), zap.Error(err))
		return
	}

	for _, trade := range trades {
		select {
		case p.trades <- trade:
			p.metrics.TradesMatched.Inc()
		case <-ctx.Done():
			return
		}
	}
}
