// Package pipeline wires the exchange core's four long-lived tasks
// together through the three bounded channels of spec.md §5: orders
// (ingress -> OBM), trades (OBM -> MDG active), and stocks (MDG -> egress).
// It follows the teacher's fx.Lifecycle convention
// (internal/events/broker.go) for starting and stopping each task.
package pipeline

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/exchangesim/core/internal/config"
	"github.com/exchangesim/core/internal/egress"
	"github.com/exchangesim/core/internal/ingress"
	"github.com/exchangesim/core/internal/kvstore"
	"github.com/exchangesim/core/internal/marketdata"
	"github.com/exchangesim/core/internal/matching"
	"github.com/exchangesim/core/internal/metrics"
	"github.com/exchangesim/core/internal/model"
)

// Params is the set of fx-injected dependencies the pipeline needs to wire
// its tasks together.
type Params struct {
	fx.In

	Config    *config.Config
	Logger    *zap.Logger
	Store     *kvstore.Store
	Metrics   *metrics.Metrics
	Lifecycle fx.Lifecycle
}

// Pipeline owns the channels and the cancel function that stops every task
// on shutdown.
type Pipeline struct {
	logger *zap.Logger

	orders chan model.Order
	trades chan model.Trade
	stocks chan model.Stock

	consumer *ingress.Consumer
	producer *egress.Producer
	driver   *matching.Driver
	periodic *matching.PeriodicMatcher
	mdg      *marketdata.Generator

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New assembles the pipeline's channels and components and registers
// OnStart/OnStop hooks with the fx lifecycle.
func New(p Params) (*Pipeline, error) {
	capacity := p.Config.Pipeline.ChannelCapacity

	pl := &Pipeline{
		logger: p.Logger,
		orders: make(chan model.Order, capacity),
		trades: make(chan model.Trade, capacity),
		stocks: make(chan model.Stock, capacity),
	}

	consumer, err := ingress.New(ingress.Config{
		Brokers:       p.Config.Broker.Brokers,
		Topic:         p.Config.Broker.OrderTopic,
		ConsumerGroup: p.Config.Broker.ConsumerGroup,
	}, p.Logger, pl.orders)
	if err != nil {
		return nil, err
	}
	pl.consumer = consumer

	producer, err := egress.New(egress.Config{
		Brokers: p.Config.Broker.Brokers,
		Topic:   p.Config.Broker.PriceTopic,
	}, p.Logger, pl.stocks)
	if err != nil {
		return nil, err
	}
	pl.producer = producer

	policy := matching.SimpleFill
	if p.Config.Pipeline.StrictPartialFill {
		policy = matching.StrictFill
	}
	pl.driver = matching.New(p.Store, pl.trades, p.Logger, policy, p.Metrics)

	if p.Config.Pipeline.PeriodicMatcher {
		periodic, err := matching.NewPeriodic(p.Store, pl.trades, p.Logger,
			p.Config.Pipeline.Symbols, p.Config.Pipeline.PeriodicMatcherPoolSize, p.Metrics)
		if err != nil {
			return nil, err
		}
		pl.periodic = periodic
	}

	pl.mdg = marketdata.New(p.Store, p.Logger, p.Config.Pipeline.Symbols, pl.trades, pl.stocks, p.Metrics)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pl.start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return pl.stop()
		},
	})

	return pl, nil
}

func (pl *Pipeline) start() {
	ctx, cancel := context.WithCancel(context.Background())
	pl.cancel = cancel

	pl.wg.Add(1)
	go func() {
		defer pl.wg.Done()
		if err := pl.consumer.Run(ctx); err != nil {
			pl.logger.Error("ingress consumer stopped", zap.Error(err))
		}
	}()

	pl.wg.Add(1)
	go func() {
		defer pl.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case order, ok := <-pl.orders:
				if !ok {
					return
				}
				if pl.periodic != nil {
					pl.driver.InsertOnly(ctx, order)
				} else {
					pl.driver.Process(ctx, order)
				}
			}
		}
	}()

	if pl.periodic != nil {
		pl.wg.Add(1)
		go func() {
			defer pl.wg.Done()
			pl.periodic.Run(ctx)
		}()
	}

	pl.wg.Add(1)
	go func() {
		defer pl.wg.Done()
		pl.mdg.Run(ctx)
	}()

	pl.wg.Add(1)
	go func() {
		defer pl.wg.Done()
		pl.producer.Run(ctx)
	}()

	pl.logger.Info("pipeline started")
}

func (pl *Pipeline) stop() error {
	pl.cancel()
	pl.wg.Wait()

	if err := pl.consumer.Close(); err != nil {
		pl.logger.Warn("error closing ingress consumer", zap.Error(err))
	}
	if err := pl.producer.Close(); err != nil {
		pl.logger.Warn("error closing egress producer", zap.Error(err))
	}

	pl.logger.Info("pipeline stopped")
	return nil
}

// Module is the fx module exporting the pipeline's constructor.
var Module = fx.Module("pipeline", fx.Provide(New))
