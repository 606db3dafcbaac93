// Package metrics exposes the exchange core's Prometheus collectors as an
// injectable struct, following the teacher's Monitoring.PrometheusPort
// configuration rather than relying on the global default registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the pipeline's counters and gauges. Each component takes a
// *Metrics at construction instead of reaching for
// prometheus.DefaultRegisterer, so tests can supply a private registry.
// ChannelOccupancy is registered but no component sets it, so it stays at 0.
type Metrics struct {
	OrdersProcessed  prometheus.Counter
	TradesMatched    prometheus.Counter
	PriceUpdates     prometheus.Counter
	OrdersDropped    *prometheus.CounterVec
	ChannelOccupancy *prometheus.GaugeVec
}

// New registers and returns the exchange core's collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exchange_sim",
			Name:      "orders_processed_total",
			Help:      "Orders successfully inserted into an order book.",
		}),
		TradesMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exchange_sim",
			Name:      "trades_matched_total",
			Help:      "Trades produced by the matching engine.",
		}),
		PriceUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "exchange_sim",
			Name:      "price_updates_total",
			Help:      "Stock price updates emitted by the market data generator.",
		}),
		OrdersDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exchange_sim",
			Name:      "orders_dropped_total",
			Help:      "Orders abandoned by the order book manager due to storage errors, by reason.",
		}, []string{"reason"}),
		ChannelOccupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "exchange_sim",
			Name:      "channel_occupancy",
			Help:      "Current length of a pipeline channel.",
		}, []string{"channel"}),
	}

	reg.MustRegister(m.OrdersProcessed, m.TradesMatched, m.PriceUpdates, m.OrdersDropped, m.ChannelOccupancy)
	return m
}
