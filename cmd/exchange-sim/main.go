// Command exchange-sim runs the simulated equities exchange core: the
// ingress consumer, order book manager, market data generator, and egress
// producer, wired together by fx the way the teacher's cmd/marketdata
// entrypoint wires its own services.
package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/exchangesim/core/internal/config"
	"github.com/exchangesim/core/internal/gateway"
	"github.com/exchangesim/core/internal/kvstore"
	"github.com/exchangesim/core/internal/metrics"
	"github.com/exchangesim/core/internal/pipeline"
)

func main() {
	app := fx.New(
		fx.Provide(
			loadConfig,
			newLogger,
			newStore,
			newRegistry,
			newMetrics,
			gateway.New,
		),
		pipeline.Module,
		fx.Invoke(startGateway, startMetricsServer),
	)

	app.Run()
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig("")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return config.InitLogger(cfg)
}

func newStore(cfg *config.Config, logger *zap.Logger) (*kvstore.Store, error) {
	return kvstore.New(kvstore.Config{
		Addr:     cfg.KVStore.Addr,
		Password: cfg.KVStore.Password,
		DB:       cfg.KVStore.DB,
		PoolSize: cfg.KVStore.PoolSize,
	}, logger)
}

func newRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func newMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

// startMetricsServer exposes the collectors newMetrics registered on
// Monitoring.PrometheusPort, the port spec.md §6 reserves for observability.
func startMetricsServer(lc fx.Lifecycle, reg *prometheus.Registry, cfg *config.Config, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort), Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Warn("metrics server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// startGateway launches the read-only HTTP boundary in the background; it
// never blocks application startup and its failures are logged, not fatal,
// since the gateway is out of this core's scope (spec.md §1).
func startGateway(lc fx.Lifecycle, gw *gateway.Gateway, cfg *config.Config, logger *zap.Logger, _ *pipeline.Pipeline) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				addr := fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort+1)
				if err := gw.Router().Run(addr); err != nil {
					logger.Warn("gateway stopped", zap.Error(err))
				}
			}()
			return nil
		},
	})
}
