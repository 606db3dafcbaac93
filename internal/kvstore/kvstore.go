// Package kvstore adapts the external key-value store (Redis in this
// deployment) to the three schemas the exchange core shares state through:
// stocks:prices, stocks:sector, and order_book:<SYM>. The process builds a
// single Store around one pooled *redis.Client, and every component (the
// matching driver, the market data generator and the gateway) shares it;
// components do not hold separate connection handles.
package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	pricesKey = "stocks:prices"
	sectorKey = "stocks:sector"
)

func orderBookKey(symbol string) string {
	return fmt.Sprintf("order_book:%s", symbol)
}

// Config configures a Store's Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// Store is a thin, per-component handle onto the shared KV store. The KV
// operations it exposes have no explicit timeout — spec.md §5 relies on TCP
// keepalive rather than per-call deadlines, matching the teacher's
// connection-handle style (pkg/database/redis.go) adapted to the narrower
// schema this system needs.
type Store struct {
	client  *redis.Client
	logger  *zap.Logger
	breaker *gobreaker.CircuitBreaker
}

// New opens a pooled connection to the KV store and verifies it with a
// ping. It does not block indefinitely: the initial ping uses a 5s
// deadline so a misconfigured endpoint fails fast at startup.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("kvstore: ping %s: %w", cfg.Addr, err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "order_book_txn",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Store{client: client, logger: logger, breaker: breaker}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
