package matching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/exchangesim/core/internal/model"
)

func TestPeriodicMatcher_DrainInsertsThenMatches(t *testing.T) {
	store := newFakeStore()
	trades := make(chan model.Trade, 10)

	pm, err := NewPeriodic(store, trades, zap.NewNop(), []string{"AAPL"}, 2, testMetrics())
	require.NoError(t, err)

	ctx := context.Background()
	driver := New(store, trades, zap.NewNop(), SimpleFill, testMetrics())
	driver.InsertOnly(ctx, order("AAPL", model.Buy, 10, 101, 1))
	driver.InsertOnly(ctx, order("AAPL", model.Sell, 10, 99, 2))

	pm.drain(ctx, "AAPL")

	require.Len(t, trades, 1)
	trade := <-trades
	assert.Equal(t, "101", trade.Price.String())

	book := store.books["AAPL"]
	assert.Empty(t, book.Buys)
	assert.Empty(t, book.Sells)
}

func TestPeriodicMatcher_RunStopsOnContextCancel(t *testing.T) {
	store := newFakeStore()
	trades := make(chan model.Trade, 10)

	pm, err := NewPeriodic(store, trades, zap.NewNop(), []string{"AAPL"}, 2, testMetrics())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pm.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PeriodicMatcher.Run did not return after context cancellation")
	}
}
