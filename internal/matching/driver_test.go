package matching

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/exchangesim/core/internal/metrics"
	"github.com/exchangesim/core/internal/model"
	"github.com/exchangesim/core/internal/orderbook"
)

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// fakeStore is an in-memory bookStore, one book per symbol, no concurrency
// control beyond a single mutex — sufficient for the driver's own tests
// since the driver itself guarantees single-threaded access per symbol.
type fakeStore struct {
	mu    sync.Mutex
	books map[string]*orderbook.Book
}

func newFakeStore() *fakeStore {
	return &fakeStore{books: make(map[string]*orderbook.Book)}
}

func (s *fakeStore) WithBookTxn(_ context.Context, symbol string, fn func(*orderbook.Book) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[symbol]
	if !ok {
		book = orderbook.New(symbol)
	}
	if err := fn(book); err != nil {
		return err
	}
	s.books[symbol] = book
	return nil
}

func (s *fakeStore) SaveBook(_ context.Context, book *orderbook.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[book.Symbol] = book
	return nil
}

func TestDriver_Process_MatchesCrossingOrders(t *testing.T) {
	store := newFakeStore()
	trades := make(chan model.Trade, 10)
	driver := New(store, trades, zap.NewNop(), SimpleFill, testMetrics())

	ctx := context.Background()
	driver.Process(ctx, order("AAPL", model.Buy, 10, 101, 1))
	driver.Process(ctx, order("AAPL", model.Sell, 10, 99, 2))

	require.Len(t, trades, 1)
	trade := <-trades
	assert.Equal(t, "101", trade.Price.String())
	assert.Equal(t, int64(10), trade.Quantity)

	book := store.books["AAPL"]
	assert.Empty(t, book.Buys)
	assert.Empty(t, book.Sells)
}

func TestDriver_Process_RestingOrderWithNoCrossProducesNoTrade(t *testing.T) {
	store := newFakeStore()
	trades := make(chan model.Trade, 10)
	driver := New(store, trades, zap.NewNop(), SimpleFill, testMetrics())

	driver.Process(context.Background(), order("AAPL", model.Buy, 10, 99, 1))

	assert.Empty(t, trades)
	assert.Len(t, store.books["AAPL"].Buys, 1)
}

func order(symbol string, side model.Side, qty int64, price float64, ts int64) model.Order {
	return model.Order{
		ID:          uuid.New(),
		StockSymbol: symbol,
		Side:        side,
		Quantity:    qty,
		Price:       model.NewPrice(price),
		Timestamp:   ts,
	}
}
