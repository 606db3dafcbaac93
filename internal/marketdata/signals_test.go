package marketdata

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/exchangesim/core/internal/model"
	"github.com/exchangesim/core/internal/orderbook"
)

func sideOrder(side model.Side, qty int64, price float64, ts int64) model.Order {
	return model.Order{ID: uuid.New(), Side: side, Quantity: qty, Price: model.NewPrice(price), Timestamp: ts}
}

func TestShareWeightedImbalance_FavorsHeavierSide(t *testing.T) {
	book := &orderbook.Book{
		Buys:  []model.Order{sideOrder(model.Buy, 500, 100, 1)},
		Sells: []model.Order{sideOrder(model.Sell, 100, 100, 1)},
	}
	mult := shareWeightedImbalance(book, 100, time.Now())
	assert.Greater(t, mult, 1.0)
}

func TestOrderCountImbalance_EmptyBookIsNeutral(t *testing.T) {
	book := &orderbook.Book{}
	assert.Equal(t, 1.0, orderCountImbalance(book, 100, time.Now()))
}

func TestTopDepthImbalance_UsesOnlyTopSlice(t *testing.T) {
	book := &orderbook.Book{
		Buys: []model.Order{
			sideOrder(model.Buy, 1000, 105, 1),
			sideOrder(model.Buy, 1, 104, 2),
			sideOrder(model.Buy, 1, 103, 3),
			sideOrder(model.Buy, 1, 102, 4),
			sideOrder(model.Buy, 1, 101, 5),
		},
		Sells: []model.Order{sideOrder(model.Sell, 1, 106, 1)},
	}
	mult := topDepthImbalance(book, 100, time.Now())
	assert.Greater(t, mult, 1.0)
}

func TestIcebergImbalance_CountsAboveMeanOrders(t *testing.T) {
	book := &orderbook.Book{
		Buys:  []model.Order{sideOrder(model.Buy, 1000, 100, 1), sideOrder(model.Buy, 1, 99, 2)},
		Sells: []model.Order{sideOrder(model.Sell, 1, 101, 1)},
	}
	mult := icebergImbalance(book, 100, time.Now())
	assert.Greater(t, mult, 1.0)
}

func TestMomentumImbalance_OnlyCountsRecentOrders(t *testing.T) {
	now := time.Unix(1000, 0)
	book := &orderbook.Book{
		Buys:  []model.Order{sideOrder(model.Buy, 1, 100, 999)},   // 1s ago, recent
		Sells: []model.Order{sideOrder(model.Sell, 1, 101, 900)}, // stale
	}
	mult := momentumImbalance(book, 100, now)
	assert.Greater(t, mult, 1.0)
}

func TestSkewness_NoQuoteIsNeutral(t *testing.T) {
	book := &orderbook.Book{}
	assert.Equal(t, 1.0, skewness(book, 100, time.Now()))
}

func TestSkewness_BidAboveAskRaisesMultiplier(t *testing.T) {
	book := &orderbook.Book{
		Buys:  []model.Order{sideOrder(model.Buy, 1, 101, 1)},
		Sells: []model.Order{sideOrder(model.Sell, 1, 99, 1)},
	}
	mult := skewness(book, 100, time.Now())
	assert.Greater(t, mult, 1.0)
}

func TestPassiveMultiplier_IsMeanOfSixSignals(t *testing.T) {
	book := &orderbook.Book{
		Buys:  []model.Order{sideOrder(model.Buy, 10, 101, 1)},
		Sells: []model.Order{sideOrder(model.Sell, 10, 99, 1)},
	}
	now := time.Now()

	var sum float64
	for _, s := range passiveSignals {
		sum += s(book, 100, now)
	}
	assert.InDelta(t, sum/6, PassiveMultiplier(book, 100, now), 1e-9)
}
