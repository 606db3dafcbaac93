package orderbook_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchangesim/core/internal/model"
	"github.com/exchangesim/core/internal/orderbook"
)

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

func TestInsert_MaintainsPriceTimePriority(t *testing.T) {
	book := orderbook.New("AAPL")

	book.Insert(order("AAPL", model.Buy, 10, 100, 1))
	book.Insert(order("AAPL", model.Buy, 10, 102, 2))
	book.Insert(order("AAPL", model.Buy, 10, 101, 3))

	require.Len(t, book.Buys, 3)
	assert.Equal(t, "102", book.Buys[0].Price.String())
	assert.Equal(t, "101", book.Buys[1].Price.String())
	assert.Equal(t, "100", book.Buys[2].Price.String())
}

func TestInsert_FIFOAtEqualPrice(t *testing.T) {
	book := orderbook.New("AAPL")

	first := order("AAPL", model.Sell, 5, 99, 1)
	second := order("AAPL", model.Sell, 5, 99, 2)

	book.Insert(first)
	book.Insert(second)

	require.Len(t, book.Sells, 2)
	assert.Equal(t, first.ID, book.Sells[0].ID)
	assert.Equal(t, second.ID, book.Sells[1].ID)
}

func TestCrossed(t *testing.T) {
	book := orderbook.New("AAPL")
	assert.False(t, book.Crossed())

	book.Insert(order("AAPL", model.Buy, 10, 101, 1))
	assert.False(t, book.Crossed())

	book.Insert(order("AAPL", model.Sell, 10, 99, 2))
	assert.True(t, book.Crossed())
}

func TestValidate_DetectsOutOfOrderBuys(t *testing.T) {
	book := orderbook.New("AAPL")
	book.Buys = []model.Order{
		order("AAPL", model.Buy, 10, 100, 1),
		order("AAPL", model.Buy, 10, 105, 2),
	}
	err := book.Validate()
	require.Error(t, err)
}

func TestValidate_ToleratesCrossedAtRest(t *testing.T) {
	book := orderbook.New("AAPL")
	book.Insert(order("AAPL", model.Buy, 10, 101, 1))
	book.Insert(order("AAPL", model.Sell, 10, 99, time.Now().Unix()))
	assert.NoError(t, book.Validate())
}
