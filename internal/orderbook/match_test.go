package orderbook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchangesim/core/internal/model"
	"github.com/exchangesim/core/internal/orderbook"
)

func TestMatch_RestingSideSetsPrice(t *testing.T) {
	book := orderbook.New("AAPL")

	book.Insert(order("AAPL", model.Buy, 10, 101, 1)) // resting
	book.Insert(order("AAPL", model.Sell, 10, 99, 2)) // aggressor

	trade, ok := book.Match(model.Sell)
	require.True(t, ok)
	assert.Equal(t, "101", trade.Price.String())
	assert.Equal(t, int64(10), trade.Quantity)
}

func TestMatch_PartialConsumptionLeavesRemainder(t *testing.T) {
	book := orderbook.New("AAPL")

	book.Insert(order("AAPL", model.Buy, 10, 101, 1))
	book.Insert(order("AAPL", model.Sell, 4, 99, 2))

	trade, ok := book.Match(model.Sell)
	require.True(t, ok)
	assert.Equal(t, int64(4), trade.Quantity)

	require.Len(t, book.Buys, 1)
	assert.Equal(t, int64(6), book.Buys[0].Quantity)
	assert.Empty(t, book.Sells)
}

func TestMatch_NoTradeWhenNotCrossed(t *testing.T) {
	book := orderbook.New("AAPL")
	book.Insert(order("AAPL", model.Buy, 10, 99, 1))
	book.Insert(order("AAPL", model.Sell, 10, 101, 2))

	_, ok := book.Match(model.Sell)
	assert.False(t, ok)
}

func TestMatch_ExhaustiveSweepAcrossMultipleLevels(t *testing.T) {
	book := orderbook.New("AAPL")
	book.Insert(order("AAPL", model.Sell, 5, 100, 1))
	book.Insert(order("AAPL", model.Sell, 5, 101, 2))
	book.Insert(order("AAPL", model.Buy, 12, 101, 3)) // aggressor, sweeps both levels

	var trades []model.Trade
	for {
		trade, ok := book.Match(model.Buy)
		if !ok {
			break
		}
		trades = append(trades, trade)
	}

	require.Len(t, trades, 2)
	assert.Equal(t, "100", trades[0].Price.String())
	assert.Equal(t, int64(5), trades[0].Quantity)
	assert.Equal(t, "101", trades[1].Price.String())
	assert.Equal(t, int64(5), trades[1].Quantity)

	require.Len(t, book.Buys, 1)
	assert.Equal(t, int64(2), book.Buys[0].Quantity)
	assert.Empty(t, book.Sells)
}
