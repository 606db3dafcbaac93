// Package model defines the wire and in-memory types shared by every
// component of the exchange core: Order, Trade, Stock, Price and
// SectorMap. The per-symbol order book lives in internal/orderbook.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Side is the direction of an Order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Order is an immutable trader intent, decoded off the order topic. Only
// Quantity is ever mutated after construction, and only by the order book
// manager as the order fills.
type Order struct {
	ID           uuid.UUID `json:"id"`
	StockSymbol  string    `json:"stock_symbol"`
	Side         Side      `json:"side"`
	Quantity     int64     `json:"quantity"`
	Price        Price     `json:"price"`
	Timestamp    int64     `json:"timestamp"` // monotonic unix seconds at origination
	PartialFill  bool      `json:"partial_fill"`
}

// NewOrder constructs an Order with a fresh ID and the current timestamp.
func NewOrder(symbol string, side Side, quantity int64, price Price, partialFill bool) Order {
	return Order{
		ID:          uuid.New(),
		StockSymbol: symbol,
		Side:        side,
		Quantity:    quantity,
		Price:       price,
		Timestamp:   time.Now().Unix(),
		PartialFill: partialFill,
	}
}

// Trade is a completed match between a resting and an aggressing order.
type Trade struct {
	BuyOrderID  uuid.UUID `json:"buy_order_id"`
	SellOrderID uuid.UUID `json:"sell_order_id"`
	StockSymbol string    `json:"stock_symbol"`
	Quantity    int64     `json:"quantity"`
	Price       Price     `json:"price"`
	Timestamp   int64     `json:"timestamp"`
}

// Stock is a quoted price for a symbol, published on the price topic and
// persisted in the KV store.
type Stock struct {
	Symbol string `json:"symbol"`
	Price  Price  `json:"price"`
}
