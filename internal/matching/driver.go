// Package matching hosts the order book manager's driver: the single task
// that, for every order received on the ingress channel, inserts it into
// its symbol's book and drains every resulting trade (spec.md §4.2).
package matching

import (
	"context"

	"go.uber.org/zap"

	exerrors "github.com/exchangesim/core/internal/errors"
	"github.com/exchangesim/core/internal/metrics"
	"github.com/exchangesim/core/internal/model"
	"github.com/exchangesim/core/internal/orderbook"
)

// bookStore is the narrow slice of kvstore.Store the driver needs, declared
// here so tests can supply an in-memory fake instead of a live Redis
// connection.
type bookStore interface {
	WithBookTxn(ctx context.Context, symbol string, fn func(*orderbook.Book) error) error
	SaveBook(ctx context.Context, book *orderbook.Book) error
}

// Driver owns no book state itself; every symbol's book lives in the KV
// store and is read-modify-written once per incoming order (spec.md §5:
// "OBM and MDG share no in-process state").
type Driver struct {
	store   bookStore
	trades  chan<- model.Trade
	logger  *zap.Logger
	strict  bool // partial_fill extension, see PartialFillPolicy
	metrics *metrics.Metrics
}

// PartialFillPolicy selects between the shipped "simple" matcher, which
// ignores Order.PartialFill entirely (authoritative per spec.md §9 open
// question 2), and a stricter extension that refuses to match an order
// against a counterparty that can't cover its full remaining quantity.
type PartialFillPolicy bool

const (
	SimpleFill PartialFillPolicy = false
	StrictFill PartialFillPolicy = true
)

// New builds a Driver. trades is the outbound channel read by the market
// data generator's active-pricing subtask.
func New(store bookStore, trades chan<- model.Trade, logger *zap.Logger, policy PartialFillPolicy, m *metrics.Metrics) *Driver {
	return &Driver{store: store, trades: trades, logger: logger, strict: bool(policy), metrics: m}
}

// Process implements spec.md §4.2's driver loop: insert once, then match
// repeatedly until the book stops crossing. KV errors abandon the order
// (logged, book left unchanged); a corrupted snapshot is logged and
// replaced with a fresh empty book, which the insert then repopulates.
func (d *Driver) Process(ctx context.Context, order model.Order) {
	var trades []model.Trade

	err := d.store.WithBookTxn(ctx, order.StockSymbol, func(book *orderbook.Book) error {
		trades = trades[:0]
		book.Insert(order)

		for {
			if d.strict && !d.coverable(book, order.Side) {
				break
			}
			trade, ok := book.Match(order.Side)
			if !ok {
				break
			}
			trades = append(trades, trade)
		}
		return nil
	})

	if err != nil {
		if ee, ok := exerrors.As(err); ok && (ee.Code == exerrors.Invariant || ee.Code == exerrors.Decode) {
			// A persisted book that fails to decode or fails its sort
			// invariants is presumed corrupted: log it, treat the book as
			// empty, and let this insert be the one that overwrites it
			// (spec.md §7's canonical Invariant-handling policy).
			d.logger.Warn("order book snapshot corrupted, resetting",
				zap.String("symbol", order.StockSymbol), zap.Error(err))
			if resetErr := d.resetAndRetry(ctx, order, &trades); resetErr != nil {
				d.metrics.OrdersDropped.WithLabelValues("storage_error").Inc()
				return
			}
		} else {
			d.logger.Error("abandoning order after storage error",
				zap.String("symbol", order.StockSymbol),
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
			d.metrics.OrdersDropped.WithLabelValues("storage_error").Inc()
			return
		}
	}

	d.metrics.OrdersProcessed.Inc()

	for _, trade := range trades {
		select {
		case d.trades <- trade:
			d.metrics.TradesMatched.Inc()
		case <-ctx.Done():
			return
		}
	}
}

// InsertOnly places order into its symbol's book without draining crosses,
// for use alongside PeriodicMatcher (spec.md §9's secondary strategy): the
// periodic poll, not this insert, is what drains matches in that mode.
func (d *Driver) InsertOnly(ctx context.Context, order model.Order) {
	err := d.store.WithBookTxn(ctx, order.StockSymbol, func(book *orderbook.Book) error {
		book.Insert(order)
		return nil
	})
	if err != nil {
		d.logger.Error("abandoning order after storage error",
			zap.String("symbol", order.StockSymbol),
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		d.metrics.OrdersDropped.WithLabelValues("storage_error").Inc()
		return
	}
	d.metrics.OrdersProcessed.Inc()
}

// resetAndRetry handles the Invariant branch: the corrupted book is
// presumed empty and overwritten by this insert (spec.md §7). A failure to
// persist the fresh book is returned so the caller abandons the order.
func (d *Driver) resetAndRetry(ctx context.Context, order model.Order, trades *[]model.Trade) error {
	book := orderbook.New(order.StockSymbol)
	book.Insert(order)
	for {
		trade, ok := book.Match(order.Side)
		if !ok {
			break
		}
		*trades = append(*trades, trade)
	}
	if err := d.store.SaveBook(ctx, book); err != nil {
		d.logger.Error("failed to persist reset order book",
			zap.String("symbol", order.StockSymbol), zap.Error(err))
		return err
	}
	return nil
}

// coverable implements the strict partial-fill extension: the aggressing
// side's resting counterparty must be able to cover the aggressor's full
// remaining quantity, or matching stops rather than partially filling.
func (d *Driver) coverable(book *orderbook.Book, aggressor model.Side) bool {
	var top *model.Order
	var counter *model.Order
	if aggressor == model.Buy {
		top, counter = book.BestBuy(), book.BestSell()
	} else {
		top, counter = book.BestSell(), book.BestBuy()
	}
	if top == nil || counter == nil {
		return false
	}
	if !top.PartialFill && counter.Quantity < top.Quantity {
		return false
	}
	return true
}
