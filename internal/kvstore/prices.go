package kvstore

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	exerrors "github.com/exchangesim/core/internal/errors"
	"github.com/exchangesim/core/internal/model"
)

// GetPrice reads a single symbol's current price from the stocks:prices
// hash. A missing field means the symbol was never seeded; callers treat
// that as a Storage error rather than silently defaulting, since an
// unseeded symbol is a bootstrap bug, not a valid empty state.
func (s *Store) GetPrice(ctx context.Context, symbol string) (model.Price, error) {
	raw, err := s.client.HGet(ctx, pricesKey, symbol).Result()
	if err == redis.Nil {
		return model.Price{}, exerrors.Newf(exerrors.Storage, "price for %s not seeded", symbol)
	}
	if err != nil {
		return model.Price{}, exerrors.Wrapf(err, exerrors.Storage, "get price for %s", symbol)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Price{}, exerrors.Wrapf(err, exerrors.Decode, "decode price for %s", symbol)
	}
	return model.Clamp4(model.Price{Decimal: d}), nil
}

// SetPrice writes a symbol's price and is the sole mutator of stocks:prices
// (the three MDG subtasks are the only callers). Concurrent writes to
// different symbols are independent hash fields; concurrent writes to the
// same symbol race by design — spec.md §4.3.4 accepts last-writer-wins.
func (s *Store) SetPrice(ctx context.Context, symbol string, price model.Price) error {
	price = model.Clamp4(price)
	if err := s.client.HSet(ctx, pricesKey, symbol, price.Decimal.String()).Err(); err != nil {
		return exerrors.Wrapf(err, exerrors.Storage, "set price for %s", symbol)
	}
	return nil
}

// AllPrices returns every seeded symbol's current price, used by the
// sector-co-movement sweep and the gateway's price snapshot.
func (s *Store) AllPrices(ctx context.Context) (map[string]model.Price, error) {
	raw, err := s.client.HGetAll(ctx, pricesKey).Result()
	if err != nil {
		return nil, exerrors.Wrap(err, exerrors.Storage, "list prices")
	}

	out := make(map[string]model.Price, len(raw))
	for symbol, value := range raw {
		d, err := decimal.NewFromString(value)
		if err != nil {
			// A single malformed field shouldn't sink the whole sweep;
			// skip it and let the next successful write correct it.
			continue
		}
		out[symbol] = model.Clamp4(model.Price{Decimal: d})
	}
	return out, nil
}

// SectorMap returns the static symbol -> sector mapping from stocks:sector.
func (s *Store) SectorMap(ctx context.Context) (model.SectorMap, error) {
	raw, err := s.client.HGetAll(ctx, sectorKey).Result()
	if err != nil {
		return nil, exerrors.Wrap(err, exerrors.Storage, "load sector map")
	}
	return model.SectorMap(raw), nil
}
