package model

import (
	"github.com/shopspring/decimal"
)

// Price is a positive decimal quoted to 4 fractional digits. It wraps
// decimal.Decimal rather than float64 so that repeated multiplier chains in
// the market data generator don't accumulate binary-rounding drift before
// Clamp4 is applied.
type Price struct {
	decimal.Decimal
}

// floorPrice is the minimum price any Stock may ever carry (invariant 4 of
// the spec: price >= 0.0001).
var floorPrice = decimal.New(1, -4)

// scale4 is the multiplier used to round to 4 decimal places.
const scale4 = 4

// NewPrice builds a Price from a float64, already clamped/rounded.
func NewPrice(v float64) Price {
	return Clamp4(Price{decimal.NewFromFloat(v)})
}

// Clamp4 rounds p to 4 decimal places and floors it at 0.0001, matching
// clamp4(x) = max(round(x*10000)/10000, 0.0001) from the spec.
func Clamp4(p Price) Price {
	rounded := p.Decimal.Round(scale4)
	if rounded.LessThan(floorPrice) {
		return Price{floorPrice}
	}
	return Price{rounded}
}

// Mul multiplies the price by a scalar multiplier and clamps the result.
func (p Price) Mul(multiplier float64) Price {
	return Clamp4(Price{p.Decimal.Mul(decimal.NewFromFloat(multiplier))})
}

// Float64 returns the price as a float64, for signal computations that are
// inherently approximate (book imbalance ratios, etc).
func (p Price) Float64() float64 {
	f, _ := p.Decimal.Float64()
	return f
}
