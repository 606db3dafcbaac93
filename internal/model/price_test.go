package model_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/exchangesim/core/internal/model"
)

func TestClamp4_RoundsToFourDecimals(t *testing.T) {
	p := model.Clamp4(model.Price{Decimal: decimal.NewFromFloat(1.23456789)})
	assert.Equal(t, "1.2346", p.Decimal.String())
}

func TestClamp4_FloorsAtMinimum(t *testing.T) {
	p := model.Clamp4(model.Price{Decimal: decimal.NewFromFloat(0.00001)})
	assert.Equal(t, "0.0001", p.Decimal.String())
}

func TestMul_ClampsResult(t *testing.T) {
	p := model.NewPrice(100)
	doubled := p.Mul(2)
	assert.Equal(t, "200", doubled.Decimal.String())
}
