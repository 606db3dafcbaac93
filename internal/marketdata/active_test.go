package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/exchangesim/core/internal/model"
)

func TestActiveMultiplier_BuyAboveCurrentPriceRaisesPrice(t *testing.T) {
	trade := model.Trade{Quantity: 100, Price: model.NewPrice(105)}
	mult := activeMultiplier(trade, 100)
	assert.Greater(t, mult, 1.0)
}

func TestActiveMultiplier_TradeAtCurrentPriceIsNeutral(t *testing.T) {
	trade := model.Trade{Quantity: 100, Price: model.NewPrice(100)}
	assert.Equal(t, 1.0, activeMultiplier(trade, 100))
}

func TestActiveMultiplier_SellBelowCurrentPriceLowersPrice(t *testing.T) {
	trade := model.Trade{Quantity: 100, Price: model.NewPrice(95)}
	mult := activeMultiplier(trade, 100)
	assert.Less(t, mult, 1.0)
}
