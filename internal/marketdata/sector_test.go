package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectorShouldMove_BelowThresholdDoesNothing(t *testing.T) {
	_, shouldMove := sectorShouldMove(100, 100.01) // 0.01% deviation
	assert.False(t, shouldMove)
}

func TestSectorShouldMove_AboveThresholdRising(t *testing.T) {
	rising, shouldMove := sectorShouldMove(100, 100.5) // 0.5% deviation
	assert.True(t, shouldMove)
	assert.True(t, rising)
}

func TestSectorShouldMove_AboveThresholdFalling(t *testing.T) {
	rising, shouldMove := sectorShouldMove(100, 99.5)
	assert.True(t, shouldMove)
	assert.False(t, rising)
}

func TestSectorImpulse_RisingStaysInUpperRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		mult := sectorImpulse(true)
		assert.GreaterOrEqual(t, mult, 1.00)
		assert.Less(t, mult, 1.10)
	}
}

func TestSectorImpulse_FallingStaysInLowerRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		mult := sectorImpulse(false)
		assert.GreaterOrEqual(t, mult, 0.90)
		assert.Less(t, mult, 1.00)
	}
}
