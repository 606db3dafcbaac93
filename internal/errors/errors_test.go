package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchangesim/core/internal/errors"
)

func TestWrap_NilIsSafe(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.Storage, "anything"))
}

func TestWrap_PreservesCauseAndCode(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := errors.Wrap(cause, errors.Transport, "publish failed")

	require.NotNil(t, err)
	assert.Equal(t, errors.Transport, err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestAs_FindsWrappedExchangeError(t *testing.T) {
	inner := errors.New(errors.Decode, "bad payload")
	outer := fmt.Errorf("context: %w", inner)

	found, ok := errors.As(outer)
	require.True(t, ok)
	assert.Equal(t, errors.Decode, found.Code)
}

func TestAs_NotFoundForPlainError(t *testing.T) {
	_, ok := errors.As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestCodeOf_EmptyForNonExchangeError(t *testing.T) {
	assert.Equal(t, errors.ErrorCode(""), errors.CodeOf(fmt.Errorf("plain")))
}

func TestWithDetail_Chains(t *testing.T) {
	err := errors.New(errors.Invariant, "bad book").WithDetail("symbol", "AAPL")
	assert.Equal(t, "AAPL", err.Details["symbol"])
}
