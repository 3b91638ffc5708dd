package errors

import (
	stderrors "errors"
	"io"
	"net/http"
	"testing"

	"roadnet/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_WithDetailsStillMatches(t *testing.T) {
	err := ErrInvalidQuery.WithDetails("waypoints: must have at least 2 items")

	assert.True(t, errors.Is(err, ErrInvalidQuery))
	assert.False(t, errors.Is(err, ErrNoPath))
	assert.Equal(t, "The query is invalid: waypoints: must have at least 2 items", err.Error())
	assert.Empty(t, ErrInvalidQuery.Details())
}

func TestBaseError_WrapMessage(t *testing.T) {
	err := ErrNoPath.WrapMessage("leg 2")

	appErr, ok := errors.AsType[AppError](err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPCode())
	assert.Equal(t, "NO_PATH", appErr.ErrorCode())
	assert.True(t, errors.Is(err, ErrNoPath))
}

func TestStoreError(t *testing.T) {
	err := NewStoreError(io.ErrUnexpectedEOF, "site 42")

	assert.Equal(t, http.StatusBadGateway, err.HTTPCode())
	assert.Equal(t, "SENSOR_STORE_FAILED", err.ErrorCode())
	assert.Equal(t, "site 42", err.Details())
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.Contains(t, err.Error(), "sensor store query failed")
}
