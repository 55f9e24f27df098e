package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := Wrap(cause, CodeInternalError, "database", "Database unavailable", http.StatusInternalServerError)

	assert.True(t, Is(appErr, cause), "errors.Is должен доставать причину через Unwrap")

	var target *AppError
	assert.True(t, As(appErr, &target))
	assert.Equal(t, CodeInternalError, target.Code)
}

func TestAppError_MarshalHidesInternalError(t *testing.T) {
	cause := errors.New("password hash mismatch for user 42")
	appErr := Wrap(cause, CodeInternalError, "auth", "Internal server error", http.StatusInternalServerError)

	raw, err := json.Marshal(appErr)
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "password hash", "Внутренняя причина не должна утекать клиенту")
	assert.Contains(t, string(raw), "Internal server error")
}

func TestAppError_WithDetails(t *testing.T) {
	appErr := ValidationError(map[string]string{"email": "invalid format"})

	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)

	raw, err := json.Marshal(appErr)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), "invalid format")
}

func TestPredefinedErrors_Codes(t *testing.T) {
	assert.Equal(t, http.StatusConflict, ErrProposalTerminal.HTTPCode)
	assert.Equal(t, http.StatusConflict, ErrDeliveryStatusRegression.HTTPCode)
	assert.Equal(t, CodeInvalidTransition, ErrProposalTerminal.Code)
	assert.Equal(t, http.StatusForbidden, ErrProposalActorForbidden.HTTPCode)
	assert.Equal(t, http.StatusNotFound, ErrThreadNotFound.HTTPCode)
}
