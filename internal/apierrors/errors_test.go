package apierrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		wantAuth      bool
		wantTransient bool
		wantRequest   bool
	}{
		{name: "401 is an auth error", statusCode: http.StatusUnauthorized, wantAuth: true},
		{name: "500 is transient", statusCode: http.StatusInternalServerError, wantTransient: true},
		{name: "503 is transient", statusCode: http.StatusServiceUnavailable, wantTransient: true},
		{name: "400 is a request error", statusCode: http.StatusBadRequest, wantRequest: true},
		{name: "403 is a request error", statusCode: http.StatusForbidden, wantRequest: true},
		{name: "404 is a request error", statusCode: http.StatusNotFound, wantRequest: true},
		{name: "429 is a request error", statusCode: http.StatusTooManyRequests, wantRequest: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := FromStatus(tt.statusCode, "http://example.com/lists", "body")

			require.Error(t, err)
			assert.Equal(t, tt.wantAuth, IsAuth(err))
			assert.Equal(t, tt.wantTransient, IsTransient(err))
			assert.Equal(t, tt.wantRequest, IsRequest(err))
			assert.Contains(t, err.Error(), fmt.Sprintf("HTTP %d", tt.statusCode))
		})
	}
}

func TestRequestError_StatusCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("rename failed: %w", FromStatus(http.StatusConflict, "http://example.com", "conflict"))

	var requestErr *RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, http.StatusConflict, requestErr.StatusCode)
	assert.Equal(t, "conflict", requestErr.Message)
}

func TestNewInvalidRequest(t *testing.T) {
	t.Parallel()

	err := NewInvalidRequest("list id must be a positive integer")

	assert.True(t, IsRequest(err))
	assert.Equal(t, "invalid request: list id must be a positive integer", err.Error())
}

func TestWrappedCauses(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")

	authErr := NewAuthError("refresh token rejected", cause)
	assert.ErrorIs(t, authErr, cause)
	assert.Contains(t, authErr.Error(), "refresh token rejected")
	assert.Contains(t, authErr.Error(), "connection reset")

	transientErr := NewTransientError("token endpoint unreachable", cause)
	assert.ErrorIs(t, transientErr, cause)
	assert.False(t, IsAuth(transientErr))

	assert.Equal(t, "authentication failed: bad password", NewAuthError("bad password", nil).Error())
	assert.Equal(t, "transient failure: timeout", NewTransientError("timeout", nil).Error())
}

func TestFromTransport(t *testing.T) {
	t.Parallel()

	t.Run("cancellation passes through", func(t *testing.T) {
		t.Parallel()

		err := FromTransport("request failed", fmt.Errorf("do: %w", context.Canceled))

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, IsTransient(err))
	})

	t.Run("deadline is transient", func(t *testing.T) {
		t.Parallel()

		err := FromTransport("request failed", context.DeadlineExceeded)

		assert.True(t, IsTransient(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestPredicates_Nil(t *testing.T) {
	t.Parallel()

	assert.False(t, IsAuth(nil))
	assert.False(t, IsTransient(nil))
	assert.False(t, IsRequest(nil))
}
