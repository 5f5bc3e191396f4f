package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/switchback"
	"github.com/xy-planning-network/switchback/http/middleware"
)

func TestRequestID(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	var val string

	// Act
	middleware.RequestID()(http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
		var ok bool
		val, ok = rx.Context().Value(switchback.RequestIDKey).(string)
		require.True(t, ok)
	})).ServeHTTP(w, r)

	// Assert
	require.NotZero(t, val)
	_, err := uuid.Parse(val)
	require.NoError(t, err)
	require.Equal(t, val, w.Header().Get(middleware.RequestIDHeader))
}
