package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/switchback"
	"github.com/xy-planning-network/switchback/http/middleware"
)

func TestReportPanic(t *testing.T) {
	tcs := []struct {
		name string
		env  switchback.Environment
	}{
		{"Development", switchback.Development},
		{"Production", switchback.Production},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("lost the trail") })

			// Act
			require.NotPanics(t, func() {
				middleware.ReportPanic(tc.env)(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			})

			// Assert
			require.Equal(t, http.StatusInternalServerError, w.Code)
		})
	}
}
