package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/switchback"
	"github.com/xy-planning-network/switchback/ranger"
)

func Test(t *testing.T) {
	// Arrange
	rng, err := newApp(
		ranger.WithConfig(ranger.Config{Env: switchback.Testing, AppTitle: "Example", MetricsPath: "/metrics"}),
		ranger.WithLogOutput(io.Discard),
		ranger.WithMetrics(prometheus.NewRegistry()),
	)
	require.NoError(t, err)

	for _, tc := range []struct {
		name     string
		input    string
		expected int
		contains string
	}{
		{"root", "/", http.StatusOK, `<a href="/trails/half-dome">Half Dome</a>`},
		{"layout", "/", http.StatusOK, "<title>Example</title>"},
		{"trail", "/trails/bright-angel", http.StatusOK, "37 switchbacks over 9.5 miles."},
		{"unknown-trail", "/trails/everest", http.StatusOK, "No trail called everest"},
		{"about", "/about", http.StatusOK, "Served from /about on port 3000."},
		{"about-case-insensitive", "/ABOUT", http.StatusOK, "<h1>About</h1>"},
		{"not-found", "/not-found", http.StatusNotFound, "Nothing lives at /not-found."},
		{"static", "/robots.txt", http.StatusOK, "User-agent: *"},
		{"healthz", "/healthz", http.StatusNoContent, ""},
		{"redirect", "/home", http.StatusMovedPermanently, ""},
		{"metrics", "/metrics", http.StatusOK, "switchback_pipeline_states_total"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			w := httptest.NewRecorder()
			rng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.input, nil))

			// Assert
			require.Equal(t, tc.expected, w.Code)
			require.Contains(t, w.Body.String(), tc.contains)
		})
	}

	t.Run("api", func(t *testing.T) {
		// Act
		w := httptest.NewRecorder()
		rng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/trails", nil))

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

		var actual []Trail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actual))
		require.Equal(t, trails, actual)
	})
}
