package ranger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/switchback"
	"github.com/xy-planning-network/switchback/ranger"
)

func TestNewConfig(t *testing.T) {
	// Arrange
	t.Setenv("ENVIRONMENT", "testing")
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "switchback.local")
	t.Setenv("BASE_URL", "")
	t.Setenv("SERVER_READ_TIMEOUT", "1s")
	t.Setenv("TLS_CERT_FILE", "")
	t.Setenv("TLS_KEY_FILE", "")
	t.Setenv("METRICS_PATH", "/metrics")

	// Act
	cfg, err := ranger.NewConfig()

	// Assert
	require.NoError(t, err)
	require.Equal(t, switchback.Testing, cfg.Env)
	require.Equal(t, ":8080", cfg.Addr())
	require.Equal(t, time.Second, cfg.ReadTimeout)
	require.Equal(t, 120*time.Second, cfg.IdleTimeout)
	require.False(t, cfg.TLS())
	require.Equal(t, "http://switchback.local:8080", cfg.URL().String())
}

func TestNewConfigBaseURL(t *testing.T) {
	// Arrange
	t.Setenv("ENVIRONMENT", "PRODUCTION")
	t.Setenv("BASE_URL", "https://example.com/app")
	t.Setenv("TLS_CERT_FILE", "")
	t.Setenv("TLS_KEY_FILE", "")
	t.Setenv("METRICS_PATH", "")

	// Act
	cfg, err := ranger.NewConfig()

	// Assert
	require.NoError(t, err)
	require.Equal(t, switchback.Production, cfg.Env)
	require.Equal(t, "https://example.com/app", cfg.URL().String())
}

func TestNewConfigErrors(t *testing.T) {
	tcs := []struct {
		name string
		env  map[string]string
	}{
		{"Bad-Environment", map[string]string{"ENVIRONMENT": "moon"}},
		{"Bad-Duration", map[string]string{"SERVER_READ_TIMEOUT": "soon"}},
		{"Cert-Without-Key", map[string]string{"TLS_CERT_FILE": "cert.pem", "TLS_KEY_FILE": ""}},
		{"Key-Without-Cert", map[string]string{"TLS_CERT_FILE": "", "TLS_KEY_FILE": "key.pem"}},
		{"Relative-Metrics-Path", map[string]string{"METRICS_PATH": "metrics"}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			for k, v := range map[string]string{
				"ENVIRONMENT":         "TESTING",
				"SERVER_READ_TIMEOUT": "5s",
				"TLS_CERT_FILE":       "",
				"TLS_KEY_FILE":        "",
				"METRICS_PATH":        "/metrics",
			} {
				t.Setenv(k, v)
			}

			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			// Act
			_, err := ranger.NewConfig()

			// Assert
			require.ErrorIs(t, err, switchback.ErrBadConfig)
		})
	}
}

func TestConfigTLS(t *testing.T) {
	cfg := ranger.Config{Host: "localhost", Port: ":8443", TLSCertFile: "cert.pem", TLSKeyFile: "key.pem"}
	require.True(t, cfg.TLS())
	require.Equal(t, ":8443", cfg.Addr())
	require.Equal(t, "https://localhost:8443", cfg.URL().String())
}
