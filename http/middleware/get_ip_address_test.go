package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/switchback"
	"github.com/xy-planning-network/switchback/http/middleware"
)

func TestGetIPAddress(t *testing.T) {
	tcs := []struct {
		name     string
		hm       http.Header
		expected string
	}{
		{"No-Match", make(http.Header), "0.0.0.0"},
		{
			"Only-Private-IP",
			func() http.Header {
				h := make(http.Header)
				h.Set("X-Forwarded-For", "192.168.0.0")
				return h
			}(),
			"0.0.0.0",
		},
		{
			"Only-Public-IP",
			func() http.Header {
				h := make(http.Header)
				h.Set("X-Forwarded-For", "1.1.1.1")
				return h
			}(),
			"1.1.1.1",
		},
		{
			"Get-Before-Proxy",
			func() http.Header {
				h := make(http.Header)
				h.Set("X-Real-Ip", "10.0.0.1,1.1.1.1")
				return h
			}(),
			"1.1.1.1",
		},
		{
			"Get-First-Public",
			func() http.Header {
				h := make(http.Header)
				h.Set("X-Real-Ip", "10.255.255.255,8.8.8.8,1.1.1.1,172.16.0.0")
				return h
			}(),
			"1.1.1.1",
		},
		{
			"Skip-Carrier-NAT",
			func() http.Header {
				h := make(http.Header)
				h.Set("X-Forwarded-For", "8.8.4.4, 100.64.1.2")
				return h
			}(),
			"8.8.4.4",
		},
		{
			"IPv6",
			func() http.Header {
				h := make(http.Header)
				h.Set("X-Forwarded-For", "2606:4700::1111, fd00::1")
				return h
			}(),
			"2606:4700::1111",
		},
		{
			"Garbage",
			func() http.Header {
				h := make(http.Header)
				h.Set("X-Forwarded-For", "unknown")
				return h
			}(),
			"0.0.0.0",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, middleware.GetIPAddress(tc.hm))
		})
	}
}

func TestInjectIPAddress(t *testing.T) {
	// Arrange
	var actual any
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.1, 8.8.8.8")

	// Act
	middleware.InjectIPAddress()(http.HandlerFunc(func(_ http.ResponseWriter, rx *http.Request) {
		actual = rx.Context().Value(switchback.IpAddrKey)
	})).ServeHTTP(httptest.NewRecorder(), r)

	// Assert
	require.Equal(t, "8.8.8.8", actual)
}
