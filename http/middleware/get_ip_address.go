package middleware

import (
	"context"
	"net/http"
	"net/netip"
	"strings"

	"github.com/xy-planning-network/switchback"
)

const unknownIPAddr = "0.0.0.0"

// ipHeaders are read in order; the first public address found wins.
var ipHeaders = []string{"X-Forwarded-For", "X-Real-Ip"}

// nonPublic lists the IANA special-purpose ranges netip.Addr.IsPrivate does not cover.
var nonPublic = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
}

// InjectIPAddress stores the client's address, as found by GetIPAddress,
// in the request context under switchback.IpAddrKey.
func InjectIPAddress() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), switchback.IpAddrKey, GetIPAddress(r.Header))
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIPAddress reads the "X-Forwarded-For" and then the "X-Real-Ip" header
// for the address of the client.
//
// Each header is walked from right to left, so the address returned is the one
// appended just before the nearest proxy. Addresses in non-public ranges are skipped.
// GetIPAddress returns "0.0.0.0" when no public address is found.
func GetIPAddress(hm http.Header) string {
	for _, h := range ipHeaders {
		addrs := strings.Split(hm.Get(h), ",")
		for i := len(addrs) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(addrs[i]))
			if err != nil || !isPublic(addr) {
				continue
			}
			return addr.String()
		}
	}
	return unknownIPAddr
}

func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return false
	}
	for _, p := range nonPublic {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}
