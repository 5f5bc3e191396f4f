package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// CacheControl adds a "Cache-Control" header allowing clients to cache responses for maxAge.
//
// If maxAge is not positive, NoopAdapter returns and this middleware does nothing.
func CacheControl(maxAge time.Duration) Adapter {
	if maxAge <= 0 {
		return NoopAdapter
	}

	val := "max-age=" + strconv.Itoa(int(maxAge.Seconds()))
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", val)
			handler.ServeHTTP(w, r)
		})
	}
}
