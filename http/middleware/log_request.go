package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/xy-planning-network/switchback"
)

// A LogRequestRecord is what LogRequest logs about each request.
type LogRequestRecord struct {
	BodySize       int    `json:"bodySize"`
	Duration       int64  `json:"durationMs"`
	Host           string `json:"host"`
	ID             string `json:"requestId,omitempty"`
	IPAddr         string `json:"ipAddr,omitempty"`
	Method         string `json:"method"`
	Path           string `json:"path"`
	Protocol       string `json:"protocol"`
	Referrer       string `json:"referrer,omitempty"`
	ReqContentType string `json:"reqContentType,omitempty"`
	Scheme         string `json:"scheme,omitempty"`
	Status         int    `json:"status"`
	URI            string `json:"uri"`
	UserAgent      string `json:"userAgent,omitempty"`
}

func (rec LogRequestRecord) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Any(switchback.LogKindKey, switchback.HTTPLogKind),
		slog.Int("bodySize", rec.BodySize),
		slog.Int64("durationMs", rec.Duration),
		slog.String("host", rec.Host),
		slog.String("method", rec.Method),
		slog.String("path", rec.Path),
		slog.String("protocol", rec.Protocol),
		slog.Int("status", rec.Status),
		slog.String("uri", rec.URI),
	}

	for k, v := range map[string]string{
		"requestId":      rec.ID,
		"ipAddr":         rec.IPAddr,
		"referrer":       rec.Referrer,
		"reqContentType": rec.ReqContentType,
		"scheme":         rec.Scheme,
		"userAgent":      rec.UserAgent,
	} {
		if v != "" {
			attrs = append(attrs, slog.String(k, v))
		}
	}

	return attrs
}

// LogRequest logs a LogRequestRecord for every request once it is handled.
//
// LogRequest scrubs the values for the following query keys:
// - password
// - token
//
// If l is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(l *slog.Logger) Adapter {
	if l == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			h.ServeHTTP(sw, r)

			q := r.URL.Query()
			switchback.Mask(q, "password")
			switchback.Mask(q, "token")

			uri := r.URL.Path
			if query := q.Encode(); query != "" {
				uri += "?" + query
			}

			rec := LogRequestRecord{
				BodySize:       sw.size,
				Duration:       time.Since(start).Milliseconds(),
				Host:           r.Host,
				Method:         r.Method,
				Path:           r.URL.Path,
				Protocol:       r.Proto,
				Referrer:       r.Header.Get("Referrer"),
				ReqContentType: r.Header.Get("Content-Type"),
				Scheme:         r.URL.Scheme,
				Status:         sw.Status(),
				URI:            uri,
				UserAgent:      r.UserAgent(),
			}

			if id, ok := r.Context().Value(switchback.RequestIDKey).(string); ok {
				rec.ID = id
			}

			if ip, ok := r.Context().Value(switchback.IpAddrKey).(string); ok {
				rec.IPAddr = ip
			}

			l.LogAttrs(context.Background(), slog.LevelInfo, r.Method+" "+uri, rec.attrs()...)
		})
	}
}

// A statusWriter remembers the status code and body size written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}

	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}

	n, err := sw.ResponseWriter.Write(b)
	sw.size += n
	return n, err
}

// Status is the code written, or 200 if nothing was.
func (sw *statusWriter) Status() int {
	if sw.status == 0 {
		return http.StatusOK
	}

	return sw.status
}

func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sw *statusWriter) Unwrap() http.ResponseWriter { return sw.ResponseWriter }
