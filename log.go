package switchback

import (
	"log/slog"
	"net/url"
	"strings"
)

const (
	LogKindKey = "kind"
	LogMaskVal = "xxxxxx"
)

var (
	AppLogKind    = slog.StringValue("app")
	HTTPLogKind   = slog.StringValue("http")
	RenderLogKind = slog.StringValue("render")

	// MaskedLogValue is a convenience [log/slog.Value]
	// to be used in implementations of [log/slog.LogValuer]
	// to hide sensitive data from log messages.
	MaskedLogValue = slog.StringValue(LogMaskVal)
)

// Mask replaces every value found under key with LogMaskVal.
// Keys are compared case-insensitively; multiple values are squashed into one.
func Mask(vals url.Values, key string) {
	for k := range vals {
		if strings.EqualFold(k, key) {
			vals[k] = []string{LogMaskVal}
		}
	}
}

// NewLogLevel parses s into a [log/slog.Level], defaulting to [log/slog.LevelInfo].
func NewLogLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "FATAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
