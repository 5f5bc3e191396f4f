package logger

import (
	"encoding"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"runtime"

	"github.com/xy-planning-network/switchback"
)

const callerTmpl = "%s:%d"

var (
	_ encoding.TextMarshaler = LogContext{}
	_ slog.LogValuer         = LogContext{}
)

// maskedFields never reach a log in the clear.
var maskedFields = []string{"password", "token", "secret"}

// A LogContext provides additional information and configuration
// for a [Logger] method that cannot be tersely captured in the message itself.
type LogContext struct {
	// Caller overrides the caller file and line number with the provided value.
	//
	// Caller is not logged in the text of a LogContext.
	//
	// Caller helps goroutines identify the callers of the process that spawned it.
	Caller string

	// Data is any information pertinent at the time of the logging event.
	Data map[string]any

	// Error is the error that may or may not have instigated a logging event.
	Error error

	// Request is the *http.Request that may or may not have been open during the logging event.
	Request *http.Request
}

// LogValue groups the non-zero fields of lc.
//
// LogValue implements [log/slog.LogValuer].
func (lc LogContext) LogValue() slog.Value {
	var attrs []slog.Attr
	if len(lc.Data) > 0 {
		data := make([]slog.Attr, 0, len(lc.Data))
		for k, v := range lc.Data {
			data = append(data, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Attr{Key: "data", Value: slog.GroupValue(data...)})
	}

	if lc.Error != nil {
		attrs = append(attrs, slog.String("error", lc.Error.Error()))
	}

	if lc.Request != nil {
		req := []slog.Attr{
			slog.String("method", lc.Request.Method),
			slog.String("url", maskURL(lc.Request.URL)),
		}

		if id, ok := lc.Request.Context().Value(switchback.RequestIDKey).(string); ok {
			req = append(req, slog.String("id", id))
		}

		attrs = append(attrs, slog.Attr{Key: "request", Value: slog.GroupValue(req...)})
	}

	return slog.GroupValue(attrs...)
}

// MarshalText converts LogContext into a JSON representation,
// eliminating zero-value fields or fields not requiring logging.
//
// Values in LogContext.Data that cannot be represented in JSON will cause an error to be thrown.
//
// MarshalText implements [encoding.TextMarshaler].
func (lc LogContext) MarshalText() ([]byte, error) {
	m := make(map[string]any)
	if lc.Data != nil {
		m["data"] = lc.Data
	}

	if lc.Error != nil {
		m["error"] = lc.Error.Error()
	}

	if lc.Request != nil {
		r := make(map[string]any)
		r["method"] = lc.Request.Method
		r["url"] = maskURL(lc.Request.URL)

		header := lc.Request.Header.Clone()
		header.Del("Authorization")
		header.Del("Cookie")
		if len(header) > 0 {
			r["header"] = header
		}

		if lc.Request.PostForm != nil {
			form := make(url.Values, len(lc.Request.PostForm))
			for k, v := range lc.Request.PostForm {
				form[k] = append([]string(nil), v...)
			}

			for _, f := range maskedFields {
				switchback.Mask(form, f)
			}

			r["form"] = form
		}

		m["request"] = r
	}

	return json.Marshal(m)
}

// String stringifies LogContext as a JSON representation of it.
func (lc LogContext) String() string {
	b, err := lc.MarshalText()
	if err != nil {
		return ""
	}

	return string(b)
}

// CurrentCaller retrieves the caller for the caller of CurrentCaller,
// formatted for using as a value in LogContext.Caller.
//
//	myFunc() { 		<- returns this caller
//		func() {
//			CurrentCaller()
//		}()
//	}
func CurrentCaller() string {
	_, file, line, _ := runtime.Caller(2)
	return fmt.Sprintf(callerTmpl, immediateFilepath(file), line)
}

// immediateFilepath shortens file to its parent directory and name:
// /home/dlk/my-project/internal/internal.go => internal/internal.go
func immediateFilepath(file string) string {
	dir, name := path.Split(file)
	return path.Join(path.Base(dir), name)
}

func maskURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	q := u.Query()
	if len(q) == 0 {
		return u.String()
	}

	for _, f := range maskedFields {
		switchback.Mask(q, f)
	}

	masked := *u
	masked.RawQuery = q.Encode()
	return masked.String()
}
