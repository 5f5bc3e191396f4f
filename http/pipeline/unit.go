package pipeline

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/xy-planning-network/switchback/http/resp"
)

// A Unit handles a request before routing.
// A Unit calls Terminate on w to stop the request from going any further.
type Unit func(w *resp.Writer, r *http.Request) error

// HandlerUnit adapts h into a Unit.
// If h sends headers or terminates, the request goes no further.
func HandlerUnit(h http.Handler) Unit {
	return func(w *resp.Writer, r *http.Request) error {
		h.ServeHTTP(w, r)
		if w.State().HeadersSent {
			w.Terminate()
		}

		return nil
	}
}

// StaticFiles serves GET and HEAD requests for files found in fsys
// and terminates the request.
// Requests for anything else pass through untouched.
//
// If sel is not nil, it picks the codec compressing each file.
func StaticFiles(fsys fs.FS, sel func(*http.Request) resp.CodecSelector) Unit {
	return func(w *resp.Writer, r *http.Request) error {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			return nil
		}

		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" || !fs.ValidPath(name) {
			return nil
		}

		var opts []resp.FileOptFn
		if sel != nil {
			opts = append(opts, resp.CompressWith(sel(r)))
		}

		if _, err := w.FileFS(fsys, name, opts...); err != nil {
			if errors.Is(err, resp.ErrNotFound) {
				return nil
			}

			return err
		}

		w.Terminate()
		return nil
	}
}
