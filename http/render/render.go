/*
Package render turns the view of a matched route into markup.

The pipeline hands every view to a Renderer along with the Context of the request.
A Renderer returning an empty string has nothing to send,
typically because it already wrote the response itself.

NewTemplate renders views naming html/template files, NewTempl renders templ components
and Chain combines them so an app can mix both.
*/
package render

import (
	"context"
	"errors"
	"net/http"

	"github.com/xy-planning-network/switchback/http/resp"
	"github.com/xy-planning-network/switchback/http/route"
)

//go:generate mockgen -destination=rendertest/mock_renderer.go -package=rendertest . Renderer

var ErrUnsupportedView = errors.New("unsupported view")

// A Context is what a Renderer knows about the request whose view it renders.
type Context struct {
	Request  *http.Request
	Response *resp.Writer

	// Port is the port the server listens on.
	Port string

	URL        string
	Params     map[string]string
	Props      route.Props
	StatusCode int
}

// A Renderer renders a view into markup.
type Renderer interface {
	Render(ctx context.Context, view route.View, rc Context) (string, error)
}

// The RenderFunc type is an adapter to allow the use of ordinary functions as Renderers.
type RenderFunc func(ctx context.Context, view route.View, rc Context) (string, error)

// Render calls fn(ctx, view, rc).
func (fn RenderFunc) Render(ctx context.Context, view route.View, rc Context) (string, error) {
	return fn(ctx, view, rc)
}

// Chain tries each Renderer in order, moving on whenever one returns ErrUnsupportedView.
func Chain(rs ...Renderer) Renderer {
	return RenderFunc(func(ctx context.Context, view route.View, rc Context) (string, error) {
		for _, r := range rs {
			markup, err := r.Render(ctx, view, rc)
			if errors.Is(err, ErrUnsupportedView) {
				continue
			}

			return markup, err
		}

		return "", ErrUnsupportedView
	})
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying rc.
func NewContext(ctx context.Context, rc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext retrieves the Context NewContext stored in ctx.
func FromContext(ctx context.Context) (Context, bool) {
	rc, ok := ctx.Value(ctxKey{}).(Context)
	return rc, ok
}
