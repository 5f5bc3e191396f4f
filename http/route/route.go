/*
Package route declares the routes of a switchback app and matches requests against them.

Routes are declared once, in order, and compiled into an immutable Table.
Matching walks the Table in declaration order: the first route whose method
and pattern fit the request wins. When nothing fits, the one route flagged
as the error handler answers with a 404.

Patterns are literal paths, prefixes ending in "/*",
or templates with named segments such as "/posts/{id:[0-9]+}".
*/
package route

import (
	"context"
	"net/http"
)

// A View is an opaque handle to renderable content.
// The route package never inspects it; a renderer does.
type View any

// Props is the data a Controller computes for a View.
type Props map[string]any

// A Controller runs before a View is rendered, merging whatever data it needs into props.
// The MatchResult that selected the Controller is available from the request with FromContext.
type Controller func(r *http.Request, props Props) error

// A Route maps a method and path pattern to a View.
type Route struct {
	// Pattern is the path the Route answers to.
	// It is ignored when ErrorHandler is set.
	Pattern string

	// Method is compared case-sensitively to the request's method.
	// It defaults to GET.
	Method string

	// CaseInsensitive matches Pattern against the path after case-folding the path
	// and the literal text of Pattern. Template regexps match case-insensitively.
	CaseInsensitive bool

	// ErrorHandler marks the Route answering every request no other Route matches.
	// At most one Route in a Table may set it.
	ErrorHandler bool

	// StatusCode overrides the status rendered with the View.
	StatusCode int

	Controller Controller
	View       View
}

// A MatchResult is the outcome of matching one request against a Table.
type MatchResult struct {
	URL        string
	Pattern    string
	View       View
	Controller Controller
	StatusCode int

	// Params holds the values of named segments in the matched Pattern.
	Params map[string]string

	// ErrorRoute reports whether the Table fell back to its error handler.
	ErrorRoute bool
}

type matchKey struct{}

// NewContext returns a copy of ctx carrying m.
func NewContext(ctx context.Context, m *MatchResult) context.Context {
	return context.WithValue(ctx, matchKey{}, m)
}

// FromContext returns the MatchResult carried by ctx, if any.
func FromContext(ctx context.Context) (*MatchResult, bool) {
	m, ok := ctx.Value(matchKey{}).(*MatchResult)
	return m, ok && m != nil
}
