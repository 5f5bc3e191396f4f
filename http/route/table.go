package route

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/switchback"
	"golang.org/x/text/cases"
)

// A Table is the ordered, immutable set of Routes declared for an app.
// A Table is safe for concurrent use.
type Table struct {
	routes   []compiled
	fallback *compiled
}

type compiled struct {
	Route
	matcher *mux.Route
}

// NewTable validates and compiles routes, keeping their declaration order.
//
// NewTable returns an error wrapping [switchback.ErrBadConfig] if more than one Route
// is an error handler, if a Route's Pattern is empty or does not begin with "/",
// if a Route's StatusCode is not a valid HTTP status
// or if a Pattern cannot be compiled.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{routes: make([]compiled, 0, len(routes))}
	for i, r := range routes {
		if r.StatusCode != 0 && (r.StatusCode < 100 || r.StatusCode > 599) {
			return nil, fmt.Errorf("%w: route %d has status code %d", switchback.ErrBadConfig, i, r.StatusCode)
		}

		if r.ErrorHandler {
			if t.fallback != nil {
				return nil, fmt.Errorf("%w: route %d is a second error handler", switchback.ErrBadConfig, i)
			}

			t.fallback = &compiled{Route: r}
			continue
		}

		if r.Method == "" {
			r.Method = http.MethodGet
		}

		c, err := compile(r)
		if err != nil {
			return nil, fmt.Errorf("%w: route %d: %s", switchback.ErrBadConfig, i, err)
		}

		t.routes = append(t.routes, c)
	}

	return t, nil
}

// Match selects the Route answering path and method.
//
// Routes are tried in declaration order and the first whose Method equals method
// and whose Pattern matches path wins.
// When none does, Match falls back to the error handler with a 404,
// unless the error handler sets its own StatusCode.
// Without an error handler, Match returns ErrNoRoute.
//
// Match has no side effects: repeated calls with the same arguments return equal results.
func (t *Table) Match(path, method string) (*MatchResult, error) {
	for _, c := range t.routes {
		if c.Method != method {
			continue
		}

		params, ok := c.match(path)
		if !ok {
			continue
		}

		return c.result(path, params, http.StatusOK), nil
	}

	if t.fallback == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNoRoute, method, path)
	}

	res := t.fallback.result(path, nil, http.StatusNotFound)
	res.ErrorRoute = true
	return res, nil
}

// Routes returns a copy of the Routes in t, error handler last.
func (t *Table) Routes() []Route {
	rs := make([]Route, 0, len(t.routes)+1)
	for _, c := range t.routes {
		rs = append(rs, c.Route)
	}

	if t.fallback != nil {
		rs = append(rs, t.fallback.Route)
	}

	return rs
}

// Match compiles routes into a Table and matches path and method against it.
// Prefer building a Table once with NewTable when matching many requests.
func Match(routes []Route, path, method string) (*MatchResult, error) {
	t, err := NewTable(routes...)
	if err != nil {
		return nil, err
	}

	return t.Match(path, method)
}

func compile(r Route) (compiled, error) {
	if r.Pattern == "" || !strings.HasPrefix(r.Pattern, "/") {
		return compiled{}, fmt.Errorf("pattern %q must begin with /", r.Pattern)
	}

	pattern := r.Pattern
	if r.CaseInsensitive {
		pattern = foldPattern(pattern)
	}

	m := mux.NewRouter().NewRoute()
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasSuffix(prefix, "/") {
		m = m.PathPrefix(prefix)
	} else {
		m = m.Path(pattern)
	}

	if err := m.GetError(); err != nil {
		return compiled{}, err
	}

	return compiled{Route: r, matcher: m}, nil
}

func (c compiled) match(path string) (map[string]string, bool) {
	if c.CaseInsensitive {
		path = fold(path)
	}

	req := &http.Request{Method: c.Method, URL: &url.URL{Path: path}}
	var rm mux.RouteMatch
	if !c.matcher.Match(req, &rm) {
		return nil, false
	}

	return rm.Vars, true
}

func (c compiled) result(path string, params map[string]string, status int) *MatchResult {
	if c.StatusCode != 0 {
		status = c.StatusCode
	}

	return &MatchResult{
		URL:        path,
		Pattern:    c.Pattern,
		View:       c.View,
		Controller: c.Controller,
		StatusCode: status,
		Params:     params,
	}
}

// foldPattern folds the literal text of pattern.
// Template names are kept as declared and template regexps get the (?i) flag,
// since folding a regexp changes its meaning (\D becomes \d).
func foldPattern(pattern string) string {
	var b strings.Builder
	depth, start := 0, 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			if depth == 0 {
				b.WriteString(fold(pattern[start:i]))
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}

			depth--
			if depth == 0 {
				b.WriteString(insensitiveVar(pattern[start : i+1]))
				start = i + 1
			}
		}
	}

	// An unbalanced template is left for mux to reject.
	if depth > 0 {
		b.WriteString(pattern[start:])
	} else {
		b.WriteString(fold(pattern[start:]))
	}

	return b.String()
}

// insensitiveVar rewrites "{name:regexp}" into "{name:(?i)regexp}".
func insensitiveVar(v string) string {
	name, re, ok := strings.Cut(v[1:len(v)-1], ":")
	if !ok || re == "" {
		return v
	}

	return "{" + name + ":(?i)" + re + "}"
}

// fold applies Unicode case folding.
// A cases.Caser holds state, so each call builds its own.
func fold(s string) string { return cases.Fold().String(s) }
