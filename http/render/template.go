package render

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/xy-planning-network/switchback/http/route"
	"github.com/xy-planning-network/switchback/http/template"
)

// Template renders views naming html/template files:
// a string, or a []string whose first file is the one executed.
type Template struct {
	parser *template.Parser
	pool   *sync.Pool
	data   func(rc Context) any
}

// The TemplateOptFn applies functional options to a *Template when constructing it.
type TemplateOptFn func(*Template)

// WithData replaces what templates are executed with.
// By default, that is a TemplateData.
func WithData(fn func(rc Context) any) TemplateOptFn {
	return func(t *Template) {
		if fn != nil {
			t.data = fn
		}
	}
}

// TemplateData is what a Template executes templates with by default.
type TemplateData struct {
	URL        string
	Params     map[string]string
	Props      route.Props
	StatusCode int
}

// NewTemplate constructs a Template parsing files with p.
func NewTemplate(p *template.Parser, opts ...TemplateOptFn) *Template {
	t := &Template{
		parser: p,
		pool:   &sync.Pool{New: func() any { return new(bytes.Buffer) }},
		data: func(rc Context) any {
			return TemplateData{URL: rc.URL, Params: rc.Params, Props: rc.Props, StatusCode: rc.StatusCode}
		},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Render parses the files view names and executes the first.
func (t *Template) Render(_ context.Context, view route.View, rc Context) (string, error) {
	var fps []string
	switch v := view.(type) {
	case string:
		fps = []string{v}
	case []string:
		fps = v
	default:
		return "", fmt.Errorf("%w: %T is not a template path", ErrUnsupportedView, view)
	}

	tmpl, err := t.parser.Parse(fps...)
	if err != nil {
		return "", fmt.Errorf("cannot parse: %w", err)
	}

	b := t.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer t.pool.Put(b)

	if err := tmpl.Execute(b, t.data(rc)); err != nil {
		return "", err
	}

	return b.String(), nil
}
