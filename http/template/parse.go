package template

import (
	"fmt"
	html "html/template"
	"io/fs"
	"os"
	"path"
)

// NotFound is the embedded template rendering a bare 404 page.
const NotFound = "tmpl/not_found.tmpl"

// A Parser parses HTML templates with the functions provided.
type Parser struct {
	fs  fs.FS
	fns html.FuncMap
}

// NewParser constructs a Parser searching fss in order.
// Without any fs.FS, it searches the current working directory.
func NewParser(fss []fs.FS, opts ...ParserOptFn) *Parser {
	dirs := make([]fs.FS, 0, len(fss)+1)
	for _, d := range fss {
		if d != nil {
			dirs = append(dirs, d)
		}
	}

	if len(dirs) == 0 {
		dirs = append(dirs, os.DirFS("."))
	}

	p := &Parser{
		fs:  &mergeFS{dirs: append(dirs, pkgFS), cache: make(map[string]int)},
		fns: make(html.FuncMap),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// AddFn returns a copy of p including the named function in its function map.
func (p *Parser) AddFn(name string, fn any) *Parser {
	fns := make(html.FuncMap, len(p.fns)+1)
	for k, v := range p.fns {
		fns[k] = v
	}
	fns[name] = fn

	return &Parser{fs: p.fs, fns: fns}
}

// Parse parses the files at fps with the functions provided previously.
// Empty paths are skipped; the resulting template is named after the first file.
func (p *Parser) Parse(fps ...string) (*html.Template, error) {
	files := make([]string, 0, len(fps))
	for _, fp := range fps {
		if fp != "" {
			files = append(files, fp)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w", ErrNoFiles)
	}

	return html.New(path.Base(files[0])).Funcs(p.fns).ParseFS(p.fs, files...)
}
