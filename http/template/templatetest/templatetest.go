/*
Package templatetest builds in-memory template files for tests,
avoiding testdata/ directories when unit testing template parsing and rendering.
*/
package templatetest

import (
	"io/fs"
	"testing/fstest"

	"github.com/xy-planning-network/switchback/http/template"
)

// A File is a named template body.
type File struct {
	Name string
	Data []byte
}

// NewMockFile constructs a File.
func NewMockFile(name string, data []byte) File { return File{Name: name, Data: data} }

// NewMockFS constructs an fs.FS holding files.
// Files with an empty name are left out; a later file replaces an earlier one of the same name.
func NewMockFS(files ...File) fs.FS {
	m := make(fstest.MapFS, len(files))
	for _, f := range files {
		if f.Name == "" {
			continue
		}
		m[f.Name] = &fstest.MapFile{Data: f.Data, Mode: 0o444}
	}
	return m
}

// NewParser constructs a *template.Parser over the files.
func NewParser(files ...File) *template.Parser {
	return template.NewParser([]fs.FS{NewMockFS(files...)})
}
