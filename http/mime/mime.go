// Package mime resolves the content type of a response body,
// either from a logical tag naming what kind of body it is or from a file name.
package mime

import (
	stdmime "mime"
	"path/filepath"
	"strings"
)

// DefaultType is the content type of anything that cannot be resolved otherwise.
const DefaultType = "text/plain; charset=utf-8"

// A Tag names the kind of body a response sends.
type Tag string

const (
	Text   Tag = "text"
	Markup Tag = "markup"
	JSON   Tag = "json"
	XML    Tag = "xml"
)

var tagTypes = map[Tag]string{
	Text:   "text/plain; charset=utf-8",
	Markup: "text/html; charset=utf-8",
	JSON:   "application/json; charset=utf-8",
	XML:    "application/xml; charset=utf-8",
}

// A Resolver maps tags and file names to content types.
type Resolver interface {
	ForTag(t Tag) string
	ForFile(name string) string
}

type std struct{}

// Default is the Resolver backing ForTag and ForFile.
var Default Resolver = std{}

func (std) ForTag(t Tag) string {
	ct, ok := tagTypes[t]
	if !ok {
		return DefaultType
	}

	return ct
}

func (std) ForFile(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return DefaultType
	}

	if ct := stdmime.TypeByExtension(ext); ct != "" {
		return ct
	}

	// NOTE(dlk): the stdlib table leans on the host's mime.types for anything
	// beyond a handful of web types; tags cover the bodies we send ourselves.
	switch ext {
	case ".txt", ".text":
		return tagTypes[Text]
	case ".htm", ".html":
		return tagTypes[Markup]
	case ".json":
		return tagTypes[JSON]
	case ".xml":
		return tagTypes[XML]
	}

	return DefaultType
}

// ForTag resolves t with the Default Resolver.
func ForTag(t Tag) string { return Default.ForTag(t) }

// ForFile resolves name with the Default Resolver.
func ForFile(name string) string { return Default.ForFile(name) }
