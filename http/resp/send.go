package resp

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"

	"github.com/xy-planning-network/switchback/http/mime"
)

// Text responds with body as plain text.
func (w *Writer) Text(body string, opts ...Fn) error {
	return w.sendString(mime.Text, body, opts)
}

// Html responds with body as markup.
// The body is sent as is; escaping it is up to whatever produced it.
func (w *Writer) Html(body string, opts ...Fn) error {
	return w.sendString(mime.Markup, body, opts)
}

// Json responds with data encoded as JSON.
// If data cannot be encoded, nothing is sent.
func (w *Writer) Json(data any, opts ...Fn) error {
	b := pool.Get().(*bytes.Buffer)
	b.Reset()
	defer pool.Put(b)

	if err := json.NewEncoder(b).Encode(data); err != nil {
		return fmt.Errorf("%w: cannot encode json: %s", ErrInvalid, err)
	}

	return w.send(mime.JSON, b, opts)
}

// Xml responds with data encoded as XML.
// A string or []byte is taken to be XML already and sent as is.
func (w *Writer) Xml(data any, opts ...Fn) error {
	b := pool.Get().(*bytes.Buffer)
	b.Reset()
	defer pool.Put(b)

	switch v := data.(type) {
	case string:
		b.WriteString(v)
	case []byte:
		b.Write(v)
	default:
		b.WriteString(xml.Header)
		if err := xml.NewEncoder(b).Encode(data); err != nil {
			return fmt.Errorf("%w: cannot encode xml: %s", ErrInvalid, err)
		}
	}

	return w.send(mime.XML, b, opts)
}

// Redirect responds by redirecting to url.
//
// The default status code is 302.
// If Code set the status code to something other than a 3xx status,
// Redirect overwrites it with 302.
func (w *Writer) Redirect(url string, opts ...Fn) error {
	rr, err := newResponse(http.StatusFound, opts)
	if err != nil {
		return err
	}

	if rr.code < http.StatusMultipleChoices || rr.code > http.StatusPermanentRedirect {
		rr.code = http.StatusFound
	}

	w.mu.Lock()
	if err := w.writable(); err != nil {
		w.mu.Unlock()
		return err
	}

	copyHeader(w.w.Header(), rr.header)
	w.state.HeadersSent = true
	w.state.StatusCode = rr.code
	w.bodySent = true
	w.mu.Unlock()

	http.Redirect(w.w, w.r, url, rr.code)
	return nil
}

func (w *Writer) sendString(tag mime.Tag, body string, opts []Fn) error {
	b := pool.Get().(*bytes.Buffer)
	b.Reset()
	defer pool.Put(b)

	b.WriteString(body)
	return w.send(tag, b, opts)
}

// send writes the status, headers and body held in b exactly once.
func (w *Writer) send(tag mime.Tag, b *bytes.Buffer, opts []Fn) error {
	rr, err := newResponse(http.StatusOK, opts)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if err := w.writable(); err != nil {
		w.mu.Unlock()
		return err
	}

	ct := rr.contentType
	if ct == "" {
		ct = w.mime.ForTag(tag)
	}

	h := w.w.Header()
	copyHeader(h, rr.header)
	h.Set("Content-Type", ct)
	h.Set("Content-Length", strconv.Itoa(b.Len()))
	w.commit(rr.code)
	w.bodySent = true
	w.mu.Unlock()

	if w.r != nil && w.r.Method == http.MethodHead {
		return nil
	}

	if _, err := b.WriteTo(w.w); err != nil {
		return fmt.Errorf("%w: %w", ErrStreamAborted, err)
	}

	return nil
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
