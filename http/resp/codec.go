package resp

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// A Codec names the compression applied to a response body.
type Codec string

const (
	NoCodec Codec = ""
	Gzip    Codec = "gzip"
	Deflate Codec = "deflate"
)

func (c Codec) String() string { return string(c) }

func (c Codec) Valid() error {
	switch c {
	case NoCodec, Gzip, Deflate:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCodec, string(c))
	}
}

// A CodecSelector decides which Codec, if any, compresses a response body.
type CodecSelector func() Codec

// AcceptEncoding selects the Codec r's Accept-Encoding header prefers.
// Between equally weighted codecs, gzip wins.
func AcceptEncoding(r *http.Request) CodecSelector {
	header := r.Header.Get("Accept-Encoding")
	return func() Codec {
		best, bestQ := NoCodec, 0.0
		for _, part := range strings.Split(header, ",") {
			name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
			q := 1.0
			if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					continue
				}
				q = f
			}

			c := Codec(strings.ToLower(strings.TrimSpace(name)))
			if (c != Gzip && c != Deflate) || q <= 0 {
				continue
			}

			if q > bestQ || (q == bestQ && c == Gzip) {
				best, bestQ = c, q
			}
		}

		return best
	}
}

// Encode composes src through c.
// With NoCodec, reading the result yields src untouched.
// Closing the result stops encoding but never closes src.
func Encode(src io.Reader, c Codec) (io.ReadCloser, error) {
	if err := c.Valid(); err != nil {
		return nil, err
	}

	if c == NoCodec {
		return io.NopCloser(src), nil
	}

	pr, pw := io.Pipe()
	go func() {
		enc := newEncoder(pw, c)
		_, err := io.Copy(enc, src)
		if cerr := enc.Close(); err == nil {
			err = cerr
		}

		// NOTE(dlk): a nil error closes the pipe with io.EOF.
		pw.CloseWithError(err)
	}()

	return pr, nil
}

func newEncoder(w io.Writer, c Codec) io.WriteCloser {
	if c == Gzip {
		return gzip.NewWriter(w)
	}

	// HTTP's "deflate" is the zlib format.
	return zlib.NewWriter(w)
}

// Compress selects a Codec with sel, declares it in the Content-Encoding header
// and composes src through it.
// A nil sel, or one returning NoCodec, leaves src and the headers untouched.
func (w *Writer) Compress(src io.Reader, sel CodecSelector) (io.ReadCloser, error) {
	c, err := selectCodec(sel)
	if err != nil {
		return nil, err
	}

	if c != NoCodec {
		w.mu.Lock()
		err := w.writable()
		if err == nil {
			setEncoding(w.w.Header(), c)
		}
		w.mu.Unlock()

		if err != nil {
			return nil, err
		}
	}

	return Encode(src, c)
}

func selectCodec(sel CodecSelector) (Codec, error) {
	if sel == nil {
		return NoCodec, nil
	}

	c := sel()
	return c, c.Valid()
}

// setEncoding declares c in h; the length of an encoded body is unknown up front.
func setEncoding(h http.Header, c Codec) {
	if c == NoCodec {
		return
	}

	h.Set("Content-Encoding", c.String())
	h.Add("Vary", "Accept-Encoding")
	h.Del("Content-Length")
}
