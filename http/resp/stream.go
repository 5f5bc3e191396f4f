package resp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"
)

// The FileOptFn applies functional options to a File or Stream.
type FileOptFn func(*fileOpts)

type fileOpts struct {
	code int
	sel  CodecSelector
	size int64
}

// CompressWith compresses the body with the Codec sel selects.
func CompressWith(sel CodecSelector) FileOptFn {
	return func(o *fileOpts) { o.sel = sel }
}

// Status sets the status code sent before the body. It defaults to 200.
func Status(code int) FileOptFn {
	return func(o *fileOpts) {
		if code >= 100 && code <= 599 {
			o.code = code
		}
	}
}

func newFileOpts(opts []FileOptFn) fileOpts {
	o := fileOpts{code: http.StatusOK, size: -1}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// A Transfer is a body being streamed to the client.
type Transfer struct {
	done chan struct{}
	n    int64
	err  error
}

// Done is closed once the Transfer ends.
func (t *Transfer) Done() <-chan struct{} { return t.done }

// Wait blocks until the Transfer ends and reports how many bytes were written
// and whether streaming was cut short.
func (t *Transfer) Wait() (int64, error) {
	<-t.done
	return t.n, t.err
}

// File responds with the file at name.
//
// File returns as soon as the file is open and the status and headers are sent;
// the body streams in the background until Wait or Finish.
// A missing file returns an error matching both ErrNotFound and fs.ErrNotExist,
// and nothing is sent.
func (w *Writer) File(name string, opts ...FileOptFn) (*Transfer, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, openErr(err)
	}

	return w.sendFile(f, name, opts)
}

// FileFS responds with the file at name in fsys, as File does.
func (w *Writer) FileFS(fsys fs.FS, name string, opts ...FileOptFn) (*Transfer, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, openErr(err)
	}

	return w.sendFile(f, name, opts)
}

// Stream responds with the bytes read from src, as File does.
// src is read until io.EOF; if it is an io.Closer, it is closed afterwards.
func (w *Writer) Stream(src io.Reader, contentType string, opts ...FileOptFn) (*Transfer, error) {
	var c io.Closer
	if rc, ok := src.(io.Closer); ok {
		c = rc
	}

	if contentType == "" {
		contentType = w.mime.ForFile("")
	}

	return w.stream(src, c, contentType, newFileOpts(opts))
}

func (w *Writer) sendFile(f fs.File, name string, opts []FileOptFn) (*Transfer, error) {
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %w: %s is a directory", ErrNotFound, fs.ErrNotExist, name)
	}

	o := newFileOpts(opts)
	o.size = info.Size()
	return w.stream(f, f, w.mime.ForFile(name), o)
}

func (w *Writer) stream(src io.Reader, closer io.Closer, ct string, o fileOpts) (*Transfer, error) {
	fail := func(err error) (*Transfer, error) {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}

	w.mu.Lock()
	err := w.writable()
	w.mu.Unlock()
	if err != nil {
		return fail(err)
	}

	c, err := selectCodec(o.sel)
	if err != nil {
		return fail(err)
	}

	// NOTE(dlk): a stream failing before commit must leave the headers untouched.
	w.mu.Lock()
	if err := w.writable(); err != nil {
		w.mu.Unlock()
		return fail(err)
	}

	body, err := Encode(src, c)
	if err != nil {
		w.mu.Unlock()
		return fail(err)
	}

	h := w.w.Header()
	h.Set("Content-Type", ct)
	setEncoding(h, c)
	if o.size >= 0 && h.Get("Content-Encoding") == "" {
		h.Set("Content-Length", strconv.FormatInt(o.size, 10))
	}

	w.commit(o.code)
	w.bodySent = true
	w.inFlight++
	w.mu.Unlock()

	head := w.r != nil && w.r.Method == http.MethodHead
	t := &Transfer{done: make(chan struct{})}
	w.transfers.Go(func() error {
		if !head {
			t.n, t.err = pump(w.context(), w.w, body, w.chunk)
		}

		body.Close()
		if closer != nil {
			closer.Close()
		}

		w.mu.Lock()
		w.inFlight--
		w.mu.Unlock()

		close(t.done)
		return t.err
	})

	return t, nil
}

func (w *Writer) context() context.Context {
	if w.r == nil {
		return context.Background()
	}

	return w.r.Context()
}

// pump copies src to dst chunk by chunk, stopping at the first chunk
// that cannot be delivered or once ctx is done.
func pump(ctx context.Context, dst io.Writer, src io.Reader, size int) (int64, error) {
	buf := make([]byte, size)
	var n int64
	for {
		if err := ctx.Err(); err != nil {
			return n, fmt.Errorf("%w: %w", ErrStreamAborted, err)
		}

		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			n += int64(nw)
			if werr == nil && nw < nr {
				werr = io.ErrShortWrite
			}

			if werr != nil {
				return n, fmt.Errorf("%w: %w", ErrStreamAborted, werr)
			}
		}

		if rerr == io.EOF {
			return n, nil
		}

		if rerr != nil {
			return n, fmt.Errorf("%w: reading body: %w", ErrStreamAborted, rerr)
		}
	}
}

func openErr(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
