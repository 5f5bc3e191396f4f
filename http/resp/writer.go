package resp

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"

	"github.com/xy-planning-network/switchback/http/mime"
	"golang.org/x/sync/errgroup"
)

const defaultChunkSize = 32 * 1024

// Pool of *bytes.Buffer to prerender bodies into.
var pool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// A State is a snapshot of what a Writer has done so far.
type State struct {
	Terminated  bool
	HeadersSent bool
	Done        bool
	StatusCode  int
}

// A Writer decorates an http.ResponseWriter with send methods and the termination flag
// for one request.
//
// Writer implements http.ResponseWriter itself so it can be handed to code
// expecting one; headers written that way count as sent.
type Writer struct {
	w     http.ResponseWriter
	r     *http.Request
	mime  mime.Resolver
	chunk int

	mu          sync.Mutex
	state       State
	bodySent    bool
	inFlight    int
	transfers   errgroup.Group
	onTerminate []func()
	onMisuse    []func(error)
}

// The WriterOptFn applies functional options to a *Writer when decorating.
type WriterOptFn func(*Writer)

// WithChunkSize sets how many bytes a stream copies at a time.
func WithChunkSize(n int) WriterOptFn {
	return func(w *Writer) {
		if n > 0 {
			w.chunk = n
		}
	}
}

// WithResolver replaces the mime.Resolver content types are looked up with.
func WithResolver(m mime.Resolver) WriterOptFn {
	return func(w *Writer) {
		if m != nil {
			w.mime = m
		}
	}
}

// OnTerminate registers fn to be called the first time the Writer terminates.
func OnTerminate(fn func()) WriterOptFn {
	return func(w *Writer) {
		if fn != nil {
			w.onTerminate = append(w.onTerminate, fn)
		}
	}
}

// OnMisuse registers fn to be called with the error describing a mutation
// the Writer ignored: WriteHeader after headers were sent, after Terminate or after Finish,
// and Terminate after Finish.
func OnMisuse(fn func(err error)) WriterOptFn {
	return func(w *Writer) {
		if fn != nil {
			w.onMisuse = append(w.onMisuse, fn)
		}
	}
}

// Decorate wraps w for responding to r.
func Decorate(w http.ResponseWriter, r *http.Request, opts ...WriterOptFn) *Writer {
	d := &Writer{w: w, r: r, mime: mime.Default, chunk: defaultChunkSize}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Terminate marks the response as handled.
// Calling it again does nothing.
// Calling it after the response is done does nothing but report ErrDone to OnMisuse.
func (w *Writer) Terminate() {
	w.mu.Lock()
	if w.state.Done {
		w.mu.Unlock()
		w.misuse(fmt.Errorf("%w: terminate", ErrDone))
		return
	}

	if w.state.Terminated {
		w.mu.Unlock()
		return
	}

	w.state.Terminated = true
	fns := w.onTerminate
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Terminated reports whether Terminate has been called.
func (w *Writer) Terminated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Terminated
}

// State returns a snapshot of w.
func (w *Writer) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Request returns the request w responds to.
func (w *Writer) Request() *http.Request { return w.r }

// Wait blocks until every File or Stream transfer ends,
// returning the first transfer error.
func (w *Writer) Wait() error { return w.transfers.Wait() }

// Finish waits for transfers and marks the response done.
// Afterwards, every send returns ErrDone.
func (w *Writer) Finish() error {
	err := w.Wait()

	w.mu.Lock()
	w.state.Done = true
	w.mu.Unlock()

	return err
}

// Header returns the header map that will be sent with the response.
func (w *Writer) Header() http.Header { return w.w.Header() }

// WriteHeader sends the status code, unless headers were already sent
// or the response was terminated or is done.
// An ignored call is reported to OnMisuse.
func (w *Writer) WriteHeader(code int) {
	w.mu.Lock()
	var err error
	switch {
	case w.state.Done:
		err = ErrDone
	case w.state.Terminated:
		err = ErrTerminated
	case w.state.HeadersSent:
		err = ErrDoubleSend
	default:
		w.commit(code)
	}
	w.mu.Unlock()

	if err != nil {
		w.misuse(fmt.Errorf("%w: write header %d", err, code))
	}
}

// Write writes b to the response body, sending a 200 first if no status was sent.
//
// Write returns ErrTerminated after Terminate, ErrDone after Finish,
// and ErrDoubleSend once a send method or a File or Stream transfer has taken the body.
func (w *Writer) Write(b []byte) (int, error) {
	w.mu.Lock()
	switch {
	case w.state.Done:
		w.mu.Unlock()
		return 0, ErrDone
	case w.state.Terminated:
		w.mu.Unlock()
		return 0, ErrTerminated
	case w.bodySent || w.inFlight > 0:
		w.mu.Unlock()
		return 0, ErrDoubleSend
	}

	if !w.state.HeadersSent {
		w.commit(http.StatusOK)
	}
	w.mu.Unlock()

	return w.w.Write(b)
}

// Flush sends any buffered data to the client, if the underlying writer supports it.
func (w *Writer) Flush() {
	if f, ok := w.w.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the decorated writer to http.ResponseController.
func (w *Writer) Unwrap() http.ResponseWriter { return w.w }

// writable reports why a new body cannot be sent, if it cannot.
// The caller holds w.mu.
func (w *Writer) writable() error {
	switch {
	case w.state.Done:
		return ErrDone
	case w.state.Terminated:
		return ErrTerminated
	case w.state.HeadersSent:
		return ErrDoubleSend
	}

	return nil
}

func (w *Writer) misuse(err error) {
	for _, fn := range w.onMisuse {
		fn(err)
	}
}

// commit sends the status line and headers.
// The caller holds w.mu.
func (w *Writer) commit(code int) {
	w.state.HeadersSent = true
	w.state.StatusCode = code
	w.w.WriteHeader(code)
}
