package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xy-planning-network/switchback"
	"github.com/xy-planning-network/switchback/http/history"
	"github.com/xy-planning-network/switchback/http/render"
	"github.com/xy-planning-network/switchback/http/resp"
	"github.com/xy-planning-network/switchback/http/route"
	"github.com/xy-planning-network/switchback/logger"
)

// A Controller runs every request through the rendering state machine.
// A Controller is safe for concurrent use; nothing about one request is shared with another.
type Controller struct {
	table    *route.Table
	renderer render.Renderer

	units      []Unit
	wrapper    func(route.View) route.View
	history    func(*http.Request) history.History
	writerOpts []resp.WriterOptFn
	port       string

	logger   logger.Logger
	onError  ErrorHandler
	onRender RenderObserver
	onState  StateObserver
}

// New constructs a Controller matching requests against t and rendering views with rr.
//
// New returns an error wrapping [switchback.ErrBadConfig] if t or rr is nil
// or if any ControllerOptFn fails.
func New(t *route.Table, rr render.Renderer, opts ...ControllerOptFn) (*Controller, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil route table", switchback.ErrBadConfig)
	}

	if rr == nil {
		return nil, fmt.Errorf("%w: nil renderer", switchback.ErrBadConfig)
	}

	c := &Controller{
		table:    t,
		renderer: rr,
		history:  func(r *http.Request) history.History { return history.NewServer(r) },
		logger:   logger.New(slog.Default()),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.onError == nil {
		c.onError = c.defaultErrorHandler
	}

	return c, nil
}

// ServeHTTP serves r, handing any error to the ErrorHandler.
func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rw, err := c.serve(w, r)
	if err != nil {
		c.onError(w, r, rw.State(), err)
	}
}

// Serve runs r through the state machine and returns the error that stopped it, if any.
// Unlike ServeHTTP, nothing is written in response to that error.
func (c *Controller) Serve(w http.ResponseWriter, r *http.Request) error {
	_, err := c.serve(w, r)
	return err
}

func (c *Controller) serve(w http.ResponseWriter, r *http.Request) (*resp.Writer, error) {
	c.enter(r, Decorating)
	opts := make([]resp.WriterOptFn, 0, len(c.writerOpts)+2)
	opts = append(opts, c.writerOpts...)
	opts = append(opts,
		resp.OnTerminate(func() {
			c.logger.Debug("response terminated", &logger.LogContext{Request: r})
		}),
		resp.OnMisuse(func(err error) {
			c.logger.Warn("response mutated after it was settled", &logger.LogContext{Request: r, Error: err})
		}),
	)
	rw := resp.Decorate(w, r, opts...)

	err := c.run(rw, r)

	// NOTE(dlk): transfers write to w until Finish returns,
	// so Finish must come before returning to net/http.
	if ferr := rw.Finish(); ferr != nil {
		if errors.Is(ferr, resp.ErrStreamAborted) {
			c.logger.Warn("stream aborted", &logger.LogContext{Request: r, Error: ferr})
		} else if err == nil {
			err = ferr
		}
	}

	c.enter(r, Done)
	return rw, err
}

func (c *Controller) run(w *resp.Writer, r *http.Request) error {
	c.enter(r, RunningHandlers)
	for _, u := range c.units {
		if err := u(w, r); err != nil {
			return err
		}

		if w.Terminated() {
			c.enter(r, Terminated)
			return nil
		}
	}

	c.enter(r, Matching)
	h := c.history(r)
	if err := history.Validate(h); err != nil {
		return err
	}

	m, err := h.MatchRoute(c.table)
	if err != nil {
		return err
	}

	view := m.View
	if view != nil && c.wrapper != nil {
		view = c.wrapper(view)
	}

	if view == nil {
		return fmt.Errorf("%w: %s", route.ErrNilView, m.URL)
	}

	r = r.WithContext(route.NewContext(r.Context(), m))
	props := make(route.Props)
	if m.Controller != nil {
		if err := m.Controller(r, props); err != nil {
			return fmt.Errorf("controller for %s: %w", m.URL, err)
		}
	}

	c.enter(r, Rendering)
	rc := render.Context{
		Request:    r,
		Response:   w,
		Port:       c.port,
		URL:        m.URL,
		Params:     m.Params,
		Props:      props,
		StatusCode: m.StatusCode,
	}

	start := time.Now()
	markup, err := c.renderer.Render(r.Context(), view, rc)
	if c.onRender != nil {
		c.onRender(r, m, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("rendering %s: %w", m.URL, err)
	}

	if markup == "" || w.Terminated() {
		return nil
	}

	return w.Html(markup, resp.Code(m.StatusCode))
}

func (c *Controller) enter(r *http.Request, s State) {
	if c.onState != nil {
		c.onState(r, s)
	}
}

// defaultErrorHandler logs err and, if nothing was sent yet, responds with a bare status:
// 404 when no route matched, 500 otherwise.
func (c *Controller) defaultErrorHandler(w http.ResponseWriter, r *http.Request, st resp.State, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, route.ErrNoRoute) {
		code = http.StatusNotFound
	}

	c.logger.Error(err.Error(), &logger.LogContext{
		Request: r,
		Error:   err,
		Data:    map[string]any{"status": code, "headers_sent": st.HeadersSent},
	})

	if !st.HeadersSent {
		w.WriteHeader(code)
	}
}
