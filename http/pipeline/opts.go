package pipeline

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xy-planning-network/switchback"
	"github.com/xy-planning-network/switchback/http/history"
	"github.com/xy-planning-network/switchback/http/resp"
	"github.com/xy-planning-network/switchback/http/route"
	"github.com/xy-planning-network/switchback/logger"
)

// The ControllerOptFn applies functional options to a *Controller when constructing it.
type ControllerOptFn func(*Controller) error

// An ErrorHandler responds to a request whose pipeline failed with err.
// st is the state of the response when the pipeline stopped.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, st resp.State, err error)

// A RenderObserver is told how long rendering the view matched for r took.
type RenderObserver func(r *http.Request, m *route.MatchResult, d time.Duration)

// A StateObserver is told each State r enters.
type StateObserver func(r *http.Request, s State)

// WithUnits appends units to those run before routing.
func WithUnits(units ...Unit) ControllerOptFn {
	return func(c *Controller) error {
		for i, u := range units {
			if u == nil {
				return fmt.Errorf("%w: unit %d is nil", switchback.ErrBadConfig, i)
			}
		}

		c.units = append(c.units, units...)
		return nil
	}
}

// WithWrapper transforms every matched view before it is rendered.
func WithWrapper(fn func(route.View) route.View) ControllerOptFn {
	return func(c *Controller) error {
		c.wrapper = fn
		return nil
	}
}

// WithHistory replaces how the History of a request is built.
// By default, it is a history.Server.
//
// WithHistory returns an error wrapping history.ErrHistoryType
// if fn is nil or builds a nil History.
func WithHistory(fn func(*http.Request) history.History) ControllerOptFn {
	return func(c *Controller) error {
		if fn == nil {
			return fmt.Errorf("%w: %w", switchback.ErrBadConfig, history.ErrHistoryType)
		}

		probe, err := http.NewRequest(http.MethodGet, "/", nil)
		if err != nil {
			return err
		}

		if err := history.Validate(fn(probe)); err != nil {
			return fmt.Errorf("%w: %w", switchback.ErrBadConfig, err)
		}

		c.history = fn
		return nil
	}
}

// WithRenderObserver calls fn after every render.
func WithRenderObserver(fn RenderObserver) ControllerOptFn {
	return func(c *Controller) error {
		c.onRender = fn
		return nil
	}
}

// WithStateObserver calls fn whenever a request enters a State.
func WithStateObserver(fn StateObserver) ControllerOptFn {
	return func(c *Controller) error {
		c.onState = fn
		return nil
	}
}

// WithLogger sets the logger.Logger errors and aborted streams are logged with.
func WithLogger(l logger.Logger) ControllerOptFn {
	return func(c *Controller) error {
		if l == nil {
			return fmt.Errorf("%w: nil logger", switchback.ErrBadConfig)
		}

		c.logger = l
		return nil
	}
}

// WithPort sets the port handed to the Renderer.
func WithPort(port string) ControllerOptFn {
	return func(c *Controller) error {
		c.port = port
		return nil
	}
}

// WithWriterOpts configures the resp.Writer decorating every response.
func WithWriterOpts(opts ...resp.WriterOptFn) ControllerOptFn {
	return func(c *Controller) error {
		c.writerOpts = append(c.writerOpts, opts...)
		return nil
	}
}

// WithErrorHandler replaces how a failed request is answered.
func WithErrorHandler(fn ErrorHandler) ControllerOptFn {
	return func(c *Controller) error {
		if fn == nil {
			return fmt.Errorf("%w: nil error handler", switchback.ErrBadConfig)
		}

		c.onError = fn
		return nil
	}
}
