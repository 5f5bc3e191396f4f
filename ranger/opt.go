package ranger

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xy-planning-network/switchback"
	"github.com/xy-planning-network/switchback/http/middleware"
	"github.com/xy-planning-network/switchback/http/pipeline"
	"github.com/xy-planning-network/switchback/http/render"
	"github.com/xy-planning-network/switchback/http/resp"
	"github.com/xy-planning-network/switchback/http/route"
	"github.com/xy-planning-network/switchback/logger"
)

// A RangerOption configures a *Ranger either (1) directly, immediately upon being called
// or (2) in the OptFollowup it returns.
// Some RangerOptions require data in others and thus an OptFollowup can be returned
// in order to be called at a later time when that data is available.
//
// WithLogger is an example of the first.
// An unexported field on the passed in *Ranger is updated with the enclosed value.
//
// WithRoutes is an example of the second.
// Routes are declared on the *Ranger's router only when the closure it returns is called,
// after the router exists.
type RangerOption func(rng *Ranger) (OptFollowup, error)
type OptFollowup func() error

// WithConfig uses cfg instead of reading a Config from the environment.
// Zero fields of cfg take the defaults NewConfig would give them.
func WithConfig(cfg Config) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		cfg = cfg.withDefaults()
		if err := cfg.validate(); err != nil {
			return nil, err
		}

		rng.cfg = &cfg
		return nil, nil
	}
}

// WithContext sets the base context of every request served.
// Canceling ctx stops Guide.
func WithContext(ctx context.Context) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if ctx == nil {
			return nil, fmt.Errorf("%w: nil context", switchback.ErrBadConfig)
		}

		rng.ctx = ctx
		return nil, nil
	}
}

// WithLogger sets the logger.Logger the app and its request pipeline log with.
func WithLogger(l logger.Logger) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.l = l
		return nil, nil
	}
}

// WithHTTPLogger sets the *slog.Logger requests are logged with.
func WithHTTPLogger(l *slog.Logger) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.httpLog = l
		return nil, nil
	}
}

// WithLogOutput writes the default loggers' output to w instead of stdout.
func WithLogOutput(w io.Writer) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if w == nil {
			w = io.Discard
		}

		rng.logOut = w
		return nil, nil
	}
}

// WithRenderer renders matched views with rr instead of the default html/template renderer.
func WithRenderer(rr render.Renderer) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if rr == nil {
			return nil, fmt.Errorf("%w: nil renderer", switchback.ErrBadConfig)
		}

		rng.rr = rr
		return nil, nil
	}
}

// WithTemplates searches fsys, before the working directory,
// for the templates the default renderer parses.
func WithTemplates(fsys fs.FS) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.tmpls = fsys
		return nil, nil
	}
}

// WithWrapper transforms every matched view before it is rendered.
func WithWrapper(fn func(route.View) route.View) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.ctrlOpts = append(rng.ctrlOpts, pipeline.WithWrapper(fn))
		return nil, nil
	}
}

// WithControllerOpts passes opts to the pipeline.Controller serving requests.
func WithControllerOpts(opts ...pipeline.ControllerOptFn) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.ctrlOpts = append(rng.ctrlOpts, opts...)
		return nil, nil
	}
}

// WithRoutes constructs a followup option that, when called,
// declares routes on the app's router.
func WithRoutes(routes ...route.Route) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			rng.HandleRoutes(routes)
			return nil
		}, nil
	}
}

// WithNotFound constructs a followup option that, when called,
// sets the view rendered when no route matches.
//
// Without WithNotFound, the default renderer renders template.NotFound.
func WithNotFound(view route.View, ctrl route.Controller) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			rng.HandleNotFound(view, ctrl)
			return nil
		}, nil
	}
}

// WithUnits constructs a followup option that, when called,
// appends units run before requests are matched.
func WithUnits(units ...pipeline.Unit) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			rng.Use(units...)
			return nil
		}, nil
	}
}

// WithMiddlewares constructs a followup option that, when called,
// appends middlewares after the default ones wrapping every request.
func WithMiddlewares(mws ...middleware.Adapter) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			rng.OnEveryRequest(mws...)
			return nil
		}, nil
	}
}

// WithStatic serves files in fsys before routing, compressing them as clients accept.
// WithStatic replaces serving the PublicDir.
func WithStatic(fsys fs.FS) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.static = fsys
		return nil, nil
	}
}

// WithMetrics records pipeline metrics in reg and serves them at the Config's MetricsPath.
func WithMetrics(reg *prometheus.Registry) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if reg == nil {
			return nil, fmt.Errorf("%w: nil metrics registry", switchback.ErrBadConfig)
		}

		rng.reg = reg
		return nil, nil
	}
}

// WithServer serves the app with s.
// The *Ranger replaces the Handler of s.
func WithServer(s *http.Server) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if s == nil {
			return nil, fmt.Errorf("%w: nil server", switchback.ErrBadConfig)
		}

		rng.srv = s
		return nil, nil
	}
}

// WithWriterOpts configures every resp.Writer decorating a response.
func WithWriterOpts(opts ...resp.WriterOptFn) RangerOption {
	return WithControllerOpts(pipeline.WithWriterOpts(opts...))
}
