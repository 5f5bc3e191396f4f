package router

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/xy-planning-network/switchback"
	"github.com/xy-planning-network/switchback/http/middleware"
	"github.com/xy-planning-network/switchback/http/pipeline"
	"github.com/xy-planning-network/switchback/http/render"
	"github.com/xy-planning-network/switchback/http/route"
)

// An OptFn configures a Router when constructing it.
type OptFn func(*Router)

// WithControllerOpts passes opts to the pipeline.Controller the Router builds.
func WithControllerOpts(opts ...pipeline.ControllerOptFn) OptFn {
	return func(r *Router) {
		r.s.ctrlOpts = append(r.s.ctrlOpts, opts...)
	}
}

// Router routes requests for views in a standard switchback app.
type Router struct {
	Env    switchback.Environment
	prefix string
	s      *declarations
}

// declarations are shared by a Router and all of its subrouters.
type declarations struct {
	mu       sync.Mutex
	frozen   bool
	routes   []route.Route
	notFound *route.Route
	units    []pipeline.Unit
	everyReq []middleware.Adapter
	ctrlOpts []pipeline.ControllerOptFn
	renderer render.Renderer

	once    sync.Once
	handler http.Handler
	table   *route.Table
	err     error
}

// New constructs a *Router for the given environment, rendering matched views with rr.
func New(env switchback.Environment, rr render.Renderer, opts ...OptFn) *Router {
	r := &Router{Env: env, s: &declarations{renderer: rr}}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Handle declares rt on the Router.
func (r *Router) Handle(rt route.Route) {
	r.HandleRoutes([]route.Route{rt})
}

// HandleRoutes declares routes on the Router, keeping their order.
// Routes declared first are matched first.
//
// A Route that is an error handler replaces the one set by HandleNotFound.
func (r *Router) HandleRoutes(routes []route.Route) {
	r.declare(func(d *declarations) {
		for _, rt := range routes {
			if rt.ErrorHandler {
				d.notFound = &rt
				continue
			}

			rt.Pattern = r.join(rt.Pattern)
			d.routes = append(d.routes, rt)
		}
	})
}

// HandleNotFound sets the view rendered, with props from ctrl,
// for when no other declared Route is matched.
func (r *Router) HandleNotFound(view route.View, ctrl route.Controller) {
	r.declare(func(d *declarations) {
		d.notFound = &route.Route{ErrorHandler: true, View: view, Controller: ctrl}
	})
}

// Use appends units to those every request runs before it is matched.
func (r *Router) Use(units ...pipeline.Unit) {
	r.declare(func(d *declarations) {
		d.units = append(d.units, units...)
	})
}

// OnEveryRequest appends the middlewares to the existing stack
// that the *Router will apply to every request.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.declare(func(d *declarations) {
		d.everyReq = append(d.everyReq, middlewares...)
	})
}

// Subrouter constructs a *Router that declares routes beneath prefix.
//
// e.g., r.Subrouter("/api/v1") declaring "/users" handles requests to /api/v1/users
func (r *Router) Subrouter(prefix string) *Router {
	return &Router{
		Env:    r.Env,
		prefix: r.join(strings.TrimSuffix(prefix, "/")),
		s:      r.s,
	}
}

// Freeze builds the route.Table and pipeline.Controller from everything declared so far.
// Freeze only builds once; later calls return the first call's error.
func (r *Router) Freeze() error {
	d := r.s
	d.once.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.frozen = true

		routes := d.routes
		if d.notFound != nil {
			routes = append(append([]route.Route(nil), routes...), *d.notFound)
		}

		d.table, d.err = route.NewTable(routes...)
		if d.err != nil {
			return
		}

		opts := make([]pipeline.ControllerOptFn, 0, len(d.ctrlOpts)+1)
		if len(d.units) > 0 {
			opts = append(opts, pipeline.WithUnits(d.units...))
		}
		opts = append(opts, d.ctrlOpts...)

		var ctrl *pipeline.Controller
		if ctrl, d.err = pipeline.New(d.table, d.renderer, opts...); d.err != nil {
			return
		}

		mws := append([]middleware.Adapter{middleware.ReportPanic(r.Env)}, d.everyReq...)
		d.handler = middleware.Chain(ctrl, mws...)
	})

	return d.err
}

// Routes returns the declared routes, error handler last.
func (r *Router) Routes() []route.Route {
	d := r.s
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.table != nil {
		return d.table.Routes()
	}

	routes := append([]route.Route(nil), d.routes...)
	if d.notFound != nil {
		routes = append(routes, *d.notFound)
	}

	return routes
}

// ServeHTTP responds to an HTTP request, freezing the Router first if needed.
// If the Router cannot be frozen, every request receives a 500.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if err := r.Freeze(); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	r.s.handler.ServeHTTP(w, req)
}

func (r *Router) declare(fn func(*declarations)) {
	d := r.s
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frozen {
		panic(fmt.Sprintf("router: declaration after serving requests (prefix %q)", r.prefix))
	}

	fn(d)
}

// join prefixes pattern with the Router's prefix.
func (r *Router) join(pattern string) string {
	if r.prefix == "" {
		return pattern
	}

	return r.prefix + pattern
}
