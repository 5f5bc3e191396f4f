package ranger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	// TODO(dlk): configurable env files
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xy-planning-network/switchback/http/metrics"
	"github.com/xy-planning-network/switchback/http/pipeline"
	"github.com/xy-planning-network/switchback/http/render"
	"github.com/xy-planning-network/switchback/http/router"
	"github.com/xy-planning-network/switchback/http/template"
	"github.com/xy-planning-network/switchback/logger"
)

// A Ranger manages and exposes all components of a switchback app to one another.
//
// Routes can be declared on a Ranger until it begins serving requests.
type Ranger struct {
	*router.Router

	cfg      *Config
	ctx      context.Context
	l        logger.Logger
	httpLog  *slog.Logger
	logOut   io.Writer
	rr       render.Renderer
	tmpls    fs.FS
	static   fs.FS
	reg      *prometheus.Registry
	metrics  *metrics.Pipeline
	srv      *http.Server
	ctrlOpts []pipeline.ControllerOptFn
}

// New constructs a Ranger from the provided options.
// Without WithConfig, New reads a Config from the environment.
// Components not provided by an option are constructed from that Config.
func New(opts ...RangerOption) (*Ranger, error) {
	r := &Ranger{ctx: context.Background(), logOut: os.Stdout}
	followups := make([]OptFollowup, 0)

	// NOTE(dlk): calling an option configures the *Ranger under construction.
	// Some options require the router, which needs every other option applied first.
	// They return an OptFollowup to be called once the router exists.
	for _, opt := range opts {
		fn, err := opt(r)
		if err != nil {
			return nil, err
		}

		if fn != nil {
			followups = append(followups, fn)
		}
	}

	if r.cfg == nil {
		cfg, err := NewConfig()
		if err != nil {
			return nil, err
		}

		r.cfg = &cfg
	}

	cfg := *r.cfg
	if r.l == nil {
		r.l = defaultAppLogger(cfg, r.logOut)
	}

	if r.httpLog == nil {
		r.httpLog = defaultHTTPLogger(cfg, r.logOut)
	}

	defaultRR := r.rr == nil
	if defaultRR {
		r.rr = defaultRenderer(cfg, r.tmpls)
	}

	ctrlOpts := []pipeline.ControllerOptFn{pipeline.WithLogger(r.l), pipeline.WithPort(cfg.Port)}
	if r.reg != nil {
		r.metrics = metrics.New(metrics.WithRegistry(r.reg))
		ctrlOpts = append(ctrlOpts, r.metrics.Opts()...)
	}

	r.Router = router.New(cfg.Env, r.rr, router.WithControllerOpts(append(ctrlOpts, r.ctrlOpts...)...))
	r.OnEveryRequest(defaultMiddlewares(cfg, r.httpLog)...)

	if cfg.Maintenance {
		r.Use(maintenanceUnit(r.rr, r.l))
	}

	if r.reg != nil && cfg.MetricsPath != "" {
		r.Use(metricsUnit(cfg.MetricsPath, metrics.Handler(r.reg)))
	}

	if u := staticUnit(cfg, r.static); u != nil {
		r.Use(u)
	}

	if defaultRR {
		r.HandleNotFound(template.NotFound, nil)
	}

	for _, fn := range followups {
		if err := fn(); err != nil {
			return nil, err
		}
	}

	if r.srv == nil {
		r.srv = defaultServer(r.ctx, cfg)
	}
	r.srv.Handler = r.Router

	r.l.Debug(fmt.Sprintf("configured %s app at %s", cfg.Env, cfg.URL()), nil)

	return r, nil
}

func (r *Ranger) Config() Config                 { return *r.cfg }
func (r *Ranger) EmitLogger() logger.Logger      { return r.l }
func (r *Ranger) EmitHTTPLogger() *slog.Logger   { return r.httpLog }
func (r *Ranger) EmitRenderer() render.Renderer  { return r.rr }
func (r *Ranger) EmitMetrics() *metrics.Pipeline { return r.metrics }
func (r *Ranger) EmitServer() *http.Server       { return r.srv }

// Guide freezes the routes and begins the web server,
// serving HTTPS if the Config has TLS files.
//
// These, canceling the context from WithContext, and (*Ranger).Shutdown, stop Guide:
//
// - os.Interrupt
// - syscall.SIGHUP
// - syscall.SIGINT
// - syscall.SIGQUIT
// - syscall.SIGTERM
//
// Guide returns an error if the server cannot listen.
func (r *Ranger) Guide() error {
	if err := r.Freeze(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		r.ctx,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		r.l.Info(fmt.Sprintf("running web server at %s", r.cfg.URL()), nil)

		var err error
		if r.cfg.TLS() {
			err = r.srv.ListenAndServeTLS(r.cfg.TLSCertFile, r.cfg.TLSKeyFile)
		} else {
			err = r.srv.ListenAndServe()
		}

		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}

		if err != nil {
			err = fmt.Errorf("could not listen: %w", err)
			r.l.Error(err.Error(), nil)
		}

		errs <- err
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		r.l.Info("received shutdown signal", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.cfg.ShutdownTimeout)
	defer cancel()

	return r.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the web server,
// waiting for in-flight requests until ctx is done.
func (r *Ranger) Shutdown(ctx context.Context) error {
	r.l.Info("shutting down web server", nil)
	err := r.srv.Shutdown(ctx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	r.l.Info("web server shutdown successfully", nil)
	return nil
}
