package ranger

import (
	"context"
	"embed"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/lmittmann/tint"
	"github.com/xy-planning-network/switchback"
	"github.com/xy-planning-network/switchback/http/middleware"
	"github.com/xy-planning-network/switchback/http/pipeline"
	"github.com/xy-planning-network/switchback/http/render"
	"github.com/xy-planning-network/switchback/http/resp"
	"github.com/xy-planning-network/switchback/http/template"
	"github.com/xy-planning-network/switchback/logger"
	"golang.org/x/time/rate"
)

const (
	// MaintenanceTmpl is rendered for every request while the app is in maintenance mode.
	MaintenanceTmpl = "tmpl/maintenance.tmpl"
	retryAfter      = "600"
)

//go:embed tmpl/*
var tmpls embed.FS

// defaultAppLogger constructs a [logger.Logger] configured for use in the application.
func defaultAppLogger(cfg Config, output io.Writer) logger.Logger {
	slogger := newSlogger(switchback.AppLogKind, cfg, output)
	var l logger.Logger = logger.New(slogger)
	l.Debug("setting up app logger", nil)
	if cfg.SentryDSN != "" {
		l = logger.NewSentryLogger(cfg.Env, l, cfg.SentryDSN)
		l.Debug("using SentryLogger for app logger", nil)
	}

	slog.SetDefault(slogger)

	return l
}

// defaultHTTPLogger constructs a [*log/slog.Logger] for use in request logging.
func defaultHTTPLogger(cfg Config, output io.Writer) *slog.Logger {
	sl := newSlogger(switchback.HTTPLogKind, cfg, output)
	sl.Debug("setting up HTTP logger")

	return sl
}

// newSlogger toggles contructing the specific [*log/slog.Logger]
// from the given parameters.
func newSlogger(kind slog.Value, cfg Config, out io.Writer) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(switchback.NewLogLevel(cfg.LogLevel))

	useJSON := !cfg.Env.IsDevelopment() || cfg.LogJSON
	isApp := kind.String() == switchback.AppLogKind.String()

	var handler slog.Handler
	switch {
	case useJSON:
		opts := &slog.HandlerOptions{
			AddSource:   isApp,
			Level:       lvl,
			ReplaceAttr: logger.TruncSourceAttr,
		}
		handler = slog.NewJSONHandler(out, opts)

	default:
		opts := &tint.Options{
			AddSource:   isApp,
			Level:       lvl,
			TimeFormat:  "2006-01-02 15:04:05.000",
			ReplaceAttr: logger.ChainReplaceAttr(logger.ColorizeLevel, logger.TruncSourceAttr),
		}
		handler = tint.NewHandler(out, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		{Key: switchback.LogKindKey, Value: kind},
	})

	return slog.New(handler)
}

// defaultRenderer constructs the [render.Renderer] views are rendered with.
// Template views are searched for in files, the working directory, then the embedded defaults.
// templ components render too.
//
// defaultRenderer makes available these functions in an HTML template:
//
//   - "env"
//   - "title" returns the value set by the APP_TITLE env var
//   - "nonce"
//   - "rootUrl"
//   - "isDevelopment"
//   - "isStaging"
//   - "isProduction"
func defaultRenderer(cfg Config, files fs.FS) render.Renderer {
	p := template.NewParser([]fs.FS{files, os.DirFS("."), tmpls})
	p = p.AddFn(template.Env(cfg.Env))
	p = p.AddFn("title", func() string { return cfg.AppTitle })
	p = p.AddFn("isDevelopment", cfg.Env.IsDevelopment)
	p = p.AddFn("isStaging", cfg.Env.IsStaging)
	p = p.AddFn("isProduction", cfg.Env.IsProduction)
	p = p.AddFn(template.Nonce())
	p = p.AddFn(template.RootUrl(cfg.URL()))

	return render.Chain(render.NewTemplate(p), render.NewTempl())
}

// defaultMiddlewares are applied to every request, in order, before any user supplied middleware.
func defaultMiddlewares(cfg Config, httpLog *slog.Logger) []middleware.Adapter {
	mws := []middleware.Adapter{
		middleware.ProxyHeaders(),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(httpLog),
		middleware.RateLimit(middleware.NewVisitorsWithLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst)),
		middleware.CacheControl(cfg.AssetMaxAge),
	}

	if cfg.Env.ReportsErrors() && !cfg.TLS() {
		mws = append(mws, middleware.ForceHTTPS(cfg.Env))
	}

	return mws
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context, cfg Config) *http.Server {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}

// maintenanceUnit answers every request with a 503 and the MaintenanceTmpl, if it renders.
func maintenanceUnit(rr render.Renderer, l logger.Logger) pipeline.Unit {
	return func(w *resp.Writer, r *http.Request) error {
		defer w.Terminate()

		rc := render.Context{Request: r, Response: w, URL: r.URL.Path, StatusCode: http.StatusServiceUnavailable}
		markup, err := rr.Render(r.Context(), MaintenanceTmpl, rc)
		if err != nil {
			l.Debug("cannot render maintenance page", &logger.LogContext{Request: r, Error: err})
			markup = ""
		}

		if markup == "" {
			w.Header().Set("Retry-After", retryAfter)
			w.WriteHeader(http.StatusServiceUnavailable)
			return nil
		}

		return w.Html(markup, resp.Code(http.StatusServiceUnavailable), resp.Header("Retry-After", retryAfter))
	}
}

// metricsUnit serves h at path and terminates.
func metricsUnit(path string, h http.Handler) pipeline.Unit {
	serve := pipeline.HandlerUnit(h)
	return func(w *resp.Writer, r *http.Request) error {
		if r.URL.Path != path {
			return nil
		}

		defer w.Terminate()
		return serve(w, r)
	}
}

// staticUnit serves fsys, or the public directory if fsys is nil and the directory exists.
// staticUnit returns nil if there is nothing to serve.
func staticUnit(cfg Config, fsys fs.FS) pipeline.Unit {
	if fsys == nil {
		if cfg.PublicDir == "" {
			return nil
		}

		if fi, err := os.Stat(cfg.PublicDir); err != nil || !fi.IsDir() {
			return nil
		}

		fsys = os.DirFS(cfg.PublicDir)
	}

	return pipeline.StaticFiles(fsys, resp.AcceptEncoding)
}
