// Package metrics records what the request pipeline does as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xy-planning-network/switchback/http/pipeline"
	"github.com/xy-planning-network/switchback/http/route"
)

// ErrorRouteLabel is the pattern label given to renders of the error route.
const ErrorRouteLabel = "<error>"

// Config configures the metrics a Pipeline records.
type Config struct {
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
	Buckets     []float64
	Registry    prometheus.Registerer
}

// An OptFn configures a Pipeline.
type OptFn func(*Config)

// WithNamespace sets the namespace of every metric.
func WithNamespace(ns string) OptFn {
	return func(c *Config) { c.Namespace = ns }
}

// WithSubsystem sets the subsystem of every metric.
func WithSubsystem(sub string) OptFn {
	return func(c *Config) { c.Subsystem = sub }
}

// WithConstLabels adds labels to every metric.
func WithConstLabels(l prometheus.Labels) OptFn {
	return func(c *Config) { c.ConstLabels = l }
}

// WithBuckets sets the render duration histogram's buckets.
func WithBuckets(b []float64) OptFn {
	return func(c *Config) {
		if len(b) > 0 {
			c.Buckets = b
		}
	}
}

// WithRegistry registers metrics with reg instead of [prometheus.DefaultRegisterer].
func WithRegistry(reg prometheus.Registerer) OptFn {
	return func(c *Config) {
		if reg != nil {
			c.Registry = reg
		}
	}
}

// A Pipeline records render durations and pipeline state transitions.
//
// A Pipeline's ObserveRender and ObserveState methods are meant to be passed to
// [pipeline.WithRenderObserver] and [pipeline.WithStateObserver].
type Pipeline struct {
	renders  *prometheus.HistogramVec
	states   *prometheus.CounterVec
	inflight prometheus.Gauge
}

// New registers and returns the metrics of a Pipeline.
// New panics if the metrics are already registered with the chosen registry.
func New(opts ...OptFn) *Pipeline {
	cfg := Config{
		Namespace: "switchback",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	return &Pipeline{
		renders: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Time spent rendering matched views, in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"pattern", "status"}),

		states: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "pipeline_states_total",
			Help:        "Number of times requests entered each pipeline state",
			ConstLabels: cfg.ConstLabels,
		}, []string{"state"}),

		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "requests_in_flight",
			Help:        "Number of requests between Decorating and Done",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// ObserveRender records how long rendering the view matched for r took.
func (p *Pipeline) ObserveRender(_ *http.Request, m *route.MatchResult, d time.Duration) {
	pattern := m.Pattern
	if m.ErrorRoute {
		pattern = ErrorRouteLabel
	}

	p.renders.WithLabelValues(pattern, strconv.Itoa(m.StatusCode)).Observe(d.Seconds())
}

// ObserveState counts r entering s.
func (p *Pipeline) ObserveState(_ *http.Request, s pipeline.State) {
	p.states.WithLabelValues(s.String()).Inc()

	switch s {
	case pipeline.Decorating:
		p.inflight.Inc()
	case pipeline.Done:
		p.inflight.Dec()
	}
}

// Opts returns the options wiring p into a [pipeline.Controller].
func (p *Pipeline) Opts() []pipeline.ControllerOptFn {
	return []pipeline.ControllerOptFn{
		pipeline.WithRenderObserver(p.ObserveRender),
		pipeline.WithStateObserver(p.ObserveState),
	}
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
