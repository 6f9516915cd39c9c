package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/hxstate/pkg/binding"
	"github.com/vango-dev/hxstate/pkg/reactive"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "hxstate").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives the collectors and backs Handler.
	// Default: a fresh registry per Metrics.
	Registry *prometheus.Registry
}

// MetricsOption configures Metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "hxstate",
		Buckets:   prometheus.DefBuckets,
	}
}

// Metrics holds the collectors for setup passes, effect runs and live
// sessions.
type Metrics struct {
	registry *prometheus.Registry

	setupDuration  prometheus.Histogram
	setupsTotal    *prometheus.CounterVec
	bindingsTotal  *prometheus.CounterVec
	effectRuns     *prometheus.CounterVec
	effectErrors   *prometheus.CounterVec
	effectDuration *prometheus.HistogramVec
	activeSessions prometheus.Gauge
	messagesTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	f := promauto.With(cfg.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, ConstLabels: cfg.ConstLabels,
			Name: name, Help: help,
		}, labels)
	}
	histogram := func(name, help string) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, ConstLabels: cfg.ConstLabels,
			Name: name, Help: help, Buckets: cfg.Buckets,
		}
	}

	return &Metrics{
		registry: cfg.Registry,

		setupDuration: f.NewHistogram(histogram("setup_duration_seconds",
			"Duration of binding setup passes in seconds")),
		setupsTotal: counter("setups_total",
			"Total number of binding setup passes", "status"),
		bindingsTotal: counter("bindings_total",
			"Total number of stores, bindings and effects created by setup", "kind"),

		effectRuns: counter("effect_runs_total",
			"Total number of effect runs", "kind"),
		effectErrors: counter("effect_errors_total",
			"Total number of failed effect runs", "kind"),
		effectDuration: f.NewHistogramVec(histogram("effect_duration_seconds",
			"Effect run duration in seconds"), []string{"kind"}),

		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, ConstLabels: cfg.ConstLabels,
			Name: "active_sessions", Help: "Number of open live sessions",
		}),
		messagesTotal: counter("messages_total",
			"Total number of live session messages by op and status", "op", "status"),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RuntimeOption returns a runtime option that records every effect run.
func (m *Metrics) RuntimeOption() reactive.RuntimeOption {
	return reactive.WithRunObserver(m.ObserveRun)
}

// ObserveRun records one effect run.
func (m *Metrics) ObserveRun(e *reactive.Effect, d time.Duration, err error) {
	kind := effectKind(e.Name())
	m.effectRuns.WithLabelValues(kind).Inc()
	m.effectDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err != nil {
		m.effectErrors.WithLabelValues(kind).Inc()
	}
}

// ObserveSetup records the outcome of a setup pass.
func (m *Metrics) ObserveSetup(res *binding.Result, err error) {
	m.setupsTotal.WithLabelValues(outcome(err)).Inc()
	if res == nil {
		return
	}
	m.setupDuration.Observe(res.Duration.Seconds())
	m.bindingsTotal.WithLabelValues("store").Add(float64(res.Stores))
	m.bindingsTotal.WithLabelValues(binding.KindBind.String()).Add(float64(res.Bindings))
	m.bindingsTotal.WithLabelValues(binding.KindEffect.String()).Add(float64(res.Effects))
	m.bindingsTotal.WithLabelValues("skipped").Add(float64(len(res.Skipped)))
}

// SessionOpened increments the live session gauge.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed decrements the live session gauge.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// ObserveMessage counts a live session message.
func (m *Metrics) ObserveMessage(op string, err error) {
	m.messagesTotal.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// effectKind extracts the kind prefix from an effect name such as
// "bind p#count".
func effectKind(name string) string {
	kind, _, _ := strings.Cut(name, " ")
	switch kind {
	case binding.KindBind.String(), binding.KindEffect.String():
		return kind
	default:
		return "other"
	}
}
