package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeNoToken = "no_token"
)

// Gates.
const (
	GateAuth = "auth"
	GateRole = "role"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "far7tna").
	Namespace string

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Metrics holds the session pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	refreshTotal   *prometheus.CounterVec
	refreshJoined  prometheus.Counter
	requestRetries prometheus.Counter
	guardRedirects *prometheus.CounterVec
	pageDuration   *prometheus.HistogramVec
}

// New registers the collectors. Registering twice on the same registry panics.
func New(opts ...Option) *Metrics {
	cfg := Config{
		Namespace: "far7tna",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		refreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "refresh_total",
			Help:      "Token refresh exchanges by outcome",
		}, []string{"outcome"}),

		refreshJoined: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "refresh_joined_total",
			Help:      "Refresh requests that joined an exchange already in flight",
		}),

		requestRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "request_retries_total",
			Help:      "API requests re-issued after a token refresh",
		}),

		guardRedirects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "guard_redirects_total",
			Help:      "Navigations redirected to the login page by gate",
		}, []string{"gate"}),

		pageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "portal_request_duration_seconds",
			Help:      "Portal request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

func (m *Metrics) RefreshOutcome(outcome string) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RefreshJoined() {
	if m == nil {
		return
	}
	m.refreshJoined.Inc()
}

func (m *Metrics) RequestRetried() {
	if m == nil {
		return
	}
	m.requestRetries.Inc()
}

func (m *Metrics) GuardRedirect(gate string) {
	if m == nil {
		return
	}
	m.guardRedirects.WithLabelValues(gate).Inc()
}

func (m *Metrics) ObservePortalRequest(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.pageDuration.WithLabelValues(method, status).Observe(seconds)
}
