package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider records HTTP and correlation-engine metrics. A noop implementation
// is returned when metrics are disabled so callers never nil-check.
type Provider interface {
	IncRequestsTotal(route string, status int)
	ObserveRequestDuration(route string, duration time.Duration)
	IncObservationsRecorded(appID string)
	IncFlagToggles(kind string)
	IncIgnoreToggles(appID string)
	ObserveDashboardMatches(count int)
}

type promProvider struct {
	requestsTotal        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	observationsRecorded *prometheus.CounterVec
	flagToggles          *prometheus.CounterVec
	ignoreToggles        *prometheus.CounterVec
	dashboardMatches     prometheus.Histogram
}

func NewProvider(enabled bool) Provider {
	if !enabled {
		return &noopProvider{}
	}

	return &promProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fingerprint_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fingerprint_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		observationsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fingerprint_observations_recorded_total",
			Help: "Total number of fingerprint observations recorded or refreshed",
		}, []string{"app_id"}),

		flagToggles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fingerprint_flag_toggles_total",
			Help: "Total number of moderator flag toggles by kind",
		}, []string{"kind"}),

		ignoreToggles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fingerprint_ignore_toggles_total",
			Help: "Total number of moderator ignore-pair toggles",
		}, []string{"app_id"}),

		dashboardMatches: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fingerprint_dashboard_matches",
			Help:    "Number of matches returned per dashboard build",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		}),
	}
}

func (m *promProvider) IncRequestsTotal(route string, status int) {
	m.requestsTotal.WithLabelValues(route, httpStatusBucket(status)).Inc()
}

func (m *promProvider) ObserveRequestDuration(route string, duration time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *promProvider) IncObservationsRecorded(appID string) {
	m.observationsRecorded.WithLabelValues(appID).Inc()
}

func (m *promProvider) IncFlagToggles(kind string) {
	m.flagToggles.WithLabelValues(kind).Inc()
}

func (m *promProvider) IncIgnoreToggles(appID string) {
	m.ignoreToggles.WithLabelValues(appID).Inc()
}

func (m *promProvider) ObserveDashboardMatches(count int) {
	m.dashboardMatches.Observe(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// NewNoop returns a Provider that discards everything.
func NewNoop() Provider {
	return &noopProvider{}
}

type noopProvider struct{}

func (n *noopProvider) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopProvider) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopProvider) IncObservationsRecorded(_ string)                 {}
func (n *noopProvider) IncFlagToggles(_ string)                          {}
func (n *noopProvider) IncIgnoreToggles(_ string)                        {}
func (n *noopProvider) ObserveDashboardMatches(_ int)                    {}
