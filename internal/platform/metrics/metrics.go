package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LoginAttempts   *prometheus.CounterVec
	TokensIssued    prometheus.Counter
	TokensRefreshed prometheus.Counter
	TokensRevoked   prometheus.Counter
	AuthFailures    prometheus.Counter
	ActiveSessions  prometheus.Gauge
	Lockouts        prometheus.Counter
	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opsgate_login_attempts_total",
			Help: "Total number of login attempts, labeled by outcome",
		}, []string{"outcome"}),
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsgate_tokens_issued_total",
			Help: "Total number of access tokens issued",
		}),
		TokensRefreshed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsgate_tokens_refreshed_total",
			Help: "Total number of access tokens refreshed",
		}),
		TokensRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsgate_tokens_revoked_total",
			Help: "Total number of access tokens added to the blacklist",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsgate_auth_failures_total",
			Help: "Total number of rejected bearer-token requests",
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "opsgate_active_sessions",
			Help: "Current number of cached admin sessions",
		}),
		Lockouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsgate_lockouts_total",
			Help: "Total number of login lockouts triggered",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opsgate_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// CountAuthFailure increments the rejected-request counter. Satisfies the
// middleware's optional metrics hook.
func (m *Metrics) CountAuthFailure() {
	m.AuthFailures.Inc()
}

// CountLockout increments the triggered-lockout counter. Satisfies the
// lockout service's optional metrics hook.
func (m *Metrics) CountLockout() {
	m.Lockouts.Inc()
}

// ReapSessions subtracts TTL-lapsed sessions from the active-session gauge.
// Satisfies the cleanup worker's optional metrics hook.
func (m *Metrics) ReapSessions(n int) {
	m.ActiveSessions.Sub(float64(n))
}

// ObserveEndpointLatency records one request duration for an endpoint.
// Satisfies the latency middleware's observer interface.
func (m *Metrics) ObserveEndpointLatency(endpoint string, seconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(seconds)
}

// Login outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeBadCreds = "bad_credentials"
	OutcomeDisabled = "disabled"
	OutcomeLocked   = "locked"
	OutcomeError    = "error"
)
