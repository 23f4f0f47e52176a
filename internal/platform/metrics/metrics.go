package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the portal. Methods are nil-safe
// so services built without metrics need no guards.
type Metrics struct {
	ActiveSessions   prometheus.Gauge
	SessionsEvicted  prometheus.Counter
	SignIns          *prometheus.CounterVec
	SignOuts         prometheus.Counter
	Derivations      *prometheus.CounterVec
	DerivationTime   prometheus.Histogram
	KeyTransfers     *prometheus.CounterVec
	KeyPartialWrites prometheus.Counter
	KeyInconsistent  prometheus.Gauge
	BackendRequests  *prometheus.CounterVec
	BackendLatency   *prometheus.HistogramVec
	BreakerOpen      prometheus.Gauge
	EndpointLatency  *prometheus.HistogramVec
}

// New creates the metrics and registers them on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "orcs_active_visitor_sessions",
			Help: "Visitor sessions currently held by the registry",
		}),
		SessionsEvicted: f.NewCounter(prometheus.CounterOpts{
			Name: "orcs_visitor_sessions_evicted_total",
			Help: "Visitor sessions closed by the idle sweeper",
		}),
		SignIns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orcs_sign_ins_total",
			Help: "Sign-in attempts, labeled by outcome (ok or the auth error reason)",
		}, []string{"outcome"}),
		SignOuts: f.NewCounter(prometheus.CounterOpts{
			Name: "orcs_sign_outs_total",
			Help: "Sign-outs",
		}),
		Derivations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orcs_capability_derivations_total",
			Help: "Capability derivations, labeled by result (applied, stale, failed)",
		}, []string{"result"}),
		DerivationTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "orcs_capability_derivation_seconds",
			Help:    "Time to load profile, roles and officer assignment",
			Buckets: prometheus.DefBuckets,
		}),
		KeyTransfers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orcs_key_transfers_total",
			Help: "Key transfer operations, labeled by action (initiated, confirmed, cancelled)",
		}, []string{"action"}),
		KeyPartialWrites: f.NewCounter(prometheus.CounterOpts{
			Name: "orcs_key_transfer_partial_confirms_total",
			Help: "Confirmations whose transfer was marked but whose key update failed",
		}),
		KeyInconsistent: f.NewGauge(prometheus.GaugeOpts{
			Name: "orcs_key_inconsistencies",
			Help: "Keys whose holder disagrees with the transfer ledger at the last reconciliation",
		}),
		BackendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orcs_backend_requests_total",
			Help: "Requests to the hosted backend, labeled by operation and outcome",
		}, []string{"operation", "outcome"}),
		BackendLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orcs_backend_request_seconds",
			Help:    "Hosted backend request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		BreakerOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "orcs_backend_circuit_open",
			Help: "1 while the backend circuit breaker is open",
		}),
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orcs_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) IncSessionsEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsEvicted.Add(float64(n))
}

func (m *Metrics) IncSignIn(outcome string) {
	if m == nil {
		return
	}
	m.SignIns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncSignOut() {
	if m == nil {
		return
	}
	m.SignOuts.Inc()
}

func (m *Metrics) ObserveDerivation(result string, seconds float64) {
	if m == nil {
		return
	}
	m.Derivations.WithLabelValues(result).Inc()
	if result == "applied" {
		m.DerivationTime.Observe(seconds)
	}
}

func (m *Metrics) IncKeyTransfer(action string) {
	if m == nil {
		return
	}
	m.KeyTransfers.WithLabelValues(action).Inc()
}

func (m *Metrics) IncKeyPartialWrite() {
	if m == nil {
		return
	}
	m.KeyPartialWrites.Inc()
}

func (m *Metrics) SetKeyInconsistencies(n int) {
	if m == nil {
		return
	}
	m.KeyInconsistent.Set(float64(n))
}

func (m *Metrics) ObserveBackendRequest(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(operation, outcome).Inc()
	m.BackendLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}

func (m *Metrics) ObserveEndpointLatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.EndpointLatency.WithLabelValues(endpoint).Observe(seconds)
}
