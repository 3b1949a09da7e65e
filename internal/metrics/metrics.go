// Package metrics exposes Prometheus collectors for the billing engine and RPC layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "feeledger"

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PaymentsCreated  *prometheus.CounterVec
	PaymentsDeleted  *prometheus.CounterVec
	BatchFailures    *prometheus.CounterVec
	DepositShortfall *prometheus.CounterVec
	PayerCollisions  prometheus.Gauge
	RPCDuration      *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		PaymentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_created_total",
			Help:      "Payment records created, by operation.",
		}, []string{"operation"}),
		PaymentsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_deleted_total",
			Help:      "Payment records deleted, by operation.",
		}, []string{"operation"}),
		BatchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_failures_total",
			Help:      "Batches aborted by a repository error, by operation.",
		}, []string{"operation"}),
		DepositShortfall: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposit_shortfall_total",
			Help:      "Deposit amount requested but left unallocated, by distribution mode.",
		}, []string{"mode"}),
		PayerCollisions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "payer_collisions",
			Help:      "Payer identity collisions found in the last snapshot.",
		}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PaymentsCreated,
		m.PaymentsDeleted,
		m.BatchFailures,
		m.DepositShortfall,
		m.PayerCollisions,
		m.RPCDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) PaymentCreated(operation string) {
	if m != nil {
		m.PaymentsCreated.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) PaymentDeleted(operation string) {
	if m != nil {
		m.PaymentsDeleted.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) BatchFailed(operation string) {
	if m != nil {
		m.BatchFailures.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) Shortfall(mode string, amount float64) {
	if m != nil && amount > 0 {
		m.DepositShortfall.WithLabelValues(mode).Add(amount)
	}
}

func (m *Metrics) Collisions(n int) {
	if m != nil {
		m.PayerCollisions.Set(float64(n))
	}
}

func (m *Metrics) ObserveRPC(procedure, code string, seconds float64) {
	if m != nil {
		m.RPCDuration.WithLabelValues(procedure, code).Observe(seconds)
	}
}
