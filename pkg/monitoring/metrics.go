package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transaction outcome labels
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// MetricsCollector handles Prometheus metrics collection for the chaincode
// process. Each collector owns its registry.
type MetricsCollector struct {
	serviceName string
	registry    *prometheus.Registry

	transactionsTotal   *prometheus.CounterVec
	transactionDuration *prometheus.HistogramVec
	accessDecisions     *prometheus.CounterVec
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(serviceName string) *MetricsCollector {
	m := &MetricsCollector{
		serviceName: serviceName,
		registry:    prometheus.NewRegistry(),
		transactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaincode_transactions_total",
				Help: "Total number of chaincode transactions",
			},
			[]string{"function", "status", "code", "service"},
		),
		transactionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chaincode_transaction_duration_seconds",
				Help:    "Duration of chaincode transactions in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"function", "service"},
		),
		accessDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consent_access_decisions_total",
				Help: "Total number of consent-gated patient record access decisions",
			},
			[]string{"decision", "service"},
		),
	}

	m.registry.MustRegister(
		m.transactionsTotal,
		m.transactionDuration,
		m.accessDecisions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordTransaction records the outcome of one chaincode transaction. code
// is empty on success.
func (m *MetricsCollector) RecordTransaction(function, code string, duration time.Duration) {
	status := StatusSuccess
	if code != "" {
		status = StatusFailure
	}
	m.transactionsTotal.WithLabelValues(function, status, code, m.serviceName).Inc()
	m.transactionDuration.WithLabelValues(function, m.serviceName).Observe(duration.Seconds())
}

// RecordAccessDecision records a patient record access decision
func (m *MetricsCollector) RecordAccessDecision(granted bool) {
	decision := "denied"
	if granted {
		decision = "granted"
	}
	m.accessDecisions.WithLabelValues(decision, m.serviceName).Inc()
}

// Registry exposes the collector's registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
