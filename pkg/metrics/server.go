package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ServerMetrics contains Prometheus metrics for the HTTP server and the
// ingestion pipeline behind it.
type ServerMetrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec
	ReportsIngested      *prometheus.CounterVec
	ReportsRejected      *prometheus.CounterVec
	CommandsIssued       prometheus.Counter
	CommandsDelivered    prometheus.Counter
	LoginAttempts        *prometheus.CounterVec
}

// NewServerMetrics creates and registers server metrics.
func NewServerMetrics(namespace string) *ServerMetrics {
	m := &ServerMetrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
			[]string{"method", "path"},
		),
		ReportsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "reports_total",
				Help:      "Total number of sensor reports stored",
			},
			[]string{"kind"}, // environment, motion, door_state
		),
		ReportsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "reports_rejected_total",
				Help:      "Total number of sensor reports rejected by validation",
			},
			[]string{"kind"},
		),
		CommandsIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "door",
				Name:      "commands_issued_total",
				Help:      "Total number of door commands issued",
			},
		),
		CommandsDelivered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "door",
				Name:      "commands_delivered_total",
				Help:      "Total number of door commands delivered to a poller",
			},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "login_attempts_total",
				Help:      "Total number of login attempts",
			},
			[]string{"result"}, // success, failure
		),
	}

	MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ReportsIngested,
		m.ReportsRejected,
		m.CommandsIssued,
		m.CommandsDelivered,
		m.LoginAttempts,
	)

	return m
}
