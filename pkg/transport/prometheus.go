package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exports transport metrics to a Prometheus registry while
// keeping an in-memory snapshot for GetMetrics.
type PrometheusCollector struct {
	basic *BasicMetricsCollector

	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	bytes       *prometheus.CounterVec
	connections *prometheus.CounterVec
}

var _ MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates a collector and registers its metrics with reg
func NewPrometheusCollector(reg prometheus.Registerer, namespace string) (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		basic: NewMetricsCollector(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "requests_total",
			Help:      "Number of requests sent, by request type and outcome.",
		}, []string{"type", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "request_duration_seconds",
			Help:      "Request round trip latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"type"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "bytes_total",
			Help:      "Payload bytes transferred, by direction.",
		}, []string{"direction"}),
		connections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "connections_total",
			Help:      "Connection attempts, by outcome.",
		}, []string{"outcome"}),
	}

	for _, collector := range []prometheus.Collector{c.requests, c.latency, c.bytes, c.connections} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordRequest records metrics for a request
func (c *PrometheusCollector) RecordRequest(requestType string, startTime time.Time, err error) {
	c.basic.RecordRequest(requestType, startTime, err)
	c.requests.WithLabelValues(requestType, outcome(err == nil)).Inc()
	c.latency.WithLabelValues(requestType).Observe(time.Since(startTime).Seconds())
}

// RecordSend records metrics for bytes sent
func (c *PrometheusCollector) RecordSend(bytes int) {
	c.basic.RecordSend(bytes)
	c.bytes.WithLabelValues("sent").Add(float64(bytes))
}

// RecordReceive records metrics for bytes received
func (c *PrometheusCollector) RecordReceive(bytes int) {
	c.basic.RecordReceive(bytes)
	c.bytes.WithLabelValues("received").Add(float64(bytes))
}

// RecordConnection records a connection event
func (c *PrometheusCollector) RecordConnection(successful bool) {
	c.basic.RecordConnection(successful)
	c.connections.WithLabelValues(outcome(successful)).Inc()
}

// GetMetrics returns the current metrics
func (c *PrometheusCollector) GetMetrics() Metrics {
	return c.basic.GetMetrics()
}
