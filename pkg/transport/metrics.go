package transport

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector collects metrics for transport operations
type MetricsCollector interface {
	// RecordRequest records metrics for a request
	RecordRequest(requestType string, startTime time.Time, err error)

	// RecordSend records metrics for bytes sent
	RecordSend(bytes int)

	// RecordReceive records metrics for bytes received
	RecordReceive(bytes int)

	// RecordConnection records a connection event
	RecordConnection(successful bool)

	// GetMetrics returns the current metrics
	GetMetrics() Metrics
}

// Metrics represents transport metrics
type Metrics struct {
	TotalRequests      uint64
	SuccessfulRequests uint64
	FailedRequests     uint64
	BytesSent          uint64
	BytesReceived      uint64
	Connections        uint64
	ConnectionFailures uint64
	RequestsByType     map[string]uint64
	AvgLatencyByType   map[string]time.Duration
}

// BasicMetricsCollector is a simple in-memory implementation of MetricsCollector
type BasicMetricsCollector struct {
	totalRequests      atomic.Uint64
	successfulRequests atomic.Uint64
	failedRequests     atomic.Uint64
	bytesSent          atomic.Uint64
	bytesReceived      atomic.Uint64
	connections        atomic.Uint64
	connectionFailures atomic.Uint64

	mu                 sync.Mutex
	totalLatencyByType map[string]time.Duration
	requestCountByType map[string]uint64
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *BasicMetricsCollector {
	return &BasicMetricsCollector{
		totalLatencyByType: make(map[string]time.Duration),
		requestCountByType: make(map[string]uint64),
	}
}

// RecordRequest records metrics for a request
func (c *BasicMetricsCollector) RecordRequest(requestType string, startTime time.Time, err error) {
	c.totalRequests.Add(1)
	if err == nil {
		c.successfulRequests.Add(1)
	} else {
		c.failedRequests.Add(1)
	}

	latency := time.Since(startTime)

	c.mu.Lock()
	c.totalLatencyByType[requestType] += latency
	c.requestCountByType[requestType]++
	c.mu.Unlock()
}

// RecordSend records metrics for bytes sent
func (c *BasicMetricsCollector) RecordSend(bytes int) {
	c.bytesSent.Add(uint64(bytes))
}

// RecordReceive records metrics for bytes received
func (c *BasicMetricsCollector) RecordReceive(bytes int) {
	c.bytesReceived.Add(uint64(bytes))
}

// RecordConnection records a connection event
func (c *BasicMetricsCollector) RecordConnection(successful bool) {
	if successful {
		c.connections.Add(1)
	} else {
		c.connectionFailures.Add(1)
	}
}

// GetMetrics returns the current metrics
func (c *BasicMetricsCollector) GetMetrics() Metrics {
	c.mu.Lock()
	requestsByType := make(map[string]uint64, len(c.requestCountByType))
	avgLatencyByType := make(map[string]time.Duration, len(c.totalLatencyByType))
	for k, n := range c.requestCountByType {
		requestsByType[k] = n
		avgLatencyByType[k] = c.totalLatencyByType[k] / time.Duration(n)
	}
	c.mu.Unlock()

	return Metrics{
		TotalRequests:      c.totalRequests.Load(),
		SuccessfulRequests: c.successfulRequests.Load(),
		FailedRequests:     c.failedRequests.Load(),
		BytesSent:          c.bytesSent.Load(),
		BytesReceived:      c.bytesReceived.Load(),
		Connections:        c.connections.Load(),
		ConnectionFailures: c.connectionFailures.Load(),
		RequestsByType:     requestsByType,
		AvgLatencyByType:   avgLatencyByType,
	}
}
