// internal/monitoring/metrics.go
package monitoring

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects run counters on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal     *prometheus.CounterVec
	requestErrors     prometheus.Counter
	cacheLookups      *prometheus.CounterVec
	cacheWriteErrors  prometheus.Counter
	recordsExtracted  *prometheus.CounterVec
	extractionsFailed *prometheus.CounterVec
}

// NewMetrics creates a new metrics set under namespace
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "hscicharvest"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests made, by status class.",
		}, []string{"class"}),
		requestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Requests that failed before a status code was received.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by entry kind and result.",
		}, []string{"entry", "result"}),
		cacheWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_write_errors_total",
			Help:      "Cache writes that failed.",
		}),
		recordsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_extracted_total",
			Help:      "Records extracted, by run.",
		}, []string{"run"}),
		extractionsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_failed_total",
			Help:      "Items dropped from output, by run and reason.",
		}, []string{"run", "reason"}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestErrors,
		m.cacheLookups,
		m.cacheWriteErrors,
		m.recordsExtracted,
		m.extractionsFailed,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest counts a completed request by its status class ("2xx", "4xx", ...).
func (m *Metrics) ObserveRequest(statusCode int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(StatusClass(statusCode)).Inc()
}

// ObserveRequestError counts a request that failed at the transport level.
func (m *Metrics) ObserveRequestError() {
	if m == nil {
		return
	}
	m.requestErrors.Inc()
}

// CacheHit counts a cache hit for entry ("page" or "index").
func (m *Metrics) CacheHit(entry string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(entry, "hit").Inc()
}

// CacheMiss counts a cache miss for entry.
func (m *Metrics) CacheMiss(entry string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(entry, "miss").Inc()
}

// CacheWriteError counts a failed cache write.
func (m *Metrics) CacheWriteError() {
	if m == nil {
		return
	}
	m.cacheWriteErrors.Inc()
}

// RecordExtracted counts a record written to the run's output.
func (m *Metrics) RecordExtracted(run string) {
	if m == nil {
		return
	}
	m.recordsExtracted.WithLabelValues(run).Inc()
}

// ExtractionFailed counts an item omitted from output.
func (m *Metrics) ExtractionFailed(run, reason string) {
	if m == nil {
		return
	}
	m.extractionsFailed.WithLabelValues(run, reason).Inc()
}

// WriteTextfile dumps the registry in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// StatusClass maps a status code to its class label.
func StatusClass(statusCode int) string {
	if statusCode < 100 || statusCode > 599 {
		return "other"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}
