// Package metrics exposes Prometheus collectors for the chat service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "courserag_request_latency_ms",
		Help:    "Latency of chat requests in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000, 60000},
	}, []string{"path", "status"})

	retrievalLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "courserag_retrieval_latency_ms",
		Help:    "Latency of index retrieval in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	outcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courserag_outcome_total",
		Help: "Terminal outcome of each chat request",
	}, []string{"source"})

	failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courserag_failure_total",
		Help: "Failed chat requests by error kind",
	}, []string{"kind"})

	indexedChunks = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "courserag_indexed_chunks",
		Help: "Number of chunks in the serving index",
	})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(requestLatency, retrievalLatency, outcomes, failures, indexedChunks)
	})
}

// ObserveRequest records latency for a finished HTTP request.
func ObserveRequest(path, status string, start time.Time) {
	ensureRegistered()
	requestLatency.WithLabelValues(path, status).Observe(float64(time.Since(start).Milliseconds()))
}

// ObserveRetrieval records how long an index lookup took.
func ObserveRetrieval(start time.Time) {
	ensureRegistered()
	retrievalLatency.Observe(float64(time.Since(start).Milliseconds()))
}

// IncOutcome counts a terminal outcome (grounded, web, no_credential, not_found, direct-llm).
func IncOutcome(source string) {
	ensureRegistered()
	outcomes.WithLabelValues(source).Inc()
}

// IncFailure counts a failed request by error kind.
func IncFailure(kind string) {
	ensureRegistered()
	failures.WithLabelValues(kind).Inc()
}

// SetIndexedChunks publishes the serving index size.
func SetIndexedChunks(n int) {
	ensureRegistered()
	indexedChunks.Set(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	ensureRegistered()
	return promhttp.Handler()
}
