// Package server — metrics.go registers all Prometheus metrics for the HTTP
// server and exposes helpers used by handlers and middleware.
package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// ingestFilesTotal counts ingested files, partitioned by per-file status:
	// "indexed", "rejected-type", or "error".
	ingestFilesTotal *prometheus.CounterVec

	// ingestChunksTotal counts vectors upserted across all ingested files.
	ingestChunksTotal prometheus.Counter

	// queryRequestsTotal counts completed /api/retrieve/query requests,
	// partitioned by outcome: "ok", "invalid", or "error".
	queryRequestsTotal *prometheus.CounterVec

	// queryDurationSeconds records the wall-clock duration of each query
	// from receipt to response, provider calls included.
	queryDurationSeconds prometheus.Histogram

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, handler name, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) is used so that each call
// registers into the provided registry rather than the global default —
// this keeps unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		ingestFilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "askdocs",
			Subsystem: "ingest",
			Name:      "files_total",
			Help:      "Total number of files processed by the ingestion pipeline, partitioned by per-file status.",
		}, []string{"status"}),

		ingestChunksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "askdocs",
			Subsystem: "ingest",
			Name:      "chunks_total",
			Help:      "Total number of vectors upserted across all ingested files.",
		}),

		queryRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "askdocs",
			Subsystem: "query",
			Name:      "requests_total",
			Help:      "Total number of retrieval queries completed, partitioned by outcome.",
		}, []string{"outcome"}),

		queryDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "askdocs",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of retrieval queries from receipt to response.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "askdocs",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", "handler", "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "askdocs",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "handler"}),
	}
}
