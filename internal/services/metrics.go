package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "resumatch"

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "analyses_total",
		Help:      "CV analyses by outcome (success, fallback, error) and error kind.",
	}, []string{"outcome", "kind"})

	modelCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "model_call_duration_seconds",
		Help:      "Latency of language model calls.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
	}, []string{"model", "status"})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "uploads_total",
		Help:      "Uploaded CV files by detected format and result.",
	}, []string{"format", "result"})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "batches_total",
		Help:      "Batch analyses by result.",
	}, []string{"result"})

	replyCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "reply_cache_total",
		Help:      "Model reply cache lookups by result (hit, miss, error).",
	}, []string{"result"})
)

// RecordUpload counts one uploaded file.
func RecordUpload(format string, ok bool) {
	result := "accepted"
	if !ok {
		result = "rejected"
	}
	if format == "" {
		format = "unknown"
	}
	uploadsTotal.WithLabelValues(format, result).Inc()
}
