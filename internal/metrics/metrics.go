// Package metrics defines the Prometheus metrics of the voice engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	Registry *prometheus.Registry

	// Extraction metrics
	Extractions       *prometheus.CounterVec
	ExtractionLatency prometheus.Histogram
	ExtractedWords    prometheus.Histogram

	// Profile metrics
	ProfileUpdates    *prometheus.CounterVec
	CommitConflicts   prometheus.Counter
	ProfileConfidence prometheus.Histogram
	ContextCacheHits  *prometheus.CounterVec

	// Background queue metrics
	QueueDepth prometheus.Gauge
	QueueTasks *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
}

// New registers every metric on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		// Extraction outcome: ok, too_short, unsupported, invalid
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_extractions_total",
			Help: "Total number of fingerprint extractions by outcome",
		}, []string{"outcome"}),

		ExtractionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_extraction_duration_seconds",
			Help:    "Fingerprint extraction latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		ExtractedWords: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_extracted_words",
			Help:    "Number of words analyzed per extraction",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 20000},
		}),

		// Profile updates by operation (learn, forget, reset) and outcome
		ProfileUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_profile_updates_total",
			Help: "Total number of profile updates by operation and outcome",
		}, []string{"operation", "outcome"}),

		CommitConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_commit_conflicts_total",
			Help: "Total number of optimistic version conflicts on profile commit",
		}),

		ProfileConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_profile_confidence",
			Help:    "Confidence level of profiles after an update",
			Buckets: []float64{0, 10, 30, 45, 60, 85, 100},
		}),

		ContextCacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_context_cache_total",
			Help: "Generation context cache lookups by result",
		}, []string{"result"}),

		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voice_queue_depth",
			Help: "Number of learn tasks waiting in the background queue",
		}),

		QueueTasks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_queue_tasks_total",
			Help: "Background learn tasks by outcome",
		}, []string{"outcome"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
	}
}
