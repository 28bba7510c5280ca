package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	IngestionsTotal     *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	ImagesProcessed     *prometheus.CounterVec
	AmenitiesFlagged    prometheus.Counter
	CacheLookups        *prometheus.CounterVec

	initOnce sync.Once
)

// Init registers the collectors on the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	IngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestions_total",
			Help: "Total number of listing ingestion attempts.",
		},
		[]string{"status", "error_kind"}, // status: succeeded, failed, cached
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingestion_stage_duration_seconds",
			Help:    "Duration of each ingestion pipeline stage.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	ImagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "images_processed_total",
			Help: "Total number of listing images processed, by outcome.",
		},
		[]string{"status"},
	)

	AmenitiesFlagged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "amenities_flagged_total",
			Help: "Amenity values returned by the model that are outside the vocabulary.",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Ingestion result cache lookups.",
		},
		[]string{"result"}, // hit, miss, error, bypass
	)
}
