// Package metrics provides Prometheus metrics for the card scan service.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardscan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardscan_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Identification Metrics
	IdentificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardscan_identifications_total",
			Help: "Total number of card identification runs",
		},
		[]string{"result"}, // "suggested", "empty", "failed"
	)

	StageOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardscan_stage_outcomes_total",
			Help: "Pipeline stage outcomes",
		},
		[]string{"stage", "outcome"},
	)

	// OCR Metrics
	OCRProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardscan_ocr_processing_duration_seconds",
			Help:    "Time taken to recognize text on one face",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"engine"},
	)

	// Catalog Metrics
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardscan_catalog_requests_total",
			Help: "Total number of catalog searches by outcome",
		},
		[]string{"outcome"},
	)

	CatalogRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardscan_catalog_request_duration_seconds",
			Help:    "Catalog search latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	CatalogResultsCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardscan_catalog_results",
			Help:    "Number of suggestions returned per identification",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	// Upload Metrics
	UploadedBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardscan_uploaded_bytes_total",
			Help: "Bytes of card images stored, by face",
		},
		[]string{"face"},
	)

	// Collection Metrics
	CollectionCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardscan_collection_cards_total",
			Help: "Total number of confirmed cards across all collections",
		},
	)

	CollectionValueEUR = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardscan_collection_value_eur",
			Help: "Total recorded value of all collections",
		},
	)

	// Account Metrics
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardscan_auth_attempts_total",
			Help: "Login and registration attempts by result",
		},
		[]string{"action", "result"},
	)
)
