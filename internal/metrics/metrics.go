package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_analyses_total",
			Help: "Total number of property analyses by outcome",
		},
		[]string{"outcome"}, // completed, rejected, invalid, cancelled
	)

	ClassifierFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_classifier_fallbacks_total",
			Help: "Classifications that fell back to the default category",
		},
		[]string{"reason"},
	)

	FillerPaddings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_filler_prospects_total",
			Help: "Generic filler prospects synthesized to reach the prospect count",
		},
		[]string{"category"},
	)

	AnalysesArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prospector_analyses_archived_total",
			Help: "Stored analyses moved to archived status",
		},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_store_errors_total",
			Help: "Persistence failures by operation",
		},
		[]string{"op"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prospector_analysis_duration_seconds",
			Help:    "Duration of full property analyses in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"}, // category, all
	)
)
