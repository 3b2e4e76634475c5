// Package metrics provides Prometheus instrumentation for the analysis pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the instruments published by the forensic engine.
type Metrics struct {
	// Completed analyses by document type and resulting risk level.
	Analyses *prometheus.CounterVec

	// Duplicate identifier detections.
	Duplicates prometheus.Counter

	// Per-check failures by check name.
	CheckFailures *prometheus.CounterVec

	// End-to-end analysis duration.
	AnalysisDuration prometheus.Histogram
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return &Metrics{
		Analyses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lendguard_analyses_total",
			Help: "Completed forensic analyses by document type and risk level",
		}, []string{"document_type", "risk_level"}),

		Duplicates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lendguard_duplicate_identifiers_total",
			Help: "Detected reuses of an already-recorded identifier",
		}),

		CheckFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lendguard_check_failures_total",
			Help: "Signal extractor failures by check name",
		}, []string{"check"}),

		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lendguard_analysis_duration_seconds",
			Help:    "Duration of a full document analysis",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// ObserveAnalysis records a completed analysis.
func (m *Metrics) ObserveAnalysis(docType, riskLevel string, d time.Duration) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(docType, riskLevel).Inc()
	m.AnalysisDuration.Observe(d.Seconds())
}

// IncrementDuplicate records a duplicate identifier detection.
func (m *Metrics) IncrementDuplicate() {
	if m != nil {
		m.Duplicates.Inc()
	}
}

// IncrementCheckFailure records a failed signal extractor.
func (m *Metrics) IncrementCheckFailure(check string) {
	if m != nil {
		m.CheckFailures.WithLabelValues(check).Inc()
	}
}

// Handler returns the HTTP handler that exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
