// Package metrics exposes the assessment pipeline's Prometheus instruments.
package metrics

import (
	"net/http"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "suggestibility"

// Flag triggers
const (
	TriggerAutomatic = "automatic"
	TriggerManual    = "manual"
	TriggerRederive  = "rederive"
)

// Recorder is what the services report to
type Recorder interface {
	AssessmentSubmitted(suggType models.SuggestibilityType, pattern models.PatternSignature, confidence float64)
	AssessmentFlagged(trigger string)
	ReviewDecided(decision models.ReviewState)
	ReviewConflict()
}

type Metrics struct {
	registry *prometheus.Registry

	submitted  *prometheus.CounterVec
	patterns   *prometheus.CounterVec
	flagged    *prometheus.CounterVec
	decisions  *prometheus.CounterVec
	conflicts  prometheus.Counter
	confidence prometheus.Histogram
}

// New registers the instruments on registry. A nil registry gets a fresh one
// with the Go and process collectors.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: registry,
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_submitted_total",
			Help:      "Assessments submitted, by suggestibility type.",
		}, []string{"type"}),
		patterns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pattern_signatures_total",
			Help:      "Answer pattern signatures detected on submission.",
		}, []string{"pattern"}),
		flagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_flagged_total",
			Help:      "Assessments moved into clinical review.",
		}, []string{"trigger"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_decisions_total",
			Help:      "Clinical review decisions.",
		}, []string{"decision"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_conflicts_total",
			Help:      "Review transitions rejected by the optimistic state check.",
		}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confidence_score",
			Help:      "Confidence score of submitted assessments.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
	}

	registry.MustRegister(m.submitted, m.patterns, m.flagged, m.decisions, m.conflicts, m.confidence)
	return m
}

func (m *Metrics) AssessmentSubmitted(suggType models.SuggestibilityType, pattern models.PatternSignature, confidence float64) {
	m.submitted.WithLabelValues(string(suggType)).Inc()
	m.patterns.WithLabelValues(string(pattern)).Inc()
	m.confidence.Observe(confidence)
}

func (m *Metrics) AssessmentFlagged(trigger string) {
	m.flagged.WithLabelValues(trigger).Inc()
}

func (m *Metrics) ReviewDecided(decision models.ReviewState) {
	m.decisions.WithLabelValues(string(decision)).Inc()
}

func (m *Metrics) ReviewConflict() {
	m.conflicts.Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

type noop struct{}

// NewNoop returns a Recorder that drops everything
func NewNoop() Recorder {
	return noop{}
}

func (noop) AssessmentSubmitted(models.SuggestibilityType, models.PatternSignature, float64) {}
func (noop) AssessmentFlagged(string)                                                        {}
func (noop) ReviewDecided(models.ReviewState)                                                {}
func (noop) ReviewConflict()                                                                 {}
