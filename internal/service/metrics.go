package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/scid-pd-engine/internal/domain"
)

// Metrics tracks module administrations and completed profiles.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Administrations    *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	CriteriaMet        *prometheus.CounterVec
	DimensionalScores  *prometheus.HistogramVec
	ScoringDuration    prometheus.Histogram
	ProfilesCompleted  *prometheus.CounterVec
}

// NewMetrics registers the engine metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Administrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scid_pd_module_administrations_total",
			Help: "Module administrations by module and outcome",
		}, []string{"module_id", "outcome"}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scid_pd_validation_failures_total",
			Help: "Rejected response sets by module",
		}, []string{"module_id"}),
		CriteriaMet: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scid_pd_criteria_met_total",
			Help: "Administrations that met diagnostic criteria by module",
		}, []string{"module_id"}),
		DimensionalScores: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scid_pd_dimensional_score",
			Help:    "Distribution of dimensional scores (0-100) by module",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}, []string{"module_id"}),
		ScoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scid_pd_scoring_duration_seconds",
			Help:    "Duration of a full module evaluation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		ProfilesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scid_pd_profiles_completed_total",
			Help: "Completed assessments by overall severity",
		}, []string{"overall_severity"}),
	}
}

// ObserveAdministration records a scored module result.
func (m *Metrics) ObserveAdministration(result *domain.ModuleResult, start time.Time) {
	if m == nil {
		return
	}
	m.Administrations.WithLabelValues(result.ModuleID, "scored").Inc()
	m.DimensionalScores.WithLabelValues(result.ModuleID).Observe(result.DimensionalScore)
	m.ScoringDuration.Observe(time.Since(start).Seconds())
	if result.CriteriaMet {
		m.CriteriaMet.WithLabelValues(result.ModuleID).Inc()
	}
}

// ObserveValidationFailure records a rejected response set.
func (m *Metrics) ObserveValidationFailure(moduleID string) {
	if m == nil {
		return
	}
	m.Administrations.WithLabelValues(moduleID, "rejected").Inc()
	m.ValidationFailures.WithLabelValues(moduleID).Inc()
}

// ObserveProfileCompleted records a finalized profile.
func (m *Metrics) ObserveProfileCompleted(profile *domain.Profile) {
	if m == nil {
		return
	}
	m.ProfilesCompleted.WithLabelValues(profile.OverallSeverity.String()).Inc()
}
