package service

import (
	"time"

	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/pkg/textutil"
)

// Recommendation texts, grouped by the layer that adds them.
var (
	generalRecommendations = []string{
		"Consider comprehensive psychiatric evaluation",
		"Assess for comorbid Axis I disorders",
	}
	clusterRecommendations = map[domain.Cluster][]string{
		domain.ClusterA: {
			"Consider evaluation for thought disorder or psychotic symptoms",
			"Assess social functioning and support systems",
		},
		domain.ClusterB: {
			"Assess suicide risk and self-harm behaviors",
			"Consider dialectical behavior therapy (DBT) or similar interventions",
			"Evaluate impulse control and emotional regulation",
		},
		domain.ClusterC: {
			"Assess for anxiety disorders and depression",
			"Consider cognitive-behavioral therapy (CBT)",
		},
	}
	multipleDiagnosesRecommendations = []string{
		"Multiple personality disorder features present - consider complex case consultation",
		"Prioritize treatment targets based on functional impairment",
	}
	severePathologyRecommendations = []string{
		"Severe personality pathology - consider intensive treatment approach",
		"Monitor for safety concerns and functional impairment",
	}
	noDiagnosisRecommendation = "No personality disorder criteria met at this time"
)

// AppendResult adds a module result to an open profile and recomputes every summary field.
func AppendResult(profile *domain.Profile, result domain.ModuleResult) error {
	if profile.Completed {
		return &domain.StateError{Operation: "append module result", State: "profile completed"}
	}
	profile.ModuleResults = append(profile.ModuleResults, result)
	RecomputeSummary(profile)
	return nil
}

// RecomputeSummary rebuilds cluster_summary, dimensional_scores, primary diagnoses and the
// total administration time from the accumulated results. It is idempotent.
func RecomputeSummary(profile *domain.Profile) {
	clusters := make(map[domain.Cluster]int, 3)
	for _, c := range domain.AllClusters() {
		clusters[c] = 0
	}
	dimensional := make(map[string]float64, len(profile.ModuleResults))
	primary := make([]string, 0, len(profile.ModuleResults))
	minutes := 0

	for _, r := range profile.ModuleResults {
		dimensional[r.ModuleName] = r.DimensionalScore
		minutes += r.AdministrationMinutes
		if r.CriteriaMet {
			clusters[r.Cluster]++
			primary = append(primary, r.ModuleName)
		}
	}

	profile.ClusterSummary = clusters
	profile.DimensionalScores = dimensional
	profile.PrimaryDiagnoses = primary
	profile.TotalAssessmentMins = minutes
}

// FinalizeProfile fixes the overall severity and recommendations and marks the profile
// completed. A completed profile is not modified again.
func FinalizeProfile(profile *domain.Profile, completedAt time.Time) {
	if profile.Completed {
		return
	}
	RecomputeSummary(profile)
	profile.OverallSeverity = OverallSeverity(profile)
	profile.Recommendations = Recommendations(profile)
	profile.Completed = true
	profile.CompletedAt = &completedAt
}

// OverallSeverity is the highest severity among positive results, or none when there is no
// positive result.
func OverallSeverity(profile *domain.Profile) domain.Severity {
	overall := domain.SeverityNone
	for _, r := range profile.PositiveDiagnoses() {
		if r.Severity.Rank() > overall.Rank() {
			overall = r.Severity
		}
	}
	return overall
}

// Recommendations builds the layered recommendation list for a profile.
func Recommendations(profile *domain.Profile) []string {
	positive := profile.PositiveDiagnoses()
	if len(positive) == 0 {
		return []string{noDiagnosisRecommendation}
	}

	recs := append([]string(nil), generalRecommendations...)

	distribution := profile.ClusterDistribution()
	for _, c := range domain.AllClusters() {
		if len(distribution[c]) > 0 {
			recs = append(recs, clusterRecommendations[c]...)
		}
	}

	if len(positive) > 1 {
		recs = append(recs, multipleDiagnosesRecommendations...)
	}

	for _, r := range positive {
		if r.Severity == domain.SeveritySevere {
			recs = append(recs, severePathologyRecommendations...)
			break
		}
	}

	return textutil.Dedupe(recs)
}
