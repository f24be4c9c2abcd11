package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scid-pd-engine/internal/domain"
)

func result(name string, cluster domain.Cluster, met bool, severity domain.Severity, dimensional float64) domain.ModuleResult {
	return domain.ModuleResult{
		ModuleID:              name,
		ModuleName:            name,
		Cluster:               cluster,
		CriteriaMet:           met,
		Severity:              severity,
		DimensionalScore:      dimensional,
		AdministrationMinutes: 7,
	}
}

func TestAppendResult_RecomputesSummary(t *testing.T) {
	profile := domain.NewProfile("p", fixedNow)

	require.NoError(t, AppendResult(profile, result("Borderline", domain.ClusterB, true, domain.SeverityModerate, 72)))
	require.NoError(t, AppendResult(profile, result("Avoidant", domain.ClusterC, false, domain.SeverityNone, 31.5)))
	require.NoError(t, AppendResult(profile, result("Narcissistic", domain.ClusterB, true, domain.SeverityMild, 64)))

	assert.Equal(t, map[domain.Cluster]int{domain.ClusterA: 0, domain.ClusterB: 2, domain.ClusterC: 0}, profile.ClusterSummary)
	assert.Equal(t, map[string]float64{"Borderline": 72, "Avoidant": 31.5, "Narcissistic": 64}, profile.DimensionalScores)
	assert.Equal(t, []string{"Borderline", "Narcissistic"}, profile.PrimaryDiagnoses)
	assert.Equal(t, 21, profile.TotalAssessmentMins)
	assert.False(t, profile.Completed)
	assert.Empty(t, profile.Recommendations, "recommendations are only set on completion")
}

func TestRecomputeSummary_Idempotent(t *testing.T) {
	profile := domain.NewProfile("p", fixedNow)
	profile.ModuleResults = []domain.ModuleResult{
		result("Borderline", domain.ClusterB, true, domain.SeveritySevere, 80),
		result("Dependent", domain.ClusterC, true, domain.SeverityMild, 55),
	}

	RecomputeSummary(profile)
	first := profile.Clone()
	RecomputeSummary(profile)

	assert.Equal(t, first.ClusterSummary, profile.ClusterSummary)
	assert.Equal(t, first.DimensionalScores, profile.DimensionalScores)
	assert.Equal(t, first.PrimaryDiagnoses, profile.PrimaryDiagnoses)
}

func TestFinalizeProfile(t *testing.T) {
	t.Run("no positive diagnoses", func(t *testing.T) {
		profile := domain.NewProfile("p", fixedNow)
		require.NoError(t, AppendResult(profile, result("Avoidant", domain.ClusterC, false, domain.SeverityNone, 20)))

		FinalizeProfile(profile, fixedNow)

		assert.Equal(t, domain.SeverityNone, profile.OverallSeverity)
		assert.Equal(t, []string{"No personality disorder criteria met at this time"}, profile.Recommendations)
		assert.True(t, profile.Completed)
		require.NotNil(t, profile.CompletedAt)
	})

	t.Run("single cluster C diagnosis", func(t *testing.T) {
		profile := domain.NewProfile("p", fixedNow)
		require.NoError(t, AppendResult(profile, result("Dependent", domain.ClusterC, true, domain.SeverityMild, 55)))

		FinalizeProfile(profile, fixedNow)

		assert.Equal(t, domain.SeverityMild, profile.OverallSeverity)
		assert.Equal(t, []string{
			"Consider comprehensive psychiatric evaluation",
			"Assess for comorbid Axis I disorders",
			"Assess for anxiety disorders and depression",
			"Consider cognitive-behavioral therapy (CBT)",
		}, profile.Recommendations)
	})

	t.Run("layers in fixed order", func(t *testing.T) {
		profile := domain.NewProfile("p", fixedNow)
		require.NoError(t, AppendResult(profile, result("Dependent", domain.ClusterC, true, domain.SeverityModerate, 60)))
		require.NoError(t, AppendResult(profile, result("Borderline", domain.ClusterB, true, domain.SeveritySevere, 90)))
		require.NoError(t, AppendResult(profile, result("Antisocial", domain.ClusterB, true, domain.SeverityMild, 66)))

		FinalizeProfile(profile, fixedNow)

		assert.Equal(t, domain.SeveritySevere, profile.OverallSeverity)
		assert.Equal(t, []string{
			"Consider comprehensive psychiatric evaluation",
			"Assess for comorbid Axis I disorders",
			"Assess suicide risk and self-harm behaviors",
			"Consider dialectical behavior therapy (DBT) or similar interventions",
			"Evaluate impulse control and emotional regulation",
			"Assess for anxiety disorders and depression",
			"Consider cognitive-behavioral therapy (CBT)",
			"Multiple personality disorder features present - consider complex case consultation",
			"Prioritize treatment targets based on functional impairment",
			"Severe personality pathology - consider intensive treatment approach",
			"Monitor for safety concerns and functional impairment",
		}, profile.Recommendations)
	})

	t.Run("extreme alone does not add severe pathology advice", func(t *testing.T) {
		profile := domain.NewProfile("p", fixedNow)
		require.NoError(t, AppendResult(profile, result("Paranoid", domain.ClusterA, true, domain.SeverityExtreme, 95)))

		FinalizeProfile(profile, fixedNow)

		assert.Equal(t, domain.SeverityExtreme, profile.OverallSeverity)
		assert.NotContains(t, profile.Recommendations, "Severe personality pathology - consider intensive treatment approach")
		assert.Contains(t, profile.Recommendations, "Consider evaluation for thought disorder or psychotic symptoms")
		assert.NotContains(t, profile.Recommendations, "Prioritize treatment targets based on functional impairment")
	})

	t.Run("completed profile is read-only", func(t *testing.T) {
		profile := domain.NewProfile("p", fixedNow)
		require.NoError(t, AppendResult(profile, result("Dependent", domain.ClusterC, true, domain.SeverityMild, 55)))
		FinalizeProfile(profile, fixedNow)
		recs := append([]string(nil), profile.Recommendations...)

		err := AppendResult(profile, result("Borderline", domain.ClusterB, true, domain.SeveritySevere, 90))
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.Len(t, profile.ModuleResults, 1)

		FinalizeProfile(profile, fixedNow.Add(1))
		assert.Equal(t, recs, profile.Recommendations)
		assert.Equal(t, fixedNow, *profile.CompletedAt)
	})
}
