package service

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/scid-pd-engine/internal/domain"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func intPtr(v int) *int { return &v }

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// yesNoModule builds a module of n yes/no questions with weight 1.0, each on its own trait.
func yesNoModule(t *testing.T, n int, threshold float64, minCriteria int) *domain.Module {
	t.Helper()
	questions := make([]domain.Question, 0, n)
	for i := 1; i <= n; i++ {
		questions = append(questions, domain.Question{
			ID:             fmt.Sprintf("q%d", i),
			ResponseType:   domain.ResponseYesNo,
			CriteriaWeight: 1.0,
			Trait:          domain.TraitID(fmt.Sprintf("trait_%d", i)),
			Dimension:      domain.DimensionBehavioral,
		})
	}
	m, err := domain.NewModule(domain.Module{
		ID:                   "test",
		Name:                 "Test Personality Disorder",
		Cluster:              domain.ClusterB,
		Questions:            questions,
		DiagnosticThreshold:  threshold,
		DimensionalThreshold: 60,
		MinimumCriteriaCount: minCriteria,
	})
	require.NoError(t, err)
	return m
}

// mustModule wraps domain.NewModule for table fixtures.
func mustModule(t *testing.T, m domain.Module) *domain.Module {
	t.Helper()
	if m.ID == "" {
		m.ID = "fixture"
	}
	if m.Name == "" {
		m.Name = "Fixture Personality Disorder"
	}
	if m.Cluster == "" {
		m.Cluster = domain.ClusterB
	}
	out, err := domain.NewModule(m)
	require.NoError(t, err)
	return out
}

func yes(ids ...string) domain.Responses {
	r := make(domain.Responses, len(ids))
	for _, id := range ids {
		r[id] = domain.Response{Value: "yes"}
	}
	return r
}

// borderlineFixture mirrors the shape of the borderline module: nine weighted criteria,
// severity thresholds and explicit differentials.
func borderlineFixture(t *testing.T) *domain.Module {
	t.Helper()
	traits := []domain.TraitID{
		"fear_of_abandonment", "unstable_relationships", "identity_disturbance",
		"impulsivity", "self_harm", "mood_instability", "emptiness",
		"anger_dysregulation", "paranoid_dissociation",
	}
	questions := make([]domain.Question, 0, len(traits))
	for i, trait := range traits {
		questions = append(questions, domain.Question{
			ID:                 fmt.Sprintf("bpd_%d", i+1),
			ResponseType:       domain.ResponseYesNo,
			CriteriaWeight:     1.0,
			Trait:              trait,
			Dimension:          domain.DimensionAffective,
			Required:           i == 0,
			PervasivenessCheck: i < 4,
		})
	}
	return mustModule(t, domain.Module{
		ID:                   "borderline_pd",
		Name:                 "Borderline Personality Disorder",
		Cluster:              domain.ClusterB,
		Questions:            questions,
		DiagnosticThreshold:  0.65,
		DimensionalThreshold: 60,
		MinimumCriteriaCount: 5,
		SeverityThresholds: map[domain.Severity]float64{
			domain.SeverityMild:     0.5,
			domain.SeverityModerate: 0.65,
			domain.SeveritySevere:   0.8,
			domain.SeverityExtreme:  0.9,
		},
		DifferentialDiagnoses: []string{"Bipolar Disorder", "Complex PTSD"},
		RelatedConditions: map[domain.TraitID][]string{
			"mood_instability": {"Major Depressive Disorder", "Bipolar Disorder"},
		},
	})
}
