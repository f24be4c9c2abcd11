package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scid-pd-engine/internal/domain"
)

func TestScoreResponse_YesNo(t *testing.T) {
	q := &domain.Question{ID: "q", ResponseType: domain.ResponseYesNo, CriteriaWeight: 1, Trait: "t"}

	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"bool true", true, 1.0},
		{"lower yes", "yes", 1.0},
		{"title Yes", "Yes", 1.0},
		{"upper YES", "YES", 1.0},
		{"numeric one", 1.0, 1.0},
		{"int one", 1, 1.0},
		{"no", "no", 0},
		{"bool false", false, 0},
		{"mixed case", "yEs", 0},
		{"y", "y", 0},
		{"string one", "1", 0},
		{"zero", 0.0, 0},
		{"two", 2.0, 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreResponse(q, domain.Response{Value: tt.value}))
		})
	}
}

func TestScoreResponse_Scale(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		value    any
		want     float64
	}{
		{"declared min", 0, 10, 0.0, 0.0},
		{"declared max", 0, 10, 10.0, 1.0},
		{"midpoint", 0, 10, 5.0, 0.5},
		{"offset range min", 1, 5, 1.0, 0.0},
		{"offset range midpoint", 1, 5, 3.0, 0.5},
		{"offset range max", 1, 5, 5.0, 1.0},
		{"numeric string", 0, 10, "7.5", 0.75},
		{"unparseable degrades to zero", 0, 10, "often", 0},
		{"bool degrades to zero", 0, 10, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &domain.Question{ID: "q", ResponseType: domain.ResponseScale, ScaleMin: tt.min, ScaleMax: tt.max, CriteriaWeight: 1, Trait: "t"}
			assert.InDelta(t, tt.want, ScoreResponse(q, domain.Response{Value: tt.value}), 1e-9)
		})
	}
}

func TestScoreResponse_Frequency(t *testing.T) {
	q := &domain.Question{ID: "q", ResponseType: domain.ResponseFrequency, CriteriaWeight: 1, Trait: "t"}

	tests := map[string]float64{
		"never":      0.0,
		"rarely":     0.2,
		"Sometimes":  0.4,
		"often":      0.7,
		"Very Often": 0.9,
		"ALWAYS":     1.0,
		"constantly": 0.0,
	}

	previous := -1.0
	for _, word := range []string{"never", "rarely", "sometimes", "often", "very often", "always"} {
		score := ScoreResponse(q, domain.Response{Value: word})
		assert.Greater(t, score, previous, "frequency scores must increase")
		previous = score
	}

	for value, want := range tests {
		t.Run(value, func(t *testing.T) {
			assert.InDelta(t, want, ScoreResponse(q, domain.Response{Value: value}), 1e-9)
		})
	}
}

func TestScoreResponse_Choice(t *testing.T) {
	single := &domain.Question{
		ID: "s", ResponseType: domain.ResponseSingleChoice, CriteriaWeight: 1, Trait: "t",
		Options: []string{"At work", "In relationships", "None of these"},
	}
	multi := &domain.Question{
		ID: "m", ResponseType: domain.ResponseMultiChoice, CriteriaWeight: 1, Trait: "t",
		Options: []string{"At work", "At home", "With friends", "None"},
	}

	tests := []struct {
		name string
		q    *domain.Question
		v    any
		want float64
	}{
		{"single valid", single, "At work", 1.0},
		{"single negative option", single, "None of these", 0},
		{"single not an option", single, "At school", 0},
		{"multi two of three symptomatic", multi, []string{"At work", "At home"}, 2.0 / 3.0},
		{"multi all symptomatic", multi, []string{"At work", "At home", "With friends"}, 1.0},
		{"multi only negative", multi, []string{"None"}, 0},
		{"multi negative ignored", multi, []any{"At work", "None"}, 1.0 / 3.0},
		{"multi single string", multi, "With friends", 1.0 / 3.0},
		{"multi duplicates counted once", multi, []string{"At work", "At work"}, 1.0 / 3.0},
		{"multi empty", multi, []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreResponse(tt.q, domain.Response{Value: tt.v}), 1e-9)
		})
	}
}

func TestScoreResponse_Presence(t *testing.T) {
	for _, rt := range []domain.ResponseType{domain.ResponseText, domain.ResponseDate, domain.ResponseOnsetAge} {
		q := &domain.Question{ID: "q", ResponseType: rt, CriteriaWeight: 1, Trait: "t"}
		t.Run(rt.String(), func(t *testing.T) {
			assert.Equal(t, 1.0, ScoreResponse(q, domain.Response{Value: "something"}))
			assert.Equal(t, 0.0, ScoreResponse(q, domain.Response{Value: "   "}))
			assert.Equal(t, 0.0, ScoreResponse(q, domain.Response{}))
		})
	}

	onset := &domain.Question{ID: "q", ResponseType: domain.ResponseOnsetAge, CriteriaWeight: 1, Trait: "t"}
	assert.Equal(t, 1.0, ScoreResponse(onset, domain.Response{Value: 0.0}), "age zero is a supplied value")
}

func TestScoreResponse_Adjustments(t *testing.T) {
	scale := func(requiresExamples, onsetRelevant bool) *domain.Question {
		return &domain.Question{
			ID: "q", ResponseType: domain.ResponseScale, ScaleMin: 0, ScaleMax: 10,
			CriteriaWeight: 1, Trait: "t", RequiresExamples: requiresExamples, OnsetRelevant: onsetRelevant,
		}
	}
	yesNo := &domain.Question{ID: "q", ResponseType: domain.ResponseYesNo, CriteriaWeight: 1, Trait: "t", RequiresExamples: true, OnsetRelevant: true}

	tests := []struct {
		name string
		q    *domain.Question
		r    domain.Response
		want float64
	}{
		{"examples boost", scale(true, false), domain.Response{Value: 5.0, Examples: []string{"at work"}}, 0.55},
		{"examples boost capped", yesNo, domain.Response{Value: "yes", Examples: []string{"at work"}}, 1.0},
		{"missing examples penalty", scale(true, false), domain.Response{Value: 8.0}, 0.64},
		{"no penalty at exactly half", scale(true, false), domain.Response{Value: 5.0}, 0.5},
		{"blank examples do not count", scale(true, false), domain.Response{Value: 8.0, Examples: []string{"  "}}, 0.64},
		{"early onset boost", scale(false, true), domain.Response{Value: 5.0, OnsetAge: intPtr(18)}, 0.525},
		{"late onset penalty", scale(false, true), domain.Response{Value: 5.0, OnsetAge: intPtr(30)}, 0.45},
		{"onset 19 to 25 unchanged", scale(false, true), domain.Response{Value: 5.0, OnsetAge: intPtr(25)}, 0.5},
		{"onset ignored when not relevant", scale(false, false), domain.Response{Value: 5.0, OnsetAge: intPtr(10)}, 0.5},
		{"early onset replaces missing examples penalty", yesNo, domain.Response{Value: "yes", OnsetAge: intPtr(10)}, 1.0},
		{"late onset replaces missing examples penalty", yesNo, domain.Response{Value: "yes", OnsetAge: intPtr(30)}, 0.9},
		{"late onset replaces examples boost", scale(true, true), domain.Response{Value: 5.0, Examples: []string{"at work"}, OnsetAge: intPtr(30)}, 0.45},
		{"penalty kept when onset is neutral", yesNo, domain.Response{Value: "yes", OnsetAge: intPtr(22)}, 0.8},
		{"no adjustment on zero base", yesNo, domain.Response{Value: "no", Examples: []string{"x"}, OnsetAge: intPtr(10)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreResponse(tt.q, tt.r), 1e-9)
		})
	}
}

func TestScoreResponse_IsPure(t *testing.T) {
	q := &domain.Question{ID: "q", ResponseType: domain.ResponseScale, ScaleMin: 0, ScaleMax: 7, CriteriaWeight: 1, Trait: "t", RequiresExamples: true, OnsetRelevant: true}
	r := domain.Response{Value: 6.0, Examples: []string{"a", "b"}, OnsetAge: intPtr(15)}

	first := ScoreResponse(q, r)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ScoreResponse(q, r))
	}
	assert.GreaterOrEqual(t, first, 0.0)
	assert.LessOrEqual(t, first, 1.0)
}

func TestScoreModule_ScenarioA(t *testing.T) {
	module := yesNoModule(t, 2, 0.6, 2)

	score := ScoreModule(module, domain.Responses{
		"q1": {Value: "yes"},
		"q2": {Value: "no"},
	})

	assert.Equal(t, 1.0, score.TotalScore)
	assert.Equal(t, 2.0, score.MaxPossibleScore)
	assert.Equal(t, 0.5, score.PercentageScore)
	assert.False(t, score.CriteriaMet)
}

func TestScoreModule_ScenarioB(t *testing.T) {
	module := yesNoModule(t, 9, 0.65, 5)

	score := ScoreModule(module, yes("q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8", "q9"))

	assert.Equal(t, 1.0, score.PercentageScore)
	assert.Equal(t, 9, score.CoreCriteriaCount)
	assert.True(t, score.CriteriaMet)
}

func TestScoreModule_MaxCountsUnansweredQuestions(t *testing.T) {
	module := mustModule(t, domain.Module{
		DiagnosticThreshold: 0.5,
		Questions: []domain.Question{
			{ID: "a", ResponseType: domain.ResponseYesNo, CriteriaWeight: 1.0, Trait: "x"},
			{ID: "b", ResponseType: domain.ResponseYesNo, CriteriaWeight: 0.5, Trait: "x"},
			{ID: "c", ResponseType: domain.ResponseYesNo, CriteriaWeight: 2.0, Trait: "y"},
		},
	})

	for _, responses := range []domain.Responses{{}, yes("a"), yes("a", "b", "c")} {
		score := ScoreModule(module, responses)
		assert.Equal(t, 3.5, score.MaxPossibleScore)
		assert.Equal(t, module.MaxPossibleScore(), score.MaxPossibleScore)
		assert.InDelta(t, score.TotalScore/score.MaxPossibleScore, score.PercentageScore, 1e-12)
		assert.Len(t, score.RawScores, 3, "raw scores cover every question")
	}
}

func TestScoreModule_MinimumCriteriaBlocksDiagnosis(t *testing.T) {
	module := mustModule(t, domain.Module{
		DiagnosticThreshold:  0.5,
		MinimumCriteriaCount: 3,
		Questions: []domain.Question{
			{ID: "core1", ResponseType: domain.ResponseYesNo, CriteriaWeight: 1.0, Trait: "x"},
			{ID: "core2", ResponseType: domain.ResponseYesNo, CriteriaWeight: 1.0, Trait: "x"},
			{ID: "minor", ResponseType: domain.ResponseYesNo, CriteriaWeight: 0.5, Trait: "y"},
		},
	})

	score := ScoreModule(module, yes("core1", "core2", "minor"))

	assert.Equal(t, 1.0, score.PercentageScore)
	assert.Equal(t, 2, score.CoreCriteriaCount, "weight below 1.0 is not a core criterion")
	assert.False(t, score.CriteriaMet)
}

func TestScoreModule_ZeroWeightModule(t *testing.T) {
	module := mustModule(t, domain.Module{
		Questions: []domain.Question{{ID: "a", ResponseType: domain.ResponseText, CriteriaWeight: 0, Trait: "x"}},
	})

	score := ScoreModule(module, domain.Responses{"a": {Value: "text"}})

	require.Equal(t, 0.0, score.MaxPossibleScore)
	assert.Equal(t, 0.0, score.PercentageScore)
	assert.True(t, score.CriteriaMet, "threshold 0 and minimum 0 are trivially met")
}
