package service

import (
	"math"
	"strings"

	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/pkg/textutil"
)

const (
	examplesBonus     = 1.1
	noExamplesPenalty = 0.8
	earlyOnsetBonus   = 1.05
	lateOnsetPenalty  = 0.9

	earlyOnsetMaxAge = 18
	lateOnsetMinAge  = 25

	// criterionMetScore is the per-question score at which a core question counts as met.
	criterionMetScore = 0.5
)

// ScoreResponse converts one answer into a normalized contribution in [0,1]. It is a pure
// function of its inputs. Values that cannot be interpreted score 0.
func ScoreResponse(q *domain.Question, r domain.Response) float64 {
	base := baseScore(q, r.Value)
	if base <= 0 {
		return 0
	}

	score := base
	hasExamples := len(examplesOf(r.Examples)) > 0
	if q.RequiresExamples {
		if hasExamples {
			score = math.Min(1.0, score*examplesBonus)
		} else if base > 0.5 {
			score *= noExamplesPenalty
		}
	}

	// The onset adjustment is taken from the base score and overrides the examples one.
	if q.OnsetRelevant && r.OnsetAge != nil {
		switch {
		case *r.OnsetAge <= earlyOnsetMaxAge:
			score = math.Min(1.0, base*earlyOnsetBonus)
		case *r.OnsetAge > lateOnsetMinAge:
			score = base * lateOnsetPenalty
		}
	}

	return score
}

func baseScore(q *domain.Question, v any) float64 {
	if v == nil {
		return 0
	}

	switch q.ResponseType {
	case domain.ResponseYesNo:
		if isYes(v) {
			return 1.0
		}
		return 0

	case domain.ResponseScale:
		f, ok := toFloat(v)
		if !ok || q.ScaleMax <= q.ScaleMin {
			return 0
		}
		return clamp01((f - q.ScaleMin) / (q.ScaleMax - q.ScaleMin))

	case domain.ResponseFrequency:
		s, ok := v.(string)
		if !ok {
			return 0
		}
		return frequencyScores[strings.ToLower(strings.TrimSpace(s))]

	case domain.ResponseSingleChoice:
		s, ok := v.(string)
		if !ok || isNegativeOption(s) || !q.HasOption(s) {
			return 0
		}
		return 1.0

	case domain.ResponseMultiChoice:
		return multiChoiceScore(q, v)

	case domain.ResponseText, domain.ResponseDate, domain.ResponseOnsetAge:
		if isBlank(v) {
			return 0
		}
		return 1.0
	}

	return 0
}

// multiChoiceScore is the number of symptomatic selections over the number of non-"none"
// options the question offers, capped at 1.
func multiChoiceScore(q *domain.Question, v any) float64 {
	selections, ok := toSelections(v)
	if !ok || len(q.Options) == 0 {
		return 0
	}

	symptomatic := 0
	for _, s := range textutil.Dedupe(selections) {
		if q.HasOption(s) && !isNegativeOption(s) {
			symptomatic++
		}
	}
	if symptomatic == 0 {
		return 0
	}

	denominator := len(q.Options) - 1
	if denominator < 1 {
		denominator = 1
	}
	return math.Min(1.0, float64(symptomatic)/float64(denominator))
}

func isNegativeOption(option string) bool {
	return textutil.ContainsAnyPhrase(option, negativeKeywords)
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

// ModuleScore is the weighted aggregation of one module's responses.
type ModuleScore struct {
	TotalScore        float64
	MaxPossibleScore  float64
	PercentageScore   float64
	CoreCriteriaCount int
	CriteriaMet       bool
	RawScores         map[string]float64
}

// ScoreModule sums weighted response scores and evaluates the diagnostic criteria. Unanswered
// questions contribute 0 but still count toward the maximum possible score.
func ScoreModule(module *domain.Module, responses domain.Responses) ModuleScore {
	result := ModuleScore{RawScores: make(map[string]float64, len(module.Questions))}

	for i := range module.Questions {
		q := &module.Questions[i]
		result.MaxPossibleScore += q.CriteriaWeight

		r, answered := responses[q.ID]
		if !answered {
			result.RawScores[q.ID] = 0
			continue
		}

		score := ScoreResponse(q, r)
		result.RawScores[q.ID] = score
		result.TotalScore += score * q.CriteriaWeight

		if q.IsCore() && score >= criterionMetScore {
			result.CoreCriteriaCount++
		}
	}

	if result.MaxPossibleScore > 0 {
		result.PercentageScore = result.TotalScore / result.MaxPossibleScore
	}

	result.CriteriaMet = result.PercentageScore >= module.DiagnosticThreshold &&
		result.CoreCriteriaCount >= module.MinimumCriteriaCount

	return result
}
