package service

import (
	"math"
	"strings"

	"github.com/scid-pd-engine/internal/domain"
)

const (
	severitySignalWeight      = 15.0
	pervasivenessSignalWeight = 10.0
	pervasiveExampleCount     = 2
)

// DimensionalScore maps a module's percentage score plus severity and pervasiveness signals
// found in the answers to a continuous 0-100 estimate, rounded to one decimal.
//
// A question yields a severity signal when its examples mention a severity keyword or its
// scale answer reaches 80% of the declared max, and a pervasiveness signal when it carries at
// least two examples. Each question contributes at most one signal of each kind.
func DimensionalScore(module *domain.Module, responses domain.Responses, percentage float64) float64 {
	var severityHits, pervasivenessHits int

	for i := range module.Questions {
		q := &module.Questions[i]
		r, ok := responses[q.ID]
		if !ok {
			continue
		}

		examples := examplesOf(r.Examples)
		if len(examples) >= pervasiveExampleCount {
			pervasivenessHits++
		}
		if containsAnySubstring(strings.Join(examples, " "), severityKeywords) || isHighScale(q, r.Value) {
			severityHits++
		}
	}

	total := float64(len(module.Questions))
	if total == 0 {
		total = 1
	}

	score := percentage*100 +
		float64(severityHits)/total*severitySignalWeight +
		float64(pervasivenessHits)/total*pervasivenessSignalWeight

	score = math.Max(0, math.Min(100, score))
	return math.Round(score*10) / 10
}

// isHighScale reports whether a scale answer reaches 80% of the question's declared max.
func isHighScale(q *domain.Question, v any) bool {
	if q.ResponseType != domain.ResponseScale {
		return false
	}
	f, ok := toFloat(v)
	return ok && f >= q.ScaleMax*highScaleRatio
}
