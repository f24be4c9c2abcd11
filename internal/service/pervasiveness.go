package service

import (
	"strings"

	"github.com/scid-pd-engine/internal/domain"
)

// AssessPervasiveness estimates how many life contexts the module's patterns reach, using
// only questions flagged for pervasiveness checks. It is undefined when no pattern is
// present, and moderate when patterns exist but no question carries the flag.
func AssessPervasiveness(module *domain.Module, responses domain.Responses, patterns []domain.Pattern) domain.Pervasiveness {
	if len(patterns) == 0 {
		return domain.PervasivenessUndefined
	}

	relevant, hits := 0, 0
	for i := range module.Questions {
		q := &module.Questions[i]
		if !q.PervasivenessCheck {
			continue
		}
		relevant++

		r, ok := responses[q.ID]
		if !ok {
			continue
		}
		text := strings.Join(examplesOf(r.Examples), " ")
		if containsAnySubstring(text, pervasivenessIndicators) || isHighScale(q, r.Value) {
			hits++
		}
	}

	if relevant == 0 {
		return domain.PervasivenessModerate
	}

	ratio := float64(hits) / float64(relevant)
	switch {
	case ratio >= 0.75:
		return domain.PervasivenessPervasive
	case ratio >= 0.5:
		return domain.PervasivenessExtensive
	case ratio >= 0.25:
		return domain.PervasivenessModerate
	default:
		return domain.PervasivenessLimited
	}
}
