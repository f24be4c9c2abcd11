package service

import (
	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/pkg/textutil"
)

const (
	patternPresenceThreshold = 0.3
	patternHighThreshold     = 0.8
	patternModerateThreshold = 0.6
	maxPatternExamples       = 5
)

type traitGroup struct {
	trait     domain.TraitID
	questions []*domain.Question
}

// groupByTrait groups module questions by trait in order of first appearance.
func groupByTrait(module *domain.Module) []traitGroup {
	index := make(map[domain.TraitID]int)
	var groups []traitGroup
	for i := range module.Questions {
		q := &module.Questions[i]
		pos, ok := index[q.Trait]
		if !ok {
			pos = len(groups)
			index[q.Trait] = pos
			groups = append(groups, traitGroup{trait: q.Trait})
		}
		groups[pos].questions = append(groups[pos].questions, q)
	}
	return groups
}

// ExtractPatterns derives one pattern per trait group whose weighted strength over its
// answered questions exceeds 0.3. Only present patterns are returned, in the order their
// traits first appear in the module.
func ExtractPatterns(module *domain.Module, responses domain.Responses, rawScores map[string]float64) []domain.Pattern {
	patterns := make([]domain.Pattern, 0)

	for _, g := range groupByTrait(module) {
		var weighted, weights float64
		var examples []string
		var ages []int

		for _, q := range g.questions {
			r, ok := responses[q.ID]
			if !ok {
				continue
			}
			weighted += rawScores[q.ID] * q.CriteriaWeight
			weights += q.CriteriaWeight
			examples = append(examples, r.Examples...)
			if age, ok := onsetAgeOf(r); ok {
				ages = append(ages, age)
			}
		}

		if weights == 0 {
			continue
		}
		strength := weighted / weights
		if strength <= patternPresenceThreshold {
			continue
		}

		examples = textutil.Dedupe(examples)
		if len(examples) > maxPatternExamples {
			examples = examples[:maxPatternExamples]
		}

		name := module.TraitName(g.trait)
		if name == "" {
			name = textutil.DisplayName(g.trait.String())
		}

		p := domain.Pattern{
			Trait:      g.trait,
			Name:       name,
			Dimension:  dominantDimension(g.questions),
			Present:    true,
			Severity:   patternSeverity(strength),
			Onset:      domain.OnsetUnknown,
			Examples:   examples,
			Confidence: strength,
		}
		if mean, ok := meanAge(ages); ok {
			age := int(mean)
			p.OnsetAge = &age
			p.Onset = OnsetBandFor(mean)
		}

		patterns = append(patterns, p)
	}

	return patterns
}

func patternSeverity(strength float64) domain.PatternSeverity {
	switch {
	case strength >= patternHighThreshold:
		return domain.PatternHigh
	case strength >= patternModerateThreshold:
		return domain.PatternModerate
	default:
		return domain.PatternLow
	}
}

// dominantDimension returns the most frequent dimension in the group; the first one seen wins ties.
func dominantDimension(questions []*domain.Question) domain.Dimension {
	counts := make(map[domain.Dimension]int)
	var best domain.Dimension
	for _, q := range questions {
		if q.Dimension == "" {
			continue
		}
		counts[q.Dimension]++
		if best == "" || counts[q.Dimension] > counts[best] {
			best = q.Dimension
		}
	}
	return best
}

// onsetAgeOf returns the onset_age supplied with a response. The answer to an onset-age
// question is scored like any other answer and is not read as onset data.
func onsetAgeOf(r domain.Response) (int, bool) {
	if r.OnsetAge == nil {
		return 0, false
	}
	return *r.OnsetAge, true
}

func meanAge(ages []int) (float64, bool) {
	if len(ages) == 0 {
		return 0, false
	}
	sum := 0
	for _, a := range ages {
		sum += a
	}
	return float64(sum) / float64(len(ages)), true
}

// OnsetBandFor bands a (mean) onset age: < 12 childhood, < 18 adolescence, < 25 early
// adulthood, otherwise unknown.
func OnsetBandFor(age float64) domain.OnsetBand {
	switch {
	case age < 12:
		return domain.OnsetChildhood
	case age < 18:
		return domain.OnsetAdolescence
	case age < 25:
		return domain.OnsetEarlyAdulthood
	default:
		return domain.OnsetUnknown
	}
}

// AssessOnset bands the mean of every onset age supplied anywhere in the response set.
func AssessOnset(module *domain.Module, responses domain.Responses) domain.OnsetBand {
	var ages []int
	for i := range module.Questions {
		q := &module.Questions[i]
		r, ok := responses[q.ID]
		if !ok {
			continue
		}
		if age, ok := onsetAgeOf(r); ok {
			ages = append(ages, age)
		}
	}

	mean, ok := meanAge(ages)
	if !ok {
		return domain.OnsetUnknown
	}
	return OnsetBandFor(mean)
}
