package service

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// yesAnswers is the accepted-true vocabulary for yes/no questions.
var yesAnswers = map[string]struct{}{"yes": {}, "Yes": {}, "YES": {}}

// noAnswers completes the vocabulary accepted by validation.
var noAnswers = map[string]struct{}{"no": {}, "No": {}, "NO": {}}

// frequencyScores maps the ordered frequency vocabulary to fixed scores.
var frequencyScores = map[string]float64{
	"never":      0.0,
	"rarely":     0.2,
	"sometimes":  0.4,
	"often":      0.7,
	"very often": 0.9,
	"always":     1.0,
}

// negativeKeywords mark a choice option as non-symptomatic.
var negativeKeywords = []string{
	"no", "never", "not at all", "none", "normal",
	"no problems", "no issues", "not applicable",
}

// severityKeywords in supporting examples raise the dimensional score.
var severityKeywords = []string{"severe", "extreme", "major", "significant"}

// pervasivenessIndicators in supporting examples mark a cross-context pattern.
var pervasivenessIndicators = []string{
	"everywhere", "all situations", "always", "every relationship",
	"work and home", "with everyone", "in all contexts",
}

const (
	// highScaleRatio is the fraction of a scale's declared max at which a scale answer
	// counts as a severity or pervasiveness signal.
	highScaleRatio = 0.8

	minOnsetAge = 0
	maxOnsetAge = 100
)

// isYes reports whether v belongs to the accepted-true vocabulary.
func isYes(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		_, ok := yesAnswers[t]
		return ok
	}
	if f, ok := toFloat(v); ok {
		return f == 1
	}
	return false
}

// isYesNo reports whether v is in the accepted true/false vocabulary.
func isYesNo(v any) bool {
	switch t := v.(type) {
	case bool:
		return true
	case string:
		_, yes := yesAnswers[t]
		_, no := noAnswers[t]
		return yes || no
	}
	if f, ok := toFloat(v); ok {
		return f == 0 || f == 1
	}
	return false
}

// toFloat coerces a numeric JSON value or numeric string. Booleans are not numbers here.
func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if _, isBool := v.(bool); isBool {
		return 0, false
	}
	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toWholeNumber coerces v to an integer, rejecting fractional values.
func toWholeNumber(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// toSelections coerces a single string or a list of strings into a selection list.
func toSelections(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		return []string{t}, true
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	out, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, false
	}
	return out, true
}

// isBlank reports whether v carries no usable content.
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	}
	return strings.TrimSpace(cast.ToString(v)) == ""
}

// examplesOf returns the non-blank supporting examples of a response.
func examplesOf(examples []string) []string {
	out := make([]string, 0, len(examples))
	for _, e := range examples {
		if strings.TrimSpace(e) != "" {
			out = append(out, e)
		}
	}
	return out
}

// containsAnySubstring reports whether the lowercased text contains any keyword.
func containsAnySubstring(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
