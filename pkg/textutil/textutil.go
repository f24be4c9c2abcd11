// Package textutil holds the small string helpers shared by the scoring engine and the catalog:
// order-preserving deduplication, whole-word phrase matching and display-name formatting.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Dedupe trims every element, drops empty ones and removes duplicates while keeping the
// first occurrence of each value.
//
//	Dedupe([]string{" PTSD", "Bipolar Disorder", "PTSD", ""})
//	// []string{"PTSD", "Bipolar Disorder"}
func Dedupe(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// Normalize lowercases s and collapses every run of non-alphanumeric characters into a
// single space, so "Not-at-all!" becomes "not at all".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// ContainsPhrase reports whether phrase occurs in text as a sequence of whole words,
// ignoring case and punctuation. "no" matches "No, never" but not "know".
func ContainsPhrase(text, phrase string) bool {
	t := " " + Normalize(text) + " "
	p := Normalize(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(t, " "+p+" ")
}

// ContainsAnyPhrase reports whether any of phrases occurs in text as whole words.
func ContainsAnyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if ContainsPhrase(text, p) {
			return true
		}
	}
	return false
}

// DisplayName turns an identifier such as "fear_of_abandonment" into "Fear Of Abandonment".
func DisplayName(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
