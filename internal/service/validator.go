package service

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/scid-pd-engine/internal/domain"
)

// ResponseValidator checks submitted responses against a module's question contracts.
type ResponseValidator struct {
	logger *logrus.Logger
}

// NewResponseValidator creates a new response validator
func NewResponseValidator(logger *logrus.Logger) *ResponseValidator {
	return &ResponseValidator{logger: logger}
}

// Validate returns one human-readable message per violation, or nil when the response set is
// acceptable. Messages are ordered: missing required questions in module order, unknown
// question ids sorted, then value errors in module order.
func (v *ResponseValidator) Validate(module *domain.Module, responses domain.Responses) []string {
	var problems []string

	for i := range module.Questions {
		q := &module.Questions[i]
		if !q.Required {
			continue
		}
		if r, ok := responses[q.ID]; !ok || r.Value == nil {
			problems = append(problems, fmt.Sprintf("missing required question %s", q.ID))
		}
	}

	var unknown []string
	for id := range responses {
		if _, ok := module.Question(id); !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		problems = append(problems, fmt.Sprintf("unknown question id %s", id))
	}

	for i := range module.Questions {
		q := &module.Questions[i]
		r, ok := responses[q.ID]
		if !ok {
			continue
		}
		problems = append(problems, validateResponse(q, r)...)
	}

	if len(problems) > 0 {
		v.logger.WithFields(logrus.Fields{
			"module_id":   module.ID,
			"violations":  len(problems),
			"answered":    len(responses),
			"first_issue": problems[0],
		}).Warn("Response validation failed")
	}

	return problems
}

func validateResponse(q *domain.Question, r domain.Response) []string {
	var problems []string

	if r.QuestionID != "" && r.QuestionID != q.ID {
		problems = append(problems, fmt.Sprintf("question %s: response is labelled %s", q.ID, r.QuestionID))
	}
	if r.OnsetAge != nil && (*r.OnsetAge < minOnsetAge || *r.OnsetAge > maxOnsetAge) {
		problems = append(problems, fmt.Sprintf("question %s: onset age %d outside [%d,%d]", q.ID, *r.OnsetAge, minOnsetAge, maxOnsetAge))
	}
	if r.Value == nil {
		return problems
	}

	switch q.ResponseType {
	case domain.ResponseYesNo:
		if !isYesNo(r.Value) {
			problems = append(problems, fmt.Sprintf("question %s: %v is not a yes/no answer", q.ID, r.Value))
		}

	case domain.ResponseScale:
		f, ok := toFloat(r.Value)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("question %s: %v is not numeric", q.ID, r.Value))
		case f < q.ScaleMin || f > q.ScaleMax:
			problems = append(problems, fmt.Sprintf("question %s: %v outside scale [%g,%g]", q.ID, r.Value, q.ScaleMin, q.ScaleMax))
		}

	case domain.ResponseSingleChoice:
		s, ok := r.Value.(string)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("question %s: single choice must be a string", q.ID))
		case !q.HasOption(s):
			problems = append(problems, fmt.Sprintf("question %s: %q is not a valid option", q.ID, s))
		}

	case domain.ResponseMultiChoice:
		selections, ok := toSelections(r.Value)
		if !ok {
			problems = append(problems, fmt.Sprintf("question %s: multiple choice must be a string or list of strings", q.ID))
			break
		}
		for _, s := range selections {
			if !q.HasOption(s) {
				problems = append(problems, fmt.Sprintf("question %s: %q is not a valid option", q.ID, s))
			}
		}

	case domain.ResponseFrequency:
		if _, ok := r.Value.(string); !ok {
			problems = append(problems, fmt.Sprintf("question %s: frequency must be a string", q.ID))
		}

	case domain.ResponseOnsetAge:
		age, ok := toWholeNumber(r.Value)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("question %s: onset age %v is not an integer", q.ID, r.Value))
		case age < minOnsetAge || age > maxOnsetAge:
			problems = append(problems, fmt.Sprintf("question %s: onset age %d outside [%d,%d]", q.ID, age, minOnsetAge, maxOnsetAge))
		}
	}

	return problems
}
