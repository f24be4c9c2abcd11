package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/scid-pd-engine/internal/domain"
)

// AdministratorState is the lifecycle state of one assessment session.
type AdministratorState string

const (
	StateIdle               AdministratorState = "idle"
	StateAssessmentActive   AdministratorState = "assessment_active"
	StateAssessmentComplete AdministratorState = "assessment_complete"
)

func (s AdministratorState) String() string {
	return string(s)
}

const (
	minAdministrationMinutes   = 5
	minutesPerAnsweredQuestion = 0.8
)

// Administrator drives module administrations for one assessment and owns its profile.
// It performs no locking; callers sharing an Administrator must serialize access.
type Administrator struct {
	logger    *logrus.Logger
	validator *ResponseValidator
	metrics   *Metrics
	now       func() time.Time
	newID     func() string

	state   AdministratorState
	profile *domain.Profile
}

// AdministratorOption customizes an Administrator.
type AdministratorOption func(*Administrator)

// WithMetrics records administrations in m.
func WithMetrics(m *Metrics) AdministratorOption {
	return func(a *Administrator) { a.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AdministratorOption {
	return func(a *Administrator) { a.now = now }
}

// WithIDGenerator replaces the UUID generator used for profile ids.
func WithIDGenerator(newID func() string) AdministratorOption {
	return func(a *Administrator) { a.newID = newID }
}

// NewAdministrator creates an idle administrator.
func NewAdministrator(logger *logrus.Logger, opts ...AdministratorOption) *Administrator {
	a := &Administrator{
		logger:    logger,
		validator: NewResponseValidator(logger),
		now:       time.Now,
		newID:     uuid.NewString,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns the current lifecycle state.
func (a *Administrator) State() AdministratorState {
	return a.state
}

// Profile returns a snapshot of the current profile, or nil before the first Start.
func (a *Administrator) Profile() *domain.Profile {
	return a.profile.Clone()
}

// Start opens a new assessment with an empty profile. It is valid from the idle and complete
// states.
func (a *Administrator) Start() (*domain.Profile, error) {
	if a.state == StateAssessmentActive {
		return nil, &domain.StateError{Operation: "start", State: a.state.String()}
	}

	a.profile = domain.NewProfile(a.newID(), a.now().UTC())
	a.state = StateAssessmentActive

	a.logger.WithField("profile_id", a.profile.ID).Info("Started personality assessment")

	return a.profile.Clone(), nil
}

// AdministerModule validates and scores one module's responses and appends the result to the
// active profile. On validation failure nothing is scored and the profile is left untouched.
func (a *Administrator) AdministerModule(module *domain.Module, responses domain.Responses) (*domain.ModuleResult, error) {
	if a.state != StateAssessmentActive {
		return nil, &domain.StateError{Operation: "administer_module", State: a.state.String()}
	}

	if problems := a.validator.Validate(module, responses); len(problems) > 0 {
		a.metrics.ObserveValidationFailure(module.ID)
		return nil, &domain.ValidationFailedError{ModuleID: module.ID, Errors: problems}
	}

	start := time.Now()
	result := EvaluateModule(module, responses, a.now().UTC())

	if err := AppendResult(a.profile, result); err != nil {
		return nil, err
	}
	a.metrics.ObserveAdministration(&result, start)

	a.logger.WithFields(logrus.Fields{
		"profile_id":        a.profile.ID,
		"module_id":         result.ModuleID,
		"percentage_score":  result.PercentageScore,
		"dimensional_score": result.DimensionalScore,
		"criteria_met":      result.CriteriaMet,
		"severity":          result.Severity.String(),
		"patterns":          len(result.Patterns),
	}).Info("Administered module")

	return &result, nil
}

// Complete finalizes the active profile and returns it. At least one module must have been
// administered.
func (a *Administrator) Complete() (*domain.Profile, error) {
	if a.state != StateAssessmentActive {
		return nil, &domain.StateError{Operation: "complete", State: a.state.String()}
	}
	if len(a.profile.ModuleResults) == 0 {
		return nil, &domain.StateError{Operation: "complete", State: "no modules administered"}
	}

	FinalizeProfile(a.profile, a.now().UTC())
	a.state = StateAssessmentComplete
	a.metrics.ObserveProfileCompleted(a.profile)

	a.logger.WithFields(logrus.Fields{
		"profile_id":        a.profile.ID,
		"modules":           len(a.profile.ModuleResults),
		"primary_diagnoses": a.profile.PrimaryDiagnoses,
		"overall_severity":  a.profile.OverallSeverity.String(),
	}).Info("Completed personality assessment")

	return a.profile.Clone(), nil
}

// EvaluateModule runs the full scoring pipeline for a validated response set and returns the
// module result. It does not validate and does not touch any profile.
func EvaluateModule(module *domain.Module, responses domain.Responses, completedAt time.Time) domain.ModuleResult {
	score := ScoreModule(module, responses)
	patterns := ExtractPatterns(module, responses, score.RawScores)

	minutes := int(float64(len(responses)) * minutesPerAnsweredQuestion)
	if minutes < minAdministrationMinutes {
		minutes = minAdministrationMinutes
	}

	kept := make(domain.Responses, len(responses))
	for id, r := range responses {
		if r.QuestionID == "" {
			r.QuestionID = id
		}
		kept[id] = r
	}

	return domain.ModuleResult{
		ModuleID:                   module.ID,
		ModuleName:                 module.Name,
		Cluster:                    module.Cluster,
		TotalScore:                 score.TotalScore,
		MaxPossibleScore:           score.MaxPossibleScore,
		PercentageScore:            score.PercentageScore,
		DimensionalScore:           DimensionalScore(module, responses, score.PercentageScore),
		CriteriaMet:                score.CriteriaMet,
		CoreCriteriaCount:          score.CoreCriteriaCount,
		Severity:                   ClassifySeverity(module, score.PercentageScore, patterns),
		Patterns:                   patterns,
		Onset:                      AssessOnset(module, responses),
		Pervasiveness:              AssessPervasiveness(module, responses, patterns),
		DifferentialConsiderations: DifferentialConsiderations(module, patterns),
		RawScores:                  score.RawScores,
		Responses:                  kept,
		AdministrationMinutes:      minutes,
		CompletedAt:                completedAt,
	}
}

// SetClinicianNotes attaches free-text notes to the active profile.
func (a *Administrator) SetClinicianNotes(notes string) error {
	if a.state != StateAssessmentActive {
		return &domain.StateError{Operation: "set clinician notes", State: a.state.String()}
	}
	a.profile.ClinicianNotes = notes
	return nil
}
