package domain

import (
	"time"
)

// Catalog Models

// Question is a single interview item of a module.
type Question struct {
	ID                 string       `json:"id" yaml:"id"`
	Text               string       `json:"text" yaml:"text"`
	SimpleText         string       `json:"simple_text,omitempty" yaml:"simple_text,omitempty"`
	ResponseType       ResponseType `json:"response_type" yaml:"response_type"`
	Options            []string     `json:"options,omitempty" yaml:"options,omitempty"`
	ScaleMin           float64      `json:"scale_min" yaml:"scale_min"`
	ScaleMax           float64      `json:"scale_max" yaml:"scale_max"`
	CriteriaWeight     float64      `json:"criteria_weight" yaml:"criteria_weight"`
	Trait              TraitID      `json:"trait" yaml:"trait"`
	Dimension          Dimension    `json:"dimension" yaml:"dimension"`
	RequiresExamples   bool         `json:"requires_examples" yaml:"requires_examples"`
	OnsetRelevant      bool         `json:"onset_relevant" yaml:"onset_relevant"`
	PervasivenessCheck bool         `json:"pervasiveness_check" yaml:"pervasiveness_check"`
	Required           bool         `json:"required" yaml:"required"`
	HelpText           string       `json:"help_text,omitempty" yaml:"help_text,omitempty"`
}

// IsCore reports whether the question counts toward the minimum criteria rule.
func (q *Question) IsCore() bool {
	return q.CriteriaWeight >= 1.0
}

// HasOption reports whether option is one of the declared choices.
func (q *Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Module is the question set and scoring rules for one personality disorder.
// Modules are built through NewModule and must be treated as read-only afterwards;
// a single Module is shared by every concurrent administration.
type Module struct {
	ID                    string               `json:"id"`
	Name                  string               `json:"name"`
	Description           string               `json:"description,omitempty"`
	Cluster               Cluster              `json:"cluster"`
	Questions             []Question           `json:"questions"`
	DiagnosticThreshold   float64              `json:"diagnostic_threshold"`
	DimensionalThreshold  float64              `json:"dimensional_threshold"`
	MinimumCriteriaCount  int                  `json:"minimum_criteria_count"`
	SeverityThresholds    map[Severity]float64 `json:"severity_thresholds,omitempty"`
	DifferentialDiagnoses []string             `json:"differential_diagnoses,omitempty"`
	RelatedConditions     map[TraitID][]string `json:"related_conditions,omitempty"`
	TraitNames            map[TraitID]string   `json:"trait_names,omitempty"`
	EstimatedMinutes      int                  `json:"estimated_minutes,omitempty"`
	Version               string               `json:"version,omitempty"`

	byID map[string]int
}

// ModuleSummary is the listing view of a module.
type ModuleSummary struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Description          string  `json:"description,omitempty"`
	Cluster              Cluster `json:"cluster"`
	TotalQuestions       int     `json:"total_questions"`
	CoreQuestions        int     `json:"core_questions"`
	MinimumCriteriaCount int     `json:"minimum_criteria_count"`
	EstimatedMinutes     int     `json:"estimated_minutes,omitempty"`
}

// Input Models

// Response is a single submitted answer. Value carries the loosely typed answer as decoded
// from JSON: a bool, a number, a string or a list of strings depending on the question.
type Response struct {
	QuestionID string   `json:"question_id,omitempty"`
	Value      any      `json:"value"`
	OnsetAge   *int     `json:"onset_age,omitempty"`
	Examples   []string `json:"examples,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// Responses maps question ids to the answers given for them.
type Responses map[string]Response

// Result Models

// Pattern is a trait-level summary extracted from the questions measuring one trait.
type Pattern struct {
	Trait      TraitID         `json:"trait"`
	Name       string          `json:"name"`
	Dimension  Dimension       `json:"dimension,omitempty"`
	Present    bool            `json:"present"`
	Severity   PatternSeverity `json:"severity"`
	Onset      OnsetBand       `json:"onset"`
	OnsetAge   *int            `json:"onset_age,omitempty"`
	Examples   []string        `json:"examples,omitempty"`
	Confidence float64         `json:"confidence"`
}

// ModuleResult is the outcome of one completed module administration.
type ModuleResult struct {
	ModuleID                   string             `json:"module_id"`
	ModuleName                 string             `json:"module_name"`
	Cluster                    Cluster            `json:"cluster"`
	TotalScore                 float64            `json:"total_score"`
	MaxPossibleScore           float64            `json:"max_possible_score"`
	PercentageScore            float64            `json:"percentage_score"`
	DimensionalScore           float64            `json:"dimensional_score"`
	CriteriaMet                bool               `json:"criteria_met"`
	CoreCriteriaCount          int                `json:"core_criteria_count"`
	Severity                   Severity           `json:"severity,omitempty"`
	Patterns                   []Pattern          `json:"patterns"`
	Onset                      OnsetBand          `json:"onset"`
	Pervasiveness              Pervasiveness      `json:"pervasiveness,omitempty"`
	DifferentialConsiderations []string           `json:"differential_considerations"`
	RawScores                  map[string]float64 `json:"raw_scores"`
	Responses                  Responses          `json:"responses,omitempty"`
	AdministrationMinutes      int                `json:"administration_minutes"`
	CompletedAt                time.Time          `json:"completed_at"`
}

// Profile aggregates module results across one assessment session.
type Profile struct {
	ID                  string             `json:"id"`
	StartedAt           time.Time          `json:"started_at"`
	CompletedAt         *time.Time         `json:"completed_at,omitempty"`
	Completed           bool               `json:"completed"`
	ModuleResults       []ModuleResult     `json:"module_results"`
	ClusterSummary      map[Cluster]int    `json:"cluster_summary"`
	DimensionalScores   map[string]float64 `json:"dimensional_scores"`
	PrimaryDiagnoses    []string           `json:"primary_diagnoses"`
	OverallSeverity     Severity           `json:"overall_severity,omitempty"`
	Recommendations     []string           `json:"recommendations"`
	TotalAssessmentMins int                `json:"total_assessment_minutes"`
	ClinicianNotes      string             `json:"clinician_notes,omitempty"`
}

// NewProfile returns an empty profile ready to receive module results.
func NewProfile(id string, startedAt time.Time) *Profile {
	return &Profile{
		ID:                id,
		StartedAt:         startedAt,
		ModuleResults:     []ModuleResult{},
		ClusterSummary:    map[Cluster]int{},
		DimensionalScores: map[string]float64{},
		PrimaryDiagnoses:  []string{},
		Recommendations:   []string{},
	}
}

// PositiveDiagnoses returns the results that met diagnostic criteria, in administration order.
func (p *Profile) PositiveDiagnoses() []ModuleResult {
	positive := make([]ModuleResult, 0, len(p.ModuleResults))
	for _, r := range p.ModuleResults {
		if r.CriteriaMet {
			positive = append(positive, r)
		}
	}
	return positive
}

// ClusterDistribution maps every cluster to the names of its positive modules.
func (p *Profile) ClusterDistribution() map[Cluster][]string {
	dist := make(map[Cluster][]string, 3)
	for _, c := range AllClusters() {
		dist[c] = []string{}
	}
	for _, r := range p.PositiveDiagnoses() {
		dist[r.Cluster] = append(dist[r.Cluster], r.ModuleName)
	}
	return dist
}

// Clone returns a copy of the profile whose summary maps and slices are independent of p.
// Module results are immutable once appended and are shared.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	out.ModuleResults = append([]ModuleResult{}, p.ModuleResults...)
	out.PrimaryDiagnoses = append([]string{}, p.PrimaryDiagnoses...)
	out.Recommendations = append([]string{}, p.Recommendations...)
	out.ClusterSummary = make(map[Cluster]int, len(p.ClusterSummary))
	for k, v := range p.ClusterSummary {
		out.ClusterSummary[k] = v
	}
	out.DimensionalScores = make(map[string]float64, len(p.DimensionalScores))
	for k, v := range p.DimensionalScores {
		out.DimensionalScores[k] = v
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}
