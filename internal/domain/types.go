// Package domain contains the core entities of the SCID-PD personality assessment engine:
// interview modules and their questions, submitted responses, extracted trait patterns,
// per-module results and the cross-module personality profile.
//
// The enumerations below are closed sets. Every one of them exposes IsValid so that data
// arriving from the catalog or from callers can be rejected before it reaches scoring.
package domain

// Cluster represents the DSM-5 personality disorder cluster a module belongs to.
type Cluster string

const (
	ClusterA Cluster = "cluster_a" // odd, eccentric
	ClusterB Cluster = "cluster_b" // dramatic, emotional, erratic
	ClusterC Cluster = "cluster_c" // anxious, fearful
)

// AllClusters returns the clusters in report order.
func AllClusters() []Cluster {
	return []Cluster{ClusterA, ClusterB, ClusterC}
}

// IsValid reports whether c is one of the known clusters.
func (c Cluster) IsValid() bool {
	switch c {
	case ClusterA, ClusterB, ClusterC:
		return true
	default:
		return false
	}
}

func (c Cluster) String() string {
	return string(c)
}

// DisplayName returns the label used in reports, e.g. "Cluster B".
func (c Cluster) DisplayName() string {
	switch c {
	case ClusterA:
		return "Cluster A"
	case ClusterB:
		return "Cluster B"
	case ClusterC:
		return "Cluster C"
	default:
		return "Unknown Cluster"
	}
}

// ResponseType is the declared shape of the answer a question accepts.
type ResponseType string

const (
	ResponseYesNo        ResponseType = "yes_no"
	ResponseScale        ResponseType = "scale"
	ResponseSingleChoice ResponseType = "single_choice"
	ResponseMultiChoice  ResponseType = "multiple_choice"
	ResponseFrequency    ResponseType = "frequency"
	ResponseText         ResponseType = "text"
	ResponseOnsetAge     ResponseType = "onset_age"
	ResponseDate         ResponseType = "date"
)

// IsValid reports whether rt is a supported response type.
func (rt ResponseType) IsValid() bool {
	switch rt {
	case ResponseYesNo, ResponseScale, ResponseSingleChoice, ResponseMultiChoice,
		ResponseFrequency, ResponseText, ResponseOnsetAge, ResponseDate:
		return true
	default:
		return false
	}
}

// IsChoice reports whether answers are drawn from the question's option set.
func (rt ResponseType) IsChoice() bool {
	return rt == ResponseSingleChoice || rt == ResponseMultiChoice
}

func (rt ResponseType) String() string {
	return string(rt)
}

// Dimension is the broad personality dimension a question probes.
type Dimension string

const (
	DimensionInterpersonal Dimension = "interpersonal"
	DimensionAffective     Dimension = "affective"
	DimensionCognitive     Dimension = "cognitive"
	DimensionBehavioral    Dimension = "behavioral"
	DimensionIdentity      Dimension = "identity"
)

// IsValid reports whether d is a known dimension.
func (d Dimension) IsValid() bool {
	switch d {
	case DimensionInterpersonal, DimensionAffective, DimensionCognitive, DimensionBehavioral, DimensionIdentity:
		return true
	default:
		return false
	}
}

func (d Dimension) String() string {
	return string(d)
}

// Severity is the categorical severity of a module result or of a whole profile.
// The zero value means "no diagnosis" and is distinct from SeverityMild.
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityExtreme  Severity = "extreme"
)

// SeverityOrder lists the severities from most to least severe. Module-specific
// thresholds are tested in this order.
func SeverityOrder() []Severity {
	return []Severity{SeverityExtreme, SeveritySevere, SeverityModerate, SeverityMild}
}

// IsValid reports whether s is a concrete severity. SeverityNone is not valid.
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// Rank orders severities: mild < moderate < severe < extreme. SeverityNone ranks 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityMild:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	case SeverityExtreme:
		return 4
	default:
		return 0
	}
}

func (s Severity) String() string {
	if s == SeverityNone {
		return "none"
	}
	return string(s)
}

// LogFields returns structured logging fields for audit trails.
func (s Severity) LogFields() map[string]any {
	return map[string]any{
		"severity":      s.String(),
		"severity_rank": s.Rank(),
		"is_diagnostic": s.IsValid(),
	}
}

// PatternSeverity is the strength band of a single extracted trait pattern.
type PatternSeverity string

const (
	PatternLow      PatternSeverity = "low"
	PatternModerate PatternSeverity = "moderate"
	PatternHigh     PatternSeverity = "high"
)

// IsValid reports whether ps is a known pattern band.
func (ps PatternSeverity) IsValid() bool {
	switch ps {
	case PatternLow, PatternModerate, PatternHigh:
		return true
	default:
		return false
	}
}

// OnsetBand is a coarse life-stage classification of when a pattern began.
type OnsetBand string

const (
	OnsetChildhood      OnsetBand = "childhood"       // before 12
	OnsetAdolescence    OnsetBand = "adolescence"     // 12 to 17
	OnsetEarlyAdulthood OnsetBand = "early_adulthood" // 18 to 24
	OnsetUnknown        OnsetBand = "unknown"
)

// IsValid reports whether ob is a known onset band.
func (ob OnsetBand) IsValid() bool {
	switch ob {
	case OnsetChildhood, OnsetAdolescence, OnsetEarlyAdulthood, OnsetUnknown:
		return true
	default:
		return false
	}
}

// Pervasiveness describes how many life contexts a pattern shows up in.
// The zero value means the assessment is undefined (no patterns present).
type Pervasiveness string

const (
	PervasivenessUndefined Pervasiveness = ""
	PervasivenessLimited   Pervasiveness = "limited"
	PervasivenessModerate  Pervasiveness = "moderate"
	PervasivenessExtensive Pervasiveness = "extensive"
	PervasivenessPervasive Pervasiveness = "pervasive"
)

// IsValid reports whether p is a concrete pervasiveness band.
func (p Pervasiveness) IsValid() bool {
	switch p {
	case PervasivenessLimited, PervasivenessModerate, PervasivenessExtensive, PervasivenessPervasive:
		return true
	default:
		return false
	}
}

// TraitID identifies the trait a question measures. Questions sharing a TraitID are
// grouped together during pattern extraction.
type TraitID string

func (t TraitID) String() string {
	return string(t)
}
