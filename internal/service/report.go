package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scid-pd-engine/internal/domain"
)

const (
	reportRule    = "============================================================"
	sectionRule   = "--------------------"
	reportTimeFmt = "2006-01-02 15:04:05"
)

// ReportGenerator renders profiles as plain-text clinical reports.
type ReportGenerator struct{}

// NewReportGenerator creates a new report generator
func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

// Render projects a profile into a labelled, human-readable report. The report is derived
// entirely from the profile.
func (g *ReportGenerator) Render(profile *domain.Profile) string {
	if profile == nil || len(profile.ModuleResults) == 0 {
		return "No personality assessment data available."
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}
	section := func(title string) {
		line("%s:", title)
		line(sectionRule)
	}

	positive := profile.PositiveDiagnoses()

	line(reportRule)
	line("SCID-PD PERSONALITY ASSESSMENT REPORT")
	line(reportRule)
	line("")
	line("Assessment ID: %s", profile.ID)
	line("Assessment Date: %s", profile.StartedAt.Format(reportTimeFmt))
	line("Total Assessment Time: %d minutes", profile.TotalAssessmentMins)
	line("Overall Severity: %s", severityLabel(profile.OverallSeverity))
	line("")

	section("SUMMARY")
	line("Total Personality Disorders Assessed: %d", len(profile.ModuleResults))
	line("Personality Disorders Meeting Criteria: %d", len(positive))
	line("")

	if len(positive) > 0 {
		section("PRIMARY DIAGNOSES")
		sort.SliceStable(positive, func(i, j int) bool {
			return positive[i].PercentageScore > positive[j].PercentageScore
		})
		for _, r := range positive {
			severity := ""
			if r.Severity.IsValid() {
				severity = fmt.Sprintf(" (%s)", r.Severity)
			}
			dimensional := ""
			if r.DimensionalScore > 0 {
				dimensional = fmt.Sprintf(" [Dimensional: %.1f/100]", r.DimensionalScore)
			}
			line("• %s: %.1f%%%s%s", r.ModuleName, r.PercentageScore*100, severity, dimensional)
			line("  Cluster: %s", r.Cluster.DisplayName())
			line("  Patterns Present: %d", len(r.Patterns))
			if len(r.DifferentialConsiderations) > 0 {
				line("  Rule Out: %s", strings.Join(r.DifferentialConsiderations, ", "))
			}
			line("")
		}
	}

	section("CLUSTER ANALYSIS")
	distribution := profile.ClusterDistribution()
	for _, c := range domain.AllClusters() {
		if names := distribution[c]; len(names) > 0 {
			line("%s: %s", c.DisplayName(), strings.Join(names, ", "))
		} else {
			line("%s: No criteria met", c.DisplayName())
		}
	}
	line("")

	if len(profile.DimensionalScores) > 0 {
		section("DIMENSIONAL SCORES (0-100)")
		for _, name := range sortedByScore(profile.DimensionalScores) {
			score := profile.DimensionalScores[name]
			line("%s: %.1f (%s)", name, score, dimensionalLabel(score))
		}
		line("")
	}

	if len(profile.Recommendations) > 0 {
		section("CLINICAL RECOMMENDATIONS")
		for i, rec := range profile.Recommendations {
			line("%d. %s", i+1, rec)
		}
		line("")
	}

	if strings.TrimSpace(profile.ClinicianNotes) != "" {
		section("CLINICIAN NOTES")
		line("%s", profile.ClinicianNotes)
		line("")
	}

	line(reportRule)
	line("END OF PERSONALITY ASSESSMENT REPORT")
	b.WriteString(reportRule)

	return b.String()
}

func severityLabel(s domain.Severity) string {
	if !s.IsValid() {
		return "Not applicable"
	}
	return string(s)
}

func dimensionalLabel(score float64) string {
	switch {
	case score >= 70:
		return "High"
	case score >= 50:
		return "Moderate"
	default:
		return "Low"
	}
}

// sortedByScore orders names by descending score, then by name.
func sortedByScore(scores map[string]float64) []string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if scores[names[i]] != scores[names[j]] {
			return scores[names[i]] > scores[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
