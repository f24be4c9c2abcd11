package service

import (
	"github.com/scid-pd-engine/internal/domain"
)

// ClassifySeverity maps a module's percentage score and extracted patterns to a categorical
// severity. It returns domain.SeverityNone when no pattern is present or the diagnostic
// threshold is not reached.
func ClassifySeverity(module *domain.Module, percentage float64, patterns []domain.Pattern) domain.Severity {
	if len(patterns) == 0 || percentage < module.DiagnosticThreshold {
		return domain.SeverityNone
	}

	if len(module.SeverityThresholds) > 0 {
		for _, sev := range domain.SeverityOrder() {
			threshold, ok := module.SeverityThresholds[sev]
			if ok && percentage >= threshold {
				return sev
			}
		}
	}

	high, moderate := 0, 0
	for _, p := range patterns {
		switch p.Severity {
		case domain.PatternHigh:
			high++
		case domain.PatternModerate:
			moderate++
		}
	}

	switch {
	case percentage >= 0.85 || high >= 3:
		return domain.SeveritySevere
	case percentage >= 0.7 || high >= 1 || moderate >= 3:
		return domain.SeverityModerate
	default:
		return domain.SeverityMild
	}
}
