package service

import (
	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/pkg/textutil"
)

// DifferentialConsiderations lists the module's declared differentials followed by the
// conditions related to each present pattern's trait, without duplicates, in first-seen order.
func DifferentialConsiderations(module *domain.Module, patterns []domain.Pattern) []string {
	candidates := append([]string(nil), module.DifferentialDiagnoses...)
	for _, p := range patterns {
		if !p.Present {
			continue
		}
		candidates = append(candidates, module.RelatedConditionsFor(p.Trait)...)
	}
	return textutil.Dedupe(candidates)
}
