package domain

// NewModule validates a module definition and returns an independent, indexed copy of it.
// The returned module shares no slices or maps with m.
func NewModule(m Module) (*Module, error) {
	if m.ID == "" {
		return nil, newModuleError(m.ID, "id", "must not be empty")
	}
	if m.Name == "" {
		return nil, newModuleError(m.ID, "name", "must not be empty")
	}
	if !m.Cluster.IsValid() {
		return nil, newModuleError(m.ID, "cluster", "unknown cluster %q", m.Cluster)
	}
	if len(m.Questions) == 0 {
		return nil, newModuleError(m.ID, "questions", "module has no questions")
	}
	if m.DiagnosticThreshold < 0 || m.DiagnosticThreshold > 1 {
		return nil, newModuleError(m.ID, "diagnostic_threshold", "%.2f outside [0,1]", m.DiagnosticThreshold)
	}
	if m.DimensionalThreshold < 0 || m.DimensionalThreshold > 100 {
		return nil, newModuleError(m.ID, "dimensional_threshold", "%.2f outside [0,100]", m.DimensionalThreshold)
	}
	if m.MinimumCriteriaCount < 0 {
		return nil, newModuleError(m.ID, "minimum_criteria_count", "must not be negative")
	}
	for sev, threshold := range m.SeverityThresholds {
		if !sev.IsValid() {
			return nil, newModuleError(m.ID, "severity_thresholds", "unknown severity %q", sev)
		}
		if threshold < 0 || threshold > 1 {
			return nil, newModuleError(m.ID, "severity_thresholds", "%s threshold %.2f outside [0,1]", sev, threshold)
		}
	}

	out := m
	out.Questions = make([]Question, len(m.Questions))
	out.byID = make(map[string]int, len(m.Questions))
	for i, q := range m.Questions {
		if err := validateQuestion(m.ID, &q); err != nil {
			return nil, err
		}
		if _, dup := out.byID[q.ID]; dup {
			return nil, newModuleError(m.ID, "questions", "duplicate question id %q", q.ID)
		}
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
		out.byID[q.ID] = i
	}

	out.DifferentialDiagnoses = append([]string(nil), m.DifferentialDiagnoses...)
	if m.SeverityThresholds != nil {
		out.SeverityThresholds = make(map[Severity]float64, len(m.SeverityThresholds))
		for k, v := range m.SeverityThresholds {
			out.SeverityThresholds[k] = v
		}
	}
	if m.RelatedConditions != nil {
		out.RelatedConditions = make(map[TraitID][]string, len(m.RelatedConditions))
		for k, v := range m.RelatedConditions {
			out.RelatedConditions[k] = append([]string(nil), v...)
		}
	}
	if m.TraitNames != nil {
		out.TraitNames = make(map[TraitID]string, len(m.TraitNames))
		for k, v := range m.TraitNames {
			out.TraitNames[k] = v
		}
	}
	return &out, nil
}

func validateQuestion(moduleID string, q *Question) error {
	field := "question " + q.ID
	switch {
	case q.ID == "":
		return newModuleError(moduleID, "questions", "question id must not be empty")
	case q.Trait == "":
		return newModuleError(moduleID, field, "trait must be set")
	case q.CriteriaWeight < 0:
		return newModuleError(moduleID, field, "negative criteria weight %.2f", q.CriteriaWeight)
	case !q.ResponseType.IsValid():
		return newModuleError(moduleID, field, "unknown response type %q", q.ResponseType)
	case q.Dimension != "" && !q.Dimension.IsValid():
		return newModuleError(moduleID, field, "unknown dimension %q", q.Dimension)
	case q.ResponseType == ResponseScale && q.ScaleMax <= q.ScaleMin:
		return newModuleError(moduleID, field, "scale max %.2f must exceed min %.2f", q.ScaleMax, q.ScaleMin)
	case q.ResponseType.IsChoice() && len(q.Options) == 0:
		return newModuleError(moduleID, field, "choice question declares no options")
	}
	return nil
}

// Question looks up a question by id.
func (m *Module) Question(id string) (*Question, bool) {
	if m.byID != nil {
		i, ok := m.byID[id]
		if !ok {
			return nil, false
		}
		return &m.Questions[i], true
	}
	for i := range m.Questions {
		if m.Questions[i].ID == id {
			return &m.Questions[i], true
		}
	}
	return nil, false
}

// MaxPossibleScore is the sum of criteria weights over every question, answered or not.
func (m *Module) MaxPossibleScore() float64 {
	var total float64
	for _, q := range m.Questions {
		total += q.CriteriaWeight
	}
	return total
}

// CoreQuestionCount returns the number of questions with weight >= 1.0.
func (m *Module) CoreQuestionCount() int {
	n := 0
	for i := range m.Questions {
		if m.Questions[i].IsCore() {
			n++
		}
	}
	return n
}

// RelatedConditionsFor returns the alternative conditions linked to a trait.
func (m *Module) RelatedConditionsFor(trait TraitID) []string {
	return m.RelatedConditions[trait]
}

// TraitName returns the display name registered for a trait, or "" when none is.
func (m *Module) TraitName(trait TraitID) string {
	return m.TraitNames[trait]
}

// Summary returns the listing view of the module.
func (m *Module) Summary() ModuleSummary {
	return ModuleSummary{
		ID:                   m.ID,
		Name:                 m.Name,
		Description:          m.Description,
		Cluster:              m.Cluster,
		TotalQuestions:       len(m.Questions),
		CoreQuestions:        m.CoreQuestionCount(),
		MinimumCriteriaCount: m.MinimumCriteriaCount,
		EstimatedMinutes:     m.EstimatedMinutes,
	}
}
