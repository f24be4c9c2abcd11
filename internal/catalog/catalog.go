// Package catalog loads SCID-PD module definitions from YAML and resolves the trait table
// that scoring relies on: display names, dimension fallbacks and related conditions.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scid-pd-engine/internal/domain"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

const defaultCriteriaWeight = 1.0

// Default scale bounds for scale questions that do not declare their own.
const (
	defaultScaleMin = 0
	defaultScaleMax = 3
)

// keywordFamilies attach related conditions to every trait whose id mentions one of the
// keywords. They are resolved once at load time.
var keywordFamilies = []struct {
	keywords   []string
	conditions []string
}{
	{[]string{"mood", "emotional"}, []string{"Major Depressive Disorder", "Bipolar Disorder"}},
	{[]string{"anxiety", "fear"}, []string{"Generalized Anxiety Disorder", "Social Anxiety Disorder"}},
	{[]string{"paranoid", "suspicious"}, []string{"Delusional Disorder", "Paranoid Personality Disorder"}},
}

type file struct {
	Version string      `yaml:"version"`
	Traits  []traitDef  `yaml:"traits"`
	Modules []moduleDef `yaml:"modules"`
}

type traitDef struct {
	ID                string           `yaml:"id"`
	Name              string           `yaml:"name"`
	Dimension         domain.Dimension `yaml:"dimension"`
	RelatedConditions []string         `yaml:"related_conditions"`
}

type moduleDef struct {
	ID                    string                      `yaml:"id"`
	Name                  string                      `yaml:"name"`
	Description           string                      `yaml:"description"`
	Cluster               domain.Cluster              `yaml:"cluster"`
	DiagnosticThreshold   float64                     `yaml:"diagnostic_threshold"`
	DimensionalThreshold  float64                     `yaml:"dimensional_threshold"`
	MinimumCriteriaCount  int                         `yaml:"minimum_criteria_count"`
	SeverityThresholds    map[domain.Severity]float64 `yaml:"severity_thresholds"`
	DifferentialDiagnoses []string                    `yaml:"differential_diagnoses"`
	EstimatedMinutes      int                         `yaml:"estimated_minutes"`
	Version               string                      `yaml:"version"`
	Questions             []questionDef               `yaml:"questions"`
}

type questionDef struct {
	ID                 string              `yaml:"id"`
	Text               string              `yaml:"text"`
	SimpleText         string              `yaml:"simple_text"`
	ResponseType       domain.ResponseType `yaml:"response_type"`
	Options            []string            `yaml:"options"`
	ScaleMin           *float64            `yaml:"scale_min"`
	ScaleMax           *float64            `yaml:"scale_max"`
	CriteriaWeight     *float64            `yaml:"criteria_weight"`
	Trait              domain.TraitID      `yaml:"trait"`
	Dimension          domain.Dimension    `yaml:"dimension"`
	RequiresExamples   bool                `yaml:"requires_examples"`
	OnsetRelevant      bool                `yaml:"onset_relevant"`
	PervasivenessCheck bool                `yaml:"pervasiveness_check"`
	Required           bool                `yaml:"required"`
	HelpText           string              `yaml:"help_text"`
}

// Catalog is an immutable, validated set of modules. It is safe for concurrent use.
type Catalog struct {
	version string
	modules []*domain.Module
	byID    map[string]*domain.Module
}

var _ domain.ModuleCatalog = (*Catalog)(nil)

// LoadDefault returns the catalog embedded in the binary.
func LoadDefault() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path selects the embedded default.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Modules) == 0 {
		return nil, fmt.Errorf("catalog declares no modules")
	}

	traits := make(map[domain.TraitID]traitDef, len(f.Traits))
	for _, t := range f.Traits {
		if t.ID == "" {
			return nil, fmt.Errorf("catalog trait with empty id")
		}
		if t.Dimension != "" && !t.Dimension.IsValid() {
			return nil, fmt.Errorf("trait %s: unknown dimension %q", t.ID, t.Dimension)
		}
		if _, dup := traits[domain.TraitID(t.ID)]; dup {
			return nil, fmt.Errorf("duplicate trait %s", t.ID)
		}
		traits[domain.TraitID(t.ID)] = t
	}

	c := &Catalog{
		version: f.Version,
		byID:    make(map[string]*domain.Module, len(f.Modules)),
	}
	for _, def := range f.Modules {
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate module %s", def.ID)
		}
		m, err := buildModule(def, traits)
		if err != nil {
			return nil, err
		}
		c.modules = append(c.modules, m)
		c.byID[m.ID] = m
	}
	return c, nil
}

func buildModule(def moduleDef, traits map[domain.TraitID]traitDef) (*domain.Module, error) {
	m := domain.Module{
		ID:                    def.ID,
		Name:                  def.Name,
		Description:           def.Description,
		Cluster:               def.Cluster,
		DiagnosticThreshold:   def.DiagnosticThreshold,
		DimensionalThreshold:  def.DimensionalThreshold,
		MinimumCriteriaCount:  def.MinimumCriteriaCount,
		SeverityThresholds:    def.SeverityThresholds,
		DifferentialDiagnoses: def.DifferentialDiagnoses,
		EstimatedMinutes:      def.EstimatedMinutes,
		Version:               def.Version,
		RelatedConditions:     make(map[domain.TraitID][]string),
		TraitNames:            make(map[domain.TraitID]string),
	}

	for _, qd := range def.Questions {
		q := resolveQuestion(qd, traits)
		m.Questions = append(m.Questions, q)

		if _, seen := m.TraitNames[q.Trait]; seen {
			continue
		}
		t := traits[q.Trait]
		m.TraitNames[q.Trait] = t.Name
		if related := relatedConditions(q.Trait, t.RelatedConditions); len(related) > 0 {
			m.RelatedConditions[q.Trait] = related
		}
	}
	for trait, name := range m.TraitNames {
		if name == "" {
			delete(m.TraitNames, trait)
		}
	}

	module, err := domain.NewModule(m)
	if err != nil {
		return nil, fmt.Errorf("catalog module %s: %w", def.ID, err)
	}
	return module, nil
}

// resolveQuestion applies defaults and the trait/dimension fallbacks: a question without a
// trait is attributed to its dimension, and a question without a dimension inherits the
// dimension of its trait.
func resolveQuestion(qd questionDef, traits map[domain.TraitID]traitDef) domain.Question {
	q := domain.Question{
		ID:                 qd.ID,
		Text:               qd.Text,
		SimpleText:         qd.SimpleText,
		ResponseType:       qd.ResponseType,
		Options:            qd.Options,
		CriteriaWeight:     defaultCriteriaWeight,
		Trait:              qd.Trait,
		Dimension:          qd.Dimension,
		RequiresExamples:   qd.RequiresExamples,
		OnsetRelevant:      qd.OnsetRelevant,
		PervasivenessCheck: qd.PervasivenessCheck,
		Required:           qd.Required,
		HelpText:           qd.HelpText,
	}
	if qd.CriteriaWeight != nil {
		q.CriteriaWeight = *qd.CriteriaWeight
	}
	if q.ResponseType == domain.ResponseScale {
		q.ScaleMin, q.ScaleMax = defaultScaleMin, defaultScaleMax
		if qd.ScaleMin != nil {
			q.ScaleMin = *qd.ScaleMin
		}
		if qd.ScaleMax != nil {
			q.ScaleMax = *qd.ScaleMax
		}
	}
	if q.Trait == "" {
		q.Trait = domain.TraitID(q.Dimension)
	}
	if q.Dimension == "" {
		q.Dimension = traits[q.Trait].Dimension
	}
	return q
}

// relatedConditions merges the explicit conditions of a trait with the keyword-family defaults.
func relatedConditions(trait domain.TraitID, explicit []string) []string {
	out := append([]string(nil), explicit...)
	id := strings.ToLower(string(trait))
	for _, family := range keywordFamilies {
		for _, kw := range family.keywords {
			if strings.Contains(id, kw) {
				out = append(out, family.conditions...)
				break
			}
		}
	}
	return out
}

// Version returns the catalog's declared version.
func (c *Catalog) Version() string {
	return c.version
}

// Module returns the module with the given id.
func (c *Catalog) Module(id string) (*domain.Module, error) {
	m, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("module %s: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

// Modules returns every module in declaration order.
func (c *Catalog) Modules() []*domain.Module {
	return append([]*domain.Module(nil), c.modules...)
}

// ByCluster returns the modules of one cluster in declaration order.
func (c *Catalog) ByCluster(cluster domain.Cluster) []*domain.Module {
	var out []*domain.Module
	for _, m := range c.modules {
		if m.Cluster == cluster {
			out = append(out, m)
		}
	}
	return out
}

// Summaries lists the catalog ordered by cluster, then module name.
func (c *Catalog) Summaries() []domain.ModuleSummary {
	out := make([]domain.ModuleSummary, 0, len(c.modules))
	for _, m := range c.modules {
		out = append(out, m.Summary())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Cluster != out[j].Cluster {
			return out[i].Cluster < out[j].Cluster
		}
		return out[i].Name < out[j].Name
	})
	return out
}
