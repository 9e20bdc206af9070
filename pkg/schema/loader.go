package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// rawSchema mirrors Schema's on-disk shape, where the kind-specific payload
// is inlined at the top level rather than nested under a named key — this
// matches how the scheme YAML files are actually authored.
type rawSchema struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Dimension    string            `yaml:"dimension"`
	Kind         Kind              `yaml:"kind"`
	OutputRange  OutputRange       `yaml:"output_range"`
	Labels       map[string]string `yaml:"labels,omitempty"`
	Default      *Default          `yaml:"default,omitempty"`
	Dependencies []string          `yaml:"dependencies,omitempty"`

	Anchors  []Anchor        `yaml:"anchors,omitempty"`
	Strategy OrdinalStrategy `yaml:"strategy,omitempty"`

	Items      []ChecklistItem      `yaml:"items,omitempty"`
	Aggregator *ChecklistAggregator `yaml:"aggregator,omitempty"`

	Rules         []GateRule `yaml:"rules,omitempty"`
	DefaultAction GateAction `yaml:"default_action,omitempty"`
	GateLogic     GateLogic  `yaml:"gate_logic,omitempty"`

	DerivedRules []DerivedRule `yaml:"derived_rules,omitempty"`
}

func (r rawSchema) toSchema() (*Schema, error) {
	s := &Schema{
		ID:           r.ID,
		Name:         r.Name,
		Dimension:    r.Dimension,
		Kind:         r.Kind,
		OutputRange:  r.OutputRange,
		Labels:       r.Labels,
		Default:      r.Default,
		Dependencies: r.Dependencies,
	}

	switch r.Kind {
	case KindOrdinal:
		s.Ordinal = &OrdinalPayload{Anchors: r.Anchors, Strategy: r.Strategy}
	case KindChecklist:
		agg := ChecklistAggregator{Strategy: "weighted_mean", Missing: MissingIgnore, ScaleFactor: 1}
		if r.Aggregator != nil {
			agg = *r.Aggregator
		}
		s.Checklist = &ChecklistPayload{Items: r.Items, Aggregator: agg}
	case KindBinaryGate:
		s.BinaryGate = &BinaryGatePayload{
			Rules:         r.Rules,
			DefaultAction: r.DefaultAction,
			GateLogic:     r.GateLogic,
		}
	case KindDerived:
		s.Derived = &DerivedPayload{Rules: r.DerivedRules}
	default:
		return nil, fmt.Errorf("schema %q: unknown kind %q", r.ID, r.Kind)
	}

	return s, nil
}

// LoadDir reads every *.yaml/*.yml file in dir (non-recursive) into Schema
// values and builds a validated Registry. Files whose id collides with one
// already loaded fail the load, per §6.2.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("schema: reading %s: %w", dir, err)
	}

	var schemas []*Schema
	seen := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("schema: reading %s: %w", path, err)
		}

		var raw rawSchema
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("schema: parsing %s: %w", path, err)
		}

		s, err := raw.toSchema()
		if err != nil {
			return nil, fmt.Errorf("schema: %s: %w", path, err)
		}

		if prior, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("schema: id %q defined in both %s and %s", s.ID, prior, path)
		}
		seen[s.ID] = path

		schemas = append(schemas, s)
	}

	return NewRegistry(schemas)
}
