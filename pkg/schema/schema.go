// Package schema defines the immutable evaluation-scheme data model and the
// in-memory registry that owns it.
package schema

import "fmt"

// Kind is the discriminator for the four evaluation-scheme variants. Each
// kind carries its own payload; common fields live on Schema itself.
type Kind string

const (
	KindOrdinal     Kind = "ordinal"
	KindChecklist   Kind = "checklist"
	KindBinaryGate  Kind = "binary_gate"
	KindDerived     Kind = "derived"
)

// Scope classifies a binary-gate rule by which request context it applies to.
type Scope string

const (
	ScopeContent  Scope = "content"
	ScopePlatform Scope = "platform"
	ScopeBoth     Scope = "both"
)

// ValueType names the primitive type of a schema's output value.
type ValueType string

const (
	ValueTypeInt     ValueType = "int"
	ValueTypeFloat   ValueType = "float"
	ValueTypeBoolean ValueType = "boolean"
)

// OutputRange describes the legal shape of a schema's resolved value.
type OutputRange struct {
	Min       *float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max       *float64  `yaml:"max,omitempty" json:"max,omitempty"`
	ValueType ValueType `yaml:"value_type,omitempty" json:"value_type,omitempty"`
	Values    []string  `yaml:"values,omitempty" json:"values,omitempty"`
}

// Default is the fallback result a schema reports when evaluation fails and
// no more specific error handling applies.
type Default struct {
	Value      any     `yaml:"value" json:"value"`
	Label      string  `yaml:"label" json:"label"`
	Reasoning  string  `yaml:"reasoning" json:"reasoning"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
}

// Anchor is one rung of an ordinal schema's ladder.
type Anchor struct {
	Value        int    `yaml:"value" json:"value"`
	Label        string `yaml:"label" json:"label"`
	CriteriaText string `yaml:"criteria_text" json:"criteria_text"`
}

// OrdinalStrategy selects how an ordinal schema resolves the LLM's answer.
type OrdinalStrategy string

const (
	OrdinalFirstMatch OrdinalStrategy = "first_match"
	OrdinalBestFit    OrdinalStrategy = "best_fit"
)

// OrdinalPayload is the kind-specific body of an ordinal schema.
type OrdinalPayload struct {
	Anchors  []Anchor        `yaml:"anchors" json:"anchors"`
	Strategy OrdinalStrategy `yaml:"strategy" json:"strategy"`
}

// ChecklistLevel is one graded option for a checklist item.
type ChecklistLevel struct {
	Score       float64 `yaml:"score" json:"score"`
	Description string  `yaml:"description" json:"description"`
}

// ChecklistItem is a single weighted question within a checklist schema.
type ChecklistItem struct {
	ID      string                    `yaml:"id" json:"id"`
	Prompt  string                    `yaml:"prompt" json:"prompt"`
	Weight  float64                   `yaml:"weight" json:"weight"`
	Values  map[string]ChecklistLevel `yaml:"values" json:"values"`
	AllowNA bool                      `yaml:"allow_na" json:"allow_na"`
}

// MissingPolicy controls how a checklist item marked "na" is aggregated.
type MissingPolicy string

const (
	MissingIgnore MissingPolicy = "ignore"
	MissingZero   MissingPolicy = "zero"
)

// ChecklistAggregator configures how per-item scores combine into one value.
type ChecklistAggregator struct {
	Strategy    string        `yaml:"strategy" json:"strategy"`
	Missing     MissingPolicy `yaml:"missing" json:"missing"`
	ScaleFactor float64       `yaml:"scale_factor" json:"scale_factor"`
}

// ChecklistPayload is the kind-specific body of a checklist schema.
type ChecklistPayload struct {
	Items      []ChecklistItem     `yaml:"items" json:"items"`
	Aggregator ChecklistAggregator `yaml:"aggregator" json:"aggregator"`
}

// GateAction is the outcome a triggered gate rule produces.
type GateAction string

const (
	ActionReject GateAction = "reject"
	ActionPass   GateAction = "pass"
)

// GateRule is one reject/pass condition evaluated against the LLM's verdict.
type GateRule struct {
	ID                string     `yaml:"id" json:"id"`
	Description       string     `yaml:"description" json:"description"`
	Action            GateAction `yaml:"action" json:"action"`
	Reason            string     `yaml:"reason" json:"reason"`
	Severity          string     `yaml:"severity" json:"severity"`
	LegalReference    string     `yaml:"legal_reference,omitempty" json:"legal_reference,omitempty"`
	Scope             Scope      `yaml:"scope" json:"scope"`
	TriggerKeywords    []string  `yaml:"trigger_keywords,omitempty" json:"trigger_keywords,omitempty"`
	NotTriggerKeywords []string  `yaml:"not_trigger_keywords,omitempty" json:"not_trigger_keywords,omitempty"`
	EvaluationHint     string    `yaml:"evaluation_hint,omitempty" json:"evaluation_hint,omitempty"`
	Confidence         float64   `yaml:"confidence" json:"confidence"`
}

// GateLogic is the optional gate_logic field of a binary-gate schema. It is
// loaded and stored but not consulted during evaluation: the engine's gate
// logic always applies §4.4's first-reject-wins rule.
type GateLogic string

const (
	GateLogicAND GateLogic = "AND"
	GateLogicOR  GateLogic = "OR"
)

// BinaryGatePayload is the kind-specific body of a binary-gate schema.
type BinaryGatePayload struct {
	Rules         []GateRule `yaml:"rules" json:"rules"`
	DefaultAction GateAction `yaml:"default_action" json:"default_action"`
	GateLogic     GateLogic  `yaml:"gate_logic,omitempty" json:"gate_logic,omitempty"`
}

// ConditionOperator is the comparison applied between a dependency's
// dimension value and a derived rule condition's literal.
type ConditionOperator string

const (
	OpEQ     ConditionOperator = "=="
	OpNE     ConditionOperator = "!="
	OpGT     ConditionOperator = ">"
	OpGE     ConditionOperator = ">="
	OpLT     ConditionOperator = "<"
	OpLE     ConditionOperator = "<="
	OpIn     ConditionOperator = "in"
	OpNotIn  ConditionOperator = "not_in"
)

// Condition is one clause of a derived rule's guard.
type Condition struct {
	Dimension string            `yaml:"dimension" json:"dimension"`
	Operator  ConditionOperator `yaml:"operator" json:"operator"`
	Value     any               `yaml:"value" json:"value"`
}

// ConditionLogic joins a derived rule's conditions together.
type ConditionLogic string

const (
	ConditionAND ConditionLogic = "AND"
	ConditionOR  ConditionLogic = "OR"
)

// DerivedRule is one guarded value-computation clause of a derived schema,
// evaluated in declaration order; the first whose conditions hold wins.
type DerivedRule struct {
	ConditionLogic ConditionLogic     `yaml:"condition_logic,omitempty" json:"condition_logic,omitempty"`
	Conditions     []Condition        `yaml:"conditions" json:"conditions"`
	Value          any                `yaml:"value" json:"value"`
	Label          string             `yaml:"label" json:"label"`
	Reasoning      string             `yaml:"reasoning" json:"reasoning"`
	Confidence     float64            `yaml:"confidence" json:"confidence"`
	Weights        map[string]float64 `yaml:"weights,omitempty" json:"weights,omitempty"`
}

// DerivedMethod names the built-in aggregation a rule's Value may request
// instead of a numeric literal.
type DerivedMethod string

const (
	MethodWeightedAverage DerivedMethod = "weighted_average"
	MethodSum             DerivedMethod = "sum"
	MethodMin             DerivedMethod = "min"
	MethodMax             DerivedMethod = "max"
	MethodAndGate         DerivedMethod = "and_gate"
	MethodOrGate          DerivedMethod = "or_gate"
)

// DerivedPayload is the kind-specific body of a derived schema.
type DerivedPayload struct {
	Rules []DerivedRule `yaml:"rules" json:"rules"`
}

// Schema is the immutable, registry-owned evaluation spec for one dimension
// of the input text. Exactly one of the kind-specific payload pointers is
// set, matching Kind.
type Schema struct {
	ID           string      `yaml:"id" json:"id"`
	Name         string      `yaml:"name" json:"name"`
	Dimension    string      `yaml:"dimension" json:"dimension"`
	Kind         Kind        `yaml:"kind" json:"kind"`
	OutputRange  OutputRange `yaml:"output_range" json:"output_range"`
	Labels       map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Default      *Default    `yaml:"default,omitempty" json:"default,omitempty"`
	Dependencies []string    `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	Ordinal    *OrdinalPayload    `yaml:"ordinal,omitempty" json:"-"`
	Checklist  *ChecklistPayload  `yaml:"checklist,omitempty" json:"-"`
	BinaryGate *BinaryGatePayload `yaml:"binary_gate,omitempty" json:"-"`
	Derived    *DerivedPayload    `yaml:"derived,omitempty" json:"-"`
}

// Validate checks the invariants of §3.1 that can be verified without the
// rest of the registry (self-contained structural checks only; cross-schema
// checks like dependency resolution and acyclicity live in Registry).
func (s *Schema) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("schema: id is required")
	}

	switch s.Kind {
	case KindOrdinal:
		if s.Ordinal == nil || len(s.Ordinal.Anchors) == 0 {
			return fmt.Errorf("schema %q: ordinal schema requires anchors", s.ID)
		}
	case KindChecklist:
		if s.Checklist == nil || len(s.Checklist.Items) == 0 {
			return fmt.Errorf("schema %q: checklist schema requires items", s.ID)
		}
		if s.Checklist.Aggregator.ScaleFactor <= 0 {
			return fmt.Errorf("schema %q: scale_factor must be > 0", s.ID)
		}
		for _, item := range s.Checklist.Items {
			if item.Weight <= 0 {
				return fmt.Errorf("schema %q: item %q weight must be > 0", s.ID, item.ID)
			}
			for level, v := range item.Values {
				if v.Score < 0 || v.Score > 1 {
					return fmt.Errorf("schema %q: item %q level %q score must be in [0,1]", s.ID, item.ID, level)
				}
			}
		}
	case KindBinaryGate:
		if s.BinaryGate == nil || len(s.BinaryGate.Rules) == 0 {
			return fmt.Errorf("schema %q: binary_gate schema requires rules", s.ID)
		}
		for i, r := range s.BinaryGate.Rules {
			if r.Scope == "" {
				s.BinaryGate.Rules[i].Scope = ScopeBoth
			}
		}
		if s.BinaryGate.DefaultAction == "" {
			s.BinaryGate.DefaultAction = ActionPass
		}
	case KindDerived:
		if s.Derived == nil || len(s.Derived.Rules) == 0 {
			return fmt.Errorf("schema %q: derived schema requires rules", s.ID)
		}
		if len(s.Dependencies) == 0 {
			return fmt.Errorf("schema %q: derived schema requires dependencies", s.ID)
		}
	default:
		return fmt.Errorf("schema %q: unknown kind %q", s.ID, s.Kind)
	}

	return nil
}
