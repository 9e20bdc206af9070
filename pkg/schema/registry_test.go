package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordinalSchema(id, dimension string) *Schema {
	return &Schema{
		ID:        id,
		Dimension: dimension,
		Kind:      KindOrdinal,
		Ordinal: &OrdinalPayload{
			Anchors:  []Anchor{{Value: 4, Label: "hi", CriteriaText: "x"}},
			Strategy: OrdinalFirstMatch,
		},
	}
}

func TestNewRegistry_RejectsUnresolvedDependency(t *testing.T) {
	derived := &Schema{
		ID:           "overall",
		Dimension:    "overall",
		Kind:         KindDerived,
		Dependencies: []string{"missing"},
		Derived: &DerivedPayload{
			Rules: []DerivedRule{{Value: 1.0, Label: "x"}},
		},
	}

	_, err := NewRegistry([]*Schema{derived})
	assert.ErrorContains(t, err, "missing")
}

func TestNewRegistry_RejectsDuplicateID(t *testing.T) {
	a := ordinalSchema("dup", "d")
	b := ordinalSchema("dup", "d")

	_, err := NewRegistry([]*Schema{a, b})
	assert.ErrorContains(t, err, "duplicate")
}

func TestNewRegistry_RejectsCycle(t *testing.T) {
	a := &Schema{ID: "a", Dimension: "a", Kind: KindDerived, Dependencies: []string{"b"},
		Derived: &DerivedPayload{Rules: []DerivedRule{{Value: 1.0, Label: "x"}}}}
	b := &Schema{ID: "b", Dimension: "b", Kind: KindDerived, Dependencies: []string{"a"},
		Derived: &DerivedPayload{Rules: []DerivedRule{{Value: 1.0, Label: "x"}}}}

	_, err := NewRegistry([]*Schema{a, b})
	assert.ErrorContains(t, err, "cycle")
}

func TestNewRegistry_RejectsUnresolvedDimension(t *testing.T) {
	leaf := ordinalSchema("leaf", "leaf_dim")
	derived := &Schema{
		ID:           "overall",
		Dimension:    "overall",
		Kind:         KindDerived,
		Dependencies: []string{"leaf"},
		Derived: &DerivedPayload{
			Rules: []DerivedRule{{
				Conditions: []Condition{{Dimension: "nonexistent", Operator: OpGT, Value: 1}},
				Value:      1.0,
				Label:      "x",
			}},
		},
	}

	_, err := NewRegistry([]*Schema{leaf, derived})
	assert.ErrorContains(t, err, "nonexistent")
}

func TestRegistry_GetAndList(t *testing.T) {
	leaf := ordinalSchema("leaf", "leaf_dim")
	part := ordinalSchema("leaf_part1", "leaf_dim")

	reg, err := NewRegistry([]*Schema{leaf, part})
	require.NoError(t, err)

	got, ok := reg.Get("leaf")
	require.True(t, ok)
	assert.Equal(t, "leaf", got.ID)

	_, ok = reg.Get("absent")
	assert.False(t, ok)

	visible := reg.List(ListFilter{})
	require.Len(t, visible, 1)
	assert.Equal(t, "leaf", visible[0].ID)

	all := reg.List(ListFilter{IncludeParts: true})
	assert.Len(t, all, 2)
}

func TestRegistry_ListOrdersDependenciesFirst(t *testing.T) {
	leaf := ordinalSchema("leaf", "leaf_dim")
	derived := &Schema{
		ID:           "overall",
		Dimension:    "overall",
		Kind:         KindDerived,
		Dependencies: []string{"leaf"},
		Derived:      &DerivedPayload{Rules: []DerivedRule{{Value: 1.0, Label: "x"}}},
	}

	reg, err := NewRegistry([]*Schema{derived, leaf})
	require.NoError(t, err)

	all := reg.List(ListFilter{})
	require.Len(t, all, 2)
	assert.Equal(t, "leaf", all[0].ID)
	assert.Equal(t, "overall", all[1].ID)
}

func TestRegistry_ListContextTypeFilter(t *testing.T) {
	gate := &Schema{
		ID:        "gate",
		Dimension: "gate_dim",
		Kind:      KindBinaryGate,
		BinaryGate: &BinaryGatePayload{
			Rules: []GateRule{
				{ID: "r1", Scope: ScopeContent, Action: ActionReject},
				{ID: "r2", Scope: ScopePlatform, Action: ActionReject},
			},
			DefaultAction: ActionPass,
		},
	}

	reg, err := NewRegistry([]*Schema{gate})
	require.NoError(t, err)

	content := reg.List(ListFilter{ContextType: ScopeContent})
	require.Len(t, content, 1)

	neither := reg.List(ListFilter{ContextType: ScopeBoth})
	assert.Len(t, neither, 0)
}

func TestSchema_ValidateChecklistWeights(t *testing.T) {
	s := &Schema{
		ID:   "checklist1",
		Kind: KindChecklist,
		Checklist: &ChecklistPayload{
			Items: []ChecklistItem{{ID: "i1", Weight: 0}},
			Aggregator: ChecklistAggregator{
				ScaleFactor: 5,
			},
		},
	}

	err := s.Validate()
	assert.ErrorContains(t, err, "weight")
}

func TestSchema_ValidateDefaultsGateScope(t *testing.T) {
	s := &Schema{
		ID:   "gate1",
		Kind: KindBinaryGate,
		BinaryGate: &BinaryGatePayload{
			Rules: []GateRule{{ID: "r1", Action: ActionReject}},
		},
	}

	require.NoError(t, s.Validate())
	assert.Equal(t, ScopeBoth, s.BinaryGate.Rules[0].Scope)
	assert.Equal(t, ActionPass, s.BinaryGate.DefaultAction)
}
