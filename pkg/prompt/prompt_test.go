package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalengine/pkg/schema"
)

func gateSchema() *schema.Schema {
	return &schema.Schema{
		ID: "gate1",
		BinaryGate: &schema.BinaryGatePayload{
			Rules: []schema.GateRule{
				{ID: "c1", Description: "content rule", Scope: schema.ScopeContent},
				{ID: "p1", Description: "platform rule", Scope: schema.ScopePlatform},
				{ID: "b1", Description: "both rule", Scope: schema.ScopeBoth},
			},
		},
	}
}

func TestFilterRulesByScope(t *testing.T) {
	s := gateSchema()

	content := FilterRulesByScope(s.BinaryGate.Rules, schema.ScopeContent)
	require.Len(t, content, 2)

	platform := FilterRulesByScope(s.BinaryGate.Rules, schema.ScopePlatform)
	require.Len(t, platform, 2)

	both := FilterRulesByScope(s.BinaryGate.Rules, schema.ScopeBoth)
	require.Len(t, both, 3)
}

func TestBuildGatePrompt_OnlyIncludesFilteredRules(t *testing.T) {
	s := gateSchema()

	_, user, rules := BuildGatePrompt("some text", s, schema.ScopeContent)
	require.Len(t, rules, 2)
	assert.Contains(t, user, "c1")
	assert.Contains(t, user, "b1")
	assert.NotContains(t, user, "p1")
}

func TestBuildChecklistPrompt_IncludesItems(t *testing.T) {
	s := &schema.Schema{
		Checklist: &schema.ChecklistPayload{
			Items: []schema.ChecklistItem{
				{ID: "i1", Prompt: "is it clear?", Values: map[string]schema.ChecklistLevel{
					"4": {Score: 1.0, Description: "very clear"},
				}},
			},
		},
	}

	_, user := BuildChecklistPrompt("text", s)
	assert.Contains(t, user, "i1")
	assert.Contains(t, user, "very clear")
}

func TestBuildOrdinalPrompt_ListsAnchorsDescending(t *testing.T) {
	s := &schema.Schema{
		Ordinal: &schema.OrdinalPayload{
			Anchors: []schema.Anchor{
				{Value: 4, Label: "high", CriteriaText: "x"},
				{Value: 1, Label: "low", CriteriaText: "y"},
			},
		},
	}

	_, user := BuildOrdinalPrompt("text", s)
	highIdx := indexOf(user, "high")
	lowIdx := indexOf(user, "low")
	assert.Less(t, highIdx, lowIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
