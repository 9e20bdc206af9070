// Package prompt renders, per schema kind, the prompt sent to the Judge. It
// never leaks schema internals the LLM has no use for (weights, aggregator
// config, output_range) and applies scope filtering to gate rules before
// they are included.
package prompt

import (
	"fmt"
	"strings"

	"evalengine/pkg/schema"
)

const systemPreamble = "You are a strict content evaluator. Respond with a single JSON object and nothing else: no prose, no markdown fences."

// FilterRulesByScope keeps only the gate rules applicable to context, per
// §4.3: content keeps {content, both}; platform keeps {platform, both}; both
// keeps everything.
func FilterRulesByScope(rules []schema.GateRule, context schema.Scope) []schema.GateRule {
	if context == "" || context == schema.ScopeBoth {
		return rules
	}

	var out []schema.GateRule
	for _, r := range rules {
		if r.Scope == context || r.Scope == schema.ScopeBoth {
			out = append(out, r)
		}
	}
	return out
}

// BuildGatePrompt renders the prompt for a binary_gate schema, after scope
// filtering. Returns the filtered rule set alongside the prompt so callers
// can shape the result's per-rule criteria without re-filtering.
func BuildGatePrompt(text string, s *schema.Schema, context schema.Scope) (systemPrompt, userPrompt string, rules []schema.GateRule) {
	rules = FilterRulesByScope(s.BinaryGate.Rules, context)

	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate the following text against %d rule(s).\n\n", len(rules))
	fmt.Fprintf(&b, "TEXT:\n%s\n\n", text)
	b.WriteString("RULES:\n")
	for _, r := range rules {
		fmt.Fprintf(&b, "- id: %s\n  description: %s\n", r.ID, r.Description)
		if len(r.TriggerKeywords) > 0 {
			fmt.Fprintf(&b, "  trigger_keywords: %s\n", strings.Join(r.TriggerKeywords, ", "))
		}
		if len(r.NotTriggerKeywords) > 0 {
			fmt.Fprintf(&b, "  not_trigger_keywords: %s\n", strings.Join(r.NotTriggerKeywords, ", "))
		}
		if r.EvaluationHint != "" {
			fmt.Fprintf(&b, "  evaluation_hint: %s\n", r.EvaluationHint)
		}
	}
	b.WriteString("\nRespond with a JSON object mapping each rule id to {\"triggered\": bool, \"reasoning\": string}.")

	return systemPreamble, b.String(), rules
}

// BuildChecklistPrompt renders the prompt for a checklist schema: one LLM
// call that rates every item at once.
func BuildChecklistPrompt(text string, s *schema.Schema) (systemPrompt, userPrompt string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Rate the following text against each checklist item.\n\n")
	fmt.Fprintf(&b, "TEXT:\n%s\n\n", text)
	b.WriteString("ITEMS:\n")
	for _, item := range s.Checklist.Items {
		fmt.Fprintf(&b, "- id: %s\n  prompt: %s\n", item.ID, item.Prompt)
		for level, v := range item.Values {
			fmt.Fprintf(&b, "  level %s: %s\n", level, v.Description)
		}
		if item.AllowNA {
			b.WriteString("  (may answer \"na\" if inapplicable)\n")
		}
	}
	b.WriteString("\nRespond with a JSON object mapping each item id to {\"level\": <int or \"na\">, \"reasoning\": string}.")

	return systemPreamble, b.String()
}

// BuildOrdinalPrompt renders the prompt for an ordinal schema: anchors are
// presented top-down (highest value first), matching the schema's stated
// descending order.
func BuildOrdinalPrompt(text string, s *schema.Schema) (systemPrompt, userPrompt string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Select the single anchor that best describes the following text.\n\n")
	fmt.Fprintf(&b, "TEXT:\n%s\n\n", text)
	b.WriteString("ANCHORS (highest to lowest):\n")
	for _, a := range s.Ordinal.Anchors {
		fmt.Fprintf(&b, "- value: %d\n  label: %s\n  criteria: %s\n", a.Value, a.Label, a.CriteriaText)
	}
	b.WriteString("\nRespond with a JSON object {\"value\": <int>, \"reasoning\": string, \"confidence\": <0-1 number>}.")

	return systemPreamble, b.String()
}
