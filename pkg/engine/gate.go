package engine

import (
	"context"
	"fmt"

	"evalengine/pkg/judge"
	"evalengine/pkg/parser"
	"evalengine/pkg/prompt"
	"evalengine/pkg/schema"
)

const (
	gateTemperature = 0.1
	gateMaxTokens   = 1024
)

// evaluateGate implements the binary_gate schema kind end to end: build the
// scope-filtered prompt, call Judge, parse the rule-by-rule verdicts, and
// apply gate logic (§4.4).
func evaluateGate(ctx context.Context, j judge.Judge, s *schema.Schema, text string, context schema.Scope) (EvaluationResult, error) {
	systemPrompt, userPrompt, rules := prompt.BuildGatePrompt(text, s, context)

	raw, err := j.Evaluate(ctx, systemPrompt, userPrompt, gateTemperature, gateMaxTokens)
	if err != nil {
		return EvaluationResult{}, err
	}

	verdicts, err := parser.ParseGateResponse(raw)
	if err != nil {
		return EvaluationResult{}, err
	}

	return applyGateLogic(s, rules, verdicts), nil
}

// applyGateLogic evaluates rules in declaration order (§4.4): the first
// triggered reject rule short-circuits the outcome to false; otherwise the
// schema's default_action decides. criteria enumerates every rule evaluated.
func applyGateLogic(s *schema.Schema, rules []schema.GateRule, verdicts map[string]parser.GateRuleResult) EvaluationResult {
	criteria := make(map[string]any, len(rules))
	outcome := s.BinaryGate.DefaultAction == schema.ActionPass

	var reason, legalRef, severity string
	var confidence float64
	decided := false

	for _, r := range rules {
		v := verdicts[r.ID]
		criteria[r.ID] = map[string]any{"triggered": v.Triggered, "reasoning": v.Reasoning}

		if decided {
			continue
		}

		if v.Triggered && r.Action == schema.ActionReject {
			outcome = false
			reason = r.Reason
			legalRef = r.LegalReference
			severity = r.Severity
			confidence = r.Confidence
			decided = true
		}
	}

	reasoning := reason
	if reasoning == "" {
		reasoning = fmt.Sprintf("no reject rule triggered; default_action=%s", s.BinaryGate.DefaultAction)
	}
	if !decided {
		confidence = 0.9
	}

	label := "pass"
	if !outcome {
		label = "reject"
	}

	result := EvaluationResult{
		SchemeID:   s.ID,
		Dimension:  s.Dimension,
		Value:      outcome,
		Label:      label,
		Reasoning:  reasoning,
		Confidence: confidence,
		ScaleInfo:  scaleInfo(s),
		Criteria:   criteria,
	}
	if legalRef != "" {
		result.Criteria["legal_reference"] = legalRef
	}
	if severity != "" {
		result.Criteria["severity"] = severity
	}

	return result
}
