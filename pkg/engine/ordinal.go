package engine

import (
	"context"

	"evalengine/pkg/judge"
	"evalengine/pkg/parser"
	"evalengine/pkg/prompt"
	"evalengine/pkg/schema"
)

const (
	ordinalTemperature = 0.2
	ordinalMaxTokens   = 512
)

// evaluateOrdinal implements the ordinal schema kind (§4.7). Both
// first_match and best_fit strategies accept the single value the LLM
// returns. The strategy is not consulted: prompt.BuildOrdinalPrompt renders
// the same top-down anchor list for either one.
func evaluateOrdinal(ctx context.Context, j judge.Judge, s *schema.Schema, text string) (EvaluationResult, error) {
	systemPrompt, userPrompt := prompt.BuildOrdinalPrompt(text, s)

	raw, err := j.Evaluate(ctx, systemPrompt, userPrompt, ordinalTemperature, ordinalMaxTokens)
	if err != nil {
		return EvaluationResult{}, err
	}

	parsed, err := parser.ParseOrdinalResponse(raw)
	if err != nil {
		return EvaluationResult{}, err
	}

	// Enforce §4.1's result guarantee / §8 invariant 1: a misbehaving Judge
	// must not yield a value outside the anchor ladder. The caller falls back
	// to the schema's default (or a generic error result) on this error.
	if err := validateOrdinalValue(s, parsed.Value); err != nil {
		return EvaluationResult{}, err
	}

	var anchorLabel string
	for _, a := range s.Ordinal.Anchors {
		if a.Value == parsed.Value {
			anchorLabel = a.Label
			break
		}
	}

	return EvaluationResult{
		SchemeID:   s.ID,
		Dimension:  s.Dimension,
		Value:      parsed.Value,
		Label:      resolveLabel(s.Labels, parsed.Value, anchorLabel),
		Reasoning:  parsed.Reasoning,
		Confidence: parsed.Confidence,
		ScaleInfo:  scaleInfo(s),
	}, nil
}
