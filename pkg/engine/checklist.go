package engine

import (
	"context"

	"evalengine/pkg/judge"
	"evalengine/pkg/parser"
	"evalengine/pkg/prompt"
	"evalengine/pkg/schema"
)

const (
	checklistTemperature = 0.1
	checklistMaxTokens   = 2048

	defaultChecklistConfidence = 0.8
)

// evaluateChecklist implements the checklist schema kind: one LLM call
// rating every item, then weighted-mean aggregation (§4.6).
func evaluateChecklist(ctx context.Context, j judge.Judge, s *schema.Schema, text string) (EvaluationResult, error) {
	systemPrompt, userPrompt := prompt.BuildChecklistPrompt(text, s)

	raw, err := j.Evaluate(ctx, systemPrompt, userPrompt, checklistTemperature, checklistMaxTokens)
	if err != nil {
		return EvaluationResult{}, err
	}

	items, err := parser.ParseChecklistResponse(raw)
	if err != nil {
		return EvaluationResult{}, err
	}

	result := aggregateChecklist(s, items)

	// Enforce §4.1's result guarantee / §8 invariant 1 even though the
	// aggregator's own math keeps well-behaved input in range: a Judge that
	// returns a level outside any item's declared set, combined with an
	// author-misconfigured scale_factor, could still put the normalized value
	// outside output_range.
	if err := validateValue(s, result.Value); err != nil {
		return EvaluationResult{}, err
	}

	return result, nil
}

// aggregateChecklist implements §4.6's weighted-mean aggregation.
func aggregateChecklist(s *schema.Schema, responses map[string]parser.ChecklistItemResult) EvaluationResult {
	agg := s.Checklist.Aggregator

	var weightedSum, totalWeight float64
	criteria := make(map[string]any, len(s.Checklist.Items))

	for _, item := range s.Checklist.Items {
		resp, ok := responses[item.ID]
		level := resp.Level
		if !ok {
			level = "na"
		}

		var score float64
		included := true

		if level == "na" {
			switch agg.Missing {
			case schema.MissingZero:
				score = 0
			default:
				included = false
			}
		} else if lvl, ok := item.Values[level]; ok {
			score = lvl.Score
		} else {
			included = false
		}

		criteria[item.ID] = map[string]any{
			"level":     level,
			"score":     score,
			"included":  included,
			"weight":    item.Weight,
			"reasoning": resp.Reasoning,
		}

		if included {
			weightedSum += item.Weight * score
			totalWeight += item.Weight
		}
	}

	var normalized float64
	if totalWeight > 0 {
		normalized = (weightedSum / totalWeight) * agg.ScaleFactor
	}

	result := EvaluationResult{
		SchemeID:   s.ID,
		Dimension:  s.Dimension,
		Value:      normalized,
		Confidence: defaultChecklistConfidence,
		ScaleInfo:  scaleInfo(s),
		Criteria:   criteria,
	}
	result.Label = resolveLabel(s.Labels, normalized, "")

	return result
}
