package engine

import (
	"fmt"

	"evalengine/pkg/schema"
)

// evaluateDerived implements §4.5: no LLM call, just rule resolution over
// already-settled dependency results.
func evaluateDerived(s *schema.Schema, depResults map[string]EvaluationResult) EvaluationResult {
	byDimension := indexByDimension(s.Dependencies, depResults)

	for _, rule := range s.Derived.Rules {
		if !conditionsHold(rule, byDimension) {
			continue
		}

		value, ok := resolveRuleValue(rule, byDimension)
		if !ok {
			continue
		}

		return EvaluationResult{
			SchemeID:   s.ID,
			Dimension:  s.Dimension,
			Value:      value,
			Label:      resolveLabel(s.Labels, value, rule.Label),
			Reasoning:  rule.Reasoning,
			Confidence: rule.Confidence,
			ScaleInfo:  derivedScaleInfo(s, rule),
			Criteria:   derivedCriteria(s, rule, depResults),
		}
	}

	return defaultResult(s, "no derived rule matched")
}

// indexByDimension maps each dependency's dimension to its result, in
// s.Dependencies declaration order so the first dependency listed wins a
// duplicate dimension, per the Open Question resolved in DESIGN.md.
func indexByDimension(deps []string, results map[string]EvaluationResult) map[string]EvaluationResult {
	out := make(map[string]EvaluationResult, len(deps))
	for _, id := range deps {
		r, ok := results[id]
		if !ok {
			continue
		}
		if _, exists := out[r.Dimension]; exists {
			continue
		}
		out[r.Dimension] = r
	}
	return out
}

func conditionsHold(rule schema.DerivedRule, byDimension map[string]EvaluationResult) bool {
	if len(rule.Conditions) == 0 {
		return true
	}

	logic := rule.ConditionLogic
	if logic == "" {
		logic = schema.ConditionAND
	}

	for _, cond := range rule.Conditions {
		r, ok := byDimension[cond.Dimension]
		held := ok && evalCondition(cond, r.Value)

		if logic == schema.ConditionOR && held {
			return true
		}
		if logic == schema.ConditionAND && !held {
			return false
		}
	}

	return logic == schema.ConditionAND
}

func evalCondition(cond schema.Condition, actual any) bool {
	switch cond.Operator {
	case schema.OpIn:
		return valueIn(actual, cond.Value)
	case schema.OpNotIn:
		return !valueIn(actual, cond.Value)
	}

	af, aok := toFloat(actual)
	vf, vok := toFloat(cond.Value)

	switch cond.Operator {
	case schema.OpEQ:
		return fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", cond.Value)
	case schema.OpNE:
		return fmt.Sprintf("%v", actual) != fmt.Sprintf("%v", cond.Value)
	case schema.OpGT:
		return aok && vok && af > vf
	case schema.OpGE:
		return aok && vok && af >= vf
	case schema.OpLT:
		return aok && vok && af < vf
	case schema.OpLE:
		return aok && vok && af <= vf
	default:
		return false
	}
}

func valueIn(actual any, set any) bool {
	items, ok := set.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if fmt.Sprintf("%v", item) == fmt.Sprintf("%v", actual) {
			return true
		}
	}
	return false
}

// resolveRuleValue computes a matched rule's value per §4.5 step 2.
func resolveRuleValue(rule schema.DerivedRule, byDimension map[string]EvaluationResult) (any, bool) {
	switch v := rule.Value.(type) {
	case string:
		switch schema.DerivedMethod(v) {
		case schema.MethodWeightedAverage:
			return weightedAverage(rule, byDimension)
		case schema.MethodSum:
			return reduceNumeric(byDimension, func(acc, v float64) float64 { return acc + v }, 0), true
		case schema.MethodMin:
			return reduceExtremum(byDimension, false)
		case schema.MethodMax:
			return reduceExtremum(byDimension, true)
		case schema.MethodAndGate:
			return allBool(byDimension, true), true
		case schema.MethodOrGate:
			return allBool(byDimension, false), true
		default:
			return v, true
		}
	default:
		return v, true
	}
}

func weightedAverage(rule schema.DerivedRule, byDimension map[string]EvaluationResult) (any, bool) {
	var sum, totalWeight float64
	for dim, weight := range rule.Weights {
		r, ok := byDimension[dim]
		if !ok {
			continue
		}
		f, ok := toFloat(r.Value)
		if !ok {
			continue
		}
		sum += weight * f
		totalWeight += weight
	}

	if totalWeight == 0 {
		return nil, false
	}

	return sum / totalWeight, true
}

func reduceNumeric(byDimension map[string]EvaluationResult, f func(acc, v float64) float64, initial float64) float64 {
	acc := initial
	for _, r := range byDimension {
		v, ok := toFloat(r.Value)
		if !ok {
			continue
		}
		acc = f(acc, v)
	}
	return acc
}

func reduceExtremum(byDimension map[string]EvaluationResult, max bool) (any, bool) {
	var result float64
	found := false
	for _, r := range byDimension {
		v, ok := toFloat(r.Value)
		if !ok {
			continue
		}
		if !found || (max && v > result) || (!max && v < result) {
			result = v
			found = true
		}
	}
	return result, found
}

func allBool(byDimension map[string]EvaluationResult, requireAll bool) bool {
	for _, r := range byDimension {
		b, _ := r.Value.(bool)
		if requireAll && !b {
			return false
		}
		if !requireAll && b {
			return true
		}
	}
	return requireAll
}

// derivedCriteria nests every dependency's result, annotated with its rule
// weight when the matched rule defines one, per §4.5 step 3.
func derivedCriteria(s *schema.Schema, rule schema.DerivedRule, depResults map[string]EvaluationResult) map[string]any {
	out := make(map[string]any, len(s.Dependencies))
	for _, depID := range s.Dependencies {
		r, ok := depResults[depID]
		if !ok {
			continue
		}
		entry := map[string]any{"result": r}
		if w, ok := rule.Weights[r.Dimension]; ok {
			entry["weight"] = w
		}
		out[depID] = entry
	}
	return out
}
