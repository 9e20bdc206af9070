// Package engine is the Evaluator Core: the schema-driven, dependency-
// resolving, concurrency-bounded walker that composes Judge verdicts into
// structured EvaluationResults (§4.1).
package engine

import (
	"context"
	"fmt"
	"sync"

	"evalengine/pkg/judge"
	"evalengine/pkg/schema"
)

// Engine ties a Registry to a Judge backend and exposes the evaluate
// operation. It holds no per-request state; every call to Evaluate creates
// its own requestCache (§4.8).
type Engine struct {
	registry *schema.Registry
	judge    judge.Judge
	model    string
}

func New(registry *schema.Registry, j judge.Judge, model string) *Engine {
	return &Engine{registry: registry, judge: j, model: model}
}

// Evaluate is the entry operation of §4.1: it evaluates every requested
// schema id concurrently under a shared per-request cache and shapes the
// roll-up response.
func (e *Engine) Evaluate(ctx context.Context, text string, ids []string, context_ schema.Scope, includeReasoning bool) EvaluateResponse {
	cache := newRequestCache()
	results := make([]EvaluationResult, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = e.evaluateSchema(ctx, cache, id, text, context_)
		}(i, id)
	}
	wg.Wait()

	if !includeReasoning {
		for i := range results {
			results[i] = results[i].WithoutReasoning()
		}
	}

	return shapeResponse(results, e.model)
}

// evaluateSchema resolves a single requested id, including the unknown-id
// case (§4.10: "entry-level error, not fatal").
func (e *Engine) evaluateSchema(ctx context.Context, cache *requestCache, id, text string, context_ schema.Scope) EvaluationResult {
	s, ok := e.registry.Get(id)
	if !ok {
		return EvaluationResult{
			SchemeID:   id,
			Value:      0,
			Label:      "Unbewertet",
			Reasoning:  fmt.Sprintf("unknown schema id %q", id),
			Confidence: 0,
			ScaleInfo:  map[string]any{"type": "unknown"},
			Errored:    true,
		}
	}

	result, err := e.resolve(ctx, cache, s, text, context_)
	if err != nil {
		return e.fallback(s, err)
	}
	return result
}

// resolve is the per-request-cache-aware DAG recursion of §4.1 step 2.
func (e *Engine) resolve(ctx context.Context, cache *requestCache, s *schema.Schema, text string, context_ schema.Scope) (EvaluationResult, error) {
	return cache.evaluateOnce(ctx.Done(), s.ID, func() (EvaluationResult, error) {
		switch s.Kind {
		case schema.KindDerived:
			return e.resolveDerived(ctx, cache, s, text, context_)
		case schema.KindBinaryGate:
			return evaluateGate(ctx, e.judge, s, text, context_)
		case schema.KindChecklist:
			return evaluateChecklist(ctx, e.judge, s, text)
		case schema.KindOrdinal:
			return evaluateOrdinal(ctx, e.judge, s, text)
		default:
			return EvaluationResult{}, fmt.Errorf("engine: unknown schema kind %q for %q", s.Kind, s.ID)
		}
	})
}

// resolveDerived recurses over dependencies concurrently, then applies
// derived-rule resolution once they all settle (§4.1 step 2, §4.5). A
// dependency's own failure becomes that dependency's default result rather
// than aborting the derived schema, consistent with failure locality (§8.7);
// the derived rule then composes over whatever values its dependencies did
// produce.
func (e *Engine) resolveDerived(ctx context.Context, cache *requestCache, s *schema.Schema, text string, context_ schema.Scope) (EvaluationResult, error) {
	depResults := make(map[string]EvaluationResult, len(s.Dependencies))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, depID := range s.Dependencies {
		dep, ok := e.registry.Get(depID)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(dep *schema.Schema) {
			defer wg.Done()

			r, err := e.resolve(ctx, cache, dep, text, context_)
			if err != nil {
				r = e.fallback(dep, err)
			}

			mu.Lock()
			depResults[dep.ID] = r
			mu.Unlock()
		}(dep)
	}
	wg.Wait()

	result := evaluateDerived(s, depResults)

	// Enforce §4.1's result guarantee / §8 invariant 1: a rule like sum/min/
	// max can carry a matched rule's computed value outside output_range even
	// though every dependency it drew from was individually in range.
	if err := validateValue(s, result.Value); err != nil {
		return EvaluationResult{}, err
	}

	return result, nil
}

// fallback implements §4.1 step 4 / §4.10: on any failure inside a schema
// evaluation, fall back to the schema's configured default if present,
// otherwise a generic unscored/errored result. Failures never abort sibling
// schemas in the DAG — this is why evaluateSchema and resolveDerived convert
// errors to results instead of propagating them upward.
func (e *Engine) fallback(s *schema.Schema, cause error) EvaluationResult {
	if s.Default != nil {
		return EvaluationResult{
			SchemeID:   s.ID,
			Dimension:  s.Dimension,
			Value:      s.Default.Value,
			Label:      s.Default.Label,
			Reasoning:  s.Default.Reasoning,
			Confidence: s.Default.Confidence,
			ScaleInfo:  scaleInfo(s),
			Errored:    true,
		}
	}

	value := any(0)
	if s.OutputRange.ValueType == schema.ValueTypeBoolean {
		value = false
	}

	return EvaluationResult{
		SchemeID:   s.ID,
		Dimension:  s.Dimension,
		Value:      value,
		Label:      "Unbewertet",
		Reasoning:  cause.Error(),
		Confidence: 0,
		ScaleInfo:  scaleInfo(s),
		Errored:    true,
	}
}

func defaultResult(s *schema.Schema, reason string) EvaluationResult {
	if s.Default != nil {
		return EvaluationResult{
			SchemeID:   s.ID,
			Dimension:  s.Dimension,
			Value:      s.Default.Value,
			Label:      s.Default.Label,
			Reasoning:  s.Default.Reasoning,
			Confidence: s.Default.Confidence,
			ScaleInfo:  scaleInfo(s),
		}
	}

	return EvaluationResult{
		SchemeID:   s.ID,
		Dimension:  s.Dimension,
		Value:      0,
		Label:      "Unbewertet",
		Reasoning:  reason,
		Confidence: 0,
		ScaleInfo:  scaleInfo(s),
	}
}

// shapeResponse builds the roll-up of §4.1: gates_passed is the AND of every
// binary-gate result; overall_score is the mean of all numeric results, if
// any exist.
func shapeResponse(results []EvaluationResult, model string) EvaluateResponse {
	gatesPassed := true
	var numericSum float64
	var numericCount int

	for _, r := range results {
		if b, ok := r.Value.(bool); ok {
			if !b && r.ScaleInfo["type"] == "binary_gate" {
				gatesPassed = false
			}
			continue
		}
		if f, ok := toFloat(r.Value); ok {
			numericSum += f
			numericCount++
		}
	}

	resp := EvaluateResponse{
		Results:     results,
		GatesPassed: gatesPassed,
		Metadata:    ResponseMetadata{ModelUsed: model},
	}

	if numericCount > 0 {
		mean := numericSum / float64(numericCount)
		resp.OverallScore = &mean
	}

	return resp
}
