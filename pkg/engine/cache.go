package engine

import "evalengine/pkg/concurrent"

// requestCache is the per-request memoization table of §4.8: a map from
// schema-id to an in-flight/settled result promise, created fresh per
// request and discarded when the request completes. It guarantees
// at-most-one evaluation per schema per request across every transitive
// reference.
type requestCache struct {
	futures *concurrent.FutureMap[string, EvaluationResult]
}

func newRequestCache() *requestCache {
	return &requestCache{futures: concurrent.NewFutureMap[string, EvaluationResult]()}
}

// evaluateOnce ensures work runs at most once for id within this request: the
// first caller for a given id executes work and resolves the shared future;
// subsequent callers (including recursive dependency references) await it.
func (c *requestCache) evaluateOnce(done <-chan struct{}, id string, work func() (EvaluationResult, error)) (EvaluationResult, error) {
	fut, started := c.futures.LoadOrStart(id)
	if !started {
		return fut.Wait(done)
	}

	result, err := work()
	fut.Resolve(result, err)
	return result, err
}
