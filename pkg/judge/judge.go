// Package judge defines the abstract LLM adapter the Evaluator Core consults
// for every non-derived schema, plus a scripted stub usable in tests and a
// concrete OpenAI-backed implementation.
package judge

import "context"

// Judge is a thin, synchronous text-in/text-out adapter to an LLM. A single
// Judge instance must be safe for concurrent use. Callers do not bound
// concurrency themselves: OpenAIJudge acquires a pkg/limiter slot around each
// call, while Stub applies no limit.
type Judge interface {
	// Evaluate sends system_prompt and user_prompt to the model and returns
	// its raw text response. Implementations must distinguish a transport
	// error (network, HTTP 5xx, timeout) from an output error (malformed
	// response) by returning *TransportError or *OutputError respectively,
	// so the engine can apply the failure table in §4.10.
	Evaluate(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error)
}

// TransportError wraps a failure to reach or receive from the backend.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "judge: transport error: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// OutputError wraps a non-JSON or otherwise unusable model response.
type OutputError struct {
	Err error
}

func (e *OutputError) Error() string { return "judge: output error: " + e.Err.Error() }
func (e *OutputError) Unwrap() error { return e.Err }
