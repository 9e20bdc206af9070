package judge

import (
	"context"
	"sync"
)

// StubResponder returns the canned response (or error) for one Evaluate call.
type StubResponder func(systemPrompt, userPrompt string) (string, error)

// Stub is a scripted Judge for tests, recording every call it receives so
// property tests can assert on invocation counts (§8's memoization and
// bounded-fan-out properties) without a real LLM.
type Stub struct {
	mu        sync.Mutex
	responder StubResponder
	calls     []StubCall
}

// StubCall records one invocation of a Stub Judge.
type StubCall struct {
	SystemPrompt string
	UserPrompt   string
}

// NewStub builds a Stub that answers every call via responder.
func NewStub(responder StubResponder) *Stub {
	return &Stub{responder: responder}
}

func (s *Stub) Evaluate(_ context.Context, systemPrompt, userPrompt string, _ float64, _ int) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, StubCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	s.mu.Unlock()

	return s.responder(systemPrompt, userPrompt)
}

// Calls returns a copy of every recorded call, in invocation order.
func (s *Stub) Calls() []StubCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]StubCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns the number of times Evaluate has been called.
func (s *Stub) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

var _ Judge = (*Stub)(nil)
