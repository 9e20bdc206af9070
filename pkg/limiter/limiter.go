// Package limiter bounds the number of concurrent calls made to the Judge's
// LLM backend across the whole process, regardless of how many evaluation
// requests are in flight.
package limiter

import (
	"context"

	"golang.org/x/sync/semaphore"
)

const DefaultMaxConcurrentLLMCalls = 20

// Limiter is a process-wide counting semaphore. Every LLM call, from every
// concurrent evaluation request, acquires one slot before issuing the call
// and releases it when done.
type Limiter struct {
	sem *semaphore.Weighted
	cap int64
}

func New(capacity int) *Limiter {
	if capacity < 1 {
		capacity = DefaultMaxConcurrentLLMCalls
	}

	return &Limiter{
		sem: semaphore.NewWeighted(int64(capacity)),
		cap: int64(capacity),
	}
}

// Acquire blocks until a slot is free or ctx is cancelled. The returned
// release func must be called exactly once to free the slot.
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	return func() { l.sem.Release(1) }, nil
}

// Capacity returns the configured number of concurrent slots.
func (l *Limiter) Capacity() int {
	return int(l.cap)
}
