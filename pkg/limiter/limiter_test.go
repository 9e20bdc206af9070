package limiter

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_DefaultsWhenInvalid(t *testing.T) {
	l := New(0)
	assert.Equal(t, DefaultMaxConcurrentLLMCalls, l.Capacity())

	l = New(-5)
	assert.Equal(t, DefaultMaxConcurrentLLMCalls, l.Capacity())
}

func TestLimiter_BoundsConcurrency(t *testing.T) {
	l := New(2)

	var current, maxSeen int64
	release := func(ctx context.Context) func() {
		rel, err := l.Acquire(ctx)
		require.NoError(t, err)
		return rel
	}

	ctx := context.Background()
	rel1 := release(ctx)
	atomic.AddInt64(&current, 1)
	rel2 := release(ctx)
	atomic.AddInt64(&current, 1)

	if v := atomic.LoadInt64(&current); v > maxSeen {
		maxSeen = v
	}
	assert.Equal(t, int64(2), maxSeen)

	acquired := make(chan struct{})
	go func() {
		rel3, err := l.Acquire(ctx)
		require.NoError(t, err)
		close(acquired)
		rel3()
	}()

	select {
	case <-acquired:
		t.Fatal("third acquire should have blocked while two slots are held")
	case <-time.After(50 * time.Millisecond):
	}

	rel1()
	<-acquired
	rel2()
}

func TestLimiter_AcquireRespectsCancellation(t *testing.T) {
	l := New(1)
	rel, err := l.Acquire(context.Background())
	require.NoError(t, err)
	defer rel()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx)
	assert.Error(t, err)
}
