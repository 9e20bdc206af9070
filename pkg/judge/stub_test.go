package judge

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStub_RecordsCalls(t *testing.T) {
	s := NewStub(func(_, _ string) (string, error) {
		return `{"value":4}`, nil
	})

	out, err := s.Evaluate(context.Background(), "sys", "user", 0.2, 256)
	require.NoError(t, err)
	assert.Equal(t, `{"value":4}`, out)

	require.Equal(t, 1, s.CallCount())
	assert.Equal(t, "user", s.Calls()[0].UserPrompt)
}

func TestStub_ConcurrentCallCounting(t *testing.T) {
	s := NewStub(func(_, _ string) (string, error) {
		return "{}", nil
	})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Evaluate(context.Background(), "sys", "user", 0, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, s.CallCount())
}
