package concurrent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_StoreLoad(t *testing.T) {
	m := NewMap[string, int]()

	_, ok := m.Load("a")
	assert.False(t, ok)

	m.Store("a", 1)
	val, ok := m.Load("a")
	require.True(t, ok)
	assert.Equal(t, 1, val)
}

func TestMap_Length(t *testing.T) {
	m := NewMap[string, int]()
	m.Store("a", 1)
	m.Store("b", 2)

	assert.Equal(t, 2, m.Length())
}

func TestMap_Range(t *testing.T) {
	m := NewMap[string, int]()
	m.Store("a", 1)
	m.Store("b", 2)
	m.Store("c", 3)

	sum := 0
	m.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	assert.Equal(t, 6, sum)

	seen := 0
	m.Range(func(_ string, _ int) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen)
}

func TestMap_LoadOrStore(t *testing.T) {
	m := NewMap[string, int]()

	val, loaded := m.LoadOrStore("a", 1)
	assert.False(t, loaded)
	assert.Equal(t, 1, val)

	val, loaded = m.LoadOrStore("a", 2)
	assert.True(t, loaded)
	assert.Equal(t, 1, val)
}

func TestMap_Delete(t *testing.T) {
	m := NewMap[string, int]()
	m.Store("a", 1)

	m.Delete("a")
	_, ok := m.Load("a")
	assert.False(t, ok)
}

func TestMap_Concurrent(t *testing.T) {
	m := NewMap[int, int]()
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Store(n, n*n)
		}(i)
	}

	wg.Wait()
	require.Equal(t, 100, m.Length())

	val, ok := m.Load(10)
	require.True(t, ok)
	assert.Equal(t, 100, val)
}

func TestFutureMap_LoadOrStartCoalesces(t *testing.T) {
	fm := NewFutureMap[string, int]()

	fut1, started1 := fm.LoadOrStart("k")
	fut2, started2 := fm.LoadOrStart("k")

	assert.True(t, started1)
	assert.False(t, started2)
	assert.Same(t, fut1, fut2)

	fut1.Resolve(42, nil)

	val, err := fut2.Wait(make(chan struct{}))
	require.NoError(t, err)
	assert.Equal(t, 42, val)
}

func TestFuture_WaitCancelled(t *testing.T) {
	f := NewFuture[int]()
	done := make(chan struct{})
	close(done)

	_, err := f.Wait(done)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestFuture_ResolveOnce(t *testing.T) {
	f := NewFuture[int]()
	f.Resolve(1, nil)
	f.Resolve(2, nil)

	val, err := f.Wait(make(chan struct{}))
	require.NoError(t, err)
	assert.Equal(t, 1, val)
}
