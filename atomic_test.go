package constructs_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/comalice/constructs"
)

func TestAtomicBasic(t *testing.T) {
	a := NewAtomic("idle")
	assert.Equal(t, "idle", a.Load())

	a.Store("running")
	assert.Equal(t, "running", a.Load())

	got := a.Set(func() string { return "paused" })
	assert.Equal(t, "paused", got)
	assert.Equal(t, "paused", a.Load())
}

func TestAtomicMutateInPlace(t *testing.T) {
	a := NewAtomic(map[string]int{})
	a.Mutate(func(m *map[string]int) { (*m)["x"] = 1 })
	a.Mutate(func(m *map[string]int) { (*m)["x"]++ })
	assert.Equal(t, 2, a.Load()["x"])
}

func TestAtomicConcurrency(t *testing.T) {
	a := NewAtomic(0)
	var wg sync.WaitGroup

	// 100 concurrent writers
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Mutate(func(n *int) { *n++ })
		}()
	}

	// 100 concurrent readers
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = a.Load()
		}()
	}

	wg.Wait()
	assert.Equal(t, 100, a.Load())
}
