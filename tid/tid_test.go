package tid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignMainThenUnique(t *testing.T) {
	r, code := NewRegistry()
	assert.True(t, code.IsOK())

	main, code := r.AssignMain()
	assert.True(t, code.IsOK())
	assert.Equal(t, Main, main.ID())
	assert.True(t, r.IsMain(main.ID()))

	u0, code := r.AssignUnique(0)
	assert.True(t, code.IsOK())
	assert.True(t, r.IsUnique(u0.ID()))
	assert.NotEqual(t, main.ID(), u0.ID())
}

func TestDoubleAssignmentFailsWithStateError(t *testing.T) {
	r, _ := NewRegistry()
	_, code := r.AssignMain()
	assert.True(t, code.IsOK())

	_, code = r.AssignMain()
	assert.Equal(t, rcodeKindState(), code.Kind().String())
}

func rcodeKindState() string { return "state" }

func TestClearAllowsReassignment(t *testing.T) {
	r, _ := NewRegistry()
	h, _ := r.AssignMain()
	code := r.Clear(h)
	assert.True(t, code.IsOK())

	h2, code := r.AssignMain()
	assert.True(t, code.IsOK())
	assert.Equal(t, Main, h2.ID())
}

func TestAssignedSetEqualsUnionOfLiveHandles(t *testing.T) {
	r, _ := NewRegistry()
	h0, _ := r.AssignUnique(0)
	h1, _ := r.AssignUnique(1)

	set := r.AssignedSet()
	assert.True(t, Contains(set, h0.ID()))
	assert.True(t, Contains(set, h1.ID()))
	assert.Equal(t, Union(h0.ID(), h1.ID()), set)
}

func TestOutOfRangeIndexIsInvalid(t *testing.T) {
	r, _ := NewRegistry(WithUniqueMax(2))
	_, code := r.AssignUnique(5)
	assert.True(t, code.Kind().String() == "invalid")
}

func TestConcurrentAssignmentsAreDisjoint(t *testing.T) {
	r, _ := NewRegistry(WithUniqueMax(15), WithWorkerMax(48))
	var wg sync.WaitGroup
	handles := make([]*Handle, 15)
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			h, code := r.AssignUnique(idx)
			assert.True(t, code.IsOK())
			handles[idx] = h
		}(i)
	}
	wg.Wait()

	var union ID
	for _, h := range handles {
		assert.False(t, Contains(union, h.ID()))
		union = Union(union, h.ID())
	}
}

func TestHandleExtraStorage(t *testing.T) {
	h := &Handle{id: Main}
	_, ok := h.Extra("qutex-node")
	assert.False(t, ok)
	h.SetExtra("qutex-node", 42)
	v, ok := h.Extra("qutex-node")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}
