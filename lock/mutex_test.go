package lock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Enlarium/descent-engine-sub000/tid"
)

func newTestRegistry(t *testing.T) *tid.Registry {
	t.Helper()
	r, code := tid.NewRegistry()
	assert.True(t, code.IsOK())
	return r
}

func TestMutexUncontendedRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	h, _ := r.AssignMain()
	m := NewMutex()

	assert.True(t, m.Lock(h).IsOK())
	assert.True(t, m.IsLocked())
	assert.True(t, m.Unlock(h).IsOK())
	assert.False(t, m.IsLocked())
	assert.Equal(t, tid.None, m.Owner())
}

func TestMutexSelfReentryIsDeadlock(t *testing.T) {
	r := newTestRegistry(t)
	h, _ := r.AssignMain()
	m := NewMutex()
	assert.True(t, m.Lock(h).IsOK())

	code := m.Lock(h)
	assert.True(t, code.IsDeadlock())
}

func TestMutexUnlockByNonOwnerIsForbidden(t *testing.T) {
	r := newTestRegistry(t)
	owner, _ := r.AssignMain()
	other, _ := r.AssignUnique(0)
	m := NewMutex()
	assert.True(t, m.Lock(owner).IsOK())

	code := m.Unlock(other)
	assert.True(t, code.Kind().String() == "forbidden")
}

func TestMutexTryLockBusyWhenHeld(t *testing.T) {
	r := newTestRegistry(t)
	h, _ := r.AssignMain()
	other, _ := r.AssignUnique(0)
	m := NewMutex()
	assert.True(t, m.Lock(h).IsOK())

	assert.True(t, m.TryLock(other).IsBusy())
}

func TestMutexTimedLockExpires(t *testing.T) {
	r := newTestRegistry(t)
	h, _ := r.AssignMain()
	other, _ := r.AssignUnique(0)
	m := NewMutex()
	assert.True(t, m.Lock(h).IsOK())

	result := m.TimedLock(other, 30*time.Millisecond)
	assert.True(t, result.IsTimeout())
}

// TestMutexFairnessUnderContention is the S1 scenario from spec §8,
// scaled down so the suite runs quickly.
func TestMutexFairnessUnderContention(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMutex()
	var counter int
	const threads = 4
	const iterations = 2000

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		h, code := r.AssignUnique(i)
		assert.True(t, code.IsOK())
		wg.Add(1)
		go func(h *tid.Handle) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				assert.True(t, m.Lock(h).IsOK())
				counter++
				assert.True(t, m.Unlock(h).IsOK())
			}
		}(h)
	}
	wg.Wait()
	assert.Equal(t, threads*iterations, counter)
}
