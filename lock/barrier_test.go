package lock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBarrierSingleParticipantReturnsImmediately(t *testing.T) {
	b, code := NewBarrier(1)
	assert.True(t, code.IsOK())

	done := make(chan struct{})
	go func() {
		assert.True(t, b.Wait().IsOK())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("single-participant barrier did not return immediately")
	}
}

func TestBarrierReleasesAllParticipantsTogether(t *testing.T) {
	const n = 6
	b, _ := NewBarrier(n)
	var before, after int32
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			mu.Lock()
			before++
			mu.Unlock()
			assert.True(t, b.Wait().IsOK())
			mu.Lock()
			after++
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, n, before)
	assert.EqualValues(t, n, after)
}

func TestBarrierReArms(t *testing.T) {
	const n = 4
	b, _ := NewBarrier(n)
	for cycle := 0; cycle < 3; cycle++ {
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				assert.True(t, b.Wait().IsOK())
			}()
		}
		wg.Wait()
	}
}
