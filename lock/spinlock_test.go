package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinlockMutualExclusion(t *testing.T) {
	s := NewSpinlock()
	counter := 0
	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			s.Lock()
			counter++
			s.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, n, counter)
}

func TestSpinlockTryLock(t *testing.T) {
	s := NewSpinlock()
	assert.True(t, s.TryLock())
	assert.False(t, s.TryLock())
	s.Unlock()
	assert.True(t, s.TryLock())
}
