package lock

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketlockMutualExclusionAndNoLostWakeups(t *testing.T) {
	tl := NewTicketlock()
	const n = 64
	order := make([]int, 0, n)
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(id int) {
			defer wg.Done()
			tl.Lock()
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			tl.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Len(t, order, n)
	sorted := append([]int(nil), order...)
	sort.Ints(sorted)
	for i := range sorted {
		assert.Equal(t, i, sorted[i], "every ticket holder must run exactly once")
	}
}

func TestTicketlockTryLockOnlyWhenQueueEmpty(t *testing.T) {
	tl := NewTicketlock()
	assert.True(t, tl.TryLock())
	assert.False(t, tl.TryLock())
	tl.Unlock()
}
