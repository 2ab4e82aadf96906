package lock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestConditionProducerConsumer is the S3 scenario from spec §8: a
// producer sets a predicate and signals; a consumer waits on the
// predicate and must observe it exactly once, with no lost wakeup
// even if the signal races with the wait.
func TestConditionProducerConsumer(t *testing.T) {
	r := newTestRegistry(t)
	producer, _ := r.AssignMain()
	consumer, _ := r.AssignUnique(0)

	m := NewMutex()
	c := NewCondition()
	ready := false
	observed := 0

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		assert.True(t, m.Lock(consumer).IsOK())
		for !ready {
			assert.True(t, m.Wait(consumer, c).IsOK())
		}
		observed++
		assert.True(t, m.Unlock(consumer).IsOK())
	}()

	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		assert.True(t, m.Lock(producer).IsOK())
		ready = true
		c.Signal()
		assert.True(t, m.Unlock(producer).IsOK())
	}()

	wg.Wait()
	assert.Equal(t, 1, observed)
}

func TestConditionSignalWithNoWaitersIsNoop(t *testing.T) {
	c := NewCondition()
	assert.NotPanics(t, func() {
		c.Signal()
		c.Broadcast()
	})
}

func TestConditionBroadcastWakesAllWaiters(t *testing.T) {
	r := newTestRegistry(t)
	m := NewMutex()
	c := NewCondition()
	ready := false
	const n = 5

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			h, code := r.AssignWorker(idx)
			assert.True(t, code.IsOK())
			assert.True(t, m.Lock(h).IsOK())
			for !ready {
				assert.True(t, m.Wait(h, c).IsOK())
			}
			assert.True(t, m.Unlock(h).IsOK())
		}(i)
	}

	time.Sleep(10 * time.Millisecond)
	main, _ := r.AssignMain()
	assert.True(t, m.Lock(main).IsOK())
	ready = true
	c.Broadcast()
	assert.True(t, m.Unlock(main).IsOK())

	wg.Wait()
}
