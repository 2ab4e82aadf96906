package lock

import (
	"github.com/Enlarium/descent-engine-sub000/atomic"
	"github.com/Enlarium/descent-engine-sub000/futex"
)

// Condition is the generation-counter condition variable of spec
// §4.7. It holds no waiter queue of its own: waiting happens
// exclusively through Mutex.Wait, which unlocks, futex-waits on the
// generation, and re-locks.
type Condition struct {
	generation atomic.Cell32
}

// NewCondition returns a Condition with generation zero.
func NewCondition() *Condition { return &Condition{} }

// Signal wakes a single waiter, incrementing the generation so a
// concurrent Mutex.Wait's snapshot is already stale by the time it
// re-checks.
func (c *Condition) Signal() {
	c.generation.FetchAdd(1, atomic.AcqRel)
	futex.WakeNext(&c.generation)
}

// Broadcast wakes every waiter.
func (c *Condition) Broadcast() {
	c.generation.FetchAdd(1, atomic.AcqRel)
	futex.WakeAll(&c.generation)
}
