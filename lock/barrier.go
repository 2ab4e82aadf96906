package lock

import (
	"github.com/Enlarium/descent-engine-sub000/atomic"
	"github.com/Enlarium/descent-engine-sub000/futex"
	"github.com/Enlarium/descent-engine-sub000/rcode"
)

// Barrier is the auto-re-arming rendezvous of spec §4.10: initialized
// with a positive participant count, Wait blocks until that many
// participants have called it, then releases all of them and resets
// for the next cycle.
type Barrier struct {
	total      uint32
	count      atomic.Cell32
	generation atomic.Cell32
}

// NewBarrier returns a Barrier for count participants. count must be
// positive.
func NewBarrier(count int) (*Barrier, rcode.Code) {
	if count <= 0 {
		return nil, rcode.Invalid(rcode.ModuleBarrier)
	}
	b := &Barrier{total: uint32(count)}
	b.count.Store(uint32(count), atomic.Relaxed)
	return b, rcode.OK
}

// Wait blocks until every participant of the current cycle has
// called Wait, then returns for all of them together. A
// single-participant Barrier returns immediately, per spec §8's
// boundary behavior.
func (b *Barrier) Wait() rcode.Code {
	gen := b.generation.Load(atomic.Acquire)
	countBeforeDecrement := b.count.FetchSub(1, atomic.AcqRel)
	if countBeforeDecrement == 1 {
		b.count.Store(b.total, atomic.Release)
		b.generation.FetchAdd(1, atomic.AcqRel)
		futex.WakeAll(&b.generation)
		return rcode.OK
	}
	for b.generation.Load(atomic.Acquire) == gen {
		futex.Wait(&b.generation, gen)
	}
	return rcode.OK
}
