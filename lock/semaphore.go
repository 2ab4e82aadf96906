package lock

import (
	"github.com/Enlarium/descent-engine-sub000/atomic"
	"github.com/Enlarium/descent-engine-sub000/futex"
	"github.com/Enlarium/descent-engine-sub000/rcode"
)

// Semaphore is the count-cell semaphore of spec §4.8: a fixed maximum
// and a 32-bit atomic count. Any thread may Wait or Signal; there is
// no ownership.
type Semaphore struct {
	maximum uint32
	count   atomic.Cell32
}

// NewSemaphore returns a Semaphore with the given maximum and initial
// count. initial must not exceed maximum.
func NewSemaphore(maximum, initial uint32) (*Semaphore, rcode.Code) {
	if initial > maximum {
		return nil, rcode.Invalid(rcode.ModuleSemaphore)
	}
	s := &Semaphore{maximum: maximum}
	s.count.Store(initial, atomic.Relaxed)
	return s, rcode.OK
}

// Wait blocks until the count is positive, then decrements it.
func (s *Semaphore) Wait() rcode.Code {
	for {
		c := s.count.Load(atomic.Relaxed)
		if c > 0 {
			if _, ok := s.count.CompareExchange(c, c-1, atomic.AcqRel, atomic.Relaxed); ok {
				return rcode.OK
			}
			continue
		}
		futex.Wait(&s.count, 0)
	}
}

// TryWait attempts a single decrement, returning Busy if the count is
// currently zero.
func (s *Semaphore) TryWait() rcode.Code {
	c := s.count.Load(atomic.Relaxed)
	if c == 0 {
		return rcode.Busy(rcode.ModuleSemaphore)
	}
	if _, ok := s.count.CompareExchange(c, c-1, atomic.AcqRel, atomic.Relaxed); ok {
		return rcode.OK
	}
	return rcode.Busy(rcode.ModuleSemaphore)
}

// Signal increments the count, waking one waiter if the count was
// zero. Returns Overflow if the count is already at its maximum.
func (s *Semaphore) Signal() rcode.Code {
	for {
		c := s.count.Load(atomic.Relaxed)
		if c >= s.maximum {
			return rcode.Overflow(rcode.ModuleSemaphore)
		}
		if _, ok := s.count.CompareExchange(c, c+1, atomic.AcqRel, atomic.Relaxed); ok {
			if c == 0 {
				futex.WakeNext(&s.count)
			}
			return rcode.OK
		}
	}
}

// Count returns the current count, for tests and diagnostics.
func (s *Semaphore) Count() uint32 { return s.count.Load(atomic.Relaxed) }
