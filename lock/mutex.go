// Package lock implements the synchronization primitives built on top
// of atomic, futex, and tid: Mutex, Qutex, Condition, Semaphore, Once,
// Barrier, RWLock, Spinlock, and Ticketlock.
//
// The primitives that track who holds them (Mutex, Qutex, Once) take
// the caller's *tid.Handle in place of an implicit "current thread"
// the way the source's pthread_self()-backed TID layer would
// (SPEC_FULL.md §5): Go has no stable per-goroutine identity to hang
// that off of. Semaphore, Barrier, RWLock, Spinlock and Ticketlock
// have no ownership and take no handle.
package lock

import (
	"time"

	"github.com/Enlarium/descent-engine-sub000/atomic"
	"github.com/Enlarium/descent-engine-sub000/clock"
	"github.com/Enlarium/descent-engine-sub000/futex"
	"github.com/Enlarium/descent-engine-sub000/rcode"
	"github.com/Enlarium/descent-engine-sub000/tid"
)

const (
	mutexUnlocked uint32 = iota
	mutexLocked
	mutexContended
)

// Mutex is the two-cell {owner, state} non-recursive mutex of spec
// §4.5: owner holds the identity of the thread allowed to unlock, and
// state tracks whether anyone is waiting.
type Mutex struct {
	owner atomic.Cell64
	state atomic.Cell32
}

// NewMutex returns an unlocked Mutex.
func NewMutex() *Mutex { return &Mutex{} }

// Lock acquires m, blocking until available. Self-recursive
// acquisition returns Deadlock rather than blocking forever.
func (m *Mutex) Lock(h *tid.Handle) rcode.Code {
	if h == nil {
		return rcode.Null(rcode.ModuleMutex)
	}
	if _, ok := m.state.CompareExchange(mutexUnlocked, mutexLocked, atomic.AcqRel, atomic.Relaxed); ok {
		m.owner.Store(uint64(h.ID()), atomic.Release)
		return rcode.OK
	}
	if tid.ID(m.owner.Load(atomic.Acquire)) == h.ID() {
		return rcode.Deadlock(rcode.ModuleMutex)
	}
	for {
		cur := m.state.Load(atomic.Relaxed)
		switch cur {
		case mutexUnlocked:
			if _, ok := m.state.CompareExchange(mutexUnlocked, mutexLocked, atomic.AcqRel, atomic.Relaxed); ok {
				m.owner.Store(uint64(h.ID()), atomic.Release)
				return rcode.OK
			}
		case mutexLocked:
			m.state.CompareExchange(mutexLocked, mutexContended, atomic.AcqRel, atomic.Relaxed)
			futex.Wait(&m.state, mutexContended)
			if _, ok := m.state.CompareExchange(mutexUnlocked, mutexContended, atomic.AcqRel, atomic.Relaxed); ok {
				m.owner.Store(uint64(h.ID()), atomic.Release)
				return rcode.OK
			}
		default: // mutexContended
			futex.Wait(&m.state, mutexContended)
			if _, ok := m.state.CompareExchange(mutexUnlocked, mutexContended, atomic.AcqRel, atomic.Relaxed); ok {
				m.owner.Store(uint64(h.ID()), atomic.Release)
				return rcode.OK
			}
		}
	}
}

// TimedLock behaves like Lock but gives up after timeout (clamped to
// clock.DefaultMaxTimeout), returning Timeout on expiry with the
// mutex's observable state unchanged.
func (m *Mutex) TimedLock(h *tid.Handle, timeout time.Duration) rcode.Code {
	if h == nil {
		return rcode.Null(rcode.ModuleMutex)
	}
	if _, ok := m.state.CompareExchange(mutexUnlocked, mutexLocked, atomic.AcqRel, atomic.Relaxed); ok {
		m.owner.Store(uint64(h.ID()), atomic.Release)
		return rcode.OK
	}
	if tid.ID(m.owner.Load(atomic.Acquire)) == h.ID() {
		return rcode.Deadlock(rcode.ModuleMutex)
	}

	deadline := defaultClock.Deadline(timeout)
	for {
		cur := m.state.Load(atomic.Relaxed)
		if cur == mutexUnlocked {
			if _, ok := m.state.CompareExchange(mutexUnlocked, mutexLocked, atomic.AcqRel, atomic.Relaxed); ok {
				m.owner.Store(uint64(h.ID()), atomic.Release)
				return rcode.OK
			}
			continue
		}
		m.state.CompareExchange(mutexLocked, mutexContended, atomic.AcqRel, atomic.Relaxed)

		remaining := clock.Remaining(deadline)
		if remaining <= 0 {
			return rcode.Timeout(rcode.ModuleMutex)
		}
		if code := futex.TimedWait(&m.state, mutexContended, remaining); code.IsTimeout() {
			return rcode.Timeout(rcode.ModuleMutex)
		}
		if _, ok := m.state.CompareExchange(mutexUnlocked, mutexContended, atomic.AcqRel, atomic.Relaxed); ok {
			m.owner.Store(uint64(h.ID()), atomic.Release)
			return rcode.OK
		}
	}
}

// TryLock attempts the fast-acquire CAS only; returns Busy if m is
// already held.
func (m *Mutex) TryLock(h *tid.Handle) rcode.Code {
	if h == nil {
		return rcode.Null(rcode.ModuleMutex)
	}
	if _, ok := m.state.CompareExchange(mutexUnlocked, mutexLocked, atomic.AcqRel, atomic.Relaxed); ok {
		m.owner.Store(uint64(h.ID()), atomic.Release)
		return rcode.OK
	}
	return rcode.Busy(rcode.ModuleMutex)
}

// Unlock releases m. Only the owning handle may unlock; any other
// caller gets Forbidden.
func (m *Mutex) Unlock(h *tid.Handle) rcode.Code {
	if h == nil {
		return rcode.Null(rcode.ModuleMutex)
	}
	if _, ok := m.owner.CompareExchange(uint64(h.ID()), uint64(tid.None), atomic.AcqRel, atomic.Relaxed); !ok {
		return rcode.Forbidden(rcode.ModuleMutex)
	}
	prev := m.state.Exchange(mutexUnlocked, atomic.Release)
	if prev == mutexContended {
		futex.WakeNext(&m.state)
	}
	return rcode.OK
}

// Wait implements mutex_wait (spec §4.5 "Condition wait"): snapshot
// c's generation, unlock m, futex-wait on the generation, then
// re-lock m. Any error from the re-lock is surfaced after the re-lock
// attempt completes.
func (m *Mutex) Wait(h *tid.Handle, c *Condition) rcode.Code {
	if h == nil || c == nil {
		return rcode.Null(rcode.ModuleMutex)
	}
	gen := c.generation.Load(atomic.Relaxed)
	if code := m.Unlock(h); !code.IsOK() {
		return code
	}
	futex.Wait(&c.generation, gen)
	return m.Lock(h)
}

// IsLocked reports whether m is currently held by anyone, for tests
// and diagnostics.
func (m *Mutex) IsLocked() bool {
	return m.state.Load(atomic.Relaxed) != mutexUnlocked
}

// Owner returns the identity currently recorded as m's owner.
func (m *Mutex) Owner() tid.ID {
	return tid.ID(m.owner.Load(atomic.Acquire))
}
