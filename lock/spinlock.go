package lock

import (
	"runtime"

	"github.com/Enlarium/descent-engine-sub000/atomic"
)

const (
	spinUnlocked uint32 = iota
	spinLocked
)

// Spinlock is the busy-wait CAS lock of spec §4.10. runtime.Gosched
// stands in for the source's platform pause-hint (procyield on
// x86/arm, the `PAUSE`/`YIELD` instruction families) — Go exposes no
// portable CPU pause intrinsic, and yielding the scheduler is the
// idiomatic substitute the Go runtime's own lock_futex.go uses
// (osyield) once the active-spin budget is spent.
type Spinlock struct {
	state atomic.Cell32
}

// NewSpinlock returns an unlocked Spinlock.
func NewSpinlock() *Spinlock { return &Spinlock{} }

// Lock busy-waits until acquired.
func (s *Spinlock) Lock() {
	for {
		if _, ok := s.state.CompareExchange(spinUnlocked, spinLocked, atomic.AcqRel, atomic.Relaxed); ok {
			return
		}
		runtime.Gosched()
	}
}

// TryLock attempts a single CAS.
func (s *Spinlock) TryLock() bool {
	_, ok := s.state.CompareExchange(spinUnlocked, spinLocked, atomic.AcqRel, atomic.Relaxed)
	return ok
}

// Unlock releases the lock.
func (s *Spinlock) Unlock() {
	s.state.Store(spinUnlocked, atomic.Release)
}
