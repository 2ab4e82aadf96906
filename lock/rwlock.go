package lock

import (
	"github.com/Enlarium/descent-engine-sub000/atomic"
	"github.com/Enlarium/descent-engine-sub000/futex"
	"github.com/Enlarium/descent-engine-sub000/rcode"
)

const rwWriteLocked uint32 = 0x80000000

// RWLock is the many-readers-xor-one-writer lock of spec §4.10.
// Writers are not starved: a pending writer blocks new readers from
// joining (tracked by writersWaiting) while existing readers drain.
type RWLock struct {
	state          atomic.Cell32 // 0 = free; rwWriteLocked = held by a writer; else = active reader count
	writersWaiting atomic.Cell32
}

// NewRWLock returns an unlocked RWLock.
func NewRWLock() *RWLock { return &RWLock{} }

// ReadLock acquires a shared read hold, blocking while a writer holds
// or is waiting for the lock.
func (rw *RWLock) ReadLock() rcode.Code {
	for {
		if w := rw.writersWaiting.Load(atomic.Acquire); w > 0 {
			futex.Wait(&rw.writersWaiting, w)
			continue
		}
		cur := rw.state.Load(atomic.Relaxed)
		if cur&rwWriteLocked != 0 {
			futex.Wait(&rw.state, cur)
			continue
		}
		if _, ok := rw.state.CompareExchange(cur, cur+1, atomic.AcqRel, atomic.Relaxed); ok {
			return rcode.OK
		}
	}
}

// ReadTryLock attempts a single non-blocking read acquisition.
func (rw *RWLock) ReadTryLock() rcode.Code {
	if rw.writersWaiting.Load(atomic.Acquire) > 0 {
		return rcode.Busy(rcode.ModuleRWLock)
	}
	cur := rw.state.Load(atomic.Relaxed)
	if cur&rwWriteLocked != 0 {
		return rcode.Busy(rcode.ModuleRWLock)
	}
	if _, ok := rw.state.CompareExchange(cur, cur+1, atomic.AcqRel, atomic.Relaxed); ok {
		return rcode.OK
	}
	return rcode.Busy(rcode.ModuleRWLock)
}

// ReadUnlock releases a shared read hold, waking a waiting writer if
// this was the last active reader.
func (rw *RWLock) ReadUnlock() rcode.Code {
	prev := rw.state.FetchSub(1, atomic.AcqRel)
	if prev == 1 {
		futex.WakeAll(&rw.state)
	}
	return rcode.OK
}

// WriteLock acquires exclusive access, blocking new readers as soon
// as it starts waiting.
func (rw *RWLock) WriteLock() rcode.Code {
	rw.writersWaiting.FetchAdd(1, atomic.AcqRel)
	for {
		if _, ok := rw.state.CompareExchange(0, rwWriteLocked, atomic.AcqRel, atomic.Relaxed); ok {
			break
		}
		futex.Wait(&rw.state, rw.state.Load(atomic.Relaxed))
	}
	rw.writersWaiting.FetchSub(1, atomic.AcqRel)
	futex.WakeAll(&rw.writersWaiting)
	return rcode.OK
}

// WriteTryLock attempts a single non-blocking exclusive acquisition.
func (rw *RWLock) WriteTryLock() rcode.Code {
	if _, ok := rw.state.CompareExchange(0, rwWriteLocked, atomic.AcqRel, atomic.Relaxed); ok {
		return rcode.OK
	}
	return rcode.Busy(rcode.ModuleRWLock)
}

// WriteUnlock releases an exclusive hold.
func (rw *RWLock) WriteUnlock() rcode.Code {
	rw.state.Store(0, atomic.Release)
	futex.WakeAll(&rw.state)
	return rcode.OK
}
