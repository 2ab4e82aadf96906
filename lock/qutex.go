package lock

import (
	"fmt"
	"unsafe"

	"github.com/Enlarium/descent-engine-sub000/atomic"
	"github.com/Enlarium/descent-engine-sub000/futex"
	"github.com/Enlarium/descent-engine-sub000/rcode"
	"github.com/Enlarium/descent-engine-sub000/tid"
)

const (
	qnodeUnused uint32 = iota
	qnodeWaiting
	qnodeReady
)

// qnode is one waiter's MCS queue node. The source keeps exactly one
// of these per OS thread in TLS (spec §4.6, §9 "MCS node ownership");
// here it lives on the caller's *tid.Handle instead, keyed by the
// owning Qutex so a handle can hold distinct nodes for distinct
// qutexes it contends on over its lifetime.
type qnode struct {
	next  atomic.CellPtr
	state atomic.Cell32
}

// Qutex is the FIFO MCS-style queue lock of spec §4.6: a single
// atomic tail pointer plus one node per waiter.
type Qutex struct {
	tail atomic.CellPtr // *qnode
}

// NewQutex returns an unlocked, empty Qutex.
func NewQutex() *Qutex { return &Qutex{} }

func (q *Qutex) nodeKey() string { return fmt.Sprintf("qutex-node:%p", q) }

func (q *Qutex) nodeFor(h *tid.Handle) *qnode {
	key := q.nodeKey()
	if v, ok := h.Extra(key); ok {
		return v.(*qnode)
	}
	n := &qnode{}
	h.SetExtra(key, n)
	return n
}

// Lock acquires q, blocking until it is this handle's turn. Acquisition
// order is strictly FIFO in tail-exchange order (spec §8 invariant 2).
func (q *Qutex) Lock(h *tid.Handle) rcode.Code {
	if h == nil {
		return rcode.Null(rcode.ModuleQutex)
	}
	n := q.nodeFor(h)
	if _, ok := n.state.CompareExchange(qnodeUnused, qnodeWaiting, atomic.AcqRel, atomic.Relaxed); !ok {
		return rcode.Deadlock(rcode.ModuleQutex)
	}
	n.next.Store(nil, atomic.Release)

	prevPtr := q.tail.Exchange(unsafe.Pointer(n), atomic.AcqRel)
	if prevPtr == nil {
		return rcode.OK
	}
	prev := (*qnode)(prevPtr)
	prev.next.Store(unsafe.Pointer(n), atomic.Release)

	for n.state.Load(atomic.Acquire) == qnodeWaiting {
		futex.Wait(&n.state, qnodeWaiting)
	}
	return rcode.OK
}

// TryLock attempts to acquire q only if it is currently uncontended.
func (q *Qutex) TryLock(h *tid.Handle) rcode.Code {
	if h == nil {
		return rcode.Null(rcode.ModuleQutex)
	}
	n := q.nodeFor(h)
	if _, ok := n.state.CompareExchange(qnodeUnused, qnodeWaiting, atomic.AcqRel, atomic.Relaxed); !ok {
		return rcode.Deadlock(rcode.ModuleQutex)
	}
	if _, ok := q.tail.CompareExchange(nil, unsafe.Pointer(n), atomic.AcqRel, atomic.Relaxed); ok {
		return rcode.OK
	}
	n.state.Store(qnodeUnused, atomic.Release)
	return rcode.Busy(rcode.ModuleQutex)
}

// Unlock releases q, handing it to the next queued waiter if any.
func (q *Qutex) Unlock(h *tid.Handle) rcode.Code {
	if h == nil {
		return rcode.Null(rcode.ModuleQutex)
	}
	n := q.nodeFor(h)

	nextPtr := n.next.Load(atomic.Acquire)
	if nextPtr == nil {
		if _, ok := q.tail.CompareExchange(unsafe.Pointer(n), nil, atomic.AcqRel, atomic.Relaxed); ok {
			n.state.Store(qnodeUnused, atomic.Release)
			return rcode.OK
		}
		for nextPtr == nil {
			nextPtr = n.next.Load(atomic.Acquire)
		}
	}

	next := (*qnode)(nextPtr)
	next.state.Store(qnodeReady, atomic.Release)
	futex.WakeNext(&next.state)
	n.state.Store(qnodeUnused, atomic.Release)
	return rcode.OK
}
