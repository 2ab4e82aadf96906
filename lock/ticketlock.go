package lock

import (
	"runtime"

	"github.com/Enlarium/descent-engine-sub000/atomic"
)

// Ticketlock is the fetch-add ticket lock of spec §4.10: strictly
// FIFO, no node allocation required.
type Ticketlock struct {
	next    atomic.Cell32
	current atomic.Cell32
}

// NewTicketlock returns an unlocked Ticketlock.
func NewTicketlock() *Ticketlock { return &Ticketlock{} }

// Lock draws a ticket and spins until it is this caller's turn.
func (t *Ticketlock) Lock() {
	ticket := t.next.FetchAdd(1, atomic.AcqRel)
	for t.current.Load(atomic.Acquire) != ticket {
		runtime.Gosched()
	}
}

// TryLock succeeds only if the queue is empty.
func (t *Ticketlock) TryLock() bool {
	cur := t.current.Load(atomic.Acquire)
	nxt := t.next.Load(atomic.Acquire)
	if cur != nxt {
		return false
	}
	_, ok := t.next.CompareExchange(nxt, nxt+1, atomic.AcqRel, atomic.Relaxed)
	return ok
}

// Unlock advances the queue, handing the lock to the next ticket
// holder.
func (t *Ticketlock) Unlock() {
	t.current.FetchAdd(1, atomic.Release)
}
