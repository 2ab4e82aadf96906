// Package futex emulates a Linux-futex-style compare-and-sleep /
// wake-N abstraction on top of a 32-bit atomic.Cell32. Go exposes no
// portable futex syscall (the real thing this layer models is
// FUTEX_WAIT/FUTEX_WAKE on Linux, __ulock_wait/__ulock_wake on Darwin,
// _umtx_op on FreeBSD, WaitOnAddress on Windows — see the x/sys/unix
// reference in SPEC_FULL.md), so waiters are parked in a bucketed,
// address-hashed table of wait-queues guarded by a plain sync.Mutex,
// the same shape as the real Go runtime's own sema/futex
// implementation and twmb-dash's synthetic futex.
package futex

import (
	"hash/maphash"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/Enlarium/descent-engine-sub000/atomic"
	"github.com/Enlarium/descent-engine-sub000/rcode"
)

const numBuckets = 251

type waiter struct {
	addr uintptr
	wake chan struct{}
	next *waiter
}

type bucket struct {
	mu   sync.Mutex
	head *waiter
}

var (
	buckets [numBuckets]bucket
	seed    = maphash.MakeSeed()
)

func cellAddr(cell *atomic.Cell32) uintptr {
	return uintptr(unsafe.Pointer(cell))
}

func bucketFor(addr uintptr) *bucket {
	var h maphash.Hash
	h.SetSeed(seed)
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(addr >> (8 * i))
	}
	h.Write(buf[:])
	return &buckets[h.Sum64()%numBuckets]
}

// Wait atomically compares *cell to expected; if equal, the caller
// suspends until woken by Wake/WakeNext/WakeAll. If the values already
// differ, Wait returns immediately. Spurious wakeups are permitted:
// callers must re-check their predicate after Wait returns.
func Wait(cell *atomic.Cell32, expected uint32) rcode.Code {
	if cell == nil {
		return rcode.Null(rcode.ModuleFutex)
	}
	addr := cellAddr(cell)
	b := bucketFor(addr)
	b.mu.Lock()
	if cell.Load(atomic.SeqCst) != expected {
		b.mu.Unlock()
		return rcode.OK
	}
	w := &waiter{addr: addr, wake: make(chan struct{})}
	w.next = b.head
	b.head = w
	b.mu.Unlock()

	<-w.wake
	return rcode.OK
}

// TimedWait behaves like Wait but gives up after timeout, clamped by
// the caller (see clock.Clock.ToTimeout), returning a Timeout info
// code on expiry.
func TimedWait(cell *atomic.Cell32, expected uint32, timeout time.Duration) rcode.Code {
	if cell == nil {
		return rcode.Null(rcode.ModuleFutex)
	}
	addr := cellAddr(cell)
	b := bucketFor(addr)
	b.mu.Lock()
	if cell.Load(atomic.SeqCst) != expected {
		b.mu.Unlock()
		return rcode.OK
	}
	w := &waiter{addr: addr, wake: make(chan struct{})}
	w.next = b.head
	b.head = w
	b.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-w.wake:
		return rcode.OK
	case <-timer.C:
		b.mu.Lock()
		removed := unlink(b, w)
		b.mu.Unlock()
		if !removed {
			// Wake already claimed this waiter concurrently with the
			// timer firing; honor the wakeup instead of the timeout.
			<-w.wake
			return rcode.OK
		}
		return rcode.Timeout(rcode.ModuleFutex)
	}
}

func unlink(b *bucket, target *waiter) bool {
	var prev *waiter
	cur := b.head
	for cur != nil {
		if cur == target {
			if prev == nil {
				b.head = cur.next
			} else {
				prev.next = cur.next
			}
			return true
		}
		prev = cur
		cur = cur.next
	}
	return false
}

// Wake wakes up to n waiters blocked on cell's address and returns how
// many were actually woken. Wake order is unspecified.
func Wake(cell *atomic.Cell32, n int) int {
	if cell == nil || n <= 0 {
		return 0
	}
	addr := cellAddr(cell)
	b := bucketFor(addr)
	b.mu.Lock()
	defer b.mu.Unlock()

	var prev *waiter
	cur := b.head
	woken := 0
	for cur != nil && woken < n {
		if cur.addr == addr {
			next := cur.next
			if prev == nil {
				b.head = next
			} else {
				prev.next = next
			}
			close(cur.wake)
			cur = next
			woken++
			continue
		}
		prev = cur
		cur = cur.next
	}
	return woken
}

// WakeNext wakes a single waiter, matching futex_wake_next.
func WakeNext(cell *atomic.Cell32) int { return Wake(cell, 1) }

// WakeAll wakes every waiter on cell's address, matching
// futex_wake_all.
func WakeAll(cell *atomic.Cell32) int { return Wake(cell, math.MaxInt32) }
