package lock

import (
	"fmt"

	"github.com/Enlarium/descent-engine-sub000/atomic"
	"github.com/Enlarium/descent-engine-sub000/futex"
	"github.com/Enlarium/descent-engine-sub000/rcode"
	"github.com/Enlarium/descent-engine-sub000/tid"
)

const (
	onceInit uint32 = iota
	onceRunning
	onceDone
)

// Once is the checked/unchecked once-init primitive of spec §4.9.
type Once struct {
	state atomic.Cell32
}

// NewOnce returns an unstarted Once.
func NewOnce() *Once { return &Once{} }

func (o *Once) reentryKey() string { return fmt.Sprintf("once-reentry:%p", o) }

// Do runs fn exactly once across every caller, blocking late arrivals
// until the winner finishes. If fn itself calls back into the same
// Once (detected via a per-handle reentry flag, standing in for the
// source's thread-local flag — see SPEC_FULL.md §3), Do returns
// Deadlock instead of hanging.
func (o *Once) Do(h *tid.Handle, fn func()) rcode.Code {
	if h == nil || fn == nil {
		return rcode.Null(rcode.ModuleOnce)
	}
	key := o.reentryKey()
	if running, ok := h.Extra(key); ok && running.(bool) {
		return rcode.Deadlock(rcode.ModuleOnce)
	}
	for {
		switch o.state.Load(atomic.Acquire) {
		case onceDone:
			return rcode.OK
		case onceInit:
			if _, ok := o.state.CompareExchange(onceInit, onceRunning, atomic.AcqRel, atomic.Relaxed); ok {
				h.SetExtra(key, true)
				fn()
				h.SetExtra(key, false)
				o.state.Store(onceDone, atomic.Release)
				futex.WakeAll(&o.state)
				return rcode.OK
			}
		default: // onceRunning
			futex.Wait(&o.state, onceRunning)
		}
	}
}

// DoUnchecked omits the deadlock and null-argument checks, for
// performance-critical call sites that have already validated their
// inputs (spec §4.9 "unchecked variant").
func (o *Once) DoUnchecked(fn func()) {
	if o.state.Load(atomic.Acquire) == onceDone {
		return
	}
	if _, ok := o.state.CompareExchange(onceInit, onceRunning, atomic.AcqRel, atomic.Relaxed); ok {
		fn()
		o.state.Store(onceDone, atomic.Release)
		futex.WakeAll(&o.state)
		return
	}
	for o.state.Load(atomic.Acquire) != onceDone {
		futex.Wait(&o.state, onceRunning)
	}
}

// Done reports whether fn has already run to completion.
func (o *Once) Done() bool { return o.state.Load(atomic.Acquire) == onceDone }
