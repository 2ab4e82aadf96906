// Package tid implements the thread identity registry: a 64-bit
// identity bit per managed goroutine, a global assigned-set, and
// identity-set algebra.
//
// Go goroutines carry no stable OS-thread identity or TLS, so "the
// calling managed thread" is represented explicitly by *Handle rather
// than implicitly by a thread-local self value (see SPEC_FULL.md §5).
// Callers obtain a Handle from Registry.Assign* and thread it through
// their own call stack — passed to lock.Mutex.Lock and friends — the
// same way context.Context is threaded explicitly through the rest of
// the Go ecosystem.
package tid

import (
	"sync"

	"github.com/Enlarium/descent-engine-sub000/atomic"
	"github.com/Enlarium/descent-engine-sub000/rcode"
)

// ID is a 64-bit value with exactly one bit set, uniquely identifying
// a managed thread, or None.
type ID uint64

// None is the unassigned identity.
const None ID = 0

// Main is the bit reserved for the main thread.
const Main ID = 1 << 0

// DefaultUniqueMax and DefaultWorkerMax mirror the source's compile-time
// defaults (spec §6).
const (
	DefaultUniqueMax = 15
	DefaultWorkerMax = 48
)

// IsSingleBit reports whether id has exactly one bit set (and is
// nonzero), the well-formedness condition every identity-set helper
// requires of its inputs.
func IsSingleBit(id ID) bool {
	return id != 0 && id&(id-1) == 0
}

// Add returns set with id's bit present. Malformed ids are ignored
// (set is returned unchanged), matching the source's "silently
// ignored" contract for identity-set helpers.
func Add(set, id ID) ID {
	if !IsSingleBit(id) {
		return set
	}
	return set | id
}

// Remove returns set with id's bit cleared.
func Remove(set, id ID) ID {
	if !IsSingleBit(id) {
		return set
	}
	return set &^ id
}

// Union returns the bitwise union of two sets.
func Union(a, b ID) ID { return a | b }

// Contains reports whether set has id's bit set.
func Contains(set, id ID) bool {
	if !IsSingleBit(id) {
		return false
	}
	return set&id != 0
}

// Intersects reports whether a and b share any bit.
func Intersects(a, b ID) bool { return a&b != 0 }

// IsManaged reports whether id is a well-formed single-bit identity.
func IsManaged(id ID) bool { return IsSingleBit(id) }

// Config bounds the unique/worker identity ranges, matching the
// source's compile-time knobs (spec §6).
type Config struct {
	UniqueMax int
	WorkerMax int
}

// Option configures a Registry.
type Option func(*Config)

// WithUniqueMax overrides the unique-thread identity count.
func WithUniqueMax(n int) Option { return func(c *Config) { c.UniqueMax = n } }

// WithWorkerMax overrides the worker-thread identity count.
func WithWorkerMax(n int) Option { return func(c *Config) { c.WorkerMax = n } }

// Registry holds the single global "assigned" bitset (spec §3,
// "Global state") and the configured partition sizes.
type Registry struct {
	assigned atomic.Cell64
	cfg      Config
}

// NewRegistry constructs a Registry with the spec's default partition
// sizes unless overridden, enforcing U+W+1 <= 64.
func NewRegistry(opts ...Option) (*Registry, rcode.Code) {
	cfg := Config{UniqueMax: DefaultUniqueMax, WorkerMax: DefaultWorkerMax}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.UniqueMax < 0 || cfg.WorkerMax < 0 || cfg.UniqueMax+cfg.WorkerMax+1 > 64 {
		return nil, rcode.Invalid(rcode.ModuleTID)
	}
	return &Registry{cfg: cfg}, rcode.OK
}

func (r *Registry) uniqueBit(index int) ID {
	if index < 0 || index >= r.cfg.UniqueMax {
		return None
	}
	return ID(1) << uint(1+index)
}

func (r *Registry) workerBit(index int) ID {
	if index < 0 || index >= r.cfg.WorkerMax {
		return None
	}
	return ID(1) << uint(1+r.cfg.UniqueMax+index)
}

// IsMain reports whether id is the main-thread bit.
func (r *Registry) IsMain(id ID) bool { return id == Main }

// IsUnique reports whether id falls in the configured unique range.
func (r *Registry) IsUnique(id ID) bool {
	if !IsSingleBit(id) {
		return false
	}
	for i := 0; i < r.cfg.UniqueMax; i++ {
		if id == r.uniqueBit(i) {
			return true
		}
	}
	return false
}

// IsWorker reports whether id falls in the configured worker range.
func (r *Registry) IsWorker(id ID) bool {
	if !IsSingleBit(id) {
		return false
	}
	for i := 0; i < r.cfg.WorkerMax; i++ {
		if id == r.workerBit(i) {
			return true
		}
	}
	return false
}

// AssignedSet returns a snapshot of the global assigned bitset.
func (r *Registry) AssignedSet() ID { return ID(r.assigned.Load(atomic.SeqCst)) }

// IsAssigned reports whether id's bit is currently held by some
// thread.
func (r *Registry) IsAssigned(id ID) bool {
	return Contains(r.AssignedSet(), id)
}

// Handle is the explicit per-goroutine identity token this module
// uses in place of implicit TLS (SPEC_FULL.md §5). It also carries a
// small extension-point map used by primitives that would otherwise
// need thread-local storage of their own — the Qutex MCS node (spec
// §4.6, §9 "MCS node ownership") and the Once reentry flag (spec
// §4.9) are both stored here rather than duplicated per package.
type Handle struct {
	id    ID
	mu    sync.Mutex
	extra map[string]any
}

// ID returns the identity this handle carries.
func (h *Handle) ID() ID { return h.id }

// Extra retrieves a value previously stored with SetExtra.
func (h *Handle) Extra(key string) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.extra[key]
	return v, ok
}

// SetExtra stores a value under key, scoped to this handle's
// lifetime. Used by primitives needing a per-thread slot without true
// TLS.
func (h *Handle) SetExtra(key string, val any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.extra == nil {
		h.extra = make(map[string]any)
	}
	h.extra[key] = val
}

// assign performs the OR-then-check-collision sequence the source
// uses (src/thread/tid.c): the bit is folded into the global set
// first, and a collision is detected — but never reverted — by
// inspecting the previous value the fetch-or returned. Reverting would
// incorrectly indicate the bit is not held by the thread that holds
// it.
func (r *Registry) assign(id ID) (*Handle, rcode.Code) {
	if id == None {
		return nil, rcode.Invalid(rcode.ModuleTID)
	}
	prev := ID(r.assigned.FetchOr(uint64(id), atomic.AcqRel))
	if prev&id != 0 {
		return nil, rcode.State(rcode.ModuleTID)
	}
	return &Handle{id: id}, rcode.OK
}

// AssignMain assigns the main-thread identity.
func (r *Registry) AssignMain() (*Handle, rcode.Code) { return r.assign(Main) }

// AssignUnique assigns the identity for unique-slot index.
func (r *Registry) AssignUnique(index int) (*Handle, rcode.Code) {
	bit := r.uniqueBit(index)
	if bit == None {
		return nil, rcode.Invalid(rcode.ModuleTID)
	}
	return r.assign(bit)
}

// AssignWorker assigns the identity for worker-slot index.
func (r *Registry) AssignWorker(index int) (*Handle, rcode.Code) {
	bit := r.workerBit(index)
	if bit == None {
		return nil, rcode.Invalid(rcode.ModuleTID)
	}
	return r.assign(bit)
}

// Clear ANDs h's bit out of the global assigned set. After Clear, h
// must not be reused.
func (r *Registry) Clear(h *Handle) rcode.Code {
	if h == nil {
		return rcode.Null(rcode.ModuleTID)
	}
	r.assigned.FetchAnd(^uint64(h.id), atomic.Release)
	h.id = None
	return rcode.OK
}

// ContainsSelf reports whether set contains h's identity.
func ContainsSelf(set ID, h *Handle) bool {
	if h == nil {
		return false
	}
	return Contains(set, h.id)
}
