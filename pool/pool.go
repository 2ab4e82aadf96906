// Package pool implements the thread pool of spec §4.11: a fixed
// array of slots partitioned into one main slot, a configurable
// number of unique slots, and a configurable number of worker slots,
// with generation-counted handles guarding against stale-handle reuse
// (spec §9 "Slot meta packing").
//
// Go has no equivalent of a raw OS thread handle to join; each slot's
// "native thread" is a goroutine, and Collect* blocks on the slot's
// state transitioning to Finished/Incomplete rather than joining a
// pthread_t. Best-effort name application (spec §4.11 step 2) is a
// debug log line only. Slots carry no affinity mask or priority hint
// and the trampoline neither applies nor logs either; Go exposes no
// portable affinity/priority API for a goroutine.
package pool

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Enlarium/descent-engine-sub000/atomic"
	"github.com/Enlarium/descent-engine-sub000/rcode"
	"github.com/Enlarium/descent-engine-sub000/tid"
)

// SlotState is the slot lifecycle state of spec §3 "Slot states".
type SlotState int32

const (
	StateInvalid SlotState = iota
	StateUnused
	StateReserved
	StateStarting
	StateRunning
	StateFinished
	StateDetached
	StateIncomplete
)

func (s SlotState) String() string {
	switch s {
	case StateUnused:
		return "unused"
	case StateReserved:
		return "reserved"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateDetached:
		return "detached"
	case StateIncomplete:
		return "incomplete"
	default:
		return "invalid"
	}
}

// ThreadFunc is the function a spawned slot runs, receiving the
// identity assigned to it for the duration of the call.
type ThreadFunc func(self *tid.Handle, argument any) rcode.Code

// Handle is the opaque 64-bit {slot_index, generation} thread handle
// of spec §3.
type Handle uint64

func packHandle(slotIndex int, generation uint32) Handle {
	return Handle(uint64(uint32(slotIndex))<<32 | uint64(generation))
}

func (h Handle) slotIndex() int      { return int(uint32(h >> 32)) }
func (h Handle) generation() uint32  { return uint32(h) }

func packMeta(state SlotState, generation uint32) uint64 {
	return uint64(uint32(state))<<32 | uint64(generation)
}

func unpackMeta(meta uint64) (SlotState, uint32) {
	return SlotState(int32(uint32(meta >> 32))), uint32(meta)
}

type slot struct {
	name     string
	function ThreadFunc
	argument any
	meta     atomic.Cell64
	code     atomic.Cell32
}

// Config bounds the pool's partition sizes, matching spec §6's
// compile-time knobs.
type Config struct {
	UniqueMax int
	WorkerMax int
	NameMax   int
}

// Option configures a Pool.
type Option func(*Config)

func WithUniqueMax(n int) Option { return func(c *Config) { c.UniqueMax = n } }
func WithWorkerMax(n int) Option { return func(c *Config) { c.WorkerMax = n } }
func WithNameMax(n int) Option   { return func(c *Config) { c.NameMax = n } }

// Pool is the fixed-size slot array plus its identity registry.
type Pool struct {
	registry *tid.Registry
	cfg      Config
	unique   []*slot
	worker   []*slot
	logger   zerolog.Logger
}

// New constructs a Pool with the spec's default partition sizes
// unless overridden.
func New(opts ...Option) (*Pool, rcode.Code) {
	cfg := Config{UniqueMax: tid.DefaultUniqueMax, WorkerMax: tid.DefaultWorkerMax, NameMax: 16}
	for _, o := range opts {
		o(&cfg)
	}
	registry, code := tid.NewRegistry(tid.WithUniqueMax(cfg.UniqueMax), tid.WithWorkerMax(cfg.WorkerMax))
	if !code.IsOK() {
		return nil, code
	}
	p := &Pool{
		registry: registry,
		cfg:      cfg,
		unique:   make([]*slot, cfg.UniqueMax),
		worker:   make([]*slot, cfg.WorkerMax),
		logger:   zerolog.New(os.Stderr).With().Timestamp().Str("module", "pool").Logger(),
	}
	for i := range p.unique {
		p.unique[i] = &slot{}
		p.unique[i].meta.Store(packMeta(StateUnused, 0), atomic.Relaxed)
	}
	for i := range p.worker {
		p.worker[i] = &slot{}
		p.worker[i].meta.Store(packMeta(StateUnused, 0), atomic.Relaxed)
	}
	return p, rcode.OK
}

// Registry exposes the pool's identity registry, since the main
// thread itself must register before it can call any Spawn/Collect
// function.
func (p *Pool) Registry() *tid.Registry { return p.registry }

func (p *Pool) requireMain(caller *tid.Handle) rcode.Code {
	if caller == nil {
		return rcode.Null(rcode.ModulePool)
	}
	if !p.registry.IsMain(caller.ID()) {
		return rcode.Forbidden(rcode.ModulePool)
	}
	return rcode.OK
}

// SpawnUnique reserves unique slot id and starts fn on a new
// goroutine. Callable only from the main thread.
func (p *Pool) SpawnUnique(caller *tid.Handle, id int, fn ThreadFunc, argument any, name string) (Handle, rcode.Code) {
	if code := p.requireMain(caller); !code.IsOK() {
		return 0, code
	}
	if id < 0 || id >= len(p.unique) || fn == nil {
		return 0, rcode.Invalid(rcode.ModulePool)
	}
	s := p.unique[id]
	gen, code := reserve(s)
	if !code.IsOK() {
		return 0, code
	}
	s.name, s.function, s.argument = clampName(name, p.cfg.NameMax), fn, argument
	s.meta.Store(packMeta(StateStarting, gen), atomic.Release)

	slotIndex := 1 + id
	go p.trampoline(s, slotIndex, gen, uniqueKind, id)
	return packHandle(slotIndex, gen), rcode.OK
}

// SpawnWorker reserves up to count worker slots and starts fn on each
// with the same argument. If fewer than count slots were available,
// it returns the handles that did start alongside an Incomplete
// warning, per spec §4.11.
func (p *Pool) SpawnWorker(caller *tid.Handle, count int, fn ThreadFunc, argument any) ([]Handle, rcode.Code) {
	if code := p.requireMain(caller); !code.IsOK() {
		return nil, code
	}
	if count <= 0 || fn == nil {
		return nil, rcode.Invalid(rcode.ModulePool)
	}

	handles := make([]Handle, 0, count)
	for idx := 0; idx < len(p.worker) && len(handles) < count; idx++ {
		s := p.worker[idx]
		gen, code := reserve(s)
		if !code.IsOK() {
			continue
		}
		s.name, s.function, s.argument = "", fn, argument
		s.meta.Store(packMeta(StateStarting, gen), atomic.Release)

		slotIndex := 1 + len(p.unique) + idx
		go p.trampoline(s, slotIndex, gen, workerKind, idx)
		handles = append(handles, packHandle(slotIndex, gen))
	}
	if len(handles) < count {
		return handles, rcode.Incomplete(rcode.ModulePool)
	}
	return handles, rcode.OK
}

// DetachUnique waives collection of unique slot id: once its function
// returns, the trampoline recycles the slot straight to Unused instead
// of parking it in Finished for CollectUnique to reap. Main-thread-only.
func (p *Pool) DetachUnique(caller *tid.Handle, id int) rcode.Code {
	if code := p.requireMain(caller); !code.IsOK() {
		return code
	}
	if id < 0 || id >= len(p.unique) {
		return rcode.Invalid(rcode.ModulePool)
	}
	return detach(p.unique[id])
}

// DetachWorker waives collection of worker slot id, the worker
// equivalent of DetachUnique.
func (p *Pool) DetachWorker(caller *tid.Handle, id int) rcode.Code {
	if code := p.requireMain(caller); !code.IsOK() {
		return code
	}
	if id < 0 || id >= len(p.worker) {
		return rcode.Invalid(rcode.ModulePool)
	}
	return detach(p.worker[id])
}

// detach marks s Detached from any pre-Finished state. A concurrent
// trampoline finishing step observes the Detached state and recycles
// the slot to Unused directly (see trampoline below) rather than
// parking it in Finished.
func detach(s *slot) rcode.Code {
	for {
		meta := s.meta.Load(atomic.Acquire)
		state, gen := unpackMeta(meta)
		switch state {
		case StateReserved, StateStarting, StateRunning:
			if _, ok := s.meta.CompareExchange(meta, packMeta(StateDetached, gen), atomic.AcqRel, atomic.Relaxed); ok {
				return rcode.OK
			}
		default:
			return rcode.State(rcode.ModulePool)
		}
	}
}

func reserve(s *slot) (uint32, rcode.Code) {
	for {
		meta := s.meta.Load(atomic.Acquire)
		state, gen := unpackMeta(meta)
		if state != StateUnused {
			return 0, rcode.State(rcode.ModulePool)
		}
		if _, ok := s.meta.CompareExchange(meta, packMeta(StateReserved, gen), atomic.AcqRel, atomic.Relaxed); ok {
			return gen, rcode.OK
		}
	}
}

func clampName(name string, max int) string {
	if max <= 0 || len(name) < max {
		return name
	}
	return name[:max-1]
}

type slotKind int

const (
	uniqueKind slotKind = iota
	workerKind
)

// trampoline is the entry point every spawned goroutine runs,
// mirroring the source's thread_function_wrapper steps (spec §4.11).
func (p *Pool) trampoline(s *slot, slotIndex int, gen uint32, kind slotKind, index int) {
	var h *tid.Handle
	var code rcode.Code
	switch kind {
	case uniqueKind:
		h, code = p.registry.AssignUnique(index)
	default:
		h, code = p.registry.AssignWorker(index)
	}
	if !code.IsOK() {
		p.logger.Warn().Int("slot", slotIndex).Str("code", code.Kind().String()).Msg("failed to assign identity to spawned slot")
		s.code.Store(uint32(int32(code)), atomic.Release)
		s.meta.Store(packMeta(StateIncomplete, gen), atomic.Release)
		return
	}
	if s.name != "" {
		p.logger.Debug().Int("slot", slotIndex).Str("name", s.name).Msg("slot name applied (best effort, no OS-level rename available)")
	}

	s.meta.CompareExchange(packMeta(StateStarting, gen), packMeta(StateRunning, gen), atomic.AcqRel, atomic.Relaxed)

	result := s.function(h, s.argument)
	s.code.Store(uint32(int32(result)), atomic.Release)

	s.name, s.function, s.argument = "", nil, nil

	for {
		meta := s.meta.Load(atomic.Acquire)
		state, g := unpackMeta(meta)
		if state == StateDetached {
			if _, ok := s.meta.CompareExchange(meta, packMeta(StateUnused, g+1), atomic.AcqRel, atomic.Relaxed); ok {
				break
			}
			continue
		}
		if _, ok := s.meta.CompareExchange(meta, packMeta(StateFinished, g), atomic.AcqRel, atomic.Relaxed); ok {
			break
		}
	}
	p.registry.Clear(h)
}

// CollectUnique blocks until unique slot id finishes, then resets it
// to Unused at the next generation. Main-thread-only.
func (p *Pool) CollectUnique(caller *tid.Handle, id int) rcode.Code {
	if code := p.requireMain(caller); !code.IsOK() {
		return code
	}
	if id < 0 || id >= len(p.unique) {
		return rcode.Invalid(rcode.ModulePool)
	}
	return collect(p.unique[id])
}

// CollectWorker blocks until every currently-active worker slot
// finishes, then resets each to Unused. Main-thread-only.
func (p *Pool) CollectWorker(caller *tid.Handle) rcode.Code {
	if code := p.requireMain(caller); !code.IsOK() {
		return code
	}
	var last rcode.Code = rcode.OK
	for _, s := range p.worker {
		state, _ := unpackMeta(s.meta.Load(atomic.Acquire))
		if state == StateUnused {
			continue
		}
		if code := collect(s); !code.IsOK() {
			last = code
		}
	}
	return last
}

func collect(s *slot) rcode.Code {
	for {
		meta := s.meta.Load(atomic.Acquire)
		state, gen := unpackMeta(meta)
		switch state {
		case StateFinished, StateIncomplete:
			if _, ok := s.meta.CompareExchange(meta, packMeta(StateUnused, gen+1), atomic.AcqRel, atomic.Relaxed); ok {
				return rcode.OK
			}
		case StateUnused, StateInvalid, StateDetached:
			return rcode.State(rcode.ModulePool)
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

// StateUnique returns the current state of unique slot id.
// Non-main callers get Invalid.
func (p *Pool) StateUnique(caller *tid.Handle, id int) (SlotState, rcode.Code) {
	if code := p.requireMain(caller); !code.IsOK() {
		return StateInvalid, code
	}
	if id < 0 || id >= len(p.unique) {
		return StateInvalid, rcode.Invalid(rcode.ModulePool)
	}
	state, _ := unpackMeta(p.unique[id].meta.Load(atomic.Acquire))
	return state, rcode.OK
}

// CodeUnique returns the return code the spawned function stored in
// unique slot id.
func (p *Pool) CodeUnique(caller *tid.Handle, id int) (rcode.Code, rcode.Code) {
	if code := p.requireMain(caller); !code.IsOK() {
		return 0, code
	}
	if id < 0 || id >= len(p.unique) {
		return 0, rcode.Invalid(rcode.ModulePool)
	}
	return rcode.Code(int32(p.unique[id].code.Load(atomic.Acquire))), rcode.OK
}

// StateWorker returns the current state of worker slot id.
func (p *Pool) StateWorker(caller *tid.Handle, id int) (SlotState, rcode.Code) {
	if code := p.requireMain(caller); !code.IsOK() {
		return StateInvalid, code
	}
	if id < 0 || id >= len(p.worker) {
		return StateInvalid, rcode.Invalid(rcode.ModulePool)
	}
	state, _ := unpackMeta(p.worker[id].meta.Load(atomic.Acquire))
	return state, rcode.OK
}

// CodeWorker returns the return code stored in worker slot id.
func (p *Pool) CodeWorker(caller *tid.Handle, id int) (rcode.Code, rcode.Code) {
	if code := p.requireMain(caller); !code.IsOK() {
		return 0, code
	}
	if id < 0 || id >= len(p.worker) {
		return 0, rcode.Invalid(rcode.ModulePool)
	}
	return rcode.Code(int32(p.worker[id].code.Load(atomic.Acquire))), rcode.OK
}

// ValidateUnique reports whether h still refers to the live
// generation of its unique slot (spec §8 invariant 4).
func (p *Pool) ValidateUnique(h Handle) rcode.Code {
	idx := h.slotIndex() - 1
	if idx < 0 || idx >= len(p.unique) {
		return rcode.Invalid(rcode.ModulePool)
	}
	_, gen := unpackMeta(p.unique[idx].meta.Load(atomic.Acquire))
	if gen != h.generation() {
		return rcode.State(rcode.ModulePool)
	}
	return rcode.OK
}

// ValidateWorker reports whether h still refers to the live
// generation of its worker slot.
func (p *Pool) ValidateWorker(h Handle) rcode.Code {
	idx := h.slotIndex() - 1 - len(p.unique)
	if idx < 0 || idx >= len(p.worker) {
		return rcode.Invalid(rcode.ModulePool)
	}
	_, gen := unpackMeta(p.worker[idx].meta.Load(atomic.Acquire))
	if gen != h.generation() {
		return rcode.State(rcode.ModulePool)
	}
	return rcode.OK
}
