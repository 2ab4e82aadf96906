package atomic

import "runtime"

// ThreadFence establishes a synchronizes-with edge between threads for
// the given order. sync/atomic operations in Go already carry full
// sequential-consistency fences, so this is a documentation-only no-op
// kept for call sites that mirror the source's explicit fences.
func ThreadFence(_ Order) {}

// SignalFence affects only compiler reordering, not inter-thread
// visibility — used around signal handlers in the source. Go's
// compiler does not reorder across runtime.Gosched in a way that
// matters here; this is kept as a documented no-op matching the
// source's API shape rather than an operation with observable effect.
func SignalFence(_ Order) {
	runtime.KeepAlive(struct{}{})
}
