// Package atomic provides the five typed atomic cells the rest of this
// module is built from: 32-bit, 64-bit, int, pointer-sized, and bool.
// Every operation accepts a memory Order, matching the C11-style
// ordering taxonomy the component this module replaces exposed.
//
// Go's sync/atomic has no per-call ordering: every operation it offers
// is already sequentially consistent. Order is therefore accepted and
// validated (the same way the source forbids e.g. a load with Release)
// but does not change which sync/atomic builtin executes underneath —
// see SPEC_FULL.md §4 for the reasoning.
package atomic

import "fmt"

// Order names a position in the standard C11-derived memory model.
type Order uint8

const (
	Relaxed Order = iota
	Acquire
	Release
	AcqRel
	SeqCst
)

func (o Order) String() string {
	switch o {
	case Relaxed:
		return "relaxed"
	case Acquire:
		return "acquire"
	case Release:
		return "release"
	case AcqRel:
		return "acq_rel"
	case SeqCst:
		return "seq_cst"
	default:
		return "unknown"
	}
}

// validateLoad panics on an order that a load may never carry
// (Release, AcqRel), mirroring the source's allowed-subset rule.
func validateLoad(o Order) {
	if o == Release || o == AcqRel {
		panic(fmt.Sprintf("atomic: load may not use order %s", o))
	}
}

// validateStore panics on an order that a store may never carry
// (Acquire, AcqRel).
func validateStore(o Order) {
	if o == Acquire || o == AcqRel {
		panic(fmt.Sprintf("atomic: store may not use order %s", o))
	}
}

// validateFailureOrder panics on an order a CAS failure-order may
// never carry (Release, AcqRel) — the failure path never publishes.
func validateFailureOrder(o Order) {
	if o == Release || o == AcqRel {
		panic(fmt.Sprintf("atomic: compare_exchange failure order may not use %s", o))
	}
}

// rmwLoadOrder derives a load-legal order from the order a Fetch* RMW
// loop was called with, downgrading Release/AcqRel to Acquire: the
// loop's initial read is still a plain load and may not carry an order
// validateLoad rejects.
func rmwLoadOrder(o Order) Order {
	if o == Release || o == AcqRel {
		return Acquire
	}
	return o
}

// rmwFailureOrder derives a CAS-failure-legal order from a Fetch* RMW
// order, downgrading Release/AcqRel to Relaxed to match
// validateFailureOrder's allowed subset.
func rmwFailureOrder(o Order) Order {
	if o == Release || o == AcqRel {
		return Relaxed
	}
	return o
}
