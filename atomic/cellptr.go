package atomic

import (
	"sync/atomic"
	"unsafe"
)

// CellPtr is a naturally-aligned pointer-sized atomic cell, stored as
// an unsafe.Pointer so it can hold any pointer shape (used by Qutex's
// tail and its queue nodes' next pointers).
type CellPtr struct {
	v unsafe.Pointer
}

func NewCellPtr(val unsafe.Pointer) *CellPtr { return &CellPtr{v: val} }

func (c *CellPtr) Load(order Order) unsafe.Pointer {
	validateLoad(order)
	return atomic.LoadPointer(&c.v)
}

func (c *CellPtr) Store(val unsafe.Pointer, order Order) {
	validateStore(order)
	atomic.StorePointer(&c.v, val)
}

func (c *CellPtr) Exchange(val unsafe.Pointer, _ Order) unsafe.Pointer {
	return atomic.SwapPointer(&c.v, val)
}

func (c *CellPtr) CompareExchange(expected, desired unsafe.Pointer, _, failureOrder Order) (observed unsafe.Pointer, swapped bool) {
	validateFailureOrder(failureOrder)
	if atomic.CompareAndSwapPointer(&c.v, expected, desired) {
		return desired, true
	}
	return atomic.LoadPointer(&c.v), false
}

func (c *CellPtr) IsLockFree() bool { return true }
