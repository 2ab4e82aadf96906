package atomic

import "sync/atomic"

// CellInt is a naturally-aligned signed-int atomic cell, stored as a
// 64-bit word for a platform-independent width.
type CellInt struct {
	v int64
}

func NewCellInt(val int64) *CellInt { return &CellInt{v: val} }

func (c *CellInt) Load(order Order) int64 {
	validateLoad(order)
	return atomic.LoadInt64(&c.v)
}

func (c *CellInt) Store(val int64, order Order) {
	validateStore(order)
	atomic.StoreInt64(&c.v, val)
}

func (c *CellInt) Exchange(val int64, _ Order) int64 {
	return atomic.SwapInt64(&c.v, val)
}

func (c *CellInt) CompareExchange(expected, desired int64, _, failureOrder Order) (observed int64, swapped bool) {
	validateFailureOrder(failureOrder)
	if atomic.CompareAndSwapInt64(&c.v, expected, desired) {
		return desired, true
	}
	return atomic.LoadInt64(&c.v), false
}

func (c *CellInt) FetchAdd(delta int64, _ Order) int64 { return atomic.AddInt64(&c.v, delta) - delta }
func (c *CellInt) AddAndFetch(delta int64, _ Order) int64 { return atomic.AddInt64(&c.v, delta) }
func (c *CellInt) FetchSub(delta int64, _ Order) int64 { return atomic.AddInt64(&c.v, -delta) + delta }
func (c *CellInt) SubAndFetch(delta int64, _ Order) int64 { return atomic.AddInt64(&c.v, -delta) }

func (c *CellInt) FetchAnd(mask int64, order Order) int64 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, old&mask, order, failOrder); ok {
			return old
		}
	}
}

func (c *CellInt) FetchOr(mask int64, order Order) int64 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, old|mask, order, failOrder); ok {
			return old
		}
	}
}

func (c *CellInt) FetchXor(mask int64, order Order) int64 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, old^mask, order, failOrder); ok {
			return old
		}
	}
}

func (c *CellInt) FetchNand(mask int64, order Order) int64 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, ^(old & mask), order, failOrder); ok {
			return old
		}
	}
}

func (c *CellInt) IsLockFree() bool { return true }
