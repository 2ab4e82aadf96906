package atomic

import "sync/atomic"

// Cell64 is a naturally-aligned 64-bit atomic cell. On 32-bit
// platforms the embedding struct must keep this field 64-bit aligned
// (first word of the struct, or heap-allocated) per sync/atomic's own
// alignment requirement — the same "naturally aligned" contract the
// source places on all atomic cells (spec §4.1).
type Cell64 struct {
	v uint64
}

func NewCell64(val uint64) *Cell64 { return &Cell64{v: val} }

func (c *Cell64) Load(order Order) uint64 {
	validateLoad(order)
	return atomic.LoadUint64(&c.v)
}

func (c *Cell64) Store(val uint64, order Order) {
	validateStore(order)
	atomic.StoreUint64(&c.v, val)
}

func (c *Cell64) Exchange(val uint64, _ Order) uint64 {
	return atomic.SwapUint64(&c.v, val)
}

func (c *Cell64) CompareExchange(expected, desired uint64, _, failureOrder Order) (observed uint64, swapped bool) {
	validateFailureOrder(failureOrder)
	if atomic.CompareAndSwapUint64(&c.v, expected, desired) {
		return desired, true
	}
	return atomic.LoadUint64(&c.v), false
}

func (c *Cell64) FetchAdd(delta uint64, _ Order) uint64 { return atomic.AddUint64(&c.v, delta) - delta }
func (c *Cell64) AddAndFetch(delta uint64, _ Order) uint64 { return atomic.AddUint64(&c.v, delta) }
func (c *Cell64) FetchSub(delta uint64, _ Order) uint64 {
	return atomic.AddUint64(&c.v, ^(delta - 1)) + delta
}
func (c *Cell64) SubAndFetch(delta uint64, _ Order) uint64 { return atomic.AddUint64(&c.v, ^(delta - 1)) }

func (c *Cell64) FetchAnd(mask uint64, order Order) uint64 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, old&mask, order, failOrder); ok {
			return old
		}
	}
}

func (c *Cell64) FetchOr(mask uint64, order Order) uint64 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, old|mask, order, failOrder); ok {
			return old
		}
	}
}

func (c *Cell64) FetchXor(mask uint64, order Order) uint64 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, old^mask, order, failOrder); ok {
			return old
		}
	}
}

func (c *Cell64) FetchNand(mask uint64, order Order) uint64 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, ^(old & mask), order, failOrder); ok {
			return old
		}
	}
}

func (c *Cell64) IsLockFree() bool { return true }
