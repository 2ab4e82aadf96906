package atomic

import "sync/atomic"

// Cell32 is a naturally-aligned 32-bit atomic cell. The zero Cell32 is
// ready to use.
type Cell32 struct {
	v uint32
}

// NewCell32 returns a Cell32 initialized to val.
func NewCell32(val uint32) *Cell32 { return &Cell32{v: val} }

func (c *Cell32) Load(order Order) uint32 {
	validateLoad(order)
	return atomic.LoadUint32(&c.v)
}

func (c *Cell32) Store(val uint32, order Order) {
	validateStore(order)
	atomic.StoreUint32(&c.v, val)
}

func (c *Cell32) Exchange(val uint32, _ Order) uint32 {
	return atomic.SwapUint32(&c.v, val)
}

// CompareExchange attempts *c == expected -> desired. It returns a
// value and whether the swap happened: on success the value is desired
// (the cell's new contents); on failure it is the value observed in c,
// the caller's updated "expected" for a retry loop, matching
// compare_exchange's out-parameter semantics.
func (c *Cell32) CompareExchange(expected, desired uint32, _, failureOrder Order) (observed uint32, swapped bool) {
	validateFailureOrder(failureOrder)
	if atomic.CompareAndSwapUint32(&c.v, expected, desired) {
		return desired, true
	}
	return atomic.LoadUint32(&c.v), false
}

func (c *Cell32) FetchAdd(delta uint32, _ Order) uint32 { return atomic.AddUint32(&c.v, delta) - delta }
func (c *Cell32) AddAndFetch(delta uint32, _ Order) uint32 { return atomic.AddUint32(&c.v, delta) }
func (c *Cell32) FetchSub(delta uint32, _ Order) uint32 {
	return atomic.AddUint32(&c.v, ^(delta - 1)) + delta
}
func (c *Cell32) SubAndFetch(delta uint32, _ Order) uint32 { return atomic.AddUint32(&c.v, ^(delta - 1)) }

func (c *Cell32) FetchAnd(mask uint32, order Order) uint32 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, old&mask, order, failOrder); ok {
			return old
		}
	}
}

func (c *Cell32) FetchOr(mask uint32, order Order) uint32 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, old|mask, order, failOrder); ok {
			return old
		}
	}
}

func (c *Cell32) FetchXor(mask uint32, order Order) uint32 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, old^mask, order, failOrder); ok {
			return old
		}
	}
}

// FetchNand computes ^(old & mask), matching C's fetch_nand.
func (c *Cell32) FetchNand(mask uint32, order Order) uint32 {
	loadOrder, failOrder := rmwLoadOrder(order), rmwFailureOrder(order)
	for {
		old := c.Load(loadOrder)
		if _, ok := c.CompareExchange(old, ^(old & mask), order, failOrder); ok {
			return old
		}
	}
}

// IsLockFree reports whether operations on this cell shape are
// lock-free. sync/atomic's 32-bit operations are lock-free on every
// architecture Go itself supports.
func (c *Cell32) IsLockFree() bool { return true }
