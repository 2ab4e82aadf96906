package atomic

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCell32LoadStore(t *testing.T) {
	c := NewCell32(0)
	c.Store(42, SeqCst)
	assert.Equal(t, uint32(42), c.Load(SeqCst))
}

func TestCell32CompareExchange(t *testing.T) {
	c := NewCell32(1)
	_, ok := c.CompareExchange(1, 2, AcqRel, Relaxed)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), c.Load(Relaxed))

	observed, ok := c.CompareExchange(1, 3, AcqRel, Relaxed)
	assert.False(t, ok)
	assert.Equal(t, uint32(2), observed)
}

func TestCell32FetchOps(t *testing.T) {
	c := NewCell32(10)
	assert.Equal(t, uint32(10), c.FetchAdd(5, SeqCst))
	assert.Equal(t, uint32(15), c.Load(SeqCst))
	assert.Equal(t, uint32(15), c.FetchSub(5, SeqCst))
	assert.Equal(t, uint32(10), c.Load(SeqCst))
}

func TestCell32ConcurrentFetchAdd(t *testing.T) {
	c := NewCell32(0)
	var wg sync.WaitGroup
	const n = 1000
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.FetchAdd(1, SeqCst)
		}()
	}
	wg.Wait()
	assert.Equal(t, uint32(n), c.Load(SeqCst))
}

func TestCellBoolTestAndSet(t *testing.T) {
	c := NewCellBool(false)
	assert.False(t, c.TestAndSet(SeqCst))
	assert.True(t, c.Load(SeqCst))
	c.Clear(SeqCst)
	assert.False(t, c.Load(SeqCst))
}

func TestLoadRejectsReleaseOrder(t *testing.T) {
	c := NewCell32(0)
	assert.Panics(t, func() { c.Load(Release) })
}

func TestStoreRejectsAcquireOrder(t *testing.T) {
	c := NewCell32(0)
	assert.Panics(t, func() { c.Store(1, Acquire) })
}

func TestCell64FetchNand(t *testing.T) {
	c := NewCell64(0b1111)
	old := c.FetchNand(0b1010, SeqCst)
	assert.Equal(t, uint64(0b1111), old)
	assert.Equal(t, ^uint64(0b1010), c.Load(SeqCst))
}

func TestCellIntFetchSub(t *testing.T) {
	c := NewCellInt(10)
	assert.Equal(t, int64(10), c.FetchSub(3, SeqCst))
	assert.Equal(t, int64(7), c.Load(SeqCst))
}

// TestFetchOpsAcceptReleaseFamilyOrders guards against FetchAnd/Or/Xor/Nand
// forwarding a Release/AcqRel RMW order straight into the internal
// Load/CAS-failure check, which would panic per §3's allowed-subset
// rule (Release/AcqRel are legal on a fetch-op itself, not on the bare
// load or CAS-failure branch the retry loop performs internally).
func TestFetchOpsAcceptReleaseFamilyOrders(t *testing.T) {
	c32 := NewCell32(0b1100)
	assert.NotPanics(t, func() { c32.FetchOr(0b0011, Release) })
	assert.Equal(t, uint32(0b1111), c32.Load(SeqCst))
	assert.NotPanics(t, func() { c32.FetchAnd(0b0111, AcqRel) })
	assert.NotPanics(t, func() { c32.FetchXor(0b1111, Release) })
	assert.NotPanics(t, func() { c32.FetchNand(0b1111, AcqRel) })

	c64 := NewCell64(0)
	assert.NotPanics(t, func() { c64.FetchOr(1, AcqRel) })
	assert.NotPanics(t, func() { c64.FetchAnd(1, Release) })
	assert.NotPanics(t, func() { c64.FetchXor(1, AcqRel) })
	assert.NotPanics(t, func() { c64.FetchNand(1, Release) })

	cInt := NewCellInt(0)
	assert.NotPanics(t, func() { cInt.FetchOr(1, AcqRel) })
	assert.NotPanics(t, func() { cInt.FetchAnd(1, Release) })
	assert.NotPanics(t, func() { cInt.FetchXor(1, AcqRel) })
	assert.NotPanics(t, func() { cInt.FetchNand(1, Release) })
}
