package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitDefaultsMaxTimeout(t *testing.T) {
	c, code := Init(0)
	assert.True(t, code.IsOK())
	assert.Equal(t, DefaultMaxTimeout, c.MaxTimeout())
}

func TestNanosecondsNonDecreasing(t *testing.T) {
	c, _ := Init(0)
	a := c.Nanoseconds()
	time.Sleep(time.Millisecond)
	b := c.Nanoseconds()
	assert.GreaterOrEqual(t, b, a)
}

func TestToTimeoutClampsAtMax(t *testing.T) {
	c, _ := Init(10 * time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, c.ToTimeout(time.Hour))
	assert.Equal(t, 5*time.Millisecond, c.ToTimeout(5*time.Millisecond))
}

func TestToTimeoutRejectsNegative(t *testing.T) {
	c, _ := Init(0)
	assert.Equal(t, time.Duration(0), c.ToTimeout(-1))
}

func TestDeltaSign(t *testing.T) {
	c, _ := Init(0)
	assert.Greater(t, c.Delta(0, 1e9), 0.0)
	assert.Less(t, c.Delta(1e9, 0), 0.0)
}

func TestRemainingNeverNegative(t *testing.T) {
	past := time.Now().Add(-time.Second)
	assert.Equal(t, time.Duration(0), Remaining(past))
}
