package rcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOKIsZero(t *testing.T) {
	assert.Equal(t, Code(0), OK)
	assert.True(t, OK.IsOK())
}

func TestPackUnpackRoundTrip(t *testing.T) {
	c := New(OriginCore, ModuleMutex, KindDeadlock)
	assert.Equal(t, OriginCore, c.Origin())
	assert.Equal(t, ModuleMutex, c.Module())
	assert.Equal(t, KindDeadlock, c.Kind())
	assert.True(t, c.IsDeadlock())
	assert.True(t, c.IsError())
}

func TestInfoAndWarningSeverityKinds(t *testing.T) {
	assert.True(t, Timeout(ModuleFutex).IsInfo())
	assert.True(t, Busy(ModuleMutex).IsInfo())
	assert.True(t, Incomplete(ModulePool).IsIncomplete())
	assert.True(t, Incomplete(ModulePool).IsWarning())
}

func TestFatalSeverity(t *testing.T) {
	assert.True(t, Fatal(ModuleClock).IsFatal())
}

func TestErrorStringIncludesModuleAndKind(t *testing.T) {
	c := Forbidden(ModuleQutex)
	s := c.Error()
	assert.Contains(t, s, "qutex")
	assert.Contains(t, s, "forbidden")
}

func TestOriginExternalRoundTrips(t *testing.T) {
	c := New(OriginExternal, ModulePool, KindState)
	assert.Equal(t, OriginExternal, c.Origin())
}
