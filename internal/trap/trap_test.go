package trap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewInStackCarvesFrameWithinStack(t *testing.T) {
	stack := make([]byte, 256)
	f := NewInStack(stack, 0x1000)
	require.Equal(t, uint32(0x1000), f.IP)
	require.Equal(t, FlagsInterruptEnable, f.Flags)

	off := len(stack) - FrameSize
	require.GreaterOrEqual(t, int(f.RSP), 0)
	require.Equal(t, uint32(off), f.RSP)
}

func TestNewInStackPanicsWhenStackTooSmall(t *testing.T) {
	require.Panics(t, func() {
		NewInStack(make([]byte, 1), 0)
	})
}

func TestSyscallAccessors(t *testing.T) {
	stack := make([]byte, 256)
	f := NewInStack(stack, 0)
	f.RA, f.RB, f.RC, f.RD = 7, 1, 2, 3
	require.Equal(t, uint32(7), f.SyscallID())
	a, b, c := f.SyscallArgs()
	require.Equal(t, uint32(1), a)
	require.Equal(t, uint32(2), b)
	require.Equal(t, uint32(3), c)

	f.SetReturn(-1)
	require.Equal(t, uint32(0xFFFFFFFF), f.RA)
}

type fakeMachine struct {
	ranScheduler bool
	active       int
	panicMsg     string
}

func (f *fakeMachine) RunScheduler()    { f.ranScheduler = true }
func (f *fakeMachine) ActivePID() int   { return f.active }
func (f *fakeMachine) Panic(msg string) { f.panicMsg = msg }

func TestRaiseDispatchesAndRunsScheduler(t *testing.T) {
	m := &fakeMachine{active: 3}
	b := NewBoundary(m)
	called := false
	require.NoError(t, b.Register(VectorTimer, func() { called = true }))
	b.Seal()

	b.Raise(VectorTimer)
	require.True(t, called)
	require.True(t, m.ranScheduler)
	require.Empty(t, m.panicMsg)
}

func TestRaiseUnregisteredVectorPanics(t *testing.T) {
	m := &fakeMachine{active: 0}
	b := NewBoundary(m)
	b.Raise(VectorKeyboard)
	require.NotEmpty(t, m.panicMsg)
}

func TestRaiseNoActiveProcessAfterSchedulerPanics(t *testing.T) {
	m := &fakeMachine{active: -1}
	b := NewBoundary(m)
	require.NoError(t, b.Register(VectorSyscall, func() {}))
	b.Seal()
	b.Raise(VectorSyscall)
	require.NotEmpty(t, m.panicMsg)
}

func TestRegisterFailsAfterSeal(t *testing.T) {
	m := &fakeMachine{}
	b := NewBoundary(m)
	b.Seal()
	require.Error(t, b.Register(VectorTimer, func() {}))
}

func TestRegisterOutOfRangeVectorFails(t *testing.T) {
	m := &fakeMachine{}
	b := NewBoundary(m)
	require.Error(t, b.Register(Vector(999), func() {}))
}
