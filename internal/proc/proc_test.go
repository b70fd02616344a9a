package proc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/zotley/preemptos/internal/trap"
)

const testStackSize = 256

func TestSlotConservation(t *testing.T) {
	const maxProcs = 4
	tb := NewTable(maxProcs, testStackSize, 8)
	require.Equal(t, maxProcs, tb.FreeCount()+tb.AllocatedCount())

	p1, err := tb.Create(0x1000, "a", TypeUser, 0)
	require.NoError(t, err)
	_, err = tb.Create(0x1000, "b", TypeUser, 0)
	require.NoError(t, err)
	require.Equal(t, maxProcs, tb.FreeCount()+tb.AllocatedCount())

	require.NoError(t, tb.Destroy(p1.Pid))
	require.Equal(t, maxProcs, tb.FreeCount()+tb.AllocatedCount())
}

func TestCreateFailsWhenTableFull(t *testing.T) {
	tb := NewTable(1, testStackSize, 8)
	_, err := tb.Create(0, "idle", TypeKernel, 0)
	require.NoError(t, err)
	_, err = tb.Create(0, "overflow", TypeUser, 0)
	require.ErrorIs(t, err, ErrTableFull)
}

func TestPidsAreMonotonicAndUnique(t *testing.T) {
	tb := NewTable(4, testStackSize, 8)
	p1, _ := tb.Create(0, "a", TypeUser, 0)
	p2, _ := tb.Create(0, "b", TypeUser, 0)
	require.Equal(t, 0, p1.Pid)
	require.Equal(t, 1, p2.Pid)
}

func TestDestroyIdleAlwaysFails(t *testing.T) {
	tb := NewTable(2, testStackSize, 8)
	idle, err := tb.Create(0, "idle", TypeKernel, 0)
	require.NoError(t, err)
	require.Equal(t, IdlePID, idle.Pid)
	require.ErrorIs(t, tb.Destroy(idle.Pid), ErrDestroyIdle)
}

func TestDestroyUnknownPidFails(t *testing.T) {
	tb := NewTable(2, testStackSize, 8)
	require.ErrorIs(t, tb.Destroy(99), ErrNotFound)
}

func TestNameTruncation(t *testing.T) {
	tb := NewTable(2, testStackSize, 4)
	p, err := tb.Create(0, "verylongname", TypeUser, 0)
	require.NoError(t, err)
	require.Equal(t, "very", p.Name)
}

func TestTrapFrameLiesWithinOwnStack(t *testing.T) {
	tb := NewTable(2, testStackSize, 8)
	p, err := tb.Create(0x4242, "a", TypeUser, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(0x4242), p.Frame.IP)
	require.NotZero(t, p.Frame.Flags)

	base := uintptr(unsafe.Pointer(&p.Stack[0]))
	frame := uintptr(unsafe.Pointer(p.Frame))
	require.GreaterOrEqual(t, frame, base)
	require.LessOrEqual(t, frame+uintptr(trap.FrameSize), base+uintptr(len(p.Stack)))
}

func TestLookupByPidAndIndex(t *testing.T) {
	tb := NewTable(2, testStackSize, 8)
	p, _ := tb.Create(0, "a", TypeUser, 5)
	found, err := tb.LookupByPid(p.Pid)
	require.NoError(t, err)
	require.Same(t, p, found)

	byIdx, err := tb.LookupByIndex(0)
	require.NoError(t, err)
	require.Same(t, p, byIdx)
}
