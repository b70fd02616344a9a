package ksem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSched struct {
	waiting map[int]bool
}

func newFakeSched() *fakeSched { return &fakeSched{waiting: map[int]bool{}} }

func (f *fakeSched) Park(pid int) error {
	f.waiting[pid] = true
	return nil
}

func (f *fakeSched) Unpark(pid int) error {
	delete(f.waiting, pid)
	return nil
}

func TestNegativeInitRejected(t *testing.T) {
	tb := NewTable(2, 8, newFakeSched())
	_, err := tb.InitOne(-1)
	require.ErrorIs(t, err, ErrNegativeInit)
}

// S5 — semaphore drain.
func TestSemaphoreDrain(t *testing.T) {
	sched := newFakeSched()
	tb := NewTable(2, 8, sched)
	id, err := tb.InitOne(1)
	require.NoError(t, err)

	require.NoError(t, tb.Wait(id, 100)) // P: succeeds immediately
	count, _ := tb.Count(id)
	require.Equal(t, 0, count)

	require.NoError(t, tb.Wait(id, 101)) // Q: parks
	require.True(t, sched.waiting[101])
	require.NoError(t, tb.Wait(id, 102)) // R: parks
	require.True(t, sched.waiting[102])

	require.NoError(t, tb.Post(id)) // wakes one of {Q,R}
	count, _ = tb.Count(id)
	require.Equal(t, 0, count)
	woken := !sched.waiting[101] || !sched.waiting[102]
	require.True(t, woken)

	require.NoError(t, tb.Post(id)) // wakes the other
	count, _ = tb.Count(id)
	require.Equal(t, 0, count)
	require.False(t, sched.waiting[101])
	require.False(t, sched.waiting[102])
}

func TestCountPositiveImpliesNoWaiters(t *testing.T) {
	sched := newFakeSched()
	tb := NewTable(2, 8, sched)
	id, _ := tb.InitOne(0)
	require.NoError(t, tb.Post(id))
	count, _ := tb.Count(id)
	require.Equal(t, 1, count)
	waiters, _ := tb.WaiterSnapshot(id)
	require.Empty(t, waiters)
}

func TestFIFOWakeupOrder(t *testing.T) {
	sched := newFakeSched()
	tb := NewTable(2, 8, sched)
	id, _ := tb.InitOne(0)
	require.NoError(t, tb.Wait(id, 1))
	require.NoError(t, tb.Wait(id, 2))
	waiters, _ := tb.WaiterSnapshot(id)
	require.Equal(t, []int{1, 2}, waiters)
}

func TestOutOfRangeAndUnallocated(t *testing.T) {
	tb := NewTable(1, 8, newFakeSched())
	require.ErrorIs(t, tb.Wait(5, 1), ErrOutOfRange)
	require.ErrorIs(t, tb.Wait(0, 1), ErrNotAllocated)
}
