package sched

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zotley/preemptos/internal/proc"
)

const testStackSize = 256

func newFixture(t *testing.T, timeslice uint64) (*proc.Table, *Scheduler) {
	t.Helper()
	tb := proc.NewTable(8, testStackSize, 16)
	idle, err := tb.Create(0, "idle", proc.TypeKernel, 0)
	require.NoError(t, err)
	require.Equal(t, proc.IdlePID, idle.Pid)
	s := New(tb, 8, 8, timeslice)
	return tb, s
}

// S1 — idle fallback: no user processes, active is always pid 0.
func TestIdleFallback(t *testing.T) {
	_, s := newFixture(t, 3)
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Select())
		s.Tick()
	}
	require.Equal(t, proc.IdlePID, s.ActivePID())
	require.Equal(t, 0, s.RunQueueLen())
}

// S2 — two-round-robin: A and B alternate every SCHEDULER_TIMESLICE=3 ticks.
func TestTwoProcessRoundRobin(t *testing.T) {
	tb, s := newFixture(t, 3)
	a, err := tb.Create(0, "a", proc.TypeUser, 0)
	require.NoError(t, err)
	b, err := tb.Create(0, "b", proc.TypeUser, 0)
	require.NoError(t, err)
	require.NoError(t, s.Add(a.Pid))
	require.NoError(t, s.Add(b.Pid))

	for tick := 1; tick <= 7; tick++ {
		require.NoError(t, s.Select())
		s.Tick()
	}
	require.NoError(t, s.Select())

	require.Equal(t, a.Pid, s.ActivePID())
	require.EqualValues(t, 4, a.RunTime)
	require.EqualValues(t, 3, b.RunTime)
}

// S3 — sleep wake-up timing.
func TestSleepWakeupTiming(t *testing.T) {
	tb, s := newFixture(t, 100)
	x, err := tb.Create(0, "x", proc.TypeUser, 0)
	require.NoError(t, err)
	require.NoError(t, s.Add(x.Pid))
	require.NoError(t, s.Sleep(x.Pid, 2))
	require.Equal(t, proc.StateSleeping, x.State)

	// Tick 1: still sleeping (SleepTime decremented from 2 to 1).
	s.Tick()
	require.Equal(t, proc.StateSleeping, x.State)
	require.EqualValues(t, 1, x.SleepTime)

	// Tick 2: SleepTime hits 1 this tick -> woken, back on the run queue.
	s.Tick()
	require.Equal(t, proc.StateIdle, x.State)
	require.EqualValues(t, 0, x.SleepTime)
	require.Contains(t, s.RunQueueSnapshot(), x.Pid)
}

func TestReSleepOverwritesRemainingTimeWithoutRequeue(t *testing.T) {
	tb, s := newFixture(t, 100)
	x, _ := tb.Create(0, "x", proc.TypeUser, 0)
	require.NoError(t, s.Add(x.Pid))
	require.NoError(t, s.Sleep(x.Pid, 5))
	require.NoError(t, s.Sleep(x.Pid, 9))
	require.EqualValues(t, 9, x.SleepTime)
	require.Equal(t, 1, s.SleepQueueLen())
}

func TestParkAndUnparkRemoveFromRunQueue(t *testing.T) {
	tb, s := newFixture(t, 100)
	x, _ := tb.Create(0, "x", proc.TypeUser, 0)
	require.NoError(t, s.Add(x.Pid))
	require.NoError(t, s.Park(x.Pid))
	require.Equal(t, proc.StateWaiting, x.State)
	require.NotContains(t, s.RunQueueSnapshot(), x.Pid)

	require.NoError(t, s.Unpark(x.Pid))
	require.Equal(t, proc.StateIdle, x.State)
	require.Contains(t, s.RunQueueSnapshot(), x.Pid)
}

func TestRemoveClearsActiveWhenTargetIsActive(t *testing.T) {
	tb, s := newFixture(t, 100)
	x, _ := tb.Create(0, "x", proc.TypeUser, 0)
	require.NoError(t, s.Add(x.Pid))
	require.NoError(t, s.Select())
	require.Equal(t, x.Pid, s.ActivePID())

	s.Remove(x.Pid)
	require.Equal(t, -1, s.ActivePID())
}

// Property 5 — time-slice fairness over N*timeslice ticks.
func TestTimeSliceFairness(t *testing.T) {
	const timeslice = 4
	const n = 3
	tb, s := newFixture(t, timeslice)
	pids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		p, err := tb.Create(0, "p", proc.TypeUser, 0)
		require.NoError(t, err)
		require.NoError(t, s.Add(p.Pid))
		pids = append(pids, p.Pid)
	}

	for tick := 0; tick < n*timeslice; tick++ {
		require.NoError(t, s.Select())
		s.Tick()
	}

	for _, pid := range pids {
		p, err := tb.LookupByPid(pid)
		require.NoError(t, err)
		require.GreaterOrEqual(t, p.RunTime, uint64(timeslice))
	}
}
