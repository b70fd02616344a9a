// Package sched implements the round-robin time-slice scheduler: a run
// queue of IDLE/ACTIVE candidates, a sleep queue, and the single
// active-process pointer the interrupt boundary restores on trap exit.
package sched

import (
	"errors"

	"github.com/zotley/preemptos/internal/proc"
	"github.com/zotley/preemptos/internal/queue"
)

var (
	ErrUnknownPid  = errors.New("sched: unknown pid")
	ErrNoIdleProc  = errors.New("sched: no idle process registered")
)

// noActive marks that no process is currently loaded.
const noActive = -1

// Scheduler holds the run queue, sleep queue, and active-process pointer
// described in spec §4.4.
type Scheduler struct {
	table     *proc.Table
	runQ      *queue.Queue
	sleepQ    *queue.Queue
	active    int
	timeslice uint64
}

// New builds a scheduler over table, with run/sleep queues of the given
// capacities and the given time-slice length in ticks.
func New(table *proc.Table, runQCap, sleepQCap int, timeslice uint64) *Scheduler {
	return &Scheduler{
		table:     table,
		runQ:      queue.New(runQCap),
		sleepQ:    queue.New(sleepQCap),
		active:    noActive,
		timeslice: timeslice,
	}
}

// Add admits a freshly created (or re-scheduled) pid to the run queue and
// marks it IDLE.
func (s *Scheduler) Add(pid int) error {
	p, err := s.table.LookupByPid(pid)
	if err != nil {
		return ErrUnknownPid
	}
	p.State = proc.StateIdle
	return s.runQ.Enqueue(pid)
}

// ActivePID returns the pid of the process currently loaded, or -1 if
// none is active.
func (s *Scheduler) ActivePID() int {
	return s.active
}

// ActivePCB returns the PCB of the active process, if any.
func (s *Scheduler) ActivePCB() (*proc.PCB, error) {
	if s.active < 0 {
		return nil, ErrUnknownPid
	}
	return s.table.LookupByPid(s.active)
}

// RunQueueLen and SleepQueueLen expose queue depths for tests and
// diagnostics.
func (s *Scheduler) RunQueueLen() int   { return s.runQ.Len() }
func (s *Scheduler) SleepQueueLen() int { return s.sleepQ.Len() }

// RunQueueSnapshot and SleepQueueSnapshot expose queue contents, in FIFO
// order, for tests.
func (s *Scheduler) RunQueueSnapshot() []int   { return s.runQ.Snapshot() }
func (s *Scheduler) SleepQueueSnapshot() []int { return s.sleepQ.Snapshot() }

// Tick performs the per-tick bookkeeping spec §4.4 assigns to the timer
// handler: advance the active process's run/cpu time, force a time-slice
// preemption if cpu_time reaches the configured limit, and walk the sleep
// queue exactly once.
func (s *Scheduler) Tick() {
	s.tickActive()
	s.wakeSleepers()
}

func (s *Scheduler) tickActive() {
	if s.active < 0 {
		return
	}
	p, err := s.table.LookupByPid(s.active)
	if err != nil {
		s.active = noActive
		return
	}
	p.RunTime++
	p.CPUTime++
	if p.CPUTime >= s.timeslice {
		p.CPUTime = 0
		if p.Pid == proc.IdlePID {
			p.State = proc.StateIdle
		} else {
			p.State = proc.StateIdle
			_ = s.runQ.Enqueue(p.Pid)
		}
		s.active = noActive
	}
}

// wakeSleepers visits every pid on the sleep queue exactly once: the walk
// reads the queue's size up front and performs that many
// dequeue-then-requeue steps, so a pid re-enqueued this tick is never
// visited twice.
func (s *Scheduler) wakeSleepers() {
	n := s.sleepQ.Len()
	for i := 0; i < n; i++ {
		pid, err := s.sleepQ.Dequeue()
		if err != nil {
			break
		}
		p, err := s.table.LookupByPid(pid)
		if err != nil {
			continue
		}
		if p.SleepTime <= 1 {
			p.SleepTime = 0
			p.State = proc.StateIdle
			_ = s.runQ.Enqueue(pid)
		} else {
			p.SleepTime--
			_ = s.sleepQ.Enqueue(pid)
		}
	}
}

// Select implements spec §4.4's Selection step: if no process is active,
// dequeue one from the run queue, falling back to the idle process (pid
// 0) if the run queue is empty. The selected process becomes ACTIVE.
func (s *Scheduler) Select() error {
	if s.active >= 0 {
		return nil
	}
	pid, err := s.runQ.Dequeue()
	if err != nil {
		pid = proc.IdlePID
	}
	p, lerr := s.table.LookupByPid(pid)
	if lerr != nil {
		return ErrNoIdleProc
	}
	p.State = proc.StateActive
	s.active = pid
	return nil
}

// Sleep parks proc for nTicks ticks: state -> SLEEPING, removed from the
// run queue if present, enqueued on the sleep queue. Re-sleeping an
// already-sleeping process just overwrites its remaining time.
func (s *Scheduler) Sleep(pid int, nTicks uint64) error {
	p, err := s.table.LookupByPid(pid)
	if err != nil {
		return ErrUnknownPid
	}
	alreadySleeping := p.State == proc.StateSleeping
	p.SleepTime = nTicks
	p.State = proc.StateSleeping
	if s.active == pid {
		s.active = noActive
	}
	if !alreadySleeping {
		s.runQ.Remove(pid)
		return s.sleepQ.Enqueue(pid)
	}
	return nil
}

// Park removes proc from the run queue and marks it WAITING, for use by
// the mutex/semaphore subsystems when a caller must block on a primitive's
// own waiter queue (not the scheduler's sleep queue).
func (s *Scheduler) Park(pid int) error {
	p, err := s.table.LookupByPid(pid)
	if err != nil {
		return ErrUnknownPid
	}
	p.State = proc.StateWaiting
	s.runQ.Remove(pid)
	if s.active == pid {
		s.active = noActive
	}
	return nil
}

// Unpark returns a process that was WAITING on a primitive back to the run
// queue, state IDLE.
func (s *Scheduler) Unpark(pid int) error {
	return s.Add(pid)
}

// Remove evicts proc from the run queue (e.g. on destroy). If it was the
// active process, the active pointer is cleared so the next trap exit
// re-selects.
func (s *Scheduler) Remove(pid int) {
	s.runQ.Remove(pid)
	s.sleepQ.Remove(pid)
	if s.active == pid {
		s.active = noActive
	}
}
