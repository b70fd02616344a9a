// Package proc implements the process table: a fixed pool of process
// control blocks (PCBs) with a free-slot allocator.
package proc

import (
	"errors"
	"fmt"

	"github.com/zotley/preemptos/internal/queue"
	"github.com/zotley/preemptos/internal/ring"
	"github.com/zotley/preemptos/internal/trap"
)

// State is one of the five PCB lifecycle states.
type State int

const (
	StateNone State = iota
	StateIdle
	StateActive
	StateSleeping
	StateWaiting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateActive:
		return "ACTIVE"
	case StateSleeping:
		return "SLEEPING"
	case StateWaiting:
		return "WAITING"
	default:
		return "NONE"
	}
}

// Type classifies a process as kernel- or user-space.
type Type int

const (
	TypeNone Type = iota
	TypeKernel
	TypeUser
)

// Direction indexes a PCB's I/O binding table.
type Direction int

const (
	DirInput Direction = iota
	DirOutput
	dirCount
)

// IdlePID is the reserved pid of the always-present idle process, seeded
// at boot into slot 0. It must never be destroyed.
const IdlePID = 0

var (
	ErrTableFull    = errors.New("proc: table full, no free slot")
	ErrNotFound     = errors.New("proc: no such pid")
	ErrDestroyIdle  = errors.New("proc: cannot destroy the idle process")
	ErrNoIOBinding  = errors.New("proc: no I/O buffer bound for that direction")
	ErrStackTooSmall = errors.New("proc: stack too small for a trap frame")
)

// PCB is a single process control block. pid >= 0 iff the slot is in use;
// pid == -1 encodes a free slot.
type PCB struct {
	Pid   int
	State State
	Type  Type
	Name  string

	StartTime uint64
	RunTime   uint64
	CPUTime   uint64
	SleepTime uint64

	Stack []byte
	Frame *trap.Frame

	io [dirCount]*ring.Buffer
}

// BindIO attaches a ring buffer the PCB does not own (a weak reference —
// the PCB never frees it) to one of the process's I/O directions.
func (p *PCB) BindIO(dir Direction, buf *ring.Buffer) {
	p.io[dir] = buf
}

// IO returns the ring buffer bound to dir, or nil if none is bound.
func (p *PCB) IO(dir Direction) *ring.Buffer {
	return p.io[dir]
}

func (p *PCB) reset() {
	*p = PCB{Pid: -1}
}

// Table is the fixed pool of PCB slots plus its free-slot allocator.
type Table struct {
	procs     []PCB
	free      *queue.Queue
	nextPid   int
	nameLen   int
	stackSize int
}

// NewTable builds a process table with maxProcs slots, each given a stack
// of stackSize bytes (must be large enough to hold a trap.Frame) and names
// truncated to nameLen bytes.
func NewTable(maxProcs, stackSize, nameLen int) *Table {
	t := &Table{
		procs:     make([]PCB, maxProcs),
		free:      queue.New(maxProcs),
		stackSize: stackSize,
		nameLen:   nameLen,
	}
	for i := range t.procs {
		t.procs[i].reset()
	}
	for i := 0; i < maxProcs; i++ {
		_ = t.free.Enqueue(i)
	}
	return t
}

// Len returns the table's fixed capacity (PROC_MAX).
func (t *Table) Len() int {
	return len(t.procs)
}

// FreeCount returns the number of unallocated slots.
func (t *Table) FreeCount() int {
	return t.free.Len()
}

func truncateName(name string, n int) string {
	if len(name) <= n {
		return name
	}
	return name[:n]
}

// Create allocates a free slot, assigns the next monotonic pid, and
// synthesizes a trap frame whose instruction pointer is entry and whose
// flags enable interrupts. currentTick seeds StartTime. It does not touch
// any scheduler queue — the caller (kernel.Context) is responsible for
// admitting the new PCB to the run queue, keeping this package free of a
// dependency on the scheduler.
func (t *Table) Create(entry uint32, name string, typ Type, currentTick uint64) (*PCB, error) {
	idx, err := t.free.Dequeue()
	if err != nil {
		return nil, ErrTableFull
	}
	if t.stackSize < trap.FrameSize {
		_ = t.free.Enqueue(idx)
		return nil, ErrStackTooSmall
	}

	p := &t.procs[idx]
	p.Pid = t.nextPid
	t.nextPid++
	p.State = StateIdle
	p.Type = typ
	p.Name = truncateName(name, t.nameLen)
	p.StartTime = currentTick
	p.RunTime = 0
	p.CPUTime = 0
	p.SleepTime = 0
	p.Stack = make([]byte, t.stackSize)
	p.Frame = trap.NewInStack(p.Stack, entry)
	return p, nil
}

// Destroy clears a PCB's fields to sentinel values and returns its slot to
// the free pool. Destroying the idle process (pid 0) always fails.
func (t *Table) Destroy(pid int) error {
	p, idx, err := t.lookup(pid)
	if err != nil {
		return err
	}
	if p.Pid == IdlePID {
		return ErrDestroyIdle
	}
	p.reset()
	return t.free.Enqueue(idx)
}

// LookupByPid performs a linear scan for the PCB with the given pid.
func (t *Table) LookupByPid(pid int) (*PCB, error) {
	p, _, err := t.lookup(pid)
	return p, err
}

// LookupByIndex returns the PCB occupying a given slot index, whether or
// not that slot is currently in use.
func (t *Table) LookupByIndex(idx int) (*PCB, error) {
	if idx < 0 || idx >= len(t.procs) {
		return nil, fmt.Errorf("proc: index %d out of range", idx)
	}
	return &t.procs[idx], nil
}

func (t *Table) lookup(pid int) (*PCB, int, error) {
	if pid < 0 {
		return nil, -1, ErrNotFound
	}
	for i := range t.procs {
		if t.procs[i].Pid == pid {
			return &t.procs[i], i, nil
		}
	}
	return nil, -1, ErrNotFound
}

// AllocatedCount returns the number of slots currently holding a live
// process (pid >= 0), used by the slot-conservation property.
func (t *Table) AllocatedCount() int {
	n := 0
	for i := range t.procs {
		if t.procs[i].Pid >= 0 {
			n++
		}
	}
	return n
}
