// Package ksyscall implements the kernel-side dispatcher from the
// software-trap vector to kernel services: process I/O, time, process
// lifecycle, and the mutex/semaphore primitives.
//
// Because this kernel has no virtual memory or address-space isolation
// (spec non-goals), the "dst ptr"/"src ptr" arguments a real trap frame
// would carry are represented directly as Go byte slices rather than as
// addresses into a simulated memory bus — there is exactly one address
// space, shared by kernel and "user" code alike, so a slice already is
// the pointer.
package ksyscall

import (
	"errors"

	"github.com/zotley/preemptos/internal/proc"
)

// ID identifies a syscall, matching spec §4.8's table.
type ID uint32

const (
	IORead ID = iota
	IOWrite
	IOFlush
	SysGetTime
	SysGetName
	ProcSleep
	ProcExit
	ProcGetPid
	ProcGetName
	MutexInit
	MutexDestroy
	MutexLock
	MutexUnlock
	SemInit
	SemDestroy
	SemWait
	SemPost
)

// ErrFatalUnknownID and ErrFatalNoActiveProcess are the two fatal
// conditions spec §4.8 assigns to the syscall gateway. The caller
// (kernel.Context) turns these into a kernel panic rather than returning
// -1 to the trap frame.
var (
	ErrFatalUnknownID        = errors.New("ksyscall: unknown syscall id")
	ErrFatalNoActiveProcess  = errors.New("ksyscall: no active process at syscall entry")
)

// Request carries one syscall's arguments. Which fields are meaningful
// depends on ID, mirroring the fixed trap-frame register slots (identifier
// in slot A, args in B/C/D) spec §4.8 assigns them to.
type Request struct {
	ID        ID
	Direction proc.Direction // IO_*
	Arg       uint32         // PROC_SLEEP seconds; MUTEX/SEM id; SEM_INIT value
	Buf       []byte         // dst (reads) or src (writes); length is "n"
}

// Machine is the subset of kernel state the syscall gateway dispatches
// against. kernel.Context implements it.
type Machine interface {
	CurrentTick() uint64
	OSName() string
	PCB(pid int) (*proc.PCB, error)

	ReadIO(pid int, dir proc.Direction, dst []byte) (int, error)
	WriteIO(pid int, dir proc.Direction, src []byte) (int, error)
	FlushIO(pid int, dir proc.Direction) error

	Sleep(pid int, ticks uint64) error
	Exit(pid int) error

	MutexInit() (int, error)
	MutexDestroy(id int) error
	MutexLock(id, pid int) error
	MutexUnlock(id int) error

	SemInit(value int) (int, error)
	SemDestroy(id int) error
	SemWait(id, pid int) error
	SemPost(id int) error
}

// Gateway dispatches syscall requests against a Machine.
type Gateway struct {
	m Machine
}

// New returns a Gateway bound to the given machine.
func New(m Machine) *Gateway {
	return &Gateway{m: m}
}

// Dispatch executes one syscall on behalf of callerPid and returns the
// value to write back into the caller's trap frame, or a fatal error if
// the id is unknown or callerPid does not name a live process.
func (g *Gateway) Dispatch(callerPid int, req Request) (int32, error) {
	if _, err := g.m.PCB(callerPid); err != nil {
		return 0, ErrFatalNoActiveProcess
	}

	switch req.ID {
	case IORead:
		n, err := g.m.ReadIO(callerPid, req.Direction, req.Buf)
		if err != nil {
			return -1, nil
		}
		_ = g.m.FlushIO(callerPid, req.Direction)
		return int32(n), nil

	case IOWrite:
		if len(req.Buf) == 0 {
			return 0, nil
		}
		n, err := g.m.WriteIO(callerPid, req.Direction, req.Buf)
		if err != nil {
			return -1, nil
		}
		return int32(n), nil

	case IOFlush:
		if err := g.m.FlushIO(callerPid, req.Direction); err != nil {
			return -1, nil
		}
		return 0, nil

	case SysGetTime:
		return int32(g.m.CurrentTick() / kernelTimerRateHz), nil

	case SysGetName:
		name := g.m.OSName()
		n := copy(req.Buf, name)
		if n < len(req.Buf) {
			req.Buf[n] = 0
		}
		return 0, nil

	case ProcSleep:
		ticks := uint64(req.Arg) * kernelTimerRateHz
		if err := g.m.Sleep(callerPid, ticks); err != nil {
			return -1, nil
		}
		return 0, nil

	case ProcExit:
		_ = g.m.Exit(callerPid)
		return 0, nil

	case ProcGetPid:
		return int32(callerPid), nil

	case ProcGetName:
		p, err := g.m.PCB(callerPid)
		if err != nil {
			return -1, nil
		}
		n := copy(req.Buf, p.Name)
		if n < len(req.Buf) {
			req.Buf[n] = 0
		}
		return 0, nil

	case MutexInit:
		id, err := g.m.MutexInit()
		if err != nil {
			return -1, nil
		}
		return int32(id), nil

	case MutexDestroy:
		if err := g.m.MutexDestroy(int(req.Arg)); err != nil {
			return -1, nil
		}
		return 0, nil

	case MutexLock:
		if err := g.m.MutexLock(int(req.Arg), callerPid); err != nil {
			return -1, nil
		}
		return 0, nil

	case MutexUnlock:
		if err := g.m.MutexUnlock(int(req.Arg)); err != nil {
			return -1, nil
		}
		return 0, nil

	case SemInit:
		id, err := g.m.SemInit(int(req.Arg))
		if err != nil {
			return -1, nil
		}
		return int32(id), nil

	case SemDestroy:
		if err := g.m.SemDestroy(int(req.Arg)); err != nil {
			return -1, nil
		}
		return 0, nil

	case SemWait:
		if err := g.m.SemWait(int(req.Arg), callerPid); err != nil {
			return -1, nil
		}
		return 0, nil

	case SemPost:
		if err := g.m.SemPost(int(req.Arg)); err != nil {
			return -1, nil
		}
		return 0, nil

	default:
		return 0, ErrFatalUnknownID
	}
}

// kernelTimerRateHz mirrors kernel.TimerRateHz without importing the
// kernel package (which imports ksyscall); see DESIGN.md's open-question
// resolution on the timer rate constant.
const kernelTimerRateHz = 100
