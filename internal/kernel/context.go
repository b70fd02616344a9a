// Package kernel ties the process table, scheduler, mutex/semaphore
// tables, trap boundary, syscall gateway, and TTY layer together into
// one addressable machine, the way the teacher codebase's CPU type ties
// its registers, memory, and MMIO devices together behind a single
// struct that implements the interfaces its subsystems expect of it.
package kernel

import (
	"fmt"
	"sync"

	"github.com/zotley/preemptos/internal/klog"
	"github.com/zotley/preemptos/internal/kmutex"
	"github.com/zotley/preemptos/internal/ksem"
	"github.com/zotley/preemptos/internal/ksyscall"
	"github.com/zotley/preemptos/internal/proc"
	"github.com/zotley/preemptos/internal/sched"
	"github.com/zotley/preemptos/internal/trap"
	"github.com/zotley/preemptos/internal/tty"
)

// Context is the whole machine: process table, scheduler, synchronization
// primitives, trap boundary, syscall gateway, and the TTY devices
// processes bind their I/O to. Every simulated trap entry holds mu for
// its duration, playing the role a real "interrupts disabled" critical
// section plays on genuine hardware (spec §5/§9's single global section).
type Context struct {
	mu sync.Mutex

	cfg Config

	table    *proc.Table
	sched    *sched.Scheduler
	mutexes  *kmutex.Table
	sems     *ksem.Table
	boundary *trap.Boundary
	gateway  *ksyscall.Gateway
	ttys     *tty.Manager

	tick uint64

	halted    bool
	haltedMsg string

	// pending* stage the in-flight syscall across the Raise(VectorSyscall)
	// boundary: the VectorSyscall handler has no parameters (spec §4.5),
	// so Syscall stages the request here before raising the trap and the
	// handler reads it back off the Context.
	pendingPid    int
	pendingReq    ksyscall.Request
	pendingResult int32
	pendingErr    error
}

// New assembles a Context from cfg. It does not seed any processes; call
// Boot for that.
func New(cfg Config) *Context {
	table := proc.NewTable(cfg.ProcMax, cfg.ProcStackSize, cfg.ProcNameLen)
	s := sched.New(table, cfg.RunQueueCap, cfg.SleepQueueCap, cfg.SchedulerTimeslice)

	c := &Context{
		cfg:   cfg,
		table: table,
		sched: s,
		ttys:  tty.NewManager(cfg.TTYCount, cfg.RingBufSize),
	}
	c.mutexes = kmutex.NewTable(cfg.MutexMax, cfg.WaiterQueueCap, s)
	c.sems = ksem.NewTable(cfg.SemMax, cfg.WaiterQueueCap, s)
	c.gateway = ksyscall.New(c)
	c.boundary = trap.NewBoundary(c)
	return c
}

// ---- trap.Machine ----

// RunScheduler performs the Select half of a scheduler pass, run
// unconditionally after every trap (spec §4.4 Selection). The Tick half —
// run_time/cpu_time bookkeeping, time-slice preemption, and sleep-queue
// countdown — only belongs to the timer vector and is driven separately by
// tickScheduler, the registered VectorTimer handler; mirrors the original
// kernel's split between scheduler_timer (bookkeeping, called only from the
// timer callback) and scheduler_run (select, called after every IRQ).
func (c *Context) RunScheduler() {
	_ = c.sched.Select()
}

// tickScheduler is the registered VectorTimer handler: it advances
// scheduler bookkeeping by one tick before RunScheduler's Select pass
// runs. Never called for VectorKeyboard or VectorSyscall.
func (c *Context) tickScheduler() {
	c.sched.Tick()
	c.tick++
}

// ActivePID returns the pid of the process currently loaded.
func (c *Context) ActivePID() int {
	return c.sched.ActivePID()
}

// Panic reports a fatal kernel condition. The machine halts: no further
// trap is serviced, and Halted reports the condition.
func (c *Context) Panic(msg string) {
	c.halted = true
	c.haltedMsg = msg
	klog.Error("kernel panic: %s", msg)
}

// Halted reports whether the machine has taken a fatal trap.
func (c *Context) Halted() (bool, string) {
	return c.halted, c.haltedMsg
}

// ---- ksyscall.Machine ----

// CurrentTick returns the number of timer ticks since boot.
func (c *Context) CurrentTick() uint64 { return c.tick }

// OSName returns the configured OS name string for SYS_GET_NAME.
func (c *Context) OSName() string { return c.cfg.OSName }

// PCB looks up a process by pid.
func (c *Context) PCB(pid int) (*proc.PCB, error) {
	return c.table.LookupByPid(pid)
}

// ReadIO copies up to len(dst) bytes out of pid's ring buffer bound to
// dir, short-count, never blocking.
func (c *Context) ReadIO(pid int, dir proc.Direction, dst []byte) (int, error) {
	p, err := c.table.LookupByPid(pid)
	if err != nil {
		return 0, err
	}
	buf := p.IO(dir)
	if buf == nil {
		return 0, proc.ErrNoIOBinding
	}
	return buf.ReadAvailable(dst), nil
}

// WriteIO copies up to len(src) bytes into pid's ring buffer bound to
// dir, short-count, never blocking.
func (c *Context) WriteIO(pid int, dir proc.Direction, src []byte) (int, error) {
	p, err := c.table.LookupByPid(pid)
	if err != nil {
		return 0, err
	}
	buf := p.IO(dir)
	if buf == nil {
		return 0, proc.ErrNoIOBinding
	}
	return buf.WriteAvailable(src), nil
}

// FlushIO discards all buffered bytes in pid's dir ring.
func (c *Context) FlushIO(pid int, dir proc.Direction) error {
	p, err := c.table.LookupByPid(pid)
	if err != nil {
		return err
	}
	buf := p.IO(dir)
	if buf == nil {
		return proc.ErrNoIOBinding
	}
	buf.Flush()
	return nil
}

// Sleep puts pid to sleep for the given number of ticks.
func (c *Context) Sleep(pid int, ticks uint64) error {
	return c.sched.Sleep(pid, ticks)
}

// Exit tears down pid: releases it from the scheduler and frees its
// process table slot and TTY binding.
func (c *Context) Exit(pid int) error {
	c.sched.Remove(pid)
	if i := c.ttys.TTYOf(pid); i >= 0 {
		_ = c.ttys.Unbind(i)
	}
	return c.table.Destroy(pid)
}

func (c *Context) MutexInit() (int, error)       { return c.mutexes.InitOne() }
func (c *Context) MutexDestroy(id int) error     { return c.mutexes.Destroy(id) }
func (c *Context) MutexLock(id, pid int) error   { return c.mutexes.Lock(id, pid) }
func (c *Context) MutexUnlock(id int) error      { return c.mutexes.Unlock(id) }
func (c *Context) SemInit(value int) (int, error) { return c.sems.InitOne(value) }
func (c *Context) SemDestroy(id int) error       { return c.sems.Destroy(id) }
func (c *Context) SemWait(id, pid int) error     { return c.sems.Wait(id, pid) }
func (c *Context) SemPost(id int) error          { return c.sems.Post(id) }

// ---- public entry points: the three things that raise a trap ----

// TimerTick raises the timer interrupt, advancing scheduler bookkeeping
// by one tick. Called by an internal/timersrc.Source.
func (c *Context) TimerTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.halted {
		return
	}
	c.boundary.Raise(trap.VectorTimer)
}

// HandleKeyByte raises the keyboard interrupt for one already-decoded key
// event (the keyboard package has already resolved chords and written the
// event's bytes into a TTY's input ring before calling this).
func (c *Context) HandleKeyByte() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.halted {
		return
	}
	c.boundary.Raise(trap.VectorKeyboard)
}

// Syscall raises the syscall interrupt on behalf of callerPid and returns
// the dispatch result.
func (c *Context) Syscall(callerPid int, req ksyscall.Request) (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.halted {
		return -1, fmt.Errorf("kernel: machine halted: %s", c.haltedMsg)
	}
	c.pendingPid = callerPid
	c.pendingReq = req
	c.pendingResult = 0
	c.pendingErr = nil

	c.boundary.Raise(trap.VectorSyscall)

	if c.pendingErr != nil {
		return 0, c.pendingErr
	}
	if p, err := c.table.LookupByPid(callerPid); err == nil {
		p.Frame.SetReturn(c.pendingResult)
	}
	return c.pendingResult, nil
}

// dispatchPendingSyscall is the registered VectorSyscall handler. It
// reads the staged request off the Context (the handler itself takes no
// arguments, per spec §4.5) and records the outcome for Syscall to
// return, halting the machine on a fatal gateway error.
func (c *Context) dispatchPendingSyscall() {
	res, err := c.gateway.Dispatch(c.pendingPid, c.pendingReq)
	if err != nil {
		c.pendingErr = err
		c.Panic(fmt.Sprintf("syscall: %v", err))
		return
	}
	if res == -1 {
		klog.Warn("syscall %d from pid %d failed", c.pendingReq.ID, c.pendingPid)
	}
	c.pendingResult = res
}

// ---- process and TTY management ----

// CreateProcess allocates a new process with the given entry point, name,
// and type, admits it to the run queue, and returns its PCB. The idle
// process is seeded separately by Boot and bypasses Add entirely.
func (c *Context) CreateProcess(entry uint32, name string, typ proc.Type) (*proc.PCB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createProcessLocked(entry, name, typ)
}

func (c *Context) createProcessLocked(entry uint32, name string, typ proc.Type) (*proc.PCB, error) {
	p, err := c.table.Create(entry, name, typ, c.tick)
	if err != nil {
		return nil, err
	}
	if err := c.sched.Add(p.Pid); err != nil {
		_ = c.table.Destroy(p.Pid)
		return nil, err
	}
	return p, nil
}

// CreateUserShell allocates a user process bound to the first free TTY,
// the action the keyboard layer's Ctrl+Alt+Delete chord performs through
// SpawnUserShell. Boot binds its seeded processes with bindStdTTY instead.
func (c *Context) CreateUserShell(entry uint32, name string) (*proc.PCB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ttyIdx := c.ttys.FirstFree()
	if ttyIdx < 0 {
		return nil, fmt.Errorf("kernel: no free tty for new shell")
	}
	p, err := c.createProcessLocked(entry, name, proc.TypeUser)
	if err != nil {
		return nil, err
	}
	t, err := c.ttys.TTY(ttyIdx)
	if err != nil {
		return nil, err
	}
	p.BindIO(proc.DirInput, t.In)
	p.BindIO(proc.DirOutput, t.Out)
	_ = c.ttys.Bind(ttyIdx, p.Pid)
	return p, nil
}

// SpawnUserShell implements keyboard.Machine: it creates an anonymous
// shell process on the first free TTY, the Ctrl+Alt+Delete action. The
// entry point is a placeholder the boot-seeded shell image would
// normally supply; spec.md excludes a user-space program loader.
func (c *Context) SpawnUserShell() error {
	_, err := c.CreateUserShell(0, "shell")
	return err
}

// Tables exposes the underlying process/scheduler/mutex/semaphore state
// for tests; not part of any consumer interface.
func (c *Context) Tables() (*proc.Table, *sched.Scheduler, *kmutex.Table, *ksem.Table) {
	return c.table, c.sched, c.mutexes, c.sems
}

// TTYs returns the TTY manager, for wiring the VGA refresh loop and the
// keyboard decoder.
func (c *Context) TTYs() *tty.Manager { return c.ttys }

// Boundary returns the trap boundary. Handlers can be registered on it
// only until Boot seals it.
func (c *Context) Boundary() *trap.Boundary { return c.boundary }

// bindStdTTY is a helper the boot sequence uses to give a seeded process
// its own ring-buffer pair without going through CreateUserShell's
// first-free-TTY allocation (used when boot wants a specific index).
func (c *Context) bindStdTTY(p *proc.PCB, ttyIdx int) error {
	t, err := c.ttys.TTY(ttyIdx)
	if err != nil {
		return err
	}
	p.BindIO(proc.DirInput, t.In)
	p.BindIO(proc.DirOutput, t.Out)
	return c.ttys.Bind(ttyIdx, p.Pid)
}
