package kernel

import (
	"github.com/zotley/preemptos/internal/proc"
	"github.com/zotley/preemptos/internal/trap"
)

// Boot assembles a fresh Context from cfg, seeds the idle process and the
// configured number of shell and smoke-test processes (each bound to its
// own TTY), registers the three trap handlers, and seals the boundary.
// Mirrors the teacher codebase's boot sequence of constructing every
// subsystem and then handing control to the run loop, compressed here
// into a single function since this kernel has no separate "load image"
// phase.
func Boot(cfg Config) (*Context, error) {
	c := New(cfg)

	c.mu.Lock()
	defer c.mu.Unlock()

	// The idle process is created directly against the process table,
	// bypassing CreateProcess/sched.Add: spec §4.4 requires pid 0 never
	// be queued on the run queue, only ever selected as Select's
	// fallback when the run queue is empty.
	idle, err := c.table.Create(0, "idle", proc.TypeKernel, c.tick)
	if err != nil {
		return nil, err
	}
	if idle.Pid != proc.IdlePID {
		return nil, errBadIdlePid
	}

	ttyIdx := 0
	for i := 0; i < cfg.SeedShellCount; i++ {
		p, err := c.createProcessLocked(0, "sh", proc.TypeUser)
		if err != nil {
			return nil, err
		}
		if ttyIdx < cfg.TTYCount {
			if err := c.bindStdTTY(p, ttyIdx); err != nil {
				return nil, err
			}
			ttyIdx++
		}
	}
	for i := 0; i < cfg.SeedTestCount; i++ {
		p, err := c.createProcessLocked(0, "selftest", proc.TypeKernel)
		if err != nil {
			return nil, err
		}
		if ttyIdx < cfg.TTYCount {
			if err := c.bindStdTTY(p, ttyIdx); err != nil {
				return nil, err
			}
			ttyIdx++
		}
	}

	if err := c.boundary.Register(trap.VectorTimer, c.tickScheduler); err != nil {
		return nil, err
	}
	if err := c.boundary.Register(trap.VectorKeyboard, func() {}); err != nil {
		return nil, err
	}
	if err := c.boundary.Register(trap.VectorSyscall, c.dispatchPendingSyscall); err != nil {
		return nil, err
	}
	c.boundary.Seal()

	return c, nil
}

var errBadIdlePid = bootError("kernel: idle process did not receive pid 0")

type bootError string

func (e bootError) Error() string { return string(e) }
