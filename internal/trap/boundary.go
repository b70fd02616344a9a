package trap

import "fmt"

// maxVectors bounds the preallocated dispatch table. The simulated machine
// only ever raises VectorTimer, VectorKeyboard and VectorSyscall, but the
// table is sized generously the way a real PIC-backed table would be.
const maxVectors = 16

// Handler is a registered high-level IRQ handler. It takes no arguments,
// matching the hardware model: all the context a handler needs it reads
// back off the Machine it was registered against.
type Handler func()

// Machine is the subset of kernel state the interrupt boundary needs to
// drive a trap: dispatch, run the scheduler, and verify a process came out
// selected. kernel.Context implements this.
type Machine interface {
	// RunScheduler performs one scheduler pass (spec §4.4 Selection).
	RunScheduler()
	// ActivePID returns the pid of the process currently loaded, or -1.
	ActivePID() int
	// Panic reports a fatal kernel condition and halts the machine.
	Panic(msg string)
}

// Boundary owns the IRQ dispatch table and runs the dispatch and
// scheduler steps of the trap entry sequence described in spec §4.5. It
// does not save the interrupted process's trap frame or restore the
// selected process's frame.
type Boundary struct {
	machine  Machine
	handlers [maxVectors]Handler
	sealed   bool
}

// NewBoundary returns a Boundary bound to the given machine. The dispatch
// table starts empty; every vector the boot sequence uses must be
// registered before the first Raise.
func NewBoundary(m Machine) *Boundary {
	return &Boundary{machine: m}
}

// Register installs the handler for vector v. Only permitted before Seal
// is called; replacing a registration after boot is a programming error.
func (b *Boundary) Register(v Vector, h Handler) error {
	if b.sealed {
		return fmt.Errorf("trap: cannot register vector %d after boot", v)
	}
	if int(v) < 0 || int(v) >= maxVectors {
		return fmt.Errorf("trap: vector %d out of range", v)
	}
	b.handlers[v] = h
	return nil
}

// Seal freezes the dispatch table. Called once at the end of boot.
func (b *Boundary) Seal() {
	b.sealed = true
}

// Raise runs the trap entry sequence for vector v: dispatch to the
// registered handler, run the scheduler, and verify a process was
// selected. An unregistered vector, or a scheduler pass that leaves no
// active process, is a fatal condition.
func (b *Boundary) Raise(v Vector) {
	if int(v) < 0 || int(v) >= maxVectors || b.handlers[v] == nil {
		b.machine.Panic(fmt.Sprintf("trap: unregistered IRQ vector %d", v))
		return
	}
	b.handlers[v]()
	b.machine.RunScheduler()
	if b.machine.ActivePID() < 0 {
		b.machine.Panic("trap: scheduler pass left no active process")
	}
}
