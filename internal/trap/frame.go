// Package trap implements the interrupt boundary: the trap-frame layout
// and its in-stack placement, and the IRQ dispatch table. Frames are not
// saved or restored on trap entry and exit, and per-tick bookkeeping is
// left to the handler registered for VectorTimer.
//
// The trap frame is a bit-exact layout contract between whatever entry
// stub captured it and the kernel that reads it back. Its field order must
// never be reordered — code elsewhere computes its address by carving the
// top of a process's stack region and writing this struct there.
package trap

import "unsafe"

// Vector identifies the originating interrupt or software trap.
type Vector uint32

const (
	VectorTimer    Vector = 0
	VectorKeyboard Vector = 1
	VectorSyscall  Vector = 2
)

// FlagsInterruptEnable is the one flag bit this kernel cares about in the
// synthetic trap frame's Flags word.
const FlagsInterruptEnable uint32 = 1 << 0

// Frame is the register snapshot saved on entry to the kernel and restored
// on exit. Field order mirrors the classic push sequence of a trap-entry
// stub (general registers, then segment placeholders, then IP/flags/vector)
// and must not be reordered.
type Frame struct {
	// General-purpose registers, callee save order.
	RA, RB, RC, RD uint32
	RSI, RDI       uint32
	RBP, RSP       uint32

	// Segment register placeholders (unused on this simulated machine but
	// kept for layout parity with a real x86-like trap frame).
	CS, DS, SS uint32

	// Instruction pointer at the point of interruption.
	IP uint32

	// Processor flags; bit 0 is the interrupt-enable flag.
	Flags uint32

	// Originating vector.
	Vector Vector
}

// FrameSize is the byte size a Frame occupies when carved out of a stack.
const FrameSize = int(unsafe.Sizeof(Frame{}))

// SyscallArgSlots. Arguments are passed in specific trap-frame register
// slots: identifier in RA, first arg in RB, second in RC, third in RD. The
// integer return value is written back into RA before context restore.
const (
	SyscallIDReg   = 0
	SyscallArg1Reg = 1
	SyscallArg2Reg = 2
	SyscallArg3Reg = 3
)

// SyscallID returns the syscall identifier slot (RA).
func (f *Frame) SyscallID() uint32 { return f.RA }

// SyscallArgs returns the three syscall argument slots (RB, RC, RD).
func (f *Frame) SyscallArgs() (uint32, uint32, uint32) { return f.RB, f.RC, f.RD }

// SetReturn writes an integer return value back into RA, the slot the
// calling convention reserves for it.
func (f *Frame) SetReturn(v int32) { f.RA = uint32(v) }

// NewInStack carves a Frame out of the top of stack and returns a pointer
// into that memory, satisfying the invariant that a PCB's trap-frame
// pointer always lies within its own stack region. stack must be at least
// FrameSize bytes long.
func NewInStack(stack []byte, entry uint32) *Frame {
	off := len(stack) - FrameSize
	if off < 0 {
		panic("trap: stack too small for a trap frame")
	}
	f := (*Frame)(unsafe.Pointer(&stack[off]))
	*f = Frame{
		IP:    entry,
		Flags: FlagsInterruptEnable,
		RSP:   uint32(off),
	}
	return f
}
