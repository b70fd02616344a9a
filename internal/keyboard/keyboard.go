// Package keyboard implements the keyboard decoder spec.md names as an
// external collaborator: host key events are translated into bytes
// delivered to a TTY's input ring, except for a small set of reserved
// chords that the decoder intercepts itself. Grounded on the teacher
// codebase's TerminalHost (reads raw host input, translates special
// keys, routes via RouteHostKey) with its stdin-reading half dropped —
// spec.md's scope excludes the raw PS/2 decoder, so the decoder here
// starts from an already-decoded Event instead of raw scancodes.
package keyboard

import (
	"github.com/zotley/preemptos/internal/tty"
)

// Special identifies a non-printable key the decoder must translate or
// intercept, mirroring the teacher codebase's translateSpecialKey table.
type Special int

const (
	SpecialNone Special = iota
	SpecialEnter
	SpecialBackspace
	SpecialTab
	SpecialEscape
	SpecialArrowUp
	SpecialArrowDown
	SpecialArrowLeft
	SpecialArrowRight
	SpecialHome
	SpecialEnd
	SpecialDelete
	SpecialF1
	SpecialF2
	SpecialF3
	SpecialF4
)

// Event is one decoded host key press, already separated into a
// printable rune or a Special with modifier flags. The raw PS/2
// scancode-to-Event translation is out of scope here.
type Event struct {
	Ch      byte
	Special Special
	Ctrl    bool
	Alt     bool
	Shift   bool
}

// special byte sequences an unmodified Special key expands to, mirroring
// the teacher codebase's translateSpecialKey.
var specialBytes = map[Special][]byte{
	SpecialEnter:     {'\n'},
	SpecialBackspace: {0x08},
	SpecialTab:       {'\t'},
	SpecialEscape:    {0x1B},
	SpecialArrowUp:   {0x1B, '[', 'A'},
	SpecialArrowDown: {0x1B, '[', 'B'},
	SpecialArrowLeft: {0x1B, '[', 'D'},
	SpecialArrowRight: {0x1B, '[', 'C'},
	SpecialHome:      {0x1B, '[', 'H'},
	SpecialEnd:       {0x1B, '[', 'F'},
	SpecialDelete:    {0x7F},
}

// Machine is the slice of kernel behavior the decoder needs to act on
// its reserved chords and to raise the keyboard trap, kept narrow so
// this package never imports kernel.
type Machine interface {
	SpawnUserShell() error
	HandleKeyByte()
}

// Decoder routes host key events to the visible TTY's input ring, or
// intercepts them as a reserved chord.
type Decoder struct {
	ttys    *tty.Manager
	machine Machine
}

// New builds a decoder writing into ttys and calling back into machine
// for chords that affect kernel state rather than TTY input.
func New(ttys *tty.Manager, machine Machine) *Decoder {
	return &Decoder{ttys: ttys, machine: machine}
}

// HandleEvent processes one decoded key event. Ctrl+F1..F4 switches the
// visible TTY; Ctrl+Alt+Delete spawns a fresh user shell on the first
// free TTY. Anything else is translated to bytes and enqueued on the
// currently visible TTY's input ring, mirroring RouteHostKey.
func (d *Decoder) HandleEvent(ev Event) error {
	if ev.Ctrl && !ev.Alt {
		if idx, ok := ttyChordIndex(ev.Special); ok {
			return d.ttys.SwitchVisible(idx)
		}
	}
	if ev.Ctrl && ev.Alt && ev.Special == SpecialDelete {
		if d.machine != nil {
			return d.machine.SpawnUserShell()
		}
		return nil
	}

	bytes := d.translate(ev)
	if len(bytes) == 0 {
		return nil
	}
	visible := d.ttys.Visible()
	t, err := d.ttys.TTY(visible)
	if err != nil {
		return err
	}
	for _, b := range bytes {
		// Best effort: a full input ring drops the keystroke rather
		// than blocking the decoder, matching the ring buffer's
		// non-blocking contract.
		_ = t.In.Write(b)
	}
	// One physical key event raises one keyboard trap, regardless of how
	// many bytes its translation expanded to, so the scheduler gets the
	// same post-IRQ Select pass a timer or syscall trap gets.
	if d.machine != nil {
		d.machine.HandleKeyByte()
	}
	return nil
}

func ttyChordIndex(s Special) (int, bool) {
	switch s {
	case SpecialF1:
		return 0, true
	case SpecialF2:
		return 1, true
	case SpecialF3:
		return 2, true
	case SpecialF4:
		return 3, true
	default:
		return 0, false
	}
}

func (d *Decoder) translate(ev Event) []byte {
	if ev.Special != SpecialNone {
		if b, ok := specialBytes[ev.Special]; ok {
			return b
		}
		return nil
	}
	if ev.Ch == 0 {
		return nil
	}
	return []byte{ev.Ch}
}
