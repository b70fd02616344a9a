// Package tty implements the virtual console layer spec.md names as an
// external collaborator: a small fixed set of terminal devices, each
// pairing an input ring buffer (fed by the keyboard decoder) with an
// output ring buffer (drained onto the VGA surface), with one console
// marked visible at a time. Grounded on the teacher codebase's
// TerminalMMIO: an input/output ring-buffer pair behind a mutex, fed by
// EnqueueByte/RouteHostKey and drained by DrainOutput.
package tty

import (
	"errors"
	"sync"

	"github.com/zotley/preemptos/internal/ring"
)

// ErrOutOfRange is returned for a TTY index outside the configured count.
var ErrOutOfRange = errors.New("tty: index out of range")

// TTY pairs an input ring (keystrokes waiting to be read by IO_READ) and
// an output ring (bytes written by IO_WRITE, waiting to be drained onto
// the screen).
type TTY struct {
	In  *ring.Buffer
	Out *ring.Buffer
}

func newTTY(bufSize int) *TTY {
	return &TTY{
		In:  ring.New(bufSize),
		Out: ring.New(bufSize),
	}
}

// Manager owns a fixed bank of TTYs and tracks which one is currently
// visible on the VGA surface, mirroring the teacher codebase's single
// TerminalMMIO generalized to several independent consoles.
type Manager struct {
	mu      sync.Mutex
	ttys    []*TTY
	visible int
	bound   []int // bound[ttyIndex] = owning pid, or -1
}

// NewManager allocates count TTYs, each with a bufSize-byte input and
// output ring, with TTY 0 initially visible.
func NewManager(count, bufSize int) *Manager {
	m := &Manager{
		ttys:  make([]*TTY, count),
		bound: make([]int, count),
	}
	for i := range m.ttys {
		m.ttys[i] = newTTY(bufSize)
		m.bound[i] = -1
	}
	return m
}

// Count returns the number of TTYs the manager owns.
func (m *Manager) Count() int { return len(m.ttys) }

// TTY returns the TTY at index i.
func (m *Manager) TTY(i int) (*TTY, error) {
	if i < 0 || i >= len(m.ttys) {
		return nil, ErrOutOfRange
	}
	return m.ttys[i], nil
}

// Bind records that pid owns TTY i, so FirstFree can skip it and so a
// freed TTY can be reclaimed on process exit. The keyboard decoder does
// not consult bindings; it always writes to the visible TTY.
func (m *Manager) Bind(i, pid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.ttys) {
		return ErrOutOfRange
	}
	m.bound[i] = pid
	return nil
}

// Unbind clears the owner of TTY i, called on process exit.
func (m *Manager) Unbind(i int) error {
	return m.Bind(i, -1)
}

// OwnerOf returns the pid bound to TTY i, or -1 if unbound.
func (m *Manager) OwnerOf(i int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.bound) {
		return -1
	}
	return m.bound[i]
}

// TTYOf returns the index of the TTY bound to pid, or -1 if none.
func (m *Manager) TTYOf(pid int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, owner := range m.bound {
		if owner == pid {
			return i
		}
	}
	return -1
}

// FirstFree returns the index of an unbound TTY, or -1 if all are bound.
func (m *Manager) FirstFree() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, owner := range m.bound {
		if owner == -1 {
			return i
		}
	}
	return -1
}

// Visible returns the index of the currently visible TTY.
func (m *Manager) Visible() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// SwitchVisible changes which TTY is rendered to the VGA surface, the
// action bound to the Ctrl+F1..F4 chords at the keyboard layer.
func (m *Manager) SwitchVisible(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.ttys) {
		return ErrOutOfRange
	}
	m.visible = i
	return nil
}

// Flush drains every available byte from TTY i's output ring and hands
// it to fn, the form the VGA surface's refresh loop consumes output in.
// Mirrors the teacher codebase's DrainOutput, generalized to many TTYs
// and a non-blocking byte sink instead of an accumulated string.
func (m *Manager) Flush(i int, fn func(byte)) error {
	t, err := m.TTY(i)
	if err != nil {
		return err
	}
	for {
		b, err := t.Out.Read()
		if err != nil {
			return nil
		}
		fn(b)
	}
}
