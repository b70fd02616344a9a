// Package vga implements the VGA text-mode screen surface spec.md names
// as an external collaborator: an 80x25 grid of (bg, fg, ch) cells, a
// cursor, and put_char_at/clear primitives. Two backends exist — a real
// ebiten-rendered one and a headless in-memory one — grounded on the
// teacher codebase's own dual video-backend split (real backend vs.
// build-tag-gated headless backend for tests and CI).
package vga

// Cols and Rows are the fixed 80x25 text-mode geometry spec §6 assigns
// the VGA surface.
const (
	Cols = 80
	Rows = 25
)

// Cell is one character cell: background color, foreground color, and
// the character itself.
type Cell struct {
	BG byte
	FG byte
	Ch byte
}

// Surface is the collaborator surface spec §6 item (1) describes: a
// put_char_at/clear text grid with cursor control. Both backends
// implement it.
type Surface interface {
	PutCharAt(x, y int, bg, fg byte, ch byte)
	Clear()
	CursorGet() (x, y int)
	CursorSet(x, y int)
	Cell(x, y int) Cell
	Start() error
	Stop() error
}
