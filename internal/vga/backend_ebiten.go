//go:build !headless

package vga

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/zotley/preemptos/internal/keyboard"
)

const (
	cellW = 8
	cellH = 16
)

// palette is a tiny fixed 16-color VGA-ish palette, indexed by the low
// nibble of a Cell's BG/FG byte.
var palette = [16]color.RGBA{
	{0, 0, 0, 255}, {0, 0, 170, 255}, {0, 170, 0, 255}, {0, 170, 170, 255},
	{170, 0, 0, 255}, {170, 0, 170, 255}, {170, 85, 0, 255}, {170, 170, 170, 255},
	{85, 85, 85, 255}, {85, 85, 255, 255}, {85, 255, 85, 255}, {85, 255, 255, 255},
	{255, 85, 85, 255}, {255, 85, 255, 255}, {255, 255, 85, 255}, {255, 255, 255, 255},
}

// EbitenSurface renders the text grid as a real window, grounded on the
// teacher codebase's EbitenOutput: Start launches ebiten.RunGame in its
// own goroutine, and every Draw call rewrites a packed RGBA framebuffer
// and hands it to the window image in one WritePixels call, the same
// technique EbitenOutput uses for its pixel surface.
type EbitenSurface struct {
	grid
	running     bool
	keyHandler  func(keyboard.Event)
	window      *ebiten.Image
	frameBuffer []byte
}

// NewSurface returns the ebiten-backed real display.
func NewSurface() (Surface, error) {
	return &EbitenSurface{
		frameBuffer: make([]byte, Cols*cellW*Rows*cellH*4),
	}, nil
}

// SetKeyHandler registers the callback the ebiten Update loop delivers
// decoded key events to, mirroring the teacher codebase's own
// SetKeyHandler hook on its video backend.
func (e *EbitenSurface) SetKeyHandler(h func(keyboard.Event)) {
	e.keyHandler = h
}

// specialKeys mirrors the teacher codebase's own specialKeys table: the
// non-printable keys polled every frame via inpututil.IsKeyJustPressed
// rather than delivered through ebiten.AppendInputChars.
var specialKeys = map[ebiten.Key]keyboard.Special{
	ebiten.KeyEnter:      keyboard.SpecialEnter,
	ebiten.KeyNumpadEnter: keyboard.SpecialEnter,
	ebiten.KeyBackspace:  keyboard.SpecialBackspace,
	ebiten.KeyTab:        keyboard.SpecialTab,
	ebiten.KeyEscape:     keyboard.SpecialEscape,
	ebiten.KeyArrowUp:    keyboard.SpecialArrowUp,
	ebiten.KeyArrowDown:  keyboard.SpecialArrowDown,
	ebiten.KeyArrowLeft:  keyboard.SpecialArrowLeft,
	ebiten.KeyArrowRight: keyboard.SpecialArrowRight,
	ebiten.KeyHome:       keyboard.SpecialHome,
	ebiten.KeyEnd:        keyboard.SpecialEnd,
	ebiten.KeyDelete:     keyboard.SpecialDelete,
	ebiten.KeyF1:         keyboard.SpecialF1,
	ebiten.KeyF2:         keyboard.SpecialF2,
	ebiten.KeyF3:         keyboard.SpecialF3,
	ebiten.KeyF4:         keyboard.SpecialF4,
}

func (e *EbitenSurface) PutCharAt(x, y int, bg, fg, ch byte) { e.putCharAt(x, y, bg, fg, ch) }
func (e *EbitenSurface) Clear()                              { e.clear() }
func (e *EbitenSurface) CursorGet() (int, int)               { return e.cursorGet() }
func (e *EbitenSurface) CursorSet(x, y int)                  { e.cursorSet(x, y) }
func (e *EbitenSurface) Cell(x, y int) Cell                  { return e.cell(x, y) }

func (e *EbitenSurface) Start() error {
	if e.running {
		return nil
	}
	e.running = true
	ebiten.SetWindowSize(Cols*cellW, Rows*cellH)
	ebiten.SetWindowTitle("preemptos")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)

	go func() {
		if err := ebiten.RunGame(e); err != nil {
			fmt.Printf("vga: ebiten exited: %v\n", err)
		}
	}()
	return nil
}

func (e *EbitenSurface) Stop() error {
	e.running = false
	return nil
}

// Update satisfies ebiten.Game. The text grid itself has no per-frame
// state to advance; Update's job is polling host key input and handing
// it to the registered key handler, mirroring the teacher codebase's own
// per-frame key-polling loop (ctrl/shift modifiers plus a fixed special-
// keys table, checked with inpututil.IsKeyJustPressed).
func (e *EbitenSurface) Update() error {
	if e.keyHandler == nil {
		return nil
	}
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	alt := ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	for key, special := range specialKeys {
		if inpututil.IsKeyJustPressed(key) {
			e.keyHandler(keyboard.Event{Special: special, Ctrl: ctrl, Alt: alt, Shift: shift})
		}
	}
	if ctrl {
		// Printable runes are suppressed while a chord modifier is held,
		// so Ctrl+F2 does not also deliver a stray 'f' or '2'.
		return nil
	}
	for _, r := range ebiten.AppendInputChars(nil) {
		if r < 0x80 {
			e.keyHandler(keyboard.Event{Ch: byte(r), Shift: shift})
		}
	}
	return nil
}

// paintCellBG fills one cell's rectangle of the packed RGBA framebuffer
// with its background color, the same per-pixel fill EbitenOutput.Clear
// does over its whole buffer, narrowed here to one cell.
func (e *EbitenSurface) paintCellBG(x, y int, bg color.RGBA) {
	stride := Cols * cellW * 4
	for row := 0; row < cellH; row++ {
		rowOff := (y*cellH+row)*stride + x*cellW*4
		for col := 0; col < cellW; col++ {
			i := rowOff + col*4
			e.frameBuffer[i+0] = bg.R
			e.frameBuffer[i+1] = bg.G
			e.frameBuffer[i+2] = bg.B
			e.frameBuffer[i+3] = bg.A
		}
	}
}

// Draw satisfies ebiten.Game: repaint the packed framebuffer cell by
// cell, hand it to the window image in one WritePixels call, then draw
// glyphs and the cursor over it. Mirrors EbitenOutput.Draw's
// window.WritePixels(frameBuffer); screen.DrawImage(window, nil)
// sequence. Glyphs render in the ebiten debug font's fixed
// white-on-transparent style; per-cell foreground color is not
// reproduced.
func (e *EbitenSurface) Draw(screen *ebiten.Image) {
	if e.window == nil {
		e.window = ebiten.NewImage(Cols*cellW, Rows*cellH)
	}

	for y := 0; y < Rows; y++ {
		for x := 0; x < Cols; x++ {
			c := e.cell(x, y)
			e.paintCellBG(x, y, palette[c.BG&0x0F])
		}
	}
	e.window.WritePixels(e.frameBuffer)
	screen.DrawImage(e.window, nil)

	for y := 0; y < Rows; y++ {
		for x := 0; x < Cols; x++ {
			c := e.cell(x, y)
			if c.Ch == 0 || c.Ch == ' ' {
				continue
			}
			ebitenutil.DebugPrintAt(screen, string(rune(c.Ch)), x*cellW, y*cellH)
		}
	}
	cx, cy := e.cursorGet()
	ebitenutil.DebugPrintAt(screen, "_", cx*cellW, cy*cellH+cellH/2)
}

// Layout satisfies ebiten.Game with the fixed 80x25 text-mode geometry.
func (e *EbitenSurface) Layout(outsideWidth, outsideHeight int) (int, int) {
	return Cols * cellW, Rows * cellH
}
