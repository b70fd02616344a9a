// Package timersrc implements the periodic tick source spec.md assigns
// to the timer/IRQ controller collaborator: a steady hardware-style
// pulse that drives the scheduler's notion of time, independent of how
// fast the host machine actually runs. Grounded on the teacher
// codebase's render-loop pattern (video_vga.go's renderLoop): a
// context-cancellable goroutine driven by a time.Ticker, selecting
// between ctx.Done() and ticker.C.
package timersrc

import (
	"context"
	"time"
)

// Machine is the slice of kernel behavior the timer source drives: one
// tick of simulated time, delivered as a timer interrupt.
type Machine interface {
	TimerTick()
}

// Source fires Machine.TimerTick() at a fixed rate, simulating the
// periodic interrupt a real timer/IRQ controller would raise.
type Source struct {
	machine Machine
	rateHz  uint64
}

// New returns a tick source that calls machine.TimerTick() rateHz times
// per second once Run is started.
func New(machine Machine, rateHz uint64) *Source {
	return &Source{machine: machine, rateHz: rateHz}
}

// Run blocks, firing TimerTick on the configured schedule until ctx is
// canceled.
func (s *Source) Run(ctx context.Context) {
	if s.rateHz == 0 {
		<-ctx.Done()
		return
	}
	period := time.Second / time.Duration(s.rateHz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.machine.TimerTick()
		}
	}
}
