// Package ksem implements the kernel's counting semaphore primitive: a
// fixed-size table of semaphore slots, each with a count and a FIFO
// waiter queue whose members park on the scheduler.
package ksem

import (
	"errors"

	"github.com/zotley/preemptos/internal/queue"
)

var (
	ErrOutOfRange   = errors.New("ksem: id out of range")
	ErrNotAllocated = errors.New("ksem: id not allocated")
	ErrTableFull    = errors.New("ksem: no free semaphore slot")
	ErrNegativeInit = errors.New("ksem: initial value must be non-negative")
)

// Scheduler is the subset of the scheduler ksem needs to park and unpark
// waiters.
type Scheduler interface {
	Park(pid int) error
	Unpark(pid int) error
}

type semaphore struct {
	allocated bool
	count     int
	waiters   *queue.Queue
}

// Table is the fixed-size pool of semaphore slots plus its allocator
// queue.
type Table struct {
	slots []semaphore
	free  *queue.Queue
	sched Scheduler
}

// NewTable builds a semaphore table with the given maximum slot count and
// waiter-queue capacity per slot.
func NewTable(maxSemaphores, waiterQueueCap int, sched Scheduler) *Table {
	t := &Table{
		slots: make([]semaphore, maxSemaphores),
		free:  queue.New(maxSemaphores),
		sched: sched,
	}
	for i := range t.slots {
		t.slots[i].waiters = queue.New(waiterQueueCap)
	}
	for i := 0; i < maxSemaphores; i++ {
		_ = t.free.Enqueue(i)
	}
	return t
}

// InitOne allocates a semaphore slot with the given initial count.
func (t *Table) InitOne(value int) (int, error) {
	if value < 0 {
		return 0, ErrNegativeInit
	}
	id, err := t.free.Dequeue()
	if err != nil {
		return 0, ErrTableFull
	}
	s := &t.slots[id]
	s.allocated = true
	s.count = value
	s.waiters.Init()
	return id, nil
}

func (t *Table) slot(id int) (*semaphore, error) {
	if id < 0 || id >= len(t.slots) {
		return nil, ErrOutOfRange
	}
	s := &t.slots[id]
	if !s.allocated {
		return nil, ErrNotAllocated
	}
	return s, nil
}

// Destroy returns id's slot to the free pool.
//
// As with kmutex, the freed id is enqueued onto the allocator queue
// before the slot's `allocated` flag is cleared; the slot is only ever
// consulted again once a subsequent InitOne re-initializes it.
func (t *Table) Destroy(id int) error {
	s, err := t.slot(id)
	if err != nil {
		return err
	}
	if err := t.free.Enqueue(id); err != nil {
		return err
	}
	s.allocated = false
	s.count = 0
	s.waiters.Init()
	return nil
}

// Wait is called by callerPid. If count > 0 it is decremented and Wait
// returns immediately. Otherwise callerPid is parked (state WAITING,
// removed from the scheduler) and pushed onto the waiter queue.
func (t *Table) Wait(id, callerPid int) error {
	s, err := t.slot(id)
	if err != nil {
		return err
	}
	if s.count > 0 {
		s.count--
		return nil
	}
	if err := t.sched.Park(callerPid); err != nil {
		return err
	}
	return s.waiters.Enqueue(callerPid)
}

// Post increments count; if the waiter queue is non-empty, one waiter is
// popped and rescheduled, and count is immediately decremented back — the
// resource is handed directly to the wakee rather than left for a future
// Wait to observe.
func (t *Table) Post(id int) error {
	s, err := t.slot(id)
	if err != nil {
		return err
	}
	s.count++
	if s.waiters.IsEmpty() {
		return nil
	}
	waiter, derr := s.waiters.Dequeue()
	if derr != nil {
		return nil
	}
	s.count--
	return t.sched.Unpark(waiter)
}

// Count reports a slot's current count, for tests.
func (t *Table) Count(id int) (int, error) {
	s, err := t.slot(id)
	if err != nil {
		return 0, err
	}
	return s.count, nil
}

// WaiterSnapshot reports a slot's waiter queue contents, for tests.
func (t *Table) WaiterSnapshot(id int) ([]int, error) {
	s, err := t.slot(id)
	if err != nil {
		return nil, err
	}
	return s.waiters.Snapshot(), nil
}
