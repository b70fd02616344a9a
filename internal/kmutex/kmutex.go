// Package kmutex implements the kernel's binary mutual-exclusion
// primitive: a fixed-size table of mutex slots, each with owner tracking
// and a FIFO waiter queue whose members park on the scheduler.
package kmutex

import (
	"errors"

	"github.com/zotley/preemptos/internal/queue"
)

var (
	ErrOutOfRange    = errors.New("kmutex: id out of range")
	ErrNotAllocated  = errors.New("kmutex: id not allocated")
	ErrTableFull     = errors.New("kmutex: no free mutex slot")
	ErrHeldByOther   = errors.New("kmutex: destroy of a currently held mutex")
	ErrRecursiveLock = errors.New("kmutex: owner already holds this mutex")
)

const noOwner = -1

// Scheduler is the subset of the scheduler kmutex needs to park and
// unpark waiters.
type Scheduler interface {
	Park(pid int) error
	Unpark(pid int) error
}

// mutex is a single slot in the table.
type mutex struct {
	allocated bool
	lockCount int
	owner     int // -1 when unowned
	waiters   *queue.Queue
}

// Table is the fixed-size pool of mutex slots plus its allocator queue.
type Table struct {
	slots []mutex
	free  *queue.Queue
	sched Scheduler
}

// NewTable builds a mutex table with the given maximum slot count and
// waiter-queue capacity per slot.
func NewTable(maxMutexes, waiterQueueCap int, sched Scheduler) *Table {
	t := &Table{
		slots: make([]mutex, maxMutexes),
		free:  queue.New(maxMutexes),
		sched: sched,
	}
	for i := range t.slots {
		t.slots[i].owner = noOwner
		t.slots[i].waiters = queue.New(waiterQueueCap)
	}
	for i := 0; i < maxMutexes; i++ {
		_ = t.free.Enqueue(i)
	}
	return t
}

// InitOne allocates a mutex slot and returns its id.
func (t *Table) InitOne() (int, error) {
	id, err := t.free.Dequeue()
	if err != nil {
		return 0, ErrTableFull
	}
	m := &t.slots[id]
	m.allocated = true
	m.lockCount = 0
	m.owner = noOwner
	m.waiters.Init()
	return id, nil
}

func (t *Table) slot(id int) (*mutex, error) {
	if id < 0 || id >= len(t.slots) {
		return nil, ErrOutOfRange
	}
	m := &t.slots[id]
	if !m.allocated {
		return nil, ErrNotAllocated
	}
	return m, nil
}

// Destroy returns id's slot to the free pool. It fails if the mutex is
// currently held by anyone.
//
// The freed id is enqueued onto the allocator queue first, and only then
// is the slot's fields cleared — clearing last also clears `allocated`,
// which is safe only because a freed slot is never consulted again until
// a later InitOne re-initializes it. Document this rather than reorder it:
// reordering would require re-looking the slot up with no behavioural
// benefit.
func (t *Table) Destroy(id int) error {
	m, err := t.slot(id)
	if err != nil {
		return err
	}
	if m.lockCount != 0 {
		return ErrHeldByOther
	}
	if err := t.free.Enqueue(id); err != nil {
		return err
	}
	m.allocated = false
	m.owner = noOwner
	m.waiters.Init()
	return nil
}

// Lock is called by callerPid to acquire mutex id. If the mutex is free,
// callerPid becomes the owner immediately. Otherwise callerPid is parked
// (state WAITING, removed from the scheduler) and pushed onto the waiter
// queue; lock-count is incremented either way.
//
// Recursive locking — callerPid already being the owner — is rejected
// rather than silently parking the owner on its own waiter queue, which
// would deadlock (spec open question, resolved in DESIGN.md).
func (t *Table) Lock(id, callerPid int) error {
	m, err := t.slot(id)
	if err != nil {
		return err
	}
	if m.owner == callerPid {
		return ErrRecursiveLock
	}
	m.lockCount++
	if m.owner == noOwner {
		m.owner = callerPid
		return nil
	}
	if err := t.sched.Park(callerPid); err != nil {
		return err
	}
	return m.waiters.Enqueue(callerPid)
}

// Unlock is called by the current owner. If not held, it is a no-op
// success. Otherwise lock-count is decremented; if it reaches zero, the
// mutex is released. Otherwise one waiter is popped, becomes the new
// owner, and is rescheduled.
func (t *Table) Unlock(id int) error {
	m, err := t.slot(id)
	if err != nil {
		return err
	}
	if m.owner == noOwner {
		return nil
	}
	m.lockCount--
	if m.lockCount == 0 {
		m.owner = noOwner
		return nil
	}
	waiter, derr := m.waiters.Dequeue()
	if derr != nil {
		// lock-count says someone is waiting but the queue disagrees;
		// treat as released rather than wedge the mutex forever.
		m.owner = noOwner
		m.lockCount = 0
		return nil
	}
	m.owner = waiter
	return t.sched.Unpark(waiter)
}

// Owner reports the current owner pid, or false if unowned.
func (t *Table) Owner(id int) (int, bool, error) {
	m, err := t.slot(id)
	if err != nil {
		return 0, false, err
	}
	if m.owner == noOwner {
		return 0, false, nil
	}
	return m.owner, true, nil
}

// LockCount reports a slot's current lock-count, for tests.
func (t *Table) LockCount(id int) (int, error) {
	m, err := t.slot(id)
	if err != nil {
		return 0, err
	}
	return m.lockCount, nil
}

// WaiterSnapshot reports a slot's waiter queue contents, for tests.
func (t *Table) WaiterSnapshot(id int) ([]int, error) {
	m, err := t.slot(id)
	if err != nil {
		return nil, err
	}
	return m.waiters.Snapshot(), nil
}
