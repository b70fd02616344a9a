// Package queue implements a fixed-capacity FIFO of signed integers.
//
// It is the substrate for every wait set in the kernel: the run queue, the
// sleep queue, the process-table free-slot pool, and every mutex/semaphore
// waiter list. All operations run in O(1) with no allocation so they are
// safe to call from within the kernel's simulated interrupt context.
package queue

import "errors"

// Sentinel written into unused cells. Never a valid pid or slot index.
const Sentinel = -1

var (
	ErrFull  = errors.New("queue: full")
	ErrEmpty = errors.New("queue: empty")
)

// Queue is a bounded circular FIFO of ints. The zero value is not usable;
// call New to obtain one.
type Queue struct {
	data []int
	head int
	tail int
	size int
}

// New returns an empty queue with the given fixed capacity.
func New(capacity int) *Queue {
	q := &Queue{data: make([]int, capacity)}
	q.Init()
	return q
}

// Init resets the queue to empty, as if freshly constructed.
func (q *Queue) Init() {
	q.head = Sentinel
	q.tail = Sentinel
	q.size = 0
	for i := range q.data {
		q.data[i] = Sentinel
	}
}

// Capacity returns the fixed number of slots this queue was built with.
func (q *Queue) Capacity() int {
	return len(q.data)
}

// Len returns the number of elements currently queued.
func (q *Queue) Len() int {
	return q.size
}

// IsEmpty reports whether the queue holds no elements.
func (q *Queue) IsEmpty() bool {
	return q.size == 0
}

// IsFull reports whether the queue is at capacity.
func (q *Queue) IsFull() bool {
	return q.size == len(q.data)
}

// Enqueue appends x to the tail. It fails with ErrFull if the queue is at
// capacity.
func (q *Queue) Enqueue(x int) error {
	if q.IsFull() {
		return ErrFull
	}
	if q.size == 0 {
		q.head = 0
		q.tail = 0
	} else {
		q.tail = (q.tail + 1) % len(q.data)
	}
	q.data[q.tail] = x
	q.size++
	return nil
}

// Dequeue removes and returns the element at the head. It fails with
// ErrEmpty if the queue holds nothing.
func (q *Queue) Dequeue() (int, error) {
	if q.IsEmpty() {
		return 0, ErrEmpty
	}
	x := q.data[q.head]
	q.data[q.head] = Sentinel
	q.head = (q.head + 1) % len(q.data)
	q.size--
	if q.size == 0 {
		q.head = Sentinel
		q.tail = Sentinel
	}
	return x, nil
}

// Remove filters out every occurrence of x, preserving the relative order
// of everything else. It is used by the scheduler's run-queue removal and
// by destroy paths that must evict a pid from whatever queue it sits on.
func (q *Queue) Remove(x int) {
	n := q.size
	for i := 0; i < n; i++ {
		v, err := q.Dequeue()
		if err != nil {
			break
		}
		if v == x {
			continue
		}
		_ = q.Enqueue(v)
	}
}

// Contains reports whether x is currently queued, without mutating order.
func (q *Queue) Contains(x int) bool {
	n := q.size
	found := false
	for i := 0; i < n; i++ {
		v, err := q.Dequeue()
		if err != nil {
			break
		}
		if v == x {
			found = true
		}
		_ = q.Enqueue(v)
	}
	return found
}

// Snapshot returns a copy of the queued elements in FIFO order, without
// mutating the queue. Intended for tests and diagnostics only.
func (q *Queue) Snapshot() []int {
	out := make([]int, 0, q.size)
	if q.size == 0 {
		return out
	}
	for i := 0; i < q.size; i++ {
		idx := (q.head + i) % len(q.data)
		out = append(out, q.data[idx])
	}
	return out
}
