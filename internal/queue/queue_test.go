package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundtripPreservesOrder(t *testing.T) {
	q := New(8)
	seq := []int{3, 1, 4, 1, 5, 9, 2}
	for _, v := range seq {
		require.NoError(t, q.Enqueue(v))
	}
	require.Equal(t, len(seq), q.Len())

	var got []int
	for !q.IsEmpty() {
		v, err := q.Dequeue()
		require.NoError(t, err)
		got = append(got, v)
	}
	require.Equal(t, seq, got)
}

func TestEnqueueFailsWhenFull(t *testing.T) {
	q := New(2)
	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	require.ErrorIs(t, q.Enqueue(3), ErrFull)
	require.True(t, q.IsFull())
}

func TestDequeueFailsWhenEmpty(t *testing.T) {
	q := New(2)
	_, err := q.Dequeue()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestWrapAroundReusesSlots(t *testing.T) {
	q := New(3)
	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	v, _ := q.Dequeue()
	require.Equal(t, 1, v)
	require.NoError(t, q.Enqueue(3))
	require.NoError(t, q.Enqueue(4))
	require.True(t, q.IsFull())

	got := q.Snapshot()
	require.Equal(t, []int{2, 3, 4}, got)
}

func TestRemoveFiltersTarget(t *testing.T) {
	q := New(5)
	for _, v := range []int{1, 2, 3, 2, 4} {
		require.NoError(t, q.Enqueue(v))
	}
	q.Remove(2)
	require.Equal(t, []int{1, 3, 4}, q.Snapshot())
}

func TestSizeTracksEnqueueDequeueCount(t *testing.T) {
	q := New(10)
	enq, deq := 0, 0
	ops := []bool{true, true, false, true, true, false, false}
	for _, isEnqueue := range ops {
		if isEnqueue {
			require.NoError(t, q.Enqueue(enq))
			enq++
		} else {
			_, err := q.Dequeue()
			require.NoError(t, err)
			deq++
		}
		require.Equal(t, enq-deq, q.Len())
	}
}

func TestEmptyAfterDrainReinitializesHeadTail(t *testing.T) {
	q := New(4)
	require.NoError(t, q.Enqueue(7))
	_, err := q.Dequeue()
	require.NoError(t, err)
	require.True(t, q.IsEmpty())
	require.NoError(t, q.Enqueue(9))
	v, err := q.Dequeue()
	require.NoError(t, err)
	require.Equal(t, 9, v)
}
