package tty

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBindAndLookup(t *testing.T) {
	m := NewManager(4, 64)
	require.Equal(t, -1, m.OwnerOf(0))
	require.NoError(t, m.Bind(0, 7))
	require.Equal(t, 7, m.OwnerOf(0))
	require.Equal(t, 0, m.TTYOf(7))
	require.NoError(t, m.Unbind(0))
	require.Equal(t, -1, m.OwnerOf(0))
	require.Equal(t, -1, m.TTYOf(7))
}

func TestFirstFree(t *testing.T) {
	m := NewManager(2, 64)
	require.NoError(t, m.Bind(0, 1))
	require.Equal(t, 1, m.FirstFree())
	require.NoError(t, m.Bind(1, 2))
	require.Equal(t, -1, m.FirstFree())
}

func TestSwitchVisibleOutOfRange(t *testing.T) {
	m := NewManager(2, 64)
	require.Error(t, m.SwitchVisible(9))
	require.NoError(t, m.SwitchVisible(1))
	require.Equal(t, 1, m.Visible())
}

func TestFlushDrainsOutputInOrder(t *testing.T) {
	m := NewManager(1, 64)
	tty, err := m.TTY(0)
	require.NoError(t, err)
	for _, c := range []byte("hi") {
		require.NoError(t, tty.Out.Write(c))
	}
	var got []byte
	require.NoError(t, m.Flush(0, func(b byte) { got = append(got, b) }))
	require.Equal(t, []byte("hi"), got)
	require.True(t, tty.Out.IsEmpty())
}

func TestTTYOutOfRange(t *testing.T) {
	m := NewManager(1, 64)
	_, err := m.TTY(5)
	require.ErrorIs(t, err, ErrOutOfRange)
}
