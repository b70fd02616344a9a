package bitutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetClearTestBit(t *testing.T) {
	var v uint32
	v = SetBit(v, 3)
	require.True(t, TestBit(v, 3))
	v = ClearBit(v, 3)
	require.False(t, TestBit(v, 3))
}

func TestPackOCW(t *testing.T) {
	b := PackOCW(0, 2, 5)
	require.Equal(t, byte(0x25), b)
}
