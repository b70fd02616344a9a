package klog

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelStrings(t *testing.T) {
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "TRACE", LevelTrace.String())
}

func TestSetLevelFiltersHigherSeverities(t *testing.T) {
	var buf bytes.Buffer
	stdlog.SetOutput(&buf)
	defer stdlog.SetOutput(os.Stderr)
	defer SetLevel(LevelInfo)
	SetLevel(LevelError)
	// Logf above the configured level is a silent no-op.
	Logf(LevelWarn, "should be dropped")
	Logf(LevelError, "should be printed")
	require.NotContains(t, buf.String(), "should be dropped")
	require.Contains(t, buf.String(), "should be printed")
}
