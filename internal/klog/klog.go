// Package klog is the kernel's logging sink: five severities collapsed
// into a single call site with a dynamic, runtime-adjustable level filter.
//
// The teacher codebase this kernel is grounded on reaches for nothing
// fancier than the standard "log" package for every diagnostic message it
// prints, and no other repository in the retrieval pack offers a clearer
// general-purpose logging dependency for this concern (see DESIGN.md) — so
// klog is a thin wrapper over "log" rather than a third-party logger,
// which is the one place this codebase deliberately stays on the standard
// library.
package klog

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// Level is one of the five severities spec.md's external-interfaces
// section names for the logging sink collaborator.
type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

var (
	level  atomic.Int32
	stdlog = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
)

func init() {
	level.Store(int32(LevelInfo))
}

// SetLevel adjusts the dynamic filter. Messages above this severity (i.e.
// with a larger Level value) are dropped.
func SetLevel(l Level) {
	level.Store(int32(l))
}

// Logf is the single call site every severity function funnels through.
func Logf(l Level, format string, args ...any) {
	if l > Level(level.Load()) {
		return
	}
	stdlog.Printf("[%s] %s", l, fmt.Sprintf(format, args...))
}

func Error(format string, args ...any) { Logf(LevelError, format, args...) }
func Warn(format string, args ...any)  { Logf(LevelWarn, format, args...) }
func Info(format string, args ...any)  { Logf(LevelInfo, format, args...) }
func Debug(format string, args ...any) { Logf(LevelDebug, format, args...) }
func Trace(format string, args ...any) { Logf(LevelTrace, format, args...) }
