// Package runtimeutil captures caller information while skipping frames
// belonging to a given package directory, so diagnostics can point at the
// call site rather than at this module's own plumbing.
package runtimeutil

import (
	"path/filepath"
	"runtime"
)

type (
	// Caller identifies one stack frame.
	//
	// WARNING: Omits PC because it may differ for the same code location in
	// cases where inlining occurs.
	Caller struct {
		Function string
		File     string
		Entry    uintptr
		Line     int
	}
)

// maxCallers bounds the trimmed stack attached to diagnostics.
const maxCallers = 32

// CallersSkipPackage returns the stack of the caller, starting at the
// first frame whose file does not live under pkgPath (or any of its
// subdirectories), after skipping i additional frames. Returns nil if no
// such frame exists.
func CallersSkipPackage(pkgPath string, i int) []Caller {
	const size = 1 << 6
	var (
		callers = make([]uintptr, size)
		out     []Caller
	)
	callers = callers[:runtime.Callers(i+2, callers)]
	frames := runtime.CallersFrames(callers)
	skipping := true
	for frame, ok := frames.Next(); ok; frame, ok = frames.Next() {
		if skipping {
			if pkgPath != `` && withinDir(pkgPath, frame.File) {
				continue
			}
			skipping = false
		}
		out = append(out, Caller{
			Function: frame.Function,
			File:     frame.File,
			Entry:    frame.Entry,
			Line:     frame.Line,
		})
		if len(out) == maxCallers {
			break
		}
	}
	return out
}

// CallerSkipPackage returns the first frame CallersSkipPackage would
// return, or the zero Caller.
func CallerSkipPackage(pkgPath string, i int) Caller {
	if s := CallersSkipPackage(pkgPath, i+1); len(s) != 0 {
		return s[0]
	}
	return Caller{}
}

func withinDir(dir, file string) bool {
	for d := filepath.Dir(file); ; d = filepath.Dir(d) {
		if d == dir {
			return true
		}
		if d == filepath.Dir(d) {
			return false
		}
	}
}
