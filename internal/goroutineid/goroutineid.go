// Package goroutineid extracts the id of the calling goroutine, used to
// key goroutine-local state.
package goroutineid

import (
	"runtime"
)

// ID returns the id of the calling goroutine, or -1 if it cannot be
// determined.
//
// The id is parsed from the `goroutine N [...]:` header of a single-frame
// stack dump. This is the only portable mechanism the runtime offers, and
// while it is not fast, callers in this module only hit it on lifecycle
// transitions, never per log record.
func ID() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	// skip `goroutine `
	const prefix = 10
	if len(b) <= prefix {
		return -1
	}
	var (
		id int64
		ok bool
	)
	for _, c := range b[prefix:] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
		ok = true
	}
	if !ok {
		return -1
	}
	return id
}
