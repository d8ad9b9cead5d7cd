package meterface

import (
	"sync"
	"time"
)

type (
	// Clock is the time source used by meters, returning nanoseconds
	// relative to a fixed, monotonic origin. Implementations must be safe
	// for concurrent use.
	Clock interface {
		Now() int64
	}

	// ManualClock is a Clock for tests, advanced explicitly.
	//
	// The zero value is valid, starting at 0.
	ManualClock struct {
		mu  sync.Mutex
		now int64
	}

	systemClock struct {
		origin time.Time
	}
)

var (
	// compile time assertions

	_ Clock = (*ManualClock)(nil)
	_ Clock = (*systemClock)(nil)

	defaultClock = &systemClock{origin: time.Now()}
)

// SystemClock returns the process-wide monotonic clock, which is the
// default for meters constructed without [WithClock].
func SystemClock() Clock { return defaultClock }

func (x *systemClock) Now() int64 {
	// time.Since uses the monotonic reading of the origin
	return int64(time.Since(x.origin))
}

func (x *ManualClock) Now() int64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.now
}

// Set moves the clock to an absolute value, in nanoseconds.
func (x *ManualClock) Set(now int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.now = now
}

// Advance moves the clock forward by d.
func (x *ManualClock) Advance(d time.Duration) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.now += int64(d)
}
