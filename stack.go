package meterface

import (
	"sync"
	"weak"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/meterface/internal/goroutineid"
)

type (
	// meterHandle is the type-erased view of a meter held by the
	// goroutine-local stack.
	meterHandle interface {
		meterFullID() string
	}

	// weakMeterHandle is a non-owning reference to a meter, so an
	// unterminated meter abandoned on the stack can still be collected.
	weakMeterHandle interface {
		value() meterHandle
	}

	weakMeter[E logiface.Event] struct {
		p weak.Pointer[Meter[E]]
	}
)

// localMeters maps goroutine id to the current (top) meter of that
// goroutine. Each meter records the previous top when it starts, forming
// the stack without the map itself holding more than the tops.
var localMeters = struct {
	sync.Mutex
	tops map[int64]weakMeterHandle
}{tops: make(map[int64]weakMeterHandle)}

func makeWeakMeter[E logiface.Event](m *Meter[E]) weakMeterHandle {
	return weakMeter[E]{p: weak.Make(m)}
}

func (x weakMeter[E]) value() meterHandle {
	if m := x.p.Value(); m != nil {
		return m
	}
	return nil
}

// currentMeterHandle returns the calling goroutine's current meter, or
// nil. Expired references (meter collected without termination) are
// pruned on access.
func currentMeterHandle() meterHandle {
	gid := goroutineid.ID()
	localMeters.Lock()
	defer localMeters.Unlock()
	h, ok := localMeters.tops[gid]
	if !ok {
		return nil
	}
	m := h.value()
	if m == nil {
		delete(localMeters.tops, gid)
	}
	return m
}

// pushCurrentMeter makes h the top for gid, returning the previous top
// (which the meter retains, to restore on termination).
func pushCurrentMeter(gid int64, h weakMeterHandle) (prev weakMeterHandle) {
	localMeters.Lock()
	defer localMeters.Unlock()
	prev = localMeters.tops[gid]
	localMeters.tops[gid] = h
	return
}

// restoreCurrentMeter restores prev as the top for gid, reporting whether
// self was still the top at the time. The restore happens regardless, per
// the stored previous reference of the terminating meter.
func restoreCurrentMeter(gid int64, self meterHandle, prev weakMeterHandle) (wasTop bool) {
	localMeters.Lock()
	defer localMeters.Unlock()
	if top, ok := localMeters.tops[gid]; ok {
		wasTop = top.value() == self
	}
	if prev == nil || prev.value() == nil {
		delete(localMeters.tops, gid)
	} else {
		localMeters.tops[gid] = prev
	}
	return
}

// Current returns the calling goroutine's current meter, that is the most
// recently started meter not yet terminated, or a no-op sentinel meter if
// there is none (or if it was started with a different event type).
//
// The sentinel accepts the full Meter API, and emits nothing.
func Current[E logiface.Event]() *Meter[E] {
	if m, ok := currentMeterHandle().(*Meter[E]); ok {
		return m
	}
	return &Meter[E]{noop: true}
}
