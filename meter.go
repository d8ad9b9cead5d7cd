package meterface

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/meterface/internal/goroutineid"
	"github.com/joeycumines/meterface/internal/runtimeutil"
)

type (
	// Meter models the lifecycle of one application operation. It is
	// created by [Sink.Meter] (or [Meter.Sub]), optionally configured via
	// the chainable setters, started with [Meter.Start], and terminated by
	// exactly one of [Meter.Ok], [Meter.Reject], [Meter.Fail], or
	// [Meter.Close].
	//
	// A meter models a single logical operation, and is not intended to be
	// mutated from multiple goroutines, with one exception: concurrent
	// termination attempts are safe, and exactly one wins. All methods
	// tolerate misuse, classifying every call against the current state,
	// and at worst ignore it with a diagnostic record. No method panics,
	// and no method blocks beyond the synchronous forward to the sink.
	//
	// A meter dropped after Start without termination emits an
	// INCONSISTENT_FINALIZED diagnostic; a meter that never started is not
	// reported. This is best effort: the emission is driven by garbage
	// collection, so it is asynchronous, and not guaranteed before process
	// exit.
	Meter[E logiface.Event] struct {
		sink       *Sink[E]
		clock      Clock
		data       *Data
		prev       weakMeterHandle
		cleanup    runtime.Cleanup
		gid        int64
		mu         sync.Mutex
		stopped    atomic.Bool
		pushed     bool
		hasCleanup bool
		noop       bool
	}

	// MeterOption configures construction, see [Sink.Meter].
	MeterOption func(c *meterConfig)

	meterConfig struct {
		clock     Clock
		operation string
	}

	// eventKind distinguishes the lifecycle events for emission.
	eventKind int

	// finalizeProbe carries what the drop-detection cleanup needs, without
	// keeping the meter itself alive.
	finalizeProbe[E logiface.Event] struct {
		data *Data
		sink *Sink[E]
	}
)

const (
	eventStart eventKind = iota
	eventProgress
	eventOk
	eventReject
	eventFail
)

// closeFailPath is the fail path recorded when a meter is closed without
// an explicit terminal call.
const closeFailPath = `try-with-resources`

// WithOperation sets the optional sub-operation name of the meter
// identity.
func WithOperation(operation string) MeterOption {
	return func(c *meterConfig) {
		c.operation = operation
	}
}

// WithClock overrides the meter's time source, e.g. with a [ManualClock]
// in tests. Defaults to [SystemClock].
func WithClock(clock Clock) MeterOption {
	return func(c *meterConfig) {
		c.clock = clock
	}
}

// Meter constructs a new meter bound to category, in the created state.
// The parent is inferred from the calling goroutine's current meter, if
// any.
func (x *Sink[E]) Meter(category string, options ...MeterOption) *Meter[E] {
	c := meterConfig{clock: defaultClock}
	for _, o := range options {
		o(&c)
	}
	if c.clock == nil {
		c.clock = defaultClock
	}
	return newMeter(x, category, c.operation, c.clock, ``)
}

func newMeter[E logiface.Event](sink *Sink[E], category, operation string, clock Clock, parent string) *Meter[E] {
	if parent == `` {
		if h := currentMeterHandle(); h != nil {
			parent = h.meterFullID()
		}
	}
	key := category
	if operation != `` {
		key = category + `/` + operation
	}
	session := sink.Session()
	d := &Data{
		SessionUUID: session.UUID(),
		Position:    session.NextPosition(key),
		Category:    category,
		Operation:   operation,
		Parent:      parent,
		CreateTime:  clock.Now(),
	}
	m := &Meter[E]{sink: sink, clock: clock, data: d}
	m.cleanup = runtime.AddCleanup(m, finalizeMeter[E], finalizeProbe[E]{data: d, sink: sink})
	m.hasCleanup = true
	return m
}

// finalizeMeter emits the drop-without-termination diagnostic. It never
// terminates the meter, the data simply records what was observed.
func finalizeMeter[E logiface.Event](p finalizeProbe[E]) {
	if !p.data.IsStarted() {
		return
	}
	if b := p.sink.messageBuilder(logiface.LevelError); b != nil {
		b.Str(`marker`, MarkerInconsistentFinalized.String()).
			Str(`logger`, p.sink.messageName(p.data.Category)).
			Str(`meter`, p.data.FullID()).
			Log(`meter dropped without a terminal call: ` + p.data.FullID())
	}
}

// Sub constructs a child meter: same sink and category, operation composed
// as `parent/name`, parent set to this meter's full id. The child is not
// started.
func (x *Meter[E]) Sub(name string) *Meter[E] {
	if x == nil || x.noop {
		return &Meter[E]{noop: true}
	}
	defer x.recoverBug(callStart)
	if name == `` {
		x.mu.Lock()
		x.diagnostic(MarkerIllegal, `Sub`, `empty sub-operation name`)
		x.mu.Unlock()
	}
	x.mu.Lock()
	category := x.data.Category
	operation := x.data.Operation
	parent := x.data.FullID()
	x.mu.Unlock()
	if name != `` {
		if operation != `` {
			operation = operation + `/` + name
		} else {
			operation = name
		}
	}
	return newMeter(x.sink, category, operation, x.clock, parent)
}

// Data returns a snapshot of the meter's attributes.
func (x *Meter[E]) Data() Data {
	if x == nil || x.data == nil {
		return Data{}
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.data.snapshot()
}

// FullID returns the composed identity, e.g. `orders.import/validate#17`.
func (x *Meter[E]) FullID() string {
	if x == nil || x.data == nil {
		return ``
	}
	return x.data.FullID()
}

func (x *Meter[E]) meterFullID() string { return x.FullID() }

// M sets the human-readable description.
func (x *Meter[E]) M(msg string) *Meter[E] {
	return x.set(callDescription, msg != ``, func() {
		x.data.Description = msg
	})
}

// Mf sets the description from a format string.
func (x *Meter[E]) Mf(format string, args ...any) *Meter[E] {
	return x.set(callDescription, format != ``, func() {
		x.data.Description = fmt.Sprintf(format, args...)
	})
}

// Ctx adds a context entry, part of the delta carried by the next emitted
// record (the context is cleared after each emission). With no value the
// entry renders as `<null>`.
func (x *Meter[E]) Ctx(key string, value ...string) *Meter[E] {
	return x.set(callContext, key != ``, func() {
		if len(value) == 0 {
			x.data.setContext(key, ``, true)
		} else {
			x.data.setContext(key, value[0], false)
		}
	})
}

// Unctx removes a context entry.
func (x *Meter[E]) Unctx(key string) *Meter[E] {
	return x.set(callContext, key != ``, func() {
		x.data.unsetContext(key)
	})
}

// Iterations declares the expected number of iterations, used for
// progress rendering.
func (x *Meter[E]) Iterations(expected uint64) *Meter[E] {
	return x.set(callIterations, expected > 0, func() {
		x.data.ExpectedIterations = expected
	})
}

// Limit declares the advisory time limit. An operation exceeding it is
// reported as slow, upgrading the OK event; nothing is cancelled.
func (x *Meter[E]) Limit(limit time.Duration) *Meter[E] {
	return x.set(callLimit, limit > 0, func() {
		x.data.TimeLimit = int64(limit / time.Millisecond)
	})
}

// Path presets the ok path, the flow identifier reported if the operation
// terminates ok.
func (x *Meter[E]) Path(path any) *Meter[E] {
	return x.set(callPath, path != nil, func() {
		x.data.OkPath, _ = pathString(path, false)
	})
}

// Inc advances the iteration counter by one.
func (x *Meter[E]) Inc() *Meter[E] {
	return x.set(callInc, true, func() {
		x.data.CurrentIteration++
	})
}

// IncBy advances the iteration counter by n.
func (x *Meter[E]) IncBy(n uint64) *Meter[E] {
	return x.set(callInc, n > 0, func() {
		x.data.CurrentIteration += n
	})
}

// IncTo moves the iteration counter to n, which must exceed the current
// value (the counter is non-decreasing).
func (x *Meter[E]) IncTo(n uint64) *Meter[E] {
	if x == nil || x.noop {
		return x
	}
	defer x.recoverBug(callInc)
	x.mu.Lock()
	defer x.mu.Unlock()
	v := classify(x.data, callInc, n > x.data.CurrentIteration)
	switch v.tier {
	case tierApplySet:
		x.data.CurrentIteration = n
	case tierIgnore:
		x.diagnostic(v.marker, callInc.String(), ``)
	}
	return x
}

// Start marks the beginning of the operation, emits the START event pair,
// and makes this meter the calling goroutine's current meter. Calling
// Start again on a running meter resets the start time, with a
// diagnostic.
func (x *Meter[E]) Start() *Meter[E] {
	if x == nil || x.noop {
		return x
	}
	defer x.recoverBug(callStart)
	x.mu.Lock()
	defer x.mu.Unlock()
	v := classify(x.data, callStart, true)
	switch v.tier {
	case tierIgnore:
		x.diagnostic(v.marker, callStart.String(), ``)
		return x
	case tierCorrect:
		x.diagnostic(v.marker, callStart.String(), ``)
	}
	now := x.now()
	x.data.StartTime = now
	x.data.lastProgressTime = now
	x.data.lastProgressIteration = x.data.CurrentIteration
	if !x.pushed {
		x.gid = goroutineid.ID()
		x.prev = pushCurrentMeter(x.gid, makeWeakMeter(x))
		x.pushed = true
	}
	x.emit(eventStart, now)
	return x
}

// Progress reports forward progress. The event pair is only emitted when
// the iteration counter advanced since the last emission AND the
// configured progress period elapsed; otherwise the call is a cheap
// no-op.
func (x *Meter[E]) Progress() *Meter[E] {
	if x == nil || x.noop {
		return x
	}
	defer x.recoverBug(callProgress)
	x.mu.Lock()
	defer x.mu.Unlock()
	v := classify(x.data, callProgress, true)
	if v.tier == tierIgnore {
		x.diagnostic(v.marker, callProgress.String(), ``)
		return x
	}
	now := x.now()
	if x.data.CurrentIteration > x.data.lastProgressIteration &&
		now-x.data.lastProgressTime > int64(x.sink.progressPeriod()) {
		x.emit(eventProgress, now)
		x.data.lastProgressTime = now
		x.data.lastProgressIteration = x.data.CurrentIteration
	}
	return x
}

// Ok terminates the operation successfully, emitting OK (or SLOW_OK when
// the time limit was exceeded).
func (x *Meter[E]) Ok() *Meter[E] {
	return x.terminate(callOk, nil, true)
}

// OkPath terminates the operation successfully, recording the flow path
// taken.
func (x *Meter[E]) OkPath(path any) *Meter[E] {
	return x.terminate(callOk, path, path != nil)
}

// Reject terminates the operation as refused for an anticipated reason,
// e.g. a validation failure. The cause may be a string, an error, or any
// value with a textual form.
func (x *Meter[E]) Reject(cause any) *Meter[E] {
	return x.terminate(callReject, cause, cause != nil)
}

// Fail terminates the operation as failed. An error cause additionally
// records its message alongside the fully-qualified type as the path.
func (x *Meter[E]) Fail(cause any) *Meter[E] {
	return x.terminate(callFail, cause, cause != nil)
}

// Close implements io.Closer, so a meter works under defer. If the meter
// already stopped it does nothing. Otherwise it terminates the operation
// as failed with path `try-with-resources`, initializing the start time
// first if the meter never started. The returned error is always nil.
func (x *Meter[E]) Close() error {
	x.terminate(callClose, nil, true)
	return nil
}

func (x *Meter[E]) terminate(call meterCall, cause any, argOK bool) *Meter[E] {
	if x == nil || x.noop {
		return x
	}
	defer x.recoverBug(call)
	x.mu.Lock()
	defer x.mu.Unlock()
	v := classify(x.data, call, argOK)
	switch v.tier {
	case tierNoop:
		return x
	case tierIgnore:
		x.diagnostic(v.marker, call.String(), ``)
		return x
	}
	// The stop gate: the first terminator to flip it owns the outcome.
	// The mutex already serializes terminators, the atomic additionally
	// publishes the transition to unsynchronized readers.
	if !x.stopped.CompareAndSwap(false, true) {
		x.diagnostic(call.inconsistentMarker(), call.String(), ``)
		return x
	}
	if v.tier == tierCorrect {
		x.diagnostic(v.marker, call.String(), ``)
	}
	now := x.now()
	kind := eventOk
	switch call {
	case callOk:
		if cause != nil {
			x.data.OkPath, _ = pathString(cause, false)
		}
	case callReject:
		x.data.RejectPath, _ = pathString(cause, false)
		kind = eventReject
	case callFail:
		x.data.FailPath, x.data.FailMessage = pathString(cause, true)
		kind = eventFail
	case callClose:
		if x.data.StartTime == 0 {
			x.data.StartTime = now
		}
		x.data.FailPath = closeFailPath
		kind = eventFail
	}
	x.data.StopTime = now
	x.emit(kind, now)
	x.restoreStack()
	if x.hasCleanup {
		x.cleanup.Stop()
		x.hasCleanup = false
	}
	return x
}

// set applies the common flow of the supporting-attribute setters.
func (x *Meter[E]) set(call meterCall, argOK bool, apply func()) *Meter[E] {
	if x == nil || x.noop {
		return x
	}
	defer x.recoverBug(call)
	x.mu.Lock()
	defer x.mu.Unlock()
	v := classify(x.data, call, argOK)
	switch v.tier {
	case tierApplySet:
		apply()
	case tierIgnore:
		x.diagnostic(v.marker, call.String(), ``)
	}
	return x
}

// now reads the clock, mapping an (unlikely) zero reading away from the
// "absent" sentinel.
func (x *Meter[E]) now() int64 {
	if n := x.clock.Now(); n != 0 {
		return n
	}
	return 1
}

// emit writes one lifecycle event to both channels, then clears the
// context delta. Callers hold the mutex.
func (x *Meter[E]) emit(kind eventKind, now int64) {
	slow := x.data.IsSlow(now)
	var (
		level     logiface.Level
		msgMarker Marker
		dmMarker  Marker
	)
	switch kind {
	case eventStart:
		level, msgMarker, dmMarker = logiface.LevelDebug, MarkerMsgStart, MarkerDataStart
	case eventProgress:
		level, msgMarker, dmMarker = logiface.LevelInformational, MarkerMsgProgress, MarkerDataProgress
	case eventOk:
		if slow {
			level, msgMarker, dmMarker = logiface.LevelWarning, MarkerMsgSlowOk, MarkerDataSlowOk
		} else {
			level, msgMarker, dmMarker = logiface.LevelInformational, MarkerMsgOk, MarkerDataOk
		}
	case eventReject:
		level, msgMarker, dmMarker = logiface.LevelInformational, MarkerMsgReject, MarkerDataReject
	case eventFail:
		level, msgMarker, dmMarker = logiface.LevelError, MarkerMsgFail, MarkerDataFail
	}
	if b := x.sink.messageBuilder(level); b != nil {
		b.Str(`marker`, msgMarker.String()).
			Str(`logger`, x.sink.messageName(x.data.Category)).
			Log(string(appendMessage(nil, kind, slow, x.data, now)))
	}
	if b := x.sink.dataBuilder(); b != nil {
		b.Str(`marker`, dmMarker.String()).
			Str(`logger`, x.sink.dataName(x.data.Category)).
			Log(string(AppendData(nil, x.data)))
	}
	x.data.Context = nil
}

// diagnostic emits a single error-level record on the message channel,
// with the caller's trimmed stack attached. Callers hold the mutex.
func (x *Meter[E]) diagnostic(marker Marker, call, detail string) {
	b := x.sink.messageBuilder(logiface.LevelError)
	if b == nil {
		return
	}
	// not the happy path: the stack capture only happens here
	site := newCallSiteError(2)
	var caller runtimeutil.Caller
	if s := site.Callers(); len(s) != 0 {
		caller = s[0]
	}
	if !x.sink.allowDiagnostic(marker, caller) {
		b.Release()
		return
	}
	msg := `inconsistent call to Meter.` + call + `: ` + x.data.FullID()
	if marker == MarkerIllegal {
		msg = `illegal call to Meter.` + call + `: ` + x.data.FullID()
	}
	if detail != `` {
		msg += `: ` + detail
	}
	b.Str(`marker`, marker.String()).
		Str(`logger`, x.sink.messageName(x.data.Category)).
		Str(`meter`, x.data.FullID()).
		Err(site).
		Log(msg)
}

// bug reports an unexpected internal failure. The meter stays in its last
// valid state, nothing propagates.
func (x *Meter[E]) bug(call meterCall, r any) {
	defer func() { _ = recover() }()
	if b := x.sink.messageBuilder(logiface.LevelError); b != nil {
		b.Str(`marker`, MarkerBug.String()).
			Str(`meter`, x.data.FullID()).
			Log(fmt.Sprintf(`unexpected failure in Meter.%s: %v`, call, r))
	}
}

// recoverBug is deferred by every public method, implementing the
// catch-log-and-swallow policy for internal faults.
func (x *Meter[E]) recoverBug(call meterCall) {
	if r := recover(); r != nil {
		x.bug(call, r)
	}
}

// restoreStack reinstates the meter's stored previous top as the
// goroutine-local current meter. Callers hold the mutex.
func (x *Meter[E]) restoreStack() {
	if !x.pushed {
		return
	}
	x.pushed = false
	if !restoreCurrentMeter(x.gid, x, x.prev) {
		if b := x.sink.messageBuilder(logiface.LevelError); b != nil {
			b.Str(`marker`, MarkerIllegal.String()).
				Str(`meter`, x.data.FullID()).
				Log(`meter was not the current meter at termination: ` + x.data.FullID())
		}
	}
	x.prev = nil
}
