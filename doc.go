// Package meterface implements operation instrumentation on top of the
// github.com/joeycumines/logiface structured logging facade.
//
// The central type is [Meter], which models the lifecycle of a single
// application operation, from creation, through an optional start and any
// number of progress updates, to exactly one terminal outcome (ok, reject,
// or fail). Every lifecycle transition is emitted as a pair of records, a
// human-readable message and a machine-parsable data record, each tagged
// with a [Marker] classifying the event.
//
// Meters are deliberately hard to misuse. Every state-affecting call is
// classified against the current state before it is applied, and calls that
// arrive in the wrong state (or with invalid arguments) are either applied
// with a diagnostic, or ignored with a diagnostic, but never panic, and
// never corrupt the terminal outcome. Once a meter has stopped, its outcome
// is immutable, including under concurrent termination attempts.
//
// See [Sink.Meter] for the entry point, and Run, Call, and friends for
// wrappers that drive the lifecycle around a unit of work.
package meterface
