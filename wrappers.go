package meterface

import (
	"errors"
	"fmt"

	"github.com/joeycumines/logiface"
)

// The operation wrappers attach a meter lifecycle around a unit of work:
// Start, then the terminal event classified from the work's outcome. The
// work's error (or panic) always propagates to the caller, the wrappers
// only observe. An explicit terminal call made inside the work wins, by
// first-termination-wins: on normal return the wrapper calls Ok only if the
// meter is still running, and on error or panic the wrapper's own terminal
// call is dropped as a diagnostic.

// Run drives work under m: ok on normal return, fail on error or panic.
// The work's error is returned unchanged, panics are re-raised.
func Run[E logiface.Event](m *Meter[E], work func() error) error {
	m.Start()
	defer failOnPanic(m)
	if err := work(); err != nil {
		m.Fail(err)
		return err
	}
	okIfRunning(m)
	return nil
}

// RunOrReject is Run, except errors matching rejectWith (via errors.Is)
// terminate as reject rather than fail.
func RunOrReject[E logiface.Event](m *Meter[E], work func() error, rejectWith ...error) error {
	m.Start()
	defer failOnPanic(m)
	if err := work(); err != nil {
		if matchesAny(err, rejectWith) {
			m.Reject(err)
		} else {
			m.Fail(err)
		}
		return err
	}
	okIfRunning(m)
	return nil
}

// Call drives work under m, recording the returned value under the
// `result` context key of the OK record. Fails on error or panic.
func Call[E logiface.Event, T any](m *Meter[E], work func() (T, error)) (T, error) {
	m.Start()
	defer failOnPanic(m)
	v, err := work()
	if err != nil {
		m.Fail(err)
		return v, err
	}
	if !m.Data().IsStopped() {
		m.Ctx(`result`, fmt.Sprint(v)).Ok()
	}
	return v, nil
}

// CallOrRejectChecked treats a returned error as an anticipated, domain
// outcome (reject), and a panic as a failure. Use it when the work's
// error returns model expected refusals.
func CallOrRejectChecked[E logiface.Event, T any](m *Meter[E], work func() (T, error)) (T, error) {
	m.Start()
	defer failOnPanic(m)
	v, err := work()
	if err != nil {
		m.Reject(err)
		return v, err
	}
	if !m.Data().IsStopped() {
		m.Ctx(`result`, fmt.Sprint(v)).Ok()
	}
	return v, nil
}

// CallOrReject is Call, except errors matching rejectWith (via errors.Is)
// terminate as reject rather than fail.
func CallOrReject[E logiface.Event, T any](m *Meter[E], work func() (T, error), rejectWith ...error) (T, error) {
	m.Start()
	defer failOnPanic(m)
	v, err := work()
	if err != nil {
		if matchesAny(err, rejectWith) {
			m.Reject(err)
		} else {
			m.Fail(err)
		}
		return v, err
	}
	if !m.Data().IsStopped() {
		m.Ctx(`result`, fmt.Sprint(v)).Ok()
	}
	return v, nil
}

// SafeCall fails on any error, and wraps the error on return, so callers
// treating the result as infallible still surface the context.
func SafeCall[E logiface.Event, T any](m *Meter[E], work func() (T, error)) (T, error) {
	m.Start()
	defer failOnPanic(m)
	v, err := work()
	if err != nil {
		m.Fail(err)
		return v, fmt.Errorf(`meterface: operation %s failed: %w`, m.FullID(), err)
	}
	if !m.Data().IsStopped() {
		m.Ctx(`result`, fmt.Sprint(v)).Ok()
	}
	return v, nil
}

func okIfRunning[E logiface.Event](m *Meter[E]) {
	if !m.Data().IsStopped() {
		m.Ok()
	}
}

func failOnPanic[E logiface.Event](m *Meter[E]) {
	if r := recover(); r != nil {
		m.Fail(r)
		panic(r)
	}
}

func matchesAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
