package meterface

import (
	"time"

	"github.com/joeycumines/meterface/unitfmt"
)

// appendMessage renders the one-line human-readable form of a lifecycle
// event:
//
//	OK [fast] orders.import/validate#17: validating rows; 42/100; 400ms; 105/s; {userId:u1}
//
// The status word is followed by the outcome path (if any), the full id,
// then a `; `-separated list of the description, iteration progress,
// elapsed time, throughput, fail message, and context delta, each omitted
// when absent.
func appendMessage(dst []byte, kind eventKind, slow bool, d *Data, now int64) []byte {
	var word, path string
	switch kind {
	case eventStart:
		word = `START`
	case eventProgress:
		word = `PROGRESS`
	case eventOk:
		word, path = `OK`, d.OkPath
		if slow {
			word = `SLOW_OK`
		}
	case eventReject:
		word, path = `REJECT`, d.RejectPath
	case eventFail:
		word, path = `FAIL`, d.FailPath
	}
	dst = append(dst, word...)
	if path != `` {
		dst = append(dst, ` [`...)
		dst = append(dst, path...)
		dst = append(dst, ']')
	}
	dst = append(dst, ' ')
	dst = append(dst, d.FullID()...)

	var parts int
	sep := func() {
		if parts == 0 {
			dst = append(dst, ':', ' ')
		} else {
			dst = append(dst, ';', ' ')
		}
		parts++
	}

	if d.Description != `` {
		sep()
		dst = append(dst, d.Description...)
	}
	if d.CurrentIteration > 0 || d.ExpectedIterations > 0 {
		sep()
		dst = unitfmt.AppendCount(dst, d.CurrentIteration)
		if d.ExpectedIterations > 0 {
			dst = append(dst, '/')
			dst = unitfmt.AppendCount(dst, d.ExpectedIterations)
		}
	}
	if kind != eventStart && d.StartTime != 0 {
		sep()
		dst = unitfmt.AppendDuration(dst, time.Duration(d.ExecutionTime(now)))
	}
	if r := d.IterationsPerSecond(now); kind != eventStart && r > 0 {
		sep()
		dst = unitfmt.AppendRate(dst, r)
	}
	if kind == eventFail && d.FailMessage != `` {
		sep()
		dst = append(dst, d.FailMessage...)
	}
	if len(d.Context) != 0 {
		sep()
		dst = append(dst, '{')
		for i, e := range d.Context {
			if i != 0 {
				dst = append(dst, ',')
			}
			dst = append(dst, e.Key...)
			dst = append(dst, ':')
			if e.Null {
				dst = append(dst, nullValue...)
			} else {
				dst = append(dst, e.Value...)
			}
		}
		dst = append(dst, '}')
	}
	return dst
}
