// Package meterzero wires meterface sinks to github.com/rs/zerolog, via
// the izerolog logiface integration.
package meterzero

import (
	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/meterface"
	"github.com/rs/zerolog"
)

// Event is the logiface event type of zerolog-backed sinks.
type Event = izerolog.Event

// NewSink builds a sink pair emitting through zerolog. The message logger
// carries the human-readable channel at its configured level, the data
// logger carries the machine-parsable channel, and should retain trace.
func NewSink(message, data zerolog.Logger, options ...meterface.SinkOption[*Event]) *meterface.Sink[*Event] {
	return meterface.NewSink(append([]meterface.SinkOption[*Event]{
		meterface.WithMessageLogger(newLogger(message)),
		meterface.WithDataLogger(newLogger(data)),
	}, options...)...)
}

func newLogger(z zerolog.Logger) *logiface.Logger[*Event] {
	return izerolog.L.New(
		izerolog.L.WithZerolog(z),
		izerolog.L.WithLevel(logiface.LevelTrace),
	)
}
