// Package meterlogrus wires meterface sinks to
// github.com/sirupsen/logrus, via the ilogrus logiface integration.
package meterlogrus

import (
	"github.com/joeycumines/ilogrus"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/meterface"
	"github.com/sirupsen/logrus"
)

// Event is the logiface event type of logrus-backed sinks.
type Event = ilogrus.Event

// NewSink builds a sink pair emitting through logrus. The message logger
// carries the human-readable channel, the data logger the
// machine-parsable channel, and should retain trace.
func NewSink(message, data *logrus.Logger, options ...meterface.SinkOption[*Event]) *meterface.Sink[*Event] {
	return meterface.NewSink(append([]meterface.SinkOption[*Event]{
		meterface.WithMessageLogger(newLogger(message)),
		meterface.WithDataLogger(newLogger(data)),
	}, options...)...)
}

func newLogger(l *logrus.Logger) *logiface.Logger[*Event] {
	return ilogrus.L.New(
		ilogrus.L.WithLogrus(l),
		ilogrus.L.WithLevel(logiface.LevelTrace),
	)
}
