package meterface_test

import (
	"errors"
	"os"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/meterface"
	"github.com/joeycumines/stumpy"
)

// Instruments a batch import, emitting paired human and machine records
// through a stumpy (JSON) logger.
func Example() {
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(os.Stdout)),
		stumpy.L.WithLevel(logiface.LevelTrace),
	)
	sink := meterface.NewSink(
		meterface.WithMessageLogger(logger),
		meterface.WithDataLogger(logger),
	)

	rows := []string{`a`, `b`, `c`}

	m := sink.Meter(`orders.import`, meterface.WithOperation(`validate`))
	m.M(`validating rows`).Iterations(uint64(len(rows))).Limit(30 * time.Second)
	m.Start()
	for range rows {
		m.Inc().Progress()
	}
	m.Ctx(`source`, `upload`).Ok()
}

// Wraps a unit of work, classifying anticipated refusals as rejects.
func Example_wrappers() {
	var errUnavailable = errors.New(`unavailable`)

	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(os.Stdout)),
	)
	sink := meterface.NewSink(meterface.WithMessageLogger(logger))

	_ = meterface.RunOrReject(sink.Meter(`orders.submit`), func() error {
		return errUnavailable
	}, errUnavailable)
}
