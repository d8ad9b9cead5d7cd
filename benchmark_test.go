package meterface

import (
	"io"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/meterface/internal/mockmeter"
	"github.com/joeycumines/stumpy"
)

func BenchmarkMeter_lifecycleDisabled(b *testing.B) {
	var sink *Sink[*mockmeter.Event]
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := sink.Meter(`bench`)
		m.Start().Inc().Ok()
	}
}

func BenchmarkMeter_lifecycle(b *testing.B) {
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(io.Discard)),
		stumpy.L.WithLevel(logiface.LevelTrace),
	)
	sink := NewSink(
		WithMessageLogger(logger),
		WithDataLogger(logger),
		WithSession[*stumpy.Event](NewSession(8)),
	)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := sink.Meter(`bench`)
		m.Start().Inc().Ok()
	}
}

func BenchmarkAppendData(b *testing.B) {
	d := Data{
		SessionUUID:        `aB3xQ9pL`,
		Position:           17,
		Category:           `orders.import`,
		Operation:          `validate`,
		StartTime:          1200,
		StopTime:           1800,
		CurrentIteration:   42,
		ExpectedIterations: 100,
	}
	var buf []byte
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = AppendData(buf[:0], &d)
	}
}
