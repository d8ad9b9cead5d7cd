package meterface

import (
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/meterface/internal/mockmeter"
	"github.com/joeycumines/meterface/internal/runtimeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSink_defaults(t *testing.T) {
	ResetSession()
	defer ResetSession()
	sink := NewSink[*mockmeter.Event]()
	assert.Same(t, DefaultSession(), sink.Session())
	assert.Equal(t, DefaultProgressPeriod, sink.progressPeriod())
	assert.Nil(t, sink.messageBuilder(logiface.LevelError))
	assert.Nil(t, sink.dataBuilder())
}

func TestNewSink_configuredUUIDLength(t *testing.T) {
	cfg := NewConfig()
	cfg.UUIDLength = 12
	sink := NewSink(WithConfig[*mockmeter.Event](cfg))
	require.NotSame(t, DefaultSession(), sink.Session())
	assert.Len(t, sink.Session().UUID(), 12)
}

func TestSink_channelNames(t *testing.T) {
	cfg := NewConfig()
	cfg.MessagePrefix = `app.`
	cfg.MessageSuffix = `.msg`
	cfg.DataPrefix = `data.`
	msg, _, sink := newTestSink(cfg)
	sink.Meter(`orders`, WithClock(new(ManualClock))).Start().Ok()
	require.NotEmpty(t, msg.Events())
	assert.Equal(t, `app.orders.msg`, msg.Events()[0].Field(`logger`))
}

func TestSink_nilSafe(t *testing.T) {
	var sink *Sink[*mockmeter.Event]
	assert.NotNil(t, sink.Session())
	assert.Nil(t, sink.messageBuilder(logiface.LevelError))
	assert.Nil(t, sink.dataBuilder())
	assert.True(t, sink.allowDiagnostic(MarkerIllegal, runtimeutil.Caller{}))
	assert.Equal(t, `c`, sink.messageName(`c`))
}
