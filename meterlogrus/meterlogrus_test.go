package meterlogrus

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/joeycumines/meterface"
	"github.com/sirupsen/logrus"
)

func newLogrus(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.TraceLevel)
	return l
}

func TestNewSink(t *testing.T) {
	var msg, dat bytes.Buffer
	sink := NewSink(newLogrus(&msg), newLogrus(&dat),
		meterface.WithSession[*Event](meterface.NewSession(8)))

	m := sink.Meter(`orders.import`)
	m.Start().Inc().Ok()

	if got := msg.String(); !strings.Contains(got, `MSG_START`) || !strings.Contains(got, `MSG_OK`) {
		t.Error(got)
	}
	if got := dat.String(); !strings.Contains(got, `DATA_START`) || !strings.Contains(got, `DATA_OK`) {
		t.Error(got)
	}
	if got := dat.String(); !strings.Contains(got, `sessionUuid`) {
		t.Error(got)
	}
}
