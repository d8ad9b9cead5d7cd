package meterface

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// E4 / property 3: under concurrent termination, exactly one call wins,
// every other attempt surfaces as a diagnostic, and the final state
// matches the winner.
func TestMeter_concurrentTermination(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreAnyFunction(`github.com/joeycumines/go-catrate.(*Limiter).worker`),
	)

	for i := 0; i < 50; i++ {
		msg, _, sink := newTestSink(nil)
		m := sink.Meter(`orders.import`, WithClock(new(ManualClock))).Start()

		var (
			ready sync.WaitGroup
			gate  = make(chan struct{})
			done  sync.WaitGroup
		)
		terminate := func(fn func()) {
			done.Add(1)
			ready.Add(1)
			go func() {
				defer done.Done()
				ready.Done()
				<-gate
				fn()
			}()
		}
		terminate(func() { m.Ok() })
		terminate(func() { m.Fail(`boom`) })
		ready.Wait()
		close(gate)
		done.Wait()

		d := m.Data()
		require.True(t, d.IsStopped())

		ok := len(msg.ByMarker(`MSG_OK`))
		fail := len(msg.ByMarker(`MSG_FAIL`))
		require.Equal(t, 1, ok+fail, `expected exactly one terminal event`)
		if ok == 1 {
			assert.True(t, d.IsOK())
			assert.Len(t, msg.ByMarker(`INCONSISTENT_FAIL`), 1)
		} else {
			assert.True(t, d.IsFail())
			assert.Equal(t, `boom`, d.FailPath)
			assert.Len(t, msg.ByMarker(`INCONSISTENT_OK`), 1)
		}

		// the outcome is frozen
		m.Reject(`late`)
		after := m.Data()
		assert.Equal(t, d.StopTime, after.StopTime)
		assert.Equal(t, d.OkPath, after.OkPath)
		assert.Equal(t, d.RejectPath, after.RejectPath)
		assert.Equal(t, d.FailPath, after.FailPath)
	}
}
