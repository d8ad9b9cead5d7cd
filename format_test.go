package meterface

import (
	"testing"
)

func TestAppendMessage(t *testing.T) {
	base := Data{
		SessionUUID: `s`,
		Position:    17,
		Category:    `orders.import`,
		Operation:   `validate`,
	}
	for _, tc := range []struct {
		Name string
		Kind eventKind
		Slow bool
		With func(d *Data)
		Now  int64
		Want string
	}{
		{
			Name: `start bare`,
			Kind: eventStart,
			Want: `START orders.import/validate#17`,
		},
		{
			Name: `start with description and expectation`,
			Kind: eventStart,
			With: func(d *Data) {
				d.Description = `validating rows`
				d.ExpectedIterations = 100
				d.StartTime = 1
			},
			Want: `START orders.import/validate#17: validating rows; 0/100`,
		},
		{
			Name: `progress`,
			Kind: eventProgress,
			With: func(d *Data) {
				d.StartTime = 1
				d.CurrentIteration = 42
				d.ExpectedIterations = 100
				d.Context = []ContextEntry{{Key: `userId`, Value: `u1`}}
			},
			Now:  1 + 400e6,
			Want: `PROGRESS orders.import/validate#17: 42/100; 400ms; 105/s; {userId:u1}`,
		},
		{
			Name: `ok`,
			Kind: eventOk,
			With: func(d *Data) {
				d.StartTime = 1
				d.StopTime = 1 + 400e6
				d.CurrentIteration = 3
				d.ExpectedIterations = 3
			},
			Want: `OK orders.import/validate#17: 3/3; 400ms; 7.5/s`,
		},
		{
			Name: `slow ok with path`,
			Kind: eventOk,
			Slow: true,
			With: func(d *Data) {
				d.StartTime = 1
				d.StopTime = 1 + 120e6
				d.OkPath = `fast`
			},
			Want: `SLOW_OK [fast] orders.import/validate#17: 120ms`,
		},
		{
			Name: `reject`,
			Kind: eventReject,
			With: func(d *Data) {
				d.StartTime = 1
				d.StopTime = 1 + 200e6
				d.CurrentIteration = 2
				d.RejectPath = `validation`
			},
			Want: `REJECT [validation] orders.import/validate#17: 2; 200ms; 10/s`,
		},
		{
			Name: `fail with message and null context`,
			Kind: eventFail,
			With: func(d *Data) {
				d.StartTime = 1
				d.StopTime = 1 + 50e6
				d.FailPath = `errors.errorString`
				d.FailMessage = `boom`
				d.Context = []ContextEntry{{Key: `trace`, Null: true}}
			},
			Want: `FAIL [errors.errorString] orders.import/validate#17: 50ms; boom; {trace:<null>}`,
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			d := base
			if tc.With != nil {
				tc.With(&d)
			}
			if got := string(appendMessage(nil, tc.Kind, tc.Slow, &d, tc.Now)); got != tc.Want {
				t.Errorf("got  %q\nwant %q", got, tc.Want)
			}
		})
	}
}
