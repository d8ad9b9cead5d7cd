// Package mockmeter provides an in-memory logiface implementation used by
// the meterface tests, capturing every event for field-level assertions.
package mockmeter

import (
	"sync"

	"github.com/joeycumines/logiface"
)

type (
	// Event is a captured log event.
	Event struct {
		logiface.UnimplementedEvent
		Err    error
		Msg    string
		Fields []Field
		Lvl    logiface.Level
	}

	// Field is one structured field, in the order added.
	Field struct {
		Val any
		Key string
	}

	// Writer accumulates events. Safe for concurrent use.
	Writer struct {
		mu     sync.Mutex
		events []*Event
	}
)

var (
	L = logiface.LoggerFactory[*Event]{}

	// compile time assertions

	_ logiface.Event          = (*Event)(nil)
	_ logiface.Writer[*Event] = (*Writer)(nil)
)

// New constructs a capture writer and a logger emitting to it, retaining
// the given level.
func New(level logiface.Level) (*Writer, *logiface.Logger[*Event]) {
	w := &Writer{}
	logger := L.New(
		L.WithWriter(w),
		L.WithEventFactory(L.NewEventFactoryFunc(func(level logiface.Level) *Event {
			return &Event{Lvl: level}
		})),
		L.WithLevel(level),
	)
	return w, logger
}

func (x *Event) Level() logiface.Level { return x.Lvl }

func (x *Event) AddField(key string, val any) {
	x.Fields = append(x.Fields, Field{Key: key, Val: val})
}

func (x *Event) AddMessage(msg string) bool {
	x.Msg = msg
	return true
}

func (x *Event) AddError(err error) bool {
	x.Err = err
	return true
}

// Field returns the value of the named field, or nil.
func (x *Event) Field(key string) any {
	for _, f := range x.Fields {
		if f.Key == key {
			return f.Val
		}
	}
	return nil
}

// Marker returns the event's marker field, or "".
func (x *Event) Marker() string {
	s, _ := x.Field(`marker`).(string)
	return s
}

func (x *Writer) Write(event *Event) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.events = append(x.events, event)
	return nil
}

// Events returns a snapshot of the captured events.
func (x *Writer) Events() []*Event {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]*Event(nil), x.events...)
}

// ByMarker returns the captured events carrying the given marker.
func (x *Writer) ByMarker(marker string) (out []*Event) {
	for _, e := range x.Events() {
		if e.Marker() == marker {
			out = append(out, e)
		}
	}
	return
}

// Markers returns the marker of every captured event, in order.
func (x *Writer) Markers() (out []string) {
	for _, e := range x.Events() {
		out = append(out, e.Marker())
	}
	return
}

// Reset discards the captured events.
func (x *Writer) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.events = nil
}
