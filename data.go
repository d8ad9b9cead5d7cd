package meterface

type (
	// Data is the value object carrying every attribute of one operation.
	//
	// Timestamps are nanoseconds relative to the clock origin, with 0
	// meaning absent. All state queries (IsStarted etc.) derive from the
	// fields, the fields themselves are the single source of truth.
	//
	// A Data value obtained via [Meter.Data] is a snapshot, safe to retain.
	Data struct {
		SessionUUID        string
		Category           string
		Operation          string
		Parent             string
		Description        string
		OkPath             string
		RejectPath         string
		FailPath           string
		FailMessage        string
		Context            []ContextEntry
		Position           uint64
		CreateTime         int64
		StartTime          int64
		StopTime           int64
		TimeLimit          int64 // milliseconds, 0 = no limit
		CurrentIteration   uint64
		ExpectedIterations uint64 // 0 = unknown

		// progress bookkeeping, not part of the serialized record
		lastProgressTime      int64
		lastProgressIteration uint64
	}

	// ContextEntry is one key/value pair of the meter context, in insertion
	// order. Null is set for keys added without a value, rendered as
	// `<null>`.
	ContextEntry struct {
		Key   string
		Value string
		Null  bool
	}
)

// FullID returns the composed identity, e.g. `orders.import/validate#17`.
func (x *Data) FullID() string {
	return FullID(x.Category, x.Operation, x.Position)
}

// IsCreated returns true before Start and before any terminal event.
func (x Data) IsCreated() bool { return x.StartTime == 0 && x.StopTime == 0 }

// IsStarted returns true between Start and the terminal event.
func (x Data) IsStarted() bool { return x.StartTime != 0 && x.StopTime == 0 }

// IsStopped returns true once a terminal event has been applied.
func (x Data) IsStopped() bool { return x.StopTime != 0 }

// IsOK returns true if the operation stopped without a reject or fail
// outcome.
func (x Data) IsOK() bool {
	return x.IsStopped() && x.RejectPath == `` && x.FailPath == ``
}

// IsReject returns true if the operation stopped with a reject outcome.
func (x Data) IsReject() bool { return x.IsStopped() && x.RejectPath != `` }

// IsFail returns true if the operation stopped with a fail outcome.
func (x Data) IsFail() bool { return x.IsStopped() && x.FailPath != `` }

// ExecutionTime returns the elapsed nanoseconds between start and stop,
// using now while the operation is still running, or 0 if it never
// started.
func (x *Data) ExecutionTime(now int64) int64 {
	if x.StartTime == 0 {
		return 0
	}
	if x.StopTime != 0 {
		return x.StopTime - x.StartTime
	}
	return now - x.StartTime
}

// IsSlow returns true if a time limit is configured and the execution time
// exceeds it.
func (x *Data) IsSlow(now int64) bool {
	return x.TimeLimit > 0 && x.StartTime != 0 &&
		x.ExecutionTime(now)/1e6 > x.TimeLimit
}

// IterationsPerSecond returns the mean iteration throughput, or 0 when
// undefined (no iterations, or no elapsed time).
func (x *Data) IterationsPerSecond(now int64) float64 {
	if x.CurrentIteration == 0 {
		return 0
	}
	t := x.ExecutionTime(now)
	if t <= 0 {
		return 0
	}
	return float64(x.CurrentIteration) / (float64(t) / 1e9)
}

// ContextValue returns the value for key, in the same form it would be
// rendered (`<null>` for keys added without a value), or "" if absent.
func (x *Data) ContextValue(key string) string {
	for i := len(x.Context) - 1; i >= 0; i-- {
		if x.Context[i].Key == key {
			if x.Context[i].Null {
				return nullValue
			}
			return x.Context[i].Value
		}
	}
	return ``
}

func (x *Data) setContext(key, value string, null bool) {
	for i := range x.Context {
		if x.Context[i].Key == key {
			x.Context[i].Value = value
			x.Context[i].Null = null
			return
		}
	}
	x.Context = append(x.Context, ContextEntry{Key: key, Value: value, Null: null})
}

func (x *Data) unsetContext(key string) {
	for i := range x.Context {
		if x.Context[i].Key == key {
			x.Context = append(x.Context[:i], x.Context[i+1:]...)
			return
		}
	}
}

// snapshot copies the data, including the context slice.
func (x *Data) snapshot() Data {
	d := *x
	if x.Context != nil {
		d.Context = make([]ContextEntry, len(x.Context))
		copy(d.Context, x.Context)
	}
	return d
}
