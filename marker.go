package meterface

type (
	// Marker classifies an emitted record, for routing and filtering.
	//
	// The set of markers is closed. Lifecycle events carry one of the Msg*
	// markers on the message channel, and the corresponding Data* marker on
	// the data channel. The Inconsistent* markers (and MarkerIllegal /
	// MarkerBug) classify diagnostics, which are only ever emitted on the
	// message channel.
	Marker int
)

const (
	markerInvalid Marker = iota

	// message channel lifecycle markers

	MarkerMsgStart
	MarkerMsgProgress
	MarkerMsgOk
	MarkerMsgSlowOk
	MarkerMsgReject
	MarkerMsgFail

	// data channel lifecycle markers

	MarkerDataStart
	MarkerDataProgress
	MarkerDataOk
	MarkerDataSlowOk
	MarkerDataReject
	MarkerDataFail

	// diagnostic markers

	MarkerBug
	MarkerIllegal
	MarkerInconsistentStart
	MarkerInconsistentIncrement
	MarkerInconsistentProgress
	MarkerInconsistentException
	MarkerInconsistentReject
	MarkerInconsistentOk
	MarkerInconsistentFail
	MarkerInconsistentClose
	MarkerInconsistentFinalized
)

var markerNames = [...]string{
	markerInvalid:               ``,
	MarkerMsgStart:              `MSG_START`,
	MarkerMsgProgress:           `MSG_PROGRESS`,
	MarkerMsgOk:                 `MSG_OK`,
	MarkerMsgSlowOk:             `MSG_SLOW_OK`,
	MarkerMsgReject:             `MSG_REJECT`,
	MarkerMsgFail:               `MSG_FAIL`,
	MarkerDataStart:             `DATA_START`,
	MarkerDataProgress:          `DATA_PROGRESS`,
	MarkerDataOk:                `DATA_OK`,
	MarkerDataSlowOk:            `DATA_SLOW_OK`,
	MarkerDataReject:            `DATA_REJECT`,
	MarkerDataFail:              `DATA_FAIL`,
	MarkerBug:                   `BUG`,
	MarkerIllegal:               `ILLEGAL`,
	MarkerInconsistentStart:     `INCONSISTENT_START`,
	MarkerInconsistentIncrement: `INCONSISTENT_INCREMENT`,
	MarkerInconsistentProgress:  `INCONSISTENT_PROGRESS`,
	MarkerInconsistentException: `INCONSISTENT_EXCEPTION`,
	MarkerInconsistentReject:    `INCONSISTENT_REJECT`,
	MarkerInconsistentOk:        `INCONSISTENT_OK`,
	MarkerInconsistentFail:      `INCONSISTENT_FAIL`,
	MarkerInconsistentClose:     `INCONSISTENT_CLOSE`,
	MarkerInconsistentFinalized: `INCONSISTENT_FINALIZED`,
}

// String implements fmt.Stringer, returning the canonical name, e.g.
// `MSG_SLOW_OK`.
func (x Marker) String() string {
	if x > markerInvalid && int(x) < len(markerNames) {
		return markerNames[x]
	}
	return ``
}

// Diagnostic returns true if the marker classifies a diagnostic record,
// rather than a lifecycle event.
func (x Marker) Diagnostic() bool { return x >= MarkerBug }
