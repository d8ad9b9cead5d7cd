package meterface

type (
	// tier is the resilience classification of a state-affecting call.
	tier int

	// meterCall identifies a state-affecting Meter method, for
	// classification.
	meterCall int

	// verdict is the outcome of classifying a call: how to treat it, and
	// the marker for the diagnostic, if any.
	verdict struct {
		tier   tier
		marker Marker
	}
)

const (
	// tierApply is a valid, state-changing call.
	tierApply tier = iota + 1
	// tierApplySet is a valid call that adjusts supporting attributes.
	tierApplySet
	// tierCorrect applies the change, with a diagnostic.
	tierCorrect
	// tierIgnore drops the call, with a diagnostic.
	tierIgnore
	// tierNoop drops the call silently (already-stopped close).
	tierNoop
)

const (
	callStart meterCall = iota
	callDescription
	callContext
	callIterations
	callLimit
	callPath
	callInc
	callProgress
	callOk
	callReject
	callFail
	callClose
)

var callNames = [...]string{
	callStart:       `Start`,
	callDescription: `M`,
	callContext:     `Ctx`,
	callIterations:  `Iterations`,
	callLimit:       `Limit`,
	callPath:        `Path`,
	callInc:         `Inc`,
	callProgress:    `Progress`,
	callOk:          `Ok`,
	callReject:      `Reject`,
	callFail:        `Fail`,
	callClose:       `Close`,
}

func (x meterCall) String() string {
	if int(x) < len(callNames) {
		return callNames[x]
	}
	return ``
}

func (x meterCall) inconsistentMarker() Marker {
	switch x {
	case callStart:
		return MarkerInconsistentStart
	case callInc:
		return MarkerInconsistentIncrement
	case callProgress:
		return MarkerInconsistentProgress
	case callOk:
		return MarkerInconsistentOk
	case callReject:
		return MarkerInconsistentReject
	case callFail:
		return MarkerInconsistentFail
	case callClose:
		return MarkerInconsistentClose
	default:
		return MarkerIllegal
	}
}

// classify is the validator decision table. It is pure, covers every
// (state, call) pair, and never fails; argOK reports whether the call's
// arguments were valid (positive counts, non-nil causes, and so on).
func classify(d *Data, call meterCall, argOK bool) verdict {
	switch {
	case d.IsStopped():
		return classifyStopped(call)
	case d.IsStarted():
		return classifyStarted(call, argOK)
	default:
		return classifyCreated(call, argOK)
	}
}

func classifyCreated(call meterCall, argOK bool) verdict {
	switch call {
	case callStart:
		return verdict{tier: tierApply}
	case callDescription, callContext, callIterations, callLimit:
		if argOK {
			return verdict{tier: tierApplySet}
		}
		return verdict{tier: tierIgnore, marker: MarkerIllegal}
	case callPath:
		return verdict{tier: tierIgnore, marker: MarkerIllegal}
	case callInc, callProgress:
		return verdict{tier: tierIgnore, marker: call.inconsistentMarker()}
	case callOk, callReject, callFail, callClose:
		if !argOK {
			return verdict{tier: tierIgnore, marker: MarkerIllegal}
		}
		return verdict{tier: tierCorrect, marker: call.inconsistentMarker()}
	}
	return verdict{tier: tierIgnore, marker: MarkerBug}
}

func classifyStarted(call meterCall, argOK bool) verdict {
	switch call {
	case callStart:
		return verdict{tier: tierCorrect, marker: MarkerInconsistentStart}
	case callDescription, callContext, callIterations, callLimit, callPath, callInc:
		if argOK {
			return verdict{tier: tierApplySet}
		}
		return verdict{tier: tierIgnore, marker: MarkerIllegal}
	case callProgress:
		// subject to the throttle gate, applied by the meter
		return verdict{tier: tierApplySet}
	case callOk, callReject, callFail:
		if argOK {
			return verdict{tier: tierApply}
		}
		return verdict{tier: tierIgnore, marker: MarkerIllegal}
	case callClose:
		return verdict{tier: tierApply}
	}
	return verdict{tier: tierIgnore, marker: MarkerBug}
}

func classifyStopped(call meterCall) verdict {
	switch call {
	case callClose:
		return verdict{tier: tierNoop}
	case callInc, callProgress, callStart, callOk, callReject, callFail:
		return verdict{tier: tierIgnore, marker: call.inconsistentMarker()}
	default:
		return verdict{tier: tierIgnore, marker: MarkerIllegal}
	}
}
