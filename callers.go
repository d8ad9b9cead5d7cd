package meterface

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joeycumines/meterface/internal/runtimeutil"
)

// pkgPath is used to exclude this module's own frames from diagnostic
// call sites.
var pkgPath = func() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}()

type (
	// callSiteError is the artificial error attached to diagnostic
	// records, carrying the caller's stack with this module's frames
	// stripped. It is only constructed on the diagnostic path.
	callSiteError struct {
		stack []runtimeutil.Caller
	}
)

var _ error = (*callSiteError)(nil)

// newCallSiteError captures the trimmed caller stack, skipping skip
// additional frames (not counting this function).
func newCallSiteError(skip int) *callSiteError {
	return &callSiteError{stack: runtimeutil.CallersSkipPackage(pkgPath, skip+1)}
}

func (x *callSiteError) Error() string {
	if len(x.stack) == 0 {
		return `called from unknown location`
	}
	var b strings.Builder
	b.WriteString(`called from `)
	for i, c := range x.stack {
		if i != 0 {
			b.WriteString(` <- `)
		}
		b.WriteString(c.Function)
		b.WriteString(` (`)
		b.WriteString(filepath.Base(c.File))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(c.Line))
		b.WriteByte(')')
	}
	return b.String()
}

// Callers returns the trimmed stack, for sinks that want structured
// access rather than the rendered message.
func (x *callSiteError) Callers() []runtimeutil.Caller { return x.stack }
