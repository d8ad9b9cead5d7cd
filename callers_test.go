package meterface

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallSiteError(t *testing.T) {
	err := func() error {
		return newCallSiteError(0)
	}()
	require.NotNil(t, err)
	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, `called from `), msg)
	// this package's frames are stripped; in-package callers (such as this
	// test file) are stripped with them, leaving the test runner
	assert.NotContains(t, msg, `newCallSiteError`)
	assert.Contains(t, msg, `testing.`)
}

func TestCallSiteError_empty(t *testing.T) {
	err := &callSiteError{}
	assert.Equal(t, `called from unknown location`, err.Error())
	assert.Empty(t, err.Callers())
}
