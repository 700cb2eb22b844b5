package framework

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJUnitReport(t *testing.T) {
	results := Results{
		Tests: []TestResult{
			{TestID: makeID("passing")},
			{TestID: makeID("failing"), Errors: []error{errors.New("it broke")}},
			{TestID: makeID("skipped"), Skipped: true, SkipReason: "no baseline"},
		},
		Failures: []TestResult{
			{TestID: makeID("failing"), Errors: []error{errors.New("it broke")}},
		},
		Skips: []TestResult{
			{TestID: makeID("skipped"), Skipped: true, SkipReason: "no baseline"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJUnitReport(results, "ui-regression", &buf))

	out := buf.String()
	assert.Contains(t, out, `<testsuite name="ui-regression" tests="3" failures="1" skipped="1">`)
	assert.Contains(t, out, `<testcase name="passing">`)
	assert.Contains(t, out, `<failure message="it broke">`)
	assert.Contains(t, out, `<skipped message="no baseline">`)
}
