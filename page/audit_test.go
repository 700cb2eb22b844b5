package page

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner scripts the audit result without a real browser.
type fakeRunner struct {
	result json.RawMessage
	err    error
	calls  int
}

func (f *fakeRunner) ExecuteScript(ctx context.Context, script string, args ...interface{}) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

const sampleViolations = `[
	{"rule": "image-alt", "severity": "critical", "selector": "img:nth-of-type(2)"},
	{"rule": "html-has-lang", "severity": "serious", "selector": "html"},
	{"rule": "duplicate-id", "severity": "moderate", "selector": "#output"}
]`

func TestAuditDecodesViolations(t *testing.T) {
	runner := &fakeRunner{result: json.RawMessage(sampleViolations)}
	result, err := Audit(context.Background(), runner, Rules{})
	require.NoError(t, err)
	require.Len(t, result.Violations, 3)
	assert.Equal(t, "image-alt", result.Violations[0].RuleID)
	assert.Equal(t, SeverityCritical, result.Violations[0].Severity)
	assert.Equal(t, "img:nth-of-type(2)", result.Violations[0].Selector)
	assert.False(t, result.OK())
	assert.False(t, result.CheckedAt.IsZero())
}

func TestAuditRulesIncludeFilter(t *testing.T) {
	runner := &fakeRunner{result: json.RawMessage(sampleViolations)}
	result, err := Audit(context.Background(), runner, Rules{Include: []string{"image-alt"}})
	require.NoError(t, err)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "image-alt", result.Violations[0].RuleID)
}

func TestAuditRulesExcludeFilter(t *testing.T) {
	runner := &fakeRunner{result: json.RawMessage(sampleViolations)}
	result, err := Audit(context.Background(), runner, Rules{Exclude: []string{"duplicate-id"}})
	require.NoError(t, err)
	require.Len(t, result.Violations, 2)
	for _, v := range result.Violations {
		assert.NotEqual(t, "duplicate-id", v.RuleID)
	}
}

func TestAuditEmptyResultIsOK(t *testing.T) {
	runner := &fakeRunner{result: json.RawMessage(`[]`)}
	result, err := Audit(context.Background(), runner, Rules{})
	require.NoError(t, err)
	assert.True(t, result.OK())
}

func TestAuditScriptFailureIsAuditError(t *testing.T) {
	cause := errors.New("javascript error: audit blew up")
	runner := &fakeRunner{err: cause}
	_, err := Audit(context.Background(), runner, Rules{})
	var ae *AuditError
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, err, cause)
}

func TestAuditUndecodableResultIsAuditError(t *testing.T) {
	runner := &fakeRunner{result: json.RawMessage(`{"not": "a list"}`)}
	_, err := Audit(context.Background(), runner, Rules{})
	var ae *AuditError
	require.ErrorAs(t, err, &ae)
}

// auditProbe is a page-object-like holder wiring a fake runner into a lazy
// audit slot the same way Base does.
func newAuditProbe(runner *fakeRunner, opts ...LazyOption) *Lazy[AuditResult] {
	return NewLazy(func(ctx context.Context) (AuditResult, error) {
		return Audit(ctx, runner, Rules{})
	}, opts...)
}

func TestLazyAuditExecutesExactlyOnceAcrossReads(t *testing.T) {
	runner := &fakeRunner{result: json.RawMessage(sampleViolations)}
	slot := newAuditProbe(runner)

	var first AuditResult
	for i := 0; i < 5; i++ {
		result, err := slot.Get(context.Background())
		require.NoError(t, err)
		if i == 0 {
			first = result
		} else {
			assert.Equal(t, first, result, "repeated reads must return the stored result")
		}
	}
	assert.Equal(t, 1, runner.calls)
}

func TestLazyAuditFailurePolicyRetry(t *testing.T) {
	runner := &fakeRunner{err: errors.New("flaky")}
	slot := newAuditProbe(runner)

	_, err := slot.Get(context.Background())
	require.Error(t, err)

	runner.err = nil
	runner.result = json.RawMessage(`[]`)
	result, err := slot.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, 2, runner.calls)
}

func TestLazyAuditFailurePolicyCached(t *testing.T) {
	runner := &fakeRunner{err: errors.New("poisoned")}
	slot := newAuditProbe(runner, CacheFailures())

	_, err := slot.Get(context.Background())
	require.Error(t, err)

	runner.err = nil
	runner.result = json.RawMessage(`[]`)
	_, err = slot.Get(context.Background())
	require.Error(t, err, "cached failure must be replayed, not retried")
	assert.Equal(t, 1, runner.calls)
}
