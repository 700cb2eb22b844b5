package framework

import (
	"fmt"
	"strings"
)

// Results is the aggregate outcome of a test run.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Skips    []TestResult
}

// TestResult describes the outcome of a single test.
type TestResult struct {
	TestID     TestID
	Errors     []error
	Skipped    bool
	SkipReason string
}

// OK returns true if no tests failed. Skipped tests do not count as failures.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// TestID identifies a test by the path of group and test names leading to it.
type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
