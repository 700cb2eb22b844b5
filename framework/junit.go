package framework

import (
	"encoding/xml"
	"io"
	"os"
	"strings"
)

// These types model the subset of the JUnit XML report format that CI systems
// commonly consume.

type junitTestSuite struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string        `xml:"name,attr"`
	Failure *junitFailure `xml:"failure,omitempty"`
	Skipped *junitSkipped `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
}

type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// WriteJUnitReport renders the results as a JUnit XML document.
func WriteJUnitReport(results Results, suiteName string, w io.Writer) error {
	suite := junitTestSuite{
		Name:     suiteName,
		Tests:    len(results.Tests),
		Failures: len(results.Failures),
		Skipped:  len(results.Skips),
	}
	for _, r := range results.Tests {
		tc := junitTestCase{Name: r.TestID.String()}
		if r.Skipped {
			tc.Skipped = &junitSkipped{Message: r.SkipReason}
		} else if len(r.Errors) > 0 {
			var messages []string
			for _, err := range r.Errors {
				messages = append(messages, err.Error())
			}
			tc.Failure = &junitFailure{Message: strings.Join(messages, "; ")}
		}
		suite.Cases = append(suite.Cases, tc)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(suite); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteJUnitReportFile writes the JUnit XML report to the named file.
func WriteJUnitReportFile(results Results, suiteName, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJUnitReport(results, suiteName, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
