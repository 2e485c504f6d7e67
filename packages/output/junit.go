package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/imhmg/purl/packages/core/runner"
)

// JUnitTestSuites is the root element.
type JUnitTestSuites struct {
	XMLName   xml.Name         `xml:"testsuites"`
	Name      string           `xml:"name,attr,omitempty"`
	Tests     int              `xml:"tests,attr"`
	Failures  int              `xml:"failures,attr"`
	Errors    int              `xml:"errors,attr"`
	Time      float64          `xml:"time,attr"`
	Timestamp string           `xml:"timestamp,attr,omitempty"`
	Suites    []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps one data row.
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps one request execution.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure carries failed assertion details.
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitError carries resolution and transport errors.
type JUnitError struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// WriteJUnit writes the suite result as JUnit XML, one testsuite per data
// row.
func WriteJUnit(w io.Writer, result *runner.SuiteResult) error {
	root := JUnitTestSuites{
		Name:      result.Name,
		Time:      result.Duration.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	for _, row := range result.Rows {
		suite := JUnitTestSuite{
			Name: fmt.Sprintf("%s/row-%d", result.Name, row.Index),
		}
		var rowTime float64
		for _, exec := range row.Requests {
			testCase := JUnitTestCase{
				Name:      exec.Name,
				ClassName: exec.File,
				Time:      exec.Duration.Seconds(),
			}
			rowTime += exec.Duration.Seconds()
			suite.Tests++

			switch {
			case exec.Status == runner.StatusError:
				suite.Errors++
				testCase.Error = &JUnitError{
					Message: exec.Error,
					Type:    "ExecutionError",
				}
			case exec.AssertionsFailed() > 0:
				suite.Failures++
				testCase.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%d assertion(s) failed", exec.AssertionsFailed()),
					Type:    "AssertionFailure",
					Content: assertionFailures(exec),
				}
			}
			suite.TestCases = append(suite.TestCases, testCase)
		}
		suite.Time = rowTime
		root.Tests += suite.Tests
		root.Failures += suite.Failures
		root.Errors += suite.Errors
		root.Suites = append(root.Suites, suite)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(root); err != nil {
		return fmt.Errorf("encoding JUnit report: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func assertionFailures(exec *runner.RequestExecution) string {
	var lines []string
	for _, a := range exec.Assertions {
		if a.Passed {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", a.Label, a.Message))
	}
	return strings.Join(lines, "\n")
}
