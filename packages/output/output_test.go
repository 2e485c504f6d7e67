package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imhmg/purl/packages/assertions"
	"github.com/imhmg/purl/packages/core/runner"
	"github.com/imhmg/purl/packages/http"
)

func sampleSuiteResult() *runner.SuiteResult {
	login := &runner.RequestExecution{
		Status: runner.StatusComplete,
		File:   "login.yaml",
		Name:   "Login",
		Response: &http.Response{
			StatusCode: 200,
			Status:     "200 OK",
			Duration:   120 * time.Millisecond,
		},
		Assertions: []*assertions.Result{
			{Label: "status", Operator: "==", Expected: 200, Actual: 200, Passed: true},
			{Label: "token present", Passed: true},
		},
		Captures: map[string]any{"token": "abc"},
		Duration: 125 * time.Millisecond,
	}
	broken := &runner.RequestExecution{
		Status:   runner.StatusError,
		File:     "down.yaml",
		Name:     "Down",
		Error:    "connection refused",
		Duration: 5 * time.Millisecond,
	}
	failing := &runner.RequestExecution{
		Status: runner.StatusComplete,
		File:   "profile.yaml",
		Name:   "Profile",
		Response: &http.Response{
			StatusCode: 404,
			Status:     "404 Not Found",
			Duration:   40 * time.Millisecond,
		},
		Assertions: []*assertions.Result{
			{Label: "status", Operator: "==", Expected: 200, Actual: 404, Passed: false, Message: "expected 200, got 404"},
		},
		Duration: 42 * time.Millisecond,
	}

	result := &runner.SuiteResult{
		Name: "smoke",
		Rows: []*runner.RowResult{
			{Index: 1, Variables: map[string]any{"email": "a@test.com"}, Requests: []*runner.RequestExecution{login, broken}},
			{Index: 2, Variables: map[string]any{"email": "b@test.com"}, Requests: []*runner.RequestExecution{failing}},
		},
		Duration: 300 * time.Millisecond,
	}
	result.Summary = runner.Summary{
		Rows: 2, Requests: 3, Completed: 2, Errors: 1,
		Assertions: 3, AssertionsPassed: 2, AssertionsFailed: 1,
	}
	return result
}

func TestConsoleFormatSuite(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatSuite(sampleSuiteResult())
	out := buf.String()

	assert.Contains(t, out, "Suite: smoke")
	assert.Contains(t, out, "Row 1")
	assert.Contains(t, out, "Login")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "expected 200, got 404")
	assert.Contains(t, out, "3 total, 2 complete, 1 errors")
	assert.Contains(t, out, "2 passed")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "Latency:")
}

func TestConsoleVerboseShowsCaptures(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))

	f.FormatExecution(sampleSuiteResult().Rows[0].Requests[0])
	out := buf.String()

	assert.Contains(t, out, "Captures:")
	assert.Contains(t, out, "token = abc")
	assert.Contains(t, out, "token present")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleSuiteResult()))

	var report JSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, "smoke", report.Name)
	assert.Equal(t, 3, report.Summary.Requests)
	assert.Equal(t, 1, report.Summary.Errors)
	require.Len(t, report.Rows, 2)
	require.Len(t, report.Rows[0].Requests, 2)
	assert.Equal(t, "Login", report.Rows[0].Requests[0].Name)
	assert.Equal(t, "error", report.Rows[0].Requests[1].Status)
	assert.Equal(t, "connection refused", report.Rows[0].Requests[1].Error)
	require.NotNil(t, report.Latency)
	assert.Equal(t, int64(2), report.Latency.Count)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleSuiteResult(), "1.0.0"))

	out := buf.String()
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "smoke")
	assert.Contains(t, out, "Login")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "purl 1.0.0")
}

func TestWriteJUnit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, sampleSuiteResult()))

	var root JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &root))

	assert.Equal(t, "smoke", root.Name)
	assert.Equal(t, 3, root.Tests)
	assert.Equal(t, 1, root.Failures)
	assert.Equal(t, 1, root.Errors)
	require.Len(t, root.Suites, 2)
	require.Len(t, root.Suites[0].TestCases, 2)
	require.NotNil(t, root.Suites[0].TestCases[1].Error)
	assert.Equal(t, "connection refused", root.Suites[0].TestCases[1].Error.Message)
	require.NotNil(t, root.Suites[1].TestCases[0].Failure)
}

func TestLatencySkipsMissingResponses(t *testing.T) {
	result := sampleSuiteResult()
	latency := Latency(result.Executions())

	require.NotNil(t, latency)
	assert.Equal(t, int64(2), latency.Count)
	assert.GreaterOrEqual(t, latency.Max, int64(120))
}

func TestLatencyNilWhenNothingResponded(t *testing.T) {
	execs := []*runner.RequestExecution{
		{Status: runner.StatusError, Name: "down"},
	}
	assert.Nil(t, Latency(execs))
}
