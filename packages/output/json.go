package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/imhmg/purl/packages/core/runner"
)

// JSONReport is the machine-readable form of a suite run.
type JSONReport struct {
	Name     string       `json:"name"`
	Summary  JSONSummary  `json:"summary"`
	Rows     []JSONRow    `json:"rows"`
	Latency  *JSONLatency `json:"latency,omitempty"`
	Duration float64      `json:"duration"`
	Time     string       `json:"time"`
}

// JSONSummary mirrors the suite counters.
type JSONSummary struct {
	Rows             int `json:"rows"`
	Requests         int `json:"requests"`
	Completed        int `json:"completed"`
	Errors           int `json:"errors"`
	Assertions       int `json:"assertions"`
	AssertionsPassed int `json:"assertionsPassed"`
	AssertionsFailed int `json:"assertionsFailed"`
}

// JSONRow is one data row's trace.
type JSONRow struct {
	Index     int             `json:"index"`
	Variables map[string]any  `json:"variables,omitempty"`
	Requests  []JSONExecution `json:"requests"`
}

// JSONExecution is a single request trace.
type JSONExecution struct {
	Name       string          `json:"name"`
	File       string          `json:"file"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Duration   float64         `json:"duration"`
	Request    *JSONRequest    `json:"request,omitempty"`
	Response   *JSONResponse   `json:"response,omitempty"`
	Assertions []JSONAssertion `json:"assertions,omitempty"`
	Captures   map[string]any  `json:"captures,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// JSONRequest holds sent-request details.
type JSONRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// JSONResponse holds response details.
type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Headers    map[string]string `json:"headers,omitempty"`
	Duration   float64           `json:"duration"`
}

// JSONAssertion is one assertion outcome.
type JSONAssertion struct {
	Label    string `json:"label"`
	Operator string `json:"operator,omitempty"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
}

// JSONLatency is the latency distribution in milliseconds.
type JSONLatency struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean"`
	P50   int64   `json:"p50"`
	P95   int64   `json:"p95"`
	P99   int64   `json:"p99"`
	Max   int64   `json:"max"`
}

// BuildJSONReport converts a suite result to its report form.
func BuildJSONReport(result *runner.SuiteResult) *JSONReport {
	report := &JSONReport{
		Name: result.Name,
		Summary: JSONSummary{
			Rows:             result.Summary.Rows,
			Requests:         result.Summary.Requests,
			Completed:        result.Summary.Completed,
			Errors:           result.Summary.Errors,
			Assertions:       result.Summary.Assertions,
			AssertionsPassed: result.Summary.AssertionsPassed,
			AssertionsFailed: result.Summary.AssertionsFailed,
		},
		Duration: float64(result.Duration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	if latency := Latency(result.Executions()); latency != nil {
		report.Latency = &JSONLatency{
			Count: latency.Count,
			Mean:  latency.Mean,
			P50:   latency.P50,
			P95:   latency.P95,
			P99:   latency.P99,
			Max:   latency.Max,
		}
	}

	for _, row := range result.Rows {
		jsonRow := JSONRow{Index: row.Index, Variables: row.Variables}
		for _, exec := range row.Requests {
			jsonRow.Requests = append(jsonRow.Requests, buildJSONExecution(exec))
		}
		report.Rows = append(report.Rows, jsonRow)
	}
	return report
}

func buildJSONExecution(exec *runner.RequestExecution) JSONExecution {
	out := JSONExecution{
		Name:     exec.Name,
		File:     exec.File,
		Status:   exec.Status,
		Error:    exec.Error,
		Duration: float64(exec.Duration.Milliseconds()),
		Captures: exec.Captures,
		Warnings: exec.Warnings,
	}

	if exec.Request != nil {
		out.Request = &JSONRequest{
			Method:  exec.Request.Method,
			URL:     exec.Request.BuildURL(),
			Headers: exec.Request.Headers,
		}
	}
	if exec.Response != nil {
		out.Response = &JSONResponse{
			StatusCode: exec.Response.StatusCode,
			Status:     exec.Response.Status,
			Headers:    exec.Response.Headers,
			Duration:   float64(exec.Response.Duration.Milliseconds()),
		}
	}
	for _, a := range exec.Assertions {
		out.Assertions = append(out.Assertions, JSONAssertion{
			Label:    a.Label,
			Operator: a.Operator,
			Expected: a.Expected,
			Actual:   a.Actual,
			Passed:   a.Passed,
			Message:  a.Message,
		})
	}
	return out
}

// WriteJSON writes the indented JSON report for a suite run.
func WriteJSON(w io.Writer, result *runner.SuiteResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildJSONReport(result))
}
