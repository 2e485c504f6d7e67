package output

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/imhmg/purl/packages/core/runner"
)

// htmlReport is the template context for an HTML report.
type htmlReport struct {
	Report  *JSONReport
	Passed  bool
	Time    string
	Version string
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>purl report - {{.Report.Name}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem; color: #222; }
  h1 { font-size: 1.4rem; }
  .summary { display: flex; gap: 1.5rem; margin: 1rem 0; }
  .summary div { padding: .6rem 1rem; border-radius: 6px; background: #f4f4f4; }
  .summary .pass { background: #e6f4ea; color: #137333; }
  .summary .fail { background: #fce8e6; color: #a50e0e; }
  table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
  th, td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #e0e0e0; font-size: .9rem; }
  tr.error td { background: #fce8e6; }
  .status-complete { color: #137333; }
  .status-error { color: #a50e0e; }
  .assert-pass { color: #137333; }
  .assert-fail { color: #a50e0e; }
  .row-head td { background: #f4f4f4; font-weight: 600; }
  .muted { color: #777; }
</style>
</head>
<body>
<h1>{{.Report.Name}} <span class="muted">{{.Time}}</span></h1>
<div class="summary">
  <div>Rows: {{.Report.Summary.Rows}}</div>
  <div>Requests: {{.Report.Summary.Requests}}</div>
  <div class="{{if .Report.Summary.Errors}}fail{{else}}pass{{end}}">Errors: {{.Report.Summary.Errors}}</div>
  <div class="{{if .Report.Summary.AssertionsFailed}}fail{{else}}pass{{end}}">
    Assertions: {{.Report.Summary.AssertionsPassed}}/{{.Report.Summary.Assertions}} passed
  </div>
  {{if .Report.Latency}}<div>p95: {{.Report.Latency.P95}}ms</div>{{end}}
  <div>Duration: {{printf "%.0f" .Report.Duration}}ms</div>
</div>
<table>
<tr><th>Request</th><th>Status</th><th>HTTP</th><th>Time</th><th>Assertions</th></tr>
{{range .Report.Rows}}
  <tr class="row-head"><td colspan="5">Row {{.Index}}</td></tr>
  {{range .Requests}}
  <tr{{if eq .Status "error"}} class="error"{{end}}>
    <td>{{.Name}}</td>
    <td class="status-{{.Status}}">{{.Status}}{{if .Error}}: {{.Error}}{{end}}</td>
    <td>{{if .Response}}{{.Response.StatusCode}}{{else}}-{{end}}</td>
    <td>{{printf "%.0f" .Duration}}ms</td>
    <td>
      {{range .Assertions}}
        <span class="{{if .Passed}}assert-pass{{else}}assert-fail{{end}}">{{.Label}}</span>
        {{if not .Passed}}<span class="muted">({{.Message}})</span>{{end}}<br>
      {{end}}
    </td>
  </tr>
  {{end}}
{{end}}
</table>
<p class="muted">generated by purl {{.Version}}</p>
</body>
</html>
`))

// WriteHTML renders the self-contained HTML report for a suite run.
func WriteHTML(w io.Writer, result *runner.SuiteResult, version string) error {
	ctx := htmlReport{
		Report:  BuildJSONReport(result),
		Passed:  result.Passed(),
		Time:    time.Now().Format("2006-01-02 15:04:05"),
		Version: version,
	}
	if err := htmlTemplate.Execute(w, ctx); err != nil {
		return fmt.Errorf("rendering HTML report: %w", err)
	}
	return nil
}
