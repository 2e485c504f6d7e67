package runner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/imhmg/purl/packages/core/spec"
	"github.com/imhmg/purl/packages/vars"
)

// Summary aggregates suite counters.
type Summary struct {
	Rows             int
	Requests         int
	Completed        int
	Errors           int
	Assertions       int
	AssertionsPassed int
	AssertionsFailed int
}

// RowResult is the trace of one data row through the request chain.
type RowResult struct {
	Index     int
	Variables map[string]any
	Requests  []*RequestExecution
}

// SuiteResult is the full execution trace of a suite run.
type SuiteResult struct {
	Name     string
	Rows     []*RowResult
	Duration time.Duration
	Summary  Summary
}

// Passed reports whether every request completed with passing assertions.
func (s *SuiteResult) Passed() bool {
	return s.Summary.Errors == 0 && s.Summary.AssertionsFailed == 0
}

// Executions flattens the per-row traces in execution order.
func (s *SuiteResult) Executions() []*RequestExecution {
	var all []*RequestExecution
	for _, row := range s.Rows {
		all = append(all, row.Requests...)
	}
	return all
}

// RunSuite executes the suite's request chain once per data row, strictly
// in order. Captures persist across rows, so a value taken in row one is
// visible to every later row. Request errors are recorded and the run keeps
// going; only setup problems (configs, data sources) abort.
func (r *Runner) RunSuite(ctx context.Context, suite *spec.SuiteSpec) (*SuiteResult, error) {
	start := time.Now()
	result := &SuiteResult{Name: suite.Name}
	defer func() {
		result.Duration = time.Since(start)
	}()

	if len(suite.Configs) > 0 {
		if r.ws == nil {
			return nil, fmt.Errorf("suite %q names configs but no workspace is attached", suite.Name)
		}
		configs, err := r.ws.LoadConfigs(suite.Configs)
		if err != nil {
			return nil, err
		}
		for _, c := range configs {
			r.store.AddConfig(c)
		}
	}

	r.store.SetAll(suite.Vars, vars.LayerSuite)
	if suite.Options.Timeout > 0 {
		r.suiteTimeout = time.Duration(suite.Options.Timeout) * time.Second
	}
	if suite.Options.Insecure {
		r.insecure = true
	}

	rows, err := loadDataRows(suite)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if suite.Options.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(suite.Options.Rate), 1)
	}

	for i, row := range rows {
		rowResult := &RowResult{Index: i + 1, Variables: row}
		result.Rows = append(result.Rows, rowResult)
		result.Summary.Rows++

		r.store.SetRow(row)
		for _, path := range suite.Requests {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					r.store.ClearRow()
					return result, err
				}
			} else if err := ctx.Err(); err != nil {
				r.store.ClearRow()
				return result, err
			}

			exec := r.RunFile(ctx, path)
			rowResult.Requests = append(rowResult.Requests, exec)
			result.Summary.tally(exec)
		}
		r.store.ClearRow()
	}
	return result, nil
}

func (s *Summary) tally(exec *RequestExecution) {
	s.Requests++
	if exec.Status == StatusComplete {
		s.Completed++
	} else {
		s.Errors++
	}
	for _, a := range exec.Assertions {
		s.Assertions++
		if a.Passed {
			s.AssertionsPassed++
		} else {
			s.AssertionsFailed++
		}
	}
}

// loadDataRows concatenates every data source. A suite with no data sources
// still runs once, over an empty row.
func loadDataRows(suite *spec.SuiteSpec) ([]map[string]any, error) {
	if len(suite.DataSources) == 0 {
		return []map[string]any{nil}, nil
	}

	var rows []map[string]any
	for _, src := range suite.DataSources {
		loaded, err := spec.LoadRows(src)
		if err != nil {
			return nil, err
		}
		rows = append(rows, loaded...)
	}
	if len(rows) == 0 {
		rows = []map[string]any{nil}
	}
	return rows, nil
}
