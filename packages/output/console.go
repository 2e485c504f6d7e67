package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/imhmg/purl/packages/core/runner"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// FormatExecution prints one request's outcome.
func (f *ConsoleFormatter) FormatExecution(exec *runner.RequestExecution) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	if exec.Status == runner.StatusError {
		fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), exec.Name, red("("+exec.Error+")"))
		return
	}

	symbol := green("✓")
	if !exec.Passed() {
		symbol = red("✗")
	}
	fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, exec.Name, cyan(fmt.Sprintf("(%dms)", exec.Duration.Milliseconds())))

	for _, a := range exec.Assertions {
		if a.Passed && !f.verbose {
			continue
		}
		mark := green("✓")
		if !a.Passed {
			mark = red("✗")
		}
		fmt.Fprintf(f.writer, "    %s %s\n", mark, a.Label)
		if !a.Passed {
			if a.Operator != "" {
				fmt.Fprintf(f.writer, "      Expected: %s %s\n", a.Operator, formatValue(a.Expected, 100))
				fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(a.Actual, 100))
			}
			if a.Message != "" {
				fmt.Fprintf(f.writer, "      %s\n", a.Message)
			}
		}
	}

	if f.verbose && len(exec.Captures) > 0 {
		fmt.Fprintf(f.writer, "    Captures:\n")
		for name, value := range exec.Captures {
			fmt.Fprintf(f.writer, "      %s = %s\n", name, formatValue(value, 100))
		}
	}

	for _, warning := range exec.Warnings {
		fmt.Fprintf(f.writer, "    %s %s\n", yellow("!"), warning)
	}
}

// FormatSuite prints the full suite trace followed by summary counters and
// the latency distribution.
func (f *ConsoleFormatter) FormatSuite(result *runner.SuiteResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Suite: "+result.Name))

	for _, row := range result.Rows {
		if len(result.Rows) > 1 || row.Variables != nil {
			fmt.Fprintf(f.writer, "\n %s\n", bold(fmt.Sprintf("Row %d", row.Index)))
		} else {
			fmt.Fprintln(f.writer)
		}
		for _, exec := range row.Requests {
			f.FormatExecution(exec)
		}
	}

	s := result.Summary
	fmt.Fprintf(f.writer, "\nRequests:   %d total", s.Requests)
	if s.Completed > 0 {
		fmt.Fprintf(f.writer, ", %s", green(fmt.Sprintf("%d complete", s.Completed)))
	}
	if s.Errors > 0 {
		fmt.Fprintf(f.writer, ", %s", red(fmt.Sprintf("%d errors", s.Errors)))
	}
	fmt.Fprintln(f.writer)

	fmt.Fprintf(f.writer, "Assertions: %d total", s.Assertions)
	if s.AssertionsPassed > 0 {
		fmt.Fprintf(f.writer, ", %s", green(fmt.Sprintf("%d passed", s.AssertionsPassed)))
	}
	if s.AssertionsFailed > 0 {
		fmt.Fprintf(f.writer, ", %s", red(fmt.Sprintf("%d failed", s.AssertionsFailed)))
	}
	fmt.Fprintln(f.writer)

	if latency := Latency(result.Executions()); latency != nil {
		fmt.Fprintf(f.writer, "Latency:    %s\n", latency)
	}
	fmt.Fprintf(f.writer, "Time:       %dms\n\n", result.Duration.Milliseconds())
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("purl"), version)
}
