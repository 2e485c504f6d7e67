package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imhmg/purl/packages/core/spec"
	"github.com/imhmg/purl/packages/output"
)

var suiteCmd = &cobra.Command{
	Use:   "suite <file>",
	Short: "Run a suite file",
	Long: `Run a suite: an ordered request chain executed once per data source
row. Suite files name their own configs, variables, and CSV data sources.

Examples:
  purl suite smoke.yaml
  purl suite smoke.yaml -c staging -o json
  purl suite smoke.yaml --report report.html`,
	Args: cobra.ExactArgs(1),
	RunE: suiteCommand,
}

var reportFlag string

func init() {
	suiteCmd.Flags().StringSliceVarP(&configsFlag, "config", "c", nil, "Config names or files to layer, later ones win")
	suiteCmd.Flags().StringArrayVar(&varFlags, "var", nil, "Override a variable (name=value), highest precedence")
	suiteCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("PURL_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: PURL_TIMEOUT)")
	suiteCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("PURL_INSECURE", false), "Disable TLS certificate verification (env: PURL_INSECURE)")
	suiteCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show passing assertions and captures")
	suiteCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("PURL_NO_COLOR", false), "Disable colored output (env: PURL_NO_COLOR)")
	suiteCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("PURL_OUTPUT", "console"), "Output format: console, json, junit, html (env: PURL_OUTPUT)")
	suiteCmd.Flags().StringVar(&outputFileFlag, "output-file", "", "Write output to file (default: stdout)")
	suiteCmd.Flags().StringVar(&reportFlag, "report", "", "Write an HTML report to this path (overrides the suite's ReportPath)")
}

func suiteCommand(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	suite, err := spec.LoadSuite(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := executeSuite(ctx, suite)
	if err != nil {
		return err
	}
	if err := renderResult(result); err != nil {
		return err
	}

	reportPath := suite.ReportPath
	if reportFlag != "" {
		reportPath = reportFlag
	}
	if reportPath != "" {
		f, err := os.Create(reportPath)
		if err != nil {
			return fmt.Errorf("cannot create report file: %w", err)
		}
		defer f.Close()
		if err := output.WriteHTML(f, result, version); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", reportPath)
	}

	if !result.Passed() {
		os.Exit(ExitRunFailure)
	}
	return nil
}
