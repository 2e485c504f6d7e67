package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imhmg/purl/packages/core/spec"
)

var suiteValidateFlag bool

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate request and suite files without executing",
	Long: `Validate YAML request files against the expected shape without
sending anything.

Examples:
  purl validate login.yaml
  purl validate ./requests/
  purl validate smoke.yaml --suite`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func init() {
	validateCmd.Flags().BoolVar(&suiteValidateFlag, "suite", false, "Validate the files as suite files")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .yaml or .yml files found")
	}

	hasErrors := false
	for _, file := range files {
		if suiteValidateFlag {
			_, err = spec.LoadSuite(file)
		} else {
			_, err = spec.LoadRequestFile(file)
		}
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if hasErrors {
		return fmt.Errorf("validation failed")
	}
	return nil
}
