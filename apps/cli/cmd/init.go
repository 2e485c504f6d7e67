package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imhmg/purl/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a purl workspace",
	Long: `Initialize a .purl workspace in the current directory.

This creates:
  - .purl/configs/default.yaml - Sample config with shared variables
  - example.yaml               - Sample request file
  - example-suite.yaml         - Sample suite file

Examples:
  purl init
  purl init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const sampleConfig = `# Variables shared by every request run with -c default.
base_url: https://jsonplaceholder.typicode.com
`

const sampleRequest = `Name: Get first post
Method: GET
Endpoint: ${base_url}/posts/1
Status: 200
Captures:
  post_id: "@body jsonpath $.id"
  author_id: "@body jsonpath $.userId"
Asserts:
  has title: "@body jsonpath $.title"
  first post: "@body jsonpath $.id |==| 1"
`

const sampleSuite = `Name: example-suite
Configs:
  - default
Requests:
  - example.yaml
`

func initCommand(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	ws := config.Open(cwd)
	if err := ws.EnsureLayout(); err != nil {
		return err
	}

	files := map[string]string{
		filepath.Join(ws.ConfigsDir(), "default.yaml"): sampleConfig,
		filepath.Join(cwd, "example.yaml"):             sampleRequest,
		filepath.Join(cwd, "example-suite.yaml"):       sampleSuite,
	}

	if !forceInit {
		for path := range files {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", path)
			}
		}
	}

	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace in %s\n", ws.Root())
	fmt.Fprintln(cmd.OutOrStdout(), "Try it:")
	fmt.Fprintln(cmd.OutOrStdout(), "  purl run example.yaml -c default")
	fmt.Fprintln(cmd.OutOrStdout(), "  purl suite example-suite.yaml")
	return nil
}
