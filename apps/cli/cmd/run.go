package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/imhmg/purl/packages/core/config"
	"github.com/imhmg/purl/packages/core/runner"
	"github.com/imhmg/purl/packages/core/spec"
	"github.com/imhmg/purl/packages/curl"
	purlhttp "github.com/imhmg/purl/packages/http"
	"github.com/imhmg/purl/packages/output"
	"github.com/imhmg/purl/packages/pvars"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run request files",
	Long: `Run one or more YAML request files in order. Captured values flow
from one request into the next and persist in the .purl workspace.

Examples:
  purl run login.yaml
  purl run login.yaml profile.yaml
  purl run ./requests/ -c staging
  purl run login.yaml --var base_url=https://api.test
  purl run login.yaml --curl
  purl run login.yaml --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	configsFlag    []string
	varFlags       []string
	timeoutFlag    string
	insecureFlag   bool
	verboseFlag    bool
	quietFlag      bool
	noColorFlag    bool
	outputFlag     string
	outputFileFlag string
	watchFlag      bool
	curlFlag       bool
)

func init() {
	runCmd.Flags().StringSliceVarP(&configsFlag, "config", "c", nil, "Config names or files to layer, later ones win")
	runCmd.Flags().StringArrayVar(&varFlags, "var", nil, "Override a variable (name=value), highest precedence")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("PURL_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: PURL_TIMEOUT)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("PURL_INSECURE", false), "Disable TLS certificate verification (env: PURL_INSECURE)")
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show passing assertions and captures")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("PURL_QUIET", false), "Suppress all output except errors (env: PURL_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("PURL_NO_COLOR", false), "Disable colored output (env: PURL_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("PURL_OUTPUT", "console"), "Output format: console, json, junit, html (env: PURL_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", "", "Write output to file (default: stdout)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run")
	runCmd.Flags().BoolVar(&curlFlag, "curl", false, "Print equivalent curl commands instead of sending")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func runCommand(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .yaml or .yml request files found")
	}

	if curlFlag {
		return printCurlCommands(cmd, files)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOnce := func() (bool, error) {
		suite := &spec.SuiteSpec{Name: "run", Requests: files}
		result, err := executeSuite(ctx, suite)
		if err != nil {
			return false, err
		}
		if err := renderResult(result); err != nil {
			return false, err
		}
		return result.Passed(), nil
	}

	passed, err := runOnce()
	if err != nil {
		return err
	}

	if !watchFlag {
		if !passed {
			os.Exit(ExitRunFailure)
		}
		return nil
	}
	return watchAndRerun(ctx, cmd, files, runOnce)
}

// executeSuite wires a runner from the global flags and runs the suite.
func executeSuite(ctx context.Context, suite *spec.SuiteSpec) (*runner.SuiteResult, error) {
	ws := config.Discover(".")

	opts := []runner.Option{
		runner.WithWorkspace(ws),
		runner.WithInsecure(insecureFlag),
	}

	if timeoutFlag != "" {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m)", timeoutFlag, err)
		}
		opts = append(opts, runner.WithTimeout(timeout))
	}

	if len(configsFlag) > 0 {
		configs, err := ws.LoadConfigs(configsFlag)
		if err != nil {
			return nil, err
		}
		opts = append(opts, runner.WithConfigs(configs))
	}

	overrides, err := parseVarFlags(varFlags)
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		opts = append(opts, runner.WithOverrides(overrides))
	}

	if ws.Exists() {
		store, err := pvars.Open(ws.PvarsPath())
		if err != nil {
			return nil, err
		}
		defer store.Close()
		opts = append(opts, runner.WithPvars(store))
	}

	r, err := runner.New(opts...)
	if err != nil {
		return nil, err
	}
	return r.RunSuite(ctx, suite)
}

// renderResult writes the suite result in the selected format.
func renderResult(result *runner.SuiteResult) error {
	var w io.Writer = os.Stdout
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch strings.ToLower(outputFlag) {
	case "json":
		return output.WriteJSON(w, result)
	case "junit":
		return output.WriteJUnit(w, result)
	case "html":
		return output.WriteHTML(w, result, version)
	case "console", "":
		f := output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(verboseFlag),
			output.WithNoColor(noColorFlag || quietFlag),
		)
		f.FormatSuite(result)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", outputFlag)
	}
}

// curlExecutor aborts execution after the request is fully built.
type curlExecutor struct{}

var errCurlOnly = fmt.Errorf("curl preview, request not sent")

func (curlExecutor) Do(*purlhttp.Request) (*purlhttp.Response, error) {
	return nil, errCurlOnly
}

func printCurlCommands(cmd *cobra.Command, files []string) error {
	ctx := cmd.Context()
	ws := config.Discover(".")

	opts := []runner.Option{
		runner.WithWorkspace(ws),
		runner.WithInsecure(insecureFlag),
		runner.WithExecutor(curlExecutor{}),
	}
	if len(configsFlag) > 0 {
		configs, err := ws.LoadConfigs(configsFlag)
		if err != nil {
			return err
		}
		opts = append(opts, runner.WithConfigs(configs))
	}
	overrides, err := parseVarFlags(varFlags)
	if err != nil {
		return err
	}
	if len(overrides) > 0 {
		opts = append(opts, runner.WithOverrides(overrides))
	}
	if ws.Exists() {
		store, err := pvars.Open(ws.PvarsPath())
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, runner.WithPvars(store))
	}

	r, err := runner.New(opts...)
	if err != nil {
		return err
	}

	for _, file := range files {
		exec := r.RunFile(ctx, file)
		if exec.Request == nil {
			return fmt.Errorf("%s: %s", file, exec.Error)
		}
		fmt.Fprintln(cmd.OutOrStdout(), curl.Command(exec.Request))
	}
	return nil
}

// watchAndRerun re-runs the files whenever one of their directories sees a
// write to a YAML file.
func watchAndRerun(ctx context.Context, cmd *cobra.Command, files []string, runOnce func() (bool, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to watch %s: %v\n", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) || !isYAMLFile(event.Name) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\nRe-running...\n", event.Name)
				if _, err := runOnce(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

// parseVarFlags splits --var name=value pairs.
func parseVarFlags(flags []string) (map[string]any, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	overrides := make(map[string]any, len(flags))
	for _, flag := range flags {
		name, value, ok := strings.Cut(flag, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q, expected name=value", flag)
		}
		overrides[name] = value
	}
	return overrides, nil
}

// collectFiles expands directory arguments into their YAML files.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() || !isYAMLFile(entry.Name()) {
				continue
			}
			found = append(found, filepath.Join(arg, entry.Name()))
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
