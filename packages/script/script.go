package script

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// Phase names which side of the request a script runs on.
type Phase string

const (
	PhasePre  Phase = "pre"
	PhasePost Phase = "post"
)

// EnvPrefix marks variable entries in a script's environment.
const EnvPrefix = "PURL_VAR_"

// setVarPattern matches the "set_var <name> <value>" stdout protocol.
var setVarPattern = regexp.MustCompile(`^set_var\s+(\S+)\s+(.*)$`)

// envNamePattern strips characters that are not valid in environment names.
var envNamePattern = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Context carries what a script can see and change.
type Context struct {
	RequestName string
	Phase       Phase
	BaseDir     string

	// Vars is the variable snapshot exported into the environment.
	Vars map[string]any

	// SetVar receives variables written back through the stdout protocol.
	SetVar func(name, value string)
}

// Runtime executes one script command.
type Runtime interface {
	Run(ctx context.Context, command string, sctx *Context) error
}

// ShellRuntime runs scripts through a POSIX shell.
type ShellRuntime struct {
	shell   string
	timeout time.Duration
	output  io.Writer
}

// Option configures a ShellRuntime.
type Option func(*ShellRuntime)

// WithShell overrides the shell binary, "sh" by default.
func WithShell(shell string) Option {
	return func(r *ShellRuntime) {
		r.shell = shell
	}
}

// WithTimeout bounds a single script execution.
func WithTimeout(timeout time.Duration) Option {
	return func(r *ShellRuntime) {
		r.timeout = timeout
	}
}

// WithOutput receives script stdout lines that are not set_var directives,
// plus stderr.
func WithOutput(w io.Writer) Option {
	return func(r *ShellRuntime) {
		r.output = w
	}
}

// NewShellRuntime returns a runtime with a 30 second default timeout.
func NewShellRuntime(opts ...Option) *ShellRuntime {
	r := &ShellRuntime{
		shell:   "sh",
		timeout: 30 * time.Second,
		output:  io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes command. A non-zero exit status is an error; set_var lines
// already consumed before the failure still take effect.
func (r *ShellRuntime) Run(ctx context.Context, command string, sctx *Context) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	cmd.Dir = sctx.BaseDir
	cmd.Env = buildEnv(sctx)
	cmd.Stderr = r.output

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	runErr := cmd.Run()
	r.applyStdout(&stdout, sctx)

	if runErr != nil {
		return fmt.Errorf("%s script for %q failed: %w", sctx.Phase, sctx.RequestName, runErr)
	}
	return nil
}

// applyStdout splits captured stdout into set_var directives and plain
// output.
func (r *ShellRuntime) applyStdout(stdout *bytes.Buffer, sctx *Context) {
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if m := setVarPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if sctx.SetVar != nil {
				sctx.SetVar(m[1], strings.TrimSpace(m[2]))
			}
			continue
		}
		fmt.Fprintln(r.output, line)
	}
}

// buildEnv extends the process environment with the variable snapshot and
// request metadata.
func buildEnv(sctx *Context) []string {
	env := os.Environ()
	for name, value := range sctx.Vars {
		env = append(env, EnvPrefix+envName(name)+"="+fmt.Sprintf("%v", value))
	}
	env = append(env,
		"PURL_REQUEST_NAME="+sctx.RequestName,
		"PURL_PHASE="+string(sctx.Phase),
	)
	return env
}

func envName(name string) string {
	return envNamePattern.ReplaceAllString(name, "_")
}
