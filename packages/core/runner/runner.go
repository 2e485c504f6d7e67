package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/imhmg/purl/packages/assertions"
	"github.com/imhmg/purl/packages/core/config"
	"github.com/imhmg/purl/packages/core/spec"
	"github.com/imhmg/purl/packages/extract"
	"github.com/imhmg/purl/packages/fake"
	"github.com/imhmg/purl/packages/http"
	"github.com/imhmg/purl/packages/pvars"
	"github.com/imhmg/purl/packages/script"
	"github.com/imhmg/purl/packages/template"
	"github.com/imhmg/purl/packages/vars"
)

// Execution states. A request with failed assertions is still complete;
// error means it never produced a usable response.
const (
	StatusComplete = "complete"
	StatusError    = "error"
)

// Executor sends one resolved request and returns its raw outcome.
type Executor interface {
	Do(req *http.Request) (*http.Response, error)
}

// Runner drives request files: variable layering, template resolution,
// transport, captures, and assertions.
type Runner struct {
	store    *vars.Store
	resolver *template.Resolver
	executor Executor
	scripts  script.Runtime
	pvars    *pvars.Store
	ws       *config.Workspace

	timeout      time.Duration
	suiteTimeout time.Duration
	insecure     bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor replaces the HTTP client, mainly for tests.
func WithExecutor(e Executor) Option {
	return func(r *Runner) {
		r.executor = e
	}
}

// WithScripts replaces the PreExec/PostExec runtime.
func WithScripts(s script.Runtime) Option {
	return func(r *Runner) {
		r.scripts = s
	}
}

// WithPvars attaches the persistent store. Captures are flushed to it as
// they are taken.
func WithPvars(p *pvars.Store) Option {
	return func(r *Runner) {
		r.pvars = p
	}
}

// WithWorkspace attaches the workspace used to load suite configs.
func WithWorkspace(ws *config.Workspace) Option {
	return func(r *Runner) {
		r.ws = ws
	}
}

// WithTimeout sets the default request timeout. A request's own
// Options.timeout still wins.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithInsecure disables TLS certificate verification for every request.
func WithInsecure(insecure bool) Option {
	return func(r *Runner) {
		r.insecure = insecure
	}
}

// WithOverrides sets highest-precedence variables, typically --var flags.
func WithOverrides(overrides map[string]any) Option {
	return func(r *Runner) {
		r.store.SetAll(overrides, vars.LayerOverride)
	}
}

// WithConfigs layers pre-loaded config variable maps, in declaration order.
func WithConfigs(configs []map[string]any) Option {
	return func(r *Runner) {
		for _, c := range configs {
			r.store.AddConfig(c)
		}
	}
}

// New builds a Runner. Persistent variables already in the attached pvars
// store are loaded into the persistent layer.
func New(opts ...Option) (*Runner, error) {
	r := &Runner{store: vars.NewStore()}
	r.resolver = template.NewResolver(r.store, fake.New())

	for _, opt := range opts {
		opt(r)
	}

	if r.executor == nil {
		clientOpts := []http.ClientOption{http.WithInsecure(r.insecure)}
		if r.timeout > 0 {
			clientOpts = append(clientOpts, http.WithTimeout(r.timeout))
		}
		r.executor = http.NewClient(clientOpts...)
	}
	if r.scripts == nil {
		r.scripts = script.NewShellRuntime()
	}

	if r.pvars != nil {
		persisted, err := r.pvars.Load()
		if err != nil {
			return nil, err
		}
		r.store.SetAll(persisted, vars.LayerPersistent)
	}
	return r, nil
}

// Store exposes the variable store for callers that layer suite or row
// variables around RunFile.
func (r *Runner) Store() *vars.Store {
	return r.store
}

// RequestExecution is the trace of one request file run. Failures are
// encoded in Status and Error rather than returned, so a suite keeps going.
type RequestExecution struct {
	Status     string
	File       string
	Name       string
	Request    *http.Request
	Response   *http.Response
	Error      string
	Assertions []*assertions.Result
	Captures   map[string]any
	Warnings   []string
	Duration   time.Duration
}

// Passed reports whether the request completed with every assertion passing.
func (e *RequestExecution) Passed() bool {
	if e.Status != StatusComplete {
		return false
	}
	for _, a := range e.Assertions {
		if !a.Passed {
			return false
		}
	}
	return true
}

// AssertionsFailed counts failing assertions.
func (e *RequestExecution) AssertionsFailed() int {
	failed := 0
	for _, a := range e.Assertions {
		if !a.Passed {
			failed++
		}
	}
	return failed
}

// RunFile executes one request file against the current variable layers.
func (r *Runner) RunFile(ctx context.Context, path string) *RequestExecution {
	start := time.Now()
	exec := &RequestExecution{
		Status:   StatusComplete,
		File:     path,
		Name:     nameFromPath(path),
		Captures: make(map[string]any),
	}
	defer func() {
		exec.Duration = time.Since(start)
	}()

	file, err := spec.LoadRequestFile(path)
	if err != nil {
		return exec.fail(err)
	}
	if name, ok := file.Doc["Name"].(string); ok && name != "" {
		exec.Name = name
	}

	baseDir := filepath.Dir(path)

	// Defines live in a request-local layer, cleared before each file.
	r.store.ClearDefine()
	if err := r.resolveDefines(file.Defines); err != nil {
		return exec.fail(err)
	}

	if err := r.runScript(ctx, file.Doc, "PreExec", script.PhasePre, exec, baseDir); err != nil {
		return exec.fail(err)
	}

	resolved, err := r.resolveDoc(file.Doc)
	if err != nil {
		return exec.fail(err)
	}

	request, err := spec.DecodeRequest(resolved)
	if err != nil {
		return exec.fail(err)
	}
	if request.Name != "" {
		exec.Name = request.Name
	}

	httpReq, err := r.buildRequest(request, baseDir)
	if err != nil {
		return exec.fail(err)
	}
	exec.Request = httpReq

	resp, err := r.executor.Do(httpReq)
	if err != nil {
		return exec.fail(err)
	}
	exec.Response = resp

	r.takeCaptures(file.Captures, resp, exec)

	rules := make([]assertions.Rule, 0, len(file.Asserts))
	for _, pair := range file.Asserts {
		rules = append(rules, assertions.Rule{Label: pair.Key, Expr: pair.Value})
	}
	exec.Assertions = assertions.EvaluateAll(resp, r.resolver, int(request.Status), rules)

	if err := r.runScript(ctx, file.Doc, "PostExec", script.PhasePost, exec, baseDir); err != nil {
		exec.Warnings = append(exec.Warnings, err.Error())
	}
	return exec
}

func (e *RequestExecution) fail(err error) *RequestExecution {
	e.Status = StatusError
	e.Error = err.Error()
	return e
}

// resolveDefines fills the define layer in authoring order. Each entry is
// pinned to its resolved value before the next one resolves, so a later
// entry referencing an earlier one sees the pinned value and generator
// calls run exactly once per request.
func (r *Runner) resolveDefines(defines spec.Pairs) error {
	for _, pair := range defines {
		resolved, err := r.resolver.ResolveAt(pair.Value, "Define."+pair.Key)
		if err != nil {
			return err
		}
		r.store.Set(pair.Key, vars.From(resolved), vars.LayerDefine)
	}
	return nil
}

// skippedSections are left out of upfront document resolution. Scripts carry
// shell ${VAR} syntax, and capture and assert expressions resolve at
// evaluation time against post-response state.
var skippedSections = map[string]bool{
	"Define":   true,
	"PreExec":  true,
	"PostExec": true,
	"Captures": true,
	"Asserts":  true,
}

func (r *Runner) resolveDoc(doc map[string]any) (map[string]any, error) {
	pruned := make(map[string]any, len(doc))
	for key, value := range doc {
		if skippedSections[key] {
			continue
		}
		pruned[key] = value
	}

	resolved, err := r.resolver.Resolve(pruned)
	if err != nil {
		return nil, err
	}
	return resolved.(map[string]any), nil
}

// buildRequest turns a resolved spec into a transport request.
func (r *Runner) buildRequest(request *spec.RequestSpec, baseDir string) (*http.Request, error) {
	endpoint := request.ResolvedEndpoint()
	if err := http.ValidateURL(endpoint); err != nil {
		return nil, err
	}

	req := http.NewRequest(strings.ToUpper(request.Method), endpoint)
	req.BaseDir = baseDir
	for k, v := range request.Headers {
		req.SetHeader(k, v)
	}
	for k, v := range request.QueryParams {
		req.SetQueryParam(k, fmt.Sprintf("%v", v))
	}

	req.BodyType = http.BodyType(request.BodyType())
	if request.MultipartData != nil {
		for name, value := range request.MultipartData {
			field := http.MultipartField{Name: name}
			if strings.HasPrefix(value, "@") {
				field.FilePath = strings.TrimPrefix(value, "@")
			} else {
				field.Value = value
			}
			req.Multipart = append(req.Multipart, field)
		}
	} else {
		body, err := request.BodyContent()
		if err != nil {
			return nil, err
		}
		req.Body = body
	}

	req.Timeout = r.requestTimeout(request.Options)
	req.Insecure = r.insecure || request.Options.Insecure
	return req, nil
}

// requestTimeout picks the effective timeout: request options, then the
// runner default, then suite options.
func (r *Runner) requestTimeout(opts spec.RequestOptions) time.Duration {
	if opts.Timeout > 0 {
		return time.Duration(opts.Timeout) * time.Second
	}
	if r.timeout > 0 {
		return r.timeout
	}
	return r.suiteTimeout
}

// takeCaptures extracts each capture in authoring order. A miss records a
// null capture and keeps going; hits land in the persistent layer and are
// flushed to the pvars store immediately.
func (r *Runner) takeCaptures(captures spec.Pairs, resp *http.Response, exec *RequestExecution) {
	if len(captures) == 0 {
		return
	}

	extractor := extract.NewExtractor(resp)
	for _, pair := range captures {
		expr, err := r.resolver.ResolveStringAt(pair.Value, "Captures."+pair.Key)
		if err != nil {
			exec.Captures[pair.Key] = nil
			exec.Warnings = append(exec.Warnings, fmt.Sprintf("capture %q: %v", pair.Key, err))
			continue
		}

		value, found := extractor.Extract(expr)
		if !found {
			exec.Captures[pair.Key] = nil
			continue
		}

		exec.Captures[pair.Key] = value
		r.persist(pair.Key, value, exec)
	}
}

// persist writes a captured value into the persistent layer and the pvars
// store. Store write failures are warnings, not execution errors.
func (r *Runner) persist(name string, value any, exec *RequestExecution) {
	r.store.Set(name, vars.From(value), vars.LayerPersistent)
	if r.pvars == nil {
		return
	}
	if err := r.pvars.Put(name, value); err != nil {
		exec.Warnings = append(exec.Warnings, err.Error())
	}
}

// runScript runs the named script section when present. set_var writes go
// through the same persistence path as captures.
func (r *Runner) runScript(ctx context.Context, doc map[string]any, section string, phase script.Phase, exec *RequestExecution, baseDir string) error {
	command, ok := doc[section].(string)
	if !ok || strings.TrimSpace(command) == "" {
		return nil
	}

	sctx := &script.Context{
		RequestName: exec.Name,
		Phase:       phase,
		BaseDir:     baseDir,
		Vars:        r.snapshot(),
		SetVar: func(name, value string) {
			r.persist(name, value, exec)
		},
	}
	return r.scripts.Run(ctx, command, sctx)
}

// snapshot flattens the layered store for script environments.
func (r *Runner) snapshot() map[string]any {
	snap := r.store.Snapshot()
	flat := make(map[string]any, len(snap))
	for name, value := range snap {
		flat[name] = value.Raw()
	}
	return flat
}

func nameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
