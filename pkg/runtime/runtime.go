// Package runtime provides the top-level risp session orchestrator.
package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomasrohde/risp/pkg/config"
	"github.com/thomasrohde/risp/pkg/diagnostics"
	"github.com/thomasrohde/risp/pkg/evaluator"
	"github.com/thomasrohde/risp/pkg/formatter"
	"github.com/thomasrohde/risp/pkg/parser"
	"github.com/thomasrohde/risp/pkg/validator"
)

// Result holds the outcome of a program execution.
type Result struct {
	Value evaluator.Object
	Stats evaluator.BudgetTracker
}

// Runtime wires together the risp components and keeps one environment
// across runs. A Runtime is not safe for concurrent use.
type Runtime struct {
	env    *evaluator.Env
	budget evaluator.Budget
	runID  string
	trace  func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithConfig applies the limits and run ID from a loaded config.
func WithConfig(cfg *config.Config) Option {
	return func(rt *Runtime) {
		if cfg == nil {
			return
		}
		rt.budget = cfg.Budget()
		if cfg.Trace.RunID != "" {
			rt.runID = cfg.Trace.RunID
		}
	}
}

// WithBudget sets the evaluation budget.
func WithBudget(b evaluator.Budget) Option {
	return func(rt *Runtime) {
		rt.budget = b
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithEnv starts the session from an existing environment.
func WithEnv(env *evaluator.Env) Option {
	return func(rt *Runtime) {
		if env != nil {
			rt.env = env
		}
	}
}

// New creates a new Runtime with the given options.
// By default the session env is empty and the budget is the config default.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		env:    evaluator.NewEnv(),
		budget: config.Default().Budget(),
		runID:  config.DefaultRunID,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Env returns the session environment.
func (rt *Runtime) Env() *evaluator.Env {
	return rt.env
}

// Reset discards every session binding.
func (rt *Runtime) Reset() {
	rt.env = evaluator.NewEnv()
}

// Run parses, validates, and executes a risp program against the session env.
// Bindings made by Define persist into later runs, including those made
// before a runtime error.
func (rt *Runtime) Run(ctx context.Context, source, filename string) (*Result, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}

	vDiags := validator.Validate(program)
	if len(vDiags) > 0 {
		return nil, &DiagnosticError{Diagnostics: vDiags}
	}

	result, err := evaluator.Execute(ctx, program, rt.env, rt.execOptions())
	if err != nil {
		if result != nil {
			return &Result{Stats: result.Stats}, err
		}
		return nil, err
	}
	return &Result{Value: result.Value, Stats: result.Stats}, nil
}

// Check parses and lints a risp program without executing it. Lint findings
// include forms in branches that Run would never evaluate.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return diags
	}

	return validator.Lint(program)
}

// Format parses and formats a risp program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(program), nil
}

func (rt *Runtime) execOptions() evaluator.Options {
	return evaluator.Options{
		Budget: rt.budget,
		Trace:  rt.trace,
		RunID:  rt.runID,
	}
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
