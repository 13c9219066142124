package evaluator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thomasrohde/risp/pkg/ast"
	"github.com/thomasrohde/risp/pkg/diagnostics"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart       TraceEventType = "run_start"
	TraceRunEnd         TraceEventType = "run_end"
	TraceExprStart      TraceEventType = "expr_start"
	TraceExprEnd        TraceEventType = "expr_end"
	TraceDefine         TraceEventType = "define"
	TraceApplyStart     TraceEventType = "apply_start"
	TraceApplyEnd       TraceEventType = "apply_end"
	TraceBudgetExceeded TraceEventType = "budget_exceeded"
)

// TraceEvent represents a single trace event emitted during evaluation.
type TraceEvent struct {
	Timestamp string         `json:"ts"`
	RunID     string         `json:"runId"`
	Event     TraceEventType `json:"event"`
	Span      *ast.Span      `json:"span,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Options configures evaluation.
type Options struct {
	Budget Budget
	Trace  func(event TraceEvent)
	RunID  string
}

// ExecResult holds the result of a program execution.
type ExecResult struct {
	Value Object
	Stats BudgetTracker
}

// RuntimeError represents an evaluation failure. Code is one of the
// diagnostics E_* constants; Name is set for unbound identifiers.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
	Name    string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Fatal reports whether the error came from exhausting the call depth.
// Hosts usually abandon the whole session on a fatal error.
func (e *RuntimeError) Fatal() bool {
	return e.Code == diagnostics.EStack
}

type evaluator struct {
	ctx     context.Context
	opts    Options
	budget  Budget
	tracker BudgetTracker
}

func newEvaluator(ctx context.Context, opts Options) (*evaluator, context.CancelFunc) {
	cancel := context.CancelFunc(func() {})
	if opts.Budget.TimeMs != nil && *opts.Budget.TimeMs > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(*opts.Budget.TimeMs)*time.Millisecond)
	}
	return &evaluator{ctx: ctx, opts: opts, budget: opts.Budget}, cancel
}

// Eval reduces a single expression to a value. env is mutated only by Define.
func Eval(ctx context.Context, expr ast.Expr, env *Env, opts Options) (Object, error) {
	ev, cancel := newEvaluator(ctx, opts)
	defer cancel()
	return ev.evalExpr(expr, env)
}

// Execute evaluates the program's expressions in order against env and
// returns the value of the last one. An empty program yields a nil Value.
func Execute(ctx context.Context, program *ast.Program, env *Env, opts Options) (*ExecResult, error) {
	ev, cancel := newEvaluator(ctx, opts)
	defer cancel()

	span := program.Span
	ev.emit(TraceRunStart, &span, nil)

	var last Object
	for _, expr := range program.Exprs {
		exprSpan := expr.NodeSpan()
		ev.emit(TraceExprStart, &exprSpan, nil)

		val, err := ev.evalExpr(expr, env)
		if err != nil {
			data := map[string]any{"error": err.Error()}
			var rtErr *RuntimeError
			if errors.As(err, &rtErr) {
				data["code"] = rtErr.Code
			}
			ev.emit(TraceRunEnd, &span, data)
			return &ExecResult{Stats: ev.tracker}, err
		}

		ev.emit(TraceExprEnd, &exprSpan, map[string]any{"type": TypeName(val)})
		last = val
	}

	ev.emit(TraceRunEnd, &span, nil)
	return &ExecResult{Value: last, Stats: ev.tracker}, nil
}

func (ev *evaluator) emit(event TraceEventType, span *ast.Span, data map[string]any) {
	if ev.opts.Trace == nil {
		return
	}
	if span != nil && *span == (ast.Span{}) {
		span = nil
	}
	ev.opts.Trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     ev.opts.RunID,
		Event:     event,
		Span:      span,
		Data:      data,
	})
}

// spanPtr drops the zero span carried by builder-constructed nodes.
func spanPtr(s ast.Span) *ast.Span {
	if s == (ast.Span{}) {
		return nil
	}
	return &s
}

func (ev *evaluator) fail(code, msg string, span ast.Span) error {
	return &RuntimeError{Code: code, Message: msg, Span: spanPtr(span)}
}

// checkInterrupt is the cooperative cancellation point, called at every
// Apply and If.
func (ev *evaluator) checkInterrupt(span ast.Span) error {
	err := ev.ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		ev.emit(TraceBudgetExceeded, &span, map[string]any{"budget": "timeMs"})
		msg := "evaluation deadline exceeded"
		if ev.budget.TimeMs != nil {
			msg = fmt.Sprintf("time budget exceeded (%dms)", *ev.budget.TimeMs)
		}
		return ev.fail(diagnostics.EBudget, msg, span)
	}
	return ev.fail(diagnostics.ECanceled, "evaluation canceled", span)
}

func (ev *evaluator) countStep(span ast.Span) error {
	ev.tracker.Steps++
	if ev.budget.MaxSteps != nil && *ev.budget.MaxSteps > 0 && ev.tracker.Steps > *ev.budget.MaxSteps {
		ev.emit(TraceBudgetExceeded, &span, map[string]any{"budget": "maxSteps"})
		return ev.fail(diagnostics.EBudget, fmt.Sprintf("step budget exceeded (max %d)", *ev.budget.MaxSteps), span)
	}
	return nil
}

func (ev *evaluator) evalExpr(expr ast.Expr, env *Env) (Object, error) {
	if expr == nil {
		return nil, &RuntimeError{Code: diagnostics.EType, Message: "missing expression"}
	}
	if err := ev.countStep(expr.NodeSpan()); err != nil {
		return nil, err
	}

	switch e := expr.(type) {
	case *ast.NumLiteral:
		return NewNum(e.Value), nil

	case *ast.BoolLiteral:
		return NewBool(e.Value), nil

	case *ast.IdentExpr:
		val, ok := env.Get(e.Name)
		if !ok {
			return nil, &RuntimeError{
				Code:    diagnostics.EUnbound,
				Message: fmt.Sprintf("unbound identifier '%s'", e.Name),
				Span:    spanPtr(e.Span),
				Name:    e.Name,
			}
		}
		return val, nil

	case *ast.BinaryExpr:
		return ev.evalBinary(e, env)

	case *ast.IfExpr:
		return ev.evalIf(e, env)

	case *ast.DefineExpr:
		return ev.evalDefine(e, env)

	case *ast.FuncExpr:
		return NewFunction(e.Params, e.Body), nil

	case *ast.ApplyExpr:
		return ev.evalApply(e, env)

	default:
		return nil, ev.fail(diagnostics.EType, fmt.Sprintf("unsupported expression type: %T", expr), expr.NodeSpan())
	}
}

func (ev *evaluator) evalBinary(e *ast.BinaryExpr, env *Env) (Object, error) {
	// Left first: a Define on the left is visible to the right operand.
	left, err := ev.evalExpr(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := ev.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}

	if e.Op == ast.OpEqEq {
		return NewBool(DeepEqual(left, right)), nil
	}

	lNum, lOk := left.(Num)
	rNum, rOk := right.(Num)
	if !lOk || !rOk {
		return nil, ev.fail(diagnostics.EType,
			fmt.Sprintf("operator '%s' expects num operands, got %s and %s", e.Op, TypeName(left), TypeName(right)),
			e.Span)
	}

	switch e.Op {
	case ast.OpAdd:
		sum := lNum.Value + rNum.Value
		if sum < lNum.Value {
			return nil, ev.fail(diagnostics.EOverflow,
				fmt.Sprintf("integer overflow: %d + %d", lNum.Value, rNum.Value), e.Span)
		}
		return NewNum(sum), nil

	case ast.OpSub:
		if rNum.Value > lNum.Value {
			return nil, ev.fail(diagnostics.EUnderflow,
				fmt.Sprintf("integer underflow: %d - %d is negative", lNum.Value, rNum.Value), e.Span)
		}
		return NewNum(lNum.Value - rNum.Value), nil
	}

	return nil, ev.fail(diagnostics.EType, fmt.Sprintf("unknown operator '%s'", e.Op), e.Span)
}

func (ev *evaluator) evalIf(e *ast.IfExpr, env *Env) (Object, error) {
	if err := ev.checkInterrupt(e.Span); err != nil {
		return nil, err
	}
	cond, err := ev.evalExpr(e.Cond, env)
	if err != nil {
		return nil, err
	}
	truthy, ok := Truthiness(cond)
	if !ok {
		return nil, ev.fail(diagnostics.EType,
			fmt.Sprintf("If condition must be num or bool, got %s", TypeName(cond)), e.Cond.NodeSpan())
	}
	if truthy {
		return ev.evalExpr(e.Then, env)
	}
	return ev.evalExpr(e.Else, env)
}

func (ev *evaluator) evalDefine(e *ast.DefineExpr, env *Env) (Object, error) {
	val, err := ev.evalExpr(e.Value, env)
	if err != nil {
		return nil, err
	}
	env.Set(e.Name, val)
	span := e.Span
	ev.emit(TraceDefine, &span, map[string]any{"name": e.Name, "type": TypeName(val)})
	return val, nil
}

func (ev *evaluator) evalApply(e *ast.ApplyExpr, env *Env) (Object, error) {
	if err := ev.checkInterrupt(e.Span); err != nil {
		return nil, err
	}

	callee, err := ev.evalExpr(e.Callee, snapshot(e.Callee, env))
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(Function)
	if !ok {
		return nil, ev.fail(diagnostics.ENotCallable,
			fmt.Sprintf("cannot apply a %s value", TypeName(callee)), e.Callee.NodeSpan())
	}

	// Each argument sees the caller's bindings but not its siblings' Defines.
	args := make([]Object, len(e.Args))
	for i, arg := range e.Args {
		val, err := ev.evalExpr(arg, snapshot(arg, env))
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	if len(args) != len(fn.Params) {
		return nil, ev.fail(diagnostics.EArity,
			fmt.Sprintf("function expects %d argument(s), got %d", len(fn.Params), len(args)), e.Span)
	}

	if ev.tracker.Depth >= ev.budget.maxDepth() {
		span := e.Span
		ev.emit(TraceBudgetExceeded, &span, map[string]any{"budget": "maxDepth"})
		return nil, ev.fail(diagnostics.EStack,
			fmt.Sprintf("maximum call depth exceeded (%d)", ev.budget.maxDepth()), e.Span)
	}

	ev.tracker.Depth++
	ev.tracker.Applies++
	if ev.tracker.Depth > ev.tracker.MaxDepth {
		ev.tracker.MaxDepth = ev.tracker.Depth
	}

	span := e.Span
	data := map[string]any{"depth": ev.tracker.Depth, "arity": len(args)}
	if id, ok := e.Callee.(*ast.IdentExpr); ok {
		data["fn"] = id.Name
	}
	ev.emit(TraceApplyStart, &span, data)

	result, err := ev.evalExpr(fn.Body, callEnv(fn.Params, args, env))

	ev.emit(TraceApplyEnd, &span, data)
	ev.tracker.Depth--
	return result, err
}

// snapshot returns the environment a callee or argument expression is
// evaluated in. The copy is only materialised when the expression can
// Define into it; otherwise the caller's env cannot be touched.
func snapshot(expr ast.Expr, env *Env) *Env {
	if mayDefine(expr) {
		return env.Clone()
	}
	return env
}

// mayDefine reports whether evaluating expr can bind a name in the
// environment it is evaluated in. Function bodies and nested Applies run in
// environments of their own, so they never count.
func mayDefine(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.DefineExpr:
		return true
	case *ast.BinaryExpr:
		return mayDefine(e.Left) || mayDefine(e.Right)
	case *ast.IfExpr:
		return mayDefine(e.Cond) || mayDefine(e.Then) || mayDefine(e.Else)
	default:
		return false
	}
}
