// Package validator implements static checks over risp programs.
package validator

import (
	"fmt"

	"github.com/thomasrohde/risp/pkg/ast"
	"github.com/thomasrohde/risp/pkg/diagnostics"
)

type validator struct {
	diags []diagnostics.Diagnostic
	// lint enables the type and call-shape checks.
	lint bool
}

// Validate reports defects that make a program ill-formed before it runs.
// Only malformed literals qualify: a Func with repeated parameter names is
// rejected wherever it appears. Errors that depend on which branches run or
// which functions are applied are left to the evaluator.
func Validate(program *ast.Program) []diagnostics.Diagnostic {
	v := &validator{}
	for _, e := range program.Exprs {
		v.validateExpr(e)
	}
	return v.diags
}

// ValidateExpr is Validate for a single expression.
func ValidateExpr(e ast.Expr) []diagnostics.Diagnostic {
	v := &validator{}
	v.validateExpr(e)
	return v.diags
}

// Lint reports everything Validate does plus forms that fail whenever they
// are evaluated: + or - on a non-num literal, Apply on a literal that is not
// a function or with the wrong argument count, and If on a Func literal.
// The forms may sit in a branch or body that never runs, so these are
// advisory and do not stop execution.
func Lint(program *ast.Program) []diagnostics.Diagnostic {
	v := &validator{lint: true}
	for _, e := range program.Exprs {
		v.validateExpr(e)
	}
	return v.diags
}

// LintExpr is Lint for a single expression.
func LintExpr(e ast.Expr) []diagnostics.Diagnostic {
	v := &validator{lint: true}
	v.validateExpr(e)
	return v.diags
}

func (v *validator) addDiag(code, msg string, span ast.Span, hint string) {
	var sp *ast.Span
	if span != (ast.Span{}) {
		sp = &span
	}
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, sp, hint))
}

func (v *validator) validateExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.NumLiteral, *ast.BoolLiteral, *ast.IdentExpr, nil:
		return

	case *ast.BinaryExpr:
		if v.lint && n.Op != ast.OpEqEq {
			v.checkNumOperand(n.Op, n.Left)
			v.checkNumOperand(n.Op, n.Right)
		}
		v.validateExpr(n.Left)
		v.validateExpr(n.Right)

	case *ast.IfExpr:
		if _, ok := n.Cond.(*ast.FuncExpr); ok && v.lint {
			v.addDiag(diagnostics.EType, "If condition must be num or bool, got function", n.Cond.NodeSpan(), "")
		}
		v.validateExpr(n.Cond)
		v.validateExpr(n.Then)
		v.validateExpr(n.Else)

	case *ast.DefineExpr:
		v.validateExpr(n.Value)

	case *ast.FuncExpr:
		v.checkParams(n)
		v.validateExpr(n.Body)

	case *ast.ApplyExpr:
		if v.lint {
			v.checkCallee(n)
		}
		v.validateExpr(n.Callee)
		for _, a := range n.Args {
			v.validateExpr(a)
		}
	}
}

func (v *validator) checkParams(fn *ast.FuncExpr) {
	seen := make(map[string]bool, len(fn.Params))
	reported := make(map[string]bool)
	for _, p := range fn.Params {
		if seen[p] && !reported[p] {
			v.addDiag(diagnostics.EDupParam,
				fmt.Sprintf("duplicate parameter '%s'", p), fn.Span,
				"parameter names must be unique within one Func")
			reported[p] = true
		}
		seen[p] = true
	}
}

// checkNumOperand reports operands of + and - whose type is known statically
// and is not num.
func (v *validator) checkNumOperand(op ast.BinaryOp, operand ast.Expr) {
	var got string
	switch o := operand.(type) {
	case *ast.BoolLiteral:
		got = "bool"
	case *ast.BinaryExpr:
		if o.Op == ast.OpEqEq {
			got = "bool"
		}
	case *ast.FuncExpr:
		got = "function"
	}
	if got == "" {
		return
	}
	v.addDiag(diagnostics.EType,
		fmt.Sprintf("operator '%s' expects num operands, got %s", op, got), operand.NodeSpan(), "")
}

func (v *validator) checkCallee(app *ast.ApplyExpr) {
	switch c := app.Callee.(type) {
	case *ast.FuncExpr:
		if len(c.Params) != len(app.Args) {
			v.addDiag(diagnostics.EArity,
				fmt.Sprintf("function expects %d argument(s), got %d", len(c.Params), len(app.Args)), app.Span, "")
		}
	case *ast.NumLiteral:
		v.addDiag(diagnostics.ENotCallable, "cannot apply a num value", c.Span, "")
	case *ast.BoolLiteral:
		v.addDiag(diagnostics.ENotCallable, "cannot apply a bool value", c.Span, "")
	case *ast.BinaryExpr:
		kind := "num"
		if c.Op == ast.OpEqEq {
			kind = "bool"
		}
		v.addDiag(diagnostics.ENotCallable, fmt.Sprintf("cannot apply a %s value", kind), c.Span, "")
	}
}
