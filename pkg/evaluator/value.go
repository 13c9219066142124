// Package evaluator implements the risp tree-walking evaluator.
package evaluator

import (
	"strconv"

	"github.com/thomasrohde/risp/pkg/ast"
	"github.com/thomasrohde/risp/pkg/formatter"
)

// Object is the interface for all risp runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Object interface {
	object() // sealed marker
}

// Num represents an unsigned integer value.
type Num struct {
	Value uint64
}

func (Num) object() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) object() {}

// Function is a reified function literal. It carries no environment: the
// body sees the caller's bindings when applied.
type Function struct {
	Params []string
	Body   ast.Expr
}

func (Function) object() {}

// NewNum creates a numeric value.
func NewNum(n uint64) Object {
	return Num{Value: n}
}

// NewBool creates a boolean value.
func NewBool(b bool) Object {
	return Bool{Value: b}
}

// NewFunction creates a function value.
func NewFunction(params []string, body ast.Expr) Object {
	return Function{Params: params, Body: body}
}

// Truthiness maps a value to a branch choice. Bool(true) and non-zero numbers
// are truthy, Bool(false) and Num(0) are falsy. Functions have no truth value
// and report ok == false.
func Truthiness(v Object) (truthy, ok bool) {
	switch val := v.(type) {
	case Bool:
		return val.Value, true
	case Num:
		return val.Value != 0, true
	default:
		return false, false
	}
}

// TypeName returns the risp type name for error messages.
func TypeName(v Object) string {
	switch v.(type) {
	case Num:
		return "num"
	case Bool:
		return "bool"
	case Function:
		return "function"
	default:
		return "unknown"
	}
}

// DeepEqual compares two values structurally. Values of different kinds are
// never equal; functions compare by parameters and body.
func DeepEqual(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case Num:
		bv, ok := b.(Num)
		return ok && av.Value == bv.Value

	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value

	case Function:
		bv, ok := b.(Function)
		return ok && ast.ParamsEqual(av.Params, bv.Params) && ast.DeepEqual(av.Body, bv.Body)
	}

	return false
}

// Inspect renders a value the way it would be written in source.
func Inspect(v Object) string {
	switch val := v.(type) {
	case Num:
		return strconv.FormatUint(val.Value, 10)
	case Bool:
		return strconv.FormatBool(val.Value)
	case Function:
		return formatter.FormatExpr(&ast.FuncExpr{Params: val.Params, Body: val.Body})
	case nil:
		return "<none>"
	default:
		return "<unknown>"
	}
}
