// Package formatter implements the risp source code formatter.
package formatter

import (
	"strconv"
	"strings"

	"github.com/thomasrohde/risp/pkg/ast"
)

const (
	indent   = "  "
	maxWidth = 80
)

// Format pretty-prints a program, one top-level expression per line.
// Forms that do not fit in maxWidth columns are broken across lines.
func Format(program *ast.Program) string {
	if len(program.Exprs) == 0 {
		return ""
	}
	lines := make([]string, len(program.Exprs))
	for i, e := range program.Exprs {
		lines[i] = layout(e, 0, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatExpr renders an expression on a single line.
func FormatExpr(e ast.Expr) string {
	var b strings.Builder
	writeFlat(&b, e)
	return b.String()
}

// HasComments checks if a source string contains risp comments (; prefix).
// The language has no string literals, so any ';' starts a comment.
func HasComments(source string) bool {
	return strings.Contains(source, ";")
}

func writeFlat(b *strings.Builder, e ast.Expr) {
	switch n := e.(type) {
	case *ast.NumLiteral:
		b.WriteString(strconv.FormatUint(n.Value, 10))
	case *ast.BoolLiteral:
		b.WriteString(strconv.FormatBool(n.Value))
	case *ast.IdentExpr:
		b.WriteString(n.Name)
	case *ast.BinaryExpr:
		b.WriteString("(" + string(n.Op) + " ")
		writeFlat(b, n.Left)
		b.WriteByte(' ')
		writeFlat(b, n.Right)
		b.WriteByte(')')
	case *ast.IfExpr:
		b.WriteString("(If ")
		writeFlat(b, n.Cond)
		b.WriteByte(' ')
		writeFlat(b, n.Then)
		b.WriteByte(' ')
		writeFlat(b, n.Else)
		b.WriteByte(')')
	case *ast.DefineExpr:
		b.WriteString("(Define " + n.Name + " ")
		writeFlat(b, n.Value)
		b.WriteByte(')')
	case *ast.FuncExpr:
		b.WriteString("(Func " + paramList(n.Params) + " ")
		writeFlat(b, n.Body)
		b.WriteByte(')')
	case *ast.ApplyExpr:
		b.WriteString("(Apply ")
		writeFlat(b, n.Callee)
		for _, a := range n.Args {
			b.WriteByte(' ')
			writeFlat(b, a)
		}
		b.WriteByte(')')
	default:
		b.WriteString("<?>")
	}
}

func paramList(params []string) string {
	return "(" + strings.Join(params, " ") + ")"
}

// layout renders e at the given nesting level, followed on its last line by
// trailing closing parens of enclosing forms. The head of each form and its
// first operand stay on the opening line; the remaining operands go on their
// own lines one indent deeper.
func layout(e ast.Expr, level, trailing int) string {
	flat := FormatExpr(e)
	if len(indent)*level+len(flat)+trailing <= maxWidth {
		return flat
	}

	var head string
	var rest []ast.Expr

	switch n := e.(type) {
	case *ast.BinaryExpr:
		head = "(" + string(n.Op) + " " + FormatExpr(n.Left)
		rest = []ast.Expr{n.Right}
	case *ast.IfExpr:
		head = "(If " + FormatExpr(n.Cond)
		rest = []ast.Expr{n.Then, n.Else}
	case *ast.DefineExpr:
		head = "(Define " + n.Name
		rest = []ast.Expr{n.Value}
	case *ast.FuncExpr:
		head = "(Func " + paramList(n.Params)
		rest = []ast.Expr{n.Body}
	case *ast.ApplyExpr:
		head = "(Apply " + FormatExpr(n.Callee)
		rest = n.Args
	default:
		return flat
	}

	if len(rest) == 0 {
		return flat
	}

	pad := "\n" + strings.Repeat(indent, level+1)
	var b strings.Builder
	b.WriteString(head)
	for i, r := range rest {
		closing := 0
		if i == len(rest)-1 {
			closing = trailing + 1
		}
		b.WriteString(pad)
		b.WriteString(layout(r, level+1, closing))
	}
	b.WriteByte(')')
	return b.String()
}
