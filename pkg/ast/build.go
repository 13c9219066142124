package ast

// Builders construct span-less nodes. They are used by hosts that assemble
// programs directly instead of parsing source text.

// Num converts an unsigned integer into a numeric literal.
func Num(v uint64) Expr { return &NumLiteral{Value: v} }

// Bool converts a boolean into a boolean literal.
func Bool(b bool) Expr { return &BoolLiteral{Value: b} }

func Add(left, right Expr) Expr {
	return &BinaryExpr{Op: OpAdd, Left: left, Right: right}
}

func Minus(left, right Expr) Expr {
	return &BinaryExpr{Op: OpSub, Left: left, Right: right}
}

// Eq builds an equality comparison.
func Eq(left, right Expr) Expr {
	return &BinaryExpr{Op: OpEqEq, Left: left, Right: right}
}

func If(cond, then, els Expr) Expr {
	return &IfExpr{Cond: cond, Then: then, Else: els}
}

func Ident(name string) Expr { return &IdentExpr{Name: name} }

func Define(name string, value Expr) Expr {
	return &DefineExpr{Name: name, Value: value}
}

func Func(params []string, body Expr) Expr {
	return &FuncExpr{Params: params, Body: body}
}

func Apply(callee Expr, args ...Expr) Expr {
	return &ApplyExpr{Callee: callee, Args: args}
}
