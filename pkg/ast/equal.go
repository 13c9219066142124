package ast

// DeepEqual reports whether two expressions have the same structure.
// Spans are ignored, so a parsed tree equals the same tree built by hand.
func DeepEqual(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case *NumLiteral:
		bv, ok := b.(*NumLiteral)
		return ok && av.Value == bv.Value

	case *BoolLiteral:
		bv, ok := b.(*BoolLiteral)
		return ok && av.Value == bv.Value

	case *IdentExpr:
		bv, ok := b.(*IdentExpr)
		return ok && av.Name == bv.Name

	case *BinaryExpr:
		bv, ok := b.(*BinaryExpr)
		return ok && av.Op == bv.Op && DeepEqual(av.Left, bv.Left) && DeepEqual(av.Right, bv.Right)

	case *IfExpr:
		bv, ok := b.(*IfExpr)
		return ok && DeepEqual(av.Cond, bv.Cond) && DeepEqual(av.Then, bv.Then) && DeepEqual(av.Else, bv.Else)

	case *DefineExpr:
		bv, ok := b.(*DefineExpr)
		return ok && av.Name == bv.Name && DeepEqual(av.Value, bv.Value)

	case *FuncExpr:
		bv, ok := b.(*FuncExpr)
		return ok && ParamsEqual(av.Params, bv.Params) && DeepEqual(av.Body, bv.Body)

	case *ApplyExpr:
		bv, ok := b.(*ApplyExpr)
		if !ok || len(av.Args) != len(bv.Args) || !DeepEqual(av.Callee, bv.Callee) {
			return false
		}
		for i := range av.Args {
			if !DeepEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	}

	return false
}

// ParamsEqual compares two parameter lists by position.
func ParamsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of e. The copy shares no nodes or slices with e.
func Clone(e Expr) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *NumLiteral:
		c := *n
		return &c
	case *BoolLiteral:
		c := *n
		return &c
	case *IdentExpr:
		c := *n
		return &c
	case *BinaryExpr:
		return &BinaryExpr{Span: n.Span, Op: n.Op, Left: Clone(n.Left), Right: Clone(n.Right)}
	case *IfExpr:
		return &IfExpr{Span: n.Span, Cond: Clone(n.Cond), Then: Clone(n.Then), Else: Clone(n.Else)}
	case *DefineExpr:
		return &DefineExpr{Span: n.Span, Name: n.Name, Value: Clone(n.Value)}
	case *FuncExpr:
		var params []string
		if n.Params != nil {
			params = append(make([]string, 0, len(n.Params)), n.Params...)
		}
		return &FuncExpr{Span: n.Span, Params: params, Body: Clone(n.Body)}
	case *ApplyExpr:
		var args []Expr
		if n.Args != nil {
			args = make([]Expr, len(n.Args))
			for i, a := range n.Args {
				args[i] = Clone(a)
			}
		}
		return &ApplyExpr{Span: n.Span, Callee: Clone(n.Callee), Args: args}
	}
	return e
}
