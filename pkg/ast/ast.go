// Package ast defines the risp expression tree.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd  BinaryOp = "+"
	OpSub  BinaryOp = "-"
	OpEqEq BinaryOp = "=="
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Literal Expressions ---

type NumLiteral struct {
	Span  Span
	Value uint64
}

func (n *NumLiteral) Kind() string   { return "NumLiteral" }
func (n *NumLiteral) NodeSpan() Span { return n.Span }
func (n *NumLiteral) exprNode()      {}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}

// --- Identifiers ---

type IdentExpr struct {
	Span Span
	Name string
}

func (n *IdentExpr) Kind() string   { return "IdentExpr" }
func (n *IdentExpr) NodeSpan() Span { return n.Span }
func (n *IdentExpr) exprNode()      {}

// --- Operators ---

// BinaryExpr covers addition, subtraction and equality.
type BinaryExpr struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

// --- Control Flow ---

type IfExpr struct {
	Span Span
	Cond Expr
	Then Expr
	Else Expr
}

func (n *IfExpr) Kind() string   { return "IfExpr" }
func (n *IfExpr) NodeSpan() Span { return n.Span }
func (n *IfExpr) exprNode()      {}

// --- Bindings and Functions ---

// DefineExpr binds Name in the current environment and yields the bound value.
type DefineExpr struct {
	Span  Span
	Name  string
	Value Expr
}

func (n *DefineExpr) Kind() string   { return "DefineExpr" }
func (n *DefineExpr) NodeSpan() Span { return n.Span }
func (n *DefineExpr) exprNode()      {}

// FuncExpr is a function literal. Parameter uniqueness is not enforced here.
type FuncExpr struct {
	Span   Span
	Params []string
	Body   Expr
}

func (n *FuncExpr) Kind() string   { return "FuncExpr" }
func (n *FuncExpr) NodeSpan() Span { return n.Span }
func (n *FuncExpr) exprNode()      {}

type ApplyExpr struct {
	Span   Span
	Callee Expr
	Args   []Expr
}

func (n *ApplyExpr) Kind() string   { return "ApplyExpr" }
func (n *ApplyExpr) NodeSpan() Span { return n.Span }
func (n *ApplyExpr) exprNode()      {}

// --- Program ---

// Program is an ordered sequence of top-level expressions.
type Program struct {
	Span  Span
	Exprs []Expr
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
