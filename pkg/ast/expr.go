package ast

import "github.com/ferroui/ferro/pkg/token"

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// LitKind distinguishes literal payloads.
type LitKind uint8

const (
	LitString LitKind = iota
	LitNumber
	LitBool
)

// Literal is a string, number or boolean literal. Numbers are stored as
// float64; the language has a single numeric type.
type Literal struct {
	Kind LitKind
	Str  string
	Num  float64
	Bool bool
	Pos  token.Span
}

// Ident is a bare identifier reference.
type Ident struct {
	Name string
	Pos  token.Span
}

// BinOp is a binary operator.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpGt
	OpLtEq
	OpGtEq
	OpAnd
	OpOr
)

var binOpText = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEq: "==", OpNotEq: "!=", OpLt: "<", OpGt: ">", OpLtEq: "<=", OpGtEq: ">=",
	OpAnd: "&&", OpOr: "||",
}

func (op BinOp) String() string { return binOpText[op] }

// Binary is `left op right`.
type Binary struct {
	Op   BinOp
	L, R Expr
	Pos  token.Span
}

// Unary is `-x` or `!x`.
type Unary struct {
	Op  string // "-" or "!"
	X   Expr
	Pos token.Span
}

// Ternary is `cond ? then : else`.
type Ternary struct {
	Cond, Then, Else Expr
	Pos              token.Span
}

// Interp is an interpolated string: literal text parts interleaved with
// embedded expressions, in source order. Parts are Literal (string) or any
// other Expr.
type Interp struct {
	Parts []Expr
	Pos   token.Span
}

// Call is a method-call-like expression `recv.name(args...)` or a bare
// call `name(args...)` (nil Recv).
type Call struct {
	Recv   Expr
	Method string
	Args   []Expr
	Pos    token.Span
}

// IncDec is postfix `name++` / `name--`, sugar for a read-modify-write of
// the named reactive binding.
type IncDec struct {
	Name string
	Dec  bool // true for --
	Pos  token.Span
}

// AssignExpr is `name = expr`, a write to the named reactive binding.
// Valid only in handler position; the resolver rejects it elsewhere.
type AssignExpr struct {
	Name  string
	Value Expr
	Pos   token.Span
}

// ListLit is `[a, b, c]`.
type ListLit struct {
	Elems []Expr
	Pos   token.Span
}

func (l *Literal) Span() token.Span    { return l.Pos }
func (i *Ident) Span() token.Span      { return i.Pos }
func (b *Binary) Span() token.Span     { return b.Pos }
func (u *Unary) Span() token.Span      { return u.Pos }
func (t *Ternary) Span() token.Span    { return t.Pos }
func (i *Interp) Span() token.Span     { return i.Pos }
func (c *Call) Span() token.Span       { return c.Pos }
func (i *IncDec) Span() token.Span     { return i.Pos }
func (a *AssignExpr) Span() token.Span { return a.Pos }
func (l *ListLit) Span() token.Span    { return l.Pos }

func (*Literal) exprNode()    {}
func (*Ident) exprNode()      {}
func (*Binary) exprNode()     {}
func (*Unary) exprNode()      {}
func (*Ternary) exprNode()    {}
func (*Interp) exprNode()     {}
func (*Call) exprNode()       {}
func (*IncDec) exprNode()     {}
func (*AssignExpr) exprNode() {}
func (*ListLit) exprNode()    {}
