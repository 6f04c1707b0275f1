// Package ast defines the syntax tree the parser produces. Every node owns
// its children exclusively; the tree is read once by the resolver and code
// generator and then discarded.
package ast

import "github.com/ferroui/ferro/pkg/token"

// Node is implemented by every syntax tree node.
type Node interface {
	Span() token.Span
}

// File is the root of one parsed source file.
type File struct {
	Name  string // file path or identifier, used in diagnostics
	Stmts []Stmt
}

func (f *File) Span() token.Span {
	if len(f.Stmts) > 0 {
		return f.Stmts[0].Span()
	}
	return token.Span{Line: 1, Column: 1}
}

// Stmt is a statement-level construct: one directive-prefixed line and its
// indented body.
type Stmt interface {
	Node
	stmtNode()
}

// Element is a structural node such as `!div.red` or the bare-name
// shorthand `div.red`. Inline holds text content expressions written on the
// directive line (string literals and interpolations).
type Element struct {
	Name     string // directive name as written (greeting, button, ...)
	Tag      string // resolved backend tag from the directive table
	Classes  []string
	Props    []Prop
	Events   []EventBinding
	Inline   []Expr
	Children []Stmt
	Pos      token.Span
}

// StateDecl is `!let name = expr`. Every declaration owns exactly one
// signal at runtime.
type StateDecl struct {
	Name string
	Init Expr
	Pos  token.Span
}

// IfClause is one arm of an `!if` chain. Cond is nil for the final `!else`.
type IfClause struct {
	Cond Expr
	Body []Stmt
	Pos  token.Span
}

// If is an `!if` chain with zero or more `!else if` arms and an optional
// trailing `!else` (nil Cond).
type If struct {
	Clauses []IfClause
	Pos     token.Span
}

// For is `!for name in expr`.
type For struct {
	Var      string
	Iterable Expr
	Body     []Stmt
	Pos      token.Span
}

// While is `!while expr`. It parses so the body is still checked, but code
// generation rejects it: an unbounded structural loop has no static shape.
type While struct {
	Cond Expr
	Body []Stmt
	Pos  token.Span
}

// Text is a bare string line, the text content of its parent element:
//
//	!button
//	    "+"
type Text struct {
	Value Expr // Literal string or Interp
	Pos   token.Span
}

// Prop is a `name=expr` attribute on an element line.
type Prop struct {
	Name  string
	Value Expr
	Pos   token.Span
}

// EventBinding is an inline `!onclick expr` on an element line.
type EventBinding struct {
	Event   string // resolved event name (click, input, ...)
	Marker  string // directive as written (onclick, ...)
	Handler Expr
	Pos     token.Span
}

func (e *Element) Span() token.Span   { return e.Pos }
func (t *Text) Span() token.Span      { return t.Pos }
func (s *StateDecl) Span() token.Span { return s.Pos }
func (i *If) Span() token.Span        { return i.Pos }
func (f *For) Span() token.Span       { return f.Pos }
func (w *While) Span() token.Span     { return w.Pos }

func (*Element) stmtNode()   {}
func (*Text) stmtNode()      {}
func (*StateDecl) stmtNode() {}
func (*If) stmtNode()        {}
func (*For) stmtNode()       {}
func (*While) stmtNode()     {}
