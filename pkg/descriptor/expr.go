package descriptor

import "github.com/ferroui/ferro/pkg/ast"

// Expression kinds.
const (
	ExprLitString = "string"
	ExprLitNumber = "number"
	ExprLitBool   = "bool"
	ExprIdent     = "ident"
	ExprLoopVar   = "loopVar"
	ExprBinary    = "binary"
	ExprUnary     = "unary"
	ExprTernary   = "ternary"
	ExprInterp    = "interp"
	ExprCall      = "call"
	ExprIncDec    = "incDec"
	ExprAssign    = "assign"
	ExprList      = "list"
)

// Expr is the serializable expression tree evaluated by the runtime.
// Signal references are encoded by id so the backend never resolves names.
type Expr struct {
	Kind string `json:"kind"`

	Str  string  `json:"str,omitempty"`
	Num  float64 `json:"num,omitempty"`
	Bool bool    `json:"bool,omitempty"`

	Signal int    `json:"signal,omitempty"` // ExprIdent, ExprIncDec, ExprAssign
	Name   string `json:"name,omitempty"`   // loop variables and method names

	Op    string  `json:"op,omitempty"`
	X     *Expr   `json:"x,omitempty"`
	Y     *Expr   `json:"y,omitempty"`
	Z     *Expr   `json:"z,omitempty"`
	Parts []*Expr `json:"parts,omitempty"`

	Dec bool `json:"dec,omitempty"` // ExprIncDec
}

// SignalLookup resolves a source-level name to its signal id. The second
// result is false for names that are loop variables in the current scope.
type SignalLookup func(name string) (int, bool)

// FromAST lowers a syntax expression into the serializable form. Names are
// resolved through lookup; anything the lookup rejects is encoded as a loop
// variable reference by name.
func FromAST(e ast.Expr, lookup SignalLookup) *Expr {
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Kind {
		case ast.LitString:
			return &Expr{Kind: ExprLitString, Str: n.Str}
		case ast.LitBool:
			return &Expr{Kind: ExprLitBool, Bool: n.Bool}
		default:
			return &Expr{Kind: ExprLitNumber, Num: n.Num}
		}
	case *ast.Ident:
		if id, ok := lookup(n.Name); ok {
			return &Expr{Kind: ExprIdent, Signal: id, Name: n.Name}
		}
		return &Expr{Kind: ExprLoopVar, Name: n.Name}
	case *ast.Binary:
		return &Expr{Kind: ExprBinary, Op: n.Op.String(), X: FromAST(n.L, lookup), Y: FromAST(n.R, lookup)}
	case *ast.Unary:
		return &Expr{Kind: ExprUnary, Op: n.Op, X: FromAST(n.X, lookup)}
	case *ast.Ternary:
		return &Expr{
			Kind: ExprTernary,
			X:    FromAST(n.Cond, lookup),
			Y:    FromAST(n.Then, lookup),
			Z:    FromAST(n.Else, lookup),
		}
	case *ast.Interp:
		out := &Expr{Kind: ExprInterp}
		for _, part := range n.Parts {
			out.Parts = append(out.Parts, FromAST(part, lookup))
		}
		return out
	case *ast.Call:
		out := &Expr{Kind: ExprCall, Name: n.Method}
		if n.Recv != nil {
			out.X = FromAST(n.Recv, lookup)
		}
		for _, a := range n.Args {
			out.Parts = append(out.Parts, FromAST(a, lookup))
		}
		return out
	case *ast.IncDec:
		out := &Expr{Kind: ExprIncDec, Name: n.Name, Dec: n.Dec}
		if id, ok := lookup(n.Name); ok {
			out.Signal = id
		}
		return out
	case *ast.AssignExpr:
		out := &Expr{Kind: ExprAssign, Name: n.Name, Y: FromAST(n.Value, lookup)}
		if id, ok := lookup(n.Name); ok {
			out.Signal = id
		}
		return out
	case *ast.ListLit:
		out := &Expr{Kind: ExprList}
		for _, el := range n.Elems {
			out.Parts = append(out.Parts, FromAST(el, lookup))
		}
		return out
	}
	return nil
}
