package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer writes a File back out in canonical form. Printing a parsed file
// and parsing the output yields an equal tree, which is what `ferro fmt`
// and the round-trip tests rely on.
type Printer struct {
	IndentSize int
}

// Fprint writes file to w using a default four-space indent.
func Fprint(w io.Writer, file *File) error {
	return (&Printer{IndentSize: 4}).Fprint(w, file)
}

// Print returns the canonical source for file.
func Print(file *File) string {
	var sb strings.Builder
	_ = Fprint(&sb, file)
	return sb.String()
}

// Fprint writes file to w.
func (p *Printer) Fprint(w io.Writer, file *File) error {
	size := p.IndentSize
	if size <= 0 {
		size = 4
	}
	pw := &printWriter{w: w, indentSize: size}
	for _, s := range file.Stmts {
		pw.stmt(s, 0)
	}
	return pw.err
}

type printWriter struct {
	w          io.Writer
	indentSize int
	err        error
}

func (pw *printWriter) printf(format string, args ...any) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, format, args...)
}

func (pw *printWriter) line(depth int, text string) {
	pw.printf("%s%s\n", strings.Repeat(" ", depth*pw.indentSize), text)
}

func (pw *printWriter) stmt(s Stmt, depth int) {
	switch n := s.(type) {
	case *StateDecl:
		pw.line(depth, fmt.Sprintf("!let %s = %s", n.Name, ExprString(n.Init)))
	case *Element:
		pw.line(depth, elementLine(n))
		pw.body(n.Children, depth+1)
	case *Text:
		pw.line(depth, ExprString(n.Value))
	case *If:
		for i, cl := range n.Clauses {
			switch {
			case i == 0:
				pw.line(depth, "!if "+ExprString(cl.Cond))
			case cl.Cond != nil:
				pw.line(depth, "!else if "+ExprString(cl.Cond))
			default:
				pw.line(depth, "!else")
			}
			pw.body(cl.Body, depth+1)
		}
	case *For:
		pw.line(depth, fmt.Sprintf("!for %s in %s", n.Var, ExprString(n.Iterable)))
		pw.body(n.Body, depth+1)
	case *While:
		pw.line(depth, "!while "+ExprString(n.Cond))
		pw.body(n.Body, depth+1)
	}
}

func (pw *printWriter) body(stmts []Stmt, depth int) {
	for _, s := range stmts {
		pw.stmt(s, depth)
	}
}

func elementLine(e *Element) string {
	var sb strings.Builder
	sb.WriteByte('!')
	sb.WriteString(e.Name)
	for _, c := range e.Classes {
		sb.WriteByte('.')
		sb.WriteString(c)
	}
	for _, in := range e.Inline {
		sb.WriteByte(' ')
		sb.WriteString(ExprString(in))
	}
	for _, p := range e.Props {
		sb.WriteByte(' ')
		sb.WriteString(p.Name)
		sb.WriteByte('=')
		sb.WriteString(exprString(p.Value, precAssignArg))
	}
	for _, ev := range e.Events {
		sb.WriteByte(' ')
		sb.WriteByte('!')
		sb.WriteString(ev.Marker)
		sb.WriteByte(' ')
		sb.WriteString(ExprString(ev.Handler))
	}
	return sb.String()
}

// Operator precedence levels used to decide where parentheses are needed.
const (
	precLowest = iota
	precAssignArg // prop values print atomically enough to not eat following args
	precTernary
	precOr
	precAnd
	precCmp
	precAdd
	precMul
	precUnary
	precPostfix
)

func binPrec(op BinOp) int {
	switch op {
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpEq, OpNotEq, OpLt, OpGt, OpLtEq, OpGtEq:
		return precCmp
	case OpAdd, OpSub:
		return precAdd
	default:
		return precMul
	}
}

// ExprString returns canonical source text for an expression.
func ExprString(e Expr) string {
	return exprString(e, precLowest)
}

func exprString(e Expr, parent int) string {
	switch n := e.(type) {
	case *Literal:
		switch n.Kind {
		case LitString:
			return `"` + escapeInterpText(n.Str) + `"`
		case LitBool:
			return strconv.FormatBool(n.Bool)
		default:
			return strconv.FormatFloat(n.Num, 'g', -1, 64)
		}
	case *Ident:
		return n.Name
	case *Binary:
		prec := binPrec(n.Op)
		s := exprString(n.L, prec) + " " + n.Op.String() + " " + exprString(n.R, prec+1)
		if prec < parent {
			return "(" + s + ")"
		}
		return s
	case *Unary:
		return n.Op + exprString(n.X, precUnary)
	case *Ternary:
		s := exprString(n.Cond, precTernary+1) + " ? " + exprString(n.Then, precTernary) + " : " + exprString(n.Else, precTernary)
		if precTernary < parent {
			return "(" + s + ")"
		}
		return s
	case *Interp:
		return interpString(n)
	case *Call:
		var sb strings.Builder
		if n.Recv != nil {
			sb.WriteString(exprString(n.Recv, precPostfix))
			sb.WriteByte('.')
		}
		sb.WriteString(n.Method)
		sb.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(ExprString(a))
		}
		sb.WriteByte(')')
		return sb.String()
	case *IncDec:
		if n.Dec {
			return n.Name + "--"
		}
		return n.Name + "++"
	case *AssignExpr:
		return n.Name + " = " + ExprString(n.Value)
	case *ListLit:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, el := range n.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(ExprString(el))
		}
		sb.WriteByte(']')
		return sb.String()
	}
	return ""
}

func interpString(in *Interp) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, part := range in.Parts {
		if lit, ok := part.(*Literal); ok && lit.Kind == LitString {
			sb.WriteString(escapeInterpText(lit.Str))
			continue
		}
		sb.WriteByte('{')
		sb.WriteString(ExprString(part))
		sb.WriteByte('}')
	}
	sb.WriteByte('"')
	return sb.String()
}

func escapeInterpText(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '{':
			sb.WriteString(`\{`)
		case '}':
			sb.WriteString(`\}`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
