package parser

import (
	"strconv"

	"github.com/ferroui/ferro/pkg/ast"
	"github.com/ferroui/ferro/pkg/diag"
	"github.com/ferroui/ferro/pkg/token"
)

// Binding powers for precedence climbing.
const (
	precNone = iota
	precOr
	precAnd
	precCmp
	precAdd
	precMul
)

func binPrec(k token.Kind) (ast.BinOp, int) {
	switch k {
	case token.Or:
		return ast.OpOr, precOr
	case token.And:
		return ast.OpAnd, precAnd
	case token.Eq:
		return ast.OpEq, precCmp
	case token.NotEq:
		return ast.OpNotEq, precCmp
	case token.Lt:
		return ast.OpLt, precCmp
	case token.Gt:
		return ast.OpGt, precCmp
	case token.LtEq:
		return ast.OpLtEq, precCmp
	case token.GtEq:
		return ast.OpGtEq, precCmp
	case token.Plus:
		return ast.OpAdd, precAdd
	case token.Minus:
		return ast.OpSub, precAdd
	case token.Star:
		return ast.OpMul, precMul
	case token.Slash:
		return ast.OpDiv, precMul
	case token.Percent:
		return ast.OpMod, precMul
	}
	return 0, precNone
}

// handlerExpr parses an event-handler expression, which additionally
// allows the assignment form `name = expr`.
func (p *parser) handlerExpr() ast.Expr {
	if p.at(token.Ident) && p.peekAt(1).Kind == token.Assign {
		name := p.next()
		p.next() // =
		value := p.expr()
		if value == nil {
			return nil
		}
		return &ast.AssignExpr{Name: name.Lit, Value: value, Pos: name.Span}
	}
	return p.expr()
}

// expr parses a full expression (ternary and below).
func (p *parser) expr() ast.Expr {
	cond := p.binary(precNone + 1)
	if cond == nil {
		return nil
	}
	if !p.accept(token.Question) {
		return cond
	}
	then := p.expr()
	if then == nil {
		return nil
	}
	if _, ok := p.expect(token.Colon); !ok {
		return nil
	}
	els := p.expr()
	if els == nil {
		return nil
	}
	return &ast.Ternary{Cond: cond, Then: then, Else: els, Pos: cond.Span()}
}

func (p *parser) binary(minPrec int) ast.Expr {
	left := p.unary()
	if left == nil {
		return nil
	}
	for {
		op, prec := binPrec(p.peek().Kind)
		if prec < minPrec || prec == precNone {
			return left
		}
		p.next()
		right := p.binary(prec + 1)
		if right == nil {
			return nil
		}
		left = &ast.Binary{Op: op, L: left, R: right, Pos: left.Span()}
	}
}

func (p *parser) unary() ast.Expr {
	switch p.peek().Kind {
	case token.Minus:
		t := p.next()
		x := p.unary()
		if x == nil {
			return nil
		}
		return &ast.Unary{Op: "-", X: x, Pos: t.Span}
	case token.Not:
		t := p.next()
		x := p.unary()
		if x == nil {
			return nil
		}
		return &ast.Unary{Op: "!", X: x, Pos: t.Span}
	}
	return p.postfix()
}

// postfix handles `recv.name`, `recv.name(args)`, `name++` and `name--`.
func (p *parser) postfix() ast.Expr {
	x := p.primary()
	if x == nil {
		return nil
	}
	for {
		switch p.peek().Kind {
		case token.Dot:
			if p.peekAt(1).Kind != token.Ident {
				got := p.peekAt(1)
				p.diags.Errorf(diag.UnexpectedToken, got.Span, "expected method name, found %s", got)
				return nil
			}
			p.next()
			name := p.next()
			call := &ast.Call{Recv: x, Method: name.Lit, Pos: name.Span}
			if p.accept(token.LParen) {
				call.Args = p.callArgs()
				if _, ok := p.expect(token.RParen); !ok {
					return nil
				}
			}
			x = call
		case token.PlusPlus, token.MinusMinus:
			t := p.next()
			id, ok := x.(*ast.Ident)
			if !ok {
				p.diags.Errorf(diag.UnexpectedToken, t.Span,
					"%s may only follow a state binding name", t)
				return nil
			}
			x = &ast.IncDec{Name: id.Name, Dec: t.Kind == token.MinusMinus, Pos: id.Pos}
		default:
			return x
		}
	}
}

func (p *parser) callArgs() []ast.Expr {
	if p.at(token.RParen) {
		return nil
	}
	var args []ast.Expr
	for {
		a := p.expr()
		if a == nil {
			return args
		}
		args = append(args, a)
		if !p.accept(token.Comma) {
			return args
		}
	}
}

func (p *parser) primary() ast.Expr {
	t := p.peek()
	switch t.Kind {
	case token.Number:
		p.next()
		n, err := strconv.ParseFloat(t.Lit, 64)
		if err != nil {
			p.diags.Errorf(diag.UnexpectedToken, t.Span, "malformed number %q", t.Lit)
			return nil
		}
		return &ast.Literal{Kind: ast.LitNumber, Num: n, Pos: t.Span}
	case token.String:
		p.next()
		return &ast.Literal{Kind: ast.LitString, Str: t.Lit, Pos: t.Span}
	case token.StringOpen:
		return p.interp()
	case token.Ident:
		p.next()
		switch t.Lit {
		case "true", "false":
			return &ast.Literal{Kind: ast.LitBool, Bool: t.Lit == "true", Pos: t.Span}
		}
		if p.accept(token.LParen) {
			call := &ast.Call{Method: t.Lit, Pos: t.Span}
			call.Args = p.callArgs()
			if _, ok := p.expect(token.RParen); !ok {
				return nil
			}
			return call
		}
		return &ast.Ident{Name: t.Lit, Pos: t.Span}
	case token.LParen:
		p.next()
		inner := p.expr()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(token.RParen); !ok {
			return nil
		}
		return inner
	case token.LBracket:
		p.next()
		list := &ast.ListLit{Pos: t.Span}
		if !p.at(token.RBracket) {
			for {
				el := p.expr()
				if el == nil {
					return nil
				}
				list.Elems = append(list.Elems, el)
				if !p.accept(token.Comma) {
					break
				}
			}
		}
		if _, ok := p.expect(token.RBracket); !ok {
			return nil
		}
		return list
	default:
		p.diags.Errorf(diag.UnexpectedToken, t.Span, "expected an expression, found %s", t)
		return nil
	}
}

// interp parses the token run StringOpen ... StringClose into an Interp
// expression. A string with a single embedded expression and no text still
// parses as an interpolation so its dependency set is preserved.
func (p *parser) interp() ast.Expr {
	open, _ := p.expect(token.StringOpen)
	node := &ast.Interp{Pos: open.Span}
	for {
		t := p.peek()
		switch t.Kind {
		case token.StringText:
			p.next()
			node.Parts = append(node.Parts, &ast.Literal{Kind: ast.LitString, Str: t.Lit, Pos: t.Span})
		case token.InterpOpen:
			p.next()
			inner := p.expr()
			if inner == nil {
				return nil
			}
			if _, ok := p.expect(token.InterpClose); !ok {
				return nil
			}
			node.Parts = append(node.Parts, inner)
		case token.StringClose:
			p.next()
			return node
		default:
			p.diags.Errorf(diag.UnexpectedToken, t.Span, "malformed string interpolation at %s", t)
			return nil
		}
	}
}
