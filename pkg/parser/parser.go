// Package parser builds the Ferro syntax tree from a token stream. Parsing
// never aborts on the first syntax error: diagnostics are recorded and the
// parser resynchronizes at the next statement boundary, so one file can
// surface many errors and still return a partial tree.
package parser

import (
	"github.com/ferroui/ferro/pkg/ast"
	"github.com/ferroui/ferro/pkg/diag"
	"github.com/ferroui/ferro/pkg/token"
)

// Parse consumes tokens (as produced by the lexer, ending in EOF) and
// returns the tree plus syntax diagnostics.
func Parse(name string, tokens []token.Token) (*ast.File, diag.List) {
	p := &parser{tokens: tokens}
	file := &ast.File{Name: name, Stmts: p.statements(false)}
	p.diags.Sort()
	return file, p.diags
}

type parser struct {
	tokens []token.Token
	pos    int
	diags  diag.List
}

func (p *parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos+n]
}

func (p *parser) next() token.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) at(kind token.Kind) bool { return p.peek().Kind == kind }

func (p *parser) accept(kind token.Kind) bool {
	if p.at(kind) {
		p.pos++
		return true
	}
	return false
}

// expect consumes a token of the wanted kind or records an
// unexpected-token diagnostic and reports failure.
func (p *parser) expect(kind token.Kind) (token.Token, bool) {
	if p.at(kind) {
		return p.next(), true
	}
	got := p.peek()
	p.diags.Errorf(diag.UnexpectedToken, got.Span, "expected %s, found %s", kind, got)
	return got, false
}

// statements parses a statement sequence. When inBlock is true the
// sequence ends at the matching Dedent, otherwise at EOF.
func (p *parser) statements(inBlock bool) []ast.Stmt {
	var stmts []ast.Stmt
	for {
		switch p.peek().Kind {
		case token.EOF:
			return stmts
		case token.Dedent:
			if inBlock {
				p.next()
				return stmts
			}
			// Stray dedent at top level; the lexer already reported it.
			p.next()
			continue
		case token.Newline:
			p.next()
			continue
		}
		if s := p.statement(); s != nil {
			stmts = append(stmts, s)
		}
	}
}

// statement parses one directive-prefixed line and its optional block.
// A nil return means the construct was invalid and has been skipped.
func (p *parser) statement() ast.Stmt {
	t := p.peek()
	switch t.Kind {
	case token.Directive:
		switch token.Classify(t.Lit) {
		case token.DirLet:
			return p.stateDecl()
		case token.DirIf:
			return p.ifChain()
		case token.DirElse:
			p.diags.Errorf(diag.OrphanElse, t.Span,
				"!else without a matching !if at the same indentation")
			p.next()
			p.sync()
			return nil
		case token.DirFor:
			return p.forLoop()
		case token.DirWhile:
			return p.whileLoop()
		case token.DirElement:
			return p.element()
		case token.DirEvent:
			p.diags.Errorf(diag.UnexpectedToken, t.Span,
				"event directive !%s must follow an element on the same line", t.Lit)
			p.next()
			p.sync()
			return nil
		default:
			p.diags.Errorf(diag.UnknownDirective, t.Span, "unknown directive !%s", t.Lit)
			p.next()
			p.sync()
			return nil
		}
	case token.Ident:
		// Bare element shorthand: `div.red` means `!div.red`.
		if _, ok := token.ElementTag(t.Lit); ok {
			return p.element()
		}
		p.diags.Errorf(diag.UnknownDirective, t.Span, "unknown element %q", t.Lit)
		p.next()
		p.sync()
		return nil
	case token.String, token.StringOpen:
		return p.textLine()
	default:
		p.diags.Errorf(diag.UnexpectedToken, t.Span, "expected a directive, found %s", t)
		p.next()
		p.sync()
		return nil
	}
}

// sync skips to the start of the next statement: past the current line and
// over any indented block that belonged to it.
func (p *parser) sync() {
	for {
		switch p.peek().Kind {
		case token.EOF, token.Dedent:
			return
		case token.Newline:
			p.next()
			if p.at(token.Indent) {
				p.skipBlock()
			}
			return
		default:
			p.next()
		}
	}
}

// skipBlock consumes a balanced Indent...Dedent region.
func (p *parser) skipBlock() {
	depth := 0
	for {
		switch p.next().Kind {
		case token.Indent:
			depth++
		case token.Dedent:
			depth--
			if depth <= 0 {
				return
			}
		case token.EOF:
			return
		}
	}
}

// block parses the optional indented body after a directive line's newline.
func (p *parser) block() []ast.Stmt {
	if !p.accept(token.Indent) {
		return nil
	}
	return p.statements(true)
}

// endLine consumes the trailing newline of a directive line, recovering if
// stray tokens remain.
func (p *parser) endLine() {
	if p.accept(token.Newline) || p.at(token.EOF) {
		return
	}
	got := p.peek()
	p.diags.Errorf(diag.UnexpectedToken, got.Span, "expected end of line, found %s", got)
	for !p.at(token.Newline) && !p.at(token.EOF) {
		p.next()
	}
	p.accept(token.Newline)
}

// stateDecl parses `!let name = expr`.
func (p *parser) stateDecl() ast.Stmt {
	start := p.next() // !let
	name, ok := p.expect(token.Ident)
	if !ok {
		p.sync()
		return nil
	}
	if _, ok := p.expect(token.Assign); !ok {
		p.sync()
		return nil
	}
	init := p.expr()
	if init == nil {
		p.sync()
		return nil
	}
	p.endLine()
	return &ast.StateDecl{Name: name.Lit, Init: init, Pos: start.Span}
}

// ifChain parses `!if` and any `!else if` / `!else` arms at the same
// indentation.
func (p *parser) ifChain() ast.Stmt {
	start := p.next() // !if
	node := &ast.If{Pos: start.Span}

	cond := p.expr()
	if cond == nil {
		p.sync()
		return nil
	}
	p.endLine()
	node.Clauses = append(node.Clauses, ast.IfClause{Cond: cond, Body: p.block(), Pos: start.Span})

	for {
		t := p.peek()
		if t.Kind != token.Directive || token.Classify(t.Lit) != token.DirElse {
			break
		}
		p.next() // !else
		if p.at(token.Ident) && p.peek().Lit == "if" {
			p.next()
			cond := p.expr()
			if cond == nil {
				p.sync()
				break
			}
			p.endLine()
			node.Clauses = append(node.Clauses, ast.IfClause{Cond: cond, Body: p.block(), Pos: t.Span})
			continue
		}
		p.endLine()
		node.Clauses = append(node.Clauses, ast.IfClause{Body: p.block(), Pos: t.Span})
		break
	}
	return node
}

// forLoop parses `!for name in expr`.
func (p *parser) forLoop() ast.Stmt {
	start := p.next() // !for
	name, ok := p.expect(token.Ident)
	if !ok {
		p.sync()
		return nil
	}
	if kw := p.peek(); kw.Kind != token.Ident || kw.Lit != "in" {
		p.diags.Errorf(diag.UnexpectedToken, kw.Span, "expected 'in', found %s", kw)
		p.sync()
		return nil
	}
	p.next() // in
	iter := p.expr()
	if iter == nil {
		p.sync()
		return nil
	}
	p.endLine()
	return &ast.For{Var: name.Lit, Iterable: iter, Body: p.block(), Pos: start.Span}
}

// whileLoop parses `!while expr`. Code generation rejects the construct;
// parsing it keeps the body checked and the diagnostics precise.
func (p *parser) whileLoop() ast.Stmt {
	start := p.next() // !while
	cond := p.expr()
	if cond == nil {
		p.sync()
		return nil
	}
	p.endLine()
	return &ast.While{Cond: cond, Body: p.block(), Pos: start.Span}
}

// textLine parses a bare string statement, the text content of the parent.
func (p *parser) textLine() ast.Stmt {
	start := p.peek()
	value := p.expr()
	if value == nil {
		p.sync()
		return nil
	}
	p.endLine()
	return &ast.Text{Value: value, Pos: start.Span}
}

// element parses an element line: name, style shorthand, inline text,
// props and event bindings, then an optional child block.
func (p *parser) element() ast.Stmt {
	start := p.next() // directive or bare ident
	tag, _ := token.ElementTag(start.Lit)
	el := &ast.Element{Name: start.Lit, Tag: tag, Pos: start.Span}

	// Style shorthand binds directly to the element token.
	for p.at(token.Dot) && p.peekAt(1).Kind == token.Ident {
		p.next()
		el.Classes = append(el.Classes, p.next().Lit)
	}

	for {
		t := p.peek()
		switch t.Kind {
		case token.Newline, token.EOF:
			p.endLine()
			el.Children = p.block()
			return el
		case token.Directive:
			if ev, ok := token.EventName(t.Lit); ok {
				p.next()
				handler := p.handlerExpr()
				if handler == nil {
					p.sync()
					return el
				}
				el.Events = append(el.Events, ast.EventBinding{
					Event: ev, Marker: t.Lit, Handler: handler, Pos: t.Span,
				})
				continue
			}
			p.diags.Errorf(diag.UnknownDirective, t.Span, "unknown directive !%s", t.Lit)
			p.sync()
			return el
		case token.Ident:
			if p.peekAt(1).Kind == token.Assign {
				name := p.next()
				p.next() // =
				value := p.expr()
				if value == nil {
					p.sync()
					return el
				}
				el.Props = append(el.Props, ast.Prop{Name: name.Lit, Value: value, Pos: name.Span})
				continue
			}
			fallthrough
		default:
			inline := p.expr()
			if inline == nil {
				p.next()
				p.sync()
				return el
			}
			el.Inline = append(el.Inline, inline)
		}
	}
}
