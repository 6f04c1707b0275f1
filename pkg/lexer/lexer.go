// Package lexer turns Ferro source text into a token stream. Indentation
// is significant: changes in leading whitespace are emitted as explicit
// Indent/Dedent tokens computed from a stack of column widths.
package lexer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ferroui/ferro/pkg/diag"
	"github.com/ferroui/ferro/pkg/token"
)

// DefaultMaxInterpDepth caps string-interpolation nesting.
const DefaultMaxInterpDepth = 8

// ErrLex is returned when tokenization stops on a fatal error. The
// diagnostics list carries the position and reason.
var ErrLex = errors.New("lex error")

// Options configures a Lexer.
type Options struct {
	// MaxInterpDepth caps nesting of `{expr}` inside strings inside
	// `{expr}`. Zero means DefaultMaxInterpDepth.
	MaxInterpDepth int
}

// Tokenize scans src and returns the token stream. Diagnostics are always
// returned; err is non-nil only for fatal conditions (unterminated string,
// mixed tabs and spaces, interpolation nested past the cap), in which case
// the token stream covers the source up to the failure. A dedent to a
// column not on the indentation stack is recoverable: the lexer snaps to
// the nearest enclosing column, records a bad-dedent diagnostic and keeps
// going so the parser can still produce a partial tree.
func Tokenize(name, src string) ([]token.Token, diag.List, error) {
	return New(name, src, Options{}).Run()
}

// Lexer scans one source file.
type Lexer struct {
	name string
	src  string
	opts Options

	pos    int // byte offset of next rune
	line   int
	col    int // 1-based byte column
	tokens []token.Token
	diags  diag.List

	indents    []int // stack of indentation widths, always starts with 0
	indentChar byte  // ' ' or '\t' once established, 0 before
}

// New creates a Lexer for src.
func New(name, src string, opts Options) *Lexer {
	if opts.MaxInterpDepth <= 0 {
		opts.MaxInterpDepth = DefaultMaxInterpDepth
	}
	return &Lexer{
		name:    name,
		src:     src,
		opts:    opts,
		line:    1,
		col:     1,
		indents: []int{0},
	}
}

// Run tokenizes the whole file.
func (l *Lexer) Run() ([]token.Token, diag.List, error) {
	for l.pos < len(l.src) {
		if err := l.lexLine(); err != nil {
			l.diags.Sort()
			return l.tokens, l.diags, err
		}
	}
	// Close any open blocks at end of file.
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(token.Dedent, "", l.here(0))
	}
	l.emit(token.EOF, "", l.here(0))
	l.diags.Sort()
	return l.tokens, l.diags, nil
}

func (l *Lexer) here(length int) token.Span {
	return token.Span{Line: l.line, Column: l.col, Offset: l.pos, Length: length}
}

func (l *Lexer) emit(kind token.Kind, lit string, span token.Span) {
	l.tokens = append(l.tokens, token.Token{Kind: kind, Lit: lit, Span: span})
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

// lexLine handles leading indentation, then the line's tokens, then the
// newline.
func (l *Lexer) lexLine() error {
	width, err := l.lexIndent()
	if err != nil {
		return err
	}
	if width < 0 {
		return nil // blank or comment-only line, fully consumed
	}

	l.applyIndent(width)

	for l.pos < len(l.src) && l.peek() != '\n' {
		if err := l.lexToken(); err != nil {
			return err
		}
	}
	l.emit(token.Newline, "", l.here(0))
	if l.pos < len(l.src) {
		l.advance() // consume '\n'
	}
	return nil
}

// lexIndent consumes leading whitespace and returns the indentation width,
// or -1 if the line holds nothing to tokenize.
func (l *Lexer) lexIndent() (int, error) {
	start := l.pos
	sawSpace, sawTab := false, false
	for l.pos < len(l.src) {
		switch l.peek() {
		case ' ':
			sawSpace = true
			l.advance()
		case '\t':
			sawTab = true
			l.advance()
		default:
			goto done
		}
	}
done:
	width := l.pos - start

	// Blank line or comment-only line: skip without touching the stack.
	if l.pos >= len(l.src) || l.peek() == '\n' || l.lineIsComment() {
		l.skipToEOL()
		if l.pos < len(l.src) {
			l.advance()
		}
		return -1, nil
	}

	if sawSpace && sawTab {
		span := token.Span{Line: l.line, Column: 1, Offset: start, Length: width}
		l.diags.Errorf(diag.MixedIndentation, span, "indentation mixes tabs and spaces")
		return 0, fmt.Errorf("%w: %d:1: mixed tabs and spaces", ErrLex, l.line)
	}
	if width > 0 {
		c := l.src[start]
		if l.indentChar == 0 {
			l.indentChar = c
		} else if l.indentChar != c {
			span := token.Span{Line: l.line, Column: 1, Offset: start, Length: width}
			l.diags.Errorf(diag.MixedIndentation, span,
				"indentation switches between tabs and spaces within the file")
			return 0, fmt.Errorf("%w: %d:1: mixed tabs and spaces", ErrLex, l.line)
		}
	}
	return width, nil
}

func (l *Lexer) lineIsComment() bool {
	return l.peek() == '/' && l.peekAt(1) == '/'
}

func (l *Lexer) skipToEOL() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// applyIndent compares width against the stack and emits Indent/Dedent.
func (l *Lexer) applyIndent(width int) {
	top := l.indents[len(l.indents)-1]
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		l.emit(token.Indent, "", l.here(0))
	case width < top:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			l.emit(token.Dedent, "", l.here(0))
		}
		if l.indents[len(l.indents)-1] != width {
			// Snap to the enclosing column and keep lexing.
			span := token.Span{Line: l.line, Column: 1, Offset: l.pos - width, Length: width}
			l.diags.Errorf(diag.BadDedent, span,
				"unindent does not match any outer indentation level")
		}
	}
}

// lexToken scans one token inside a line.
func (l *Lexer) lexToken() error {
	c := l.peek()
	switch {
	case c == ' ' || c == '\t':
		l.advance()
		return nil
	case c == '/' && l.peekAt(1) == '/':
		l.skipToEOL()
		return nil
	case c == '!':
		return l.lexBang()
	case c == '"':
		return l.lexString(0)
	case isDigit(c):
		l.lexNumber()
		return nil
	case isIdentStart(rune(c)):
		l.lexIdent()
		return nil
	default:
		return l.lexOperator()
	}
}

// lexBang distinguishes `!name` directives from `!=` and logical not.
func (l *Lexer) lexBang() error {
	span := l.here(1)
	if l.peekAt(1) == '=' {
		l.advance()
		l.advance()
		span.Length = 2
		l.emit(token.NotEq, "", span)
		return nil
	}
	if isIdentStart(rune(l.peekAt(1))) {
		l.advance() // '!'
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(rune(l.peek())) {
			l.advance()
		}
		name := l.src[start:l.pos]
		span.Length = 1 + len(name)
		l.emit(token.Directive, name, span)
		return nil
	}
	l.advance()
	l.emit(token.Not, "", span)
	return nil
}

func (l *Lexer) lexIdent() {
	span := l.here(0)
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(rune(l.peek())) {
		l.advance()
	}
	lit := l.src[start:l.pos]
	span.Length = len(lit)
	l.emit(token.Ident, lit, span)
}

func (l *Lexer) lexNumber() {
	span := l.here(0)
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for l.pos < len(l.src) && isDigit(l.peek()) {
			l.advance()
		}
	}
	lit := l.src[start:l.pos]
	span.Length = len(lit)
	l.emit(token.Number, lit, span)
}

// lexString scans a string literal. Plain strings become one String token;
// a `{` switches into an embedded-expression sub-mode which returns to
// string mode at the matching unescaped `}`. depth counts how many strings
// deep the interpolation already is.
func (l *Lexer) lexString(depth int) error {
	open := l.here(1)
	l.advance() // opening quote

	var text strings.Builder
	emittedOpen := false
	flushText := func() {
		if !emittedOpen {
			l.emit(token.StringOpen, "", open)
			emittedOpen = true
		}
		if text.Len() > 0 {
			l.emit(token.StringText, text.String(), l.here(0))
			text.Reset()
		}
	}

	for {
		if l.pos >= len(l.src) || l.peek() == '\n' {
			l.diags.Errorf(diag.UnterminatedString, open, "unterminated string literal")
			return fmt.Errorf("%w: %d:%d: unterminated string", ErrLex, open.Line, open.Column)
		}
		c := l.peek()
		switch c {
		case '"':
			l.advance()
			if emittedOpen {
				if text.Len() > 0 {
					l.emit(token.StringText, text.String(), l.here(0))
				}
				l.emit(token.StringClose, "", l.here(0))
			} else {
				span := open
				span.Length = l.pos - span.Offset
				l.emit(token.String, text.String(), span)
			}
			return nil
		case '\\':
			l.advance()
			esc := l.peek()
			switch esc {
			case '"', '\\', '{', '}':
				text.WriteByte(esc)
			case 'n':
				text.WriteByte('\n')
			case 't':
				text.WriteByte('\t')
			default:
				text.WriteByte('\\')
				text.WriteByte(esc)
			}
			if l.pos < len(l.src) {
				l.advance()
			}
		case '{':
			if depth+1 > l.opts.MaxInterpDepth {
				span := l.here(1)
				l.diags.Errorf(diag.InterpTooDeep, span,
					"string interpolation nested deeper than %d levels", l.opts.MaxInterpDepth)
				return fmt.Errorf("%w: %d:%d: interpolation too deep", ErrLex, span.Line, span.Column)
			}
			flushText()
			interpSpan := l.here(1)
			l.advance()
			l.emit(token.InterpOpen, "", interpSpan)
			if err := l.lexInterpExpr(depth); err != nil {
				return err
			}
		default:
			text.WriteByte(c)
			l.advance()
		}
	}
}

// lexInterpExpr tokenizes the embedded expression up to the matching `}`.
func (l *Lexer) lexInterpExpr(depth int) error {
	for {
		if l.pos >= len(l.src) || l.peek() == '\n' {
			span := l.here(0)
			l.diags.Errorf(diag.UnterminatedString, span, "unterminated interpolation expression")
			return fmt.Errorf("%w: %d:%d: unterminated interpolation", ErrLex, span.Line, span.Column)
		}
		c := l.peek()
		switch {
		case c == '}':
			span := l.here(1)
			l.advance()
			l.emit(token.InterpClose, "", span)
			return nil
		case c == ' ' || c == '\t':
			l.advance()
		case c == '"':
			if err := l.lexString(depth + 1); err != nil {
				return err
			}
		case c == '!':
			if err := l.lexBang(); err != nil {
				return err
			}
		case isDigit(c):
			l.lexNumber()
		case isIdentStart(rune(c)):
			l.lexIdent()
		default:
			if err := l.lexOperator(); err != nil {
				return err
			}
		}
	}
}

// lexOperator scans punctuation and multi-byte operators.
func (l *Lexer) lexOperator() error {
	span := l.here(1)
	c := l.advance()

	two := func(next byte, kind token.Kind) bool {
		if l.peek() == next {
			l.advance()
			span.Length = 2
			l.emit(kind, "", span)
			return true
		}
		return false
	}

	switch c {
	case '.':
		l.emit(token.Dot, "", span)
	case ',':
		l.emit(token.Comma, "", span)
	case ':':
		l.emit(token.Colon, "", span)
	case '?':
		l.emit(token.Question, "", span)
	case '(':
		l.emit(token.LParen, "", span)
	case ')':
		l.emit(token.RParen, "", span)
	case '[':
		l.emit(token.LBracket, "", span)
	case ']':
		l.emit(token.RBracket, "", span)
	case '{':
		l.emit(token.InterpOpen, "", span)
	case '}':
		l.emit(token.InterpClose, "", span)
	case '+':
		if !two('+', token.PlusPlus) {
			l.emit(token.Plus, "", span)
		}
	case '-':
		if !two('-', token.MinusMinus) {
			l.emit(token.Minus, "", span)
		}
	case '*':
		l.emit(token.Star, "", span)
	case '/':
		l.emit(token.Slash, "", span)
	case '%':
		l.emit(token.Percent, "", span)
	case '=':
		if !two('=', token.Eq) {
			l.emit(token.Assign, "", span)
		}
	case '<':
		if !two('=', token.LtEq) {
			l.emit(token.Lt, "", span)
		}
	case '>':
		if !two('=', token.GtEq) {
			l.emit(token.Gt, "", span)
		}
	case '&':
		if !two('&', token.And) {
			l.diags.Errorf(diag.InvalidToken, span, "unexpected character %q", c)
			l.emit(token.Error, string(c), span)
		}
	case '|':
		if !two('|', token.Or) {
			l.diags.Errorf(diag.InvalidToken, span, "unexpected character %q", c)
			l.emit(token.Error, string(c), span)
		}
	default:
		l.diags.Errorf(diag.InvalidToken, span, "unexpected character %q", c)
		l.emit(token.Error, string(c), span)
	}
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
