package lexer

import (
	"errors"
	"testing"

	"github.com/ferroui/ferro/pkg/diag"
	"github.com/ferroui/ferro/pkg/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Kind)
	}
	return out
}

func expectKinds(t *testing.T, got []token.Token, want ...token.Kind) {
	t.Helper()
	gk := kinds(got)
	if len(gk) != len(want) {
		t.Fatalf("Expected %d tokens %v, got %d: %v", len(want), want, len(gk), gk)
	}
	for i := range want {
		if gk[i] != want[i] {
			t.Fatalf("Token %d: expected %s, got %s (stream %v)", i, want[i], gk[i], gk)
		}
	}
}

func TestTokenizeDirectiveLine(t *testing.T) {
	tokens, diags, err := Tokenize("t.fro", "!let counter = 0\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}
	expectKinds(t, tokens,
		token.Directive, token.Ident, token.Assign, token.Number, token.Newline, token.EOF)
	if tokens[0].Lit != "let" {
		t.Errorf("Expected directive lit 'let', got %q", tokens[0].Lit)
	}
	if tokens[0].Span.Line != 1 || tokens[0].Span.Column != 1 {
		t.Errorf("Expected span 1:1, got %d:%d", tokens[0].Span.Line, tokens[0].Span.Column)
	}
}

func TestTokenizeIndentBlocks(t *testing.T) {
	src := "!div\n" +
		"    !p \"a\"\n" +
		"        !span \"b\"\n" +
		"!p \"c\"\n"
	tokens, _, err := Tokenize("t.fro", src)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens,
		token.Directive, token.Newline,
		token.Indent, token.Directive, token.String, token.Newline,
		token.Indent, token.Directive, token.String, token.Newline,
		token.Dedent, token.Dedent,
		token.Directive, token.String, token.Newline,
		token.EOF)
}

func TestTokenizeClosesBlocksAtEOF(t *testing.T) {
	tokens, _, err := Tokenize("t.fro", "!div\n    !p \"a\"\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens,
		token.Directive, token.Newline,
		token.Indent, token.Directive, token.String, token.Newline,
		token.Dedent, token.EOF)
}

func TestBadDedentIsRecoverable(t *testing.T) {
	src := "!div\n" +
		"        !p \"a\"\n" +
		"    !p \"b\"\n"
	tokens, diags, err := Tokenize("t.fro", src)
	if err != nil {
		t.Fatalf("Expected a recoverable condition, got %v", err)
	}
	if len(diags) != 1 || diags[0].Code != diag.BadDedent {
		t.Fatalf("Expected one bad-dedent diagnostic, got %v", diags)
	}
	if diags[0].Line != 3 {
		t.Errorf("Expected the diagnostic at line 3, got %d", diags[0].Line)
	}
	if tokens[len(tokens)-1].Kind != token.EOF {
		t.Error("Expected lexing to continue to EOF")
	}
}

func TestMixedIndentationIsFatal(t *testing.T) {
	_, diags, err := Tokenize("t.fro", "!div\n \t!p \"a\"\n")
	if !errors.Is(err, ErrLex) {
		t.Fatalf("Expected ErrLex, got %v", err)
	}
	if len(diags) != 1 || diags[0].Code != diag.MixedIndentation {
		t.Errorf("Expected a mixed-indentation diagnostic, got %v", diags)
	}
}

func TestIndentCharSwitchIsFatal(t *testing.T) {
	src := "!div\n    !p \"a\"\n!span\n\t!p \"b\"\n"
	_, diags, err := Tokenize("t.fro", src)
	if !errors.Is(err, ErrLex) {
		t.Fatalf("Expected ErrLex for switching indent characters, got %v", err)
	}
	if len(diags) == 0 || diags[0].Code != diag.MixedIndentation {
		t.Errorf("Expected a mixed-indentation diagnostic, got %v", diags)
	}
}

func TestPlainStringSingleToken(t *testing.T) {
	tokens, _, err := Tokenize("t.fro", "!p \"hello \\\"world\\\" \\{x\\}\"\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens, token.Directive, token.String, token.Newline, token.EOF)
	if got := tokens[1].Lit; got != `hello "world" {x}` {
		t.Errorf("Expected unescaped literal, got %q", got)
	}
}

func TestInterpolationTokenRun(t *testing.T) {
	tokens, _, err := Tokenize("t.fro", "!p \"Count: {counter}\"\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens,
		token.Directive,
		token.StringOpen, token.StringText, token.InterpOpen, token.Ident, token.InterpClose, token.StringClose,
		token.Newline, token.EOF)
	if tokens[2].Lit != "Count: " {
		t.Errorf("Expected text 'Count: ', got %q", tokens[2].Lit)
	}
	if tokens[4].Lit != "counter" {
		t.Errorf("Expected ident counter, got %q", tokens[4].Lit)
	}
}

func TestInterpolationWithExpression(t *testing.T) {
	tokens, _, err := Tokenize("t.fro", "!p \"{a + b * 2}\"\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens,
		token.Directive,
		token.StringOpen, token.InterpOpen,
		token.Ident, token.Plus, token.Ident, token.Star, token.Number,
		token.InterpClose, token.StringClose,
		token.Newline, token.EOF)
}

func TestNestedStringInsideInterpolation(t *testing.T) {
	tokens, _, err := Tokenize("t.fro", "!p \"{done ? \"yes\" : \"no\"}\"\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens,
		token.Directive,
		token.StringOpen, token.InterpOpen,
		token.Ident, token.Question, token.String, token.Colon, token.String,
		token.InterpClose, token.StringClose,
		token.Newline, token.EOF)
}

func TestInterpolationDepthCap(t *testing.T) {
	src := "!p \"{\"{\"{x}\"}\"}\"\n"
	_, diags, err := New("t.fro", src, Options{MaxInterpDepth: 2}).Run()
	if !errors.Is(err, ErrLex) {
		t.Fatalf("Expected ErrLex past the depth cap, got %v", err)
	}
	if len(diags) == 0 || diags[0].Code != diag.InterpTooDeep {
		t.Errorf("Expected an interp-too-deep diagnostic, got %v", diags)
	}
}

func TestUnterminatedStringIsFatal(t *testing.T) {
	_, diags, err := Tokenize("t.fro", "!p \"oops\n")
	if !errors.Is(err, ErrLex) {
		t.Fatalf("Expected ErrLex, got %v", err)
	}
	if len(diags) != 1 || diags[0].Code != diag.UnterminatedString {
		t.Errorf("Expected an unterminated-string diagnostic, got %v", diags)
	}
}

func TestUnterminatedInterpolationIsFatal(t *testing.T) {
	_, _, err := Tokenize("t.fro", "!p \"{counter\n")
	if !errors.Is(err, ErrLex) {
		t.Fatalf("Expected ErrLex, got %v", err)
	}
}

func TestBangForms(t *testing.T) {
	tokens, _, err := Tokenize("t.fro", "!if a != !(b)\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens,
		token.Directive, token.Ident, token.NotEq, token.Not, token.LParen, token.Ident, token.RParen,
		token.Newline, token.EOF)
}

func TestOperators(t *testing.T) {
	tokens, _, err := Tokenize("t.fro", "!if a <= b && c >= 1.5 || n == 2\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens,
		token.Directive,
		token.Ident, token.LtEq, token.Ident, token.And,
		token.Ident, token.GtEq, token.Number, token.Or,
		token.Ident, token.Eq, token.Number,
		token.Newline, token.EOF)
	if tokens[7].Lit != "1.5" {
		t.Errorf("Expected number 1.5, got %q", tokens[7].Lit)
	}
}

func TestIncrementDecrement(t *testing.T) {
	tokens, _, err := Tokenize("t.fro", "!button \"+\" !onclick counter++\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens,
		token.Directive, token.String, token.Directive, token.Ident, token.PlusPlus,
		token.Newline, token.EOF)
}

func TestStyleShorthandTokens(t *testing.T) {
	tokens, _, err := Tokenize("t.fro", "!div.red.large\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens,
		token.Directive, token.Dot, token.Ident, token.Dot, token.Ident,
		token.Newline, token.EOF)
}

func TestCommentsAndBlankLinesSkipped(t *testing.T) {
	src := "// header comment\n" +
		"\n" +
		"!div\n" +
		"    // inside\n" +
		"\n" +
		"    !p \"a\"\n"
	tokens, _, err := Tokenize("t.fro", src)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens,
		token.Directive, token.Newline,
		token.Indent, token.Directive, token.String, token.Newline,
		token.Dedent, token.EOF)
}

func TestTrailingCommentOnLine(t *testing.T) {
	tokens, _, err := Tokenize("t.fro", "!let n = 1 // initial\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expectKinds(t, tokens,
		token.Directive, token.Ident, token.Assign, token.Number, token.Newline, token.EOF)
}

func BenchmarkTokenizeCounter(b *testing.B) {
	src := "!let counter = 0\n" +
		"!div.center\n" +
		"    !greeting \"Count: {counter}\"\n" +
		"    !button \"+\" !onclick counter++\n"
	for i := 0; i < b.N; i++ {
		if _, _, err := Tokenize("bench.fro", src); err != nil {
			b.Fatal(err)
		}
	}
}
