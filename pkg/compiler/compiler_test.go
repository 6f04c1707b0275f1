package compiler

import (
	"testing"

	"github.com/ferroui/ferro/pkg/diag"
)

const counterSrc = "!let counter = 0\n" +
	"!div.center\n" +
	"    !greeting \"Count: {counter}\"\n" +
	"    !button \"+\" !onclick counter++\n"

func TestCompileCounter(t *testing.T) {
	r := Compile("counter.fro", counterSrc)
	if !r.OK() {
		t.Fatalf("Expected a clean compile, got %v", r.Diags)
	}
	if len(r.Tree.Signals) != 1 {
		t.Errorf("Expected one signal, got %d", len(r.Tree.Signals))
	}
	if len(r.Tree.Roots) != 1 || r.Tree.Roots[0].Tag != "div" {
		t.Fatalf("Expected one div root, got %v", r.Tree.Roots)
	}
	if len(r.Tree.Roots[0].Children) != 2 {
		t.Errorf("Expected the div to keep both children, got %d", len(r.Tree.Roots[0].Children))
	}
}

func TestCompileBadDedentKeepsPartialTree(t *testing.T) {
	src := "!div\n" +
		"        !p \"a\"\n" +
		"    !p \"b\"\n" + // dedent to a column never pushed
		"!p \"c\"\n"
	r := Compile("bad.fro", src)

	if r.File == nil {
		t.Fatal("Expected a partial syntax tree despite the bad dedent")
	}
	found := false
	for _, d := range r.Diags {
		if d.Code == diag.BadDedent {
			found = true
			if d.Line != 3 {
				t.Errorf("Expected the bad dedent reported at line 3, got %d", d.Line)
			}
		}
	}
	if !found {
		t.Fatalf("Expected a bad-dedent diagnostic, got %v", r.Diags)
	}
	if len(r.File.Stmts) < 2 {
		t.Errorf("Expected statements after the bad dedent to survive, got %d", len(r.File.Stmts))
	}
}

func TestCompileFatalLexStops(t *testing.T) {
	src := "!p \"unterminated\n"
	r := Compile("broken.fro", src)
	if r.Tree != nil {
		t.Error("Expected no tree after a fatal lex error")
	}
	if !r.Diags.HasErrors() {
		t.Error("Expected the fatal condition in the diagnostics")
	}
	if r.OK() {
		t.Error("Expected OK to be false")
	}
}

func TestCompileDiagnosticsSorted(t *testing.T) {
	src := "!p \"{missing}\"\n" +
		"!bogus \"x\"\n" +
		"!span \"{also_missing}\"\n"
	r := Compile("multi.fro", src)
	if len(r.Diags) < 3 {
		t.Fatalf("Expected at least 3 diagnostics, got %v", r.Diags)
	}
	for i := 1; i < len(r.Diags); i++ {
		prev, cur := r.Diags[i-1], r.Diags[i]
		if cur.Line < prev.Line || (cur.Line == prev.Line && cur.Column < prev.Column) {
			t.Errorf("Diagnostics out of order: %v before %v", prev, cur)
		}
	}
}

func TestCompileAll(t *testing.T) {
	results := CompileAll(map[string]string{
		"b.fro": counterSrc,
		"a.fro": "!p \"hello\"\n",
	})
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Name != "a.fro" || results[1].Name != "b.fro" {
		t.Errorf("Expected results sorted by name, got %s, %s", results[0].Name, results[1].Name)
	}
	for _, r := range results {
		if !r.OK() {
			t.Errorf("Expected %s to compile, got %v", r.Name, r.Diags)
		}
	}
}
