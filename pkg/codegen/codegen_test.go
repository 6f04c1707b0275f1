package codegen

import (
	"testing"

	"github.com/ferroui/ferro/pkg/descriptor"
	"github.com/ferroui/ferro/pkg/diag"
	"github.com/ferroui/ferro/pkg/lexer"
	"github.com/ferroui/ferro/pkg/parser"
	"github.com/ferroui/ferro/pkg/resolver"
)

func generate(t *testing.T, src string) (*descriptor.Tree, diag.List) {
	t.Helper()
	tokens, ldiags, err := lexer.Tokenize("test.fro", src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	if ldiags.HasErrors() {
		t.Fatalf("Unexpected lex diagnostics: %v", ldiags)
	}
	file, pdiags := parser.Parse("test.fro", tokens)
	if pdiags.HasErrors() {
		t.Fatalf("Unexpected parse diagnostics: %v", pdiags)
	}
	res, rdiags := resolver.Resolve(file)
	if rdiags.HasErrors() {
		t.Fatalf("Unexpected resolve diagnostics: %v", rdiags)
	}
	return Generate(res)
}

func TestGenerateCounter(t *testing.T) {
	src := "!let counter = 0\n" +
		"!greeting \"Count: {counter}\"\n" +
		"!button \"+\" !onclick counter++\n"
	tree, diags := generate(t, src)
	if diags.HasErrors() {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}

	if len(tree.Signals) != 1 || tree.Signals[0].Name != "counter" {
		t.Fatalf("Expected one counter signal, got %v", tree.Signals)
	}
	if len(tree.Roots) != 2 {
		t.Fatalf("Expected 2 roots, got %d", len(tree.Roots))
	}

	greeting := tree.Roots[0]
	if greeting.Tag != "p" || greeting.Name != "greeting" {
		t.Errorf("Expected greeting to lower to a p element, got %s/%s", greeting.Tag, greeting.Name)
	}
	if len(greeting.Children) != 1 || greeting.Children[0].Kind != descriptor.KindText {
		t.Fatalf("Expected one text child, got %v", greeting.Children)
	}
	text := tree.Exprs[greeting.Children[0].Text]
	if len(text.Reads) != 1 || text.Reads[0] != 0 {
		t.Errorf("Expected text to read signal 0, got %v", text.Reads)
	}

	button := tree.Roots[1]
	if len(button.Events) != 1 || button.Events[0].Event != "click" {
		t.Fatalf("Expected one click binding, got %v", button.Events)
	}
	handler := tree.Exprs[button.Events[0].Handler]
	if len(handler.Writes) != 1 || handler.Writes[0] != 0 {
		t.Errorf("Expected handler to write signal 0, got %v", handler.Writes)
	}
}

func TestGenerateStyles(t *testing.T) {
	src := "!p.red.large \"hi\"\n"
	tree, diags := generate(t, src)
	if diags.HasErrors() {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}
	p := tree.Roots[0]
	if len(p.Styles) != 2 {
		t.Errorf("Expected two declarations, got %v", p.Styles)
	}
	if p.StyleClass == "" {
		t.Error("Expected a style rule class")
	}
	if tree.Stylesheet == "" {
		t.Error("Expected a stylesheet")
	}
}

func TestGenerateUnknownStyleWarns(t *testing.T) {
	src := "!p.sparkly \"hi\"\n"
	tree, diags := generate(t, src)
	if diags.HasErrors() {
		t.Fatalf("Expected only a warning, got %v", diags)
	}
	found := false
	for _, d := range diags {
		if d.Code == diag.UnknownStyle && d.Severity == diag.Warning {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected an unknown-style warning, got %v", diags)
	}
	if len(tree.Roots) != 1 {
		t.Error("Expected the element to survive the unknown style")
	}
}

func TestGenerateStructuralWhileRejected(t *testing.T) {
	src := "!let n = 0\n" +
		"!while n < 3\n" +
		"    !p \"row\"\n"
	tree, diags := generate(t, src)

	found := false
	for _, d := range diags {
		if d.Code == diag.StructuralWhile {
			found = true
		}
	}
	if !found {
		t.Fatalf("Expected a structural-while error, got %v", diags)
	}
	if len(tree.Roots) != 1 || tree.Roots[0].Kind != descriptor.KindUnresolved {
		t.Errorf("Expected an unresolved placeholder, got %v", tree.Roots)
	}
}

func TestGenerateUnresolvedSlotsStubbed(t *testing.T) {
	src := "!p \"{missing}\"\n" +
		"!input value=missing\n" +
		"!button \"x\" !onclick missing++\n"
	tokens, _, err := lexer.Tokenize("test.fro", src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	file, pdiags := parser.Parse("test.fro", tokens)
	if pdiags.HasErrors() {
		t.Fatalf("Unexpected parse diagnostics: %v", pdiags)
	}
	res, rdiags := resolver.Resolve(file)
	if !rdiags.HasErrors() {
		t.Fatal("Expected undefined-reference errors")
	}
	tree, _ := Generate(res)

	p := tree.Roots[0]
	if len(p.Children) != 1 || p.Children[0].Kind != descriptor.KindUnresolved {
		t.Errorf("Expected the text slot to be an unresolved placeholder, got %v", p.Children)
	}
	input := tree.Roots[1]
	if len(input.Props) != 0 {
		t.Errorf("Expected no live props on the input, got %v", input.Props)
	}
	button := tree.Roots[2]
	if len(button.Events) != 0 {
		t.Errorf("Expected no live events on the button, got %v", button.Events)
	}
	if len(button.Children) != 1 || button.Children[0].Kind != descriptor.KindText {
		t.Errorf("Expected the resolved inline text to survive, got %v", button.Children)
	}
}

func TestGenerateLoopKeyPromotion(t *testing.T) {
	src := "!let items = [1, 2, 3]\n" +
		"!for item in items\n" +
		"    !li key=item \"{item}\"\n"
	tree, diags := generate(t, src)
	if diags.HasErrors() {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}

	loop := tree.Roots[0]
	if loop.Kind != descriptor.KindFor || loop.LoopVar != "item" {
		t.Fatalf("Expected a for node over item, got %v", loop)
	}
	if loop.Key < 0 {
		t.Fatal("Expected the key= prop to become the loop key")
	}
	root := loop.Template[0]
	if _, ok := root.Props["key"]; ok {
		t.Error("Expected key= to be removed from the element props")
	}
}

func TestGenerateLoopWithoutKeyIsPositional(t *testing.T) {
	src := "!let items = [1]\n" +
		"!for item in items\n" +
		"    !li \"{item}\"\n"
	tree, diags := generate(t, src)
	if diags.HasErrors() {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}
	if tree.Roots[0].Key != -1 {
		t.Errorf("Expected positional keys (-1), got %d", tree.Roots[0].Key)
	}
}

func TestGenerateIfBranches(t *testing.T) {
	src := "!let show = true\n" +
		"!if show\n" +
		"    !p \"on\"\n" +
		"!else\n" +
		"    !p \"off\"\n"
	tree, diags := generate(t, src)
	if diags.HasErrors() {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}

	cond := tree.Roots[0]
	if cond.Kind != descriptor.KindIf || len(cond.Branches) != 2 {
		t.Fatalf("Expected an if with two branches, got %v", cond)
	}
	if cond.Branches[0].Cond < 0 {
		t.Error("Expected the first branch to carry a condition")
	}
	if cond.Branches[1].Cond != -1 {
		t.Error("Expected the else branch to have cond -1")
	}
}
