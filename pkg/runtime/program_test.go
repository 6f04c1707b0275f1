package runtime

import (
	"strings"
	"testing"

	"github.com/ferroui/ferro/pkg/codegen"
	"github.com/ferroui/ferro/pkg/descriptor"
	"github.com/ferroui/ferro/pkg/lexer"
	"github.com/ferroui/ferro/pkg/parser"
	"github.com/ferroui/ferro/pkg/resolver"
)

func mountSource(t *testing.T, src string) (*Program, *Node) {
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
	tree, gdiags := codegen.Generate(res)
	if gdiags.HasErrors() {
		t.Fatalf("Unexpected codegen diagnostics: %v", gdiags)
	}
	prog := New(tree)
	return prog, prog.Mount()
}

func TestCounterClick(t *testing.T) {
	src := "!let counter = 0\n" +
		"!greeting \"Count: {counter}\"\n" +
		"!button \"+\" !onclick counter++\n"
	prog, root := mountSource(t, src)

	p := root.FindByTag("p")
	if p == nil {
		t.Fatal("Expected a mounted p element")
	}
	if got := p.TextContent(); got != "Count: 0" {
		t.Fatalf("Expected initial text 'Count: 0', got %q", got)
	}

	button := root.FindByTag("button")
	if !prog.Dispatch(button, "click") {
		t.Fatal("Expected a click handler on the button")
	}
	if got := p.TextContent(); got != "Count: 1" {
		t.Errorf("Expected 'Count: 1' after one click, got %q", got)
	}

	prog.Dispatch(button, "click")
	if got := p.TextContent(); got != "Count: 2" {
		t.Errorf("Expected 'Count: 2' after two clicks, got %q", got)
	}
}

func TestDispatchWithoutHandler(t *testing.T) {
	_, root := mountSource(t, "!p \"static\"\n")
	p := root.FindByTag("p")
	if p.prog.Dispatch(p, "click") {
		t.Error("Expected Dispatch to report no handler")
	}
}

func TestInitOrderAcrossForwardReference(t *testing.T) {
	src := "!let doubled = count * 2\n" +
		"!let count = 2\n" +
		"!p \"{doubled}\"\n"
	_, root := mountSource(t, src)

	if got := root.FindByTag("p").TextContent(); got != "4" {
		t.Errorf("Expected doubled to initialize after count, got %q", got)
	}
}

func TestIfBranchSwitch(t *testing.T) {
	src := "!let show = true\n" +
		"!if show\n" +
		"    !p \"on\"\n" +
		"!else\n" +
		"    !span \"off\"\n" +
		"!button \"toggle\" !onclick show = show == false\n"
	prog, root := mountSource(t, src)

	if root.FindByTag("p") == nil {
		t.Fatal("Expected the if branch mounted initially")
	}
	if root.FindByTag("span") != nil {
		t.Fatal("Expected the else branch unmounted initially")
	}

	prog.Dispatch(root.FindByTag("button"), "click")
	if root.FindByTag("p") != nil {
		t.Error("Expected the if branch unmounted after toggle")
	}
	if root.FindByTag("span") == nil {
		t.Error("Expected the else branch mounted after toggle")
	}

	prog.Dispatch(root.FindByTag("button"), "click")
	if root.FindByTag("p") == nil {
		t.Error("Expected the if branch back after a second toggle")
	}
}

func TestPropBindingUpdates(t *testing.T) {
	src := "!let name = \"ada\"\n" +
		"!input value=name\n" +
		"!button \"set\" !onclick name = \"grace\"\n"
	prog, root := mountSource(t, src)

	input := root.FindByTag("input")
	if got := input.Attrs["value"]; got != "ada" {
		t.Fatalf("Expected value attr 'ada', got %q", got)
	}

	prog.Dispatch(root.FindByTag("button"), "click")
	if got := input.Attrs["value"]; got != "grace" {
		t.Errorf("Expected value attr 'grace' after click, got %q", got)
	}
}

func TestKeyedListReuseOnAppend(t *testing.T) {
	src := "!let items = [\"a\", \"b\"]\n" +
		"!ul\n" +
		"    !for item in items\n" +
		"        !li key=item \"{item}\"\n" +
		"!button \"add\" !onclick items.push(\"c\")\n"
	prog, root := mountSource(t, src)

	ul := root.FindByTag("ul")
	lis := collectByTag(ul, "li")
	if len(lis) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(lis))
	}
	first := lis[0]

	prog.Dispatch(root.FindByTag("button"), "click")
	lis = collectByTag(ul, "li")
	if len(lis) != 3 {
		t.Fatalf("Expected 3 rows after push, got %d", len(lis))
	}
	if lis[0] != first {
		t.Error("Expected the existing keyed row to be reused, not remounted")
	}
	if got := lis[2].TextContent(); got != "c" {
		t.Errorf("Expected new row text 'c', got %q", got)
	}
}

func TestKeyedListReorderFollowsIterable(t *testing.T) {
	src := "!let items = [\"a\", \"b\"]\n" +
		"!for item in items\n" +
		"    !li key=item \"{item}\"\n" +
		"!button \"swap\" !onclick items = [\"b\", \"a\"]\n"
	prog, root := mountSource(t, src)

	lis := collectByTag(root, "li")
	rowA, rowB := lis[0], lis[1]

	prog.Dispatch(root.FindByTag("button"), "click")
	lis = collectByTag(root, "li")
	if len(lis) != 2 {
		t.Fatalf("Expected 2 rows after swap, got %d", len(lis))
	}
	if lis[0] != rowB || lis[1] != rowA {
		t.Error("Expected both rows reused in the new iterable order")
	}
}

func TestListRemovalUnmountsRow(t *testing.T) {
	src := "!let items = [\"a\", \"b\", \"c\"]\n" +
		"!for item in items\n" +
		"    !li key=item \"{item}\"\n" +
		"!button \"pop\" !onclick items.pop()\n"
	prog, root := mountSource(t, src)

	prog.Dispatch(root.FindByTag("button"), "click")
	lis := collectByTag(root, "li")
	if len(lis) != 2 {
		t.Fatalf("Expected 2 rows after pop, got %d", len(lis))
	}
	for _, li := range lis {
		if li.TextContent() == "c" {
			t.Error("Expected the popped row to be gone")
		}
	}
}

func TestRowLocalStateSurvivesReconcile(t *testing.T) {
	src := "!let items = [\"a\", \"b\"]\n" +
		"!for item in items\n" +
		"    !li key=item\n" +
		"        !let clicks = 0\n" +
		"        !p \"{item}:{clicks}\"\n" +
		"        !button \"hit\" !onclick clicks++\n" +
		"!button \"add\" id=\"adder\" !onclick items.push(\"c\")\n"
	prog, root := mountSource(t, src)

	lis := collectByTag(root, "li")
	if len(lis) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(lis))
	}
	hit := lis[0].FindByTag("button")
	prog.Dispatch(hit, "click")
	if got := lis[0].FindByTag("p").TextContent(); got != "a:1" {
		t.Fatalf("Expected row state a:1, got %q", got)
	}
	if got := lis[1].FindByTag("p").TextContent(); got != "b:0" {
		t.Fatalf("Expected row b untouched, got %q", got)
	}

	adder := root.Find(func(n *Node) bool {
		return n.Tag == "button" && n.Attrs["id"] == "adder"
	})
	prog.Dispatch(adder, "click")

	lis = collectByTag(root, "li")
	if len(lis) != 3 {
		t.Fatalf("Expected 3 rows after push, got %d", len(lis))
	}
	if got := lis[0].FindByTag("p").TextContent(); got != "a:1" {
		t.Errorf("Expected reused row to keep its local state, got %q", got)
	}
	if got := lis[2].FindByTag("p").TextContent(); got != "c:0" {
		t.Errorf("Expected new row to start fresh, got %q", got)
	}
}

func TestPositionalKeysRebindInPlace(t *testing.T) {
	src := "!let items = [\"a\", \"b\"]\n" +
		"!for item in items\n" +
		"    !li \"{item}\"\n" +
		"!button \"swap\" !onclick items = [\"b\", \"a\"]\n"
	prog, root := mountSource(t, src)

	lis := collectByTag(root, "li")
	first := lis[0]
	prog.Dispatch(root.FindByTag("button"), "click")

	lis = collectByTag(root, "li")
	if lis[0] != first {
		t.Error("Expected positional keying to reuse the row at index 0")
	}
	if got := lis[0].TextContent(); got != "b" {
		t.Errorf("Expected rebound row text 'b', got %q", got)
	}
}

func TestUnresolvedNodesRender(t *testing.T) {
	src := "!let n = 0\n" +
		"!while n < 3\n" +
		"    !p \"x\"\n"
	tokens, _, err := lexer.Tokenize("test.fro", src)
	if err != nil {
		t.Fatal(err)
	}
	file, _ := parser.Parse("test.fro", tokens)
	res, _ := resolver.Resolve(file)
	tree, diags := codegen.Generate(res)
	if !diags.HasErrors() {
		t.Fatal("Expected a structural-while error")
	}

	prog := New(tree)
	root := prog.Mount()
	if len(root.Children) != 1 || root.Children[0].Kind != descriptor.KindUnresolved {
		t.Errorf("Expected an unresolved placeholder to mount, got %v", root.Children)
	}
}

func TestCyclicInitializerKeepsSiblingValues(t *testing.T) {
	src := "!let a = b + 1\n" +
		"!let b = a + 1\n" +
		"!let c = 5\n" +
		"!p \"{c}\"\n"
	tokens, _, err := lexer.Tokenize("test.fro", src)
	if err != nil {
		t.Fatal(err)
	}
	file, _ := parser.Parse("test.fro", tokens)
	res, rdiags := resolver.Resolve(file)
	if !rdiags.HasErrors() {
		t.Fatal("Expected a cyclic-dependency error")
	}
	tree, _ := codegen.Generate(res)

	prog := New(tree)
	root := prog.Mount()
	if got := root.FindByTag("p").TextContent(); got != "5" {
		t.Errorf("Expected the non-cyclic signal to initialize, got %q", got)
	}
}

func TestInterpolationOfExpressions(t *testing.T) {
	src := "!let price = 3\n" +
		"!let qty = 4\n" +
		"!p \"total: {price * qty}\"\n"
	_, root := mountSource(t, src)
	if got := root.FindByTag("p").TextContent(); got != "total: 12" {
		t.Errorf("Expected 'total: 12', got %q", got)
	}
}

func collectByTag(n *Node, tag string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(c *Node) {
		if c.Kind == descriptor.KindElement && c.Tag == tag {
			out = append(out, c)
			return
		}
		for _, ch := range c.Children {
			walk(ch)
		}
	}
	for _, c := range n.Children {
		walk(c)
	}
	if n.Kind == descriptor.KindElement && n.Tag == tag && len(out) == 0 {
		out = append(out, n)
	}
	return out
}

func TestTextContentSkipsAttrs(t *testing.T) {
	_, root := mountSource(t, "!p.red \"hello\"\n")
	if !strings.Contains(root.TextContent(), "hello") {
		t.Errorf("Expected text content to include hello, got %q", root.TextContent())
	}
}
