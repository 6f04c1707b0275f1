package html

import (
	"strings"
	"testing"

	"github.com/ferroui/ferro/pkg/compiler"
	"github.com/ferroui/ferro/pkg/runtime"
)

func mount(t *testing.T, src string) (*runtime.Program, *runtime.Node, string) {
	t.Helper()
	r := compiler.Compile("t.fro", src)
	if !r.OK() {
		t.Fatalf("Compile failed: %v", r.Diags)
	}
	prog := runtime.New(r.Tree)
	return prog, prog.Mount(), r.Tree.Stylesheet
}

func TestRenderCounter(t *testing.T) {
	src := "!let counter = 0\n" +
		"!div.center\n" +
		"    !greeting \"Count: {counter}\"\n" +
		"    !button \"+\" !onclick counter++\n"
	prog, root, _ := mount(t, src)

	got := RenderString(root)
	if !strings.Contains(got, "<p>Count: 0</p>") {
		t.Errorf("Expected the greeting paragraph, got %q", got)
	}
	if !strings.Contains(got, "<button>+</button>") {
		t.Errorf("Expected the button, got %q", got)
	}
	if !strings.Contains(got, `<div class="_`) {
		t.Errorf("Expected a hashed style class on the div, got %q", got)
	}

	prog.Dispatch(root.FindByTag("button"), "click")
	if got := RenderString(root); !strings.Contains(got, "Count: 1") {
		t.Errorf("Expected the re-render to show the new count, got %q", got)
	}
}

func TestRenderEscapesText(t *testing.T) {
	_, root, _ := mount(t, "!p \"<script>alert(1)</script>\"\n")
	got := RenderString(root)
	if strings.Contains(got, "<script>") {
		t.Fatalf("Expected escaped text, got %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("Expected HTML entities, got %q", got)
	}
}

func TestRenderVoidElement(t *testing.T) {
	_, root, _ := mount(t, "!input value=\"x\"\n")
	got := RenderString(root)
	if strings.Contains(got, "</input>") {
		t.Errorf("Expected no closing tag for a void element, got %q", got)
	}
	if !strings.Contains(got, `value="x"`) {
		t.Errorf("Expected the value attribute, got %q", got)
	}
}

func TestRenderBooleanAttribute(t *testing.T) {
	src := "!let busy = true\n" +
		"!button disabled=busy \"go\"\n"
	_, root, _ := mount(t, src)
	got := RenderString(root)
	if !strings.Contains(got, "<button disabled>") {
		t.Errorf("Expected a bare boolean attribute, got %q", got)
	}
}

func TestRenderListAndBranches(t *testing.T) {
	src := "!let items = [\"a\", \"b\"]\n" +
		"!let show = true\n" +
		"!ul\n" +
		"    !for item in items\n" +
		"        !li key=item \"{item}\"\n" +
		"!if show\n" +
		"    !p \"visible\"\n"
	_, root, _ := mount(t, src)
	got := RenderString(root)
	if !strings.Contains(got, "<ul><li>a</li><li>b</li></ul>") {
		t.Errorf("Expected flattened list rows, got %q", got)
	}
	if !strings.Contains(got, "<p>visible</p>") {
		t.Errorf("Expected the active branch, got %q", got)
	}
}

func TestDocumentIncludesStylesheet(t *testing.T) {
	_, root, css := mount(t, "!p.red.large \"hi\"\n")
	var sb strings.Builder
	if err := Document(&sb, "demo", css, root); err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	got := sb.String()
	if !strings.Contains(got, "<!DOCTYPE html>") {
		t.Error("Expected a doctype")
	}
	if !strings.Contains(got, "color: #ef4444;") {
		t.Errorf("Expected the resolved style rule, got %q", got)
	}
	if !strings.Contains(got, "<title>demo</title>") {
		t.Error("Expected the title")
	}
}
