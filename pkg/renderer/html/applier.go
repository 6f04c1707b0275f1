// Package html renders a mounted view tree to HTML. It is a full-document
// serializer: the live tree re-renders after each flush rather than being
// patched incrementally, which keeps the dev server honest about what the
// runtime produced.
package html

import (
	"html"
	"io"
	"sort"
	"strings"

	"github.com/ferroui/ferro/pkg/descriptor"
	"github.com/ferroui/ferro/pkg/runtime"
)

// voidElements are HTML elements that cannot have children
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// booleanAttributes are HTML attributes that are boolean flags
var booleanAttributes = map[string]bool{
	"checked":   true,
	"disabled":  true,
	"readonly":  true,
	"required":  true,
	"selected":  true,
	"multiple":  true,
	"autofocus": true,
}

// Applier serializes live nodes to an io.Writer.
type Applier struct {
	w   io.Writer
	err error
}

// NewApplier creates an Applier writing to w.
func NewApplier(w io.Writer) *Applier {
	return &Applier{w: w}
}

// Apply renders the subtree rooted at node.
func (a *Applier) Apply(node *runtime.Node) error {
	a.renderNode(node)
	return a.err
}

// Render writes the subtree rooted at node to w.
func Render(w io.Writer, node *runtime.Node) error {
	return NewApplier(w).Apply(node)
}

// RenderString renders the subtree to a string.
func RenderString(node *runtime.Node) string {
	var sb strings.Builder
	_ = Render(&sb, node)
	return sb.String()
}

// Document writes a complete HTML page: the stylesheet produced by the
// compiler followed by the rendered tree.
func Document(w io.Writer, title, stylesheet string, node *runtime.Node) error {
	a := NewApplier(w)
	a.write("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	a.write(html.EscapeString(title))
	a.write("</title>\n")
	if stylesheet != "" {
		a.write("<style>\n")
		a.write(stylesheet)
		a.write("</style>\n")
	}
	a.write("</head>\n<body>\n")
	a.renderNode(node)
	a.write("\n</body>\n</html>\n")
	return a.err
}

func (a *Applier) write(s string) {
	if a.err != nil {
		return
	}
	_, a.err = io.WriteString(a.w, s)
}

func (a *Applier) renderNode(node *runtime.Node) {
	if node == nil || a.err != nil {
		return
	}
	switch node.Kind {
	case descriptor.KindText:
		a.write(html.EscapeString(node.Text))
	case descriptor.KindElement:
		a.renderElement(node)
	case descriptor.KindUnresolved:
		a.write("<!-- unresolved -->")
	default:
		// Structural nodes (root, if, for) render through their children.
		for _, c := range node.Children {
			a.renderNode(c)
		}
	}
}

func (a *Applier) renderElement(node *runtime.Node) {
	a.write("<")
	a.write(node.Tag)

	if node.StyleClass != "" {
		a.write(` class="`)
		a.write(html.EscapeString(node.StyleClass))
		a.write(`"`)
	}

	names := make([]string, 0, len(node.Attrs))
	for name := range node.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := node.Attrs[name]
		if booleanAttributes[name] {
			if value == "true" {
				a.write(" ")
				a.write(name)
			}
			continue
		}
		a.write(" ")
		a.write(name)
		a.write(`="`)
		a.write(html.EscapeString(value))
		a.write(`"`)
	}

	if voidElements[node.Tag] {
		a.write(">")
		return
	}

	a.write(">")
	for _, c := range node.Children {
		a.renderNode(c)
	}
	a.write("</")
	a.write(node.Tag)
	a.write(">")
}
