// Package codegen lowers a resolved file into the descriptor tree. The pass
// is structural: it walks the syntax tree once, resolves style shorthand,
// assigns loop key modes and emits placeholder slots for anything that
// failed earlier stages, so the generated tree always mirrors the source
// shape.
package codegen

import (
	"github.com/ferroui/ferro/pkg/ast"
	"github.com/ferroui/ferro/pkg/descriptor"
	"github.com/ferroui/ferro/pkg/diag"
	"github.com/ferroui/ferro/pkg/resolver"
	"github.com/ferroui/ferro/pkg/styling"
)

// Generate lowers res into a descriptor tree. Diagnostics cover generation
// concerns only (structural loops, unknown styles); earlier stages report
// their own.
func Generate(res *resolver.Result) (*descriptor.Tree, diag.List) {
	g := &generator{
		res:    res,
		styles: styling.NewRegistry(),
		tree: &descriptor.Tree{
			File:  res.File.Name,
			Exprs: make([]descriptor.BoundExpr, len(res.Bindings)),
		},
	}
	for _, s := range res.Signals {
		g.tree.Signals = append(g.tree.Signals, descriptor.SignalSpec{
			ID: int(s.ID), Name: s.Name, Init: int(s.Init),
		})
	}
	for _, id := range res.InitOrder {
		g.tree.InitOrder = append(g.tree.InitOrder, int(id))
	}

	top := &genScope{names: make(map[string]int)}
	g.hoist(res.File.Stmts, top)
	g.tree.Roots = g.stmts(res.File.Stmts, top)
	g.tree.Stylesheet = g.styles.CSS()
	g.diags.Sort()
	return g.tree, g.diags
}

type generator struct {
	res    *resolver.Result
	tree   *descriptor.Tree
	styles *styling.Registry
	diags  diag.List

	// ownStack collects signals declared inside the loop template being
	// generated, innermost loop on top.
	ownStack []*[]int
}

// genScope mirrors the resolver's scoping so name lookups during lowering
// land on the same signals. Loop variables map to -1.
type genScope struct {
	parent *genScope
	names  map[string]int
}

func (sc *genScope) lookup(name string) (int, bool) {
	for s := sc; s != nil; s = s.parent {
		if id, ok := s.names[name]; ok {
			return id, id >= 0
		}
	}
	return 0, false
}

func (g *generator) hoist(stmts []ast.Stmt, sc *genScope) {
	for _, s := range stmts {
		if decl, ok := s.(*ast.StateDecl); ok {
			if id, ok := g.res.SignalForDecl(decl); ok {
				sc.names[decl.Name] = int(id)
				if n := len(g.ownStack); n > 0 {
					*g.ownStack[n-1] = append(*g.ownStack[n-1], int(id))
				}
			}
		}
	}
}

// lower records the bound expression for e in the expression table and
// returns its id, or -1 when the resolver assigned no binding.
func (g *generator) lower(e ast.Expr, sc *genScope) int {
	b, ok := g.res.BindingFor(e)
	if !ok {
		return -1
	}
	bound := descriptor.BoundExpr{
		ID:       int(b.ID),
		Expr:     descriptor.FromAST(e, sc.lookup),
		LoopVars: b.LoopVars,
	}
	for _, r := range b.Reads {
		bound.Reads = append(bound.Reads, int(r))
	}
	for _, w := range b.Writes {
		bound.Writes = append(bound.Writes, int(w))
	}
	g.tree.Exprs[b.ID] = bound
	return int(b.ID)
}

// slot lowers an expression that feeds a render slot (text, prop, event).
// Bindings the resolver marked unresolved yield -1 so the caller stubs the
// slot instead of wiring a live one.
func (g *generator) slot(e ast.Expr, sc *genScope) int {
	id := g.lower(e, sc)
	if id < 0 {
		return -1
	}
	if g.res.Bindings[id].Unresolved {
		return -1
	}
	return id
}

func (g *generator) stmts(stmts []ast.Stmt, sc *genScope) []*descriptor.Descriptor {
	var out []*descriptor.Descriptor
	for _, s := range stmts {
		if d := g.stmt(s, sc); d != nil {
			out = append(out, d)
		}
	}
	return out
}

func (g *generator) child(stmts []ast.Stmt, parent *genScope) []*descriptor.Descriptor {
	if len(stmts) == 0 {
		return nil
	}
	sc := &genScope{parent: parent, names: make(map[string]int)}
	g.hoist(stmts, sc)
	return g.stmts(stmts, sc)
}

func (g *generator) stmt(s ast.Stmt, sc *genScope) *descriptor.Descriptor {
	switch n := s.(type) {
	case *ast.StateDecl:
		// Declarations contribute signals, not tree nodes; the initializer
		// still needs lowering into the expression table.
		g.lower(n.Init, sc)
		return nil

	case *ast.Element:
		return g.element(n, sc)

	case *ast.Text:
		id := g.slot(n.Value, sc)
		if id < 0 {
			return &descriptor.Descriptor{Kind: descriptor.KindUnresolved}
		}
		return &descriptor.Descriptor{Kind: descriptor.KindText, Text: id}

	case *ast.If:
		node := &descriptor.Descriptor{Kind: descriptor.KindIf}
		for _, cl := range n.Clauses {
			br := descriptor.Branch{Cond: -1}
			if cl.Cond != nil {
				br.Cond = g.lower(cl.Cond, sc)
			}
			br.Body = g.child(cl.Body, sc)
			node.Branches = append(node.Branches, br)
		}
		return node

	case *ast.For:
		node := &descriptor.Descriptor{
			Kind:     descriptor.KindFor,
			LoopVar:  n.Var,
			Iterable: g.lower(n.Iterable, sc),
			Key:      -1,
		}
		var own []int
		g.ownStack = append(g.ownStack, &own)
		body := &genScope{parent: sc, names: map[string]int{n.Var: -1}}
		g.hoist(n.Body, body)
		node.Template = g.stmts(n.Body, body)
		g.ownStack = g.ownStack[:len(g.ownStack)-1]
		node.OwnSignals = own
		g.assignKey(node)
		return node

	case *ast.While:
		// An unbounded structural loop has no static shape to reconcile.
		g.diags.Errorf(diag.StructuralWhile, n.Pos,
			"!while cannot produce a bounded view; use !for over a collection or !if for visibility")
		g.lower(n.Cond, sc)
		g.child(n.Body, sc)
		return &descriptor.Descriptor{Kind: descriptor.KindUnresolved}
	}
	return nil
}

func (g *generator) element(n *ast.Element, sc *genScope) *descriptor.Descriptor {
	node := &descriptor.Descriptor{
		Kind: descriptor.KindElement,
		Tag:  n.Tag,
		Name: n.Name,
	}

	if len(n.Classes) > 0 {
		set, unknown := styling.Resolve(n.Classes)
		for _, u := range unknown {
			g.diags.Warnf(diag.UnknownStyle, n.Pos, "unknown style shorthand .%s", u)
		}
		node.Styles = set
		node.StyleClass = g.styles.Add(set)
	}

	for _, p := range n.Props {
		id := g.slot(p.Value, sc)
		if id < 0 {
			continue
		}
		if node.Props == nil {
			node.Props = make(map[string]int)
		}
		node.Props[p.Name] = id
	}

	for _, ev := range n.Events {
		id := g.slot(ev.Handler, sc)
		if id < 0 {
			continue
		}
		node.Events = append(node.Events, descriptor.EventSpec{Event: ev.Event, Handler: id})
	}

	for _, in := range n.Inline {
		id := g.slot(in, sc)
		if id < 0 {
			node.Children = append(node.Children, &descriptor.Descriptor{Kind: descriptor.KindUnresolved})
			continue
		}
		node.Children = append(node.Children, &descriptor.Descriptor{Kind: descriptor.KindText, Text: id})
	}

	node.Children = append(node.Children, g.child(n.Children, sc)...)
	return node
}

// assignKey promotes a `key=` prop on the loop template's single root
// element into the loop's key expression. Without one the runtime keys rows
// by position.
func (g *generator) assignKey(loop *descriptor.Descriptor) {
	if len(loop.Template) != 1 {
		return
	}
	root := loop.Template[0]
	if root.Kind != descriptor.KindElement || root.Props == nil {
		return
	}
	if id, ok := root.Props["key"]; ok {
		loop.Key = id
		delete(root.Props, "key")
		if len(root.Props) == 0 {
			root.Props = nil
		}
	}
}
