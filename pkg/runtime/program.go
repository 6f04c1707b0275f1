// Package runtime mounts a compiled descriptor tree over the reactive
// engine and keeps the live view in sync with state. Bindings subscribe to
// exactly the signals the compiler tagged them with, so a write re-evaluates
// only the affected text nodes, attributes, branches and loops.
package runtime

import (
	"fmt"

	"github.com/ferroui/ferro/pkg/descriptor"
	"github.com/ferroui/ferro/pkg/reactive"
)

// Program is one mounted document: the descriptor tree, its reactive
// runtime and the mapping from compiled signal ids to live signals.
type Program struct {
	tree      *descriptor.Tree
	rt        *reactive.Runtime
	signals   map[int]reactive.SignalID
	loopOwned map[int]bool
	rank      int
}

// New prepares a program for tree. Nothing is evaluated until Mount.
func New(tree *descriptor.Tree) *Program {
	p := &Program{
		tree:      tree,
		rt:        reactive.NewRuntime(),
		signals:   make(map[int]reactive.SignalID),
		loopOwned: make(map[int]bool),
	}
	var scan func(nodes []*descriptor.Descriptor)
	scan = func(nodes []*descriptor.Descriptor) {
		for _, d := range nodes {
			for _, id := range d.OwnSignals {
				p.loopOwned[id] = true
			}
			scan(d.Children)
			scan(d.Template)
			for _, br := range d.Branches {
				scan(br.Body)
			}
		}
	}
	scan(tree.Roots)
	return p
}

// Reactive exposes the underlying engine, mainly for batching writes from
// the embedding application.
func (p *Program) Reactive() *reactive.Runtime { return p.rt }

// Node is one element of the live view. Kind mirrors the descriptor kinds;
// "if" and "for" nodes are structural and render through their Children.
type Node struct {
	Kind       string
	Tag        string
	Name       string
	StyleClass string
	Attrs      map[string]string
	Text       string
	Children   []*Node

	prog   *Program
	env    *env
	events map[string]int
	subs   []*reactive.Subscription

	branches *ifState
	loop     *forState
}

type ifState struct {
	desc   *descriptor.Descriptor
	active int
}

type forState struct {
	desc *descriptor.Descriptor
	rows []*row
}

type row struct {
	key     string
	env     *env
	nodes   []*Node
	refresh []func()
}

// env resolves loop variables and row-local signal instances, innermost
// scope first.
type env struct {
	parent  *env
	vars    map[string]any
	signals map[int]reactive.SignalID
}

func (e *env) loopVar(name string) (any, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *env) setVar(name string, v any) {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return
		}
	}
}

func (p *Program) signalFor(descID int, e *env) (reactive.SignalID, bool) {
	for s := e; s != nil; s = s.parent {
		if id, ok := s.signals[descID]; ok {
			return id, true
		}
	}
	id, ok := p.signals[descID]
	return id, ok
}

// Mount evaluates state initializers in dependency order and builds the
// live tree. The returned root is structural; its Children are the
// document's top-level nodes.
func (p *Program) Mount() *Node {
	root := &env{}
	p.initSignals(p.tree.InitOrder, p.loopOwned, root, p.signals)

	n := &Node{Kind: "root", prog: p, env: root}
	n.Children = p.mountList(p.tree.Roots, root, nil)
	return n
}

// initSignals instantiates every signal in order except those in skip.
// Missing initializers and signals left out of the order (a reported cycle)
// start as nil.
func (p *Program) initSignals(order []int, skip map[int]bool, e *env, into map[int]reactive.SignalID) {
	for _, id := range order {
		if skip != nil && skip[id] {
			continue
		}
		into[id] = p.rt.NewSignal(p.initValue(id, e))
	}
	for _, spec := range p.tree.Signals {
		if skip != nil && skip[spec.ID] {
			continue
		}
		if _, ok := into[spec.ID]; !ok {
			into[spec.ID] = p.rt.NewSignal(nil)
		}
	}
}

func (p *Program) initValue(id int, e *env) any {
	for _, spec := range p.tree.Signals {
		if spec.ID == id && spec.Init >= 0 {
			return p.eval(p.tree.Exprs[spec.Init].Expr, e)
		}
	}
	return nil
}

// nextRank orders subscriptions by mount order, which is document order:
// a parent's structural binding always runs before its children's.
func (p *Program) nextRank() int {
	p.rank++
	return p.rank
}

func (p *Program) mountList(descs []*descriptor.Descriptor, e *env, r *row) []*Node {
	var out []*Node
	for _, d := range descs {
		if n := p.mountNode(d, e, r); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (p *Program) mountNode(d *descriptor.Descriptor, e *env, r *row) *Node {
	switch d.Kind {
	case descriptor.KindElement:
		return p.mountElement(d, e, r)
	case descriptor.KindText:
		return p.mountText(d, e, r)
	case descriptor.KindIf:
		return p.mountIf(d, e, r)
	case descriptor.KindFor:
		return p.mountFor(d, e, r)
	default:
		return &Node{Kind: descriptor.KindUnresolved, prog: p, env: e}
	}
}

// bind wires one update function: it runs now, re-runs whenever a read
// signal flushes, and re-runs on row refresh when it depends on a loop
// variable.
func (p *Program) bind(n *Node, b descriptor.BoundExpr, e *env, r *row, update func()) {
	update()
	if len(b.Reads) > 0 {
		ids := make([]reactive.SignalID, 0, len(b.Reads))
		for _, dep := range b.Reads {
			if id, ok := p.signalFor(dep, e); ok {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			n.subs = append(n.subs, p.rt.Subscribe(ids, p.nextRank(), update))
		}
	}
	if r != nil && len(b.LoopVars) > 0 {
		r.refresh = append(r.refresh, update)
	}
}

func (p *Program) mountElement(d *descriptor.Descriptor, e *env, r *row) *Node {
	n := &Node{
		Kind:       d.Kind,
		Tag:        d.Tag,
		Name:       d.Name,
		StyleClass: d.StyleClass,
		prog:       p,
		env:        e,
	}
	if len(d.Props) > 0 {
		n.Attrs = make(map[string]string, len(d.Props))
		for name, id := range d.Props {
			name, bound := name, p.tree.Exprs[id]
			p.bind(n, bound, e, r, func() {
				n.Attrs[name] = formatValue(p.eval(bound.Expr, e))
			})
		}
	}
	if len(d.Events) > 0 {
		n.events = make(map[string]int, len(d.Events))
		for _, ev := range d.Events {
			n.events[ev.Event] = ev.Handler
		}
	}
	n.Children = p.mountList(d.Children, e, r)
	return n
}

func (p *Program) mountText(d *descriptor.Descriptor, e *env, r *row) *Node {
	n := &Node{Kind: d.Kind, prog: p, env: e}
	bound := p.tree.Exprs[d.Text]
	p.bind(n, bound, e, r, func() {
		n.Text = formatValue(p.eval(bound.Expr, e))
	})
	return n
}

func (p *Program) mountIf(d *descriptor.Descriptor, e *env, r *row) *Node {
	n := &Node{Kind: d.Kind, prog: p, env: e, branches: &ifState{desc: d, active: -1}}

	n.branches.active = p.selectBranch(d, e)
	if n.branches.active >= 0 {
		n.Children = p.mountList(d.Branches[n.branches.active].Body, e, r)
	}

	reads := map[int]bool{}
	var bound descriptor.BoundExpr
	for _, br := range d.Branches {
		if br.Cond < 0 {
			continue
		}
		for _, dep := range p.tree.Exprs[br.Cond].Reads {
			if !reads[dep] {
				reads[dep] = true
				bound.Reads = append(bound.Reads, dep)
			}
		}
		bound.LoopVars = append(bound.LoopVars, p.tree.Exprs[br.Cond].LoopVars...)
	}
	if len(bound.Reads) == 0 && len(bound.LoopVars) == 0 {
		return n
	}

	first := true
	p.bind(n, bound, e, r, func() {
		if first {
			// The initial mount above already selected the branch.
			first = false
			return
		}
		next := p.selectBranch(d, e)
		if next == n.branches.active {
			return
		}
		for _, c := range n.Children {
			c.unmount()
		}
		n.branches.active = next
		n.Children = nil
		if next >= 0 {
			n.Children = p.mountList(d.Branches[next].Body, e, r)
		}
	})
	return n
}

func (p *Program) selectBranch(d *descriptor.Descriptor, e *env) int {
	for i, br := range d.Branches {
		if br.Cond < 0 {
			return i
		}
		if truthy(p.eval(p.tree.Exprs[br.Cond].Expr, e)) {
			return i
		}
	}
	return -1
}

// unmount closes every subscription under n, synchronously. Row-local
// signals keep their cells in the engine but nothing references them
// afterwards.
func (n *Node) unmount() {
	for _, s := range n.subs {
		s.Close()
	}
	n.subs = nil
	if n.loop != nil {
		for _, r := range n.loop.rows {
			for _, c := range r.nodes {
				c.unmount()
			}
		}
		n.loop.rows = nil
	}
	for _, c := range n.Children {
		c.unmount()
	}
}

// Dispatch runs the handler bound to event on n. All writes performed by
// the handler land in one batch, so the view updates once. It reports
// whether a handler was bound.
func (p *Program) Dispatch(n *Node, event string) bool {
	id, ok := n.events[event]
	if !ok {
		return false
	}
	p.rt.Batch(func() {
		p.effect(p.tree.Exprs[id].Expr, n.env)
	})
	return true
}

// Find returns the first node (depth first) for which pred holds.
func (n *Node) Find(pred func(*Node) bool) *Node {
	if pred(n) {
		return n
	}
	for _, c := range n.Children {
		if hit := c.Find(pred); hit != nil {
			return hit
		}
	}
	return nil
}

// FindByTag returns the first element with the given tag.
func (n *Node) FindByTag(tag string) *Node {
	return n.Find(func(c *Node) bool { return c.Kind == descriptor.KindElement && c.Tag == tag })
}

// TextContent concatenates the text of n's subtree in document order.
func (n *Node) TextContent() string {
	out := n.Text
	for _, c := range n.Children {
		out += c.TextContent()
	}
	return out
}

func positionalKey(i int) string { return fmt.Sprintf("#%d", i) }
