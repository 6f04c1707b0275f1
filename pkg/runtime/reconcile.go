package runtime

import (
	"github.com/ferroui/ferro/pkg/descriptor"
	"github.com/ferroui/ferro/pkg/reactive"
)

func (p *Program) mountFor(d *descriptor.Descriptor, e *env, r *row) *Node {
	n := &Node{Kind: d.Kind, prog: p, env: e, loop: &forState{desc: d}}

	p.reconcile(n, e)

	bound := p.tree.Exprs[d.Iterable]
	if len(bound.Reads) > 0 || (r != nil && len(bound.LoopVars) > 0) {
		first := true
		p.bind(n, bound, e, r, func() {
			if first {
				first = false
				return
			}
			p.reconcile(n, e)
		})
	}
	return n
}

// reconcile diffs the loop's rows against the current iterable value.
// Matched keys reuse their mounted row, keeping subscriptions and row-local
// signals; their loop variable is rebound and loop-dependent bindings
// refresh in place. Unmatched old rows unmount exactly once, new keys mount
// fresh, and the children end up in the new iterable's order.
func (p *Program) reconcile(n *Node, e *env) {
	d := n.loop.desc
	items := asList(p.eval(p.tree.Exprs[d.Iterable].Expr, e))

	old := make(map[string]*row, len(n.loop.rows))
	for _, rw := range n.loop.rows {
		if _, dup := old[rw.key]; !dup {
			old[rw.key] = rw
		}
	}

	rows := make([]*row, 0, len(items))
	for i, item := range items {
		key := p.rowKey(d, e, item, i)
		if prev, ok := old[key]; ok {
			delete(old, key)
			prev.env.setVar(d.LoopVar, item)
			for _, refresh := range prev.refresh {
				refresh()
			}
			rows = append(rows, prev)
			continue
		}
		rows = append(rows, p.mountRow(d, e, item, key))
	}

	for _, rw := range old {
		for _, c := range rw.nodes {
			c.unmount()
		}
	}

	n.loop.rows = rows
	n.Children = n.Children[:0]
	for _, rw := range rows {
		n.Children = append(n.Children, rw.nodes...)
	}
}

func (p *Program) rowKey(d *descriptor.Descriptor, e *env, item any, index int) string {
	if d.Key < 0 {
		return positionalKey(index)
	}
	keyEnv := &env{parent: e, vars: map[string]any{d.LoopVar: item}}
	return formatValue(p.eval(p.tree.Exprs[d.Key].Expr, keyEnv))
}

func (p *Program) mountRow(d *descriptor.Descriptor, e *env, item any, key string) *row {
	rowEnv := &env{
		parent:  e,
		vars:    map[string]any{d.LoopVar: item},
		signals: make(map[int]reactive.SignalID, len(d.OwnSignals)),
	}
	rw := &row{env: rowEnv, key: key}

	if len(d.OwnSignals) > 0 {
		owned := make(map[int]bool, len(d.OwnSignals))
		for _, id := range d.OwnSignals {
			owned[id] = true
		}
		for _, id := range p.tree.InitOrder {
			if owned[id] {
				rowEnv.signals[id] = p.rt.NewSignal(p.initValue(id, rowEnv))
			}
		}
		for _, id := range d.OwnSignals {
			if _, ok := rowEnv.signals[id]; !ok {
				rowEnv.signals[id] = p.rt.NewSignal(nil)
			}
		}
	}

	rw.nodes = p.mountList(d.Template, rowEnv, rw)
	return rw
}

func asList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return nil
}
