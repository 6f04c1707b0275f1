// Package resolver binds names in a parsed file: every `!let` becomes a
// signal, every expression becomes a binding with explicit read and write
// edges, and the initializer graph is ordered topologically so downstream
// stages never re-derive dependencies.
package resolver

import (
	"sort"
	"strings"

	"github.com/ferroui/ferro/pkg/ast"
	"github.com/ferroui/ferro/pkg/diag"
	"github.com/ferroui/ferro/pkg/token"
)

// SignalID identifies one declared state binding within a file.
type SignalID int

// ExprID identifies one bound expression within a file.
type ExprID int

// Signal is one `!let` declaration.
type Signal struct {
	ID   SignalID
	Name string
	Init ExprID
	Pos  token.Span
}

// Binding is one expression occurrence with its resolved dependency edges.
// Reads and Writes list signal dependencies in first-occurrence order.
// LoopVars names the enclosing loop variables the expression references;
// such a binding must be re-instantiated per loop row. Unresolved is set
// when the expression mentioned an undefined name: the binding survives so
// code generation can emit a placeholder slot instead of dropping the node.
type Binding struct {
	ID         ExprID
	Expr       ast.Expr
	Reads      []SignalID
	Writes     []SignalID
	LoopVars   []string
	Unresolved bool
}

// Result is the resolved view of one file.
type Result struct {
	File     *ast.File
	Signals  []Signal
	Bindings []Binding

	// InitOrder lists signals in dependency order: evaluating initializers
	// in this order never reads a signal before it has a value. Signals on
	// or downstream of a reported cycle are omitted.
	InitOrder []SignalID

	exprIDs     map[ast.Expr]ExprID
	declSignals map[*ast.StateDecl]SignalID
}

// SignalForDecl returns the signal owned by a declaration statement. A
// duplicate declaration maps to the signal of the first one.
func (r *Result) SignalForDecl(d *ast.StateDecl) (SignalID, bool) {
	id, ok := r.declSignals[d]
	return id, ok
}

// BindingFor returns the binding assigned to an expression node.
func (r *Result) BindingFor(e ast.Expr) (Binding, bool) {
	id, ok := r.exprIDs[e]
	if !ok {
		return Binding{}, false
	}
	return r.Bindings[id], true
}

// SignalByName returns the top-level signal with the given name.
func (r *Result) SignalByName(name string) (Signal, bool) {
	for _, s := range r.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return Signal{}, false
}

type symbolKind uint8

const (
	symState symbolKind = iota
	symLoopVar
)

type symbol struct {
	kind   symbolKind
	signal SignalID
	pos    token.Span
}

type scope struct {
	parent *scope
	names  map[string]symbol
}

func (s *scope) lookup(name string) (symbol, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if sym, ok := sc.names[name]; ok {
			return sym, true
		}
	}
	return symbol{}, false
}

type resolver struct {
	res   *Result
	diags diag.List
}

// Resolve binds file and returns the result plus semantic diagnostics.
// State declared with `!let` is hoisted within its block, so an initializer
// may reference a signal declared further down; the returned InitOrder is
// the safe evaluation order, and genuine cycles are reported instead.
func Resolve(file *ast.File) (*Result, diag.List) {
	r := &resolver{res: &Result{
		File:        file,
		exprIDs:     make(map[ast.Expr]ExprID),
		declSignals: make(map[*ast.StateDecl]SignalID),
	}}
	top := &scope{names: make(map[string]symbol)}
	r.declare(file.Stmts, top)
	r.stmts(file.Stmts, top)
	r.orderInits()
	r.diags.Sort()
	return r.res, r.diags
}

// declare hoists the `!let` declarations of one block into sc. The second
// declaration of a name is the erroneous one.
func (r *resolver) declare(stmts []ast.Stmt, sc *scope) {
	for _, s := range stmts {
		decl, ok := s.(*ast.StateDecl)
		if !ok {
			continue
		}
		if prev, exists := sc.names[decl.Name]; exists && prev.kind == symState {
			r.diags.Errorf(diag.DuplicateDeclaration, decl.Pos,
				"%s is already declared at line %d", decl.Name, prev.pos.Line)
			r.res.declSignals[decl] = prev.signal
			continue
		}
		id := SignalID(len(r.res.Signals))
		r.res.Signals = append(r.res.Signals, Signal{ID: id, Name: decl.Name, Init: -1, Pos: decl.Pos})
		sc.names[decl.Name] = symbol{kind: symState, signal: id, pos: decl.Pos}
		r.res.declSignals[decl] = id
	}
}

func (r *resolver) stmts(stmts []ast.Stmt, sc *scope) {
	for _, s := range stmts {
		r.stmt(s, sc)
	}
}

func (r *resolver) stmt(s ast.Stmt, sc *scope) {
	switch n := s.(type) {
	case *ast.StateDecl:
		sym, ok := sc.names[n.Name]
		if !ok || sym.kind != symState {
			// Duplicate declaration; the first one owns the signal.
			r.bind(n.Init, sc)
			return
		}
		if r.res.Signals[sym.signal].Init >= 0 {
			r.bind(n.Init, sc)
			return
		}
		r.res.Signals[sym.signal].Init = r.bind(n.Init, sc)
	case *ast.Element:
		for _, in := range n.Inline {
			r.bind(in, sc)
		}
		for _, p := range n.Props {
			r.bind(p.Value, sc)
		}
		for _, ev := range n.Events {
			r.bindHandler(ev.Handler, sc)
		}
		r.block(n.Children, sc)
	case *ast.Text:
		r.bind(n.Value, sc)
	case *ast.If:
		for _, cl := range n.Clauses {
			if cl.Cond != nil {
				r.bind(cl.Cond, sc)
			}
			r.block(cl.Body, sc)
		}
	case *ast.For:
		r.bind(n.Iterable, sc)
		body := &scope{parent: sc, names: map[string]symbol{
			n.Var: {kind: symLoopVar, pos: n.Pos},
		}}
		r.declare(n.Body, body)
		r.stmts(n.Body, body)
	case *ast.While:
		r.bind(n.Cond, sc)
		r.block(n.Body, sc)
	}
}

func (r *resolver) block(stmts []ast.Stmt, parent *scope) {
	if len(stmts) == 0 {
		return
	}
	sc := &scope{parent: parent, names: make(map[string]symbol)}
	r.declare(stmts, sc)
	r.stmts(stmts, sc)
}

// bind assigns an ExprID and computes dependency edges for e.
func (r *resolver) bind(e ast.Expr, sc *scope) ExprID {
	return r.bindWith(e, sc, false)
}

// bindHandler is bind for event-handler position, where assignment and
// increment forms produce write edges.
func (r *resolver) bindHandler(e ast.Expr, sc *scope) ExprID {
	return r.bindWith(e, sc, true)
}

func (r *resolver) bindWith(e ast.Expr, sc *scope, handler bool) ExprID {
	id := ExprID(len(r.res.Bindings))
	b := Binding{ID: id, Expr: e}
	w := &edgeWalker{r: r, sc: sc, b: &b, handler: handler}
	w.walk(e)
	r.res.Bindings = append(r.res.Bindings, b)
	r.res.exprIDs[e] = id
	return id
}

type edgeWalker struct {
	r       *resolver
	sc      *scope
	b       *Binding
	handler bool

	reads    map[SignalID]bool
	writes   map[SignalID]bool
	loopVars map[string]bool
}

func (w *edgeWalker) read(id SignalID) {
	if w.reads == nil {
		w.reads = make(map[SignalID]bool)
	}
	if !w.reads[id] {
		w.reads[id] = true
		w.b.Reads = append(w.b.Reads, id)
	}
}

func (w *edgeWalker) write(id SignalID) {
	if w.writes == nil {
		w.writes = make(map[SignalID]bool)
	}
	if !w.writes[id] {
		w.writes[id] = true
		w.b.Writes = append(w.b.Writes, id)
	}
}

func (w *edgeWalker) loopVar(name string) {
	if w.loopVars == nil {
		w.loopVars = make(map[string]bool)
	}
	if !w.loopVars[name] {
		w.loopVars[name] = true
		w.b.LoopVars = append(w.b.LoopVars, name)
	}
}

func (w *edgeWalker) walk(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
	case *ast.Ident:
		sym, ok := w.sc.lookup(n.Name)
		if !ok {
			w.r.diags.Errorf(diag.UndefinedReference, n.Pos, "undefined name %s", n.Name)
			w.b.Unresolved = true
			return
		}
		if sym.kind == symLoopVar {
			w.loopVar(n.Name)
			return
		}
		w.read(sym.signal)
	case *ast.Binary:
		w.walk(n.L)
		w.walk(n.R)
	case *ast.Unary:
		w.walk(n.X)
	case *ast.Ternary:
		w.walk(n.Cond)
		w.walk(n.Then)
		w.walk(n.Else)
	case *ast.Interp:
		for _, part := range n.Parts {
			w.walk(part)
		}
	case *ast.Call:
		if n.Recv != nil {
			w.walk(n.Recv)
		}
		for _, a := range n.Args {
			w.walk(a)
		}
	case *ast.ListLit:
		for _, el := range n.Elems {
			w.walk(el)
		}
	case *ast.IncDec:
		w.walkTarget(n.Name, n.Pos, true)
	case *ast.AssignExpr:
		w.walkTarget(n.Name, n.Pos, false)
		w.walk(n.Value)
	}
}

// walkTarget resolves the left side of an assignment or increment. Only
// event handlers may mutate, and only state is mutable.
func (w *edgeWalker) walkTarget(name string, pos token.Span, alsoRead bool) {
	sym, ok := w.sc.lookup(name)
	if !ok {
		w.r.diags.Errorf(diag.UndefinedReference, pos, "undefined name %s", name)
		w.b.Unresolved = true
		return
	}
	if sym.kind == symLoopVar {
		w.r.diags.Errorf(diag.UndefinedReference, pos,
			"loop variable %s cannot be assigned", name)
		w.b.Unresolved = true
		return
	}
	if !w.handler {
		w.r.diags.Errorf(diag.UndefinedReference, pos,
			"%s can only be modified inside an event handler", name)
		w.b.Unresolved = true
		return
	}
	if alsoRead {
		w.read(sym.signal)
	}
	w.write(sym.signal)
}

// orderInits topologically sorts the initializer dependency graph. A cycle
// is reported once, naming every signal on it, at the earliest declaration;
// signals on (or downstream of) the cycle drop out of the order and their
// initializer bindings are marked unresolved, so every other signal still
// initializes normally.
func (r *resolver) orderInits() {
	n := len(r.res.Signals)
	if n == 0 {
		return
	}
	indegree := make([]int, n)
	dependents := make([][]SignalID, n)
	for _, sig := range r.res.Signals {
		if sig.Init < 0 {
			continue
		}
		for _, dep := range r.res.Bindings[sig.Init].Reads {
			dependents[dep] = append(dependents[dep], sig.ID)
			indegree[sig.ID]++
		}
	}

	queue := make([]SignalID, 0, n)
	for id := 0; id < n; id++ {
		if indegree[id] == 0 {
			queue = append(queue, SignalID(id))
		}
	}
	order := make([]SignalID, 0, n)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	r.res.InitOrder = order
	if len(order) == n {
		return
	}

	var cyclic []string
	first := token.Span{}
	for id := 0; id < n; id++ {
		if indegree[id] > 0 {
			sig := r.res.Signals[id]
			cyclic = append(cyclic, sig.Name)
			if sig.Init >= 0 {
				r.res.Bindings[sig.Init].Unresolved = true
			}
			if first.Line == 0 || sig.Pos.Line < first.Line {
				first = sig.Pos
			}
		}
	}
	sort.Strings(cyclic)
	r.diags.Errorf(diag.CyclicDependency, first,
		"state initializers depend on each other: %s", strings.Join(cyclic, ", "))
}
