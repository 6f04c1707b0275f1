// Package descriptor defines the compiled interchange tree handed to a
// rendering backend. The shape is deliberately flat and serializable: element
// kind, resolved style set, prop and event bindings by expression id, and
// structural templates for conditional and repeated regions. Backends depend
// on this shape and nothing else from the compiler, so it stays stable
// within a major version.
package descriptor

import (
	"encoding/json"

	"github.com/ferroui/ferro/pkg/styling"
)

// Node kinds.
const (
	KindElement    = "element"
	KindText       = "text"
	KindIf         = "if"
	KindFor        = "for"
	KindUnresolved = "unresolved"
)

// Tree is the complete compiled artifact for one source file.
type Tree struct {
	File      string        `json:"file"`
	Signals   []SignalSpec  `json:"signals,omitempty"`
	InitOrder []int         `json:"initOrder,omitempty"`
	Exprs     []BoundExpr   `json:"exprs,omitempty"`
	Roots     []*Descriptor `json:"roots,omitempty"`

	// Stylesheet is the deduplicated CSS for every StyleClass in the tree.
	Stylesheet string `json:"stylesheet,omitempty"`
}

// SignalSpec declares one state cell. Init indexes Exprs, -1 when the
// initializer failed to resolve.
type SignalSpec struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Init int    `json:"init"`
}

// BoundExpr is one expression with its precomputed dependency edges. Reads
// and Writes index Signals; LoopVars names enclosing loop variables, which
// the runtime supplies per row.
type BoundExpr struct {
	ID       int      `json:"id"`
	Expr     *Expr    `json:"expr"`
	Reads    []int    `json:"reads,omitempty"`
	Writes   []int    `json:"writes,omitempty"`
	LoopVars []string `json:"loopVars,omitempty"`
}

// Descriptor is one node of the compiled tree. Fields are populated by
// kind: elements carry Tag/Styles/Props/Events/Children, text carries Text,
// conditionals carry Branches, loops carry LoopVar/Iterable/Key/Template.
// Unresolved nodes are placeholders for constructs that failed to compile;
// they are kept so the tree shape mirrors the source.
type Descriptor struct {
	Kind string `json:"kind"`

	Tag        string          `json:"tag,omitempty"`
	Name       string          `json:"name,omitempty"`
	StyleClass string          `json:"styleClass,omitempty"`
	Styles     styling.DeclSet `json:"styles,omitempty"`
	Props      map[string]int  `json:"props,omitempty"`
	Events     []EventSpec     `json:"events,omitempty"`
	Children   []*Descriptor   `json:"children,omitempty"`

	Text int `json:"text,omitempty"` // expr id, meaningful when Kind == KindText

	Branches []Branch `json:"branches,omitempty"`

	LoopVar  string        `json:"loopVar,omitempty"`
	Iterable int           `json:"iterable,omitempty"`
	Key      int           `json:"key,omitempty"` // expr id, -1 for positional keys
	Template []*Descriptor `json:"template,omitempty"`

	// OwnSignals lists signals declared inside the loop template. Each
	// mounted row instantiates its own copy, so row state survives keyed
	// reuse but never leaks across rows.
	OwnSignals []int `json:"ownSignals,omitempty"`
}

// EventSpec binds an event name to a handler expression id.
type EventSpec struct {
	Event   string `json:"event"`
	Handler int    `json:"handler"`
}

// Branch is one arm of a conditional region. Cond is -1 for the else arm.
type Branch struct {
	Cond int           `json:"cond"`
	Body []*Descriptor `json:"body,omitempty"`
}

// Encode serializes the tree as indented JSON.
func (t *Tree) Encode() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// Decode parses a tree previously produced by Encode.
func Decode(data []byte) (*Tree, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
