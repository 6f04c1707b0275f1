package descriptor

import (
	"reflect"
	"testing"

	"github.com/ferroui/ferro/pkg/styling"
)

func TestTreeEncodeDecodeStable(t *testing.T) {
	styles, _ := styling.Resolve([]string{"red", "large"})
	tree := &Tree{
		File: "counter.fro",
		Signals: []SignalSpec{
			{ID: 0, Name: "counter", Init: 0},
		},
		InitOrder: []int{0},
		Exprs: []BoundExpr{
			{ID: 0, Expr: &Expr{Kind: ExprLitNumber, Num: 0}},
			{ID: 1, Expr: &Expr{Kind: ExprInterp, Parts: []*Expr{
				{Kind: ExprLitString, Str: "Count: "},
				{Kind: ExprIdent, Signal: 0, Name: "counter"},
			}}, Reads: []int{0}},
			{ID: 2, Expr: &Expr{Kind: ExprIncDec, Signal: 0, Name: "counter"}, Reads: []int{0}, Writes: []int{0}},
		},
		Roots: []*Descriptor{
			{
				Kind:   KindElement,
				Tag:    "p",
				Name:   "greeting",
				Styles: styles,
				Children: []*Descriptor{
					{Kind: KindText, Text: 1},
				},
			},
			{
				Kind:   KindElement,
				Tag:    "button",
				Name:   "button",
				Events: []EventSpec{{Event: "click", Handler: 2}},
			},
		},
	}

	data, err := tree.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(tree, back) {
		t.Errorf("Round trip changed the tree:\n%#v\n%#v", tree, back)
	}
}
