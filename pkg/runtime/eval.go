package runtime

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/ferroui/ferro/pkg/descriptor"
)

// eval computes the value of a bound expression. It is pure: mutating forms
// evaluate to their would-be value without writing; writes happen only
// through effect, in handler position.
func (p *Program) eval(e *descriptor.Expr, env *env) any {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case descriptor.ExprLitString:
		return e.Str
	case descriptor.ExprLitNumber:
		return e.Num
	case descriptor.ExprLitBool:
		return e.Bool
	case descriptor.ExprIdent:
		if id, ok := p.signalFor(e.Signal, env); ok {
			return p.rt.Get(id)
		}
		return nil
	case descriptor.ExprLoopVar:
		v, _ := env.loopVar(e.Name)
		return v
	case descriptor.ExprBinary:
		return p.evalBinary(e, env)
	case descriptor.ExprUnary:
		x := p.eval(e.X, env)
		if e.Op == "!" {
			return !truthy(x)
		}
		return -toNumber(x)
	case descriptor.ExprTernary:
		if truthy(p.eval(e.X, env)) {
			return p.eval(e.Y, env)
		}
		return p.eval(e.Z, env)
	case descriptor.ExprInterp:
		var sb strings.Builder
		for _, part := range e.Parts {
			sb.WriteString(formatValue(p.eval(part, env)))
		}
		return sb.String()
	case descriptor.ExprCall:
		return p.evalCall(e, env)
	case descriptor.ExprList:
		out := make([]any, 0, len(e.Parts))
		for _, el := range e.Parts {
			out = append(out, p.eval(el, env))
		}
		return out
	case descriptor.ExprIncDec:
		cur := toNumber(p.signalValue(e.Signal, env))
		if e.Dec {
			return cur - 1
		}
		return cur + 1
	case descriptor.ExprAssign:
		return p.eval(e.Y, env)
	}
	return nil
}

// effect runs a handler expression for its writes.
func (p *Program) effect(e *descriptor.Expr, env *env) {
	if e == nil {
		return
	}
	switch e.Kind {
	case descriptor.ExprIncDec:
		if id, ok := p.signalFor(e.Signal, env); ok {
			delta := float64(1)
			if e.Dec {
				delta = -1
			}
			p.rt.Update(id, func(v any) any { return toNumber(v) + delta })
		}
	case descriptor.ExprAssign:
		if id, ok := p.signalFor(e.Signal, env); ok {
			p.rt.Set(id, p.eval(e.Y, env))
		}
	case descriptor.ExprCall:
		// A mutating method on a state list writes the new list back.
		if e.X != nil && e.X.Kind == descriptor.ExprIdent && mutatingMethod(e.Name) {
			if id, ok := p.signalFor(e.X.Signal, env); ok {
				args := make([]any, 0, len(e.Parts))
				for _, a := range e.Parts {
					args = append(args, p.eval(a, env))
				}
				p.rt.Update(id, func(v any) any {
					return applyListMethod(asList(v), e.Name, args)
				})
				return
			}
		}
		p.eval(e, env)
	default:
		p.eval(e, env)
	}
}

func (p *Program) signalValue(descID int, env *env) any {
	if id, ok := p.signalFor(descID, env); ok {
		return p.rt.Get(id)
	}
	return nil
}

func (p *Program) evalBinary(e *descriptor.Expr, env *env) any {
	switch e.Op {
	case "&&":
		return truthy(p.eval(e.X, env)) && truthy(p.eval(e.Y, env))
	case "||":
		return truthy(p.eval(e.X, env)) || truthy(p.eval(e.Y, env))
	}
	x := p.eval(e.X, env)
	y := p.eval(e.Y, env)
	switch e.Op {
	case "+":
		if xs, ok := x.(string); ok {
			return xs + formatValue(y)
		}
		if ys, ok := y.(string); ok {
			return formatValue(x) + ys
		}
		return toNumber(x) + toNumber(y)
	case "-":
		return toNumber(x) - toNumber(y)
	case "*":
		return toNumber(x) * toNumber(y)
	case "/":
		return toNumber(x) / toNumber(y)
	case "%":
		return math.Mod(toNumber(x), toNumber(y))
	case "==":
		return equal(x, y)
	case "!=":
		return !equal(x, y)
	case "<":
		return compare(x, y) < 0
	case ">":
		return compare(x, y) > 0
	case "<=":
		return compare(x, y) <= 0
	case ">=":
		return compare(x, y) >= 0
	}
	return nil
}

func (p *Program) evalCall(e *descriptor.Expr, env *env) any {
	args := make([]any, 0, len(e.Parts))
	for _, a := range e.Parts {
		args = append(args, p.eval(a, env))
	}
	if e.X == nil {
		return callBuiltin(e.Name, args)
	}
	recv := p.eval(e.X, env)
	return callMethod(recv, e.Name, args)
}

func callBuiltin(name string, args []any) any {
	switch name {
	case "len":
		if len(args) == 1 {
			return lengthOf(args[0])
		}
	case "abs":
		if len(args) == 1 {
			return math.Abs(toNumber(args[0]))
		}
	case "min":
		if len(args) == 2 {
			return math.Min(toNumber(args[0]), toNumber(args[1]))
		}
	case "max":
		if len(args) == 2 {
			return math.Max(toNumber(args[0]), toNumber(args[1]))
		}
	}
	return nil
}

func callMethod(recv any, name string, args []any) any {
	switch name {
	case "len", "length":
		return lengthOf(recv)
	case "upper":
		if s, ok := recv.(string); ok {
			return strings.ToUpper(s)
		}
	case "lower":
		if s, ok := recv.(string); ok {
			return strings.ToLower(s)
		}
	case "contains":
		if len(args) == 1 {
			if s, ok := recv.(string); ok {
				return strings.Contains(s, formatValue(args[0]))
			}
			for _, v := range asList(recv) {
				if equal(v, args[0]) {
					return true
				}
			}
			return false
		}
	case "join":
		sep := ", "
		if len(args) == 1 {
			sep = formatValue(args[0])
		}
		parts := make([]string, 0)
		for _, v := range asList(recv) {
			parts = append(parts, formatValue(v))
		}
		return strings.Join(parts, sep)
	case "at":
		if len(args) == 1 {
			list := asList(recv)
			i := int(toNumber(args[0]))
			if i >= 0 && i < len(list) {
				return list[i]
			}
		}
	case "push", "pop", "removeAt":
		return applyListMethod(asList(recv), name, args)
	}
	return nil
}

// applyListMethod returns a new list; the receiver is never mutated in
// place, so value-equality cutoffs in the engine stay sound.
func applyListMethod(list []any, name string, args []any) any {
	switch name {
	case "push":
		out := make([]any, len(list), len(list)+len(args))
		copy(out, list)
		return append(out, args...)
	case "pop":
		if len(list) == 0 {
			return list
		}
		out := make([]any, len(list)-1)
		copy(out, list[:len(list)-1])
		return out
	case "removeAt":
		if len(args) != 1 {
			return list
		}
		i := int(toNumber(args[0]))
		if i < 0 || i >= len(list) {
			return list
		}
		out := make([]any, 0, len(list)-1)
		out = append(out, list[:i]...)
		return append(out, list[i+1:]...)
	}
	return list
}

func mutatingMethod(name string) bool {
	switch name {
	case "push", "pop", "removeAt":
		return true
	}
	return false
}

func lengthOf(v any) any {
	switch x := v.(type) {
	case string:
		return float64(len(x))
	case []any:
		return float64(len(x))
	}
	return float64(0)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	}
	return true
}

func toNumber(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		n, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func equal(a, b any) bool {
	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func compare(a, b any) int {
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb)
		}
	}
	na, nb := toNumber(a), toNumber(b)
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

// formatValue renders a value the way text content shows it: numbers drop
// a trailing .0, lists join with a comma.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, el := range x {
			parts = append(parts, formatValue(el))
		}
		return strings.Join(parts, ", ")
	}
	return ""
}
