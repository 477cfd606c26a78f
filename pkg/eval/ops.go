package eval

import (
	"strings"

	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/token"
	"github.com/mqlang/mq/pkg/value"
)

// evalBinOp dispatches a BinOp by its operator text. Arithmetic and
// comparison operators are overloaded the way pkg/infer's binOpCandidates
// describes them statically, re-checked dynamically here since mq values
// carry their own runtime Kind regardless of what the inferencer guessed.
func (ev *Evaluator) evalBinOp(e *ast.BinOp, self value.Value, env *Environment, rng token.Range) (value.Value, error) {
	// && and || short-circuit, so their RHS must not be evaluated eagerly.
	switch e.Op {
	case "&&":
		l, err := ev.eval(e.LHS, self, env)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(l) {
			return value.Bool(false), nil
		}
		r, err := ev.eval(e.RHS, self, env)
		if err != nil {
			return nil, err
		}
		return value.Bool(value.Truthy(r)), nil
	case "||":
		l, err := ev.eval(e.LHS, self, env)
		if err != nil {
			return nil, err
		}
		if value.Truthy(l) {
			return value.Bool(true), nil
		}
		r, err := ev.eval(e.RHS, self, env)
		if err != nil {
			return nil, err
		}
		return value.Bool(value.Truthy(r)), nil
	case "??":
		// Nil-coalescing: evaluate LHS; if it is None or raises a
		// RuntimeError, fall back to RHS (spec.md §8's `??` scenario).
		l, err := ev.eval(e.LHS, self, env)
		if err != nil {
			if IsControl(err) {
				return nil, err
			}
			return ev.eval(e.RHS, self, env)
		}
		if _, isNone := l.(value.None); isNone {
			return ev.eval(e.RHS, self, env)
		}
		return l, nil
	}

	l, err := ev.eval(e.LHS, self, env)
	if err != nil {
		return nil, err
	}
	r, err := ev.eval(e.RHS, self, env)
	if err != nil {
		return nil, err
	}
	return ApplyBinOp(e.Op, l, r, rng)
}

// ApplyBinOp applies one of the non-short-circuiting binary operators
// (+, -, *, /, //, %, ==, !=, <, <=, >, >=) to two already-evaluated
// values. &&, ||, and ?? are not handled here since they require their
// right-hand side unevaluated for short-circuiting — pkg/compiler folds
// this subset at compile time and otherwise falls back to tree-walking
// for those three.
func ApplyBinOp(op string, l, r value.Value, rng token.Range) (value.Value, error) {
	switch op {
	case "+":
		return evalPlus(l, r, rng)
	case "-":
		return evalArith(l, r, rng, "-", func(a, b float64) float64 { return a - b })
	case "*":
		return evalArith(l, r, rng, "*", func(a, b float64) float64 { return a * b })
	case "/":
		return evalDiv(l, r, rng, false)
	case "//":
		return evalDiv(l, r, rng, true)
	case "%":
		return evalMod(l, r, rng)
	case "==":
		return value.Bool(value.Equal(l, r)), nil
	case "!=":
		return value.Bool(!value.Equal(l, r)), nil
	case "<", "<=", ">", ">=":
		return evalCompare(op, l, r, rng)
	default:
		return nil, newErr(InternalError, rng, "unknown binary operator %q", op)
	}
}

func (ev *Evaluator) evalUnOp(e *ast.UnOp, self value.Value, env *Environment, rng token.Range) (value.Value, error) {
	v, err := ev.eval(e.RHS, self, env)
	if err != nil {
		return nil, err
	}
	return ApplyUnOp(e.Op, v, rng)
}

// ApplyUnOp applies ! or unary - to an already-evaluated value; shared
// with pkg/compiler's constant folding.
func ApplyUnOp(op string, v value.Value, rng token.Range) (value.Value, error) {
	switch op {
	case "!":
		return value.Bool(!value.Truthy(v)), nil
	case "-":
		n, ok := v.(value.Number)
		if !ok {
			return nil, typeError("unary -", "number", v, rng)
		}
		return value.Number(-float64(n)), nil
	default:
		return nil, newErr(InternalError, rng, "unknown unary operator %q", op)
	}
}

// evalPlus implements `+`'s three legal overloads: numeric addition,
// string concatenation, and array concatenation (all three also backing
// the `add` builtin, per examples/snake_to_camel.rs's
// `add(first_char, rest_str)`).
func evalPlus(l, r value.Value, rng token.Range) (value.Value, error) {
	if ln, ok := l.(value.Number); ok {
		rn, ok := r.(value.Number)
		if !ok {
			return nil, typeError("+", "number", r, rng)
		}
		return value.Number(float64(ln) + float64(rn)), nil
	}
	if ls, ok := l.(value.String); ok {
		rs, ok := r.(value.String)
		if !ok {
			return nil, typeError("+", "string", r, rng)
		}
		return value.String(string(ls) + string(rs)), nil
	}
	if la, ok := l.(*value.Array); ok {
		ra, ok := r.(*value.Array)
		if !ok {
			return nil, typeError("+", "array", r, rng)
		}
		out := make([]value.Value, 0, len(la.Elements)+len(ra.Elements))
		out = append(out, la.Elements...)
		out = append(out, ra.Elements...)
		return &value.Array{Elements: out}, nil
	}
	return nil, typeError("+", "number, string, or array", l, rng)
}

func evalArith(l, r value.Value, rng token.Range, op string, f func(a, b float64) float64) (value.Value, error) {
	ln, ok := l.(value.Number)
	if !ok {
		return nil, typeError(op, "number", l, rng)
	}
	rn, ok := r.(value.Number)
	if !ok {
		return nil, typeError(op, "number", r, rng)
	}
	return value.Number(f(float64(ln), float64(rn))), nil
}

func evalDiv(l, r value.Value, rng token.Range, floor bool) (value.Value, error) {
	ln, ok := l.(value.Number)
	if !ok {
		return nil, typeError("/", "number", l, rng)
	}
	rn, ok := r.(value.Number)
	if !ok {
		return nil, typeError("/", "number", r, rng)
	}
	if float64(rn) == 0 {
		return nil, newErr(ZeroDivision, rng, "division by zero")
	}
	res := float64(ln) / float64(rn)
	if floor {
		res = floorFloat(res)
	}
	return value.Number(res), nil
}

func evalMod(l, r value.Value, rng token.Range) (value.Value, error) {
	ln, ok := l.(value.Number)
	if !ok {
		return nil, typeError("%", "number", l, rng)
	}
	rn, ok := r.(value.Number)
	if !ok {
		return nil, typeError("%", "number", r, rng)
	}
	if float64(rn) == 0 {
		return nil, newErr(ZeroDivision, rng, "modulo by zero")
	}
	a, b := float64(ln), float64(rn)
	m := a - floorFloat(a/b)*b
	return value.Number(m), nil
}

func floorFloat(f float64) float64 {
	i := int64(f)
	if f < 0 && float64(i) != f {
		i--
	}
	return float64(i)
}

func evalCompare(op string, l, r value.Value, rng token.Range) (value.Value, error) {
	if ln, ok := l.(value.Number); ok {
		rn, ok := r.(value.Number)
		if !ok {
			return nil, typeError(op, "number", r, rng)
		}
		return value.Bool(compareFloat(op, float64(ln), float64(rn))), nil
	}
	if ls, ok := l.(value.String); ok {
		rs, ok := r.(value.String)
		if !ok {
			return nil, typeError(op, "string", r, rng)
		}
		return value.Bool(compareString(op, string(ls), string(rs))), nil
	}
	return nil, typeError(op, "number or string", l, rng)
}

func compareFloat(op string, a, b float64) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func compareString(op string, a, b string) bool {
	switch op {
	case "<":
		return strings.Compare(a, b) < 0
	case "<=":
		return strings.Compare(a, b) <= 0
	case ">":
		return strings.Compare(a, b) > 0
	case ">=":
		return strings.Compare(a, b) >= 0
	}
	return false
}
