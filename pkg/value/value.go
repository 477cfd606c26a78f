// Package value defines mq's runtime value domain: the concrete data that
// flows through the evaluator and the compiled closure tree alike.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mqlang/mq/pkg/mdast"
)

// Kind tags a Value's concrete type for fast switches in the evaluator and
// type inferencer without a Go type assertion on every access.
type Kind int

const (
	KindNone Kind = iota
	KindNumber
	KindBool
	KindString
	KindArray
	KindDict
	KindMarkdown
	KindFunction
	KindNativeFunction
	KindSymbol
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	case KindMarkdown:
		return "markdown"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Value is any mq runtime value. It is implemented by the concrete types in
// this file; Kind lets callers dispatch without a type switch when only the
// tag is needed.
type Value interface {
	Kind() Kind
	String() string
}

// None is mq's single absent-value sentinel (there is no separate "null"
// and "undefined").
type None struct{}

func (None) Kind() Kind      { return KindNone }
func (None) String() string  { return "none" }

// Bool wraps a boolean.
type Bool bool

func (Bool) Kind() Kind        { return KindBool }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// intDisplayEpsilon governs *display only*: a Number within this distance
// of an integer prints without a decimal point. Equality (`==`) always
// compares the raw float64 bit-for-bit-equivalent value, never rounded —
// see DESIGN.md's Open Question decision on numeric equality.
const intDisplayEpsilon = 1e-9

// Number is mq's sole numeric type: an IEEE-754 double. There is no
// separate integer representation; "looks like an int" is a display
// concern handled by String, not a distinct Kind.
type Number float64

func (Number) Kind() Kind { return KindNumber }

func (n Number) String() string {
	f := float64(n)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if r := math.Round(f); math.Abs(f-r) < intDisplayEpsilon {
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Eq is exact float64 equality, with no epsilon tolerance — the display
// rounding in String never leaks into `==` semantics.
func (n Number) Eq(other Number) bool { return float64(n) == float64(other) }

// String is mq's text type.
type String string

func (String) Kind() Kind       { return KindString }
func (s String) String() string { return string(s) }

// Symbol is an interned bare name used as a dict key or pattern tag,
// distinct from String so `:ok` and `"ok"` remain distinguishable values.
type Symbol string

func (Symbol) Kind() Kind       { return KindSymbol }
func (s Symbol) String() string { return ":" + string(s) }

// Array is an insertion-ordered, 0-indexed sequence. mq arrays have no
// fixed element type; heterogeneous arrays are legal at runtime even
// though the static type system infers a single element type per binding.
type Array struct {
	Elements []Value
}

func NewArray(elems ...Value) *Array { return &Array{Elements: elems} }

func (*Array) Kind() Kind { return KindArray }

func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (a *Array) Len() int { return len(a.Elements) }

// Get returns the element at i, or None with ok=false if out of range —
// callers needing a hard error (spec.md's IndexOutOfBounds) check ok
// themselves rather than this method panicking.
func (a *Array) Get(i int) (Value, bool) {
	if i < 0 || i >= len(a.Elements) {
		return None{}, false
	}
	return a.Elements[i], true
}

// Dict is an insertion-ordered string-keyed map. Iteration order (Keys)
// always matches insertion order, matching mq's observable dict semantics.
type Dict struct {
	keys   []string
	values map[string]Value
}

func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

func (*Dict) Kind() Kind { return KindDict }

func (d *Dict) String() string {
	parts := make([]string, 0, len(d.keys))
	for _, k := range d.keys {
		parts = append(parts, fmt.Sprintf("%q: %s", k, d.values[k].String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Set inserts or updates key, preserving its original insertion position
// on update.
func (d *Dict) Set(key string, v Value) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *Dict) Delete(key string) {
	if _, exists := d.values[key]; !exists {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order. Callers must not mutate the
// returned slice.
func (d *Dict) Keys() []string { return d.keys }

func (d *Dict) Len() int { return len(d.keys) }

// Markdown wraps a single mdast.Node, making the Markdown tree a first
// class pipeline value (mq's "everything is a node or a value" model).
type Markdown struct {
	Node mdast.Node
}

func (*Markdown) Kind() Kind { return KindMarkdown }

func (m *Markdown) String() string {
	if m.Node == nil {
		return ""
	}
	return m.Node.Render()
}

// Truthy implements mq's truthiness rule: None, false, 0, "", and [] are
// falsy; everything else (including empty dicts and markdown nodes) is
// truthy.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case None:
		return false
	case Bool:
		return bool(x)
	case Number:
		return float64(x) != 0
	case String:
		return x != ""
	case *Array:
		return len(x.Elements) != 0
	default:
		return true
	}
}

// Equal implements `==`: structural equality for arrays/dicts, exact
// float64 equality for numbers (no epsilon — display rounding in
// Number.String never affects comparison), and kind-mismatch is always
// unequal (mq has no implicit cross-kind coercion at the value level).
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case None:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av.Eq(b.(Number))
	case String:
		return av == b.(String)
	case Symbol:
		return av == b.(Symbol)
	case *Array:
		bv := b.(*Array)
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Dict:
		bv := b.(*Dict)
		if av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			bval, ok := bv.Get(k)
			if !ok || !Equal(av.values[k], bval) {
				return false
			}
		}
		return true
	case *Markdown:
		bv := b.(*Markdown)
		return av.Node != nil && bv.Node != nil && av.Node.Render() == bv.Node.Render()
	default:
		return false
	}
}
