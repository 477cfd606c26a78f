package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mqlang/mq/pkg/mdast"
	"github.com/mqlang/mq/pkg/token"
	"github.com/mqlang/mq/pkg/value"
)

// nativeImpl is a built-in's Go implementation. self is the current
// pipeline value (spec.md §4.6: "self has the scheme of the current
// pipeline input"); most built-ins ignore it and operate purely on the
// explicit, already-evaluated args, but a few (contains, select, join,
// to_text) read it directly, mirroring how examples/snake_to_camel.rs
// calls join("") expecting the preceding foreach's array result as self.
type nativeImpl func(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error)

// builtinEntry is one registry row: name plus arity (explicit args only,
// not counting the implicit self), grounded on the teacher's
// ExternalFunctionRegistry (internal/interp/external_functions.go) —
// generalized from a name-only map to a name+arity dispatch table per
// spec.md §6's "map from (name, arity) to a native implementation".
type builtinEntry struct {
	arity int // -1 means variadic (any arity accepted)
	impl  nativeImpl
}

type builtinRegistry struct {
	byName map[string]*builtinEntry
}

func defaultBuiltins() *builtinRegistry {
	r := &builtinRegistry{byName: map[string]*builtinEntry{}}
	reg := func(name string, arity int, impl nativeImpl) { r.byName[name] = &builtinEntry{arity, impl} }

	reg("len", -1, builtinLen)
	reg("push", 2, builtinPush)
	reg("keys", 1, builtinKeys)
	reg("values", 1, builtinValues)
	reg("first", -1, builtinFirst)
	reg("last", -1, builtinLast)
	reg("slice", -1, builtinSlice)
	reg("split", -1, builtinSplit)
	reg("add", 2, builtinAdd)
	reg("contains", 1, builtinContains)
	reg("select", 1, builtinSelect)
	reg("join", 1, builtinJoin)
	reg("to_text", 0, builtinToText)
	reg("to_markdown", 0, builtinToMarkdown)
	reg("to_number", 0, builtinToNumber)
	reg("to_string", 0, builtinToString)
	reg("error", 1, builtinError)
	reg("halt", 1, builtinHalt)

	reg("upcase", -1, stringMap(strings.ToUpper))
	reg("downcase", -1, stringMap(strings.ToLower))
	reg("upper", -1, stringMap(strings.ToUpper))
	reg("lower", -1, stringMap(strings.ToLower))
	reg("trim", -1, stringMap(strings.TrimSpace))
	reg("snake_case", -1, stringMap(strcase.ToSnake))
	reg("camel_case", -1, stringMap(strcase.ToCamel))
	reg("kebab_case", -1, stringMap(strcase.ToKebab))
	reg("pascal_case", -1, stringMap(strcase.ToCamel))

	return r
}

func (r *builtinRegistry) lookup(name string) (*builtinEntry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

func arityError(name string, want, got int, rng token.Range) *RuntimeError {
	return newErr(InvalidNumberOfArguments, rng, "%s expects %d argument(s), got %d", name, want, got)
}

func typeError(name, expected string, got value.Value, rng token.Range) *RuntimeError {
	return newErr(InvalidTypes, rng, "%s: expected %s, got %s", name, expected, got.Kind())
}

func asString(name string, v value.Value, rng token.Range) (string, *RuntimeError) {
	s, ok := v.(value.String)
	if !ok {
		return "", typeError(name, "string", v, rng)
	}
	return string(s), nil
}

func asNumber(name string, v value.Value, rng token.Range) (float64, *RuntimeError) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, typeError(name, "number", v, rng)
	}
	return float64(n), nil
}

// primaryArg resolves a builtin's principal operand: the explicit argument
// when the call supplied one (e.g. `upcase(first(word))` in
// examples/snake_to_camel.rs), falling back to self when called with no
// explicit args after a pipe (e.g. `word | upcase()`). Both forms appear
// in the corpus, so single-operand string/sequence builtins accept either.
func primaryArg(self value.Value, args []value.Value) (value.Value, error) {
	switch len(args) {
	case 0:
		return self, nil
	case 1:
		return args[0], nil
	default:
		return nil, fmt.Errorf("too many arguments")
	}
}

// stringMap lifts a pure string->string Go function (e.g. strcase's case
// converters) into a zero-or-one-argument builtin.
func stringMap(f func(string) string) nativeImpl {
	return func(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
		v, aerr := primaryArg(self, args)
		if aerr != nil {
			return nil, arityError("string builtin", 1, len(args), rng)
		}
		s, err := asString("string builtin", v, rng)
		if err != nil {
			return nil, err
		}
		return value.String(f(s)), nil
	}
}

// seqLen returns the length of a string (in runes), array, or dict, for
// len(); first()/last()/slice() do their own type switch over strings and
// arrays.
func seqLen(v value.Value) (int, bool) {
	switch x := v.(type) {
	case value.String:
		return len([]rune(string(x))), true
	case *value.Array:
		return x.Len(), true
	case *value.Dict:
		return x.Len(), true
	}
	return 0, false
}

func builtinLen(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	v, aerr := primaryArg(self, args)
	if aerr != nil {
		return nil, arityError("len", 1, len(args), rng)
	}
	n, ok := seqLen(v)
	if !ok {
		return nil, typeError("len", "string, array, or dict", v, rng)
	}
	return value.Number(n), nil
}

func builtinPush(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	arr, ok := args[0].(*value.Array)
	if !ok {
		return nil, typeError("push", "array", args[0], rng)
	}
	out := make([]value.Value, len(arr.Elements)+1)
	copy(out, arr.Elements)
	out[len(arr.Elements)] = args[1]
	return &value.Array{Elements: out}, nil
}

func builtinKeys(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	d, ok := args[0].(*value.Dict)
	if !ok {
		return nil, typeError("keys", "dict", args[0], rng)
	}
	out := make([]value.Value, len(d.Keys()))
	for i, k := range d.Keys() {
		out[i] = value.String(k)
	}
	return &value.Array{Elements: out}, nil
}

func builtinValues(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	d, ok := args[0].(*value.Dict)
	if !ok {
		return nil, typeError("values", "dict", args[0], rng)
	}
	out := make([]value.Value, len(d.Keys()))
	for i, k := range d.Keys() {
		out[i], _ = d.Get(k)
	}
	return &value.Array{Elements: out}, nil
}

func builtinFirst(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	v, aerr := primaryArg(self, args)
	if aerr != nil {
		return nil, arityError("first", 1, len(args), rng)
	}
	switch x := v.(type) {
	case value.String:
		r := []rune(string(x))
		if len(r) == 0 {
			return nil, newErr(IndexOutOfBounds, rng, "first() on empty string")
		}
		return value.String(string(r[0])), nil
	case *value.Array:
		el, ok := x.Get(0)
		if !ok {
			return nil, newErr(IndexOutOfBounds, rng, "first() on empty array")
		}
		return el, nil
	}
	return nil, typeError("first", "string or array", v, rng)
}

func builtinLast(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	v, aerr := primaryArg(self, args)
	if aerr != nil {
		return nil, arityError("last", 1, len(args), rng)
	}
	switch x := v.(type) {
	case value.String:
		r := []rune(string(x))
		if len(r) == 0 {
			return nil, newErr(IndexOutOfBounds, rng, "last() on empty string")
		}
		return value.String(string(r[len(r)-1])), nil
	case *value.Array:
		el, ok := x.Get(x.Len() - 1)
		if !ok {
			return nil, newErr(IndexOutOfBounds, rng, "last() on empty array")
		}
		return el, nil
	}
	return nil, typeError("last", "string or array", v, rng)
}

// builtinSlice accepts either the explicit 3-arg form slice(seq, start, end)
// (examples/snake_to_camel.rs's `slice(word, 1, len(word))`) or the 2-arg
// piped form `word | slice(1, end)`, taking seq from self.
func builtinSlice(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	var seq, startV, endV value.Value
	switch len(args) {
	case 2:
		seq, startV, endV = self, args[0], args[1]
	case 3:
		seq, startV, endV = args[0], args[1], args[2]
	default:
		return nil, arityError("slice", 3, len(args), rng)
	}
	start, serr := asNumber("slice", startV, rng)
	if serr != nil {
		return nil, serr
	}
	end, eerr := asNumber("slice", endV, rng)
	if eerr != nil {
		return nil, eerr
	}
	lo, hi := int(start), int(end)
	switch x := seq.(type) {
	case value.String:
		r := []rune(string(x))
		if lo < 0 || hi > len(r) || lo > hi {
			return nil, newErr(IndexOutOfBounds, rng, "slice(%d, %d) out of bounds for string of length %d", lo, hi, len(r))
		}
		return value.String(string(r[lo:hi])), nil
	case *value.Array:
		if lo < 0 || hi > len(x.Elements) || lo > hi {
			return nil, newErr(IndexOutOfBounds, rng, "slice(%d, %d) out of bounds for array of length %d", lo, hi, len(x.Elements))
		}
		out := make([]value.Value, hi-lo)
		copy(out, x.Elements[lo:hi])
		return &value.Array{Elements: out}, nil
	}
	return nil, typeError("slice", "string or array", seq, rng)
}

// builtinSplit accepts either the explicit 2-arg form split(x, sep)
// (examples/snake_to_camel.rs's `split(x, "_")`) or the 1-arg piped form
// `x | split(sep)`, taking x from self.
func builtinSplit(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	var x, sepV value.Value
	switch len(args) {
	case 1:
		x, sepV = self, args[0]
	case 2:
		x, sepV = args[0], args[1]
	default:
		return nil, arityError("split", 2, len(args), rng)
	}
	s, serr := asString("split", x, rng)
	if serr != nil {
		return nil, serr
	}
	sep, eerr := asString("split", sepV, rng)
	if eerr != nil {
		return nil, eerr
	}
	parts := strings.Split(s, sep)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.String(p)
	}
	return &value.Array{Elements: out}, nil
}

// builtinAdd implements `add` as the function form of `+` (used by
// examples/snake_to_camel.rs as `add(first_char, rest_str)`), sharing the
// Number/String overload pair the BinOp evaluator uses.
func builtinAdd(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	return evalPlus(args[0], args[1], rng)
}

// builtinContains checks self's text content for needle — self-implicit,
// grounded on `.h | select(contains("title"))` from spec.md §8 scenario 1.
func builtinContains(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	needle, err := asString("contains", args[0], rng)
	if err != nil {
		return nil, err
	}
	return value.Bool(strings.Contains(selfText(self), needle)), nil
}

// builtinSelect keeps self when cond is truthy, otherwise yields None —
// the filtering half of spec.md §8 scenario 1's `select(contains(...))`.
func builtinSelect(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	if value.Truthy(args[0]) {
		return self, nil
	}
	return value.None{}, nil
}

// builtinJoin concatenates self (expected to be an array of strings, as
// produced by a preceding foreach) with sep between elements — self
// implicit, per examples/snake_to_camel.rs's trailing `| join("");`.
func builtinJoin(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	arr, ok := self.(*value.Array)
	if !ok {
		return nil, typeError("join", "array (as self)", self, rng)
	}
	sep, err := asString("join", args[0], rng)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(arr.Elements))
	for i, e := range arr.Elements {
		parts[i] = e.String()
	}
	return value.String(strings.Join(parts, sep)), nil
}

func selfText(self value.Value) string {
	switch x := self.(type) {
	case *value.Markdown:
		return mdast.TextContent(x.Node)
	case value.String:
		return string(x)
	default:
		return self.String()
	}
}

func builtinToText(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	return value.String(selfText(self)), nil
}

func builtinToMarkdown(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	return value.String(self.String()), nil
}

func builtinToNumber(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	s, err := asString("to_number", self, rng)
	if err != nil {
		return nil, err
	}
	f, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if perr != nil {
		return nil, newErr(InvalidTypes, rng, "to_number: %q is not numeric", s)
	}
	return value.Number(f), nil
}

func builtinToString(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	return value.String(self.String()), nil
}

func builtinError(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	return nil, newErr(UserDefined, rng, "%s", args[0].String())
}

func builtinHalt(ev *Evaluator, self value.Value, args []value.Value, rng token.Range) (value.Value, error) {
	return nil, newErr(UserDefined, rng, "halt: %s", args[0].String())
}
