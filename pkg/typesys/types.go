// Package typesys implements mq's Hindley-Milner type core: the Type
// grammar, substitutions, schemes, and unification that pkg/infer's
// Algorithm W runs on top of. Grounded on the teacher's sibling example
// pkg/hm (a from-scratch HM implementation), generalized from its
// GraphQL-flavored type grammar (NonNullType, ListType, function args as
// tuples) to mq's grammar from spec.md §4.5:
// Number | String | Bool | None | Markdown | Symbol | Array(T) | Dict(T) |
// Tuple([T…]) | Function([T…], T) | Var(α).
package typesys

import (
	"fmt"
	"strings"
)

// Type is any member of mq's type grammar.
type Type interface {
	Apply(Subs) Type
	FreeTypeVar() TypeVarSet
	Eq(Type) bool
	fmt.Stringer
}

// Primitive is one of the grammar's zero-argument base types.
type Primitive int

const (
	TNumber Primitive = iota
	TString
	TBool
	TNone
	TMarkdown
	TSymbol
)

func (p Primitive) Apply(Subs) Type          { return p }
func (Primitive) FreeTypeVar() TypeVarSet    { return NewTypeVarSet() }
func (p Primitive) Eq(other Type) bool {
	op, ok := other.(Primitive)
	return ok && op == p
}
func (p Primitive) String() string {
	switch p {
	case TNumber:
		return "Number"
	case TString:
		return "String"
	case TBool:
		return "Bool"
	case TNone:
		return "None"
	case TMarkdown:
		return "Markdown"
	case TSymbol:
		return "Symbol"
	}
	return "?"
}

// TypeVariable is an unbound type variable, identified by a unique name
// (e.g. "t0", "t1", ...), unlike the teacher's single-rune variables —
// mq programs can easily exceed 26 simultaneously live variables, so
// names are Fresher-issued strings rather than letters.
type TypeVariable string

func (tv TypeVariable) Apply(s Subs) Type {
	if t, ok := s[tv]; ok {
		return t
	}
	return tv
}
func (tv TypeVariable) FreeTypeVar() TypeVarSet { return NewTypeVarSet(tv) }
func (tv TypeVariable) Eq(other Type) bool {
	ov, ok := other.(TypeVariable)
	return ok && ov == tv
}
func (tv TypeVariable) String() string { return string(tv) }

// Array is a homogeneous sequence type.
type Array struct{ Elem Type }

func NewArray(elem Type) *Array { return &Array{Elem: elem} }
func (a *Array) Apply(s Subs) Type         { return &Array{Elem: a.Elem.Apply(s)} }
func (a *Array) FreeTypeVar() TypeVarSet   { return a.Elem.FreeTypeVar() }
func (a *Array) Eq(other Type) bool {
	oa, ok := other.(*Array)
	return ok && a.Elem.Eq(oa.Elem)
}
func (a *Array) String() string { return "Array(" + a.Elem.String() + ")" }

// Dict is a string-keyed map homogeneous over its value type.
type Dict struct{ Value Type }

func NewDict(value Type) *Dict { return &Dict{Value: value} }
func (d *Dict) Apply(s Subs) Type       { return &Dict{Value: d.Value.Apply(s)} }
func (d *Dict) FreeTypeVar() TypeVarSet { return d.Value.FreeTypeVar() }
func (d *Dict) Eq(other Type) bool {
	od, ok := other.(*Dict)
	return ok && d.Value.Eq(od.Value)
}
func (d *Dict) String() string { return "Dict(" + d.Value.String() + ")" }

// Tuple is a fixed-arity heterogeneous product, used for mixed-literal
// arrays per spec.md §4.5 ("mixed literals form a Tuple").
type Tuple struct{ Elems []Type }

func NewTuple(elems ...Type) *Tuple { return &Tuple{Elems: elems} }
func (t *Tuple) Apply(s Subs) Type {
	out := make([]Type, len(t.Elems))
	for i, e := range t.Elems {
		out[i] = e.Apply(s)
	}
	return &Tuple{Elems: out}
}
func (t *Tuple) FreeTypeVar() TypeVarSet {
	out := NewTypeVarSet()
	for _, e := range t.Elems {
		out = out.Union(e.FreeTypeVar())
	}
	return out
}
func (t *Tuple) Eq(other Type) bool {
	ot, ok := other.(*Tuple)
	if !ok || len(ot.Elems) != len(t.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Eq(ot.Elems[i]) {
			return false
		}
	}
	return true
}
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "Tuple([" + strings.Join(parts, ", ") + "])"
}

// Function is an N-ary function type.
type Function struct {
	Params []Type
	Ret    Type
}

func NewFunction(ret Type, params ...Type) *Function { return &Function{Params: params, Ret: ret} }

func (f *Function) Apply(s Subs) Type {
	params := make([]Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Apply(s)
	}
	return &Function{Params: params, Ret: f.Ret.Apply(s)}
}
func (f *Function) FreeTypeVar() TypeVarSet {
	out := f.Ret.FreeTypeVar()
	for _, p := range f.Params {
		out = out.Union(p.FreeTypeVar())
	}
	return out
}
func (f *Function) Eq(other Type) bool {
	of, ok := other.(*Function)
	if !ok || len(of.Params) != len(f.Params) || !f.Ret.Eq(of.Ret) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Eq(of.Params[i]) {
			return false
		}
	}
	return true
}
func (f *Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return "Function([" + strings.Join(parts, ", ") + "], " + f.Ret.String() + ")"
}
