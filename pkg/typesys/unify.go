package typesys

import "fmt"

// UnificationError reports two types that cannot be made equal.
type UnificationError struct{ Have, Want Type }

func (e *UnificationError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s", e.Have, e.Want)
}

// OccursCheckError reports an attempt to bind a type variable to a type
// that contains it (which would build an infinite type).
type OccursCheckError struct {
	Var TypeVariable
	T   Type
}

func (e *OccursCheckError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs in %s", e.Var, e.T)
}

// WrongArityError reports a Function/Tuple whose arity doesn't match.
type WrongArityError struct{ Have, Want int }

func (e *WrongArityError) Error() string {
	return fmt.Sprintf("wrong arity: have %d, want %d", e.Have, e.Want)
}

// Unify computes the most general substitution making a and b structurally
// equal, or returns an error from the taxonomy above. Grounded on pkg/hm's
// Assignable, generalized from supertype-coercion (mq's type grammar has
// no subtyping) to plain structural unification plus the occurs check.
func Unify(a, b Type) (Subs, error) {
	if tv, ok := a.(TypeVariable); ok {
		return bindVar(tv, b)
	}
	if tv, ok := b.(TypeVariable); ok {
		return bindVar(tv, a)
	}

	switch ta := a.(type) {
	case Primitive:
		if tb, ok := b.(Primitive); ok && ta == tb {
			return NewSubs(), nil
		}
		return nil, &UnificationError{a, b}

	case *Array:
		tb, ok := b.(*Array)
		if !ok {
			return nil, &UnificationError{a, b}
		}
		return Unify(ta.Elem, tb.Elem)

	case *Dict:
		tb, ok := b.(*Dict)
		if !ok {
			return nil, &UnificationError{a, b}
		}
		return Unify(ta.Value, tb.Value)

	case *Tuple:
		tb, ok := b.(*Tuple)
		if !ok {
			return nil, &UnificationError{a, b}
		}
		if len(ta.Elems) != len(tb.Elems) {
			return nil, &WrongArityError{len(ta.Elems), len(tb.Elems)}
		}
		subs := NewSubs()
		for i := range ta.Elems {
			s, err := Unify(ta.Elems[i].Apply(subs), tb.Elems[i].Apply(subs))
			if err != nil {
				return nil, err
			}
			subs = subs.Compose(s)
		}
		return subs, nil

	case *Function:
		tb, ok := b.(*Function)
		if !ok {
			return nil, &UnificationError{a, b}
		}
		if len(ta.Params) != len(tb.Params) {
			return nil, &WrongArityError{len(ta.Params), len(tb.Params)}
		}
		subs := NewSubs()
		for i := range ta.Params {
			s, err := Unify(ta.Params[i].Apply(subs), tb.Params[i].Apply(subs))
			if err != nil {
				return nil, err
			}
			subs = subs.Compose(s)
		}
		s, err := Unify(ta.Ret.Apply(subs), tb.Ret.Apply(subs))
		if err != nil {
			return nil, err
		}
		return subs.Compose(s), nil

	default:
		if a.Eq(b) {
			return NewSubs(), nil
		}
		return nil, &UnificationError{a, b}
	}
}

func bindVar(tv TypeVariable, t Type) (Subs, error) {
	if tv2, ok := t.(TypeVariable); ok && tv2 == tv {
		return NewSubs(), nil
	}
	if t.FreeTypeVar().Contains(tv) {
		return nil, &OccursCheckError{tv, t}
	}
	subs := NewSubs()
	subs.Add(tv, t)
	return subs, nil
}
