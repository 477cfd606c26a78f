package typesys

import "testing"

func TestUnifyPrimitives(t *testing.T) {
	if _, err := Unify(TNumber, TNumber); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := Unify(TNumber, TString); err == nil {
		t.Errorf("expected a UnificationError")
	}
}

func TestUnifyVariable(t *testing.T) {
	v := TypeVariable("t0")
	subs, err := Unify(v, TNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := subs.Get(v)
	if !ok || !got.Eq(TNumber) {
		t.Errorf("subs[%s] = %v, want Number", v, got)
	}
}

func TestOccursCheck(t *testing.T) {
	v := TypeVariable("t0")
	arr := NewArray(v)
	_, err := Unify(v, arr)
	if err == nil {
		t.Fatalf("expected an OccursCheckError")
	}
	if _, ok := err.(*OccursCheckError); !ok {
		t.Errorf("got %T, want *OccursCheckError", err)
	}
}

func TestUnifyFunctionArity(t *testing.T) {
	f1 := NewFunction(TNumber, TNumber)
	f2 := NewFunction(TNumber, TNumber, TNumber)
	_, err := Unify(f1, f2)
	if _, ok := err.(*WrongArityError); !ok {
		t.Errorf("got %v (%T), want *WrongArityError", err, err)
	}
}

func TestGeneralizeAndInstantiate(t *testing.T) {
	fresher := NewCounterFresher()
	v := fresher.Fresh()
	// identity: Function([v], v), generalized in the empty environment.
	idType := NewFunction(v, v)
	scheme := Generalize(emptyEnv{}, idType)
	if len(scheme.Vars) != 1 {
		t.Fatalf("got %d quantified vars, want 1", len(scheme.Vars))
	}

	inst1 := Instantiate(fresher, scheme).(*Function)
	inst2 := Instantiate(fresher, scheme).(*Function)
	if inst1.Params[0].Eq(inst2.Params[0]) {
		t.Errorf("two instantiations of the same scheme should get distinct fresh vars")
	}
	if !inst1.Params[0].Eq(inst1.Ret) {
		t.Errorf("identity's param and return should still unify to the same fresh var within one instantiation")
	}
}

type emptyEnv struct{}

func (emptyEnv) FreeTypeVar() TypeVarSet { return NewTypeVarSet() }

func TestSubsCompose(t *testing.T) {
	a := TypeVariable("a")
	b := TypeVariable("b")
	s1 := NewSubs()
	s1.Add(a, b)
	s2 := NewSubs()
	s2.Add(b, TNumber)

	composed := s1.Compose(s2)
	got, ok := composed.Get(a)
	if !ok || !got.Eq(TNumber) {
		t.Errorf("composed[a] = %v, want Number (a -> b -> Number)", got)
	}
}
