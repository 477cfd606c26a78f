package typesys

// Env is the minimal environment surface Generalize needs: the set of
// type variables already free (bound by an enclosing scope) so they are
// excluded from quantification.
type Env interface {
	FreeTypeVar() TypeVarSet
}

// Generalize closes over every type variable free in t but not free in
// env, producing t's let-bound polymorphic Scheme (spec.md §4.5 step 2).
// Grounded on pkg/hm's Generalize.
func Generalize(env Env, t Type) *Scheme {
	envFtv := env.FreeTypeVar()
	tFtv := t.FreeTypeVar()
	var quantified []TypeVariable
	for tv := range tFtv {
		if !envFtv.Contains(tv) {
			quantified = append(quantified, tv)
		}
	}
	return NewScheme(quantified, t)
}

// Fresher issues fresh, pairwise-distinct type variables.
type Fresher interface {
	Fresh() TypeVariable
}

// CounterFresher is the default Fresher: sequential "t0", "t1", ... names.
type CounterFresher struct {
	n int
}

func NewCounterFresher() *CounterFresher { return &CounterFresher{} }

func (f *CounterFresher) Fresh() TypeVariable {
	tv := TypeVariable("t" + itoa(f.n))
	f.n++
	return tv
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	return string(buf)
}

// Instantiate replaces every bound variable in scheme with a fresh one
// (spec.md §4.5 step 3), producing a monomorphic instance ready for
// unification at this use site.
func Instantiate(fresher Fresher, scheme *Scheme) Type {
	if scheme.Monomorphic() {
		return scheme.T
	}
	subs := NewSubs()
	for _, tv := range scheme.Vars {
		subs.Add(tv, fresher.Fresh())
	}
	return scheme.T.Apply(subs)
}
