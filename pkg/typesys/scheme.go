package typesys

import "strings"

// Scheme is a polymorphic type `∀ᾱ. T` (spec.md §4.5's TypeScheme).
// Grounded on pkg/hm's Scheme.
type Scheme struct {
	Vars []TypeVariable
	T    Type
}

func NewScheme(vars []TypeVariable, t Type) *Scheme { return &Scheme{Vars: vars, T: t} }

// Monomorphic reports whether the scheme binds no variables (so Type can
// be used directly without instantiation).
func (s *Scheme) Monomorphic() bool { return len(s.Vars) == 0 }

// Apply substitutes free variables in the scheme's body, leaving the
// scheme's own bound variables untouched (they're shadowed, not free).
func (s *Scheme) Apply(subs Subs) *Scheme {
	filtered := make(Subs, len(subs))
	for tv, t := range subs {
		bound := false
		for _, v := range s.Vars {
			if v == tv {
				bound = true
				break
			}
		}
		if !bound {
			filtered[tv] = t
		}
	}
	return &Scheme{Vars: s.Vars, T: s.T.Apply(filtered)}
}

func (s *Scheme) FreeTypeVar() TypeVarSet {
	ftv := s.T.FreeTypeVar()
	for _, v := range s.Vars {
		ftv.Remove(v)
	}
	return ftv
}

func (s *Scheme) String() string {
	if len(s.Vars) == 0 {
		return s.T.String()
	}
	names := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		names[i] = string(v)
	}
	return "forall " + strings.Join(names, " ") + ". " + s.T.String()
}
