package infer

import "github.com/mqlang/mq/pkg/typesys"

// Env is the Algorithm W typing environment: a chain of frames from name to
// type scheme, generalized from vito-dang's pkg/hm.Env/SimpleEnv (a flat
// map there; mq nests one frame per lexical scope instead, mirroring
// pkg/hir's Scope tree and pkg/eval's runtime Environment).
type Env struct {
	parent *Env
	vars   map[string]*typesys.Scheme
}

// NewEnv creates a root environment with no bindings.
func NewEnv() *Env {
	return &Env{vars: map[string]*typesys.Scheme{}}
}

// Child creates a new frame nested under e.
func (e *Env) Child() *Env {
	return &Env{parent: e, vars: map[string]*typesys.Scheme{}}
}

// Add binds name to scheme in e's own frame, shadowing any outer binding.
func (e *Env) Add(name string, scheme *typesys.Scheme) {
	e.vars[name] = scheme
}

// SchemeOf looks up name, walking outward through parent frames.
func (e *Env) SchemeOf(name string) (*typesys.Scheme, bool) {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.vars[name]; ok {
			return s, true
		}
	}
	return nil, false
}

// FreeTypeVar implements typesys.Env: the variables free in every binding
// visible from e, which Generalize must not quantify over (they belong to
// an enclosing, not-yet-generalized scheme).
func (e *Env) FreeTypeVar() typesys.TypeVarSet {
	out := typesys.NewTypeVarSet()
	for env := e; env != nil; env = env.parent {
		for _, s := range env.vars {
			out = out.Union(s.FreeTypeVar())
		}
	}
	return out
}
