package eval

import "github.com/mqlang/mq/pkg/value"

// binding pairs a value with its mutability, so Assign can distinguish a
// `let` target (immutable) from a `var` target (spec.md §4.6).
type binding struct {
	value   value.Value
	mutable bool
}

// Environment is a linked list of frames from identifier to binding.
// Function calls push a frame whose parent is the function's captured
// environment, not the caller's — lexical, not dynamic, scoping. Grounded
// on the teacher's runtime.Environment, generalized from its flat
// case-insensitive store to mq's case-sensitive, mutability-tagged one.
type Environment struct {
	store  map[string]*binding
	parent *Environment
}

// NewEnvironment creates a root environment with no parent.
func NewEnvironment() *Environment {
	return &Environment{store: map[string]*binding{}}
}

// Child creates a new environment enclosed by e, implementing
// value.Env so a captured *Function's Closure can be typed as
// value.Env without an import cycle.
func (e *Environment) Child() value.Env {
	return &Environment{store: map[string]*binding{}, parent: e}
}

// ChildEnv is Child with the concrete *Environment return type, for
// internal callers that need more than the value.Env interface.
func (e *Environment) ChildEnv() *Environment {
	return &Environment{store: map[string]*binding{}, parent: e}
}

// Get searches e, then its ancestors, for name.
func (e *Environment) Get(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.store[name]; ok {
			return b.value, true
		}
	}
	return nil, false
}

// Define creates name in e's own frame (used by let/var/parameter binding);
// a redefinition in the same frame simply overwrites.
func (e *Environment) Define(name string, v value.Value, mutable bool) {
	e.store[name] = &binding{value: v, mutable: mutable}
}

// Set updates an existing binding found by walking outward from e.
// Returns AssignToImmutable if the binding exists but is `let`-bound, or
// UndefinedVariable if no binding named name exists in the chain.
func (e *Environment) Set(name string, v value.Value) error {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.store[name]; ok {
			if !b.mutable {
				return &RuntimeError{Kind: AssignToImmutable, Message: "cannot assign to immutable binding " + name}
			}
			b.value = v
			return nil
		}
	}
	return &RuntimeError{Kind: UndefinedVariable, Message: "undefined variable " + name}
}

// Has reports whether name is bound anywhere in e's chain.
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// OwnBindings returns a shallow copy of e's own frame only (not its
// ancestors), mapping each bound name to its current value. Used by
// pkg/mqengine's module loader to turn a module's top-level environment,
// after running the module's source once, into the exported-name set
// backing its `*value.Dict` module value.
func (e *Environment) OwnBindings() map[string]value.Value {
	out := make(map[string]value.Value, len(e.store))
	for name, b := range e.store {
		out[name] = b.value
	}
	return out
}
