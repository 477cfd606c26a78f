package eval

import (
	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/token"
	"github.com/mqlang/mq/pkg/value"
)

// evalCall resolves and invokes a call, whether by bare name (Call) or a
// dynamically-evaluated callee (CallDynamic, callee already evaluated into
// calleeVal). A user-defined binding shadows a same-named builtin, so a
// program can locally redefine e.g. `len` (spec.md §4.2: def introduces an
// ordinary binding, no special builtin namespace). Optional marks the `?`
// suffix that converts any resulting RuntimeError into None rather than
// propagating it.
func (ev *Evaluator) evalCall(name string, calleeVal value.Value, argNodes []*ast.Node, optional bool, self value.Value, env *Environment, rng token.Range) (value.Value, error) {
	v, err := ev.dispatchCall(name, calleeVal, argNodes, self, env, rng)
	if err != nil {
		if optional && !IsControl(err) {
			if _, isRuntime := err.(*RuntimeError); isRuntime {
				return value.None{}, nil
			}
		}
		return nil, err
	}
	return v, nil
}

func (ev *Evaluator) dispatchCall(name string, calleeVal value.Value, argNodes []*ast.Node, self value.Value, env *Environment, rng token.Range) (value.Value, error) {
	if calleeVal == nil && name != "" {
		if bound, ok := env.Get(name); ok {
			calleeVal = bound
		} else if entry, ok := ev.builtins.lookup(name); ok {
			args, err := ev.evalArgs(argNodes, self, env)
			if err != nil {
				return nil, err
			}
			if entry.arity >= 0 && len(args) != entry.arity {
				return nil, arityError(name, entry.arity, len(args), rng)
			}
			return entry.impl(ev, self, args, rng)
		} else {
			return nil, newErr(NotDefined, rng, "undefined function %q", name)
		}
	}

	args, err := ev.evalArgs(argNodes, self, env)
	if err != nil {
		return nil, err
	}
	return ev.dispatchCallValues(name, calleeVal, args, self, rng)
}

// dispatchCallValues is dispatchCall's core, operating on already-evaluated
// arguments. It is shared by dispatchCall and Invoke.
func (ev *Evaluator) dispatchCallValues(name string, calleeVal value.Value, args []value.Value, self value.Value, rng token.Range) (value.Value, error) {
	switch fn := calleeVal.(type) {
	case *value.Function:
		return ev.callFunction(fn, args, self, rng)
	case *value.NativeFunction:
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return nil, arityError(fn.Name, fn.Arity, len(args), rng)
		}
		return fn.Fn(args)
	default:
		return nil, newErr(InvalidTypes, rng, "%q is not callable", name)
	}
}

// Invoke resolves and calls a builtin, user-defined function, or native
// function by name (bare-name form) or by an already-evaluated callee
// value (dynamic-call form), given already-evaluated arguments. Exported
// for hosts that evaluate arguments themselves; pkg/compiler does not call
// it, since it compiles call nodes to closures over EvalNode.
func (ev *Evaluator) Invoke(name string, calleeVal value.Value, args []value.Value, self value.Value, env *Environment, rng token.Range) (value.Value, error) {
	if calleeVal == nil && name != "" {
		if bound, ok := env.Get(name); ok {
			calleeVal = bound
		} else if entry, ok := ev.builtins.lookup(name); ok {
			if entry.arity >= 0 && len(args) != entry.arity {
				return nil, arityError(name, entry.arity, len(args), rng)
			}
			return entry.impl(ev, self, args, rng)
		} else {
			return nil, newErr(NotDefined, rng, "undefined function %q", name)
		}
	}
	return ev.dispatchCallValues(name, calleeVal, args, self, rng)
}

func (ev *Evaluator) evalArgs(argNodes []*ast.Node, self value.Value, env *Environment) ([]value.Value, error) {
	args := make([]value.Value, len(argNodes))
	for i, a := range argNodes {
		v, err := ev.eval(a, self, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// callFunction binds args to fn's parameters (filling in defaults and
// collecting a trailing variadic parameter into an array), pushes a call
// frame to guard recursion depth, and evaluates the body in a fresh scope
// rooted at fn's closure — lexical, not dynamic, scoping.
func (ev *Evaluator) callFunction(fn *value.Function, args []value.Value, self value.Value, rng token.Range) (value.Value, error) {
	if err := ev.calls.push(fn.Name); err != nil {
		return nil, err
	}
	defer ev.calls.pop()

	closure, ok := fn.Closure.(*Environment)
	if !ok {
		return nil, newErr(InternalError, rng, "function %q has no usable closure", fn.Name)
	}
	callEnv := closure.ChildEnv()

	if err := bindParams(fn.Params, args, callEnv, rng); err != nil {
		return nil, err
	}

	return ev.evalBlock(fn.Body, self, callEnv)
}

func bindParams(params []ast.Param, args []value.Value, env *Environment, rng token.Range) error {
	required := 0
	variadicAt := -1
	for i, p := range params {
		if p.Variadic {
			variadicAt = i
			break
		}
		if p.Default == nil {
			required++
		}
	}

	if variadicAt >= 0 {
		if len(args) < variadicAt {
			return arityError("function", variadicAt, len(args), rng)
		}
		for i := 0; i < variadicAt; i++ {
			env.Define(params[i].Name, args[i], false)
		}
		rest := make([]value.Value, len(args)-variadicAt)
		copy(rest, args[variadicAt:])
		env.Define(params[variadicAt].Name, &value.Array{Elements: rest}, false)
		return nil
	}

	if len(args) < required || len(args) > len(params) {
		return arityError("function", len(params), len(args), rng)
	}
	for i, p := range params {
		if i < len(args) {
			env.Define(p.Name, args[i], false)
			continue
		}
		if p.Default == nil {
			return arityError("function", len(params), len(args), rng)
		}
		// Param.Default is converted by defaultLiteral without consulting any
		// environment: only number/string/bool/none literals are accepted, so
		// a default cannot reference other parameters or bindings.
		defaultVal, err := defaultLiteral(p.Default, rng)
		if err != nil {
			return err
		}
		env.Define(p.Name, defaultVal, false)
	}
	return nil
}

func defaultLiteral(n *ast.Node, rng token.Range) (value.Value, error) {
	switch e := n.Expr.(type) {
	case *ast.NumberLit:
		return value.Number(e.Value), nil
	case *ast.StringLit:
		return value.String(e.Value), nil
	case *ast.BoolLit:
		return value.Bool(e.Value), nil
	case *ast.NoneLit:
		return value.None{}, nil
	default:
		return nil, newErr(InvalidDefinition, rng, "unsupported default parameter expression")
	}
}
