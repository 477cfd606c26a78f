// Package eval is mq's tree-walking evaluator: it executes a parsed
// program directly against its AST, independent of pkg/hir's scope
// resolution and pkg/infer's type inference, since mq is dynamically typed
// at runtime (spec.md §7: "execution proceeds regardless [of type errors]
// because the language is dynamically typed at runtime"). Grounded on the
// teacher's internal/interp package, generalized from DWScript's
// statically-typed object model to mq's dynamic Environment lookups.
package eval

import (
	"fmt"

	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/token"
	"github.com/mqlang/mq/pkg/value"
)

// zeroRange is used where no source span is available (internal recursion
// guard failures, synthesized nodes).
var zeroRange token.Range

// Evaluator holds the state shared across one program run: the native
// builtin registry, the active call-depth guard, and the selector
// compilation cache (selectors are re-seen across foreach iterations, so
// compiling once per Selector.Src avoids redundant parsing).
type Evaluator struct {
	builtins  *builtinRegistry
	calls     *callStack
	selectors map[string]*SelectorProgram
}

// New creates an Evaluator with the default builtin registry and the
// spec's default recursion ceiling.
func New() *Evaluator {
	return &Evaluator{
		builtins:  defaultBuiltins(),
		calls:     newCallStack(defaultMaxDepth),
		selectors: map[string]*SelectorProgram{},
	}
}

// SetMaxDepth overrides the recursion ceiling (0 restores the default).
func (ev *Evaluator) SetMaxDepth(n int) {
	ev.calls = newCallStack(n)
}

// RegisterNative installs or replaces a native builtin, letting a host
// (pkg/mqengine) extend the registry beyond the default catalog.
func (ev *Evaluator) RegisterNative(name string, arity int, impl nativeImpl) {
	ev.builtins.byName[name] = &builtinEntry{arity: arity, impl: impl}
}

// EvalNode evaluates a single AST node against this Evaluator's machinery.
// Exported so pkg/compiler's closures can delegate any node shape it does
// not itself specialize (everything but constant-foldable arithmetic)
// straight back to the tree-walker, which keeps the compiled and
// tree-walked paths equivalent by construction rather than by duplicated
// logic.
func (ev *Evaluator) EvalNode(n *ast.Node, self value.Value, env *Environment) (value.Value, error) {
	return ev.eval(n, self, env)
}

// Run evaluates a whole program (one file's top-level statements) against
// an initial self value, threading self through the implicit top-level
// pipeline the way a sequence of piped expressions would: each top-level
// statement's result becomes self for the next, except declarations
// (def/macro/let/var/import/include/module), which only have side effects
// on env and leave self unchanged (spec.md §4.6 point 1: "self rebinds
// after every non-declaration top-level statement").
func (ev *Evaluator) Run(nodes []*ast.Node, self value.Value, env *Environment) (value.Value, error) {
	macros := macroTable{}
	collectMacros(nodes, macros)
	expanded, err := expandMacros(nodes, macros)
	if err != nil {
		return nil, err
	}

	cur := self
	for _, n := range expanded {
		v, isDecl, err := ev.evalTop(n, cur, env)
		if err != nil {
			return nil, err
		}
		if !isDecl {
			cur = v
		}
	}
	return cur, nil
}

// IsDeclaration reports whether a top-level node is a declaration
// (def/macro, let, var, import, include, module) rather than an ordinary
// expression statement — declarations only have side effects on env and
// never rebind the implicit top-level self. Exported so pkg/compiler's
// top-level sequencing matches Run's self-threading rule exactly.
func IsDeclaration(n *ast.Node) bool {
	switch n.Expr.(type) {
	case *ast.Def, *ast.Let, *ast.Var, *ast.Import, *ast.Include, *ast.Module:
		return true
	default:
		return false
	}
}

// evalTop evaluates one top-level node, reporting whether it was a
// declaration (which does not rebind self).
func (ev *Evaluator) evalTop(n *ast.Node, self value.Value, env *Environment) (value.Value, bool, error) {
	v, err := ev.eval(n, self, env)
	return v, IsDeclaration(n), err
}

// eval is the core recursive evaluator: n is the node to evaluate, self is
// the current pipeline value (bound to the `self` keyword), env is the
// lexical environment for identifier lookups.
func (ev *Evaluator) eval(n *ast.Node, self value.Value, env *Environment) (value.Value, error) {
	if n == nil {
		return value.None{}, nil
	}
	switch e := n.Expr.(type) {
	case *ast.NumberLit:
		return value.Number(e.Value), nil
	case *ast.StringLit:
		return value.String(e.Value), nil
	case *ast.BoolLit:
		return value.Bool(e.Value), nil
	case *ast.NoneLit:
		return value.None{}, nil

	case *ast.Ident:
		if v, ok := env.Get(e.Name); ok {
			return v, nil
		}
		return nil, newErr(UndefinedVariable, n.Range, "undefined variable %q", e.Name)

	case *ast.Self:
		return self, nil

	case *ast.Nodes:
		if v, ok := env.Get("nodes"); ok {
			return v, nil
		}
		return value.None{}, nil

	case *ast.Break:
		return nil, breakErr(n.Range)
	case *ast.Continue:
		return nil, continueErr(n.Range)

	case *ast.InterpolatedString:
		return ev.evalInterpolatedString(e, self, env)

	case *ast.Selector:
		return ev.evalSelector(e, self, n.Range)

	case *ast.QualifiedAccess:
		return ev.evalQualifiedAccess(e, env, n.Range)

	case *ast.Let:
		v, err := ev.eval(e.Value, self, env)
		if err != nil {
			return nil, err
		}
		env.Define(e.Binder, v, false)
		return v, nil

	case *ast.Var:
		v, err := ev.eval(e.Value, self, env)
		if err != nil {
			return nil, err
		}
		env.Define(e.Binder, v, true)
		return v, nil

	case *ast.Assign:
		return ev.evalAssign(e, self, env, n.Range)

	case *ast.Def:
		fn := &value.Function{Name: e.Name, Params: e.Params, Body: e.Body, Closure: env, IsMacro: e.IsMacro}
		env.Define(e.Name, fn, false)
		return fn, nil

	case *ast.Fn:
		return &value.Function{Params: e.Params, Body: e.Body, Closure: env}, nil

	case *ast.Call:
		return ev.evalCall(e.Name, nil, e.Args, e.Optional, self, env, n.Range)

	case *ast.CallDynamic:
		callee, err := ev.eval(e.Callee, self, env)
		if err != nil {
			return nil, err
		}
		return ev.evalCall("", callee, e.Args, e.Optional, self, env, n.Range)

	case *ast.Pipe:
		lhs, err := ev.eval(e.LHS, self, env)
		if err != nil {
			return nil, err
		}
		return ev.eval(e.RHS, lhs, env)

	case *ast.BinOp:
		return ev.evalBinOp(e, self, env, n.Range)

	case *ast.UnOp:
		return ev.evalUnOp(e, self, env, n.Range)

	case *ast.If:
		return ev.evalIf(e, self, env)

	case *ast.While:
		return ev.evalWhile(e, self, env)

	case *ast.Until:
		return ev.evalUntil(e, self, env)

	case *ast.Loop:
		return ev.evalLoop(e, self, env)

	case *ast.Foreach:
		return ev.evalForeach(e, self, env)

	case *ast.Do:
		return ev.evalBlock(e.Block, self, env.ChildEnv())

	case *ast.Try:
		return ev.evalTry(e, self, env)

	case *ast.Match:
		return ev.evalMatch(e, self, env)

	case *ast.Module:
		return ev.evalBlock(e.Body, self, env)

	case *ast.Include:
		if v, err := ev.resolveModuleEnv(e.Name, env); err == nil {
			importAllInto(v, env)
		} else {
			return nil, err
		}
		return value.None{}, nil

	case *ast.Import:
		modEnv, err := ev.resolveModuleEnv(e.Name, env)
		if err != nil {
			return nil, err
		}
		alias := e.Alias
		if alias == "" {
			alias = e.Name
		}
		env.Define(alias, moduleValue(modEnv), false)
		return value.None{}, nil

	case *ast.Quote:
		return nil, newErr(QuoteNotAllowedInRuntimeContext, n.Range, "quote is only valid inside a macro body")

	case *ast.Unquote:
		return nil, newErr(UnquoteNotAllowedOutsideQuote, n.Range, "unquote is only valid inside a quote")

	default:
		return nil, newErr(InternalError, n.Range, "eval: unhandled node type %T", e)
	}
}

// evalBlock evaluates stmts in sequence, threading self the way Run does
// for a whole program, and returns the last statement's value (or self
// unchanged if stmts is empty, consistent with an empty block being a
// no-op pass-through of its input).
func (ev *Evaluator) evalBlock(stmts []*ast.Node, self value.Value, env *Environment) (value.Value, error) {
	cur := self
	for _, s := range stmts {
		v, isDecl, err := ev.evalTop(s, cur, env)
		if err != nil {
			return nil, err
		}
		if !isDecl {
			cur = v
		}
	}
	return cur, nil
}

func (ev *Evaluator) evalInterpolatedString(e *ast.InterpolatedString, self value.Value, env *Environment) (value.Value, error) {
	var out string
	for _, seg := range e.Segments {
		if !seg.IsExpr {
			out += seg.Text
			continue
		}
		v, err := ev.eval(seg.Expr, self, env)
		if err != nil {
			return nil, err
		}
		out += v.String()
	}
	return value.String(out), nil
}

func (ev *Evaluator) evalSelector(e *ast.Selector, self value.Value, rng token.Range) (value.Value, error) {
	prog, ok := ev.selectors[e.Src]
	if !ok {
		compiled, err := compileSelector(e.Src, rng)
		if err != nil {
			return nil, err
		}
		ev.selectors[e.Src] = compiled
		prog = compiled
	}
	return prog.Apply(self, rng)
}

func (ev *Evaluator) evalQualifiedAccess(e *ast.QualifiedAccess, env *Environment, rng token.Range) (value.Value, error) {
	if len(e.Path) == 0 {
		return nil, newErr(InternalError, rng, "empty qualified access")
	}
	v, ok := env.Get(e.Path[0])
	if !ok {
		return nil, newErr(UndefinedVariable, rng, "undefined variable %q", e.Path[0])
	}
	for _, field := range e.Path[1:] {
		d, ok := v.(*value.Dict)
		if !ok {
			return nil, newErr(InvalidTypes, rng, "%s is not a module or dict", field)
		}
		v, ok = d.Get(field)
		if !ok {
			return nil, newErr(NotDefined, rng, "%q has no member %q", e.Path[0], field)
		}
	}
	return v, nil
}

func (ev *Evaluator) evalAssign(e *ast.Assign, self value.Value, env *Environment, rng token.Range) (value.Value, error) {
	rhs, err := ev.eval(e.Value, self, env)
	if err != nil {
		return nil, err
	}
	if e.Op != ast.AssignSet {
		cur, ok := env.Get(e.Target)
		if !ok {
			return nil, newErr(UndefinedVariable, rng, "undefined variable %q", e.Target)
		}
		rhs, err = applyAssignOp(e.Op, cur, rhs, rng)
		if err != nil {
			return nil, err
		}
	}
	if err := env.Set(e.Target, rhs); err != nil {
		if re, ok := err.(*RuntimeError); ok {
			re.Range = rng
		}
		return nil, err
	}
	return rhs, nil
}

func applyAssignOp(op ast.AssignOp, cur, rhs value.Value, rng token.Range) (value.Value, error) {
	switch op {
	case ast.AssignAdd:
		return evalPlus(cur, rhs, rng)
	case ast.AssignSub:
		return evalArith(cur, rhs, rng, "-", func(a, b float64) float64 { return a - b })
	case ast.AssignMul:
		return evalArith(cur, rhs, rng, "*", func(a, b float64) float64 { return a * b })
	case ast.AssignDiv:
		return evalDiv(cur, rhs, rng, false)
	case ast.AssignFloorDiv:
		return evalDiv(cur, rhs, rng, true)
	case ast.AssignMod:
		return evalMod(cur, rhs, rng)
	case ast.AssignPipe:
		return rhs, nil
	default:
		return rhs, nil
	}
}

func (ev *Evaluator) evalIf(e *ast.If, self value.Value, env *Environment) (value.Value, error) {
	for _, b := range e.Branches {
		if b.Cond == nil {
			return ev.evalBlock(b.Then, self, env.ChildEnv())
		}
		c, err := ev.eval(b.Cond, self, env)
		if err != nil {
			return nil, err
		}
		if value.Truthy(c) {
			return ev.evalBlock(b.Then, self, env.ChildEnv())
		}
	}
	return value.None{}, nil
}

func (ev *Evaluator) evalWhile(e *ast.While, self value.Value, env *Environment) (value.Value, error) {
	cur := self
	for {
		c, err := ev.eval(e.Cond, cur, env)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(c) {
			return cur, nil
		}
		v, err := ev.evalBlock(e.Body, cur, env.ChildEnv())
		if err != nil {
			if re, ok := err.(*RuntimeError); ok && re.Kind == breakSignal {
				return cur, nil
			}
			if re, ok := err.(*RuntimeError); ok && re.Kind == continueSignal {
				continue
			}
			return nil, err
		}
		cur = v
	}
}

func (ev *Evaluator) evalUntil(e *ast.Until, self value.Value, env *Environment) (value.Value, error) {
	cur := self
	for {
		c, err := ev.eval(e.Cond, cur, env)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(c) {
			return cur, nil
		}
		v, err := ev.evalBlock(e.Body, cur, env.ChildEnv())
		if err != nil {
			if re, ok := err.(*RuntimeError); ok && re.Kind == breakSignal {
				return cur, nil
			}
			if re, ok := err.(*RuntimeError); ok && re.Kind == continueSignal {
				continue
			}
			return nil, err
		}
		cur = v
	}
}

func (ev *Evaluator) evalLoop(e *ast.Loop, self value.Value, env *Environment) (value.Value, error) {
	cur := self
	for {
		v, err := ev.evalBlock(e.Body, cur, env.ChildEnv())
		if err != nil {
			if re, ok := err.(*RuntimeError); ok && re.Kind == breakSignal {
				return cur, nil
			}
			if re, ok := err.(*RuntimeError); ok && re.Kind == continueSignal {
				continue
			}
			return nil, err
		}
		cur = v
	}
}

// evalForeach iterates over Seq (array, string, or markdown children) per
// spec.md's "Foreach iterates arrays, strings ... or markdown children",
// collecting each iteration's body result into the returned array — mirrors
// a map/comprehension rather than a plain C-style loop, since foreach
// results are what examples/snake_to_camel.rs pipes into `join`.
func (ev *Evaluator) evalForeach(e *ast.Foreach, self value.Value, env *Environment) (value.Value, error) {
	seq, err := ev.eval(e.Seq, self, env)
	if err != nil {
		return nil, err
	}
	elems, err := foreachElements(seq, e)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, 0, len(elems))
	for _, el := range elems {
		child := env.ChildEnv()
		child.Define(e.Binder, el, false)
		v, err := ev.evalBlock(e.Body, el, child)
		if err != nil {
			if re, ok := err.(*RuntimeError); ok && re.Kind == breakSignal {
				break
			}
			if re, ok := err.(*RuntimeError); ok && re.Kind == continueSignal {
				continue
			}
			return nil, err
		}
		out = append(out, v)
	}
	return &value.Array{Elements: out}, nil
}

func foreachElements(seq value.Value, e *ast.Foreach) ([]value.Value, error) {
	switch x := seq.(type) {
	case *value.Array:
		return x.Elements, nil
	case value.String:
		runes := []rune(string(x))
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.String(string(r))
		}
		return out, nil
	case *value.Markdown:
		children := x.Node.Children()
		out := make([]value.Value, len(children))
		for i, c := range children {
			out[i] = &value.Markdown{Node: c}
		}
		return out, nil
	default:
		return nil, newErr(InvalidTypes, token.Range{}, "foreach: %s is not iterable", seq.Kind())
	}
}

func (ev *Evaluator) evalTry(e *ast.Try, self value.Value, env *Environment) (value.Value, error) {
	v, err := ev.evalBlock(e.Body, self, env.ChildEnv())
	if err == nil {
		return v, nil
	}
	if IsControl(err) {
		return nil, err
	}
	if e.Catch == nil {
		return nil, err
	}
	return ev.evalBlock(e.Catch, self, env.ChildEnv())
}

func (ev *Evaluator) evalMatch(e *ast.Match, self value.Value, env *Environment) (value.Value, error) {
	scrutinee, err := ev.eval(e.Scrutinee, self, env)
	if err != nil {
		return nil, err
	}
	for _, arm := range e.Arms {
		child := env.ChildEnv()
		if matchPattern(arm.Pattern, scrutinee, child) {
			return ev.eval(arm.Body, self, child)
		}
	}
	return nil, newErr(Runtime, token.Range{}, "match: no arm matched %s", scrutinee.String())
}

// matchPattern tests pat against v, binding any VarPattern/cons-rest names
// into env as it goes. Returns false (with no partial bindings retained by
// the caller, since env is a fresh child per arm) on a non-match.
func matchPattern(pat ast.Pattern, v value.Value, env *Environment) bool {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true
	case *ast.VarPattern:
		env.Define(p.Name, v, false)
		return true
	case *ast.LiteralPattern:
		lit, err := literalPatternValue(p.Value)
		if err != nil {
			return false
		}
		return value.Equal(lit, v)
	case *ast.ArrayPattern:
		arr, ok := v.(*value.Array)
		if !ok {
			return false
		}
		if p.Rest != nil {
			if len(p.Elements) > len(arr.Elements) {
				return false
			}
			for i, ep := range p.Elements {
				if !matchPattern(ep, arr.Elements[i], env) {
					return false
				}
			}
			env.Define(p.Rest.Name, &value.Array{Elements: arr.Elements[len(p.Elements):]}, false)
			return true
		}
		if len(p.Elements) != len(arr.Elements) {
			return false
		}
		for i, ep := range p.Elements {
			if !matchPattern(ep, arr.Elements[i], env) {
				return false
			}
		}
		return true
	case *ast.DictPattern:
		d, ok := v.(*value.Dict)
		if !ok {
			return false
		}
		for k, fp := range p.Fields {
			fv, has := d.Get(k)
			if !has || !matchPattern(fp, fv, env) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// literalPatternValue evaluates a LiteralPattern's Value node, which by
// construction is a self-contained literal (number/string/bool/none) with
// no identifiers to resolve, so a nil environment is safe.
func literalPatternValue(n *ast.Node) (value.Value, error) {
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
		return nil, fmt.Errorf("unsupported literal pattern node %T", e)
	}
}

// resolveModuleEnv looks up a previously-loaded module's environment.
// pkg/mqengine's loader is expected to Define each loaded module's name
// into the root environment as a *value.Dict before running a program that
// includes/imports it; eval itself does no file I/O (spec.md's loader is a
// separate module-resolution concern).
func (ev *Evaluator) resolveModuleEnv(name string, env *Environment) (*value.Dict, error) {
	v, ok := env.Get(name)
	if !ok {
		return nil, newErr(ModuleLoadError, zeroRange, "module %q not loaded", name)
	}
	d, ok := v.(*value.Dict)
	if !ok {
		return nil, newErr(ModuleLoadError, zeroRange, "module %q did not resolve to a module value", name)
	}
	return d, nil
}

func moduleValue(d *value.Dict) value.Value { return d }

// importAllInto copies every entry of a module dict into env's own frame,
// unqualified, implementing `include`'s namespace-merging semantics.
func importAllInto(d *value.Dict, env *Environment) {
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		env.Define(k, v, false)
	}
}
