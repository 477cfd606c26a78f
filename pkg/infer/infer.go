// Package infer implements mq's Hindley-Milner type inference (Algorithm
// W, spec.md §4.5) on top of pkg/typesys, plus the name Resolver (spec.md
// §4.4) that binds every symbolic use recorded in a pkg/hir.HIR to its
// definition. Grounded on vito-dang's pkg/dang/infer.go, generalized from
// its constraint-generate-then-solve design to eager unification (simpler
// to drive directly off the AST without a separate constraint-collection
// pass; documented as an Open Question resolution in DESIGN.md).
package infer

import (
	"fmt"

	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/token"
	"github.com/mqlang/mq/pkg/typesys"
)

// binOpCandidates lists, per operator, the overload signatures the
// inferencer tries in order (spec.md §4.5's "small set of operators has
// multiple registered signatures").
func binOpCandidates(op string) []*typesys.Function {
	num := func() *typesys.Function { return typesys.NewFunction(typesys.TNumber, typesys.TNumber, typesys.TNumber) }
	str := func() *typesys.Function { return typesys.NewFunction(typesys.TString, typesys.TString, typesys.TString) }
	cmp := func() *typesys.Function { return typesys.NewFunction(typesys.TBool, typesys.TNumber, typesys.TNumber) }
	boolOp := func() *typesys.Function { return typesys.NewFunction(typesys.TBool, typesys.TBool, typesys.TBool) }

	switch op {
	case "+":
		return []*typesys.Function{num(), str()}
	case "-", "*", "/", "%", "^", "//":
		return []*typesys.Function{num()}
	case "<", "<=", ">", ">=":
		return []*typesys.Function{cmp()}
	case "&&", "||":
		return []*typesys.Function{boolOp()}
	}
	return nil
}

// Inferencer runs Algorithm W over a parsed program.
type Inferencer struct {
	fresh *typesys.CounterFresher
	Errs  []*TypeError
}

// NewInferencer creates an Inferencer with a fresh type-variable counter.
func NewInferencer() *Inferencer {
	return &Inferencer{fresh: typesys.NewCounterFresher()}
}

// RootEnv returns a base environment with the pipeline-level bindings
// spec.md §4.5 names explicitly: `self` (the current pipeline input) and
// `nodes` (the whole input corpus).
func RootEnv() *Env {
	env := NewEnv()
	env.Add("self", typesys.NewScheme(nil, typesys.TMarkdown))
	env.Add("nodes", typesys.NewScheme(nil, typesys.NewArray(typesys.TMarkdown)))
	return env
}

// InferProgram infers types for a whole top-level pipeline (spec.md §4.6:
// "pipeline of effects"), returning the last statement's type.
func (inf *Inferencer) InferProgram(nodes []*ast.Node) (typesys.Type, []*TypeError) {
	env := RootEnv()
	t, _ := inf.inferBlock(nodes, env)
	return t, inf.Errs
}

func (inf *Inferencer) addErr(kind ErrorKind, msg string, rng token.Range) {
	inf.Errs = append(inf.Errs, &TypeError{Kind: kind, Message: msg, Range: rng})
}

func (inf *Inferencer) unify(a, b typesys.Type, rng token.Range) typesys.Subs {
	subs, err := typesys.Unify(a, b)
	if err != nil {
		inf.addErr(fromUnify(err, rng).Kind, err.Error(), rng)
		return typesys.NewSubs()
	}
	return subs
}

// inferBlock threads env forward across a block exactly as
// pkg/hir.walker.walkBlock threads ScopeID, so a `let` in statement i is
// visible while inferring i+1..n. Returns the last statement's type (None
// for an empty block).
func (inf *Inferencer) inferBlock(body []*ast.Node, env *Env) (typesys.Type, *Env) {
	cur := env
	var last typesys.Type = typesys.TNone
	for _, n := range body {
		last, cur = inf.inferStmt(n, cur)
	}
	return last, cur
}

// inferStmt infers n and returns the env subsequent sibling statements
// should use (only Let extends it, mirroring hir's walk/walkBlock split).
func (inf *Inferencer) inferStmt(n *ast.Node, env *Env) (typesys.Type, *Env) {
	if n == nil {
		return typesys.TNone, env
	}
	if let, ok := n.Expr.(*ast.Let); ok {
		valType, _ := inf.infer(let.Value, env)
		scheme := typesys.Generalize(env, valType)
		child := env.Child()
		child.Add(let.Binder, scheme)
		return valType, child
	}
	t, _ := inf.infer(n, env)
	return t, env
}

// infer returns n's type and the substitution discovered while inferring
// it (composed into the caller's running substitution by convention —
// callers that need to thread subs across siblings call typesys.Unify
// again on the already-substituted types, matching Algorithm W's
// incremental composition).
func (inf *Inferencer) infer(n *ast.Node, env *Env) (typesys.Type, typesys.Subs) {
	if n == nil {
		return typesys.TNone, typesys.NewSubs()
	}
	switch e := n.Expr.(type) {
	case *ast.NumberLit:
		return typesys.TNumber, typesys.NewSubs()
	case *ast.StringLit:
		return typesys.TString, typesys.NewSubs()
	case *ast.BoolLit:
		return typesys.TBool, typesys.NewSubs()
	case *ast.NoneLit:
		return typesys.TNone, typesys.NewSubs()
	case *ast.Self:
		return inf.lookup("self", env, n.Range)
	case *ast.Nodes:
		return inf.lookup("nodes", env, n.Range)
	case *ast.Selector:
		// Every selector is typed as Array(Markdown). At runtime pkg/eval's
		// SelectorProgram.Apply yields the matching node itself, or None when
		// a kind filter such as `.h` does not match.
		return typesys.NewArray(typesys.TMarkdown), typesys.NewSubs()

	case *ast.Ident:
		return inf.lookup(e.Name, env, n.Range)

	case *ast.QualifiedAccess:
		name := ""
		if len(e.Path) > 0 {
			name = e.Path[len(e.Path)-1]
		}
		return inf.lookup(name, env, n.Range)

	case *ast.Var:
		valType, _ := inf.infer(e.Value, env)
		env.Add(e.Binder, typesys.NewScheme(nil, valType))
		return valType, typesys.NewSubs()

	case *ast.Assign:
		scheme, ok := env.SchemeOf(e.Target)
		if !ok {
			inf.addErr(UndefinedSymbol, fmt.Sprintf("undefined variable %q", e.Target), n.Range)
			return typesys.TNone, typesys.NewSubs()
		}
		target := typesys.Instantiate(inf.fresh, scheme)
		valType, _ := inf.infer(e.Value, env)
		subs := inf.unify(target, valType, n.Range)
		return target.Apply(subs), subs

	case *ast.Fn:
		return inf.inferFunction(e.Params, e.Body, env, n.Range)

	case *ast.Def:
		fnType, _ := inf.inferFunction(e.Params, e.Body, env, n.Range)
		scheme := typesys.Generalize(env, fnType)
		env.Add(e.Name, scheme)
		return fnType, typesys.NewSubs()

	case *ast.Call:
		return inf.inferCall(e.Name, e.Args, env, n.Range)

	case *ast.CallDynamic:
		calleeType, _ := inf.infer(e.Callee, env)
		return inf.inferApply(calleeType, e.Args, env, n.Range)

	case *ast.Pipe:
		lhsType, _ := inf.infer(e.LHS, env)
		if ident, ok := e.RHS.Expr.(*ast.Ident); ok {
			if scheme, ok := env.SchemeOf(ident.Name); ok {
				fnType := typesys.Instantiate(inf.fresh, scheme)
				return inf.applyFunction(fnType, []typesys.Type{lhsType}, n.Range)
			}
		}
		piped := env.Child()
		piped.Add("self", typesys.NewScheme(nil, lhsType))
		return inf.infer(e.RHS, piped)

	case *ast.BinOp:
		return inf.inferBinOp(e.Op, e.LHS, e.RHS, env, n.Range)

	case *ast.UnOp:
		rhsType, _ := inf.infer(e.RHS, env)
		switch e.Op {
		case "!":
			subs := inf.unify(rhsType, typesys.TBool, n.Range)
			return typesys.TBool, subs
		case "-":
			subs := inf.unify(rhsType, typesys.TNumber, n.Range)
			return typesys.TNumber, subs
		}
		return rhsType, typesys.NewSubs()

	case *ast.InterpolatedString:
		for _, seg := range e.Segments {
			if seg.IsExpr {
				inf.infer(seg.Expr, env)
			}
		}
		return typesys.TString, typesys.NewSubs()

	case *ast.If:
		// Every branch's trailing value must unify to one type; an
		// absent `else` still yields None at runtime (spec.md §4.6), but
		// the grammar has no sum type to additionally widen this to, so
		// the branches' common type is used as-is (documented in
		// DESIGN.md as a deliberate simplification).
		var result typesys.Type
		for _, br := range e.Branches {
			if br.Cond != nil {
				inf.infer(br.Cond, env)
			}
			branchType, _ := inf.inferBlock(br.Then, env.Child())
			if result == nil {
				result = branchType
				continue
			}
			subs := inf.unify(result, branchType, n.Range)
			result = result.Apply(subs)
		}
		if result == nil {
			result = typesys.TNone
		}
		return result, typesys.NewSubs()

	case *ast.While:
		inf.infer(e.Cond, env)
		bodyType, _ := inf.inferBlock(e.Body, env.Child())
		return typesys.NewArray(bodyType), typesys.NewSubs()

	case *ast.Until:
		inf.infer(e.Cond, env)
		bodyType, _ := inf.inferBlock(e.Body, env.Child())
		return typesys.NewArray(bodyType), typesys.NewSubs()

	case *ast.Loop:
		bodyType, _ := inf.inferBlock(e.Body, env.Child())
		return typesys.NewArray(bodyType), typesys.NewSubs()

	case *ast.Foreach:
		seqType, _ := inf.infer(e.Seq, env)
		elemType := inf.elementType(seqType)
		loopEnv := env.Child()
		loopEnv.Add(e.Binder, typesys.NewScheme(nil, elemType))
		bodyType, _ := inf.inferBlock(e.Body, loopEnv)
		return typesys.NewArray(bodyType), typesys.NewSubs()

	case *ast.Do:
		t, _ := inf.inferBlock(e.Block, env.Child())
		return t, typesys.NewSubs()

	case *ast.Try:
		t, _ := inf.inferBlock(e.Body, env.Child())
		if e.Catch != nil {
			catchEnv := env.Child()
			catchEnv.Add("error", typesys.NewScheme(nil, typesys.TString))
			catchType, _ := inf.inferBlock(e.Catch, catchEnv)
			subs := inf.unify(t, catchType, n.Range)
			t = t.Apply(subs)
		}
		return t, typesys.NewSubs()

	case *ast.Match:
		inf.infer(e.Scrutinee, env)
		var result typesys.Type
		for _, arm := range e.Arms {
			armEnv := env.Child()
			inf.bindPattern(arm.Pattern, armEnv)
			armType, _ := inf.infer(arm.Body, armEnv)
			if result == nil {
				result = armType
				continue
			}
			subs := inf.unify(result, armType, n.Range)
			result = result.Apply(subs)
		}
		if result == nil {
			return typesys.TNone, typesys.NewSubs()
		}
		return result, typesys.NewSubs()

	case *ast.Module:
		modEnv := env.Child()
		inf.inferBlock(e.Body, modEnv)
		return typesys.TNone, typesys.NewSubs()

	case *ast.Include, *ast.Import:
		// Cross-source bindings are the Resolver's job; the inferencer
		// doesn't need to type-check another source's body here.
		return typesys.TNone, typesys.NewSubs()

	case *ast.Quote:
		return typesys.TSymbol, typesys.NewSubs()
	case *ast.Unquote:
		return inf.infer(e.Body, env)

	case *ast.Break, *ast.Continue:
		return typesys.TNone, typesys.NewSubs()
	}
	return typesys.TNone, typesys.NewSubs()
}

func (inf *Inferencer) lookup(name string, env *Env, rng token.Range) (typesys.Type, typesys.Subs) {
	if scheme, ok := env.SchemeOf(name); ok {
		return typesys.Instantiate(inf.fresh, scheme), typesys.NewSubs()
	}
	if scheme, ok := builtinScheme(name, inf.fresh); ok {
		return typesys.Instantiate(inf.fresh, scheme), typesys.NewSubs()
	}
	inf.addErr(UndefinedSymbol, fmt.Sprintf("undefined symbol %q", name), rng)
	return inf.fresh.Fresh(), typesys.NewSubs()
}

func (inf *Inferencer) inferFunction(params []ast.Param, body []*ast.Node, env *Env, rng token.Range) (typesys.Type, typesys.Subs) {
	fnEnv := env.Child()
	paramTypes := make([]typesys.Type, len(params))
	for i, p := range params {
		tv := inf.fresh.Fresh()
		paramTypes[i] = tv
		if p.Variadic {
			paramTypes[i] = typesys.NewArray(tv)
		}
		fnEnv.Add(p.Name, typesys.NewScheme(nil, paramTypes[i]))
		if p.Default != nil {
			defType, _ := inf.infer(p.Default, env)
			inf.unify(paramTypes[i], defType, rng)
		}
	}
	retType, _ := inf.inferBlock(body, fnEnv)
	return typesys.NewFunction(retType, paramTypes...), typesys.NewSubs()
}

func (inf *Inferencer) inferCall(name string, args []*ast.Node, env *Env, rng token.Range) (typesys.Type, typesys.Subs) {
	calleeType, _ := inf.lookup(name, env, rng)
	return inf.applyFunction(calleeType, inf.inferArgs(args, env), rng)
}

func (inf *Inferencer) inferApply(calleeType typesys.Type, args []*ast.Node, env *Env, rng token.Range) (typesys.Type, typesys.Subs) {
	return inf.applyFunction(calleeType, inf.inferArgs(args, env), rng)
}

func (inf *Inferencer) inferArgs(args []*ast.Node, env *Env) []typesys.Type {
	out := make([]typesys.Type, len(args))
	for i, a := range args {
		out[i], _ = inf.infer(a, env)
	}
	return out
}

// applyFunction unifies calleeType with a fresh Function shape of the
// right arity and returns its (substituted) return type — spec.md §4.5
// step 3/4: instantiate, then solve by unification.
func (inf *Inferencer) applyFunction(calleeType typesys.Type, argTypes []typesys.Type, rng token.Range) (typesys.Type, typesys.Subs) {
	fn, ok := calleeType.(*typesys.Function)
	if !ok {
		fresh := make([]typesys.TypeVariable, len(argTypes))
		params := make([]typesys.Type, len(argTypes))
		for i := range argTypes {
			fresh[i] = inf.fresh.Fresh()
			params[i] = fresh[i]
		}
		ret := inf.fresh.Fresh()
		want := typesys.NewFunction(ret, params...)
		subs := inf.unify(calleeType, want, rng)
		fn, _ = want.Apply(subs).(*typesys.Function)
		if fn == nil {
			return ret, subs
		}
	}
	if len(fn.Params) != len(argTypes) {
		inf.addErr(WrongArity, fmt.Sprintf("expected %d argument(s), got %d", len(fn.Params), len(argTypes)), rng)
		return fn.Ret, typesys.NewSubs()
	}
	subs := typesys.NewSubs()
	ret := fn.Ret
	for i, argType := range argTypes {
		paramType := fn.Params[i].Apply(subs)
		s := inf.unify(paramType, argType.Apply(subs), rng)
		subs = subs.Compose(s)
		ret = ret.Apply(subs)
	}
	return ret, subs
}

func (inf *Inferencer) inferBinOp(op string, lhs, rhs *ast.Node, env *Env, rng token.Range) (typesys.Type, typesys.Subs) {
	lhsType, _ := inf.infer(lhs, env)
	rhsType, _ := inf.infer(rhs, env)

	if op == "==" || op == "!=" {
		subs := inf.unify(lhsType, rhsType, rng)
		return typesys.TBool, subs
	}

	candidates := binOpCandidates(op)
	if candidates == nil {
		return typesys.TNone, typesys.NewSubs()
	}
	var lastErr error
	for i, cand := range candidates {
		subs, err := typesys.Unify(cand.Params[0], lhsType)
		if err == nil {
			var s2 typesys.Subs
			s2, err = typesys.Unify(cand.Params[1].Apply(subs), rhsType.Apply(subs))
			if err == nil {
				return cand.Ret.Apply(subs.Compose(s2)), subs.Compose(s2)
			}
		}
		lastErr = err
		if i == len(candidates)-1 {
			inf.addErr(fromUnify(lastErr, rng).Kind, fmt.Sprintf("no overload of %q matches (%s, %s)", op, lhsType, rhsType), rng)
		}
	}
	return typesys.TNone, typesys.NewSubs()
}

// elementType returns the element type of a sequence-like type for
// foreach/while/loop iteration (spec.md §4.6: "iterates arrays, strings
// ..., or markdown children").
func (inf *Inferencer) elementType(t typesys.Type) typesys.Type {
	switch tt := t.(type) {
	case *typesys.Array:
		return tt.Elem
	case typesys.Primitive:
		if tt == typesys.TString {
			return typesys.TString
		}
		if tt == typesys.TMarkdown {
			return typesys.TMarkdown
		}
	}
	return inf.fresh.Fresh()
}

func (inf *Inferencer) bindPattern(p ast.Pattern, env *Env) {
	switch pat := p.(type) {
	case *ast.VarPattern:
		env.Add(pat.Name, typesys.NewScheme(nil, inf.fresh.Fresh()))
	case *ast.ArrayPattern:
		for _, el := range pat.Elements {
			inf.bindPattern(el, env)
		}
		if pat.Rest != nil {
			env.Add(pat.Rest.Name, typesys.NewScheme(nil, typesys.NewArray(inf.fresh.Fresh())))
		}
	case *ast.DictPattern:
		for _, el := range pat.Fields {
			inf.bindPattern(el, env)
		}
	}
}
