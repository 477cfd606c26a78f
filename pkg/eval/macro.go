package eval

import (
	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/token"
)

// macroTable maps a macro's name to its declaration, collected from a
// program's top-level defs before any evaluation happens (spec.md §4.6
// point 6: "macros are expanded before evaluation of the surrounding
// expression").
type macroTable map[string]*ast.Def

func collectMacros(nodes []*ast.Node, into macroTable) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if def, ok := n.Expr.(*ast.Def); ok && def.IsMacro {
			into[def.Name] = def
		}
	}
}

const maxMacroDepth = 64

// expandMacros rewrites every macro call in nodes into its spliced AST,
// recursively, so a macro that expands to another macro call keeps
// expanding until no macro calls remain or maxMacroDepth is hit.
func expandMacros(nodes []*ast.Node, macros macroTable) ([]*ast.Node, error) {
	out := make([]*ast.Node, len(nodes))
	for i, n := range nodes {
		en, err := expandNode(n, macros, 0)
		if err != nil {
			return nil, err
		}
		out[i] = en
	}
	return out, nil
}

// ExpandMacros collects and expands every macro in nodes, the same pass
// Run performs internally before tree-walking. Exported for hosts
// (pkg/mqengine) that choose pkg/compiler's Program instead of Run —
// Program.Run does not expand macros itself, so the host must run this
// once up front to keep both paths seeing the same expanded tree.
func ExpandMacros(nodes []*ast.Node) ([]*ast.Node, error) {
	macros := macroTable{}
	collectMacros(nodes, macros)
	return expandMacros(nodes, macros)
}

func expandNode(n *ast.Node, macros macroTable, depth int) (*ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	if depth > maxMacroDepth {
		return nil, newErr(InternalError, n.Range, "macro expansion exceeded maximum depth")
	}
	if call, ok := n.Expr.(*ast.Call); ok {
		if def, isMacro := macros[call.Name]; isMacro {
			expanded, err := expandMacroCall(def, call.Args, n.Range, depth+1)
			if err != nil {
				return nil, err
			}
			return expandNode(expanded, macros, depth+1)
		}
	}
	return rewriteNode(n, func(c *ast.Node) (*ast.Node, error) {
		return expandNode(c, macros, depth)
	})
}

// expandMacroCall binds def's identifier-only parameters to the unevaluated
// argument ASTs and splices them into the quoted body.
func expandMacroCall(def *ast.Def, args []*ast.Node, callRange token.Range, depth int) (*ast.Node, error) {
	if len(args) != len(def.Params) {
		return nil, newErr(InvalidNumberOfArguments, callRange,
			"macro %q expects %d argument(s), got %d", def.Name, len(def.Params), len(args))
	}
	subst := make(map[string]*ast.Node, len(args))
	for i, p := range def.Params {
		subst[p.Name] = args[i]
	}
	var result *ast.Node
	for _, stmt := range def.Body {
		spliced, err := spliceQuote(stmt, subst)
		if err != nil {
			return nil, err
		}
		result = spliced
	}
	if result == nil {
		return &ast.Node{Range: callRange, Expr: &ast.NoneLit{}}, nil
	}
	return result, nil
}

// spliceQuote handles a macro-body statement: if it is a `quote(...)`
// wrapper, splice its body (substituting unquoted parameters); a macro
// body statement that is not a quote is an ordinary statement and passes
// through unsubstituted, since it cannot reference call-site AST.
func spliceQuote(n *ast.Node, subst map[string]*ast.Node) (*ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	if q, ok := n.Expr.(*ast.Quote); ok {
		return spliceBody(q.Body, subst)
	}
	return n, nil
}

// spliceBody walks n replacing `unquote(paramName)` leaves with the AST
// bound to paramName in subst (spec.md §9: macro bodies are AST templates;
// unquote splices a call-site argument back in).
func spliceBody(n *ast.Node, subst map[string]*ast.Node) (*ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	if unq, ok := n.Expr.(*ast.Unquote); ok {
		if id, ok := unq.Body.Expr.(*ast.Ident); ok {
			if arg, bound := subst[id.Name]; bound {
				return arg, nil
			}
		}
		return spliceBody(unq.Body, subst)
	}
	return rewriteNode(n, func(c *ast.Node) (*ast.Node, error) {
		return spliceBody(c, subst)
	})
}

// rewriteNode reconstructs n with every child Node replaced by rw(child),
// preserving n's Expr variant and non-Node fields. Leaf expressions (no
// Node children) are returned unchanged. This mirrors ast.Children's case
// list but rebuilds instead of collecting, so macro expansion/splicing can
// rewrite an AST without mutating the original (the AST is immutable after
// parse, per spec.md §3).
func rewriteNode(n *ast.Node, rw func(*ast.Node) (*ast.Node, error)) (*ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	out := &ast.Node{TokenID: n.TokenID, Range: n.Range}
	var err error
	switch e := n.Expr.(type) {
	case *ast.Call:
		args := make([]*ast.Node, len(e.Args))
		for i, a := range e.Args {
			if args[i], err = rw(a); err != nil {
				return nil, err
			}
		}
		out.Expr = &ast.Call{Name: e.Name, Args: args, Optional: e.Optional}

	case *ast.CallDynamic:
		callee, cerr := rw(e.Callee)
		if cerr != nil {
			return nil, cerr
		}
		args := make([]*ast.Node, len(e.Args))
		for i, a := range e.Args {
			if args[i], err = rw(a); err != nil {
				return nil, err
			}
		}
		out.Expr = &ast.CallDynamic{Callee: callee, Args: args, Optional: e.Optional}

	case *ast.Def:
		body := make([]*ast.Node, len(e.Body))
		for i, b := range e.Body {
			if body[i], err = rw(b); err != nil {
				return nil, err
			}
		}
		out.Expr = &ast.Def{Name: e.Name, Params: e.Params, Body: body, IsMacro: e.IsMacro}

	case *ast.Fn:
		body := make([]*ast.Node, len(e.Body))
		for i, b := range e.Body {
			if body[i], err = rw(b); err != nil {
				return nil, err
			}
		}
		out.Expr = &ast.Fn{Params: e.Params, Body: body}

	case *ast.Let:
		v, verr := rw(e.Value)
		if verr != nil {
			return nil, verr
		}
		out.Expr = &ast.Let{Binder: e.Binder, Value: v}

	case *ast.Var:
		v, verr := rw(e.Value)
		if verr != nil {
			return nil, verr
		}
		out.Expr = &ast.Var{Binder: e.Binder, Value: v}

	case *ast.Assign:
		v, verr := rw(e.Value)
		if verr != nil {
			return nil, verr
		}
		out.Expr = &ast.Assign{Target: e.Target, Value: v, Op: e.Op}

	case *ast.If:
		branches := make([]ast.IfBranch, len(e.Branches))
		for i, b := range e.Branches {
			var cond *ast.Node
			if b.Cond != nil {
				if cond, err = rw(b.Cond); err != nil {
					return nil, err
				}
			}
			then := make([]*ast.Node, len(b.Then))
			for j, t := range b.Then {
				if then[j], err = rw(t); err != nil {
					return nil, err
				}
			}
			branches[i] = ast.IfBranch{Cond: cond, Then: then}
		}
		out.Expr = &ast.If{Branches: branches}

	case *ast.While:
		cond, cerr := rw(e.Cond)
		if cerr != nil {
			return nil, cerr
		}
		body := make([]*ast.Node, len(e.Body))
		for i, b := range e.Body {
			if body[i], err = rw(b); err != nil {
				return nil, err
			}
		}
		out.Expr = &ast.While{Cond: cond, Body: body}

	case *ast.Until:
		cond, cerr := rw(e.Cond)
		if cerr != nil {
			return nil, cerr
		}
		body := make([]*ast.Node, len(e.Body))
		for i, b := range e.Body {
			if body[i], err = rw(b); err != nil {
				return nil, err
			}
		}
		out.Expr = &ast.Until{Cond: cond, Body: body}

	case *ast.Loop:
		body := make([]*ast.Node, len(e.Body))
		for i, b := range e.Body {
			if body[i], err = rw(b); err != nil {
				return nil, err
			}
		}
		out.Expr = &ast.Loop{Body: body}

	case *ast.Foreach:
		seq, serr := rw(e.Seq)
		if serr != nil {
			return nil, serr
		}
		body := make([]*ast.Node, len(e.Body))
		for i, b := range e.Body {
			if body[i], err = rw(b); err != nil {
				return nil, err
			}
		}
		out.Expr = &ast.Foreach{Binder: e.Binder, Seq: seq, Body: body}

	case *ast.Do:
		block := make([]*ast.Node, len(e.Block))
		for i, b := range e.Block {
			if block[i], err = rw(b); err != nil {
				return nil, err
			}
		}
		out.Expr = &ast.Do{Block: block}

	case *ast.Try:
		body := make([]*ast.Node, len(e.Body))
		for i, b := range e.Body {
			if body[i], err = rw(b); err != nil {
				return nil, err
			}
		}
		var catch []*ast.Node
		if e.Catch != nil {
			catch = make([]*ast.Node, len(e.Catch))
			for i, c := range e.Catch {
				if catch[i], err = rw(c); err != nil {
					return nil, err
				}
			}
		}
		out.Expr = &ast.Try{Body: body, Catch: catch}

	case *ast.Match:
		scrutinee, serr := rw(e.Scrutinee)
		if serr != nil {
			return nil, serr
		}
		arms := make([]ast.MatchArm, len(e.Arms))
		for i, a := range e.Arms {
			var body *ast.Node
			if body, err = rw(a.Body); err != nil {
				return nil, err
			}
			arms[i] = ast.MatchArm{Pattern: a.Pattern, Body: body}
		}
		out.Expr = &ast.Match{Scrutinee: scrutinee, Arms: arms}

	case *ast.Pipe:
		lhs, lerr := rw(e.LHS)
		if lerr != nil {
			return nil, lerr
		}
		rhs, rerr := rw(e.RHS)
		if rerr != nil {
			return nil, rerr
		}
		out.Expr = &ast.Pipe{LHS: lhs, RHS: rhs}

	case *ast.BinOp:
		lhs, lerr := rw(e.LHS)
		if lerr != nil {
			return nil, lerr
		}
		rhs, rerr := rw(e.RHS)
		if rerr != nil {
			return nil, rerr
		}
		out.Expr = &ast.BinOp{Op: e.Op, LHS: lhs, RHS: rhs}

	case *ast.UnOp:
		rhs, rerr := rw(e.RHS)
		if rerr != nil {
			return nil, rerr
		}
		out.Expr = &ast.UnOp{Op: e.Op, RHS: rhs}

	case *ast.InterpolatedString:
		segs := make([]ast.StringSegment, len(e.Segments))
		for i, s := range e.Segments {
			segs[i] = s
			if s.IsExpr {
				if segs[i].Expr, err = rw(s.Expr); err != nil {
					return nil, err
				}
			}
		}
		out.Expr = &ast.InterpolatedString{Segments: segs}

	case *ast.Module:
		body := make([]*ast.Node, len(e.Body))
		for i, b := range e.Body {
			if body[i], err = rw(b); err != nil {
				return nil, err
			}
		}
		out.Expr = &ast.Module{Name: e.Name, Body: body}

	case *ast.Quote:
		body, berr := rw(e.Body)
		if berr != nil {
			return nil, berr
		}
		out.Expr = &ast.Quote{Body: body}

	case *ast.Unquote:
		body, berr := rw(e.Body)
		if berr != nil {
			return nil, berr
		}
		out.Expr = &ast.Unquote{Body: body}

	default:
		// Leaf expression (literal, Ident, Self, Nodes, Break, Continue,
		// Selector, QualifiedAccess, Include, Import): no Node children.
		return n, nil
	}
	return out, nil
}
