// Package compiler implements mq's optional compiled evaluation path:
// each top-level statement is compiled once into a Go closure over
// (self, env), instead of being re-dispatched through eval's per-node
// type switch on every run. Constant-foldable arithmetic and unary
// expressions are pre-evaluated at compile time; everything else
// delegates to eval.Evaluator.EvalNode, which keeps the compiled and
// tree-walked paths equivalent by construction (spec.md §4.6: "otherwise
// identical semantics to the tree-walker").
//
// Grounded on internal/bytecode/compiler.go's single stateful Compiler
// with one Compile entry point, retargeted from a bytecode instruction
// stream to a closure tree per the expanded specification.
package compiler

import (
	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/eval"
	"github.com/mqlang/mq/pkg/value"
)

// Closure is one compiled AST node: given the current pipeline value and
// lexical environment, it produces a value or a runtime error.
type Closure func(self value.Value, env *eval.Environment) (value.Value, error)

// Compiler compiles parsed programs against a fixed Evaluator, whose
// builtin registry, call-depth guard, and selector cache are shared with
// (and identical to) the tree-walking path.
type Compiler struct {
	ev *eval.Evaluator
}

// New creates a Compiler backed by ev. Passing the same *eval.Evaluator
// used elsewhere in a session means `len`, user-registered natives, and
// the recursion ceiling behave identically whether a program runs
// compiled or tree-walked.
func New(ev *eval.Evaluator) *Compiler {
	return &Compiler{ev: ev}
}

// topStmt is one compiled top-level statement plus whether it is a
// declaration (which does not rebind the implicit top-level self).
type topStmt struct {
	closure Closure
	isDecl  bool
}

// Program is a compiled whole-file unit, ready to run repeatedly (e.g.
// once per input document) without recompiling.
type Program struct {
	stmts []topStmt
}

// Run evaluates the compiled program against an initial self value,
// threading self through top-level statements exactly as eval.Run does.
func (p *Program) Run(self value.Value, env *eval.Environment) (value.Value, error) {
	cur := self
	for _, s := range p.stmts {
		v, err := s.closure(cur, env)
		if err != nil {
			return nil, err
		}
		if !s.isDecl {
			cur = v
		}
	}
	return cur, nil
}

// Compile turns a parsed program's top-level nodes into a Program. It does
// not execute anything; macro expansion is expected to have already run
// over nodes the way eval.Run does internally (pkg/mqengine performs this
// once per loaded source before choosing tree-walked vs. compiled
// execution).
func (c *Compiler) Compile(nodes []*ast.Node) (*Program, error) {
	stmts := make([]topStmt, 0, len(nodes))
	for _, n := range nodes {
		fr := c.compileExpr(n)
		stmts = append(stmts, topStmt{closure: fr.closure, isDecl: eval.IsDeclaration(n)})
	}
	return &Program{stmts: stmts}, nil
}

// foldResult is a compiled closure plus, when the subtree is a compile-time
// constant, the precomputed value. constant is nil when the closure must
// actually run against self/env.
type foldResult struct {
	closure  Closure
	constant value.Value
}

func constant(v value.Value) foldResult {
	return foldResult{
		closure:  func(value.Value, *eval.Environment) (value.Value, error) { return v, nil },
		constant: v,
	}
}

// compileExpr compiles one node, folding constant arithmetic and unary
// expressions eagerly and otherwise delegating to the tree-walker via
// EvalNode. Literal leaves are folded so that BinOp/UnOp compiling their
// operands can detect "both sides constant" regardless of nesting depth
// (e.g. `1 + 2 * 3` folds fully to 7 at compile time, not just its
// innermost multiplication).
func (c *Compiler) compileExpr(n *ast.Node) foldResult {
	switch e := n.Expr.(type) {
	case *ast.NumberLit:
		return constant(value.Number(e.Value))
	case *ast.StringLit:
		return constant(value.String(e.Value))
	case *ast.BoolLit:
		return constant(value.Bool(e.Value))
	case *ast.NoneLit:
		return constant(value.None{})

	case *ast.UnOp:
		return c.compileUnOp(n, e)

	case *ast.BinOp:
		return c.compileBinOp(n, e)

	default:
		return foldResult{closure: func(self value.Value, env *eval.Environment) (value.Value, error) {
			return c.ev.EvalNode(n, self, env)
		}}
	}
}

func (c *Compiler) compileUnOp(n *ast.Node, e *ast.UnOp) foldResult {
	rhs := c.compileExpr(e.RHS)
	if rhs.constant != nil {
		if v, err := eval.ApplyUnOp(e.Op, rhs.constant, n.Range); err == nil {
			return constant(v)
		}
		// Folding would raise at compile time (e.g. `-"x"`); defer the
		// error to run time the way the tree-walker reports it, complete
		// with its own RuntimeError and range.
	}
	rhsClosure, op, rng := rhs.closure, e.Op, n.Range
	return foldResult{closure: func(self value.Value, env *eval.Environment) (value.Value, error) {
		v, err := rhsClosure(self, env)
		if err != nil {
			return nil, err
		}
		return eval.ApplyUnOp(op, v, rng)
	}}
}

// compileBinOp folds the strict arithmetic/comparison operators
// eagerly when both operands are constant. &&, ||, and ?? are left to
// the tree-walker unconditionally since their right-hand side must stay
// unevaluated for short-circuiting — folding those would need to
// reproduce evalBinOp's short-circuit rules verbatim for no real benefit,
// since logical operators are rarely compile-time constant in practice.
func (c *Compiler) compileBinOp(n *ast.Node, e *ast.BinOp) foldResult {
	switch e.Op {
	case "&&", "||", "??":
		return foldResult{closure: func(self value.Value, env *eval.Environment) (value.Value, error) {
			return c.ev.EvalNode(n, self, env)
		}}
	}

	lhs := c.compileExpr(e.LHS)
	rhs := c.compileExpr(e.RHS)
	if lhs.constant != nil && rhs.constant != nil {
		if v, err := eval.ApplyBinOp(e.Op, lhs.constant, rhs.constant, n.Range); err == nil {
			return constant(v)
		}
	}
	lc, rc, op, rng := lhs.closure, rhs.closure, e.Op, n.Range
	return foldResult{closure: func(self value.Value, env *eval.Environment) (value.Value, error) {
		l, err := lc(self, env)
		if err != nil {
			return nil, err
		}
		r, err := rc(self, env)
		if err != nil {
			return nil, err
		}
		return eval.ApplyBinOp(op, l, r, rng)
	}}
}
