package ast

import "github.com/mqlang/mq/pkg/token"

// Expr is the tagged-variant payload of a Node. Each concrete type below
// corresponds to one AST production named in spec.md §3.
type Expr interface {
	exprNode()
}

// Node is one position in the AST: a token reference plus its expression
// payload. The AST is immutable after parsing.
type Node struct {
	TokenID TokenID
	Range   token.Range
	Expr    Expr
}

// Walk calls fn for n and recursively for every child Node, depth-first.
// fn returns false to skip a node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Children returns the immediate child nodes of n, in source order. Leaf
// expressions (literals, identifiers, break/continue) return nil.
func Children(n *Node) []*Node {
	if n == nil {
		return nil
	}
	switch e := n.Expr.(type) {
	case *Call:
		return e.Args
	case *CallDynamic:
		cs := append([]*Node{e.Callee}, e.Args...)
		return cs
	case *Def:
		return append([]*Node{}, e.Body...)
	case *Fn:
		return append([]*Node{}, e.Body...)
	case *Let:
		return []*Node{e.Value}
	case *Var:
		return []*Node{e.Value}
	case *Assign:
		return []*Node{e.Value}
	case *If:
		var out []*Node
		for _, b := range e.Branches {
			if b.Cond != nil {
				out = append(out, b.Cond)
			}
			out = append(out, b.Then...)
		}
		return out
	case *While:
		return append([]*Node{e.Cond}, e.Body...)
	case *Until:
		return append([]*Node{e.Cond}, e.Body...)
	case *Loop:
		return e.Body
	case *Foreach:
		return append([]*Node{e.Seq}, e.Body...)
	case *Do:
		return e.Block
	case *Try:
		out := append([]*Node{}, e.Body...)
		if e.Catch != nil {
			out = append(out, e.Catch...)
		}
		return out
	case *Match:
		out := []*Node{e.Scrutinee}
		for _, arm := range e.Arms {
			out = append(out, arm.Body)
		}
		return out
	case *Pipe:
		return []*Node{e.LHS, e.RHS}
	case *BinOp:
		return []*Node{e.LHS, e.RHS}
	case *UnOp:
		return []*Node{e.RHS}
	case *InterpolatedString:
		var out []*Node
		for _, seg := range e.Segments {
			if seg.IsExpr {
				out = append(out, seg.Expr)
			}
		}
		return out
	case *Module:
		return e.Body
	case *Quote:
		return []*Node{e.Body}
	case *Unquote:
		return []*Node{e.Body}
	default:
		return nil
	}
}

// --- literals and atoms ---

// Literal kinds.
type (
	// NumberLit is a numeric literal, stored as its parsed float64 value;
	// integer-vs-float display is decided later by value.Number's epsilon rule.
	NumberLit struct{ Value float64 }
	StringLit struct{ Value string }
	BoolLit   struct{ Value bool }
	NoneLit   struct{}

	// Ident is a bare identifier reference in value context.
	Ident struct{ Name string }

	// Self is the `self` keyword, referring to the current pipeline input.
	Self struct{}

	// Nodes is the `nodes` keyword, referring to the whole input corpus.
	Nodes struct{}

	// Break and Continue are loop control statements.
	Break    struct{}
	Continue struct{}
)

func (*NumberLit) exprNode() {}
func (*StringLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*NoneLit) exprNode()   {}
func (*Ident) exprNode()     {}
func (*Self) exprNode()      {}
func (*Nodes) exprNode()     {}
func (*Break) exprNode()     {}
func (*Continue) exprNode()  {}

// StringSegment is one piece of an interpolated string: literal text or a
// re-parsed expression.
type StringSegment struct {
	IsExpr bool
	Text   string // when !IsExpr
	Expr   *Node  // when IsExpr: the parsed sub-expression
	Src    string // raw source text of the ${...} body, for re-lexing/errors
}

// InterpolatedString is `s"...${expr}..."`.
type InterpolatedString struct {
	Segments []StringSegment
}

func (*InterpolatedString) exprNode() {}

// Selector is a dotted node-predicate path, e.g. `.h`, `.code("js")`,
// `.[]`, `.[][]`. Src is the raw selector text (without surrounding
// whitespace); the evaluator compiles it to a SelectorProgram the first
// time it is evaluated and caches the result by Src.
type Selector struct {
	Src string
}

func (*Selector) exprNode() {}

// QualifiedAccess is `path.to.name`, used for module member access.
type QualifiedAccess struct {
	Path []string
}

func (*QualifiedAccess) exprNode() {}
