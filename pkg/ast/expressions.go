package ast

// Call is a named function call `name(args)`. Optional marks the `?`
// suffix (`f(x)?`) that converts any RuntimeError into None instead of
// propagating it (spec.md §4.6).
type Call struct {
	Name     string
	Args     []*Node
	Optional bool
}

func (*Call) exprNode() {}

// CallDynamic invokes a callee expression that is not a bare name (e.g. a
// value bound to a variable, or the result of another expression).
type CallDynamic struct {
	Callee   *Node
	Args     []*Node
	Optional bool
}

func (*CallDynamic) exprNode() {}

// Pipe is `lhs | rhs`: the lowest-precedence, left-associative composition
// operator. The output of LHS becomes the input of RHS.
type Pipe struct {
	LHS, RHS *Node
}

func (*Pipe) exprNode() {}

// BinOp is a binary operator application.
type BinOp struct {
	Op       string // e.g. "+", "==", "&&"
	LHS, RHS *Node
}

func (*BinOp) exprNode() {}

// UnOp is a unary operator application (`!`, `-`).
type UnOp struct {
	Op  string
	RHS *Node
}

func (*UnOp) exprNode() {}
