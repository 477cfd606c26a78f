package ast

// Param is one formal parameter of a def/fn/macro declaration. Default is
// nil for required parameters; Variadic marks the single tail parameter
// that absorbs remaining positional arguments (spec.md §4.2).
type Param struct {
	Name     string
	Default  *Node
	Variadic bool
}

// Def is `def name(params): body;` or `macro name(params): body;` when
// IsMacro is set.
type Def struct {
	Name    string
	Params  []Param
	Body    []*Node
	IsMacro bool
}

func (*Def) exprNode() {}

// Fn is an anonymous function literal `fn(params): body`.
type Fn struct {
	Params []Param
	Body   []*Node
}

func (*Fn) exprNode() {}

// Let introduces an immutable binding.
type Let struct {
	Binder string
	Value  *Node
}

func (*Let) exprNode() {}

// Var introduces a mutable binding.
type Var struct {
	Binder string
	Value  *Node
}

func (*Var) exprNode() {}

// AssignOp enumerates the compound-assignment operator family.
type AssignOp int

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignPipe
	AssignFloorDiv
)

// Assign updates an existing mutable binding: `target op= value`.
type Assign struct {
	Target string
	Value  *Node
	Op     AssignOp
}

func (*Assign) exprNode() {}

// Include loads another module's definitions into the current scope by
// name, without namespacing them.
type Include struct {
	Name string
}

func (*Include) exprNode() {}

// Import loads another module's definitions under an optional alias
// namespace.
type Import struct {
	Name  string
	Alias string // empty if no `as alias` clause
}

func (*Import) exprNode() {}

// Module declares a named namespace block.
type Module struct {
	Name string
	Body []*Node
}

func (*Module) exprNode() {}

// Quote wraps body so it is treated as AST data rather than executed;
// valid only inside a macro body (spec.md §9).
type Quote struct {
	Body *Node
}

func (*Quote) exprNode() {}

// Unquote splices an evaluated expression's AST back into a surrounding
// Quote; valid only inside a Quote.
type Unquote struct {
	Body *Node
}

func (*Unquote) exprNode() {}
