package parser

import (
	"testing"

	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/token"
)

func testParser(t *testing.T, input string) *Parser {
	t.Helper()
	return NewFromSource(input, 0)
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errs := p.Errors()
	if len(errs) == 0 {
		return
	}
	for _, e := range errs {
		t.Errorf("parser error: %s", e.Error())
	}
	t.FailNow()
}

func TestNumberLiteral(t *testing.T) {
	p := testParser(t, "42;")
	nodes, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	lit, ok := nodes[0].Expr.(*ast.NumberLit)
	if !ok {
		t.Fatalf("expr is %T, want *ast.NumberLit", nodes[0].Expr)
	}
	if lit.Value != 42 {
		t.Errorf("Value = %v, want 42", lit.Value)
	}
}

func TestBinOpPrecedence(t *testing.T) {
	tests := []struct {
		input string
		op    string
	}{
		{"1 + 2 * 3;", "+"},  // top-level op is the lowest-precedence one
		{"1 * 2 + 3;", "+"},
		{"2 ^ 3 ^ 2;", "^"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := testParser(t, tt.input)
			nodes, errs := p.Parse()
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			bin, ok := nodes[0].Expr.(*ast.BinOp)
			if !ok {
				t.Fatalf("expr is %T, want *ast.BinOp", nodes[0].Expr)
			}
			if bin.Op != tt.op {
				t.Errorf("top-level op = %q, want %q", bin.Op, tt.op)
			}
		})
	}
}

func TestPipeLeftAssociative(t *testing.T) {
	p := testParser(t, "self | f() | g();")
	nodes, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	pipe, ok := nodes[0].Expr.(*ast.Pipe)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Pipe", nodes[0].Expr)
	}
	// Outer pipe's RHS should be g(); its LHS should itself be a pipe
	// whose RHS is f() — i.e. (self | f()) | g().
	if _, ok := pipe.RHS.Expr.(*ast.Call); !ok {
		t.Fatalf("outer RHS is %T, want *ast.Call", pipe.RHS.Expr)
	}
	inner, ok := pipe.LHS.Expr.(*ast.Pipe)
	if !ok {
		t.Fatalf("outer LHS is %T, want *ast.Pipe", pipe.LHS.Expr)
	}
	if _, ok := inner.LHS.Expr.(*ast.Self); !ok {
		t.Fatalf("innermost LHS is %T, want *ast.Self", inner.LHS.Expr)
	}
}

func TestCallWithArgs(t *testing.T) {
	p := testParser(t, `add(1, 2);`)
	nodes, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	call, ok := nodes[0].Expr.(*ast.Call)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Call", nodes[0].Expr)
	}
	if call.Name != "add" || len(call.Args) != 2 {
		t.Errorf("got Call{%q, %d args}, want {add, 2 args}", call.Name, len(call.Args))
	}
}

func TestOptionalCall(t *testing.T) {
	p := testParser(t, `risky()?;`)
	nodes, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	call := nodes[0].Expr.(*ast.Call)
	if !call.Optional {
		t.Errorf("expected Optional=true")
	}
}

func TestLetAndVar(t *testing.T) {
	p := testParser(t, `let x = 1;`)
	nodes, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	let, ok := nodes[0].Expr.(*ast.Let)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Let", nodes[0].Expr)
	}
	if let.Binder != "x" {
		t.Errorf("Binder = %q, want x", let.Binder)
	}
}

func TestAssignCompound(t *testing.T) {
	p := testParser(t, `x += 1;`)
	nodes, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	assign, ok := nodes[0].Expr.(*ast.Assign)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Assign", nodes[0].Expr)
	}
	if assign.Op != ast.AssignAdd {
		t.Errorf("Op = %v, want AssignAdd", assign.Op)
	}
}

func TestDefWithParams(t *testing.T) {
	p := testParser(t, `def add(a, b = 1, *rest): a;`)
	nodes, errs := p.Parse()
	checkParserErrors(t, p)
	def, ok := nodes[0].Expr.(*ast.Def)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Def", nodes[0].Expr)
	}
	if def.Name != "add" || len(def.Params) != 3 {
		t.Fatalf("got Def{%q, %d params}, want {add, 3}", def.Name, len(def.Params))
	}
	if def.Params[1].Default == nil {
		t.Errorf("param b should have a default")
	}
	if !def.Params[2].Variadic {
		t.Errorf("param rest should be variadic")
	}
}

func TestParamOrderingError(t *testing.T) {
	p := testParser(t, `def bad(a = 1, b): a;`)
	_, errs := p.Parse()
	if len(errs) == 0 {
		t.Fatalf("expected a ParameterWithoutDefaultAfterDefault error")
	}
	if errs[0].Kind != ParameterWithoutDefaultAfterDefault {
		t.Errorf("Kind = %v, want ParameterWithoutDefaultAfterDefault", errs[0].Kind)
	}
}

func TestIfElifElse(t *testing.T) {
	p := testParser(t, `if (true): 1 elif (false): 2 else: 3;`)
	nodes, errs := p.Parse()
	checkParserErrors(t, p)
	iff, ok := nodes[0].Expr.(*ast.If)
	if !ok {
		t.Fatalf("expr is %T, want *ast.If", nodes[0].Expr)
	}
	if len(iff.Branches) != 3 {
		t.Fatalf("got %d branches, want 3", len(iff.Branches))
	}
	if iff.Branches[2].Cond != nil {
		t.Errorf("trailing else branch should have nil Cond")
	}
}

func TestMatchPatterns(t *testing.T) {
	p := testParser(t, `match x: [h | t]: h, _: 0;`)
	nodes, errs := p.Parse()
	checkParserErrors(t, p)
	m, ok := nodes[0].Expr.(*ast.Match)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Match", nodes[0].Expr)
	}
	if len(m.Arms) != 2 {
		t.Fatalf("got %d arms, want 2", len(m.Arms))
	}
	arrPat, ok := m.Arms[0].Pattern.(*ast.ArrayPattern)
	if !ok {
		t.Fatalf("first pattern is %T, want *ast.ArrayPattern", m.Arms[0].Pattern)
	}
	if arrPat.Rest == nil || arrPat.Rest.Name != "t" {
		t.Errorf("expected cons rest binding %q", "t")
	}
	if _, ok := m.Arms[1].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("second pattern is %T, want *ast.WildcardPattern", m.Arms[1].Pattern)
	}
}

func TestSelectorToken(t *testing.T) {
	p := testParser(t, `self | .h;`)
	nodes, errs := p.Parse()
	checkParserErrors(t, p)
	pipe := nodes[0].Expr.(*ast.Pipe)
	sel, ok := pipe.RHS.Expr.(*ast.Selector)
	if !ok {
		t.Fatalf("RHS is %T, want *ast.Selector", pipe.RHS.Expr)
	}
	if sel.Src != ".h" {
		t.Errorf("Src = %q, want .h", sel.Src)
	}
}

func TestIncludeImportModule(t *testing.T) {
	p := testParser(t, `include "strings"; import "math" as m; module util: let x = 1; end`)
	nodes, errs := p.Parse()
	checkParserErrors(t, p)
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	if _, ok := nodes[0].Expr.(*ast.Include); !ok {
		t.Errorf("nodes[0] is %T, want *ast.Include", nodes[0].Expr)
	}
	imp, ok := nodes[1].Expr.(*ast.Import)
	if !ok {
		t.Fatalf("nodes[1] is %T, want *ast.Import", nodes[1].Expr)
	}
	if imp.Alias != "m" {
		t.Errorf("Alias = %q, want m", imp.Alias)
	}
	mod, ok := nodes[2].Expr.(*ast.Module)
	if !ok {
		t.Fatalf("nodes[2] is %T, want *ast.Module", nodes[2].Expr)
	}
	if mod.Name != "util" || len(mod.Body) != 1 {
		t.Errorf("got Module{%q, %d body}, want {util, 1}", mod.Name, len(mod.Body))
	}
}

func TestRecoveryAfterUnexpectedToken(t *testing.T) {
	p := testParser(t, `)); let y = 1;`)
	nodes, errs := p.Parse()
	if len(errs) == 0 {
		t.Fatalf("expected synchronization to report at least one error")
	}
	found := false
	for _, n := range nodes {
		if let, ok := n.Expr.(*ast.Let); ok && let.Binder == "y" {
			found = true
		}
	}
	if !found {
		t.Errorf("parser did not recover to parse the statement after the bad tokens")
	}
}

func TestInterpolatedString(t *testing.T) {
	// The lexer is responsible for detecting interpolation boundaries;
	// here we exercise the parser's splitting of an already-tokenized
	// INTERP_STRING whose raw text carries a single ${...} segment.
	toks := []token.Token{
		{Kind: token.INTERP_STRING, Text: "hello ${1 + 2}!"},
		{Kind: token.SEMICOLON, Text: ";"},
		{Kind: token.EOF},
	}
	p := New(toks)
	nodes, errs := p.Parse()
	checkParserErrors(t, p)
	is, ok := nodes[0].Expr.(*ast.InterpolatedString)
	if !ok {
		t.Fatalf("expr is %T, want *ast.InterpolatedString", nodes[0].Expr)
	}
	if len(is.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(is.Segments))
	}
	if is.Segments[0].IsExpr || is.Segments[0].Text != "hello " {
		t.Errorf("segment 0 = %+v, want literal %q", is.Segments[0], "hello ")
	}
	if !is.Segments[1].IsExpr {
		t.Errorf("segment 1 should be an expression segment")
	}
	if is.Segments[2].IsExpr || is.Segments[2].Text != "!" {
		t.Errorf("segment 2 = %+v, want literal %q", is.Segments[2], "!")
	}
}
