package infer_test

import (
	"testing"

	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/infer"
	"github.com/mqlang/mq/pkg/parser"
	"github.com/mqlang/mq/pkg/token"
	"github.com/mqlang/mq/pkg/typesys"
)

func parseProgram(t *testing.T, src string) []*ast.Node {
	t.Helper()
	p := parser.NewFromSource(src, token.SourceID(1))
	nodes, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	return nodes
}

func TestInferNumberLiteral(t *testing.T) {
	nodes := parseProgram(t, "1 + 2;")
	ty, errs := infer.NewInferencer().InferProgram(nodes)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !ty.Eq(typesys.TNumber) {
		t.Errorf("got %v, want Number", ty)
	}
}

func TestInferStringConcatOverload(t *testing.T) {
	nodes := parseProgram(t, `"a" + "b";`)
	ty, errs := infer.NewInferencer().InferProgram(nodes)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !ty.Eq(typesys.TString) {
		t.Errorf("got %v, want String", ty)
	}
}

func TestInferOverloadMismatch(t *testing.T) {
	nodes := parseProgram(t, `"a" + 1;`)
	_, errs := infer.NewInferencer().InferProgram(nodes)
	if len(errs) == 0 {
		t.Fatalf("expected a type error mixing String and Number in +")
	}
}

func TestInferLetGeneralization(t *testing.T) {
	// identity, applied to two different types: only generalization lets
	// both uses type-check against the same let-binding.
	nodes := parseProgram(t, `let id = (fn(x): x); id("a"); id(1);`)
	ty, errs := infer.NewInferencer().InferProgram(nodes)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !ty.Eq(typesys.TNumber) {
		t.Errorf("got %v, want Number", ty)
	}
}

func TestInferDefFunctionRecorded(t *testing.T) {
	nodes := parseProgram(t, "def double(x): x + x;")
	ty, errs := infer.NewInferencer().InferProgram(nodes)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	fn, ok := ty.(*typesys.Function)
	if !ok {
		t.Fatalf("got %T, want *typesys.Function", ty)
	}
	if len(fn.Params) != 1 {
		t.Fatalf("got %d params, want 1", len(fn.Params))
	}
}

func TestInferUndefinedSymbol(t *testing.T) {
	nodes := parseProgram(t, "totallyUnknownName;")
	_, errs := infer.NewInferencer().InferProgram(nodes)
	if len(errs) != 1 || errs[0].Kind != infer.UndefinedSymbol {
		t.Fatalf("got %v, want one UndefinedSymbol error", errs)
	}
}

func TestInferIfBranchesUnify(t *testing.T) {
	nodes := parseProgram(t, `if (true): 1 else: 2;`)
	ty, errs := infer.NewInferencer().InferProgram(nodes)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !ty.Eq(typesys.TNumber) {
		t.Errorf("got %v, want Number", ty)
	}
}

func TestInferForeachProducesArray(t *testing.T) {
	nodes := parseProgram(t, `foreach(item, self): item;`)
	ty, errs := infer.NewInferencer().InferProgram(nodes)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	arr, ok := ty.(*typesys.Array)
	if !ok {
		t.Fatalf("got %T, want *typesys.Array", ty)
	}
	if !arr.Elem.Eq(typesys.TMarkdown) {
		t.Errorf("got element type %v, want Markdown (self's scheme)", arr.Elem)
	}
}
