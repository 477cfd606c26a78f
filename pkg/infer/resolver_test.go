package infer_test

import (
	"testing"

	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/hir"
	"github.com/mqlang/mq/pkg/infer"
	"github.com/mqlang/mq/pkg/parser"
	"github.com/mqlang/mq/pkg/token"
)

func buildHIR(t *testing.T, src string) *hir.HIR {
	t.Helper()
	p := parser.NewFromSource(src, token.SourceID(1))
	nodes, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	adapter := func(s string, id token.SourceID) ([]*ast.Node, []error) {
		pp := parser.NewFromSource(s, id)
		n, pe := pp.Parse()
		out := make([]error, len(pe))
		for i, e := range pe {
			out[i] = e
		}
		return n, out
	}
	b := hir.NewBuilder(nil, 1, adapter)
	return b.Build(nodes, 1)
}

func TestResolveDefAndCall(t *testing.T) {
	h := buildHIR(t, "def add(a, b): a + b; add(1, 2);")
	res := infer.Resolve(h)

	var callSym, defSym hir.SymbolID
	for _, s := range h.Symbols {
		switch {
		case s.Kind == hir.SymCall && s.Name == "add":
			callSym = s.ID
		case s.Kind == hir.SymFunction && s.Name == "add":
			defSym = s.ID
		}
	}
	got, ok := res.References[callSym]
	if !ok || got != defSym {
		t.Errorf("call 'add' resolved to %v (ok=%v), want %v", got, ok, defSym)
	}
}

func TestResolveParameterShadowsOuter(t *testing.T) {
	h := buildHIR(t, "var x = 1; def f(x): x;")
	res := infer.Resolve(h)

	var paramSym, refSym hir.SymbolID
	for _, s := range h.Symbols {
		if s.Name != "x" {
			continue
		}
		switch s.Kind {
		case hir.SymParameter:
			paramSym = s.ID
		case hir.SymRef:
			refSym = s.ID
		}
	}
	got, ok := res.References[refSym]
	if !ok || got != paramSym {
		t.Errorf("reference to x inside f resolved to %v, want the parameter %v", got, paramSym)
	}
}

func TestResolveUnresolvedSymbolSuggestsSimilarName(t *testing.T) {
	h := buildHIR(t, "def length(a): a; lenght(1);")
	res := infer.Resolve(h)

	found := false
	for _, d := range res.Diagnostics {
		if d.Kind == "UnresolvedSymbol" {
			found = true
			if !contains(d.Message, "length") {
				t.Errorf("diagnostic %q should suggest 'length'", d.Message)
			}
		}
	}
	if !found {
		t.Fatalf("expected an UnresolvedSymbol diagnostic for 'lenght'")
	}
}

func TestResolveUnreachableCodeAfterHalt(t *testing.T) {
	h := buildHIR(t, `halt("stop"); unreachableCall();`)
	res := infer.Resolve(h)

	found := false
	for _, d := range res.Diagnostics {
		if d.Kind == "UnreachableCode" {
			found = true
		}
		if d.Kind == "UnresolvedSymbol" && contains(d.Message, "halt") {
			t.Errorf("halt is a builtin and must resolve, got diagnostic %q", d.Message)
		}
	}
	if !found {
		t.Fatalf("expected an UnreachableCode warning after halt(), got %+v", res.Diagnostics)
	}

	var haltSym hir.SymbolID
	for _, s := range h.Symbols {
		if s.Kind == hir.SymCall && s.Name == "halt" {
			haltSym = s.ID
		}
	}
	if _, ok := res.References[haltSym]; !ok {
		t.Fatalf("expected halt() to resolve to a builtin function symbol")
	}
}

func TestResolveBuiltinCallsDoNotReportUnresolvedSymbol(t *testing.T) {
	h := buildHIR(t, `select(contains("title"));`)
	res := infer.Resolve(h)

	for _, d := range res.Diagnostics {
		if d.Kind == "UnresolvedSymbol" {
			t.Errorf("builtin call incorrectly reported as unresolved: %q", d.Message)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
