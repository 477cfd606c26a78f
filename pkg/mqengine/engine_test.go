package mqengine_test

import (
	"strings"
	"testing"

	"github.com/mqlang/mq/pkg/mqengine"
	"github.com/mqlang/mq/pkg/value"
)

func TestEvalArithmetic(t *testing.T) {
	e := mqengine.New()
	results, err := e.Eval("1 + 2 * 3;", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].String() != "7" {
		t.Fatalf("got %v, want [7]", results)
	}
}

func TestEvalEmptyInputsRunsOnceAgainstNone(t *testing.T) {
	e := mqengine.New()
	results, err := e.Eval("self;", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if _, ok := results[0].(value.None); !ok {
		t.Fatalf("got %v, want None", results[0])
	}
}

func TestEvalRunsOncePerInput(t *testing.T) {
	e := mqengine.New()
	inputs := []value.Value{value.Number(1), value.Number(2), value.Number(3)}
	results, err := e.Eval("self + 1;", inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2", "3", "4"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, w := range want {
		if results[i].String() != w {
			t.Fatalf("result[%d] = %v, want %v", i, results[i], w)
		}
	}
}

// Bindings do not persist across Eval calls, since each call gets its own
// fresh root environment; this test checks that they survive *across
// inputs within one* Eval call, which is the guarantee Eval's doc comment
// makes. `total ?? 0` keeps the running total once the first run has
// defined it.
func TestEvalSharesRootEnvAcrossInputs(t *testing.T) {
	e := mqengine.New()
	results, err := e.Eval(`var total = total ?? 0; total = total + self; total;`, []value.Value{value.Number(1), value.Number(2), value.Number(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1", "3", "6"}
	for i, w := range want {
		if results[i].String() != w {
			t.Fatalf("result[%d] = %v, want %v", i, results[i], w)
		}
	}
}

func TestEvalParseErrorIsReported(t *testing.T) {
	e := mqengine.New()
	_, err := e.Eval("1 +;", nil)
	if err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestLoadBuiltinModuleThenInclude(t *testing.T) {
	e := mqengine.New()
	if err := e.LoadBuiltinModule("mathlib", "def double(x): x * 2;"); err != nil {
		t.Fatalf("unexpected error loading module: %v", err)
	}
	results, err := e.Eval(`include "mathlib"; double(21);`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].String() != "42" {
		t.Fatalf("got %v, want [42]", results)
	}
}

func TestLoadBuiltinModuleViaImportAlias(t *testing.T) {
	e := mqengine.New()
	if err := e.LoadBuiltinModule("mathlib", "def double(x): x * 2;"); err != nil {
		t.Fatalf("unexpected error loading module: %v", err)
	}
	results, err := e.Eval(`import "mathlib" as math; math.double(10);`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].String() != "20" {
		t.Fatalf("got %v, want [20]", results)
	}
}

func TestCompilerAndTreeWalkerAgree(t *testing.T) {
	src := "1 + 2 * 3;"
	tw := mqengine.New()
	twResults, err := tw.Eval(src, nil)
	if err != nil {
		t.Fatalf("tree-walk error: %v", err)
	}

	compiled := mqengine.New(mqengine.WithCompiler(true))
	cResults, err := compiled.Eval(src, nil)
	if err != nil {
		t.Fatalf("compiled error: %v", err)
	}

	if twResults[0].String() != cResults[0].String() {
		t.Fatalf("tree-walk %v != compiled %v", twResults[0], cResults[0])
	}
}

func TestTokenize(t *testing.T) {
	e := mqengine.New()
	toks, errs := e.Tokenize("1 + 2;")
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	if len(toks) == 0 {
		t.Fatalf("expected at least one token")
	}
}

func TestParse(t *testing.T) {
	e := mqengine.New()
	nodes, errs := e.Parse("1 + 2;")
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
}

func TestCheckTypesReportsTypeError(t *testing.T) {
	e := mqengine.New()
	res, err := e.CheckTypes(`1 + "x";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.TypeErrors) == 0 {
		t.Fatalf("expected at least one type error")
	}
}

func TestCheckTypesReportsUnresolvedSymbolWithSuggestion(t *testing.T) {
	e := mqengine.New()
	res, err := e.CheckTypes(`let test = 1; let test2 = 1; tost;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var found *struct{ msg string }
	for _, d := range res.Diagnostics {
		if d.Kind == "UnresolvedSymbol" {
			found = &struct{ msg string }{d.Message}
			break
		}
	}
	if found == nil {
		t.Fatalf("expected an UnresolvedSymbol diagnostic, got %+v", res.Diagnostics)
	}
	if !strings.Contains(found.msg, "test") {
		t.Fatalf("diagnostic %q does not mention a similar name", found.msg)
	}
}

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	cfg, err := mqengine.LoadConfig("/nonexistent/path/.mqrc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.SearchPaths) != 0 || cfg.UseCompiler {
		t.Fatalf("got %+v, want zero-value config", cfg)
	}
}
