package mqengine_test

import (
	"strings"
	"testing"

	"github.com/mqlang/mq/pkg/mdast"
	"github.com/mqlang/mq/pkg/mqengine"
	"github.com/mqlang/mq/pkg/value"
)

// These six tests each reproduce one of spec.md §8's end-to-end scenarios
// through Engine.Eval/CheckTypes. Two of them (snake-to-camel, Fibonacci)
// restate their reference source through LoadBuiltinModule + include
// rather than a single inline def-then-call string: a def's body is
// closed only by a semicolon-or-EOF boundary with no lookahead past it
// (see pkg/eval/eval_test.go's TestLetAndDefCall), so a def followed by
// more top-level code in the very same parse would fold that code into
// the def's own body instead of running it. Defining the function as its
// own module keeps the def as the only top-level statement in its source
// and calls it from a separate, ordinary top-level statement.

func TestScenarioHeadingSelect(t *testing.T) {
	doc := mdast.NewDocument(
		mdast.NewHeading(1, mdast.NewStrong(mdast.NewText("title"))),
		mdast.NewList(false, mdast.NewListItem(mdast.NewText("a")), mdast.NewListItem(mdast.NewText("b"))),
	)

	var inputs []value.Value
	for _, c := range doc.Children() {
		inputs = append(inputs, &value.Markdown{Node: c})
	}

	e := mqengine.New()
	results, err := e.Eval(`.h | select(contains("title"));`, inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(inputs) {
		t.Fatalf("got %d results, want %d", len(results), len(inputs))
	}

	md, ok := results[0].(*value.Markdown)
	if !ok {
		t.Fatalf("result[0] = %v (%T), want *value.Markdown", results[0], results[0])
	}
	if got, want := md.String(), "# **title**\n"; got != want {
		t.Fatalf("result[0].String() = %q, want %q", got, want)
	}
	if _, ok := results[1].(value.None); !ok {
		t.Fatalf("result[1] = %v, want None (list is not a heading)", results[1])
	}
}

func TestScenarioSnakeToCamel(t *testing.T) {
	e := mqengine.New()
	if err := e.LoadBuiltinModule("snake", `def snake_to_camel(x): foreach (word, split(x, "_")): add(upcase(first(word)), downcase(slice(word, 1, len(word))));;`); err != nil {
		t.Fatalf("unexpected error loading module: %v", err)
	}

	results, err := e.Eval(`include "snake"; snake_to_camel("CAMEL_CASE") | join("");`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].String() != "CamelCase" {
		t.Fatalf("got %v, want [CamelCase]", results)
	}
}

func TestScenarioFibonacci(t *testing.T) {
	e := mqengine.New()
	fib := `def fib(x): if (x == 0): 0 elif (x == 1): 1 else: fib(x - 1) + fib(x - 2);;`
	if err := e.LoadBuiltinModule("fib", fib); err != nil {
		t.Fatalf("unexpected error loading module: %v", err)
	}

	results, err := e.Eval(`include "fib"; fib(10);`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].String() != "55" {
		t.Fatalf("got %v, want [55]", results)
	}
}

func TestScenarioTypeError(t *testing.T) {
	e := mqengine.New()
	res, err := e.CheckTypes(`1 + "x";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.TypeErrors) != 1 {
		t.Fatalf("got %d type errors, want 1: %v", len(res.TypeErrors), res.TypeErrors)
	}
}

func TestScenarioUnresolvedSymbolWithSuggestion(t *testing.T) {
	e := mqengine.New()
	res, err := e.CheckTypes(`let test = 1; let test2 = 1; tost;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var unresolved []string
	for _, d := range res.Diagnostics {
		if d.Kind == "UnresolvedSymbol" {
			unresolved = append(unresolved, d.Message)
		}
	}
	if len(unresolved) != 1 {
		t.Fatalf("got %d UnresolvedSymbol diagnostics, want 1: %v", len(unresolved), res.Diagnostics)
	}
	if !strings.Contains(unresolved[0], "test") {
		t.Fatalf("diagnostic %q does not suggest a similar name", unresolved[0])
	}
}

func TestScenarioTryCatch(t *testing.T) {
	e := mqengine.New()
	results, err := e.Eval(`try: error("boom"); catch: "recovered";;`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].String() != "recovered" {
		t.Fatalf("got %v, want [recovered]", results)
	}
}

func TestScenarioTryWithoutCatchPropagatesError(t *testing.T) {
	e := mqengine.New()
	_, err := e.Eval(`try: error("boom");`, nil)
	if err == nil {
		t.Fatalf("expected the error to propagate with no catch branch")
	}
}
