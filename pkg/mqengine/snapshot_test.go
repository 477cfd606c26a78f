package mqengine_test

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/mqlang/mq/pkg/mqengine"
)

// TestTokenizeAndParseSnapshots mirrors the teacher's go-snaps-backed
// fixture suite (internal/interp/fixture_test.go's TestDWScriptFixtures),
// retargeted from whole-program execution traces to Tokenize/Parse output
// across a representative program catalog, so a lexer or parser
// regression shows up as a snapshot diff instead of a silent behavior
// change.
func TestTokenizeAndParseSnapshots(t *testing.T) {
	programs := []struct {
		name string
		src  string
	}{
		{"arithmetic", "1 + 2 * 3;"},
		{"pipe_chain", `"hello" | upcase() | trim();`},
		{"def_and_if", `def fib(x): if (x == 0): 0 elif (x == 1): 1 else: fib(x - 1) + fib(x - 2);;`},
		{"selector", `.h | select(contains("title"));`},
		{"try_catch", `try: error("boom"); catch: "recovered";;`},
		{"interpolated_string", `let name = "world"; s"hello ${name}";`},
	}

	e := mqengine.New()
	for _, p := range programs {
		t.Run(p.name, func(t *testing.T) {
			toks, lexErrs := e.Tokenize(p.src)
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_tokens", p.name), toks, lexErrs)

			nodes, parseErrs := e.Parse(p.src)
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_ast", p.name), nodes, parseErrs)
		})
	}
}
