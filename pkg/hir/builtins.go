package hir

import "github.com/mqlang/mq/pkg/token"

// builtinNames lists every built-in function name, mirroring
// pkg/eval/builtins.go's defaultBuiltins registry and pkg/infer/
// builtins.go's builtinScheme switch — the three phases (runtime dispatch,
// declared type, resolvable symbol) each keep their own list rather than
// sharing one across package boundaries that would otherwise cycle.
var builtinNames = []string{
	"len", "push", "keys", "values", "first", "last", "slice", "split",
	"add", "contains", "select", "join",
	"to_text", "to_markdown", "to_number", "to_string",
	"error", "halt",
	"upcase", "downcase", "upper", "lower", "trim",
	"snake_case", "camel_case", "kebab_case", "pascal_case",
}

// BuiltinSourceID is the synthetic SourceID a builtin source's symbols
// carry. It is negative so it never collides with a real parsed source's
// token.SourceID, which pkg/mqengine hands out starting at 1.
const BuiltinSourceID token.SourceID = -1

// BuiltinSource returns the preloaded source naming every built-in
// function (spec.md §3: "A preloaded builtin source whose symbols
// describe every built-in function and selector"), so cross-source
// resolution can bind a call to `select`/`contains`/`halt`/etc. the same
// way it binds a call into an included module instead of reporting
// UnresolvedSymbol for every builtin call in the tree.
//
// Named selectors (`.h`, `.p`, ...) are not modeled here: a Selector AST
// node carries its own src string and is never walked into a Ref/Call
// usage symbol (see walker.walk's default case), so there is no usage
// site that would ever need to look one up against this source.
func BuiltinSource() *HIR {
	h := &HIR{SourceID: BuiltinSourceID}
	scope := h.newScope(ScopeModule, NoScope)
	for _, name := range builtinNames {
		h.addSymbol(SymFunction, name, scope, nil)
	}
	return h
}
