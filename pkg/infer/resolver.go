package infer

import (
	"fmt"

	"github.com/mqlang/mq/pkg/hir"
)

// scopeLocalPriority ranks a SymbolKind for within-scope lookup (spec.md
// §4.4): lower wins.
func scopeLocalPriority(k hir.SymbolKind) (int, bool) {
	switch k {
	case hir.SymArgument:
		return 0, true
	case hir.SymParameter, hir.SymPatternVariable:
		return 1, true
	case hir.SymIdent:
		return 2, true
	case hir.SymVariable:
		return 3, true
	case hir.SymFunction:
		return 4, true
	}
	return 0, false
}

// crossSourcePriority ranks a SymbolKind for cross-source lookup (spec.md
// §4.4), used once the scope chain up to the Module scope is exhausted.
func crossSourcePriority(k hir.SymbolKind) (int, bool) {
	switch k {
	case hir.SymFunction:
		return 0, true
	case hir.SymVariable:
		return 1, true
	case hir.SymParameter, hir.SymPatternVariable, hir.SymIdent:
		return 2, true
	case hir.SymArgument:
		return 3, true
	}
	return 0, false
}

// isUsage reports whether k is a symbol kind the resolver binds (spec.md §4.4: "for
// every Ref, Call, CallDynamic, Argument, QualifiedAccess symbol").
func isUsage(k hir.SymbolKind) bool {
	switch k {
	case hir.SymRef, hir.SymCall, hir.SymCallDynamic, hir.SymArgument, hir.SymQualifiedAccess:
		return true
	}
	return false
}

func isDefinable(k hir.SymbolKind) bool {
	switch k {
	case hir.SymFunction, hir.SymParameter, hir.SymVariable, hir.SymIdent, hir.SymPatternVariable:
		return true
	}
	return false
}

// Diagnostic is a resolver-produced finding.
type Diagnostic struct {
	Kind    string // UnresolvedSymbol or UnreachableCode from Resolve
	Message string
	Symbol  hir.SymbolID
}

// Resolution is the resolver's output: every usage symbol's id mapped to
// its defining symbol id (spec.md §4.4: "record references[use] = def").
type Resolution struct {
	References  map[hir.SymbolID]hir.SymbolID
	Diagnostics []Diagnostic
}

// source bundles one HIR with the sources it can see definitions from, for
// cross-source lookup ordering.
type source struct {
	h     *hir.HIR
	alias string // import alias, "" for include or the root source
}

// Resolve binds every usage symbol in h (and its include/import graph) to
// a defining symbol, per spec.md §4.4's scope-local then cross-source
// lookup rules.
func Resolve(h *hir.HIR) *Resolution {
	r := &Resolution{References: map[hir.SymbolID]hir.SymbolID{}}

	sources := []source{{h: h}}
	for _, inc := range h.Includes {
		if inc.HIR != nil {
			sources = append(sources, source{h: inc.HIR, alias: inc.Alias})
		}
	}
	// The builtin source always comes last, so a user definition of the
	// same name (in the root source or an include) still wins ties per
	// spec.md §4.4's "ties broken by insertion order of sources".
	sources = append(sources, source{h: hir.BuiltinSource()})

	for i := range h.Symbols {
		sym := h.Symbols[i]
		if !isUsage(sym.Kind) || sym.Name == "" {
			continue
		}
		if def, ok := resolveScopeLocal(h, sym); ok {
			r.References[sym.ID] = def
			continue
		}
		if def, ok := resolveCrossSource(sources, sym); ok {
			r.References[sym.ID] = def
			continue
		}
		similar, hasSimilar := mostSimilar(sym.Name, visibleNames(h, sources))
		msg := fmt.Sprintf("unresolved symbol %q", sym.Name)
		if hasSimilar {
			msg = fmt.Sprintf("unresolved symbol %q (did you mean %q?)", sym.Name, similar)
		}
		r.Diagnostics = append(r.Diagnostics, Diagnostic{Kind: "UnresolvedSymbol", Message: msg, Symbol: sym.ID})
	}

	r.Diagnostics = append(r.Diagnostics, unreachableCode(h)...)
	return r
}

// resolveScopeLocal walks sym's scope chain up to the Module scope,
// picking the best-priority definable symbol visible in each scope.
func resolveScopeLocal(h *hir.HIR, sym hir.Symbol) (hir.SymbolID, bool) {
	for scope := sym.ScopeID; scope != hir.NoScope; scope = h.Scopes[scope].ParentID {
		best, bestPrio, found := hir.SymbolID(0), -1, false
		for _, sid := range h.Scopes[scope].Symbols {
			cand := h.Symbols[sid]
			if cand.ID == sym.ID || !isDefinable(cand.Kind) || cand.Name != sym.Name {
				continue
			}
			prio, ok := scopeLocalPriority(cand.Kind)
			if !ok {
				continue
			}
			if !found || prio < bestPrio {
				best, bestPrio, found = cand.ID, prio, true
			}
		}
		if found {
			return best, true
		}
	}
	return 0, false
}

// resolveCrossSource iterates sources in insertion order, applying
// cross-source priority (spec.md §4.4); first match by priority wins,
// ties broken by source order.
func resolveCrossSource(sources []source, sym hir.Symbol) (hir.SymbolID, bool) {
	bestPrio := -1
	var best hir.SymbolID
	found := false
	for _, src := range sources {
		for _, cand := range src.h.Symbols {
			if !isDefinable(cand.Kind) || cand.Name != sym.Name {
				continue
			}
			prio, ok := crossSourcePriority(cand.Kind)
			if !ok {
				continue
			}
			if !found || prio < bestPrio {
				best, bestPrio, found = cand.ID, prio, true
			}
		}
	}
	return best, found
}

func visibleNames(h *hir.HIR, sources []source) []string {
	var names []string
	seen := map[string]bool{}
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, sym := range h.Symbols {
		if sym.Kind == hir.SymFunction || sym.Kind == hir.SymVariable {
			add(sym.Name)
		}
	}
	for _, src := range sources {
		for _, sym := range src.h.Symbols {
			if sym.Kind == hir.SymFunction || sym.Kind == hir.SymVariable {
				add(sym.Name)
			}
		}
	}
	return names
}

// isStatementLevel reports whether a symbol kind represents a sibling
// statement for UnreachableCode purposes, as opposed to bookkeeping (e.g.
// SymArgument) recorded for a call that precedes (not follows) its own
// arguments in the scope's symbol list.
func isStatementLevel(k hir.SymbolKind) bool {
	switch k {
	case hir.SymCall, hir.SymCallDynamic, hir.SymFunction, hir.SymVariable, hir.SymIdent:
		return true
	}
	return false
}

// unreachableCode flags the first statement-level symbol that follows a
// sibling call to `halt` in the same scope (spec.md §4.4's UnreachableCode
// warning); the symbols after it in that run are not flagged again.
func unreachableCode(h *hir.HIR) []Diagnostic {
	var diags []Diagnostic
	for _, scope := range h.Scopes {
		haltSeen := false
		for _, sid := range scope.Symbols {
			sym := h.Symbols[sid]
			if !isStatementLevel(sym.Kind) {
				continue
			}
			if haltSeen {
				diags = append(diags, Diagnostic{
					Kind:    "UnreachableCode",
					Message: fmt.Sprintf("unreachable: %q follows a call to halt", sym.Name),
					Symbol:  sym.ID,
				})
				haltSeen = false // one warning per run of dead code, not per symbol
			}
			if sym.Kind == hir.SymCall && sym.Name == "halt" {
				haltSeen = true
			}
		}
	}
	return diags
}
