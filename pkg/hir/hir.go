// Package hir builds mq's high-level IR: symbols and scopes over a parsed
// AST, one HIR per source, linked by an include/import graph (spec.md
// §4.3). Resolution (binding each use to a definition) and type inference
// are pkg/infer's job; this package only records the raw containment
// structure a resolver needs.
package hir

import (
	"github.com/pkg/errors"

	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/loader"
	"github.com/mqlang/mq/pkg/token"
)

// SymbolKind tags what a Symbol denotes.
type SymbolKind int

const (
	SymFunction SymbolKind = iota
	SymParameter
	SymVariable // var
	SymIdent    // let
	SymArgument
	SymRef         // identifier use in value context
	SymCall        // named call use
	SymCallDynamic // dynamic call use
	SymPatternVariable
	SymKeyword // if/elif/else/foreach/while/until/try/catch/match keyword, kept for semantic tokens
	SymModule
	SymQualifiedAccess
)

func (k SymbolKind) String() string {
	names := [...]string{
		"Function", "Parameter", "Variable", "Ident", "Argument", "Ref",
		"Call", "CallDynamic", "PatternVariable", "Keyword", "Module",
		"QualifiedAccess",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

type SymbolID int
type ScopeID int

// Symbol is one named (or keyword) entity recorded while walking the AST.
type Symbol struct {
	ID      SymbolID
	Kind    SymbolKind
	Name    string
	Range   token.Range
	ScopeID ScopeID // the scope this symbol is declared/used within
	Node    *ast.Node
	Doc     string // leading comment trivia, if any (defs only)
}

// ScopeKind tags a Scope's introducing construct.
type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeLet
	ScopeBlock
	ScopeLoop
)

func (k ScopeKind) String() string {
	names := [...]string{"Module", "Function", "Let", "Block", "Loop"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Scope is one lexical scope; ParentID chains to the enclosing scope, and
// -1 marks the module (root) scope.
type Scope struct {
	ID       ScopeID
	Kind     ScopeKind
	ParentID ScopeID
	Symbols  []SymbolID
}

const NoScope ScopeID = -1

// IncludeKind distinguishes `include` (unqualified merge) from `import`
// (namespaced, optionally aliased).
type IncludeKind int

const (
	KindInclude IncludeKind = iota
	KindImport
)

// Include records one include/import edge, resolved to the child source's
// own HIR.
type Include struct {
	Kind   IncludeKind
	Name   string
	Alias  string
	Source token.SourceID
	HIR    *HIR // nil if the module failed to load (see Diagnostics)
}

// HIR is the built representation for a single source.
type HIR struct {
	SourceID token.SourceID
	Symbols  []Symbol
	Scopes   []Scope
	Includes []Include
}

func (h *HIR) newScope(kind ScopeKind, parent ScopeID) ScopeID {
	id := ScopeID(len(h.Scopes))
	h.Scopes = append(h.Scopes, Scope{ID: id, Kind: kind, ParentID: parent})
	return id
}

func (h *HIR) addSymbol(kind SymbolKind, name string, scope ScopeID, n *ast.Node) SymbolID {
	id := SymbolID(len(h.Symbols))
	rng := token.Range{}
	if n != nil {
		rng = n.Range
	}
	h.Symbols = append(h.Symbols, Symbol{ID: id, Kind: kind, Name: name, Range: rng, ScopeID: scope, Node: n})
	if scope != NoScope {
		h.Scopes[scope].Symbols = append(h.Scopes[scope].Symbols, id)
	}
	return id
}

// Diagnostic mirrors the loader/resolver-facing errors a Build can
// surface without aborting (e.g. ModuleNotFound for a bad include).
type Diagnostic struct {
	Kind    string
	Message string
	Range   token.Range
}

// Builder walks a parsed source's top-level nodes and produces its HIR,
// recursively building HIR for every included/imported module via the
// supplied ModuleLoader (spec.md §4.3's "loads the module via
// ModuleLoader, builds HIR for it in a child source").
type Builder struct {
	loader    *loader.ModuleLoader
	nextSrc   token.SourceID
	cycles    loader.CycleChecker
	diags     []Diagnostic
	Parse     func(src string, id token.SourceID) ([]*ast.Node, []error)
	Docs      map[ast.TokenID]string
}

// NewBuilder creates a Builder. parse is injected (rather than importing
// pkg/parser directly) to avoid a hir<->parser import cycle, since the
// parser only needs pkg/ast and pkg/lexer.
func NewBuilder(l *loader.ModuleLoader, startSourceID token.SourceID, parse func(string, token.SourceID) ([]*ast.Node, []error)) *Builder {
	return &Builder{loader: l, nextSrc: startSourceID + 1, Parse: parse, Docs: map[ast.TokenID]string{}}
}

func (b *Builder) Diagnostics() []Diagnostic { return b.diags }

func (b *Builder) addDiag(kind, msg string, rng token.Range) {
	b.diags = append(b.diags, Diagnostic{Kind: kind, Message: msg, Range: rng})
}

// Build walks nodes (the top-level pipeline of sourceID) and returns its
// HIR.
func (b *Builder) Build(nodes []*ast.Node, sourceID token.SourceID) *HIR {
	h := &HIR{SourceID: sourceID}
	moduleScope := h.newScope(ScopeModule, NoScope)
	w := &walker{h: h, b: b}
	w.walkBlock(nodes, moduleScope)
	return h
}

type walker struct {
	h *HIR
	b *Builder
}

// walk visits n and returns the scope subsequent sibling statements in the
// same block should use — ordinarily the scope passed in, except for Let,
// whose binding extends rightward into a fresh child scope (spec.md §4.3).
func (w *walker) walk(n *ast.Node, scope ScopeID) ScopeID {
	if n == nil {
		return scope
	}
	switch e := n.Expr.(type) {
	case *ast.Def:
		sym := w.h.addSymbol(SymFunction, e.Name, scope, n)
		w.h.Symbols[sym].Doc = w.b.Docs[n.TokenID]
		fnScope := w.h.newScope(ScopeFunction, scope)
		for i := range e.Params {
			w.h.addSymbol(SymParameter, e.Params[i].Name, fnScope, nil)
			if e.Params[i].Default != nil {
				w.walk(e.Params[i].Default, scope)
			}
		}
		w.walkBlock(e.Body, fnScope)
		return scope

	case *ast.Fn:
		fnScope := w.h.newScope(ScopeFunction, scope)
		for i := range e.Params {
			w.h.addSymbol(SymParameter, e.Params[i].Name, fnScope, nil)
			if e.Params[i].Default != nil {
				w.walk(e.Params[i].Default, scope)
			}
		}
		w.walkBlock(e.Body, fnScope)
		return scope

	case *ast.Let:
		w.walk(e.Value, scope)
		letScope := w.h.newScope(ScopeLet, scope)
		w.h.addSymbol(SymIdent, e.Binder, letScope, n)
		return letScope

	case *ast.Var:
		w.walk(e.Value, scope)
		w.h.addSymbol(SymVariable, e.Binder, scope, n)
		return scope

	case *ast.Assign:
		w.walk(e.Value, scope)
		w.h.addSymbol(SymRef, e.Target, scope, n)
		return scope

	case *ast.If:
		for _, br := range e.Branches {
			if br.Cond != nil {
				w.walk(br.Cond, scope)
			}
			blockScope := w.h.newScope(ScopeBlock, scope)
			w.walkBlock(br.Then, blockScope)
		}
		return scope

	case *ast.While:
		w.walk(e.Cond, scope)
		loopScope := w.h.newScope(ScopeLoop, scope)
		w.walkBlock(e.Body, loopScope)
		return scope

	case *ast.Until:
		w.walk(e.Cond, scope)
		loopScope := w.h.newScope(ScopeLoop, scope)
		w.walkBlock(e.Body, loopScope)
		return scope

	case *ast.Loop:
		loopScope := w.h.newScope(ScopeLoop, scope)
		w.walkBlock(e.Body, loopScope)
		return scope

	case *ast.Foreach:
		w.walk(e.Seq, scope)
		loopScope := w.h.newScope(ScopeLoop, scope)
		w.h.addSymbol(SymPatternVariable, e.Binder, loopScope, n)
		w.walkBlock(e.Body, loopScope)
		return scope

	case *ast.Do:
		blockScope := w.h.newScope(ScopeBlock, scope)
		w.walkBlock(e.Block, blockScope)
		return scope

	case *ast.Try:
		bodyScope := w.h.newScope(ScopeBlock, scope)
		w.walkBlock(e.Body, bodyScope)
		if e.Catch != nil {
			catchScope := w.h.newScope(ScopeBlock, scope)
			w.walkBlock(e.Catch, catchScope)
		}
		return scope

	case *ast.Match:
		w.walk(e.Scrutinee, scope)
		for _, arm := range e.Arms {
			armScope := w.h.newScope(ScopeBlock, scope)
			w.bindPattern(arm.Pattern, armScope)
			w.walk(arm.Body, armScope)
		}
		return scope

	case *ast.Call:
		w.h.addSymbol(SymCall, e.Name, scope, n)
		for _, a := range e.Args {
			w.walk(a, scope)
			w.h.addSymbol(SymArgument, "", scope, a)
		}
		return scope

	case *ast.CallDynamic:
		w.walk(e.Callee, scope)
		for _, a := range e.Args {
			w.walk(a, scope)
			w.h.addSymbol(SymArgument, "", scope, a)
		}
		return scope

	case *ast.Ident:
		w.h.addSymbol(SymRef, e.Name, scope, n)
		return scope

	case *ast.QualifiedAccess:
		name := ""
		if len(e.Path) > 0 {
			name = e.Path[len(e.Path)-1]
		}
		w.h.addSymbol(SymQualifiedAccess, name, scope, n)
		return scope

	case *ast.Pipe:
		w.walk(e.LHS, scope)
		w.walk(e.RHS, scope)
		return scope

	case *ast.BinOp:
		w.walk(e.LHS, scope)
		w.walk(e.RHS, scope)
		return scope

	case *ast.UnOp:
		w.walk(e.RHS, scope)
		return scope

	case *ast.InterpolatedString:
		for _, seg := range e.Segments {
			if seg.IsExpr {
				w.walk(seg.Expr, scope)
			}
		}
		return scope

	case *ast.Module:
		modSym := w.h.addSymbol(SymModule, e.Name, scope, n)
		modScope := w.h.newScope(ScopeModule, scope)
		w.h.Symbols[modSym].ScopeID = modScope
		w.walkBlock(e.Body, modScope)
		return scope

	case *ast.Include:
		w.resolveModule(KindInclude, e.Name, "", n)
		return scope

	case *ast.Import:
		w.resolveModule(KindImport, e.Name, e.Alias, n)
		return scope

	case *ast.Quote:
		w.walk(e.Body, scope)
		return scope

	case *ast.Unquote:
		w.walk(e.Body, scope)
		return scope

	default:
		// Leaf literals (NumberLit, StringLit, BoolLit, NoneLit, Self,
		// Nodes, Selector, Break, Continue): nothing to record.
		return scope
	}
}

// walkBlock threads scope forward across a block so that a `let` in
// statement i extends into statements i+1..n (spec.md §4.3: "Let scope
// extending rightward").
func (w *walker) walkBlock(body []*ast.Node, scope ScopeID) {
	cur := scope
	for _, n := range body {
		cur = w.walk(n, cur)
	}
}

func (w *walker) bindPattern(p ast.Pattern, scope ScopeID) {
	switch pat := p.(type) {
	case *ast.VarPattern:
		w.h.addSymbol(SymPatternVariable, pat.Name, scope, nil)
	case *ast.ArrayPattern:
		for _, el := range pat.Elements {
			w.bindPattern(el, scope)
		}
		if pat.Rest != nil {
			w.h.addSymbol(SymPatternVariable, pat.Rest.Name, scope, nil)
		}
	case *ast.DictPattern:
		for _, el := range pat.Fields {
			w.bindPattern(el, scope)
		}
	case *ast.LiteralPattern:
		w.walk(pat.Value, scope)
	}
}

func (w *walker) resolveModule(kind IncludeKind, name, alias string, n *ast.Node) {
	if w.b.loader == nil {
		w.b.addDiag("ModuleNotFound", "no module loader configured", n.Range)
		w.h.Includes = append(w.h.Includes, Include{Kind: kind, Name: name, Alias: alias})
		return
	}
	if err := w.b.cycles.Push(name); err != nil {
		w.b.addDiag("CircularInclude", err.Error(), n.Range)
		return
	}
	defer w.b.cycles.Pop()

	mod, err := w.b.loader.Load(name)
	if err != nil {
		wrapped := errors.Wrapf(err, "resolving %q", name)
		w.b.addDiag("ModuleNotFound", wrapped.Error(), n.Range)
		w.h.Includes = append(w.h.Includes, Include{Kind: kind, Name: name, Alias: alias})
		return
	}
	childID := w.b.nextSrc
	w.b.nextSrc++
	nodes, parseErrs := w.b.Parse(mod.Text, childID)
	for _, pe := range parseErrs {
		w.b.addDiag("ModuleParseError", errors.Wrapf(pe, "parsing module %q", name).Error(), n.Range)
	}
	childHIR := w.b.Build(nodes, childID)
	w.h.Includes = append(w.h.Includes, Include{Kind: kind, Name: name, Alias: alias, Source: childID, HIR: childHIR})
}
