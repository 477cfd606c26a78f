// Package mqengine is the host that wires pkg/lexer, pkg/parser, pkg/hir,
// pkg/infer, pkg/eval, and pkg/compiler together into the concrete Engine
// API a caller (CLI, LSP, test harness) actually uses. The core packages
// know nothing of files or search paths; mqengine is where `include`/
// `import` module names become file reads via pkg/loader, and where a
// parsed program becomes a result value by choosing between the
// tree-walker and the optional compiler.
//
// Grounded on the teacher's cmd/dwscript/cmd package, which wires
// internal/lexer + internal/parser + internal/semantic + internal/interp
// together behind a handful of entrypoints (runScript, lexScript);
// mqengine generalizes that wiring into a reusable, non-CLI-bound Engine
// type, following the functional-options idiom the teacher uses for
// internal/lexer.LexerOption/internal/parser.ParserOption.
package mqengine

import (
	"log/slog"
	"sort"

	"github.com/pkg/errors"

	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/compiler"
	"github.com/mqlang/mq/pkg/eval"
	"github.com/mqlang/mq/pkg/hir"
	"github.com/mqlang/mq/pkg/infer"
	"github.com/mqlang/mq/pkg/lexer"
	"github.com/mqlang/mq/pkg/loader"
	"github.com/mqlang/mq/pkg/parser"
	"github.com/mqlang/mq/pkg/token"
	"github.com/mqlang/mq/pkg/value"
)

// Engine is one independent evaluation session: its own module loader,
// evaluator (and shared compiler), and module cache. The core is
// single-threaded and synchronous; a caller wanting parallel evaluation
// instantiates one Engine per worker rather than sharing one.
type Engine struct {
	loader      *loader.ModuleLoader
	ev          *eval.Evaluator
	comp        *compiler.Compiler
	useCompiler bool
	log         *slog.Logger

	modules map[string]*value.Dict
	srcSeq  int
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithSearchPaths sets the module search paths consulted by include/import,
// in order, replacing the loader's default (".", then "$HOME/.mq").
func WithSearchPaths(paths ...string) Option {
	return func(e *Engine) { e.loader.SetPaths(paths) }
}

// WithCompiler toggles whether Eval runs programs through pkg/compiler's
// closure-tree path instead of tree-walking.
func WithCompiler(use bool) Option {
	return func(e *Engine) { e.useCompiler = use }
}

// WithLogger installs a logger for the engine's own diagnostic messages
// (module loads, cache hits). When not given, New falls back to
// slog.Default(). The engine never logs above Debug/Info for its own
// operation; failures are always returned as errors instead.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine with the default module loader (current directory,
// then $HOME/.mq) and the tree-walking evaluator active.
func New(opts ...Option) *Engine {
	e := &Engine{
		loader:  loader.New(),
		ev:      eval.New(),
		log:     slog.Default(),
		modules: make(map[string]*value.Dict),
	}
	e.comp = compiler.New(e.ev)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetPaths replaces the engine's module search paths.
func (e *Engine) SetPaths(paths []string) {
	e.loader.SetPaths(paths)
}

// SetUseCompiler toggles compiled vs. tree-walked evaluation for
// subsequent Eval calls.
func (e *Engine) SetUseCompiler(use bool) {
	e.useCompiler = use
}

// nextSourceID hands out a fresh token.SourceID for one lex/parse/build
// call, so diagnostics from independent Tokenize/Parse/Eval/CheckTypes
// calls never collide on the same ID.
func (e *Engine) nextSourceID() token.SourceID {
	e.srcSeq++
	return token.SourceID(e.srcSeq)
}

// Tokenize lexes source, returning its token stream and any lexical
// errors accumulated along the way (the lexer never stops at the first
// error; it keeps scanning and reports every ILLEGAL span).
func (e *Engine) Tokenize(source string) ([]token.Token, []lexer.Error) {
	l := lexer.New(source, e.nextSourceID(), lexer.Options{})
	return l.Tokenize()
}

// Parse lexes and parses source into its top-level AST nodes.
func (e *Engine) Parse(source string) ([]*ast.Node, []*parser.Error) {
	p := parser.NewFromSource(source, e.nextSourceID())
	return p.Parse()
}

// CheckResult bundles what CheckTypes finds: the HIR builder's module
// findings (ModuleNotFound, CircularInclude, ModuleParseError) followed by
// the resolver's scope-binding findings (UnresolvedSymbol, UnreachableCode)
// in Diagnostics, and the inferencer's type errors in TypeErrors.
type CheckResult struct {
	Diagnostics []infer.Diagnostic
	TypeErrors  []*infer.TypeError
}

// CheckTypes parses source, builds its HIR (recursively resolving
// includes/imports via the engine's loader), resolves symbol references,
// and runs type inference, all without executing anything — mq programs
// type-check independently of running them, and execution proceeds
// regardless of type errors since the language is dynamically typed at
// runtime (spec.md §7).
func (e *Engine) CheckTypes(source string) (*CheckResult, error) {
	sourceID := e.nextSourceID()
	nodes, perrs := parser.NewFromSource(source, sourceID).Parse()
	if len(perrs) > 0 {
		return nil, combinedParseErr(perrs)
	}

	builder := hir.NewBuilder(e.loader, sourceID, e.parseForHIR)
	h := builder.Build(nodes, sourceID)
	resolution := infer.Resolve(h)

	inf := infer.NewInferencer()
	_, typeErrs := inf.InferProgram(nodes)

	var diags []infer.Diagnostic
	for _, d := range builder.Diagnostics() {
		diags = append(diags, infer.Diagnostic{Kind: d.Kind, Message: d.Message})
	}
	diags = append(diags, resolution.Diagnostics...)
	return &CheckResult{Diagnostics: diags, TypeErrors: typeErrs}, nil
}

// parseForHIR adapts pkg/parser to the parse callback hir.Builder expects
// (pkg/hir cannot import pkg/parser directly without a cycle, since the
// parser only depends on pkg/ast and pkg/lexer).
func (e *Engine) parseForHIR(src string, id token.SourceID) ([]*ast.Node, []error) {
	nodes, errs := parser.NewFromSource(src, id).Parse()
	out := make([]error, len(errs))
	for i, pe := range errs {
		out[i] = pe
	}
	return nodes, out
}

// LoadBuiltinModule registers source as a module named name without going
// through the file-backed loader, so include/import can resolve a
// host-embedded module (e.g. a standard-library prelude shipped inside
// the binary) the same way they resolve a file on disk.
func (e *Engine) LoadBuiltinModule(name, source string) error {
	dict, err := e.runModuleSource(name, source, map[string]bool{})
	if err != nil {
		return errors.Wrapf(err, "loading builtin module %q", name)
	}
	e.modules[name] = dict
	e.log.Debug("loaded builtin module", "name", name)
	return nil
}

// Eval runs source once per value in inputs (an empty inputs runs it once
// against `none`), threading each run's own self/pipeline value through
// the program's top-level statements the same way eval.Run does. All runs
// share one root environment, so bindings made by an earlier run remain
// visible to later ones; a declaration re-runs on every input and
// overwrites its own binding (`var total = 0` resets total each time).
func (e *Engine) Eval(source string, inputs []value.Value) ([]value.Value, error) {
	sourceID := e.nextSourceID()
	p := parser.NewFromSource(source, sourceID)
	nodes, perrs := p.Parse()
	if len(perrs) > 0 {
		return nil, combinedParseErr(perrs)
	}

	expanded, err := eval.ExpandMacros(nodes)
	if err != nil {
		return nil, err
	}

	rootEnv := eval.NewEnvironment()
	if err := e.resolveIncludes(expanded, rootEnv, map[string]bool{}); err != nil {
		return nil, errors.Wrap(err, "resolving program includes")
	}

	var prog *compiler.Program
	if e.useCompiler {
		prog, err = e.comp.Compile(expanded)
		if err != nil {
			return nil, errors.Wrap(err, "compiling program")
		}
	}

	if len(inputs) == 0 {
		inputs = []value.Value{value.None{}}
	}

	results := make([]value.Value, 0, len(inputs))
	for _, in := range inputs {
		var v value.Value
		var rerr error
		if e.useCompiler {
			v, rerr = prog.Run(in, rootEnv)
		} else {
			v, rerr = e.ev.Run(expanded, in, rootEnv)
		}
		if rerr != nil {
			return nil, rerr
		}
		results = append(results, v)
	}
	return results, nil
}

// resolveIncludes finds every include/import reachable from nodes
// (including inside def/if/foreach bodies, not just at top level) and
// defines each one's module dict into env under its bare name, which is
// the contract eval.go's resolveModuleEnv/importAllInto/*ast.Import case
// place on the host: "pkg/mqengine's loader is expected to Define each
// loaded module's name into the root environment as a *value.Dict before
// running a program that includes/imports it."
func (e *Engine) resolveIncludes(nodes []*ast.Node, env *eval.Environment, visiting map[string]bool) error {
	names := collectModuleNames(nodes)
	for _, name := range names {
		if env.Has(name) {
			continue
		}
		dict, err := e.resolveModule(name, visiting)
		if err != nil {
			return err
		}
		env.Define(name, dict, false)
	}
	return nil
}

// resolveModule returns name's module dict, from cache if already
// resolved this engine's lifetime, otherwise by loading and running its
// source (recursively resolving its own includes first).
func (e *Engine) resolveModule(name string, visiting map[string]bool) (*value.Dict, error) {
	if dict, ok := e.modules[name]; ok {
		return dict, nil
	}
	if visiting[name] {
		return nil, &loader.Error{Kind: loader.CircularInclude, Name: name, Message: "circular include/import"}
	}

	mod, err := e.loader.Load(name)
	if err != nil {
		return nil, errors.Wrapf(err, "loading module %q", name)
	}

	visiting[name] = true
	defer delete(visiting, name)

	dict, err := e.runModuleSource(name, mod.Text, visiting)
	if err != nil {
		return nil, err
	}
	e.modules[name] = dict
	e.log.Debug("loaded module", "name", name, "path", mod.Path)
	return dict, nil
}

// runModuleSource parses and runs one module's source in a fresh
// environment (after resolving its own includes into that environment),
// then snapshots the resulting top-level bindings into a *value.Dict —
// the runtime module value eval.go's import/include machinery consumes.
func (e *Engine) runModuleSource(name, source string, visiting map[string]bool) (*value.Dict, error) {
	nodes, perrs := parser.NewFromSource(source, e.nextSourceID()).Parse()
	if len(perrs) > 0 {
		return nil, errors.Wrapf(combinedParseErr(perrs), "parsing module %q", name)
	}
	expanded, err := eval.ExpandMacros(nodes)
	if err != nil {
		return nil, errors.Wrapf(err, "expanding macros in module %q", name)
	}

	modEnv := eval.NewEnvironment()
	if err := e.resolveIncludes(expanded, modEnv, visiting); err != nil {
		return nil, err
	}
	if _, err := e.ev.Run(expanded, value.None{}, modEnv); err != nil {
		return nil, errors.Wrapf(err, "running module %q", name)
	}

	bindings := modEnv.OwnBindings()
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dict := value.NewDict()
	for _, k := range keys {
		dict.Set(k, bindings[k])
	}
	return dict, nil
}

// collectModuleNames walks nodes (and every descendant, so an include
// nested inside a def or if body is still found) and returns every
// distinct include/import target name, in first-seen order.
func collectModuleNames(nodes []*ast.Node) []string {
	seen := map[string]bool{}
	var names []string
	record := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, n := range nodes {
		ast.Walk(n, func(child *ast.Node) bool {
			switch e := child.Expr.(type) {
			case *ast.Include:
				record(e.Name)
			case *ast.Import:
				record(e.Name)
			}
			return true
		})
	}
	return names
}
