// Package parser implements mq's Pratt-style expression parser (spec.md
// §4.2): explicit precedence climbing for expressions, with dedicated
// statement-form parsing for def/let/var/if/foreach/while/until/loop/
// try/match/include/import/module.
package parser

import (
	"fmt"

	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/lexer"
	"github.com/mqlang/mq/pkg/token"
)

// precedence levels, lowest to highest, matching spec.md §4.2 exactly.
type precedence int

const (
	precLowest precedence = iota
	precPipe              // |
	precAssign            // = += -= *= /= %= |= //=
	precCoalesce          // ??
	precOr                // ||
	precAnd               // &&
	precEquality          // == !=
	precCompare           // < <= > >=
	precAdditive          // + -
	precMultiplicative    // * / %
	precPower             // ^ (right-assoc)
	precUnary             // ! - (prefix)
	precCall              // f(x), x.field, x[i]
)

var binPrecedence = map[token.Kind]precedence{
	token.PIPE:        precPipe,
	token.QQ:          precCoalesce,
	token.OR:          precOr,
	token.AND:         precAnd,
	token.EQ:          precEquality,
	token.NEQ:         precEquality,
	token.LT:          precCompare,
	token.LE:          precCompare,
	token.GT:          precCompare,
	token.GE:          precCompare,
	token.PLUS:        precAdditive,
	token.MINUS:       precAdditive,
	token.STAR:        precMultiplicative,
	token.SLASH:       precMultiplicative,
	token.PERCENT:     precMultiplicative,
	token.CARET:       precPower,
}

var assignOps = map[token.Kind]ast.AssignOp{
	token.ASSIGN:      ast.AssignSet,
	token.PLUS_EQ:     ast.AssignAdd,
	token.MINUS_EQ:    ast.AssignSub,
	token.STAR_EQ:     ast.AssignMul,
	token.SLASH_EQ:    ast.AssignDiv,
	token.PERCENT_EQ:  ast.AssignMod,
	token.PIPE_EQ:     ast.AssignPipe,
	token.FLOORDIV_EQ: ast.AssignFloorDiv,
}

// Parser consumes a fixed token buffer (produced by the lexer) and builds
// an *ast.Node tree plus an *ast.Arena mapping nodes back to their tokens.
type Parser struct {
	tokens []token.Token
	arena  *ast.Arena
	pos    int
	errs   []*Error
}

// New creates a Parser over a fully lexed token buffer. Trivia tokens must
// already be excluded (i.e. lex with Options{IncludeTrivia: false}).
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, arena: ast.NewArena(tokens)}
}

// NewFromSource lexes input in one step and returns a ready Parser.
func NewFromSource(input string, sourceID token.SourceID) *Parser {
	l := lexer.New(input, sourceID, lexer.Options{})
	toks, _ := l.Tokenize()
	return New(toks)
}

// Errors returns every syntax error collected during Parse.
func (p *Parser) Errors() []*Error { return p.errs }

// Arena exposes the token arena backing the parsed nodes.
func (p *Parser) Arena() *ast.Arena { return p.arena }

func (p *Parser) cur() token.Token  { return p.tokens[p.pos] }
func (p *Parser) curKind() token.Kind {
	if p.pos >= len(p.tokens) {
		return token.EOF
	}
	return p.tokens[p.pos].Kind
}
func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}
func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.curKind() == k }

func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	t := p.cur()
	switch k {
	case token.RPAREN:
		p.addError(ExpectedClosingParen, t.Range, "expected ')', got %s", t.Kind)
	case token.RBRACE:
		p.addError(ExpectedClosingBrace, t.Range, "expected '}', got %s", t.Kind)
	case token.RBRACKET:
		p.addError(ExpectedClosingBracket, t.Range, "expected ']', got %s", t.Kind)
	default:
		p.addError(UnexpectedToken, t.Range, "expected %s, got %s", k, t.Kind)
	}
	return t, false
}

func (p *Parser) addError(kind Kind, rng token.Range, format string, args ...any) {
	p.errs = append(p.errs, newError(kind, rng, format, args...))
}

// synchronize skips tokens until a statement boundary (`;` or EOF) — the
// recovery mode spec.md §4.2 requires for the formatter/LSP.
func (p *Parser) synchronize() {
	for !p.at(token.EOF) {
		if p.at(token.SEMICOLON) {
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *Parser) node(tokID ast.TokenID, e ast.Expr) *ast.Node {
	return &ast.Node{TokenID: tokID, Range: p.arena.Range(tokID), Expr: e}
}

// Parse parses the entire token buffer as a top-level pipeline: a sequence
// of `;`-or-newline-separated expressions/statements.
func (p *Parser) Parse() ([]*ast.Node, []*Error) {
	var out []*ast.Node
	for !p.at(token.EOF) {
		start := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			out = append(out, stmt)
		}
		for p.at(token.SEMICOLON) {
			p.advance()
		}
		if p.pos == start {
			// Guard against an infinite loop on a token no rule consumes.
			p.addError(UnexpectedToken, p.cur().Range, "unexpected %s", p.curKind())
			p.synchronize()
		}
	}
	return out, p.errs
}

func (p *Parser) parseStatement() *ast.Node {
	switch p.curKind() {
	case token.KW_DEF, token.KW_MACRO:
		return p.parseDef()
	case token.KW_FN:
		return p.parseFn()
	case token.KW_LET:
		return p.parseLet()
	case token.KW_VAR:
		return p.parseVar()
	case token.KW_IF:
		return p.parseIf()
	case token.KW_FOREACH:
		return p.parseForeach()
	case token.KW_WHILE:
		return p.parseWhile(false)
	case token.KW_UNTIL:
		return p.parseWhile(true)
	case token.KW_LOOP:
		return p.parseLoop()
	case token.KW_DO:
		return p.parseDo()
	case token.KW_TRY:
		return p.parseTry()
	case token.KW_MATCH:
		return p.parseMatch()
	case token.KW_INCLUDE:
		return p.parseInclude()
	case token.KW_IMPORT:
		return p.parseImport()
	case token.KW_MODULE:
		return p.parseModule()
	case token.KW_BREAK:
		t := p.advance()
		return p.node(ast.TokenID(p.indexOf(t)), &ast.Break{})
	case token.KW_CONTINUE:
		t := p.advance()
		return p.node(ast.TokenID(p.indexOf(t)), &ast.Continue{})
	default:
		return p.parseAssignOrExpr()
	}
}

// indexOf maps a token back into its arena position; tokens are a slice so
// the offset equals the arena TokenID by construction.
func (p *Parser) indexOf(t token.Token) int {
	return p.pos - 1 // advance() just consumed it
}

// parseAssignOrExpr disambiguates `ident op= expr` from a bare expression,
// since both start identically.
func (p *Parser) parseAssignOrExpr() *ast.Node {
	if p.curKind() == token.IDENT {
		if _, isAssign := assignOps[p.peekAt(1).Kind]; isAssign {
			return p.parseAssign()
		}
	}
	return p.parseExpr(precLowest)
}

func (p *Parser) parseAssign() *ast.Node {
	nameTok := p.advance()
	opTok := p.advance()
	op, ok := assignOps[opTok.Kind]
	if !ok {
		p.addError(InvalidAssignmentTarget, opTok.Range, "invalid assignment operator %s", opTok.Kind)
	}
	value := p.parseExpr(precAssign)
	return p.node(ast.TokenID(p.indexOf(nameTok)), &ast.Assign{Target: nameTok.Text, Value: value, Op: op})
}

// parseExpr is the Pratt loop: parse a prefix term, then repeatedly fold
// in infix/pipe operators whose precedence exceeds minPrec.
func (p *Parser) parseExpr(minPrec precedence) *ast.Node {
	left := p.parsePrefix()
	for {
		k := p.curKind()
		if k == token.PIPE {
			if precPipe <= minPrec {
				break
			}
			p.advance()
			right := p.parseExpr(precPipe)
			left = p.node(left.TokenID, &ast.Pipe{LHS: left, RHS: right})
			continue
		}
		prec, ok := binPrecedence[k]
		if !ok || prec <= minPrec {
			break
		}
		opTok := p.advance()
		nextMin := prec
		if k == token.CARET {
			nextMin = prec - 1 // right-associative
		}
		right := p.parseExpr(nextMin)
		left = p.node(left.TokenID, &ast.BinOp{Op: opTok.Kind.String(), LHS: left, RHS: right})
	}
	return left
}

func (p *Parser) parsePrefix() *ast.Node {
	switch p.curKind() {
	case token.NOT, token.MINUS:
		opTok := p.advance()
		operand := p.parseExpr(precUnary)
		return p.node(ast.TokenID(p.indexOf(opTok)), &ast.UnOp{Op: opTok.Kind.String(), RHS: operand})
	case token.KW_FN:
		return p.parseFn()
	case token.KW_QUOTE:
		qTok := p.advance()
		body := p.parseExpr(precLowest)
		return p.node(ast.TokenID(p.indexOf(qTok)), &ast.Quote{Body: body})
	case token.KW_UNQUOTE:
		uTok := p.advance()
		body := p.parseExpr(precLowest)
		return p.node(ast.TokenID(p.indexOf(uTok)), &ast.Unquote{Body: body})
	default:
		return p.parsePostfix(p.parseAtom())
	}
}

// parsePostfix folds in call application, `.field`/selector chains, and the
// trailing `?` optional-call marker (spec.md §4.2 level 12).
func (p *Parser) parsePostfix(left *ast.Node) *ast.Node {
	for {
		switch p.curKind() {
		case token.LPAREN:
			left = p.parseCallArgs(left)
		case token.SELECTOR:
			selTok := p.advance()
			left = p.node(ast.TokenID(p.indexOf(selTok)), &ast.Selector{Src: selTok.Text})
		case token.QUESTION:
			p.advance()
			switch e := left.Expr.(type) {
			case *ast.Call:
				e.Optional = true
			case *ast.CallDynamic:
				e.Optional = true
			}
		default:
			return left
		}
	}
}

func (p *Parser) parseCallArgs(callee *ast.Node) *ast.Node {
	p.advance() // consume '('
	var args []*ast.Node
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		args = append(args, p.parseExpr(precLowest))
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	if id, ok := callee.Expr.(*ast.Ident); ok {
		return p.node(callee.TokenID, &ast.Call{Name: id.Name, Args: args})
	}
	return p.node(callee.TokenID, &ast.CallDynamic{Callee: callee, Args: args})
}

func (p *Parser) parseAtom() *ast.Node {
	t := p.cur()
	switch t.Kind {
	case token.NUMBER:
		p.advance()
		var f float64
		fmt.Sscanf(t.Text, "%g", &f)
		return p.node(ast.TokenID(p.indexOf(t)), &ast.NumberLit{Value: f})
	case token.STRING:
		p.advance()
		return p.node(ast.TokenID(p.indexOf(t)), &ast.StringLit{Value: t.Text})
	case token.INTERP_STRING:
		p.advance()
		return p.node(ast.TokenID(p.indexOf(t)), p.parseInterpolatedString(t))
	case token.BOOL:
		p.advance()
		return p.node(ast.TokenID(p.indexOf(t)), &ast.BoolLit{Value: t.Text == "true"})
	case token.NONE:
		p.advance()
		return p.node(ast.TokenID(p.indexOf(t)), &ast.NoneLit{})
	case token.KW_SELF:
		p.advance()
		return p.node(ast.TokenID(p.indexOf(t)), &ast.Self{})
	case token.KW_NODES:
		p.advance()
		return p.node(ast.TokenID(p.indexOf(t)), &ast.Nodes{})
	case token.SELECTOR:
		p.advance()
		return p.node(ast.TokenID(p.indexOf(t)), &ast.Selector{Src: t.Text})
	case token.IDENT:
		p.advance()
		if p.at(token.DOT) && p.peekAt(1).Kind == token.IDENT {
			return p.parseQualifiedAccess(t)
		}
		return p.node(ast.TokenID(p.indexOf(t)), &ast.Ident{Name: t.Text})
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr(precLowest)
		p.expect(token.RPAREN)
		return inner
	default:
		p.addError(UnexpectedToken, t.Range, "unexpected token %s in expression", t.Kind)
		p.advance()
		return p.node(ast.TokenID(p.indexOf(t)), &ast.NoneLit{})
	}
}

func (p *Parser) parseQualifiedAccess(first token.Token) *ast.Node {
	path := []string{first.Text}
	for p.at(token.DOT) && p.peekAt(1).Kind == token.IDENT {
		p.advance() // '.'
		id := p.advance()
		path = append(path, id.Text)
	}
	return p.node(ast.TokenID(p.indexOf(first)), &ast.QualifiedAccess{Path: path})
}

// parseInterpolatedString splits an INTERP_STRING token's raw text on
// `${...}` boundaries and recursively parses each expression segment.
// The lexer guarantees `${`/`}` nesting is balanced in the raw text.
func (p *Parser) parseInterpolatedString(t token.Token) ast.Expr {
	var segs []ast.StringSegment
	text := t.Text
	i := 0
	for i < len(text) {
		j := indexOfMarker(text[i:], "${")
		if j < 0 {
			segs = append(segs, ast.StringSegment{Text: text[i:]})
			break
		}
		if j > 0 {
			segs = append(segs, ast.StringSegment{Text: text[i : i+j]})
		}
		exprStart := i + j + 2
		depth := 1
		k := exprStart
		for k < len(text) && depth > 0 {
			switch text[k] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth > 0 {
				k++
			}
		}
		src := text[exprStart:k]
		sub := NewFromSource(src, t.SourceID)
		exprs, errs := sub.Parse()
		p.errs = append(p.errs, errs...)
		var exprNode *ast.Node
		if len(exprs) > 0 {
			exprNode = exprs[0]
		} else {
			exprNode = &ast.Node{Expr: &ast.NoneLit{}}
		}
		segs = append(segs, ast.StringSegment{IsExpr: true, Expr: exprNode, Src: src})
		i = k + 1
	}
	return &ast.InterpolatedString{Segments: segs}
}

func indexOfMarker(s, marker string) int {
	for i := 0; i+len(marker) <= len(s); i++ {
		if s[i:i+len(marker)] == marker {
			return i
		}
	}
	return -1
}
