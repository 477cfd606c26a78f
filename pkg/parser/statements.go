package parser

import (
	"github.com/mqlang/mq/pkg/ast"
	"github.com/mqlang/mq/pkg/token"
)

func (p *Parser) parseBlockUntil(terminators ...token.Kind) []*ast.Node {
	var body []*ast.Node
	for !p.at(token.EOF) {
		for p.at(token.SEMICOLON) {
			p.advance()
		}
		if p.atAny(terminators...) {
			break
		}
		body = append(body, p.parseStatement())
		for p.at(token.SEMICOLON) {
			p.advance()
		}
	}
	return body
}

func (p *Parser) atAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.at(k) {
			return true
		}
	}
	return false
}

// parseDef parses `def name(params): body;` or `macro name(params): body;`.
func (p *Parser) parseDef() *ast.Node {
	defTok := p.advance()
	isMacro := defTok.Kind == token.KW_MACRO
	nameTok, _ := p.expect(token.IDENT)
	p.expect(token.LPAREN)
	params := p.parseParams(isMacro)
	p.expect(token.RPAREN)
	p.expect(token.COLON)
	body := p.parseBlockUntil(token.SEMICOLON, token.EOF)
	return p.node(ast.TokenID(p.indexOf(defTok)), &ast.Def{
		Name: nameTok.Text, Params: params, Body: body, IsMacro: isMacro,
	})
}

// parseFn parses an anonymous `fn(params): body` literal.
func (p *Parser) parseFn() *ast.Node {
	fnTok := p.advance()
	p.expect(token.LPAREN)
	params := p.parseParams(false)
	p.expect(token.RPAREN)
	p.expect(token.COLON)
	body := p.parseBlockUntil(token.SEMICOLON, token.EOF, token.RPAREN, token.COMMA)
	return p.node(ast.TokenID(p.indexOf(fnTok)), &ast.Fn{Params: params, Body: body})
}

// parseParams enforces spec.md §4.2's parameter-ordering rules, emitting
// the matching taxonomy error and continuing rather than aborting the
// parse, so the rest of the signature still parses.
func (p *Parser) parseParams(isMacro bool) []ast.Param {
	var params []ast.Param
	seenDefault := false
	seenVariadic := false
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		variadic := false
		if p.at(token.STAR) {
			p.advance()
			variadic = true
		}
		nameTok, _ := p.expect(token.IDENT)

		var def *ast.Node
		if p.at(token.ASSIGN) {
			assignTok := p.advance()
			if isMacro {
				p.addError(MacroParametersCannotHaveDefaults, assignTok.Range,
					"macro parameter %q cannot have a default value", nameTok.Text)
			}
			def = p.parseExpr(precAssign)
			seenDefault = true
		} else if seenDefault && !variadic {
			p.addError(ParameterWithoutDefaultAfterDefault, nameTok.Range,
				"parameter %q without a default follows a defaulted parameter", nameTok.Text)
		}

		if variadic {
			if isMacro {
				p.addError(MacroParametersCannotBeVariadic, nameTok.Range,
					"macro parameter %q cannot be variadic", nameTok.Text)
			}
			if seenVariadic {
				p.addError(MultipleVariadicParameters, nameTok.Range,
					"only one variadic parameter is allowed")
			}
			seenVariadic = true
		}

		params = append(params, ast.Param{Name: nameTok.Text, Default: def, Variadic: variadic})

		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}

	if isMacro {
		for _, prm := range params {
			_ = prm // identifiers only is already satisfied: no type annotations exist in this grammar
		}
	}
	if seenVariadic {
		if last := len(params) - 1; last >= 0 && !params[last].Variadic {
			p.addError(VariadicParameterMustBeLast, p.cur().Range, "variadic parameter must be the last parameter")
		}
	}
	return params
}

func (p *Parser) parseLet() *ast.Node {
	letTok := p.advance()
	nameTok, _ := p.expect(token.IDENT)
	p.expect(token.ASSIGN)
	value := p.parseExpr(precAssign)
	return p.node(ast.TokenID(p.indexOf(letTok)), &ast.Let{Binder: nameTok.Text, Value: value})
}

func (p *Parser) parseVar() *ast.Node {
	varTok := p.advance()
	nameTok, _ := p.expect(token.IDENT)
	p.expect(token.ASSIGN)
	value := p.parseExpr(precAssign)
	return p.node(ast.TokenID(p.indexOf(varTok)), &ast.Var{Binder: nameTok.Text, Value: value})
}

// parseIf parses `if(cond): then elif(cond): then ... else: then;`.
func (p *Parser) parseIf() *ast.Node {
	ifTok := p.advance()
	var branches []ast.IfBranch
	p.expect(token.LPAREN)
	cond := p.parseExpr(precLowest)
	p.expect(token.RPAREN)
	p.expect(token.COLON)
	then := p.parseBlockUntil(token.KW_ELIF, token.KW_ELSE, token.SEMICOLON, token.EOF)
	branches = append(branches, ast.IfBranch{Cond: cond, Then: then})

	for p.at(token.KW_ELIF) {
		p.advance()
		p.expect(token.LPAREN)
		c := p.parseExpr(precLowest)
		p.expect(token.RPAREN)
		p.expect(token.COLON)
		b := p.parseBlockUntil(token.KW_ELIF, token.KW_ELSE, token.SEMICOLON, token.EOF)
		branches = append(branches, ast.IfBranch{Cond: c, Then: b})
	}
	if p.at(token.KW_ELSE) {
		p.advance()
		p.expect(token.COLON)
		b := p.parseBlockUntil(token.SEMICOLON, token.EOF)
		branches = append(branches, ast.IfBranch{Cond: nil, Then: b})
	}
	return p.node(ast.TokenID(p.indexOf(ifTok)), &ast.If{Branches: branches})
}

func (p *Parser) parseForeach() *ast.Node {
	fTok := p.advance()
	p.expect(token.LPAREN)
	binderTok, _ := p.expect(token.IDENT)
	p.expect(token.COMMA)
	seq := p.parseExpr(precLowest)
	p.expect(token.RPAREN)
	p.expect(token.COLON)
	body := p.parseBlockUntil(token.SEMICOLON, token.EOF)
	return p.node(ast.TokenID(p.indexOf(fTok)), &ast.Foreach{Binder: binderTok.Text, Seq: seq, Body: body})
}

// parseWhile handles both `while(cond): body;` and `until(cond): body;`.
func (p *Parser) parseWhile(isUntil bool) *ast.Node {
	wTok := p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpr(precLowest)
	p.expect(token.RPAREN)
	p.expect(token.COLON)
	body := p.parseBlockUntil(token.SEMICOLON, token.EOF)
	if isUntil {
		return p.node(ast.TokenID(p.indexOf(wTok)), &ast.Until{Cond: cond, Body: body})
	}
	return p.node(ast.TokenID(p.indexOf(wTok)), &ast.While{Cond: cond, Body: body})
}

func (p *Parser) parseLoop() *ast.Node {
	lTok := p.advance()
	p.expect(token.COLON)
	body := p.parseBlockUntil(token.SEMICOLON, token.EOF)
	return p.node(ast.TokenID(p.indexOf(lTok)), &ast.Loop{Body: body})
}

func (p *Parser) parseDo() *ast.Node {
	dTok := p.advance()
	block := p.parseBlockUntil(token.KW_END, token.EOF)
	p.expect(token.KW_END)
	return p.node(ast.TokenID(p.indexOf(dTok)), &ast.Do{Block: block})
}

func (p *Parser) parseTry() *ast.Node {
	tTok := p.advance()
	p.expect(token.COLON)
	body := p.parseBlockUntil(token.KW_CATCH, token.SEMICOLON, token.EOF)
	var catch []*ast.Node
	if p.at(token.KW_CATCH) {
		p.advance()
		p.expect(token.COLON)
		catch = p.parseBlockUntil(token.SEMICOLON, token.EOF)
	}
	return p.node(ast.TokenID(p.indexOf(tTok)), &ast.Try{Body: body, Catch: catch})
}

func (p *Parser) parseMatch() *ast.Node {
	mTok := p.advance()
	scrutinee := p.parseExpr(precLowest)
	p.expect(token.COLON)
	var arms []ast.MatchArm
	for !p.at(token.SEMICOLON) && !p.at(token.EOF) {
		pat := p.parsePattern()
		p.expect(token.COLON)
		body := p.parseExpr(precLowest)
		arms = append(arms, ast.MatchArm{Pattern: pat, Body: body})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	return p.node(ast.TokenID(p.indexOf(mTok)), &ast.Match{Scrutinee: scrutinee, Arms: arms})
}

func (p *Parser) parsePattern() ast.Pattern {
	switch p.curKind() {
	case token.IDENT:
		t := p.advance()
		if t.Text == "_" {
			return &ast.WildcardPattern{}
		}
		return &ast.VarPattern{Name: t.Text}
	case token.LBRACKET:
		p.advance()
		var elems []ast.Pattern
		var rest *ast.VarPattern
		for !p.at(token.RBRACKET) && !p.at(token.EOF) {
			elems = append(elems, p.parsePattern())
			if p.at(token.PIPE) {
				p.advance()
				tailTok, _ := p.expect(token.IDENT)
				rest = &ast.VarPattern{Name: tailTok.Text}
				break
			}
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBRACKET)
		return &ast.ArrayPattern{Elements: elems, Rest: rest}
	case token.LBRACE:
		p.advance()
		fields := map[string]ast.Pattern{}
		for !p.at(token.RBRACE) && !p.at(token.EOF) {
			keyTok, _ := p.expect(token.IDENT)
			p.expect(token.COLON)
			fields[keyTok.Text] = p.parsePattern()
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBRACE)
		return &ast.DictPattern{Fields: fields}
	default:
		lit := p.parseExpr(precCall)
		return &ast.LiteralPattern{Value: lit}
	}
}

func (p *Parser) parseInclude() *ast.Node {
	iTok := p.advance()
	nameTok, _ := p.expect(token.STRING)
	return p.node(ast.TokenID(p.indexOf(iTok)), &ast.Include{Name: nameTok.Text})
}

func (p *Parser) parseImport() *ast.Node {
	iTok := p.advance()
	nameTok, _ := p.expect(token.STRING)
	alias := ""
	if p.at(token.KW_AS) {
		p.advance()
		aliasTok, _ := p.expect(token.IDENT)
		alias = aliasTok.Text
	}
	return p.node(ast.TokenID(p.indexOf(iTok)), &ast.Import{Name: nameTok.Text, Alias: alias})
}

func (p *Parser) parseModule() *ast.Node {
	mTok := p.advance()
	nameTok, _ := p.expect(token.IDENT)
	p.expect(token.COLON)
	body := p.parseBlockUntil(token.KW_END, token.EOF)
	p.expect(token.KW_END)
	return p.node(ast.TokenID(p.indexOf(mTok)), &ast.Module{Name: nameTok.Text, Body: body})
}
