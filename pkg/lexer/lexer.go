// Package lexer tokenizes mq source text into a stream of token.Token
// values with source-accurate ranges.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mqlang/mq/pkg/token"
)

// Error describes a single lexical error. The lexer never panics on
// malformed input; errors accumulate here instead so callers can decide how
// to surface them.
type Error struct {
	Pos     token.Position
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Options configures a Lexer. The zero value skips trivia; a lexical error
// never stops the scan.
type Options struct {
	// IncludeTrivia, when true, emits COMMENT/WHITESPACE/NEWLINE/TAB tokens
	// instead of silently skipping them. CST construction and formatters
	// need this; plain evaluation does not.
	IncludeTrivia bool
	// IgnoreErrors does not change the token stream: with or without it, a
	// malformed character is recorded as an Error, emitted as an ILLEGAL
	// token, and scanning continues.
	IgnoreErrors bool
}

// Lexer scans a single source's text into tokens, rune at a time.
type Lexer struct {
	input    string
	sourceID token.SourceID
	opts     Options

	pos       int // byte offset of ch
	readPos   int // byte offset of next rune
	line      int
	col       int // rune column of ch
	ch        rune
	atEOF     bool

	errs []Error
}

// New creates a Lexer over input, tagging every token with sourceID.
func New(input string, sourceID token.SourceID, opts Options) *Lexer {
	l := &Lexer{input: input, sourceID: sourceID, opts: opts, line: 1, col: 0}
	l.readChar()
	return l
}

// Errors returns every accumulated lexical error.
func (l *Lexer) Errors() []Error { return l.errs }

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		l.atEOF = true
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
	if r == '\n' {
		// column bump happens before the newline is consumed by the caller,
		// so callers must bump line/reset col themselves after consuming it.
	}
	if r == utf8.RuneError && size == 1 {
		l.addError("invalid UTF-8 sequence")
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) curPos() token.Position {
	return token.Position{Line: l.line, Column: l.col}
}

func (l *Lexer) addError(msg string) {
	l.errs = append(l.errs, Error{Pos: l.curPos(), Message: msg})
}

func (l *Lexer) advanceLine() {
	l.line++
	l.col = 0
	l.readChar()
}

// Tokenize scans the entire input and returns the resulting tokens,
// terminated by a single EOF token. It never panics.
func (l *Lexer) Tokenize() ([]token.Token, []Error) {
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return toks, l.errs
}

// Next scans and returns the next token, including trivia if
// Options.IncludeTrivia is set.
func (l *Lexer) Next() token.Token {
	for {
		start := l.curPos()
		switch {
		case l.ch == 0:
			return l.make(token.EOF, "", start)
		case l.ch == '\n':
			l.advanceLine()
			if l.opts.IncludeTrivia {
				return l.finish(token.NEWLINE, "\n", start)
			}
			continue
		case l.ch == '\t':
			l.readChar()
			if l.opts.IncludeTrivia {
				return l.finish(token.TAB, "\t", start)
			}
			continue
		case unicode.IsSpace(l.ch):
			var sb strings.Builder
			for unicode.IsSpace(l.ch) && l.ch != '\n' {
				sb.WriteRune(l.ch)
				l.readChar()
			}
			if l.opts.IncludeTrivia {
				return l.finish(token.WHITESPACE, sb.String(), start)
			}
			continue
		case l.ch == '#':
			text := l.readComment()
			if l.opts.IncludeTrivia {
				return l.finish(token.COMMENT, text, start)
			}
			continue
		case l.ch == '.':
			if tok, ok := l.tryReadSelector(start); ok {
				return tok
			}
			l.readChar()
			return l.finish(token.DOT, ".", start)
		case l.ch == '"' || l.ch == '\'':
			return l.readString(start, l.ch)
		case isDigit(l.ch):
			return l.readNumber(start)
		case isIdentStart(l.ch):
			return l.readIdentOrKeyword(start)
		default:
			if tok, ok := l.readOperator(start); ok {
				return tok
			}
			bad := string(l.ch)
			l.addError("unexpected character " + fmt.Sprintf("%q", l.ch))
			l.readChar()
			if l.opts.IgnoreErrors {
				return l.finish(token.ILLEGAL, bad, start)
			}
			return l.finish(token.ILLEGAL, bad, start)
		}
	}
}

func (l *Lexer) make(kind token.Kind, text string, start token.Position) token.Token {
	return token.Token{
		Kind:     kind,
		Text:     text,
		Range:    token.Range{Start: start, End: l.curPos()},
		SourceID: l.sourceID,
	}
}

func (l *Lexer) finish(kind token.Kind, text string, start token.Position) token.Token {
	return l.make(kind, text, start)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) readComment() string {
	var sb strings.Builder
	sb.WriteRune(l.ch)
	l.readChar()
	for l.ch != '\n' && l.ch != 0 {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	return sb.String()
}

func (l *Lexer) readIdentOrKeyword(start token.Position) token.Token {
	var sb strings.Builder
	for isIdentCont(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	text := sb.String()
	if text == "s" && (l.ch == '"' || l.ch == '\'') {
		return l.readString(start, l.ch)
	}
	kind := token.LookupIdent(text)
	return l.finish(kind, text, start)
}

// readNumber accepts -?[0-9]+(\.[0-9]+)? per spec.md §4.1; the unary minus is
// handled by the parser, not here, so this only scans the digit run.
func (l *Lexer) readNumber(start token.Position) token.Token {
	var sb strings.Builder
	for isDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		sb.WriteRune(l.ch)
		l.readChar()
		for isDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	return l.finish(token.NUMBER, sb.String(), start)
}

// readString scans a plain or interpolated string literal from its opening
// quote. readIdentOrKeyword also hands `s"..."` here once the `s` prefix is
// consumed. Any literal containing `${` comes back as INTERP_STRING, with or
// without the prefix; otherwise the token is a STRING.
func (l *Lexer) readString(start token.Position, quote rune) token.Token {
	l.readChar() // consume opening quote
	var sb strings.Builder
	hasInterp := false
	for l.ch != quote {
		if l.ch == 0 {
			l.addError("unterminated string literal")
			return l.finish(token.STRING, sb.String(), start)
		}
		if l.ch == '\\' {
			l.readChar()
			sb.WriteRune(l.unescape(l.ch))
			l.readChar()
			continue
		}
		if l.ch == '$' && l.peekChar() == '{' {
			hasInterp = true
			sb.WriteRune(l.ch)
			l.readChar()
			sb.WriteRune(l.ch)
			l.readChar()
			depth := 1
			for depth > 0 && l.ch != 0 {
				if l.ch == '{' {
					depth++
				} else if l.ch == '}' {
					depth--
				}
				sb.WriteRune(l.ch)
				l.readChar()
			}
			continue
		}
		if l.ch == '\n' {
			l.line++
			l.col = 0
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	kind := token.STRING
	if hasInterp {
		kind = token.INTERP_STRING
	}
	return l.finish(kind, sb.String(), start)
}

func (l *Lexer) unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return r
	}
}

// tryReadSelector scans a dot-prefixed selector (".h", ".code(\"js\")",
// ".[]", ".[][]") as a single SELECTOR token per spec.md §4.1. It returns
// ok=false (leaving the lexer untouched) only when '.' starts neither an
// identifier nor `[]`, and the caller then emits a plain DOT token. A '.'
// followed by an identifier is always a SELECTOR, even right after an
// identifier (`a.b`).
func (l *Lexer) tryReadSelector(start token.Position) (token.Token, bool) {
	save := l.snapshot()
	l.readChar() // consume '.'

	var sb strings.Builder
	sb.WriteRune('.')

	switch {
	case l.ch == '[':
		for l.ch == '[' {
			sb.WriteRune('[')
			l.readChar()
			if l.ch != ']' {
				l.restore(save)
				return token.Token{}, false
			}
			sb.WriteRune(']')
			l.readChar()
		}
		return l.finish(token.SELECTOR, sb.String(), start), true
	case isIdentStart(l.ch):
		for isIdentCont(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
		if l.ch == '(' {
			depth := 0
			for {
				if l.ch == 0 {
					break
				}
				if l.ch == '(' {
					depth++
				} else if l.ch == ')' {
					depth--
				}
				sb.WriteRune(l.ch)
				l.readChar()
				if depth == 0 {
					break
				}
			}
		}
		return l.finish(token.SELECTOR, sb.String(), start), true
	default:
		l.restore(save)
		return token.Token{}, false
	}
}

type lexState struct {
	pos, readPos, line, col int
	ch                       rune
	atEOF                    bool
}

func (l *Lexer) snapshot() lexState {
	return lexState{l.pos, l.readPos, l.line, l.col, l.ch, l.atEOF}
}

func (l *Lexer) restore(s lexState) {
	l.pos, l.readPos, l.line, l.col, l.ch, l.atEOF = s.pos, s.readPos, s.line, s.col, s.ch, s.atEOF
}

// operator table: longest match wins, so multi-rune candidates are tried
// before their single-rune prefixes.
type opEntry struct {
	text string
	kind token.Kind
}

var operators = []opEntry{
	{"//=", token.FLOORDIV_EQ},
	{"<=", token.LE}, {">=", token.GE}, {"==", token.EQ}, {"!=", token.NEQ},
	{"&&", token.AND}, {"||", token.OR}, {"??", token.QQ},
	{"+=", token.PLUS_EQ}, {"-=", token.MINUS_EQ}, {"*=", token.STAR_EQ},
	{"/=", token.SLASH_EQ}, {"%=", token.PERCENT_EQ}, {"|=", token.PIPE_EQ},
	{"=~", token.MATCH_RE},
	{"(", token.LPAREN}, {")", token.RPAREN},
	{"[", token.LBRACKET}, {"]", token.RBRACKET},
	{"{", token.LBRACE}, {"}", token.RBRACE},
	{",", token.COMMA}, {":", token.COLON}, {";", token.SEMICOLON},
	{"?", token.QUESTION},
	{"+", token.PLUS}, {"-", token.MINUS}, {"*", token.STAR}, {"/", token.SLASH},
	{"%", token.PERCENT}, {"^", token.CARET},
	{"<", token.LT}, {">", token.GT}, {"!", token.NOT}, {"=", token.ASSIGN},
	{"|", token.PIPE},
}

func (l *Lexer) readOperator(start token.Position) (token.Token, bool) {
	// Try longer operators before shorter ones; operators is already sorted
	// long-to-short within each rune-length tier above.
	rest := l.input[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			for range []rune(op.text) {
				l.readChar()
			}
			return l.finish(op.kind, op.text, start), true
		}
	}
	return token.Token{}, false
}
