// Package ast defines the Abstract Syntax Tree produced by pkg/parser: an
// arena of tokens plus an immutable tree of Node values that reference
// tokens by index rather than by pointer.
package ast

import "github.com/mqlang/mq/pkg/token"

// TokenID indexes into an Arena's token slice. Orphan ids (tokens no AST
// node references) are trivia, per spec.md §3's invariant.
type TokenID int

// Arena owns every token produced while parsing one source. AST nodes hold
// TokenIDs into it, never pointers, so the arena can be queried uniformly
// by the CST/formatter and by diagnostics.
type Arena struct {
	tokens []token.Token
}

// NewArena creates an Arena over the given token stream.
func NewArena(tokens []token.Token) *Arena {
	return &Arena{tokens: tokens}
}

// Token returns the token at id.
func (a *Arena) Token(id TokenID) token.Token {
	if int(id) < 0 || int(id) >= len(a.tokens) {
		return token.Token{}
	}
	return a.tokens[id]
}

// Len returns the number of tokens in the arena.
func (a *Arena) Len() int { return len(a.tokens) }

// Range returns the source range of the token at id.
func (a *Arena) Range(id TokenID) token.Range {
	return a.Token(id).Range
}
