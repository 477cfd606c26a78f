package parser

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mqlang/mq/pkg/token"
)

// Kind tags one of the syntax error taxonomy members named in spec.md §4.2.
type Kind int

const (
	UnexpectedToken Kind = iota
	UnexpectedEOF
	InsufficientTokens
	ExpectedClosingParen
	ExpectedClosingBrace
	ExpectedClosingBracket
	InvalidAssignmentTarget
	UnknownSelector
	MacroParamsMustBeIdents
	ParameterWithoutDefaultAfterDefault
	MacroParametersCannotHaveDefaults
	VariadicParameterMustBeLast
	MultipleVariadicParameters
	MacroParametersCannotBeVariadic
	EnvNotFound
)

func (k Kind) String() string {
	names := [...]string{
		"UnexpectedToken", "UnexpectedEOF", "InsufficientTokens",
		"ExpectedClosingParen", "ExpectedClosingBrace", "ExpectedClosingBracket",
		"InvalidAssignmentTarget", "UnknownSelector", "MacroParamsMustBeIdents",
		"ParameterWithoutDefaultAfterDefault", "MacroParametersCannotHaveDefaults",
		"VariadicParameterMustBeLast", "MultipleVariadicParameters",
		"MacroParametersCannotBeVariadic", "EnvNotFound",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Error is one syntax diagnostic, carrying the taxonomy Kind plus the span
// it applies to so callers (formatter, LSP, CLI) can render a caret.
type Error struct {
	Kind    Kind
	Message string
	Range   token.Range
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Range, e.Message)
}

func newError(kind Kind, rng token.Range, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Range: rng}
}

// wrap attaches a stack trace for internal diagnostics (parser-internal
// invariant violations, not user syntax errors, which use Error above).
func wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}
