package eval

import (
	"fmt"

	"github.com/mqlang/mq/pkg/token"
)

// ErrorKind tags a runtime failure per spec.md §4.6's error taxonomy, plus
// the two internal control signals (Break, Continue) that never escape
// their enclosing loop.
type ErrorKind int

const (
	UserDefined ErrorKind = iota
	InvalidBase64String
	NotDefined
	DateTimeFormatError
	IndexOutOfBounds
	InvalidDefinition
	RecursionError
	InvalidTypes
	InvalidNumberOfArguments
	InvalidRegularExpression
	InternalError
	ModuleLoadError
	Runtime
	ZeroDivision
	EnvNotFound
	AssignToImmutable
	UndefinedVariable
	QuoteNotAllowedInRuntimeContext
	UnquoteNotAllowedOutsideQuote

	// Break and Continue are internal control signals, not user-visible
	// errors; an Evaluator catches them at the enclosing loop and an
	// escape past the program's top level is an InternalError.
	breakSignal
	continueSignal
)

func (k ErrorKind) String() string {
	switch k {
	case UserDefined:
		return "UserDefined"
	case InvalidBase64String:
		return "InvalidBase64String"
	case NotDefined:
		return "NotDefined"
	case DateTimeFormatError:
		return "DateTimeFormatError"
	case IndexOutOfBounds:
		return "IndexOutOfBounds"
	case InvalidDefinition:
		return "InvalidDefinition"
	case RecursionError:
		return "RecursionError"
	case InvalidTypes:
		return "InvalidTypes"
	case InvalidNumberOfArguments:
		return "InvalidNumberOfArguments"
	case InvalidRegularExpression:
		return "InvalidRegularExpression"
	case InternalError:
		return "InternalError"
	case ModuleLoadError:
		return "ModuleLoadError"
	case Runtime:
		return "Runtime"
	case ZeroDivision:
		return "ZeroDivision"
	case EnvNotFound:
		return "EnvNotFound"
	case AssignToImmutable:
		return "AssignToImmutable"
	case UndefinedVariable:
		return "UndefinedVariable"
	case QuoteNotAllowedInRuntimeContext:
		return "QuoteNotAllowedInRuntimeContext"
	case UnquoteNotAllowedOutsideQuote:
		return "UnquoteNotAllowedOutsideQuote"
	case breakSignal:
		return "Break"
	case continueSignal:
		return "Continue"
	}
	return "Unknown"
}

// RuntimeError is every non-control failure raised while evaluating a
// program; it always carries the offending token's span so a host can
// render a diagnostic (spec.md §4.6: "All non-control errors carry an
// offending token").
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Range   token.Range
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Range)
}

func newErr(kind ErrorKind, rng token.Range, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Range: rng}
}

// IsControl reports whether err is the internal Break/Continue signal, as
// opposed to a user-visible RuntimeError that try/catch may intercept.
func IsControl(err error) bool {
	re, ok := err.(*RuntimeError)
	return ok && (re.Kind == breakSignal || re.Kind == continueSignal)
}

// breakErr and continueErr are the sentinel values break()/continue()
// panic^Wpropagate as; they carry no message since they are never shown to
// a user.
func breakErr(rng token.Range) *RuntimeError    { return &RuntimeError{Kind: breakSignal, Range: rng} }
func continueErr(rng token.Range) *RuntimeError { return &RuntimeError{Kind: continueSignal, Range: rng} }
