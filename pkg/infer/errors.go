package infer

import (
	"fmt"

	"github.com/mqlang/mq/pkg/token"
	"github.com/mqlang/mq/pkg/typesys"
)

// ErrorKind tags a type-inference failure per spec.md §4.5 step 4.
type ErrorKind int

const (
	Mismatch ErrorKind = iota
	UnificationErrorKind
	OccursCheck
	WrongArity
	UndefinedSymbol
)

func (k ErrorKind) String() string {
	switch k {
	case Mismatch:
		return "Mismatch"
	case UnificationErrorKind:
		return "UnificationError"
	case OccursCheck:
		return "OccursCheck"
	case WrongArity:
		return "WrongArity"
	case UndefinedSymbol:
		return "UndefinedSymbol"
	}
	return "Unknown"
}

// TypeError is one type-inference failure, carrying the offending span.
type TypeError struct {
	Kind    ErrorKind
	Message string
	Range   token.Range
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Range)
}

// fromUnify classifies an error returned by typesys.Unify into the spec's
// taxonomy, wrapping it with the span of the expression being inferred.
func fromUnify(err error, rng token.Range) *TypeError {
	switch e := err.(type) {
	case *typesys.OccursCheckError:
		return &TypeError{Kind: OccursCheck, Message: e.Error(), Range: rng}
	case *typesys.WrongArityError:
		return &TypeError{Kind: WrongArity, Message: e.Error(), Range: rng}
	case *typesys.UnificationError:
		return &TypeError{Kind: UnificationErrorKind, Message: e.Error(), Range: rng}
	default:
		return &TypeError{Kind: Mismatch, Message: err.Error(), Range: rng}
	}
}
