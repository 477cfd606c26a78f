package mqengine

import (
	"strings"

	"github.com/mqlang/mq/pkg/parser"
)

// parseErrors wraps every syntax error from one parse call into a single
// error, so Engine methods that stop at "parsing failed" can return one
// error value while still preserving each individual diagnostic.
type parseErrors struct {
	errs []*parser.Error
}

func (e *parseErrors) Error() string {
	msgs := make([]string, len(e.errs))
	for i, pe := range e.errs {
		msgs[i] = pe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Errors returns the individual syntax errors, for callers that want to
// report each span separately rather than the combined message.
func (e *parseErrors) Errors() []*parser.Error { return e.errs }

func combinedParseErr(errs []*parser.Error) error {
	if len(errs) == 0 {
		return nil
	}
	return &parseErrors{errs: errs}
}
