package eval

import (
	"strings"

	"github.com/mqlang/mq/pkg/mdast"
	"github.com/mqlang/mq/pkg/token"
	"github.com/mqlang/mq/pkg/value"
)

// selectorStep is one compiled stage of a selector program: a kind filter
// (hasKind set, matching nodes of kind with optional attribute equality
// checks) or an iterate stage (flattening one level of children), per
// spec.md §4.6's "selector predicates are compiled to a tiny bytecode (kind
// mask + attribute filters) at parse time".
type selectorStep struct {
	hasKind bool
	kind    mdast.NodeKind
	attr    map[string]value.Value
	iterate bool
}

// SelectorProgram is a compiled ast.Selector.Src, ready to apply to a
// value.Value without re-parsing the source text on every evaluation.
type SelectorProgram struct {
	src   string
	steps []selectorStep
}

// namedKinds maps a selector's bare identifier to the mdast.NodeKind it
// filters on. "h" matches a heading of any level; "h1".."h6" additionally
// constrain Level, spelled out in headingLevels below.
var namedKinds = map[string]mdast.NodeKind{
	"h":              mdast.KindHeading,
	"h1":             mdast.KindHeading,
	"h2":             mdast.KindHeading,
	"h3":             mdast.KindHeading,
	"h4":             mdast.KindHeading,
	"h5":             mdast.KindHeading,
	"h6":             mdast.KindHeading,
	"paragraph":      mdast.KindParagraph,
	"text":           mdast.KindText,
	"emphasis":       mdast.KindEmphasis,
	"em":             mdast.KindEmphasis,
	"strong":         mdast.KindStrong,
	"code_span":      mdast.KindCodeSpan,
	"code":           mdast.KindCodeBlock,
	"list":           mdast.KindList,
	"list_item":      mdast.KindListItem,
	"table":          mdast.KindTable,
	"table_row":      mdast.KindTableRow,
	"table_cell":     mdast.KindTableCell,
	"link":           mdast.KindLink,
	"image":          mdast.KindImage,
	"blockquote":     mdast.KindBlockquote,
	"thematic_break": mdast.KindThematicBreak,
	"html":           mdast.KindHTMLBlock,
}

var headingLevels = map[string]string{
	"h1": "1", "h2": "2", "h3": "3", "h4": "4", "h5": "5", "h6": "6",
}

// compileSelector parses a Selector.Src (always dot-prefixed, per the
// lexer's tryReadSelector: either a pure bracket-iterate chain or a single
// named-kind form with optional parenthesized args — never both in one
// token) into a SelectorProgram.
func compileSelector(src string, rng token.Range) (*SelectorProgram, error) {
	body := strings.TrimPrefix(src, ".")
	if body == "" {
		return nil, newErr(InvalidDefinition, rng, "empty selector")
	}

	if body[0] == '[' {
		steps, err := compileIterateChain(body, rng)
		if err != nil {
			return nil, err
		}
		return &SelectorProgram{src: src, steps: steps}, nil
	}

	name, argSrc := splitSelectorName(body)
	kind, ok := namedKinds[name]
	if !ok {
		return nil, newErr(InvalidDefinition, rng, "unknown selector %q", src)
	}

	attr := map[string]value.Value{}
	if lvl, ok := headingLevels[name]; ok {
		attr["level"] = value.String(lvl)
	}
	if argSrc != "" {
		arg, err := parseSelectorArg(argSrc, rng)
		if err != nil {
			return nil, err
		}
		switch kind {
		case mdast.KindCodeBlock:
			attr["lang"] = arg
		case mdast.KindLink, mdast.KindImage:
			attr["url"] = arg
		default:
			return nil, newErr(InvalidDefinition, rng, "selector %q does not accept arguments", src)
		}
	}

	return &SelectorProgram{src: src, steps: []selectorStep{{hasKind: true, kind: kind, attr: attr}}}, nil
}

func compileIterateChain(body string, rng token.Range) ([]selectorStep, error) {
	var steps []selectorStep
	for len(body) > 0 {
		if len(body) < 2 || body[0] != '[' || body[1] != ']' {
			return nil, newErr(InvalidDefinition, rng, "malformed iterate selector %q", body)
		}
		steps = append(steps, selectorStep{iterate: true})
		body = body[2:]
	}
	return steps, nil
}

// splitSelectorName separates the leading identifier from an optional
// "(...)" argument list, returning the parenthesized text (without the
// parens) as argSrc, or "" if absent.
func splitSelectorName(body string) (name, argSrc string) {
	i := strings.IndexByte(body, '(')
	if i < 0 {
		return body, ""
	}
	name = body[:i]
	inner := body[i+1 : len(body)-1]
	return name, strings.TrimSpace(inner)
}

// parseSelectorArg evaluates the single string-literal argument a named
// selector accepts (e.g. the "js" in .code("js")); mq selectors only ever
// take a literal string here, so a tiny ad hoc unquote suffices.
func parseSelectorArg(src string, rng token.Range) (value.Value, error) {
	if len(src) >= 2 && (src[0] == '"' || src[0] == '\'') && src[len(src)-1] == src[0] {
		return value.String(src[1 : len(src)-1]), nil
	}
	return nil, newErr(InvalidDefinition, rng, "selector argument %q must be a quoted string", src)
}

// Apply runs the compiled selector against v, the current pipeline value.
// A kind-filter step keeps v as-is if it matches (nodes don't nest inside
// a selector's own result — composition happens at the Pipe level) or
// yields None otherwise; an iterate step expects an array or markdown
// node and flattens one level of elements/children, applied independently
// to each element if v is already an array (so `.[][]` iterates twice).
func (p *SelectorProgram) Apply(v value.Value, rng token.Range) (value.Value, error) {
	cur := []value.Value{v}
	for _, step := range p.steps {
		var next []value.Value
		for _, c := range cur {
			out, err := applyStep(step, c, rng)
			if err != nil {
				return nil, err
			}
			next = append(next, out...)
		}
		cur = next
	}
	if len(p.steps) > 0 && p.steps[len(p.steps)-1].iterate {
		return &value.Array{Elements: cur}, nil
	}
	if len(cur) == 0 {
		return value.None{}, nil
	}
	return cur[0], nil
}

func applyStep(step selectorStep, v value.Value, rng token.Range) ([]value.Value, error) {
	if step.iterate {
		return iterateOnce(v, rng)
	}
	md, ok := v.(*value.Markdown)
	if !ok {
		return nil, nil
	}
	if md.Node.Kind() != step.kind {
		return nil, nil
	}
	for k, want := range step.attr {
		got, has := md.Node.Attr(k)
		if !has || got != want.String() {
			return nil, nil
		}
	}
	return []value.Value{v}, nil
}

func iterateOnce(v value.Value, rng token.Range) ([]value.Value, error) {
	switch x := v.(type) {
	case *value.Array:
		return x.Elements, nil
	case *value.Markdown:
		children := x.Node.Children()
		out := make([]value.Value, len(children))
		for i, c := range children {
			out[i] = &value.Markdown{Node: c}
		}
		return out, nil
	default:
		return nil, newErr(InvalidTypes, rng, "cannot iterate over %s", v.Kind())
	}
}
