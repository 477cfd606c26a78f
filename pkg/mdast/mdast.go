// Package mdast defines the minimal Markdown node tree that mq's selectors
// and built-ins operate over. Actual Markdown parsing/rendering is an
// external concern (spec.md §1 non-goals); this package only fixes the
// shape callers hand the engine and the engine hands back.
package mdast

import "strings"

// NodeKind enumerates the Markdown node kinds mq's selectors recognize.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindHeading
	KindParagraph
	KindText
	KindEmphasis
	KindStrong
	KindCodeSpan
	KindCodeBlock
	KindList
	KindListItem
	KindTable
	KindTableRow
	KindTableCell
	KindLink
	KindImage
	KindBlockquote
	KindThematicBreak
	KindHTMLBlock
)

// Node is any Markdown AST node. Attr exposes kind-specific data (heading
// level, code-block language, link URL, ...) by name so selectors and
// built-ins can query it uniformly without type-switching on every kind.
type Node interface {
	Kind() NodeKind
	Children() []Node
	Attr(name string) (string, bool)
	// Render returns a Markdown-source round-trip of this node and its
	// children.
	Render() string
}

type base struct {
	children []Node
}

func (b base) Children() []Node { return b.children }

// Document is the root of a parsed Markdown corpus.
type Document struct {
	base
}

func NewDocument(children ...Node) *Document { return &Document{base{children}} }
func (*Document) Kind() NodeKind             { return KindDocument }
func (*Document) Attr(string) (string, bool) { return "", false }
func (d *Document) Render() string           { return renderChildren(d.children, "\n\n") }

// Heading is an ATX/Setext heading; Level is 1-6.
type Heading struct {
	base
	Level int
}

func NewHeading(level int, children ...Node) *Heading {
	return &Heading{base{children}, level}
}
func (*Heading) Kind() NodeKind { return KindHeading }
func (h *Heading) Attr(name string) (string, bool) {
	if name == "level" {
		return itoa(h.Level), true
	}
	return "", false
}
func (h *Heading) Render() string {
	return strings.Repeat("#", h.Level) + " " + renderChildren(h.children, "") + "\n"
}

// Paragraph is a block of inline content.
type Paragraph struct{ base }

func NewParagraph(children ...Node) *Paragraph { return &Paragraph{base{children}} }
func (*Paragraph) Kind() NodeKind              { return KindParagraph }
func (*Paragraph) Attr(string) (string, bool)  { return "", false }
func (p *Paragraph) Render() string            { return renderChildren(p.children, "") }

// Text is a leaf run of literal text.
type Text struct{ Value string }

func NewText(v string) *Text                { return &Text{v} }
func (*Text) Kind() NodeKind                { return KindText }
func (*Text) Children() []Node              { return nil }
func (t *Text) Attr(name string) (string, bool) {
	if name == "value" {
		return t.Value, true
	}
	return "", false
}
func (t *Text) Render() string { return t.Value }

// Emphasis is `*italic*` content.
type Emphasis struct{ base }

func NewEmphasis(children ...Node) *Emphasis { return &Emphasis{base{children}} }
func (*Emphasis) Kind() NodeKind             { return KindEmphasis }
func (*Emphasis) Attr(string) (string, bool) { return "", false }
func (e *Emphasis) Render() string           { return "*" + renderChildren(e.children, "") + "*" }

// Strong is `**bold**` content.
type Strong struct{ base }

func NewStrong(children ...Node) *Strong    { return &Strong{base{children}} }
func (*Strong) Kind() NodeKind              { return KindStrong }
func (*Strong) Attr(string) (string, bool)  { return "", false }
func (s *Strong) Render() string            { return "**" + renderChildren(s.children, "") + "**" }

// CodeSpan is an inline `` `code` `` run.
type CodeSpan struct{ Value string }

func NewCodeSpan(v string) *CodeSpan { return &CodeSpan{v} }
func (*CodeSpan) Kind() NodeKind     { return KindCodeSpan }
func (*CodeSpan) Children() []Node  { return nil }
func (c *CodeSpan) Attr(name string) (string, bool) {
	if name == "value" {
		return c.Value, true
	}
	return "", false
}
func (c *CodeSpan) Render() string { return "`" + c.Value + "`" }

// CodeBlock is a fenced ``` code block; Lang is "" when unspecified.
type CodeBlock struct {
	Lang  string
	Value string
}

func NewCodeBlock(lang, value string) *CodeBlock { return &CodeBlock{lang, value} }
func (*CodeBlock) Kind() NodeKind                { return KindCodeBlock }
func (*CodeBlock) Children() []Node              { return nil }
func (c *CodeBlock) Attr(name string) (string, bool) {
	switch name {
	case "lang":
		return c.Lang, true
	case "value":
		return c.Value, true
	}
	return "", false
}
func (c *CodeBlock) Render() string {
	return "```" + c.Lang + "\n" + c.Value + "\n```\n"
}

// List is an ordered or unordered list of ListItems.
type List struct {
	base
	Ordered bool
}

func NewList(ordered bool, children ...Node) *List { return &List{base{children}, ordered} }
func (*List) Kind() NodeKind                       { return KindList }
func (l *List) Attr(name string) (string, bool) {
	if name == "ordered" {
		if l.Ordered {
			return "true", true
		}
		return "false", true
	}
	return "", false
}
func (l *List) Render() string {
	var sb strings.Builder
	for i, c := range l.children {
		marker := "- "
		if l.Ordered {
			marker = itoa(i+1) + ". "
		}
		sb.WriteString(marker)
		sb.WriteString(c.Render())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ListItem is one entry of a List.
type ListItem struct{ base }

func NewListItem(children ...Node) *ListItem { return &ListItem{base{children}} }
func (*ListItem) Kind() NodeKind             { return KindListItem }
func (*ListItem) Attr(string) (string, bool) { return "", false }
func (l *ListItem) Render() string           { return renderChildren(l.children, "") }

// Table is a GFM-style table of TableRows; the first row is the header.
type Table struct{ base }

func NewTable(rows ...Node) *Table            { return &Table{base{rows}} }
func (*Table) Kind() NodeKind                 { return KindTable }
func (*Table) Attr(string) (string, bool)     { return "", false }
func (t *Table) Render() string               { return renderChildren(t.children, "\n") }

// TableRow is one row of cells.
type TableRow struct{ base }

func NewTableRow(cells ...Node) *TableRow     { return &TableRow{base{cells}} }
func (*TableRow) Kind() NodeKind              { return KindTableRow }
func (*TableRow) Attr(string) (string, bool)  { return "", false }
func (r *TableRow) Render() string {
	var parts []string
	for _, c := range r.children {
		parts = append(parts, c.Render())
	}
	return "| " + strings.Join(parts, " | ") + " |"
}

// TableCell is one cell of a TableRow.
type TableCell struct{ base }

func NewTableCell(children ...Node) *TableCell { return &TableCell{base{children}} }
func (*TableCell) Kind() NodeKind              { return KindTableCell }
func (*TableCell) Attr(string) (string, bool)  { return "", false }
func (c *TableCell) Render() string            { return renderChildren(c.children, "") }

// Link is `[text](url)`.
type Link struct {
	base
	URL string
}

func NewLink(url string, children ...Node) *Link { return &Link{base{children}, url} }
func (*Link) Kind() NodeKind                     { return KindLink }
func (l *Link) Attr(name string) (string, bool) {
	if name == "url" {
		return l.URL, true
	}
	return "", false
}
func (l *Link) Render() string {
	return "[" + renderChildren(l.children, "") + "](" + l.URL + ")"
}

// Image is `![alt](url)`.
type Image struct {
	URL string
	Alt string
}

func NewImage(url, alt string) *Image { return &Image{url, alt} }
func (*Image) Kind() NodeKind         { return KindImage }
func (*Image) Children() []Node       { return nil }
func (i *Image) Attr(name string) (string, bool) {
	switch name {
	case "url":
		return i.URL, true
	case "alt":
		return i.Alt, true
	}
	return "", false
}
func (i *Image) Render() string { return "![" + i.Alt + "](" + i.URL + ")" }

// Blockquote is a `> ...` quoted block.
type Blockquote struct{ base }

func NewBlockquote(children ...Node) *Blockquote { return &Blockquote{base{children}} }
func (*Blockquote) Kind() NodeKind               { return KindBlockquote }
func (*Blockquote) Attr(string) (string, bool)   { return "", false }
func (b *Blockquote) Render() string {
	lines := strings.Split(renderChildren(b.children, ""), "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

// ThematicBreak is a `---` rule.
type ThematicBreak struct{}

func (*ThematicBreak) Kind() NodeKind                 { return KindThematicBreak }
func (*ThematicBreak) Children() []Node               { return nil }
func (*ThematicBreak) Attr(string) (string, bool)     { return "", false }
func (*ThematicBreak) Render() string                 { return "---\n" }

// HTMLBlock is raw passthrough HTML.
type HTMLBlock struct{ Value string }

func (h *HTMLBlock) Kind() NodeKind    { return KindHTMLBlock }
func (*HTMLBlock) Children() []Node    { return nil }
func (h *HTMLBlock) Attr(name string) (string, bool) {
	if name == "value" {
		return h.Value, true
	}
	return "", false
}
func (h *HTMLBlock) Render() string { return h.Value }

func renderChildren(children []Node, sep string) string {
	var parts []string
	for _, c := range children {
		parts = append(parts, c.Render())
	}
	return strings.Join(parts, sep)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

// TextContent concatenates every Text leaf under n, depth-first — the
// primitive behind the `to_text()` built-in.
func TextContent(n Node) string {
	if n == nil {
		return ""
	}
	if t, ok := n.(*Text); ok {
		return t.Value
	}
	var sb strings.Builder
	for _, c := range n.Children() {
		sb.WriteString(TextContent(c))
	}
	return sb.String()
}
