package mdast_test

import (
	"testing"

	"gotest.tools/v3/golden"

	"github.com/mqlang/mq/pkg/mdast"
)

// TestDocumentRenderGolden pins the exact rendering of a document mixing a
// heading, inline strong emphasis, and an unordered list, the same handful
// of constructs spec.md's example scenarios build by hand, so a change to
// any one Render method's spacing/markers shows up as a diff here instead
// of only inside a deeply nested assertion elsewhere.
func TestDocumentRenderGolden(t *testing.T) {
	doc := mdast.NewDocument(
		mdast.NewHeading(1, mdast.NewStrong(mdast.NewText("title"))),
		mdast.NewList(false,
			mdast.NewListItem(mdast.NewText("a")),
			mdast.NewListItem(mdast.NewText("b")),
		),
	)

	golden.Assert(t, doc.Render(), "document_render.golden")
}
