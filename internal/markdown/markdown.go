// Package markdown provides small Goldmark-backed analysis helpers for
// generated documents.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func parse(body []byte) gmast.Node {
	md := goldmark.New()
	return md.Parser().Parse(text.NewReader(body))
}

// Title returns the text of the first heading in body, or "" when the
// document has none.
func Title(body []byte) string {
	root := parse(body)
	title := ""
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok {
			title = headingText(h, body)
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

// StartsWithHeading reports whether the document's first block is a heading.
// The persister uses this to decide whether an item document needs a
// synthesized section heading.
func StartsWithHeading(body []byte) bool {
	root := parse(body)
	first := root.FirstChild()
	if first == nil {
		return false
	}
	_, ok := first.(*gmast.Heading)
	return ok
}

func headingText(h *gmast.Heading, body []byte) string {
	var buf bytes.Buffer
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gmast.Text); ok {
			buf.Write(t.Segment.Value(body))
		}
	}
	return buf.String()
}
