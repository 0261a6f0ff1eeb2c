package dom

import (
	"html"
	"io"
	"strings"
)

// HTML serializes node and its subtree. Empty text nodes (anchors) render
// as nothing.
func (d *Document) HTML(node *MemNode) string {
	var b strings.Builder
	_ = WriteHTML(&b, node)
	return b.String()
}

// WriteHTML serializes node and its subtree to w.
func WriteHTML(w io.Writer, node *MemNode) error {
	switch node.kind {
	case TextNode:
		_, err := io.WriteString(w, html.EscapeString(node.data))
		return err
	case ElementNode:
		if _, err := io.WriteString(w, "<"+node.tag+">"); err != nil {
			return err
		}
		for _, c := range node.children {
			if err := WriteHTML(w, c); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</"+node.tag+">")
		return err
	}
	return nil
}

// TextContent concatenates the text of every text node under node.
func TextContent(node *MemNode) string {
	var b strings.Builder
	for _, n := range FindAll(node, func(n *MemNode) bool { return n.kind == TextNode }) {
		b.WriteString(n.data)
	}
	return b.String()
}
