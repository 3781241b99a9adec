// Package serializer turns the normalized editor tree into the HTML string
// that gets persisted.
package serializer

import (
	"html"
	"log/slog"
	"strings"

	"github.com/chrisuehlinger/zeditor/block"
	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/is"
)

// Serializer renders editor content. It never modifies the tree, so it
// can run from a timer for auto-save.
type Serializer struct {
	blocks *block.Registry
	logger *slog.Logger
}

// New creates a serializer resolving reference placeholders through blocks,
// which may be nil.
func New(blocks *block.Registry, logger *slog.Logger) *Serializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Serializer{blocks: blocks, logger: logger.With("component", "editor:serializer")}
}

// Serialize renders the children of root with a default serializer.
func Serialize(root *dom.Element, blocks *block.Registry) string {
	return New(blocks, nil).SerializeRoot(root)
}

// SerializeRoot renders the children of root. Line breaks are dropped.
func (s *Serializer) SerializeRoot(root *dom.Element) string {
	var sb strings.Builder
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		s.write(&sb, c)
	}
	return sb.String()
}

// SerializeNode renders n and its descendants.
func (s *Serializer) SerializeNode(n *dom.Node) string {
	var sb strings.Builder
	s.write(&sb, n)
	return sb.String()
}

func (s *Serializer) write(sb *strings.Builder, n *dom.Node) {
	switch n.NodeType() {
	case dom.TextNode:
		sb.WriteString(SerializeText(n))
	case dom.ElementNode:
		s.writeElement(sb, n.AsElement())
	default:
		s.logger.Debug("ignoring node", "name", n.NodeName())
	}
}

func (s *Serializer) writeElement(sb *strings.Builder, el *dom.Element) {
	if data, ok := el.LookupAttribute("data-serialize"); ok && data != "" {
		s.logger.Debug("using data-serialize", "data", data)
		sb.WriteString(data)
		return
	}
	if temporary(el) || is.BR(el.AsNode()) {
		return
	}
	if s.blocks != nil {
		if b, ok := s.blocks.Lookup(el); ok {
			sb.WriteString(b.Serialize())
			return
		}
	}

	name := el.LocalName()
	sb.WriteByte('<')
	sb.WriteString(name)
	for _, a := range el.Attributes() {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Value))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if dom.IsVoidElement(name) {
		return
	}
	for c := el.FirstChild(); c != nil; c = c.NextSibling() {
		s.write(sb, c)
	}
	sb.WriteString("</")
	sb.WriteString(name)
	sb.WriteByte('>')
}

// temporary matches nodes that only exist while editing.
func temporary(el *dom.Element) bool {
	return el.Is("span") && (el.HasClass("join-hint") || el.HasClass("gallery-tmp-placeholder"))
}

// SerializeText escapes a text node. Spaces that HTML would collapse, at
// the edges of the parent or doubled, become &nbsp;.
func SerializeText(text *dom.Node) string {
	s := html.EscapeString(text.NodeValue())
	s = strings.ReplaceAll(s, "\u00a0", "&nbsp;")
	return spaces(s, text.PreviousSibling() == nil, text.NextSibling() == nil)
}

func spaces(s string, first, last bool) string {
	if first && strings.HasPrefix(s, " ") {
		s = "&nbsp;" + s[1:]
	}
	if last && strings.HasSuffix(s, " ") {
		s = s[:len(s)-1] + "&nbsp;"
	}
	return strings.ReplaceAll(s, "  ", " &nbsp;")
}
