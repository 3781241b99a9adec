package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses markup in the context of the given element and returns
// the result as a DocumentFragment owned by doc.
func ParseFragment(doc *Document, markup string, context *Element) (*Node, error) {
	contextNode := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	if context != nil {
		contextNode.Data = context.LocalName()
		contextNode.DataAtom = atom.Lookup([]byte(contextNode.Data))
	}
	parsed, err := html.ParseFragment(strings.NewReader(markup), contextNode)
	if err != nil {
		return nil, err
	}
	frag := doc.CreateDocumentFragment()
	for _, n := range parsed {
		if c := convertNode(doc, n); c != nil {
			frag.link(c, nil)
		}
	}
	return frag, nil
}

// convertNode converts a golang.org/x/net/html node into a detached node of doc.
func convertNode(doc *Document, n *html.Node) *Node {
	var node *Node
	switch n.Type {
	case html.TextNode:
		return doc.CreateTextNode(n.Data)
	case html.CommentNode:
		return doc.CreateComment(n.Data)
	case html.ElementNode:
		el := doc.CreateElement(n.Data)
		for _, a := range n.Attr {
			el.elementData.attrs = append(el.elementData.attrs, Attr{Name: a.Key, Value: a.Val})
		}
		node = el.AsNode()
	default:
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := convertNode(doc, c); child != nil {
			node.link(child, nil)
		}
	}
	return node
}

// SetInnerHTML replaces the element's children with the parsed markup.
func (e *Element) SetInnerHTML(markup string) error {
	n := e.AsNode()
	frag, err := ParseFragment(n.ownerDoc, markup, e)
	if err != nil {
		return err
	}
	for n.firstChild != nil {
		n.removeChild(n.firstChild)
	}
	n.insertBefore(frag, nil)
	return nil
}

// InnerHTML serializes the element's children.
func (e *Element) InnerHTML() string {
	var sb strings.Builder
	for c := e.firstChild; c != nil; c = c.nextSibling {
		writeHTML(&sb, c)
	}
	return sb.String()
}

// OuterHTML serializes the element and its children.
func (e *Element) OuterHTML() string {
	return Serialize(e.AsNode())
}

// Serialize returns the HTML serialization of n and its descendants.
// Fragments serialize as the concatenation of their children.
func Serialize(n *Node) string {
	var sb strings.Builder
	if n.nodeType == DocumentFragmentNode || n.nodeType == DocumentNode {
		for c := n.firstChild; c != nil; c = c.nextSibling {
			writeHTML(&sb, c)
		}
		return sb.String()
	}
	writeHTML(&sb, n)
	return sb.String()
}

// https://html.spec.whatwg.org/multipage/parsing.html#serialising-html-fragments
func writeHTML(sb *strings.Builder, n *Node) {
	switch n.nodeType {
	case TextNode:
		if p := n.parentNode; p != nil && p.nodeType == ElementNode && isRawText(p.elementData.localName) {
			sb.WriteString(n.data)
			return
		}
		sb.WriteString(escapeText(n.data, false))
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.data)
		sb.WriteString("-->")
	case ElementNode:
		name := n.elementData.localName
		sb.WriteByte('<')
		sb.WriteString(name)
		for _, a := range n.elementData.attrs {
			sb.WriteByte(' ')
			sb.WriteString(a.Name)
			sb.WriteString(`="`)
			sb.WriteString(escapeText(a.Value, true))
			sb.WriteByte('"')
		}
		sb.WriteByte('>')
		if IsVoidElement(name) {
			return
		}
		for c := n.firstChild; c != nil; c = c.nextSibling {
			writeHTML(sb, c)
		}
		sb.WriteString("</")
		sb.WriteString(name)
		sb.WriteByte('>')
	}
}

var (
	textEscaper      = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", "<", "&lt;", ">", "&gt;")
	attributeEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", `"`, "&quot;")
)

func escapeText(s string, attribute bool) string {
	if attribute {
		return attributeEscaper.Replace(s)
	}
	return textEscaper.Replace(s)
}

// IsVoidElement reports whether the element with the given local name never has children.
func IsVoidElement(localName string) bool {
	switch atom.Lookup([]byte(localName)) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}

func isRawText(localName string) bool {
	switch atom.Lookup([]byte(localName)) {
	case atom.Style, atom.Script, atom.Xmp, atom.Iframe, atom.Noembed, atom.Noframes, atom.Plaintext:
		return true
	}
	return false
}
