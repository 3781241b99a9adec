// Package is holds the node predicates and element classes shared by the
// normalizer, the input normalizer and the tokenizer.
package is

import (
	"github.com/chrisuehlinger/zeditor/dom"
	"golang.org/x/net/html/atom"
)

var (
	blockElements = set(atom.Address, atom.Article, atom.Aside, atom.Audio, atom.Blockquote,
		atom.Canvas, atom.Dd, atom.Div, atom.Dl, atom.Fieldset, atom.Figcaption, atom.Figure,
		atom.Footer, atom.Form, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Header,
		atom.Hgroup, atom.Hr, atom.Noscript, atom.Ol, atom.Output, atom.P, atom.Pre, atom.Section,
		atom.Table, atom.Tfoot, atom.Ul, atom.Video)

	inlineElements = set(atom.A, atom.Abbr, atom.Acronym, atom.B, atom.Bdo, atom.Big, atom.Br,
		atom.Button, atom.Cite, atom.Code, atom.Dfn, atom.Em, atom.I, atom.Img, atom.Input,
		atom.Kbd, atom.Label, atom.Map, atom.Object, atom.Q, atom.Samp, atom.Script, atom.Select,
		atom.Small, atom.Span, atom.Strong, atom.Sub, atom.Sup, atom.Textarea, atom.Tt, atom.Var)

	voidElements = set(atom.Area, atom.Base, atom.Br, atom.Col, atom.Command, atom.Embed,
		atom.Hr, atom.Img, atom.Input, atom.Keygen, atom.Link, atom.Meta, atom.Param,
		atom.Source, atom.Track, atom.Wbr)

	// rootElements may appear as direct children of the editor root.
	rootElements = set(atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Div,
		atom.Dl, atom.Figure, atom.Footer, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Header, atom.Hgroup, atom.Hr, atom.Ol, atom.P, atom.Pre, atom.Section, atom.Table,
		atom.Ul)

	// wrappers maps elements to the containers they must live in; the first
	// entry is the one created when wrapping.
	wrappers = map[atom.Atom][]atom.Atom{
		atom.Li:         {atom.Ul, atom.Ol},
		atom.Dd:         {atom.Dl},
		atom.Dt:         {atom.Dl},
		atom.Figcaption: {atom.Figure},
	}
)

func set(atoms ...atom.Atom) map[atom.Atom]bool {
	m := make(map[atom.Atom]bool, len(atoms))
	for _, a := range atoms {
		m[a] = true
	}
	return m
}

func tag(n *dom.Node) atom.Atom {
	el := n.AsElement()
	if el == nil {
		return 0
	}
	return atom.Lookup([]byte(el.LocalName()))
}

// Text reports whether n is a Text node.
func Text(n *dom.Node) bool {
	return n != nil && n.NodeType() == dom.TextNode
}

// Element reports whether n is an element.
func Element(n *dom.Node) bool {
	return n != nil && n.NodeType() == dom.ElementNode
}

// Tag reports whether n is an element with one of the given atoms.
func Tag(n *dom.Node, atoms ...atom.Atom) bool {
	t := tag(n)
	if t == 0 {
		return false
	}
	for _, a := range atoms {
		if t == a {
			return true
		}
	}
	return false
}

func P(n *dom.Node) bool          { return Tag(n, atom.P) }
func BR(n *dom.Node) bool         { return Tag(n, atom.Br) }
func List(n *dom.Node) bool       { return Tag(n, atom.Ul, atom.Ol) }
func ListItem(n *dom.Node) bool   { return Tag(n, atom.Li) }
func Blockquote(n *dom.Node) bool { return Tag(n, atom.Blockquote) }
func Anchor(n *dom.Node) bool     { return Tag(n, atom.A) }

// Heading reports whether n is one of h1 to h6.
func Heading(n *dom.Node) bool {
	return Tag(n, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6)
}

// EmptyListItem reports whether n is an li holding only a br.
func EmptyListItem(n *dom.Node) bool {
	return ListItem(n) && onlyBR(n)
}

// OverlayReference matches div.overlay-reference[data-id].
func OverlayReference(n *dom.Node) bool {
	el := n.AsElement()
	return el != nil && el.Is("div") && el.HasClass("overlay-reference") && el.HasAttribute("data-id")
}

// JoinHint matches span.join-hint[contenteditable=false].
func JoinHint(n *dom.Node) bool {
	el := n.AsElement()
	return el != nil && el.Is("span") && el.HasClass("join-hint") && el.GetAttribute("contenteditable") == "false"
}

// Empty reports whether n has no children.
func Empty(n *dom.Node) bool {
	return n != nil && !n.HasChildNodes()
}

// NonEmpty reports whether n has children.
func NonEmpty(n *dom.Node) bool {
	return n != nil && n.HasChildNodes()
}

// Newline reports whether n is a Text node holding exactly "\n".
func Newline(n *dom.Node) bool {
	return Text(n) && n.NodeValue() == "\n"
}

// EmptyParagraph reports whether n is a p holding only a br.
func EmptyParagraph(n *dom.Node) bool {
	return P(n) && onlyBR(n)
}

// EmptyOverlayReference reports whether n is a reference placeholder in its canonical form.
func EmptyOverlayReference(n *dom.Node) bool {
	return OverlayReference(n) && onlyBR(n)
}

func onlyBR(n *dom.Node) bool {
	return n.ChildCount() == 1 && BR(n.FirstChild())
}

// Block reports whether n is an HTML block element.
func Block(n *dom.Node) bool {
	return blockElements[tag(n)]
}

// Inline reports whether n is an HTML inline element.
func Inline(n *dom.Node) bool {
	return inlineElements[tag(n)]
}

// Void reports whether n is an element that never has children.
func Void(n *dom.Node) bool {
	return voidElements[tag(n)]
}

// NonVoidBlock reports whether n is a block element that can have children.
func NonVoidBlock(n *dom.Node) bool {
	t := tag(n)
	return blockElements[t] && !voidElements[t]
}

// NonVoidInline reports whether n is an inline element that can have children.
func NonVoidInline(n *dom.Node) bool {
	t := tag(n)
	return inlineElements[t] && !voidElements[t]
}

// Formatting reports whether n is a non-void inline element other than span.
func Formatting(n *dom.Node) bool {
	t := tag(n)
	return inlineElements[t] && !voidElements[t] && t != atom.Span
}

// RootElement reports whether n may sit directly under the editor root.
func RootElement(n *dom.Node) bool {
	return rootElements[tag(n)]
}

// Wrappers returns the containers n must be placed in, or nil when n can go anywhere.
func Wrappers(n *dom.Node) []atom.Atom {
	return wrappers[tag(n)]
}
