package tokenizer

import (
	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/is"
	"golang.org/x/net/html/atom"
)

// AltValue is the text an image stands for in a scan: its
// data-tokenizer-alt attribute, else its alt attribute, else a tab.
func AltValue(img *dom.Element) string {
	if alt, ok := img.LookupAttribute("data-tokenizer-alt"); ok {
		return alt
	}
	if alt, ok := img.LookupAttribute("alt"); ok {
		return alt
	}
	return "\t"
}

// ExtractText flattens the text of root: line breaks become "\n" and
// images their alt value.
func ExtractText(root *dom.Node) string {
	var text []byte
	walk(root, func(n *dom.Node) {
		switch {
		case is.Text(n):
			text = append(text, n.NodeValue()...)
		case is.BR(n):
			text = append(text, '\n')
		case is.Tag(n, atom.Img):
			text = append(text, AltValue(n.AsElement())...)
		}
	})
	return string(text)
}

// walk visits root and its descendants in document order.
func walk(root *dom.Node, fn func(*dom.Node)) {
	fn(root)
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		walk(c, fn)
	}
}
