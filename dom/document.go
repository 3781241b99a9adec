package dom

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// Document is the root of a tree and the factory for its nodes.
// It is a conversion of *Node and shares the same memory.
type Document Node

// documentData holds data specific to Document nodes.
type documentData struct {
	selection *Selection
	callbacks []MutationCallback
	ranges    *rangeRegistry
}

func newDocumentData() *documentData {
	return &documentData{ranges: &rangeRegistry{}}
}

// NewDocument creates a new, empty document.
func NewDocument() *Document {
	n := newNode(DocumentNode, "#document", nil)
	n.documentData = newDocumentData()
	doc := (*Document)(n)
	n.documentData.selection = newSelection(doc)
	return doc
}

// AsNode returns the document as a *Node.
func (d *Document) AsNode() *Node {
	return (*Node)(d)
}

// DocumentElement returns the first element child of the document, or nil.
func (d *Document) DocumentElement() *Element {
	for c := d.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// CreateElement creates a new element with the given tag name.
// Known HTML tag names are interned through the atom table.
func (d *Document) CreateElement(tagName string) *Element {
	localName := strings.ToLower(tagName)
	if a := atom.Lookup([]byte(localName)); a != 0 {
		localName = a.String()
	}
	n := newNode(ElementNode, strings.ToUpper(localName), d)
	n.elementData = &elementData{localName: localName}
	return (*Element)(n)
}

// CreateTextNode creates a new Text node.
func (d *Document) CreateTextNode(data string) *Node {
	n := newNode(TextNode, "#text", d)
	n.data = data
	return n
}

// CreateComment creates a new Comment node.
func (d *Document) CreateComment(data string) *Node {
	n := newNode(CommentNode, "#comment", d)
	n.data = data
	return n
}

// CreateDocumentFragment creates a new, empty DocumentFragment.
func (d *Document) CreateDocumentFragment() *Node {
	return newNode(DocumentFragmentNode, "#document-fragment", d)
}

// CreateRange creates a new live Range with both boundary points at the document.
func (d *Document) CreateRange() *Range {
	return NewRange(d)
}

// GetSelection returns the document's selection.
func (d *Document) GetSelection() *Selection {
	return d.documentData.selection
}

// liveRanges returns the live range registry, or nil for detached nodes.
func (d *Document) liveRanges() *rangeRegistry {
	if d == nil || d.documentData == nil {
		return nil
	}
	return d.documentData.ranges
}
