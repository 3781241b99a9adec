package dom

import (
	"strings"
)

// Element represents an element in the document.
// It is a conversion of *Node and shares the same memory.
type Element Node

// Attr is a single name/value attribute pair. Attribute order is preserved.
type Attr struct {
	Name  string
	Value string
}

// elementData holds data specific to Element nodes.
type elementData struct {
	localName string
	attrs     []Attr
}

// AsNode returns the element as a *Node.
func (e *Element) AsNode() *Node {
	return (*Node)(e)
}

// TagName returns the uppercase tag name of the element.
func (e *Element) TagName() string {
	return e.nodeName
}

// LocalName returns the lowercase local name of the element.
func (e *Element) LocalName() string {
	return e.elementData.localName
}

// Is reports whether the element's local name is one of names (lowercase).
func (e *Element) Is(names ...string) bool {
	for _, name := range names {
		if e.elementData.localName == name {
			return true
		}
	}
	return false
}

// Attributes returns a copy of the element's attributes in document order.
func (e *Element) Attributes() []Attr {
	return append([]Attr(nil), e.elementData.attrs...)
}

// GetAttribute returns the value of the named attribute, or "" if absent.
func (e *Element) GetAttribute(name string) string {
	value, _ := e.LookupAttribute(name)
	return value
}

// LookupAttribute returns the value of the named attribute and whether it is present.
func (e *Element) LookupAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.elementData.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute returns true if the element has the named attribute.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.LookupAttribute(name)
	return ok
}

// SetAttribute sets the value of an attribute, adding it if needed.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	for i, a := range e.elementData.attrs {
		if a.Name == name {
			old := a.Value
			e.elementData.attrs[i].Value = value
			notifyAttributeMutation(e.AsNode(), name, old)
			return
		}
	}
	e.elementData.attrs = append(e.elementData.attrs, Attr{Name: name, Value: value})
	notifyAttributeMutation(e.AsNode(), name, "")
}

// RemoveAttribute removes the named attribute if present.
func (e *Element) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	for i, a := range e.elementData.attrs {
		if a.Name == name {
			e.elementData.attrs = append(e.elementData.attrs[:i], e.elementData.attrs[i+1:]...)
			notifyAttributeMutation(e.AsNode(), name, a.Value)
			return
		}
	}
}

// attributesEqual compares local name and the attribute sets, ignoring order.
func (e *Element) attributesEqual(other *Element) bool {
	return e.elementData.localName == other.elementData.localName && e.SameAttributes(other)
}

// SameAttributes reports whether both elements carry identical attributes.
func (e *Element) SameAttributes(other *Element) bool {
	if len(e.elementData.attrs) != len(other.elementData.attrs) {
		return false
	}
	for _, a := range e.elementData.attrs {
		v, ok := other.LookupAttribute(a.Name)
		if !ok || v != a.Value {
			return false
		}
	}
	return true
}

// ClassName returns the value of the class attribute.
func (e *Element) ClassName() string {
	return e.GetAttribute("class")
}

// SetClassName sets the value of the class attribute.
func (e *Element) SetClassName(className string) {
	e.SetAttribute("class", className)
}

// HasClass reports whether the whitespace separated class list contains name.
func (e *Element) HasClass(name string) bool {
	for _, c := range strings.Fields(e.ClassName()) {
		if c == name {
			return true
		}
	}
	return false
}

// ID returns the value of the id attribute.
func (e *Element) ID() string {
	return e.GetAttribute("id")
}

// Children returns the element children of this element.
func (e *Element) Children() []*Element {
	var children []*Element
	for c := e.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			children = append(children, (*Element)(c))
		}
	}
	return children
}

// ChildElementCount returns the number of element children.
func (e *Element) ChildElementCount() int {
	return len(e.Children())
}

// FirstElementChild returns the first element child, or nil.
func (e *Element) FirstElementChild() *Element {
	for c := e.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// LastElementChild returns the last element child, or nil.
func (e *Element) LastElementChild() *Element {
	for c := e.lastChild; c != nil; c = c.prevSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// PreviousElementSibling returns the previous sibling that is an element, or nil.
func (e *Element) PreviousElementSibling() *Element {
	return previousElementSibling(e.AsNode())
}

// NextElementSibling returns the next sibling that is an element, or nil.
func (e *Element) NextElementSibling() *Element {
	return nextElementSibling(e.AsNode())
}

func previousElementSibling(n *Node) *Element {
	for s := n.prevSibling; s != nil; s = s.prevSibling {
		if s.nodeType == ElementNode {
			return (*Element)(s)
		}
	}
	return nil
}

func nextElementSibling(n *Node) *Element {
	for s := n.nextSibling; s != nil; s = s.nextSibling {
		if s.nodeType == ElementNode {
			return (*Element)(s)
		}
	}
	return nil
}

// QueryAll returns a static list, in tree order, of descendant elements for which match returns true.
func (e *Element) QueryAll(match func(*Element) bool) []*Element {
	var results []*Element
	for c := e.firstChild; c != nil; c = c.nextSibling {
		walkNodes(c, func(n *Node) bool {
			if n.nodeType == ElementNode && match((*Element)(n)) {
				results = append(results, (*Element)(n))
			}
			return true
		})
	}
	return results
}

// GetElementsByTagName returns a static list of descendants with any of the given local names.
func (e *Element) GetElementsByTagName(names ...string) []*Element {
	for i := range names {
		names[i] = strings.ToLower(names[i])
	}
	return e.QueryAll(func(el *Element) bool { return el.Is(names...) })
}

// Closest returns the closest inclusive ancestor element for which match returns true.
func (e *Element) Closest(match func(*Element) bool) *Element {
	for n := e.AsNode(); n != nil && n.nodeType == ElementNode; n = n.parentNode {
		if match((*Element)(n)) {
			return (*Element)(n)
		}
	}
	return nil
}

// TextContent returns the text content of the element.
func (e *Element) TextContent() string {
	return e.AsNode().TextContent()
}

// SetTextContent sets the text content of the element.
func (e *Element) SetTextContent(text string) {
	e.AsNode().SetTextContent(text)
}

// AppendChild appends child to the element. It is shorthand for e.AsNode().AppendChild.
func (e *Element) AppendChild(child *Node) *Node {
	return e.AsNode().AppendChild(child)
}

// OwnerDocument returns the document that owns the element.
func (e *Element) OwnerDocument() *Document { return e.ownerDoc }

// ParentNode returns the element's parent.
func (e *Element) ParentNode() *Node { return e.parentNode }

// ParentElement returns the parent element, or nil.
func (e *Element) ParentElement() *Element { return e.AsNode().ParentElement() }

// FirstChild returns the first child node, or nil.
func (e *Element) FirstChild() *Node { return e.firstChild }

// LastChild returns the last child node, or nil.
func (e *Element) LastChild() *Node { return e.lastChild }

// PreviousSibling returns the previous sibling node, or nil.
func (e *Element) PreviousSibling() *Node { return e.prevSibling }

// NextSibling returns the next sibling node, or nil.
func (e *Element) NextSibling() *Node { return e.nextSibling }

// ChildNodes returns a static snapshot of the element's children.
func (e *Element) ChildNodes() []*Node { return e.AsNode().ChildNodes() }

// HasChildNodes returns true if the element has children.
func (e *Element) HasChildNodes() bool { return e.firstChild != nil }

// InsertBefore inserts newChild before refChild (appends when refChild is nil).
func (e *Element) InsertBefore(newChild, refChild *Node) *Node {
	return e.AsNode().InsertBefore(newChild, refChild)
}

// RemoveChild removes child from the element.
func (e *Element) RemoveChild(child *Node) *Node { return e.AsNode().RemoveChild(child) }

// Remove detaches the element from its parent.
func (e *Element) Remove() { e.AsNode().Remove() }

// Contains returns true if other is the element or one of its descendants.
func (e *Element) Contains(other *Node) bool { return e.AsNode().Contains(other) }
