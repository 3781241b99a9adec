package dom

import (
	"strings"
)

// Node represents a node in the DOM tree. Document, Element, Text, Comment and
// DocumentFragment all share this representation; the type-specific views
// (*Element, *Document) are conversions of the same pointer.
type Node struct {
	nodeType NodeType
	nodeName string
	data     string // Text and Comment content
	ownerDoc *Document

	parentNode  *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// Type-specific data (only one will be non-nil based on nodeType)
	elementData  *elementData
	documentData *documentData
}

// newNode creates a new node with the given type and name.
func newNode(nodeType NodeType, nodeName string, ownerDoc *Document) *Node {
	return &Node{
		nodeType: nodeType,
		nodeName: nodeName,
		ownerDoc: ownerDoc,
	}
}

// NodeType returns the type of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// NodeName returns the name of the node.
// For elements, this is the tag name in uppercase.
// For text nodes, this is "#text".
func (n *Node) NodeName() string {
	return n.nodeName
}

// NodeValue returns the data of Text and Comment nodes, and "" otherwise.
func (n *Node) NodeValue() string {
	return n.data
}

// SetNodeValue replaces the data of a Text or Comment node.
// For other node types, this is a no-op.
func (n *Node) SetNodeValue(value string) {
	if n.nodeType != TextNode && n.nodeType != CommentNode {
		return
	}
	n.ReplaceData(0, len(n.data), value)
}

// ReplaceData implements the "replace data" algorithm for character data nodes,
// keeping live ranges anchored in this node consistent.
func (n *Node) ReplaceData(offset, count int, data string) error {
	if n.nodeType != TextNode && n.nodeType != CommentNode {
		return ErrInvalidNodeType("ReplaceData on a node without character data.")
	}
	if offset < 0 || offset > len(n.data) {
		return ErrIndexSize("The offset is out of range.")
	}
	if offset+count > len(n.data) {
		count = len(n.data) - offset
	}
	old := n.data
	n.data = old[:offset] + data + old[offset+count:]
	if n.ownerDoc != nil {
		n.ownerDoc.liveRanges().replacedData(n, offset, count, len(data))
	}
	notifyCharacterDataMutation(n, old)
	return nil
}

// OwnerDocument returns the Document that owns this node.
// For Document nodes, this returns nil.
func (n *Node) OwnerDocument() *Document {
	if n.nodeType == DocumentNode {
		return nil
	}
	return n.ownerDoc
}

// ParentNode returns the parent of this node.
func (n *Node) ParentNode() *Node {
	return n.parentNode
}

// ParentElement returns the parent Element, or nil if the parent is not an element.
func (n *Node) ParentElement() *Element {
	if n.parentNode != nil && n.parentNode.nodeType == ElementNode {
		return (*Element)(n.parentNode)
	}
	return nil
}

// AsElement returns the Element view of this node, or nil if it is not an element.
func (n *Node) AsElement() *Element {
	if n == nil || n.nodeType != ElementNode {
		return nil
	}
	return (*Element)(n)
}

// FirstChild returns the first child node, or nil if there are no children.
func (n *Node) FirstChild() *Node {
	return n.firstChild
}

// LastChild returns the last child node, or nil if there are no children.
func (n *Node) LastChild() *Node {
	return n.lastChild
}

// PreviousSibling returns the previous sibling node, or nil if this is the first child.
func (n *Node) PreviousSibling() *Node {
	return n.prevSibling
}

// NextSibling returns the next sibling node, or nil if this is the last child.
func (n *Node) NextSibling() *Node {
	return n.nextSibling
}

// HasChildNodes returns true if this node has any child nodes.
func (n *Node) HasChildNodes() bool {
	return n.firstChild != nil
}

// ChildNodes returns a static snapshot of the node's children.
func (n *Node) ChildNodes() []*Node {
	var children []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		children = append(children, c)
	}
	return children
}

// ChildCount returns the number of child nodes.
func (n *Node) ChildCount() int {
	count := 0
	for c := n.firstChild; c != nil; c = c.nextSibling {
		count++
	}
	return count
}

// ChildAt returns the child at index, or nil when out of range.
func (n *Node) ChildAt(index int) *Node {
	if index < 0 {
		return nil
	}
	c := n.firstChild
	for i := 0; c != nil && i < index; i++ {
		c = c.nextSibling
	}
	return c
}

// Index returns the position of this node among its siblings, or -1 if it has no parent.
func (n *Node) Index() int {
	if n.parentNode == nil {
		return -1
	}
	return indexOfChild(n.parentNode, n)
}

// Length returns the node length used for boundary points: the data length of
// character data nodes, and the number of children otherwise.
func (n *Node) Length() int {
	return nodeLength(n)
}

// TextContent returns the text content of the node and its descendants.
func (n *Node) TextContent() string {
	switch n.nodeType {
	case DocumentNode:
		return ""
	case TextNode, CommentNode:
		return n.data
	default:
		var sb strings.Builder
		n.collectTextContent(&sb)
		return sb.String()
	}
}

func (n *Node) collectTextContent(sb *strings.Builder) {
	for child := n.firstChild; child != nil; child = child.nextSibling {
		switch child.nodeType {
		case TextNode:
			sb.WriteString(child.data)
		case ElementNode, DocumentFragmentNode:
			child.collectTextContent(sb)
		}
	}
}

// SetTextContent sets the text content of the node.
// For elements and document fragments, this replaces all children with a single text node.
func (n *Node) SetTextContent(value string) {
	switch n.nodeType {
	case DocumentNode:
		return
	case TextNode, CommentNode:
		n.SetNodeValue(value)
	default:
		for n.firstChild != nil {
			n.RemoveChild(n.firstChild)
		}
		if value != "" {
			n.AppendChild(n.ownerDoc.CreateTextNode(value))
		}
	}
}

// AppendChild adds a node to the end of the list of children of this node.
// For error-returning version, use AppendChildWithError.
func (n *Node) AppendChild(child *Node) *Node {
	result, _ := n.InsertBeforeWithError(child, nil)
	return result
}

// AppendChildWithError adds a node to the end of the list of children of this node.
func (n *Node) AppendChildWithError(child *Node) (*Node, error) {
	return n.InsertBeforeWithError(child, nil)
}

// InsertBefore inserts a node before a reference child node.
// If refChild is nil, the node is appended to the end.
// For error-returning version, use InsertBeforeWithError.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	result, _ := n.InsertBeforeWithError(newChild, refChild)
	return result
}

// InsertBeforeWithError inserts a node before a reference child node.
// Returns an error if the operation violates tree hierarchy constraints.
// https://dom.spec.whatwg.org/#concept-node-pre-insert
func (n *Node) InsertBeforeWithError(newChild, refChild *Node) (*Node, error) {
	if newChild == nil {
		return nil, ErrNotFound("The node to be inserted is null.")
	}
	if n.nodeType != ElementNode && n.nodeType != DocumentNode && n.nodeType != DocumentFragmentNode {
		return nil, ErrHierarchyRequest("The operation would yield an incorrect node tree.")
	}
	if n.isInclusiveDescendantOf(newChild) {
		return nil, ErrHierarchyRequest("The new child element contains the parent.")
	}
	if refChild != nil && refChild.parentNode != n {
		return nil, ErrNotFound("The node before which the new node is to be inserted is not a child of this node.")
	}
	if newChild.nodeType == DocumentNode {
		return nil, ErrHierarchyRequest("Documents cannot be inserted.")
	}
	if newChild.nodeType == TextNode && n.nodeType == DocumentNode {
		return nil, ErrHierarchyRequest("Cannot insert Text node as a direct child of Document.")
	}
	return n.insertBefore(newChild, refChild), nil
}

// insertBefore performs an unchecked insertion, moving fragment children as a batch.
func (n *Node) insertBefore(newChild, refChild *Node) *Node {
	if refChild == newChild {
		refChild = newChild.nextSibling
	}

	var added []*Node
	if newChild.nodeType == DocumentFragmentNode {
		added = newChild.ChildNodes()
		for _, c := range added {
			newChild.unlink(c)
		}
	} else {
		if newChild.parentNode != nil {
			newChild.parentNode.removeChild(newChild)
		}
		added = []*Node{newChild}
	}
	if len(added) == 0 {
		return newChild
	}

	ranges := n.documentOrNil().liveRanges()
	for _, c := range added {
		n.link(c, refChild)
		ranges.inserted(n, indexOfChild(n, c))
	}

	notifyChildListMutation(n, added, nil, added[0].prevSibling, added[len(added)-1].nextSibling)
	return newChild
}

// link splices child into the sibling list before refChild without notifications.
func (n *Node) link(child, refChild *Node) {
	if n.ownerDoc != nil && child.ownerDoc != n.ownerDoc {
		adoptNode(child, n.ownerDoc)
	}
	child.parentNode = n
	if refChild == nil {
		child.prevSibling = n.lastChild
		child.nextSibling = nil
		if n.lastChild != nil {
			n.lastChild.nextSibling = child
		} else {
			n.firstChild = child
		}
		n.lastChild = child
		return
	}
	child.nextSibling = refChild
	child.prevSibling = refChild.prevSibling
	if refChild.prevSibling != nil {
		refChild.prevSibling.nextSibling = child
	} else {
		n.firstChild = child
	}
	refChild.prevSibling = child
}

// unlink detaches child from the sibling list without notifications.
func (n *Node) unlink(child *Node) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}
	child.parentNode = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

// adoptNode recursively sets the ownerDocument for a node and its descendants.
func adoptNode(node *Node, doc *Document) {
	node.ownerDoc = doc
	for c := node.firstChild; c != nil; c = c.nextSibling {
		adoptNode(c, doc)
	}
}

// RemoveChild removes a child node from this node.
// For error-returning version, use RemoveChildWithError.
func (n *Node) RemoveChild(child *Node) *Node {
	result, _ := n.RemoveChildWithError(child)
	return result
}

// RemoveChildWithError removes a child node from this node.
// Returns an error if the child is not a child of this node.
func (n *Node) RemoveChildWithError(child *Node) (*Node, error) {
	if child == nil || child.parentNode != n {
		return nil, ErrNotFound("The node to be removed is not a child of this node.")
	}
	n.removeChild(child)
	return child, nil
}

func (n *Node) removeChild(child *Node) {
	index := indexOfChild(n, child)
	prev, next := child.prevSibling, child.nextSibling
	n.unlink(child)
	n.documentOrNil().liveRanges().removed(n, child, index)
	notifyChildListMutation(n, nil, []*Node{child}, prev, next)
}

// Remove detaches the node from its parent, if any.
func (n *Node) Remove() {
	if n.parentNode != nil {
		n.parentNode.removeChild(n)
	}
}

// ReplaceChild replaces oldChild with newChild and returns oldChild.
func (n *Node) ReplaceChild(newChild, oldChild *Node) *Node {
	if oldChild == nil || oldChild.parentNode != n {
		return nil
	}
	if newChild == oldChild {
		return oldChild
	}
	ref := oldChild.nextSibling
	if ref == newChild {
		ref = newChild.nextSibling
	}
	n.removeChild(oldChild)
	n.insertBefore(newChild, ref)
	return oldChild
}

// documentOrNil returns the document owning this node (or the node itself if it is one).
func (n *Node) documentOrNil() *Document {
	if n.nodeType == DocumentNode {
		return (*Document)(n)
	}
	return n.ownerDoc
}

// CloneNode creates a copy of this node.
// If deep is true, all descendants are also cloned.
func (n *Node) CloneNode(deep bool) *Node {
	clone := n.shallowClone()
	if deep {
		for c := n.firstChild; c != nil; c = c.nextSibling {
			clone.link(c.CloneNode(true), nil)
		}
	}
	return clone
}

func (n *Node) shallowClone() *Node {
	clone := newNode(n.nodeType, n.nodeName, n.ownerDoc)
	clone.data = n.data
	if n.elementData != nil {
		clone.elementData = &elementData{
			localName: n.elementData.localName,
			attrs:     append([]Attr(nil), n.elementData.attrs...),
		}
	}
	if n.nodeType == DocumentNode {
		clone.documentData = newDocumentData()
		clone.ownerDoc = nil
	}
	return clone
}

// IsEqualNode returns true if this node is equal to the given node: same type,
// same type-specific properties and pairwise-equal children.
func (n *Node) IsEqualNode(other *Node) bool {
	if other == nil {
		return false
	}
	if n == other {
		return true
	}
	if n.nodeType != other.nodeType {
		return false
	}
	switch n.nodeType {
	case ElementNode:
		if !(*Element)(n).attributesEqual((*Element)(other)) {
			return false
		}
	case TextNode, CommentNode:
		if n.data != other.data {
			return false
		}
	}
	a, b := n.firstChild, other.firstChild
	for a != nil && b != nil {
		if !a.IsEqualNode(b) {
			return false
		}
		a, b = a.nextSibling, b.nextSibling
	}
	return a == nil && b == nil
}

// Contains returns true if other is this node or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	return other != nil && other.isInclusiveDescendantOf(n)
}

// isInclusiveDescendantOf returns true if n is node or one of its descendants.
func (n *Node) isInclusiveDescendantOf(node *Node) bool {
	if node == nil {
		return false
	}
	for current := n; current != nil; current = current.parentNode {
		if current == node {
			return true
		}
	}
	return false
}

// Root returns the root of the tree containing this node.
func (n *Node) Root() *Node {
	root := n
	for root.parentNode != nil {
		root = root.parentNode
	}
	return root
}

// Normalize removes empty Text descendants and merges adjacent Text siblings,
// moving live range boundary points onto the surviving node.
// https://dom.spec.whatwg.org/#dom-node-normalize
func (n *Node) Normalize() {
	var texts []*Node
	walkNodes(n, func(d *Node) bool {
		if d != n && d.nodeType == TextNode {
			texts = append(texts, d)
		}
		return true
	})

	ranges := n.documentOrNil().liveRanges()
	for _, t := range texts {
		if t.parentNode == nil {
			continue // merged into a previous sibling already
		}
		if len(t.data) == 0 {
			t.Remove()
			continue
		}
		if t.prevSibling != nil && t.prevSibling.nodeType == TextNode {
			continue
		}
		var merged []*Node
		var sb strings.Builder
		for c := t.nextSibling; c != nil && c.nodeType == TextNode; c = c.nextSibling {
			merged = append(merged, c)
			sb.WriteString(c.data)
		}
		if len(merged) == 0 {
			continue
		}
		length := len(t.data)
		t.ReplaceData(length, 0, sb.String())
		for _, c := range merged {
			ranges.mergedText(t, c, length)
			length += len(c.data)
		}
		for _, c := range merged {
			c.Remove()
		}
	}
}

// walkNodes visits node and its descendants in tree order. Returning false
// from fn skips the visited node's subtree.
func walkNodes(node *Node, fn func(*Node) bool) {
	if !fn(node) {
		return
	}
	for c := node.firstChild; c != nil; {
		next := c.nextSibling
		walkNodes(c, fn)
		c = next
	}
}

// indexOfChild returns the index of a child within its parent.
func indexOfChild(parent, child *Node) int {
	index := 0
	for c := parent.firstChild; c != nil; c = c.nextSibling {
		if c == child {
			return index
		}
		index++
	}
	return -1
}

// nodeLength returns the length of a node for range purposes.
func nodeLength(node *Node) int {
	switch node.nodeType {
	case TextNode, CommentNode:
		return len(node.data)
	default:
		return node.ChildCount()
	}
}
