package dom

import "strings"

// How values for CompareBoundaryPoints.
const (
	StartToStart = 0
	StartToEnd   = 1
	EndToEnd     = 2
	EndToStart   = 3
)

// Range represents a fragment of a document that can contain nodes and parts of text nodes.
// It is a live range: its boundary points follow mutations of the tree.
type Range struct {
	startContainer *Node
	startOffset    int
	endContainer   *Node
	endOffset      int
	ownerDocument  *Document
}

// NewRange creates a new live Range with both boundary points set to the document.
func NewRange(doc *Document) *Range {
	r := &Range{
		startContainer: doc.AsNode(),
		endContainer:   doc.AsNode(),
		ownerDocument:  doc,
	}
	doc.liveRanges().add(r)
	return r
}

// StartContainer returns the node where the range starts.
func (r *Range) StartContainer() *Node {
	return r.startContainer
}

// StartOffset returns the offset within the start container.
func (r *Range) StartOffset() int {
	return r.startOffset
}

// EndContainer returns the node where the range ends.
func (r *Range) EndContainer() *Node {
	return r.endContainer
}

// EndOffset returns the offset within the end container.
func (r *Range) EndOffset() int {
	return r.endOffset
}

// Collapsed returns true if start and end are the same point.
func (r *Range) Collapsed() bool {
	return r.startContainer == r.endContainer && r.startOffset == r.endOffset
}

// CommonAncestorContainer returns the deepest node that contains both boundary points.
func (r *Range) CommonAncestorContainer() *Node {
	startAncestors := make(map[*Node]bool)
	for node := r.startContainer; node != nil; node = node.parentNode {
		startAncestors[node] = true
	}
	for node := r.endContainer; node != nil; node = node.parentNode {
		if startAncestors[node] {
			return node
		}
	}
	return nil
}

// SetStart sets the start boundary point of the range.
func (r *Range) SetStart(node *Node, offset int) error {
	if node == nil {
		return ErrNotFound("Node is null")
	}
	if offset < 0 || offset > nodeLength(node) {
		return ErrIndexSize("The offset is out of range.")
	}
	r.startContainer = node
	r.startOffset = offset
	if node.Root() != r.endContainer.Root() || comparePoints(r.startContainer, r.startOffset, r.endContainer, r.endOffset) > 0 {
		r.endContainer = r.startContainer
		r.endOffset = r.startOffset
	}
	return nil
}

// SetEnd sets the end boundary point of the range.
func (r *Range) SetEnd(node *Node, offset int) error {
	if node == nil {
		return ErrNotFound("Node is null")
	}
	if offset < 0 || offset > nodeLength(node) {
		return ErrIndexSize("The offset is out of range.")
	}
	r.endContainer = node
	r.endOffset = offset
	if node.Root() != r.startContainer.Root() || comparePoints(r.startContainer, r.startOffset, r.endContainer, r.endOffset) > 0 {
		r.startContainer = r.endContainer
		r.startOffset = r.endOffset
	}
	return nil
}

// SetStartBefore sets the start to immediately before the given node.
func (r *Range) SetStartBefore(node *Node) error {
	if node == nil || node.parentNode == nil {
		return ErrInvalidNodeType("The node has no parent.")
	}
	return r.SetStart(node.parentNode, indexOfChild(node.parentNode, node))
}

// SetStartAfter sets the start to immediately after the given node.
func (r *Range) SetStartAfter(node *Node) error {
	if node == nil || node.parentNode == nil {
		return ErrInvalidNodeType("The node has no parent.")
	}
	return r.SetStart(node.parentNode, indexOfChild(node.parentNode, node)+1)
}

// SetEndBefore sets the end to immediately before the given node.
func (r *Range) SetEndBefore(node *Node) error {
	if node == nil || node.parentNode == nil {
		return ErrInvalidNodeType("The node has no parent.")
	}
	return r.SetEnd(node.parentNode, indexOfChild(node.parentNode, node))
}

// SetEndAfter sets the end to immediately after the given node.
func (r *Range) SetEndAfter(node *Node) error {
	if node == nil || node.parentNode == nil {
		return ErrInvalidNodeType("The node has no parent.")
	}
	return r.SetEnd(node.parentNode, indexOfChild(node.parentNode, node)+1)
}

// Collapse collapses the range to one of its boundary points.
// If toStart is true, collapses to the start; otherwise to the end.
func (r *Range) Collapse(toStart bool) {
	if toStart {
		r.endContainer = r.startContainer
		r.endOffset = r.startOffset
	} else {
		r.startContainer = r.endContainer
		r.startOffset = r.endOffset
	}
}

// SelectNode sets the range to contain the given node and its contents.
func (r *Range) SelectNode(node *Node) error {
	if node == nil {
		return ErrNotFound("Node is null")
	}
	parent := node.parentNode
	if parent == nil {
		return ErrInvalidNodeType("The node has no parent.")
	}
	index := indexOfChild(parent, node)
	r.startContainer, r.startOffset = parent, index
	r.endContainer, r.endOffset = parent, index+1
	return nil
}

// SelectNodeContents sets the range to contain the contents of the given node.
func (r *Range) SelectNodeContents(node *Node) error {
	if node == nil {
		return ErrNotFound("Node is null")
	}
	r.startContainer, r.startOffset = node, 0
	r.endContainer, r.endOffset = node, nodeLength(node)
	return nil
}

// CompareBoundaryPoints compares the boundary points of two ranges.
// Returns -1, 0, or 1 depending on whether the point of r is before, equal to, or after
// the corresponding point of sourceRange.
func (r *Range) CompareBoundaryPoints(how int, sourceRange *Range) (int, error) {
	if sourceRange == nil {
		return 0, ErrNotFound("Source range is null")
	}
	if r.startContainer.Root() != sourceRange.startContainer.Root() {
		return 0, ErrWrongDocument("The two Ranges are not in the same tree.")
	}

	var thisContainer, sourceContainer *Node
	var thisOffset, sourceOffset int

	switch how {
	case StartToStart:
		thisContainer, thisOffset = r.startContainer, r.startOffset
		sourceContainer, sourceOffset = sourceRange.startContainer, sourceRange.startOffset
	case StartToEnd:
		thisContainer, thisOffset = r.endContainer, r.endOffset
		sourceContainer, sourceOffset = sourceRange.startContainer, sourceRange.startOffset
	case EndToEnd:
		thisContainer, thisOffset = r.endContainer, r.endOffset
		sourceContainer, sourceOffset = sourceRange.endContainer, sourceRange.endOffset
	case EndToStart:
		thisContainer, thisOffset = r.startContainer, r.startOffset
		sourceContainer, sourceOffset = sourceRange.endContainer, sourceRange.endOffset
	default:
		return 0, ErrNotSupported("Invalid comparison type")
	}

	return comparePoints(thisContainer, thisOffset, sourceContainer, sourceOffset), nil
}

// ComparePoints compares two boundary points in the same tree.
// Returns -1 if (nodeA, offsetA) is before (nodeB, offsetB), 0 if equal, 1 if after.
func ComparePoints(nodeA *Node, offsetA int, nodeB *Node, offsetB int) int {
	return comparePoints(nodeA, offsetA, nodeB, offsetB)
}

func comparePoints(nodeA *Node, offsetA int, nodeB *Node, offsetB int) int {
	if nodeA == nodeB {
		switch {
		case offsetA < offsetB:
			return -1
		case offsetA > offsetB:
			return 1
		}
		return 0
	}

	// nodeA is an ancestor of nodeB
	if nodeB.isInclusiveDescendantOf(nodeA) {
		child := nodeB
		for child.parentNode != nodeA {
			child = child.parentNode
		}
		if indexOfChild(nodeA, child) < offsetA {
			return 1
		}
		return -1
	}

	// nodeB is an ancestor of nodeA
	if nodeA.isInclusiveDescendantOf(nodeB) {
		child := nodeA
		for child.parentNode != nodeB {
			child = child.parentNode
		}
		if indexOfChild(nodeB, child) < offsetB {
			return -1
		}
		return 1
	}

	return compareTreeOrder(nodeA, nodeB)
}

// compareTreeOrder compares two nodes neither of which contains the other.
func compareTreeOrder(nodeA, nodeB *Node) int {
	var pathA, pathB []*Node
	for n := nodeA; n != nil; n = n.parentNode {
		pathA = append([]*Node{n}, pathA...)
	}
	for n := nodeB; n != nil; n = n.parentNode {
		pathB = append([]*Node{n}, pathB...)
	}

	for i := 1; i < len(pathA) && i < len(pathB); i++ {
		if pathA[i] != pathB[i] {
			if indexOfChild(pathA[i-1], pathA[i]) < indexOfChild(pathB[i-1], pathB[i]) {
				return -1
			}
			return 1
		}
	}
	return 0
}

// DeleteContents removes the contents of the range from the document.
func (r *Range) DeleteContents() error {
	if r.Collapsed() {
		return nil
	}
	_, err := r.ExtractContents()
	return err
}

// ExtractContents moves the contents of the range into a DocumentFragment and returns it.
// Partially contained elements are split: a shallow clone receives the extracted part.
// https://dom.spec.whatwg.org/#concept-range-extract
func (r *Range) ExtractContents() (*Node, error) {
	return r.process(true)
}

// CloneContents returns a DocumentFragment containing a copy of the range's contents.
// https://dom.spec.whatwg.org/#concept-range-clone
func (r *Range) CloneContents() (*Node, error) {
	return r.process(false)
}

// process implements both extract (when extract is true) and clone.
func (r *Range) process(extract bool) (*Node, error) {
	frag := r.ownerDocument.CreateDocumentFragment()
	if r.Collapsed() {
		return frag, nil
	}

	startNode, startOffset := r.startContainer, r.startOffset
	endNode, endOffset := r.endContainer, r.endOffset

	if startNode == endNode && isCharacterData(startNode) {
		clone := startNode.CloneNode(false)
		clone.data = startNode.data[startOffset:endOffset]
		frag.link(clone, nil)
		if extract {
			startNode.ReplaceData(startOffset, endOffset-startOffset, "")
		}
		return frag, nil
	}

	common := r.CommonAncestorContainer()
	if common == nil {
		return frag, nil
	}

	var firstPartial, lastPartial *Node
	if !endNode.isInclusiveDescendantOf(startNode) {
		for c := common.firstChild; c != nil; c = c.nextSibling {
			if r.partiallyContains(c) {
				firstPartial = c
				break
			}
		}
	}
	if !startNode.isInclusiveDescendantOf(endNode) {
		for c := common.lastChild; c != nil; c = c.prevSibling {
			if r.partiallyContains(c) {
				lastPartial = c
				break
			}
		}
	}

	var contained []*Node
	for c := common.firstChild; c != nil; c = c.nextSibling {
		if r.contains(c) {
			contained = append(contained, c)
		}
	}

	newNode, newOffset := startNode, startOffset
	if extract && !endNode.isInclusiveDescendantOf(startNode) {
		reference := startNode
		for reference.parentNode != nil && !endNode.isInclusiveDescendantOf(reference.parentNode) {
			reference = reference.parentNode
		}
		newNode, newOffset = reference.parentNode, indexOfChild(reference.parentNode, reference)+1
	}

	if firstPartial != nil {
		if isCharacterData(firstPartial) {
			clone := firstPartial.CloneNode(false)
			clone.data = startNode.data[startOffset:]
			frag.link(clone, nil)
			if extract {
				startNode.ReplaceData(startOffset, len(startNode.data)-startOffset, "")
			}
		} else {
			clone := firstPartial.CloneNode(false)
			frag.link(clone, nil)
			sub := r.ownerDocument.subrange(startNode, startOffset, firstPartial, nodeLength(firstPartial))
			subfrag, err := sub.process(extract)
			sub.Detach()
			if err != nil {
				return nil, err
			}
			clone.insertBefore(subfrag, nil)
		}
	}

	for _, c := range contained {
		if extract {
			frag.insertBefore(c, nil)
		} else {
			frag.link(c.CloneNode(true), nil)
		}
	}

	if lastPartial != nil {
		if isCharacterData(lastPartial) {
			clone := lastPartial.CloneNode(false)
			clone.data = endNode.data[:endOffset]
			frag.link(clone, nil)
			if extract {
				endNode.ReplaceData(0, endOffset, "")
			}
		} else {
			clone := lastPartial.CloneNode(false)
			frag.link(clone, nil)
			sub := r.ownerDocument.subrange(lastPartial, 0, endNode, endOffset)
			subfrag, err := sub.process(extract)
			sub.Detach()
			if err != nil {
				return nil, err
			}
			clone.insertBefore(subfrag, nil)
		}
	}

	if extract {
		r.startContainer, r.startOffset = newNode, newOffset
		r.endContainer, r.endOffset = newNode, newOffset
	}
	return frag, nil
}

// subrange creates a detached (non-live) helper range.
func (d *Document) subrange(startNode *Node, startOffset int, endNode *Node, endOffset int) *Range {
	return &Range{
		startContainer: startNode,
		startOffset:    startOffset,
		endContainer:   endNode,
		endOffset:      endOffset,
		ownerDocument:  d,
	}
}

// InsertNode inserts a node at the start of the range, splitting a Text start container.
// https://dom.spec.whatwg.org/#concept-range-insert
func (r *Range) InsertNode(node *Node) error {
	if node == nil {
		return ErrNotFound("Node is null")
	}
	start := r.startContainer
	if start.nodeType == CommentNode || (start.nodeType == TextNode && start.parentNode == nil) || start == node {
		return ErrHierarchyRequest("Cannot insert at this boundary point.")
	}

	var reference *Node
	if start.nodeType == TextNode {
		reference = start
	} else {
		reference = start.ChildAt(r.startOffset)
	}
	parent := start
	if reference != nil {
		parent = reference.parentNode
	}
	if start.nodeType == TextNode {
		tail, err := start.SplitText(r.startOffset)
		if err != nil {
			return err
		}
		reference = tail
	}
	if node == reference {
		reference = node.nextSibling
	}
	if node.parentNode != nil {
		node.Remove()
	}

	newOffset := nodeLength(parent)
	if reference != nil {
		newOffset = indexOfChild(parent, reference)
	}
	if node.nodeType == DocumentFragmentNode {
		newOffset += node.ChildCount()
	} else {
		newOffset++
	}

	if _, err := parent.InsertBeforeWithError(node, reference); err != nil {
		return err
	}
	if r.Collapsed() {
		r.endContainer, r.endOffset = parent, newOffset
	}
	return nil
}

// SurroundContents wraps the range contents with a new parent element.
func (r *Range) SurroundContents(newParent *Node) error {
	if newParent == nil {
		return ErrNotFound("New parent is null")
	}
	for _, n := range []*Node{r.startContainer, r.endContainer} {
		for a := n; a != nil; a = a.parentNode {
			if a.nodeType != TextNode && r.partiallyContains(a) {
				return ErrInvalidState("Range partially selects a non-Text node")
			}
		}
	}
	if newParent.nodeType == DocumentNode || newParent.nodeType == DocumentFragmentNode {
		return ErrInvalidNodeType("Invalid new parent type")
	}

	frag, err := r.ExtractContents()
	if err != nil {
		return err
	}
	for newParent.firstChild != nil {
		newParent.RemoveChild(newParent.firstChild)
	}
	if err := r.InsertNode(newParent); err != nil {
		return err
	}
	newParent.AppendChild(frag)
	return r.SelectNode(newParent)
}

// CloneRange returns a new live range with the same boundary points.
func (r *Range) CloneRange() *Range {
	c := NewRange(r.ownerDocument)
	c.startContainer, c.startOffset = r.startContainer, r.startOffset
	c.endContainer, c.endOffset = r.endContainer, r.endOffset
	return c
}

// Detach stops tracking mutations for this range.
func (r *Range) Detach() {
	r.ownerDocument.liveRanges().remove(r)
}

// String returns the text content of the range.
func (r *Range) String() string {
	if r.Collapsed() {
		return ""
	}
	if r.startContainer == r.endContainer && r.startContainer.nodeType == TextNode {
		return r.startContainer.data[r.startOffset:r.endOffset]
	}
	var sb strings.Builder
	common := r.CommonAncestorContainer()
	if common == nil {
		return ""
	}
	walkNodes(common, func(n *Node) bool {
		if n.nodeType != TextNode || !r.IntersectsNode(n) {
			return true
		}
		start, end := 0, len(n.data)
		if n == r.startContainer {
			start = r.startOffset
		}
		if n == r.endContainer {
			end = r.endOffset
		}
		if start < end {
			sb.WriteString(n.data[start:end])
		}
		return true
	})
	return sb.String()
}

// IsPointInRange returns true if the given point is within the range.
func (r *Range) IsPointInRange(node *Node, offset int) bool {
	if node == nil || node.Root() != r.startContainer.Root() {
		return false
	}
	if offset < 0 || offset > nodeLength(node) {
		return false
	}
	return comparePoints(node, offset, r.startContainer, r.startOffset) >= 0 &&
		comparePoints(node, offset, r.endContainer, r.endOffset) <= 0
}

// IntersectsNode returns true if the range intersects the given node.
func (r *Range) IntersectsNode(node *Node) bool {
	if node == nil || node.Root() != r.startContainer.Root() {
		return false
	}
	parent := node.parentNode
	if parent == nil {
		return true
	}
	offset := indexOfChild(parent, node)
	return comparePoints(parent, offset, r.endContainer, r.endOffset) < 0 &&
		comparePoints(parent, offset+1, r.startContainer, r.startOffset) > 0
}

// contains returns true if the node is fully contained in the range.
func (r *Range) contains(node *Node) bool {
	parent := node.parentNode
	if parent == nil {
		return false
	}
	index := indexOfChild(parent, node)
	return comparePoints(parent, index, r.startContainer, r.startOffset) >= 0 &&
		comparePoints(parent, index+1, r.endContainer, r.endOffset) <= 0
}

// partiallyContains returns true if node is an inclusive ancestor of exactly one boundary container.
func (r *Range) partiallyContains(node *Node) bool {
	s := r.startContainer.isInclusiveDescendantOf(node)
	e := r.endContainer.isInclusiveDescendantOf(node)
	return s != e
}

func isCharacterData(n *Node) bool {
	return n.nodeType == TextNode || n.nodeType == CommentNode
}
