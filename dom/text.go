package dom

// SplitText splits a Text node at offset, keeping the first part in this node
// and inserting the remainder as a new following sibling, which is returned.
// https://dom.spec.whatwg.org/#concept-text-split
func (n *Node) SplitText(offset int) (*Node, error) {
	if n.nodeType != TextNode {
		return nil, ErrInvalidNodeType("SplitText on a non-Text node.")
	}
	if offset < 0 || offset > len(n.data) {
		return nil, ErrIndexSize("The offset is out of range.")
	}
	newData := n.data[offset:]
	tail := n.ownerDoc.CreateTextNode(newData)

	parent := n.parentNode
	if parent != nil {
		parent.insertBefore(tail, n.nextSibling)
		ranges := n.ownerDoc.liveRanges()
		ranges.splitText(n, tail, offset)
	}
	n.ReplaceData(offset, len(newData), "")
	return tail, nil
}
