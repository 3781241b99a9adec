package dom

// Selection is the document's single-range selection. The range it holds is
// live, so it follows tree mutations like any other range.
type Selection struct {
	doc       *Document
	r         *Range
	listeners []func()
}

func newSelection(doc *Document) *Selection {
	return &Selection{doc: doc}
}

// OnChange registers fn to run synchronously whenever the selection is set
// through one of the Selection methods.
func (s *Selection) OnChange(fn func()) {
	s.listeners = append(s.listeners, fn)
}

func (s *Selection) changed() {
	for _, fn := range s.listeners {
		fn()
	}
}

// RangeCount returns 1 when the selection holds a range and 0 otherwise.
func (s *Selection) RangeCount() int {
	if s.r == nil {
		return 0
	}
	return 1
}

// GetRangeAt returns the selection's range. Only index 0 is valid.
func (s *Selection) GetRangeAt(index int) (*Range, error) {
	if index != 0 || s.r == nil {
		return nil, ErrIndexSize("The index is not in the allowed range.")
	}
	return s.r, nil
}

// Range returns the selection's range, or nil when nothing is selected.
func (s *Selection) Range() *Range {
	return s.r
}

// AddRange makes r the selection's range, replacing any previous one.
func (s *Selection) AddRange(r *Range) {
	if r == nil {
		return
	}
	s.r = r
	s.changed()
}

// RemoveAllRanges clears the selection.
func (s *Selection) RemoveAllRanges() {
	if s.r == nil {
		return
	}
	s.r = nil
	s.changed()
}

// Collapse places a collapsed selection at (node, offset).
func (s *Selection) Collapse(node *Node, offset int) error {
	r := NewRange(s.doc)
	if err := r.SetStart(node, offset); err != nil {
		return err
	}
	r.Collapse(true)
	s.r = r
	s.changed()
	return nil
}

// SetBaseAndExtent selects the content between two boundary points, in
// whichever order they appear in the tree.
func (s *Selection) SetBaseAndExtent(anchor *Node, anchorOffset int, focus *Node, focusOffset int) error {
	r := NewRange(s.doc)
	if err := r.SetStart(anchor, anchorOffset); err != nil {
		return err
	}
	if err := r.SetEnd(focus, focusOffset); err != nil {
		return err
	}
	if r.Collapsed() && (anchor != focus || anchorOffset != focusOffset) {
		r.SetStart(focus, focusOffset)
		r.SetEnd(anchor, anchorOffset)
	}
	s.r = r
	s.changed()
	return nil
}

// SelectAllChildren selects the contents of node.
func (s *Selection) SelectAllChildren(node *Node) error {
	r := NewRange(s.doc)
	if err := r.SelectNodeContents(node); err != nil {
		return err
	}
	s.r = r
	s.changed()
	return nil
}

// IsCollapsed returns true if there is no selection or its range is collapsed.
func (s *Selection) IsCollapsed() bool {
	return s.r == nil || s.r.Collapsed()
}

// AnchorNode returns the start container of the selection, or nil.
func (s *Selection) AnchorNode() *Node {
	if s.r == nil {
		return nil
	}
	return s.r.startContainer
}

// AnchorOffset returns the start offset of the selection.
func (s *Selection) AnchorOffset() int {
	if s.r == nil {
		return 0
	}
	return s.r.startOffset
}

// FocusNode returns the end container of the selection, or nil.
func (s *Selection) FocusNode() *Node {
	if s.r == nil {
		return nil
	}
	return s.r.endContainer
}

// FocusOffset returns the end offset of the selection.
func (s *Selection) FocusOffset() int {
	if s.r == nil {
		return 0
	}
	return s.r.endOffset
}
