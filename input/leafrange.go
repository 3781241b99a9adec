package input

import (
	"errors"

	"github.com/chrisuehlinger/zeditor/dom"
)

// ErrNotCollapsed is returned by RangePosition for a range that selects content.
var ErrNotCollapsed = errors.New("range is not collapsed")

// Position is where a caret lies relative to the content of a node.
type Position int

const (
	Before Position = iota
	Start
	Middle
	End
	After
)

func (p Position) String() string {
	switch p {
	case Before:
		return "before"
	case Start:
		return "start"
	case Middle:
		return "middle"
	case End:
		return "end"
	case After:
		return "after"
	}
	return "unknown"
}

// emptyElement reports whether n has no children and is not a Text node.
func emptyElement(n *dom.Node) bool {
	return n.NodeType() != dom.TextNode && !n.HasChildNodes()
}

// leafPoints moves both boundary points down into the deepest nodes they
// touch, so that equal positions in the content compare equal.
func leafPoints(sc *dom.Node, so int, ec *dom.Node, eo int) (*dom.Node, int, *dom.Node, int) {
	for sc.HasChildNodes() {
		if so < sc.ChildCount() {
			next := sc.ChildAt(so)
			if emptyElement(next) {
				break
			}
			sc, so = next, 0
		} else {
			next := sc.LastChild()
			if !next.HasChildNodes() {
				break
			}
			sc, so = next, next.ChildCount()
		}
	}

	for ec.HasChildNodes() {
		if eo < ec.ChildCount() {
			next := ec.ChildAt(eo)
			if emptyElement(next) {
				break
			}
			ec, eo = next, 0
		} else {
			next := ec.LastChild()
			if emptyElement(next) {
				break
			}
			ec, eo = next, next.Length()
		}
	}

	// a childless element is addressed from its parent
	if emptyElement(sc) && sc.ParentNode() != nil {
		sc, so = sc.ParentNode(), sc.Index()
	}
	if emptyElement(ec) && ec.ParentNode() != nil {
		ec, eo = ec.ParentNode(), ec.Index()
	}
	return sc, so, ec, eo
}

// LeafRange returns a new range selecting roughly the same content as r,
// with its boundary points on leaf nodes.
func LeafRange(r *dom.Range) *dom.Range {
	sc, so, ec, eo := leafPoints(r.StartContainer(), r.StartOffset(), r.EndContainer(), r.EndOffset())
	out := r.StartContainer().OwnerDocument().CreateRange()
	out.SetStart(sc, so)
	out.SetEnd(ec, eo)
	return out
}

// RangePosition classifies a collapsed range against the content of n.
func RangePosition(r *dom.Range, n *dom.Node) (Position, error) {
	if !r.Collapsed() {
		return Before, ErrNotCollapsed
	}
	sc, so, ec, eo := leafPoints(r.StartContainer(), r.StartOffset(), r.EndContainer(), r.EndOffset())
	nsc, nso, nec, neo := leafPoints(n, 0, n, n.Length())

	switch c := dom.ComparePoints(sc, so, nsc, nso); {
	case c < 0:
		return Before, nil
	case c == 0:
		return Start, nil
	}
	switch c := dom.ComparePoints(ec, eo, nec, neo); {
	case c < 0:
		return Middle, nil
	case c == 0:
		return End, nil
	}
	return After, nil
}

// SplitAt clones node into the part before the start of r and the part
// after its end. Each half is returned as a fragment holding one clone of
// node; the tree is left unchanged.
func SplitAt(node *dom.Node, r *dom.Range) (left, right *dom.Node, err error) {
	doc := node.OwnerDocument()

	lr := doc.CreateRange()
	defer lr.Detach()
	if err := lr.SetStartBefore(node); err != nil {
		return nil, nil, err
	}
	if err := lr.SetEnd(r.StartContainer(), r.StartOffset()); err != nil {
		return nil, nil, err
	}
	if left, err = lr.CloneContents(); err != nil {
		return nil, nil, err
	}

	rr := doc.CreateRange()
	defer rr.Detach()
	if err := rr.SetEndAfter(node); err != nil {
		return nil, nil, err
	}
	if err := rr.SetStart(r.EndContainer(), r.EndOffset()); err != nil {
		return nil, nil, err
	}
	if right, err = rr.CloneContents(); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}
