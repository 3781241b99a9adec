// Package position encodes selection endpoints as child-index paths so a
// caret can be restored onto a tree rebuilt by undo or redo.
package position

import (
	"fmt"

	"github.com/chrisuehlinger/zeditor/dom"
)

// Path is the list of child indices leading from a reference node to a descendant.
type Path []int

// Frozen is a content-independent snapshot of a range. The zero value has
// nil paths and means "no position".
type Frozen struct {
	StartPath   Path
	StartOffset int
	EndPath     Path
	EndOffset   int
}

// IsZero reports whether f carries no position.
func (f Frozen) IsZero() bool {
	return f.StartPath == nil && f.EndPath == nil
}

// Collapsed reports whether both endpoints are the same.
func (f Frozen) Collapsed() bool {
	return f.StartOffset == f.EndOffset && equal(f.StartPath, f.EndPath)
}

func equal(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Freeze records r relative to ref. A nil range or a range outside ref
// yields the zero Frozen.
func Freeze(r *dom.Range, ref *dom.Node) Frozen {
	if r == nil {
		return Frozen{}
	}
	start, err := PathTo(ref, r.StartContainer())
	if err != nil {
		return Frozen{}
	}
	end, err := PathTo(ref, r.EndContainer())
	if err != nil {
		return Frozen{}
	}
	return Frozen{
		StartPath:   start,
		StartOffset: r.StartOffset(),
		EndPath:     end,
		EndOffset:   r.EndOffset(),
	}
}

// Thaw resolves f against ref and returns a new live range. It fails when the
// tree under ref does not have the recorded shape.
func (f Frozen) Thaw(ref *dom.Node) (*dom.Range, error) {
	if f.IsZero() {
		return nil, fmt.Errorf("thaw: empty position")
	}
	start, err := Resolve(ref, f.StartPath)
	if err != nil {
		return nil, fmt.Errorf("thaw start: %w", err)
	}
	end, err := Resolve(ref, f.EndPath)
	if err != nil {
		return nil, fmt.Errorf("thaw end: %w", err)
	}
	doc := ref.OwnerDocument()
	if doc == nil {
		return nil, fmt.Errorf("thaw: reference node has no document")
	}
	r := doc.CreateRange()
	if err := r.SetStart(start, f.StartOffset); err != nil {
		return nil, fmt.Errorf("thaw start: %w", err)
	}
	if err := r.SetEnd(end, f.EndOffset); err != nil {
		return nil, fmt.Errorf("thaw end: %w", err)
	}
	return r, nil
}

// PathTo returns the child indices leading from ref down to node.
func PathTo(ref, node *dom.Node) (Path, error) {
	path := Path{}
	for n := node; n != ref; n = n.ParentNode() {
		if n == nil {
			return nil, dom.ErrNotFound("node is not a descendant of the reference node")
		}
		path = append(path, n.Index())
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Resolve walks path down from ref.
func Resolve(ref *dom.Node, path Path) (*dom.Node, error) {
	n := ref
	for depth, index := range path {
		child := n.ChildAt(index)
		if child == nil {
			return nil, dom.ErrNotFound(fmt.Sprintf("no child %d at depth %d", index, depth))
		}
		n = child
	}
	return n, nil
}
