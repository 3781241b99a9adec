// Package history holds reversible edit records and the bounded undo/redo
// stack they are kept on.
package history

import (
	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/position"
)

// Operation is one reversible edit of the tree under root. Undo and Redo
// return the selection position the edit should leave behind.
type Operation interface {
	Undo(root *dom.Element) position.Frozen
	Redo(root *dom.Element) position.Frozen
}

// Unknown stores whole snapshots of the root's content before and after an
// edit. It is the fallback when no finer grained operation is known.
type Unknown struct {
	before, after       *dom.Element
	beforePos, afterPos position.Frozen
}

// NewUnknown creates an operation restoring before on undo and after on redo.
// The snapshots are owned by the operation and must not be mutated afterwards.
func NewUnknown(before *dom.Element, beforePos position.Frozen, after *dom.Element, afterPos position.Frozen) *Unknown {
	return &Unknown{before: before, after: after, beforePos: beforePos, afterPos: afterPos}
}

// Compose spans a's before state to b's after state, dropping the
// intermediate snapshot.
func Compose(a, b *Unknown) *Unknown {
	return &Unknown{before: a.before, beforePos: a.beforePos, after: b.after, afterPos: b.afterPos}
}

// Undo implements Operation.
func (u *Unknown) Undo(root *dom.Element) position.Frozen {
	restore(root, u.before)
	return u.beforePos
}

// Redo implements Operation.
func (u *Unknown) Redo(root *dom.Element) position.Frozen {
	restore(root, u.after)
	return u.afterPos
}

// Before returns the snapshot restored by Undo.
func (u *Unknown) Before() *dom.Element { return u.before }

// After returns the snapshot restored by Redo.
func (u *Unknown) After() *dom.Element { return u.after }

// restore replaces root's children with a fresh copy of snapshot's children.
func restore(root, snapshot *dom.Element) {
	for root.FirstChild() != nil {
		root.RemoveChild(root.FirstChild())
	}
	clone := snapshot.AsNode().CloneNode(true)
	for clone.FirstChild() != nil {
		root.AppendChild(clone.FirstChild())
	}
}

// Composite applies two operations as one: undo runs them in reverse
// order, redo in forward order. Two Unknown operations collapse into one.
type Composite struct {
	first, second Operation
	single        Operation
}

// NewComposite combines a and b.
func NewComposite(a, b Operation) *Composite {
	if c, ok := a.(*Composite); ok && c.single != nil {
		a = c.single
	}
	if c, ok := b.(*Composite); ok && c.single != nil {
		b = c.single
	}

	ua, aUnknown := a.(*Unknown)
	ub, bUnknown := b.(*Unknown)
	if aUnknown && bUnknown {
		return &Composite{single: Compose(ua, ub)}
	}
	return &Composite{first: a, second: b}
}

// Collapsed returns the single operation this composite was reduced to, or nil.
func (c *Composite) Collapsed() Operation {
	return c.single
}

// Undo implements Operation.
func (c *Composite) Undo(root *dom.Element) position.Frozen {
	if c.single != nil {
		return c.single.Undo(root)
	}
	c.second.Undo(root)
	return c.first.Undo(root)
}

// Redo implements Operation.
func (c *Composite) Redo(root *dom.Element) position.Frozen {
	if c.single != nil {
		return c.single.Redo(root)
	}
	c.first.Redo(root)
	return c.second.Redo(root)
}
