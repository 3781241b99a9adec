package editor

import (
	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/grapheme"
	"github.com/chrisuehlinger/zeditor/is"
)

// The default editing actions of the host surface. They run outside any
// transaction: the transaction manager records them from the mutations it
// observes, as it does for a browser's own edits.

// deleteSelection removes the selected content and reports whether there
// was any.
func (e *Editor) deleteSelection() bool {
	r := e.doc.GetSelection().Range()
	if r == nil || r.Collapsed() {
		return false
	}
	if err := r.DeleteContents(); err != nil {
		e.logger.Debug("deleting selection failed", "err", err)
	}
	return true
}

// insertText inserts s at the caret, replacing the selection, and leaves
// the caret after it.
func (e *Editor) insertText(s string) {
	sel := e.doc.GetSelection()
	if sel.Range() == nil || s == "" {
		return
	}
	e.deleteSelection()
	r := sel.Range()
	container, offset := r.StartContainer(), r.StartOffset()

	if is.Text(container) {
		if err := container.ReplaceData(offset, 0, s); err != nil {
			e.logger.Debug("inserting text failed", "err", err)
			return
		}
		sel.Collapse(container, offset+len(s))
		return
	}
	if prev := container.ChildAt(offset - 1); is.Text(prev) {
		end := len(prev.NodeValue())
		prev.ReplaceData(end, 0, s)
		sel.Collapse(prev, end+len(s))
		return
	}
	text := e.doc.CreateTextNode(s)
	e.insertNode(text)
	sel.Collapse(text, len(s))
}

// insertNode inserts node at the caret and puts the caret after it. A
// trailing placeholder br right after the caret is dropped.
func (e *Editor) insertNode(node *dom.Node) {
	sel := e.doc.GetSelection()
	r := sel.Range()
	if r == nil {
		return
	}
	e.deleteSelection()
	container, offset := r.StartContainer(), r.StartOffset()
	if is.BR(container) {
		container, offset = container.ParentNode(), container.Index()+1
	}

	var next *dom.Node
	if is.Text(container) {
		tail, err := container.SplitText(offset)
		if err != nil {
			e.logger.Debug("splitting text failed", "err", err)
			return
		}
		container, next = container.ParentNode(), tail
	} else {
		next = container.ChildAt(offset)
	}
	container.InsertBefore(node, next)
	if is.BR(next) && next.NextSibling() == nil && !is.BR(node) {
		next.Remove()
	}

	after := e.doc.CreateRange()
	after.SelectNode(node)
	after.Collapse(false)
	sel.RemoveAllRanges()
	sel.AddRange(after)
}

// deleteBackward removes the selection or the grapheme cluster before the caret.
// Caret positions at the start of a text node are left to the input
// normalizer.
func (e *Editor) deleteBackward() {
	if e.deleteSelection() {
		return
	}
	r := e.doc.GetSelection().Range()
	if r == nil {
		return
	}
	container, offset := r.StartContainer(), r.StartOffset()
	if !is.Text(container) || offset == 0 {
		e.logger.Debug("no default backspace action", "node", container.NodeName(), "offset", offset)
		return
	}
	size := grapheme.Before(container.NodeValue(), offset)
	e.removeText(container, offset-size, size)
}

// deleteForward removes the selection or the grapheme cluster after the caret.
func (e *Editor) deleteForward() {
	if e.deleteSelection() {
		return
	}
	r := e.doc.GetSelection().Range()
	if r == nil {
		return
	}
	container, offset := r.StartContainer(), r.StartOffset()
	if !is.Text(container) || offset >= len(container.NodeValue()) {
		e.logger.Debug("no default delete action", "node", container.NodeName(), "offset", offset)
		return
	}
	size := grapheme.After(container.NodeValue(), offset)
	e.removeText(container, offset, size)
}

// removeText deletes count bytes at offset. A block left without content
// gets a br so it stays editable.
func (e *Editor) removeText(text *dom.Node, offset, count int) {
	sel := e.doc.GetSelection()
	if err := text.ReplaceData(offset, count, ""); err != nil {
		e.logger.Debug("removing text failed", "err", err)
		return
	}
	parent := text.ParentNode()
	block := is.Block(parent) || is.ListItem(parent)
	if text.NodeValue() != "" || parent.ChildCount() != 1 || !block {
		sel.Collapse(text, offset)
		return
	}
	br := e.doc.CreateElement("br").AsNode()
	parent.ReplaceChild(br, text)
	sel.Collapse(parent, 0)
}
