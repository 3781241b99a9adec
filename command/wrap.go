package command

import "github.com/chrisuehlinger/zeditor/dom"

// Runner runs a mutation as one undoable transaction.
type Runner interface {
	Run(fn func() error) error
}

// Wrap wraps the selected content in an inline formatting element.
type Wrap struct {
	tag    string
	doc    *dom.Document
	runner Runner
}

// NewWrap creates a formatting command for tag (for example "strong").
func NewWrap(doc *dom.Document, runner Runner, tag string) *Wrap {
	return &Wrap{tag: tag, doc: doc, runner: runner}
}

// Execute wraps r, or the selection when r is nil. Collapsed ranges are left alone.
func (w *Wrap) Execute(r *dom.Range) error {
	useSelection := r == nil
	if useSelection {
		r = w.doc.GetSelection().Range()
	}
	if r == nil || r.Collapsed() {
		return nil
	}
	return w.runner.Run(func() error {
		el := w.doc.CreateElement(w.tag)
		if err := r.SurroundContents(el.AsNode()); err != nil {
			// the range cuts through elements; move its content instead
			frag, err := r.ExtractContents()
			if err != nil {
				return err
			}
			el.AppendChild(frag)
			if err := r.InsertNode(el.AsNode()); err != nil {
				return err
			}
		}
		if useSelection {
			return w.doc.GetSelection().SetBaseAndExtent(el.AsNode(), 0, el.AsNode(), el.AsNode().Length())
		}
		return r.SelectNodeContents(el.AsNode())
	})
}

// QueryEnabled reports whether there is a selection to format.
func (w *Wrap) QueryEnabled() bool {
	return w.doc.GetSelection().Range() != nil
}

// QueryState reports whether the selection starts inside a w.tag element.
func (w *Wrap) QueryState() bool {
	r := w.doc.GetSelection().Range()
	if r == nil {
		return false
	}
	for n := r.StartContainer(); n != nil; n = n.ParentNode() {
		if el := n.AsElement(); el != nil && el.Is(w.tag) {
			return true
		}
	}
	return false
}
