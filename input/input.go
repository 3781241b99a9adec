// Package input intercepts key, composition and paste events before the
// host applies its default editing behaviour, and replaces the cases that
// would break the tree invariants with explicit transactions.
package input

import (
	"log/slog"
	"strings"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/is"
)

const zwsp = "\u200b"

// Transactions runs an edit as one undo step.
type Transactions interface {
	Run(fn func() error) error
}

// Tokens lets focused tokens consume Enter and Escape.
type Tokens interface {
	HandleEnter() bool
	HandleEsc() bool
}

// Options configures a Normalizer.
type Options struct {
	Transactions Transactions
	Tokens       Tokens
	// Scheduler runs caret fixups after the host's default handling. When
	// nil they run before the handler returns.
	Scheduler dom.Scheduler
	Logger    *slog.Logger
}

// Normalizer handles input events for one editor root.
type Normalizer struct {
	doc       *dom.Document
	root      *dom.Element
	tx        Transactions
	tokens    Tokens
	scheduler dom.Scheduler
	logger    *slog.Logger
}

// New creates an input normalizer for root.
func New(doc *dom.Document, root *dom.Element, opts Options) *Normalizer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		doc:       doc,
		root:      root,
		tx:        opts.Transactions,
		tokens:    opts.Tokens,
		scheduler: opts.Scheduler,
		logger:    logger.With("component", "editor:input-normalizer"),
	}
}

// KeyDown handles a keydown event.
func (n *Normalizer) KeyDown(e *KeyEvent) {
	if e.DefaultPrevented() {
		n.logger.Debug("not normalizing, event already cancelled", "key", e.Key)
		return
	}
	if n.outside(e.Target) {
		return
	}
	sel := n.doc.GetSelection()
	r := sel.Range()
	if r == nil {
		return
	}
	// selections spanning containers are left to the default behaviour
	if r.StartContainer() != r.EndContainer() {
		return
	}

	node := n.nodeForRange(r)
	switch {
	case is.OverlayReference(node):
		n.onReference(e, node.AsElement())
	case is.EmptyParagraph(node):
		n.onEmptyParagraph(e, node.AsElement())
	default:
		n.onGeneric(e, r, node)
	}

	n.later(n.fixCaretInBreak)
}

// KeyPress handles a keypress event. Only anchor and zero width space
// edges are normalized here.
func (n *Normalizer) KeyPress(e *KeyEvent) {
	if n.outside(e.Target) {
		return
	}
	r := n.doc.GetSelection().Range()
	if r == nil {
		return
	}
	node := n.nodeForRange(r)
	if is.OverlayReference(node) || is.EmptyParagraph(node) {
		return
	}
	n.onEdges(e, r)
}

// Paste handles a paste event before the content is inserted.
func (n *Normalizer) Paste(e *KeyEvent) {
	n.KeyPress(e)
}

// CompositionStart handles the start of an IME composition. Composing on a
// reference placeholder first moves the caret into a new paragraph after it.
func (n *Normalizer) CompositionStart(e *KeyEvent) {
	r := n.doc.GetSelection().Range()
	if r == nil {
		return
	}
	node := n.nodeForRange(r)
	switch {
	case is.OverlayReference(node):
		ref := node.AsElement()
		n.run(func() error {
			p := newline(n.doc)
			ref.ParentNode().InsertBefore(p.AsNode(), ref.NextSibling())
			n.caret(p.AsNode(), false, false)
			return nil
		})
	case is.EmptyParagraph(node):
	default:
		n.onEdges(e, r)
	}
}

func (n *Normalizer) outside(target *dom.Node) bool {
	return target != nil && !n.root.Contains(target)
}

// nodeForRange returns the node the caret lies on. A caret placed on the
// root between blocks is moved into the adjacent block.
func (n *Normalizer) nodeForRange(r *dom.Range) *dom.Node {
	node := r.StartContainer()
	if node != n.root.AsNode() || !r.Collapsed() || !node.HasChildNodes() {
		return node
	}
	ctnr := node.ChildAt(r.StartOffset())
	offset := 0
	if ctnr == nil {
		ctnr = node.LastChild()
		offset = ctnr.Length()
	}
	r.SetStart(ctnr, offset)
	r.SetEnd(ctnr, offset)
	return ctnr
}

// topmostSplittable walks up from node to the element that Enter and the
// delete keys operate on: a root child, a list item or a blockquote child.
func (n *Normalizer) topmostSplittable(node *dom.Node) *dom.Node {
	for {
		parent := node.ParentNode()
		if parent == nil {
			return nil
		}
		if parent == n.root.AsNode() {
			return node
		}
		if is.ListItem(node) && is.List(parent) {
			return node
		}
		if is.Blockquote(parent) {
			return node
		}
		node = parent
	}
}

// topmostMatching returns the outermost inclusive ancestor of node below
// the root that satisfies match.
func (n *Normalizer) topmostMatching(node *dom.Node, match func(*dom.Element) bool) *dom.Element {
	var found *dom.Element
	for {
		if el := node.AsElement(); el != nil && match(el) {
			found = el
		}
		parent := node.ParentNode()
		if parent == nil || parent == n.root.AsNode() {
			return found
		}
		node = parent
	}
}

func (n *Normalizer) onReference(e *KeyEvent, ref *dom.Element) {
	parent := ref.ParentNode()
	switch e.Key {
	case Enter:
		if e.command() {
			return
		}
		n.run(func() error {
			p := newline(n.doc)
			if e.Shift {
				parent.InsertBefore(p.AsNode(), ref.AsNode())
			} else {
				parent.InsertBefore(p.AsNode(), ref.NextSibling())
			}
			n.caret(p.AsNode(), false, false)
			return nil
		})
		e.PreventDefault()

	case Left, Up:
		if e.modified() || ref.PreviousElementSibling() != nil {
			return
		}
		n.run(func() error {
			p := newline(n.doc)
			parent.InsertBefore(p.AsNode(), ref.AsNode())
			n.caret(p.AsNode(), false, false)
			return nil
		})
		e.PreventDefault()

	case Right, Down:
		if e.modified() || ref.NextElementSibling() != nil {
			return
		}
		n.run(func() error {
			p := newline(n.doc)
			parent.AppendChild(p.AsNode())
			n.caret(p.AsNode(), false, false)
			return nil
		})
		e.PreventDefault()

	case Backspace, Delete:
		if e.modified() {
			return
		}
		n.run(func() error {
			prev, next := ref.PreviousElementSibling(), ref.NextElementSibling()
			switch {
			case prev != nil && (e.Key == Backspace || next == nil):
				n.caret(prev.AsNode(), false, true)
			case next != nil:
				n.caret(next.AsNode(), false, false)
			default:
				p := newline(n.doc)
				parent.InsertBefore(p.AsNode(), ref.AsNode())
				n.caret(p.AsNode(), false, false)
			}
			ref.Remove()
			return nil
		})
		e.PreventDefault()
	}
}

func (n *Normalizer) onEmptyParagraph(e *KeyEvent, blank *dom.Element) {
	n.logger.Debug("normalize empty paragraph")
	switch e.Key {
	case Backspace:
		if e.modified() || blank.PreviousElementSibling() == nil {
			return
		}
		n.run(func() error {
			prev := blank.PreviousElementSibling()
			for is.List(prev.AsNode()) && prev.LastElementChild() != nil {
				prev = prev.LastElementChild()
			}
			n.caret(prev.AsNode(), false, true)
			blank.Remove()
			return nil
		})
		e.PreventDefault()

	case Delete:
		if e.modified() || blank.NextElementSibling() == nil {
			return
		}
		n.run(func() error {
			n.caret(blank.NextElementSibling().AsNode(), false, false)
			blank.Remove()
			return nil
		})
		e.PreventDefault()

	case Enter:
		if e.command() || !e.Shift {
			return
		}
		e.PreventDefault()
		n.run(func() error {
			br := n.doc.CreateElement("br")
			blank.AppendChild(br.AsNode())
			n.caret(br.AsNode(), true, true)
			return nil
		})
	}
}

func (n *Normalizer) onGeneric(e *KeyEvent, r *dom.Range, node *dom.Node) {
	if !r.Collapsed() {
		return
	}
	node = n.topmostSplittable(node)
	if !is.Element(node) {
		return
	}
	pos, err := RangePosition(r, node)
	if err != nil {
		return
	}

	switch e.Key {
	case Enter:
		e.PreventDefault()
		if e.command() {
			return
		}
		if n.tokens != nil && n.tokens.HandleEnter() {
			return
		}
		switch pos {
		case End:
			n.logger.Debug("end of element")
			n.enterAtEnd(e, node.AsElement())
		case Start:
			n.logger.Debug("start of element")
			n.enterAtStart(e, r, node.AsElement())
		case Middle:
			n.logger.Debug("middle of element")
			n.enterInMiddle(e, r, node)
		}

	case Backspace:
		if pos == Start {
			e.PreventDefault()
			n.backspaceAtStart(node.AsElement())
		}

	case Delete:
		if pos == End {
			e.PreventDefault()
			n.deleteAtEnd(node.AsElement())
		}

	case Escape:
		if n.tokens != nil && n.tokens.HandleEsc() {
			e.PreventDefault()
		}
	}
}

// siblingName is the tag for a block created next to el; headings are
// followed by paragraphs.
func siblingName(el *dom.Element) string {
	if is.Heading(el.AsNode()) {
		return "p"
	}
	return el.LocalName()
}

func (n *Normalizer) sibling(el *dom.Element) *dom.Element {
	sibling := n.doc.CreateElement(siblingName(el))
	if style := el.GetAttribute("style"); style != "" {
		sibling.SetAttribute("style", style)
	}
	sibling.AppendChild(n.doc.CreateElement("br").AsNode())
	return sibling
}

func (n *Normalizer) enterAtEnd(e *KeyEvent, el *dom.Element) {
	n.run(func() error {
		if !e.Shift {
			sibling := n.sibling(el)
			el.ParentNode().InsertBefore(sibling.AsNode(), el.NextSibling())
			n.caret(sibling.AsNode(), false, false)
			return nil
		}

		target := el.AsNode()
		for is.NonVoidInline(target.LastChild()) {
			target = target.LastChild()
		}
		// after text a single br only ends the line, a second one makes
		// the new line editable
		if !is.BR(target.LastChild()) {
			target.AppendChild(n.doc.CreateElement("br").AsNode())
		}
		br := n.doc.CreateElement("br").AsNode()
		target.AppendChild(br)
		n.caret(br, true, false)
		return nil
	})
}

func (n *Normalizer) enterAtStart(e *KeyEvent, r *dom.Range, el *dom.Element) {
	node := el.AsNode()
	if is.EmptyListItem(node) {
		n.run(func() error {
			list := node.ParentNode()
			rest := n.doc.CreateElement(list.AsElement().LocalName())
			p := n.doc.CreateElement("p")
			p.AppendChild(node.FirstChild())
			for node.NextSibling() != nil {
				rest.AppendChild(node.NextSibling())
			}
			container := list.ParentNode()
			if rest.HasChildNodes() {
				container.InsertBefore(rest.AsNode(), list.NextSibling())
			}
			container.InsertBefore(p.AsNode(), list.NextSibling())
			node.Remove()
			n.caret(p.AsNode(), false, false)
			return nil
		})
		return
	}

	n.run(func() error {
		if e.Shift {
			br := n.doc.CreateElement("br").AsNode()
			if err := r.InsertNode(br); err != nil {
				return err
			}
			n.caret(br, true, true)
			return nil
		}
		el.ParentNode().InsertBefore(n.sibling(el).AsNode(), node)
		return nil
	})
}

func (n *Normalizer) enterInMiddle(e *KeyEvent, r *dom.Range, node *dom.Node) {
	leaf := LeafRange(r)
	defer leaf.Detach()
	n.run(func() error {
		if e.Shift {
			br := n.doc.CreateElement("br").AsNode()
			if err := leaf.InsertNode(br); err != nil {
				return err
			}
			n.caret(br, true, true)
			return nil
		}
		left, right, err := SplitAt(node, leaf)
		if err != nil {
			return err
		}
		parent := node.ParentNode()
		parent.InsertBefore(left, node)
		parent.InsertBefore(right, node)
		n.caret(node.PreviousSibling(), false, false)
		node.Remove()
		return nil
	})
}

func (n *Normalizer) backspaceAtStart(el *dom.Element) {
	node := el.AsNode()
	if is.ListItem(node) {
		list := node.ParentNode()
		before := list.PreviousSibling()

		// first item, right after a list of the same kind
		if node.PreviousSibling() == nil && before != nil && before.NodeName() == list.NodeName() {
			n.run(func() error {
				for list.FirstChild() != nil {
					before.AppendChild(list.FirstChild())
				}
				list.Remove()
				n.caret(node, false, false)
				return nil
			})
			return
		}

		n.run(func() error {
			rest := n.doc.CreateElement(list.AsElement().LocalName())
			for node.NextSibling() != nil {
				rest.AppendChild(node.NextSibling())
			}
			p := n.doc.CreateElement("p")
			for node.FirstChild() != nil {
				p.AppendChild(node.FirstChild())
			}
			node.Remove()
			container := list.ParentNode()
			container.InsertBefore(rest.AsNode(), list.NextSibling())
			container.InsertBefore(p.AsNode(), list.NextSibling())
			n.caret(p.AsNode(), false, false)
			return nil
		})
		return
	}

	prev := node.PreviousSibling()
	first := node.FirstChild()
	switch {
	case !is.Element(prev):
	case is.EmptyParagraph(prev):
		n.run(func() error {
			prev.Remove()
			return nil
		})
	case is.OverlayReference(prev):
		n.run(func() error {
			n.caret(prev, false, false)
			return nil
		})
	case is.List(prev) && prev.LastChild() != nil:
		n.run(func() error {
			item := prev.LastChild()
			for node.FirstChild() != nil {
				item.AppendChild(node.FirstChild())
			}
			node.Remove()
			if first != nil {
				n.caret(first, true, false)
			}
			return nil
		})
	default:
		n.run(func() error {
			for node.FirstChild() != nil {
				prev.AppendChild(node.FirstChild())
			}
			if first != nil {
				n.caret(first, true, false)
			}
			node.Remove()
			return nil
		})
	}
}

func (n *Normalizer) deleteAtEnd(el *dom.Element) {
	node := el.AsNode()
	next := node.NextSibling()
	last := node.LastChild()
	switch {
	case !is.Element(next):
	case is.EmptyParagraph(next):
		n.run(func() error {
			next.Remove()
			return nil
		})
	default:
		n.run(func() error {
			for next.FirstChild() != nil {
				node.AppendChild(next.FirstChild())
			}
			if last != nil {
				n.caret(last, true, true)
			}
			next.Remove()
			return nil
		})
	}
}

// onEdges repositions a collapsed caret sitting on the edge of an anchor
// or inside a zero width space marker span.
func (n *Normalizer) onEdges(e *KeyEvent, r *dom.Range) {
	if !r.Collapsed() {
		return
	}
	if a := n.topmostMatching(r.StartContainer(), func(el *dom.Element) bool { return el.Is("a") }); a != nil {
		n.onAnchor(r, a)
	} else if span := n.topmostMatching(r.StartContainer(), func(el *dom.Element) bool { return el.HasClass("zwsp") }); span != nil {
		n.onZwspSpan(e, r, span)
	}
}

// onAnchor puts a zero width space just outside an anchor the caret is on
// the edge of and selects it, so typed text lands outside the anchor.
func (n *Normalizer) onAnchor(r *dom.Range, a *dom.Element) {
	pos, err := RangePosition(r, a.AsNode())
	if err != nil || (pos != End && pos != Start) {
		return
	}
	n.run(func() error {
		space := n.doc.CreateTextNode(zwsp)
		if pos == End {
			a.ParentNode().InsertBefore(space, a.NextSibling())
		} else {
			a.ParentNode().InsertBefore(space, a.AsNode())
		}
		n.selectContents(space)
		return nil
	})
}

// onZwspSpan unwraps a .zwsp marker span. For Space the zero width content
// is replaced by a literal space; otherwise it is selected and left for the
// default insertion to overwrite.
func (n *Normalizer) onZwspSpan(e *KeyEvent, r *dom.Range, span *dom.Element) {
	n.logger.Debug("normalizing zero width space span")
	if e.Key == Space {
		e.PreventDefault()
	}
	n.run(func() error {
		parent := span.ParentNode()
		content := span.FirstChild()
		for span.FirstChild() != nil {
			parent.InsertBefore(span.FirstChild(), span.AsNode())
		}
		span.Remove()
		if content == nil {
			return nil
		}

		if e.Key != Space {
			n.selectAround(content)
			return nil
		}
		space := n.doc.CreateTextNode(" ")
		if err := r.DeleteContents(); err != nil {
			return err
		}
		if err := r.InsertNode(space); err != nil {
			return err
		}
		n.caret(space, false, true)
		if is.Text(content) && strings.Trim(content.NodeValue(), zwsp) == "" {
			content.Remove()
		}
		return nil
	})
}

// fixCaretInBreak moves a caret that ended up inside a br to just after it.
func (n *Normalizer) fixCaretInBreak() {
	r := n.doc.GetSelection().Range()
	if r == nil || !is.BR(r.StartContainer()) {
		return
	}
	n.caret(r.StartContainer(), true, true)
}

func (n *Normalizer) later(fn func()) {
	if n.scheduler == nil {
		fn()
		return
	}
	n.scheduler.QueueMicrotask(fn)
}

func (n *Normalizer) run(fn func() error) {
	if n.tx == nil {
		if err := fn(); err != nil {
			n.logger.Debug("edit failed", "err", err)
		}
		return
	}
	if err := n.tx.Run(fn); err != nil {
		n.logger.Debug("transaction failed", "err", err)
	}
}

// caret collapses the selection on node: around selects the node itself
// rather than its contents, toEnd picks the end over the start.
func (n *Normalizer) caret(node *dom.Node, around, toEnd bool) {
	r := n.doc.CreateRange()
	if around {
		r.SelectNode(node)
	} else {
		r.SelectNodeContents(node)
	}
	r.Collapse(!toEnd)
	n.setRange(r)
}

func (n *Normalizer) selectContents(node *dom.Node) {
	r := n.doc.CreateRange()
	r.SelectNodeContents(node)
	n.setRange(r)
}

func (n *Normalizer) selectAround(node *dom.Node) {
	r := n.doc.CreateRange()
	r.SelectNode(node)
	n.setRange(r)
}

func (n *Normalizer) setRange(r *dom.Range) {
	sel := n.doc.GetSelection()
	sel.RemoveAllRanges()
	sel.AddRange(r)
}

func newline(doc *dom.Document) *dom.Element {
	p := doc.CreateElement("p")
	p.AppendChild(doc.CreateElement("br").AsNode())
	return p
}
