package normalizer

import (
	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/is"
	"golang.org/x/net/html/atom"
)

// maxRehomeRounds bounds the misplaced root element loop. Every round lifts
// at least one element one level closer to the root.
const maxRehomeRounds = 256

// move appends the children of from to to. With a nil to, the children
// are collected in a new fragment, which is returned.
func move(from *dom.Element, to *dom.Node) *dom.Node {
	if to == nil {
		to = from.OwnerDocument().CreateDocumentFragment()
	}
	for from.FirstChild() != nil {
		to.AppendChild(from.FirstChild())
	}
	return to
}

func classlessDiv(n *dom.Node) bool {
	return is.Tag(n, atom.Div) && n.AsElement().ClassName() == ""
}

// updateEmptyEditor makes sure the editor holds at least one paragraph to
// allow input.
func (n *Normalizer) updateEmptyEditor(root, subtree *dom.Element, context string) {
	if root.FirstElementChild() != nil {
		return
	}
	doc := root.OwnerDocument()
	p := doc.CreateElement("p")
	p.AppendChild(doc.CreateElement("br").AsNode())
	root.AppendChild(p.AsNode())
}

// updateUnknownRootNodes wraps root children that are not allowed at the
// root level. Runs of such nodes share a wrapper; a br ends the run.
func (n *Normalizer) updateUnknownRootNodes(root, subtree *dom.Element, context string) {
	doc := root.OwnerDocument()
	var wrapper *dom.Element // lazily created
	for i := 0; i < root.AsNode().ChildCount(); i++ {
		node := root.AsNode().ChildAt(i)
		if is.RootElement(node) {
			wrapper = nil
			continue
		}
		if wrappers := is.Wrappers(node); wrappers != nil {
			if wrapper == nil || wrapper.LocalName() != wrappers[0].String() {
				wrapper = doc.CreateElement(wrappers[0].String())
			} else {
				i-- // the node leaves the root, look at this index again
			}
		} else if wrapper == nil {
			// classless divs become paragraphs in the next pass
			wrapper = doc.CreateElement("div")
		} else {
			i--
		}
		if wrapper.NextSibling() != node {
			root.InsertBefore(wrapper.AsNode(), node)
		}
		wrapper.AppendChild(node)
		if is.BR(node) {
			wrapper = nil
		}
	}
}

// updateRootLevelClasslessDivs turns runs of classless divs at the root
// into a paragraph, one line per div.
func (n *Normalizer) updateRootLevelClasslessDivs(root, subtree *dom.Element, context string) {
	doc := root.OwnerDocument()
	for i := 0; i < root.AsNode().ChildCount(); i++ {
		node := root.AsNode().ChildAt(i)
		if !classlessDiv(node) {
			continue
		}
		p := doc.CreateElement("p")
		for node != nil && classlessDiv(node) {
			div := node.AsElement()
			isBreak := node.ChildCount() == 1 && is.BR(node.FirstChild())
			if !isBreak {
				move(div, p.AsNode())
				if !is.BR(p.LastChild()) {
					p.AppendChild(doc.CreateElement("br").AsNode())
				}
			}
			node = node.NextSibling()
			root.RemoveChild(div.AsNode())
			if isBreak {
				if !p.HasChildNodes() {
					p.AppendChild(div.FirstChild())
				}
				break
			}
		}
		root.InsertBefore(p.AsNode(), node)
	}
}

// updateNewlineParagraphs replaces a lone newline in a paragraph with a br.
func (n *Normalizer) updateNewlineParagraphs(root, subtree *dom.Element, context string) {
	for _, p := range root.QueryAll(func(el *dom.Element) bool { return el.Is("p") }) {
		if p.AsNode().ChildCount() == 1 && is.Newline(p.FirstChild()) {
			p.RemoveChild(p.FirstChild())
			p.AppendChild(root.OwnerDocument().CreateElement("br").AsNode())
		}
	}
}

// updateMeaninglessLineBreaks removes trailing brs that follow content.
func (n *Normalizer) updateMeaninglessLineBreaks(root, subtree *dom.Element, context string) {
	for _, br := range subtree.QueryAll(func(el *dom.Element) bool { return el.Is("br") }) {
		prev := br.PreviousSibling()
		if br.NextSibling() == nil && prev != nil && !is.BR(prev) {
			br.Remove()
		}
	}
}

// updateUnwrappedElements wraps li, dd, dt and figcaption elements that
// are outside their container.
func (n *Normalizer) updateUnwrappedElements(root, subtree *dom.Element, context string) {
	els := subtree.QueryAll(func(el *dom.Element) bool { return is.Wrappers(el.AsNode()) != nil })
	for _, el := range els {
		wrappers := is.Wrappers(el.AsNode())
		parent := el.ParentNode()
		if parent == nil || is.Tag(parent, wrappers...) {
			continue
		}
		tmp := root.OwnerDocument().CreateElement(wrappers[0].String())
		parent.InsertBefore(tmp.AsNode(), el.AsNode())
		tmp.AppendChild(el.AsNode())
	}
}

// updateEmptyNonVoidInlineElements deletes inline elements without content.
// Join hints and temporary markers are kept.
func (n *Normalizer) updateEmptyNonVoidInlineElements(root, subtree *dom.Element, context string) {
	for changed := true; changed; {
		changed = false
		for _, el := range subtree.QueryAll(func(el *dom.Element) bool { return is.NonVoidInline(el.AsNode()) }) {
			first := el.FirstChild()
			empty := first == nil || (first == el.LastChild() && is.Text(first) && first.NodeValue() == "")
			if empty && el.ClassName() != "join-hint" && el.ClassName() != "tmp" {
				el.Remove()
				changed = true
			}
		}
	}
}

// updateEmptyNonVoidBlockElements deletes childless block elements and list items.
func (n *Normalizer) updateEmptyNonVoidBlockElements(root, subtree *dom.Element, context string) {
	for changed := true; changed; {
		changed = false
		els := root.QueryAll(func(el *dom.Element) bool {
			return is.NonVoidBlock(el.AsNode()) || is.ListItem(el.AsNode())
		})
		for _, el := range els {
			if !el.HasChildNodes() {
				el.Remove()
				changed = true
			}
		}
	}
}

// updateNestedFormatting unwraps formatting elements inside an element of
// the same kind, like b inside b.
func (n *Normalizer) updateNestedFormatting(root, subtree *dom.Element, context string) {
	els := subtree.QueryAll(func(el *dom.Element) bool {
		if !is.Formatting(el.AsNode()) {
			return false
		}
		parent := el.ParentElement()
		return parent != nil && parent.Closest(func(a *dom.Element) bool { return a.LocalName() == el.LocalName() }) != nil
	})
	for _, el := range els {
		parent := el.ParentNode()
		if parent == nil {
			continue
		}
		parent.ReplaceChild(move(el, nil), el.AsNode())
	}
}

// updateAdjacentFormatting joins touching formatting elements that have the
// same name and attributes.
func (n *Normalizer) updateAdjacentFormatting(root, subtree *dom.Element, context string) {
	els := subtree.QueryAll(func(el *dom.Element) bool {
		prev := el.PreviousElementSibling()
		return is.Formatting(el.AsNode()) && prev != nil && prev.LocalName() == el.LocalName()
	})
	for _, el := range els {
		previous := el.PreviousSibling().AsElement()
		if previous != nil && previous.LocalName() == el.LocalName() && el.SameAttributes(previous) {
			move(el, previous.AsNode())
			el.Remove()
		}
	}
}

// updateListWrappedParagraphs normalizes li > p into li.
func (n *Normalizer) updateListWrappedParagraphs(root, subtree *dom.Element, context string) {
	els := subtree.QueryAll(func(el *dom.Element) bool {
		return el.Is("p") && is.ListItem(el.ParentNode())
	})
	for _, el := range els {
		el.ParentNode().ReplaceChild(move(el, nil), el.AsNode())
	}
}

// updateMisplacedRootElements lifts root level elements that ended up
// nested to the root, splitting their top level ancestor around them.
// Elements inside a blockquote and lists inside lists stay where they are.
func (n *Normalizer) updateMisplacedRootElements(root, subtree *dom.Element, context string) {
	doc := root.OwnerDocument()
	rootNode := root.AsNode()
	for rounds := 0; ; rounds++ {
		if rounds == maxRehomeRounds {
			n.logger.Warn("giving up on misplaced root elements", "rounds", rounds)
			return
		}
		ready := true
		for _, el := range subtree.QueryAll(func(el *dom.Element) bool { return is.RootElement(el.AsNode()) }) {
			parent := el.ParentNode()
			if parent == rootNode {
				continue
			}
			if parent == nil {
				ready = false
				continue
			}
			if is.Blockquote(parent) || (is.List(el.AsNode()) && is.List(parent)) {
				continue
			}
			wrapper := parent
			for wrapper != nil && wrapper.ParentNode() != rootNode {
				wrapper = wrapper.ParentNode()
			}
			if wrapper == nil {
				// detached by an earlier split in this round
				ready = false
				continue
			}

			middle := doc.CreateRange()
			middle.SelectNode(el.AsNode())
			left := doc.CreateRange()
			left.SelectNode(wrapper)
			left.SetEnd(middle.StartContainer(), middle.StartOffset())
			right := doc.CreateRange()
			right.SelectNode(wrapper)
			right.SetStart(middle.EndContainer(), middle.EndOffset())

			for _, r := range []*dom.Range{left, middle, right} {
				if fragment, err := r.CloneContents(); err == nil {
					root.InsertBefore(fragment, wrapper)
				}
				r.Detach()
			}
			root.RemoveChild(wrapper)
			ready = false
		}
		if ready {
			return
		}
	}
}

// updateReferencesWithContent moves content typed into an overlay reference
// to a new paragraph after it and puts the caret at the end of that paragraph.
func (n *Normalizer) updateReferencesWithContent(root, subtree *dom.Element, context string) {
	doc := root.OwnerDocument()
	refs := root.QueryAll(func(el *dom.Element) bool { return el.HasClass("overlay-reference") })
	for _, ref := range refs {
		node := ref.AsNode()
		if node.ChildCount() == 1 && is.BR(node.FirstChild()) {
			continue
		}
		if !node.HasChildNodes() {
			ref.AppendChild(doc.CreateElement("br").AsNode())
			continue
		}

		// drop the placeholder br before moving the content out
		if is.BR(ref.LastChild()) {
			ref.RemoveChild(ref.LastChild())
		} else if is.BR(ref.FirstChild()) {
			ref.RemoveChild(ref.FirstChild())
		}

		p := doc.CreateElement("p")
		move(ref, p.AsNode())
		ref.ParentNode().InsertBefore(p.AsNode(), ref.NextSibling())
		ref.AppendChild(doc.CreateElement("br").AsNode())

		r := doc.CreateRange()
		r.SelectNodeContents(p.AsNode())
		r.Collapse(false)
		selection := doc.GetSelection()
		selection.RemoveAllRanges()
		selection.AddRange(r)
	}
}

// updateJoinHints joins paragraphs whose facing edges both carry a join
// hint, and deletes every other hint.
func (n *Normalizer) updateJoinHints(root, subtree *dom.Element, context string) {
	hints := root.QueryAll(func(el *dom.Element) bool { return el.Is("span") && el.HasClass("join-hint") })
	for _, hint := range hints {
		parent := hint.ParentNode()
		switch {
		case parent == nil:
			// orphaned by merging with another hint
		case hint.AsNode() == parent.LastChild():
			next := parent.NextSibling()
			switch {
			case next == nil:
				hint.Remove()
			case !is.Element(next), next.AsElement().HasClass("overlay-reference"):
			case is.JoinHint(next.FirstChild()):
				hint.Remove()
				next.RemoveChild(next.FirstChild())
				for next.FirstChild() != nil {
					parent.AppendChild(next.FirstChild())
				}
				next.Remove()
			default:
				hint.Remove()
			}
		case hint.AsNode() == parent.FirstChild():
			prev := parent.PreviousSibling()
			switch {
			case prev == nil:
				hint.Remove()
			case !is.Element(prev), prev.AsElement().HasClass("overlay-reference"):
			case is.JoinHint(prev.LastChild()):
				// merged from the other side
			default:
				hint.Remove()
			}
		default:
			hint.Remove()
		}
	}
}
