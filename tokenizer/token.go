package tokenizer

import (
	"errors"
	"fmt"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/input"
	"github.com/chrisuehlinger/zeditor/is"
	"golang.org/x/net/html/atom"
)

// ErrBlockExclusion is returned when an exclusion function produces a block element.
var ErrBlockExclusion = errors.New("tokenizer: exclusion function must not return a block element")

// Token marks the text [Start, End) of a container. Offsets count bytes of
// the container's extracted text.
type Token struct {
	Container *dom.Node
	Start     int
	End       int
	Text      string
	Type      string
	// Range covers the token's text and follows edits that keep the
	// characters in place.
	Range *dom.Range

	// Replacement and Exclusion build the node that takes the token's place.
	Replacement func(t *Token) (*dom.Node, error)
	Exclusion   func(t *Token) (*dom.Node, error)
	Pending     bool

	ExcludeOnUnfocus bool
	ExcludeOnEsc     bool
	ReplaceOnLoad    bool
	ReplaceOnSpace   bool
	ReplaceOnEnter   bool
	ReplaceOnUnfocus bool
	Invisible        bool
}

// NewToken creates a token for text found at index in the extracted text of container.
func NewToken(container *dom.Node, text string, index int) *Token {
	t := &Token{
		Container: container,
		Start:     index,
		End:       index + len(text),
		Text:      text,
	}
	t.CalculateRange()
	return t
}

func (t *Token) String() string {
	return fmt.Sprintf("%s[%d,%d)%q", t.Type, t.Start, t.End, t.Text)
}

// Intersects reports whether both tokens overlap in the same container.
func (t *Token) Intersects(that *Token) bool {
	return t.Container == that.Container && !(t.End <= that.Start || that.End <= t.Start)
}

// Supersedes reports whether t wins over the intersecting token that: the
// earlier start wins, and on equal starts the longer token.
func (t *Token) Supersedes(that *Token) bool {
	return t.Start < that.Start || (t.Start == that.Start && t.End > that.End)
}

// sameSpan reports whether both tokens cover the same text.
func (t *Token) sameSpan(that *Token) bool {
	return t.Container == that.Container && t.Start == that.Start && t.End == that.End
}

// CalculateRange maps the token offsets onto the text nodes of its container.
func (t *Token) CalculateRange() {
	if t.Range != nil {
		t.Range.Detach()
	}
	t.Range = t.Container.OwnerDocument().CreateRange()

	position := 0
	walk(t.Container, func(n *dom.Node) {
		switch {
		case is.Text(n):
			length := len(n.NodeValue())
			if t.Start >= position && t.Start <= position+length {
				t.Range.SetStart(n, t.Start-position)
			}
			if t.End >= position && t.End <= position+length {
				t.Range.SetEnd(n, t.End-position)
			}
			position += length
		case is.BR(n):
			position++
		case is.Tag(n, atom.Img):
			position += len(AltValue(n.AsElement()))
		}
	})
}

// IsFocused reports whether the collapsed caret of sel lies within the token.
func (t *Token) IsFocused(sel *dom.Selection) bool {
	r := sel.Range()
	if r == nil || !r.Collapsed() {
		return false
	}
	leaf := input.LeafRange(r)
	defer leaf.Detach()
	return dom.ComparePoints(t.Range.StartContainer(), t.Range.StartOffset(), leaf.StartContainer(), leaf.StartOffset()) <= 0 &&
		dom.ComparePoints(t.Range.EndContainer(), t.Range.EndOffset(), leaf.EndContainer(), leaf.EndOffset()) >= 0
}

// Replace swaps the token text for the node built by Replacement. Block
// replacements are placed after the root level block holding the token.
// It returns nil when there is no replacement.
func (t *Token) Replace(root *dom.Element) (*dom.Node, error) {
	if t.Replacement == nil {
		return nil, nil
	}
	el, err := t.Replacement(t)
	if err != nil || el == nil {
		return nil, err
	}

	if !is.Block(el) {
		return el, t.swap(el)
	}
	ref := t.Range.EndContainer()
	for ref != nil && ref.ParentNode() != root.AsNode() {
		ref = ref.ParentNode()
	}
	if err := t.Range.DeleteContents(); err != nil {
		return nil, err
	}
	if ref == nil {
		return el, t.Range.InsertNode(el)
	}
	root.InsertBefore(el, ref.NextSibling())
	return el, nil
}

// Exclude keeps the token text from being tokenized again, by default by
// wrapping it in span.no-tokens.
func (t *Token) Exclude() (*dom.Node, error) {
	if t.Exclusion != nil {
		el, err := t.Exclusion(t)
		if err != nil || el == nil {
			return nil, err
		}
		if is.Block(el) {
			return nil, ErrBlockExclusion
		}
		return el, t.swap(el)
	}

	span := t.Container.OwnerDocument().CreateElement("span")
	span.SetClassName("no-tokens")
	if err := t.Range.SurroundContents(span.AsNode()); err != nil {
		// the range cuts through elements, move the content by hand
		content, err := t.Range.ExtractContents()
		if err != nil {
			return nil, err
		}
		span.AppendChild(content)
		if err := t.Range.InsertNode(span.AsNode()); err != nil {
			return nil, err
		}
	}
	return span.AsNode(), nil
}

func (t *Token) swap(el *dom.Node) error {
	if err := t.Range.DeleteContents(); err != nil {
		return err
	}
	return t.Range.InsertNode(el)
}

// IntersectsRange reports whether the token range and r overlap.
func (t *Token) IntersectsRange(r *dom.Range) bool {
	before := dom.ComparePoints(t.Range.EndContainer(), t.Range.EndOffset(), r.StartContainer(), r.StartOffset()) <= 0
	after := dom.ComparePoints(t.Range.StartContainer(), t.Range.StartOffset(), r.EndContainer(), r.EndOffset()) >= 0
	return !(before || after)
}

// IntersectsNode reports whether the token range overlaps node.
func (t *Token) IntersectsNode(node *dom.Node) bool {
	parent := node.ParentNode()
	if parent == nil {
		return false
	}
	index := node.Index()
	before := dom.ComparePoints(t.Range.EndContainer(), t.Range.EndOffset(), parent, index) <= 0
	after := dom.ComparePoints(t.Range.StartContainer(), t.Range.StartOffset(), parent, index+1) >= 0
	return !(before || after)
}

// release stops tracking the token range.
func (t *Token) release() {
	if t.Range != nil {
		t.Range.Detach()
	}
}
