package history

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/position"
)

// recordOp logs its calls and reports its id as the resulting offset.
type recordOp struct {
	id  int
	log *[]string
}

func (o *recordOp) Undo(*dom.Element) position.Frozen {
	*o.log = append(*o.log, fmt.Sprintf("undo %d", o.id))
	return position.Frozen{StartPath: position.Path{}, StartOffset: o.id}
}

func (o *recordOp) Redo(*dom.Element) position.Frozen {
	*o.log = append(*o.log, fmt.Sprintf("redo %d", o.id))
	return position.Frozen{StartPath: position.Path{}, StartOffset: o.id}
}

func newRoot(t *testing.T, markup string) *dom.Element {
	t.Helper()
	doc := dom.NewDocument()
	root := doc.CreateElement("div")
	doc.AsNode().AppendChild(root.AsNode())
	if err := root.SetInnerHTML(markup); err != nil {
		t.Fatalf("SetInnerHTML failed: %v", err)
	}
	return root
}

// snapshot returns a detached copy of root as taken by the transaction manager.
func snapshot(root *dom.Element) *dom.Element {
	return root.AsNode().CloneNode(true).AsElement()
}

func frozenAt(offset int) position.Frozen {
	return position.Frozen{StartPath: position.Path{0, 0}, StartOffset: offset, EndPath: position.Path{0, 0}, EndOffset: offset}
}

func TestStackBound(t *testing.T) {
	var log []string
	s := NewStack(nil, 100)
	for i := 1; i <= 150; i++ {
		s.Push(&recordOp{id: i, log: &log})
	}
	if s.Len() != 100 || s.Index() != 100 {
		t.Fatalf("Len() = %d Index() = %d, want 100/100", s.Len(), s.Index())
	}

	var last position.Frozen
	for i := 0; i < 100; i++ {
		f, err := s.Undo()
		if err != nil {
			t.Fatalf("undo %d failed: %v", i, err)
		}
		last = f
	}
	if s.CanUndo() {
		t.Error("CanUndo() should be false after 100 undos")
	}
	if last.StartOffset != 51 {
		t.Errorf("oldest recoverable operation = %d, want 51", last.StartOffset)
	}
	if _, err := s.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestStackDefaultLimit(t *testing.T) {
	var log []string
	s := NewStack(nil, 0)
	for i := 0; i < DefaultLimit+5; i++ {
		s.Push(&recordOp{id: i, log: &log})
	}
	if s.Len() != DefaultLimit {
		t.Errorf("Len() = %d, want %d", s.Len(), DefaultLimit)
	}
}

func TestPushTruncatesRedoBranch(t *testing.T) {
	var log []string
	s := NewStack(nil, 10)
	for i := 1; i <= 3; i++ {
		s.Push(&recordOp{id: i, log: &log})
	}
	s.Undo()
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("expected redo to be possible")
	}
	s.Push(&recordOp{id: 4, log: &log})
	if s.CanRedo() {
		t.Error("push should discard the redo branch")
	}
	if s.Len() != 2 || s.Index() != 2 {
		t.Errorf("Len() = %d Index() = %d, want 2/2", s.Len(), s.Index())
	}
	if _, err := s.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestClear(t *testing.T) {
	var log []string
	s := NewStack(nil, 10)
	s.Push(&recordOp{id: 1, log: &log})
	s.Push(&recordOp{id: 2, log: &log})
	s.Undo()
	s.Clear()
	if s.Len() != 0 || s.CanUndo() || s.CanRedo() {
		t.Errorf("after Clear Len() = %d CanUndo() = %v CanRedo() = %v", s.Len(), s.CanUndo(), s.CanRedo())
	}
	s.Push(&recordOp{id: 3, log: &log})
	if s.Len() != 1 || s.Index() != 1 {
		t.Errorf("Len() = %d Index() = %d, want 1/1", s.Len(), s.Index())
	}
}

func TestUnknownUndoRedo(t *testing.T) {
	root := newRoot(t, "<p>foo</p>")
	before := snapshot(root)
	root.FirstChild().FirstChild().SetNodeValue("foobar")
	after := snapshot(root)

	op := NewUnknown(before, frozenAt(3), after, frozenAt(6))
	if f := op.Undo(root); f.StartOffset != 3 {
		t.Errorf("undo position = %d, want 3", f.StartOffset)
	}
	if got := root.InnerHTML(); got != "<p>foo</p>" {
		t.Errorf("after undo %q", got)
	}
	if f := op.Redo(root); f.StartOffset != 6 {
		t.Errorf("redo position = %d, want 6", f.StartOffset)
	}
	if got := root.InnerHTML(); got != "<p>foobar</p>" {
		t.Errorf("after redo %q", got)
	}

	// the snapshot must survive edits of the restored content
	root.FirstChild().FirstChild().SetNodeValue("changed")
	op.Redo(root)
	if got := root.InnerHTML(); got != "<p>foobar</p>" {
		t.Errorf("second redo %q", got)
	}
}

func TestSquashCollapsesUnknownOperations(t *testing.T) {
	root := newRoot(t, "<p>a</p>")
	s := NewStack(root, 100)

	s0 := snapshot(root)
	root.FirstChild().FirstChild().SetNodeValue("ab")
	s1 := snapshot(root)
	s.Squash(NewUnknown(s0, frozenAt(1), s1, frozenAt(2)))

	root.FirstChild().FirstChild().SetNodeValue("abc")
	s2 := snapshot(root)
	s.Squash(NewUnknown(s1, frozenAt(2), s2, frozenAt(3)))

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	c, ok := s.entries[0].(*Composite)
	if !ok || c.Collapsed() == nil {
		t.Fatalf("expected a collapsed composite, got %T", s.entries[0])
	}

	f, err := s.Undo()
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if got := root.InnerHTML(); got != "<p>a</p>" {
		t.Errorf("after undo %q", got)
	}
	if f.StartOffset != 1 {
		t.Errorf("undo position = %d, want 1", f.StartOffset)
	}
	if s.CanUndo() {
		t.Error("squashed edits should form a single undo step")
	}

	s.Redo()
	if got := root.InnerHTML(); got != "<p>abc</p>" {
		t.Errorf("after redo %q", got)
	}
}

func TestCompositeOrder(t *testing.T) {
	var log []string
	c := NewComposite(&recordOp{id: 1, log: &log}, &recordOp{id: 2, log: &log})
	if c.Collapsed() != nil {
		t.Fatal("mixed operations must not collapse")
	}
	if f := c.Undo(nil); f.StartOffset != 1 {
		t.Errorf("undo should return the first operation's position, got %d", f.StartOffset)
	}
	if f := c.Redo(nil); f.StartOffset != 2 {
		t.Errorf("redo should return the second operation's position, got %d", f.StartOffset)
	}
	want := []string{"undo 2", "undo 1", "redo 1", "redo 2"}
	if fmt.Sprint(log) != fmt.Sprint(want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestCompositeUnwrapsCollapsed(t *testing.T) {
	root := newRoot(t, "<p>x</p>")
	a := NewUnknown(snapshot(root), frozenAt(0), snapshot(root), frozenAt(1))
	b := NewUnknown(snapshot(root), frozenAt(1), snapshot(root), frozenAt(2))
	d := NewUnknown(snapshot(root), frozenAt(2), snapshot(root), frozenAt(3))

	c := NewComposite(NewComposite(a, b), d)
	u, ok := c.Collapsed().(*Unknown)
	if !ok {
		t.Fatalf("expected nested collapse, got %T", c.Collapsed())
	}
	if u.Before() != a.Before() || u.After() != d.After() {
		t.Error("collapsed operation should span a.before to d.after")
	}
}
