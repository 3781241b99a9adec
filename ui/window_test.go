package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/editor"
)

func newSession(t *testing.T, markup string) *Session {
	t.Helper()
	ed, err := editor.New(markup, editor.Options{})
	if err != nil {
		t.Fatalf("editor.New failed: %v", err)
	}
	t.Cleanup(ed.Close)
	return NewSession(ed, "test")
}

func textAt(s *Session, index int) *dom.Node {
	return s.Editor.Root().AsNode().ChildAt(index).FirstChild()
}

func TestMoveCaret(t *testing.T) {
	s := newSession(t, "<p>añb</p><p>cd</p>")
	first, second := textAt(s, 0), textAt(s, 1)

	tests := []struct {
		delta      int
		wantNode   *dom.Node
		wantOffset int
	}{
		{2, first, 3},
		{1, first, 4},
		{1, second, 0},
		{10, second, 2},
		{-3, first, 4},
		{-10, first, 0},
	}
	s.Editor.Select(first, 0)
	for _, tt := range tests {
		s.MoveCaret(tt.delta)
		r := s.Editor.Selection().Range()
		if r.StartContainer() != tt.wantNode || r.StartOffset() != tt.wantOffset {
			t.Errorf("MoveCaret(%d): got (%q, %d), want (%q, %d)", tt.delta,
				r.StartContainer().NodeValue(), r.StartOffset(), tt.wantNode.NodeValue(), tt.wantOffset)
		}
	}
}

func TestMoveCaretByGraphemeCluster(t *testing.T) {
	const (
		family = "\U0001F468\u200d\U0001F469\u200d\U0001F467"
		eAcute = "e\u0301"
	)
	s := newSession(t, "<p>"+eAcute+"x"+family+"</p>")
	node := textAt(s, 0)
	s.Editor.Select(node, 0)

	steps := []struct {
		delta int
		want  int
	}{
		{1, len(eAcute)},
		{1, len(eAcute) + 1},
		{1, len(eAcute) + 1 + len(family)},
		{-1, len(eAcute) + 1},
		{-2, 0},
	}
	for _, step := range steps {
		s.MoveCaret(step.delta)
		if got := s.Editor.Selection().Range().StartOffset(); got != step.want {
			t.Errorf("MoveCaret(%d): got offset %d, want %d", step.delta, got, step.want)
		}
	}
}

func TestKey(t *testing.T) {
	s := newSession(t, "<p>foo</p>")
	foo := textAt(s, 0)
	s.Editor.SelectRange(foo, 1, foo, 2)

	if err := s.Key("bold"); err != nil {
		t.Fatalf("Key(bold) failed: %v", err)
	}
	if got, want := s.Editor.HTML(), "<p>f<strong>o</strong>o</p>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if err := s.Key("undo"); err != nil {
		t.Fatalf("Key(undo) failed: %v", err)
	}
	if got, want := s.Editor.HTML(), "<p>foo</p>"; got != want {
		t.Errorf("after undo got %q, want %q", got, want)
	}
	if err := s.Key("nope"); !errors.Is(err, editor.ErrUnknownCommand) {
		t.Errorf("got %v, want ErrUnknownCommand", err)
	}
	if got, want := strings.Join(s.Log(), ","), "key bold,key undo,key nope"; got != want {
		t.Errorf("log: got %q, want %q", got, want)
	}
}

func TestView(t *testing.T) {
	s := newSession(t, "<p>foo</p>")
	s.Editor.Select(textAt(s, 0), 3)

	v := s.View()
	if v.Selection != "[0 0]:3" {
		t.Errorf("selection: got %q", v.Selection)
	}
	if v.CanUndo || v.CanRedo {
		t.Errorf("a loaded editor has no history, got undo %t redo %t", v.CanUndo, v.CanRedo)
	}

	s.Type(" bar")
	v = s.View()
	if got, want := v.HTML, "<p>foo bar</p>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !v.CanUndo {
		t.Error("typing should be undoable")
	}
	if !strings.Contains(v.Summary(), "undo: true redo: false") {
		t.Errorf("unexpected summary %q", v.Summary())
	}
}
