package input

import (
	"testing"

	"github.com/chrisuehlinger/zeditor/dom"
)

func setup(t *testing.T, markup string) (*dom.Document, *dom.Element) {
	t.Helper()
	doc := dom.NewDocument()
	root := doc.CreateElement("div")
	doc.AsNode().AppendChild(root.AsNode())
	if err := root.SetInnerHTML(markup); err != nil {
		t.Fatalf("SetInnerHTML failed: %v", err)
	}
	return doc, root
}

// at resolves a child index path from root.
func at(root *dom.Element, path ...int) *dom.Node {
	n := root.AsNode()
	for _, i := range path {
		n = n.ChildAt(i)
	}
	return n
}

func collapse(t *testing.T, doc *dom.Document, node *dom.Node, offset int) {
	t.Helper()
	if err := doc.GetSelection().Collapse(node, offset); err != nil {
		t.Fatalf("Collapse failed: %v", err)
	}
}

type stubTokens struct{ enter, esc bool }

func (s stubTokens) HandleEnter() bool { return s.enter }
func (s stubTokens) HandleEsc() bool   { return s.esc }

func TestKeyDown(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		caret  []int
		offset int
		event  KeyEvent
		want   string
	}{
		{"enter at end", "<p>foo</p><p>bar</p>", []int{0, 0}, 3, KeyEvent{Key: Enter}, "<p>foo</p><p><br></p><p>bar</p>"},
		{"enter at start", "<p>foo</p>", []int{0, 0}, 0, KeyEvent{Key: Enter}, "<p><br></p><p>foo</p>"},
		{"enter in middle", "<p>foobar</p>", []int{0, 0}, 3, KeyEvent{Key: Enter}, "<p>foo</p><p>bar</p>"},
		{"enter in middle keeps formatting", "<p><b>foobar</b></p>", []int{0, 0, 0}, 3, KeyEvent{Key: Enter}, "<p><b>foo</b></p><p><b>bar</b></p>"},
		{"enter after heading", "<h2>T</h2>", []int{0, 0}, 1, KeyEvent{Key: Enter}, "<h2>T</h2><p><br></p>"},
		{"enter keeps style", `<p style="color: red">x</p>`, []int{0, 0}, 1, KeyEvent{Key: Enter}, `<p style="color: red">x</p><p style="color: red"><br></p>`},
		{"shift enter at end", "<p>foo</p>", []int{0, 0}, 3, KeyEvent{Key: Enter, Shift: true}, "<p>foo<br><br></p>"},
		{"shift enter in middle", "<p>foobar</p>", []int{0, 0}, 3, KeyEvent{Key: Enter, Shift: true}, "<p>foo<br>bar</p>"},
		{"ctrl enter swallowed", "<p>foo</p>", []int{0, 0}, 3, KeyEvent{Key: Enter, Ctrl: true}, "<p>foo</p>"},
		{"enter on empty list item", "<ul><li>a</li><li><br></li><li>b</li></ul>", []int{0, 1}, 0, KeyEvent{Key: Enter}, "<ul><li>a</li></ul><p><br></p><ul><li>b</li></ul>"},
		{"backspace joins paragraphs", "<p>foo</p><p>bar</p>", []int{1, 0}, 0, KeyEvent{Key: Backspace}, "<p>foobar</p>"},
		{"backspace removes empty previous", "<p><br></p><p>bar</p>", []int{1, 0}, 0, KeyEvent{Key: Backspace}, "<p>bar</p>"},
		{"backspace into list", "<ul><li>a</li></ul><p>b</p>", []int{1, 0}, 0, KeyEvent{Key: Backspace}, "<ul><li>ab</li></ul>"},
		{"backspace splits list", "<ul><li>a</li><li>b</li><li>c</li></ul>", []int{0, 1, 0}, 0, KeyEvent{Key: Backspace}, "<ul><li>a</li></ul><p>b</p><ul><li>c</li></ul>"},
		{"backspace joins lists", "<ul><li>a</li></ul><ul><li>b</li></ul>", []int{1, 0, 0}, 0, KeyEvent{Key: Backspace}, "<ul><li>a</li><li>b</li></ul>"},
		{"backspace in middle is native", "<p>foo</p>", []int{0, 0}, 2, KeyEvent{Key: Backspace}, "<p>foo</p>"},
		{"delete joins paragraphs", "<p>foo</p><p>bar</p>", []int{0, 0}, 3, KeyEvent{Key: Delete}, "<p>foobar</p>"},
		{"delete removes empty next", "<p>foo</p><p><br></p>", []int{0, 0}, 3, KeyEvent{Key: Delete}, "<p>foo</p>"},
		{"empty paragraph backspace", "<ul><li>a</li></ul><p><br></p>", []int{1}, 0, KeyEvent{Key: Backspace}, "<ul><li>a</li></ul>"},
		{"empty paragraph delete", "<p><br></p><p>b</p>", []int{0}, 0, KeyEvent{Key: Delete}, "<p>b</p>"},
		{"empty paragraph shift enter", "<p><br></p>", []int{0}, 0, KeyEvent{Key: Enter, Shift: true}, "<p><br><br></p>"},
		{"reference enter", `<div class="overlay-reference" data-id="r"><br></div>`, []int{0}, 0, KeyEvent{Key: Enter},
			`<div class="overlay-reference" data-id="r"><br></div><p><br></p>`},
		{"reference shift enter", `<div class="overlay-reference" data-id="r"><br></div>`, []int{0}, 0, KeyEvent{Key: Enter, Shift: true},
			`<p><br></p><div class="overlay-reference" data-id="r"><br></div>`},
		{"reference up at top", `<div class="overlay-reference" data-id="r"><br></div><p>a</p>`, []int{0}, 0, KeyEvent{Key: Up},
			`<p><br></p><div class="overlay-reference" data-id="r"><br></div><p>a</p>`},
		{"reference down with next", `<div class="overlay-reference" data-id="r"><br></div><p>a</p>`, []int{0}, 0, KeyEvent{Key: Down},
			`<div class="overlay-reference" data-id="r"><br></div><p>a</p>`},
		{"reference delete", `<p>a</p><div class="overlay-reference" data-id="r"><br></div><p>b</p>`, []int{1}, 0, KeyEvent{Key: Delete}, "<p>a</p><p>b</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, root := setup(t, tt.markup)
			collapse(t, doc, at(root, tt.caret...), tt.offset)
			e := tt.event
			New(doc, root, Options{}).KeyDown(&e)
			if got := root.InnerHTML(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnterAtEndMovesCaret(t *testing.T) {
	doc, root := setup(t, "<p>foo</p><p>bar</p>")
	collapse(t, doc, at(root, 0, 0), 3)

	e := &KeyEvent{Key: Enter}
	New(doc, root, Options{}).KeyDown(e)
	if !e.DefaultPrevented() {
		t.Error("Enter should be prevented")
	}
	sel := doc.GetSelection()
	if sel.AnchorNode() != at(root, 1) || sel.AnchorOffset() != 0 {
		t.Errorf("caret at %v:%d, want start of the new paragraph", sel.AnchorNode(), sel.AnchorOffset())
	}
}

func TestReferenceBackspaceLeavesParagraph(t *testing.T) {
	doc, root := setup(t, `<div class="overlay-reference" data-id="r"><br></div>`)
	collapse(t, doc, at(root, 0), 0)

	e := &KeyEvent{Key: Backspace}
	New(doc, root, Options{}).KeyDown(e)

	if got := root.InnerHTML(); got != "<p><br></p>" {
		t.Fatalf("got %q", got)
	}
	if !e.DefaultPrevented() {
		t.Error("Backspace should be prevented")
	}
	if sel := doc.GetSelection(); sel.AnchorNode() != at(root, 0) {
		t.Errorf("caret on %v, want the new paragraph", sel.AnchorNode())
	}
}

func TestTokensConsumeKeys(t *testing.T) {
	doc, root := setup(t, "<p>foo</p>")
	collapse(t, doc, at(root, 0, 0), 3)
	n := New(doc, root, Options{Tokens: stubTokens{enter: true, esc: true}})

	enter := &KeyEvent{Key: Enter}
	n.KeyDown(enter)
	if got := root.InnerHTML(); got != "<p>foo</p>" || !enter.DefaultPrevented() {
		t.Errorf("token should consume Enter, got %q", got)
	}
	esc := &KeyEvent{Key: Escape}
	n.KeyDown(esc)
	if !esc.DefaultPrevented() {
		t.Error("token should consume Escape")
	}
}

func TestCancelledAndOutsideEvents(t *testing.T) {
	doc, root := setup(t, "<p>foo</p>")
	collapse(t, doc, at(root, 0, 0), 3)
	n := New(doc, root, Options{})

	cancelled := &KeyEvent{Key: Enter}
	cancelled.PreventDefault()
	n.KeyDown(cancelled)

	outside := &KeyEvent{Key: Enter, Target: doc.CreateElement("input").AsNode()}
	n.KeyDown(outside)

	if got := root.InnerHTML(); got != "<p>foo</p>" {
		t.Errorf("got %q", got)
	}
}

func TestCaretOnRootIsRehomed(t *testing.T) {
	doc, root := setup(t, "<p>foo</p><p>bar</p>")
	collapse(t, doc, root.AsNode(), 2)

	New(doc, root, Options{}).KeyDown(&KeyEvent{Key: Enter})
	if got := root.InnerHTML(); got != "<p>foo</p><p>bar</p><p><br></p>" {
		t.Errorf("got %q", got)
	}
}

func TestAnchorEdge(t *testing.T) {
	doc, root := setup(t, `<p><a href="x">link</a></p>`)
	collapse(t, doc, at(root, 0, 0, 0), 4)

	New(doc, root, Options{}).KeyPress(&KeyEvent{Key: 'a'})
	if got, want := root.InnerHTML(), "<p><a href=\"x\">link</a>\u200b</p>"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	r := doc.GetSelection().Range()
	if r.StartContainer() != at(root, 0, 1) || r.Collapsed() {
		t.Errorf("expected the zero width space to be selected")
	}
}

func TestZwspSpanSpace(t *testing.T) {
	doc, root := setup(t, "<p>a<span class=\"zwsp\">\u200b</span></p>")
	collapse(t, doc, at(root, 0, 1, 0), 3)

	e := &KeyEvent{Key: Space}
	New(doc, root, Options{}).KeyPress(e)
	if got := root.InnerHTML(); got != "<p>a </p>" {
		t.Fatalf("got %q", got)
	}
	if !e.DefaultPrevented() {
		t.Error("Space should be prevented")
	}
}

func TestCompositionOnReference(t *testing.T) {
	doc, root := setup(t, `<div class="overlay-reference" data-id="r"><br></div>`)
	collapse(t, doc, at(root, 0), 0)

	New(doc, root, Options{}).CompositionStart(&KeyEvent{})
	if got := root.InnerHTML(); got != `<div class="overlay-reference" data-id="r"><br></div><p><br></p>` {
		t.Errorf("got %q", got)
	}
}

func TestCaretInsideBreakIsMoved(t *testing.T) {
	doc, root := setup(t, "<p>a<br>b</p>")
	br := at(root, 0, 1)
	collapse(t, doc, br, 0)

	New(doc, root, Options{}).KeyDown(&KeyEvent{Key: Right})
	sel := doc.GetSelection()
	if sel.AnchorNode() != at(root, 0) || sel.AnchorOffset() != 2 {
		t.Errorf("caret at %v:%d, want just after the br", sel.AnchorNode(), sel.AnchorOffset())
	}
}
