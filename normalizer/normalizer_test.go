package normalizer

import (
	"reflect"
	"testing"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/eventloop"
	"github.com/chrisuehlinger/zeditor/transaction"
)

const hint = `<span class="join-hint" contenteditable="false"></span>`

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

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty editor", "", "<p><br></p>"},
		{"bare text", "foo", "<p>foo</p>"},
		{"classless divs", "<div>a</div><div>b</div>", "<p>a<br>b</p>"},
		{"classed div", `<div class="x">a</div>`, `<div class="x">a</div>`},
		{"list item at root", "<li>one</li><li>two</li>", "<ul><li>one</li><li>two</li></ul>"},
		{"newline paragraph", "<p>\n</p>", "<p><br></p>"},
		{"trailing break", "<p>a<br></p>", "<p>a</p>"},
		{"double break kept", "<p>a<br><br></p>", "<p>a<br><br></p>"},
		{"empty inline", "<p>a<span></span>b</p>", "<p>ab</p>"},
		{"empty block", "<p>a</p><h2></h2>", "<p>a</p>"},
		{"nested formatting", "<p><b>x<b>y</b></b></p>", "<p><b>xy</b></p>"},
		{"adjacent formatting", "<p><b>a</b><b>b</b></p>", "<p><b>ab</b></p>"},
		{"adjacent with different attributes", `<p><b>a</b><b title="t">b</b></p>`, `<p><b>a</b><b title="t">b</b></p>`},
		{"list wrapped paragraph", "<ul><li><p>x</p></li></ul>", "<ul><li>x</li></ul>"},
		{"misplaced heading", `<div class="x">ab<h1>t</h1>cd</div>`, `<div class="x">ab</div><h1>t</h1><div class="x">cd</div>`},
		{"blockquote keeps paragraphs", "<blockquote><p>q</p></blockquote>", "<blockquote><p>q</p></blockquote>"},
		{"nested lists stay", "<ul><li>a</li><ul><li>b</li></ul></ul>", "<ul><li>a</li><ul><li>b</li></ul></ul>"},
		{"join hints merge", "<p>a" + hint + "</p><p>" + hint + "b</p>", "<p>ab</p>"},
		{"inner join hint", "<p>a" + hint + "b</p>", "<p>ab</p>"},
		{"unmatched join hint", "<p>a" + hint + "</p><p>b</p>", "<p>a</p><p>b</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, root := setup(t, tt.input)
			n := New(root, Options{})
			n.Normalize("test", nil, nil)
			if got := root.InnerHTML(); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}

			n.Normalize("test", nil, nil)
			if got := root.InnerHTML(); got != tt.want {
				t.Errorf("second run changed the tree: %q", got)
			}
		})
	}
}

func TestReferenceWithContent(t *testing.T) {
	doc, root := setup(t, `<div class="overlay-reference" data-id="1">typed<br></div>`)
	n := New(root, Options{})
	n.Normalize("test", nil, nil)

	want := `<div class="overlay-reference" data-id="1"><br></div><p>typed</p>`
	if got := root.InnerHTML(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	r := doc.GetSelection().Range()
	if r == nil {
		t.Fatal("expected a selection")
	}
	p := root.LastChild()
	if !r.Collapsed() || r.StartContainer() != p || r.StartOffset() != 1 {
		t.Errorf("caret at %v:%d, want end of new paragraph", r.StartContainer(), r.StartOffset())
	}
}

func TestUseBefore(t *testing.T) {
	_, root := setup(t, "")
	n := New(root, Options{})
	var calls []string
	n.UseBefore(Pass{"first", func(_, _ *dom.Element, context string) { calls = append(calls, context) }}, BeforeBuiltins)
	n.UseBefore(Pass{"last", func(_, _ *dom.Element, _ string) {}}, "missing")

	names := n.Passes()
	if names[0] != "first" || names[1] != BeforeBuiltins || names[len(names)-1] != "last" {
		t.Fatalf("unexpected order %v", names)
	}
	n.Normalize("paste", nil, nil)
	if len(calls) == 0 || calls[0] != "paste" {
		t.Errorf("custom pass calls %v", calls)
	}
}

func TestNormalizeSubtreeMergesText(t *testing.T) {
	doc, root := setup(t, "<p>ab</p>")
	p := root.FirstElementChild()
	p.AppendChild(doc.CreateTextNode("cd"))
	sel := doc.GetSelection()
	if err := sel.Collapse(p.LastChild(), 1); err != nil {
		t.Fatalf("Collapse failed: %v", err)
	}

	New(root, Options{}).Normalize("test", nil, p)
	if got := p.AsNode().ChildCount(); got != 1 {
		t.Fatalf("expected merged text, got %d children", got)
	}
	if sel.AnchorNode() != p.FirstChild() || sel.AnchorOffset() != 3 {
		t.Errorf("selection at %v:%d, want offset 3 in merged text", sel.AnchorNode(), sel.AnchorOffset())
	}
}

func TestMutationsAreSquashed(t *testing.T) {
	doc, root := setup(t, "<p>a</p>")
	loop := eventloop.New()
	tm := transaction.New(doc, root, transaction.Options{Scheduler: loop})
	n := New(root, Options{Transactions: tm, Scheduler: loop})
	normalized := 0
	n.OnNormalized(func() { normalized++ })

	root.AppendChild(doc.CreateTextNode("x"))
	loop.Drain()

	if got := root.InnerHTML(); got != "<p>a</p><p>x</p>" {
		t.Fatalf("got %q", got)
	}
	if tm.Stack().Len() != 1 || normalized != 1 {
		t.Fatalf("expected one squashed step, got %d steps and %d normalizations", tm.Stack().Len(), normalized)
	}

	if _, err := tm.Undo(false); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	loop.Drain()
	if got := root.InnerHTML(); got != "<p>a</p>" {
		t.Errorf("after undo %q", got)
	}
	if !tm.CanRedo() {
		t.Error("undo after normalization should leave redo available")
	}
}

func TestComposition(t *testing.T) {
	doc, root := setup(t, "<p>a</p>")
	loop := eventloop.New()
	tm := transaction.New(doc, root, transaction.Options{Scheduler: loop})
	n := New(root, Options{Transactions: tm, Scheduler: loop})

	n.CompositionStart()
	root.AppendChild(doc.CreateTextNode("y"))
	loop.Drain()
	if got := root.InnerHTML(); got != "<p>a</p>y" {
		t.Fatalf("normalized during composition: %q", got)
	}

	n.CompositionEnd()
	if n.Composing() {
		t.Error("still composing")
	}
	if got := root.InnerHTML(); got != "<p>a</p><p>y</p>" {
		t.Errorf("after composition %q", got)
	}
	if !reflect.DeepEqual(n.Passes()[:2], []string{BeforeBuiltins, "root-level-classless-divs"}) {
		t.Errorf("passes %v", n.Passes())
	}
}
