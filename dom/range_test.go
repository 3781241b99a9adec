package dom

import (
	"testing"
)

// fixture returns a document holding a single div whose content is markup.
func fixture(t *testing.T, markup string) (*Document, *Element) {
	t.Helper()
	doc := NewDocument()
	root := doc.CreateElement("div")
	doc.AsNode().AppendChild(root.AsNode())
	if err := root.SetInnerHTML(markup); err != nil {
		t.Fatalf("SetInnerHTML(%q) failed: %v", markup, err)
	}
	return doc, root
}

func TestNewRange(t *testing.T) {
	doc := NewDocument()
	r := doc.CreateRange()

	if r.StartContainer() != doc.AsNode() || r.EndContainer() != doc.AsNode() {
		t.Error("new range should start and end at the document")
	}
	if r.StartOffset() != 0 || r.EndOffset() != 0 {
		t.Error("new range offsets should be 0")
	}
	if !r.Collapsed() {
		t.Error("Range should be collapsed")
	}
}

func TestRange_SetStartAfterEndCollapses(t *testing.T) {
	doc, root := fixture(t, "<p>Hello World</p>")
	text := root.FirstChild().FirstChild()

	r := doc.CreateRange()
	r.SetStart(text, 2)
	r.SetEnd(text, 5)
	if err := r.SetStart(text, 8); err != nil {
		t.Fatalf("SetStart failed: %v", err)
	}
	if r.EndOffset() != 8 || !r.Collapsed() {
		t.Errorf("expected range collapsed at 8, got [%d,%d]", r.StartOffset(), r.EndOffset())
	}
	if err := r.SetStart(text, 42); err == nil {
		t.Error("expected IndexSizeError for an offset past the end")
	}
}

func TestRange_CompareBoundaryPoints(t *testing.T) {
	doc, root := fixture(t, "<p>one</p><p>two</p>")
	first := root.FirstChild().FirstChild()
	second := root.LastChild().FirstChild()

	a := doc.CreateRange()
	a.SetStart(first, 1)
	a.SetEnd(first, 2)
	b := doc.CreateRange()
	b.SetStart(second, 0)
	b.SetEnd(second, 3)

	tests := []struct {
		how  int
		want int
	}{
		{StartToStart, -1},
		{EndToEnd, -1},
		{StartToEnd, -1},
		{EndToStart, -1},
	}
	for _, tt := range tests {
		got, err := a.CompareBoundaryPoints(tt.how, b)
		if err != nil {
			t.Fatalf("CompareBoundaryPoints(%d) failed: %v", tt.how, err)
		}
		if got != tt.want {
			t.Errorf("CompareBoundaryPoints(%d) = %d, want %d", tt.how, got, tt.want)
		}
	}

	if got := ComparePoints(root.AsNode(), 1, first, 3); got != 1 {
		t.Errorf("ComparePoints(root,1 vs first,3) = %d, want 1", got)
	}
	if got := ComparePoints(root.AsNode(), 0, first, 0); got != -1 {
		t.Errorf("ComparePoints(root,0 vs first,0) = %d, want -1", got)
	}
}

func TestRange_ExtractContentsPartiallyContained(t *testing.T) {
	doc, root := fixture(t, "<p>foo<b>bar</b></p><p>baz</p>")
	r := doc.CreateRange()
	r.SetStart(root.FirstChild().FirstChild(), 1)
	r.SetEnd(root.LastChild().FirstChild(), 2)

	frag, err := r.ExtractContents()
	if err != nil {
		t.Fatalf("ExtractContents failed: %v", err)
	}
	if got := Serialize(frag); got != "<p>oo<b>bar</b></p><p>ba</p>" {
		t.Errorf("extracted %q", got)
	}
	if got := root.InnerHTML(); got != "<p>f</p><p>z</p>" {
		t.Errorf("remaining %q", got)
	}
	if r.StartContainer() != root.AsNode() || r.StartOffset() != 1 || !r.Collapsed() {
		t.Errorf("range should collapse between the paragraphs, got %s@%d", r.StartContainer().NodeName(), r.StartOffset())
	}
}

func TestRange_CloneContentsLeavesTree(t *testing.T) {
	doc, root := fixture(t, "<p>hello <i>big</i> world</p>")
	p := root.FirstChild()
	r := doc.CreateRange()
	r.SetStart(p.FirstChild(), 3)
	r.SetEnd(p.LastChild(), 3)

	frag, err := r.CloneContents()
	if err != nil {
		t.Fatalf("CloneContents failed: %v", err)
	}
	if got := Serialize(frag); got != "lo <i>big</i> wo" {
		t.Errorf("cloned %q", got)
	}
	if got := root.InnerHTML(); got != "<p>hello <i>big</i> world</p>" {
		t.Errorf("tree changed: %q", got)
	}
	if got := r.String(); got != "lo big wo" {
		t.Errorf("String() = %q", got)
	}
}

func TestRange_InsertNodeSplitsText(t *testing.T) {
	doc, root := fixture(t, "<p>abcd</p>")
	text := root.FirstChild().FirstChild()
	r := doc.CreateRange()
	r.SetStart(text, 2)
	r.Collapse(true)

	br := doc.CreateElement("br")
	if err := r.InsertNode(br.AsNode()); err != nil {
		t.Fatalf("InsertNode failed: %v", err)
	}
	if got := root.InnerHTML(); got != "<p>ab<br>cd</p>" {
		t.Errorf("got %q", got)
	}
	if r.EndContainer() != root.FirstChild() || r.EndOffset() != 2 {
		t.Errorf("collapsed range end should move after the inserted node, got %s@%d", r.EndContainer().NodeName(), r.EndOffset())
	}
}

func TestRange_SurroundContents(t *testing.T) {
	doc, root := fixture(t, "<p>say hello there</p>")
	text := root.FirstChild().FirstChild()
	r := doc.CreateRange()
	r.SetStart(text, 4)
	r.SetEnd(text, 9)

	span := doc.CreateElement("span")
	span.SetClassName("no-tokens")
	if err := r.SurroundContents(span.AsNode()); err != nil {
		t.Fatalf("SurroundContents failed: %v", err)
	}
	if got := root.InnerHTML(); got != `<p>say <span class="no-tokens">hello</span> there</p>` {
		t.Errorf("got %q", got)
	}

	r2 := doc.CreateRange()
	r2.SetStart(root.FirstChild().FirstChild(), 1)
	r2.SetEnd(span.FirstChild(), 2)
	if err := r2.SurroundContents(doc.CreateElement("b").AsNode()); err == nil {
		t.Error("expected InvalidStateError when a non-Text node is partially selected")
	}
}

func TestRange_LiveAcrossMutations(t *testing.T) {
	doc, root := fixture(t, "<p>hello</p><p>world</p>")
	first := root.FirstChild()
	text := first.FirstChild()

	r := doc.CreateRange()
	r.SetStart(text, 4)
	r.Collapse(true)

	tail, err := text.SplitText(2)
	if err != nil {
		t.Fatalf("SplitText failed: %v", err)
	}
	if r.StartContainer() != tail || r.StartOffset() != 2 {
		t.Errorf("after split expected tail@2, got %q@%d", r.StartContainer().NodeValue(), r.StartOffset())
	}

	first.Normalize()
	if r.StartContainer() != text || r.StartOffset() != 4 {
		t.Errorf("after normalize expected text@4, got %q@%d", r.StartContainer().NodeValue(), r.StartOffset())
	}

	text.ReplaceData(0, 2, "")
	if r.StartOffset() != 2 {
		t.Errorf("after deleting two leading bytes expected offset 2, got %d", r.StartOffset())
	}

	first.Remove()
	if r.StartContainer() != root.AsNode() || r.StartOffset() != 0 {
		t.Errorf("after removal expected root@0, got %s@%d", r.StartContainer().NodeName(), r.StartOffset())
	}
}

func TestRange_DetachStopsTracking(t *testing.T) {
	doc, root := fixture(t, "<p>a</p><p>b</p>")
	r := doc.CreateRange()
	r.SetStart(root.AsNode(), 2)
	r.Collapse(true)
	r.Detach()

	root.FirstChild().Remove()
	if r.StartOffset() != 2 {
		t.Errorf("detached range should not move, got offset %d", r.StartOffset())
	}
}
