package input

import (
	"errors"
	"testing"
)

func TestRangePosition(t *testing.T) {
	tests := []struct {
		markup string
		caret  []int
		offset int
		want   Position
	}{
		{"<p>foo</p>", []int{0, 0}, 0, Start},
		{"<p>foo</p>", []int{0, 0}, 1, Middle},
		{"<p>foo</p>", []int{0, 0}, 3, End},
		{"<p>foo</p>", []int{0}, 1, End},
		{"<p>foo</p>", []int{0}, 0, Start},
		{"<p><b>foo</b>bar</p>", []int{0, 0, 0}, 3, Middle},
		{"<p><b>foo</b>bar</p>", []int{0, 1}, 3, End},
		{"<p>a</p><p>b</p>", []int{1, 0}, 0, After},
	}
	for _, tt := range tests {
		doc, root := setup(t, tt.markup)
		collapse(t, doc, at(root, tt.caret...), tt.offset)
		got, err := RangePosition(doc.GetSelection().Range(), at(root, 0))
		if err != nil {
			t.Fatalf("%s: %v", tt.markup, err)
		}
		if got != tt.want {
			t.Errorf("%s caret %v:%d: got %v, want %v", tt.markup, tt.caret, tt.offset, got, tt.want)
		}
	}
}

func TestRangePositionNotCollapsed(t *testing.T) {
	doc, root := setup(t, "<p>foo</p>")
	r := doc.CreateRange()
	r.SelectNodeContents(at(root, 0))
	if _, err := RangePosition(r, at(root, 0)); !errors.Is(err, ErrNotCollapsed) {
		t.Errorf("expected ErrNotCollapsed, got %v", err)
	}
}

func TestLeafRange(t *testing.T) {
	doc, root := setup(t, "<p><b>foo</b><br></p>")
	r := doc.CreateRange()
	r.SelectNodeContents(at(root, 0))

	leaf := LeafRange(r)
	if leaf.StartContainer() != at(root, 0, 0, 0) || leaf.StartOffset() != 0 {
		t.Errorf("start at %v:%d", leaf.StartContainer(), leaf.StartOffset())
	}
	// the trailing br is a childless element and stays addressed from its parent
	if leaf.EndContainer() != at(root, 0) || leaf.EndOffset() != 2 {
		t.Errorf("end at %v:%d", leaf.EndContainer(), leaf.EndOffset())
	}
}

func TestSplitAt(t *testing.T) {
	doc, root := setup(t, "<p>ab<i>cd</i></p>")
	collapse(t, doc, at(root, 0, 1, 0), 1)

	left, right, err := SplitAt(at(root, 0), doc.GetSelection().Range())
	if err != nil {
		t.Fatalf("SplitAt failed: %v", err)
	}
	if got := left.FirstChild().AsElement().OuterHTML(); got != "<p>ab<i>c</i></p>" {
		t.Errorf("left %q", got)
	}
	if got := right.FirstChild().AsElement().OuterHTML(); got != "<p><i>d</i></p>" {
		t.Errorf("right %q", got)
	}
	if got := root.InnerHTML(); got != "<p>ab<i>cd</i></p>" {
		t.Errorf("tree changed: %q", got)
	}
}
