package block

import (
	"testing"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/is"
)

type recorder struct {
	HTML
	destroyed bool
}

func (r *recorder) Destroy() { r.destroyed = true }

func setup(t *testing.T) (*dom.Document, *dom.Element, *Registry) {
	t.Helper()
	doc := dom.NewDocument()
	root := doc.CreateElement("div")
	doc.AsNode().AppendChild(root.AsNode())
	if err := root.SetInnerHTML("<p>a</p>"); err != nil {
		t.Fatalf("SetInnerHTML failed: %v", err)
	}
	return doc, root, NewRegistry(doc, nil)
}

func TestInsert(t *testing.T) {
	_, root, reg := setup(t)
	b := NewHTML("<iframe></iframe>")
	el := reg.Insert(b)
	root.AppendChild(el.AsNode())

	if !is.EmptyOverlayReference(el.AsNode()) {
		t.Fatalf("placeholder %q is not an empty reference", el.OuterHTML())
	}
	if b.Placeholder() != el {
		t.Error("block was not bound to its placeholder")
	}
	got, ok := reg.Lookup(el)
	if !ok || got != b {
		t.Errorf("Lookup = %v, %v", got, ok)
	}
	if reg.Element(root, el.GetAttribute("data-id")) != el {
		t.Error("Element did not find the placeholder")
	}
}

func TestLookupSurvivesCloning(t *testing.T) {
	_, root, reg := setup(t)
	b := NewHTML("x")
	el := reg.Insert(b)
	root.AppendChild(el.AsNode())

	clone := root.AsNode().CloneNode(true).AsElement()
	if got, ok := reg.Lookup(clone.LastElementChild()); !ok || got != b {
		t.Errorf("Lookup on a cloned placeholder = %v, %v", got, ok)
	}
	if _, ok := reg.Lookup(root.FirstElementChild()); ok {
		t.Error("a paragraph should not resolve to a block")
	}
}

func TestSweep(t *testing.T) {
	_, root, reg := setup(t)
	kept, gone := &recorder{}, &recorder{}
	root.AppendChild(reg.Insert(kept).AsNode())
	reg.Insert(gone)

	if n := reg.Sweep(root); n != 1 {
		t.Errorf("Sweep destroyed %d blocks, want 1", n)
	}
	if kept.destroyed || !gone.destroyed {
		t.Errorf("kept destroyed: %v, gone destroyed: %v", kept.destroyed, gone.destroyed)
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}

	reg.DestroyAll()
	if !kept.destroyed || reg.Len() != 0 {
		t.Error("DestroyAll left blocks behind")
	}
}
