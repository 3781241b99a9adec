package command

import (
	"testing"

	"github.com/chrisuehlinger/zeditor/dom"
)

type fakeCommand struct {
	enabled  bool
	executed int
}

func (c *fakeCommand) Execute(*dom.Range) error { c.executed++; return nil }
func (c *fakeCommand) QueryEnabled() bool       { return c.enabled }
func (c *fakeCommand) QueryState() bool         { return false }

// directRunner runs mutations without history.
type directRunner struct{ runs int }

func (d *directRunner) Run(fn func() error) error { d.runs++; return fn() }

func TestCombo(t *testing.T) {
	tests := []struct {
		code                   int
		ctrl, meta, alt, shift bool
		want                   string
	}{
		{'Z', true, false, false, false, "mod+z"},
		{'Z', false, true, false, true, "mod+shift+z"},
		{'D', false, false, true, true, "alt+shift+d"},
		{'1', true, false, false, false, "mod+1"},
		{219, true, false, false, false, "mod+["},
		{'Z', false, false, false, false, ""},
		{13, true, false, false, false, ""},
	}
	for _, tt := range tests {
		if got := Combo(tt.code, tt.ctrl, tt.meta, tt.alt, tt.shift); got != tt.want {
			t.Errorf("Combo(%d, %v, %v, %v, %v) = %q, want %q", tt.code, tt.ctrl, tt.meta, tt.alt, tt.shift, got, tt.want)
		}
	}
}

func TestDispatch(t *testing.T) {
	reg := NewRegistry(nil)
	undo := &fakeCommand{enabled: true}
	redo := &fakeCommand{enabled: false}
	reg.Register("undo", undo)
	reg.Register("redo", redo)
	shortcuts := DefaultShortcuts()

	if matched, err := reg.Dispatch(shortcuts, "mod+z"); !matched || err != nil || undo.executed != 1 {
		t.Errorf("mod+z: matched %v err %v executed %d", matched, err, undo.executed)
	}
	if matched, _ := reg.Dispatch(shortcuts, "mod+shift+z"); !matched || redo.executed != 0 {
		t.Errorf("disabled command must match without executing, executed %d", redo.executed)
	}
	if matched, _ := reg.Dispatch(shortcuts, "mod+b"); matched {
		t.Error("shortcut for an unregistered command must not match")
	}
	if matched, _ := reg.Dispatch(shortcuts, "mod+q"); matched {
		t.Error("unbound combination must not match")
	}
	if err := reg.Execute("nope", nil); err == nil {
		t.Error("expected an error for an undefined command")
	}
	if got := reg.Names(); len(got) != 2 || got[0] != "redo" {
		t.Errorf("Names() = %v", got)
	}
}

func TestWrap(t *testing.T) {
	doc := dom.NewDocument()
	root := doc.CreateElement("div")
	doc.AsNode().AppendChild(root.AsNode())
	root.SetInnerHTML("<p>make this bold</p>")
	text := root.FirstChild().FirstChild()

	runner := &directRunner{}
	bold := NewWrap(doc, runner, "strong")
	if bold.QueryEnabled() {
		t.Fatal("no selection, command should be disabled")
	}
	doc.GetSelection().SetBaseAndExtent(text, 5, text, 9)
	if err := bold.Execute(nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := root.InnerHTML(); got != "<p>make <strong>this</strong> bold</p>" {
		t.Errorf("got %q", got)
	}
	if runner.runs != 1 {
		t.Errorf("expected one transaction, got %d", runner.runs)
	}
	if !bold.QueryState() {
		t.Error("selection inside strong should report state")
	}

	doc.GetSelection().Collapse(text, 0)
	if err := bold.Execute(nil); err != nil || runner.runs != 1 {
		t.Error("collapsed selection must not run a transaction")
	}
}

func TestWrapAcrossElements(t *testing.T) {
	doc := dom.NewDocument()
	root := doc.CreateElement("div")
	doc.AsNode().AppendChild(root.AsNode())
	root.SetInnerHTML("<p>ab<i>cd</i></p>")
	p := root.FirstChild()

	r := doc.CreateRange()
	r.SetStart(p.FirstChild(), 1)
	r.SetEnd(p.LastChild().FirstChild(), 1)
	if err := NewWrap(doc, &directRunner{}, "em").Execute(r); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := root.InnerHTML(); got != "<p>a<em>b<i>c</i></em><i>d</i></p>" {
		t.Errorf("got %q", got)
	}
}
