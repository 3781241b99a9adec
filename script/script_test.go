package script

import (
	"errors"
	"reflect"
	"testing"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/tokenizer"
)

const mentions = `
function match(text) {
	var out = [], re = /@\w+/g, m;
	while ((m = re.exec(text)) !== null) {
		out.push({index: m.index, text: m[0], type: "mention", replaceOnEnter: true, replaceWith: "<b>" + m[0] + "</b>"});
	}
	return out;
}
`

func TestLoadErrors(t *testing.T) {
	if _, err := Load("empty.js", "var x = 1;"); !errors.Is(err, ErrNoMatchFunction) {
		t.Errorf("got %v, want ErrNoMatchFunction", err)
	}
	if _, err := Load("broken.js", "function match(text) {"); err == nil {
		t.Error("expected a syntax error")
	}
	if _, err := Load("throws.js", "throw new Error('boom');"); err == nil {
		t.Error("expected the top level exception to be returned")
	}
}

func TestMatch(t *testing.T) {
	m, err := Load("mentions.js", mentions)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		text string
		want []Result
	}{
		{"hi @ann", []Result{{Index: 3, Text: "@ann", Type: "mention", ReplaceOnEnter: true, ReplaceWith: "<b>@ann</b>"}}},
		{"é @bo", []Result{{Index: 3, Text: "@bo", Type: "mention", ReplaceOnEnter: true, ReplaceWith: "<b>@bo</b>"}}},
		{"nobody", nil},
	}
	for _, tt := range tests {
		got, err := m.Match(tt.text)
		if err != nil {
			t.Fatalf("Match(%q) failed: %v", tt.text, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Match(%q) = %+v, want %+v", tt.text, got, tt.want)
		}
	}
}

func TestMatchErrors(t *testing.T) {
	m, err := Load("throws.js", "function match(text) { throw new Error('boom'); }")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := m.Match("x"); err == nil {
		t.Fatal("expected the exception to be returned")
	}

	m2, err := Load("object.js", "function match(text) { return 42; }")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := m2.Match("x"); err == nil {
		t.Fatal("expected an error for a non-array result")
	}
	if len(m.Errors()) != 1 || len(m2.Errors()) != 1 {
		t.Errorf("errors recorded: %v, %v", m.Errors(), m2.Errors())
	}
}

func TestMisplacedMatchesAreDropped(t *testing.T) {
	m, err := Load("off.js", `function match(text) { return [{index: 1, text: "zz"}, {index: 99, text: "a"}]; }`)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, err := m.Match("abc")
	if err != nil || len(got) != 0 {
		t.Errorf("got %v, %v; want no results", got, err)
	}
}

func TestAttach(t *testing.T) {
	doc := dom.NewDocument()
	root := doc.CreateElement("div")
	doc.AsNode().AppendChild(root.AsNode())
	if err := root.SetInnerHTML("<p>hi @ann</p>"); err != nil {
		t.Fatalf("SetInnerHTML failed: %v", err)
	}
	if err := doc.GetSelection().Collapse(root.FirstChild().FirstChild(), 7); err != nil {
		t.Fatalf("Collapse failed: %v", err)
	}

	m, err := Load("mentions.js", mentions)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	tk := tokenizer.New(doc, root, tokenizer.Options{})
	m.Attach(tk)
	tk.Update()

	if allotted := tk.Allotted(); len(allotted) != 1 || allotted[0].Type != "mention" {
		t.Fatalf("allotted %v, want one mention", allotted)
	}
	if !tk.HandleEnter() {
		t.Fatal("Enter inside the mention should be consumed")
	}
	if got, want := root.InnerHTML(), "<p>hi <b>@ann</b></p>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
