// Package ui provides an interactive debugger for an editor.
package ui

import (
	"fmt"
	"strings"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/editor"
	"github.com/chrisuehlinger/zeditor/grapheme"
	"github.com/chrisuehlinger/zeditor/input"
	"github.com/chrisuehlinger/zeditor/is"
	"github.com/chrisuehlinger/zeditor/position"
)

// View is what the debugger shows for an editor at one point in time.
type View struct {
	HTML       string
	Serialized string
	Selection  string
	Tokens     []string
	CanUndo    bool
	CanRedo    bool
}

// Session drives one editor from debugger input and keeps a log of it.
type Session struct {
	Editor *editor.Editor
	Title  string

	log []string
}

// NewSession creates a session for ed.
func NewSession(ed *editor.Editor, title string) *Session {
	return &Session{
		Editor: ed,
		Title:  title,
	}
}

// View returns the current state of the editor.
func (s *Session) View() View {
	tm := s.Editor.Transactions()
	v := View{
		HTML:       s.Editor.HTML(),
		Serialized: s.Editor.Serialize(),
		Selection:  describe(position.Freeze(s.Editor.Selection().Range(), s.Editor.Root().AsNode())),
		CanUndo:    tm.CanUndo(),
		CanRedo:    tm.CanRedo(),
	}
	for _, tok := range s.Editor.Tokens().Allotted() {
		v.Tokens = append(v.Tokens, tok.String())
	}
	return v
}

func describe(f position.Frozen) string {
	if f.IsZero() {
		return "none"
	}
	start := fmt.Sprintf("%v:%d", f.StartPath, f.StartOffset)
	if f.Collapsed() {
		return start
	}
	return fmt.Sprintf("%s-%v:%d", start, f.EndPath, f.EndOffset)
}

// Log returns the actions performed so far, oldest first.
func (s *Session) Log() []string {
	return s.log
}

func (s *Session) record(format string, args ...any) {
	s.log = append(s.log, fmt.Sprintf(format, args...))
}

// Type types text into the editor.
func (s *Session) Type(text string) {
	if text == "" {
		return
	}
	s.record("type %q", text)
	s.Editor.Type(text)
}

// Paste pastes text into the editor.
func (s *Session) Paste(text string) {
	s.record("paste %q", text)
	s.Editor.Paste(text)
}

// Key performs a named action: a key such as "enter" or "shift+enter",
// a history step ("undo", "redo") or an editor command such as "bold".
func (s *Session) Key(name string) error {
	s.record("key %s", name)
	switch name {
	case "enter":
		s.Editor.Press(input.Enter, false)
	case "shift+enter":
		s.Editor.Press(input.Enter, true)
	case "backspace":
		s.Editor.Press(input.Backspace, false)
	case "delete":
		s.Editor.Press(input.Delete, false)
	case "escape":
		s.Editor.Press(input.Escape, false)
	case "left":
		s.MoveCaret(-1)
	case "right":
		s.MoveCaret(1)
	case "undo":
		return s.Editor.Undo()
	case "redo":
		return s.Editor.Redo()
	default:
		return s.Editor.Execute(name)
	}
	return nil
}

// MoveCaret moves the caret delta characters through the text of the
// editor, collapsing any selection first.
func (s *Session) MoveCaret(delta int) {
	var texts []*dom.Node
	collect(s.Editor.Root().AsNode(), &texts)
	if len(texts) == 0 {
		return
	}

	r := s.Editor.Selection().Range()
	node, offset := texts[0], 0
	if r != nil {
		node, offset = r.StartContainer(), r.StartOffset()
		if delta > 0 {
			node, offset = r.EndContainer(), r.EndOffset()
		}
	}
	index := indexOf(texts, node)
	if index == -1 {
		// the caret sits between elements, start from the closest text
		index = 0
		for i, t := range texts {
			if dom.ComparePoints(t, 0, node, offset) <= 0 {
				index = i
			}
		}
		node, offset = texts[index], 0
	}

	for ; delta != 0; delta -= sign(delta) {
		value := node.NodeValue()
		switch {
		case delta < 0 && offset > 0:
			offset -= grapheme.Before(value, offset)
		case delta < 0 && index > 0:
			index--
			node = texts[index]
			offset = len(node.NodeValue())
		case delta > 0 && offset < len(value):
			offset += grapheme.After(value, offset)
		case delta > 0 && index < len(texts)-1:
			index++
			node, offset = texts[index], 0
		default:
			delta = sign(delta)
		}
	}
	if err := s.Editor.Select(node, offset); err != nil {
		s.record("select failed: %v", err)
	}
}

func collect(n *dom.Node, texts *[]*dom.Node) {
	if is.Text(n) {
		*texts = append(*texts, n)
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		collect(c, texts)
	}
}

func indexOf(nodes []*dom.Node, node *dom.Node) int {
	for i, n := range nodes {
		if n == node {
			return i
		}
	}
	return -1
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}

// Summary renders v as plain text.
func (v View) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "selection: %s\n", v.Selection)
	fmt.Fprintf(&b, "undo: %t redo: %t\n", v.CanUndo, v.CanRedo)
	if len(v.Tokens) > 0 {
		fmt.Fprintf(&b, "tokens: %s\n", strings.Join(v.Tokens, " "))
	}
	return b.String()
}
