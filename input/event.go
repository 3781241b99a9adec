package input

import "github.com/chrisuehlinger/zeditor/dom"

// Key is a legacy keyCode value as delivered with key events.
type Key int

const (
	Backspace Key = 8
	Enter     Key = 13
	Escape    Key = 27
	Space     Key = 32
	Left      Key = 37
	Up        Key = 38
	Right     Key = 39
	Down      Key = 40
	Delete    Key = 46
)

// KeyEvent is a keyboard, composition or paste event delivered by the host.
// For keypress events Key carries the character code.
type KeyEvent struct {
	Key                    Key
	Shift, Alt, Ctrl, Meta bool
	// Target is the node the event was dispatched to. Nil means the editor root.
	Target *dom.Node

	defaultPrevented bool
}

// PreventDefault cancels the host's default handling of the event.
func (e *KeyEvent) PreventDefault() { e.defaultPrevented = true }

func (e *KeyEvent) DefaultPrevented() bool { return e.defaultPrevented }

func (e *KeyEvent) modified() bool { return e.Shift || e.Alt || e.Ctrl || e.Meta }

func (e *KeyEvent) command() bool { return e.Alt || e.Ctrl || e.Meta }
