package history

import (
	"errors"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/position"
)

// DefaultLimit is the stack capacity used when none is given.
const DefaultLimit = 100

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Stack is a linear undo/redo history. Entries left of the cursor can be
// undone, entries right of it redone.
type Stack struct {
	root    *dom.Element
	entries []Operation
	index   int
	max     int
}

// NewStack creates a stack applying operations to root. A max of zero or
// less means DefaultLimit.
func NewStack(root *dom.Element, max int) *Stack {
	if max <= 0 {
		max = DefaultLimit
	}
	return &Stack{root: root, max: max}
}

// Push discards every entry after the cursor, appends op and evicts the
// oldest entries beyond capacity.
func (s *Stack) Push(op Operation) {
	s.entries = append(s.entries[:s.index], op)
	s.index++
	if over := s.index - s.max; over > 0 {
		clear(s.entries[:over])
		s.entries = s.entries[over:]
		s.index -= over
	}
}

// Squash merges op into the entry just before the cursor, or pushes it when
// there is none.
func (s *Stack) Squash(op Operation) {
	if s.index == 0 {
		s.Push(op)
		return
	}
	s.entries[s.index-1] = NewComposite(s.entries[s.index-1], op)
}

// Clear drops every entry.
func (s *Stack) Clear() {
	clear(s.entries)
	s.entries = s.entries[:0]
	s.index = 0
}

// Undo moves the cursor back and reverts that entry.
func (s *Stack) Undo() (position.Frozen, error) {
	if s.index == 0 {
		return position.Frozen{}, ErrNothingToUndo
	}
	s.index--
	return s.entries[s.index].Undo(s.root), nil
}

// Redo re-applies the entry at the cursor and moves the cursor forward.
func (s *Stack) Redo() (position.Frozen, error) {
	if s.index == len(s.entries) {
		return position.Frozen{}, ErrNothingToRedo
	}
	op := s.entries[s.index]
	s.index++
	return op.Redo(s.root), nil
}

func (s *Stack) CanUndo() bool { return s.index > 0 }

func (s *Stack) CanRedo() bool { return s.index < len(s.entries) }

// Len returns the number of entries.
func (s *Stack) Len() int { return len(s.entries) }

// Index returns the cursor.
func (s *Stack) Index() int { return s.index }
