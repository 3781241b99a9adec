package transaction

import (
	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/position"
)

// Command exposes Undo or Redo through the generic command capability.
type Command struct {
	tm        *Manager
	direction int
}

// Execute undoes or redoes one step. When r is given the selection is left
// alone and r is moved to the restored position instead.
func (c *Command) Execute(r *dom.Range) error {
	rangePresent := r != nil
	var fr position.Frozen
	var err error
	if c.direction < 0 {
		fr, err = c.tm.Undo(!rangePresent)
	} else {
		fr, err = c.tm.Redo(!rangePresent)
	}
	if err != nil || !rangePresent {
		return err
	}
	thawed, err := fr.Thaw(c.tm.root.AsNode())
	if err != nil {
		c.tm.logger.Debug("could not thaw position into range", "err", err)
		return nil
	}
	defer thawed.Detach()
	if err := r.SetStart(thawed.StartContainer(), thawed.StartOffset()); err != nil {
		return err
	}
	return r.SetEnd(thawed.EndContainer(), thawed.EndOffset())
}

// QueryEnabled reports whether there is a step to undo or redo.
func (c *Command) QueryEnabled() bool {
	if c.direction < 0 {
		return c.tm.CanUndo()
	}
	return c.tm.CanRedo()
}

// QueryState is always false for history commands.
func (c *Command) QueryState() bool { return false }
