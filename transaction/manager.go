// Package transaction funnels every intentional edit of the editor root
// through one place and turns "the tree changed" into undoable operations.
package transaction

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/history"
	"github.com/chrisuehlinger/zeditor/position"
)

// ErrInTransaction is returned by Run when a transaction is already running.
var ErrInTransaction = errors.New("a transaction is already taking place")

// Options configures a Manager.
type Options struct {
	// Limit is the undo history capacity; zero means history.DefaultLimit.
	Limit int
	// Scheduler delivers observed mutation batches. Without one, edits made
	// outside Run are only picked up by Commit or the next transaction.
	Scheduler dom.Scheduler
	Logger    *slog.Logger
}

// Manager records the edits made to root as operations on an undo stack.
// It keeps a last-known-good copy of the content as the diff baseline.
type Manager struct {
	doc   *dom.Document
	root  *dom.Element
	stack *history.Stack

	lkg    *dom.Element
	lkgPos position.Frozen

	inTransaction bool
	observer      *dom.MutationObserver

	onContentChange []func()
	onUndo          []func()

	undoCommand *Command
	redoCommand *Command

	logger *slog.Logger
}

// New creates a manager for root and starts observing it.
func New(doc *dom.Document, root *dom.Element, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		doc:    doc,
		root:   root,
		stack:  history.NewStack(root, opts.Limit),
		logger: logger.With("component", "editor:transaction-manager"),
	}
	m.lkg = m.snapshot()
	m.lkgPos = m.freeze()
	m.undoCommand = &Command{tm: m, direction: -1}
	m.redoCommand = &Command{tm: m, direction: 1}
	m.observer = dom.NewMutationObserver(opts.Scheduler, func(records []dom.MutationRecord, _ *dom.MutationObserver) {
		m.callback(records)
	})
	m.start()
	return m
}

func (m *Manager) start() {
	m.observer.Observe(m.root.AsNode(), dom.ObserveOptions{
		ChildList:     true,
		Attributes:    true,
		CharacterData: true,
		Subtree:       true,
	})
}

// stop commits anything observed so far and disconnects the observer.
func (m *Manager) stop() {
	if records := m.observer.TakeRecords(); len(records) > 0 {
		m.callback(records)
	}
	m.observer.Disconnect()
}

// callback is the commit path for edits that happened outside Run.
func (m *Manager) callback(records []dom.MutationRecord) {
	if !m.changed() {
		return
	}
	m.logger.Debug("committing observed mutations", "records", len(records))
	current := m.snapshot()
	currentPos := m.freeze()
	op := history.NewUnknown(m.lkg, m.lkgPos, current, currentPos)
	m.lkg, m.lkgPos = current, currentPos
	m.stack.Push(op)
	m.emit(m.onContentChange)
}

// Commit records any pending observed edits immediately instead of waiting
// for the scheduler.
func (m *Manager) Commit() {
	if m.inTransaction {
		return
	}
	m.stop()
	m.start()
}

// Reset forgets the undo history and takes the current content as the new
// baseline. Pending observed edits are dropped.
func (m *Manager) Reset() {
	m.observer.TakeRecords()
	m.observer.Disconnect()
	m.stack.Clear()
	m.lkg = m.snapshot()
	m.lkgPos = m.freeze()
	m.start()
}

// SelectionChanged refreshes the position stored with the last-known-good
// content, so undo restores the latest caret. It is skipped when the content
// has changed since, as the next commit records the position itself.
func (m *Manager) SelectionChanged() {
	if m.inTransaction || m.changed() {
		return
	}
	m.lkgPos = m.freeze()
}

// Run executes fn as one transaction and pushes the resulting edit as a
// single undo step. If fn fails or panics the content and selection are
// rolled back; the error is returned and a panic is re-raised.
func (m *Manager) Run(fn func() error) error {
	return m.run(func() (history.Operation, error) { return nil, fn() }, false)
}

// RunAndSquash is like Run but merges the edit into the previous undo step.
func (m *Manager) RunAndSquash(fn func() error) error {
	return m.run(func() (history.Operation, error) { return nil, fn() }, true)
}

// RunOp is like Run, but when fn returns an operation that operation is
// recorded instead of a computed snapshot diff. It must describe exactly the
// edit fn performed.
func (m *Manager) RunOp(fn func() (history.Operation, error)) error {
	return m.run(fn, false)
}

func (m *Manager) run(fn func() (history.Operation, error), squash bool) error {
	if m.inTransaction {
		return ErrInTransaction
	}
	m.stop()
	m.inTransaction = true

	op, err := m.invoke(fn)
	if err != nil {
		return err
	}

	var current *dom.Element
	var currentPos position.Frozen
	if op == nil {
		if !m.changed() {
			return nil
		}
		current = m.snapshot()
		currentPos = m.freeze()
		op = history.NewUnknown(m.lkg, m.lkgPos, current, currentPos)
	} else {
		current = m.snapshot()
		currentPos = m.freeze()
	}
	m.lkg, m.lkgPos = current, currentPos
	if squash {
		m.stack.Squash(op)
	} else {
		m.stack.Push(op)
	}
	m.emit(m.onContentChange)
	return nil
}

// invoke calls fn with rollback on failure and always resumes observation.
func (m *Manager) invoke(fn func() (history.Operation, error)) (op history.Operation, err error) {
	defer func() {
		m.inTransaction = false
		m.start()
	}()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Debug("rolling back after panic", "panic", r)
			m.rollback()
			panic(r)
		}
	}()

	op, err = fn()
	if err != nil {
		m.logger.Debug("rolling back after error", "err", err)
		m.rollback()
		return nil, err
	}
	return op, nil
}

// Undo reverts the last undo step. With updateSelection the selection is
// moved to the position the step recorded.
func (m *Manager) Undo(updateSelection bool) (position.Frozen, error) {
	return m.travel(m.stack.Undo, updateSelection)
}

// Redo re-applies the next undo step.
func (m *Manager) Redo(updateSelection bool) (position.Frozen, error) {
	return m.travel(m.stack.Redo, updateSelection)
}

func (m *Manager) travel(step func() (position.Frozen, error), updateSelection bool) (result position.Frozen, err error) {
	m.stop()
	defer m.start()
	defer func() {
		if r := recover(); r != nil {
			m.rollback()
			panic(r)
		}
	}()

	result, err = step()
	if err != nil {
		return result, err
	}
	if updateSelection {
		if r, thawErr := result.Thaw(m.root.AsNode()); thawErr == nil {
			sel := m.doc.GetSelection()
			sel.RemoveAllRanges()
			sel.AddRange(r)
		} else {
			m.logger.Debug("could not restore selection", "err", thawErr)
		}
	}
	m.lkg = m.snapshot()
	m.lkgPos = m.freeze()
	m.emit(m.onUndo)
	m.emit(m.onContentChange)
	return result, nil
}

func (m *Manager) CanUndo() bool { return m.stack.CanUndo() }

func (m *Manager) CanRedo() bool { return m.stack.CanRedo() }

// InTransaction reports whether a Run is executing.
func (m *Manager) InTransaction() bool { return m.inTransaction }

// Stack exposes the underlying undo stack.
func (m *Manager) Stack() *history.Stack { return m.stack }

// OnContentChange registers fn to run after every committed edit, undo and redo.
func (m *Manager) OnContentChange(fn func()) {
	m.onContentChange = append(m.onContentChange, fn)
}

// OnUndo registers fn to run after every undo and redo.
func (m *Manager) OnUndo(fn func()) {
	m.onUndo = append(m.onUndo, fn)
}

func (m *Manager) emit(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}

// UndoCommand returns the command form of Undo.
func (m *Manager) UndoCommand() *Command { return m.undoCommand }

// RedoCommand returns the command form of Redo.
func (m *Manager) RedoCommand() *Command { return m.redoCommand }

// changed compares the root's children with the last-known-good copy.
func (m *Manager) changed() bool {
	current := m.root.ChildNodes()
	lkg := m.lkg.ChildNodes()
	if len(current) != len(lkg) {
		return true
	}
	for i := range current {
		if !current[i].IsEqualNode(lkg[i]) {
			return true
		}
	}
	return false
}

// rollback restores the last-known-good content and selection.
func (m *Manager) rollback() {
	root := m.root.AsNode()
	for root.FirstChild() != nil {
		root.RemoveChild(root.FirstChild())
	}
	lkg := m.lkg.AsNode().CloneNode(true)
	for lkg.FirstChild() != nil {
		root.AppendChild(lkg.FirstChild())
	}
	r, err := m.lkgPos.Thaw(root)
	if err != nil {
		m.logger.Debug("could not restore selection after rollback", "err", err)
		return
	}
	sel := m.doc.GetSelection()
	sel.RemoveAllRanges()
	sel.AddRange(r)
}

func (m *Manager) snapshot() *dom.Element {
	return m.root.AsNode().CloneNode(true).AsElement()
}

// freeze captures the selection relative to the root, defaulting to the
// start of the first child when there is no selection inside it.
func (m *Manager) freeze() position.Frozen {
	root := m.root.AsNode()
	if f := position.Freeze(m.doc.GetSelection().Range(), root); !f.IsZero() {
		return f
	}
	r := m.doc.CreateRange()
	defer r.Detach()
	target := root
	if root.FirstChild() != nil {
		target = root.FirstChild()
	}
	if err := r.SelectNodeContents(target); err != nil {
		panic(fmt.Sprintf("transaction: select root contents: %v", err))
	}
	r.Collapse(true)
	return position.Freeze(r, root)
}
