// Package editor wires the editing components to one document and plays
// the part of the host surface: it delivers events, performs the default
// editing the host would do when an event is not cancelled and drives the
// event loop.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chrisuehlinger/zeditor/block"
	"github.com/chrisuehlinger/zeditor/command"
	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/eventloop"
	"github.com/chrisuehlinger/zeditor/input"
	"github.com/chrisuehlinger/zeditor/is"
	"github.com/chrisuehlinger/zeditor/links"
	"github.com/chrisuehlinger/zeditor/normalizer"
	"github.com/chrisuehlinger/zeditor/script"
	"github.com/chrisuehlinger/zeditor/serializer"
	"github.com/chrisuehlinger/zeditor/tokenizer"
	"github.com/chrisuehlinger/zeditor/transaction"
)

// ErrUnknownCommand is returned by Execute for names without a command.
var ErrUnknownCommand = errors.New("editor: unknown command")

// Options configures an Editor.
type Options struct {
	// HistoryLimit is the undo capacity; zero means the default of 100.
	HistoryLimit int
	Logger       *slog.Logger
	// Shortcuts replaces the default key bindings when not nil.
	Shortcuts command.Shortcuts
	// Matchers are script plugins added to the tokenizer next to the links plugin.
	Matchers []*script.Matcher
	// Loop is the event loop to run on. A new one is created when nil.
	Loop *eventloop.Loop
}

// Editor is one editable document.
type Editor struct {
	doc  *dom.Document
	root *dom.Element
	loop *eventloop.Loop

	tm         *transaction.Manager
	normalizer *normalizer.Normalizer
	input      *input.Normalizer
	tokens     *tokenizer.Tokenizer
	blocks     *block.Registry
	serializer *serializer.Serializer
	commands   *command.Registry
	shortcuts  command.Shortcuts

	selectionPending bool
	onChange         []func()

	logger *slog.Logger
}

// New creates an editor holding markup. The loaded content is normalized
// and is not part of the undo history.
func New(markup string, opts Options) (*Editor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loop := opts.Loop
	if loop == nil {
		loop = eventloop.New()
	}
	shortcuts := opts.Shortcuts
	if shortcuts == nil {
		shortcuts = command.DefaultShortcuts()
	}

	doc := dom.NewDocument()
	root := doc.CreateElement("div")
	root.SetClassName("editor")
	root.SetAttribute("contenteditable", "true")
	doc.AsNode().AppendChild(root.AsNode())

	e := &Editor{
		doc:       doc,
		root:      root,
		loop:      loop,
		shortcuts: shortcuts,
		logger:    logger.With("component", "editor:editor"),
	}

	// the transaction manager observes first, so edits made outside a
	// transaction are committed before the normalizer squashes its fixes
	e.tm = transaction.New(doc, root, transaction.Options{
		Limit:     opts.HistoryLimit,
		Scheduler: loop,
		Logger:    logger,
	})
	e.normalizer = normalizer.New(root, normalizer.Options{
		Transactions: e.tm,
		Scheduler:    loop,
		Logger:       logger,
	})
	e.tokens = tokenizer.New(doc, root, tokenizer.Options{
		Transactions: e.tm,
		Timers:       loop,
		Logger:       logger,
	})
	e.input = input.New(doc, root, input.Options{
		Transactions: e.tm,
		Tokens:       e.tokens,
		Scheduler:    loop,
		Logger:       logger,
	})
	e.blocks = block.NewRegistry(doc, logger)
	e.serializer = serializer.New(e.blocks, logger)

	links.Attach(e.tokens, logger)
	for _, m := range opts.Matchers {
		m.SetLogger(logger)
		m.Attach(e.tokens)
	}

	e.commands = command.NewRegistry(logger)
	e.commands.Register("undo", e.tm.UndoCommand())
	e.commands.Register("redo", e.tm.RedoCommand())
	for name, tag := range map[string]string{
		"bold":          "strong",
		"italic":        "em",
		"underline":     "u",
		"strikethrough": "del",
	} {
		e.commands.Register(name, command.NewWrap(doc, e.tm, tag))
	}

	e.tm.OnContentChange(e.contentChanged)
	e.normalizer.OnNormalized(e.checkEmpty)
	doc.GetSelection().OnChange(e.selectionChanged)

	if err := e.load(markup); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Editor) load(markup string) error {
	if err := e.root.SetInnerHTML(strings.TrimSpace(markup)); err != nil {
		return fmt.Errorf("editor: parse content: %w", err)
	}
	// whitespace between the blocks of the source markup is not content
	for _, c := range e.root.ChildNodes() {
		if is.Text(c) && strings.TrimSpace(c.NodeValue()) == "" {
			c.Remove()
		}
	}
	e.normalizer.Normalize("load", nil, nil)
	if first := e.root.FirstChild(); first != nil {
		e.doc.GetSelection().Collapse(first, 0)
	}
	e.tokens.Update()
	e.tokens.HandleLoad()
	e.tm.Reset()
	e.checkEmpty()
	e.Tick()
	return nil
}

// Tick runs every pending microtask and due timer.
func (e *Editor) Tick() {
	e.loop.Drain()
}

// OnChange registers fn to run after every committed edit, undo and redo.
func (e *Editor) OnChange(fn func()) {
	e.onChange = append(e.onChange, fn)
}

func (e *Editor) contentChanged() {
	e.checkEmpty()
	e.normalizeSelection()
	e.tokens.RequestUpdate()
	for _, fn := range e.onChange {
		fn()
	}
}

// SelectionChanged tells the editor the selection moved. Changes made
// through the selection methods are picked up on their own.
func (e *Editor) SelectionChanged() {
	e.selectionChanged()
	e.Tick()
}

// selectionChanged defers handling by one timer tick, coalescing bursts.
func (e *Editor) selectionChanged() {
	if e.selectionPending {
		return
	}
	e.selectionPending = true
	e.loop.SetTimeout(func() {
		e.selectionPending = false
		e.normalizeSelection()
		e.tm.SelectionChanged()
		e.tokens.SelectionChanged()
	}, 0)
}

// normalizeSelection moves range boundaries sitting on the root itself into
// the adjacent child.
func (e *Editor) normalizeSelection() {
	r := e.doc.GetSelection().Range()
	root := e.root.AsNode()
	if r == nil || root.FirstChild() == nil {
		return
	}
	if r.StartContainer() != root && r.EndContainer() != root {
		return
	}
	moved := e.doc.CreateRange()
	moved.SetStart(r.StartContainer(), r.StartOffset())
	moved.SetEnd(r.EndContainer(), r.EndOffset())
	if r.StartContainer() == root {
		if child := root.ChildAt(r.StartOffset()); child != nil {
			moved.SetStart(child, 0)
		} else {
			moved.SetStart(root.LastChild(), root.LastChild().Length())
		}
	}
	if r.EndContainer() == root {
		if child := root.ChildAt(r.EndOffset()); child != nil {
			moved.SetEnd(child, 0)
		} else {
			moved.SetEnd(root.LastChild(), root.LastChild().Length())
		}
	}
	sel := e.doc.GetSelection()
	sel.RemoveAllRanges()
	sel.AddRange(moved)
}

// IsEmpty reports whether the editor shows no content. Lists, quotes,
// images and blocks count as content even without text.
func (e *Editor) IsEmpty() bool {
	if e.root.AsNode().ChildCount() >= 2 {
		return false
	}
	visual := e.root.QueryAll(func(el *dom.Element) bool {
		return el.Is("blockquote", "code", "img", "ol", "ul") || is.OverlayReference(el.AsNode())
	})
	if len(visual) > 0 {
		return false
	}
	text := e.root.TextContent()
	return text == "" || text == "\u200b"
}

// checkEmpty toggles the placeholder class on the root.
func (e *Editor) checkEmpty() {
	empty := e.IsEmpty()
	if empty == e.root.HasClass("show-placeholder") {
		return
	}
	if empty {
		e.root.SetClassName(e.root.ClassName() + " show-placeholder")
	} else {
		e.root.SetClassName(strings.TrimSpace(strings.ReplaceAll(e.root.ClassName(), "show-placeholder", "")))
	}
}

// KeyDown delivers a keydown event. Bound shortcuts run their command;
// everything else goes through the input normalizer and, when not
// cancelled, the default editing.
func (e *Editor) KeyDown(ev *input.KeyEvent) {
	defer e.Tick()
	if combo := command.Combo(int(ev.Key), ev.Ctrl, ev.Meta, ev.Alt, ev.Shift); combo != "" {
		handled, err := e.commands.Dispatch(e.shortcuts, combo)
		if err != nil {
			e.logger.Debug("shortcut failed", "combo", combo, "err", err)
		}
		if handled {
			ev.PreventDefault()
			return
		}
	}
	e.input.KeyDown(ev)
	if ev.DefaultPrevented() {
		return
	}
	switch ev.Key {
	case input.Backspace:
		e.deleteBackward()
	case input.Delete:
		e.deleteForward()
	case input.Enter:
		e.deleteSelection()
	}
}

// KeyPress delivers a keypress event; Key is the character code. Unless
// cancelled the character is inserted at the caret.
func (e *Editor) KeyPress(ev *input.KeyEvent) {
	defer e.Tick()
	e.input.KeyPress(ev)
	if ev.DefaultPrevented() || ev.Ctrl || ev.Meta || ev.Alt {
		return
	}
	if ev.Key == input.Space {
		e.tokens.HandleSpace()
	}
	e.insertText(string(rune(ev.Key)))
}

// Type delivers text one character at a time, as keypress events. A
// newline is sent as an Enter keydown.
func (e *Editor) Type(text string) {
	for _, r := range text {
		if r == '\n' {
			e.KeyDown(&input.KeyEvent{Key: input.Enter})
			continue
		}
		e.KeyPress(&input.KeyEvent{Key: input.Key(r)})
	}
}

// Press delivers a keydown for key.
func (e *Editor) Press(key input.Key, shift bool) {
	e.KeyDown(&input.KeyEvent{Key: key, Shift: shift})
}

// CompositionStart starts an IME composition. Normalization waits until
// CompositionEnd.
func (e *Editor) CompositionStart() {
	defer e.Tick()
	e.normalizer.CompositionStart()
	e.input.CompositionStart(&input.KeyEvent{})
}

// CompositionEnd inserts the composed text and normalizes once.
func (e *Editor) CompositionEnd(text string) {
	defer e.Tick()
	e.insertText(text)
	e.normalizer.CompositionEnd()
}

// Paste inserts plain text at the caret. Newlines become line breaks.
func (e *Editor) Paste(text string) {
	defer e.Tick()
	ev := &input.KeyEvent{}
	e.input.Paste(ev)
	if ev.DefaultPrevented() {
		return
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			e.insertNode(e.doc.CreateElement("br").AsNode())
		}
		if line != "" {
			e.insertText(line)
		}
	}
}

// Select collapses the selection at (node, offset).
func (e *Editor) Select(node *dom.Node, offset int) error {
	defer e.Tick()
	return e.doc.GetSelection().Collapse(node, offset)
}

// SelectRange selects from (anchor, anchorOffset) to (focus, focusOffset).
func (e *Editor) SelectRange(anchor *dom.Node, anchorOffset int, focus *dom.Node, focusOffset int) error {
	defer e.Tick()
	return e.doc.GetSelection().SetBaseAndExtent(anchor, anchorOffset, focus, focusOffset)
}

// Undo reverts the last edit and restores the caret it recorded.
func (e *Editor) Undo() error {
	defer e.Tick()
	_, err := e.tm.Undo(true)
	return err
}

// Redo re-applies the last undone edit.
func (e *Editor) Redo() error {
	defer e.Tick()
	_, err := e.tm.Redo(true)
	return err
}

// Execute runs the named command on the selection.
func (e *Editor) Execute(name string) error {
	defer e.Tick()
	if _, ok := e.commands.Get(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return e.commands.Execute(name, nil)
}

// InsertBlock places b after the root level block holding the caret,
// replacing it when it is an empty paragraph, and puts the caret on it.
func (e *Editor) InsertBlock(b block.Block) error {
	defer e.Tick()
	el := e.blocks.Insert(b)
	root := e.root.AsNode()
	node := e.doc.GetSelection().FocusNode()
	for node != nil && node.ParentNode() != root {
		node = node.ParentNode()
	}
	if node == nil {
		node = root.FirstChild()
	}
	return e.tm.Run(func() error {
		switch {
		case node == nil:
			root.AppendChild(el.AsNode())
		case is.EmptyParagraph(node):
			root.InsertBefore(el.AsNode(), node)
			node.Remove()
		default:
			root.InsertBefore(el.AsNode(), node.NextSibling())
		}
		return e.doc.GetSelection().Collapse(el.AsNode(), 0)
	})
}

// HTML returns the live markup of the content, temporary nodes included.
func (e *Editor) HTML() string {
	return e.root.InnerHTML()
}

// Serialize returns the markup to persist.
func (e *Editor) Serialize() string {
	return e.serializer.SerializeRoot(e.root)
}

// Close destroys the embedded blocks.
func (e *Editor) Close() {
	e.blocks.DestroyAll()
}

func (e *Editor) Document() *dom.Document            { return e.doc }
func (e *Editor) Root() *dom.Element                 { return e.root }
func (e *Editor) Loop() *eventloop.Loop              { return e.loop }
func (e *Editor) Commands() *command.Registry        { return e.commands }
func (e *Editor) Shortcuts() command.Shortcuts       { return e.shortcuts }
func (e *Editor) Blocks() *block.Registry            { return e.blocks }
func (e *Editor) Tokens() *tokenizer.Tokenizer       { return e.tokens }
func (e *Editor) Transactions() *transaction.Manager { return e.tm }
func (e *Editor) Normalizer() *normalizer.Normalizer { return e.normalizer }
func (e *Editor) Input() *input.Normalizer           { return e.input }
func (e *Editor) Selection() *dom.Selection          { return e.doc.GetSelection() }
