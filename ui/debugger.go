package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/chrisuehlinger/zeditor/editor"
)

// Debugger is a window that drives an editor and shows its content,
// serialization and selection after every change.
type Debugger struct {
	app     fyne.App
	window  fyne.Window
	session *Session

	// Input
	entry    *widget.Entry
	undoBtn  *widget.Button
	redoBtn  *widget.Button
	pasteBtn *widget.Button

	// Output
	html       *widget.Entry
	serialized *widget.Entry
	status     *widget.Label
	log        *widget.Label

	logger *slog.Logger
}

// NewDebugger creates the debugger window for ed.
func NewDebugger(ed *editor.Editor, title string, logger *slog.Logger) *Debugger {
	if logger == nil {
		logger = slog.Default()
	}
	a := app.New()
	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(1100, 700))

	d := &Debugger{
		app:     a,
		window:  w,
		session: NewSession(ed, title),
		logger:  logger.With("component", "editor:debugger"),
	}
	d.setupUI()
	d.setupKeyboardShortcuts()
	ed.OnChange(d.refresh)
	d.refresh()
	return d
}

func (d *Debugger) setupUI() {
	d.entry = widget.NewEntry()
	d.entry.SetPlaceHolder("Type text and press Enter")
	d.entry.OnSubmitted = func(text string) {
		d.session.Type(text)
		d.entry.SetText("")
		d.refresh()
	}
	d.pasteBtn = widget.NewButtonWithIcon("", theme.ContentPasteIcon(), func() {
		d.session.Paste(d.entry.Text)
		d.entry.SetText("")
		d.refresh()
	})

	d.undoBtn = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() { d.key("undo") })
	d.redoBtn = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), func() { d.key("redo") })

	keys := container.NewHBox(
		widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { d.key("left") }),
		widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { d.key("right") }),
		widget.NewButton("Enter", func() { d.key("enter") }),
		widget.NewButton("Shift+Enter", func() { d.key("shift+enter") }),
		widget.NewButton("Backspace", func() { d.key("backspace") }),
		widget.NewButton("Delete", func() { d.key("delete") }),
		widget.NewButton("Esc", func() { d.key("escape") }),
		widget.NewButton("B", func() { d.key("bold") }),
		widget.NewButton("I", func() { d.key("italic") }),
		widget.NewButton("U", func() { d.key("underline") }),
		widget.NewButton("S", func() { d.key("strikethrough") }),
	)

	inputBar := container.NewBorder(nil, nil,
		container.NewHBox(d.undoBtn, d.redoBtn),
		d.pasteBtn,
		d.entry,
	)

	d.html = output()
	d.serialized = output()
	d.status = widget.NewLabel("")
	d.log = widget.NewLabel("")
	d.log.Wrapping = fyne.TextWrapWord

	panes := container.NewHSplit(
		container.NewBorder(widget.NewLabel("Content"), nil, nil, nil, d.html),
		container.NewBorder(widget.NewLabel("Serialized"), nil, nil, nil, d.serialized),
	)
	side := container.NewVScroll(d.log)
	side.SetMinSize(fyne.NewSize(240, 0))

	d.window.SetContent(container.NewBorder(
		container.NewVBox(inputBar, keys),
		d.status,
		nil,
		side,
		panes,
	))
}

// output creates a read-only monospace text area.
func output() *widget.Entry {
	e := widget.NewMultiLineEntry()
	e.TextStyle = fyne.TextStyle{Monospace: true}
	e.Wrapping = fyne.TextWrapBreak
	e.Disable()
	return e
}

func (d *Debugger) setupKeyboardShortcuts() {
	shortcut := func(key fyne.KeyName, mod fyne.KeyModifier, action string) {
		d.window.Canvas().AddShortcut(&desktop.CustomShortcut{
			KeyName:  key,
			Modifier: mod,
		}, func(_ fyne.Shortcut) {
			d.key(action)
		})
	}
	shortcut(fyne.KeyZ, fyne.KeyModifierControl, "undo")
	shortcut(fyne.KeyZ, fyne.KeyModifierControl|fyne.KeyModifierShift, "redo")
	shortcut(fyne.KeyY, fyne.KeyModifierControl, "redo")
	shortcut(fyne.KeyB, fyne.KeyModifierControl, "bold")
	shortcut(fyne.KeyI, fyne.KeyModifierControl, "italic")
	shortcut(fyne.KeyU, fyne.KeyModifierControl, "underline")
	shortcut(fyne.KeyReturn, fyne.KeyModifierShift, "shift+enter")
}

func (d *Debugger) key(name string) {
	if err := d.session.Key(name); err != nil {
		d.logger.Debug("action failed", "action", name, "err", err)
	}
	d.refresh()
}

// refresh redraws the output panes from the current editor state.
func (d *Debugger) refresh() {
	v := d.session.View()
	d.html.SetText(v.HTML)
	d.serialized.SetText(v.Serialized)
	d.status.SetText(v.Summary())

	if v.CanUndo {
		d.undoBtn.Enable()
	} else {
		d.undoBtn.Disable()
	}
	if v.CanRedo {
		d.redoBtn.Enable()
	} else {
		d.redoBtn.Disable()
	}

	entries := d.session.Log()
	if len(entries) > 50 {
		entries = entries[len(entries)-50:]
	}
	text := ""
	for _, entry := range entries {
		text += entry + "\n"
	}
	d.log.SetText(text)
}

// Run shows the window and blocks until it is closed.
func (d *Debugger) Run() {
	d.window.SetOnClosed(d.session.Editor.Close)
	d.window.ShowAndRun()
}
