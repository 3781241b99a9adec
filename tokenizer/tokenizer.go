// Package tokenizer keeps a conflict free set of pattern matched tokens
// over the text of the editor. Matchers listen for scans and add tokens;
// tokens are resolved (replaced or excluded) on Enter, Escape, Space,
// unfocus or load, depending on their flags.
package tokenizer

import (
	"log/slog"
	"time"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/is"
)

// Transactions runs tree edits as undo steps.
type Transactions interface {
	Run(fn func() error) error
	RunAndSquash(fn func() error) error
}

// Timers defers a scan to a later tick.
type Timers interface {
	SetTimeout(fn func(), delay time.Duration) int
}

// Listener receives a scanned container together with its extracted text.
type Listener func(container *dom.Node, text string)

// Options configures a Tokenizer.
type Options struct {
	Transactions Transactions
	// Timers coalesces RequestUpdate calls. Without it updates run immediately.
	Timers Timers
	Logger *slog.Logger
}

// Tokenizer owns the allotted tokens of one editor root.
type Tokenizer struct {
	doc  *dom.Document
	root *dom.Element
	tx   Transactions

	timers        Timers
	updatePending bool

	allotted  []*Token
	listeners []Listener
	onRender  []func(allotted []*Token)

	logger *slog.Logger
}

// New creates a tokenizer for root.
func New(doc *dom.Document, root *dom.Element, opts Options) *Tokenizer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tokenizer{
		doc:    doc,
		root:   root,
		tx:     opts.Transactions,
		timers: opts.Timers,
		logger: logger.With("component", "editor:tokenizer"),
	}
}

// OnUpdate registers a matcher. It is called for every scanned container.
func (t *Tokenizer) OnUpdate(fn Listener) {
	t.listeners = append(t.listeners, fn)
}

// OnRender registers fn to receive the allotted tokens after every scan
// and selection change.
func (t *Tokenizer) OnRender(fn func(allotted []*Token)) {
	t.onRender = append(t.onRender, fn)
}

// Allotted returns the current tokens.
func (t *Tokenizer) Allotted() []*Token {
	return t.allotted
}

// Pending reports whether a requested update has not run yet.
func (t *Tokenizer) Pending() bool {
	return t.updatePending
}

// Update drops all tokens and rescans every container.
func (t *Tokenizer) Update() {
	for _, tok := range t.allotted {
		tok.release()
	}
	t.allotted = nil

	t.scan(t.root.AsNode())

	t.render()
	t.HandleSelectionChange()
}

func (t *Tokenizer) scan(el *dom.Node) {
	for child := el.FirstChild(); child != nil; child = child.NextSibling() {
		if is.List(child) || is.Blockquote(child) {
			t.scan(child)
			continue
		}
		text := ExtractText(child)
		for _, fn := range t.listeners {
			fn(child, text)
		}
	}
}

// RequestUpdate schedules an Update on the next tick. Requests made while
// one is pending are dropped.
func (t *Tokenizer) RequestUpdate() {
	if t.updatePending {
		return
	}
	if t.timers == nil {
		t.Update()
		return
	}
	t.updatePending = true
	t.timers.SetTimeout(func() {
		defer func() { t.updatePending = false }()
		t.Update()
	}, 0)
}

// SelectionChanged is called when the caret moves. Tokens are only
// resolved against the selection when no scan is pending.
func (t *Tokenizer) SelectionChanged() {
	if t.updatePending {
		return
	}
	t.render()
	t.HandleSelectionChange()
}

func (t *Tokenizer) render() {
	for _, fn := range t.onRender {
		fn(t.allotted)
	}
}

// CreateToken creates a token for text found at index in container.
func (t *Tokenizer) CreateToken(container *dom.Node, text string, index int) *Token {
	return NewToken(container, text, index)
}

// Add allots tok unless it falls into an excluded region or loses against
// a token it intersects. Tokens it supersedes are dropped. It reports
// whether tok was allotted.
func (t *Tokenizer) Add(tok *Token) bool {
	if el := tok.Container.AsElement(); el != nil {
		for _, ex := range el.QueryAll(func(e *dom.Element) bool { return e.HasClass("no-tokens") }) {
			if tok.IntersectsNode(ex.AsNode()) {
				return false
			}
		}
	}

	var intersecting, superseded []*Token
	for _, other := range t.allotted {
		if !tok.Intersects(other) {
			continue
		}
		if tok.sameSpan(other) {
			t.logger.Debug("dropping duplicate token", "token", tok, "kept", other)
			return false
		}
		intersecting = append(intersecting, other)
		if tok.Supersedes(other) {
			superseded = append(superseded, other)
		}
	}
	if len(superseded) < len(intersecting) {
		return false
	}

	if len(superseded) > 0 {
		kept := t.allotted[:0]
		for _, other := range t.allotted {
			if !contains(superseded, other) {
				kept = append(kept, other)
			} else {
				other.release()
			}
		}
		t.allotted = kept
	}
	t.allotted = append(t.allotted, tok)
	return true
}

func contains(tokens []*Token, tok *Token) bool {
	for _, t := range tokens {
		if t == tok {
			return true
		}
	}
	return false
}

// Focused returns the token holding the caret, or nil.
func (t *Tokenizer) Focused() *Token {
	sel := t.doc.GetSelection()
	for _, tok := range t.allotted {
		if tok.IsFocused(sel) {
			return tok
		}
	}
	return nil
}

// HandleEnter replaces the focused replace-on-enter token. It reports
// whether the key was consumed.
func (t *Tokenizer) HandleEnter() bool {
	return t.resolveFocused(func(tok *Token) bool { return tok.ReplaceOnEnter }, t.replace)
}

// HandleSpace replaces the focused replace-on-space token. The space itself
// is still inserted after the replacement, so the key is never consumed.
func (t *Tokenizer) HandleSpace() bool {
	t.resolveFocused(func(tok *Token) bool { return tok.ReplaceOnSpace }, t.replace)
	return false
}

// HandleEsc excludes the focused exclude-on-esc token. It reports whether
// the key was consumed. An exclusion that ends its line is followed by a
// space, so the caret can leave it.
func (t *Tokenizer) HandleEsc() bool {
	return t.resolveFocused(func(tok *Token) bool { return tok.ExcludeOnEsc }, t.exclude)
}

func (t *Tokenizer) exclude(tok *Token) (*dom.Node, error) {
	node, err := tok.Exclude()
	if err != nil || node == nil {
		return node, err
	}
	next := node.NextSibling()
	for next != nil && is.Text(next) && next.NodeValue() == "" {
		next = next.NextSibling()
	}
	if next == nil {
		node.ParentNode().InsertBefore(t.doc.CreateTextNode(" "), node.NextSibling())
	}
	return node, nil
}

func (t *Tokenizer) replace(tok *Token) (*dom.Node, error) {
	return tok.Replace(t.root)
}

func (t *Tokenizer) resolveFocused(flag func(*Token) bool, resolve func(*Token) (*dom.Node, error)) bool {
	sel := t.doc.GetSelection()
	for _, tok := range t.allotted {
		if !tok.IsFocused(sel) || !flag(tok) {
			continue
		}
		err := t.run(func() error {
			node, err := resolve(tok)
			if err != nil || node == nil {
				return err
			}
			// caret right after the result
			r := t.doc.CreateRange()
			r.SelectNode(node)
			r.Collapse(false)
			sel.RemoveAllRanges()
			sel.AddRange(r)
			return nil
		}, false)
		if err != nil {
			t.logger.Error("resolving token failed", "token", tok, "err", err)
		}
		return true
	}
	return false
}

// HandleSelectionChange resolves every unfocused token flagged to exclude
// or replace itself on unfocus. The edits are squashed into the last undo step.
func (t *Tokenizer) HandleSelectionChange() {
	sel := t.doc.GetSelection()
	if !sel.IsCollapsed() {
		return
	}
	for _, tok := range t.allotted {
		var resolve func(*Token) (*dom.Node, error)
		switch {
		case tok.ExcludeOnUnfocus && !tok.IsFocused(sel):
			resolve = (*Token).Exclude
		case tok.ReplaceOnUnfocus && !tok.IsFocused(sel):
			resolve = t.replace
		default:
			continue
		}
		err := t.run(func() error {
			_, err := resolve(tok)
			return err
		}, true)
		if err != nil {
			t.logger.Error("resolving unfocused token failed", "token", tok, "err", err)
		}
	}
}

// HandleLoad replaces every replace-on-load token once, as part of the
// initial content.
func (t *Tokenizer) HandleLoad() {
	err := t.run(func() error {
		for _, tok := range t.allotted {
			if !tok.ReplaceOnLoad {
				continue
			}
			if _, err := tok.Replace(t.root); err != nil {
				return err
			}
		}
		return nil
	}, true)
	if err != nil {
		t.logger.Error("replacing tokens on load failed", "err", err)
	}
}

func (t *Tokenizer) run(fn func() error, squash bool) error {
	switch {
	case t.tx == nil:
		return fn()
	case squash:
		return t.tx.RunAndSquash(fn)
	default:
		return t.tx.Run(fn)
	}
}
