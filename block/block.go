// Package block keeps the blocks embedded in the editor content. A block
// sits in the tree as a reference placeholder, div.overlay-reference with a
// data-id, and the registry maps that id back to the block. Placeholders
// that are cloned by undo and redo resolve to the same block.
package block

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/is"
	"github.com/google/uuid"
)

// Block is content the editor cannot edit as text, such as an embed or a
// gallery.
type Block interface {
	// Bind is called with the placeholder once the block is inserted.
	Bind(el *dom.Element)
	// Serialize returns the markup persisted in place of the placeholder.
	Serialize() string
	Destroy()
}

// Registry maps placeholder ids to blocks.
type Registry struct {
	doc    *dom.Document
	blocks map[string]Block
	logger *slog.Logger
}

// NewRegistry creates an empty registry for placeholders of doc.
func NewRegistry(doc *dom.Document, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		doc:    doc,
		blocks: make(map[string]Block),
		logger: logger.With("component", "editor:editor-block"),
	}
}

// Insert registers b under a fresh id and returns its placeholder, which
// the caller places in the tree.
func (r *Registry) Insert(b Block) *dom.Element {
	id := uuid.NewString()
	el := r.doc.CreateElement("div")
	el.SetClassName("overlay-reference")
	el.SetAttribute("data-id", id)
	el.AppendChild(r.doc.CreateElement("br").AsNode())
	r.blocks[id] = b
	b.Bind(el)
	r.logger.Debug("inserted block", "id", id)
	return el
}

// Lookup returns the block a placeholder stands for.
func (r *Registry) Lookup(el *dom.Element) (Block, bool) {
	if !is.OverlayReference(el.AsNode()) {
		return nil, false
	}
	b, ok := r.blocks[el.GetAttribute("data-id")]
	return b, ok
}

// Element returns the placeholder for id in root. When undo leaves more
// than one, the first wins.
func (r *Registry) Element(root *dom.Element, id string) *dom.Element {
	els := root.QueryAll(func(e *dom.Element) bool {
		return is.OverlayReference(e.AsNode()) && e.GetAttribute("data-id") == id
	})
	if len(els) == 0 {
		return nil
	}
	if len(els) > 1 {
		r.logger.Debug("duplicate elements for block", "id", id)
	}
	return els[0]
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	return slices.Sorted(maps.Keys(r.blocks))
}

// Len returns the number of registered blocks.
func (r *Registry) Len() int {
	return len(r.blocks)
}

// Sweep destroys and forgets the blocks whose placeholder is no longer in
// root. Placeholders still reachable through the undo history should be
// kept alive by the caller, so Sweep is meant for points where the history
// is discarded. It returns the number of destroyed blocks.
func (r *Registry) Sweep(root *dom.Element) int {
	live := make(map[string]bool)
	for _, el := range root.QueryAll(func(e *dom.Element) bool { return is.OverlayReference(e.AsNode()) }) {
		live[el.GetAttribute("data-id")] = true
	}
	swept := 0
	for _, id := range r.IDs() {
		if live[id] {
			continue
		}
		r.logger.Debug("destroying block", "id", id)
		r.blocks[id].Destroy()
		delete(r.blocks, id)
		swept++
	}
	return swept
}

// DestroyAll destroys every block.
func (r *Registry) DestroyAll() {
	for _, id := range r.IDs() {
		r.blocks[id].Destroy()
		delete(r.blocks, id)
	}
}

// HTML is a block holding arbitrary markup, serialized as is.
type HTML struct {
	Markup string
	el     *dom.Element
}

// NewHTML creates a block for markup.
func NewHTML(markup string) *HTML {
	return &HTML{Markup: markup}
}

func (h *HTML) Bind(el *dom.Element) { h.el = el }
func (h *HTML) Serialize() string    { return h.Markup }
func (h *HTML) Destroy()             { h.el = nil }

// Placeholder returns the element the block was bound to, or nil once destroyed.
func (h *HTML) Placeholder() *dom.Element {
	return h.el
}
