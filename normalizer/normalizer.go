// Package normalizer keeps the editor tree in canonical shape. An ordered
// pipeline of idempotent passes runs after every observed mutation batch,
// squashed into the undo step that caused it.
package normalizer

import (
	"log/slog"
	"slices"

	"github.com/chrisuehlinger/zeditor/dom"
)

// maxRounds bounds how often the pipeline is repeated while it still changes the tree.
const maxRounds = 8

// PassFunc transforms the tree. root is the editor root and subtree the part
// that changed; context names the trigger ("mutation", "paste", ...).
type PassFunc func(root, subtree *dom.Element, context string)

// Pass is a named step of the pipeline. Names identify passes for UseBefore.
type Pass struct {
	Name string
	Fn   PassFunc
}

// Names of the first and last built-in passes, for splicing custom passes
// around the built-in pipeline.
const (
	BeforeBuiltins = "unknown-root-nodes"
	AfterBuiltins  = "empty-editor"
)

// Transactions is the part of the transaction manager the normalizer needs.
type Transactions interface {
	RunAndSquash(fn func() error) error
}

// Options configures a Normalizer.
type Options struct {
	// Transactions receives mutation-triggered normalizations. When nil,
	// the normalizer does not observe the tree and only runs on demand.
	Transactions Transactions
	Scheduler    dom.Scheduler
	Logger       *slog.Logger
}

// Normalizer owns the pass pipeline for one editor root.
type Normalizer struct {
	root        *dom.Element
	passes      []Pass
	composition bool
	observer    *dom.MutationObserver
	tx          Transactions

	onNormalized []func()
	logger       *slog.Logger
}

// New creates a normalizer with the built-in passes and starts observing
// root when a transaction runner is configured.
func New(root *dom.Element, opts Options) *Normalizer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	n := &Normalizer{
		root:   root,
		tx:     opts.Transactions,
		logger: logger.With("component", "editor:editor-normalizer"),
	}

	n.Use(Pass{BeforeBuiltins, n.updateUnknownRootNodes})
	n.Use(Pass{"root-level-classless-divs", n.updateRootLevelClasslessDivs})
	n.Use(Pass{"newline-paragraphs", n.updateNewlineParagraphs})
	n.Use(Pass{"meaningless-line-breaks", n.updateMeaninglessLineBreaks})
	n.Use(Pass{"unwrapped-elements", n.updateUnwrappedElements})
	n.Use(Pass{"empty-inline-elements", n.updateEmptyNonVoidInlineElements})
	n.Use(Pass{"empty-block-elements", n.updateEmptyNonVoidBlockElements})
	n.Use(Pass{"nested-formatting", n.updateNestedFormatting})
	n.Use(Pass{"adjacent-formatting", n.updateAdjacentFormatting})
	n.Use(Pass{"list-wrapped-paragraphs", n.updateListWrappedParagraphs})
	n.Use(Pass{"misplaced-root-elements", n.updateMisplacedRootElements})
	n.Use(Pass{"references-with-content", n.updateReferencesWithContent})
	n.Use(Pass{"join-hints", n.updateJoinHints})
	n.Use(Pass{AfterBuiltins, n.updateEmptyEditor})

	if n.tx != nil {
		n.observer = dom.NewMutationObserver(opts.Scheduler, func(records []dom.MutationRecord, _ *dom.MutationObserver) {
			n.callback(records)
		})
		n.start()
	}
	return n
}

// Use appends a pass to the pipeline.
func (n *Normalizer) Use(p Pass) {
	n.passes = append(n.passes, p)
}

// UseBefore inserts p before the pass named ref, or appends it when there
// is no such pass.
func (n *Normalizer) UseBefore(p Pass, ref string) {
	index := slices.IndexFunc(n.passes, func(q Pass) bool { return q.Name == ref })
	if index == -1 {
		n.passes = append(n.passes, p)
		return
	}
	n.passes = slices.Insert(n.passes, index, p)
}

// Passes returns the pass names in pipeline order.
func (n *Normalizer) Passes() []string {
	names := make([]string, len(n.passes))
	for i, p := range n.passes {
		names[i] = p.Name
	}
	return names
}

// OnNormalized registers fn to run after every mutation-triggered normalization.
func (n *Normalizer) OnNormalized(fn func()) {
	n.onNormalized = append(n.onNormalized, fn)
}

// Normalize runs the pipeline over subtree until the tree stops changing,
// then merges adjacent text nodes. A nil root means the editor root and a
// nil subtree means root.
func (n *Normalizer) Normalize(context string, root, subtree *dom.Element) {
	if root == nil {
		root = n.root
	}
	if subtree == nil {
		subtree = root
	}
	for round := 0; ; round++ {
		before := root.AsNode().CloneNode(true)
		for _, p := range n.passes {
			p.Fn(root, subtree, context)
		}
		// live ranges, the selection included, follow the merge
		subtree.AsNode().Normalize()

		if root.AsNode().IsEqualNode(before) {
			return
		}
		if round == maxRounds-1 {
			n.logger.Warn("normalization did not settle", "context", context, "rounds", maxRounds)
			return
		}
	}
}

// CompositionStart suspends mutation-triggered normalization.
func (n *Normalizer) CompositionStart() {
	n.composition = true
}

// CompositionEnd resumes normalization and runs it once.
func (n *Normalizer) CompositionEnd() {
	n.composition = false
	n.callback(nil)
}

// Composing reports whether an IME composition is open.
func (n *Normalizer) Composing() bool {
	return n.composition
}

func (n *Normalizer) start() {
	n.observer.Observe(n.root.AsNode(), dom.ObserveOptions{
		ChildList:     true,
		Attributes:    true,
		CharacterData: true,
		Subtree:       true,
	})
}

func (n *Normalizer) stop() {
	n.observer.Disconnect()
}

// callback is fired whenever mutations occur in the observed tree.
func (n *Normalizer) callback(records []dom.MutationRecord) {
	if n.composition {
		n.logger.Debug("ignoring, since composition is open")
		return
	}
	if n.tx == nil {
		n.Normalize("mutation", nil, nil)
		return
	}
	n.logger.Debug("normalizing mutation records", "records", len(records))

	// pause the observer so that we don't react to our own changes
	n.stop()
	defer n.start()

	err := n.tx.RunAndSquash(func() error {
		n.Normalize("mutation", nil, nil)
		return nil
	})
	if err != nil {
		n.logger.Debug("normalization transaction failed", "err", err)
		return
	}
	for _, fn := range n.onNormalized {
		fn()
	}
}
