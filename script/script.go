// Package script runs tokenizer pattern matchers written in JavaScript.
// It uses the goja JavaScript engine.
//
// A script defines a global match function taking the text of a container
// and returning an array of matches:
//
//	function match(text) {
//		var i = text.indexOf("@ann");
//		if (i < 0) return [];
//		return [{index: i, text: "@ann", type: "mention", replaceOnEnter: true,
//			replaceWith: "<b>@ann</b>"}];
//	}
//
// Indexes are counted in UTF-16 code units, as JavaScript strings are.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chrisuehlinger/zeditor/dom"
	"github.com/chrisuehlinger/zeditor/tokenizer"
	"github.com/dop251/goja"
)

// ErrNoMatchFunction is returned by Load when the script does not define match.
var ErrNoMatchFunction = errors.New("script: no match function defined")

// Result is one match reported by a script.
type Result struct {
	Index          int
	Text           string
	Type           string
	ReplaceOnEnter bool
	ReplaceOnSpace bool
	ExcludeOnEsc   bool
	Invisible      bool
	ReplaceWith    string
}

// Matcher wraps a compiled script.
type Matcher struct {
	name   string
	vm     *goja.Runtime
	match  goja.Callable
	mu     sync.Mutex
	errors []error
	logger *slog.Logger
}

// Load compiles and runs source and looks up its match function.
func Load(name, source string) (m *Matcher, err error) {
	// the goja parser can panic on malformed input
	defer func() {
		if p := recover(); p != nil {
			m, err = nil, fmt.Errorf("script %s: compilation panic: %v", name, p)
		}
	}()

	program, err := goja.Compile(name, source, false)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	vm := goja.New()
	if _, err := vm.RunProgram(program); err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	match, ok := goja.AssertFunction(vm.Get("match"))
	if !ok {
		return nil, fmt.Errorf("script %s: %w", name, ErrNoMatchFunction)
	}
	return &Matcher{
		name:   name,
		vm:     vm,
		match:  match,
		logger: slog.Default().With("component", "editor:tokenizer:script", "script", name),
	}, nil
}

// Name returns the name the script was loaded under.
func (m *Matcher) Name() string {
	return m.name
}

// SetLogger replaces the matcher's logger.
func (m *Matcher) SetLogger(logger *slog.Logger) {
	m.logger = logger.With("component", "editor:tokenizer:script", "script", m.name)
}

// Errors returns the errors raised by the script so far.
func (m *Matcher) Errors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.errors...)
}

// Match runs the script's match function on text. Indexes of the results
// are converted to byte offsets into text; results that do not point at
// their text are dropped.
func (m *Matcher) Match(text string) (results []Result, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script %s: match panic: %v", m.name, p)
		}
		if err != nil {
			m.errors = append(m.errors, err)
		}
	}()

	v, err := m.match(goja.Undefined(), m.vm.ToValue(text))
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", m.name, err)
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	list, ok := v.Export().([]interface{})
	if !ok {
		return nil, fmt.Errorf("script %s: match returned %s, want an array", m.name, v.ExportType())
	}

	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		r := Result{
			Index:          byteOffset(text, toInt(obj["index"])),
			Text:           toString(obj["text"]),
			Type:           toString(obj["type"]),
			ReplaceOnEnter: toBool(obj["replaceOnEnter"]),
			ReplaceOnSpace: toBool(obj["replaceOnSpace"]),
			ExcludeOnEsc:   toBool(obj["excludeOnEsc"]),
			Invisible:      toBool(obj["invisible"]),
			ReplaceWith:    toString(obj["replaceWith"]),
		}
		if r.Text == "" || r.Index < 0 || r.Index+len(r.Text) > len(text) || text[r.Index:r.Index+len(r.Text)] != r.Text {
			m.logger.Debug("dropping misplaced match", "index", r.Index, "text", r.Text)
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

// Attach registers the matcher with t. Script errors are logged and the
// container is skipped.
func (m *Matcher) Attach(t *tokenizer.Tokenizer) {
	t.OnUpdate(func(container *dom.Node, text string) {
		results, err := m.Match(text)
		if err != nil {
			m.logger.Warn("match failed", "err", err)
			return
		}
		for _, r := range results {
			tok := t.CreateToken(container, r.Text, r.Index)
			tok.Type = r.Type
			tok.ReplaceOnEnter = r.ReplaceOnEnter
			tok.ReplaceOnSpace = r.ReplaceOnSpace
			tok.ExcludeOnEsc = r.ExcludeOnEsc
			tok.Invisible = r.Invisible
			if r.ReplaceWith != "" {
				tok.Replacement = replaceWith(r.ReplaceWith)
			}
			t.Add(tok)
		}
	})
}

// replaceWith builds the first node of markup as the token replacement.
func replaceWith(markup string) func(*tokenizer.Token) (*dom.Node, error) {
	return func(tok *tokenizer.Token) (*dom.Node, error) {
		tmp := tok.Container.OwnerDocument().CreateElement("div")
		if err := tmp.SetInnerHTML(markup); err != nil {
			return nil, err
		}
		node := tmp.FirstChild()
		if node == nil {
			return nil, nil
		}
		node.Remove()
		return node, nil
	}
}

// byteOffset converts an index in UTF-16 code units into a byte offset.
func byteOffset(s string, units int) int {
	if units < 0 {
		return -1
	}
	n := 0
	for i, r := range s {
		if n >= units {
			return i
		}
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	if n >= units {
		return len(s)
	}
	return -1
}

func toInt(v interface{}) int {
	switch v := v.(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	case int:
		return v
	}
	return -1
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func toBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}
