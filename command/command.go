// Package command defines the command capability shared by history and
// formatting actions, a named registry of commands and keyboard shortcut
// bindings.
package command

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/chrisuehlinger/zeditor/dom"
)

// Command is an action the user can trigger on a range.
type Command interface {
	// Execute runs the command. A nil range means the current selection.
	Execute(r *dom.Range) error
	QueryEnabled() bool
	QueryState() bool
}

// Registry maps command names to commands.
type Registry struct {
	commands map[string]Command
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		commands: make(map[string]Command),
		logger:   logger.With("component", "editor:commands"),
	}
}

// Register binds name to cmd, replacing any previous binding.
func (r *Registry) Register(name string, cmd Command) {
	r.commands[name] = cmd
}

// Get returns the command bound to name.
func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.commands))
}

// Execute runs the named command on rng.
func (r *Registry) Execute(name string, rng *dom.Range) error {
	cmd, ok := r.commands[name]
	if !ok {
		return fmt.Errorf("command %q is not defined", name)
	}
	r.logger.Debug("execute", "name", name)
	return cmd.Execute(rng)
}

// Shortcuts maps key combinations such as "mod+shift+z" to command names.
// "mod" matches either Ctrl or Meta.
type Shortcuts map[string]string

// DefaultShortcuts binds the history commands and the inline formatting commands.
func DefaultShortcuts() Shortcuts {
	return Shortcuts{
		"mod+b":       "bold",
		"mod+i":       "italic",
		"mod+u":       "underline",
		"alt+shift+d": "strikethrough",
		"mod+z":       "undo",
		"mod+shift+z": "redo",
		"mod+y":       "redo",
	}
}

// Lookup returns the command name bound to the combination, if any.
func (s Shortcuts) Lookup(combo string) (string, bool) {
	name, ok := s[combo]
	return name, ok && name != ""
}

// Combo builds the canonical combination string for a key code and modifiers.
// It returns "" for keys that cannot take part in a shortcut.
func Combo(keyCode int, ctrl, meta, alt, shift bool) string {
	var key string
	switch {
	case keyCode >= 'A' && keyCode <= 'Z':
		key = strings.ToLower(string(rune(keyCode)))
	case keyCode >= '0' && keyCode <= '9':
		key = string(rune(keyCode))
	case keyCode == 219:
		key = "["
	case keyCode == 221:
		key = "]"
	default:
		return ""
	}
	var parts []string
	if ctrl || meta {
		parts = append(parts, "mod")
	}
	if alt {
		parts = append(parts, "alt")
	}
	if shift {
		parts = append(parts, "shift")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(append(parts, key), "+")
}

// Dispatch looks up the shortcut for the combination and runs its command
// when enabled. It reports whether a binding matched, in which case the key
// event should not reach the default handling.
func (r *Registry) Dispatch(s Shortcuts, combo string) (bool, error) {
	name, ok := s.Lookup(combo)
	if !ok {
		return false, nil
	}
	cmd, ok := r.commands[name]
	if !ok {
		r.logger.Debug("skipping shortcut, command missing", "combo", combo, "name", name)
		return false, nil
	}
	if !cmd.QueryEnabled() {
		return true, nil
	}
	r.logger.Debug("executing shortcut", "combo", combo, "name", name)
	return true, cmd.Execute(nil)
}
