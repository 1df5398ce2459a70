package command

import (
	"fmt"
	"strings"
)

// Registry resolves player input words to Command definitions. Canonical
// names and aliases share one index, so lookup never needs two probes.
//
// Invariant: every key in index is lowercase and maps to exactly one
// command; ordered holds each command once, in registration order.
type Registry struct {
	index   map[string]*Command
	ordered []*Command
}

// NewRegistry creates a Registry populated with the given commands.
//
// Precondition: No two commands may share a canonical name or alias.
// Postcondition: Returns a Registry or an error on name/alias collisions.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{index: make(map[string]*Command, len(cmds)*2)}

	for i := range cmds {
		cmd := &cmds[i]
		if err := r.bind(cmd.Name, cmd); err != nil {
			return nil, err
		}
		for _, alias := range cmd.Aliases {
			if err := r.bind(alias, cmd); err != nil {
				return nil, err
			}
		}
		r.ordered = append(r.ordered, cmd)
	}

	return r, nil
}

func (r *Registry) bind(word string, cmd *Command) error {
	key := strings.ToLower(word)
	if taken, exists := r.index[key]; exists {
		return fmt.Errorf("command word %q already bound to %q", word, taken.Name)
	}
	r.index[key] = cmd
	return nil
}

// DefaultRegistry creates a Registry with all built-in commands. The
// built-in set is static, so a collision is a programming error.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by canonical name or alias, ignoring case.
//
// Postcondition: Returns (command, true) if found, or (nil, false).
func (r *Registry) Resolve(input string) (*Command, bool) {
	cmd, ok := r.index[strings.ToLower(input)]
	return cmd, ok
}

// CommandsByCategory returns commands grouped by category, each group in
// registration order.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.ordered {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}
