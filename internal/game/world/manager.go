package world

import (
	"fmt"
	"sync"
)

// Manager provides thread-safe access to the loaded world. Arenas are
// immutable; the manager only guards its own index.
type Manager struct {
	mu     sync.RWMutex
	arenas map[string]*Arena
	start  string
}

// NewManager indexes the given arenas. The first arena is the world's
// start location unless startID names another.
//
// Precondition: arenas must be non-empty; startID, when non-empty, must
// name one of them.
// Postcondition: Returns a Manager with all arenas indexed by ID, or an
// error on duplicate or unknown IDs.
func NewManager(arenas []*Arena, startID string) (*Manager, error) {
	if len(arenas) == 0 {
		return nil, fmt.Errorf("world: at least one arena is required")
	}

	m := &Manager{arenas: make(map[string]*Arena, len(arenas))}
	for _, a := range arenas {
		if _, exists := m.arenas[a.ID()]; exists {
			return nil, fmt.Errorf("world: duplicate arena ID %q", a.ID())
		}
		m.arenas[a.ID()] = a
	}

	m.start = arenas[0].ID()
	if startID != "" {
		if _, ok := m.arenas[startID]; !ok {
			return nil, fmt.Errorf("world: start arena %q not loaded", startID)
		}
		m.start = startID
	}
	return m, nil
}

// ValidateExits checks that every exit target resolves to a loaded arena.
// Call this after NewManager to catch dangling references.
//
// Postcondition: Returns nil if all exits resolve, or an error naming the
// first dangling target.
func (m *Manager) ValidateExits() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, arena := range m.arenas {
		for direction, target := range arena.Exits() {
			if _, ok := m.arenas[target]; !ok {
				return fmt.Errorf("world: arena %q: exit %q targets unknown arena %q",
					arena.ID(), direction, target)
			}
		}
	}
	return nil
}

// Arena returns the arena with the given ID.
//
// Postcondition: Returns (arena, true) if found, or (nil, false) otherwise.
func (m *Manager) Arena(id string) (*Arena, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.arenas[id]
	return a, ok
}

// Start returns the world's start arena.
func (m *Manager) Start() *Arena {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.arenas[m.start]
}

// Navigate resolves movement from an arena in a direction.
//
// Postcondition: Returns the destination arena, or an error when the
// origin is unknown or has no such exit.
func (m *Manager) Navigate(arenaID, direction string) (*Arena, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	origin, ok := m.arenas[arenaID]
	if !ok {
		return nil, fmt.Errorf("world: unknown arena %q", arenaID)
	}
	target, ok := origin.Exit(direction)
	if !ok {
		return nil, fmt.Errorf("world: no exit %q from %q", direction, arenaID)
	}
	dest, ok := m.arenas[target]
	if !ok {
		return nil, fmt.Errorf("world: exit %q from %q targets unknown arena %q", direction, arenaID, target)
	}
	return dest, nil
}

// All returns every loaded arena in unspecified order.
func (m *Manager) All() []*Arena {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Arena, 0, len(m.arenas))
	for _, a := range m.arenas {
		out = append(out, a)
	}
	return out
}
