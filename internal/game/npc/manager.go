package npc

import (
	"fmt"
	"strings"
	"sync"

	"github.com/emberfell/skirmish/internal/game/combat"
)

// Manager tracks all live NPC instances by ID and by arena.
// All methods are safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	instances map[string]*Instance       // instanceID -> Instance
	arenaSets map[string]map[string]bool // arenaID -> set of instanceIDs
	templates map[string]*Template       // templateID -> Template
}

// NewManager creates an empty NPC Manager.
func NewManager() *Manager {
	return &Manager{
		instances: make(map[string]*Instance),
		arenaSets: make(map[string]map[string]bool),
		templates: make(map[string]*Template),
	}
}

// RegisterTemplate adds tmpl to the manager's template index.
//
// Precondition: tmpl must be non-nil and valid.
// Postcondition: Template(tmpl.ID) succeeds; returns an error on ID collision.
func (m *Manager) RegisterTemplate(tmpl *Template) error {
	if err := tmpl.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.templates[tmpl.ID]; exists {
		return fmt.Errorf("npc template %q already registered", tmpl.ID)
	}
	m.templates[tmpl.ID] = tmpl
	return nil
}

// Template returns the registered template for id.
//
// Postcondition: Returns (tmpl, true) if found, or (nil, false) otherwise.
func (m *Manager) Template(id string) (*Template, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tmpl, ok := m.templates[id]
	return tmpl, ok
}

// Spawn creates a new Instance from the registered template and places it
// in arenaID, wielding weapon (may be nil).
//
// Precondition: templateID must be registered; arenaID must be non-empty.
// Postcondition: Returns a new Instance with a unique ID registered in
// arenaID.
func (m *Manager) Spawn(templateID, arenaID string, weapon combat.Item) (*Instance, error) {
	if arenaID == "" {
		return nil, fmt.Errorf("npc.Manager.Spawn: arenaID must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tmpl, ok := m.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("npc.Manager.Spawn: template %q not registered", templateID)
	}

	inst := NewInstance(tmpl, arenaID, weapon)
	m.instances[inst.ID] = inst
	if m.arenaSets[arenaID] == nil {
		m.arenaSets[arenaID] = make(map[string]bool)
	}
	m.arenaSets[arenaID][inst.ID] = true
	return inst, nil
}

// Remove deletes an instance by ID.
//
// Precondition: id must be non-empty.
// Postcondition: Returns an error if the instance is not found.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[id]
	if !ok {
		return fmt.Errorf("npc instance %q not found", id)
	}

	if set, ok := m.arenaSets[inst.ArenaID]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(m.arenaSets, inst.ArenaID)
		}
	}
	delete(m.instances, id)
	return nil
}

// Get returns the instance with the given ID.
//
// Postcondition: Returns (inst, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(id string) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[id]
	return inst, ok
}

// InstancesInArena returns a snapshot of all live instances in arenaID.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) InstancesInArena(arenaID string) []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids, ok := m.arenaSets[arenaID]
	if !ok {
		return []*Instance{}
	}

	out := make([]*Instance, 0, len(ids))
	for id := range ids {
		if inst, ok := m.instances[id]; ok {
			out = append(out, inst)
		}
	}
	return out
}

// FindInArena returns the first instance in arenaID whose name has target
// as a case-insensitive prefix. Returns nil if no match is found.
func (m *Manager) FindInArena(arenaID, target string) *Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids, ok := m.arenaSets[arenaID]
	if !ok {
		return nil
	}

	lower := strings.ToLower(target)
	for id := range ids {
		inst, ok := m.instances[id]
		if !ok {
			continue
		}
		if strings.HasPrefix(strings.ToLower(inst.DisplayName), lower) {
			return inst
		}
	}
	return nil
}
